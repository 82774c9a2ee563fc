package cmd

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/stratus-cloud/stratus/internal/core"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the lifecycle state of a stack's resources",
	Run: func(cmd *cobra.Command, args []string) {
		stackName, _ := cmd.Flags().GetString("stack")

		prov, cleanup := resolveStack(cmd, stackName)
		defer cleanup()

		desc, ok := prov.(core.Describer)
		if !ok {
			pterm.Error.Println("Provider does not support status reporting")
			os.Exit(1)
		}

		spinner, _ := pterm.DefaultSpinner.Start("Querying resource states...")
		statuses, err := desc.Describe(cmd.Context())
		if err != nil {
			spinner.Fail("Status query failed")
			pterm.Error.Println(err)
			os.Exit(1)
		}
		spinner.Success("Status query complete")

		rows := pterm.TableData{{"Resource", "ID", "State"}}
		for _, s := range statuses {
			rows = append(rows, []string{s.Kind, s.ID, s.State})
		}
		_ = pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().String("stack", "", "stack to inspect")
}
