package cmd

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/stratus-cloud/stratus/internal/state"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past provisioning runs",
	Run: func(cmd *cobra.Command, args []string) {
		history := state.NewHistoryManager("")
		records, err := history.Load()
		if err != nil {
			pterm.Error.Printf("History could not be read: %v\n", err)
			os.Exit(1)
		}
		if len(records) == 0 {
			pterm.Info.Println("No runs recorded yet")
			return
		}

		rows := pterm.TableData{{"Time", "Stack", "Action", "Status", "Subnet"}}
		// Newest first.
		for i := len(records) - 1; i >= 0; i-- {
			r := records[i]
			rows = append(rows, []string{r.Timestamp, r.Stack, r.Action, r.Status, r.SubnetID})
		}
		_ = pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
}
