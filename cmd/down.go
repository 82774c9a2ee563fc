package cmd

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/stratus-cloud/stratus/internal/config"
	"github.com/stratus-cloud/stratus/internal/core"
	"github.com/stratus-cloud/stratus/internal/state"
)

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Tear down the configured network stacks",
	Long: `Tears each stack down in reverse dependency order. Teardown is
best-effort: failed steps are reported but the remaining steps still run,
so orphaned resources may be left behind on a faulty control plane.`,
	Run: func(cmd *cobra.Command, args []string) {
		stackName, _ := cmd.Flags().GetString("stack")

		cfg := mustLoadConfig(cmd)
		stacks := cfg.Stacks
		if stackName != "" {
			stack, err := cfg.FindStack(stackName)
			if err != nil {
				pterm.Error.Println(err)
				os.Exit(1)
			}
			stacks = []config.Stack{stack}
		}

		tr := newTransport(cfg)
		defer tr.Close()

		history := state.NewHistoryManager("")
		failed := false
		for _, stack := range stacks {
			if !stack.IsManaged() {
				pterm.Info.Printf("[%s] Not managed by stratus, skipping\n", stack.Name)
				continue
			}

			prov, err := core.NewProvisioner(stack, tr)
			if err != nil {
				pterm.Error.Printf("[%s] %v\n", stack.Name, err)
				failed = true
				continue
			}

			// Identifiers live only in the process that created the
			// stack, so rediscover them from the display name.
			if r, ok := prov.(core.Resolver); ok {
				if err := r.Resolve(cmd.Context()); err != nil {
					pterm.Error.Printf("[%s] Stack could not be resolved: %v\n", stack.Name, err)
					failed = true
					continue
				}
			}

			if err := prov.Delete(cmd.Context()); err != nil {
				pterm.Warning.Printf("[%s] Teardown incomplete: %v\n", stack.Name, err)
				recordRun(history, stack, "down", "", "failed")
				failed = true
				continue
			}

			pterm.Success.Printf("[%s] Stack removed\n", stack.Name)
			recordRun(history, stack, "down", "", "success")
		}

		if failed {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(downCmd)
	downCmd.Flags().String("stack", "", "tear down only this stack")
}
