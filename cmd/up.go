package cmd

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/stratus-cloud/stratus/internal/config"
	"github.com/stratus-cloud/stratus/internal/core"
	"github.com/stratus-cloud/stratus/internal/state"
)

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Provision the configured network stacks",
	Run: func(cmd *cobra.Command, args []string) {
		stackName, _ := cmd.Flags().GetString("stack")
		concurrency, _ := cmd.Flags().GetInt("concurrency")

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
		pterm.DefaultSection.Printf("Provisioning %d stack(s)", len(stacks))

		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(concurrency)
		for _, stack := range stacks {
			stack := stack
			g.Go(func() error {
				prov, err := core.NewProvisioner(stack, tr)
				if err != nil {
					pterm.Error.Printf("[%s] %v\n", stack.Name, err)
					return err
				}

				if err := prov.Create(ctx); err != nil {
					pterm.Error.Printf("[%s] Provisioning failed: %v\n", stack.Name, err)
					recordRun(history, stack, "up", "", "failed")
					return err
				}

				pterm.Success.Printf("[%s] Stack ready, attachment subnet: %s\n",
					stack.Name, prov.AttachmentID())
				recordRun(history, stack, "up", prov.AttachmentID(), "success")
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			os.Exit(1)
		}
	},
}

func recordRun(history *state.HistoryManager, stack config.Stack, action, subnetID, status string) {
	err := history.Append(state.Record{
		Stack:    stack.Name,
		Provider: stack.Provider,
		Action:   action,
		SubnetID: subnetID,
		Status:   status,
	})
	if err != nil {
		pterm.Warning.Printf("History could not be written: %v\n", err)
	}
}

func init() {
	rootCmd.AddCommand(upCmd)
	upCmd.Flags().String("stack", "", "provision only this stack")
	upCmd.Flags().Int("concurrency", 2, "stacks provisioned in parallel")
}
