package cmd

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/stratus-cloud/stratus/internal/config"
	"github.com/stratus-cloud/stratus/internal/core"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that provisioning prerequisites are in place",
	Run: func(cmd *cobra.Command, args []string) {
		path, _ := cmd.Root().PersistentFlags().GetString("config")

		// One parse shared by every check, so they can't disagree about
		// the config's contents.
		cfg, cfgErr := config.Load(path)

		type check struct {
			name string
			err  error
		}
		results := make([]check, 3)

		var g errgroup.Group
		g.Go(func() error {
			results[0] = check{"config parses", cfgErr}
			return nil
		})
		g.Go(func() error {
			results[1] = check{"cloud CLI on PATH", checkCLI(cfg)}
			return nil
		})
		g.Go(func() error {
			results[2] = check{"providers registered", checkProviders()}
			return nil
		})
		_ = g.Wait()

		failed := false
		for _, c := range results {
			if c.err != nil {
				pterm.Error.Printf("%s: %v\n", c.name, c.err)
				failed = true
			} else {
				pterm.Success.Println(c.name)
			}
		}
		if failed {
			os.Exit(1)
		}
	},
}

// checkCLI verifies the cloud CLI binary is reachable. A nil config still
// checks the default binary; a bastion config skips the local check.
func checkCLI(cfg *config.Config) error {
	binary := "oci"
	if cfg != nil {
		if cfg.Bastion != nil {
			// The CLI lives on the bastion; nothing to check locally.
			return nil
		}
		binary = cfg.CLI
	}
	_, err := exec.LookPath(binary)
	return err
}

func checkProviders() error {
	if len(core.Providers()) == 0 {
		return fmt.Errorf("no provisioners registered")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
