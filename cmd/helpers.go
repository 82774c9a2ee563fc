package cmd

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/stratus-cloud/stratus/internal/config"
	"github.com/stratus-cloud/stratus/internal/core"
	"github.com/stratus-cloud/stratus/internal/transport"
)

// mustLoadConfig loads the configured yaml file or exits.
func mustLoadConfig(cmd *cobra.Command) *config.Config {
	path, _ := cmd.Root().PersistentFlags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		pterm.Error.Printf("Config could not be loaded: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// newTransport picks where the cloud CLI runs: a bastion host when one is
// configured, the local machine otherwise.
func newTransport(cfg *config.Config) core.Transport {
	if cfg.Bastion == nil {
		return core.NewLocalTransport()
	}
	t, err := transport.NewSSHTransport(*cfg.Bastion)
	if err != nil {
		pterm.Error.Printf("Bastion connection failed: %v\n", err)
		os.Exit(1)
	}
	return t
}

// resolveStack constructs the provisioner for one stack and rediscovers its
// identifiers from the control plane.
func resolveStack(cmd *cobra.Command, stackName string) (core.NetworkProvisioner, func()) {
	cfg := mustLoadConfig(cmd)
	stack, err := cfg.FindStack(stackName)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	tr := newTransport(cfg)
	prov, err := core.NewProvisioner(stack, tr)
	if err != nil {
		pterm.Error.Println(err)
		tr.Close()
		os.Exit(1)
	}

	if r, ok := prov.(core.Resolver); ok {
		if err := r.Resolve(cmd.Context()); err != nil {
			pterm.Error.Printf("Stack %s could not be resolved: %v\n", stack.Name, err)
			tr.Close()
			os.Exit(1)
		}
	}
	return prov, func() { tr.Close() }
}
