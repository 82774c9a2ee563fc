package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	// Registers the provider with the core registry.
	_ "github.com/stratus-cloud/stratus/internal/adapters/oci"
)

var rootCmd = &cobra.Command{
	Use:   "stratus",
	Short: "Provision cloud network stacks from the command line.",
	Long: `Stratus provisions and tears down a virtual network stack (network,
subnet, internet gateway, default route, ingress rules) by driving the
cloud provider's CLI, and manages firewall rules on top of it.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "stratus.yaml", "config file path")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug logging")

	cobra.OnInitialize(func() {
		level := slog.LevelInfo
		if v, _ := rootCmd.PersistentFlags().GetBool("verbose"); v {
			level = slog.LevelDebug
		}
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		})
		slog.SetDefault(slog.New(handler))
	})
}
