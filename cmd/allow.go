package cmd

import (
	"errors"
	"os"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/stratus-cloud/stratus/internal/core"
)

var allowCmd = &cobra.Command{
	Use:   "allow",
	Short: "Open ingress traffic on a stack's security list",
}

var allowPortCmd = &cobra.Command{
	Use:   "port <start> [end]",
	Short: "Allow inbound TCP on a port or port range",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		stackName, _ := cmd.Flags().GetString("stack")
		source, _ := cmd.Flags().GetString("source")

		start, err := strconv.Atoi(args[0])
		if err != nil {
			pterm.Error.Printf("Invalid port %q\n", args[0])
			os.Exit(1)
		}
		end := 0
		if len(args) == 2 {
			if end, err = strconv.Atoi(args[1]); err != nil {
				pterm.Error.Printf("Invalid port %q\n", args[1])
				os.Exit(1)
			}
		}

		prov, cleanup := resolveStack(cmd, stackName)
		defer cleanup()

		fw, ok := prov.(core.Firewaller)
		if !ok {
			pterm.Error.Println("Provider does not support firewall rules")
			os.Exit(1)
		}

		if err := fw.AllowPort(cmd.Context(), start, end, source); err != nil {
			reportAllowError(err)
			return
		}
		pterm.Success.Printf("Inbound TCP %s open\n", args[0])
	},
}

var allowICMPCmd = &cobra.Command{
	Use:   "icmp",
	Short: "Allow inbound ICMP, optionally restricted to one type/code",
	Run: func(cmd *cobra.Command, args []string) {
		stackName, _ := cmd.Flags().GetString("stack")
		source, _ := cmd.Flags().GetString("source")

		var icmpType, icmpCode *int
		if cmd.Flags().Changed("type") {
			v, _ := cmd.Flags().GetInt("type")
			icmpType = &v
		}
		if cmd.Flags().Changed("code") {
			v, _ := cmd.Flags().GetInt("code")
			icmpCode = &v
		}

		prov, cleanup := resolveStack(cmd, stackName)
		defer cleanup()

		fw, ok := prov.(core.Firewaller)
		if !ok {
			pterm.Error.Println("Provider does not support firewall rules")
			os.Exit(1)
		}

		if err := fw.AllowICMP(cmd.Context(), icmpType, icmpCode, source); err != nil {
			reportAllowError(err)
			return
		}
		pterm.Success.Println("Inbound ICMP open")
	},
}

// reportAllowError downgrades a missing-stack precondition to a warning so
// scripted callers are not broken by an unattached machine; everything else
// is fatal.
func reportAllowError(err error) {
	var pre *core.PreconditionError
	if errors.As(err, &pre) {
		pterm.Warning.Printf("Skipped: %v\n", pre)
		return
	}
	pterm.Error.Println(err)
	os.Exit(1)
}

func init() {
	rootCmd.AddCommand(allowCmd)
	allowCmd.AddCommand(allowPortCmd)
	allowCmd.AddCommand(allowICMPCmd)

	allowCmd.PersistentFlags().String("stack", "", "stack to modify")
	allowCmd.PersistentFlags().String("source", "", "source CIDR (default 0.0.0.0/0)")
	allowICMPCmd.Flags().Int("type", 0, "ICMP type")
	allowICMPCmd.Flags().Int("code", 0, "ICMP code")
}
