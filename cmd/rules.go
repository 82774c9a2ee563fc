package cmd

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/stratus-cloud/stratus/internal/core"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the ingress rules on a stack's security list",
	Run: func(cmd *cobra.Command, args []string) {
		stackName, _ := cmd.Flags().GetString("stack")

		prov, cleanup := resolveStack(cmd, stackName)
		defer cleanup()

		lister, ok := prov.(core.RuleLister)
		if !ok {
			pterm.Error.Println("Provider does not support rule listing")
			os.Exit(1)
		}

		rules, err := lister.ListRules(cmd.Context())
		if err != nil {
			pterm.Error.Printf("Rules could not be fetched: %v\n", err)
			os.Exit(1)
		}

		rows := pterm.TableData{{"#", "Protocol", "Source", "Ports", "ICMP"}}
		for i, r := range rules {
			ports := "-"
			if r.PortMin > 0 {
				ports = fmt.Sprintf("%d-%d", r.PortMin, r.PortMax)
			}
			icmp := "-"
			if r.ICMPType != nil {
				icmp = fmt.Sprintf("type %d", *r.ICMPType)
				if r.ICMPCode != nil {
					icmp += fmt.Sprintf(" code %d", *r.ICMPCode)
				}
			}
			rows = append(rows, []string{
				fmt.Sprint(i + 1), r.Protocol, r.Source, ports, icmp,
			})
		}
		_ = pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.Flags().String("stack", "", "stack to inspect")
}
