package cmd

import (
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/stratus-cloud/stratus/internal/config"
)

const starterConfig = `# stratus configuration
cli: oci

stacks:
  - name: %NAME%
    provider: oci
    region: us-ashburn-1
    profile: DEFAULT
    # cidr: 172.16.0.0/16
    # managed: false   # attach to an existing network by name instead
    rules:
      - protocol: tcp
        port: 443
        when: Region == "us-ashburn-1"
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter stratus.yaml",
	Run: func(cmd *cobra.Command, args []string) {
		path, _ := cmd.Root().PersistentFlags().GetString("config")

		if _, err := os.Stat(path); err == nil {
			pterm.Warning.Printf("%s already exists, leaving it alone\n", path)
			return
		}

		content := strings.ReplaceAll(starterConfig, "%NAME%", config.GenerateStackName())
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			pterm.Error.Printf("Config could not be written: %v\n", err)
			os.Exit(1)
		}
		pterm.Success.Printf("Wrote %s\n", path)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
