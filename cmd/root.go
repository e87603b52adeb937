package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "restock-sniper",
	Short: "Retail restock monitoring and checkout bot",
	Long: `Restock sniper polls retail offer listings for configured items,
qualifies seller offers against price, condition, shipping and merchant
constraints, and hands qualifying offers to an automated two-phase checkout.

Monitoring rides rotating proxy groups with per-worker failure breakers;
CAPTCHA challenges are forwarded to an external solving service.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
