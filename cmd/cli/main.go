package main

import (
	"fmt"
	"os"

	"gosus/internal"
	"gosus/internal/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cliContext carries what every subcommand needs after startup
type cliContext struct {
	config *config.Config
	logger *internal.Logger
}

func newRootCmd() *cobra.Command {
	cc := &cliContext{}

	rootCmd := &cobra.Command{
		Use:           "gosus",
		Short:         "System Usability Scale scoring and significance testing",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// .env is optional
			_ = godotenv.Load()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			cc.config = cfg
			cc.logger = internal.NewLogger(internal.ParseLogLevel(cfg.Log.Level)).WithField("component", "cli")
			return nil
		},
	}

	rootCmd.AddCommand(
		newValidateCmd(cc),
		newDescribeCmd(cc),
		newAnalyzeCmd(cc),
		newAssumptionsCmd(cc),
		newReportCmd(cc),
		newSampleCmd(),
	)
	return rootCmd
}
