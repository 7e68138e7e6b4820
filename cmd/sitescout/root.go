package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitescout/internal/log"
)

// NewRootCmd creates the root command for sitescout.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitescout",
		Short: "Company profile scraper for business websites",
		Long: `sitescout crawls a company website starting from its home page.

It verifies the internal links of the home page, classifies them into
page types (about, team, products, contact, news, careers), fetches the
most informative pages within a page budget and extracts a structured
company profile.

Results are stored in a local database and can be browsed with the
history command or served over HTTP with the serve command.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// newLogger returns the sanitizing logger writing to the command's
// error stream.
func newLogger(cmd *cobra.Command) *slog.Logger {
	return log.NewSecureLogger(cmd.ErrOrStderr(), getVerboseFlag(cmd))
}
