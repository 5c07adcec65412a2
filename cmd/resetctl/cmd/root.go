// Package cmd implements resetctl, the operator CLI for the free-tier reset.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/a2zmarket/a2z-backend/internal/logging"
)

var (
	jsonOut  bool
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "resetctl",
	Short: "Inspect and run the A2Z free-tier listing reset",
	Long: `resetctl works directly against the marketplace database using the
same DB_* and REDIS_* environment variables as the API server.

Examples:
  resetctl next --registered 2024-01-01T00:00:00Z
  resetctl info 3f1c...
  resetctl due
  resetctl reset 3f1c...
  resetctl run`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(logLevel)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "print JSON output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
}

// Execute runs the root command. SIGINT or SIGTERM cancels the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printKV(w io.Writer, rows [][2]string) error {
	t := newTable(w)
	for _, r := range rows {
		fmt.Fprintf(t, "%s:\t%s\n", r[0], r[1])
	}
	return t.Flush()
}
