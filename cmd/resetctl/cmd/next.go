package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/a2zmarket/a2z-backend/internal/reset"
)

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Compute the next reset boundary for a registration time",
	Long: `Compute the next weekly reset boundary strictly after --now for an
account registered at --registered. Needs no database.

Examples:
  resetctl next --registered 2024-01-01T10:30:00Z
  resetctl next --registered 2024-01-01T00:00:00Z --now 2024-01-08T00:00:00Z`,
	RunE: runNext,
}

func init() {
	nextCmd.Flags().String("registered", "", "registration time (RFC3339)")
	nextCmd.Flags().String("now", "", "evaluation time (RFC3339, default current time)")
	_ = nextCmd.MarkFlagRequired("registered")

	rootCmd.AddCommand(nextCmd)
}

func runNext(cmd *cobra.Command, args []string) error {
	registeredRaw, _ := cmd.Flags().GetString("registered")
	nowRaw, _ := cmd.Flags().GetString("now")

	registered, err := time.Parse(time.RFC3339, registeredRaw)
	if err != nil {
		return fmt.Errorf("invalid --registered: %w", err)
	}
	now := time.Now().UTC()
	if nowRaw != "" {
		if now, err = time.Parse(time.RFC3339, nowRaw); err != nil {
			return fmt.Errorf("invalid --now: %w", err)
		}
	}

	next := reset.ComputeNextResetDate(registered, now)
	days := reset.DaysUntil(next, now)

	out := cmd.OutOrStdout()
	if jsonOut {
		return printJSON(out, map[string]interface{}{
			"registered_at":    registered.UTC(),
			"now":              now.UTC(),
			"next_reset_date":  next,
			"days_until_reset": days,
		})
	}
	return printKV(out, [][2]string{
		{"Next reset", next.Format(time.RFC3339)},
		{"Days until", fmt.Sprintf("%d", days)},
	})
}
