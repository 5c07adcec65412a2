package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/a2zmarket/a2z-backend/internal/reset"
)

var infoCmd = &cobra.Command{
	Use:   "info <user-id>",
	Short: "Show a free account's reset cycle",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	userID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}

	p, err := openPipeline()
	if err != nil {
		return err
	}
	defer p.Close()

	info, err := p.scheduler.GetResetInfo(cmd.Context(), userID)
	if errors.Is(err, reset.ErrNotFreeTier) {
		if jsonOut {
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{"user_id": userID, "eligible": false})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Account is not on the free tier")
		return nil
	}
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(cmd.OutOrStdout(), info)
	}
	last := "never"
	if info.LastResetAt != nil {
		last = info.LastResetAt.UTC().Format(time.RFC3339)
	}
	return printKV(cmd.OutOrStdout(), [][2]string{
		{"User", info.UserID.String()},
		{"Next reset", info.NextResetDate.Format(time.RFC3339)},
		{"Days until", fmt.Sprintf("%d", info.DaysUntilReset)},
		{"Reset day", fmt.Sprintf("%t", info.IsResetDay)},
		{"Warning day", fmt.Sprintf("%t", info.IsWarningDay)},
		{"Last reset", last},
	})
}
