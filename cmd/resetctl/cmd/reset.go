package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset <user-id>",
	Short: "Reset one free account if it is due",
	Long: `Delete every listing of a due free account and zero its counter.
Accounts that are not due, unknown, or on a paid tier are left untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	userID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}

	p, err := openPipeline()
	if err != nil {
		return err
	}
	defer p.Close()

	ok, err := p.scheduler.ResetAccount(cmd.Context(), userID)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(cmd.OutOrStdout(), map[string]interface{}{"user_id": userID, "reset": ok})
	}
	if ok {
		fmt.Fprintf(cmd.OutOrStdout(), "Account %s reset\n", userID)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Account %s not reset (not due, not free, or unknown)\n", userID)
	}
	return nil
}
