package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "List free accounts due for a reset",
	RunE:  runDue,
}

func init() {
	rootCmd.AddCommand(dueCmd)
}

func runDue(cmd *cobra.Command, args []string) error {
	p, err := openPipeline()
	if err != nil {
		return err
	}
	defer p.Close()

	ids, err := p.scheduler.ListFreeUsersDueForReset(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		return printJSON(out, map[string]interface{}{
			"user_ids": ids,
			"count":    len(ids),
		})
	}
	if len(ids) == 0 {
		fmt.Fprintln(out, "No accounts due")
		return nil
	}
	for _, id := range ids {
		fmt.Fprintln(out, id.String())
	}
	fmt.Fprintf(out, "\n%d account(s) due\n", len(ids))
	return nil
}
