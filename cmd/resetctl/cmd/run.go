package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/a2zmarket/a2z-backend/internal/models"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one reset batch now",
	Long: `Run a full batch through the same locked, audited path as the
server's worker. Fails with a lock error if another run is in progress.`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	p, err := openPipeline()
	if err != nil {
		return err
	}
	defer p.Close()

	run, err := p.job.Execute(cmd.Context(), models.TriggerCLI)
	if run == nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		if perr := printJSON(out, run); perr != nil {
			return perr
		}
		return err
	}

	if perr := printKV(out, [][2]string{
		{"Run", run.ID.String()},
		{"Duration", run.Duration().String()},
		{"Scanned", fmt.Sprintf("%d", run.Scanned)},
		{"Due", fmt.Sprintf("%d", run.Due)},
		{"Succeeded", fmt.Sprintf("%d", run.Succeeded)},
		{"Failed", fmt.Sprintf("%d", run.Failed)},
		{"Skipped", fmt.Sprintf("%d", run.Skipped)},
	}); perr != nil {
		return perr
	}
	for _, id := range run.FailedIDs() {
		fmt.Fprintf(out, "  failed: %s\n", id)
	}
	return err
}
