package cli

import (
	"context"
	"path/filepath"

	"github.com/dl-alexandre/rmirror/internal/config"
	"github.com/dl-alexandre/rmirror/internal/sync/index"
	"github.com/dl-alexandre/rmirror/internal/types"
	"github.com/dl-alexandre/rmirror/internal/utils"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded synchronization runs",
	Long:  "List recorded synchronization runs, newest first. With --run, list the failures of one run.",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var (
	historyLimit int
	historyRun   string
)

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to list (0 for all)")
	historyCmd.Flags().StringVar(&historyRun, "run", "", "Show the failures of this run ID")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	flags := GetGlobalFlags()
	ctx := context.Background()
	out := NewOutputWriter(flags.OutputFormat, flags.Quiet, flags.Verbose)

	if historyLimit < 0 {
		return out.WriteError("history", utils.NewCLIError(utils.ErrCodeInvalidArgument, "--limit must not be negative").Build())
	}

	db, err := openHistoryDB()
	if err != nil {
		return out.WriteError("history", utils.NewCLIError(utils.ErrCodeHistoryError, err.Error()).Build())
	}
	defer db.Close()

	if historyRun != "" {
		failures, err := db.ListFailures(ctx, historyRun)
		if err != nil {
			return out.WriteError("history", utils.NewCLIError(utils.ErrCodeHistoryError, err.Error()).Build())
		}
		return out.WriteSuccess("history.run", &types.RunFailures{RunID: historyRun, Failures: failures})
	}

	runs, err := db.ListRuns(ctx, historyLimit)
	if err != nil {
		return out.WriteError("history", utils.NewCLIError(utils.ErrCodeHistoryError, err.Error()).Build())
	}
	if runs == nil {
		runs = []*types.RunRecord{}
	}
	return out.WriteSuccess("history", &types.RunHistory{Runs: runs})
}

func openHistoryDB() (*index.DB, error) {
	configDir, err := config.GetConfigDir()
	if err != nil {
		return nil, err
	}
	return index.Open(filepath.Join(configDir, index.FileName))
}
