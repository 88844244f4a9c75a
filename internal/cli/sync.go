package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/dl-alexandre/rmirror/internal/config"
	"github.com/dl-alexandre/rmirror/internal/errors"
	"github.com/dl-alexandre/rmirror/internal/lock"
	"github.com/dl-alexandre/rmirror/internal/logging"
	"github.com/dl-alexandre/rmirror/internal/provider"
	"github.com/dl-alexandre/rmirror/internal/resolver"
	syncengine "github.com/dl-alexandre/rmirror/internal/sync"
	"github.com/dl-alexandre/rmirror/internal/sync/index"
	"github.com/dl-alexandre/rmirror/internal/types"
	"github.com/dl-alexandre/rmirror/internal/utils"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync [org/repo]",
	Short: "Mirror a remote tree into a local directory",
	Long: `Mirror a remote tree into a local directory.

With the github provider the argument is an org/repo coordinate; when it is
missing or malformed the configured default repository is used instead.
With --provider gdrive, --folder names the public Drive folder to mirror.

The command exits 0 once the walk completes, even when single items failed;
failures are listed in the summary.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSync,
}

var (
	syncRef      string
	syncDest     string
	syncProvider string
	syncFolder   string
)

func init() {
	syncCmd.Flags().StringVar(&syncRef, "ref", "", "Branch, tag or commit to mirror (github)")
	syncCmd.Flags().StringVar(&syncDest, "dest", "", "Destination directory (default ./<repo> or ./<folder-id>)")
	syncCmd.Flags().StringVar(&syncProvider, "provider", "", "Content provider (github, gdrive); defaults to the configured provider")
	syncCmd.Flags().StringVar(&syncFolder, "folder", "", "Drive folder ID to mirror (gdrive)")

	rootCmd.AddCommand(syncCmd)
}

// syncRequest is one sync invocation after flag parsing
type syncRequest struct {
	Coordinate string
	Ref        string
	Dest       string
	Provider   string
	FolderID   string
}

// syncRunner carries everything a sync needs besides the request. Tests
// build it directly.
type syncRunner struct {
	cfg       *config.Config
	logger    logging.Logger
	configDir string
	transport *logging.DebugTransport

	// overrides for tests
	driveEndpoint string
	tempDir       string
	now           func() time.Time
}

func runSync(cmd *cobra.Command, args []string) error {
	flags := GetGlobalFlags()
	out := NewOutputWriter(flags.OutputFormat, flags.Quiet, flags.Verbose)

	cfg, err := loadConfig()
	if err != nil {
		return out.WriteError("sync", utils.NewCLIError(utils.ErrCodeInvalidConfig, err.Error()).Build())
	}
	configDir, err := config.GetConfigDir()
	if err != nil {
		return out.WriteError("sync", utils.NewCLIError(utils.ErrCodeInvalidConfig, err.Error()).Build())
	}

	req := syncRequest{
		Ref:      syncRef,
		Dest:     syncDest,
		Provider: syncProvider,
		FolderID: syncFolder,
	}
	if len(args) > 0 {
		req.Coordinate = args[0]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runner := &syncRunner{
		cfg:       cfg,
		logger:    GetLogger(),
		configDir: configDir,
		transport: debugTransport,
	}
	summary, err := runner.run(ctx, req, out)
	if err != nil {
		return out.WriteError("sync", errors.Classify(err, out.TraceID(), runner.logger))
	}

	if flags.OutputFormat != types.OutputFormatJSON {
		for _, f := range summary.Stats.Failures {
			out.Log("failed: %s (%s): %s", f.Path, f.Kind, f.Error)
		}
	}
	return out.WriteSuccess("sync", summary)
}

func (r *syncRunner) run(ctx context.Context, req syncRequest, out *OutputWriter) (*types.SyncSummary, error) {
	runID := out.TraceID()
	log := r.logger.WithTraceID(runID)
	ctx = logging.ContextWithTraceID(ctx, runID)

	providerName := req.Provider
	if providerName == "" {
		providerName = r.cfg.DefaultProvider
	}

	target, err := r.resolveTarget(ctx, providerName, req, out, log)
	if err != nil {
		return nil, err
	}

	dest := req.Dest
	if dest == "" {
		dest = "." + string(filepath.Separator) + target.defaultDir
	}
	dest, err = filepath.Abs(dest)
	if err != nil {
		return nil, utils.NewAppError(utils.NewCLIError(utils.ErrCodeInvalidArgument, err.Error()).Build())
	}

	destLock, err := lock.New(filepath.Join(r.configDir, "locks"), dest)
	if err != nil {
		return nil, err
	}
	if err := destLock.Acquire(); err != nil {
		return nil, err
	}
	defer func() {
		if err := destLock.Release(); err != nil {
			log.Warn("Failed to release destination lock", logging.F("error", err.Error()))
		}
	}()

	now := r.now
	if now == nil {
		now = time.Now
	}
	engine := syncengine.New(target.provider, syncengine.Options{
		TempDir: r.tempDir,
		Now:     now,
		Logger:  log,
	})

	log.Info("Starting synchronization",
		logging.F("repository", target.label),
		logging.F("provider", providerName),
		logging.F("destination", dest),
	)
	started := now()
	stats, err := engine.Run(ctx, target.rootRef, dest)
	if err != nil {
		return nil, err
	}
	finished := now()

	summary := &types.SyncSummary{
		Repository:  target.label,
		Provider:    providerName,
		Destination: dest,
		RunID:       runID,
		Stats:       stats,
	}

	if r.cfg.RecordHistory {
		if err := r.recordRun(ctx, summary, started, finished); err != nil {
			log.Warn("Failed to record run history", logging.F("error", err.Error()))
			out.AddWarning(utils.ErrCodeHistoryError, fmt.Sprintf("run history not recorded: %v", err), "warning")
		}
	}
	return summary, nil
}

type syncTarget struct {
	provider   provider.ContentProvider
	rootRef    string
	label      string
	defaultDir string
}

func (r *syncRunner) resolveTarget(ctx context.Context, providerName string, req syncRequest, out *OutputWriter, log logging.Logger) (*syncTarget, error) {
	switch providerName {
	case utils.ProviderGitHub:
		res, err := resolver.Resolve(req.Coordinate, r.cfg.DefaultRepository)
		if err != nil {
			return nil, utils.NewAppError(utils.NewCLIError(utils.ErrCodeInvalidConfig, err.Error()).Build())
		}
		if res.FellBack {
			msg := fmt.Sprintf("no repository given, using default %s", res.Coordinate)
			if res.Rejected != nil {
				msg = fmt.Sprintf("%v, using default %s", res.Rejected, res.Coordinate)
			}
			log.Warn("Falling back to default repository",
				logging.F("input", req.Coordinate),
				logging.F("repository", res.Coordinate.String()),
			)
			out.AddWarning("COORDINATE_FALLBACK", msg, "warning")
		}

		ref := req.Ref
		if ref == "" {
			ref = r.cfg.DefaultRef
		}
		gh := provider.NewGitHubProvider(provider.GitHubOptions{
			BaseURL:   r.cfg.APIBaseURL,
			UserAgent: r.cfg.UserAgent,
			Timeout:   r.cfg.GetRequestTimeout(),
			Logger:    log,
			Debug:     r.transport != nil,
		})
		return &syncTarget{
			provider:   gh,
			rootRef:    gh.RootRef(res.Coordinate, ref),
			label:      res.Coordinate.String(),
			defaultDir: res.Coordinate.Repo,
		}, nil

	case utils.ProviderDrive:
		folder := req.FolderID
		if folder == "" {
			return nil, utils.NewAppError(utils.NewCLIError(utils.ErrCodeInvalidArgument,
				"--folder is required with the gdrive provider").Build())
		}
		var rt http.RoundTripper
		if r.transport != nil {
			rt = r.transport
		}
		drive, err := provider.NewDriveProvider(ctx, provider.DriveOptions{
			APIKey:    r.cfg.DriveAPIKey,
			Endpoint:  r.driveEndpoint,
			Transport: rt,
			Timeout:   r.cfg.GetRequestTimeout(),
			Logger:    log,
		})
		if err != nil {
			return nil, err
		}
		return &syncTarget{
			provider:   drive,
			rootRef:    folder,
			label:      folder,
			defaultDir: folder,
		}, nil

	default:
		return nil, utils.NewAppError(utils.NewCLIError(utils.ErrCodeInvalidArgument,
			fmt.Sprintf("unknown provider %q (must be '%s' or '%s')", providerName, utils.ProviderGitHub, utils.ProviderDrive)).Build())
	}
}

func (r *syncRunner) recordRun(ctx context.Context, summary *types.SyncSummary, started, finished time.Time) error {
	db, err := index.Open(filepath.Join(r.configDir, index.FileName))
	if err != nil {
		return err
	}
	defer db.Close()

	stats := summary.Stats
	return db.RecordRun(ctx, types.RunRecord{
		ID:          summary.RunID,
		Repository:  summary.Repository,
		Provider:    summary.Provider,
		Destination: summary.Destination,
		StartedAt:   started,
		FinishedAt:  finished,
		Downloaded:  stats.Downloaded,
		Displaced:   stats.Displaced,
		Errors:      stats.Errors,
		Bytes:       stats.Bytes,
	}, stats.Failures)
}
