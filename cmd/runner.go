package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/scsync/internal/reconcile"
	"github.com/desertthunder/scsync/internal/services"
	"github.com/desertthunder/scsync/internal/shared"
	"github.com/desertthunder/scsync/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Collaborators left nil are built from the loaded configuration on first use.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	providers  *services.Providers
	fetcher    services.Fetcher
	scanner    services.Scanner
	pacer      tasks.Pacer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Providers  *services.Providers
	Fetcher    services.Fetcher
	Scanner    services.Scanner
	Pacer      tasks.Pacer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		providers:  opts.Providers,
		fetcher:    opts.Fetcher,
		scanner:    opts.Scanner,
		pacer:      opts.Pacer,
	}
}

// SetLogger replaces the logger used by the runner and by collaborators built afterwards.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// configure loads the configuration named by --config, applies .env overrides and the log level.
//
// A missing config file keeps the current configuration.
func (r *Runner) configure(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}

	if r.configPath != "" {
		if _, err := os.Stat(r.configPath); err == nil {
			config, err := shared.LoadConfig(r.configPath)
			if err != nil {
				return ctx, err
			}
			r.config = config
			r.logger.Debug("loaded config", "path", r.configPath)
		}
	}
	r.config.ApplyEnv()

	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	return ctx, nil
}

// wire builds every collaborator not supplied through [RunnerOpts].
func (r *Runner) wire() {
	cfg := r.config
	token := cfg.Credentials.SoundCloud.Token
	interval := cfg.Pacing.RequestInterval

	if r.providers == nil {
		prober := services.NewLinkProber(services.ProberOpts{
			Token:           token,
			RequestInterval: interval,
			Transport:       r.httpClient.Transport,
			Logger:          r.logger,
		})
		r.providers = &services.Providers{
			SoundCloud: services.NewSoundCloudService(services.SoundCloudOpts{
				YTDLPPath:       cfg.Tools.YTDLPPath,
				Token:           token,
				RequestInterval: interval,
				Prober:          prober,
				Logger:          r.logger,
			}),
			YouTube: services.NewYouTubeService(services.YouTubeOpts{
				HTTPClient:      r.httpClient,
				RequestInterval: interval,
				Logger:          r.logger,
			}),
		}
	}
	if r.fetcher == nil {
		r.fetcher = services.NewYTDLPFetcher(services.FetcherOpts{
			YTDLPPath:       cfg.Tools.YTDLPPath,
			Token:           token,
			RequestInterval: interval,
			Logger:          r.logger,
		})
	}
	if r.scanner == nil {
		r.scanner = services.NewID3Reader(r.logger)
	}
}

func (r *Runner) reconciler() *reconcile.Reconciler {
	return reconcile.NewReconciler(reconcile.Options{TieBreak: reconcile.TieBreak(r.config.Matching.TieBreak)})
}

// provider wires collaborators and resolves the provider serving collectionURL.
func (r *Runner) provider(collectionURL string) (services.Provider, error) {
	if collectionURL == "" {
		return nil, fmt.Errorf("%w: collection url", shared.ErrMissingArgument)
	}
	r.wire()
	return r.providers.Resolve(collectionURL)
}

// pathFlag returns the flag value when it was given, including an empty string, and fallback otherwise.
func pathFlag(cmd *cli.Command, name, fallback string) string {
	if cmd.IsSet(name) {
		return cmd.String(name)
	}
	return fallback
}

// printProgress writes progress messages to the runner output until progress is closed.
// The returned func blocks until the last message is written.
func (r *Runner) printProgress(progress <-chan tasks.ProgressUpdate) (wait func()) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			switch update.Phase {
			case tasks.InspectTrack, tasks.FetchTrack, tasks.PaceTrack:
				r.logger.Debug(update.Message, "phase", update.Phase)
			case tasks.RecordTrack:
				r.writePlain("   %s\n", update.Message)
			default:
				r.writePlain("%s\n", update.Message)
			}
		}
	}()
	return func() { <-done }
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
