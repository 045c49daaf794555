package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/hylee/internal/app"
	"github.com/hyperifyio/hylee/internal/archive"
	"github.com/hyperifyio/hylee/internal/config"
	"github.com/hyperifyio/hylee/internal/logging"
)

// mode selects what a single invocation does besides the full harvest.
type mode struct {
	version     bool
	listYear    int
	dayPath     string
	searchTerm  string
	searchLimit int
}

func main() {
	cfg, m, err := loadConfig(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if m.version {
		fmt.Println("hylee", app.Version())
		return
	}
	closer, err := logging.Setup(logging.Options{Console: os.Stderr, Verbose: cfg.Verbose, ErrorLog: cfg.ErrorLog})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, m, os.Stdout); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn().Msg("interrupted; days collected so far were saved")
			os.Exit(130)
		}
		log.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
}

// loadConfig layers defaults, the config file, dotenv files, HYLEE_*
// variables and finally flags. The flag set is parsed twice: once to find the
// config and env file paths, then onto the merged base so explicit flags win.
func loadConfig(args []string) (config.Config, mode, error) {
	var m mode
	probe := config.Defaults()
	pre := flag.NewFlagSet("hylee", flag.ContinueOnError)
	pre.SetOutput(io.Discard)
	config.BindFlags(pre, &probe)
	bindModeFlags(pre, &m)
	if err := pre.Parse(args); err != nil {
		// Report usage errors from the real parse below.
		probe = config.Defaults()
	}

	if probe.EnvFiles != "" {
		if err := config.LoadEnvFiles(config.SplitList(probe.EnvFiles)...); err != nil {
			return config.Config{}, m, err
		}
	}
	cfg := config.Defaults()
	if probe.ConfigFile != "" {
		fc, err := config.LoadFile(probe.ConfigFile)
		if err != nil {
			return config.Config{}, m, fmt.Errorf("load config: %w", err)
		}
		config.ApplyFile(&cfg, fc)
	}
	if err := config.ApplyEnv(&cfg); err != nil {
		return config.Config{}, m, err
	}

	m = mode{}
	fs := flag.NewFlagSet("hylee", flag.ContinueOnError)
	config.BindFlags(fs, &cfg)
	bindModeFlags(fs, &m)
	if err := fs.Parse(args); err != nil {
		return config.Config{}, m, err
	}
	if err := config.Validate(cfg); err != nil {
		return config.Config{}, m, err
	}
	return cfg, m, nil
}

func bindModeFlags(fs *flag.FlagSet, m *mode) {
	fs.BoolVar(&m.version, "version", false, "Print version and exit")
	fs.IntVar(&m.listYear, "list", 0, "Print the daily pages of YEAR and exit")
	fs.StringVar(&m.dayPath, "day", "", "Extract one daily page (path relative to base) and print its bulletins")
	fs.StringVar(&m.searchTerm, "search", "", "Print bulletins stored in -sqlite containing TERM")
	fs.IntVar(&m.searchLimit, "search.limit", 50, "Maximum search results")
}

func run(ctx context.Context, cfg config.Config, m mode, out io.Writer) error {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	switch {
	case m.listYear != 0:
		return a.ListYear(ctx, m.listYear, out)
	case m.dayPath != "":
		return a.InspectDay(ctx, m.dayPath, out)
	case m.searchTerm != "":
		return a.Search(ctx, m.searchTerm, m.searchLimit, out)
	}

	summaries, err := a.Run(ctx)
	if err != nil {
		return err
	}
	saved := 0
	for _, s := range summaries {
		if s.Saved {
			saved++
		}
	}
	log.Info().Int("years", len(summaries)).Int("saved", saved).Msg("harvest complete")
	if saved == 0 {
		return errNothingSaved(summaries)
	}
	return nil
}

func errNothingSaved(summaries []archive.YearSummary) error {
	if len(summaries) == 1 {
		return fmt.Errorf("year %d produced no bulletins", summaries[0].Year)
	}
	return fmt.Errorf("none of %d years produced bulletins", len(summaries))
}
