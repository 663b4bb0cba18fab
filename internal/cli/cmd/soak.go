package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/bnema/retain/internal/application/port"
	"github.com/bnema/retain/internal/application/usecase"
	"github.com/bnema/retain/internal/cli"
	"github.com/bnema/retain/internal/cli/model"
	"github.com/bnema/retain/internal/cli/styles"
	"github.com/bnema/retain/internal/config"
	"github.com/bnema/retain/internal/domain/entity"
	"github.com/bnema/retain/internal/infrastructure/hashing"
	"github.com/bnema/retain/internal/infrastructure/memory"
	"github.com/bnema/retain/internal/infrastructure/refmap"
	"github.com/bnema/retain/internal/logging"
)

var soakFlags struct {
	keyRetention   string
	valueRetention string
	workers        int
	keys           int
	duration       time.Duration
	gcInterval     time.Duration
	keep           float64
	concurrency    int
	seed           uint64
	watch          bool
	noProgress     bool
}

var soakCmd = &cobra.Command{
	Use:   "soak",
	Short: "Run concurrent workers against a reference map while forcing collections",
	Long: `Run concurrent workers against a concurrent reference map.

Each worker writes rounds of fresh keys and values, keeps a fraction of them
reachable until its next round, and looks up random keys. A collector forces
a garbage collection and purge on every gc interval. The report compares raw
slots (entries still physically in the table) with live entries.

When either side is soft, a memory pressure monitor releases soft anchors
whenever available memory or the Go memory limit crosses the configured
thresholds. With --watch, edits to config.toml retune the monitor while the
soak runs.

Defaults come from the [soak] and [refmap] config sections.`,
	RunE: runSoak,
}

func init() {
	rootCmd.AddCommand(soakCmd)
	f := soakCmd.Flags()
	f.StringVarP(&soakFlags.keyRetention, "key-retention", "k", "", "strong, weak or soft")
	f.StringVarP(&soakFlags.valueRetention, "value-retention", "v", "", "strong, weak or soft")
	f.IntVarP(&soakFlags.workers, "workers", "w", 0, "number of writer goroutines")
	f.IntVar(&soakFlags.keys, "keys", 0, "keys written per worker and round")
	f.DurationVarP(&soakFlags.duration, "duration", "d", 0, "how long to run")
	f.DurationVar(&soakFlags.gcInterval, "gc-interval", 0, "how often to force a collection")
	f.Float64Var(&soakFlags.keep, "keep", 0, "fraction of objects kept reachable per round")
	f.IntVar(&soakFlags.concurrency, "concurrency", 0, "lock segments")
	f.Uint64Var(&soakFlags.seed, "seed", 1, "random seed")
	f.BoolVar(&soakFlags.watch, "watch", false, "reload memory thresholds when config.toml changes")
	f.BoolVar(&soakFlags.noProgress, "no-progress", false, "disable the live progress view")
}

// soakSettings merges config defaults with the flags that were set.
func soakSettings(cmd *cobra.Command, cfg *config.Config) (usecase.RunSoakInput, config.RefMapConfig, error) {
	in := usecase.RunSoakInput{
		Workers:    cfg.Soak.Workers,
		Keys:       cfg.Soak.Keys,
		Duration:   cfg.Soak.Duration,
		GCInterval: cfg.Soak.GCInterval,
		KeepRatio:  cfg.Soak.KeepRatio,
		Seed:       soakFlags.seed,
	}
	refs := cfg.RefMap

	f := cmd.Flags()
	if f.Changed("key-retention") {
		r, err := entity.ParseRetention(soakFlags.keyRetention)
		if err != nil {
			return in, refs, err
		}
		refs.KeyRetention = r
	}
	if f.Changed("value-retention") {
		r, err := entity.ParseRetention(soakFlags.valueRetention)
		if err != nil {
			return in, refs, err
		}
		refs.ValueRetention = r
	}
	if f.Changed("concurrency") {
		refs.Concurrency = soakFlags.concurrency
	}
	if f.Changed("workers") {
		in.Workers = soakFlags.workers
	}
	if f.Changed("keys") {
		in.Keys = soakFlags.keys
	}
	if f.Changed("duration") {
		in.Duration = soakFlags.duration
	}
	if f.Changed("gc-interval") {
		in.GCInterval = soakFlags.gcInterval
	}
	if f.Changed("keep") {
		in.KeepRatio = soakFlags.keep
	}
	return in, refs, nil
}

func runSoak(cmd *cobra.Command, _ []string) error {
	app := GetApp()
	if app == nil {
		return fmt.Errorf("app not initialized")
	}

	input, refs, err := soakSettings(cmd, app.Config)
	if err != nil {
		return err
	}

	ctx := logging.WithComponent(app.Ctx(), "soak")
	ctx = logging.With(ctx, map[string]any{
		"keys":   refs.KeyRetention.String(),
		"values": refs.ValueRetention.String(),
	})
	log := logging.FromContext(ctx)

	opts := []refmap.Option{
		refmap.WithLogger(*log),
		refmap.WithName("soak"),
		refmap.WithConcurrency(refs.Concurrency),
		refmap.WithInitialCapacity(refs.InitialCapacity),
	}

	var (
		registry *refmap.SoftRegistry
		monitor  *memory.Monitor
	)
	if refs.KeyRetention == entity.RetentionSoft || refs.ValueRetention == entity.RetentionSoft {
		registry = refmap.NewSoftRegistry()
		opts = append(opts, refmap.WithSoftRegistry(registry))
		monitor, err = memory.NewMonitor(memory.NewProbe(), memoryPolicy(app.Config.Memory), *log)
		if err != nil {
			return err
		}
		input.Releaser = registry
	}

	m, err := refmap.NewConcurrent[*usecase.SoakObject, *usecase.SoakObject](
		refs.KeyRetention, refs.ValueRetention,
		hashing.Funcs(usecase.SoakHash, usecase.SoakEqual),
		opts...,
	)
	if err != nil {
		return err
	}

	if soakFlags.watch {
		watchMemoryPolicy(ctx, app, monitor)
	}

	// A nil *Monitor must not become a non-nil interface.
	var pressure port.PressureMonitor
	if monitor != nil {
		pressure = monitor
	}
	uc := usecase.NewRunSoakUseCase(m, pressure)

	// The progress view needs the terminal to itself, so it only runs when
	// logs go to a file.
	var out *usecase.RunSoakOutput
	if !soakFlags.noProgress && app.LogFile != "" && isatty.IsTerminal(os.Stdout.Fd()) {
		out, err = runSoakInteractive(ctx, app.Theme, uc, input)
	} else {
		out, err = uc.Execute(ctx, input)
	}
	if err != nil {
		return err
	}

	info := styles.SoakInfo{
		KeyRetention:   refs.KeyRetention,
		ValueRetention: refs.ValueRetention,
		Segments:       m.Segments(),
		Monitored:      monitor != nil,
	}
	if monitor != nil {
		info.Released = monitor.Released()
	}
	fmt.Fprintln(cmd.OutOrStdout(), styles.NewSoakRenderer(app.Theme).Render(info, out))
	return nil
}

// runSoakInteractive runs the soak behind a Bubble Tea progress view. Pressing
// ctrl+c stops the soak early and still prints the report.
func runSoakInteractive(ctx context.Context, theme *styles.Theme, uc *usecase.RunSoakUseCase, input usecase.RunSoakInput) (*usecase.RunSoakOutput, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(model.NewSoakModel(theme, cancel))
	input.Progress = func(sp usecase.SoakProgress) {
		p.Send(model.SoakProgressMsg(sp))
	}

	result := make(chan model.SoakDoneMsg, 1)
	go func() {
		out, err := uc.Execute(ctx, input)
		done := model.SoakDoneMsg{Output: out, Err: err}
		result <- done
		p.Send(done)
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		logging.FromContext(ctx).Warn().Err(err).Msg("progress view failed, waiting for soak")
	}
	done := <-result
	return done.Output, done.Err
}

// watchMemoryPolicy reloads memory thresholds from config.toml while the
// soak runs. Without a config file there is nothing to watch. The
// subscription ends with ctx.
func watchMemoryPolicy(ctx context.Context, app *cli.App, monitor *memory.Monitor) {
	log := logging.FromContext(ctx)
	if err := app.Manager.Watch(); err != nil {
		log.Warn().Err(err).Msg("config watch disabled")
		return
	}
	cancel := app.Manager.OnConfigChange(func(c *config.Config) {
		if monitor == nil {
			log.Info().Msg("config reloaded, no soft side to retune")
			return
		}
		if err := monitor.SetPolicy(memoryPolicy(c.Memory)); err != nil {
			log.Warn().Err(err).Msg("ignoring reloaded memory policy")
			return
		}
		log.Info().Int("reload", app.Manager.Reloads()).Msg("memory policy updated")
	})
	context.AfterFunc(ctx, cancel)
	log.Info().Str("file", app.Manager.ConfigFile()).Msg("watching config")
}
