package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"

	"github.com/Tomasito665/mtv-rhythm-generator/config"
	"github.com/Tomasito665/mtv-rhythm-generator/logger"
	"github.com/Tomasito665/mtv-rhythm-generator/oscserver"
	"github.com/Tomasito665/mtv-rhythm-generator/render"
	"github.com/Tomasito665/mtv-rhythm-generator/session"
	"github.com/Tomasito665/mtv-rhythm-generator/space"
	"github.com/Tomasito665/mtv-rhythm-generator/tension"
	"github.com/Tomasito665/mtv-rhythm-generator/tui"
	goerrors "github.com/gruntwork-io/go-commons/errors"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"k8s.io/utils/clock"
)

type flags struct {
	configPath  string
	preset      string
	listPresets bool
	meter       string
	unit        string
	shape       string
	curve       string
	spread      float64
	draws       int
	seed        uint64
	noTUI       bool
	osc         bool
	logLevel    string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := Run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, goerrors.PrintErrorWithStackTrace(err))
		os.Exit(1)
	}
}

func parseFlags(args []string) (flags, *flag.FlagSet, error) {
	f := flags{}
	fs := flag.NewFlagSet("mtv-rhythm-generator", flag.ContinueOnError)
	fs.StringVar(&f.configPath, "config", "", "YAML config file")
	fs.StringVar(&f.preset, "preset", "", "named meter preset, see -list-presets")
	fs.BoolVar(&f.listPresets, "list-presets", false, "print the meter presets and exit")
	fs.StringVar(&f.meter, "meter", "", "time signature, e.g. 6/8")
	fs.StringVar(&f.unit, "unit", "", "step unit, e.g. sixteenth or 1/16")
	fs.StringVar(&f.shape, "shape", string(tension.ShapeInOutSine), "tension curve shape when no -curve is given")
	fs.StringVar(&f.curve, "curve", "", "comma separated tension curve, resampled to the step count")
	fs.Float64Var(&f.spread, "spread", -1, "distance spread of random draws (default from config)")
	fs.IntVar(&f.draws, "draws", 4, "number of random patterns to draw")
	fs.Uint64Var(&f.seed, "seed", 0, "seed for random draws (default from config)")
	fs.BoolVar(&f.noTUI, "no-tui", false, "log fill progress instead of showing a progress bar")
	fs.BoolVar(&f.osc, "osc", false, "serve OSC queries after the fill until interrupted")
	fs.StringVar(&f.logLevel, "log-level", "", "log level (default from config)")

	if err := fs.Parse(args); err != nil {
		return flags{}, nil, err
	}
	return f, fs, nil
}

func loadConfig(f flags, fs *flag.FlagSet) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if f.configPath != "" {
		cfg, err = config.Load(f.configPath)
	} else {
		cfg, err = config.NewConfig()
	}
	if err != nil {
		return config.Config{}, err
	}

	if f.preset != "" {
		if err := cfg.ApplyPreset(f.preset); err != nil {
			return config.Config{}, err
		}
	}

	// explicitly set flags win over the config file
	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "meter":
			cfg.TimeSignature = f.meter
		case "unit":
			cfg.StepUnit = f.unit
		case "spread":
			cfg.DistanceSD = f.spread
		case "seed":
			cfg.Seed = f.seed
		case "log-level":
			cfg.LogLevel = f.logLevel
		case "osc":
			cfg.OSC.Enabled = f.osc
		}
	})

	return cfg, cfg.Validate()
}

// Run builds the rhythm space for the configured meter, prints the patterns closest to the
// requested tension curve and optionally serves OSC queries until ctx is done.
func Run(ctx context.Context, args []string, out io.Writer) error {
	f, fs, err := parseFlags(args)
	if err != nil {
		return err
	}

	// initialize the global config
	cfg, err := loadConfig(f, fs)
	if err != nil {
		return err
	}

	if f.listPresets {
		names := make([]string, 0, len(cfg.Presets))
		for name := range cfg.Presets {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			p := cfg.Presets[name]
			fmt.Fprintf(out, "%-10s %-5s %-10s %s\n", name, p.TimeSignature, p.StepUnit, p.Description)
		}
		return nil
	}

	// initialize the logger
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		return err
	}

	ts, stepUnit, err := cfg.Meter()
	if err != nil {
		return err
	}

	sess := session.New(clock.RealClock{}, session.Options{
		Seed:             cfg.Seed,
		MaxDimensions:    cfg.MaxDimensions,
		DistanceSD:       cfg.DistanceSD,
		ProgressInterval: cfg.ProgressInterval.Duration(),
	})

	var sp *space.Space
	if f.noTUI {
		sp, err = fillWithLogs(ctx, sess, cfg)
	} else {
		// the progress view owns the terminal while filling
		logger.SetOutput(io.Discard)
		sp, err = tui.RunFill(ctx, sess, ts, stepUnit)
		logger.SetOutput(os.Stderr)
	}
	if err != nil {
		return goerrors.WithStackTrace(err)
	}

	curve, err := targetCurve(f)
	if err != nil {
		return err
	}
	if err := printPatterns(out, sess, sp, curve, f.draws); err != nil {
		return goerrors.WithStackTrace(err)
	}

	if !cfg.OSC.Enabled {
		return nil
	}
	return serveOSC(ctx, sess, cfg)
}

func fillWithLogs(ctx context.Context, sess *session.Session, cfg config.Config) (*space.Space, error) {
	logger := logger.GetProjectLogger()

	ts, stepUnit, err := cfg.Meter()
	if err != nil {
		return nil, err
	}

	_, err = sess.Reset(ts, stepUnit, func(done float64) {
		logger.WithFields(logrus.Fields{"progress": fmt.Sprintf("%.0f%%", done*100)}).Info("Filling...")
	})
	if err != nil {
		return nil, err
	}
	return sess.Wait(ctx)
}

func targetCurve(f flags) ([]float64, error) {
	if f.curve != "" {
		return tension.Parse(f.curve)
	}

	shape, err := tension.ParseShape(f.shape)
	if err != nil {
		return nil, err
	}
	// shapes are sampled finely and resampled to the space by the session
	return tension.FromShape(shape, 64)
}

func printPatterns(out io.Writer, sess *session.Session, sp *space.Space, curve []float64, draws int) error {
	target := tension.Resample(curve, sp.Dimensions())
	fmt.Fprintf(out, "%s in %s, %d patterns\n\n", sp.TimeSignature(), sp.StepUnit().Name(), sp.PatternCount())
	fmt.Fprintf(out, "%-10s%s\n%-10s%s\n\n", "target", render.TensionBars(target), "", render.Curve(target))

	closest, err := sess.Closest(curve)
	if err != nil {
		return err
	}
	mtv, err := sess.MTV(closest.ID())
	if err != nil {
		return err
	}
	fmt.Fprintln(out, render.Summary("closest", closest, mtv))

	for i := 0; i < draws; i++ {
		p, err := sess.RandomClose(curve, -1)
		if err != nil {
			return err
		}
		mtv, err := sess.MTV(p.ID())
		if err != nil {
			return err
		}
		d, err := sess.Distance(curve, p.ID())
		if err != nil {
			return err
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, render.Summary(fmt.Sprintf("random %d", i+1), p, mtv))
		fmt.Fprintf(out, "%-10sdistance %.3f\n", "", d)
	}
	return nil
}

func serveOSC(ctx context.Context, sess *session.Session, cfg config.Config) error {
	logger := logger.GetProjectLogger()

	replier, err := oscserver.NewReplier(cfg.OSC.ReplyAddr)
	if err != nil {
		return err
	}
	d, err := oscserver.NewDispatcher(ctx, sess, replier)
	if err != nil {
		return err
	}

	wg := sync.WaitGroup{}
	wg.Add(1)
	var serveErr error
	go func() {
		defer wg.Done()
		serveErr = oscserver.ListenAndServe(ctx, cfg.OSC.ListenAddr, d)
	}()

	logger.WithFields(logrus.Fields{"listen": cfg.OSC.ListenAddr, "reply": cfg.OSC.ReplyAddr}).
		Info("Serving OSC queries until interrupted...")
	wg.Wait()
	logger.Info("Shutting down")
	return serveErr
}
