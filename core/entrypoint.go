package core

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/encodeous/dvsim/perf"
	"github.com/encodeous/dvsim/state"
	"github.com/encodeous/tint"
	slogmulti "github.com/samber/slog-multi"
)

type LogCfg struct {
	Level slog.Level
	// W receives console logs, defaults to stderr
	W io.Writer
	// Path, if not empty, is a file that logs are appended to
	Path string
}

// NewLogger builds the console logger, fanned out to a log file when a path is set.
// The returned function closes the log file.
func NewLogger(cfg LogCfg) (*slog.Logger, func() error, error) {
	if cfg.W == nil {
		cfg.W = os.Stderr
	}
	handlers := make([]slog.Handler, 0)
	handlers = append(handlers,
		tint.NewHandler(cfg.W, &tint.Options{
			Level:        cfg.Level,
			AddSource:    false,
			CustomPrefix: "dvsim",
			ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
				if attr.Key == "time" {
					return slog.Attr{}
				}
				return attr
			},
		}))

	closer := func() error { return nil }
	if cfg.Path != "" {
		err := os.MkdirAll(path.Dir(cfg.Path), 0700)
		if err != nil {
			return nil, nil, err
		}
		f, err := os.OpenFile(cfg.Path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0600)
		if err != nil {
			return nil, nil, err
		}
		handlers = append(handlers, slog.NewTextHandler(f, &slog.HandlerOptions{Level: cfg.Level}))
		closer = f.Close
	}

	return slog.New(slogmulti.Fanout(handlers...)), closer, nil
}

// Start runs a scenario to completion, writing tables to out.
func Start(ctx context.Context, sc *state.ScenarioCfg, out io.Writer, logCfg LogCfg) error {
	if logCfg.Path == "" {
		logCfg.Path = sc.Sim.LogPath
	}
	logger, closeLog, err := NewLogger(logCfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeLog(); err != nil {
			logger.Error("failed to close log file", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s := NewSession(SessionCfg{
		Out:       out,
		Log:       logger,
		MaxRounds: sc.GetMaxRounds(),
		Trace:     sc.Sim.Trace,
	})
	s.log.Debug("starting session", "routers", len(sc.Routers), "links", len(sc.Links), "updates", len(sc.Updates))
	err = s.Execute(ctx, sc)
	logPerf(s.log)
	if err != nil {
		s.log.Error("session failed", "error", err)
		return err
	}
	s.log.Debug("session complete")
	return nil
}

func logPerf(log *slog.Logger) {
	log.Debug("perf",
		"engine_runs", perf.EngineRuns.String(),
		"capped_runs", perf.CappedRuns.String(),
		"rounds_to_converge", perf.RoundsToConverge.String(),
		"run_latency_us", perf.RunLatency.String(),
	)
}
