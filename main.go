package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/soocke/score-ocr-go/app"
	"github.com/soocke/score-ocr-go/config"
	_ "github.com/soocke/score-ocr-go/domain/capture/opencv"
	"github.com/soocke/score-ocr-go/ui/prompt"
	"github.com/soocke/score-ocr-go/ui/setup"
	"github.com/soocke/score-ocr-go/ui/view"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags, err := config.ParseFlags(args, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return app.ExitOK
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return app.ExitConfig
	}

	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config %s: %v\n", flags.ConfigPath, err)
		return app.ExitConfig
	}
	flags.Apply(cfg)

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := NewLogger(level)

	if flags.SaveConfig {
		if err := cfg.Save(flags.ConfigPath); err != nil {
			logger.Warn("config not saved", "path", flags.ConfigPath, "error", err)
		}
	}
	if err := view.EnableDPIAwareness(); err != nil {
		logger.Debug("dpi awareness not enabled", "error", err)
	}

	var setupFn app.SetupFunc
	switch flags.Setup {
	case config.SetupConsole:
		setupFn = app.ConsoleSetup(os.Stdin, os.Stdout, logger, app.Preset{
			Interval: flags.Given("interval"),
			Source:   flags.Given("source"),
		})
	case config.SetupGUI:
		setupFn = func(cfg *config.Config) (prompt.Result, bool) {
			return setup.NewDialog(cfg, logger).Run()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = app.NewApp(cfg, logger, os.Stdout, setupFn).Run(ctx)
	if err != nil {
		logger.Error("session ended with error", "error", err)
	}
	return app.ExitCode(err)
}
