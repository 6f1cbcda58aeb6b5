package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"

	accounts "github.com/goliatone/go-accounts"
)

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("accounts"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg := accounts.FromEnv()
	if err := cfg.Validate(); err != nil {
		lgr.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	app, err := accounts.NewApp(ctx, cfg, accounts.WithAppLogger(lgr.GetLogger("app")))
	if err != nil {
		lgr.Error("failed to assemble service", "error", err)
		os.Exit(1)
	}

	app.StartSessionSweeper(ctx, time.Hour)

	go func() {
		if err := app.Listen(); err != nil {
			lgr.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	lgr.Info("account service listening", "addr", cfg.GetListenAddr())

	WaitExitSignal()

	lgr.Info("shutting down")
	if err := app.Shutdown(); err != nil {
		lgr.Error("shutdown failed", "error", err)
		os.Exit(1)
	}
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
