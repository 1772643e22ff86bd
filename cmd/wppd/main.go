package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/matheus3301/wppmcp/internal/config"
	"github.com/matheus3301/wppmcp/internal/daemon"
	"github.com/matheus3301/wppmcp/internal/paths"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	configFlag := flag.String("config", paths.ConfigPath(), "path to config.toml")
	flag.Parse()

	cfg, err := config.Resolve(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: load config: %v\n", err)
		os.Exit(1)
	}

	app := fx.New(
		fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l.Named("fx")}
		}),
		daemon.Module(daemon.Params{Config: cfg, Version: version, Binary: "wppd"}),
	)

	app.Run()
}
