// Command wppmcp serves the WhatsApp tools over MCP on stdin and stdout, for
// clients that launch their servers as subprocesses.
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

	// Stdout carries the protocol; fx and zap log to stderr and the log file.
	app := fx.New(
		fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l.Named("fx")}
		}),
		daemon.Stdio(daemon.Params{Config: cfg, Version: version, Binary: "wppmcp"}, os.Stdin, os.Stdout),
	)

	app.Run()
}
