package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/matheus3301/wppmcp/internal/config"
	"github.com/matheus3301/wppmcp/internal/paths"
	"github.com/matheus3301/wppmcp/internal/tui"
	"github.com/matheus3301/wppmcp/internal/tui/client"
)

var version = "dev"

func main() {
	configFlag := flag.String("config", paths.ConfigPath(), "path to config.toml")
	socketFlag := flag.String("socket", "", "daemon socket (overrides config)")
	noStart := flag.Bool("no-start", false, "do not start wppd when it is not running")
	flag.Parse()

	cfg, err := config.Resolve(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: load config: %v\n", err)
		os.Exit(1)
	}
	socketPath := *socketFlag
	if socketPath == "" {
		socketPath = cfg.Socket()
	}

	// Probe daemon health; auto-start if needed.
	if !probeDaemon(socketPath) {
		if *noStart {
			fmt.Fprintf(os.Stderr, "daemon not running at %s\n", socketPath)
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "daemon not running, starting...")
		if err := startDaemon(*configFlag); err != nil {
			fmt.Fprintf(os.Stderr, "failed to start daemon: %v\n", err)
			os.Exit(1)
		}
		if !waitForDaemon(socketPath, 10*time.Second) {
			fmt.Fprintf(os.Stderr, "daemon did not become ready\n")
			os.Exit(1)
		}
	}

	c, err := client.New(socketPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to daemon: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = c.Close() }()

	app := tui.NewApp(c, socketPath, version)
	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// probeDaemon checks the daemon answers a real RPC, not just that the socket
// exists. Each probe dials afresh so a failed attempt's backoff does not carry
// over.
func probeDaemon(socketPath string) bool {
	c, err := client.New(socketPath)
	if err != nil {
		return false
	}
	defer func() { _ = c.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err = c.GetStatus(ctx)
	return err == nil
}

func startDaemon(configPath string) error {
	executable, err := os.Executable()
	if err != nil {
		return err
	}
	wppd := filepath.Join(filepath.Dir(executable), "wppd")

	if _, err := os.Stat(wppd); err != nil {
		wppd = "wppd"
	}

	cmd := exec.Command(wppd, "--config", configPath)
	// Inherit stderr so daemon startup errors are visible.
	cmd.Stderr = os.Stderr
	return cmd.Start()
}

func waitForDaemon(socketPath string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if probeDaemon(socketPath) {
			return true
		}
		time.Sleep(300 * time.Millisecond)
	}
	return false
}
