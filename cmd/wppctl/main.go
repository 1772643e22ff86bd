package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/matheus3301/wppmcp/internal/config"
	"github.com/matheus3301/wppmcp/internal/paths"
	"github.com/matheus3301/wppmcp/internal/tui/client"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func main() {
	configFlag := flag.String("config", paths.ConfigPath(), "path to config.toml")
	socketFlag := flag.String("socket", "", "daemon socket (overrides config)")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Resolve(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: load config: %v\n", err)
		os.Exit(1)
	}

	// config needs no daemon.
	if args[0] == "config" {
		cmdConfig(*configFlag, cfg, args[1:])
		return
	}

	socketPath := *socketFlag
	if socketPath == "" {
		socketPath = cfg.Socket()
	}
	c, err := client.New(socketPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: cannot connect to daemon at %s: %v\n", socketPath, err)
		os.Exit(1)
	}
	defer func() { _ = c.Close() }()

	if args[0] == "watch" {
		cmdWatch(c, *jsonFlag)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch args[0] {
	case "status":
		cmdStatus(ctx, c, *jsonFlag)
	case "tools":
		cmdTools(ctx, c, *jsonFlag)
	case "call":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: wppctl call <tool> [key=value ...]")
			os.Exit(1)
		}
		cmdCall(ctx, c, args[1], args[2:], *jsonFlag)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: wppctl [--config <path>] [--socket <path>] [--json] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  status                        Show bridge health and daemon uptime")
	fmt.Fprintln(os.Stderr, "  tools                         List available tools")
	fmt.Fprintln(os.Stderr, "  call <tool> [key=value ...]   Run a tool")
	fmt.Fprintln(os.Stderr, "  watch                         Stream daemon events until interrupted")
	fmt.Fprintln(os.Stderr, "  config                        Print the resolved configuration")
	fmt.Fprintln(os.Stderr, "  config init                   Write the resolved configuration to --config")
}

func fail(err error) {
	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.Unavailable:
			fmt.Fprintln(os.Stderr, "error: daemon not running (start wppd)")
			os.Exit(1)
		case codes.NotFound, codes.InvalidArgument:
			fmt.Fprintf(os.Stderr, "error: %s\n", st.Message())
			os.Exit(2)
		}
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

func cmdStatus(ctx context.Context, c *client.Client, jsonOut bool) {
	st, err := c.GetStatus(ctx)
	if err != nil {
		fail(err)
	}
	if jsonOut {
		outputJSON(st)
		return
	}
	fmt.Printf("Bridge:  %s", st.Bridge)
	if st.BridgeSince != "" {
		fmt.Printf(" (since %s)", st.BridgeSince)
	}
	fmt.Println()
	if st.LastError != "" {
		fmt.Printf("Error:   %s\n", st.LastError)
	}
	fmt.Printf("Tools:   %d\n", st.Tools)
	fmt.Printf("Uptime:  %s\n", (time.Duration(st.UptimeMS) * time.Millisecond).Round(time.Second))
}

func cmdTools(ctx context.Context, c *client.Client, jsonOut bool) {
	list, err := c.ListTools(ctx)
	if err != nil {
		fail(err)
	}
	if jsonOut {
		outputJSON(list)
		return
	}
	for _, t := range list {
		fmt.Printf("%-28s %s\n", t.Name, t.Description)
		for _, p := range t.Params {
			req := ""
			if p.Required {
				req = " (required)"
			}
			fmt.Printf("    %-24s %s%s\n", p.Name, p.Type, req)
		}
	}
}

func cmdCall(ctx context.Context, c *client.Client, name string, pairs []string, jsonOut bool) {
	list, err := c.ListTools(ctx)
	if err != nil {
		fail(err)
	}
	var params []client.Param
	for _, t := range list {
		if t.Name == name {
			params = t.Params
		}
	}
	toolArgs, err := parseToolArgs(params, pairs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	res, err := c.CallTool(ctx, name, toolArgs)
	if err != nil {
		fail(err)
	}
	switch {
	case jsonOut:
		outputJSON(res)
	case res.Text != "":
		fmt.Println(res.Text)
	default:
		outputJSON(res.Data)
	}
	if res.IsError {
		os.Exit(1)
	}
}

func cmdWatch(c *client.Client, jsonOut bool) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := c.WatchEvents(ctx, func(evt client.Event) error {
		if jsonOut {
			outputJSON(evt)
			return nil
		}
		fmt.Printf("%s  %-24s %s\n", evt.Timestamp.Local().Format("15:04:05.000"), evt.Kind, summarize(evt.Payload))
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		fail(err)
	}
}

// summarize renders an event payload as sorted key=value pairs.
func summarize(payload map[string]any) string {
	if len(payload) == 0 {
		return ""
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprint(payload)
	}
	// encoding/json sorts map keys, which keeps the line stable.
	return strings.Trim(string(raw), "{}")
}

func cmdConfig(path string, cfg *config.Config, args []string) {
	if len(args) == 0 {
		outputJSON(cfg)
		return
	}
	switch args[0] {
	case "init":
		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(os.Stderr, "error: %s already exists\n", path)
			os.Exit(1)
		}
		if err := config.Save(path, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", path)
	case "path":
		fmt.Println(path)
	default:
		fmt.Fprintf(os.Stderr, "unknown config subcommand: %s\n", args[0])
		os.Exit(1)
	}
}

func outputJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "json encode error: %v\n", err)
	}
}
