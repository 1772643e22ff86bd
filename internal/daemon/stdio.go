package daemon

import (
	"context"
	"io"

	"github.com/matheus3301/wppmcp/internal/mcpserver"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Stdio returns the fx module for the stdio MCP binary: the tool core with
// the protocol on in and out instead of the socket and SSE listeners. The
// app shuts itself down when the client closes its end.
func Stdio(p Params, in io.Reader, out io.Writer) fx.Option {
	return fx.Module("stdio",
		fx.Supply(p),
		Core(),
		fx.Invoke(func(lc fx.Lifecycle, sd fx.Shutdowner, srv *mcpserver.Server, logger *zap.Logger) {
			registerStdio(lc, sd, srv, in, out, logger)
		}),
	)
}

func registerStdio(lc fx.Lifecycle, sd fx.Shutdowner, srv *mcpserver.Server, in io.Reader, out io.Writer, logger *zap.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				code := 0
				if err := srv.ServeStdio(ctx, in, out); err != nil {
					logger.Error("stdio transport failed", zap.Error(err))
					code = 1
				}
				if ctx.Err() == nil {
					_ = sd.Shutdown(fx.ExitCode(code))
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
				logger.Warn("stdio transport did not stop in time")
			}
			return nil
		},
	})
}
