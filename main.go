// Command sudoku-with-friends runs the multiplayer Sudoku server.
//
// The server holds rooms of shared boards in memory and relays cell edits
// between the players of each room over WebSocket. Flags control host and
// port, the empty-room grace period, debug logging, an optional static
// directory for the browser client, and optional ngrok tunneling for easy
// external access during development.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/davefol/sudoku-with-friends/api"
	"github.com/davefol/sudoku-with-friends/game/room"
	"github.com/davefol/sudoku-with-friends/transport/websocket"
)

const (
	Version = "1.0.0"
	AppName = "Sudoku With Friends"
)

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: error loading .env file: %v\n", err)
	}

	cmd := &cli.Command{
		Name:    "sudoku-with-friends",
		Usage:   "multiplayer Sudoku server",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "host",
				Value:   "localhost",
				Usage:   "HTTP server host",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.IntFlag{
				Name:    "port",
				Value:   3000,
				Usage:   "HTTP server port",
				Sources: cli.EnvVars("PORT"),
			},
			&cli.DurationFlag{
				Name:    "room-grace",
				Value:   room.DefaultGrace,
				Usage:   "how long an empty room survives before it is reaped",
				Sources: cli.EnvVars("ROOM_GRACE"),
			},
			&cli.StringFlag{
				Name:    "static-dir",
				Usage:   "directory of browser client files to serve (empty disables)",
				Sources: cli.EnvVars("STATIC_DIR"),
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "enable debug logging",
				Sources: cli.EnvVars("DEBUG"),
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "expose the server through an ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "custom ngrok domain (optional)",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runServer(ctx, serverOptions{
				host:        cmd.String("host"),
				port:        int(cmd.Int("port")),
				roomGrace:   cmd.Duration("room-grace"),
				staticDir:   cmd.String("static-dir"),
				debug:       cmd.Bool("debug"),
				ngrok:       cmd.Bool("ngrok"),
				ngrokDomain: cmd.String("ngrok-domain"),
			})
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

type serverOptions struct {
	host        string
	port        int
	roomGrace   time.Duration
	staticDir   string
	debug       bool
	ngrok       bool
	ngrokDomain string
}

// newLogger returns text logs at debug level when debug is set, JSON logs
// at info level otherwise.
func newLogger(debug bool) *slog.Logger {
	if debug {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// runServer wires the registry, gateway, and HTTP server together and
// blocks until the context is cancelled or a shutdown signal arrives.
func runServer(ctx context.Context, opts serverOptions) error {
	log := newLogger(opts.debug)
	log.Info("starting server", "app", AppName, "version", Version)

	registry := room.NewRegistry(opts.roomGrace, log)
	hub := websocket.NewHub(registry, log)
	apiServer := api.NewServer(registry, hub, log, opts.staticDir)

	addr := fmt.Sprintf("%s:%d", opts.host, opts.port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           apiServer,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", addr)
		log.Info("websocket endpoint", "url", fmt.Sprintf("ws://%s/ws", addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	if opts.ngrok {
		go func() {
			if err := runNgrokTunnel(ctx, apiServer, opts.ngrokDomain, log); err != nil {
				log.Error("ngrok tunnel failed", "err", err)
			}
		}()
	}

	select {
	case sig := <-stop:
		log.Info("shutting down", "signal", sig.String())
	case <-ctx.Done():
		log.Info("shutting down", "reason", "context cancelled")
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("http server shutdown", "err", err)
	}

	log.Info("server stopped")
	return nil
}

// runNgrokTunnel serves the same handler through a public ngrok endpoint.
// The auth token comes from the NGROK_AUTHTOKEN environment variable.
func runNgrokTunnel(ctx context.Context, handler http.Handler, domain string, log *slog.Logger) error {
	authToken := os.Getenv("NGROK_AUTHTOKEN")
	if authToken == "" {
		return fmt.Errorf("ngrok enabled but NGROK_AUTHTOKEN is not set")
	}

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		return err
	}
	defer tun.Close()

	log.Info("ngrok tunnel established", "url", tun.URL())

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
