package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/Mirroar/hivemind-sub000/agent"
	"github.com/Mirroar/hivemind-sub000/config"
	"github.com/Mirroar/hivemind-sub000/ipc"
	"github.com/Mirroar/hivemind-sub000/plan"
)

const banner = `
██╗  ██╗██╗██╗   ██╗███████╗
██║  ██║██║██║   ██║██╔════╝
███████║██║██║   ██║█████╗
██╔══██║██║╚██╗ ██╔╝██╔══╝
██║  ██║██║ ╚████╔╝ ███████╗
╚═╝  ╚═╝╚═╝  ╚═══╝  ╚══════╝

Territory Layout Planner`

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (defaults apply when empty)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintln(os.Stderr, "config:", err)
			os.Exit(1)
		}
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	fmt.Println(banner)

	slog.Info("starting hivemind", "strategy", cfg.Planner.Strategy, "ordering", cfg.Reconcile.Ordering, "store", cfg.Store.Driver)

	store, err := openStore(cfg.Store)
	if err != nil {
		slog.Error("failed to open plan store", "driver", cfg.Store.Driver, "path", cfg.Store.Path, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	a, err := agent.New(cfg, store, logger)
	if err != nil {
		slog.Error("failed to start agent", "error", err)
		os.Exit(1)
	}

	socketPath := cfg.Socket

	// Unix sockets leave behind a file on unclean shutdown; remove it so we can rebind.
	if err := os.RemoveAll(socketPath); err != nil {
		slog.Error("failed to clean up socket", "path", socketPath, "error", err)
		os.Exit(1)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		slog.Error("failed to listen on socket", "path", socketPath, "error", err)
		os.Exit(1)
	}
	defer listener.Close()
	defer os.Remove(socketPath)

	slog.Info("listening on domain socket", "path", socketPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				select {
				case <-ctx.Done():
					return
				default:
					slog.Error("failed to accept connection", "error", err)
					continue
				}
			}
			slog.Info("new connection accepted")
			go handleConn(ctx, conn, a)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
}

func openStore(c config.Store) (plan.Store, error) {
	if c.Driver == "sqlite" {
		s, err := plan.OpenSQLite(c.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return plan.NewMemoryStore(), nil
}

func handleConn(ctx context.Context, conn net.Conn, a *agent.Agent) {
	c := ipc.NewConnection(conn, nil)
	a.Register(c)
	c.Serve(ctx)
}
