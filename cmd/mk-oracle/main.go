package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/nmslite/mkoracle/internal/backend"
	"github.com/nmslite/mkoracle/internal/config"
	"github.com/nmslite/mkoracle/internal/types"
)

const (
	exitConfigError  = 1
	exitConnectError = 2
)

// pointList collects repeated -point flags.
type pointList []types.PointName

func (p *pointList) String() string {
	names := make([]string, len(*p))
	for i, n := range *p {
		names[i] = n.String()
	}
	return strings.Join(names, ",")
}

func (p *pointList) Set(v string) error {
	*p = append(*p, types.PointName(v))
	return nil
}

func main() {
	configPath := flag.String("config", "mk-oracle.yml", "Path to the configuration file")
	var points pointList
	flag.Var(&points, "point", "Monitor the endpoint under this point name (repeatable)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("Failed to load configuration: %v", err)
		os.Exit(exitConfigError)
	}

	logger := initLogger(cfg.Logging)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tasks, err := buildTasks(cfg.Endpoint(), points)
	if err != nil {
		logger.Error("Failed to build tasks", "error", err)
		os.Exit(exitConfigError)
	}
	logger.Info("Tasks built", "count", len(tasks))

	if failed := connectAll(ctx, tasks, logger); failed > 0 {
		logger.Error("Some tasks failed to connect", "failed", failed)
		os.Exit(exitConnectError)
	}
}

// buildTasks creates one task per point, or a single task for the endpoint's
// own point when none are given. Without a configured backend or database
// the default task helpers are used.
func buildTasks(endpoint config.Endpoint, points []types.PointName) ([]*backend.Task, error) {
	conn := endpoint.Conn()
	database, hasDatabase := conn.Database()

	if conn.Backend() == "" && !hasDatabase {
		if len(points) == 0 {
			t, err := backend.MakeTask(endpoint)
			if err != nil {
				return nil, err
			}
			return []*backend.Task{t}, nil
		}
		tasks := make([]*backend.Task, 0, len(points))
		for _, p := range points {
			t, err := backend.MakeCustomTask(endpoint, p)
			if err != nil {
				return nil, err
			}
			tasks = append(tasks, t)
		}
		return tasks, nil
	}

	var b backend.Backend = backend.SqlPlusBackend{}
	if conn.Backend() != "" {
		var err error
		if b, err = backend.New(conn.Backend()); err != nil {
			return nil, err
		}
	}
	var dbName *string
	if hasDatabase {
		dbName = &database
	}

	if len(points) == 0 {
		points = []types.PointName{conn.Point()}
	}
	tasks := make([]*backend.Task, 0, len(points))
	for _, p := range points {
		ep := config.NewEndpoint(endpoint.Hostname(), endpoint.Port(), conn.WithPoint(p), endpoint.Auth())
		t, err := backend.NewTaskBuilder().
			Target(ep).
			Backend(b).
			Database(dbName).
			Build()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// connectAll connects every task concurrently and returns how many failed
// for a reason other than an unimplemented backend.
func connectAll(ctx context.Context, tasks []*backend.Task, logger *slog.Logger) int {
	results := make([]error, len(tasks))

	var g errgroup.Group
	for i, t := range tasks {
		i, t := i, t
		g.Go(func() error {
			target := t.Target()
			taskLogger := logger.With(
				"task_id", t.ID().String(),
				"target", target.EasyConnect(),
				"backend", t.Backend().Kind().String(),
			)

			if creds, ok := backend.ObtainConfigCredentials(target.Auth); ok {
				taskLogger.Debug("Resolved credentials", "credentials", creds)
			} else {
				taskLogger.Debug("Using operating system authentication")
			}

			err := t.Connect(ctx)
			switch {
			case err == nil:
				taskLogger.Info("Connected")
			case errors.Is(err, backend.ErrUnimplementedBackend):
				taskLogger.Warn("Backend not supported yet", "error", err)
			default:
				taskLogger.Error("Connection failed", "error", err)
				results[i] = err
			}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, err := range results {
		if err != nil {
			failed++
		}
	}
	return failed
}

func initLogger(cfg config.LoggingConfig) *slog.Logger {
	var handler slog.Handler

	// Set log level
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	// Set format
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
