// ABOUTME: Application container built on samber/do
// ABOUTME: Constructs config, logger, storage, tool registry, auditor, and orchestrator once per process
package app

import (
	"fmt"
	"io"
	"os"

	"github.com/samber/do/v2"
	"github.com/sirupsen/logrus"

	"github.com/AiWithAadil/spec-driven-todo-ai/internal/audit"
	"github.com/AiWithAadil/spec-driven-todo-ai/internal/config"
	"github.com/AiWithAadil/spec-driven-todo-ai/internal/core"
	"github.com/AiWithAadil/spec-driven-todo-ai/internal/storage/sqlite"
	"github.com/AiWithAadil/spec-driven-todo-ai/internal/tools"
)

// App owns the injector. Services are built lazily on first use and shared afterwards.
type App struct {
	injector do.Injector
}

// Option adjusts how the container is built
type Option func(*options)

type options struct {
	logOutput io.Writer
	inMemory  bool
}

// WithLogOutput sends logs somewhere other than stderr
func WithLogOutput(w io.Writer) Option {
	return func(o *options) { o.logOutput = w }
}

// WithInMemoryStorage uses a throwaway in-memory database instead of cfg.DBPath
func WithInMemoryStorage() Option {
	return func(o *options) { o.inMemory = true }
}

// New registers every provider for cfg
func New(cfg *config.Config, opts ...Option) *App {
	o := &options{logOutput: os.Stderr}
	for _, opt := range opts {
		opt(o)
	}

	injector := do.New()
	do.ProvideValue(injector, cfg)
	do.Provide(injector, provideLogger(o.logOutput))
	do.Provide(injector, provideStorage(o.inMemory))
	do.Provide(injector, provideRegistry)
	do.Provide(injector, provideAuditor)
	do.Provide(injector, provideOrchestrator)

	return &App{injector: injector}
}

func provideLogger(out io.Writer) func(do.Injector) (logrus.FieldLogger, error) {
	return func(i do.Injector) (logrus.FieldLogger, error) {
		cfg, err := do.Invoke[*config.Config](i)
		if err != nil {
			return nil, err
		}
		return cfg.NewLogger(out), nil
	}
}

func provideStorage(inMemory bool) func(do.Injector) (*sqlite.Storage, error) {
	return func(i do.Injector) (*sqlite.Storage, error) {
		cfg, err := do.Invoke[*config.Config](i)
		if err != nil {
			return nil, err
		}
		log, err := do.Invoke[logrus.FieldLogger](i)
		if err != nil {
			return nil, err
		}

		opts := []sqlite.Option{
			sqlite.WithRetry(cfg.TxRetries, cfg.TxRetryDelay),
			sqlite.WithLogger(log.WithField("component", "storage")),
		}
		if inMemory {
			return sqlite.NewStorageInMemory(opts...)
		}
		return sqlite.NewStorageWithPath(cfg.DBPath, opts...)
	}
}

func provideRegistry(do.Injector) (*tools.Registry, error) {
	return tools.NewRegistry(), nil
}

func provideAuditor(i do.Injector) (*audit.Auditor, error) {
	cfg, err := do.Invoke[*config.Config](i)
	if err != nil {
		return nil, err
	}
	log, err := do.Invoke[logrus.FieldLogger](i)
	if err != nil {
		return nil, err
	}
	registry, err := do.Invoke[*tools.Registry](i)
	if err != nil {
		return nil, err
	}
	return audit.New(registry, audit.WithTimeout(cfg.ToolTimeout), audit.WithLogger(log)), nil
}

func provideOrchestrator(i do.Injector) (*core.Orchestrator, error) {
	store, err := do.Invoke[*sqlite.Storage](i)
	if err != nil {
		return nil, err
	}
	auditor, err := do.Invoke[*audit.Auditor](i)
	if err != nil {
		return nil, err
	}
	log, err := do.Invoke[logrus.FieldLogger](i)
	if err != nil {
		return nil, err
	}
	return core.NewOrchestrator(store, auditor, log), nil
}

// Config returns the configuration the container was built with
func (a *App) Config() *config.Config {
	return do.MustInvoke[*config.Config](a.injector)
}

// Logger returns the shared logger
func (a *App) Logger() (logrus.FieldLogger, error) {
	log, err := do.Invoke[logrus.FieldLogger](a.injector)
	if err != nil {
		return nil, fmt.Errorf("resolve logger: %w", err)
	}
	return log, nil
}

// Storage returns the shared storage, opening the database on first use
func (a *App) Storage() (*sqlite.Storage, error) {
	store, err := do.Invoke[*sqlite.Storage](a.injector)
	if err != nil {
		return nil, fmt.Errorf("resolve storage: %w", err)
	}
	return store, nil
}

// Registry returns the tool registry
func (a *App) Registry() (*tools.Registry, error) {
	registry, err := do.Invoke[*tools.Registry](a.injector)
	if err != nil {
		return nil, fmt.Errorf("resolve tool registry: %w", err)
	}
	return registry, nil
}

// Orchestrator returns the conversation orchestrator
func (a *App) Orchestrator() (*core.Orchestrator, error) {
	o, err := do.Invoke[*core.Orchestrator](a.injector)
	if err != nil {
		return nil, fmt.Errorf("resolve orchestrator: %w", err)
	}
	return o, nil
}

// Close shuts the injector down, closing storage if it was opened
func (a *App) Close() {
	_ = a.injector.Shutdown()
}
