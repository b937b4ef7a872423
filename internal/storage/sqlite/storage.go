// ABOUTME: Unified Storage layer that wraps all SQLite stores
// ABOUTME: Runs each chat turn in one transaction with savepoints and busy retries
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AiWithAadil/spec-driven-todo-ai/internal/util"
)

// Storage manages all persistent data using SQLite
type Storage struct {
	db            *DB
	conversations *ConversationStore
	messages      *MessageStore
	todos         *TodoStore
	invocations   *InvocationStore
	maxRetries    int
	backoff       util.Backoff
	log           logrus.FieldLogger
}

// Option configures a Storage
type Option func(*Storage)

// WithRetry sets how often a transaction that hit a busy database is retried
func WithRetry(maxRetries int, baseDelay time.Duration) Option {
	return func(s *Storage) {
		s.maxRetries = maxRetries
		s.backoff = util.Backoff{Base: baseDelay}
	}
}

// WithLogger sets the logger used for retry diagnostics
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Storage) {
		s.log = log
	}
}

// NewStorage initializes storage at the default XDG path
func NewStorage(opts ...Option) (*Storage, error) {
	return NewStorageWithPath(DefaultDBPath(), opts...)
}

// NewStorageWithPath initializes storage with a custom database path
func NewStorageWithPath(dbPath string, opts ...Option) (*Storage, error) {
	db, err := Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return newStorage(db, opts...), nil
}

// NewStorageInMemory creates an in-memory storage (for testing)
func NewStorageInMemory(opts ...Option) (*Storage, error) {
	db, err := OpenInMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	return newStorage(db, opts...), nil
}

func newStorage(db *DB, opts ...Option) *Storage {
	s := &Storage{
		db:            db,
		conversations: NewConversationStore(db),
		messages:      NewMessageStore(db),
		todos:         NewTodoStore(db),
		invocations:   NewInvocationStore(db),
		maxRetries:    3,
		backoff:       util.Backoff{Base: 50 * time.Millisecond},
		log:           logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithField("component", "storage")
	return s
}

// Close closes the database connection
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Shutdown closes the database when the owning injector shuts down
func (s *Storage) Shutdown() error {
	return s.Close()
}

// Path returns the database path
func (s *Storage) Path() string {
	return s.db.Path()
}

// Conversations returns the non-transactional conversation store
func (s *Storage) Conversations() *ConversationStore { return s.conversations }

// Messages returns the non-transactional message store
func (s *Storage) Messages() *MessageStore { return s.messages }

// Todos returns the non-transactional todo store
func (s *Storage) Todos() *TodoStore { return s.todos }

// Invocations returns the non-transactional audit store
func (s *Storage) Invocations() *InvocationStore { return s.invocations }

// Tx exposes every store bound to one database transaction
type Tx struct {
	tx            *sql.Tx
	Conversations *ConversationStore
	Messages      *MessageStore
	Todos         *TodoStore
	Invocations   *InvocationStore
}

// WithTx runs fn in a transaction, committing on nil and rolling back otherwise.
// fn may run more than once when the database reports it is busy.
func (s *Storage) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			delay := s.backoff.Delay(attempt)
			s.log.WithFields(logrus.Fields{"attempt": attempt, "delay": delay}).
				Warn("database busy, retrying transaction")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err = s.runTx(ctx, fn)
		if err == nil || !IsBusy(err) || attempt >= s.maxRetries {
			return err
		}
	}
}

func (s *Storage) runTx(ctx context.Context, fn func(tx *Tx) error) (err error) {
	sqlTx, err := s.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := sqlTx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			s.log.WithError(rbErr).Error("rollback failed")
		}
		if p := recover(); p != nil {
			panic(p)
		}
	}()

	tx := &Tx{
		tx:            sqlTx,
		Conversations: NewConversationStore(sqlTx),
		Messages:      NewMessageStore(sqlTx),
		Todos:         NewTodoStore(sqlTx),
		Invocations:   NewInvocationStore(sqlTx),
	}
	if err := fn(tx); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	committed = true
	return nil
}

var savepointName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func checkSavepoint(name string) error {
	if !savepointName.MatchString(name) {
		return fmt.Errorf("invalid savepoint name %q", name)
	}
	return nil
}

// Savepoint opens a nested savepoint inside the transaction
func (t *Tx) Savepoint(ctx context.Context, name string) error {
	if err := checkSavepoint(name); err != nil {
		return err
	}
	_, err := t.tx.ExecContext(ctx, "SAVEPOINT "+name)
	return err
}

// RollbackTo discards writes made since the savepoint and releases it
func (t *Tx) RollbackTo(ctx context.Context, name string) error {
	if err := checkSavepoint(name); err != nil {
		return err
	}
	if _, err := t.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name); err != nil {
		return err
	}
	_, err := t.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name)
	return err
}

// Release keeps writes made since the savepoint
func (t *Tx) Release(ctx context.Context, name string) error {
	if err := checkSavepoint(name); err != nil {
		return err
	}
	_, err := t.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name)
	return err
}

// IsBusy reports whether err came from a locked or busy database
func IsBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}
