// ABOUTME: Tests for unified Storage wrapper
// ABOUTME: Verifies transaction commit, rollback, savepoints, and busy detection
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/AiWithAadil/spec-driven-todo-ai/internal/models"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	store, err := NewStorageInMemory(WithRetry(2, time.Millisecond))
	if err != nil {
		t.Fatalf("NewStorageInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func countTodos(t *testing.T, store *Storage, userID string) int {
	t.Helper()
	todos, err := store.Todos().List(context.Background(), userID, TodoFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	return len(todos)
}

func TestStorageInMemory(t *testing.T) {
	store := newTestStorage(t)
	if store.Path() != ":memory:" {
		t.Errorf("Path() = %v, want :memory:", store.Path())
	}
	if countTodos(t, store, "alice") != 0 {
		t.Error("Expected no todos initially")
	}
}

func TestWithTx_Commit(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	err := store.WithTx(ctx, func(tx *Tx) error {
		conv, err := models.NewConversation("alice")
		if err != nil {
			return err
		}
		if err := tx.Conversations.Create(ctx, conv); err != nil {
			return err
		}
		todo, err := models.NewTodo("alice", "pay rent", "", "")
		if err != nil {
			return err
		}
		return tx.Todos.Create(ctx, todo)
	})
	if err != nil {
		t.Fatalf("WithTx() error = %v", err)
	}

	if got := countTodos(t, store, "alice"); got != 1 {
		t.Errorf("todos after commit = %d, want 1", got)
	}
	convs, err := store.Conversations().ListByUser(ctx, "alice")
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(convs) != 1 {
		t.Errorf("conversations after commit = %d, want 1", len(convs))
	}
}

func TestWithTx_RollbackOnError(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.WithTx(ctx, func(tx *Tx) error {
		todo, err := models.NewTodo("alice", "never saved", "", "")
		if err != nil {
			return err
		}
		if err := tx.Todos.Create(ctx, todo); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx() error = %v, want boom", err)
	}
	if got := countTodos(t, store, "alice"); got != 0 {
		t.Errorf("todos after rollback = %d, want 0", got)
	}
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	func() {
		defer func() {
			if recover() == nil {
				t.Error("panic was swallowed")
			}
		}()
		_ = store.WithTx(ctx, func(tx *Tx) error {
			todo, _ := models.NewTodo("alice", "half written", "", "")
			_ = tx.Todos.Create(ctx, todo)
			panic("kaboom")
		})
	}()

	if got := countTodos(t, store, "alice"); got != 0 {
		t.Errorf("todos after panic = %d, want 0", got)
	}
}

func TestWithTx_RetriesBusy(t *testing.T) {
	store := newTestStorage(t)
	attempts := 0

	err := store.WithTx(context.Background(), func(tx *Tx) error {
		attempts++
		if attempts < 3 {
			return fmt.Errorf("insert: database is locked (5) (SQLITE_BUSY)")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithTx() error = %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestWithTx_GivesUpAfterMaxRetries(t *testing.T) {
	store := newTestStorage(t)
	attempts := 0

	err := store.WithTx(context.Background(), func(tx *Tx) error {
		attempts++
		return errors.New("database is locked")
	})
	if !IsBusy(err) {
		t.Fatalf("WithTx() error = %v, want busy error", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3 (1 + 2 retries)", attempts)
	}
}

func TestWithTx_DoesNotRetryOtherErrors(t *testing.T) {
	store := newTestStorage(t)
	attempts := 0

	_ = store.WithTx(context.Background(), func(tx *Tx) error {
		attempts++
		return errors.New("constraint failed")
	})
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestTx_SavepointRollback(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	err := store.WithTx(ctx, func(tx *Tx) error {
		kept, _ := models.NewTodo("alice", "kept", "", "")
		if err := tx.Todos.Create(ctx, kept); err != nil {
			return err
		}

		if err := tx.Savepoint(ctx, "call_1"); err != nil {
			return err
		}
		dropped, _ := models.NewTodo("alice", "dropped", "", "")
		if err := tx.Todos.Create(ctx, dropped); err != nil {
			return err
		}
		if err := tx.RollbackTo(ctx, "call_1"); err != nil {
			return err
		}

		if err := tx.Savepoint(ctx, "call_2"); err != nil {
			return err
		}
		released, _ := models.NewTodo("alice", "released", "", "")
		if err := tx.Todos.Create(ctx, released); err != nil {
			return err
		}
		return tx.Release(ctx, "call_2")
	})
	if err != nil {
		t.Fatalf("WithTx() error = %v", err)
	}

	todos, err := store.Todos().List(ctx, "alice", TodoFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	titles := map[string]bool{}
	for _, todo := range todos {
		titles[todo.Title] = true
	}
	if !titles["kept"] || !titles["released"] || titles["dropped"] {
		t.Errorf("titles = %v, want kept and released only", titles)
	}
}

func TestTx_SavepointRejectsBadNames(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	err := store.WithTx(ctx, func(tx *Tx) error {
		return tx.Savepoint(ctx, "x; DROP TABLE todos")
	})
	if err == nil {
		t.Error("Savepoint() should reject names that are not identifiers")
	}
}

func TestIsBusy(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"busy code", errors.New("SQLITE_BUSY"), true},
		{"locked", fmt.Errorf("exec: %w", errors.New("database is locked")), true},
		{"other", errors.New("no such table"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBusy(tt.err); got != tt.want {
				t.Errorf("IsBusy() = %v, want %v", got, tt.want)
			}
		})
	}
}
