// ABOUTME: Todo storage operations for SQLite
// ABOUTME: Every query is scoped by user_id, the sole isolation boundary
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/AiWithAadil/spec-driven-todo-ai/internal/models"
)

// TodoFilter narrows List results. A zero filter excludes archived todos.
type TodoFilter struct {
	Status models.TodoStatus
}

// todoRecord is the storage shape of a todo
type todoRecord struct {
	ID             int64
	UserID         string
	Title          string
	Description    sql.NullString
	Status         string
	Priority       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ConversationID sql.NullString
}

func toRecord(t *models.Todo) todoRecord {
	return todoRecord{
		ID:             t.ID,
		UserID:         t.UserID,
		Title:          t.Title,
		Description:    nullString(t.Description),
		Status:         string(t.Status),
		Priority:       string(t.Priority),
		CreatedAt:      t.CreatedAt.UTC(),
		UpdatedAt:      t.UpdatedAt.UTC(),
		ConversationID: nullString(t.CreatedInConversationID),
	}
}

func fromRecord(r todoRecord) models.Todo {
	return models.Todo{
		ID:                      r.ID,
		UserID:                  r.UserID,
		Title:                   r.Title,
		Description:             r.Description.String,
		Status:                  models.TodoStatus(r.Status),
		Priority:                models.Priority(r.Priority),
		CreatedAt:               r.CreatedAt,
		UpdatedAt:               r.UpdatedAt,
		CreatedInConversationID: r.ConversationID.String,
	}
}

const todoColumns = `id, user_id, title, description, status, priority, created_at, updated_at, created_in_conversation_id`

func scanTodo(scan func(dest ...interface{}) error) (models.Todo, error) {
	var r todoRecord
	err := scan(&r.ID, &r.UserID, &r.Title, &r.Description, &r.Status, &r.Priority,
		&r.CreatedAt, &r.UpdatedAt, &r.ConversationID)
	if err != nil {
		return models.Todo{}, err
	}
	return fromRecord(r), nil
}

// TodoStore handles todo persistence
type TodoStore struct {
	q querier
}

// NewTodoStore creates a new TodoStore
func NewTodoStore(q querier) *TodoStore {
	return &TodoStore{q: q}
}

// Create inserts a todo and assigns its id
func (s *TodoStore) Create(ctx context.Context, todo *models.Todo) error {
	r := toRecord(todo)
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO todos (user_id, title, description, status, priority, created_at, updated_at, created_in_conversation_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, r.UserID, r.Title, r.Description, r.Status, r.Priority, r.CreatedAt, r.UpdatedAt, r.ConversationID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	todo.ID = id
	return nil
}

// Get retrieves a todo owned by userID, returning nil when absent or owned by someone else
func (s *TodoStore) Get(ctx context.Context, userID string, id int64) (*models.Todo, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+todoColumns+` FROM todos WHERE id = ? AND user_id = ?`, id, userID)
	todo, err := scanTodo(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

// List returns a user's todos, most recently updated first
func (s *TodoStore) List(ctx context.Context, userID string, filter TodoFilter) ([]models.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE user_id = ?`
	args := []interface{}{userID}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	} else {
		query += ` AND status != ?`
		args = append(args, string(models.TodoArchived))
	}
	query += ` ORDER BY updated_at DESC, id DESC`

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	todos := []models.Todo{}
	for rows.Next() {
		todo, err := scanTodo(rows.Scan)
		if err != nil {
			return nil, err
		}
		todos = append(todos, todo)
	}
	return todos, rows.Err()
}

// Update writes every mutable field of an existing todo
func (s *TodoStore) Update(ctx context.Context, todo *models.Todo) error {
	r := toRecord(todo)
	res, err := s.q.ExecContext(ctx, `
		UPDATE todos
		SET title = ?, description = ?, status = ?, priority = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, r.Title, r.Description, r.Status, r.Priority, r.UpdatedAt, r.ID, r.UserID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("todo %d not found for user %s", todo.ID, todo.UserID)
	}
	return nil
}

// nullString converts an empty string to sql.NullString
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
