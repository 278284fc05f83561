package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/scriptcut/scriptcut-editor/internal/project"
)

// Summary is a project listing row without its content.
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Repository interface {
	Backend

	CreateProject(ctx context.Context, p *project.Project) error
	ListProjects(ctx context.Context) ([]*Summary, error)
	DeleteProject(ctx context.Context, id string) error

	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

// SQLiteRepository keeps projects in the local database for offline use.
type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// CreateProject inserts p, assigning an id when it has none.
func (r *SQLiteRepository) CreateProject(ctx context.Context, p *project.Project) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Type == "" {
		p.Type = project.TypeScript
	}
	content, err := json.Marshal(p.Content)
	if err != nil {
		return fmt.Errorf("encode content: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, type, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.Type, string(content), now, now)
	return err
}

func (r *SQLiteRepository) GetProject(ctx context.Context, id string) (*project.Project, error) {
	var p project.Project
	var content string
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, type, content FROM projects WHERE id = ?
	`, id).Scan(&p.ID, &p.Name, &p.Type, &content)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("project %s: %w", id, project.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(content), &p.Content); err != nil {
		return nil, fmt.Errorf("decode content of %s: %w", id, err)
	}
	return &p, nil
}

// PutProject replaces the stored content. Unknown ids report ErrNotFound.
func (r *SQLiteRepository) PutProject(ctx context.Context, id string, content project.Content) error {
	data, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("encode content: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE projects SET content = ?, updated_at = ? WHERE id = ?
	`, string(data), time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("project %s: %w", id, project.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) ListProjects(ctx context.Context) ([]*Summary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, type, created_at, updated_at
		FROM projects ORDER BY updated_at DESC, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Summary
	for rows.Next() {
		var s Summary
		var createdAt, updatedAt string
		if err := rows.Scan(&s.ID, &s.Name, &s.Type, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		s.CreatedAt = parseTime(createdAt)
		s.UpdatedAt = parseTime(updatedAt)
		out = append(out, &s)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteProject(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	return err
}

func (r *SQLiteRepository) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (r *SQLiteRepository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// parseTime accepts RFC3339 and SQLite's datetime('now') layout.
func parseTime(v string) time.Time {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t
	}
	t, _ := time.Parse(time.DateTime, v)
	return t
}
