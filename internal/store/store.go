// Package store loads and persists the project document for an editor
// session against either the remote backend or the local database.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/scriptcut/scriptcut-editor/internal/project"
)

var ErrNoProject = errors.New("no project loaded")

// Backend is where project documents live.
type Backend interface {
	GetProject(ctx context.Context, id string) (*project.Project, error)
	PutProject(ctx context.Context, id string, content project.Content) error
}

// Store caches the most recently loaded project and merges partial updates
// into it on save.
type Store struct {
	backend Backend
	logger  *slog.Logger
	now     func() time.Time

	mu      sync.RWMutex
	current *project.Project
}

func New(backend Backend, logger *slog.Logger) *Store {
	return &Store{
		backend: backend,
		logger:  logger,
		now:     time.Now,
	}
}

// Load fetches a project and makes it the cached project. On failure the
// previously cached project is left in place.
func (s *Store) Load(ctx context.Context, id string) (*project.Project, error) {
	p, err := s.backend.GetProject(ctx, id)
	if err != nil {
		if errors.Is(err, project.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load project %s: %w", id, err)
	}
	if p == nil {
		return nil, fmt.Errorf("project %s: %w", id, project.ErrNotFound)
	}
	if p.ID == "" {
		p.ID = id
	}

	s.mu.Lock()
	s.current = p.Clone()
	s.mu.Unlock()

	s.logger.Info("project loaded", "project_id", id, "type", p.Type)
	return p, nil
}

// Save merges patch into the cached content and writes the result. The
// cache only changes once the backend accepts the write.
func (s *Store) Save(ctx context.Context, id string, patch project.Patch) error {
	s.mu.RLock()
	cur := s.current
	s.mu.RUnlock()
	if cur == nil {
		return ErrNoProject
	}
	if cur.ID != id {
		return fmt.Errorf("save %s while %s is loaded: %w", id, cur.ID, ErrNoProject)
	}

	if patch.LastModified.IsZero() {
		patch.LastModified = s.now()
	}
	merged := cur.Content.Merge(patch)

	if err := s.backend.PutProject(ctx, id, merged); err != nil {
		return fmt.Errorf("save project %s: %w", id, err)
	}

	s.mu.Lock()
	if s.current != nil && s.current.ID == id {
		next := *s.current
		next.Content = merged
		s.current = &next
	}
	s.mu.Unlock()

	s.logger.Debug("project saved", "project_id", id)
	return nil
}

// Current returns a copy of the cached project, or nil.
func (s *Store) Current() *project.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}
