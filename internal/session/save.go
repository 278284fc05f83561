package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/scriptcut/scriptcut-editor/internal/project"
)

// SaveIfChanged writes the session's content when it differs from what was
// last saved or loaded. It reports whether a write happened.
func (s *Session) SaveIfChanged(ctx context.Context) (bool, error) {
	return s.save(ctx, false)
}

func (s *Session) save(ctx context.Context, force bool) (bool, error) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	// State is gathered only once this save holds persistMu, so a save that
	// waited behind another always carries the newest edits.
	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return false, ErrNoProject
	}
	id := s.info.ID
	gen := s.generation
	patch := s.patchLocked()
	hash := hashPatch(patch)
	if !force && hash == s.savedHash {
		s.mu.Unlock()
		return false, nil
	}
	s.mu.Unlock()

	if err := s.store.Save(ctx, id, patch); err != nil {
		s.logger.Warn("failed to save project", "project_id", id, "error", err)
		return false, err
	}

	s.mu.Lock()
	if s.generation == gen {
		s.savedHash = hash
		s.savedAt = patch.LastModified
	}
	s.mu.Unlock()
	return true, nil
}

func (s *Session) saveCommand(ctx context.Context, c Save, out *Outcome) error {
	if c.Silent {
		_, err := s.SaveIfChanged(ctx)
		return err
	}

	out.notify(LevelInfo, "Saving project...")
	if _, err := s.save(ctx, true); err != nil {
		out.notify(LevelError, "Failed to save project")
		return err
	}
	out.notify(LevelSuccess, "Project saved successfully!")
	return nil
}

func (s *Session) patchLocked() project.Patch {
	return project.Patch{
		Scripts:      s.script.Sections(),
		Timeline:     s.timeline.Tracks(),
		Elements:     s.canvas.Elements(),
		LastModified: time.Now().UTC(),
	}
}

// hashPatch fingerprints the session-owned content, ignoring lastModified.
func hashPatch(p project.Patch) string {
	data, err := json.Marshal(struct {
		Scripts  []project.ScriptSection `json:"scripts"`
		Timeline []project.TimelineTrack `json:"timeline"`
		Elements []project.CanvasElement `json:"elements"`
	}{p.Scripts, p.Timeline, p.Elements})
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
