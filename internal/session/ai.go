package session

import (
	"context"
	"fmt"

	"github.com/scriptcut/scriptcut-editor/internal/backend"
	"github.com/scriptcut/scriptcut-editor/internal/project"
)

const exportFilename = "project.mp4"

// Busy slot names, one per long-running action.
const (
	ActionTTS       = "tts"
	ActionRewrite   = "rewrite"
	ActionTranslate = "translate"
	ActionCuts      = "cuts"
	ActionExport    = "export"
)

// request is the bookkeeping shared by every backend-bound action: the
// project it started on and the busy slot it holds.
type request struct {
	action    string
	projectID string
	gen       uint64
}

// beginLocked claims the busy slot for action. The caller holds s.mu.
func (s *Session) beginLocked(action string) (request, error) {
	if err := s.checkLoadedLocked(); err != nil {
		return request{}, err
	}
	if err := s.acquireLocked(action); err != nil {
		return request{}, err
	}
	return request{action: action, projectID: s.info.ID, gen: s.generation}, nil
}

// relock reacquires s.mu and reports whether the session still holds
// the project the request started on. On true the caller must unlock.
func (s *Session) relock(r request) bool {
	s.mu.Lock()
	if s.generation != r.gen {
		s.mu.Unlock()
		return false
	}
	return true
}

func (s *Session) failed(out *Outcome, r request, msg string, err error) error {
	s.logger.Warn("ai request failed", "action", r.action, "project_id", r.projectID, "error", err)
	out.notify(LevelError, msg)
	return fmt.Errorf("%s: %w", r.action, err)
}

func (s *Session) invalid(out *Outcome, msg string) error {
	out.notify(LevelError, msg)
	return project.Invalid(msg)
}

func (s *Session) generateSpeech(ctx context.Context, out *Outcome) error {
	s.mu.Lock()
	if err := s.checkLoadedLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	var text string
	if i, ok := s.script.FocusedOrFirst(); ok {
		sec, _ := s.script.Get(i)
		text = sec.Content
	}
	if text == "" {
		s.mu.Unlock()
		return s.invalid(out, "Please enter script text first")
	}
	r, err := s.beginLocked(ActionTTS)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	defer s.release(r.action)

	resp, err := s.ai.TTS(ctx, backend.TTSRequest{Text: text, Voice: backend.DefaultVoice})
	if err != nil {
		return s.failed(out, r, "Failed to generate speech", err)
	}
	if !resp.Success {
		return s.failed(out, r, "Failed to generate speech", ErrRejected)
	}

	if !s.relock(r) {
		return ErrProjectChanged
	}
	defer s.mu.Unlock()

	out.notify(LevelSuccess, "Voiceover generated!")
	if s.timeline.AddVoiceover(resp.Duration, s.clock.State().Duration) {
		out.persist()
	}
	return nil
}

func (s *Session) rewrite(ctx context.Context, out *Outcome) error {
	s.mu.Lock()
	if err := s.checkLoadedLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	idx, ok := s.script.Focused()
	if !ok {
		s.mu.Unlock()
		return s.invalid(out, "Please click inside a script section to rewrite")
	}
	sec, _ := s.script.Get(idx)
	if sec.Content == "" {
		s.mu.Unlock()
		return s.invalid(out, "Script section is empty")
	}
	r, err := s.beginLocked(ActionRewrite)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	defer s.release(r.action)

	resp, err := s.ai.Rewrite(ctx, backend.RewriteRequest{Text: sec.Content, Tone: backend.DefaultTone})
	if err != nil {
		return s.failed(out, r, "Rewrite failed", err)
	}
	if !resp.Success {
		return s.failed(out, r, "Rewrite failed", ErrRejected)
	}

	if !s.relock(r) {
		return ErrProjectChanged
	}
	defer s.mu.Unlock()

	// The section may have been deleted while the request was in flight.
	if err := s.script.SetContent(idx, resp.Text); err != nil {
		return err
	}
	out.notify(LevelSuccess, "Script rewritten by AI")
	out.persist()
	return nil
}

func (s *Session) translate(ctx context.Context, c Translate, out *Outcome) error {
	if c.SourceLang == "" {
		c.SourceLang = backend.DefaultSourceLang
	}
	if c.TargetLang == "" {
		c.TargetLang = backend.DefaultTargetLang
	}

	s.mu.Lock()
	r, err := s.beginLocked(ActionTranslate)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	text := s.script.FullText()
	s.mu.Unlock()
	defer s.release(r.action)

	resp, err := s.ai.Translate(ctx, backend.TranslateRequest{
		Text:       text,
		SourceLang: c.SourceLang,
		TargetLang: c.TargetLang,
	})
	if err != nil {
		return s.failed(out, r, "Translation failed", err)
	}
	if !resp.Success {
		return s.failed(out, r, "Translation failed", ErrRejected)
	}
	lang := resp.Lang
	if lang == "" {
		lang = c.TargetLang
	}

	if !s.relock(r) {
		return ErrProjectChanged
	}
	defer s.mu.Unlock()

	out.notify(LevelSuccess, "Project translated to "+lang)
	s.script.TagLanguage(lang)
	out.persist()
	return nil
}

func (s *Session) autoCut(ctx context.Context, out *Outcome) error {
	s.mu.Lock()
	r, err := s.beginLocked(ActionCuts)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	defer s.release(r.action)

	out.notify(LevelInfo, "AI is analyzing video for silences...")

	resp, err := s.ai.Cuts(ctx, backend.CutsRequest{ProjectID: r.projectID})
	if err != nil {
		return s.failed(out, r, "AI Auto-Cut failed", err)
	}
	if !resp.Success {
		return s.failed(out, r, "AI Auto-Cut failed", ErrRejected)
	}
	if len(resp.Cuts) == 0 {
		return nil
	}

	if !s.relock(r) {
		return ErrProjectChanged
	}
	defer s.mu.Unlock()

	out.notify(LevelSuccess, fmt.Sprintf("AI found %d silences. Applying cuts...", len(resp.Cuts)))
	if err := s.timeline.ApplyCuts(resp.Cuts, s.clock.State().Duration); err != nil {
		return err
	}
	out.persist()
	return nil
}

func (s *Session) generateSubtitles(out *Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkLoadedLocked(); err != nil {
		return err
	}

	out.notify(LevelInfo, "AI is generating subtitles from script...")
	if s.script.Len() == 0 {
		return s.invalid(out, "No script found to generate subtitles")
	}
	if text, ok := s.script.FirstNonEmpty(); ok {
		s.canvas.AddSubtitle(text)
	}
	out.notify(LevelSuccess, "Subtitles generated successfully!")
	out.persist()
	return nil
}

func (s *Session) export(ctx context.Context, out *Outcome) error {
	s.mu.Lock()
	r, err := s.beginLocked(ActionExport)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	defer s.release(r.action)

	out.notify(LevelInfo, "Starting export...")

	resp, err := s.ai.Export(ctx, r.projectID)
	if err != nil {
		return s.failed(out, r, "Export failed", err)
	}
	if !resp.Success {
		return s.failed(out, r, "Export failed", ErrRejected)
	}

	out.notify(LevelSuccess, "Export processed! Download starting...")
	out.add(Effect{Kind: EffectDownload, Filename: exportFilename, URL: resp.DownloadURL})
	return nil
}
