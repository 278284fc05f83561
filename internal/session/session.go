// Package session composes the project models, the playback clock and the
// backend into one editor session the UI drives through Dispatch.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/scriptcut/scriptcut-editor/internal/backend"
	"github.com/scriptcut/scriptcut-editor/internal/canvas"
	"github.com/scriptcut/scriptcut-editor/internal/playback"
	"github.com/scriptcut/scriptcut-editor/internal/project"
	"github.com/scriptcut/scriptcut-editor/internal/script"
	"github.com/scriptcut/scriptcut-editor/internal/store"
	"github.com/scriptcut/scriptcut-editor/internal/timeline"
)

// AutoTranslateDelay is how long after load the open=translate entry
// option waits before translating.
const AutoTranslateDelay = 500 * time.Millisecond

var (
	ErrBusy         = errors.New("action already in progress")
	ErrNotConfirmed = script.ErrNotConfirmed
	ErrNoProject    = store.ErrNoProject

	// ErrRejected means the backend answered but reported success=false.
	ErrRejected = fmt.Errorf("request rejected by backend: %w", project.ErrTransport)

	// ErrProjectChanged means another project was loaded while a request
	// was in flight; its result was discarded.
	ErrProjectChanged = errors.New("project changed during request")
)

// MediaController executes media intents on the real media element.
type MediaController interface {
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	Seek(ctx context.Context, position float64) error
}

// Persister schedules a save. The autosave scheduler implements it.
type Persister interface {
	Trigger()
}

// Notifier receives effects produced outside a request, such as the result
// of an automatic translation.
type Notifier interface {
	Notify(projectID string, e Effect)
}

type LoadOptions struct {
	// AutoTranslate runs Translate shortly after a successful load.
	AutoTranslate bool
}

type Session struct {
	store  *store.Store
	ai     backend.AI
	logger *slog.Logger

	media     MediaController
	persister Persister
	notifier  Notifier
	after     func(time.Duration, func())

	// persistMu serializes loads and saves so each save gathers state at
	// the moment it runs and never overlaps another.
	persistMu sync.Mutex

	mu         sync.Mutex
	loaded     bool
	generation uint64
	info       ProjectInfo
	clock      *playback.Clock
	script     *script.Model
	timeline   *timeline.Model
	canvas     *canvas.Model
	rng        *rand.Rand
	busy       map[string]bool
	savedHash  string
	savedAt    time.Time
}

func New(st *store.Store, ai backend.AI, logger *slog.Logger) *Session {
	return &Session{
		store:  st,
		ai:     ai,
		logger: logger,
		after: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
		rng:  rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5c121c07)),
		busy: make(map[string]bool),
	}
}

// SetMediaController routes media intents to mc instead of returning them
// as effects.
func (s *Session) SetMediaController(mc MediaController) {
	s.mu.Lock()
	s.media = mc
	s.mu.Unlock()
}

func (s *Session) SetPersister(p Persister) {
	s.mu.Lock()
	s.persister = p
	s.mu.Unlock()
}

func (s *Session) SetNotifier(n Notifier) {
	s.mu.Lock()
	s.notifier = n
	s.mu.Unlock()
}

// SetRand replaces the randomness used for new track colours and element
// placement.
func (s *Session) SetRand(r *rand.Rand) {
	s.mu.Lock()
	s.rng = r
	s.mu.Unlock()
}

// Load fetches a project and rebuilds every model from it. A failed load
// leaves the current session state untouched.
func (s *Session) Load(ctx context.Context, id string, opts LoadOptions) (Outcome, error) {
	var out Outcome

	s.persistMu.Lock()
	p, err := s.store.Load(ctx, id)
	if err != nil {
		s.persistMu.Unlock()
		s.logger.Warn("failed to load project", "project_id", id, "error", err)
		out.notify(LevelError, "Failed to load project")
		return out, err
	}

	s.mu.Lock()
	s.hydrateLocked(p)
	s.mu.Unlock()
	s.persistMu.Unlock()

	if p.IsMediaBacked() {
		out.add(Effect{Kind: EffectMedia, Media: &playback.MediaCommand{Action: playback.MediaLoad, Source: p.MediaURL()}})
	}

	if opts.AutoTranslate {
		gen := s.currentGeneration()
		s.after(AutoTranslateDelay, func() {
			if s.currentGeneration() != gen {
				return
			}
			res, err := s.Dispatch(context.Background(), Translate{})
			if err != nil {
				s.logger.Warn("auto translate failed", "project_id", id, "error", err)
			}
			s.publish(id, res)
		})
	}

	return out, nil
}

func (s *Session) hydrateLocked(p *project.Project) {
	mode := playback.Simulated
	if p.IsMediaBacked() {
		mode = playback.MediaBacked
	}

	s.generation++
	s.loaded = true
	s.info = ProjectInfo{ID: p.ID, Name: p.Name, Type: p.Type, MediaURL: p.MediaURL()}
	s.clock = playback.NewClock(mode)
	s.script = script.New(p.Content.Scripts, p.Name)
	s.timeline = timeline.New(p.Content.Timeline)
	s.canvas = canvas.New(p.Content.Elements)
	s.savedHash = hashPatch(project.Patch{
		Scripts:  p.Content.Scripts,
		Timeline: p.Content.Timeline,
		Elements: p.Content.Elements,
	})
	s.savedAt = p.Content.LastModified
}

func (s *Session) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

func (s *Session) ProjectID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info.ID
}

// Tick advances the simulated clock. It satisfies playback.Ticker.
func (s *Session) Tick(elapsed time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		s.clock.Tick(elapsed)
	}
}

// Dispatch applies one command and returns the effects it produced. Edits
// that change persisted content also hand a save to the persister.
func (s *Session) Dispatch(ctx context.Context, cmd Command) (Outcome, error) {
	var out Outcome
	var err error

	switch c := cmd.(type) {
	case TogglePlayback:
		err = s.toggle(ctx, &out)
	case Seek:
		err = s.seek(ctx, c.Fraction, &out)
	case Tick:
		s.Tick(c.Elapsed)
	case MediaMetadata, MediaTimeUpdate, MediaEnded:
		err = s.mediaEvent(c)
	case AddSection, EditSection, FocusSection, DeleteSection,
		AddElement, RepositionElement, AddTrack, SplitClip:
		err = s.edit(c, &out)
	case GenerateSpeech:
		err = s.generateSpeech(ctx, &out)
	case Rewrite:
		err = s.rewrite(ctx, &out)
	case Translate:
		err = s.translate(ctx, c, &out)
	case AutoCut:
		err = s.autoCut(ctx, &out)
	case GenerateSubtitles:
		err = s.generateSubtitles(&out)
	case Export:
		err = s.export(ctx, &out)
	case Save:
		err = s.saveCommand(ctx, c, &out)
	default:
		err = fmt.Errorf("unknown command %T", cmd)
	}

	if out.Has(EffectPersist) {
		s.requestPersist(ctx)
	}
	return out, err
}

func (s *Session) requestPersist(ctx context.Context) {
	s.mu.Lock()
	p := s.persister
	s.mu.Unlock()

	if p != nil {
		p.Trigger()
		return
	}
	if _, err := s.SaveIfChanged(ctx); err != nil {
		s.logger.Warn("save after edit failed", "error", err)
	}
}

func (s *Session) toggle(ctx context.Context, out *Outcome) error {
	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return ErrNoProject
	}
	cmds := s.clock.Toggle()
	playing := s.clock.State().IsPlaying
	media := s.media
	gen := s.generation
	s.mu.Unlock()

	if media == nil || len(cmds) == 0 {
		out.media(cmds)
		return nil
	}
	if err := forward(ctx, media, cmds); err != nil {
		s.mu.Lock()
		if s.generation == gen {
			s.clock.SetPlaying(!playing)
		}
		s.mu.Unlock()
		out.notify(LevelError, "Playback failed")
		return fmt.Errorf("media %s: %w", cmds[0].Action, err)
	}
	return nil
}

func (s *Session) seek(ctx context.Context, fraction float64, out *Outcome) error {
	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return ErrNoProject
	}
	cmds := s.clock.Seek(fraction)
	media := s.media
	s.mu.Unlock()

	if media == nil || len(cmds) == 0 {
		out.media(cmds)
		return nil
	}
	if err := forward(ctx, media, cmds); err != nil {
		return fmt.Errorf("media seek: %w", err)
	}
	return nil
}

func forward(ctx context.Context, mc MediaController, cmds []playback.MediaCommand) error {
	for _, c := range cmds {
		var err error
		switch c.Action {
		case playback.MediaPlay:
			err = mc.Play(ctx)
		case playback.MediaPause:
			err = mc.Pause(ctx)
		case playback.MediaSeek:
			err = mc.Seek(ctx, c.Position)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) mediaEvent(cmd Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return ErrNoProject
	}
	switch c := cmd.(type) {
	case MediaMetadata:
		s.clock.OnMetadataReady(c.Duration)
	case MediaTimeUpdate:
		s.clock.OnTimeUpdate(c.Time, c.Paused)
	case MediaEnded:
		s.clock.OnEnded()
	}
	return nil
}

func (s *Session) edit(cmd Command, out *Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return ErrNoProject
	}

	switch c := cmd.(type) {
	case AddSection:
		s.script.Add()
	case EditSection:
		sec, err := s.script.Get(c.Index)
		if err != nil {
			return err
		}
		if c.Title != nil {
			sec.Title = *c.Title
		}
		if c.Content != nil {
			sec.Content = *c.Content
		}
		if err := s.script.Edit(c.Index, sec.Title, sec.Content); err != nil {
			return err
		}
	case FocusSection:
		// Focus is view state and is not persisted.
		return s.script.Focus(c.Index)
	case DeleteSection:
		if err := s.script.Delete(c.Index, c.Confirmer); err != nil {
			return err
		}
	case AddElement:
		if c.Type == "" {
			return project.Invalid("element type is required")
		}
		var style project.Style
		if c.Style != nil {
			style = *c.Style
		}
		s.canvas.AddElement(c.Type, c.Text, style)
		out.notify(LevelSuccess, c.Type+" added to canvas")
	case RepositionElement:
		if err := s.canvas.Reposition(c.Index, s.rng); err != nil {
			return err
		}
	case AddTrack:
		s.timeline.AddTrack(s.rng)
		out.notify(LevelSuccess, "New clip added to timeline")
	case SplitClip:
		if err := s.timeline.SplitClip(); err != nil {
			return err
		}
		out.notify(LevelSuccess, "Clip split at "+playback.FormatTime(s.clock.State().CurrentTime))
	}

	out.persist()
	return nil
}

func (s *Session) checkLoadedLocked() error {
	if !s.loaded {
		return ErrNoProject
	}
	return nil
}

// acquireLocked claims the busy slot for action.
func (s *Session) acquireLocked(action string) error {
	if s.busy[action] {
		return fmt.Errorf("%s: %w", action, ErrBusy)
	}
	s.busy[action] = true
	return nil
}

func (s *Session) release(action string) {
	s.mu.Lock()
	delete(s.busy, action)
	s.mu.Unlock()
}

func (s *Session) currentGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

func (s *Session) publish(projectID string, out Outcome) {
	s.mu.Lock()
	n := s.notifier
	s.mu.Unlock()

	for _, e := range out.Effects {
		if e.Kind != EffectNotify && e.Kind != EffectDownload {
			continue
		}
		if n != nil {
			n.Notify(projectID, e)
			continue
		}
		s.logger.Info("session notification", "project_id", projectID, "level", e.Level, "message", e.Message)
	}
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
