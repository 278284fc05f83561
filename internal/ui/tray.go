package ui

import (
	"context"
	_ "embed"
	"log/slog"
	"sync"
	"time"

	"github.com/getlantern/systray"

	"github.com/scriptcut/scriptcut-editor/internal/session"
)

//go:embed icon.png
var iconBytes []byte

const (
	refreshInterval = time.Second
	commandTimeout  = 30 * time.Second
)

// Editor is the part of the session the tray drives.
type Editor interface {
	Dispatch(ctx context.Context, cmd session.Command) (session.Outcome, error)
	Snapshot() session.Snapshot
}

// Autosave can be paused from the tray.
type Autosave interface {
	Pause()
	Resume()
	IsPaused() bool
}

type Tray struct {
	editor   Editor
	autosave Autosave
	logger   *slog.Logger

	statusItem   *systray.MenuItem
	playItem     *systray.MenuItem
	autosaveItem *systray.MenuItem

	mu sync.Mutex

	onQuit func()
	done   chan struct{}
}

type TrayConfig struct {
	Editor   Editor
	Autosave Autosave
	Logger   *slog.Logger
	OnQuit   func()
}

func NewTray(cfg TrayConfig) *Tray {
	return &Tray{
		editor:   cfg.Editor,
		autosave: cfg.Autosave,
		logger:   cfg.Logger,
		onQuit:   cfg.OnQuit,
		done:     make(chan struct{}),
	}
}

// Run blocks on the platform event loop until Quit.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetIcon(iconBytes)
	systray.SetTitle("ScriptCut")
	systray.SetTooltip("ScriptCut Editor")

	t.statusItem = systray.AddMenuItem("No project loaded", "Current project")
	t.statusItem.Disable()

	systray.AddSeparator()

	t.playItem = systray.AddMenuItem("Play", "Toggle playback")
	saveItem := systray.AddMenuItem("Save Now", "Save the project")
	t.autosaveItem = systray.AddMenuItem("Pause Autosave", "Pause periodic saving")

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Quit ScriptCut Editor")

	go func() {
		ticker := time.NewTicker(refreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-t.playItem.ClickedCh:
				t.dispatch(session.TogglePlayback{})
			case <-saveItem.ClickedCh:
				t.dispatch(session.Save{})
			case <-t.autosaveItem.ClickedCh:
				t.toggleAutosave()
			case <-ticker.C:
				t.refresh()
			case <-quitItem.ClickedCh:
				t.logger.Info("quit requested from tray")
				if t.onQuit != nil {
					t.onQuit()
				}
				systray.Quit()
				return
			case <-t.done:
				return
			}
		}
	}()

	t.logger.Info("system tray ready")
}

func (t *Tray) onExit() {
	t.logger.Info("system tray exiting")
}

func (t *Tray) dispatch(cmd session.Command) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	out, err := t.editor.Dispatch(ctx, cmd)
	if err != nil {
		t.logger.Warn("tray command failed", "error", err)
	}
	for _, msg := range out.Messages() {
		t.logger.Info("tray notification", "message", msg)
	}
	t.refresh()
}

func (t *Tray) toggleAutosave() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.autosave == nil {
		return
	}

	if t.autosave.IsPaused() {
		t.autosave.Resume()
		t.autosaveItem.SetTitle("Pause Autosave")
	} else {
		t.autosave.Pause()
		t.autosaveItem.SetTitle("Resume Autosave")
	}
}

func (t *Tray) refresh() {
	t.mu.Lock()
	defer t.mu.Unlock()

	title, play := Labels(t.editor.Snapshot())
	t.statusItem.SetTitle(title)
	t.playItem.SetTitle(play)
}

// Labels renders the status line and play button caption for a snapshot.
func Labels(snap session.Snapshot) (status, play string) {
	if !snap.Loaded || snap.Project == nil || snap.Playback == nil {
		return "No project loaded", "Play"
	}
	status = snap.Project.Name + "  " + snap.Playback.Display
	if snap.Dirty {
		status += " *"
	}
	if snap.Playback.IsPlaying {
		return status, "Pause"
	}
	return status, "Play"
}

// Quit stops the tray event loop.
func (t *Tray) Quit() {
	select {
	case <-t.done:
	default:
		close(t.done)
	}
	systray.Quit()
}
