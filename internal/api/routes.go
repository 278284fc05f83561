package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/scriptcut/scriptcut-editor/internal/config"
	"github.com/scriptcut/scriptcut-editor/internal/logging"
	"github.com/scriptcut/scriptcut-editor/internal/playback"
	"github.com/scriptcut/scriptcut-editor/internal/project"
	"github.com/scriptcut/scriptcut-editor/internal/script"
	"github.com/scriptcut/scriptcut-editor/internal/session"
)

// Editor is the session surface the control API drives.
type Editor interface {
	Load(ctx context.Context, id string, opts session.LoadOptions) (session.Outcome, error)
	Dispatch(ctx context.Context, cmd session.Command) (session.Outcome, error)
	Snapshot() session.Snapshot
	ProjectID() string
}

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(CORSAllowlist(cfg.AllowedOrigins...))

	r.Get("/health", healthHandler(cfg))

	// Media elements cannot send an Authorization header, so the media
	// source is guarded by loopback only.
	r.With(LoopbackGuard()).Get("/media/source", mediaSourceHandler(cfg))
	r.With(LoopbackGuard()).Head("/media/source", mediaSourceHandler(cfg))

	r.Group(func(r chi.Router) {
		r.Use(LoopbackGuard())
		r.Use(AuthMiddleware(cfg.ConfigStore, cfg.Logger))

		r.Get("/session", sessionHandler(cfg))
		r.Post("/session/load", loadHandler(cfg))

		r.Post("/playback/toggle", commandHandler(cfg, session.TogglePlayback{}))
		r.Post("/playback/seek", seekHandler(cfg))
		r.Post("/media/metadata", metadataHandler(cfg))
		r.Post("/media/timeupdate", timeUpdateHandler(cfg))
		r.Post("/media/ended", commandHandler(cfg, session.MediaEnded{}))

		r.Post("/sections", commandHandler(cfg, session.AddSection{}))
		r.Patch("/sections/{index}", editSectionHandler(cfg))
		r.Post("/sections/{index}/focus", indexHandler(cfg, func(i int) session.Command {
			return session.FocusSection{Index: i}
		}))
		r.Delete("/sections/{index}", deleteSectionHandler(cfg))

		r.Post("/elements", addElementHandler(cfg))
		r.Post("/elements/{index}/reposition", indexHandler(cfg, func(i int) session.Command {
			return session.RepositionElement{Index: i}
		}))
		r.Post("/tracks", commandHandler(cfg, session.AddTrack{}))
		r.Post("/clips/split", commandHandler(cfg, session.SplitClip{}))

		r.Post("/ai/tts", commandHandler(cfg, session.GenerateSpeech{}))
		r.Post("/ai/rewrite", commandHandler(cfg, session.Rewrite{}))
		r.Post("/ai/translate", translateHandler(cfg))
		r.Post("/ai/cuts", commandHandler(cfg, session.AutoCut{}))
		r.Post("/subtitles", commandHandler(cfg, session.GenerateSubtitles{}))
		r.Post("/export", commandHandler(cfg, session.Export{}))
		r.Post("/save", saveHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		resp := HealthResponse{
			Status:  "ok",
			Version: config.Version,
			UptimeS: uptime,
			Offline: cfg.Offline,
		}
		if cfg.Editor != nil {
			resp.ProjectID = cfg.Editor.ProjectID()
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

// sessionHandler returns the snapshot plus notifications produced since the
// last poll.
func sessionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var effects []session.Effect
		if cfg.Inbox != nil {
			effects = cfg.Inbox.Drain()
		}
		respond(w, cfg, session.Outcome{Effects: effects}, nil)
	}
}

// mediaSourceHandler streams the loaded project's media when it is a local
// file and redirects to it otherwise.
func mediaSourceHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := cfg.Editor.Snapshot()
		if !snap.Loaded || snap.Project == nil || snap.Project.MediaURL == "" {
			WriteError(w, http.StatusNotFound, "no media for the loaded project", "NOT_FOUND")
			return
		}

		source := snap.Project.MediaURL
		path, local := playback.LocalPath(source)
		if !local {
			http.Redirect(w, r, source, http.StatusFound)
			return
		}
		if cfg.Media == nil {
			WriteError(w, http.StatusNotFound, "local media is not served", "NOT_FOUND")
			return
		}
		if err := cfg.Media.ServeFile(w, r, path); err != nil {
			cfg.Logger.Error("media error", "error", err, "path", logging.SanitizePath(path))
		}
	}
}

func loadHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoadRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.ProjectID == "" {
			WriteError(w, http.StatusBadRequest, "projectId is required", "BAD_REQUEST")
			return
		}
		out, err := cfg.Editor.Load(r.Context(), req.ProjectID, session.LoadOptions{
			AutoTranslate: req.Open == "translate",
		})
		respond(w, cfg, out, err)
	}
}

func commandHandler(cfg ServerConfig, cmd session.Command) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dispatch(w, r, cfg, cmd)
	}
}

func indexHandler(cfg ServerConfig, build func(int) session.Command) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		i, ok := indexParam(w, r)
		if !ok {
			return
		}
		dispatch(w, r, cfg, build(i))
	}
}

func seekHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SeekRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Fraction == nil {
			WriteError(w, http.StatusBadRequest, "fraction is required", "BAD_REQUEST")
			return
		}
		dispatch(w, r, cfg, session.Seek{Fraction: *req.Fraction})
	}
}

func metadataHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req MetadataRequest
		if !decodeBody(w, r, &req) {
			return
		}
		dispatch(w, r, cfg, session.MediaMetadata{Duration: req.Duration})
	}
}

func timeUpdateHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TimeUpdateRequest
		if !decodeBody(w, r, &req) {
			return
		}
		dispatch(w, r, cfg, session.MediaTimeUpdate{Time: req.Time, Paused: req.Paused})
	}
}

func editSectionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		i, ok := indexParam(w, r)
		if !ok {
			return
		}
		var req EditSectionRequest
		if !decodeBody(w, r, &req) {
			return
		}

		dispatch(w, r, cfg, session.EditSection{Index: i, Title: req.Title, Content: req.Content})
	}
}

// deleteSectionHandler requires ?confirm=true; without it the confirmation
// prompt is treated as declined.
func deleteSectionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		i, ok := indexParam(w, r)
		if !ok {
			return
		}
		confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
		confirmer := script.ConfirmFunc(func(string) bool { return confirmed })
		dispatch(w, r, cfg, session.DeleteSection{Index: i, Confirmer: confirmer})
	}
}

func addElementHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AddElementRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.Type == "" {
			WriteError(w, http.StatusBadRequest, "type is required", "BAD_REQUEST")
			return
		}
		dispatch(w, r, cfg, session.AddElement{Type: req.Type, Text: req.Text, Style: req.Style})
	}
}

func translateHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TranslateRequest
		if !decodeBody(w, r, &req) {
			return
		}
		dispatch(w, r, cfg, session.Translate{SourceLang: req.SourceLang, TargetLang: req.TargetLang})
	}
}

func saveHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SaveRequest
		if !decodeBody(w, r, &req) {
			return
		}
		dispatch(w, r, cfg, session.Save{Silent: req.Silent})
	}
}

func dispatch(w http.ResponseWriter, r *http.Request, cfg ServerConfig, cmd session.Command) {
	out, err := cfg.Editor.Dispatch(r.Context(), cmd)
	respond(w, cfg, out, err)
}

func respond(w http.ResponseWriter, cfg ServerConfig, out session.Outcome, err error) {
	if err != nil {
		status, code := errorStatus(err)
		if status == http.StatusInternalServerError {
			cfg.Logger.Error("session command failed", "error", err)
		}
		WriteJSON(w, status, ErrorResponse{Error: err.Error(), Code: code, Effects: out.Effects})
		return
	}
	effects := out.Effects
	if effects == nil {
		effects = []session.Effect{}
	}
	WriteJSON(w, http.StatusOK, SessionResponse{Session: cfg.Editor.Snapshot(), Effects: effects})
}

// errorStatus maps session errors onto HTTP status and error code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, session.ErrNoProject):
		return http.StatusConflict, "NOT_FOUND"
	case errors.Is(err, project.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, project.ErrValidation):
		return http.StatusUnprocessableEntity, "VALIDATION"
	case errors.Is(err, session.ErrBusy), errors.Is(err, session.ErrProjectChanged):
		return http.StatusConflict, "BUSY"
	case errors.Is(err, session.ErrNotConfirmed):
		return http.StatusConflict, "NOT_CONFIRMED"
	case errors.Is(err, project.ErrTransport):
		return http.StatusBadGateway, "TRANSPORT"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

func indexParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "index must be an integer", "BAD_REQUEST")
		return 0, false
	}
	return i, true
}

// decodeBody reads an optional JSON body; an empty body leaves v zero.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
	return false
}
