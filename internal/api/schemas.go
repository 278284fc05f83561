package api

import (
	"github.com/scriptcut/scriptcut-editor/internal/project"
	"github.com/scriptcut/scriptcut-editor/internal/session"
)

type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	UptimeS   int64  `json:"uptime_s"`
	Offline   bool   `json:"offline"`
	ProjectID string `json:"project_id,omitempty"`
}

// SessionResponse is returned by every session route.
type SessionResponse struct {
	Session session.Snapshot `json:"session"`
	Effects []session.Effect `json:"effects"`
}

// ErrorResponse carries any effects produced before the failure, such as
// the error notification for the action.
type ErrorResponse struct {
	Error   string           `json:"error"`
	Code    string           `json:"code,omitempty"`
	Effects []session.Effect `json:"effects,omitempty"`
}

type LoadRequest struct {
	ProjectID string `json:"projectId"`
	// Open is the entry option; "translate" translates after loading.
	Open string `json:"open,omitempty"`
}

type SeekRequest struct {
	Fraction *float64 `json:"fraction"`
}

type MetadataRequest struct {
	Duration float64 `json:"duration"`
}

type TimeUpdateRequest struct {
	Time   float64 `json:"time"`
	Paused bool    `json:"paused"`
}

// EditSectionRequest fields left out keep their current value.
type EditSectionRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

type AddElementRequest struct {
	Type  string         `json:"type"`
	Text  string         `json:"text,omitempty"`
	Style *project.Style `json:"style,omitempty"`
}

type TranslateRequest struct {
	SourceLang string `json:"sourceLang,omitempty"`
	TargetLang string `json:"targetLang,omitempty"`
}

type SaveRequest struct {
	Silent bool `json:"silent"`
}
