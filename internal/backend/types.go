package backend

import (
	"context"

	"github.com/scriptcut/scriptcut-editor/internal/project"
	"github.com/scriptcut/scriptcut-editor/internal/timeline"
)

const (
	DefaultVoice      = "alloy"
	DefaultTone       = "professional"
	DefaultSourceLang = "English"
	DefaultTargetLang = "Spanish"
)

type TTSRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

type TTSResponse struct {
	Success  bool    `json:"success"`
	Duration float64 `json:"duration"`
}

type RewriteRequest struct {
	Text string `json:"text"`
	Tone string `json:"tone"`
}

type RewriteResponse struct {
	Success bool   `json:"success"`
	Text    string `json:"text"`
}

type TranslateRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"sourceLang"`
	TargetLang string `json:"targetLang"`
}

type TranslateResponse struct {
	Success bool   `json:"success"`
	Lang    string `json:"lang"`
}

type CutsRequest struct {
	ProjectID string `json:"projectId"`
}

type CutsResponse struct {
	Success bool           `json:"success"`
	Cuts    []timeline.Cut `json:"cuts"`
}

type ExportResponse struct {
	Success     bool   `json:"success"`
	DownloadURL string `json:"downloadUrl,omitempty"`
}

// AI is the set of generation services the editor calls.
type AI interface {
	TTS(ctx context.Context, req TTSRequest) (*TTSResponse, error)
	Rewrite(ctx context.Context, req RewriteRequest) (*RewriteResponse, error)
	Translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error)
	Cuts(ctx context.Context, req CutsRequest) (*CutsResponse, error)
	Export(ctx context.Context, projectID string) (*ExportResponse, error)
}

// Client is a full backend: project documents plus AI services.
type Client interface {
	AI
	GetProject(ctx context.Context, id string) (*project.Project, error)
	PutProject(ctx context.Context, id string, content project.Content) error
}
