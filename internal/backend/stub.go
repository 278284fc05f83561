package backend

import (
	"context"
	"log/slog"
	"math"
	"strings"
)

// wordsPerSecond approximates narration pace for offline voiceovers.
const wordsPerSecond = 2.5

// StubAI answers AI requests locally so the editor works without a backend.
type StubAI struct {
	logger *slog.Logger
}

func NewStubAI(logger *slog.Logger) *StubAI {
	return &StubAI{logger: logger}
}

func (s *StubAI) TTS(_ context.Context, req TTSRequest) (*TTSResponse, error) {
	words := len(strings.Fields(req.Text))
	duration := math.Round(float64(words)/wordsPerSecond*10) / 10
	s.logger.Info("ai stub: tts", "voice", req.Voice, "words", words, "duration", duration)
	return &TTSResponse{Success: true, Duration: duration}, nil
}

func (s *StubAI) Rewrite(_ context.Context, req RewriteRequest) (*RewriteResponse, error) {
	s.logger.Info("ai stub: rewrite", "tone", req.Tone)
	return &RewriteResponse{Success: true, Text: req.Text}, nil
}

func (s *StubAI) Translate(_ context.Context, req TranslateRequest) (*TranslateResponse, error) {
	s.logger.Info("ai stub: translate", "from", req.SourceLang, "to", req.TargetLang)
	return &TranslateResponse{Success: true, Lang: req.TargetLang}, nil
}

func (s *StubAI) Cuts(_ context.Context, req CutsRequest) (*CutsResponse, error) {
	s.logger.Info("ai stub: cuts", "project_id", req.ProjectID)
	return &CutsResponse{Success: true}, nil
}

func (s *StubAI) Export(_ context.Context, projectID string) (*ExportResponse, error) {
	s.logger.Info("ai stub: export", "project_id", projectID)
	return &ExportResponse{Success: true}, nil
}
