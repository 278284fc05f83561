// Package backend talks to the editor backend: project documents and the
// AI generation endpoints.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/scriptcut/scriptcut-editor/internal/project"
)

const (
	opGetProject = "get project"
	opPutProject = "put project"
	opExport     = "export"
	opTTS        = "tts"
	opRewrite    = "rewrite"
	opTranslate  = "translate"
	opCuts       = "cuts"

	maxErrorBody = 4096
	maxBody      = 32 << 20
)

// HTTPClient implements Client over the backend's JSON API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewHTTPClient(baseURL, token string, timeout time.Duration, logger *slog.Logger) *HTTPClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (c *HTTPClient) GetProject(ctx context.Context, id string) (*project.Project, error) {
	var p project.Project
	if err := c.do(ctx, opGetProject, http.MethodGet, "/api/projects/"+url.PathEscape(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) PutProject(ctx context.Context, id string, content project.Content) error {
	body := struct {
		Content project.Content `json:"content"`
	}{content}
	return c.do(ctx, opPutProject, http.MethodPut, "/api/projects/"+url.PathEscape(id), body, nil)
}

func (c *HTTPClient) Export(ctx context.Context, projectID string) (*ExportResponse, error) {
	var out ExportResponse
	path := "/api/projects/" + url.PathEscape(projectID) + "/export"
	if err := c.do(ctx, opExport, http.MethodPost, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) TTS(ctx context.Context, req TTSRequest) (*TTSResponse, error) {
	var out TTSResponse
	if err := c.do(ctx, opTTS, http.MethodPost, "/api/ai/tts", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Rewrite(ctx context.Context, req RewriteRequest) (*RewriteResponse, error) {
	var out RewriteResponse
	if err := c.do(ctx, opRewrite, http.MethodPost, "/api/ai/rewrite", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error) {
	var out TranslateResponse
	if err := c.do(ctx, opTranslate, http.MethodPost, "/api/ai/translate", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Cuts(ctx context.Context, req CutsRequest) (*CutsResponse, error) {
	var out CutsResponse
	if err := c.do(ctx, opCuts, http.MethodPost, "/api/ai/cuts", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do sends one JSON request. A nil out discards the response body.
func (c *HTTPClient) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create %s request: %w", op, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.New().String())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed", "op", op, "error", err)
		return fmt.Errorf("%s: %w: %v", op, project.ErrTransport, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("backend request",
		"op", op,
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Op: op, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(out); err != nil {
		if op == opGetProject {
			return fmt.Errorf("%s: decode response: %w: %v", op, project.ErrNotFound, err)
		}
		return fmt.Errorf("%s: decode response: %w: %v", op, project.ErrTransport, err)
	}
	return nil
}
