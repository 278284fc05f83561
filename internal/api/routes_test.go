package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/scriptcut/scriptcut-editor/internal/backend"
	"github.com/scriptcut/scriptcut-editor/internal/db"
	"github.com/scriptcut/scriptcut-editor/internal/playback"
	"github.com/scriptcut/scriptcut-editor/internal/project"
	"github.com/scriptcut/scriptcut-editor/internal/session"
	"github.com/scriptcut/scriptcut-editor/internal/store"
)

type testEnv struct {
	router    http.Handler
	repo      *store.SQLiteRepository
	inbox     *Inbox
	token     string
	projectID string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := discardLogger()

	database, err := db.New(filepath.Join(t.TempDir(), "test.db"), logger)
	if err != nil {
		t.Fatalf("db.New() error = %v", err)
	}
	t.Cleanup(func() { database.Close() })

	ctx := context.Background()
	repo := store.NewRepository(database.Conn())
	token, err := EnsureAuthToken(ctx, repo)
	if err != nil {
		t.Fatalf("EnsureAuthToken() error = %v", err)
	}

	p := &project.Project{Name: "Demo", Type: project.TypeScript}
	if err := repo.CreateProject(ctx, p); err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}

	sess := session.New(store.New(repo, logger), backend.NewStubAI(logger), logger)
	inbox := NewInbox()
	sess.SetNotifier(inbox)

	router := NewRouter(ServerConfig{
		Editor:      sess,
		ConfigStore: repo,
		Inbox:       inbox,
		Media:       playback.NewMediaServer(logger),
		Offline:     true,
		Logger:      logger,
		StartTime:   time.Now(),
	})
	return &testEnv{router: router, repo: repo, inbox: inbox, token: token, projectID: p.ID}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = "127.0.0.1:40000"
	req.Header.Set("Authorization", "Bearer "+e.token)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) load(t *testing.T) SessionResponse {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/session/load", LoadRequest{ProjectID: e.projectID})
	if rr.Code != http.StatusOK {
		t.Fatalf("load status = %d, body = %s", rr.Code, rr.Body.String())
	}
	return decodeSession(t, rr)
}

func decodeSession(t *testing.T, rr *httptest.ResponseRecorder) SessionResponse {
	t.Helper()
	var resp SessionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode session %q: %v", rr.Body.String(), err)
	}
	return resp
}

func messages(effects []session.Effect) []string {
	var out []string
	for _, e := range effects {
		if e.Kind == session.EffectNotify {
			out = append(out, e.Message)
		}
	}
	return out
}

func TestHealthRoute_NoAuth(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	body := decodeJSONBody(t, rr)
	if body["status"] != "ok" || body["offline"] != true {
		t.Errorf("body = %v", body)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("ACAO = %q", got)
	}
}

func TestSessionRoutes_RequireAuth(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	req.RemoteAddr = "127.0.0.1:40000"
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestSessionRoute_BeforeLoad(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/session", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	resp := decodeSession(t, rr)
	if resp.Session.Loaded {
		t.Error("session should not be loaded yet")
	}

	rr = env.do(t, http.MethodPost, "/tracks", nil)
	if rr.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusConflict)
	}
	if body := decodeJSONBody(t, rr); body["code"] != "NOT_FOUND" {
		t.Errorf("code = %v", body["code"])
	}
}

func TestLoadRoute(t *testing.T) {
	env := newTestEnv(t)

	resp := env.load(t)
	if !resp.Session.Loaded || resp.Session.Project.Name != "Demo" {
		t.Fatalf("session = %+v", resp.Session)
	}
	if len(resp.Session.Sections) != 3 || resp.Session.Sections[0].Number != 1 {
		t.Errorf("sections = %+v", resp.Session.Sections)
	}
	if resp.Session.Playback.Mode != "simulated" || resp.Session.Playback.Display != "00:00 / 01:00" {
		t.Errorf("playback = %+v", resp.Session.Playback)
	}
}

func TestLoadRoute_Errors(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/session/load", LoadRequest{})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("missing id status = %d", rr.Code)
	}

	rr = env.do(t, http.MethodPost, "/session/load", LoadRequest{ProjectID: "missing"})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
	var errResp ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &errResp); err != nil {
		t.Fatal(err)
	}
	if errResp.Code != "NOT_FOUND" || len(errResp.Effects) == 0 || errResp.Effects[0].Message != "Failed to load project" {
		t.Errorf("error response = %+v", errResp)
	}

	req := httptest.NewRequest(http.MethodPost, "/session/load", strings.NewReader("{"))
	req.RemoteAddr = "127.0.0.1:40000"
	req.Header.Set("Authorization", "Bearer "+env.token)
	bad := httptest.NewRecorder()
	env.router.ServeHTTP(bad, req)
	if bad.Code != http.StatusBadRequest {
		t.Errorf("malformed body status = %d", bad.Code)
	}
}

func TestSectionRoutes(t *testing.T) {
	env := newTestEnv(t)
	env.load(t)

	rr := env.do(t, http.MethodPost, "/sections", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("add status = %d", rr.Code)
	}
	if got := decodeSession(t, rr).Session; len(got.Sections) != 4 || got.Focused != 3 {
		t.Errorf("after add: %d sections, focused %d", len(got.Sections), got.Focused)
	}

	content := "Brand new words"
	rr = env.do(t, http.MethodPatch, "/sections/0", EditSectionRequest{Content: &content})
	if rr.Code != http.StatusOK {
		t.Fatalf("edit status = %d", rr.Code)
	}
	sec := decodeSession(t, rr).Session.Sections[0]
	if sec.Title != "Intro" || sec.Content != content {
		t.Errorf("section 0 = %+v, want title kept and content replaced", sec)
	}

	rr = env.do(t, http.MethodDelete, "/sections/1", nil)
	if rr.Code != http.StatusConflict {
		t.Fatalf("unconfirmed delete status = %d", rr.Code)
	}
	if body := decodeJSONBody(t, rr); body["code"] != "NOT_CONFIRMED" {
		t.Errorf("code = %v", body["code"])
	}

	rr = env.do(t, http.MethodDelete, "/sections/1?confirm=true", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("confirmed delete status = %d", rr.Code)
	}
	if n := len(decodeSession(t, rr).Session.Sections); n != 3 {
		t.Errorf("sections after delete = %d", n)
	}

	if rr = env.do(t, http.MethodPost, "/sections/99/focus", nil); rr.Code != http.StatusNotFound {
		t.Errorf("focus out of range status = %d", rr.Code)
	}
	if rr = env.do(t, http.MethodPost, "/sections/abc/focus", nil); rr.Code != http.StatusBadRequest {
		t.Errorf("non-numeric index status = %d", rr.Code)
	}

	stored, err := env.repo.GetProject(context.Background(), env.projectID)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored.Content.Scripts) != 3 || stored.Content.Scripts[0].Content != content {
		t.Errorf("persisted scripts = %+v", stored.Content.Scripts)
	}
}

func TestCanvasAndTimelineRoutes(t *testing.T) {
	env := newTestEnv(t)
	env.load(t)

	rr := env.do(t, http.MethodPost, "/elements", AddElementRequest{Type: "Text"})
	if rr.Code != http.StatusOK {
		t.Fatalf("add element status = %d", rr.Code)
	}
	resp := decodeSession(t, rr)
	if len(resp.Session.Elements) != 1 || resp.Session.Elements[0].Text != "Text" {
		t.Errorf("elements = %+v", resp.Session.Elements)
	}
	if msgs := messages(resp.Effects); len(msgs) != 1 || msgs[0] != "Text added to canvas" {
		t.Errorf("messages = %v", msgs)
	}

	if rr = env.do(t, http.MethodPost, "/elements", AddElementRequest{}); rr.Code != http.StatusBadRequest {
		t.Errorf("missing type status = %d", rr.Code)
	}
	if rr = env.do(t, http.MethodPost, "/elements/0/reposition", nil); rr.Code != http.StatusOK {
		t.Errorf("reposition status = %d", rr.Code)
	}

	rr = env.do(t, http.MethodPost, "/tracks", nil)
	if n := len(decodeSession(t, rr).Session.Timeline); n != 3 {
		t.Errorf("tracks = %d, want 3", n)
	}

	rr = env.do(t, http.MethodPost, "/clips/split", nil)
	if msgs := messages(decodeSession(t, rr).Effects); len(msgs) != 1 || msgs[0] != "Clip split at 00:00" {
		t.Errorf("messages = %v", msgs)
	}
}

func TestPlaybackRoutes(t *testing.T) {
	env := newTestEnv(t)
	env.load(t)

	rr := env.do(t, http.MethodPost, "/playback/toggle", nil)
	if pb := decodeSession(t, rr).Session.Playback; !pb.IsPlaying || pb.Status != "playing_simulated" {
		t.Errorf("after toggle: %+v", pb)
	}

	half := 0.5
	rr = env.do(t, http.MethodPost, "/playback/seek", SeekRequest{Fraction: &half})
	if pb := decodeSession(t, rr).Session.Playback; pb.CurrentTime != 30 {
		t.Errorf("after seek: current = %v", pb.CurrentTime)
	}

	if rr = env.do(t, http.MethodPost, "/playback/seek", map[string]any{}); rr.Code != http.StatusBadRequest {
		t.Errorf("seek without fraction status = %d", rr.Code)
	}

	rr = env.do(t, http.MethodPost, "/media/metadata", MetadataRequest{Duration: 120})
	if pb := decodeSession(t, rr).Session.Playback; pb.Duration != 120 {
		t.Errorf("duration = %v", pb.Duration)
	}
}

func TestAIRoutes(t *testing.T) {
	env := newTestEnv(t)
	env.load(t)

	rr := env.do(t, http.MethodPost, "/ai/tts", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("tts status = %d, body = %s", rr.Code, rr.Body.String())
	}
	resp := decodeSession(t, rr)
	if msgs := messages(resp.Effects); len(msgs) != 1 || msgs[0] != "Voiceover generated!" {
		t.Errorf("tts messages = %v", msgs)
	}
	if tl := resp.Session.Timeline; len(tl) != 2 || len(tl[1].Clips) != 2 || tl[1].Clips[1].Title != "AI Voiceover" {
		t.Errorf("timeline after tts = %+v, want voiceover clip on the audio track", tl)
	}

	rr = env.do(t, http.MethodPost, "/ai/translate", TranslateRequest{TargetLang: "French"})
	if msgs := messages(decodeSession(t, rr).Effects); len(msgs) != 1 || msgs[0] != "Project translated to French" {
		t.Errorf("translate messages = %v", msgs)
	}

	rr = env.do(t, http.MethodPost, "/subtitles", nil)
	if els := decodeSession(t, rr).Session.Elements; len(els) != 1 || els[0].Type != "subtitle" {
		t.Errorf("elements after subtitles = %+v", els)
	}

	rr = env.do(t, http.MethodPost, "/export", nil)
	var download bool
	for _, e := range decodeSession(t, rr).Effects {
		if e.Kind == session.EffectDownload && e.Filename == "project.mp4" {
			download = true
		}
	}
	if !download {
		t.Error("export should produce a download effect")
	}
}

func TestAIRoutes_ValidationGap(t *testing.T) {
	env := newTestEnv(t)
	env.load(t)

	empty := ""
	env.do(t, http.MethodPatch, "/sections/0", EditSectionRequest{Content: &empty})
	env.do(t, http.MethodPost, "/sections/0/focus", nil)

	rr := env.do(t, http.MethodPost, "/ai/rewrite", nil)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusUnprocessableEntity)
	}
	var errResp ErrorResponse
	json.Unmarshal(rr.Body.Bytes(), &errResp)
	if errResp.Code != "VALIDATION" || len(errResp.Effects) != 1 || errResp.Effects[0].Message != "Script section is empty" {
		t.Errorf("error response = %+v", errResp)
	}
}

func TestSaveRoute(t *testing.T) {
	env := newTestEnv(t)
	env.load(t)

	rr := env.do(t, http.MethodPost, "/save", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	resp := decodeSession(t, rr)
	msgs := messages(resp.Effects)
	if len(msgs) != 2 || msgs[0] != "Saving project..." || msgs[1] != "Project saved successfully!" {
		t.Errorf("messages = %v", msgs)
	}
	if resp.Session.Dirty || resp.Session.SavedAt == nil {
		t.Errorf("dirty = %v, savedAt = %v", resp.Session.Dirty, resp.Session.SavedAt)
	}

	rr = env.do(t, http.MethodPost, "/save", SaveRequest{Silent: true})
	if msgs := messages(decodeSession(t, rr).Effects); len(msgs) != 0 {
		t.Errorf("silent save messages = %v", msgs)
	}
}

func TestSessionRoute_DrainsInbox(t *testing.T) {
	env := newTestEnv(t)
	env.inbox.Notify(env.projectID, session.Effect{Kind: session.EffectNotify, Level: session.LevelSuccess, Message: "Project translated to Spanish"})

	rr := env.do(t, http.MethodGet, "/session", nil)
	if msgs := messages(decodeSession(t, rr).Effects); len(msgs) != 1 || msgs[0] != "Project translated to Spanish" {
		t.Errorf("first poll messages = %v", msgs)
	}

	rr = env.do(t, http.MethodGet, "/session", nil)
	if effects := decodeSession(t, rr).Effects; len(effects) != 0 {
		t.Errorf("second poll effects = %v, want drained", effects)
	}
}

func TestInbox_Limit(t *testing.T) {
	inbox := NewInbox()
	for i := 0; i < inboxLimit+5; i++ {
		inbox.Notify("p", session.Effect{Kind: session.EffectNotify, Message: string(rune('a' + i%26))})
	}
	got := inbox.Drain()
	if len(got) != inboxLimit {
		t.Fatalf("len = %d, want %d", len(got), inboxLimit)
	}
	if got[0].Message != string(rune('a'+5)) {
		t.Errorf("oldest kept = %q, want the sixth notification", got[0].Message)
	}
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{project.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{project.Invalid("x"), http.StatusUnprocessableEntity, "VALIDATION"},
		{session.ErrBusy, http.StatusConflict, "BUSY"},
		{session.ErrNotConfirmed, http.StatusConflict, "NOT_CONFIRMED"},
		{session.ErrRejected, http.StatusBadGateway, "TRANSPORT"},
		{&backend.StatusError{Op: "put project", StatusCode: 500}, http.StatusBadGateway, "TRANSPORT"},
		{context.Canceled, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		status, code := errorStatus(tt.err)
		if status != tt.status || code != tt.code {
			t.Errorf("errorStatus(%v) = %d %s, want %d %s", tt.err, status, code, tt.status, tt.code)
		}
	}
}

func TestMediaSourceRoute(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	get := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/media/source", nil)
		req.RemoteAddr = "127.0.0.1:40000"
		req.Header.Set("Range", "bytes=0-3")
		rr := httptest.NewRecorder()
		env.router.ServeHTTP(rr, req)
		return rr
	}

	if rr := get(); rr.Code != http.StatusNotFound {
		t.Fatalf("no project status = %d", rr.Code)
	}

	path := filepath.Join(t.TempDir(), "take1.mp4")
	if err := os.WriteFile(path, []byte("fake video bytes"), 0644); err != nil {
		t.Fatal(err)
	}
	local := &project.Project{Name: "Local", Type: project.TypeVideo, Content: project.Content{VideoURL: "file://" + path}}
	if err := env.repo.CreateProject(ctx, local); err != nil {
		t.Fatal(err)
	}
	env.projectID = local.ID
	resp := env.load(t)
	if resp.Session.Playback.Mode != "media" {
		t.Fatalf("mode = %q, want media", resp.Session.Playback.Mode)
	}

	rr := get()
	if rr.Code != http.StatusPartialContent || rr.Body.String() != "fake" {
		t.Errorf("local media: status = %d, body = %q", rr.Code, rr.Body.String())
	}

	remote := &project.Project{Name: "Remote", Type: project.TypeVideo}
	if err := env.repo.CreateProject(ctx, remote); err != nil {
		t.Fatal(err)
	}
	env.projectID = remote.ID
	env.load(t)

	rr = get()
	if rr.Code != http.StatusFound || rr.Header().Get("Location") != project.DefaultVideoURL {
		t.Errorf("remote media: status = %d, location = %q", rr.Code, rr.Header().Get("Location"))
	}
}
