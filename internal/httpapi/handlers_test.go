package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"call-console/internal/console"
	"call-console/internal/engine"
	"call-console/internal/notify"
	"call-console/internal/records"
	"call-console/internal/toolkit"

	"github.com/gin-gonic/gin"
)

type okCommander struct{ res toolkit.CommandResult }

func (okCommander) Name() string { return "ok" }

func (okCommander) HealthCheck(ctx context.Context) error { return nil }
func (c okCommander) Hold(ctx context.Context, ref string) (toolkit.CommandResult, error) {
	return c.res, nil
}
func (c okCommander) Resume(ctx context.Context, ref string) (toolkit.CommandResult, error) {
	return c.res, nil
}
func (c okCommander) Mute(ctx context.Context, ref string) (toolkit.CommandResult, error) {
	return c.res, nil
}
func (c okCommander) Unmute(ctx context.Context, ref string) (toolkit.CommandResult, error) {
	return c.res, nil
}
func (c okCommander) EndCall(ctx context.Context, ref string) (toolkit.CommandResult, error) {
	return c.res, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *console.Manager, *records.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := records.NewMemoryStore()
	m, err := console.NewManager(console.ManagerOptions{
		Store:             store,
		Commander:         okCommander{res: toolkit.CommandResult{Accepted: true, EventWillFollow: true}},
		Notifier:          &notify.MemoryNotifier{},
		DiscoveryInterval: time.Millisecond,
		DiscoveryAttempts: 2,
	})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	t.Cleanup(m.Close)

	h := Handlers{Sessions: m}
	r := gin.New()
	r.POST("/webhooks/toolkit/:session_id/events", h.ToolkitEvent)
	v1 := r.Group("/v1")
	{
		v1.POST("/sessions", h.AttachSession)
		v1.GET("/sessions/:session_id", h.GetSession)
		v1.DELETE("/sessions/:session_id", h.DetachSession)
		v1.POST("/sessions/:session_id/reset", h.ResetSession)
		v1.POST("/sessions/:session_id/commands/:command", h.Command)
		v1.GET("/sessions/:session_id/debuglog", h.GetDebugLog)
	}
	return r, m, store
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	out := map[string]any{}
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("invalid response json: %v (%s)", err, w.Body.String())
		}
	}
	return w, out
}

func attach(t *testing.T, r *gin.Engine, store *records.MemoryStore, recordID string) string {
	t.Helper()
	store.Put(records.Record{
		RecordID:   recordID,
		Direction:  records.DirectionInbound,
		FromNumber: "+15551230001",
		CallRef:    "ref-" + recordID,
	})
	w, out := doJSON(t, r, http.MethodPost, "/v1/sessions", `{"record_id":"`+recordID+`"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("attach status %d: %s", w.Code, w.Body.String())
	}
	id, _ := out["session_id"].(string)
	if id == "" {
		t.Fatalf("expected session_id in %v", out)
	}
	return id
}

func TestAttachAndSnapshot(t *testing.T) {
	r, _, store := newTestRouter(t)
	id := attach(t, r, store, "r1")

	w, out := doJSON(t, r, http.MethodGet, "/v1/sessions/"+id, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if out["display_line"] != "Incoming call from +15551230001" {
		t.Fatalf("unexpected display_line %v", out["display_line"])
	}
	state := out["state"].(map[string]any)
	if state["status"] != string(engine.StatusNoCall) {
		t.Fatalf("expected no_call, got %v", state["status"])
	}
}

func TestAttachUnknownRecord(t *testing.T) {
	r, _, _ := newTestRouter(t)
	w, _ := doJSON(t, r, http.MethodPost, "/v1/sessions", `{"record_id":"missing"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestEventWebhookDrivesState(t *testing.T) {
	r, _, store := newTestRouter(t)
	id := attach(t, r, store, "r1")

	for _, name := range []string{"callstarted", "callconnected", "hold"} {
		w, _ := doJSON(t, r, http.MethodPost, "/webhooks/toolkit/"+id+"/events", `{"name":"`+name+`"}`)
		if w.Code != http.StatusAccepted {
			t.Fatalf("event %s status %d", name, w.Code)
		}
	}

	_, out := doJSON(t, r, http.MethodGet, "/v1/sessions/"+id, "")
	state := out["state"].(map[string]any)
	if state["status"] != string(engine.StatusConnected) {
		t.Fatalf("expected connected, got %v", state["status"])
	}
	if state["is_on_hold"] != true {
		t.Fatalf("expected on hold")
	}
}

func TestEventWebhookUnknownSession(t *testing.T) {
	r, _, _ := newTestRouter(t)
	w, _ := doJSON(t, r, http.MethodPost, "/webhooks/toolkit/nope/events", `{"name":"hold"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestEventWebhookRequiresName(t *testing.T) {
	r, _, store := newTestRouter(t)
	id := attach(t, r, store, "r1")
	w, _ := doJSON(t, r, http.MethodPost, "/webhooks/toolkit/"+id+"/events", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestCommandEndpoint(t *testing.T) {
	r, m, store := newTestRouter(t)
	id := attach(t, r, store, "r1")

	s, _ := m.Get(id)
	// Discovery with an always-healthy commander flips this quickly, but the
	// test should not depend on goroutine timing.
	deadline := time.Now().Add(2 * time.Second)
	for !s.Snapshot().TelephonyAvailable {
		if time.Now().After(deadline) {
			t.Fatalf("toolkit never became available")
		}
		time.Sleep(time.Millisecond)
	}

	doJSON(t, r, http.MethodPost, "/webhooks/toolkit/"+id+"/events", `{"name":"callstarted"}`)
	doJSON(t, r, http.MethodPost, "/webhooks/toolkit/"+id+"/events", `{"name":"callconnected"}`)

	w, out := doJSON(t, r, http.MethodPost, "/v1/sessions/"+id+"/commands/hold", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	if out["accepted"] != true {
		t.Fatalf("expected accepted, got %v", out)
	}

	w, _ = doJSON(t, r, http.MethodPost, "/v1/sessions/"+id+"/commands/transfer", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown command, got %d", w.Code)
	}
}

func TestResetAndDebugLog(t *testing.T) {
	r, _, store := newTestRouter(t)
	id := attach(t, r, store, "r1")

	doJSON(t, r, http.MethodPost, "/webhooks/toolkit/"+id+"/events", `{"name":"callstarted"}`)
	w, out := doJSON(t, r, http.MethodPost, "/v1/sessions/"+id+"/reset", "")
	if w.Code != http.StatusOK {
		t.Fatalf("reset status %d", w.Code)
	}
	state := out["state"].(map[string]any)
	if state["status"] != string(engine.StatusNoCall) {
		t.Fatalf("expected reset to no_call, got %v", state["status"])
	}

	w, out = doJSON(t, r, http.MethodGet, "/v1/sessions/"+id+"/debuglog", "")
	if w.Code != http.StatusOK {
		t.Fatalf("debuglog status %d", w.Code)
	}
	if _, ok := out["entries"].([]any); !ok {
		t.Fatalf("expected entries array, got %v", out)
	}
}

func TestDetach(t *testing.T) {
	r, _, store := newTestRouter(t)
	id := attach(t, r, store, "r1")

	w, _ := doJSON(t, r, http.MethodDelete, "/v1/sessions/"+id, "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	w, _ = doJSON(t, r, http.MethodGet, "/v1/sessions/"+id, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after detach, got %d", w.Code)
	}
}
