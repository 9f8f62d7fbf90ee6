package toolkit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPCommanderInvoke(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"accepted":true,"event_will_follow":true}`))
	}))
	defer srv.Close()

	c, err := NewHTTPCommander(srv.URL, 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	res, err := c.Hold(context.Background(), "call-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if gotPath != "/calls/call-1/hold" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if !res.Accepted || !res.EventWillFollow {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestHTTPCommanderSynchronousAck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"accepted":true,"event_will_follow":false,"detail":"ended locally"}`))
	}))
	defer srv.Close()

	c, _ := NewHTTPCommander(srv.URL, 0)
	res, err := c.EndCall(context.Background(), "call-2")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !res.Accepted || res.EventWillFollow {
		t.Fatalf("expected synchronous ack, got %+v", res)
	}
}

func TestHTTPCommanderRejectionIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"accepted":false,"detail":"no active call"}`))
	}))
	defer srv.Close()

	c, _ := NewHTTPCommander(srv.URL, 0)
	res, err := c.Mute(context.Background(), "call-3")
	if err != nil {
		t.Fatalf("rejection must not be a transport error, got %v", err)
	}
	if res.Accepted {
		t.Fatalf("expected rejection")
	}
}

func TestHTTPCommanderEmptyBodyMeansEventWillFollow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c, _ := NewHTTPCommander(srv.URL, 0)
	res, err := c.Resume(context.Background(), "call-4")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !res.Accepted || !res.EventWillFollow {
		t.Fatalf("expected deferred confirmation, got %+v", res)
	}
}

func TestHTTPCommanderStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, _ := NewHTTPCommander(srv.URL, 0)
	if _, err := c.Unmute(context.Background(), "call-5"); err == nil {
		t.Fatalf("expected error on 502")
	}
}

func TestHTTPCommanderHealthCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/healthz" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, _ := NewHTTPCommander(srv.URL, 0)
	if err := c.HealthCheck(context.Background()); err != nil {
		t.Fatalf("expected healthy, got %v", err)
	}

	srv.Close()
	if err := c.HealthCheck(context.Background()); err == nil {
		t.Fatalf("expected unreachable after close")
	}
}

func TestNewHTTPCommanderRequiresBase(t *testing.T) {
	if _, err := NewHTTPCommander("  ", 0); err == nil {
		t.Fatalf("expected error for empty base url")
	}
}
