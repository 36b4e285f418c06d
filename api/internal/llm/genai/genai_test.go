package genai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGenerateWithoutKey(t *testing.T) {
	if _, err := New("", "gemini-2.0-flash").Generate(context.Background(), "x"); err == nil {
		t.Fatal("expected error for empty API key")
	}
}

func TestGenerateReturnsText(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Light reactions..."}]}}]}`))
	}))
	defer srv.Close()

	e := New("test-key", "gemini-2.0-flash")
	e.BaseURL = srv.URL + "/"

	got, err := e.Generate(context.Background(), "Please provide...")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "Light reactions..." {
		t.Errorf("text = %q", got)
	}
	if !strings.Contains(gotPath, "gemini-2.0-flash:generateContent") {
		t.Errorf("path = %q", gotPath)
	}
}

func TestGenerateUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":500,"message":"boom","status":"INTERNAL"}}`))
	}))
	defer srv.Close()

	e := New("test-key", "gemini-2.0-flash")
	e.BaseURL = srv.URL + "/"
	if _, err := e.Generate(context.Background(), "x"); err == nil {
		t.Fatal("expected error on 500")
	}
}

func TestWithModelSharesClient(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"ok"}]}}]}`))
	}))
	defer srv.Close()

	e := New("test-key", "gemini-2.0-flash")
	e.BaseURL = srv.URL + "/"
	pro := e.WithModel("gemini-2.5-pro")

	for _, eng := range []interface {
		Generate(context.Context, string) (string, error)
	}{e, pro, e} {
		if _, err := eng.Generate(context.Background(), "x"); err != nil {
			t.Fatalf("Generate: %v", err)
		}
	}
	if e.GetModel() != "gemini-2.0-flash" {
		t.Errorf("original model = %q", e.GetModel())
	}
	if len(paths) != 3 || !strings.Contains(paths[1], "gemini-2.5-pro:") || !strings.Contains(paths[2], "gemini-2.0-flash:") {
		t.Errorf("paths = %q", paths)
	}
	if pro.(*Engine).cl != e.cl {
		t.Error("copy must share the client")
	}
}
