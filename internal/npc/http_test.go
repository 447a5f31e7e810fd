package npc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTTPAdvisor(t *testing.T) {
	var gotPath, gotKey, gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		var req genRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotPrompt = req.Contents[0].Parts[0].Text
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"I flee "},{"text":"to the woods."}]}}]}`))
	}))
	defer srv.Close()

	a := NewHTTPAdvisor(srv.Client(), srv.URL+"/v1beta/models/", "test-model", "secret")
	d, err := a.Advise(context.Background(), Request{Personality: "goblin", Situation: "hit"})
	if err != nil {
		t.Fatalf("advise: %v", err)
	}
	if gotPath != "/v1beta/models/test-model:generateContent" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotKey != "secret" {
		t.Fatalf("expected api key header, got %q", gotKey)
	}
	if !strings.Contains(gotPrompt, "hit") {
		t.Fatalf("prompt missing situation: %q", gotPrompt)
	}
	if d.Action != ActionFlee || d.Speech != "I flee to the woods." {
		t.Fatalf("unexpected directive %+v", d)
	}
}

func TestHTTPAdvisorErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/bad:generateContent":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid"}}`))
		default:
			_, _ = w.Write([]byte(`{"candidates":[]}`))
		}
	}))
	defer srv.Close()

	_, err := NewHTTPAdvisor(srv.Client(), srv.URL, "bad", "").Advise(context.Background(), Request{})
	if err == nil || !strings.Contains(err.Error(), "API key not valid") {
		t.Fatalf("expected service error, got %v", err)
	}
	_, err = NewHTTPAdvisor(srv.Client(), srv.URL, "empty", "").Advise(context.Background(), Request{})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}
