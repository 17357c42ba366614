package parser

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPClientParse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/parse" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key-123" {
			t.Errorf("unexpected auth header %q", got)
		}
		var req struct {
			Text string `json:"text"`
			Kind string `json:"kind"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Kind != "resume" {
			t.Errorf("unexpected kind %q", req.Kind)
		}
		json.NewEncoder(w).Encode(Result{
			Profile: &CandidateProfile{Name: "John Doe", Skills: []string{"Go"}},
		})
	}))
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(server.URL, "key-123")
	if err != nil {
		t.Fatalf("NewHTTPClient: %v", err)
	}

	result, err := client.Parse(context.Background(), "John Doe writes Go", KindResume)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if result.Profile == nil || result.Profile.Name != "John Doe" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestHTTPClientParseUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(server.URL, "")
	if err != nil {
		t.Fatalf("NewHTTPClient: %v", err)
	}
	if _, err := client.Parse(context.Background(), "text", KindResume); err == nil {
		t.Fatal("expected error for upstream 500")
	}
}

func TestHTTPClientParseMissingProfile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Result{})
	}))
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(server.URL, "")
	if err != nil {
		t.Fatalf("NewHTTPClient: %v", err)
	}
	if _, err := client.Parse(context.Background(), "text", KindResume); err == nil {
		t.Fatal("expected error when resume result has no profile")
	}
}

func TestCandidateProfilePopulatedFields(t *testing.T) {
	p := &CandidateProfile{Name: "A", Skills: []string{"Go"}, YearsExperience: 3}
	got := p.PopulatedFields()
	want := map[string]bool{"name": true, "skills": true, "yearsExperience": true}
	if len(got) != len(want) {
		t.Fatalf("unexpected fields %v", got)
	}
	for _, f := range got {
		if !want[f] {
			t.Fatalf("unexpected field %q", f)
		}
	}
}

func TestResultEmpty(t *testing.T) {
	if !(Result{}).Empty() {
		t.Fatal("zero result must be empty")
	}
	if !(Result{Profile: &CandidateProfile{}}).Empty() {
		t.Fatal("blank profile must be empty")
	}
	if (Result{Profile: &CandidateProfile{Name: "X"}}).Empty() {
		t.Fatal("named profile must not be empty")
	}
	if (Result{Job: &JobProfile{Title: "Engineer"}}).Empty() {
		t.Fatal("titled job must not be empty")
	}
}
