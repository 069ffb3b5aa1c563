package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParseNLIResponseShapes(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want NLIScores
	}{
		{
			name: "single object",
			raw:  `{"label":"entailment","score":0.91}`,
			want: NLIScores{Entail: 0.91},
		},
		{
			name: "flat list",
			raw:  `[{"label":"entailment","score":0.7},{"label":"neutral","score":0.2},{"label":"contradiction","score":0.1}]`,
			want: NLIScores{Entail: 0.7, Neutral: 0.2, Contradict: 0.1},
		},
		{
			name: "nested list",
			raw:  `[[{"label":"ENTAILED","score":0.6},{"label":"contradictory","score":0.3}]]`,
			want: NLIScores{Entail: 0.6, Contradict: 0.3},
		},
		{
			name: "unknown labels ignored",
			raw:  `[{"label":"mystery","score":0.99},{"label":"entail","score":0.5}]`,
			want: NLIScores{Entail: 0.5},
		},
	}
	for _, c := range cases {
		got, err := parseNLIResponse([]byte(c.raw))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", c.name, err)
		}
		if got != c.want {
			t.Fatalf("%s: got %+v, want %+v", c.name, got, c.want)
		}
	}
}

func TestParseNLIResponseUnrecognizedShape(t *testing.T) {
	if _, err := parseNLIResponse([]byte(`"just a string"`)); err == nil {
		t.Fatal("expected error for unrecognized shape")
	}
	if _, err := parseNLIResponse([]byte(`[]`)); err == nil {
		t.Fatal("expected error for empty payload")
	}
}

func TestHTTPNLIScorer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req nliRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("bad request body: %v", err)
		}
		if req.Text != "the premise" || req.TextPair != "the hypothesis" {
			t.Fatalf("unexpected pair: %+v", req)
		}
		w.Write([]byte(`[[{"label":"entailment","score":0.8},{"label":"contradiction","score":0.1}]]`))
	}))
	defer srv.Close()

	scorer := &HTTPNLIScorer{Endpoint: srv.URL, Client: srv.Client()}
	got, err := scorer.Score(context.Background(), "the premise", "the hypothesis")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Entail != 0.8 || got.Contradict != 0.1 {
		t.Fatalf("got %+v", got)
	}
}

func TestHTTPNLIScorerRetriesTransientFailure(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[{"label":"entailment","score":0.75}]`))
	}))
	defer srv.Close()

	scorer := &HTTPNLIScorer{Endpoint: srv.URL, Client: srv.Client()}
	got, err := scorer.Score(context.Background(), "p", "h")
	if err != nil {
		t.Fatalf("unexpected error after retry: %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected one retry, got %d attempts", attempts)
	}
	if got.Entail != 0.75 {
		t.Fatalf("got %+v", got)
	}
}
