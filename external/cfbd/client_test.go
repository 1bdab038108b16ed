package cfbd

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/cfb-analytics/internal/platform/logging"
	"github.com/riskibarqy/cfb-analytics/internal/platform/resilience"
	"github.com/riskibarqy/cfb-analytics/internal/usecase"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, cfg ClientConfig) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg.BaseURL = srv.URL
	cfg.HTTPClient = srv.Client()
	cfg.Logger = logging.NewNop()
	cfg.RetryBackoff = time.Millisecond
	return NewClient(cfg)
}

func TestClient_FetchTeamsAndRoster(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected auth header: %q", got)
		}
		switch r.URL.Path {
		case "/teams":
			if r.URL.Query().Get("year") != "2019" {
				t.Errorf("unexpected year: %s", r.URL.RawQuery)
			}
			_, _ = w.Write([]byte(`[{"id":99,"school":"LSU","conference":"SEC"},{"id":0,"school":" "}]`))
		case "/roster":
			if r.URL.Query().Get("team") != "LSU" {
				t.Errorf("unexpected team: %s", r.URL.RawQuery)
			}
			_, _ = w.Write([]byte(`[{"id":"4","firstName":"Joe","lastName":"Burrow","position":"QB"}]`))
		default:
			http.NotFound(w, r)
		}
	}, ClientConfig{APIKey: "secret"})

	teams, err := client.FetchTeams(context.Background(), 2019)
	if err != nil {
		t.Fatalf("fetch teams: %v", err)
	}
	if len(teams) != 1 || teams[0].ID != "99" || teams[0].Conference != "SEC" {
		t.Fatalf("unexpected teams: %+v", teams)
	}

	players, err := client.FetchRoster(context.Background(), 2019, "LSU")
	if err != nil {
		t.Fatalf("fetch roster: %v", err)
	}
	if len(players) != 1 || players[0].ID != "4" || players[0].LastName != "Burrow" {
		t.Fatalf("unexpected roster: %+v", players)
	}
}

func TestClient_FetchPlaysAndStats(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/plays":
			_, _ = w.Write([]byte(`[{"id":"401110723101","gameId":401110723,"down":1,"distance":10,"yardsToGoal":75,"playType":"Rush"}]`))
		case "/plays/stats":
			if r.URL.Query().Get("gameId") != "401110723" {
				t.Errorf("unexpected game id: %s", r.URL.RawQuery)
			}
			_, _ = w.Write([]byte(`[{"gameId":401110723,"playId":"401110723101","athleteId":"22","athleteName":"Clyde Edwards-Helaire","statType":"Rush","stat":5}]`))
		}
	}, ClientConfig{})

	plays, err := client.FetchPlays(context.Background(), 2019, 1)
	if err != nil {
		t.Fatalf("fetch plays: %v", err)
	}
	if len(plays) != 1 || plays[0]["playType"] != "Rush" || plays[0]["yardsToGoal"] != float64(75) {
		t.Fatalf("unexpected plays: %+v", plays)
	}

	stats, err := client.FetchPlayStats(context.Background(), "401110723")
	if err != nil {
		t.Fatalf("fetch play stats: %v", err)
	}
	if len(stats) != 1 || stats[0].GameID != "401110723" || stats[0].PlayID != "401110723101" || stats[0].Stat != 5 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestClient_RetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}, ClientConfig{MaxRetries: 2})

	if _, err := client.FetchTeams(context.Background(), 2019); err != nil {
		t.Fatalf("expected success after retries: %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestClient_NonRetryableStatus(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"bad key"}`))
	}, ClientConfig{MaxRetries: 3})

	_, err := client.FetchTeams(context.Background(), 2019)
	if err == nil {
		t.Fatalf("expected error for unauthorized")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single attempt, got %d", calls.Load())
	}
}

func TestClient_CircuitOpensAfterTransientFailures(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}, ClientConfig{
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	})

	for i := 0; i < 2; i++ {
		if _, err := client.FetchPlays(context.Background(), 2019, 1); err == nil {
			t.Fatalf("expected upstream failure")
		}
	}
	_, err := client.FetchPlays(context.Background(), 2019, 1)
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable once circuit is open, got %v", err)
	}
}

func TestFlexID(t *testing.T) {
	tests := map[string]string{
		`"abc"`:      "abc",
		`401110723`:  "401110723",
		`4.0`:        "4",
		`null`:       "",
		`" padded "`: "padded",
	}
	for in, want := range tests {
		var id flexID
		if err := id.UnmarshalJSON([]byte(in)); err != nil {
			t.Fatalf("unmarshal %s: %v", in, err)
		}
		if string(id) != want {
			t.Fatalf("flexID(%s) = %q, want %q", in, id, want)
		}
	}
}
