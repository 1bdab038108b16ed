package publisher

import (
	"context"
	"errors"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"github.com/riskibarqy/cfb-analytics/internal/domain/playerstats"
	"github.com/riskibarqy/cfb-analytics/internal/platform/resilience"
)

type fakeStreamClient struct {
	calls []*redis.XAddArgs
	err   error
}

func (f *fakeStreamClient) XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd {
	f.calls = append(f.calls, a)
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	return redis.NewStringResult("1700000000000-0", nil)
}

func sampleTables() playerstats.SeasonTables {
	return playerstats.SeasonTables{
		Season:    2019,
		PlayCount: 152,
		Passing:   []playerstats.PassingRow{{Identity: playerstats.Identity{Season: 2019, PlayerID: "qb1"}}},
		Defense:   []playerstats.DefenseRow{{}, {}},
	}
}

func TestRedisStreamPublisher_PublishSeason(t *testing.T) {
	client := &fakeStreamClient{}
	p := NewRedisStreamPublisher(client, RedisStreamPublisherConfig{MaxLen: 100}, nil)
	p.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	if err := p.PublishSeason(context.Background(), sampleTables()); err != nil {
		t.Fatalf("publish season: %v", err)
	}
	if len(client.calls) != 1 {
		t.Fatalf("expected one xadd, got %d", len(client.calls))
	}

	call := client.calls[0]
	if call.Stream != DefaultStream || call.MaxLen != 100 || !call.Approx {
		t.Fatalf("unexpected xadd args: %+v", call)
	}
	values, ok := call.Values.(map[string]any)
	if !ok {
		t.Fatalf("unexpected values type %T", call.Values)
	}
	if values["timestamp"] != int64(1772366400) {
		t.Fatalf("unexpected timestamp: %v", values["timestamp"])
	}

	var event SeasonBuiltEvent
	if err := sonic.UnmarshalString(values["data"].(string), &event); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if event.Season != 2019 || event.Plays != 152 || event.Rows["passing"] != 1 || event.Rows["defense"] != 2 || event.Rows["rushing"] != 0 {
		t.Fatalf("unexpected event: %+v", event)
	}
	if event.Issues == nil {
		t.Fatalf("expected empty issues list, not null")
	}
}

func TestRedisStreamPublisher_CircuitOpensAfterFailures(t *testing.T) {
	client := &fakeStreamClient{err: errors.New("connection refused")}
	p := NewRedisStreamPublisher(client, RedisStreamPublisherConfig{
		CircuitBreaker: resilience.CircuitBreakerConfig{Enabled: true, FailureThreshold: 2, OpenTimeout: time.Minute, HalfOpenMaxReq: 1},
	}, nil)

	for i := 0; i < 2; i++ {
		if err := p.PublishSeason(context.Background(), sampleTables()); err == nil {
			t.Fatalf("expected publish error on attempt %d", i+1)
		}
	}

	err := p.PublishSeason(context.Background(), sampleTables())
	if !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Fatalf("expected circuit open error, got %v", err)
	}
	if len(client.calls) != 2 {
		t.Fatalf("expected rejected publish to skip redis, got %d calls", len(client.calls))
	}
}

func TestRedisStreamPublisher_CustomStream(t *testing.T) {
	client := &fakeStreamClient{}
	p := NewRedisStreamPublisher(client, RedisStreamPublisherConfig{Stream: " analytics.builds "}, nil)
	if err := p.PublishSeason(context.Background(), playerstats.SeasonTables{Season: 2020}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if client.calls[0].Stream != "analytics.builds" || client.calls[0].MaxLen != 0 {
		t.Fatalf("unexpected xadd args: %+v", client.calls[0])
	}
}
