package publisher

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
	"github.com/riskibarqy/cfb-analytics/internal/domain/playerstats"
	"github.com/riskibarqy/cfb-analytics/internal/platform/logging"
	"github.com/riskibarqy/cfb-analytics/internal/platform/resilience"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const DefaultStream = "cfb.season.built"

// StreamClient is the slice of the redis client the publisher needs.
type StreamClient interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

type RedisStreamPublisherConfig struct {
	Stream         string
	MaxLen         int64
	CircuitBreaker resilience.CircuitBreakerConfig
}

// SeasonBuiltEvent summarizes one completed season build.
type SeasonBuiltEvent struct {
	Season  int            `json:"season"`
	Plays   int            `json:"plays"`
	Rows    map[string]int `json:"rows"`
	Issues  []string       `json:"issues"`
	BuiltAt time.Time      `json:"built_at"`
}

// RedisStreamPublisher appends SeasonBuiltEvent payloads to a redis stream.
type RedisStreamPublisher struct {
	client  StreamClient
	stream  string
	maxLen  int64
	logger  *logging.Logger
	breaker *resilience.CircuitBreaker
	now     func() time.Time
}

func NewRedisStreamPublisher(client StreamClient, cfg RedisStreamPublisherConfig, logger *logging.Logger) *RedisStreamPublisher {
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("publisher")
	stream := strings.TrimSpace(cfg.Stream)
	if stream == "" {
		stream = DefaultStream
	}
	breaker := resilience.New("redis:"+stream, cfg.CircuitBreaker,
		resilience.WithStateChange(func(name string, from, to resilience.CircuitState) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", string(from), "to", string(to))
		}))
	return &RedisStreamPublisher{
		client:  client,
		stream:  stream,
		maxLen:  cfg.MaxLen,
		logger:  logger,
		breaker: breaker,
		now:     time.Now,
	}
}

// NewRedisClient opens a client from a redis:// URL and checks the connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, crerr.Wrap(err, "parse redis url")
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, crerr.Wrap(err, "ping redis")
	}
	return client, nil
}

func (p *RedisStreamPublisher) PublishSeason(ctx context.Context, tables playerstats.SeasonTables) error {
	event := NewSeasonBuiltEvent(tables, p.now().UTC())
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(event); err != nil {
		return crerr.Wrap(err, "encode season built event")
	}
	payload := strings.TrimRight(buf.String(), "\n")

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("redis.stream", p.stream),
			attribute.Int("cfb.season", tables.Season),
			attribute.Int("redis.payload_bytes", len(payload)),
		)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"data":      payload,
			"timestamp": event.BuiltAt.Unix(),
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	var id string
	err := p.breaker.Execute(func() error {
		var xaddErr error
		id, xaddErr = p.client.XAdd(ctx, args).Result()
		return xaddErr
	})
	if errors.Is(err, resilience.ErrCircuitOpen) {
		p.logger.WarnContext(ctx, "redis stream circuit breaker rejected publish", "state", string(p.breaker.State()), "stream", p.stream)
		return fmt.Errorf("redis stream is temporarily unavailable: %w", err)
	}
	if err != nil {
		return crerr.Wrapf(err, "xadd stream=%s season=%d", p.stream, tables.Season)
	}

	p.logger.InfoContext(ctx, "season built event published", "stream", p.stream, "season", tables.Season, "id", id)
	return nil
}

func NewSeasonBuiltEvent(tables playerstats.SeasonTables, builtAt time.Time) SeasonBuiltEvent {
	rows := make(map[string]int, len(playerstats.AllRoles))
	for _, table := range tables.Tables() {
		rows[string(table.Role)] = len(table.Rows)
	}
	issues := tables.Issues
	if issues == nil {
		issues = []string{}
	}
	return SeasonBuiltEvent{
		Season:  tables.Season,
		Plays:   tables.PlayCount,
		Rows:    rows,
		Issues:  issues,
		BuiltAt: builtAt,
	}
}
