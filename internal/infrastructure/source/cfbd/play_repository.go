package cfbd

import (
	"bufio"
	"context"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/cfb-analytics/internal/domain/play"
	"github.com/riskibarqy/cfb-analytics/internal/platform/logging"
)

const PlayFileName = "pbp_cfbd_raw.jsonl"

const maxLineBytes = 4 << 20

var ErrMalformedPlay = crerr.New("malformed cfbd play")

// PlayRepository reads raw CFBD plays, one JSON object per line, from
// <root>/<season>/pbp_cfbd_raw.jsonl and maps them to canonical records.
type PlayRepository struct {
	root   string
	logger *logging.Logger
}

func NewPlayRepository(root string, logger *logging.Logger) *PlayRepository {
	if logger == nil {
		logger = logging.Default()
	}
	return &PlayRepository{root: root, logger: logger}
}

func (r *PlayRepository) LoadSeason(ctx context.Context, season int) (play.Table, error) {
	path := filepath.Join(r.root, strconv.Itoa(season), PlayFileName)
	f, err := os.Open(path)
	if err != nil {
		return play.Table{}, crerr.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	table, err := Decode(f)
	if err != nil {
		return play.Table{}, crerr.Wrapf(err, "decode %s", path)
	}
	r.logger.InfoContext(ctx, "cfbd plays loaded", "season", season, "path", path, "plays", len(table.Records))
	return table, nil
}

// Decode maps a JSON-lines stream of provider plays. Blank lines are skipped.
func Decode(r io.Reader) (play.Table, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	records := make([]play.Record, 0, 1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		var obj map[string]any
		if err := sonic.UnmarshalString(raw, &obj); err != nil {
			return play.Table{}, crerr.Wrapf(crerr.Mark(err, ErrMalformedPlay), "line %d", line)
		}
		rec := Map(obj)
		if rec.PlayNumber == 0 {
			rec.PlayNumber = len(records) + 1
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return play.Table{}, crerr.Wrap(err, "scan cfbd plays")
	}
	return play.Table{Records: records, Columns: play.NewColumnSet(play.ColumnSackYards)}, nil
}

// Map converts one provider play object. Absent or null fields read as
// undefined for nullable fields and as zero or false otherwise.
func Map(obj map[string]any) play.Record {
	f := fields(obj)
	playType := strings.ToLower(f.str("playType"))

	r := play.Record{
		Season:      f.intOr("season", 0),
		GameID:      f.firstStr("game_id", "gameId"),
		PlayNumber:  f.intOr("playNumber", 0),
		Down:        f.optInt("down"),
		Distance:    f.optInt("distance"),
		YardLine100: f.firstOptInt("yardsToGoal", "yardline"),
		YardsGained: f.intOr("yardsGained", 0),

		Complete:     f.flag("completion"),
		Touchdown:    f.flag("touchdown"),
		Interception: f.flag("interception"),
		Sack:         f.flag("sack"),
		Fumble:       f.flag("fumble"),
		SackYards:    f.intOr("sack_yards", 0),

		Passer:         f.participant("passer_player_id", "passer_player_name"),
		Rusher:         f.participant("rusher_player_id", "rusher_player_name"),
		Receiver:       f.participant("receiver_player_id", "receiver_player_name"),
		FumbleRecovery: f.participant("fumble_recovery_id", "fumble_recovery_name"),
	}

	r.IsPass = containsAny(playType, "pass", "sack", "interception", "incomplet")
	r.IsRush = !r.IsPass && containsAny(playType, "rush", "run", "kneel", "draw")
	r.Safety = strings.Contains(playType, "safety")
	r.FGAttempt = strings.Contains(playType, "field goal")
	r.PuntAttempt = strings.Contains(playType, "punt")

	points := 0
	switch {
	case r.Touchdown:
		points = 7
	case r.Safety:
		points = -2
	}
	r.PointsScored = &points
	return r
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

type fields map[string]any

func (f fields) value(key string) (any, bool) {
	v, ok := f[key]
	if !ok || v == nil {
		return nil, false
	}
	if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
		return nil, false
	}
	return v, true
}

func (f fields) str(key string) string {
	v, ok := f.value(key)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == math.Trunc(t) && !math.IsInf(t, 0) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

func (f fields) firstStr(keys ...string) string {
	for _, k := range keys {
		if s := f.str(k); s != "" {
			return s
		}
	}
	return ""
}

func (f fields) optInt(key string) *int {
	v, ok := f.value(key)
	if !ok {
		return nil
	}
	var n float64
	switch t := v.(type) {
	case float64:
		n = t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil
		}
		n = parsed
	case bool:
		if t {
			n = 1
		}
	default:
		return nil
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return nil
	}
	out := int(math.Round(n))
	return &out
}

func (f fields) firstOptInt(keys ...string) *int {
	for _, k := range keys {
		if v := f.optInt(k); v != nil {
			return v
		}
	}
	return nil
}

func (f fields) intOr(key string, fallback int) int {
	if v := f.optInt(key); v != nil {
		return *v
	}
	return fallback
}

func (f fields) flag(key string) bool {
	return f.intOr(key, 0) > 0
}

func (f fields) participant(idKey, nameKey string) *play.Participant {
	p := &play.Participant{ID: f.str(idKey), Name: f.str(nameKey)}
	if !p.Known() {
		return nil
	}
	return p
}
