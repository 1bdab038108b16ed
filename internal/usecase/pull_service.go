package usecase

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/cfb-analytics/internal/domain/roster"
	"github.com/riskibarqy/cfb-analytics/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultPullWeeks       = 14
	defaultPullConcurrency = 4
)

type ExternalTeam struct {
	ID         string
	School     string
	Conference string
}

type ExternalRosterPlayer struct {
	ID        string
	FirstName string
	LastName  string
	Position  string
}

// ExternalPlayStat is one athlete credit on a play, e.g. "Completion" or "Rush".
type ExternalPlayStat struct {
	GameID      string
	PlayID      string
	AthleteID   string
	AthleteName string
	StatType    string
	Stat        float64
}

// CollegeFootballProvider is the upstream play-by-play API.
type CollegeFootballProvider interface {
	FetchTeams(ctx context.Context, season int) ([]ExternalTeam, error)
	FetchRoster(ctx context.Context, season int, team string) ([]ExternalRosterPlayer, error)
	// FetchPlays returns the provider's play objects for one regular-season week.
	FetchPlays(ctx context.Context, season, week int) ([]map[string]any, error)
	FetchPlayStats(ctx context.Context, gameID string) ([]ExternalPlayStat, error)
}

// RawSeasonStore persists pulled inputs where the season loaders read them.
type RawSeasonStore interface {
	SaveRoster(ctx context.Context, season int, entries []roster.Entry) error
	SavePlays(ctx context.Context, season int, plays []map[string]any) error
}

type PullResult struct {
	Season        int   `json:"season"`
	Teams         int   `json:"teams"`
	RosterEntries int   `json:"roster_entries"`
	Plays         int   `json:"plays"`
	Games         int   `json:"games"`
	SkippedTeams  int   `json:"skipped_teams"`
	SkippedWeeks  int   `json:"skipped_weeks"`
	DurationMs    int64 `json:"duration_ms"`
}

// PullService downloads rosters and play-by-play for a season and stores
// them as raw inputs for SeasonService.
type PullService struct {
	provider    CollegeFootballProvider
	store       RawSeasonStore
	weeks       int
	concurrency int
	logger      *logging.Logger
}

func NewPullService(provider CollegeFootballProvider, store RawSeasonStore, weeks, concurrency int, logger *logging.Logger) *PullService {
	if logger == nil {
		logger = logging.Default()
	}
	if weeks <= 0 {
		weeks = DefaultPullWeeks
	}
	if concurrency <= 0 {
		concurrency = defaultPullConcurrency
	}
	return &PullService{
		provider:    provider,
		store:       store,
		weeks:       weeks,
		concurrency: concurrency,
		logger:      logger,
	}
}

func (s *PullService) PullSeason(ctx context.Context, season int) (PullResult, error) {
	ctx, span := startSeasonSpan(ctx, "usecase.PullService.PullSeason", season)
	result, err := s.pullSeason(ctx, season)
	endSpan(span, err)
	return result, err
}

func (s *PullService) pullSeason(ctx context.Context, season int) (PullResult, error) {
	if season <= 0 {
		return PullResult{}, fmt.Errorf("%w: season must be greater than zero", ErrInvalidInput)
	}
	if s.provider == nil || s.store == nil {
		return PullResult{}, fmt.Errorf("%w: provider and raw store are required", ErrDependencyUnavailable)
	}

	start := time.Now()
	result := PullResult{Season: season}

	entries, teams, skippedTeams, err := s.pullRosters(ctx, season)
	if err != nil {
		return PullResult{}, err
	}
	if err := s.store.SaveRoster(ctx, season, entries); err != nil {
		return PullResult{}, fmt.Errorf("save roster season=%d: %w", season, err)
	}
	result.Teams = teams
	result.RosterEntries = len(entries)
	result.SkippedTeams = skippedTeams

	plays, games, skippedWeeks, err := s.pullPlays(ctx, season)
	if err != nil {
		return PullResult{}, err
	}
	if err := s.store.SavePlays(ctx, season, plays); err != nil {
		return PullResult{}, fmt.Errorf("save plays season=%d: %w", season, err)
	}
	result.Plays = len(plays)
	result.Games = games
	result.SkippedWeeks = skippedWeeks
	result.DurationMs = time.Since(start).Milliseconds()

	s.logger.InfoContext(ctx, "season pull completed",
		"season", season,
		"teams", result.Teams,
		"roster_entries", result.RosterEntries,
		"plays", result.Plays,
		"games", result.Games,
		"duration_ms", result.DurationMs,
	)
	return result, nil
}

// pullRosters fetches every team's roster. A failing team is logged and
// skipped; the team list itself is required.
func (s *PullService) pullRosters(ctx context.Context, season int) ([]roster.Entry, int, int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PullService.pullRosters")
	defer span.End()

	teams, err := s.provider.FetchTeams(ctx, season)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("fetch teams season=%d: %w", season, err)
	}

	byTeam := make([][]roster.Entry, len(teams))
	var (
		mu      sync.Mutex
		skipped int
	)
	p := pool.New().WithContext(ctx).WithMaxGoroutines(s.concurrency)
	for i, team := range teams {
		p.Go(func(ctx context.Context) error {
			players, err := s.provider.FetchRoster(ctx, season, team.School)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.logger.WarnContext(ctx, "skip team roster", "season", season, "team", team.School, "error", err)
				mu.Lock()
				skipped++
				mu.Unlock()
				return nil
			}
			byTeam[i] = rosterEntries(season, team, players)
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, 0, 0, err
	}

	entries := make([]roster.Entry, 0, len(teams)*100)
	for _, items := range byTeam {
		entries = append(entries, items...)
	}
	return entries, len(teams), skipped, nil
}

// pullPlays walks the regular-season weeks in order and credits each play
// with its athletes. Play stats are requested once per game.
func (s *PullService) pullPlays(ctx context.Context, season int) ([]map[string]any, int, int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PullService.pullPlays", attribute.Int("cfb.weeks", s.weeks))
	defer span.End()

	plays := make([]map[string]any, 0, 4096)
	statsByGame := make(map[string]map[string][]ExternalPlayStat, 128)
	skippedWeeks := 0

	for week := 1; week <= s.weeks; week++ {
		weekPlays, err := s.provider.FetchPlays(ctx, season, week)
		if err != nil {
			if ctx.Err() != nil {
				return nil, 0, 0, ctx.Err()
			}
			s.logger.WarnContext(ctx, "skip play-by-play week", "season", season, "week", week, "error", err)
			skippedWeeks++
			continue
		}

		newGames := make([]string, 0, 64)
		for _, raw := range weekPlays {
			gameID := firstRawString(raw, "gameId", "game_id")
			if gameID == "" {
				continue
			}
			if _, seen := statsByGame[gameID]; !seen {
				statsByGame[gameID] = nil
				newGames = append(newGames, gameID)
			}
		}
		if err := s.fetchGameStats(ctx, newGames, statsByGame); err != nil {
			return nil, 0, 0, err
		}

		for _, raw := range weekPlays {
			gameID := firstRawString(raw, "gameId", "game_id")
			out := make(map[string]any, len(raw)+12)
			for k, v := range raw {
				out[k] = v
			}
			out["season"] = season
			out["game_id"] = gameID
			CreditPlayStats(out, statsByGame[gameID][firstRawString(raw, "id", "playId")])
			plays = append(plays, out)
		}
		s.logger.DebugContext(ctx, "play-by-play week pulled", "season", season, "week", week, "plays", len(weekPlays), "new_games", len(newGames))
	}
	return plays, len(statsByGame), skippedWeeks, nil
}

func (s *PullService) fetchGameStats(ctx context.Context, gameIDs []string, into map[string]map[string][]ExternalPlayStat) error {
	results := make([]map[string][]ExternalPlayStat, len(gameIDs))
	p := pool.New().WithContext(ctx).WithMaxGoroutines(s.concurrency)
	for i, gameID := range gameIDs {
		p.Go(func(ctx context.Context) error {
			stats, err := s.provider.FetchPlayStats(ctx, gameID)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				// Plays of this game keep their provider fields without athlete credits.
				s.logger.WarnContext(ctx, "skip game play stats", "game_id", gameID, "error", err)
				return nil
			}
			byPlay := make(map[string][]ExternalPlayStat, len(stats))
			for _, st := range stats {
				byPlay[st.PlayID] = append(byPlay[st.PlayID], st)
			}
			results[i] = byPlay
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return err
	}
	for i, gameID := range gameIDs {
		into[gameID] = results[i]
	}
	return nil
}

// CreditPlayStats writes passer, rusher, receiver and turnover fields onto a
// raw play from its athlete stat lines.
func CreditPlayStats(play map[string]any, stats []ExternalPlayStat) {
	for _, st := range stats {
		switch strings.ToLower(strings.TrimSpace(st.StatType)) {
		case "completion":
			setAthlete(play, "passer_player", st)
			play["completion"] = true
		case "incompletion":
			setAthlete(play, "passer_player", st)
		case "sack taken":
			setAthlete(play, "passer_player", st)
			play["sack"] = true
			if st.Stat != 0 {
				yards := st.Stat
				if yards < 0 {
					yards = -yards
				}
				play["sack_yards"] = yards
			}
		case "interception thrown":
			setAthlete(play, "passer_player", st)
			play["interception"] = true
		case "rush":
			setAthlete(play, "rusher_player", st)
		case "target", "reception":
			setAthlete(play, "receiver_player", st)
		case "sack":
			play["sack"] = true
		case "interception":
			play["interception"] = true
		case "fumble", "fumble forced":
			play["fumble"] = true
		case "fumble recovered":
			play["fumble"] = true
			play["fumble_recovery_id"] = st.AthleteID
			play["fumble_recovery_name"] = st.AthleteName
		case "touchdown":
			play["touchdown"] = true
		}
	}
}

func setAthlete(play map[string]any, prefix string, st ExternalPlayStat) {
	if strings.TrimSpace(st.AthleteID) != "" {
		play[prefix+"_id"] = st.AthleteID
	}
	if strings.TrimSpace(st.AthleteName) != "" {
		play[prefix+"_name"] = st.AthleteName
	}
}

func rosterEntries(season int, team ExternalTeam, players []ExternalRosterPlayer) []roster.Entry {
	out := make([]roster.Entry, 0, len(players))
	for _, p := range players {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			continue
		}
		out = append(out, roster.Entry{
			Season:     season,
			PlayerID:   id,
			PlayerName: strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName)),
			TeamID:     team.ID,
			TeamName:   team.School,
			Conference: team.Conference,
			Position:   strings.TrimSpace(p.Position),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out
}

func firstRawString(raw map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := raw[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			return strconv.Itoa(v)
		case int64:
			return strconv.FormatInt(v, 10)
		}
	}
	return ""
}
