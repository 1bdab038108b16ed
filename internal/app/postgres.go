package app

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

const maxTracedQueryLength = 512

var (
	queryWhitespaceRegex = regexp.MustCompile(`\s+`)
	// Multi-row inserts repeat one placeholder tuple per stats row.
	valuesTupleRegex = regexp.MustCompile(`\((?:\$\d+, )*\$\d+\)(?:, \((?:\$\d+, )*\$\d+\))+`)
	firstTupleRegex  = regexp.MustCompile(`^\([^)]*\)`)
)

func openDB(ctx context.Context, rawURL string, disablePreparedBinary bool, appName string) (*sqlx.DB, error) {
	dsn := normalizeDBURL(rawURL, disablePreparedBinary, appName)
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(dsn)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// normalizeDBURL fills connection parameters the caller left unset. Keyword
// style DSNs are returned as given.
func normalizeDBURL(raw string, disablePreparedBinary bool, appName string) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || parsed == nil || parsed.Scheme == "" {
		return raw
	}

	query := parsed.Query()
	changed := false
	if disablePreparedBinary && query.Get("disable_prepared_binary_result") == "" {
		query.Set("disable_prepared_binary_result", "yes")
		changed = true
	}
	if appName = strings.TrimSpace(appName); appName != "" && query.Get("application_name") == "" {
		query.Set("application_name", appName)
		changed = true
	}
	if !changed {
		return raw
	}
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

func dbNameFromURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	parsed, err := url.Parse(trimmed)
	if err == nil && parsed != nil && parsed.Scheme != "" {
		if name := strings.TrimSpace(strings.TrimPrefix(parsed.Path, "/")); name != "" {
			return name
		}
	}

	for _, token := range strings.Fields(trimmed) {
		name, ok := strings.CutPrefix(token, "dbname=")
		if !ok {
			continue
		}
		if name = strings.Trim(strings.TrimSpace(name), `"'`); name != "" {
			return name
		}
	}
	return ""
}

// formatDBQueryForTrace flattens whitespace and folds repeated VALUES tuples
// into "<first tuple> /* xN */" before truncating.
func formatDBQueryForTrace(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	normalized := queryWhitespaceRegex.ReplaceAllString(query, " ")
	normalized = valuesTupleRegex.ReplaceAllStringFunc(normalized, func(tuples string) string {
		first := firstTupleRegex.FindString(tuples)
		return fmt.Sprintf("%s /* x%d */", first, strings.Count(tuples, "("))
	})
	if len(normalized) <= maxTracedQueryLength {
		return normalized
	}
	return normalized[:maxTracedQueryLength] + "..."
}
