package app

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/football-stats/internal/config"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

const maxTracedQueryLength = 512

// DSNOptions are the connection parameters added to DB_URL.
type DSNOptions struct {
	ApplicationName string
	// DisablePreparedBinaryResult is required behind poolers running in
	// transaction mode.
	DisablePreparedBinaryResult bool
}

// PostgresDSN adds opts to raw. Parameters already present in raw win.
// Both the URL form and the key=value form are accepted.
func PostgresDSN(raw string, opts DSNOptions) string {
	raw = strings.TrimSpace(raw)
	params := make([][2]string, 0, 2)
	if name := strings.TrimSpace(opts.ApplicationName); name != "" {
		params = append(params, [2]string{"application_name", name})
	}
	if opts.DisablePreparedBinaryResult {
		params = append(params, [2]string{"disable_prepared_binary_result", "yes"})
	}
	if len(params) == 0 {
		return raw
	}

	if parsed, err := url.Parse(raw); err == nil && parsed.Scheme != "" {
		query := parsed.Query()
		for _, param := range params {
			if query.Get(param[0]) == "" {
				query.Set(param[0], param[1])
			}
		}
		parsed.RawQuery = query.Encode()
		return parsed.String()
	}

	out := raw
	for _, param := range params {
		if _, ok := keywordParam(raw, param[0]); ok {
			continue
		}
		out += " " + param[0] + "=" + quoteKeywordValue(param[1])
	}
	return strings.TrimSpace(out)
}

func dbNameFromDSN(dsn string) string {
	if parsed, err := url.Parse(dsn); err == nil && parsed.Scheme != "" {
		return strings.TrimPrefix(parsed.Path, "/")
	}
	name, _ := keywordParam(dsn, "dbname")
	return name
}

func keywordParam(dsn, key string) (string, bool) {
	for _, field := range strings.Fields(dsn) {
		k, v, ok := strings.Cut(field, "=")
		if ok && k == key {
			return strings.Trim(v, `'"`), true
		}
	}
	return "", false
}

func quoteKeywordValue(value string) string {
	if strings.ContainsAny(value, " '") {
		return "'" + strings.ReplaceAll(value, "'", `\'`) + "'"
	}
	return value
}

// traceQuery collapses whitespace and caps the statement attached to spans.
func traceQuery(query string) string {
	normalized := strings.Join(strings.Fields(query), " ")
	if utf8.RuneCountInString(normalized) <= maxTracedQueryLength {
		return normalized
	}
	return string([]rune(normalized)[:maxTracedQueryLength]) + "..."
}

func openPostgres(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dsn := PostgresDSN(cfg.DBURL, DSNOptions{
		ApplicationName:             cfg.ServiceName,
		DisablePreparedBinaryResult: cfg.DBDisablePreparedBinary,
	})
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromDSN(dsn)),
		otelsql.WithQueryFormatter(traceQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}
