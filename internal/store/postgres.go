package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/mydub-ai/reporter-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses, abstracted so tests can
// substitute pgxmock.
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS agent_learning_data (
	agent_id   TEXT PRIMARY KEY,
	data       JSONB NOT NULL,
	version    BIGINT NOT NULL DEFAULT 1,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS agent_performance (
	id             TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	agent_id       TEXT NOT NULL,
	started_at     TIMESTAMPTZ NOT NULL,
	duration_ms    BIGINT NOT NULL DEFAULT 0,
	sources_ok     INT NOT NULL DEFAULT 0,
	sources_failed INT NOT NULL DEFAULT 0,
	items_fetched  INT NOT NULL DEFAULT 0,
	items_valid    INT NOT NULL DEFAULT 0,
	total_tokens   INT NOT NULL DEFAULT 0,
	total_cost     DOUBLE PRECISION NOT NULL DEFAULT 0,
	error          TEXT
);

CREATE TABLE IF NOT EXISTS content_performance (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	agent_id     TEXT NOT NULL,
	item_id      TEXT NOT NULL,
	category     TEXT,
	engagement   DOUBLE PRECISION NOT NULL DEFAULT 0,
	published_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS trending_topics (
	topic       TEXT PRIMARY KEY,
	score       DOUBLE PRECISION NOT NULL DEFAULT 0,
	captured_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS market_indicators (
	name   TEXT NOT NULL,
	value  DOUBLE PRECISION NOT NULL,
	change DOUBLE PRECISION NOT NULL DEFAULT 0,
	unit   TEXT,
	as_of  TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (name, as_of)
);

CREATE TABLE IF NOT EXISTS current_conditions (
	kind        TEXT NOT NULL,
	summary     TEXT NOT NULL,
	severity    TEXT,
	data        JSONB,
	captured_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (kind, captured_at)
);

CREATE INDEX IF NOT EXISTS idx_agent_performance_agent ON agent_performance(agent_id, started_at);
CREATE INDEX IF NOT EXISTS idx_content_performance_agent ON content_performance(agent_id, published_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) GetLearningData(ctx context.Context, agentID string) (*model.LearningData, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT data, version, updated_at FROM agent_learning_data WHERE agent_id = $1`,
		agentID,
	)

	var dataJSON []byte
	var version int64
	var updatedAt time.Time
	err := row.Scan(&dataJSON, &version, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get learning data %s", agentID)
	}

	var ld model.LearningData
	if err := json.Unmarshal(dataJSON, &ld); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal learning data")
	}
	ld.AgentID = agentID
	ld.Version = version
	ld.UpdatedAt = updatedAt
	return &ld, nil
}

func (s *PostgresStore) SaveLearningData(ctx context.Context, data *model.LearningData) error {
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal learning data")
	}
	now := time.Now().UTC()

	if data.Version == 0 {
		tag, err := s.pool.Exec(ctx,
			`INSERT INTO agent_learning_data (agent_id, data, version, updated_at)
			 VALUES ($1, $2, 1, $3)
			 ON CONFLICT (agent_id) DO NOTHING`,
			data.AgentID, dataJSON, now,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: insert learning data %s", data.AgentID)
		}
		if tag.RowsAffected() == 0 {
			return ErrVersionConflict
		}
		data.Version = 1
		data.UpdatedAt = now
		return nil
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE agent_learning_data SET data = $1, version = version + 1, updated_at = $2
		 WHERE agent_id = $3 AND version = $4`,
		dataJSON, now, data.AgentID, data.Version,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update learning data %s", data.AgentID)
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	data.Version++
	data.UpdatedAt = now
	return nil
}

func (s *PostgresStore) ListTrendingTopics(ctx context.Context, limit int) ([]model.TrendingTopic, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT topic, score, captured_at FROM trending_topics ORDER BY score DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list trending topics")
	}
	defer rows.Close()

	var topics []model.TrendingTopic
	for rows.Next() {
		var tt model.TrendingTopic
		if err := rows.Scan(&tt.Topic, &tt.Score, &tt.CapturedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan trending topic")
		}
		topics = append(topics, tt)
	}
	return topics, eris.Wrap(rows.Err(), "postgres: trending topics iterate")
}

func (s *PostgresStore) UpsertTrendingTopics(ctx context.Context, topics []model.TrendingTopic) error {
	for _, tt := range topics {
		at := tt.CapturedAt
		if at.IsZero() {
			at = time.Now().UTC()
		}
		_, err := s.pool.Exec(ctx,
			`INSERT INTO trending_topics (topic, score, captured_at) VALUES ($1, $2, $3)
			 ON CONFLICT (topic) DO UPDATE SET score = EXCLUDED.score, captured_at = EXCLUDED.captured_at`,
			tt.Topic, tt.Score, at,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: upsert trending topic %s", tt.Topic)
		}
	}
	return nil
}

func (s *PostgresStore) ListContentPerformance(ctx context.Context, agentID string, limit int) ([]model.ContentPerformance, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, agent_id, item_id, category, engagement, published_at
		 FROM content_performance WHERE agent_id = $1
		 ORDER BY published_at DESC LIMIT $2`,
		agentID, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list content performance")
	}
	defer rows.Close()

	var perf []model.ContentPerformance
	for rows.Next() {
		var cp model.ContentPerformance
		var category sql.NullString
		if err := rows.Scan(&cp.ID, &cp.AgentID, &cp.ItemID, &category, &cp.Engagement, &cp.PublishedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan content performance")
		}
		cp.Category = category.String
		perf = append(perf, cp)
	}
	return perf, eris.Wrap(rows.Err(), "postgres: content performance iterate")
}

func (s *PostgresStore) RecordContentPerformance(ctx context.Context, perf *model.ContentPerformance) error {
	if perf.ID == "" {
		perf.ID = uuid.New().String()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO content_performance (id, agent_id, item_id, category, engagement, published_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		perf.ID, perf.AgentID, perf.ItemID, nullIfEmpty(perf.Category), perf.Engagement, perf.PublishedAt,
	)
	return eris.Wrapf(err, "postgres: record content performance %s", perf.ItemID)
}

func (s *PostgresStore) LatestMarketIndicators(ctx context.Context) ([]model.MarketIndicator, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT ON (name) name, value, change, unit, as_of
		 FROM market_indicators ORDER BY name, as_of DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: latest market indicators")
	}
	defer rows.Close()

	var indicators []model.MarketIndicator
	for rows.Next() {
		var mi model.MarketIndicator
		var unit sql.NullString
		if err := rows.Scan(&mi.Name, &mi.Value, &mi.Change, &unit, &mi.AsOf); err != nil {
			return nil, eris.Wrap(err, "postgres: scan market indicator")
		}
		mi.Unit = unit.String
		indicators = append(indicators, mi)
	}
	return indicators, eris.Wrap(rows.Err(), "postgres: market indicators iterate")
}

func (s *PostgresStore) RecordMarketIndicators(ctx context.Context, indicators []model.MarketIndicator) error {
	for _, mi := range indicators {
		asOf := mi.AsOf
		if asOf.IsZero() {
			asOf = time.Now().UTC()
		}
		_, err := s.pool.Exec(ctx,
			`INSERT INTO market_indicators (name, value, change, unit, as_of) VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (name, as_of) DO UPDATE SET value = EXCLUDED.value, change = EXCLUDED.change, unit = EXCLUDED.unit`,
			mi.Name, mi.Value, mi.Change, nullIfEmpty(mi.Unit), asOf,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: record market indicator %s", mi.Name)
		}
	}
	return nil
}

func (s *PostgresStore) LatestConditions(ctx context.Context, kind string) (*model.ConditionsSnapshot, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT kind, summary, severity, data, captured_at FROM current_conditions
		 WHERE kind = $1 ORDER BY captured_at DESC LIMIT 1`,
		kind,
	)

	var cs model.ConditionsSnapshot
	var severity sql.NullString
	var dataJSON []byte
	err := row.Scan(&cs.Kind, &cs.Summary, &severity, &dataJSON, &cs.CapturedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: latest conditions %s", kind)
	}
	cs.Severity = severity.String
	if len(dataJSON) > 0 {
		if err := json.Unmarshal(dataJSON, &cs.Data); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal conditions data")
		}
	}
	return &cs, nil
}

func (s *PostgresStore) RecordConditions(ctx context.Context, snap *model.ConditionsSnapshot) error {
	if snap.CapturedAt.IsZero() {
		snap.CapturedAt = time.Now().UTC()
	}
	var dataJSON any
	if len(snap.Data) > 0 {
		raw, err := json.Marshal(snap.Data)
		if err != nil {
			return eris.Wrap(err, "postgres: marshal conditions data")
		}
		dataJSON = raw
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO current_conditions (kind, summary, severity, data, captured_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (kind, captured_at) DO UPDATE SET summary = EXCLUDED.summary, severity = EXCLUDED.severity, data = EXCLUDED.data`,
		snap.Kind, snap.Summary, nullIfEmpty(snap.Severity), dataJSON, snap.CapturedAt,
	)
	return eris.Wrapf(err, "postgres: record conditions %s", snap.Kind)
}

func (s *PostgresStore) RecordAgentRun(ctx context.Context, run *model.AgentRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO agent_performance
		 (id, agent_id, started_at, duration_ms, sources_ok, sources_failed, items_fetched, items_valid, total_tokens, total_cost, error)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		run.ID, run.AgentID, run.StartedAt, run.DurationMS,
		run.SourcesOK, run.SourcesFailed, run.ItemsFetched, run.ItemsValid,
		run.TotalTokens, run.TotalCost, nullIfEmpty(run.Error),
	)
	return eris.Wrapf(err, "postgres: record agent run %s", run.AgentID)
}

func (s *PostgresStore) ListAgentRuns(ctx context.Context, filter AgentRunFilter) ([]model.AgentRun, error) {
	query := `SELECT id, agent_id, started_at, duration_ms, sources_ok, sources_failed,
	          items_fetched, items_valid, total_tokens, total_cost, error
	          FROM agent_performance WHERE 1=1`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.AgentID != "" {
		query += ` AND agent_id = ` + arg(filter.AgentID)
	}
	if !filter.CreatedAfter.IsZero() {
		query += ` AND started_at > ` + arg(filter.CreatedAfter)
	}
	query += ` ORDER BY started_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ` + arg(limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list agent runs")
	}
	defer rows.Close()

	var runs []model.AgentRun
	for rows.Next() {
		var r model.AgentRun
		var runErr sql.NullString
		if err := rows.Scan(&r.ID, &r.AgentID, &r.StartedAt, &r.DurationMS,
			&r.SourcesOK, &r.SourcesFailed, &r.ItemsFetched, &r.ItemsValid,
			&r.TotalTokens, &r.TotalCost, &runErr); err != nil {
			return nil, eris.Wrap(err, "postgres: scan agent run")
		}
		r.Error = runErr.String
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: agent runs iterate")
}
