package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/mydub-ai/reporter-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS agent_learning_data (
	agent_id   TEXT PRIMARY KEY,
	data       TEXT NOT NULL,
	version    INTEGER NOT NULL DEFAULT 1,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS agent_performance (
	id             TEXT PRIMARY KEY,
	agent_id       TEXT NOT NULL,
	started_at     DATETIME NOT NULL,
	duration_ms    INTEGER NOT NULL DEFAULT 0,
	sources_ok     INTEGER NOT NULL DEFAULT 0,
	sources_failed INTEGER NOT NULL DEFAULT 0,
	items_fetched  INTEGER NOT NULL DEFAULT 0,
	items_valid    INTEGER NOT NULL DEFAULT 0,
	total_tokens   INTEGER NOT NULL DEFAULT 0,
	total_cost     REAL NOT NULL DEFAULT 0,
	error          TEXT
);

CREATE TABLE IF NOT EXISTS content_performance (
	id           TEXT PRIMARY KEY,
	agent_id     TEXT NOT NULL,
	item_id      TEXT NOT NULL,
	category     TEXT,
	engagement   REAL NOT NULL DEFAULT 0,
	published_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS trending_topics (
	topic       TEXT PRIMARY KEY,
	score       REAL NOT NULL DEFAULT 0,
	captured_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS market_indicators (
	name   TEXT NOT NULL,
	value  REAL NOT NULL,
	change REAL NOT NULL DEFAULT 0,
	unit   TEXT,
	as_of  DATETIME NOT NULL,
	PRIMARY KEY (name, as_of)
);

CREATE TABLE IF NOT EXISTS current_conditions (
	kind        TEXT NOT NULL,
	summary     TEXT NOT NULL,
	severity    TEXT,
	data        TEXT,
	captured_at DATETIME NOT NULL,
	PRIMARY KEY (kind, captured_at)
);

CREATE INDEX IF NOT EXISTS idx_agent_performance_agent ON agent_performance(agent_id, started_at);
CREATE INDEX IF NOT EXISTS idx_content_performance_agent ON content_performance(agent_id, published_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetLearningData(ctx context.Context, agentID string) (*model.LearningData, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT data, version, updated_at FROM agent_learning_data WHERE agent_id = ?`,
		agentID,
	)

	var dataJSON string
	var version int64
	var updatedAt time.Time
	err := row.Scan(&dataJSON, &version, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get learning data %s", agentID)
	}

	var ld model.LearningData
	if err := json.Unmarshal([]byte(dataJSON), &ld); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal learning data")
	}
	ld.AgentID = agentID
	ld.Version = version
	ld.UpdatedAt = updatedAt
	return &ld, nil
}

func (s *SQLiteStore) SaveLearningData(ctx context.Context, data *model.LearningData) error {
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal learning data")
	}
	now := time.Now().UTC()

	if data.Version == 0 {
		// First save: insert only if no row exists yet.
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO agent_learning_data (agent_id, data, version, updated_at)
			 VALUES (?, ?, 1, ?)
			 ON CONFLICT (agent_id) DO NOTHING`,
			data.AgentID, string(dataJSON), now,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert learning data %s", data.AgentID)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return eris.Wrap(err, "sqlite: rows affected")
		}
		if n == 0 {
			return ErrVersionConflict
		}
		data.Version = 1
		data.UpdatedAt = now
		return nil
	}

	// Compare-and-swap on the version token.
	res, err := s.db.ExecContext(ctx,
		`UPDATE agent_learning_data SET data = ?, version = version + 1, updated_at = ?
		 WHERE agent_id = ? AND version = ?`,
		string(dataJSON), now, data.AgentID, data.Version,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update learning data %s", data.AgentID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return ErrVersionConflict
	}
	data.Version++
	data.UpdatedAt = now
	return nil
}

func (s *SQLiteStore) ListTrendingTopics(ctx context.Context, limit int) ([]model.TrendingTopic, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT topic, score, captured_at FROM trending_topics ORDER BY score DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list trending topics")
	}
	defer rows.Close()

	var topics []model.TrendingTopic
	for rows.Next() {
		var tt model.TrendingTopic
		if err := rows.Scan(&tt.Topic, &tt.Score, &tt.CapturedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan trending topic")
		}
		topics = append(topics, tt)
	}
	return topics, eris.Wrap(rows.Err(), "sqlite: trending topics iterate")
}

func (s *SQLiteStore) UpsertTrendingTopics(ctx context.Context, topics []model.TrendingTopic) error {
	for _, tt := range topics {
		at := tt.CapturedAt
		if at.IsZero() {
			at = time.Now().UTC()
		}
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO trending_topics (topic, score, captured_at) VALUES (?, ?, ?)
			 ON CONFLICT(topic) DO UPDATE SET score = excluded.score, captured_at = excluded.captured_at`,
			tt.Topic, tt.Score, at,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: upsert trending topic %s", tt.Topic)
		}
	}
	return nil
}

func (s *SQLiteStore) ListContentPerformance(ctx context.Context, agentID string, limit int) ([]model.ContentPerformance, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, agent_id, item_id, category, engagement, published_at
		 FROM content_performance WHERE agent_id = ?
		 ORDER BY published_at DESC LIMIT ?`,
		agentID, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list content performance")
	}
	defer rows.Close()

	var perf []model.ContentPerformance
	for rows.Next() {
		var cp model.ContentPerformance
		var category sql.NullString
		if err := rows.Scan(&cp.ID, &cp.AgentID, &cp.ItemID, &category, &cp.Engagement, &cp.PublishedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan content performance")
		}
		cp.Category = category.String
		perf = append(perf, cp)
	}
	return perf, eris.Wrap(rows.Err(), "sqlite: content performance iterate")
}

func (s *SQLiteStore) RecordContentPerformance(ctx context.Context, perf *model.ContentPerformance) error {
	if perf.ID == "" {
		perf.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO content_performance (id, agent_id, item_id, category, engagement, published_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		perf.ID, perf.AgentID, perf.ItemID, nullIfEmpty(perf.Category), perf.Engagement, perf.PublishedAt,
	)
	return eris.Wrapf(err, "sqlite: record content performance %s", perf.ItemID)
}

func (s *SQLiteStore) LatestMarketIndicators(ctx context.Context) ([]model.MarketIndicator, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT m.name, m.value, m.change, m.unit, m.as_of
		 FROM market_indicators m
		 JOIN (SELECT name, MAX(as_of) AS as_of FROM market_indicators GROUP BY name) latest
		   ON m.name = latest.name AND m.as_of = latest.as_of
		 ORDER BY m.name`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: latest market indicators")
	}
	defer rows.Close()

	var indicators []model.MarketIndicator
	for rows.Next() {
		var mi model.MarketIndicator
		var unit sql.NullString
		if err := rows.Scan(&mi.Name, &mi.Value, &mi.Change, &unit, &mi.AsOf); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan market indicator")
		}
		mi.Unit = unit.String
		indicators = append(indicators, mi)
	}
	return indicators, eris.Wrap(rows.Err(), "sqlite: market indicators iterate")
}

func (s *SQLiteStore) RecordMarketIndicators(ctx context.Context, indicators []model.MarketIndicator) error {
	for _, mi := range indicators {
		asOf := mi.AsOf
		if asOf.IsZero() {
			asOf = time.Now().UTC()
		}
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO market_indicators (name, value, change, unit, as_of) VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(name, as_of) DO UPDATE SET value = excluded.value, change = excluded.change, unit = excluded.unit`,
			mi.Name, mi.Value, mi.Change, nullIfEmpty(mi.Unit), asOf,
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: record market indicator %s", mi.Name)
		}
	}
	return nil
}

func (s *SQLiteStore) LatestConditions(ctx context.Context, kind string) (*model.ConditionsSnapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT kind, summary, severity, data, captured_at FROM current_conditions
		 WHERE kind = ? ORDER BY captured_at DESC LIMIT 1`,
		kind,
	)

	var cs model.ConditionsSnapshot
	var severity, dataJSON sql.NullString
	err := row.Scan(&cs.Kind, &cs.Summary, &severity, &dataJSON, &cs.CapturedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: latest conditions %s", kind)
	}
	cs.Severity = severity.String
	if dataJSON.Valid && dataJSON.String != "" {
		if err := json.Unmarshal([]byte(dataJSON.String), &cs.Data); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal conditions data")
		}
	}
	return &cs, nil
}

func (s *SQLiteStore) RecordConditions(ctx context.Context, snap *model.ConditionsSnapshot) error {
	if snap.CapturedAt.IsZero() {
		snap.CapturedAt = time.Now().UTC()
	}
	var dataJSON any
	if len(snap.Data) > 0 {
		raw, err := json.Marshal(snap.Data)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal conditions data")
		}
		dataJSON = string(raw)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO current_conditions (kind, summary, severity, data, captured_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(kind, captured_at) DO UPDATE SET summary = excluded.summary, severity = excluded.severity, data = excluded.data`,
		snap.Kind, snap.Summary, nullIfEmpty(snap.Severity), dataJSON, snap.CapturedAt,
	)
	return eris.Wrapf(err, "sqlite: record conditions %s", snap.Kind)
}

func (s *SQLiteStore) RecordAgentRun(ctx context.Context, run *model.AgentRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO agent_performance
		 (id, agent_id, started_at, duration_ms, sources_ok, sources_failed, items_fetched, items_valid, total_tokens, total_cost, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.AgentID, run.StartedAt, run.DurationMS,
		run.SourcesOK, run.SourcesFailed, run.ItemsFetched, run.ItemsValid,
		run.TotalTokens, run.TotalCost, nullIfEmpty(run.Error),
	)
	return eris.Wrapf(err, "sqlite: record agent run %s", run.AgentID)
}

func (s *SQLiteStore) ListAgentRuns(ctx context.Context, filter AgentRunFilter) ([]model.AgentRun, error) {
	query := `SELECT id, agent_id, started_at, duration_ms, sources_ok, sources_failed,
	          items_fetched, items_valid, total_tokens, total_cost, error
	          FROM agent_performance WHERE 1=1`
	var args []any

	if filter.AgentID != "" {
		query += ` AND agent_id = ?`
		args = append(args, filter.AgentID)
	}
	if !filter.CreatedAfter.IsZero() {
		query += ` AND started_at > ?`
		args = append(args, filter.CreatedAfter)
	}
	query += ` ORDER BY started_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list agent runs")
	}
	defer rows.Close()

	var runs []model.AgentRun
	for rows.Next() {
		var r model.AgentRun
		var runErr sql.NullString
		if err := rows.Scan(&r.ID, &r.AgentID, &r.StartedAt, &r.DurationMS,
			&r.SourcesOK, &r.SourcesFailed, &r.ItemsFetched, &r.ItemsValid,
			&r.TotalTokens, &r.TotalCost, &runErr); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan agent run")
		}
		r.Error = runErr.String
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: agent runs iterate")
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
