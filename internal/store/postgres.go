package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/breachcase/breachwatch/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses, satisfied by
// pgxmock.PgxPoolIface in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

var _ Store = (*PostgresStore)(nil)

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"list_stubs":      `SELECT id, company FROM breaches ORDER BY created_at`,
	"get_by_ids":      `SELECT id, company, discovery_date, records_affected, attack_vector, summary, created_at FROM breaches WHERE id = ANY($1)`,
	"insert_breach":   `INSERT INTO breaches (id, company, title, industry, country, continent, discovery_date, disclosure_date, records_affected, breach_method, attack_vector, threat_actor, data_compromised, severity, cve_references, mitre_techniques, summary, lessons_learned, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
	"insert_update":   `INSERT INTO breach_updates (id, breach_id, update_date, update_type, description, source_url, extracted_data, confidence_score, ai_reasoning, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
	"touch_breach":    `UPDATE breaches SET updated_at = $1 WHERE id = $2`,
	"insert_source":   `INSERT INTO breach_sources (id, breach_id, url, title, published_at, created_at) VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (url) DO NOTHING`,
	"breach_by_url":   `SELECT breach_id FROM breach_sources WHERE url = $1 LIMIT 1`,
	"is_processed":    `SELECT EXISTS(SELECT 1 FROM processed_articles WHERE url = $1)`,
	"mark_processed":  `INSERT INTO processed_articles (url, processed_at) VALUES ($1, $2) ON CONFLICT (url) DO NOTHING`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

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
CREATE TABLE IF NOT EXISTS breaches (
	id               TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	company          TEXT NOT NULL,
	title            TEXT,
	industry         TEXT,
	country          TEXT,
	continent        TEXT,
	discovery_date   TEXT,
	disclosure_date  TEXT,
	records_affected BIGINT,
	breach_method    TEXT,
	attack_vector    TEXT CHECK (attack_vector IS NULL OR attack_vector IN (
		'phishing','ransomware','malware','vulnerability_exploit','credential_attack',
		'social_engineering','insider','supply_chain','misconfiguration',
		'unauthorized_access','scraping','other')),
	threat_actor     TEXT,
	data_compromised JSONB,
	severity         TEXT CHECK (severity IS NULL OR severity IN ('low','medium','high','critical')),
	cve_references   JSONB,
	mitre_techniques JSONB,
	summary          TEXT NOT NULL,
	lessons_learned  TEXT,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS breach_updates (
	id               TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	breach_id        TEXT NOT NULL REFERENCES breaches(id),
	update_date      DATE NOT NULL,
	update_type      TEXT NOT NULL,
	description      TEXT NOT NULL,
	source_url       TEXT,
	extracted_data   JSONB,
	confidence_score DOUBLE PRECISION,
	ai_reasoning     TEXT,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS breach_sources (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	breach_id    TEXT NOT NULL REFERENCES breaches(id),
	url          TEXT NOT NULL UNIQUE,
	title        TEXT,
	published_at TIMESTAMPTZ,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS processed_articles (
	url          TEXT PRIMARY KEY,
	processed_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_breaches_company ON breaches (lower(company));
CREATE INDEX IF NOT EXISTS idx_breach_updates_breach ON breach_updates (breach_id);
`

// Migrate creates the schema if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresMigration); err != nil {
		return eris.Wrap(err, "postgres: migrate")
	}
	return nil
}

// Ping verifies connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) ListBreachStubs(ctx context.Context) ([]model.BreachStub, error) {
	rows, err := s.pool.Query(ctx, preparedStatements["list_stubs"])
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list breach stubs")
	}
	defer rows.Close()

	var stubs []model.BreachStub
	for rows.Next() {
		var stub model.BreachStub
		if err := rows.Scan(&stub.ID, &stub.Company); err != nil {
			return nil, eris.Wrap(err, "postgres: scan breach stub")
		}
		stubs = append(stubs, stub)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: list breach stubs")
	}
	return stubs, nil
}

func (s *PostgresStore) GetBreachesByIDs(ctx context.Context, ids []string) ([]model.Breach, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx, preparedStatements["get_by_ids"], ids)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get breaches by ids")
	}
	defer rows.Close()

	var breaches []model.Breach
	for rows.Next() {
		var b model.Breach
		if err := rows.Scan(&b.ID, &b.Company, &b.DiscoveryDate, &b.RecordsAffected, &b.AttackVector, &b.Summary, &b.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan breach")
		}
		breaches = append(breaches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: get breaches by ids")
	}
	return breaches, nil
}

func (s *PostgresStore) CreateBreach(ctx context.Context, extraction model.Extraction, article model.RawArticle) (string, error) {
	id := uuid.NewString()
	now := time.Now().UTC()

	dataCompromised, err := json.Marshal(extraction.DataCompromised)
	if err != nil {
		return "", eris.Wrap(err, "postgres: marshal data_compromised")
	}
	cves, err := json.Marshal(extraction.CVEReferences)
	if err != nil {
		return "", eris.Wrap(err, "postgres: marshal cve_references")
	}
	mitre, err := json.Marshal(extraction.MitreTechniques)
	if err != nil {
		return "", eris.Wrap(err, "postgres: marshal mitre_techniques")
	}

	_, err = s.pool.Exec(ctx, preparedStatements["insert_breach"],
		id,
		extraction.Company,
		extraction.Title,
		extraction.Industry,
		extraction.Country,
		extraction.Continent,
		extraction.DiscoveryDate,
		extraction.DisclosureDate,
		extraction.RecordsAffected,
		extraction.BreachMethod,
		extraction.AttackVector,
		extraction.ThreatActor,
		dataCompromised,
		extraction.Severity,
		cves,
		mitre,
		extraction.Summary,
		extraction.LessonsLearned,
		now,
		now,
	)
	if err != nil {
		return "", eris.Wrap(err, "postgres: insert breach")
	}

	s.writeSource(ctx, id, article)

	return id, nil
}

func (s *PostgresStore) AppendBreachUpdate(ctx context.Context, entry model.UpdateEntry) (string, error) {
	id := uuid.NewString()
	now := time.Now().UTC()

	var extractedData []byte
	if entry.ExtractedData != nil {
		var err error
		extractedData, err = json.Marshal(entry.ExtractedData)
		if err != nil {
			return "", eris.Wrap(err, "postgres: marshal extracted_data")
		}
	}

	_, err := s.pool.Exec(ctx, preparedStatements["insert_update"],
		id,
		entry.BreachID,
		now,
		entry.UpdateType,
		entry.Description,
		entry.SourceURL,
		extractedData,
		entry.Confidence,
		entry.Rationale,
		now,
	)
	if err != nil {
		return "", eris.Wrap(err, "postgres: insert breach update")
	}

	if _, err := s.pool.Exec(ctx, preparedStatements["touch_breach"], now, entry.BreachID); err != nil {
		zap.L().Warn("postgres: failed to touch breach updated_at",
			zap.String("breach_id", entry.BreachID),
			zap.Error(err),
		)
	}

	s.writeSource(ctx, entry.BreachID, model.RawArticle{URL: entry.SourceURL, Title: entry.SourceTitle})

	return id, nil
}

// writeSource records the article as a source for the breach. A failed
// source insert is logged but never fails the surrounding operation.
func (s *PostgresStore) writeSource(ctx context.Context, breachID string, article model.RawArticle) {
	if article.URL == "" {
		return
	}
	var publishedAt *time.Time
	if !article.PublishedAt.IsZero() {
		publishedAt = &article.PublishedAt
	}
	_, err := s.pool.Exec(ctx, preparedStatements["insert_source"],
		uuid.NewString(), breachID, article.URL, article.Title, publishedAt, time.Now().UTC())
	if err != nil {
		zap.L().Warn("postgres: failed to insert source",
			zap.String("breach_id", breachID),
			zap.String("url", article.URL),
			zap.Error(err),
		)
	}
}

// ListAuditRows returns the flattened per-breach view the audit report is
// built from, including source and update counts.
func (s *PostgresStore) ListAuditRows(ctx context.Context) ([]model.AuditRow, error) {
	const query = `
		SELECT b.id, b.company, b.title, b.industry, b.country, b.discovery_date,
		       b.records_affected, b.attack_vector, b.severity, b.summary,
		       (SELECT count(*) FROM breach_sources s WHERE s.breach_id = b.id),
		       (SELECT count(*) FROM breach_updates u WHERE u.breach_id = b.id)
		FROM breaches b
		ORDER BY b.created_at`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list audit rows")
	}
	defer rows.Close()

	var out []model.AuditRow
	for rows.Next() {
		var row model.AuditRow
		if err := rows.Scan(&row.ID, &row.Company, &row.Title, &row.Industry, &row.Country,
			&row.DiscoveryDate, &row.RecordsAffected, &row.AttackVector, &row.Severity,
			&row.Summary, &row.SourceCount, &row.UpdateCount); err != nil {
			return nil, eris.Wrap(err, "postgres: scan audit row")
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: list audit rows")
	}
	return out, nil
}

func (s *PostgresStore) FindBreachIDByURL(ctx context.Context, url string) (string, error) {
	var breachID string
	err := s.pool.QueryRow(ctx, preparedStatements["breach_by_url"], url).Scan(&breachID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", eris.Wrap(err, "postgres: breach by url")
	}
	return breachID, nil
}

func (s *PostgresStore) IsProcessed(ctx context.Context, url string) (bool, error) {
	var processed bool
	if err := s.pool.QueryRow(ctx, preparedStatements["is_processed"], url).Scan(&processed); err != nil {
		return false, eris.Wrap(err, "postgres: is processed")
	}
	return processed, nil
}

func (s *PostgresStore) MarkProcessed(ctx context.Context, url string) error {
	if _, err := s.pool.Exec(ctx, preparedStatements["mark_processed"], url, time.Now().UTC()); err != nil {
		return eris.Wrap(err, "postgres: mark processed")
	}
	return nil
}
