package audit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// PostgresStore persists audit events in an append-only audit_log table.
// Reads reconstruct causal order from the seq column, not insertion order.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL audit store. The schema is applied
// by Migrate, not implicitly.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the audit_log table and its indexes if absent.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS audit_log (
			log_id          UUID PRIMARY KEY,
			ts              TIMESTAMPTZ NOT NULL,
			event_type      TEXT NOT NULL,
			correlation_key TEXT,
			correlation_id  TEXT,
			seq             BIGINT NOT NULL DEFAULT 0,
			rule_id         TEXT,
			rule_name       TEXT,
			severity        TEXT,
			risk_score      INT,
			classification  TEXT,
			decision        TEXT,
			message         TEXT,
			source          TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS audit_log_correlation_id_idx ON audit_log (correlation_id);
		CREATE INDEX IF NOT EXISTS audit_log_correlation_key_idx ON audit_log (correlation_key);
		CREATE INDEX IF NOT EXISTS audit_log_ts_idx ON audit_log (ts DESC);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate audit_log: %w", err)
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	const query = `
		INSERT INTO audit_log (
			log_id, ts, event_type, correlation_key, correlation_id, seq,
			rule_id, rule_name, severity, risk_score, classification,
			decision, message, source
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := s.db.ExecContext(ctx, query,
		event.LogID,
		event.Timestamp,
		string(event.Type),
		nullable(event.CorrelationKey),
		nullable(event.CorrelationID),
		int64(event.Seq),
		nullable(event.RuleID),
		nullable(event.RuleName),
		nullable(event.Severity),
		event.RiskScore,
		nullable(event.Classification),
		nullable(event.Decision),
		nullable(event.Message),
		event.Source,
	)
	if err != nil {
		return fmt.Errorf("append audit event %s: %w", event.LogID, err)
	}
	return nil
}

func (s *PostgresStore) ListByCorrelation(ctx context.Context, correlationID string) ([]Event, error) {
	const query = selectColumns + ` WHERE correlation_id = $1 ORDER BY seq ASC`
	return s.list(ctx, query, correlationID)
}

func (s *PostgresStore) ListByTransaction(ctx context.Context, correlationKey string) ([]Event, error) {
	const query = selectColumns + ` WHERE correlation_key = $1 ORDER BY ts ASC, seq ASC`
	return s.list(ctx, query, correlationKey)
}

func (s *PostgresStore) Query(ctx context.Context, filter Filter, page, pageSize int) ([]Event, int, error) {
	if page < 1 || pageSize < 1 {
		return []Event{}, 0, nil
	}

	where, args := filterClauses(filter)

	var total int
	countQuery := "SELECT COUNT(*) FROM audit_log" + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit events: %w", err)
	}

	query := fmt.Sprintf("%s%s ORDER BY ts DESC LIMIT $%d OFFSET $%d",
		selectColumns, where, len(args)+1, len(args)+2)
	args = append(args, pageSize, (page-1)*pageSize)

	events, err := s.list(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (s *PostgresStore) All(ctx context.Context) ([]Event, error) {
	return s.list(ctx, selectColumns+` ORDER BY ts ASC, seq ASC`)
}

const selectColumns = `
	SELECT log_id, ts, event_type, correlation_key, correlation_id, seq,
	       rule_id, rule_name, severity, risk_score, classification,
	       decision, message, source
	FROM audit_log`

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			e              Event
			correlationKey sql.NullString
			correlationID  sql.NullString
			ruleID         sql.NullString
			ruleName       sql.NullString
			severity       sql.NullString
			riskScore      sql.NullInt64
			classification sql.NullString
			decision       sql.NullString
			message        sql.NullString
			eventType      string
			ts             time.Time
			seq            int64
		)
		if err := rows.Scan(
			&e.LogID, &ts, &eventType, &correlationKey, &correlationID, &seq,
			&ruleID, &ruleName, &severity, &riskScore, &classification,
			&decision, &message, &e.Source,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Timestamp = ts
		e.Type = EventType(eventType)
		e.Seq = uint64(seq)
		e.CorrelationKey = correlationKey.String
		e.CorrelationID = correlationID.String
		e.RuleID = ruleID.String
		e.RuleName = ruleName.String
		e.Severity = severity.String
		e.Classification = classification.String
		e.Decision = decision.String
		e.Message = message.String
		if riskScore.Valid {
			score := int(riskScore.Int64)
			e.RiskScore = &score
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func filterClauses(filter Filter) (string, []any) {
	var clauses []string
	var args []any

	add := func(column string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if filter.Type != "" {
		add("event_type", string(filter.Type))
	}
	if filter.CorrelationKey != "" {
		add("correlation_key", filter.CorrelationKey)
	}
	if filter.Severity != "" {
		add("severity", filter.Severity)
	}
	if filter.Decision != "" {
		add("decision", filter.Decision)
	}
	if filter.Source != "" {
		add("source", filter.Source)
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		clauses = append(clauses, fmt.Sprintf("ts >= $%d", len(args)))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		clauses = append(clauses, fmt.Sprintf("ts <= $%d", len(args)))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
