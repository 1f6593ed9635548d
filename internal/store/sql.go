package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"cryptotracker/internal/logger"
	"cryptotracker/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS alerts (
	id             TEXT PRIMARY KEY,
	crypto_symbol  TEXT NOT NULL,
	crypto_name    TEXT NOT NULL,
	threshold      DOUBLE PRECISION NOT NULL,
	is_upper_bound BOOLEAN NOT NULL,
	is_enabled     BOOLEAN NOT NULL,
	created_at     TIMESTAMP NOT NULL
)`

// sqlStore implements Store over database/sql. Queries are written with ?
// placeholders and rebound for drivers that use positional parameters.
type sqlStore struct {
	db       *sql.DB
	postgres bool
}

func newSQLStore(db *sql.DB, postgres bool) (*sqlStore, error) {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	s := &sqlStore{db: db, postgres: postgres}
	if _, err := db.ExecContext(ctx, s.bind(schema)); err != nil {
		return nil, fmt.Errorf("ensure alerts schema: %w", err)
	}

	logger.Log.Info("Alert store ready", zap.Bool("postgres", postgres))
	return s, nil
}

// bind rewrites ? placeholders to $1..$n for Postgres.
func (s *sqlStore) bind(query string) string {
	if !s.postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (s *sqlStore) List(ctx context.Context) ([]models.Alert, error) {
	query := s.bind(`
		SELECT id, crypto_symbol, crypto_name, threshold, is_upper_bound, is_enabled, created_at
		FROM alerts
		ORDER BY created_at ASC, id ASC
	`)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		logger.Log.Error("Failed to query alerts", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return scanAlerts(rows)
}

func (s *sqlStore) Save(ctx context.Context, alert models.Alert) error {
	query := s.bind(`
		INSERT INTO alerts (id, crypto_symbol, crypto_name, threshold, is_upper_bound, is_enabled, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			crypto_symbol  = EXCLUDED.crypto_symbol,
			crypto_name    = EXCLUDED.crypto_name,
			threshold      = EXCLUDED.threshold,
			is_upper_bound = EXCLUDED.is_upper_bound,
			is_enabled     = EXCLUDED.is_enabled
	`)

	_, err := s.db.ExecContext(ctx, query,
		alert.ID,
		alert.CryptoSymbol,
		alert.CryptoName,
		alert.Threshold,
		alert.IsUpperBound,
		alert.IsEnabled,
		alert.CreatedAt,
	)
	if err != nil {
		logger.Log.Error("Failed to save alert",
			zap.String("alert_id", alert.ID),
			zap.Error(err),
		)
	}
	return err
}

func (s *sqlStore) SaveAll(ctx context.Context, alerts []models.Alert) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM alerts`); err != nil {
		return err
	}

	insert := s.bind(`
		INSERT INTO alerts (id, crypto_symbol, crypto_name, threshold, is_upper_bound, is_enabled, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	for _, alert := range alerts {
		if _, err := tx.ExecContext(ctx, insert,
			alert.ID,
			alert.CryptoSymbol,
			alert.CryptoName,
			alert.Threshold,
			alert.IsUpperBound,
			alert.IsEnabled,
			alert.CreatedAt,
		); err != nil {
			logger.Log.Error("Failed to bulk-replace alerts",
				zap.String("alert_id", alert.ID),
				zap.Error(err),
			)
			return err
		}
	}

	return tx.Commit()
}

func (s *sqlStore) Update(ctx context.Context, alert models.Alert) error {
	query := s.bind(`
		UPDATE alerts
		SET crypto_symbol = ?, crypto_name = ?, threshold = ?, is_upper_bound = ?, is_enabled = ?
		WHERE id = ?
	`)

	result, err := s.db.ExecContext(ctx, query,
		alert.CryptoSymbol,
		alert.CryptoName,
		alert.Threshold,
		alert.IsUpperBound,
		alert.IsEnabled,
		alert.ID,
	)
	if err != nil {
		logger.Log.Error("Failed to update alert",
			zap.String("alert_id", alert.ID),
			zap.Error(err),
		)
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *sqlStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, s.bind(`DELETE FROM alerts WHERE id = ?`), id)
	if err != nil {
		logger.Log.Error("Failed to delete alert",
			zap.String("alert_id", id),
			zap.Error(err),
		)
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *sqlStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM alerts`)
	if err != nil {
		logger.Log.Error("Failed to clear alerts", zap.Error(err))
	}
	return err
}

func scanAlerts(rows *sql.Rows) ([]models.Alert, error) {
	var alerts []models.Alert

	for rows.Next() {
		var alert models.Alert
		if err := rows.Scan(
			&alert.ID,
			&alert.CryptoSymbol,
			&alert.CryptoName,
			&alert.Threshold,
			&alert.IsUpperBound,
			&alert.IsEnabled,
			&alert.CreatedAt,
		); err != nil {
			return nil, err
		}
		alerts = append(alerts, alert)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return alerts, nil
}
