package repositories

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/turtacn/Graphyte-Intelligence/internal/domain/risk"
	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/database/postgres"
	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Graphyte-Intelligence/pkg/errors"
)

// DefaultListLimit bounds ListByEntity when the caller passes no limit.
const DefaultListLimit = 20

const screeningColumns = `id, query, mode, result, model_version, created_at`

// ScreeningRepository stores the audit trail of analyses.
type ScreeningRepository struct {
	conn *postgres.Connection
	log  logging.Logger
}

// NewScreeningRepository returns a repository over conn.
func NewScreeningRepository(conn *postgres.Connection, log logging.Logger) *ScreeningRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ScreeningRepository{conn: conn, log: log}
}

// Save inserts rec. An empty ID is filled with a new UUID; CreatedAt is
// assigned by the database.
func (r *ScreeningRepository) Save(ctx context.Context, rec *risk.ScreeningRecord) error {
	if rec == nil || rec.Result == nil {
		return errors.InvalidParam("screening record without result")
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	} else if _, err := uuid.Parse(rec.ID); err != nil {
		return errors.InvalidParam("screening id is not a uuid")
	}

	payload, err := json.Marshal(rec.Result)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode screening result")
	}

	err = r.conn.DB().QueryRowContext(ctx, `
		INSERT INTO screenings (id, query, mode, entity, status, risk_score, result, model_version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`,
		rec.ID, rec.Query, rec.Mode, rec.Result.Entity, string(rec.Result.Status), rec.Result.RiskScore, payload, rec.ModelVersion,
	).Scan(&rec.CreatedAt)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to save screening")
	}
	r.log.Debug("screening saved", logging.String("id", rec.ID), logging.String("entity", rec.Result.Entity))
	return nil
}

// FindByID loads one record.
func (r *ScreeningRepository) FindByID(ctx context.Context, id string) (*risk.ScreeningRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errors.NotFound("screening not found")
	}
	row := r.conn.DB().QueryRowContext(ctx, `SELECT `+screeningColumns+` FROM screenings WHERE id = $1`, id)
	rec, err := scanScreening(row)
	if err != nil {
		return nil, wrapQueryErr(err, "screening")
	}
	return rec, nil
}

// ListByEntity returns the newest records for a resolved entity name.
func (r *ScreeningRepository) ListByEntity(ctx context.Context, entity string, limit int) ([]*risk.ScreeningRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := r.conn.DB().QueryContext(ctx, `
		SELECT `+screeningColumns+` FROM screenings
		WHERE entity = $1
		ORDER BY created_at DESC
		LIMIT $2`, entity, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list screenings")
	}
	defer rows.Close()

	out := []*risk.ScreeningRecord{}
	for rows.Next() {
		rec, err := scanScreening(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan screening")
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate screenings")
	}
	return out, nil
}

func scanScreening(s scanner) (*risk.ScreeningRecord, error) {
	var (
		rec     risk.ScreeningRecord
		payload []byte
	)
	if err := s.Scan(&rec.ID, &rec.Query, &rec.Mode, &payload, &rec.ModelVersion, &rec.CreatedAt); err != nil {
		return nil, err
	}
	rec.Result = &risk.AnalysisResult{}
	if err := json.Unmarshal(payload, rec.Result); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode screening result")
	}
	return &rec, nil
}

var _ risk.ScreeningRepository = (*ScreeningRepository)(nil)

//Personal.AI order the ending
