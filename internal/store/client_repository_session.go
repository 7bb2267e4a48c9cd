package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-pass-sphere/internal/crypto"
	"github.com/MKhiriev/go-pass-sphere/internal/logger"
	"github.com/MKhiriev/go-pass-sphere/models"
)

type sessionRepository struct {
	db     *DB
	logger *logger.Logger
}

func NewSessionRepository(db *DB, logger *logger.Logger) SessionRepository {
	return &sessionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *sessionRepository) SaveSession(ctx context.Context, s models.StoredSession) error {
	deleteQuery, deleteArgs, err := builder.Delete("sessions").ToSql()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	insertQuery, insertArgs, err := builder.Insert("sessions").
		Columns("principal", "session_seed", "delegation", "expires_at", "created_at").
		Values(
			crypto.EncodeHex(s.Principal),
			s.SessionSeed,
			s.Delegation,
			sql.NullTime{Time: s.ExpiresAt, Valid: !s.ExpiresAt.IsZero()},
			s.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Err(err).Str("func", "sessionRepository.SaveSession").Msg("failed to begin transaction")
		return fmt.Errorf("%w: %v", ErrBeginningTransaction, err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err = tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		r.logger.Err(err).Str("func", "sessionRepository.SaveSession").Msg("failed to delete previous session")
		return fmt.Errorf("%w: %v", ErrExecutingStatement, err)
	}
	if _, err = tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		r.logger.Err(err).Str("func", "sessionRepository.SaveSession").Msg("failed to insert session")
		return fmt.Errorf("%w: %v", ErrExecutingStatement, err)
	}

	if err = tx.Commit(); err != nil {
		r.logger.Err(err).Str("func", "sessionRepository.SaveSession").Msg("failed to commit transaction")
		return fmt.Errorf("%w: %v", ErrCommitingTransaction, err)
	}
	return nil
}

func (r *sessionRepository) LoadSession(ctx context.Context) (models.StoredSession, error) {
	query, args, err := builder.
		Select("principal", "session_seed", "delegation", "expires_at", "created_at").
		From("sessions").
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return models.StoredSession{}, fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	var (
		s         models.StoredSession
		principal string
		expiresAt sql.NullTime
	)
	err = r.db.QueryRowContext(ctx, query, args...).
		Scan(&principal, &s.SessionSeed, &s.Delegation, &expiresAt, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.StoredSession{}, ErrSessionNotFound
	}
	if err != nil {
		r.logger.Err(err).Str("func", "sessionRepository.LoadSession").Msg("failed to scan session row")
		return models.StoredSession{}, fmt.Errorf("%w: %v", ErrScanningRow, err)
	}

	if s.Principal, err = crypto.DecodeHex(principal); err != nil {
		return models.StoredSession{}, fmt.Errorf("%w: principal: %v", ErrCorruptedRow, err)
	}
	if expiresAt.Valid {
		s.ExpiresAt = expiresAt.Time
	}
	return s, nil
}

func (r *sessionRepository) DeleteSession(ctx context.Context) error {
	query, args, err := builder.Delete("sessions").ToSql()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.Err(err).Str("func", "sessionRepository.DeleteSession").Msg("failed to delete session")
		return fmt.Errorf("%w: %v", ErrExecutingStatement, err)
	}
	return nil
}
