package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-pass-sphere/internal/logger"
	"github.com/MKhiriev/go-pass-sphere/models"
)

// snapshotInsertBatch keeps one INSERT below SQLite's limit of 999 bound
// variables (six per row).
const snapshotInsertBatch = 150

type sqlStatement struct {
	query string
	args  []any
}

type snapshotRepository struct {
	db     *DB
	logger *logger.Logger
}

func NewSnapshotRepository(db *DB, logger *logger.Logger) SnapshotRepository {
	return &snapshotRepository{
		db:     db,
		logger: logger,
	}
}

func (r *snapshotRepository) SaveSnapshot(ctx context.Context, principal, kind string, snapshot models.RecordSnapshot) error {
	log := logger.FromContext(ctx)

	deleteQuery, deleteArgs, err := builder.Delete("snapshots").
		Where(sq.Eq{"principal": principal, "kind": kind}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	records := uniqueByID(snapshot.Records)
	inserts := make([]sqlStatement, 0, (len(records)+snapshotInsertBatch-1)/snapshotInsertBatch)
	for start := 0; start < len(records); start += snapshotInsertBatch {
		end := min(start+snapshotInsertBatch, len(records))
		insert := builder.Insert("snapshots").
			Columns("principal", "kind", "record_id", "position", "fields", "fetched_at")
		for position := start; position < end; position++ {
			record := records[position]
			fields, marshalErr := json.Marshal(record.Fields)
			if marshalErr != nil {
				return fmt.Errorf("error encoding fields of record %d: %w", record.ID, marshalErr)
			}
			// SQLite integers are signed; ids keep their bits as int64.
			insert = insert.Values(principal, kind, int64(record.ID), position, string(fields), snapshot.FetchedAt)
		}

		query, args, buildErr := insert.ToSql()
		if buildErr != nil {
			return fmt.Errorf("%w: %v", ErrBuildingSQLQuery, buildErr)
		}
		inserts = append(inserts, sqlStatement{query: query, args: args})
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "snapshotRepository.SaveSnapshot").Msg("failed to begin transaction")
		return fmt.Errorf("%w: %v", ErrBeginningTransaction, err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err = tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		log.Err(err).
			Str("func", "snapshotRepository.SaveSnapshot").
			Str("kind", kind).
			Msg("failed to delete previous snapshot")
		return fmt.Errorf("%w: %v", ErrExecutingStatement, err)
	}
	for _, insert := range inserts {
		if _, err = tx.ExecContext(ctx, insert.query, insert.args...); err != nil {
			log.Err(err).
				Str("func", "snapshotRepository.SaveSnapshot").
				Str("kind", kind).
				Int("records", len(records)).
				Msg("failed to insert snapshot")
			return fmt.Errorf("%w: %v", ErrExecutingStatement, err)
		}
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).Str("func", "snapshotRepository.SaveSnapshot").Msg("failed to commit transaction")
		return fmt.Errorf("%w: %v", ErrCommitingTransaction, err)
	}
	return nil
}

func (r *snapshotRepository) LoadSnapshot(ctx context.Context, principal, kind string) (models.RecordSnapshot, error) {
	log := logger.FromContext(ctx)

	query, args, err := builder.Select("record_id", "fields", "fetched_at").
		From("snapshots").
		Where(sq.Eq{"principal": principal, "kind": kind}).
		OrderBy("position").
		ToSql()
	if err != nil {
		return models.RecordSnapshot{}, fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "snapshotRepository.LoadSnapshot").
			Str("kind", kind).
			Msg("failed to execute query for snapshot")
		return models.RecordSnapshot{}, fmt.Errorf("%w: %v", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var snapshot models.RecordSnapshot
	for rows.Next() {
		var (
			record    models.RemoteRecord
			recordID  int64
			fields    string
			fetchedAt time.Time
		)
		if err = rows.Scan(&recordID, &fields, &fetchedAt); err != nil {
			log.Err(err).Str("func", "snapshotRepository.LoadSnapshot").Msg("failed to scan snapshot row")
			return models.RecordSnapshot{}, fmt.Errorf("%w: %v", ErrScanningRows, err)
		}
		record.ID = uint64(recordID)
		if err = json.Unmarshal([]byte(fields), &record.Fields); err != nil {
			return models.RecordSnapshot{}, fmt.Errorf("%w: fields of record %d: %v", ErrCorruptedRow, record.ID, err)
		}

		snapshot.Records = append(snapshot.Records, record)
		snapshot.FetchedAt = fetchedAt
	}
	if err = rows.Err(); err != nil {
		log.Err(err).Str("func", "snapshotRepository.LoadSnapshot").Msg("error occurred during rows iteration")
		return models.RecordSnapshot{}, fmt.Errorf("%w: %v", ErrScanningRows, err)
	}

	if len(snapshot.Records) == 0 {
		return models.RecordSnapshot{}, ErrSnapshotNotFound
	}
	return snapshot, nil
}

func (r *snapshotRepository) DeleteSnapshots(ctx context.Context, principal string) error {
	query, args, err := builder.Delete("snapshots").
		Where(sq.Eq{"principal": principal}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.Err(err).Str("func", "snapshotRepository.DeleteSnapshots").Msg("failed to delete snapshots")
		return fmt.Errorf("%w: %v", ErrExecutingStatement, err)
	}
	return nil
}

// uniqueByID drops repeated ids the way the sync cache does: the record keeps
// the position of its first occurrence and the fields of its last.
func uniqueByID(records []models.RemoteRecord) []models.RemoteRecord {
	out := make([]models.RemoteRecord, 0, len(records))
	seen := make(map[uint64]int, len(records))
	for _, record := range records {
		if i, ok := seen[record.ID]; ok {
			out[i] = record
			continue
		}
		seen[record.ID] = len(out)
		out = append(out, record)
	}
	return out
}
