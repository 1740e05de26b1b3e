package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vkuzmenko/wardsync/internal/models"
	"github.com/vkuzmenko/wardsync/internal/server/storage"
	"github.com/vkuzmenko/wardsync/internal/vclock"
)

// SaveRecord creates or replaces the canonical record state
func (s *Storage) SaveRecord(ctx context.Context, record *models.Record) error {
	fieldsJSON, err := json.Marshal(record.Fields)
	if err != nil {
		return fmt.Errorf("failed to marshal fields: %w", err)
	}
	clockJSON, err := json.Marshal(record.Clock)
	if err != nil {
		return fmt.Errorf("failed to marshal vector clock: %w", err)
	}

	query := `
		INSERT INTO records (id, status, origin_node_id, fields, vector_clock, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			origin_node_id = excluded.origin_node_id,
			fields = excluded.fields,
			vector_clock = excluded.vector_clock,
			updated_at = excluded.updated_at
	`

	_, err = s.db.ExecContext(ctx, query,
		record.ID,
		string(record.Status),
		record.OriginNodeID,
		string(fieldsJSON),
		string(clockJSON),
		record.CreatedAt.UnixNano(),
		record.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}

	return nil
}

// GetRecord retrieves a record by ID
// Returns ErrRecordNotFound if record doesn't exist
func (s *Storage) GetRecord(ctx context.Context, id string) (*models.Record, error) {
	query := `
		SELECT id, status, origin_node_id, fields, vector_clock, created_at, updated_at
		FROM records
		WHERE id = ?
	`

	record, err := scanRecord(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get record: %w", err)
	}

	return record, nil
}

// ListRecords retrieves all records
func (s *Storage) ListRecords(ctx context.Context) ([]*models.Record, error) {
	query := `
		SELECT id, status, origin_node_id, fields, vector_clock, created_at, updated_at
		FROM records
		ORDER BY updated_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	records := make([]*models.Record, 0)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}

	return records, nil
}

// ListUnobserved retrieves records the device has not fully observed.
// Сравнение идет строго пер-записно: часы записи говорят только о ней
// самой, поэтому запись, которой нет в observed, отдается всегда, какими
// бы "отставшими" ни были ее часы. Покрытие векторных часов SQL не
// выражает, поэтому фильтрация по Compare выполняется в памяти.
func (s *Storage) ListUnobserved(ctx context.Context, observed map[string]vclock.VectorClock) ([]*models.Record, error) {
	records, err := s.ListRecords(ctx)
	if err != nil {
		return nil, err
	}

	changed := make([]*models.Record, 0, len(records))
	for _, record := range records {
		known, ok := observed[record.ID]
		if !ok {
			changed = append(changed, record)
			continue
		}
		switch vclock.Compare(record.Clock, known) {
		case vclock.Before, vclock.Equal:
			// Устройство уже наблюдало это состояние
		default:
			changed = append(changed, record)
		}
	}

	return changed, nil
}

// rowScanner покрывает *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*models.Record, error) {
	record := &models.Record{}
	var status, fieldsJSON, clockJSON string
	var createdAt, updatedAt int64

	if err := row.Scan(
		&record.ID,
		&status,
		&record.OriginNodeID,
		&fieldsJSON,
		&clockJSON,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	record.Status = models.Status(status)
	record.CreatedAt = time.Unix(0, createdAt)
	record.UpdatedAt = time.Unix(0, updatedAt)

	if err := json.Unmarshal([]byte(fieldsJSON), &record.Fields); err != nil {
		return nil, fmt.Errorf("failed to unmarshal fields: %w", err)
	}
	if err := json.Unmarshal([]byte(clockJSON), &record.Clock); err != nil {
		return nil, fmt.Errorf("failed to unmarshal vector clock: %w", err)
	}

	return record, nil
}
