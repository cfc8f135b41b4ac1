package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cutroom/internal/media"
	"cutroom/internal/services"
)

const timeLayout = time.RFC3339Nano

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func marshalJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal: %w", err)
	}
	return string(data), nil
}

// CreateSession inserts a new session record.
func (s *Store) CreateSession(ctx context.Context, session *media.Session) error {
	if err := session.Validate(); err != nil {
		return services.Wrap(services.ErrValidation, "store", "create-session", "", err)
	}
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now
	if session.Status == "" {
		session.Status = media.StatusDraft
	}
	if session.OperatorStatus == "" {
		session.OperatorStatus = media.OperatorPending
	}

	assets, err := marshalJSON(session.Assets)
	if err != nil {
		return err
	}
	results, err := marshalJSON(session.SyncResults)
	if err != nil {
		return err
	}
	metadata, err := marshalJSON(session.Metadata)
	if err != nil {
		return err
	}

	_, err = s.execWithRetry(ctx, `
		INSERT INTO sessions (id, title, recorded_at, duration_ms, status, operator_status,
			master_camera, all_reliable, assets_json, sync_results_json, metadata_json,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID, session.Title, formatTime(session.RecordedAt), session.DurationMs,
		string(session.Status), string(session.OperatorStatus), string(session.MasterCamera),
		boolToInt(session.AllReliable), assets, results, metadata,
		formatTime(session.CreatedAt), formatTime(session.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert session %s: %w", session.ID, err)
	}
	return nil
}

// GetSession loads one session by id.
func (s *Store) GetSession(ctx context.Context, id string) (*media.Session, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, recorded_at, duration_ms, status, operator_status,
			master_camera, all_reliable, assets_json, sync_results_json, metadata_json,
			created_at, updated_at
		FROM sessions WHERE id = ?`, id)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "store", "get-session",
			fmt.Sprintf("session %s not found", id), nil)
	}
	return session, err
}

// ListSessions returns all sessions, newest first.
func (s *Store) ListSessions(ctx context.Context) ([]*media.Session, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, recorded_at, duration_ms, status, operator_status,
			master_camera, all_reliable, assets_json, sync_results_json, metadata_json,
			created_at, updated_at
		FROM sessions ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*media.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*media.Session, error) {
	var (
		session                          media.Session
		recordedAt, createdAt, updatedAt string
		status, operatorStatus, master   string
		allReliable                      int
		assets, results, metadata        string
	)
	err := row.Scan(&session.ID, &session.Title, &recordedAt, &session.DurationMs,
		&status, &operatorStatus, &master, &allReliable, &assets, &results, &metadata,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	session.RecordedAt = parseTime(recordedAt)
	session.CreatedAt = parseTime(createdAt)
	session.UpdatedAt = parseTime(updatedAt)
	session.Status = media.SessionStatus(status)
	session.OperatorStatus = media.OperatorStatus(operatorStatus)
	session.MasterCamera = media.Camera(master)
	session.AllReliable = allReliable != 0
	if err := json.Unmarshal([]byte(assets), &session.Assets); err != nil {
		return nil, fmt.Errorf("decode assets for session %s: %w", session.ID, err)
	}
	if err := json.Unmarshal([]byte(results), &session.SyncResults); err != nil {
		return nil, fmt.Errorf("decode sync results for session %s: %w", session.ID, err)
	}
	if err := json.Unmarshal([]byte(metadata), &session.Metadata); err != nil {
		return nil, fmt.Errorf("decode metadata for session %s: %w", session.ID, err)
	}
	return &session, nil
}

// UpdateSessionStatus moves a session between pipeline states using
// compare-and-swap so concurrent sync runs cannot both claim it.
func (s *Store) UpdateSessionStatus(ctx context.Context, id string, from, to media.SessionStatus) error {
	res, err := s.execWithRetry(ctx,
		"UPDATE sessions SET status = ?, updated_at = ? WHERE id = ? AND status = ?",
		string(to), formatTime(time.Now().UTC()), id, string(from))
	if err != nil {
		return fmt.Errorf("update session %s status: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update session %s status: %w", id, err)
	}
	if affected == 0 {
		return services.Wrap(services.ErrConflict, "store", "update-session-status",
			fmt.Sprintf("session %s is not %s", id, from), ErrStale)
	}
	return nil
}

// SaveSyncResults persists detected offsets along with the master choice and
// the resulting session state.
func (s *Store) SaveSyncResults(ctx context.Context, session *media.Session) error {
	results, err := marshalJSON(session.SyncResults)
	if err != nil {
		return err
	}
	metadata, err := marshalJSON(session.Metadata)
	if err != nil {
		return err
	}
	session.UpdatedAt = time.Now().UTC()
	res, err := s.execWithRetry(ctx, `
		UPDATE sessions SET status = ?, operator_status = ?, master_camera = ?,
			all_reliable = ?, sync_results_json = ?, metadata_json = ?, updated_at = ?
		WHERE id = ?`,
		string(session.Status), string(session.OperatorStatus), string(session.MasterCamera),
		boolToInt(session.AllReliable), results, metadata,
		formatTime(session.UpdatedAt), session.ID)
	if err != nil {
		return fmt.Errorf("save sync results for session %s: %w", session.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save sync results for session %s: %w", session.ID, err)
	}
	if affected == 0 {
		return services.Wrap(services.ErrNotFound, "store", "save-sync-results",
			fmt.Sprintf("session %s not found", session.ID), nil)
	}
	return nil
}

// SaveOperatorReview persists an approve or correct verdict.
func (s *Store) SaveOperatorReview(ctx context.Context, session *media.Session) error {
	return s.SaveSyncResults(ctx, session)
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
