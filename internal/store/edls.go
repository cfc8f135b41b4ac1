package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cutroom/internal/edl"
	"cutroom/internal/services"
)

// PutEDL inserts or replaces the EDL for a session. A locked document is
// immutable and can never be overwritten.
func (s *Store) PutEDL(ctx context.Context, doc *edl.Document) error {
	ctx = ensureContext(ctx)

	existing, err := s.GetEDL(ctx, doc.SessionID)
	if err != nil && !errors.Is(err, services.ErrNotFound) {
		return err
	}
	if existing != nil && existing.Status == edl.StatusLocked {
		return services.Wrap(services.ErrConflict, "store", "put-edl",
			fmt.Sprintf("edl for session %s", doc.SessionID), ErrEDLLocked)
	}

	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now
	document, err := marshalJSON(doc)
	if err != nil {
		return err
	}
	_, err = s.execWithRetry(ctx, `
		INSERT INTO edls (session_id, status, version, document_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			status = excluded.status,
			version = excluded.version,
			document_json = excluded.document_json,
			updated_at = excluded.updated_at`,
		doc.SessionID, string(doc.Status), doc.Version, document,
		formatTime(doc.CreatedAt), formatTime(doc.UpdatedAt))
	if err != nil {
		return fmt.Errorf("put edl for session %s: %w", doc.SessionID, err)
	}
	return nil
}

// GetEDL loads a session's EDL document.
func (s *Store) GetEDL(ctx context.Context, sessionID string) (*edl.Document, error) {
	ctx = ensureContext(ctx)
	var document string
	err := s.db.QueryRowContext(ctx,
		"SELECT document_json FROM edls WHERE session_id = ?", sessionID).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "store", "get-edl",
			fmt.Sprintf("no edl for session %s", sessionID), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("get edl for session %s: %w", sessionID, err)
	}
	var doc edl.Document
	if err := json.Unmarshal([]byte(document), &doc); err != nil {
		return nil, fmt.Errorf("decode edl for session %s: %w", sessionID, err)
	}
	return &doc, nil
}

// ReplaceProgram atomically swaps the program track of an unlocked EDL. The new
// track is validated, metrics are recomputed, and the document version is
// bumped in the same transaction.
func (s *Store) ReplaceProgram(ctx context.Context, sessionID string, program []edl.Cut, chapters []edl.Chapter) (*edl.Document, error) {
	ctx = ensureContext(ctx)

	var result *edl.Document
	err := retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		var document string
		err = tx.QueryRowContext(ctx,
			"SELECT document_json FROM edls WHERE session_id = ?", sessionID).Scan(&document)
		if errors.Is(err, sql.ErrNoRows) {
			return services.Wrap(services.ErrNotFound, "store", "replace-program",
				fmt.Sprintf("no edl for session %s", sessionID), nil)
		}
		if err != nil {
			return fmt.Errorf("load edl for session %s: %w", sessionID, err)
		}

		var doc edl.Document
		if err := json.Unmarshal([]byte(document), &doc); err != nil {
			return fmt.Errorf("decode edl for session %s: %w", sessionID, err)
		}
		if doc.Status == edl.StatusLocked {
			return services.Wrap(services.ErrConflict, "store", "replace-program",
				fmt.Sprintf("edl for session %s is locked; no further edits are allowed", sessionID), nil)
		}
		if err := edl.ValidateProgram(program, doc.DurationMs); err != nil {
			return err
		}

		doc.Tracks.Program = program
		if chapters != nil {
			doc.Tracks.Chapters = chapters
		}
		doc.Version++
		doc.UpdatedAt = time.Now().UTC()
		doc.RecomputeMetrics()

		updated, err := marshalJSON(&doc)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE edls SET version = ?, document_json = ?, updated_at = ?
			WHERE session_id = ?`,
			doc.Version, updated, formatTime(doc.UpdatedAt), sessionID); err != nil {
			return fmt.Errorf("store edl for session %s: %w", sessionID, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit edl update: %w", err)
		}
		result = &doc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// TransitionEDL advances the lifecycle with a status guard so a document
// approved or locked by another process is never transitioned twice.
func (s *Store) TransitionEDL(ctx context.Context, sessionID string, from, to edl.Status) (*edl.Document, error) {
	ctx = ensureContext(ctx)

	var result *edl.Document
	err := retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		var document string
		err = tx.QueryRowContext(ctx,
			"SELECT document_json FROM edls WHERE session_id = ? AND status = ?",
			sessionID, string(from)).Scan(&document)
		if errors.Is(err, sql.ErrNoRows) {
			return services.Wrap(services.ErrConflict, "store", "transition-edl",
				fmt.Sprintf("edl for session %s is not %s", sessionID, from), ErrStale)
		}
		if err != nil {
			return fmt.Errorf("load edl for session %s: %w", sessionID, err)
		}

		var doc edl.Document
		if err := json.Unmarshal([]byte(document), &doc); err != nil {
			return fmt.Errorf("decode edl for session %s: %w", sessionID, err)
		}
		doc.Status = to
		doc.Version++
		doc.UpdatedAt = time.Now().UTC()

		updated, err := marshalJSON(&doc)
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `
			UPDATE edls SET status = ?, version = ?, document_json = ?, updated_at = ?
			WHERE session_id = ? AND status = ?`,
			string(to), doc.Version, updated, formatTime(doc.UpdatedAt),
			sessionID, string(from))
		if err != nil {
			return fmt.Errorf("transition edl for session %s: %w", sessionID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("transition edl for session %s: %w", sessionID, err)
		}
		if affected == 0 {
			return services.Wrap(services.ErrConflict, "store", "transition-edl",
				fmt.Sprintf("edl for session %s changed concurrently", sessionID), ErrStale)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit edl transition: %w", err)
		}
		result = &doc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// LockedEDL returns the session's EDL, requiring that it is locked. Render
// submission uses this to guarantee jobs only ever reference frozen programs.
func (s *Store) LockedEDL(ctx context.Context, sessionID string) (*edl.Document, error) {
	doc, err := s.GetEDL(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if doc.Status != edl.StatusLocked {
		return nil, services.Wrap(services.ErrConflict, "store", "locked-edl",
			fmt.Sprintf("edl for session %s is %s", sessionID, doc.Status), ErrEDLNotLocked)
	}
	return doc, nil
}
