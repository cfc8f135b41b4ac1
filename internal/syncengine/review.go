package syncengine

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"cutroom/internal/media"
	"cutroom/internal/services"
)

// Approve records the operator's confirmation that detected offsets look
// right. The session moves to synced / approved.
func Approve(ctx context.Context, store SessionStore, sessionID, approvedBy, notes string) (*media.Session, error) {
	session, err := reviewableSession(ctx, store, sessionID)
	if err != nil {
		return nil, err
	}

	session.Status = media.StatusSynced
	session.OperatorStatus = media.OperatorApproved
	setMetadata(session, map[string]string{
		"syncApprovedBy":    approvedBy,
		"syncApprovedAt":    time.Now().UTC().Format(time.RFC3339),
		"syncApprovalNotes": notes,
	})

	if err := store.SaveSyncResults(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Correct records manually adjusted offsets. The detected values are
// preserved in metadata for audit before being overwritten.
func Correct(ctx context.Context, store SessionStore, sessionID string, offsets map[media.Camera]int64, correctedBy, notes string) (*media.Session, error) {
	session, err := reviewableSession(ctx, store, sessionID)
	if err != nil {
		return nil, err
	}

	audit := map[string]string{
		"syncCorrectedBy":     correctedBy,
		"syncCorrectedAt":     time.Now().UTC().Format(time.RFC3339),
		"syncCorrectionNotes": notes,
	}
	for cam, offset := range offsets {
		result, ok := session.SyncResults[cam]
		if !ok {
			return nil, services.Wrap(services.ErrValidation, "sync-engine", "correct",
				fmt.Sprintf("camera %s has no sync result in session %s", cam, sessionID), nil)
		}
		audit["originalSyncOffsetMs."+string(cam)] = strconv.FormatInt(result.OffsetMs, 10)
		result.OffsetMs = offset
		session.SyncResults[cam] = result
	}
	setMetadata(session, audit)

	session.Status = media.StatusSynced
	session.OperatorStatus = media.OperatorCorrected

	if err := store.SaveSyncResults(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func reviewableSession(ctx context.Context, store SessionStore, sessionID string) (*media.Session, error) {
	session, err := store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != media.StatusNeedsReview {
		return nil, services.Wrap(services.ErrConflict, "sync-engine", "review",
			fmt.Sprintf("session %s is %s; only needs-review sessions can be reviewed", sessionID, session.Status), nil)
	}
	return session, nil
}

func setMetadata(session *media.Session, values map[string]string) {
	if session.Metadata == nil {
		session.Metadata = make(map[string]string, len(values))
	}
	for key, value := range values {
		if value == "" {
			continue
		}
		session.Metadata[key] = value
	}
}
