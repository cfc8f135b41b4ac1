package media

import (
	"fmt"
	"sort"
	"time"
)

// SessionStatus tracks where a session is in the sync pipeline.
type SessionStatus string

const (
	StatusDraft       SessionStatus = "draft"
	StatusSyncing     SessionStatus = "syncing"
	StatusNeedsReview SessionStatus = "needs-review"
	StatusSynced      SessionStatus = "synced"
)

// OperatorStatus tracks the operator's verdict on detected offsets.
type OperatorStatus string

const (
	OperatorPending   OperatorStatus = "pending"
	OperatorApproved  OperatorStatus = "approved"
	OperatorCorrected OperatorStatus = "corrected"
)

// Asset holds the media locations for one camera angle. AudioURL points at an
// audio-only extraction when the ingest pipeline produced one.
type Asset struct {
	Camera       Camera `json:"camera"`
	AudioURL     string `json:"audioUrl,omitempty"`
	OriginalURL  string `json:"originalUrl"`
	ProxyURL     string `json:"proxyUrl,omitempty"`
	MezzanineURL string `json:"mezzanineUrl,omitempty"`
}

// BestAudioURL returns the most suitable source for audio analysis, preferring
// a dedicated audio extraction over the full original recording.
func (a Asset) BestAudioURL() string {
	if a.AudioURL != "" {
		return a.AudioURL
	}
	if a.MezzanineURL != "" {
		return a.MezzanineURL
	}
	return a.OriginalURL
}

// SyncResult is the offset detected for one camera relative to the master.
type SyncResult struct {
	Camera         Camera         `json:"camera"`
	OffsetMs       int64          `json:"offsetMs"`
	Confidence     float64        `json:"confidence"`
	Classification Classification `json:"classification"`
	Error          string         `json:"error,omitempty"`
}

// Session is one multi-camera recording awaiting sync and editing.
type Session struct {
	ID             string                `json:"id"`
	Title          string                `json:"title"`
	RecordedAt     time.Time             `json:"recordedAt"`
	DurationMs     int64                 `json:"durationMs"`
	Status         SessionStatus         `json:"status"`
	OperatorStatus OperatorStatus        `json:"operatorStatus"`
	Assets         map[Camera]Asset      `json:"assets"`
	MasterCamera   Camera                `json:"masterCamera,omitempty"`
	SyncResults    map[Camera]SyncResult `json:"syncResults,omitempty"`
	AllReliable    bool                  `json:"allReliable"`
	Metadata       map[string]string     `json:"metadata,omitempty"`
	CreatedAt      time.Time             `json:"createdAt"`
	UpdatedAt      time.Time             `json:"updatedAt"`
}

// CamerasPresent returns the session's camera angles in canonical order.
func (s *Session) CamerasPresent() []Camera {
	cams := make([]Camera, 0, len(s.Assets))
	for cam := range s.Assets {
		cams = append(cams, cam)
	}
	sort.Slice(cams, func(i, j int) bool { return cams[i] < cams[j] })
	return cams
}

// Validate checks that the session has enough structure to sync.
func (s *Session) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("session id is required")
	}
	if len(s.Assets) < 2 {
		return fmt.Errorf("session %s has %d camera(s); at least 2 are required for sync", s.ID, len(s.Assets))
	}
	for cam, asset := range s.Assets {
		if !cam.Valid() {
			return fmt.Errorf("session %s has unknown camera %q", s.ID, cam)
		}
		if asset.BestAudioURL() == "" {
			return fmt.Errorf("session %s camera %s has no usable media URL", s.ID, cam)
		}
	}
	if s.MasterCamera != "" {
		if _, ok := s.Assets[s.MasterCamera]; !ok {
			return fmt.Errorf("session %s master camera %s has no asset", s.ID, s.MasterCamera)
		}
	}
	return nil
}
