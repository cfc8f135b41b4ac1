package edl

import (
	"fmt"
	"sort"
	"time"

	"cutroom/internal/media"
)

// SchemaVersion identifies the document layout. Bump on breaking changes.
const SchemaVersion = "1.0"

// Status is the lifecycle state of an EDL document.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusApproved Status = "approved"
	StatusLocked   Status = "locked"
)

// CanAdvanceTo reports whether the lifecycle permits moving to next. The
// lifecycle only moves forward; unlocking requires operator tooling outside
// this package.
func (s Status) CanAdvanceTo(next Status) bool {
	switch s {
	case StatusDraft:
		return next == StatusApproved
	case StatusApproved:
		return next == StatusLocked
	}
	return false
}

// Reason records how a cut decision came to be.
type Reason string

const (
	ReasonAuto     Reason = "auto"
	ReasonOperator Reason = "operator"
)

// Cut is one program segment: a span of the session timeline assigned to a
// camera angle.
type Cut struct {
	ID         string       `json:"id"`
	StartMs    int64        `json:"startMs"`
	EndMs      int64        `json:"endMs"`
	Camera     media.Camera `json:"camera"`
	Confidence float64      `json:"confidence"`
	Reason     Reason       `json:"reason"`
}

// DurationMs returns the cut's length.
func (c Cut) DurationMs() int64 {
	return c.EndMs - c.StartMs
}

// Chapter marks a named point on the program timeline.
type Chapter struct {
	ID          string `json:"id"`
	TimeMs      int64  `json:"timeMs"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Source describes one camera's media and its sync offset relative to the
// master camera.
type Source struct {
	Camera     media.Camera `json:"camera"`
	URL        string       `json:"url"`
	OffsetMs   int64        `json:"offsetMs"`
	Confidence float64      `json:"confidence"`
}

// Metrics are derived program statistics, recomputed on every program change.
type Metrics struct {
	TotalCuts        int   `json:"totalCuts"`
	AvgShotLengthMs  int64 `json:"avgShotLengthMs"`
	ProgramLengthMs  int64 `json:"programLengthMs"`
	OperatorOverride int   `json:"operatorOverride"`
}

// Tracks groups the editable content of a document.
type Tracks struct {
	Program  []Cut     `json:"program"`
	Chapters []Chapter `json:"chapters,omitempty"`
}

// Document is a complete edit decision list for one session.
type Document struct {
	SchemaVersion string                  `json:"schemaVersion"`
	SessionID     string                  `json:"sessionId"`
	Status        Status                  `json:"status"`
	Version       int                     `json:"version"`
	DurationMs    int64                   `json:"durationMs"`
	FrameRate     float64                 `json:"frameRate"`
	Sources       map[media.Camera]Source `json:"sources"`
	Tracks        Tracks                  `json:"tracks"`
	Metrics       Metrics                 `json:"metrics"`
	CreatedAt     time.Time               `json:"createdAt"`
	UpdatedAt     time.Time               `json:"updatedAt"`
}

// NewDocument builds a draft EDL for a synced session. Sources carry the
// detected offsets; the program starts as a single full-length cut on the
// master camera for the operator to refine.
func NewDocument(session *media.Session, frameRate float64, now time.Time) (*Document, error) {
	if session.DurationMs <= 0 {
		return nil, fmt.Errorf("session %s has no duration", session.ID)
	}
	master := session.MasterCamera
	if master == "" {
		return nil, fmt.Errorf("session %s has no master camera", session.ID)
	}

	sources := make(map[media.Camera]Source, len(session.Assets))
	for cam, asset := range session.Assets {
		src := Source{Camera: cam, URL: asset.BestAudioURL()}
		if asset.OriginalURL != "" {
			src.URL = asset.OriginalURL
		}
		if result, ok := session.SyncResults[cam]; ok {
			src.OffsetMs = result.OffsetMs
			src.Confidence = result.Confidence
		}
		sources[cam] = src
	}

	doc := &Document{
		SchemaVersion: SchemaVersion,
		SessionID:     session.ID,
		Status:        StatusDraft,
		Version:       1,
		DurationMs:    session.DurationMs,
		FrameRate:     frameRate,
		Sources:       sources,
		Tracks: Tracks{
			Program: []Cut{{
				ID:         fmt.Sprintf("cut-%s-0", session.ID),
				StartMs:    0,
				EndMs:      session.DurationMs,
				Camera:     master,
				Confidence: 1,
				Reason:     ReasonAuto,
			}},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	doc.RecomputeMetrics()
	return doc, nil
}

// RecomputeMetrics refreshes derived statistics from the program track.
func (d *Document) RecomputeMetrics() {
	m := Metrics{TotalCuts: len(d.Tracks.Program)}
	var total int64
	for _, cut := range d.Tracks.Program {
		total += cut.DurationMs()
		if cut.Reason == ReasonOperator {
			m.OperatorOverride++
		}
	}
	m.ProgramLengthMs = total
	if m.TotalCuts > 0 {
		m.AvgShotLengthMs = total / int64(m.TotalCuts)
	}
	d.Metrics = m
}

// SortedSources returns sources in canonical camera order for deterministic
// serialization and export.
func (d *Document) SortedSources() []Source {
	out := make([]Source, 0, len(d.Sources))
	for _, src := range d.Sources {
		out = append(out, src)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Camera < out[j].Camera })
	return out
}
