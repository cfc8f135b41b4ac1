package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cutroom/internal/edl"
	"cutroom/internal/services"
)

// SubmitRequest is the payload sent to the farm for a new render.
type SubmitRequest struct {
	JobID      string        `json:"jobId"`
	SessionID  string        `json:"sessionId"`
	Format     Format        `json:"format"`
	Aspect     string        `json:"aspect"`
	EDLVersion int           `json:"edlVersion"`
	EDL        *edl.Document `json:"edl"`
}

// StatusReport is the farm's view of a running job. Completion reports carry
// the output artifacts and render metrics.
type StatusReport struct {
	FarmJobID          string  `json:"id"`
	State              string  `json:"state"`
	Progress           int     `json:"progress"`
	OutputURL          string  `json:"outputUrl,omitempty"`
	OutputThumbnailURL string  `json:"outputThumbnailUrl,omitempty"`
	OutputSubtitlesURL string  `json:"outputSubtitlesUrl,omitempty"`
	Error              string  `json:"error,omitempty"`
	DurationMs         int64   `json:"durationMs,omitempty"`
	FileSizeBytes      int64   `json:"fileSizeBytes,omitempty"`
	Resolution         string  `json:"resolution,omitempty"`
	Fps                float64 `json:"fps,omitempty"`
	RenderDurationMs   int64   `json:"renderDurationMs,omitempty"`
}

// Farm is the external rendering engine, invoked as a black box.
type Farm interface {
	Submit(ctx context.Context, req SubmitRequest) (farmJobID string, err error)
	Status(ctx context.Context, farmJobID string) (StatusReport, error)
	Cancel(ctx context.Context, farmJobID string) error
}

// HTTPFarm talks to a render farm over its JSON HTTP API.
type HTTPFarm struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPFarm builds a Farm client. The token, when set, is sent as a bearer
// credential on every request.
func NewHTTPFarm(baseURL, token string, timeout time.Duration) (*HTTPFarm, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "render", "farm",
			"render.base_url is not configured", nil)
	}
	return &HTTPFarm{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// Submit enqueues a render and returns the farm's job id.
func (f *HTTPFarm) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	var response struct {
		ID string `json:"id"`
	}
	if err := f.do(ctx, http.MethodPost, "/v1/renders", req, &response); err != nil {
		return "", err
	}
	if response.ID == "" {
		return "", services.Wrap(services.ErrExternalTool, "render", "submit",
			"farm accepted the render but returned no job id", nil)
	}
	return response.ID, nil
}

// Status fetches the farm's current view of a job.
func (f *HTTPFarm) Status(ctx context.Context, farmJobID string) (StatusReport, error) {
	var report StatusReport
	err := f.do(ctx, http.MethodGet, "/v1/renders/"+farmJobID, nil, &report)
	return report, err
}

// Cancel asks the farm to stop a job. Cancelling an already-finished job is
// not an error on the farm side.
func (f *HTTPFarm) Cancel(ctx context.Context, farmJobID string) error {
	return f.do(ctx, http.MethodPost, "/v1/renders/"+farmJobID+"/cancel", nil, nil)
}

func (f *HTTPFarm) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, f.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if f.token != "" {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransient, "render", "farm-request",
			fmt.Sprintf("%s %s", method, path), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		marker := services.ErrTransient
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			marker = services.ErrValidation
		}
		return services.Wrap(marker, "render", "farm-request",
			fmt.Sprintf("%s %s: %s: %s", method, path, resp.Status, strings.TrimSpace(string(snippet))), nil)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrExternalTool, "render", "farm-request",
			fmt.Sprintf("%s %s: unparseable response", method, path), err)
	}
	return nil
}
