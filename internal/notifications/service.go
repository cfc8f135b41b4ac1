package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cutroom/internal/config"
)

const userAgent = "Cutroom/0.1.0"

// Service defines the notification surface exposed to pipeline components.
type Service interface {
	NotifySyncCompleted(ctx context.Context, sessionID string, allReliable bool) error
	NotifySyncFailed(ctx context.Context, sessionID string, err error) error
	NotifyRenderCompleted(ctx context.Context, jobID, outputURL string) error
	NotifyRenderFailed(ctx context.Context, jobID string, errMsg string) error
	NotifyError(ctx context.Context, err error, label string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
// Per-event gates in the config silence individual categories.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:     topic,
		client:       &http.Client{Timeout: timeout},
		syncEvents:   cfg.Notifications.Sync,
		renderEvents: cfg.Notifications.Render,
		errorEvents:  cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint     string
	client       *http.Client
	syncEvents   bool
	renderEvents bool
	errorEvents  bool
}

func (n *ntfyService) NotifySyncCompleted(ctx context.Context, sessionID string, allReliable bool) error {
	if !n.syncEvents {
		return nil
	}
	message := fmt.Sprintf("Sync complete for %s; all offsets reliable", sessionID)
	if !allReliable {
		message = fmt.Sprintf("Sync complete for %s; some cameras need review", sessionID)
	}
	return n.send(ctx, payload{
		title:   "Cutroom - Sync Complete",
		message: message,
		tags:    []string{"cutroom", "sync", "completed"},
	})
}

func (n *ntfyService) NotifySyncFailed(ctx context.Context, sessionID string, err error) error {
	if !n.syncEvents {
		return nil
	}
	detail := "unknown"
	if err != nil {
		detail = strings.TrimSpace(err.Error())
	}
	return n.send(ctx, payload{
		title:    "Cutroom - Sync Failed",
		message:  fmt.Sprintf("Sync failed for %s: %s", sessionID, detail),
		tags:     []string{"cutroom", "sync", "failed"},
		priority: "high",
	})
}

func (n *ntfyService) NotifyRenderCompleted(ctx context.Context, jobID, outputURL string) error {
	if !n.renderEvents {
		return nil
	}
	message := fmt.Sprintf("Render %s complete", jobID)
	if outputURL = strings.TrimSpace(outputURL); outputURL != "" {
		message = fmt.Sprintf("%s\nOutput: %s", message, outputURL)
	}
	return n.send(ctx, payload{
		title:   "Cutroom - Render Complete",
		message: message,
		tags:    []string{"cutroom", "render", "completed"},
	})
}

func (n *ntfyService) NotifyRenderFailed(ctx context.Context, jobID string, errMsg string) error {
	if !n.renderEvents {
		return nil
	}
	if errMsg = strings.TrimSpace(errMsg); errMsg == "" {
		errMsg = "unknown"
	}
	return n.send(ctx, payload{
		title:    "Cutroom - Render Failed",
		message:  fmt.Sprintf("Render %s failed: %s", jobID, errMsg),
		tags:     []string{"cutroom", "render", "failed"},
		priority: "high",
	})
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, label string) error {
	if !n.errorEvents {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if label = strings.TrimSpace(label); label != "" {
		builder.WriteString(" with ")
		builder.WriteString(label)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}
	return n.send(ctx, payload{
		title:    "Cutroom - Error",
		message:  builder.String(),
		tags:     []string{"cutroom", "error", "alert"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "Cutroom - Test",
		message:  "Notification system test",
		tags:     []string{"cutroom", "test"},
		priority: "low",
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifySyncCompleted(context.Context, string, bool) error     { return nil }
func (noopService) NotifySyncFailed(context.Context, string, error) error       { return nil }
func (noopService) NotifyRenderCompleted(context.Context, string, string) error { return nil }
func (noopService) NotifyRenderFailed(context.Context, string, string) error    { return nil }
func (noopService) NotifyError(context.Context, error, string) error            { return nil }
func (noopService) TestNotification(context.Context) error                      { return nil }
