package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Disabled never delivers anything.
type Disabled struct{}

func (Disabled) Supported() bool        { return false }
func (Disabled) Permission() Permission { return PermissionDenied }
func (Disabled) RequestPermission(context.Context) (Permission, error) {
	return PermissionDenied, nil
}
func (Disabled) Show(context.Context, Notification) error { return nil }

// Log writes notifications to a logger. Useful for the CLI and for
// deployments without a push channel.
type Log struct {
	log zerolog.Logger
}

func NewLog(log zerolog.Logger) *Log {
	return &Log{log: log}
}

func (l *Log) Supported() bool        { return true }
func (l *Log) Permission() Permission { return PermissionGranted }
func (l *Log) RequestPermission(context.Context) (Permission, error) {
	return PermissionGranted, nil
}

func (l *Log) Show(_ context.Context, n Notification) error {
	l.log.Warn().Str("tag", n.Tag).Str("title", n.Title).Msg(n.Body)
	return nil
}

// Webhook POSTs notifications as JSON to a fixed URL.
type Webhook struct {
	url    string
	client *http.Client
}

// NewWebhook creates a Webhook whose requests are traced.
func NewWebhook(url string) *Webhook {
	return &Webhook{
		url: url,
		client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (w *Webhook) Supported() bool { return w.url != "" }

func (w *Webhook) Permission() Permission {
	if w.url == "" {
		return PermissionDenied
	}
	return PermissionGranted
}

func (w *Webhook) RequestPermission(context.Context) (Permission, error) {
	return w.Permission(), nil
}

func (w *Webhook) Show(ctx context.Context, n Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook responded %d", resp.StatusCode)
	}
	return nil
}
