// Package sender posts reports to the Overwatch hub.
// A report is sent once; failures are logged together with the payload so
// the data can be recovered from the logs, and the caller carries on. The next
// iteration and the watchdog deadline take care of liveness.
package sender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Guliveer/overwatch-agents/internal/logging"
	"github.com/Guliveer/overwatch-agents/internal/report"
)

const (
	// DefaultTimeout is the HTTP request timeout for a report POST.
	DefaultTimeout = 10 * time.Second

	// responsePreview is how much of the hub response body is logged.
	responsePreview = 100
)

// Config configures a Sender.
type Config struct {
	URL     string
	Token   string
	Timeout time.Duration
	Client  *http.Client // optional
	Logger  *zap.Logger  // optional
}

// Sender handles report transmission to the hub.
type Sender struct {
	client  *http.Client
	url     string
	token   string
	timeout time.Duration
	logger  *zap.Logger
}

// New creates a Sender. The HTTP client is reused across reports.
func New(cfg Config) *Sender {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Sender{
		client:  cfg.Client,
		url:     cfg.URL,
		token:   cfg.Token,
		timeout: cfg.Timeout,
		logger:  cfg.Logger,
	}
}

// Send posts r to the hub. On failure it logs the error, the redacted token
// and the report payload, and returns the error for bookkeeping only.
func (s *Sender) Send(ctx context.Context, r *report.Report) error {
	data, err := json.Marshal(r)
	if err != nil {
		s.logger.Error("Failed to marshal report", zap.Error(err))
		return fmt.Errorf("marshal report: %w", err)
	}

	if err := s.doSend(ctx, data); err != nil {
		s.logger.Error("Failed to post report",
			zap.String("url", s.url),
			zap.Error(err))
		s.logger.Info("Report token", zap.String("token", logging.RedactToken(s.token)))
		s.logger.Info("Report data", zap.ByteString("report", data))
		return err
	}
	return nil
}

// doSend performs a single HTTP POST to the report URL.
func (s *Sender) doSend(ctx context.Context, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "token "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	head, _ := io.ReadAll(io.LimitReader(resp.Body, responsePreview))
	io.Copy(io.Discard, resp.Body)
	s.logger.Debug("Report response",
		zap.Int("status", resp.StatusCode),
		zap.ByteString("body", head))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return &statusError{statusCode: resp.StatusCode}
}

// statusError indicates the hub answered with a non-2xx status.
type statusError struct {
	statusCode int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("hub returned %d", e.statusCode)
}
