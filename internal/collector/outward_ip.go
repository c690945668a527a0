// Outward IP collector: asks an echo endpoint which address the host is seen from.
package collector

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Guliveer/overwatch-agents/internal/report"
)

const (
	outwardIPTimeout = 10 * time.Second
	// Echo endpoints answer with a bare address; anything longer is not one.
	outwardIPMaxBody = 1024
)

// OutwardIPCollector fetches the public address over one IP family.
type OutwardIPCollector struct {
	name      string
	url       string
	client    *http.Client
	logger    *zap.Logger
	failLevel zapcore.Level
}

// NewOutwardIP4Collector creates a collector reporting outward_ip4 over tcp4.
// Failures are logged as warnings.
func NewOutwardIP4Collector(url string, logger *zap.Logger) *OutwardIPCollector {
	return newOutwardIPCollector("outward_ip4", "tcp4", url, zapcore.WarnLevel, logger)
}

// NewOutwardIP6Collector creates a collector reporting outward_ip6 over tcp6.
// Many hosts have no IPv6 route, so failures are logged at info level.
func NewOutwardIP6Collector(url string, logger *zap.Logger) *OutwardIPCollector {
	return newOutwardIPCollector("outward_ip6", "tcp6", url, zapcore.InfoLevel, logger)
}

func newOutwardIPCollector(name, network, url string, level zapcore.Level, logger *zap.Logger) *OutwardIPCollector {
	if logger == nil {
		logger = zap.NewNop()
	}
	dialer := &net.Dialer{Timeout: outwardIPTimeout}
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: func(ctx context.Context, _, addr string) (net.Conn, error) {
			return dialer.DialContext(ctx, network, addr)
		},
		TLSHandshakeTimeout: outwardIPTimeout,
	}
	return &OutwardIPCollector{
		name:      name,
		url:       url,
		client:    &http.Client{Timeout: outwardIPTimeout, Transport: transport},
		logger:    logger,
		failLevel: level,
	}
}

// Name returns the collector identifier.
func (c *OutwardIPCollector) Name() string { return c.name }

// Collect returns the trimmed response body. Failures are logged and
// reported as null.
func (c *OutwardIPCollector) Collect(ctx context.Context) (report.Node, error) {
	ip, err := c.fetch(ctx)
	if err != nil {
		c.logger.Log(c.failLevel, "Failed to get outward IP",
			zap.String("key", c.name),
			zap.String("url", c.url),
			zap.Error(err))
		return report.Null(), nil
	}
	return report.String(ip), nil
}

func (c *OutwardIPCollector) fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, outwardIPMaxBody))
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	return strings.TrimSpace(string(body)), nil
}

// IsAvailable returns false when no echo endpoint is configured.
func (c *OutwardIPCollector) IsAvailable() bool { return c.url != "" }
