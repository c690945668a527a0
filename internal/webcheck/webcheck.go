// Package webcheck probes web targets: TLS certificate validity, HTTP
// reachability and expected response content.
package webcheck

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"github.com/Guliveer/overwatch-agents/internal/config"
	"github.com/Guliveer/overwatch-agents/internal/report"
	"github.com/Guliveer/overwatch-agents/internal/threshold"
)

const (
	// DefaultUserAgent is sent with every probe request.
	DefaultUserAgent = "Overwatch Web Agent"
	// DefaultTLSTimeout bounds the certificate check of one target.
	DefaultTLSTimeout = 5 * time.Second

	certTimeLayout = "Jan _2 15:04:05 2006 GMT"
	maxBodySize    = 32 << 20
)

// Options configures a Checker. TLSConfig is the base configuration of the
// certificate check; its ServerName is overridden per target.
type Options struct {
	Client     *http.Client
	Logger     *zap.Logger
	UserAgent  string
	Timeout    time.Duration
	TLSTimeout time.Duration
	TLSConfig  *tls.Config
	Now        func() time.Time
}

// Checker runs the probes of web targets. It owns the HTTP client reused
// across targets and iterations.
type Checker struct {
	client     *http.Client
	logger     *zap.Logger
	userAgent  string
	timeout    time.Duration
	tlsTimeout time.Duration
	tlsConfig  *tls.Config
	now        func() time.Time
}

// New creates a checker, filling unset options with defaults.
func New(opts Options) *Checker {
	c := &Checker{
		client:     opts.Client,
		logger:     opts.Logger,
		userAgent:  opts.UserAgent,
		timeout:    opts.Timeout,
		tlsTimeout: opts.TLSTimeout,
		tlsConfig:  opts.TLSConfig,
		now:        opts.Now,
	}
	if c.client == nil {
		c.client = &http.Client{}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	if c.timeout <= 0 {
		c.timeout = config.DefaultWebTimeout
	}
	if c.tlsTimeout <= 0 {
		c.tlsTimeout = DefaultTLSTimeout
	}
	if c.tlsConfig == nil {
		c.tlsConfig = &tls.Config{}
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// CheckTarget probes one target and returns its state. Each stage is
// isolated: a failed certificate check does not prevent the HTTP request.
func (c *Checker) CheckTarget(ctx context.Context, t config.Target) *report.Map {
	state := report.NewMap()
	if t.Name != "" {
		state.Set("name", report.String(t.Name))
	} else {
		state.Set("name", report.Null())
	}
	state.Set("url", report.String(t.URL))

	if u, err := url.Parse(t.URL); err == nil && u.Scheme == "https" {
		state.Set("ssl_certificate", c.checkCertificate(ctx, u))
	}

	start := time.Now()
	resp, body, err := c.fetch(ctx, t.URL)
	state.Set("duration", report.Float(time.Since(start).Seconds()))
	if err != nil {
		c.logger.Info("Exception while processing url",
			zap.String("url", t.URL),
			zap.Error(err))
		state.Set("error", report.Encode(report.String(err.Error()), report.Checked(report.Red)))
		return state
	}

	state.Set("error", report.Encode(report.Null(), report.Checked(report.Green)))
	state.Set("final_url", report.String(resp.Request.URL.String()))
	state.Set("response", report.NewMap().
		Set("status_code", report.Encode(report.Int(int64(resp.StatusCode)),
			report.Checked(threshold.HTTPStatus(resp.StatusCode)))).
		Set("content_length", report.Int(int64(len(body)))))

	if t.ResponseContains != "" {
		present := strings.Contains(decodeBody(body, resp.Header.Get("Content-Type")), t.ResponseContains)
		state.Set("response_contains", report.NewMap().
			Set("text", report.String(t.ResponseContains)).
			Set("present", report.Encode(report.Bool(present),
				report.Checked(threshold.Contains(present)))))
	}
	return state
}

func (c *Checker) fetch(ctx context.Context, target string) (*http.Response, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, nil, fmt.Errorf("reading response: %w", err)
	}
	return resp, body, nil
}

// checkCertificate connects to the target with a verified TLS handshake and
// describes the leaf certificate. The connection is closed right away.
func (c *Checker) checkCertificate(ctx context.Context, u *url.URL) *report.Map {
	hostname := u.Hostname()
	port := 443
	if p := u.Port(); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			port = n
		}
	}
	state := report.NewMap().
		Set("hostname", report.String(hostname)).
		Set("port", report.Int(int64(port)))

	c.logger.Info("Checking SSL cert", zap.String("hostname", hostname), zap.Int("port", port))
	start := time.Now()

	cert, peerIP, err := c.dialTLS(ctx, hostname, port)
	if err != nil {
		c.logger.Info("SSL check failed",
			zap.String("hostname", hostname),
			zap.Int("port", port),
			zap.Error(err))
		state.Set("error", report.Encode(report.String(err.Error()), report.Checked(report.Red)))
		return state
	}

	remaining := cert.NotAfter.Sub(c.now()).Hours() / 24
	state.Set("ip", report.String(peerIP)).
		Set("notBefore", report.String(cert.NotBefore.UTC().Format(certTimeLayout))).
		Set("notAfter", report.String(cert.NotAfter.UTC().Format(certTimeLayout))).
		Set("serialNumber", report.String(fmt.Sprintf("%X", cert.SerialNumber))).
		Set("remaining_days", report.Encode(report.Float(remaining),
			report.Checked(threshold.CertRemaining(remaining))))

	c.logger.Info("SSL check finished",
		zap.String("hostname", hostname),
		zap.Duration("took", time.Since(start)))
	return state
}

func (c *Checker) dialTLS(ctx context.Context, hostname string, port int) (*x509.Certificate, string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.tlsTimeout)
	defer cancel()

	cfg := c.tlsConfig.Clone()
	cfg.ServerName = hostname
	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: c.tlsTimeout},
		Config:    cfg,
	}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(hostname, strconv.Itoa(port)))
	if err != nil {
		return nil, "", err
	}
	defer conn.Close()

	tlsConn := conn.(*tls.Conn)
	certs := tlsConn.ConnectionState().PeerCertificates
	if len(certs) == 0 {
		return nil, "", fmt.Errorf("no peer certificate")
	}
	leaf := certs[0]

	peerIP := conn.RemoteAddr().String()
	if addr, ok := conn.RemoteAddr().(*net.TCPAddr); ok {
		peerIP = addr.IP.String()
	}
	c.logger.Debug("Connected",
		zap.String("hostname", hostname),
		zap.String("ip", peerIP),
		zap.String("subject", leaf.Subject.String()))

	return leaf, peerIP, nil
}

// decodeBody converts body to UTF-8 according to the declared or sniffed charset.
func decodeBody(body []byte, contentType string) string {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return string(body)
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return string(body)
	}
	return string(decoded)
}
