package transport

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Options configures the round tripper built by NewRoundTripper.
type Options struct {
	// Base is the underlying transport. Defaults to a clone of http.DefaultTransport.
	Base http.RoundTripper
	// Logger receives one debug record per round trip.
	Logger *slog.Logger
	// BlockPrivateIPs rejects connections to private or loopback addresses.
	BlockPrivateIPs bool
}

// NewRoundTripper composes logging and OpenTelemetry instrumentation around
// the base transport.
func NewRoundTripper(opts Options) http.RoundTripper {
	base := opts.Base
	if base == nil {
		base = newBaseTransport(opts.BlockPrivateIPs)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return otelhttp.NewTransport(&loggingRoundTripper{next: base, logger: logger})
}

func newBaseTransport(blockPrivate bool) *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	if blockPrivate {
		t.DialContext = dialPublicOnly
	}
	return t
}

// dialPublicOnly rejects connections to private or loopback IP ranges to reduce SSRF risk.
func dialPublicOnly(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: 5 * time.Second}
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	host, _, _ := net.SplitHostPort(conn.RemoteAddr().String())
	ip := net.ParseIP(host)
	if ip == nil {
		conn.Close()
		return nil, fmt.Errorf("failed to parse remote IP for %q", addr)
	}

	if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() {
		conn.Close()
		return nil, fmt.Errorf("access to private IP %s is denied", ip)
	}

	return conn, nil
}

// loggingRoundTripper logs each outgoing request with structured logging.
type loggingRoundTripper struct {
	next   http.RoundTripper
	logger *slog.Logger
}

func (rt *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	resp, err := rt.next.RoundTrip(req)

	attrs := []slog.Attr{
		slog.String("request_id", req.Header.Get("X-Request-ID")),
		slog.String("method", req.Method),
		slog.String("url", req.URL.String()),
		slog.Duration("duration", time.Since(start)),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		rt.logger.LogAttrs(req.Context(), slog.LevelWarn, "round trip failed", attrs...)
		return nil, err
	}

	attrs = append(attrs,
		slog.Int("status", resp.StatusCode),
		slog.String("content_type", resp.Header.Get(HeaderContentType)),
	)
	rt.logger.LogAttrs(req.Context(), slog.LevelDebug, "round trip completed", attrs...)
	return resp, nil
}
