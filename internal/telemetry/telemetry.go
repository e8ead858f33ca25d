// Package telemetry forwards server-side errors to an external collector
// (Sentry). Reporting is fire-and-forget and never affects the response.
package telemetry

import (
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"function-gateway/internal/apierror"
)

// Reporter receives errors that resulted in a 5xx response
type Reporter interface {
	Report(ctx context.Context, err error)
	Flush(timeout time.Duration) bool
}

// Options configures the Sentry reporter
type Options struct {
	DSN         string
	Environment string
	ServerName  string
	Release     string
	SampleRate  float64
	Debug       bool
	Tags        map[string]string

	// Transport overrides the HTTP transport, mainly for tests
	Transport sentry.Transport
}

// New returns a Sentry reporter, or a no-op reporter when no DSN is set
func New(opts Options) (Reporter, error) {
	if opts.DSN == "" {
		return NopReporter{}, nil
	}

	sampleRate := opts.SampleRate
	if sampleRate == 0 {
		sampleRate = 1.0
	}

	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:         opts.DSN,
		Environment: opts.Environment,
		ServerName:  opts.ServerName,
		Release:     opts.Release,
		SampleRate:  sampleRate,
		Debug:       opts.Debug,
		Transport:   opts.Transport,
		BeforeSend:  beforeSend,
	})
	if err != nil {
		return nil, err
	}

	scope := sentry.NewScope()
	for key, value := range opts.Tags {
		scope.SetTag(key, value)
	}

	hub := sentry.NewHub(client, scope)
	// Request hubs created by the gin middleware are cloned from CurrentHub.
	sentry.CurrentHub().BindClient(client)
	for key, value := range opts.Tags {
		sentry.CurrentHub().Scope().SetTag(key, value)
	}

	return &SentryReporter{hub: hub}, nil
}

// SentryReporter reports errors as Sentry exceptions
type SentryReporter struct {
	hub *sentry.Hub
}

// Report captures err on the request's hub when one is attached to ctx
func (r *SentryReporter) Report(ctx context.Context, err error) {
	if err == nil {
		return
	}

	hub := r.hubFor(ctx)
	hub.WithScope(func(scope *sentry.Scope) {
		var httpErr *apierror.HTTPError
		if errors.As(err, &httpErr) {
			env := httpErr.ToEnvelope()
			scope.SetTag("status", strconv.Itoa(env.Status))
			scope.SetTag("error_type", string(env.Type))
		}
		hub.CaptureException(err)
	})
}

func (r *SentryReporter) hubFor(ctx context.Context) *sentry.Hub {
	if c, ok := ctx.(*gin.Context); ok {
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			return hub
		}
		ctx = c.Request.Context()
	}
	if ctx != nil {
		if hub := sentry.GetHubFromContext(ctx); hub != nil {
			return hub
		}
	}
	return r.hub.Clone()
}

// Flush waits for queued events to be sent
func (r *SentryReporter) Flush(timeout time.Duration) bool {
	return r.hub.Flush(timeout)
}

// NopReporter drops every report
type NopReporter struct{}

func (NopReporter) Report(context.Context, error) {}

func (NopReporter) Flush(time.Duration) bool { return true }

// Middleware attaches a per-request Sentry hub to the gin context. Panics are
// recovered further down the chain, so this never captures them itself.
func Middleware() gin.HandlerFunc {
	return sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         2 * time.Second,
	})
}

func beforeSend(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
	if hint != nil && IsTransient(hint.OriginalException) {
		logrus.WithField("error", hint.OriginalException).Debug("Dropping transient network error report")
		return nil
	}
	return event
}

// IsTransient reports whether err is a network timeout or connection error.
// These are not reported, so a failing telemetry transport cannot feed its
// own errors back into reporting.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, net.ErrClosed) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr) && (dnsErr.IsTimeout || dnsErr.IsTemporary)
}
