package lambda

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gin-gonic/gin"

	"function-gateway/function"
	"function-gateway/internal/apierror"
	"function-gateway/internal/config"
	"function-gateway/pkg/server"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() (*config.Config, error) {
	return &config.Config{
		Environment:  "test",
		Port:         "5000",
		Hostname:     "lambda-host",
		FunctionName: "fn",
		LogLevel:     "error",
		Server:       config.ServerConfig{ShutdownTimeout: time.Second},
		Function:     config.FunctionConfig{BodyParseMode: "lenient", CatchAll: true},
		Schema:       config.SchemaConfig{Source: "embedded", Draft: 7},
		Limits:       config.LimitsConfig{RateLimitBurst: 10},
		JWT:          config.JWTConfig{Issuer: "function-gateway", ExpiryHours: 1},
	}, nil
}

type recordingReporter struct {
	mu      sync.Mutex
	reports []error
	flushes int
}

func (r *recordingReporter) Report(ctx context.Context, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, err)
}

func (r *recordingReporter) Flush(time.Duration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flushes++
	return true
}

func (r *recordingReporter) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reports), r.flushes
}

func testFunction() server.Function {
	return server.Function{
		Handle:   function.Handle,
		Register: function.Register,
		Routes:   function.Routes(),
		Schemas:  function.Schemas(),
	}
}

func TestProxy(t *testing.T) {
	proxy := NewProxy(testConfig, testFunction())
	defer proxy.Close()

	tests := []struct {
		name       string
		req        events.APIGatewayProxyRequest
		wantStatus int
		wantBody   string
	}{
		{
			name:       "main handler",
			req:        events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet, Path: "/"},
			wantStatus: http.StatusOK,
			wantBody:   "Hello from OpenFaaS!",
		},
		{
			name:       "additional route",
			req:        events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet, Path: "/additional_route"},
			wantStatus: http.StatusOK,
			wantBody:   "Hello from additional_route",
		},
		{
			name: "named handler",
			req: events.APIGatewayProxyRequest{
				HTTPMethod:            http.MethodPost,
				Path:                  "/",
				QueryStringParameters: map[string]string{"h": "echo"},
				Headers:               map[string]string{"Content-Type": "application/json"},
				Body:                  `{"message": "hey", "repeat": 2}`,
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"echo":"hey hey","hostname":"lambda-host"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := proxy.Handle(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("Handle failed: %v", err)
			}
			if resp.StatusCode != tt.wantStatus || resp.Body != tt.wantBody {
				t.Errorf("Got %d %q, want %d %q", resp.StatusCode, resp.Body, tt.wantStatus, tt.wantBody)
			}
		})
	}

	t.Run("not found envelope", func(t *testing.T) {
		resp, err := proxy.Handle(context.Background(), events.APIGatewayProxyRequest{
			HTTPMethod:            http.MethodGet,
			Path:                  "/",
			QueryStringParameters: map[string]string{"h": "nope"},
		})
		if err != nil {
			t.Fatalf("Handle failed: %v", err)
		}
		var env apierror.Envelope
		if err := json.Unmarshal([]byte(resp.Body), &env); err != nil {
			t.Fatalf("Invalid envelope %q: %v", resp.Body, err)
		}
		if resp.StatusCode != http.StatusNotFound || env.Type != apierror.TypeHandlerNotFound || env.Detail != "nope" {
			t.Errorf("Unexpected response %d: %+v", resp.StatusCode, env)
		}
	})
}

func TestProxyFlushesEveryInvocation(t *testing.T) {
	reporter := &recordingReporter{}
	proxy := NewProxy(testConfig, testFunction(), server.WithReporter(reporter))
	defer proxy.Close()

	tests := []struct {
		name        string
		req         events.APIGatewayProxyRequest
		wantStatus  int
		wantReports int
	}{
		{
			name:       "success",
			req:        events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet, Path: "/"},
			wantStatus: http.StatusOK,
		},
		{
			name: "undecodable event",
			req: events.APIGatewayProxyRequest{
				HTTPMethod:      http.MethodPost,
				Path:            "/",
				Body:            "%%% not base64 %%%",
				IsBase64Encoded: true,
			},
			wantStatus:  http.StatusInternalServerError,
			wantReports: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reportsBefore, flushesBefore := reporter.counts()

			resp, err := proxy.Handle(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("Handle must not return an error, got %v", err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("Expected %d, got %d: %s", tt.wantStatus, resp.StatusCode, resp.Body)
			}

			reports, flushes := reporter.counts()
			if reports-reportsBefore != tt.wantReports {
				t.Errorf("Expected %d reports, got %d", tt.wantReports, reports-reportsBefore)
			}
			if flushes-flushesBefore != 1 {
				t.Errorf("Expected one flush per invocation, got %d", flushes-flushesBefore)
			}
		})
	}
}

func TestProxyInitFailure(t *testing.T) {
	calls := 0
	proxy := NewProxy(func() (*config.Config, error) {
		calls++
		return nil, errors.New("bad config")
	}, testFunction())

	for i := 0; i < 2; i++ {
		resp, err := proxy.Handle(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet, Path: "/"})
		if err != nil {
			t.Fatalf("Handle must not return an error, got %v", err)
		}
		if resp.StatusCode != http.StatusInternalServerError {
			t.Errorf("Expected 500, got %d", resp.StatusCode)
		}
	}
	if calls != 1 {
		t.Errorf("Expected config to be loaded once, got %d", calls)
	}
	if err := proxy.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}
