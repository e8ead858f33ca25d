package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"function-gateway/internal/apierror"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeReporter struct {
	reported []error
}

func (r *fakeReporter) Report(ctx context.Context, err error) {
	r.reported = append(r.reported, err)
}

func (r *fakeReporter) Flush(time.Duration) bool { return true }

func newRouter(reporter *fakeReporter, extra ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), ErrorNormalizer(reporter), Recovery())
	router.Use(extra...)
	return router
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) apierror.Envelope {
	t.Helper()
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Expected JSON content type, got %q", ct)
	}
	var env apierror.Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("Invalid envelope %q: %v", w.Body.String(), err)
	}
	return env
}

func TestErrorNormalizer(t *testing.T) {
	tests := []struct {
		name       string
		handler    gin.HandlerFunc
		wantStatus int
		wantType   apierror.Type
		wantTitle  string
		wantDetail string
		reports    int
	}{
		{
			name:       "handler not found",
			handler:    func(c *gin.Context) { Abort(c, apierror.HandlerNotFound("missing")) },
			wantStatus: http.StatusNotFound,
			wantType:   apierror.TypeHandlerNotFound,
			wantTitle:  "Handler not found",
			wantDetail: "missing",
		},
		{
			name:       "validation",
			handler:    func(c *gin.Context) { Abort(c, apierror.Validation("Payload does not conform to schema", "bad", nil)) },
			wantStatus: http.StatusBadGateway,
			wantType:   apierror.TypeValidation,
			wantTitle:  "Payload does not conform to schema",
			wantDetail: "bad",
			reports:    1,
		},
		{
			name:       "plain error",
			handler:    func(c *gin.Context) { Abort(c, errors.New("boom")) },
			wantStatus: http.StatusInternalServerError,
			wantType:   apierror.TypeUnknown,
			wantTitle:  "Internal Server Error",
			wantDetail: apierror.DefaultDescription(http.StatusInternalServerError),
			reports:    1,
		},
		{
			name:       "structured description",
			handler:    func(c *gin.Context) { Abort(c, apierror.New(http.StatusTeapot, map[string]string{"k": "v"})) },
			wantStatus: http.StatusTeapot,
			wantType:   apierror.TypeUnknown,
			wantTitle:  "I'm a teapot",
			wantDetail: apierror.FallbackDetail,
		},
		{
			name:       "panic",
			handler:    func(c *gin.Context) { panic("kaboom") },
			wantStatus: http.StatusInternalServerError,
			wantType:   apierror.TypeUnknown,
			wantTitle:  "Internal Server Error",
			wantDetail: apierror.DefaultDescription(http.StatusInternalServerError),
			reports:    1,
		},
		{
			name:       "bare status",
			handler:    func(c *gin.Context) { c.Status(http.StatusForbidden) },
			wantStatus: http.StatusForbidden,
			wantType:   apierror.TypeUnknown,
			wantTitle:  "Forbidden",
			wantDetail: apierror.DefaultDescription(http.StatusForbidden),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reporter := &fakeReporter{}
			router := newRouter(reporter)
			router.GET("/", tt.handler)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			if w.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
			env := decodeEnvelope(t, w)
			want := apierror.Envelope{Type: tt.wantType, Title: tt.wantTitle, Status: tt.wantStatus, Detail: tt.wantDetail}
			if env != want {
				t.Errorf("Envelope = %+v, want %+v", env, want)
			}
			if len(reporter.reported) != tt.reports {
				t.Errorf("Expected %d reports, got %d", tt.reports, len(reporter.reported))
			}
		})
	}
}

func TestErrorNormalizerReshapesFrameworkNotFound(t *testing.T) {
	reporter := &fakeReporter{}
	router := newRouter(reporter)
	router.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

	env := decodeEnvelope(t, w)
	if w.Code != http.StatusNotFound || env.Type != apierror.TypeUnknown || env.Title != "Not Found" || env.Status != http.StatusNotFound {
		t.Errorf("Unexpected 404 response %d: %+v", w.Code, env)
	}
	if len(reporter.reported) != 0 {
		t.Errorf("404 must not be reported, got %d", len(reporter.reported))
	}
}

func TestErrorNormalizerLeavesSuccessAlone(t *testing.T) {
	router := newRouter(&fakeReporter{})
	router.GET("/", func(c *gin.Context) { c.String(http.StatusCreated, "made") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusCreated || w.Body.String() != "made" {
		t.Errorf("Unexpected response %d %q", w.Code, w.Body.String())
	}
}

func TestRequestID(t *testing.T) {
	router := newRouter(&fakeReporter{})
	router.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	router.ServeHTTP(w, req)
	if w.Body.String() != "abc-123" || w.Header().Get(RequestIDHeader) != "abc-123" {
		t.Errorf("Expected caller request ID to be kept, got %q", w.Body.String())
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Body.Len() == 0 || w.Header().Get(RequestIDHeader) != w.Body.String() {
		t.Errorf("Expected generated request ID, got %q", w.Body.String())
	}
}

func TestRateLimiter(t *testing.T) {
	router := newRouter(&fakeReporter{}, RateLimiter(0.001, 1))
	router.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("First request should pass, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if env := decodeEnvelope(t, w); env.Status != http.StatusTooManyRequests {
		t.Errorf("Expected 429 envelope, got %+v", env)
	}
}

func TestRequestSizeLimit(t *testing.T) {
	router := newRouter(&fakeReporter{}, RequestSizeLimit(4))
	router.POST("/", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("too long")))
	if env := decodeEnvelope(t, w); env.Status != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected 413 envelope, got %+v", env)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("ok")))
	if w.Code != http.StatusOK {
		t.Errorf("Small body should pass, got %d", w.Code)
	}
}

func TestAuthentication(t *testing.T) {
	service := NewAuthService(&AuthConfig{JWTSecret: "secret"})
	router := newRouter(&fakeReporter{}, Authentication(service))
	router.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(SubjectKey)) })

	token, err := service.GenerateToken("caller", "invoke")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	other, err := NewAuthService(&AuthConfig{JWTSecret: "other"}).GenerateToken("caller", "")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"malformed", "Token " + token, http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + other, http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
		{"lowercase scheme", "bearer " + token, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, w.Code)
			}
			if tt.want == http.StatusOK && w.Body.String() != "caller" {
				t.Errorf("Expected subject caller, got %q", w.Body.String())
			}
			if tt.want == http.StatusUnauthorized {
				if env := decodeEnvelope(t, w); env.Type != apierror.TypeUnknown {
					t.Errorf("Unexpected envelope %+v", env)
				}
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	router := newRouter(&fakeReporter{}, CORS())
	router.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/", nil))
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("Expected CORS headers")
	}
}
