package middleware

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	pkgAuth "github.com/polkiloo/erpcore/internal/pkg/auth"
	"github.com/polkiloo/erpcore/internal/telemetry"
	testhelpers "github.com/polkiloo/erpcore/internal/test"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serveWithToken(router *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestAuthRequired(t *testing.T) {
	tests := map[string]struct {
		parser testhelpers.TokenParserStub
		header string
		want   int
	}{
		"missing token":   {header: "", want: http.StatusUnauthorized},
		"not bearer":      {header: "Basic abc", want: http.StatusUnauthorized},
		"invalid token":   {parser: testhelpers.TokenParserStub{Err: pkgAuth.ErrInvalidToken}, header: "Bearer token", want: http.StatusUnauthorized},
		"parser failure":  {parser: testhelpers.TokenParserStub{Err: context.DeadlineExceeded}, header: "Bearer token", want: http.StatusInternalServerError},
		"valid lowercase": {parser: testhelpers.TokenParserStub{Principal: pkgAuth.Principal{TenantID: "acme", UserID: 1}}, header: "bearer token", want: http.StatusOK},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			router := gin.New()
			router.Use(AuthRequired(tt.parser))
			router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
			if resp := serveWithToken(router, tt.header); resp.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, resp.Code)
			}
		})
	}
}

func TestAuthRequiredStoresPrincipal(t *testing.T) {
	want := pkgAuth.Principal{TenantID: "acme", UserID: 42}
	var got pkgAuth.Principal
	var gotToken string

	router := gin.New()
	router.Use(AuthRequired(testhelpers.TokenParserStub{ParseFn: func(token string) (pkgAuth.Principal, error) {
		gotToken = token
		return want, nil
	}}))
	router.GET("/", func(c *gin.Context) {
		got, _ = Principal(c)
	})

	serveWithToken(router, "Bearer  signed-token ")
	if gotToken != "signed-token" {
		t.Fatalf("expected trimmed token, got %q", gotToken)
	}
	if got != want {
		t.Fatalf("expected principal %+v, got %+v", want, got)
	}
}

func TestPrincipalMissing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if _, ok := Principal(c); ok {
		t.Fatal("expected no principal")
	}
	c.Set(PrincipalContextKey, "not a principal")
	if _, ok := Principal(c); ok {
		t.Fatal("expected type mismatch to be rejected")
	}
}

func TestDecompressRequest(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, _ = gz.Write([]byte(`{"status":"CONFIRMED"}`))
	_ = gz.Close()

	router := gin.New()
	router.Use(DecompressRequest())
	router.POST("/", func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		c.String(http.StatusOK, string(body))
	})

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(buf.Bytes()))
	req.Header.Set("Content-Encoding", "gzip")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK || resp.Body.String() != `{"status":"CONFIRMED"}` {
		t.Fatalf("unexpected response %d %q", resp.Code, resp.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("plain")))
	req.Header.Set("Content-Encoding", "gzip")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed gzip, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("plain")))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Body.String() != "plain" {
		t.Fatalf("expected passthrough body, got %q", resp.Body.String())
	}
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	router := gin.New()
	router.Use(RequestLogger(zap.New(core)))
	router.GET("/ok", func(c *gin.Context) {
		c.Set(PrincipalContextKey, pkgAuth.Principal{TenantID: "acme", UserID: 7})
		c.Status(http.StatusOK)
	})
	router.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(requestIDHeader, "req-1")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Header().Get(requestIDHeader) != "req-1" {
		t.Fatalf("expected request id to be echoed, got %q", resp.Header().Get(requestIDHeader))
	}

	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/missing", nil))
	if resp.Header().Get(requestIDHeader) == "" {
		t.Fatal("expected generated request id")
	}
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	entries := logs.All()
	if len(entries) != 3 {
		t.Fatalf("expected 3 log entries, got %d", len(entries))
	}
	wantLevels := []zapcore.Level{zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}
	for i, e := range entries {
		if e.Level != wantLevels[i] {
			t.Fatalf("entry %d: expected level %s, got %s", i, wantLevels[i], e.Level)
		}
	}
	fields := entries[0].ContextMap()
	if fields["request_id"] != "req-1" || fields["tenant"] != "acme" || fields["actor"] != int64(7) {
		t.Fatalf("unexpected fields %v", fields)
	}
}

func TestMetricsMiddleware(t *testing.T) {
	m := telemetry.NewMetrics(prometheus.NewRegistry())
	router := gin.New()
	router.Use(Metrics(m))
	router.GET("/orders/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/orders/1", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/orders/2", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	if got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/orders/:id", "200")); got != 2 {
		t.Fatalf("expected 2 templated requests, got %v", got)
	}
	if got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "404")); got != 1 {
		t.Fatalf("expected 1 unmatched request, got %v", got)
	}
}
