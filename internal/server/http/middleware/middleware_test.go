package middleware

import (
	"bytes"
	"compress/gzip"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/stitchfab/stitchfab/internal/domain/errors"
	"github.com/stitchfab/stitchfab/internal/domain/model"
	pkgAuth "github.com/stitchfab/stitchfab/internal/pkg/auth"
	testhelpers "github.com/stitchfab/stitchfab/internal/test"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serveWithAuth(parser TokenParser, req *http.Request) (*httptest.ResponseRecorder, *int64) {
	router := gin.New()
	var captured *int64
	router.GET("/protected", AuthRequired(parser), func(c *gin.Context) {
		val, _ := c.Get(UserIDContextKey)
		if id, ok := val.(int64); ok {
			captured = &id
		}
		c.Status(http.StatusOK)
	})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w, captured
}

func TestAuthRequiredRejectsMissingToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w, _ := serveWithAuth(testhelpers.TokenParserStub{ID: 1}, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAuthRequiredRejectsInvalidToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer bad")
	w, _ := serveWithAuth(testhelpers.TokenParserStub{Err: pkgAuth.ErrInvalidToken}, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAuthRequiredAcceptsBearerHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer good")
	w, captured := serveWithAuth(testhelpers.TokenParserStub{ID: 42}, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if captured == nil || *captured != 42 {
		t.Fatalf("expected user 42 in context, got %v", captured)
	}
}

func TestAuthRequiredAcceptsCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: authCookieName, Value: "cookie-token"})
	w, captured := serveWithAuth(testhelpers.TokenParserStub{ID: 7}, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if captured == nil || *captured != 7 {
		t.Fatalf("expected user 7 in context, got %v", captured)
	}
}

type userProviderStub struct {
	user *model.User
	err  error
}

func (s userProviderStub) User(ctx context.Context, id int64) (*model.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

func serveWithAdmin(users UserProvider, userID any) *httptest.ResponseRecorder {
	router := gin.New()
	router.GET("/admin", func(c *gin.Context) {
		if userID != nil {
			c.Set(UserIDContextKey, userID)
		}
	}, AdminRequired(users), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
	return w
}

func TestAdminRequiredRejectsUnauthenticated(t *testing.T) {
	w := serveWithAdmin(userProviderStub{}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAdminRequiredRejectsUnknownUser(t *testing.T) {
	w := serveWithAdmin(userProviderStub{err: domainErrors.ErrNotFound}, int64(5))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAdminRequiredRejectsCustomer(t *testing.T) {
	w := serveWithAdmin(userProviderStub{user: &model.User{ID: 5, Role: model.RoleCustomer}}, int64(5))
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestAdminRequiredAllowsAdmin(t *testing.T) {
	w := serveWithAdmin(userProviderStub{user: &model.User{ID: 5, Role: model.RoleAdmin}}, int64(5))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestDecompressRequest(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte("payload")); err != nil {
		t.Fatalf("gzip write failed: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close failed: %v", err)
	}

	router := gin.New()
	router.Use(DecompressRequest())
	var received string
	router.POST("/echo", func(c *gin.Context) {
		body, _ := c.GetRawData()
		received = string(body)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/echo", &buf)
	req.Header.Set("Content-Encoding", "gzip")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if received != "payload" {
		t.Fatalf("expected decompressed body, got %q", received)
	}
}

func TestRequestLoggerWritesEntry(t *testing.T) {
	var out bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&out, nil))

	router := gin.New()
	router.Use(RequestLogger(logger))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if !strings.Contains(out.String(), "/ping") {
		t.Fatalf("expected log entry for /ping, got %q", out.String())
	}
}
