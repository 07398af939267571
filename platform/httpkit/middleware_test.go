package httpkit

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"leadgate/platform/apperr"
	"leadgate/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const testSecret = "test-secret"

type jwtConfig string

func (j jwtConfig) GetJWTAccessSecret() string { return string(j) }

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func adminEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", AuthRequired(jwtConfig(testSecret)), RequireRole("admin"), func(c *gin.Context) {
		id := GetIdentity(c)
		c.JSON(http.StatusOK, gin.H{"user": id.UserID().String()})
	})
	return r
}

func TestAuthRequired(t *testing.T) {
	userID := uuid.New()
	valid := jwt.MapClaims{
		"sub":   userID.String(),
		"type":  "access",
		"roles": []string{"admin"},
		"exp":   time.Now().Add(time.Hour).Unix(),
	}

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signToken(t, valid, "other"), http.StatusUnauthorized},
		{"refresh token", "Bearer " + signToken(t, jwt.MapClaims{"sub": userID.String(), "type": "refresh", "roles": []string{"admin"}}, testSecret), http.StatusUnauthorized},
		{"expired", "Bearer " + signToken(t, jwt.MapClaims{"sub": userID.String(), "type": "access", "roles": []string{"admin"}, "exp": time.Now().Add(-time.Minute).Unix()}, testSecret), http.StatusUnauthorized},
		{"missing role", "Bearer " + signToken(t, jwt.MapClaims{"sub": userID.String(), "type": "access", "roles": []string{"viewer"}}, testSecret), http.StatusForbidden},
		{"admin", "Bearer " + signToken(t, valid, testSecret), http.StatusOK},
	}

	r := adminEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, w.Code, w.Body.String())
			}
			if tt.status == http.StatusOK && !strings.Contains(w.Body.String(), userID.String()) {
				t.Fatalf("identity not propagated: %s", w.Body.String())
			}
		})
	}
}

func TestHandleErrorHidesInternals(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/typed", func(c *gin.Context) {
		HandleError(c, apperr.Conflict("duplicate").WithCode(apperr.CodeDuplicateSubmission))
	})
	r.GET("/untyped", func(c *gin.Context) {
		HandleError(c, errors.New("pq: relation leads does not exist"))
	})
	r.GET("/internal", func(c *gin.Context) {
		HandleError(c, apperr.Wrap(apperr.KindInternal, "insert failed on host db-1", errors.New("boom")))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/typed", nil))
	if w.Code != http.StatusConflict || !strings.Contains(w.Body.String(), apperr.CodeDuplicateSubmission) {
		t.Fatalf("unexpected typed response %d %s", w.Code, w.Body.String())
	}

	for _, path := range []string{"/untyped", "/internal"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("%s: expected 500, got %d", path, w.Code)
		}
		body := w.Body.String()
		if strings.Contains(body, "relation") || strings.Contains(body, "db-1") {
			t.Fatalf("%s: internal detail leaked: %s", path, body)
		}
		if !strings.Contains(body, apperr.CodeInternal) {
			t.Fatalf("%s: expected internal_error code: %s", path, body)
		}
	}
}

func TestIPRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewIPRateLimiter(1, 2, nil)
	r := gin.New()
	r.GET("/", limiter.RateLimit(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "198.51.100.9:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusNoContent || codes[1] != http.StatusNoContent || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status sequence %v", codes)
	}
}

func TestRequestLoggerRecordsServerErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	r := gin.New()
	r.Use(RequestLogger(logger.NewWithWriter("production", &buf)))
	r.GET("/boom", func(c *gin.Context) {
		HandleError(c, errors.New("pool exhausted"))
	})
	r.GET("/missing", func(c *gin.Context) {
		HandleError(c, apperr.NotFound("lead not found"))
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))
	if strings.Contains(buf.String(), "http_error") {
		t.Fatalf("client errors must not be logged as http_error: %s", buf.String())
	}

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))
	out := buf.String()
	if !strings.Contains(out, "http_error") || !strings.Contains(out, "pool exhausted") {
		t.Fatalf("expected http_error with cause, got %s", out)
	}
}
