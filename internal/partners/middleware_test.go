package partners

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"leadgate/platform/httpkit"
	"leadgate/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type lookupFunc func(ctx context.Context, hash string) (Partner, error)

func (f lookupFunc) GetActiveByKeyHash(ctx context.Context, hash string) (Partner, error) {
	return f(ctx, hash)
}

func newAuthEngine(lookup KeyLookup) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(AuthMiddleware(lookup, logger.Nop()))
	engine.POST("/leads", func(c *gin.Context) {
		p, ok := FromContext(c)
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.JSON(http.StatusOK, gin.H{"partnerId": p.ID})
	})
	return engine
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) httpkit.ErrorResponse {
	t.Helper()
	var body httpkit.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func TestAuthMiddlewareRejectsMissingCredential(t *testing.T) {
	calls := 0
	engine := newAuthEngine(lookupFunc(func(context.Context, string) (Partner, error) {
		calls++
		return Partner{}, nil
	}))

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/leads", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if body := decodeError(t, rec); body.Code != "unauthenticated" {
		t.Fatalf("expected unauthenticated code, got %q", body.Code)
	}
	if calls != 0 {
		t.Fatal("lookup should not run without a credential")
	}
}

func TestAuthMiddlewareRejectsUnknownCredential(t *testing.T) {
	engine := newAuthEngine(lookupFunc(func(context.Context, string) (Partner, error) {
		return Partner{}, ErrPartnerNotFound
	}))

	req := httptest.NewRequest(http.MethodPost, "/leads", nil)
	req.Header.Set(HeaderPartnerKey, "lgp_unknown")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if body := decodeError(t, rec); body.Code != "unauthenticated" {
		t.Fatalf("expected unauthenticated code, got %q", body.Code)
	}
}

func TestAuthMiddlewareLooksUpByDigest(t *testing.T) {
	plaintext, hash, _, err := GenerateCredential()
	if err != nil {
		t.Fatal(err)
	}
	partnerID := uuid.New()
	engine := newAuthEngine(lookupFunc(func(_ context.Context, got string) (Partner, error) {
		if got != hash {
			return Partner{}, ErrPartnerNotFound
		}
		return Partner{ID: partnerID, Status: StatusActive}, nil
	}))

	req := httptest.NewRequest(http.MethodPost, "/leads", nil)
	req.Header.Set(HeaderPartnerKey, plaintext)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuthMiddlewareStoreFailureIsOpaque(t *testing.T) {
	engine := newAuthEngine(lookupFunc(func(context.Context, string) (Partner, error) {
		return Partner{}, errors.New("pq: connection reset by peer")
	}))

	req := httptest.NewRequest(http.MethodPost, "/leads", nil)
	req.Header.Set(HeaderPartnerKey, "lgp_whatever")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	body := decodeError(t, rec)
	if body.Code != "internal_error" || body.Error != "internal error" {
		t.Fatalf("expected opaque internal error, got %+v", body)
	}
}
