package partners

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"leadgate/platform/apperr"
	"leadgate/platform/httpkit"
	"leadgate/platform/logger"

	"github.com/gin-gonic/gin"
)

const (
	// HeaderPartnerKey carries the partner credential. It is never accepted from the body or URL.
	HeaderPartnerKey = "X-Partner-Key"

	contextPartnerKey  = "partner"
	msgUnauthenticated = "invalid or inactive partner credential"
)

// KeyLookup finds an ACTIVE partner by credential digest.
type KeyLookup interface {
	GetActiveByKeyHash(ctx context.Context, keyHash string) (Partner, error)
}

// AuthMiddleware authenticates partner requests. Unknown, suspended and
// pending credentials are rejected identically and are not audited, so a
// caller cannot learn whether a partner exists.
func AuthMiddleware(lookup KeyLookup, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		presented := strings.TrimSpace(c.GetHeader(HeaderPartnerKey))
		if presented == "" {
			log.AuthEvent("partner_auth", "", false, "missing credential")
			abortUnauthenticated(c)
			return
		}

		partner, err := lookup.GetActiveByKeyHash(c.Request.Context(), HashKey(presented))
		if err != nil {
			if !errors.Is(err, ErrPartnerNotFound) {
				log.DatabaseError("partner_auth_lookup", err)
				httpkit.HandleError(c, err)
				c.Abort()
				return
			}
			log.AuthEvent("partner_auth", DisplayPrefix(presented), false, "unknown or inactive credential")
			abortUnauthenticated(c)
			return
		}

		ctx := context.WithValue(c.Request.Context(), logger.PartnerIDKey, partner.ID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Set(contextPartnerKey, partner)
		c.Next()
	}
}

// FromContext returns the authenticated partner set by AuthMiddleware.
func FromContext(c *gin.Context) (Partner, bool) {
	value, ok := c.Get(contextPartnerKey)
	if !ok {
		return Partner{}, false
	}
	partner, ok := value.(Partner)
	return partner, ok
}

func abortUnauthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, httpkit.ErrorResponse{
		Error: msgUnauthenticated,
		Code:  apperr.CodeUnauthenticated,
	})
}
