package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/ai-studio/internal/auth"
	"github.com/suPer8Hu/ai-studio/internal/common"
	"github.com/suPer8Hu/ai-studio/internal/creation"
)

const (
	UserIDKey = "user_id"
	PlanKey   = "user_plan"
)

// AuthRequired resolves the caller from the bearer token. Business responses are always
// HTTP 200, so a rejected credential aborts with a failure envelope rather than a 401.
func AuthRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(h, "Bearer ")
		token = strings.TrimSpace(token)
		if !found || token == "" {
			common.AbortFail(c, http.StatusOK, creation.MsgUnauthenticated)
			return
		}

		claims, err := auth.ParseJWT(token, secret)
		if err != nil {
			common.AbortFail(c, http.StatusOK, creation.MsgUnauthenticated)
			return
		}

		c.Set(UserIDKey, claims.Subject)
		c.Set(PlanKey, claims.Plan)
		c.Next()
	}
}
