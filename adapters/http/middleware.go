package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/khoahotran/career-onboard/internal/domain/user"
	"github.com/khoahotran/career-onboard/pkg/apperror"
	"github.com/khoahotran/career-onboard/pkg/auth"
	"github.com/khoahotran/career-onboard/pkg/logger"
)

const (
	GinContextKeyIdentity = "identity"
)

func AuthMiddleware(jwtSvc *auth.JWTService, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
			return
		}

		claims, err := jwtSvc.ValidateToken(tokenString)
		if err != nil {
			log.Warn("Rejected token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(GinContextKeyIdentity, &user.Identity{
			ExternalID: claims.Subject,
			FirstName:  claims.GivenName,
			LastName:   claims.FamilyName,
			Email:      claims.Email,
			ImageURL:   claims.Picture,
		})

		c.Next()
	}
}

func GetIdentityFromGinContext(c *gin.Context) (*user.Identity, bool) {
	v, ok := c.Get(GinContextKeyIdentity)
	if !ok {
		return nil, false
	}
	identity, ok := v.(*user.Identity)
	if !ok || identity == nil {
		return nil, false
	}
	return identity, true
}

// ErrorMiddleware renders the last error attached with c.Error.
func ErrorMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		status := apperror.ToHTTPStatus(err)
		if status >= http.StatusInternalServerError {
			log.Error("Request failed", err, zap.String("path", c.FullPath()))
		} else {
			log.Warn("Request rejected", zap.String("path", c.FullPath()), zap.Error(err))
		}

		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			c.AbortWithStatusJSON(status, appErr.ToJSON())
			return
		}
		c.AbortWithStatusJSON(status, gin.H{"error": apperror.ErrInternal.Error(), "message": "An internal server error occurred"})
	}
}
