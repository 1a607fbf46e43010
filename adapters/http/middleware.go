package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hurmain7/devconnect/internal/application/service"
	"github.com/hurmain7/devconnect/pkg/apperror"
	"github.com/hurmain7/devconnect/pkg/auth"
	"github.com/hurmain7/devconnect/pkg/logger"
)

const (
	GinContextKeyUserID = "userID"

	// header used by older web clients
	headerAuthToken = "x-auth-token"
)

func AuthMiddleware(jwtSvc *auth.JWTService, revoker service.SessionRevoker, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := tokenFromRequest(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "No token, authorization denied"})
			return
		}

		claims, err := jwtSvc.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "Token is not valid"})
			return
		}

		revoked, err := revoker.IsRevoked(c.Request.Context(), claims.UserID)
		if err != nil {
			log.Warn("Session revocation check failed, letting request through",
				zap.String("user_id", claims.UserID.String()), zap.Error(err))
		}
		if revoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "Token is not valid"})
			return
		}

		c.Set(GinContextKeyUserID, claims.UserID)
		c.Next()
	}
}

// tokenFromRequest prefers a Bearer Authorization header. Any other
// Authorization scheme is ignored in favour of x-auth-token.
func tokenFromRequest(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if tokenString, found := strings.CutPrefix(authHeader, "Bearer "); found && tokenString != "" {
		return tokenString, true
	}
	if tokenString := c.GetHeader(headerAuthToken); tokenString != "" {
		return tokenString, true
	}
	return "", false
}

func GetUserIDFromGinContext(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := c.Get(GinContextKeyUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := userID.(uuid.UUID)
	if !ok {
		return uuid.Nil, false
	}
	return id, true
}

// ErrorMiddleware renders the last error a handler attached with c.Error.
// Client errors carry their message; anything else becomes a bare 500 and
// the cause goes to the log only.
func ErrorMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
		}

		var vErr *apperror.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, vErr.ToJSON())
			return
		}

		var appErr *apperror.AppError
		if errors.As(err, &appErr) && !errors.Is(err, apperror.ErrInternal) {
			status := apperror.ToHTTPStatus(err)
			log.Debug("Request rejected", append(fields, zap.Int("status", status), zap.Error(err))...)
			c.JSON(status, appErr.ToJSON())
			return
		}

		log.Error("Request failed", err, fields...)
		c.String(http.StatusInternalServerError, "Server Error")
	}
}
