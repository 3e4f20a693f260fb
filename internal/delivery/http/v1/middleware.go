package v1

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/tasklist/internal/models"
	"github.com/adanyl0v/tasklist/internal/services"
)

const (
	userIDCtxKey    = "user_id"
	emailCtxKey     = "email"
	sessionIDCtxKey = "session_id"
)

// HandleAuthMiddleware resolves the caller before any handler runs. An
// expired access token is replaced using the refresh token cookie.
func (h *handlerImpl) HandleAuthMiddleware(c *gin.Context) {
	accessToken, ok := accessTokenFromRequest(c)
	if !ok {
		h.logger.Warn().Msg("access token required")
		abort(c, newUnauthorizedError(services.ErrUnauthorized.Error()))
		return
	}

	fingerprint, err := generateFingerprint(c)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to generate fingerprint")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	identity, err := h.auth.ResolveSession(c, accessToken, fingerprint)
	if err != nil && errors.Is(err, jwt.ErrTokenExpired) {
		h.logger.Debug().Msg("access token expired, refreshing session")

		var result *services.LoginResult
		result, err = h.refreshSession(c)
		if err == nil {
			identity, err = h.auth.ResolveSession(c, result.AccessToken, fingerprint)
		} else if errors.Is(err, errMandatoryCookieNotFound) {
			err = services.ErrUnauthorized
		}
	}
	if err != nil {
		if errors.Is(err, services.ErrUnauthorized) {
			h.logger.Warn().
				Err(err).
				Msg("unauthorized request")
			abort(c, newUnauthorizedError(services.ErrUnauthorized.Error()))
			return
		}

		h.logger.Error().
			Err(err).
			Msg("failed to resolve session")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	setIdentity(c, identity)
	c.Next()
}

// accessTokenFromRequest prefers the Authorization header and falls back
// to the access token cookie.
func accessTokenFromRequest(c *gin.Context) (string, bool) {
	const bearerPrefix = "Bearer"
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != bearerPrefix || parts[1] == "" {
			return "", false
		}
		return parts[1], true
	}

	token, err := c.Cookie(accessTokenCookie)
	if err != nil || token == "" {
		return "", false
	}
	return token, true
}

func setIdentity(c *gin.Context, identity *models.Identity) {
	c.Set(userIDCtxKey, identity.UserID)
	c.Set(emailCtxKey, identity.Email)
	c.Set(sessionIDCtxKey, identity.SessionID)
}

// RequestLogger logs one line per request.
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := zerolog.InfoLevel
		switch {
		case status >= http.StatusInternalServerError:
			level = zerolog.ErrorLevel
		case status >= http.StatusBadRequest:
			level = zerolog.WarnLevel
		}

		logger.WithLevel(level).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("handled request")
	}
}
