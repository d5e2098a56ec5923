package middleware

import (
	"crypto/rand"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/weddingguard/backend/config"
	"github.com/weddingguard/backend/pkg/logger"
)

// Claims represents the session cookie claims
type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

const sessionIDKey = "session_id"

var errInvalidSession = errors.New("invalid session token")

// SessionManager issues and verifies the signed session cookie.
type SessionManager struct {
	secret []byte
	cfg    *config.SessionConfig
}

// NewSessionManager uses the configured secret, or a random one that
// lives as long as the process.
func NewSessionManager(cfg *config.SessionConfig) (*SessionManager, error) {
	secret := []byte(cfg.Secret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, err
		}
		slog.Warn("session secret not configured, using a random per-process secret")
	}
	return &SessionManager{secret: secret, cfg: cfg}, nil
}

// GenerateToken signs a token for the session id
func (m *SessionManager) GenerateToken(sessionID string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(m.cfg.TTL())

	claims := Claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// ParseToken returns the session id carried by a valid token.
func (m *SessionManager) ParseToken(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid || claims.SessionID == "" {
		return "", errInvalidSession
	}
	return claims.SessionID, nil
}

// Session attaches a session id to every request. A missing, tampered or
// expired cookie starts a new session. The cookie is re-issued on every
// request so active sessions slide forward.
func (m *SessionManager) Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		var sessionID string
		if cookie, err := c.Cookie(m.cfg.CookieName); err == nil {
			sessionID, _ = m.ParseToken(cookie)
		}
		if sessionID == "" {
			sessionID = uuid.New().String()
		}

		token, expiresAt, err := m.GenerateToken(sessionID)
		if err != nil {
			slog.Error("failed to sign session token", "error", err, "request_id", GetRequestID(c))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"code":    "internal",
				"message": "Internal server error",
			})
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(m.cfg.CookieName, token, int(time.Until(expiresAt).Seconds()), "/", "", m.cfg.SecureCookie, true)

		c.Set(sessionIDKey, sessionID)
		c.Request = c.Request.WithContext(logger.WithSessionID(c.Request.Context(), sessionID))

		c.Next()
	}
}

// GetSessionID returns the session id set by Session, or "" outside it.
func GetSessionID(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}
