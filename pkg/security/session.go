package security

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	worklog_api "worklog/worklog-api"
	"worklog/worklog-api/pkg/config"
)

var (
	ErrInvalidToken = errors.New("invalid token")
)

const identityKey = "identity"

// IssueToken signs the identity into a session token. Lifetime follows the
// configured cookie max age.
func IssueToken(cfg *config.Config, id worklog_api.Identity) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"username":          id.Username,
		"email":             id.Email,
		"role":              id.Role,
		"upgrade_requested": id.UpgradeRequested,
		"iat":               now.Unix(),
		"exp":               now.Add(time.Duration(cfg.Security.CookieMaxAge) * time.Second).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.Security.Secret))
}

// VerifyToken checks the signature and expiry and rebuilds the identity
// from the claims.
func VerifyToken(cfg *config.Config, token string) (*worklog_api.Identity, error) {
	tkn, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(cfg.Security.Secret), nil
	})
	if err != nil || !tkn.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := tkn.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	id := &worklog_api.Identity{}
	id.Username, _ = claims["username"].(string)
	id.Email, _ = claims["email"].(string)
	id.Role, _ = claims["role"].(string)
	id.UpgradeRequested, _ = claims["upgrade_requested"].(bool)
	if id.Username == "" {
		return nil, ErrInvalidToken
	}
	return id, nil
}

// Authenticate reads the session cookie and, when it verifies, stores the
// caller identity on the request context. The identity is trusted as-is; a
// missing cookie or a bad token leaves the request anonymous and the
// middleware never aborts.
func Authenticate(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cookie, err := c.Cookie(cfg.Security.CookieName); err == nil && cookie != "" {
			if id, err := VerifyToken(cfg, cookie); err == nil {
				c.Set(identityKey, id)
			} else {
				log.WithFields(log.Fields{
					"error": err,
				}).Warn("discarding invalid session cookie")
			}
		}
		c.Next()
	}
}

// CurrentIdentity returns the authenticated identity for the request, or
// nil for anonymous callers.
func CurrentIdentity(c *gin.Context) *worklog_api.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	id, _ := v.(*worklog_api.Identity)
	return id
}
