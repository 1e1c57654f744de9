package rest

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	worklog_api "worklog/worklog-api"
	"worklog/worklog-api/pkg/security"
)

type registerRequest struct {
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	Password2 string `json:"password2" binding:"required"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type changeRoleRequest struct {
	Username string `json:"username" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

type usernameRequest struct {
	Username string `json:"username" binding:"required"`
}

func (s *Server) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Password != req.Password2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Passwords do not match"})
		return
	}

	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	stored := req.Password
	if s.config.Security.HashPasswords {
		hash, err := security.HashPassword(req.Password)
		if err != nil {
			log.WithFields(log.Fields{
				"err": err,
			}).Error("Failed to hash password")
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		stored = hash
	}

	err := s.accounts.AddUser(worklog_api.User{
		Username: username,
		Email:    email,
		Password: stored,
		Role:     worklog_api.RoleUser,
	})
	if err != nil {
		log.WithFields(log.Fields{
			"err": err,
		}).Error("Failed to add user")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	id := worklog_api.Identity{
		Username: username,
		Email:    email,
		Role:     worklog_api.RoleUser,
	}
	s.setIdentityCookie(c, id)
	c.JSON(http.StatusOK, id)
}

func (s *Server) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	username := strings.TrimSpace(req.Username)

	var id *worklog_api.Identity
	if s.config.Security.HashPasswords {
		u := s.accounts.FindUser(username)
		if u != nil && security.CheckPassword(u.Password, req.Password) {
			id = &worklog_api.Identity{
				Username:         u.Username,
				Email:            u.Email,
				Role:             u.Role,
				UpgradeRequested: u.UpgradeRequested,
			}
		}
	} else {
		id = s.accounts.Authenticate(username, req.Password)
	}
	if id == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	s.setIdentityCookie(c, *id)
	c.JSON(http.StatusOK, id)
}

func (s *Server) Logout(c *gin.Context) {
	c.SetCookie(s.config.Security.CookieName, "", -1, "/", "", false, true)
	c.Status(http.StatusOK)
}

// Profile returns the caller identity; admins additionally get the full
// account list and the open upgrade requests.
func (s *Server) Profile(c *gin.Context) {
	id := security.CurrentIdentity(c)
	if id == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	resp := gin.H{"user": id}
	if id.Role == worklog_api.RoleAdmin {
		resp["users"] = identitiesOf(s.accounts.ListUsers())
		resp["pending"] = identitiesOf(s.accounts.PendingUpgrades())
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) ChangeRole(c *gin.Context) {
	id := security.CurrentIdentity(c)
	if id == nil || id.Role != worklog_api.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}
	var req changeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	changed := s.accounts.UpdateRole(req.Username, req.Role)
	c.JSON(http.StatusOK, gin.H{"changed": changed})
}

func (s *Server) RequestUpgrade(c *gin.Context) {
	id := security.CurrentIdentity(c)
	if id == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	if id.Role == worklog_api.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	changed := false
	if !id.UpgradeRequested {
		changed = s.accounts.RequestUpgrade(id.Username)
	}
	if changed {
		// refresh the cookie so the flag survives until the next login
		updated := *id
		updated.UpgradeRequested = true
		s.setIdentityCookie(c, updated)
		c.JSON(http.StatusOK, gin.H{"changed": true, "user": updated})
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": false, "user": id})
}

func (s *Server) AcceptUpgrade(c *gin.Context) {
	s.resolveUpgrade(c, s.accounts.AcceptUpgrade)
}

func (s *Server) DenyUpgrade(c *gin.Context) {
	s.resolveUpgrade(c, s.accounts.DenyUpgrade)
}

func (s *Server) resolveUpgrade(c *gin.Context, resolve func(string) bool) {
	id := security.CurrentIdentity(c)
	if id == nil || id.Role != worklog_api.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}
	var req usernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	changed := resolve(req.Username)
	c.JSON(http.StatusOK, gin.H{"changed": changed})
}

func (s *Server) setIdentityCookie(c *gin.Context, id worklog_api.Identity) {
	token, err := security.IssueToken(s.config, id)
	if err != nil {
		log.WithFields(log.Fields{
			"err":  err,
			"user": id.Username,
		}).Error("Failed to issue session token")
		return
	}
	c.SetCookie(s.config.Security.CookieName, token, s.config.Security.CookieMaxAge, "/", "", false, true)
}

func identitiesOf(users []worklog_api.User) []worklog_api.Identity {
	out := make([]worklog_api.Identity, 0, len(users))
	for _, u := range users {
		out = append(out, worklog_api.Identity{
			Username:         u.Username,
			Email:            u.Email,
			Role:             u.Role,
			UpgradeRequested: u.UpgradeRequested,
		})
	}
	return out
}
