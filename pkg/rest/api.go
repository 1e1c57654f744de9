package rest

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"worklog/worklog-api/pkg/accounts"
	"worklog/worklog-api/pkg/config"
	"worklog/worklog-api/pkg/reports"
	"worklog/worklog-api/pkg/security"
	"worklog/worklog-api/pkg/store"
)

type Server struct {
	config   *config.Config
	engine   *gin.Engine
	accounts *accounts.Repository
	reports  *reports.Repository
}

func NewServer(cfg *config.Config, e *gin.Engine) *Server {
	return &Server{
		config: cfg,
		engine: e,
	}
}

// Initialise opens the configured store backend and wires all routes.
func (s *Server) Initialise() error {
	st, err := openStore(s.config)
	if err != nil {
		log.WithFields(log.Fields{
			"error": err,
		}).Error("unable to open storage backend")
		return err
	}
	s.InitialiseWithStore(st)

	var filename = "logfile.log"
	f, err := os.OpenFile(filename, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	log.SetFormatter(&log.JSONFormatter{})
	if err != nil {
		fmt.Println(err)
	} else {
		log.SetOutput(f)
	}

	return nil
}

// InitialiseWithStore wires repositories and routes on an already opened
// store. Used directly by tests with an in-memory store.
func (s *Server) InitialiseWithStore(st store.Store) {
	s.accounts = accounts.NewRepository(st)
	s.reports = reports.NewRepository(st)

	s.engine.Use(security.Authenticate(s.config))

	s.engine.POST("/api/register", s.Register)
	s.engine.POST("/api/login", s.Login)
	s.engine.POST("/api/logout", s.Logout)
	s.engine.GET("/api/user", s.Profile)
	s.engine.POST("/api/user/change-role", s.ChangeRole)
	s.engine.POST("/api/user/request-upgrade", s.RequestUpgrade)
	s.engine.POST("/api/user/accept-upgrade", s.AcceptUpgrade)
	s.engine.POST("/api/user/deny-upgrade", s.DenyUpgrade)
	s.engine.GET("/api/reports", s.ListReports)
	s.engine.POST("/api/reports", s.CreateReport)
	s.engine.DELETE("/api/reports/:id", s.DeleteReport)
	s.engine.GET("/api/reports/export", s.ExportReports)
	s.engine.POST("/api/reports/upload", s.UploadReports)
}

func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Storage.Backend {
	case "", "file":
		return store.NewFileStore(cfg.Storage.DataDir), nil
	case "postgres":
		return store.NewSQLStore(cfg)
	}
	return nil, config.ErrInvalidConfig
}
