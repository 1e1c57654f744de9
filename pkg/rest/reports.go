package rest

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	worklog_api "worklog/worklog-api"
	"worklog/worklog-api/pkg/reports"
	"worklog/worklog-api/pkg/security"
)

type createReportRequest struct {
	Minutes *int   `json:"minutes" binding:"required"`
	Date    string `json:"date" binding:"required"`
	Module  string `json:"module" binding:"required"`
	Content string `json:"content" binding:"required"`
}

var exportContentTypes = map[string]string{
	"json": "application/json; charset=utf-8",
	"csv":  "text/csv; charset=utf-8",
	"xml":  "application/xml; charset=utf-8",
}

func (s *Server) ListReports(c *gin.Context) {
	id := security.CurrentIdentity(c)
	if id == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	owned := s.reports.ForUser(id.Username)
	if owned == nil {
		owned = []worklog_api.Report{}
	}
	c.JSON(http.StatusOK, gin.H{
		"reports": owned,
		"summary": s.reports.Summarize(id.Username),
	})
}

func (s *Server) CreateReport(c *gin.Context) {
	id := security.CurrentIdentity(c)
	if id == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	var req createReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if *req.Minutes < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Minutes must not be negative"})
		return
	}

	if err := s.reports.Add(id.Username, *req.Minutes, req.Date, req.Module, req.Content); err != nil {
		log.WithFields(log.Fields{
			"err":  err,
			"user": id.Username,
		}).Error("Failed to add report")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Status(http.StatusCreated)
}

func (s *Server) DeleteReport(c *gin.Context) {
	id := security.CurrentIdentity(c)
	if id == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	if !s.reports.Delete(id.Username, c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
		return
	}
	c.Status(http.StatusOK)
}

// ExportReports streams the caller's reports as a download. VIP and admin
// only, like the original export page.
func (s *Server) ExportReports(c *gin.Context) {
	id := security.CurrentIdentity(c)
	if !roleIsVIPOrAdmin(id) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	format := strings.ToLower(c.DefaultQuery("format", "json"))
	payload, err := reports.Export(s.reports.ForUser(id.Username), format)
	if err != nil {
		if errors.Is(err, reports.ErrUnsupportedFormat) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown format"})
			return
		}
		log.WithFields(log.Fields{
			"err":    err,
			"format": format,
			"user":   id.Username,
		}).Error("Failed to export reports")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id.Username+"_reports."+format))
	c.Data(http.StatusOK, exportContentTypes[format], payload)
}

// UploadReports replaces all of the caller's reports with the rows of an
// uploaded CSV file. VIP and admin only.
func (s *Server) UploadReports(c *gin.Context) {
	id := security.CurrentIdentity(c)
	if !roleIsVIPOrAdmin(id) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}

	header, err := c.FormFile("csv_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid CSV file"})
		return
	}
	defer f.Close()
	text, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid CSV file"})
		return
	}

	records, err := reports.ImportCSV(string(text))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid CSV file"})
		return
	}

	if err := s.reports.OverwriteForUser(id.Username, records); err != nil {
		log.WithFields(log.Fields{
			"err":  err,
			"user": id.Username,
		}).Error("Failed to overwrite reports")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": len(records)})
}

func roleIsVIPOrAdmin(id *worklog_api.Identity) bool {
	if id == nil {
		return false
	}
	return id.Role == worklog_api.RoleVIP || id.Role == worklog_api.RoleAdmin
}
