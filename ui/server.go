package ui

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"panelsim/adapters/export"
	"panelsim/app"
	"panelsim/domain/core"
	"panelsim/domain/persona"
	"panelsim/domain/survey"
	"panelsim/internal/report"

	apperrors "panelsim/internal/errors"
)

// Server exposes the simulation, aggregation, and comparison engines over
// a JSON API. Authentication, organizations, and billing live outside this
// service; callers arrive already authorized.
type Server struct {
	router  *gin.Engine
	service *app.StudyService
	reports *report.Generator
	export  *export.StatsWriter
}

// NewServer creates the API server around a study service
func NewServer(service *app.StudyService, reports *report.Generator) *Server {
	s := &Server{
		router:  gin.Default(),
		service: service,
		reports: reports,
		export:  export.NewStatsWriter(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	api.POST("/studies/simulate", s.handleSimulate)
	api.GET("/studies/:id/results", s.handleResults)
	api.GET("/studies/:id/report", s.handleReport)
	api.GET("/studies/:id/export", s.handleExport)
	api.POST("/studies/compare", s.handleCompare)
	api.DELETE("/studies/:id", s.handleDelete)
	api.GET("/presets", s.handlePresets)
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// Run starts the HTTP server on addr
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Handler exposes the router for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// simulateRequest is the wire shape for starting a study run
type simulateRequest struct {
	StudyID   string              `json:"study_id"`
	StudyName string              `json:"study_name"`
	Questions []survey.Question   `json:"questions"`
	Panel     persona.PanelConfig `json:"panel"`
}

func (s *Server) handleSimulate(c *gin.Context) {
	var req simulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	studyID := core.StudyID(req.StudyID)
	if req.StudyID == "" {
		studyID = core.StudyID(core.NewID())
	}

	result, err := s.service.RunSimulation(c.Request.Context(), app.SimulateRequest{
		StudyID:   studyID,
		StudyName: req.StudyName,
		Questions: req.Questions,
		Panel:     req.Panel,
	})
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"study_id": studyID.String(), "result": result})
}

func (s *Server) handleResults(c *gin.Context) {
	studyID, err := core.ParseStudyID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stats, err := s.service.GetStudyStats(c.Request.Context(), studyID)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"study_id": studyID.String(), "questions": stats})
}

func (s *Server) handleReport(c *gin.Context) {
	studyID, err := core.ParseStudyID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stats, err := s.service.GetStudyStats(c.Request.Context(), studyID)
	if err != nil {
		s.renderError(c, err)
		return
	}

	md := s.reports.Markdown(studyID.String(), stats)
	c.Data(http.StatusOK, "text/html; charset=utf-8", s.reports.RenderHTML(md))
}

func (s *Server) handleExport(c *gin.Context) {
	studyID, err := core.ParseStudyID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stats, err := s.service.GetStudyStats(c.Request.Context(), studyID)
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="study-`+studyID.String()+`.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := s.export.Write(c.Writer, studyID.String(), stats); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// compareRequest is the wire shape for cross-study comparison
type compareRequest struct {
	StudyIDs []string `json:"study_ids"`
}

func (s *Server) handleCompare(c *gin.Context) {
	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	ids := make([]core.StudyID, len(req.StudyIDs))
	for i, id := range req.StudyIDs {
		ids[i] = core.StudyID(id)
	}

	comparison, err := s.service.CompareStudies(c.Request.Context(), ids)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, comparison)
}

func (s *Server) handleDelete(c *gin.Context) {
	studyID, err := core.ParseStudyID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.service.DeleteStudy(c.Request.Context(), studyID); err != nil {
		s.renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handlePresets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"presets": persona.PresetNames()})
}

// renderError maps application errors onto HTTP statuses
func (s *Server) renderError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case apperrors.GetCode(err) == apperrors.CodeValidationError,
		core.IsValidationError(err),
		errors.Is(err, core.ErrTooFewStudies):
		status = http.StatusBadRequest
	case core.IsNotFoundError(err):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrOracleUnavailable):
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": apperrors.GetCode(err)})
}
