// Package ui exposes the analysis engine over HTTP: a gin JSON API for
// the dashboard front end and a small chi ops router for health checks.
package ui

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"datalens/adapters/export"
	"datalens/adapters/ingest"
	"datalens/adapters/postgres"
	"datalens/domain/analysis"
	"datalens/engine"
	"datalens/internal"
)

// Server is the dashboard-facing JSON API.
type Server struct {
	router *gin.Engine
	engine *engine.Engine
	runs   *postgres.RunRepository // nil when persistence is disabled
	log    *internal.Logger
}

// Config holds server settings.
type Config struct {
	Port    string
	GinMode string
}

// NewServer wires the API routes. The run repository is optional.
func NewServer(cfg Config, analyzer *engine.Engine, runs *postgres.RunRepository, log *internal.Logger) *Server {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	if log == nil {
		log = internal.DefaultLogger
	}
	log = log.WithComponent("api")

	s := &Server{
		router: gin.New(),
		engine: analyzer,
		runs:   runs,
		log:    log,
	}
	s.router.Use(gin.Recovery())
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.router.Group("/api")
	api.GET("/health", s.handleHealth)
	api.POST("/analyze", s.handleAnalyze)
	api.POST("/datasets/analyze", s.handleAnalyzeUpload)
	api.GET("/runs", s.handleListRuns)
}

// Router exposes the underlying handler, mainly for tests.
func (s *Server) Router() http.Handler { return s.router }

// Run starts the HTTP server on the given address.
func (s *Server) Run(addr string) error {
	s.log.Info("API server listening on %s", addr)
	return s.router.Run(addr)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
}

type analyzeRequest struct {
	DatasetName string                   `json:"dataset_name"`
	Records     []map[string]interface{} `json:"records" binding:"required"`
}

// handleAnalyze analyzes records posted as JSON. Analysis failures never
// surface as 5xx with no body: the caller always gets a structured error
// so the UI can fall back to showing something.
func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request must include a records array"})
		return
	}

	ds := make(analysis.Dataset, len(req.Records))
	for i, rec := range req.Records {
		ds[i] = analysis.DataPoint(rec)
	}

	result, err := s.engine.Analyze(c.Request.Context(), ds)
	if err != nil {
		s.log.Error("analysis failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis unavailable"})
		return
	}

	s.persistRun(c, req.DatasetName, result)
	c.JSON(http.StatusOK, result)
}

// handleAnalyzeUpload accepts a multipart file (CSV/XLSX/JSON), parses it,
// and runs the full analysis.
func (s *Server) handleAnalyzeUpload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file upload"})
		return
	}

	tmp, err := os.CreateTemp("", "upload-*"+filepath.Ext(file.Filename))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis unavailable"})
		return
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := c.SaveUploadedFile(file, tmpPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis unavailable"})
		return
	}

	ds, err := ingest.NewDataReader(tmpPath).Read()
	if err != nil {
		s.log.Warn("ingest of %s failed: %v", file.Filename, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not parse uploaded file"})
		return
	}

	result, err := s.engine.Analyze(c.Request.Context(), ds)
	if err != nil {
		s.log.Error("analysis failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis unavailable"})
		return
	}

	s.persistRun(c, file.Filename, result)

	if c.Query("format") == "markdown" {
		c.String(http.StatusOK, export.BuildMarkdown(result))
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleListRuns(c *gin.Context) {
	if s.runs == nil {
		c.JSON(http.StatusOK, gin.H{"runs": []interface{}{}})
		return
	}
	runs, err := s.runs.ListRecent(c.Request.Context(), 20)
	if err != nil {
		s.log.Error("listing runs failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

// persistRun best-effort stores the result; a storage failure is logged,
// never surfaced to the analysis caller.
func (s *Server) persistRun(c *gin.Context, name string, result *analysis.Result) {
	if s.runs == nil {
		return
	}
	if name == "" {
		name = "adhoc"
	}
	run := analysis.NewRun(name, result, time.Now())
	if err := s.runs.Create(c.Request.Context(), run); err != nil {
		s.log.Warn("failed to persist run for %s: %v", name, err)
	}
}
