package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/Graphyte-Intelligence/internal/application/screening"
	"github.com/turtacn/Graphyte-Intelligence/internal/infrastructure/monitoring/logging"
)

// ScreeningHandler exposes the screening service over REST.
type ScreeningHandler struct {
	svc    screening.Service
	logger logging.Logger
}

// NewScreeningHandler creates a new ScreeningHandler.
func NewScreeningHandler(svc screening.Service, logger logging.Logger) *ScreeningHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ScreeningHandler{svc: svc, logger: logger}
}

// RegisterRoutes mounts the API on rg (typically /api/v1).
//
//	POST /screenings            run a screening
//	GET  /screenings?entity=    screening history of an entity
//	GET  /screenings/:id        one recorded screening
//	POST /explanations          token contributions for a snippet
//	GET  /model                 active model
//	GET  /model/quality         evaluation on the training corpus
//	POST /model/retrain         retrain from the training source
//	GET  /typologies            typology catalogue
//	GET  /entities              local corpus entities
func (h *ScreeningHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/screenings", h.Analyze)
	rg.GET("/screenings", h.ListScreenings)
	rg.GET("/screenings/:id", h.GetScreening)
	rg.POST("/explanations", h.Explain)
	rg.GET("/model", h.Model)
	rg.GET("/model/quality", h.Quality)
	rg.POST("/model/retrain", h.Retrain)
	rg.GET("/typologies", h.Typologies)
	rg.GET("/entities", h.Entities)
}

// ListResponse wraps collection payloads.
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

func list[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, Total: len(items)}
}

// Analyze handles POST /screenings.
func (h *ScreeningHandler) Analyze(c *gin.Context) {
	var req screening.AnalyzeRequest
	if !bindJSON(c, &req) {
		return
	}
	sc, err := h.svc.Analyze(c.Request.Context(), &req)
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, sc)
}

// ListScreenings handles GET /screenings?entity=&limit=.
func (h *ScreeningHandler) ListScreenings(c *gin.Context) {
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		writeAppError(c, err)
		return
	}
	records, err := h.svc.ListScreenings(c.Request.Context(), c.Query("entity"), limit)
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, list(records))
}

// GetScreening handles GET /screenings/:id.
func (h *ScreeningHandler) GetScreening(c *gin.Context) {
	rec, err := h.svc.GetScreening(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Explain handles POST /explanations.
func (h *ScreeningHandler) Explain(c *gin.Context) {
	var req screening.ExplainRequest
	if !bindJSON(c, &req) {
		return
	}
	exp, err := h.svc.Explain(c.Request.Context(), &req)
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, exp)
}

// Model handles GET /model.
func (h *ScreeningHandler) Model(c *gin.Context) {
	m, err := h.svc.Model(c.Request.Context())
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// Quality handles GET /model/quality.
func (h *ScreeningHandler) Quality(c *gin.Context) {
	report, err := h.svc.QualityReport(c.Request.Context())
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Retrain handles POST /model/retrain.
func (h *ScreeningHandler) Retrain(c *gin.Context) {
	m, err := h.svc.Retrain(c.Request.Context(), screening.TriggerManual)
	if err != nil {
		writeAppError(c, err)
		return
	}
	h.logger.Info("model retrained via API",
		logging.String("version", m.Version),
		logging.String("client_ip", c.ClientIP()))
	c.JSON(http.StatusOK, m)
}

// Typologies handles GET /typologies.
func (h *ScreeningHandler) Typologies(c *gin.Context) {
	c.JSON(http.StatusOK, list(h.svc.Typologies()))
}

// Entities handles GET /entities.
func (h *ScreeningHandler) Entities(c *gin.Context) {
	entities, err := h.svc.Entities(c.Request.Context())
	if err != nil {
		writeAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, list(entities))
}

//Personal.AI order the ending
