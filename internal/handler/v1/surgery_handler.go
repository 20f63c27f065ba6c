package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/surgery-scheduler/internal/domain/surgery"
	"github.com/dmehra2102/prod-golang-projects/surgery-scheduler/internal/service"
)

type SurgeryHandler struct {
	svc *service.SurgeryService
	log *zap.Logger
}

func NewSurgeryHandler(svc *service.SurgeryService, log *zap.Logger) *SurgeryHandler {
	useJSONFieldNames()
	return &SurgeryHandler{svc: svc, log: log}
}

func (h *SurgeryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/surgeries")
	g.POST("", h.Schedule)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.PATCH("/:id", h.Modify)
	g.PUT("/:id", h.Modify)
	g.DELETE("/:id", h.Cancel)
}

// Schedule handles POST /surgeries.
func (h *SurgeryHandler) Schedule(c *gin.Context) {
	var req ScheduleSurgeryRequest
	if !bindJSON(c, &req) {
		return
	}

	cmd, errs := req.toCommand()
	if len(errs) > 0 {
		respondValidation(c, errs)
		return
	}

	s, err := h.svc.ScheduleSurgery(c.Request.Context(), cmd)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, toSurgeryResponse(s))
}

// List handles GET /surgeries?page=&page_size=.
func (h *SurgeryHandler) List(c *gin.Context) {
	q := &surgery.ListSurgeriesQuery{
		Page:     parseQueryInt(c, "page", 1),
		PageSize: parseQueryInt(c, "page_size", 0),
	}

	page, err := h.svc.ListSurgeries(c.Request.Context(), q)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPagedResponse(page))
}

func (h *SurgeryHandler) Get(c *gin.Context) {
	s, err := h.svc.GetSurgery(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toSurgeryResponse(s))
}

// Modify handles PATCH and PUT /surgeries/:id; both are partial updates.
func (h *SurgeryHandler) Modify(c *gin.Context) {
	var req ModifySurgeryRequest
	// An empty body is an empty update: nothing changes, the record is returned.
	if !bindOptionalJSON(c, &req) {
		return
	}

	cmd, errs := req.toCommand()
	if len(errs) > 0 {
		respondValidation(c, errs)
		return
	}

	s, err := h.svc.ModifySurgery(c.Request.Context(), c.Param("id"), cmd)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toSurgeryResponse(s))
}

// Cancel handles DELETE /surgeries/:id.
func (h *SurgeryHandler) Cancel(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.CancelSurgery(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "surgery " + id + " has been cancelled"})
}
