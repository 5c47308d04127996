package handler

import (
	"context"
	"net/http"

	"caseflow_backend/internal/workorders/service"
	"caseflow_backend/internal/workorders/transport"
	"caseflow_backend/platform/httpkit"
	"caseflow_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for work-order cases.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new work-order handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the case routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.GetByID)
	rg.GET("/:id/timeline", h.Timeline)
	rg.POST("/:id/confirm", h.ConfirmJob)
	rg.POST("/:id/start", h.StartJob)
	rg.POST("/:id/complete", h.CompleteJob)
	rg.POST("/:id/hold", h.HoldCase)
	rg.POST("/:id/resume", h.ResumeCase)
	rg.POST("/:id/close", h.CloseCase)
}

func (h *Handler) Create(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	var req transport.CreateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Create(c.Request.Context(), id.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, result)
}

func (h *Handler) List(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	var req transport.ListCasesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.List(c.Request.Context(), id.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) GetByID(c *gin.Context) {
	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.GetByID(c.Request.Context(), caseID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) Timeline(c *gin.Context) {
	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := h.svc.Timeline(c.Request.Context(), caseID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) ConfirmJob(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.ConfirmJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.ConfirmJob(c.Request.Context(), caseID, id.UserID(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}

func (h *Handler) StartJob(c *gin.Context) {
	h.simpleTransition(c, h.svc.StartJob)
}

func (h *Handler) CompleteJob(c *gin.Context) {
	h.simpleTransition(c, h.svc.CompleteJob)
}

func (h *Handler) HoldCase(c *gin.Context) {
	h.simpleTransition(c, h.svc.HoldCase)
}

func (h *Handler) ResumeCase(c *gin.Context) {
	h.simpleTransition(c, h.svc.ResumeCase)
}

func (h *Handler) CloseCase(c *gin.Context) {
	h.simpleTransition(c, h.svc.CloseCase)
}

func (h *Handler) simpleTransition(c *gin.Context, fn func(ctx context.Context, caseID, actorID uuid.UUID) (*transport.CaseResponse, error)) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	result, err := fn(c.Request.Context(), caseID, id.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}
