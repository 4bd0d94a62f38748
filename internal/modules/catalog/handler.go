package catalog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"carrental/internal/pkg/request"
	"carrental/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts reads on public and writes on admin.
func (h *Handler) RegisterRoutes(public, admin *gin.RouterGroup) {
	if public != nil {
		g := public.Group("/catalog")
		g.GET("/makes", h.ListMakes)
		g.GET("/makes/:id/models", h.ListModelsByMake)
		g.GET("/models", h.ListModels)
		g.GET("/body-types", list(h.service.ListBodyTypes, "body_types"))
		g.GET("/transmission-types", list(h.service.ListTransmissionTypes, "transmission_types"))
		g.GET("/motor-types", list(h.service.ListMotorTypes, "motor_types"))
	}
	if admin != nil {
		g := admin.Group("/catalog")
		g.POST("/makes", create(h.service.CreateMake, "make"))
		g.POST("/models", h.CreateModel)
		g.POST("/body-types", create(h.service.CreateBodyType, "body_type"))
		g.POST("/transmission-types", create(h.service.CreateTransmissionType, "transmission_type"))
		g.POST("/motor-types", create(h.service.CreateMotorType, "motor_type"))
	}
}

func list[T any](fn func(context.Context) ([]T, error), key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := fn(c.Request.Context())
		if err != nil {
			response.FromError(c, err)
			return
		}
		if items == nil {
			items = []T{}
		}
		response.Success(c, http.StatusOK, gin.H{key: items})
	}
}

func create[T any](fn func(context.Context, string) (*T, error), key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req NameRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
		v, err := fn(c.Request.Context(), req.Name)
		if err != nil {
			response.FromError(c, err)
			return
		}
		response.Success(c, http.StatusCreated, gin.H{key: v})
	}
}

func (h *Handler) ListMakes(c *gin.Context) {
	list(h.service.ListMakes, "makes")(c)
}

func (h *Handler) ListModelsByMake(c *gin.Context) {
	makeID, ok := request.ID(c, "id")
	if !ok {
		return
	}
	h.listModels(c, makeID)
}

// ListModels accepts an optional make_id filter.
func (h *Handler) ListModels(c *gin.Context) {
	var makeID int64
	if raw := c.Query("make_id"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v <= 0 {
			response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid make_id")
			return
		}
		makeID = v
	}
	h.listModels(c, makeID)
}

func (h *Handler) listModels(c *gin.Context, makeID int64) {
	models, err := h.service.ListModels(c.Request.Context(), makeID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"models": models})
}

func (h *Handler) CreateModel(c *gin.Context) {
	var req CreateModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	m, err := h.service.CreateModel(c.Request.Context(), req.MakeID, req.Name)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"model": m})
}
