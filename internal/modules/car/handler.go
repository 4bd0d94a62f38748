package car

import (
	"net/http"

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

func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	if public != nil {
		public.GET("/cars", h.Search)
		public.GET("/cars/:id", h.GetCar)
	}
	if protected != nil {
		g := protected.Group("/cars")
		g.POST("", h.CreateCar)
		g.GET("/my", h.ListMine)
		g.PATCH("/:id", h.UpdateCar)
		g.PATCH("/:id/listing", h.SetListing)
		g.DELETE("/:id", h.DeleteCar)
	}
}

// Search handles GET /api/v1/cars with filters, sorting and skip/limit paging.
func (h *Handler) Search(c *gin.Context) {
	var q SearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	limit, offset := request.Page(c)
	f, err := q.Filter(limit, offset)
	if err != nil {
		response.FromError(c, err)
		return
	}

	out, err := h.service.Search(c.Request.Context(), f)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) GetCar(c *gin.Context) {
	id, ok := request.ID(c, "id")
	if !ok {
		return
	}
	car, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"car": car})
}

func (h *Handler) CreateCar(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}
	var req CreateCarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	car, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"car": car})
}

func (h *Handler) ListMine(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}
	limit, offset := request.Page(c)

	out, err := h.service.ListByOwner(c.Request.Context(), userID, limit, offset)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) UpdateCar(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}
	id, ok := request.ID(c, "id")
	if !ok {
		return
	}
	var req UpdateCarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	car, err := h.service.Update(c.Request.Context(), id, userID, req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"car": car})
}

func (h *Handler) SetListing(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}
	id, ok := request.ID(c, "id")
	if !ok {
		return
	}
	var req ListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	car, err := h.service.SetListing(c.Request.Context(), id, userID, request.IsAdmin(c), *req.IsListed)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"car": car})
}

func (h *Handler) DeleteCar(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}
	id, ok := request.ID(c, "id")
	if !ok {
		return
	}

	deleted, err := h.service.Remove(c.Request.Context(), id, userID, request.IsAdmin(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": deleted, "unlisted": !deleted})
}
