package dispute

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carrental/internal/domain"
	"carrental/internal/pkg/request"
	"carrental/internal/pkg/response"
	"carrental/internal/pkg/validator"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts reporter endpoints on protected and moderation
// endpoints on admin. Either group may be nil.
func (h *Handler) RegisterRoutes(protected, admin *gin.RouterGroup) {
	if protected != nil {
		g := protected.Group("/disputes")
		g.POST("", h.File)
		g.GET("/my", h.ListMine)
		g.GET("/:id", h.Get)
	}
	if admin != nil {
		g := admin.Group("/disputes")
		g.GET("", h.ListAll)
		g.PATCH("/:id/status", h.UpdateStatus)
	}
}

func (h *Handler) File(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}

	var req FileDisputeRequest
	if !bindAndValidate(c, &req) {
		return
	}

	d, err := h.svc.FileDispute(c.Request.Context(), req.RentalID, userID, req.Description)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"dispute": d})
}

func (h *Handler) Get(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}
	id, ok := request.ID(c, "id")
	if !ok {
		return
	}

	d, err := h.svc.Get(c.Request.Context(), id, userID, request.IsAdmin(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"dispute": d})
}

func (h *Handler) ListMine(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}
	limit, offset := request.Page(c)

	out, err := h.svc.ListMine(c.Request.Context(), userID, limit, offset)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) ListAll(c *gin.Context) {
	limit, offset := request.Page(c)
	status := domain.DisputeStatus(c.Query("status"))

	out, err := h.svc.ListAll(c.Request.Context(), status, limit, offset)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := request.ID(c, "id")
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}

	d, err := h.svc.UpdateStatus(c.Request.Context(), id, req.Status, req.Resolution)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"dispute": d})
}

func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return false
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", errs)
		return false
	}
	return true
}
