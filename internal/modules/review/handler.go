package review

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carrental/internal/pkg/request"
	"carrental/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	if public != nil {
		public.GET("/users/:id/reviews", h.ListForUser)
	}
	if protected != nil {
		protected.POST("/reviews", h.Submit)
	}
}

// Submit stores a review by the current user for a completed rental.
func (h *Handler) Submit(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}

	var req SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	rv, err := h.svc.SubmitReview(c.Request.Context(), req.RentalID, userID, req.RevieweeID, req.Rating, req.Comment)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"review": rv})
}

func (h *Handler) ListForUser(c *gin.Context) {
	id, ok := request.ID(c, "id")
	if !ok {
		return
	}
	limit, offset := request.Page(c)

	out, err := h.svc.ListForUser(c.Request.Context(), id, limit, offset)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}
