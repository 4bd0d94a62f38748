package payment

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carrental/internal/domain"
	"carrental/internal/pkg/request"
	"carrental/internal/pkg/response"
)

type Handler struct {
	service *Service
	rentals RentalReader
}

func NewHandler(service *Service, rentals RentalReader) *Handler {
	return &Handler{service: service, rentals: rentals}
}

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	g := protected.Group("/payments")
	{
		g.POST("", h.RecordPayment)
		g.GET("/:id", h.GetPayment)
		g.PATCH("/:id/status", h.UpdateStatus)
	}
}

func (h *Handler) RecordPayment(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}

	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	r, err := h.rentals.Get(c.Request.Context(), req.RentalID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	if r.RenterID != userID && !request.IsAdmin(c) {
		response.FromError(c, domain.ErrUnauthorized)
		return
	}

	p, err := h.service.RecordPayment(c.Request.Context(), req.RentalID, req.Amount, req.Method)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"payment": p})
}

func (h *Handler) GetPayment(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}
	id, ok := request.ID(c, "id")
	if !ok {
		return
	}

	p, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	if !request.IsAdmin(c) {
		renterID, ownerID, err := h.service.Parties(c.Request.Context(), p)
		if err != nil {
			response.FromError(c, err)
			return
		}
		if userID != renterID && userID != ownerID {
			response.FromError(c, domain.ErrUnauthorized)
			return
		}
	}
	response.Success(c, http.StatusOK, gin.H{"payment": p})
}

// UpdateStatus lets the renter settle or retry a payment; refunds are issued
// by the car owner. Admins may do both.
func (h *Handler) UpdateStatus(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}
	id, ok := request.ID(c, "id")
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	p, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	if !request.IsAdmin(c) {
		renterID, ownerID, err := h.service.Parties(c.Request.Context(), p)
		if err != nil {
			response.FromError(c, err)
			return
		}
		allowed := userID == renterID
		if req.Status == domain.PaymentRefunded {
			allowed = userID == ownerID
		}
		if !allowed {
			response.FromError(c, domain.ErrUnauthorized)
			return
		}
	}

	r, err := h.service.UpdatePaymentStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"rental": r})
}
