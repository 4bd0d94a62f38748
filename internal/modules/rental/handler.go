package rental

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"carrental/internal/domain"
	"carrental/internal/pkg/request"
	"carrental/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	g := protected.Group("/rentals")
	{
		g.POST("", h.BookCar)
		g.GET("/my", h.ListMine)
		g.GET("/owner", h.ListForMyCars)
		g.GET("/:id", h.GetRental)
		g.GET("/:id/history", h.GetHistory)
		g.POST("/:id/cancel", h.CancelRental)
		g.POST("/:id/complete", h.CompleteRental)
	}
}

func (h *Handler) RegisterPublicRoutes(public *gin.RouterGroup) {
	public.GET("/cars/:id/busy", h.GetBusyWindows)
}

func (h *Handler) BookCar(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}

	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	start, end, err := req.Window()
	if err != nil {
		response.FromError(c, err)
		return
	}

	r, err := h.service.BookCar(c.Request.Context(), req.CarID, userID, start, end)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"rental": ToResponse(r)})
}

// loadVisible fetches a rental the caller may see: its renter, the car owner or an admin.
func (h *Handler) loadVisible(c *gin.Context) (*domain.Rental, bool) {
	userID, ok := request.UserID(c)
	if !ok {
		return nil, false
	}
	id, ok := request.ID(c, "id")
	if !ok {
		return nil, false
	}

	r, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return nil, false
	}
	if request.IsAdmin(c) {
		return r, true
	}
	ownerID, err := h.service.OwnerOf(c.Request.Context(), r)
	if err != nil {
		response.FromError(c, err)
		return nil, false
	}
	if !r.IsParty(userID, ownerID) {
		response.FromError(c, domain.ErrUnauthorized)
		return nil, false
	}
	return r, true
}

func (h *Handler) GetRental(c *gin.Context) {
	r, ok := h.loadVisible(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, gin.H{"rental": ToResponse(r)})
}

func (h *Handler) GetHistory(c *gin.Context) {
	r, ok := h.loadVisible(c)
	if !ok {
		return
	}
	history, err := h.service.History(c.Request.Context(), r.ID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"history": history})
}

func (h *Handler) ListMine(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}
	limit, offset := request.Page(c)

	list, total, err := h.service.ListForRenter(c.Request.Context(), userID, domain.RentalStatus(c.Query("status")), limit, offset)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"rentals": ToResponses(list), "total": total})
}

func (h *Handler) ListForMyCars(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}
	limit, offset := request.Page(c)

	list, total, err := h.service.ListForOwner(c.Request.Context(), userID, domain.RentalStatus(c.Query("status")), limit, offset)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"rentals": ToResponses(list), "total": total})
}

func (h *Handler) CancelRental(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}
	id, ok := request.ID(c, "id")
	if !ok {
		return
	}

	var req CancelRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
	}

	r, err := h.service.CancelRental(c.Request.Context(), id, userID, req.Reason)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"rental": ToResponse(r)})
}

func (h *Handler) CompleteRental(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}
	id, ok := request.ID(c, "id")
	if !ok {
		return
	}

	r, err := h.service.CompleteRental(c.Request.Context(), id, userID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"rental": ToResponse(r)})
}

// GetBusyWindows lists the booked windows of a car between ?from and ?to
// (YYYY-MM-DD). Both default to a 90 day range starting today.
func (h *Handler) GetBusyWindows(c *gin.Context) {
	carID, ok := request.ID(c, "id")
	if !ok {
		return
	}

	from := h.service.Today()
	to := from.AddDate(0, 0, 90)
	if v := c.Query("from"); v != "" {
		d, err := domain.ParseDay(v)
		if err != nil {
			response.FromError(c, fmt.Errorf("%w: from must be YYYY-MM-DD", domain.ErrValidation))
			return
		}
		from = d
	}
	if v := c.Query("to"); v != "" {
		d, err := domain.ParseDay(v)
		if err != nil {
			response.FromError(c, fmt.Errorf("%w: to must be YYYY-MM-DD", domain.ErrValidation))
			return
		}
		to = d
	}

	rentals, err := h.service.BusyWindows(c.Request.Context(), carID, from, to)
	if err != nil {
		response.FromError(c, err)
		return
	}
	out := make([]BusyWindow, 0, len(rentals))
	for _, r := range rentals {
		out = append(out, BusyWindow{
			RentalID:  r.ID,
			StartDate: r.StartDate.Format(domain.DateLayout),
			EndDate:   r.EndDate.Format(domain.DateLayout),
			Status:    r.Status,
		})
	}
	response.Success(c, http.StatusOK, gin.H{"car_id": carID, "busy": out})
}
