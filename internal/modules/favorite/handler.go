package favorite

import (
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

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	favorites := rg.Group("/favorites")
	{
		favorites.GET("", h.GetFavorites)
		favorites.POST("/:carId", h.AddFavorite)
		favorites.DELETE("/:carId", h.RemoveFavorite)
		favorites.GET("/:carId/check", h.CheckFavorite)
	}
}

// GetFavorites pages with page/per_page (default 1/20, per_page at most 100).
func (h *Handler) GetFavorites(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	out, err := h.service.List(c.Request.Context(), userID, page, perPage)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) AddFavorite(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}
	carID, ok := request.ID(c, "carId")
	if !ok {
		return
	}

	fav, err := h.service.Add(c.Request.Context(), userID, carID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, ToFavoriteResponse(fav))
}

func (h *Handler) RemoveFavorite(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}
	carID, ok := request.ID(c, "carId")
	if !ok {
		return
	}

	if err := h.service.Remove(c.Request.Context(), userID, carID); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"removed": true})
}

func (h *Handler) CheckFavorite(c *gin.Context) {
	userID, ok := request.UserID(c)
	if !ok {
		return
	}
	carID, ok := request.ID(c, "carId")
	if !ok {
		return
	}

	exists, err := h.service.IsFavorite(c.Request.Context(), userID, carID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, CheckFavoriteResponse{IsFavorite: exists})
}
