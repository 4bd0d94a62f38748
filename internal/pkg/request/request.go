package request

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"carrental/internal/domain"
	"carrental/internal/pkg/response"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ID parses a positive integer path parameter and writes a 400 when it is not one.
func ID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid "+name)
		return 0, false
	}
	return id, true
}

// Page reads limit/offset, accepting skip as an alias for offset.
func Page(c *gin.Context) (limit, offset int) {
	limit = DefaultLimit
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	raw := c.Query("offset")
	if raw == "" {
		raw = c.Query("skip")
	}
	if v, err := strconv.Atoi(raw); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

// UserID returns the authenticated user set by the auth middleware.
func UserID(c *gin.Context) (int64, bool) {
	id := c.GetInt64("user_id")
	if id == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHENTICATED", "User not authenticated")
		return 0, false
	}
	return id, true
}

func IsAdmin(c *gin.Context) bool {
	return c.GetString("role") == string(domain.RoleAdmin)
}
