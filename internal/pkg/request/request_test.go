package request

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newContext(target string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c, w
}

func TestPage(t *testing.T) {
	tests := []struct {
		target     string
		wantLimit  int
		wantOffset int
	}{
		{"/", DefaultLimit, 0},
		{"/?limit=5&offset=10", 5, 10},
		{"/?limit=500&skip=3", MaxLimit, 3},
		{"/?limit=-1&offset=-4", DefaultLimit, 0},
	}
	for _, tt := range tests {
		c, _ := newContext(tt.target)
		limit, offset := Page(c)
		assert.Equal(t, tt.wantLimit, limit, tt.target)
		assert.Equal(t, tt.wantOffset, offset, tt.target)
	}
}

func TestIDRejectsGarbage(t *testing.T) {
	c, w := newContext("/")
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	_, ok := ID(c, "id")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserID(t *testing.T) {
	c, w := newContext("/")
	_, ok := UserID(c)
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	c, _ = newContext("/")
	c.Set("user_id", int64(42))
	id, ok := UserID(c)
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)
}
