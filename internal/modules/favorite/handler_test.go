package favorite

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carrental/internal/domain"
	"carrental/internal/repository"
	"carrental/internal/testutil"
)

func TestFavoritesFlow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner", domain.RoleUser)
	user := testutil.CreateUser(t, db, "fan", domain.RoleUser)
	cat := testutil.CreateCatalog(t, db)
	car := testutil.CreateCar(t, db, cat, owner.ID, 40)
	second := testutil.CreateCar(t, db, cat, owner.ID, 80)

	h := NewHandler(NewService(repository.NewFavoriteRepository(db), repository.NewCarRepository(db)))
	r := gin.New()
	g := r.Group("/api/v1", func(c *gin.Context) { c.Set("user_id", user.ID) })
	h.RegisterRoutes(g)

	call := func(method, path string) (int, map[string]any) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		return w.Code, body
	}
	path := func(id int64, suffix string) string {
		return "/api/v1/favorites/" + itoa(id) + suffix
	}

	code, _ := call(http.MethodPost, path(car.ID, ""))
	require.Equal(t, http.StatusCreated, code)
	code, _ = call(http.MethodPost, path(car.ID, ""))
	assert.Equal(t, http.StatusConflict, code)
	code, _ = call(http.MethodPost, path(999, ""))
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = call(http.MethodPost, path(second.ID, ""))
	require.Equal(t, http.StatusCreated, code)

	code, body := call(http.MethodGet, "/api/v1/favorites?per_page=1")
	require.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]any)
	assert.EqualValues(t, 2, data["total"])
	assert.EqualValues(t, 2, data["total_pages"])
	assert.Len(t, data["favorites"], 1)

	code, body = call(http.MethodGet, path(car.ID, "/check"))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["data"].(map[string]any)["is_favorite"])

	code, _ = call(http.MethodDelete, path(car.ID, ""))
	assert.Equal(t, http.StatusOK, code)
	code, _ = call(http.MethodDelete, path(car.ID, ""))
	assert.Equal(t, http.StatusNotFound, code)

	code, body = call(http.MethodGet, path(car.ID, "/check"))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["data"].(map[string]any)["is_favorite"])
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
