package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taller-inventory/models"
	"taller-inventory/utils"
)

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ping", AuthMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": CurrentUserID(c),
			"role":    CurrentRole(c),
		})
	})
	r.GET("/approve", AuthMiddleware(), Require(models.Role.CanApproveRequests), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func doGet(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	r := testRouter()
	w := doGet(r, "/ping", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareRejectsGarbageToken(t *testing.T) {
	r := testRouter()
	w := doGet(r, "/ping", "no-es-un-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	token, err := utils.GenerateToken(7, "maria", string(models.RoleWarehouse))
	require.NoError(t, err)

	r := testRouter()
	w := doGet(r, "/ping", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":7`)
	assert.Contains(t, w.Body.String(), string(models.RoleWarehouse))
}

func TestRequireBlocksInsufficientRole(t *testing.T) {
	token, err := utils.GenerateToken(3, "carlos", string(models.RoleMechanic))
	require.NoError(t, err)

	r := testRouter()
	w := doGet(r, "/approve", token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireAllowsCapableRoles(t *testing.T) {
	for _, role := range []models.Role{models.RoleWarehouse, models.RoleAdmin, models.RoleSuperUser} {
		token, err := utils.GenerateToken(1, "jefa", string(role))
		require.NoError(t, err)

		r := testRouter()
		w := doGet(r, "/approve", token)
		assert.Equal(t, http.StatusOK, w.Code, "role %s", role)
	}
}
