package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/citas-api/internal/models"
	appErrors "github.com/noah-isme/citas-api/pkg/errors"
	"github.com/noah-isme/citas-api/pkg/response"
)

type validatorStub struct {
	claims *models.JWTClaims
}

func (v validatorStub) ValidateToken(token string) (*models.JWTClaims, error) {
	if token != "good" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token invalido")
	}
	return v.claims, nil
}

func newProtectedRouter(claims *models.JWTClaims, allowed ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/dates/cliente/:id", JWT(validatorStub{claims: claims}), RBAC(allowed...), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func serve(router *gin.Engine, path, auth string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestJWTRejectsMissingAndMalformedHeaders(t *testing.T) {
	router := newProtectedRouter(&models.JWTClaims{UserID: 1, Role: models.RoleAdmin}, string(models.RoleAdmin))

	rec := serve(router, "/dates/cliente/1", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", rec.Header().Get(response.ErrorCodeHeader))

	rec = serve(router, "/dates/cliente/1", "Token good")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(router, "/dates/cliente/1", "Bearer bad")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "token invalido", rec.Body.String())
}

func TestRBACAllowsRoles(t *testing.T) {
	router := newProtectedRouter(&models.JWTClaims{UserID: 5, Role: models.RolePractitioner},
		string(models.RolePractitioner), string(models.RoleAdmin))

	rec := serve(router, "/dates/cliente/99", "Bearer good")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRBACSelf(t *testing.T) {
	router := newProtectedRouter(&models.JWTClaims{UserID: 42, Role: models.RoleStudent},
		Self, string(models.RoleAdmin))

	assert.Equal(t, http.StatusNoContent, serve(router, "/dates/cliente/42", "Bearer good").Code)

	rec := serve(router, "/dates/cliente/43", "Bearer good")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", rec.Header().Get(response.ErrorCodeHeader))

	assert.Equal(t, http.StatusForbidden, serve(router, "/dates/cliente/abc", "Bearer good").Code)
}

type observerStub struct {
	mu    sync.Mutex
	paths []string
	codes []int
}

func (o *observerStub) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.paths = append(o.paths, path)
	o.codes = append(o.codes, status)
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	observer := &observerStub{}
	router := gin.New()
	router.Use(Metrics(observer))
	router.GET("/dates/citas/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(router, "/dates/citas/12", "")
	serve(router, "/nope", "")

	assert.Equal(t, []string{"/dates/citas/:id", "unmatched"}, observer.paths)
	assert.Equal(t, []int{http.StatusOK, http.StatusNotFound}, observer.codes)
}
