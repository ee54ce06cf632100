package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/citas-api/internal/middleware"
	"github.com/noah-isme/citas-api/internal/models"
	appErrors "github.com/noah-isme/citas-api/pkg/errors"
	"github.com/noah-isme/citas-api/pkg/timespan"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// actingFor resolves the practitioner a write targets. Practitioners may
// only act for themselves; a zero id defaults to the caller. Administrators
// may act for anyone.
func actingFor(c *gin.Context, practitionerID int64) (int64, error) {
	claims := claimsFromContext(c)
	if claims == nil {
		return 0, appErrors.ErrUnauthorized
	}
	if claims.IsAdmin() {
		return practitionerID, nil
	}
	if claims.Role != models.RolePractitioner {
		return 0, appErrors.Clone(appErrors.ErrForbidden, "solo psicologos o administradores pueden gestionar disponibilidad")
	}
	if practitionerID == 0 {
		return claims.UserID, nil
	}
	if practitionerID != claims.UserID {
		return 0, appErrors.Clone(appErrors.ErrForbidden, "solo puedes gestionar tu propia disponibilidad")
	}
	return practitionerID, nil
}

func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "id invalido")
	}
	return id, nil
}

func queryInt64(c *gin.Context, name string) (int64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, name+" invalido")
	}
	return v, nil
}

func queryInt(c *gin.Context, name string) (int, error) {
	v, err := queryInt64(c, name)
	return int(v), err
}

func queryDate(c *gin.Context, name string) (*timespan.Date, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	d, err := timespan.ParseDate(raw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, name+" debe tener formato YYYY-MM-DD")
	}
	return &d, nil
}

func queryClock(c *gin.Context, name string) (*timespan.Clock, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	v, err := timespan.ParseClock(raw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, name+" debe tener formato HH:MM")
	}
	return &v, nil
}

func bindError(err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "cuerpo de la solicitud invalido")
}
