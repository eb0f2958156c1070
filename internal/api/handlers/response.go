package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ddhiman-alt/nearpaws/internal/api/middleware"
	"github.com/ddhiman-alt/nearpaws/internal/apperror"
	"github.com/ddhiman-alt/nearpaws/internal/models"
	"github.com/ddhiman-alt/nearpaws/internal/services"
)

const (
	// HeaderDegraded marks a nearby response that was served by the plain listing.
	HeaderDegraded = "X-NearPaws-Degraded"

	serverErrorMessage = "Server Error"
)

var errInvalidBody = apperror.ValidationFailed("", "Invalid request body")

// statusOf maps the apperror kinds onto HTTP statuses; anything else is a 500.
func statusOf(err error) (int, *apperror.AppError) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError, nil
	}
	switch {
	case errors.Is(appErr, apperror.ErrValidation), errors.Is(appErr, apperror.ErrConflict):
		return http.StatusBadRequest, appErr
	case errors.Is(appErr, apperror.ErrNotFound):
		return http.StatusNotFound, appErr
	case errors.Is(appErr, apperror.ErrForbidden):
		return http.StatusForbidden, appErr
	case errors.Is(appErr, apperror.ErrUnauthorized):
		return http.StatusUnauthorized, appErr
	}
	return http.StatusInternalServerError, nil
}

// respondError writes the error body. Internal errors are attached to the
// context for the request logger and never shown to the client.
func respondError(c *gin.Context, err error) {
	status, appErr := statusOf(err)
	if appErr == nil {
		_ = c.Error(err)
		c.JSON(status, gin.H{"success": false, "message": serverErrorMessage})
		return
	}

	body := gin.H{"success": false, "message": appErr.Message}
	if appErr.Field != "" && errors.Is(appErr, apperror.ErrValidation) {
		body["field"] = appErr.Field
	}
	c.JSON(status, body)
}

func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func respondCount[T any](c *gin.Context, items []T) {
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(items), "data": items})
}

func respondPage(c *gin.Context, res *services.PetSearchResult) {
	items := res.Items
	if items == nil {
		items = []models.PetResult{}
	}
	body := gin.H{
		"success":     true,
		"count":       len(items),
		"total":       res.Total,
		"totalPages":  res.TotalPages(),
		"currentPage": res.Pagination.Page,
		"data":        items,
	}
	if res.Degraded {
		body["degraded"] = true
		c.Header(HeaderDegraded, "fallback")
	}
	c.JSON(http.StatusOK, body)
}

// bindBody decodes a JSON body; an empty body decodes to the zero value.
func bindBody(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return errInvalidBody
	}
	return nil
}

// currentUser returns the authenticated user id or writes a 401.
func currentUser(c *gin.Context) (primitive.ObjectID, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Not authorized, no token"})
	}
	return id, ok
}
