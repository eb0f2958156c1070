package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ddhiman-alt/nearpaws/internal/apperror"
	"github.com/ddhiman-alt/nearpaws/internal/auth"
	"github.com/ddhiman-alt/nearpaws/internal/logging"
	"github.com/ddhiman-alt/nearpaws/internal/models"
)

const (
	// ContextKeyUserID holds the authenticated user's primitive.ObjectID.
	ContextKeyUserID = "userID"
	// ContextKeyUser holds the authenticated *models.User.
	ContextKeyUser = "user"
)

// UserFinder resolves the user a token was issued for.
type UserFinder interface {
	FindByID(ctx context.Context, userID primitive.ObjectID) (*models.User, error)
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": message})
}

// AuthMiddleware verifies the bearer JWT and loads its user. users may be nil,
// in which case a valid token is enough.
func AuthMiddleware(jwtSecret string, users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			unauthorized(c, "Not authorized, no token")
			return
		}

		claims, err := auth.ValidateJWT(parts[1], jwtSecret)
		if err != nil {
			LoggerFrom(c).DebugContext(c.Request.Context(), "rejected bearer token", logging.Err(err))
			unauthorized(c, "Not authorized, token failed")
			return
		}
		userID, err := claims.ObjectID()
		if err != nil {
			unauthorized(c, "Not authorized, token failed")
			return
		}

		if users != nil {
			user, err := users.FindByID(c.Request.Context(), userID)
			if err != nil {
				if errors.Is(err, apperror.ErrNotFound) {
					unauthorized(c, "Not authorized, user not found")
					return
				}
				_ = c.Error(err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server Error"})
				return
			}
			c.Set(ContextKeyUser, user)
		}

		c.Set(ContextKeyUserID, userID)
		c.Next()
	}
}

// UserID returns the id AuthMiddleware stored, ok is false on public routes.
func UserID(c *gin.Context) (primitive.ObjectID, bool) {
	v, exists := c.Get(ContextKeyUserID)
	if !exists {
		return primitive.NilObjectID, false
	}
	id, ok := v.(primitive.ObjectID)
	return id, ok
}
