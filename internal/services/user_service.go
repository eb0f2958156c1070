package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ddhiman-alt/nearpaws/internal/apperror"
	"github.com/ddhiman-alt/nearpaws/internal/auth"
	"github.com/ddhiman-alt/nearpaws/internal/models"
	"github.com/ddhiman-alt/nearpaws/internal/store"
)

// ErrEmailExists is returned when an attempt is made to use an email that already exists.
var ErrEmailExists = apperror.Conflict("User already exists")

// IUserService covers the account operations the API and the seed need.
// Registration and login live outside this service.
type IUserService interface {
	CreateUser(ctx context.Context, in UserInput) (*models.User, error)
	FindByID(ctx context.Context, userID primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// UserInput is a new account.
type UserInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Location *LocationInput
}

type userService struct {
	users  store.UserStore
	logger *slog.Logger
	now    func() time.Time
}

func NewUserService(users store.UserStore, logger *slog.Logger) IUserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &userService{users: users, logger: logger, now: time.Now}
}

const minPasswordLength = 6

func (s *userService) CreateUser(ctx context.Context, in UserInput) (*models.User, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "Please add a name")
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, apperror.ValidationFailed("email", "Please add a valid email")
	}
	if len(in.Password) < minPasswordLength {
		return nil, apperror.ValidationFailed("password", "Password must be at least 6 characters")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Base:         models.NewBase(s.now()),
		Name:         name,
		Email:        email,
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: hash,
	}
	if in.Location != nil {
		loc, err := in.Location.toLocation()
		if err != nil {
			return nil, err
		}
		if lat, lng, _ := loc.LatLng(); !models.ValidCoordinates(lat, lng) {
			return nil, apperror.ValidationFailed("location", "Coordinates out of range")
		}
		user.Location = &loc
	}

	if err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	s.logger.InfoContext(ctx, "user created", "user_id", user.ID.Hex())
	return user, nil
}

func (s *userService) FindByID(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperror.NotFound("User")
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperror.NotFound("User")
		}
		return nil, err
	}
	return user, nil
}
