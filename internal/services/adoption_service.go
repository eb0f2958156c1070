package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ddhiman-alt/nearpaws/internal/apperror"
	"github.com/ddhiman-alt/nearpaws/internal/logging"
	"github.com/ddhiman-alt/nearpaws/internal/models"
	"github.com/ddhiman-alt/nearpaws/internal/notify"
	"github.com/ddhiman-alt/nearpaws/internal/store"
)

// IAdoptionService defines the adoption request workflow.
type IAdoptionService interface {
	CreateRequest(ctx context.Context, requesterID primitive.ObjectID, petID, message string) (*models.AdoptionRequestDetail, error)
	ReceivedRequests(ctx context.Context, ownerID primitive.ObjectID) ([]models.AdoptionRequestDetail, error)
	SentRequests(ctx context.Context, requesterID primitive.ObjectID) ([]models.AdoptionRequestDetail, error)
	UpdateRequestStatus(ctx context.Context, requestID string, userID primitive.ObjectID, status string) (*models.AdoptionRequestDetail, error)
	WithdrawRequest(ctx context.Context, requestID string, userID primitive.ObjectID) error
}

var (
	errRequestNotFound        = apperror.NotFound("Request")
	errPetUnavailable         = apperror.ValidationFailed("petId", "This pet is no longer available for adoption")
	errOwnPet                 = apperror.ValidationFailed("petId", "You cannot request to adopt your own pet")
	errAlreadyRequested       = apperror.Conflict("You have already requested to adopt this pet")
	errInvalidDecision        = apperror.ValidationFailed("status", `Invalid status. Use "accepted" or "rejected"`)
	errRequestUpdateForbidden = apperror.Forbidden("Not authorized to update this request")
	errWithdrawForbidden      = apperror.Forbidden("Not authorized to withdraw this request")
)

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, notify.Event) {}

type adoptionService struct {
	pets      store.PetStore
	requests  store.AdoptionStore
	publisher notify.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewAdoptionService(pets store.PetStore, requests store.AdoptionStore, publisher notify.Publisher, logger *slog.Logger) IAdoptionService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &adoptionService{
		pets:      pets,
		requests:  requests,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func parseRequestID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, errRequestNotFound
	}
	return oid, nil
}

func (s *adoptionService) event(t notify.EventType, r *models.AdoptionRequest, petName string) notify.Event {
	return notify.Event{
		Type:        t,
		RequestID:   r.ID,
		PetID:       r.Pet,
		PetName:     petName,
		RequesterID: r.Requester,
		OwnerID:     r.Owner,
		Message:     r.Message,
		At:          s.now().UTC(),
	}
}

// petName is best effort, events still go out for deleted pets.
func (s *adoptionService) petName(ctx context.Context, id primitive.ObjectID) string {
	pet, err := s.pets.FindByID(ctx, id)
	if err != nil {
		return ""
	}
	return pet.Name
}

func (s *adoptionService) CreateRequest(ctx context.Context, requesterID primitive.ObjectID, petID, message string) (*models.AdoptionRequestDetail, error) {
	petID = strings.TrimSpace(petID)
	message = strings.TrimSpace(message)
	switch {
	case petID == "":
		return nil, apperror.ValidationFailed("petId", "Pet ID is required")
	case message == "":
		return nil, apperror.ValidationFailed("message", "Message is required")
	case utf8.RuneCountInString(message) > models.MaxAdoptionMessageLength:
		return nil, apperror.ValidationFailed("message", "Message cannot exceed 500 characters")
	}

	pid, err := parsePetID(petID)
	if err != nil {
		return nil, err
	}
	pet, err := s.pets.FindByID(ctx, pid)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errPetNotFound
		}
		return nil, fmt.Errorf("failed to load pet %s: %w", petID, err)
	}
	if pet.Status != models.PetStatusAvailable {
		return nil, errPetUnavailable
	}
	if pet.Owner == requesterID {
		return nil, errOwnPet
	}

	exists, err := s.requests.Exists(ctx, pet.ID, requesterID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errAlreadyRequested
	}

	req := &models.AdoptionRequest{
		Base:      models.NewBase(s.now()),
		Pet:       pet.ID,
		Requester: requesterID,
		Owner:     pet.Owner,
		Message:   message,
		Status:    models.AdoptionStatusPending,
	}
	// A concurrent duplicate slips past Exists and is caught by the unique index.
	if err := s.requests.Insert(ctx, req); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, errAlreadyRequested
		}
		return nil, fmt.Errorf("failed to create adoption request: %w", err)
	}

	s.logger.InfoContext(ctx, "adoption request created", "request_id", req.ID.Hex(), "pet_id", pet.ID.Hex(), "requester_id", requesterID.Hex())
	s.publisher.Publish(ctx, s.event(notify.AdoptionRequested, req, pet.Name))

	return s.requests.FindDetailByID(ctx, req.ID)
}

func (s *adoptionService) ReceivedRequests(ctx context.Context, ownerID primitive.ObjectID) ([]models.AdoptionRequestDetail, error) {
	return s.requests.ListReceived(ctx, ownerID)
}

func (s *adoptionService) SentRequests(ctx context.Context, requesterID primitive.ObjectID) ([]models.AdoptionRequestDetail, error) {
	return s.requests.ListSent(ctx, requesterID)
}

func (s *adoptionService) loadRequest(ctx context.Context, requestID string) (*models.AdoptionRequest, error) {
	id, err := parseRequestID(requestID)
	if err != nil {
		return nil, err
	}
	req, err := s.requests.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errRequestNotFound
		}
		return nil, err
	}
	return req, nil
}

// UpdateRequestStatus records the owner's decision. Accepting also marks the
// pet pending; that second write is not atomic with the first and a failure
// there leaves the request accepted.
func (s *adoptionService) UpdateRequestStatus(ctx context.Context, requestID string, userID primitive.ObjectID, status string) (*models.AdoptionRequestDetail, error) {
	decision := models.AdoptionStatus(status)
	if !decision.IsDecision() {
		return nil, errInvalidDecision
	}
	req, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Owner != userID {
		return nil, errRequestUpdateForbidden
	}

	updated, err := s.requests.SetStatus(ctx, req.ID, decision, s.now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errRequestNotFound
		}
		return nil, fmt.Errorf("failed to update adoption request %s: %w", req.ID.Hex(), err)
	}

	petName := ""
	eventType := notify.AdoptionRejected
	if decision == models.AdoptionStatusAccepted {
		eventType = notify.AdoptionAccepted
		pet, err := s.pets.SetStatus(ctx, req.Pet, models.PetStatusPending, s.now())
		if err != nil {
			s.logger.ErrorContext(ctx, "request accepted but pet status not updated",
				"request_id", req.ID.Hex(),
				"pet_id", req.Pet.Hex(),
				logging.Err(err),
			)
		} else {
			petName = pet.Name
		}
	}
	if petName == "" {
		petName = s.petName(ctx, req.Pet)
	}

	s.logger.InfoContext(ctx, "adoption request decided", "request_id", req.ID.Hex(), "status", decision)
	s.publisher.Publish(ctx, s.event(eventType, updated, petName))

	return s.requests.FindDetailByID(ctx, req.ID)
}

func (s *adoptionService) WithdrawRequest(ctx context.Context, requestID string, userID primitive.ObjectID) error {
	req, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if req.Requester != userID {
		return errWithdrawForbidden
	}

	petName := s.petName(ctx, req.Pet)
	if err := s.requests.Delete(ctx, req.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errRequestNotFound
		}
		return fmt.Errorf("failed to withdraw adoption request %s: %w", req.ID.Hex(), err)
	}

	s.logger.InfoContext(ctx, "adoption request withdrawn", "request_id", req.ID.Hex())
	s.publisher.Publish(ctx, s.event(notify.AdoptionWithdrawn, req, petName))
	return nil
}
