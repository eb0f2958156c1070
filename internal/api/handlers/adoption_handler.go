package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ddhiman-alt/nearpaws/internal/services"
)

// AdoptionHandler serves /api/adoptions. Every route is authenticated.
type AdoptionHandler struct {
	adoptionService services.IAdoptionService
}

func NewAdoptionHandler(adoptionService services.IAdoptionService) *AdoptionHandler {
	return &AdoptionHandler{adoptionService: adoptionService}
}

type createRequestBody struct {
	PetID   string `json:"petId"`
	Message string `json:"message"`
}

func (h *AdoptionHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var body createRequestBody
	if err := bindBody(c, &body); err != nil {
		respondError(c, err)
		return
	}
	req, err := h.adoptionService.CreateRequest(c.Request.Context(), userID, body.PetID, body.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, req)
}

func (h *AdoptionHandler) Received(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	reqs, err := h.adoptionService.ReceivedRequests(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCount(c, reqs)
}

func (h *AdoptionHandler) Sent(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	reqs, err := h.adoptionService.SentRequests(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCount(c, reqs)
}

// UpdateStatus handles PATCH /api/adoptions/:id/status (owner only).
func (h *AdoptionHandler) UpdateStatus(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var body statusBody
	if err := bindBody(c, &body); err != nil {
		respondError(c, err)
		return
	}
	req, err := h.adoptionService.UpdateRequestStatus(c.Request.Context(), c.Param("id"), userID, body.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, req)
}

// Withdraw handles DELETE /api/adoptions/:id (requester only).
func (h *AdoptionHandler) Withdraw(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.adoptionService.WithdrawRequest(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{})
}
