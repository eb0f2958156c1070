package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ddhiman-alt/nearpaws/internal/search"
	"github.com/ddhiman-alt/nearpaws/internal/services"
)

// PetHandler serves /api/pets.
type PetHandler struct {
	petService services.IPetService
}

func NewPetHandler(petService services.IPetService) *PetHandler {
	return &PetHandler{petService: petService}
}

// List handles GET /api/pets.
func (h *PetHandler) List(c *gin.Context) {
	q, err := search.ParseListQuery(c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}
	res, err := h.petService.ListPets(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, res)
}

// Nearby handles GET /api/pets/nearby.
func (h *PetHandler) Nearby(c *gin.Context) {
	q, err := search.ParseNearbyQuery(c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}
	res, err := h.petService.NearbyPets(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	respondPage(c, res)
}

func (h *PetHandler) Get(c *gin.Context) {
	pet, err := h.petService.GetPet(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, pet)
}

func (h *PetHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var in services.PetInput
	if err := bindBody(c, &in); err != nil {
		respondError(c, err)
		return
	}
	pet, err := h.petService.CreatePet(c.Request.Context(), userID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, pet)
}

func (h *PetHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var in services.PetInput
	if err := bindBody(c, &in); err != nil {
		respondError(c, err)
		return
	}
	pet, err := h.petService.UpdatePet(c.Request.Context(), c.Param("id"), userID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, pet)
}

func (h *PetHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.petService.DeletePet(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, gin.H{})
}

// MyPets handles GET /api/pets/user/my-pets.
func (h *PetHandler) MyPets(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	pets, err := h.petService.MyPets(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCount(c, pets)
}

type statusBody struct {
	Status string `json:"status"`
}

// UpdateStatus handles PATCH /api/pets/:id/status.
func (h *PetHandler) UpdateStatus(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var body statusBody
	if err := bindBody(c, &body); err != nil {
		respondError(c, err)
		return
	}
	pet, err := h.petService.UpdatePetStatus(c.Request.Context(), c.Param("id"), userID, body.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, pet)
}
