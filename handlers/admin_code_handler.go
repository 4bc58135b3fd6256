package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/mbrandt-dev/klassenvote-backend/models"
	"github.com/mbrandt-dev/klassenvote-backend/repository"
	"github.com/mbrandt-dev/klassenvote-backend/services"
	"gorm.io/gorm"
)

// AdminCodeHandler manages voting codes and the privileged vote override
type AdminCodeHandler struct {
	CodeRepo        repository.VotingCodeRepository
	VoteRepo        repository.VoteRepository
	Codes           *services.CodeService
	DefaultCodeUses int
}

// NewAdminCodeHandler creates a new admin code handler
func NewAdminCodeHandler(codeRepo repository.VotingCodeRepository, voteRepo repository.VoteRepository, codes *services.CodeService, defaultCodeUses int) *AdminCodeHandler {
	return &AdminCodeHandler{CodeRepo: codeRepo, VoteRepo: voteRepo, Codes: codes, DefaultCodeUses: defaultCodeUses}
}

func (h *AdminCodeHandler) ListCodes(w http.ResponseWriter, r *http.Request) {
	codes, err := h.CodeRepo.ListAll()
	if err != nil {
		log.Printf("Error listing voting codes: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve voting codes"})
		return
	}
	if codes == nil {
		codes = []models.VotingCode{}
	}
	writeJSON(w, http.StatusOK, codes)
}

type GenerateCodesPayload struct {
	Count   int  `json:"count"`
	MaxUses *int `json:"max_uses,omitempty"`
}

// GenerateCodes handles POST /api/admin/codes: issues a batch of new codes
func (h *AdminCodeHandler) GenerateCodes(w http.ResponseWriter, r *http.Request) {
	currentUser, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		http.Error(w, "Could not identify requesting user", http.StatusInternalServerError)
		return
	}

	var payload GenerateCodesPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}
	if payload.Count <= 0 {
		payload.Count = 10
	}
	maxUses := h.DefaultCodeUses
	if payload.MaxUses != nil && *payload.MaxUses > 0 {
		maxUses = *payload.MaxUses
	}

	codes, err := h.Codes.IssueBatch(currentUser.ID, maxUses, payload.Count)
	if err != nil {
		log.Printf("Error generating %d voting codes: %v", payload.Count, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to generate voting codes"})
		return
	}
	writeJSON(w, http.StatusCreated, codes)
}

func (h *AdminCodeHandler) DeactivateCode(w http.ResponseWriter, r *http.Request) {
	codeID, ok := parseIDParam(w, r, "code_id")
	if !ok {
		return
	}

	if err := h.CodeRepo.Deactivate(codeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Voting code not found"})
		} else {
			log.Printf("Error deactivating voting code %d: %v", codeID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to deactivate voting code"})
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminCodeHandler) DeleteCode(w http.ResponseWriter, r *http.Request) {
	codeID, ok := parseIDParam(w, r, "code_id")
	if !ok {
		return
	}

	if err := h.CodeRepo.Delete(codeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Voting code not found"})
		} else {
			log.Printf("Error deleting voting code %d: %v", codeID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to delete voting code"})
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteVote handles DELETE /api/admin/votes/{vote_id}: the privileged
// override. Votes are otherwise immutable.
func (h *AdminCodeHandler) DeleteVote(w http.ResponseWriter, r *http.Request) {
	voteID, ok := parseIDParam(w, r, "vote_id")
	if !ok {
		return
	}

	if err := h.VoteRepo.Delete(voteID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Vote not found"})
		} else {
			log.Printf("Error deleting vote %d: %v", voteID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to delete vote"})
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
