package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mbrandt-dev/klassenvote-backend/models"
	"github.com/mbrandt-dev/klassenvote-backend/repository"
	"github.com/mbrandt-dev/klassenvote-backend/services"
	"github.com/mbrandt-dev/klassenvote-backend/utils"
	"gorm.io/gorm"
)

// VoteHandler drives the voter-facing flow: code redemption, stepping
// through categories, and finalization.
type VoteHandler struct {
	Codes      *services.CodeService
	Voting     *services.VotingService
	PersonRepo repository.PersonRepositoryInterface
}

// NewVoteHandler creates a new vote handler
func NewVoteHandler(codes *services.CodeService, voting *services.VotingService, personRepo repository.PersonRepositoryInterface) *VoteHandler {
	return &VoteHandler{Codes: codes, Voting: voting, PersonRepo: personRepo}
}

// SessionView is the voter's view of their session after any operation.
type SessionView struct {
	Code               string           `json:"code"`
	Completed          bool             `json:"completed"`
	CurrentCategory    *models.Category `json:"current_category,omitempty"`
	Persons            []models.Person  `json:"persons,omitempty"`
	ProgressPercentage float64          `json:"progress_percentage"`
	CurrentStep        int              `json:"current_step"`
	TotalSteps         int              `json:"total_steps"`
	IsFinalCategory    bool             `json:"is_final_category"`
	SelectedPersonID   *uint            `json:"selected_person_id,omitempty"`
}

type RedeemPayload struct {
	Code string `json:"code"`
}

type StepPayload struct {
	Action   string `json:"action"` // "next" or "previous"
	PersonID uint   `json:"person_id,omitempty"`
}

// NormalizeCode trims and uppercases a voter-submitted token
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Redeem handles POST /api/vote/redeem: validates the code and creates or
// resumes its session.
func (vh *VoteHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	var payload RedeemPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return
	}

	token := NormalizeCode(payload.Code)
	if token == "" {
		WriteAPIError(w, http.StatusBadRequest, "invalid_payload", "Missing voting code")
		return
	}

	code, session, ok := vh.resolveSession(w, r, token)
	if !ok {
		return
	}
	vh.writeView(w, code, session)
}

// GetSession handles GET /api/vote/{code}/session
func (vh *VoteHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	token := NormalizeCode(chi.URLParam(r, "code"))
	code, session, ok := vh.resolveSession(w, r, token)
	if !ok {
		return
	}
	vh.writeView(w, code, session)
}

// Step handles POST /api/vote/{code}/step: stages a selection and advances,
// regresses, or finalizes.
func (vh *VoteHandler) Step(w http.ResponseWriter, r *http.Request) {
	token := NormalizeCode(chi.URLParam(r, "code"))
	code, session, ok := vh.resolveSession(w, r, token)
	if !ok {
		return
	}

	if session.IsCompleted {
		vh.writeView(w, code, session)
		return
	}

	var payload StepPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return
	}

	switch payload.Action {
	case "previous":
		if err := vh.Voting.Regress(session); err != nil {
			vh.writeFlowError(w, err)
			return
		}
		vh.writeView(w, code, session)

	case "next":
		currentCategory, err := vh.Voting.CurrentCategory(session)
		if err != nil {
			log.Printf("Error resolving current category for session %d: %v", session.ID, err)
			WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to resolve current category")
			return
		}
		if currentCategory == nil {
			// stepped past the end with a full ballot: finalize
			vh.finalize(w, code, session)
			return
		}

		if payload.PersonID == 0 {
			vh.writeFlowError(w, services.ErrMissingSelection)
			return
		}
		person, err := vh.PersonRepo.GetByID(payload.PersonID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				vh.writeFlowError(w, services.ErrInvalidPerson)
			} else {
				log.Printf("Error looking up person %d: %v", payload.PersonID, err)
				WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to look up person")
			}
			return
		}

		if err := vh.Voting.StageVote(session, currentCategory.ID, person.ID); err != nil {
			vh.writeFlowError(w, err)
			return
		}

		if session.IsFinalCategory() {
			vh.finalize(w, code, session)
			return
		}
		if err := vh.Voting.Advance(session); err != nil {
			vh.writeFlowError(w, err)
			return
		}
		vh.writeView(w, code, session)

	default:
		WriteAPIError(w, http.StatusBadRequest, "invalid_action", "Action must be 'next' or 'previous'")
	}
}

// resolveSession redeems the token and creates or resumes its session,
// writing the error response itself when anything fails.
func (vh *VoteHandler) resolveSession(w http.ResponseWriter, r *http.Request, token string) (*models.VotingCode, *models.VotingSession, bool) {
	code, err := vh.Codes.Redeem(token)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCode):
			WriteAPIError(w, http.StatusNotFound, "invalid_code", "Ungültiger Voting-Code.")
		case errors.Is(err, services.ErrCodeExhausted):
			log.Printf("rejected exhausted voting code %q", token)
			WriteAPIError(w, http.StatusGone, "code_exhausted", "Dieser Code wurde bereits vollständig verwendet oder ist nicht mehr gültig.")
		default:
			log.Printf("Error redeeming code %q: %v", token, err)
			WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to redeem code")
		}
		return nil, nil, false
	}

	session, err := vh.Voting.StartOrResumeSession(code, utils.ClientIP(r), truncate(r.UserAgent(), 500))
	if err != nil {
		log.Printf("Error starting session for code %s: %v", code.Code, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to start voting session")
		return nil, nil, false
	}
	return code, session, true
}

func (vh *VoteHandler) finalize(w http.ResponseWriter, code *models.VotingCode, session *models.VotingSession) {
	err := vh.Voting.Finalize(session)
	if err != nil {
		vh.writeFlowError(w, err)
		return
	}
	vh.writeView(w, code, session)
}

func (vh *VoteHandler) writeFlowError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrMissingSelection):
		WriteAPIError(w, http.StatusBadRequest, "missing_selection", "Bitte wähle eine Person aus, um fortzufahren.")
	case errors.Is(err, services.ErrInvalidPerson):
		WriteAPIError(w, http.StatusBadRequest, "invalid_person", "Ungültige Personenauswahl.")
	case errors.Is(err, services.ErrSessionCompleted):
		WriteAPIError(w, http.StatusConflict, "session_completed", "Du hast bereits mit diesem Code abgestimmt.")
	case errors.Is(err, services.ErrIncompleteBallot):
		WriteAPIError(w, http.StatusConflict, "incomplete_ballot", "Fehler beim Abschließen der Abstimmung.")
	case errors.Is(err, services.ErrFinalizationConflict):
		WriteAPIError(w, http.StatusConflict, "finalization_conflict", "Fehler beim Abschließen der Abstimmung.")
	default:
		log.Printf("Unexpected voting flow error: %v", err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Fehler beim Abschließen der Abstimmung.")
	}
}

// writeView renders the session view for the voter
func (vh *VoteHandler) writeView(w http.ResponseWriter, code *models.VotingCode, session *models.VotingSession) {
	view := SessionView{
		Code:       code.Code,
		Completed:  session.IsCompleted,
		TotalSteps: len(session.CategoryIDs),
	}

	if session.IsCompleted {
		view.ProgressPercentage = 100
		view.CurrentStep = view.TotalSteps
		writeJSON(w, http.StatusOK, view)
		return
	}

	currentCategory, err := vh.Voting.CurrentCategory(session)
	if err != nil {
		log.Printf("Error resolving current category for session %d: %v", session.ID, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to resolve current category")
		return
	}
	view.CurrentCategory = currentCategory
	view.CurrentStep = session.CurrentIndex + 1
	view.IsFinalCategory = session.IsFinalCategory()
	if view.TotalSteps > 0 {
		view.ProgressPercentage = float64(session.CurrentIndex) / float64(view.TotalSteps) * 100
	}

	if currentCategory != nil {
		if selected, ok := session.SelectedPersonID(currentCategory.ID); ok {
			view.SelectedPersonID = &selected
		}
	}

	persons, err := vh.PersonRepo.ListAll()
	if err != nil {
		log.Printf("Error listing persons for session view: %v", err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to list persons")
		return
	}
	view.Persons = persons

	writeJSON(w, http.StatusOK, view)
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
