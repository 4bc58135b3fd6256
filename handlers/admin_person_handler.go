package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mbrandt-dev/klassenvote-backend/models"
	"github.com/mbrandt-dev/klassenvote-backend/repository"
	"gorm.io/gorm"
)

// AdminPersonHandler provides CRUD for candidates
type AdminPersonHandler struct {
	PersonRepo repository.PersonRepositoryInterface
}

// NewAdminPersonHandler creates a new admin person handler
func NewAdminPersonHandler(personRepo repository.PersonRepositoryInterface) *AdminPersonHandler {
	return &AdminPersonHandler{PersonRepo: personRepo}
}

func (ph *AdminPersonHandler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing required field: name"})
		return
	}

	person := models.Person{Name: strings.TrimSpace(req.Name)}
	if err := ph.PersonRepo.Create(&person); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "A person with this name already exists"})
			return
		}
		log.Printf("Error creating person '%s': %v", req.Name, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to create person"})
		return
	}

	writeJSON(w, http.StatusCreated, person)
}

func (ph *AdminPersonHandler) ListPeople(w http.ResponseWriter, r *http.Request) {
	people, err := ph.PersonRepo.ListAll()
	if err != nil {
		log.Printf("Error listing people: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve people"})
		return
	}
	if people == nil {
		people = []models.Person{}
	}
	writeJSON(w, http.StatusOK, people)
}

func (ph *AdminPersonHandler) GetPerson(w http.ResponseWriter, r *http.Request) {
	personID, ok := parseIDParam(w, r, "person_id")
	if !ok {
		return
	}

	person, err := ph.PersonRepo.GetByID(personID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Person not found"})
		} else {
			log.Printf("Error getting person %d: %v", personID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve person"})
		}
		return
	}
	writeJSON(w, http.StatusOK, person)
}

func (ph *AdminPersonHandler) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	personID, ok := parseIDParam(w, r, "person_id")
	if !ok {
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing required field: name"})
		return
	}

	err := ph.PersonRepo.Update(&models.Person{ID: personID, Name: strings.TrimSpace(req.Name)})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Person not found"})
		} else {
			log.Printf("Error updating person %d: %v", personID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to update person"})
		}
		return
	}

	updated, err := ph.PersonRepo.GetByID(personID)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Person updated successfully"})
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (ph *AdminPersonHandler) DeletePerson(w http.ResponseWriter, r *http.Request) {
	personID, ok := parseIDParam(w, r, "person_id")
	if !ok {
		return
	}

	err := ph.PersonRepo.Delete(personID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Person not found"})
		} else {
			log.Printf("Error deleting person %d: %v", personID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to delete person"})
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseIDParam parses a uint URL parameter, writing the error response itself
func parseIDParam(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	idStr := chi.URLParam(r, name)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid ID format"})
		return 0, false
	}
	return uint(id), true
}
