package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"regexp"

	"github.com/google/uuid"
	"github.com/mbrandt-dev/klassenvote-backend/models"
	"github.com/mbrandt-dev/klassenvote-backend/services"
	"github.com/mbrandt-dev/klassenvote-backend/workers"
)

var emailListSeparator = regexp.MustCompile(`[\n,;\s]+`)

// InviteHandler issues single-use codes for a list of email addresses and
// delivers them through the invite mail pool.
type InviteHandler struct {
	Codes  *services.CodeService
	Mailer *workers.InviteMailer
}

// NewInviteHandler creates a new invite handler
func NewInviteHandler(codes *services.CodeService, inviteMailer *workers.InviteMailer) *InviteHandler {
	return &InviteHandler{Codes: codes, Mailer: inviteMailer}
}

type SendInvitesPayload struct {
	// Emails is a free-form list split on newlines, commas, semicolons and spaces
	Emails string `json:"emails"`
}

type SendInvitesResponse struct {
	BatchID      string   `json:"batch_id"`
	SentCount    int      `json:"sent_count"`
	FailedEmails []string `json:"failed_emails"`
}

// SendInvites handles POST /api/admin/invites. Every address gets its own
// maxUses=1 code; per-address failures are collected and reported, never
// treated as a batch failure.
func (h *InviteHandler) SendInvites(w http.ResponseWriter, r *http.Request) {
	currentUser, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		http.Error(w, "Could not identify requesting user", http.StatusInternalServerError)
		return
	}

	var payload SendInvitesPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}

	emails := make([]string, 0)
	for _, email := range emailListSeparator.Split(payload.Emails, -1) {
		if email != "" {
			emails = append(emails, email)
		}
	}
	if len(emails) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Bitte geben Sie mindestens eine E-Mail-Adresse ein."})
		return
	}

	batchID := uuid.New().String()
	jobs := make([]workers.InviteJob, 0, len(emails))
	failed := make([]string, 0)

	for _, email := range emails {
		email := email
		code, err := h.Codes.Issue(currentUser.ID, 1, &email)
		if err != nil {
			log.Printf("invite batch %s: failed to issue code for %s: %v", batchID, email, err)
			failed = append(failed, email)
			continue
		}
		jobs = append(jobs, workers.InviteJob{Email: email, Code: code.Code})
	}

	results := h.Mailer.SendBatch(jobs)
	sent := 0
	for _, res := range results {
		if res.Err != nil {
			failed = append(failed, res.Email)
		} else {
			sent++
		}
	}

	log.Printf("invite batch %s: %d sent, %d failed of %d addresses", batchID, sent, len(failed), len(emails))
	writeJSON(w, http.StatusOK, SendInvitesResponse{
		BatchID:      batchID,
		SentCount:    sent,
		FailedEmails: failed,
	})
}
