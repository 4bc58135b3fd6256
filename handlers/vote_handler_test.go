package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mbrandt-dev/klassenvote-backend/handlers"
	"github.com/mbrandt-dev/klassenvote-backend/models"
	"github.com/mbrandt-dev/klassenvote-backend/repository"
	"github.com/mbrandt-dev/klassenvote-backend/services"
	"github.com/mbrandt-dev/klassenvote-backend/testutil"
)

type voteAPIFixture struct {
	db     *gorm.DB
	router *chi.Mux
}

func newVoteAPIFixture(t *testing.T) *voteAPIFixture {
	t.Helper()
	db := testutil.SetupTestDB(t)

	codeRepo := repository.NewGormVotingCodeRepository(db)
	sessionRepo := repository.NewGormVotingSessionRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	personRepo := repository.NewPersonRepository(db)
	voteRepo := repository.NewGormVoteRepository(db)
	statRepo := repository.NewGormVoteStatisticRepository(db)

	tally := services.NewTallyService(voteRepo, statRepo)
	codes := services.NewCodeService(codeRepo, 8)
	voting := services.NewVotingService(db, sessionRepo, categoryRepo, tally)
	vh := handlers.NewVoteHandler(codes, voting, personRepo)

	r := chi.NewRouter()
	r.Post("/api/vote/redeem", vh.Redeem)
	r.Get("/api/vote/{code}/session", vh.GetSession)
	r.Post("/api/vote/{code}/step", vh.Step)

	return &voteAPIFixture{db: db, router: r}
}

func (f *voteAPIFixture) do(t *testing.T, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) handlers.SessionView {
	t.Helper()
	var view handlers.SessionView
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&view))
	return view
}

func decodeAPIError(t *testing.T, rec *httptest.ResponseRecorder) handlers.APIErrorDetail {
	t.Helper()
	var resp handlers.APIErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Errors, 1)
	return resp.Errors[0]
}

func TestRedeemRejections(t *testing.T) {
	f := newVoteAPIFixture(t)
	admin := testutil.CreateAdmin(t, f.db, "admin")
	testutil.CreateCategory(t, f.db, "Beste Frisur")

	spent := testutil.CreateCode(t, f.db, "SPENT123", 1, admin.ID)
	spent.CurrentUses = 1
	require.NoError(t, f.db.Save(spent).Error)

	tests := []struct {
		name       string
		code       string
		wantStatus int
		wantCode   string
	}{
		{"unknown code", "NOSUCH12", http.StatusNotFound, "invalid_code"},
		{"exhausted code", "SPENT123", http.StatusGone, "code_exhausted"},
		{"empty code", "   ", http.StatusBadRequest, "invalid_payload"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/vote/redeem", handlers.RedeemPayload{Code: tt.code})
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, decodeAPIError(t, rec).Code)
		})
	}
}

func TestRedeemNormalizesToken(t *testing.T) {
	f := newVoteAPIFixture(t)
	admin := testutil.CreateAdmin(t, f.db, "admin")
	testutil.CreateCategory(t, f.db, "Beste Frisur")
	testutil.CreateCode(t, f.db, "ABC12345", 2, admin.ID)

	rec := f.do(t, http.MethodPost, "/api/vote/redeem", handlers.RedeemPayload{Code: "  abc12345  "})
	require.Equal(t, http.StatusOK, rec.Code)

	view := decodeView(t, rec)
	assert.Equal(t, "ABC12345", view.Code)
	assert.False(t, view.Completed)
	assert.Equal(t, 1, view.CurrentStep)
	assert.Equal(t, 1, view.TotalSteps)
}

func TestStepValidation(t *testing.T) {
	f := newVoteAPIFixture(t)
	admin := testutil.CreateAdmin(t, f.db, "admin")
	testutil.CreateCategory(t, f.db, "Beste Frisur")
	testutil.CreatePerson(t, f.db, "Anna Schmidt")
	testutil.CreateCode(t, f.db, "ABC12345", 2, admin.ID)

	tests := []struct {
		name       string
		payload    handlers.StepPayload
		wantStatus int
		wantCode   string
	}{
		{"missing selection", handlers.StepPayload{Action: "next"}, http.StatusBadRequest, "missing_selection"},
		{"unknown person", handlers.StepPayload{Action: "next", PersonID: 9999}, http.StatusBadRequest, "invalid_person"},
		{"bogus action", handlers.StepPayload{Action: "sideways"}, http.StatusBadRequest, "invalid_action"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/vote/ABC12345/step", tt.payload)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, decodeAPIError(t, rec).Code)
		})
	}
}

func TestFullVotingFlow(t *testing.T) {
	f := newVoteAPIFixture(t)
	admin := testutil.CreateAdmin(t, f.db, "admin")
	catA := testutil.CreateCategory(t, f.db, "Beste Frisur")
	catB := testutil.CreateCategory(t, f.db, "Klassenclown")
	personA := testutil.CreatePerson(t, f.db, "Anna Schmidt")
	personB := testutil.CreatePerson(t, f.db, "Ben Weber")
	code := testutil.CreateCode(t, f.db, "ABC12345", 2, admin.ID)

	rec := f.do(t, http.MethodPost, "/api/vote/redeem", handlers.RedeemPayload{Code: "ABC12345"})
	require.Equal(t, http.StatusOK, rec.Code)
	view := decodeView(t, rec)
	require.NotNil(t, view.CurrentCategory)
	assert.Equal(t, catA.ID, view.CurrentCategory.ID)
	assert.Equal(t, 2, view.TotalSteps)
	assert.False(t, view.IsFinalCategory)
	assert.Len(t, view.Persons, 2)

	rec = f.do(t, http.MethodPost, "/api/vote/ABC12345/step", handlers.StepPayload{Action: "next", PersonID: personA.ID})
	require.Equal(t, http.StatusOK, rec.Code)
	view = decodeView(t, rec)
	require.NotNil(t, view.CurrentCategory)
	assert.Equal(t, catB.ID, view.CurrentCategory.ID)
	assert.Equal(t, 2, view.CurrentStep)
	assert.True(t, view.IsFinalCategory)

	// go back: the earlier selection is echoed for pre-selection
	rec = f.do(t, http.MethodPost, "/api/vote/ABC12345/step", handlers.StepPayload{Action: "previous"})
	require.Equal(t, http.StatusOK, rec.Code)
	view = decodeView(t, rec)
	require.NotNil(t, view.SelectedPersonID)
	assert.Equal(t, personA.ID, *view.SelectedPersonID)

	rec = f.do(t, http.MethodPost, "/api/vote/ABC12345/step", handlers.StepPayload{Action: "next", PersonID: personA.ID})
	require.Equal(t, http.StatusOK, rec.Code)

	// final category answer triggers finalization
	rec = f.do(t, http.MethodPost, "/api/vote/ABC12345/step", handlers.StepPayload{Action: "next", PersonID: personB.ID})
	require.Equal(t, http.StatusOK, rec.Code)
	view = decodeView(t, rec)
	assert.True(t, view.Completed)
	assert.Equal(t, 100.0, view.ProgressPercentage)

	var voteCount int64
	require.NoError(t, f.db.Model(&models.Vote{}).Count(&voteCount).Error)
	assert.Equal(t, int64(2), voteCount)

	var stored models.VotingCode
	require.NoError(t, f.db.First(&stored, code.ID).Error)
	assert.Equal(t, 1, stored.CurrentUses)

	// further steps against a completed session just echo the completed view
	rec = f.do(t, http.MethodPost, "/api/vote/ABC12345/step", handlers.StepPayload{Action: "next", PersonID: personA.ID})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeView(t, rec).Completed)

	rec = f.do(t, http.MethodGet, fmt.Sprintf("/api/vote/%s/session", "ABC12345"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeView(t, rec).Completed)
}
