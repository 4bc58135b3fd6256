package handlers

import (
	"log"
	"net/http"

	"github.com/mbrandt-dev/klassenvote-backend/repository"
)

// ResultsHandler serves the admin results view and the public live counter
type ResultsHandler struct {
	CategoryRepo repository.CategoryRepositoryInterface
	VoteRepo     repository.VoteRepository
	StatRepo     repository.VoteStatisticRepository
	SessionRepo  repository.VotingSessionRepository
	TopN         int
}

// NewResultsHandler creates a new results handler
func NewResultsHandler(
	categoryRepo repository.CategoryRepositoryInterface,
	voteRepo repository.VoteRepository,
	statRepo repository.VoteStatisticRepository,
	sessionRepo repository.VotingSessionRepository,
	topN int,
) *ResultsHandler {
	return &ResultsHandler{
		CategoryRepo: categoryRepo,
		VoteRepo:     voteRepo,
		StatRepo:     statRepo,
		SessionRepo:  sessionRepo,
		TopN:         topN,
	}
}

// CategoryResults is the tally view for one category.
type CategoryResults struct {
	CategoryID    uint                         `json:"category_id"`
	CategoryTitle string                       `json:"category_title"`
	TopResults    []repository.RankedStatistic `json:"top_results"`
	TotalVotes    int64                        `json:"total_votes"`
}

// GetResults handles GET /api/results (admin): top-N statistics per active
// category, ordered by vote count descending then first name ascending.
func (rh *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	categories, err := rh.CategoryRepo.ListActive()
	if err != nil {
		log.Printf("Error listing active categories for results: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve results"})
		return
	}

	results := make([]CategoryResults, 0, len(categories))
	for _, category := range categories {
		top, err := rh.StatRepo.ListTopByCategory(category.ID, rh.TopN)
		if err != nil {
			log.Printf("Error listing top statistics for category %d: %v", category.ID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve results"})
			return
		}
		total, err := rh.VoteRepo.CountByCategory(category.ID)
		if err != nil {
			log.Printf("Error counting votes for category %d: %v", category.ID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve results"})
			return
		}
		if top == nil {
			top = []repository.RankedStatistic{}
		}
		results = append(results, CategoryResults{
			CategoryID:    category.ID,
			CategoryTitle: category.Title,
			TopResults:    top,
			TotalVotes:    total,
		})
	}

	writeJSON(w, http.StatusOK, results)
}

// LiveCount handles GET /api/live/count (public): the number of completed
// voting sessions, polled by the live results page.
func (rh *ResultsHandler) LiveCount(w http.ResponseWriter, r *http.Request) {
	count, err := rh.SessionRepo.CountCompleted()
	if err != nil {
		log.Printf("Error counting completed sessions: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve live count"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"total_votes": count})
}
