package services

import (
	"math"

	"github.com/mbrandt-dev/klassenvote-backend/models"
	"github.com/mbrandt-dev/klassenvote-backend/repository"
)

// TallyService maintains the derive-on-write statistics cache. The cache is
// never updated incrementally: every recompute reads the category's
// permanent votes and replaces the full statistics set.
type TallyService struct {
	voteRepo repository.VoteRepository
	statRepo repository.VoteStatisticRepository
}

// NewTallyService creates a new tally service
func NewTallyService(voteRepo repository.VoteRepository, statRepo repository.VoteStatisticRepository) *TallyService {
	return &TallyService{voteRepo: voteRepo, statRepo: statRepo}
}

// Recompute regenerates the statistics rows for a category from its vote
// records. Only persons with at least one vote get a row. Running it twice
// with no new votes yields identical output.
func (t *TallyService) Recompute(categoryID uint) error {
	counts, err := t.voteRepo.CountsByPerson(categoryID)
	if err != nil {
		return err
	}

	total := 0
	for _, c := range counts {
		total += c.Count
	}

	stats := make([]models.VoteStatistic, 0, len(counts))
	for _, c := range counts {
		percentage := 0.0
		if total > 0 {
			percentage = roundTwoDecimals(float64(c.Count) / float64(total) * 100)
		}
		stats = append(stats, models.VoteStatistic{
			CategoryID: categoryID,
			PersonID:   c.PersonID,
			VoteCount:  c.Count,
			Percentage: percentage,
		})
	}

	return t.statRepo.ReplaceForCategory(categoryID, stats)
}

func roundTwoDecimals(v float64) float64 {
	return math.Round(v*100) / 100
}
