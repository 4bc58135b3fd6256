package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbrandt-dev/klassenvote-backend/models"
	"github.com/mbrandt-dev/klassenvote-backend/repository"
	"github.com/mbrandt-dev/klassenvote-backend/services"
	"github.com/mbrandt-dev/klassenvote-backend/testutil"
)

func insertVote(t *testing.T, f *votingFixture, codeToken string, categoryID, personID uint) {
	t.Helper()
	var code models.VotingCode
	err := f.db.Where("code = ?", codeToken).First(&code).Error
	require.NoError(t, err)
	require.NoError(t, f.db.Create(&models.Vote{
		VotingCodeID: code.ID,
		CategoryID:   categoryID,
		PersonID:     personID,
	}).Error)
}

func TestTallyRecompute(t *testing.T) {
	f := newVotingFixture(t)
	admin := testutil.CreateAdmin(t, f.db, "admin")
	cat := testutil.CreateCategory(t, f.db, "Beste Frisur")
	personA := testutil.CreatePerson(t, f.db, "Anna Schmidt")
	personB := testutil.CreatePerson(t, f.db, "Ben Weber")
	testutil.CreatePerson(t, f.db, "Clara Fischer")

	for i, personID := range []uint{personA.ID, personA.ID, personB.ID} {
		code := testutil.CreateCode(t, f.db, []string{"CODE0001", "CODE0002", "CODE0003"}[i], 1, admin.ID)
		require.NoError(t, f.db.Create(&models.Vote{
			VotingCodeID: code.ID,
			CategoryID:   cat.ID,
			PersonID:     personID,
		}).Error)
	}

	voteRepo := repository.NewGormVoteRepository(f.db)
	statRepo := repository.NewGormVoteStatisticRepository(f.db)
	tally := services.NewTallyService(voteRepo, statRepo)

	require.NoError(t, tally.Recompute(cat.ID))

	stats, err := statRepo.ListByCategory(cat.ID)
	require.NoError(t, err)
	require.Len(t, stats, 2, "only persons with votes get statistics rows")

	byPerson := map[uint]models.VoteStatistic{}
	totalCount := 0
	for _, s := range stats {
		byPerson[s.PersonID] = s
		totalCount += s.VoteCount
	}
	assert.Equal(t, 3, totalCount, "statistics counts must sum to the vote count")
	assert.Equal(t, 2, byPerson[personA.ID].VoteCount)
	assert.Equal(t, 66.67, byPerson[personA.ID].Percentage)
	assert.Equal(t, 1, byPerson[personB.ID].VoteCount)
	assert.Equal(t, 33.33, byPerson[personB.ID].Percentage)
}

func TestTallyRecomputeIsIdempotent(t *testing.T) {
	f := newVotingFixture(t)
	admin := testutil.CreateAdmin(t, f.db, "admin")
	cat := testutil.CreateCategory(t, f.db, "Beste Frisur")
	person := testutil.CreatePerson(t, f.db, "Anna Schmidt")
	testutil.CreateCode(t, f.db, "CODE0001", 1, admin.ID)
	insertVote(t, f, "CODE0001", cat.ID, person.ID)

	statRepo := repository.NewGormVoteStatisticRepository(f.db)
	tally := services.NewTallyService(repository.NewGormVoteRepository(f.db), statRepo)

	require.NoError(t, tally.Recompute(cat.ID))
	first, err := statRepo.ListByCategory(cat.ID)
	require.NoError(t, err)

	require.NoError(t, tally.Recompute(cat.ID))
	second, err := statRepo.ListByCategory(cat.ID)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].PersonID, second[i].PersonID)
		assert.Equal(t, first[i].VoteCount, second[i].VoteCount)
		assert.Equal(t, first[i].Percentage, second[i].Percentage)
	}
}

func TestTallyRecomputeDropsStaleRows(t *testing.T) {
	f := newVotingFixture(t)
	admin := testutil.CreateAdmin(t, f.db, "admin")
	cat := testutil.CreateCategory(t, f.db, "Beste Frisur")
	person := testutil.CreatePerson(t, f.db, "Anna Schmidt")
	testutil.CreateCode(t, f.db, "CODE0001", 1, admin.ID)
	insertVote(t, f, "CODE0001", cat.ID, person.ID)

	voteRepo := repository.NewGormVoteRepository(f.db)
	statRepo := repository.NewGormVoteStatisticRepository(f.db)
	tally := services.NewTallyService(voteRepo, statRepo)

	require.NoError(t, tally.Recompute(cat.ID))

	// privileged vote removal followed by a recompute empties the cache
	var vote models.Vote
	require.NoError(t, f.db.Where("category_id = ?", cat.ID).First(&vote).Error)
	require.NoError(t, voteRepo.Delete(vote.ID))
	require.NoError(t, tally.Recompute(cat.ID))

	stats, err := statRepo.ListByCategory(cat.ID)
	require.NoError(t, err)
	assert.Empty(t, stats)
}

func TestTallyRecomputeScopedToCategory(t *testing.T) {
	f := newVotingFixture(t)
	admin := testutil.CreateAdmin(t, f.db, "admin")
	catA := testutil.CreateCategory(t, f.db, "Beste Frisur")
	catB := testutil.CreateCategory(t, f.db, "Klassenclown")
	person := testutil.CreatePerson(t, f.db, "Anna Schmidt")
	testutil.CreateCode(t, f.db, "CODE0001", 2, admin.ID)
	insertVote(t, f, "CODE0001", catA.ID, person.ID)
	insertVote(t, f, "CODE0001", catB.ID, person.ID)

	statRepo := repository.NewGormVoteStatisticRepository(f.db)
	tally := services.NewTallyService(repository.NewGormVoteRepository(f.db), statRepo)
	require.NoError(t, tally.Recompute(catA.ID))
	require.NoError(t, tally.Recompute(catB.ID))

	// deleting B's vote and recomputing B must leave A's cache untouched
	require.NoError(t, f.db.Where("category_id = ?", catB.ID).Delete(&models.Vote{}).Error)
	require.NoError(t, tally.Recompute(catB.ID))

	statsA, err := statRepo.ListByCategory(catA.ID)
	require.NoError(t, err)
	require.Len(t, statsA, 1)
	assert.Equal(t, 1, statsA[0].VoteCount)
	assert.Equal(t, 100.0, statsA[0].Percentage)
}
