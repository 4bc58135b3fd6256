package repository_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mbrandt-dev/klassenvote-backend/models"
	"github.com/mbrandt-dev/klassenvote-backend/repository"
	"github.com/mbrandt-dev/klassenvote-backend/testutil"
)

func TestVotingCodeCreateDuplicateToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	admin := testutil.CreateAdmin(t, db, "admin")
	repo := repository.NewGormVotingCodeRepository(db)

	testutil.CreateCode(t, db, "SAMECODE", 2, admin.ID)

	err := repo.Create(&models.VotingCode{Code: "SAMECODE", MaxUses: 2, IsActive: true, CreatedByUserID: admin.ID})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestGetActiveByCodeSkipsInactive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	admin := testutil.CreateAdmin(t, db, "admin")
	repo := repository.NewGormVotingCodeRepository(db)

	code := testutil.CreateCode(t, db, "ABC12345", 2, admin.ID)

	found, err := repo.GetActiveByCode("ABC12345")
	require.NoError(t, err)
	assert.Equal(t, code.ID, found.ID)

	require.NoError(t, repo.Deactivate(code.ID))

	_, err = repo.GetActiveByCode("ABC12345")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestConsumeUseTxGuards(t *testing.T) {
	db := testutil.SetupTestDB(t)
	admin := testutil.CreateAdmin(t, db, "admin")
	code := testutil.CreateCode(t, db, "ABC12345", 2, admin.ID)

	require.NoError(t, repository.ConsumeUseTx(db, code.ID))
	require.NoError(t, repository.ConsumeUseTx(db, code.ID))

	// third consume exceeds max_uses and must not match a row
	err := repository.ConsumeUseTx(db, code.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var stored models.VotingCode
	require.NoError(t, db.First(&stored, code.ID).Error)
	assert.Equal(t, 2, stored.CurrentUses, "uses must never overshoot max_uses")
}

func TestConsumeUseTxRejectsInactiveCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	admin := testutil.CreateAdmin(t, db, "admin")
	repo := repository.NewGormVotingCodeRepository(db)
	code := testutil.CreateCode(t, db, "ABC12345", 2, admin.ID)

	require.NoError(t, repo.Deactivate(code.ID))

	err := repository.ConsumeUseTx(db, code.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestVotingSessionGetOrCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	admin := testutil.CreateAdmin(t, db, "admin")
	code := testutil.CreateCode(t, db, "ABC12345", 2, admin.ID)
	repo := repository.NewGormVotingSessionRepository(db)

	session, created, err := repo.GetOrCreate(code.ID, []uint{1, 2, 3}, "10.0.0.1", "agent")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, []uint{1, 2, 3}, session.CategoryIDs)
	assert.NotNil(t, session.PendingVotes)

	// a second redemption resumes, even with a different snapshot candidate
	again, created, err := repo.GetOrCreate(code.ID, []uint{9}, "10.0.0.2", "other")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, session.ID, again.ID)
	assert.Equal(t, []uint{1, 2, 3}, again.CategoryIDs)
}

func TestSavePendingVotesRoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	admin := testutil.CreateAdmin(t, db, "admin")
	code := testutil.CreateCode(t, db, "ABC12345", 2, admin.ID)
	repo := repository.NewGormVotingSessionRepository(db)

	session, _, err := repo.GetOrCreate(code.ID, []uint{1, 2}, "", "")
	require.NoError(t, err)

	session.PendingVotes["1"] = 7
	session.PendingVotes["2"] = 9
	require.NoError(t, repo.SavePendingVotes(session))

	stored, err := repo.GetByCodeID(code.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]uint{"1": 7, "2": 9}, stored.PendingVotes)

	// overwriting an entry persists too
	session.PendingVotes["1"] = 5
	require.NoError(t, repo.SavePendingVotes(session))

	stored, err = repo.GetByCodeID(code.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(5), stored.PendingVotes["1"])
}

func TestListTopByCategoryOrdering(t *testing.T) {
	db := testutil.SetupTestDB(t)
	cat := testutil.CreateCategory(t, db, "Beste Frisur")
	anna := testutil.CreatePerson(t, db, "Anna Schmidt")
	ben := testutil.CreatePerson(t, db, "Ben Weber")
	clara := testutil.CreatePerson(t, db, "Clara Fischer")

	statRepo := repository.NewGormVoteStatisticRepository(db)
	err := statRepo.ReplaceForCategory(cat.ID, []models.VoteStatistic{
		{CategoryID: cat.ID, PersonID: ben.ID, VoteCount: 2, Percentage: 40},
		{CategoryID: cat.ID, PersonID: anna.ID, VoteCount: 2, Percentage: 40},
		{CategoryID: cat.ID, PersonID: clara.ID, VoteCount: 1, Percentage: 20},
	})
	require.NoError(t, err)

	ranked, err := statRepo.ListTopByCategory(cat.ID, 2)
	require.NoError(t, err)
	require.Len(t, ranked, 2)

	// ties break on first name ascending
	assert.Equal(t, "Anna Schmidt", ranked[0].PersonName)
	assert.Equal(t, 2, ranked[0].VoteCount)
	assert.Equal(t, "Ben Weber", ranked[1].PersonName)
}

func TestPersonListAllOrdering(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.CreatePerson(t, db, "Clara Fischer")
	testutil.CreatePerson(t, db, "Anna Schmidt")
	testutil.CreatePerson(t, db, "Ben Weber")

	repo := repository.NewPersonRepository(db)
	people, err := repo.ListAll()
	require.NoError(t, err)
	require.Len(t, people, 3)
	assert.Equal(t, "Anna Schmidt", people[0].Name)
	assert.Equal(t, "Ben Weber", people[1].Name)
	assert.Equal(t, "Clara Fischer", people[2].Name)
}
