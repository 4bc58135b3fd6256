// Package testutil provides shared helpers for package tests: an isolated
// in-memory database per test plus fixture constructors.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mbrandt-dev/klassenvote-backend/models"
)

// SetupTestDB opens a fresh in-memory sqlite database named after the test
// and migrates the full schema. The database lives until the test ends.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "failed to open test database")

	err = db.AutoMigrate(
		&models.Person{},
		&models.Category{},
		&models.VotingCode{},
		&models.VotingSession{},
		&models.Vote{},
		&models.VoteStatistic{},
		&models.User{},
	)
	require.NoError(t, err, "failed to migrate test database")

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// CreateAdmin inserts an admin user with a known password
func CreateAdmin(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username}
	require.NoError(t, user.SetPassword("test-password"))
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreatePerson inserts a candidate; first/last name derive from the name
func CreatePerson(t *testing.T, db *gorm.DB, name string) *models.Person {
	t.Helper()
	person := &models.Person{Name: name}
	require.NoError(t, db.Create(person).Error)
	return person
}

// CreateCategory inserts an active category
func CreateCategory(t *testing.T, db *gorm.DB, title string) *models.Category {
	t.Helper()
	category := &models.Category{Title: title, Description: title + " description", IsActive: true}
	require.NoError(t, db.Create(category).Error)
	return category
}

// CreateCode inserts a voting code with a fixed token
func CreateCode(t *testing.T, db *gorm.DB, token string, maxUses int, createdBy uint) *models.VotingCode {
	t.Helper()
	code := &models.VotingCode{
		Code:            token,
		MaxUses:         maxUses,
		IsActive:        true,
		CreatedByUserID: createdBy,
	}
	require.NoError(t, db.Create(code).Error)
	return code
}
