package repository

import (
	"errors"
	"fmt"

	"github.com/mbrandt-dev/klassenvote-backend/models"
	"gorm.io/gorm"
)

// GormVotingCodeRepository handles database operations for voting codes
type GormVotingCodeRepository struct {
	db *gorm.DB
}

// NewGormVotingCodeRepository creates a new instance of GormVotingCodeRepository
func NewGormVotingCodeRepository(db *gorm.DB) VotingCodeRepository {
	return &GormVotingCodeRepository{db: db}
}

// Create inserts a new voting code. A duplicate token surfaces as
// gorm.ErrDuplicatedKey so callers can resample and retry.
func (r *GormVotingCodeRepository) Create(code *models.VotingCode) error {
	err := r.db.Create(code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		return fmt.Errorf("failed to create voting code: %w", err)
	}
	return nil
}

// GetByID retrieves a voting code by its ID
func (r *GormVotingCodeRepository) GetByID(id uint) (*models.VotingCode, error) {
	var code models.VotingCode
	err := r.db.First(&code, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get voting code by ID %d: %w", id, err)
	}
	return &code, nil
}

// GetActiveByCode retrieves an active voting code by its token string.
// The match is case-sensitive; inactive codes are invisible to voters.
func (r *GormVotingCodeRepository) GetActiveByCode(code string) (*models.VotingCode, error) {
	var votingCode models.VotingCode
	err := r.db.Where("code = ? AND is_active = ?", code, true).First(&votingCode).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get voting code %q: %w", code, err)
	}
	return &votingCode, nil
}

// Update saves changes to a voting code
func (r *GormVotingCodeRepository) Update(code *models.VotingCode) error {
	return r.db.Save(code).Error
}

// Deactivate flips a code's active flag off
func (r *GormVotingCodeRepository) Deactivate(id uint) error {
	result := r.db.Model(&models.VotingCode{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to deactivate voting code ID %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListAll retrieves all voting codes, newest first
func (r *GormVotingCodeRepository) ListAll() ([]models.VotingCode, error) {
	var codes []models.VotingCode
	err := r.db.Order("created_at DESC").Find(&codes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list voting codes: %w", err)
	}
	return codes, nil
}

// Delete removes a voting code by its ID
func (r *GormVotingCodeRepository) Delete(id uint) error {
	result := r.db.Delete(&models.VotingCode{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete voting code ID %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ConsumeUseTx increments a code's use counter by exactly one inside the
// given transaction. The WHERE clause keeps the increment guarded: an
// exhausted or deactivated code matches no row and the call fails instead
// of overshooting max_uses.
func ConsumeUseTx(tx *gorm.DB, codeID uint) error {
	result := tx.Model(&models.VotingCode{}).
		Where("id = ? AND is_active = ? AND current_uses < max_uses", codeID, true).
		UpdateColumn("current_uses", gorm.Expr("current_uses + 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to consume use of voting code ID %d: %w", codeID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
