package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/mbrandt-dev/klassenvote-backend/models"
	"github.com/mbrandt-dev/klassenvote-backend/repository"
	"gorm.io/gorm"
)

const codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// CodeService issues and looks up voting codes (the code registry)
type CodeService struct {
	codeRepo   repository.VotingCodeRepository
	codeLength int
}

// NewCodeService creates a new code service
func NewCodeService(codeRepo repository.VotingCodeRepository, codeLength int) *CodeService {
	if codeLength <= 0 {
		codeLength = 8
	}
	return &CodeService{codeRepo: codeRepo, codeLength: codeLength}
}

// generateToken returns a random uppercase alphanumeric token
func generateToken(length int) (string, error) {
	token := make([]byte, length)
	max := big.NewInt(int64(len(codeCharset)))
	for i := range token {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random token: %w", err)
		}
		token[i] = codeCharset[n.Int64()]
	}
	return string(token), nil
}

// Issue creates a new voting code with a token guaranteed unique among
// existing codes. Uniqueness is enforced at insert time by the unique index,
// not just at generation time: a collision surfaces as a duplicate-key error
// and the token is resampled.
func (s *CodeService) Issue(createdByUserID uint, maxUses int, email *string) (*models.VotingCode, error) {
	for {
		token, err := generateToken(s.codeLength)
		if err != nil {
			return nil, err
		}
		code := &models.VotingCode{
			Code:            token,
			MaxUses:         maxUses,
			IsActive:        true,
			Email:           email,
			CreatedByUserID: createdByUserID,
		}
		err = s.codeRepo.Create(code)
		if err == nil {
			return code, nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			continue // token collision, resample
		}
		return nil, err
	}
}

// IssueBatch issues count codes with the same settings
func (s *CodeService) IssueBatch(createdByUserID uint, maxUses, count int) ([]models.VotingCode, error) {
	codes := make([]models.VotingCode, 0, count)
	for i := 0; i < count; i++ {
		code, err := s.Issue(createdByUserID, maxUses, nil)
		if err != nil {
			return codes, err
		}
		codes = append(codes, *code)
	}
	return codes, nil
}

// Redeem resolves a voter-submitted token to a usable code. Unknown or
// inactive tokens return ErrInvalidCode; known but spent ones return
// ErrCodeExhausted so the caller can log the distinct reason.
func (s *CodeService) Redeem(token string) (*models.VotingCode, error) {
	code, err := s.codeRepo.GetActiveByCode(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCode
		}
		return nil, err
	}
	if !code.CanVote() {
		return nil, ErrCodeExhausted
	}
	return code, nil
}
