package repository

import (
	"errors"
	"fmt"

	"github.com/mbrandt-dev/klassenvote-backend/models"
	"gorm.io/gorm"
)

// CategoryRepository handles database operations for categories
type CategoryRepository struct {
	DB *gorm.DB
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{DB: db}
}

// Create creates a new category record in the database
func (r *CategoryRepository) Create(category *models.Category) error {
	err := r.DB.Create(category).Error
	if err != nil {
		return fmt.Errorf("failed to create category %s: %w", category.Title, err)
	}
	return nil
}

// GetByID retrieves a category by its ID
func (r *CategoryRepository) GetByID(id uint) (*models.Category, error) {
	var category models.Category
	err := r.DB.First(&category, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get category by ID %d: %w", id, err)
	}
	return &category, nil
}

// GetByIDs retrieves the categories for a session's snapshot, keeping the
// order of the given ID list (session snapshots define the voting order).
func (r *CategoryRepository) GetByIDs(ids []uint) ([]models.Category, error) {
	if len(ids) == 0 {
		return []models.Category{}, nil
	}
	var categories []models.Category
	err := r.DB.Where("id IN ?", ids).Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get categories by IDs: %w", err)
	}

	byID := make(map[uint]models.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}
	ordered := make([]models.Category, 0, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			ordered = append(ordered, c)
		}
	}
	return ordered, nil
}

// ListAll retrieves all categories ordered by title
func (r *CategoryRepository) ListAll() ([]models.Category, error) {
	var categories []models.Category
	err := r.DB.Order("title ASC").Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// ListActive retrieves the active categories ordered by title. This ordering
// is the contract new session snapshots are built from.
func (r *CategoryRepository) ListActive() ([]models.Category, error) {
	var categories []models.Category
	err := r.DB.Where("is_active = ?", true).Order("title ASC").Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active categories: %w", err)
	}
	return categories, nil
}

// Update updates an existing category's details
func (r *CategoryRepository) Update(category *models.Category) error {
	result := r.DB.Model(&models.Category{ID: category.ID}).Updates(map[string]interface{}{
		"title":       category.Title,
		"description": category.Description,
		"is_active":   category.IsActive,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update category ID %d: %w", category.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateImagePath sets or clears the category's stored image path
func (r *CategoryRepository) UpdateImagePath(categoryID uint, imagePath *string) error {
	result := r.DB.Model(&models.Category{ID: categoryID}).Update("image_path", imagePath)
	if result.Error != nil {
		return fmt.Errorf("failed to update image path for category ID %d: %w", categoryID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a category by its ID
func (r *CategoryRepository) Delete(id uint) error {
	result := r.DB.Delete(&models.Category{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete category ID %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
