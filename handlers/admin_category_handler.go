package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/mbrandt-dev/klassenvote-backend/media"
	"github.com/mbrandt-dev/klassenvote-backend/models"
	"github.com/mbrandt-dev/klassenvote-backend/repository"
	"gorm.io/gorm"
)

const maxCategoryImageUpload = 10 << 20 // 10 MiB

// AdminCategoryHandler provides CRUD for voting categories, including the
// optional category image.
type AdminCategoryHandler struct {
	CategoryRepo repository.CategoryRepositoryInterface
	MediaStore   media.Store
	ImageMaxSize int
}

// NewAdminCategoryHandler creates a new admin category handler
func NewAdminCategoryHandler(categoryRepo repository.CategoryRepositoryInterface, mediaStore media.Store, imageMaxSize int) *AdminCategoryHandler {
	return &AdminCategoryHandler{CategoryRepo: categoryRepo, MediaStore: mediaStore, ImageMaxSize: imageMaxSize}
}

type CategoryPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active,omitempty"`
}

func (ch *AdminCategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var payload CategoryPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}
	if strings.TrimSpace(payload.Title) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing required field: title"})
		return
	}

	category := models.Category{
		Title:       strings.TrimSpace(payload.Title),
		Description: payload.Description,
		IsActive:    true,
	}
	if payload.IsActive != nil {
		category.IsActive = *payload.IsActive
	}

	if err := ch.CategoryRepo.Create(&category); err != nil {
		log.Printf("Error creating category '%s': %v", payload.Title, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to create category"})
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

func (ch *AdminCategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := ch.CategoryRepo.ListAll()
	if err != nil {
		log.Printf("Error listing categories: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve categories"})
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}
	writeJSON(w, http.StatusOK, categories)
}

func (ch *AdminCategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := parseIDParam(w, r, "category_id")
	if !ok {
		return
	}

	category, err := ch.CategoryRepo.GetByID(categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Category not found"})
		} else {
			log.Printf("Error getting category %d: %v", categoryID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve category"})
		}
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (ch *AdminCategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := parseIDParam(w, r, "category_id")
	if !ok {
		return
	}

	existing, err := ch.CategoryRepo.GetByID(categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Category not found"})
		} else {
			log.Printf("Error getting category %d: %v", categoryID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve category"})
		}
		return
	}

	var payload CategoryPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid request body: " + err.Error()})
		return
	}

	if strings.TrimSpace(payload.Title) != "" {
		existing.Title = strings.TrimSpace(payload.Title)
	}
	existing.Description = payload.Description
	if payload.IsActive != nil {
		existing.IsActive = *payload.IsActive
	}

	if err := ch.CategoryRepo.Update(existing); err != nil {
		log.Printf("Error updating category %d: %v", categoryID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to update category"})
		return
	}
	writeJSON(w, http.StatusOK, existing)
}

func (ch *AdminCategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := parseIDParam(w, r, "category_id")
	if !ok {
		return
	}

	category, err := ch.CategoryRepo.GetByID(categoryID)
	if err == nil && category.ImagePath != nil {
		if delErr := ch.MediaStore.Delete(*category.ImagePath); delErr != nil {
			log.Printf("Error deleting image for category %d: %v", categoryID, delErr)
		}
	}

	if err := ch.CategoryRepo.Delete(categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Category not found"})
		} else {
			log.Printf("Error deleting category %d: %v", categoryID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to delete category"})
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadCategoryImage handles PUT /api/admin/categories/{category_id}/image:
// accepts a multipart image, stores a web-size JPEG variant and replaces any
// previous image.
func (ch *AdminCategoryHandler) UploadCategoryImage(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := parseIDParam(w, r, "category_id")
	if !ok {
		return
	}

	category, err := ch.CategoryRepo.GetByID(categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Category not found"})
		} else {
			log.Printf("Error getting category %d: %v", categoryID, err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve category"})
		}
		return
	}

	if err := r.ParseMultipartForm(maxCategoryImageUpload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Failed to parse multipart form: " + err.Error()})
		return
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing 'image' file field"})
		return
	}
	defer file.Close()

	resized, ext, err := media.ResizeForWeb(file, ch.ImageMaxSize)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Unsupported or corrupt image file"})
		return
	}

	filename := fmt.Sprintf("category_%d_%s%s", categoryID, uuid.New().String(), ext)
	relPath, err := ch.MediaStore.Save(media.AssetTypeCategoryImage, filename, resized)
	if err != nil {
		log.Printf("Error saving image for category %d: %v", categoryID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to store image"})
		return
	}

	oldPath := category.ImagePath
	if err := ch.CategoryRepo.UpdateImagePath(categoryID, &relPath); err != nil {
		log.Printf("Error updating image path for category %d: %v", categoryID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to update category"})
		return
	}
	if oldPath != nil {
		if err := ch.MediaStore.Delete(*oldPath); err != nil {
			log.Printf("Error deleting previous image for category %d: %v", categoryID, err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"image_path": relPath})
}

// DeleteCategoryImage handles DELETE /api/admin/categories/{category_id}/image
func (ch *AdminCategoryHandler) DeleteCategoryImage(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := parseIDParam(w, r, "category_id")
	if !ok {
		return
	}

	category, err := ch.CategoryRepo.GetByID(categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Category not found"})
		} else {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to retrieve category"})
		}
		return
	}
	if category.ImagePath == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := ch.MediaStore.Delete(*category.ImagePath); err != nil {
		log.Printf("Error deleting image for category %d: %v", categoryID, err)
	}
	if err := ch.CategoryRepo.UpdateImagePath(categoryID, nil); err != nil {
		log.Printf("Error clearing image path for category %d: %v", categoryID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to update category"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
