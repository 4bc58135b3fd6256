package media

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// AssetType identifies a class of stored uploads, mapped to a subdirectory
type AssetType string

// AssetTypeCategoryImage holds the web variants of category images
const AssetTypeCategoryImage AssetType = "category_images"

// Store defines the interface for saving, retrieving, and deleting uploaded assets
type Store interface {
	// Save stores data under the asset type's directory and returns the
	// final relative path (including the generated filename)
	Save(assetType AssetType, filenameHint string, data io.Reader) (string, error)
	// Delete removes an asset
	Delete(relativePath string) error
	// GetFullPath returns the absolute filesystem path for a relative asset path
	GetFullPath(relativePath string) (string, error)
	// EnsureDir makes sure a specific asset type directory exists
	EnsureDir(assetType AssetType) (string, error)
}

// LocalStorage implements the Store interface using the local filesystem
type LocalStorage struct {
	basePath  string               // absolute path to the MEDIA_STORAGE_PATH
	subDirMap map[AssetType]string // maps AssetType to subdirectory name
}

// NewLocalStorage creates a new local filesystem store
func NewLocalStorage(basePath string, subDirs map[AssetType]string) (*LocalStorage, error) {
	absBasePath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("invalid base storage path '%s': %w", basePath, err)
	}

	if err := os.MkdirAll(absBasePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base storage directory '%s': %w", absBasePath, err)
	}

	for assetType, subDir := range subDirs {
		fullPath := filepath.Join(absBasePath, subDir)
		if !strings.HasPrefix(filepath.Clean(fullPath), absBasePath) {
			return nil, fmt.Errorf("invalid subdirectory for asset type '%s': '%s' resolves outside base path '%s'", assetType, subDir, absBasePath)
		}
	}

	log.Printf("media.store: Initialized LocalStorage at %s", absBasePath)
	return &LocalStorage{
		basePath:  absBasePath,
		subDirMap: subDirs,
	}, nil
}

func (ls *LocalStorage) getAssetTypeDir(assetType AssetType) (string, error) {
	subDir, ok := ls.subDirMap[assetType]
	if !ok {
		subDir = string(assetType)
	}
	dirPath := filepath.Join(ls.basePath, subDir)
	if !strings.HasPrefix(filepath.Clean(dirPath), ls.basePath) {
		return "", fmt.Errorf("asset type '%s' resolves outside base path", assetType)
	}
	return dirPath, nil
}

// EnsureDir creates the directory for the asset type if it doesn't exist
func (ls *LocalStorage) EnsureDir(assetType AssetType) (string, error) {
	dirPath, err := ls.getAssetTypeDir(assetType)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return "", fmt.Errorf("failed to ensure directory '%s': %w", dirPath, err)
	}
	return dirPath, nil
}

// Save data to the store. filenameHint can be empty to generate a UUID name
func (ls *LocalStorage) Save(assetType AssetType, filenameHint string, data io.Reader) (string, error) {
	dirPath, err := ls.EnsureDir(assetType)
	if err != nil {
		return "", err
	}

	filename := filenameHint
	if filename == "" {
		filename = uuid.New().String()
	}
	filename = filepath.Base(filename) // strip any path components from the hint

	fullPath := filepath.Join(dirPath, filename)
	out, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create asset file '%s': %w", fullPath, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, data); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to write asset file '%s': %w", fullPath, err)
	}

	relPath, err := filepath.Rel(ls.basePath, fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to compute relative path for '%s': %w", fullPath, err)
	}
	return filepath.ToSlash(relPath), nil
}

// Delete removes an asset by its relative path
func (ls *LocalStorage) Delete(relativePath string) error {
	fullPath, err := ls.GetFullPath(relativePath)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete asset '%s': %w", relativePath, err)
	}
	return nil
}

// GetFullPath resolves a relative asset path, refusing traversal outside the base
func (ls *LocalStorage) GetFullPath(relativePath string) (string, error) {
	fullPath := filepath.Clean(filepath.Join(ls.basePath, relativePath))
	if !strings.HasPrefix(fullPath, ls.basePath) {
		return "", fmt.Errorf("asset path '%s' resolves outside storage base", relativePath)
	}
	return fullPath, nil
}
