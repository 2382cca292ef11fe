// Package photos provides vehicle photo storage on the local filesystem.
package photos

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Storage manages photo filesystem operations.
// Thread-safe for concurrent operations.
type Storage struct {
	basePath string
	mu       sync.RWMutex // Protects file operations
}

// NewStorage creates a new Storage instance for vehicle photos.
// basePath should be the photos root directory (e.g., ~/GarageHub/data/photos).
// Photos are stored in {basePath}/vehicles/.
func NewStorage(basePath string) (*Storage, error) {
	return NewStorageWithSubdir(basePath, "vehicles")
}

// NewStorageWithSubdir creates a new Storage instance with a custom subdirectory.
// Photos are stored in {basePath}/{subdir}/.
func NewStorageWithSubdir(basePath, subdir string) (*Storage, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	if subdir == "" {
		return nil, fmt.Errorf("subdirectory cannot be empty")
	}

	storagePath := filepath.Join(basePath, subdir)

	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s directory: %w", subdir, err)
	}

	return &Storage{
		basePath: storagePath,
	}, nil
}

// Save stores photo data for an entity.
// Filename format: {id}.jpg.
func (s *Storage) Save(id string, imgData []byte) error {
	if id == "" {
		return fmt.Errorf("ID cannot be empty")
	}

	if len(imgData) == 0 {
		return fmt.Errorf("photo data cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.Path(id)

	if err := os.WriteFile(path, imgData, 0644); err != nil {
		return fmt.Errorf("failed to write photo file: %w", err)
	}

	return nil
}

// Get retrieves photo data for an entity.
func (s *Storage) Get(id string) ([]byte, error) {
	if id == "" {
		return nil, fmt.Errorf("ID cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.Path(id)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("photo not found for %s: %w", id, err)
		}
		return nil, fmt.Errorf("failed to read photo file: %w", err)
	}

	return data, nil
}

// Exists checks if a photo exists for an entity.
func (s *Storage) Exists(id string) bool {
	if id == "" {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err := os.Stat(s.Path(id))
	return err == nil
}

// Delete removes a photo for an entity.
func (s *Storage) Delete(id string) error {
	if id == "" {
		return fmt.Errorf("ID cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.Path(id)); err != nil {
		if os.IsNotExist(err) {
			// Already deleted, not an error.
			return nil
		}
		return fmt.Errorf("failed to delete photo file: %w", err)
	}

	return nil
}

// Hash computes SHA256 hash of a photo.
// Returns hex-encoded string for ETag/cache validation.
func (s *Storage) Hash(id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("ID cannot be empty")
	}

	data, err := s.Get(id)
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash), nil
}

// Path returns the full filesystem path for an entity's photo.
func (s *Storage) Path(id string) string {
	return filepath.Join(s.basePath, fmt.Sprintf("%s.jpg", id))
}
