package storage

import (
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Store abstracts one bucket of the object store holding content media.
// Each content type gets its own Store; within it, objects live under a
// per-resource prefix "{resourceID}/..." so that ownership is encoded in
// the path itself.
type Store interface {
	// Upload writes data at the given path and returns its public URL.
	// Existing objects at the same path are overwritten.
	Upload(objectPath string, data []byte, contentType string) (string, error)
	// Remove deletes the listed objects. Missing objects are not an error.
	Remove(paths []string) error
	// List returns all object paths under the given folder, recursively.
	List(folder string) ([]string, error)
	// PublicURL returns the public URL an uploaded object is served from.
	PublicURL(objectPath string) string
}

// Prefix returns the storage folder owned by a resource.
func Prefix(resourceID uint) string {
	return fmt.Sprintf("%d/", resourceID)
}

// ThumbnailPath is the fixed object path for a resource thumbnail.
func ThumbnailPath(resourceID uint, filename string) string {
	return fmt.Sprintf("%d/thumbnail%s", resourceID, extOf(filename))
}

// CoverPath is the fixed object path for a resource cover image.
func CoverPath(resourceID uint, filename string) string {
	return fmt.Sprintf("%d/cover%s", resourceID, extOf(filename))
}

// ContentImagePath returns a fresh object path for a body image.
func ContentImagePath(resourceID uint, filename string) string {
	return fmt.Sprintf("%d/content/%s%s", resourceID, uuid.NewString(), extOf(filename))
}

// Owns reports whether objectPath belongs to the resource's folder. Every
// deletion driven by user-controlled data must pass this check so a mutation
// can never touch another resource's files.
func Owns(resourceID uint, objectPath string) bool {
	return strings.HasPrefix(objectPath, Prefix(resourceID))
}

// FilterOwned drops any path outside the resource's folder.
func FilterOwned(resourceID uint, paths []string) []string {
	owned := make([]string, 0, len(paths))
	for _, p := range paths {
		if Owns(resourceID, p) {
			owned = append(owned, p)
		}
	}
	return owned
}

// RemoveFolder deletes every object under the resource's folder. It re-lists
// after each removal pass so that objects appearing between list and remove
// are still caught, and fails if the folder will not drain.
func RemoveFolder(s Store, resourceID uint) error {
	for attempt := 0; attempt < 3; attempt++ {
		objects, err := s.List(Prefix(resourceID))
		if err != nil {
			return fmt.Errorf("list folder %d: %w", resourceID, err)
		}
		if len(objects) == 0 {
			return nil
		}
		if err := s.Remove(objects); err != nil {
			return fmt.Errorf("remove folder %d: %w", resourceID, err)
		}
	}
	objects, err := s.List(Prefix(resourceID))
	if err != nil {
		return fmt.Errorf("list folder %d: %w", resourceID, err)
	}
	if len(objects) > 0 {
		return fmt.Errorf("folder %d not empty after removal", resourceID)
	}
	return nil
}

// PathFromURL converts a public URL produced by the store back into its
// object path. Returns false for URLs the store does not serve.
func PathFromURL(s Store, url string) (string, bool) {
	base := s.PublicURL("")
	if base == "" || !strings.HasPrefix(url, base) {
		return "", false
	}
	p := strings.TrimLeft(strings.TrimPrefix(url, base), "/")
	if p == "" {
		return "", false
	}
	return p, true
}

func extOf(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = ".webp"
	}
	return ext
}
