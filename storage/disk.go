package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore keeps objects on the local filesystem under Root and serves them
// through the router's static file handler at BaseURL.
type DiskStore struct {
	Root    string
	BaseURL string
}

// NewDiskStore creates a DiskStore rooted at root, served from baseURL
// (e.g. "/static/media").
func NewDiskStore(root, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &DiskStore{Root: root, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Upload writes the object, creating parent directories as needed.
func (d *DiskStore) Upload(objectPath string, data []byte, contentType string) (string, error) {
	full, err := d.resolve(objectPath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create object directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("write object %s: %w", objectPath, err)
	}
	return d.PublicURL(objectPath), nil
}

// Remove deletes objects; paths that do not exist are skipped silently.
func (d *DiskStore) Remove(paths []string) error {
	for _, p := range paths {
		full, err := d.resolve(p)
		if err != nil {
			return err
		}
		if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove object %s: %w", p, err)
		}
	}
	return nil
}

// List walks the folder recursively and returns object paths relative to Root.
func (d *DiskStore) List(folder string) ([]string, error) {
	full, err := d.resolve(folder)
	if err != nil {
		return nil, err
	}
	var objects []string
	walkErr := filepath.WalkDir(full, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if entry.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(d.Root, p)
		if err != nil {
			return err
		}
		objects = append(objects, filepath.ToSlash(rel))
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("list folder %s: %w", folder, walkErr)
	}
	return objects, nil
}

// PublicURL maps an object path onto the static file route.
func (d *DiskStore) PublicURL(objectPath string) string {
	return d.BaseURL + "/" + strings.TrimLeft(objectPath, "/")
}

// resolve joins the object path under Root and rejects traversal outside it.
func (d *DiskStore) resolve(objectPath string) (string, error) {
	clean := filepath.Clean(filepath.Join(d.Root, filepath.FromSlash(objectPath)))
	root := filepath.Clean(d.Root)
	if clean != root && !strings.HasPrefix(clean, root+string(filepath.Separator)) {
		return "", fmt.Errorf("object path escapes storage root: %s", objectPath)
	}
	return clean, nil
}
