package services

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/plumstudio/atelier/storage"
)

// uploadAndSetColumn uploads a fixed-path object and persists its public URL
// into the given column of the model row.
func uploadAndSetColumn(db *gorm.DB, store storage.Store, model interface{}, objectPath string, file Upload, column string) (string, error) {
	url, err := store.Upload(objectPath, file.Data, file.ContentType)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", column, err)
	}
	if err := db.Model(model).Update(column, url).Error; err != nil {
		return "", fmt.Errorf("store %s: %w", column, err)
	}
	return url, nil
}

// swapStorageObject uploads a replacement for a fixed-path object, then
// deletes the previous one. If the old object cannot be removed, the fresh
// upload is compensated away and the whole update aborts: never two live
// objects, never a silently stale one.
func swapStorageObject(store storage.Store, saga *Saga, resourceID uint, oldURL, newPath string, file Upload) (string, error) {
	url, err := store.Upload(newPath, file.Data, file.ContentType)
	if err != nil {
		return "", fmt.Errorf("upload replacement %s: %w", newPath, err)
	}
	saga.Defer("remove replacement "+newPath, func() error {
		return store.Remove([]string{newPath})
	})
	if old, ok := storage.PathFromURL(store, oldURL); ok && old != newPath && storage.Owns(resourceID, old) {
		if err := store.Remove([]string{old}); err != nil {
			return "", fmt.Errorf("remove previous %s: %w", old, err)
		}
	}
	return url, nil
}
