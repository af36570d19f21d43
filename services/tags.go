package services

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/plumstudio/atelier/models"
)

// NormalizeTags splits a comma-separated tag string into trimmed, deduplicated
// names, preserving first-occurrence order. Empty entries are dropped.
func NormalizeTags(raw string) []string {
	seen := map[string]bool{}
	names := []string{}
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// getOrCreateTag resolves a tag by exact name, inserting it on first use.
// Concurrent creation of the same name can race; the unique index on name
// makes one of the inserts fail, which the caller treats as a real error.
func getOrCreateTag(db *gorm.DB, name string) (models.Tag, error) {
	var tag models.Tag
	err := db.Where("name = ?", name).First(&tag).Error
	if err == nil {
		return tag, nil
	}
	if err != gorm.ErrRecordNotFound {
		return tag, fmt.Errorf("tag lookup %q: %w", name, err)
	}
	tag = models.Tag{Name: name, Slug: Slugify(name)}
	if err := db.Create(&tag).Error; err != nil {
		return tag, fmt.Errorf("tag create %q: %w", name, err)
	}
	return tag, nil
}

// LinkClassTags resolves every name in the tag string and links it to the
// class, bumping each tag's usage count.
func LinkClassTags(db *gorm.DB, classID uint, raw string) error {
	for _, name := range NormalizeTags(raw) {
		tag, err := getOrCreateTag(db, name)
		if err != nil {
			return err
		}
		link := models.ClassTag{ClassID: classID, TagID: tag.ID}
		if err := db.FirstOrCreate(&link, link).Error; err != nil {
			return fmt.Errorf("link tag %q to class %d: %w", name, classID, err)
		}
		if err := bumpUsage(db, tag.ID, 1); err != nil {
			return err
		}
	}
	return nil
}

// RelinkClassTags replaces the class's tag set from scratch: every existing
// association is removed, then the submitted string is processed as on create.
func RelinkClassTags(db *gorm.DB, classID uint, raw string) error {
	var existing []models.ClassTag
	if err := db.Where("class_id = ?", classID).Find(&existing).Error; err != nil {
		return fmt.Errorf("load class %d tag links: %w", classID, err)
	}
	for _, link := range existing {
		if err := bumpUsage(db, link.TagID, -1); err != nil {
			return err
		}
	}
	if err := db.Where("class_id = ?", classID).Delete(&models.ClassTag{}).Error; err != nil {
		return fmt.Errorf("unlink class %d tags: %w", classID, err)
	}
	return LinkClassTags(db, classID, raw)
}

// UnlinkClassTags removes all tag associations for a class (delete flow).
func UnlinkClassTags(db *gorm.DB, classID uint) error {
	return db.Where("class_id = ?", classID).Delete(&models.ClassTag{}).Error
}

// LinkGalleryTags mirrors LinkClassTags for gallery entries.
func LinkGalleryTags(db *gorm.DB, galleryID uint, raw string) error {
	for _, name := range NormalizeTags(raw) {
		tag, err := getOrCreateTag(db, name)
		if err != nil {
			return err
		}
		link := models.GalleryTag{GalleryID: galleryID, TagID: tag.ID}
		if err := db.FirstOrCreate(&link, link).Error; err != nil {
			return fmt.Errorf("link tag %q to gallery %d: %w", name, galleryID, err)
		}
		if err := bumpUsage(db, tag.ID, 1); err != nil {
			return err
		}
	}
	return nil
}

// RelinkGalleryTags replaces the gallery's tag set from scratch.
func RelinkGalleryTags(db *gorm.DB, galleryID uint, raw string) error {
	var existing []models.GalleryTag
	if err := db.Where("gallery_id = ?", galleryID).Find(&existing).Error; err != nil {
		return fmt.Errorf("load gallery %d tag links: %w", galleryID, err)
	}
	for _, link := range existing {
		if err := bumpUsage(db, link.TagID, -1); err != nil {
			return err
		}
	}
	if err := db.Where("gallery_id = ?", galleryID).Delete(&models.GalleryTag{}).Error; err != nil {
		return fmt.Errorf("unlink gallery %d tags: %w", galleryID, err)
	}
	return LinkGalleryTags(db, galleryID, raw)
}

// UnlinkGalleryTags removes all tag associations for a gallery entry.
func UnlinkGalleryTags(db *gorm.DB, galleryID uint) error {
	return db.Where("gallery_id = ?", galleryID).Delete(&models.GalleryTag{}).Error
}

func bumpUsage(db *gorm.DB, tagID uint, delta int) error {
	if err := db.Model(&models.Tag{}).Where("id = ?", tagID).
		Update("usage_count", gorm.Expr("usage_count + ?", delta)).Error; err != nil {
		return fmt.Errorf("adjust tag %d usage: %w", tagID, err)
	}
	return nil
}
