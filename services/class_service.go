package services

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/plumstudio/atelier/models"
	"github.com/plumstudio/atelier/storage"
)

// ClassInput carries the parsed multipart form of a class create/update.
// Nil file fields mean "keep the existing object" on update.
type ClassInput struct {
	Title         string
	Category      string
	Body          string
	TagString     string
	IsPublished   bool
	Thumbnail     *Upload
	Cover         *Upload
	ContentImages []TempImage
}

// ClassService orchestrates class mutations across the database and object
// storage. There is no cross-store transaction; ordering plus the saga's
// compensation stack approximate atomicity.
type ClassService struct {
	db    *gorm.DB
	store storage.Store
}

// NewClassService creates a ClassService.
func NewClassService(db *gorm.DB, store storage.Store) *ClassService {
	return &ClassService{db: db, store: store}
}

// Create inserts the base row first so the storage folder name (the row id)
// exists, then uploads media and links tags. Any failure after the insert
// rolls back the row and wipes the folder, returning the original error.
func (s *ClassService) Create(authorID uint, in ClassInput) (*models.Class, error) {
	slug, err := UniqueSlug(s.db, "classes", in.Title)
	if err != nil {
		return nil, err
	}

	cls := models.Class{
		Title:       in.Title,
		Slug:        slug,
		Category:    in.Category,
		IsPublished: in.IsPublished,
		AuthorID:    authorID,
	}
	if err := s.db.Create(&cls).Error; err != nil {
		return nil, fmt.Errorf("insert class row: %w", err)
	}

	saga := NewSaga()
	saga.Defer("delete class row", func() error {
		return s.db.Delete(&models.Class{}, cls.ID).Error
	})
	saga.Defer("wipe class storage folder", func() error {
		return storage.RemoveFolder(s.store, cls.ID)
	})
	fail := func(err error) (*models.Class, error) {
		saga.Rollback()
		return nil, err
	}

	if in.Thumbnail != nil {
		url, err := uploadAndSetColumn(s.db, s.store, &cls, storage.ThumbnailPath(cls.ID, in.Thumbnail.Filename), *in.Thumbnail, "thumbnail_url")
		if err != nil {
			return fail(err)
		}
		cls.ThumbnailURL = url
	}
	if in.Cover != nil {
		url, err := uploadAndSetColumn(s.db, s.store, &cls, storage.CoverPath(cls.ID, in.Cover.Filename), *in.Cover, "cover_url")
		if err != nil {
			return fail(err)
		}
		cls.CoverURL = url
	}

	body, _, err := ReplaceTempImages(s.store, cls.ID, in.Body, in.ContentImages)
	if err != nil {
		return fail(err)
	}
	if body != "" {
		if err := s.db.Model(&cls).Update("body", body).Error; err != nil {
			return fail(fmt.Errorf("store class body: %w", err))
		}
		cls.Body = body
	}

	if err := LinkClassTags(s.db, cls.ID, in.TagString); err != nil {
		return fail(err)
	}
	return &cls, nil
}

// Update applies an edit in the ordered steps the admin form expects.
// Storage objects uploaded by this request are compensated on failure; row
// fields written by earlier steps are not rolled back, so a late failure can
// leave the row partially updated. Slug is never touched.
func (s *ClassService) Update(id uint, in ClassInput) (*models.Class, error) {
	var cls models.Class
	if err := s.db.First(&cls, id).Error; err != nil {
		return nil, err
	}

	saga := NewSaga()
	fail := func(err error) (*models.Class, error) {
		saga.Rollback()
		return nil, err
	}

	if in.Thumbnail != nil {
		url, err := swapStorageObject(s.store, saga, id, cls.ThumbnailURL, storage.ThumbnailPath(id, in.Thumbnail.Filename), *in.Thumbnail)
		if err != nil {
			return fail(err)
		}
		cls.ThumbnailURL = url
	}
	if in.Cover != nil {
		url, err := swapStorageObject(s.store, saga, id, cls.CoverURL, storage.CoverPath(id, in.Cover.Filename), *in.Cover)
		if err != nil {
			return fail(err)
		}
		cls.CoverURL = url
	}

	newBody, uploaded, imgErr := ReplaceTempImages(s.store, id, in.Body, in.ContentImages)
	for _, p := range storage.FilterOwned(id, uploaded) {
		p := p
		saga.Defer("remove body image "+p, func() error {
			return s.store.Remove([]string{p})
		})
	}
	if imgErr != nil {
		return fail(imgErr)
	}

	oldImages := ExtractOwnedImagePaths(s.store, id, cls.Body)
	keptImages := ExtractOwnedImagePaths(s.store, id, newBody)
	removed := storage.FilterOwned(id, DiffRemoved(oldImages, keptImages))
	if len(removed) > 0 {
		if err := s.store.Remove(removed); err != nil {
			return fail(fmt.Errorf("remove dropped body images: %w", err))
		}
	}
	cls.Body = newBody

	if err := RelinkClassTags(s.db, id, in.TagString); err != nil {
		return fail(err)
	}

	cls.Title = in.Title
	cls.Category = in.Category
	cls.IsPublished = in.IsPublished
	err := s.db.Model(&cls).
		Select("title", "category", "body", "thumbnail_url", "cover_url", "is_published", "updated_at").
		Updates(&cls).Error
	if err != nil {
		return fail(fmt.Errorf("update class row: %w", err))
	}
	return &cls, nil
}

// Delete removes the storage folder first and hard-deletes the row only when
// that succeeds: a failed storage cleanup must never leave files without a
// row pointing at them.
func (s *ClassService) Delete(id uint) error {
	var cls models.Class
	if err := s.db.First(&cls, id).Error; err != nil {
		return err
	}
	if err := storage.RemoveFolder(s.store, id); err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := UnlinkClassTags(tx, id); err != nil {
			return err
		}
		if err := tx.Where("comment_id IN (?)",
			tx.Model(&models.Comment{}).Select("id").Where("class_id = ?", id),
		).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("class_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("class_id = ?", id).Delete(&models.ClassLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("class_id = ?", id).Delete(&models.ClassSave{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Class{}, id).Error
	})
}

