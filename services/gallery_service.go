package services

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/plumstudio/atelier/models"
	"github.com/plumstudio/atelier/storage"
)

// GalleryInput carries the parsed multipart form of a gallery create/update.
// KeepImageURLs is the client's final ordering of already-uploaded images;
// AddedImages are new files to append. On update, any previously stored image
// absent from KeepImageURLs is deleted from storage.
type GalleryInput struct {
	Title         string
	Category      string
	Body          string
	TagString     string
	IsPublished   bool
	Thumbnail     *Upload
	Cover         *Upload
	ContentImages []TempImage
	KeepImageURLs []string
	AddedImages   []Upload
}

// GalleryService orchestrates gallery mutations, including the explicit
// image_urls array reconciliation that only galleries carry.
type GalleryService struct {
	db    *gorm.DB
	store storage.Store
}

// NewGalleryService creates a GalleryService.
func NewGalleryService(db *gorm.DB, store storage.Store) *GalleryService {
	return &GalleryService{db: db, store: store}
}

// Create follows the same ordered flow as classes: base row, media uploads,
// body substitution, tag linking, with full rollback on failure.
func (s *GalleryService) Create(authorID uint, in GalleryInput) (*models.Gallery, error) {
	slug, err := UniqueSlug(s.db, "galleries", in.Title)
	if err != nil {
		return nil, err
	}

	gal := models.Gallery{
		Title:       in.Title,
		Slug:        slug,
		Category:    in.Category,
		IsPublished: in.IsPublished,
		AuthorID:    authorID,
	}
	if err := s.db.Create(&gal).Error; err != nil {
		return nil, fmt.Errorf("insert gallery row: %w", err)
	}

	saga := NewSaga()
	saga.Defer("delete gallery row", func() error {
		return s.db.Delete(&models.Gallery{}, gal.ID).Error
	})
	saga.Defer("wipe gallery storage folder", func() error {
		return storage.RemoveFolder(s.store, gal.ID)
	})
	fail := func(err error) (*models.Gallery, error) {
		saga.Rollback()
		return nil, err
	}

	if in.Thumbnail != nil {
		url, err := uploadAndSetColumn(s.db, s.store, &gal, storage.ThumbnailPath(gal.ID, in.Thumbnail.Filename), *in.Thumbnail, "thumbnail_url")
		if err != nil {
			return fail(err)
		}
		gal.ThumbnailURL = url
	}
	if in.Cover != nil {
		url, err := uploadAndSetColumn(s.db, s.store, &gal, storage.CoverPath(gal.ID, in.Cover.Filename), *in.Cover, "cover_url")
		if err != nil {
			return fail(err)
		}
		gal.CoverURL = url
	}

	body, _, err := ReplaceTempImages(s.store, gal.ID, in.Body, in.ContentImages)
	if err != nil {
		return fail(err)
	}
	if body != "" {
		if err := s.db.Model(&gal).Update("body", body).Error; err != nil {
			return fail(fmt.Errorf("store gallery body: %w", err))
		}
		gal.Body = body
	}

	if len(in.AddedImages) > 0 {
		urls := make([]string, 0, len(in.AddedImages))
		for _, img := range in.AddedImages {
			url, err := s.store.Upload(storage.ContentImagePath(gal.ID, img.Filename), img.Data, img.ContentType)
			if err != nil {
				return fail(fmt.Errorf("upload gallery image: %w", err))
			}
			urls = append(urls, url)
		}
		encoded, err := marshalURLs(urls)
		if err != nil {
			return fail(err)
		}
		if err := s.db.Model(&gal).Update("image_urls", encoded).Error; err != nil {
			return fail(fmt.Errorf("store gallery image urls: %w", err))
		}
		gal.ImageURLs = encoded
	}

	if err := LinkGalleryTags(s.db, gal.ID, in.TagString); err != nil {
		return fail(err)
	}
	return &gal, nil
}

// Update mirrors the class update flow and additionally reconciles the
// image_urls array: the client's kept list wins, added files are uploaded,
// and previously stored images missing from the kept list are deleted behind
// the ownership guard.
func (s *GalleryService) Update(id uint, in GalleryInput) (*models.Gallery, error) {
	var gal models.Gallery
	if err := s.db.First(&gal, id).Error; err != nil {
		return nil, err
	}

	saga := NewSaga()
	fail := func(err error) (*models.Gallery, error) {
		saga.Rollback()
		return nil, err
	}

	if in.Thumbnail != nil {
		url, err := swapStorageObject(s.store, saga, id, gal.ThumbnailURL, storage.ThumbnailPath(id, in.Thumbnail.Filename), *in.Thumbnail)
		if err != nil {
			return fail(err)
		}
		gal.ThumbnailURL = url
	}
	if in.Cover != nil {
		url, err := swapStorageObject(s.store, saga, id, gal.CoverURL, storage.CoverPath(id, in.Cover.Filename), *in.Cover)
		if err != nil {
			return fail(err)
		}
		gal.CoverURL = url
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

	oldImages := ExtractOwnedImagePaths(s.store, id, gal.Body)
	keptImages := ExtractOwnedImagePaths(s.store, id, newBody)
	removed := storage.FilterOwned(id, DiffRemoved(oldImages, keptImages))
	if len(removed) > 0 {
		if err := s.store.Remove(removed); err != nil {
			return fail(fmt.Errorf("remove dropped body images: %w", err))
		}
	}
	gal.Body = newBody

	finalURLs, err := s.reconcileImages(saga, id, gal.ImageURLs, in)
	if err != nil {
		return fail(err)
	}
	gal.ImageURLs = finalURLs

	if err := RelinkGalleryTags(s.db, id, in.TagString); err != nil {
		return fail(err)
	}

	gal.Title = in.Title
	gal.Category = in.Category
	gal.IsPublished = in.IsPublished
	err = s.db.Model(&gal).
		Select("title", "category", "body", "thumbnail_url", "cover_url", "image_urls", "is_published", "updated_at").
		Updates(&gal).Error
	if err != nil {
		return fail(fmt.Errorf("update gallery row: %w", err))
	}
	return &gal, nil
}

// Delete wipes the storage folder first; the row survives if that fails.
func (s *GalleryService) Delete(id uint) error {
	var gal models.Gallery
	if err := s.db.First(&gal, id).Error; err != nil {
		return err
	}
	if err := storage.RemoveFolder(s.store, id); err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := UnlinkGalleryTags(tx, id); err != nil {
			return err
		}
		if err := tx.Where("gallery_id = ?", id).Delete(&models.GalleryLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("gallery_id = ?", id).Delete(&models.GallerySave{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Gallery{}, id).Error
	})
}

// reconcileImages computes the final image_urls array: the client-kept URLs
// in their submitted order, then freshly uploaded additions. URLs that were
// stored before but are no longer kept get their objects deleted, ownership
// checked path by path.
func (s *GalleryService) reconcileImages(saga *Saga, id uint, stored datatypes.JSON, in GalleryInput) (datatypes.JSON, error) {
	var oldURLs []string
	if len(stored) > 0 {
		if err := json.Unmarshal(stored, &oldURLs); err != nil {
			return nil, fmt.Errorf("decode stored image urls: %w", err)
		}
	}

	finalURLs := append([]string{}, in.KeepImageURLs...)
	for _, img := range in.AddedImages {
		objectPath := storage.ContentImagePath(id, img.Filename)
		url, err := s.store.Upload(objectPath, img.Data, img.ContentType)
		if err != nil {
			return nil, fmt.Errorf("upload added gallery image: %w", err)
		}
		saga.Defer("remove added image "+objectPath, func() error {
			return s.store.Remove([]string{objectPath})
		})
		finalURLs = append(finalURLs, url)
	}

	kept := map[string]bool{}
	for _, u := range in.KeepImageURLs {
		kept[u] = true
	}
	var dropped []string
	for _, u := range oldURLs {
		if kept[u] {
			continue
		}
		if p, ok := storage.PathFromURL(s.store, u); ok && storage.Owns(id, p) {
			dropped = append(dropped, p)
		}
	}
	if len(dropped) > 0 {
		if err := s.store.Remove(dropped); err != nil {
			return nil, fmt.Errorf("remove dropped gallery images: %w", err)
		}
	}
	return marshalURLs(finalURLs)
}

func marshalURLs(urls []string) (datatypes.JSON, error) {
	b, err := json.Marshal(urls)
	if err != nil {
		return nil, fmt.Errorf("encode image urls: %w", err)
	}
	return datatypes.JSON(b), nil
}
