package services

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/plumstudio/atelier/models"
	"github.com/plumstudio/atelier/storage"
)

// NewsInput carries the parsed form of a news create/update. News has no
// tags, cover or comment thread.
type NewsInput struct {
	Title         string
	Category      string
	Body          string
	IsPublished   bool
	Thumbnail     *Upload
	ContentImages []TempImage
}

// NewsService orchestrates news mutations with the shared saga flow.
type NewsService struct {
	db    *gorm.DB
	store storage.Store
}

// NewNewsService creates a NewsService.
func NewNewsService(db *gorm.DB, store storage.Store) *NewsService {
	return &NewsService{db: db, store: store}
}

// Create inserts the base row, uploads media and substitutes body images,
// rolling everything back on failure.
func (s *NewsService) Create(authorID uint, in NewsInput) (*models.News, error) {
	slug, err := UniqueSlug(s.db, "news", in.Title)
	if err != nil {
		return nil, err
	}

	article := models.News{
		Title:       in.Title,
		Slug:        slug,
		Category:    in.Category,
		IsPublished: in.IsPublished,
		AuthorID:    authorID,
	}
	if err := s.db.Create(&article).Error; err != nil {
		return nil, fmt.Errorf("insert news row: %w", err)
	}

	saga := NewSaga()
	saga.Defer("delete news row", func() error {
		return s.db.Delete(&models.News{}, article.ID).Error
	})
	saga.Defer("wipe news storage folder", func() error {
		return storage.RemoveFolder(s.store, article.ID)
	})
	fail := func(err error) (*models.News, error) {
		saga.Rollback()
		return nil, err
	}

	if in.Thumbnail != nil {
		url, err := uploadAndSetColumn(s.db, s.store, &article, storage.ThumbnailPath(article.ID, in.Thumbnail.Filename), *in.Thumbnail, "thumbnail_url")
		if err != nil {
			return fail(err)
		}
		article.ThumbnailURL = url
	}

	body, _, err := ReplaceTempImages(s.store, article.ID, in.Body, in.ContentImages)
	if err != nil {
		return fail(err)
	}
	if body != "" {
		if err := s.db.Model(&article).Update("body", body).Error; err != nil {
			return fail(fmt.Errorf("store news body: %w", err))
		}
		article.Body = body
	}
	return &article, nil
}

// Update applies the ordered edit steps; uploads from this request are
// compensated on failure, earlier row writes are not.
func (s *NewsService) Update(id uint, in NewsInput) (*models.News, error) {
	var article models.News
	if err := s.db.First(&article, id).Error; err != nil {
		return nil, err
	}

	saga := NewSaga()
	fail := func(err error) (*models.News, error) {
		saga.Rollback()
		return nil, err
	}

	if in.Thumbnail != nil {
		url, err := swapStorageObject(s.store, saga, id, article.ThumbnailURL, storage.ThumbnailPath(id, in.Thumbnail.Filename), *in.Thumbnail)
		if err != nil {
			return fail(err)
		}
		article.ThumbnailURL = url
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

	oldImages := ExtractOwnedImagePaths(s.store, id, article.Body)
	keptImages := ExtractOwnedImagePaths(s.store, id, newBody)
	removed := storage.FilterOwned(id, DiffRemoved(oldImages, keptImages))
	if len(removed) > 0 {
		if err := s.store.Remove(removed); err != nil {
			return fail(fmt.Errorf("remove dropped body images: %w", err))
		}
	}
	article.Body = newBody

	article.Title = in.Title
	article.Category = in.Category
	article.IsPublished = in.IsPublished
	err := s.db.Model(&article).
		Select("title", "category", "body", "thumbnail_url", "is_published", "updated_at").
		Updates(&article).Error
	if err != nil {
		return fail(fmt.Errorf("update news row: %w", err))
	}
	return &article, nil
}

// Delete wipes the storage folder first; the row survives if that fails.
func (s *NewsService) Delete(id uint) error {
	var article models.News
	if err := s.db.First(&article, id).Error; err != nil {
		return err
	}
	if err := storage.RemoveFolder(s.store, id); err != nil {
		return err
	}
	return s.db.Delete(&models.News{}, id).Error
}
