package services

import (
	"encoding/json"
	"testing"

	"github.com/plumstudio/atelier/models"
	"github.com/plumstudio/atelier/storage"
)

func decodeURLs(t *testing.T, gal *models.Gallery) []string {
	t.Helper()
	var urls []string
	if len(gal.ImageURLs) > 0 {
		if err := json.Unmarshal(gal.ImageURLs, &urls); err != nil {
			t.Fatalf("decode image urls: %v", err)
		}
	}
	return urls
}

func TestGalleryCreateStoresImageList(t *testing.T) {
	db := testDB(t)
	store := storage.NewMemStore()
	svc := NewGalleryService(db, store)

	gal, err := svc.Create(1, GalleryInput{
		Title:       "Spring Exhibition",
		AddedImages: []Upload{*upload("one.webp"), *upload("two.webp")},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	urls := decodeURLs(t, gal)
	if len(urls) != 2 {
		t.Fatalf("image urls = %d, want 2", len(urls))
	}
	for _, u := range urls {
		p, ok := storage.PathFromURL(store, u)
		if !ok {
			t.Fatalf("url %q not served by store", u)
		}
		if !store.Has(p) {
			t.Errorf("object %q missing from store", p)
		}
	}
}

func TestGalleryUpdateReconcilesImageList(t *testing.T) {
	db := testDB(t)
	store := storage.NewMemStore()
	svc := NewGalleryService(db, store)

	gal, err := svc.Create(1, GalleryInput{
		Title:       "Winter Exhibition",
		AddedImages: []Upload{*upload("one.webp"), *upload("two.webp")},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	urls := decodeURLs(t, gal)
	if len(urls) != 2 {
		t.Fatalf("image urls = %d, want 2", len(urls))
	}

	updated, err := svc.Update(gal.ID, GalleryInput{
		Title:         "Winter Exhibition",
		KeepImageURLs: []string{urls[0]},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	finalURLs := decodeURLs(t, updated)
	if len(finalURLs) != 1 || finalURLs[0] != urls[0] {
		t.Errorf("final urls = %v, want [%s]", finalURLs, urls[0])
	}

	keptPath, _ := storage.PathFromURL(store, urls[0])
	droppedPath, _ := storage.PathFromURL(store, urls[1])
	if !store.Has(keptPath) {
		t.Error("kept image was removed")
	}
	if store.Has(droppedPath) {
		t.Error("dropped image still in store")
	}
}

func TestGalleryUpdateAppendsNewImages(t *testing.T) {
	db := testDB(t)
	store := storage.NewMemStore()
	svc := NewGalleryService(db, store)

	gal, err := svc.Create(1, GalleryInput{
		Title:       "Summer Exhibition",
		AddedImages: []Upload{*upload("one.webp")},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	urls := decodeURLs(t, gal)

	updated, err := svc.Update(gal.ID, GalleryInput{
		Title:         "Summer Exhibition",
		KeepImageURLs: urls,
		AddedImages:   []Upload{*upload("two.webp")},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	finalURLs := decodeURLs(t, updated)
	if len(finalURLs) != 2 {
		t.Fatalf("final urls = %d, want 2", len(finalURLs))
	}
	if finalURLs[0] != urls[0] {
		t.Errorf("kept url moved: %v", finalURLs)
	}
}

func TestGalleryDeleteCleansReactions(t *testing.T) {
	db := testDB(t)
	store := storage.NewMemStore()
	svc := NewGalleryService(db, store)

	gal, err := svc.Create(1, GalleryInput{Title: "Closing Show", TagString: "raku", Thumbnail: upload("thumb.webp")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	seed := []interface{}{
		&models.GalleryLike{GalleryID: gal.ID, UserID: 2},
		&models.GallerySave{GalleryID: gal.ID, UserID: 2},
	}
	for _, s := range seed {
		if err := db.Create(s).Error; err != nil {
			t.Fatalf("seed %T: %v", s, err)
		}
	}

	if err := svc.Delete(gal.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if store.Len() != 0 {
		t.Errorf("store holds %d objects, want 0", store.Len())
	}
	for name, model := range map[string]interface{}{
		"galleries":     &models.Gallery{},
		"gallery likes": &models.GalleryLike{},
		"gallery saves": &models.GallerySave{},
		"tag links":     &models.GalleryTag{},
	} {
		var rows int64
		if err := db.Model(model).Count(&rows).Error; err != nil {
			t.Fatalf("count %s: %v", name, err)
		}
		if rows != 0 {
			t.Errorf("%s rows = %d, want 0", name, rows)
		}
	}
}
