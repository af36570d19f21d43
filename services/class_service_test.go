package services

import (
	"strings"
	"testing"

	"github.com/plumstudio/atelier/models"
	"github.com/plumstudio/atelier/storage"
)

func TestClassCreate(t *testing.T) {
	db := testDB(t)
	store := storage.NewMemStore()
	svc := NewClassService(db, store)

	cls, err := svc.Create(1, ClassInput{
		Title:       "Wheel Throwing Basics",
		Category:    "beginner",
		Body:        "see TEMP_IMAGE_x here",
		TagString:   "wheel, clay",
		IsPublished: true,
		Thumbnail:   upload("thumb.webp"),
		Cover:       upload("cover.jpg"),
		ContentImages: []TempImage{
			{Token: "x", File: *upload("x.webp")},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if cls.Slug != "wheel-throwing-basics" {
		t.Errorf("slug = %q", cls.Slug)
	}
	if cls.ThumbnailURL != store.PublicURL(storage.ThumbnailPath(cls.ID, "thumb.webp")) {
		t.Errorf("thumbnail url = %q", cls.ThumbnailURL)
	}
	if cls.CoverURL != store.PublicURL(storage.CoverPath(cls.ID, "cover.jpg")) {
		t.Errorf("cover url = %q", cls.CoverURL)
	}
	if strings.Contains(cls.Body, TempImageToken) {
		t.Errorf("body still has placeholder: %q", cls.Body)
	}
	if !strings.Contains(cls.Body, "/content/") {
		t.Errorf("body missing content image url: %q", cls.Body)
	}

	var stored models.Class
	if err := db.First(&stored, cls.ID).Error; err != nil {
		t.Fatalf("load stored class: %v", err)
	}
	if stored.Body != cls.Body {
		t.Errorf("stored body = %q, want %q", stored.Body, cls.Body)
	}

	var tagCount int64
	if err := db.Model(&models.ClassTag{}).Where("class_id = ?", cls.ID).Count(&tagCount).Error; err != nil {
		t.Fatalf("count tag links: %v", err)
	}
	if tagCount != 2 {
		t.Errorf("tag links = %d, want 2", tagCount)
	}
}

func TestClassCreateRollsBackOnUploadFailure(t *testing.T) {
	db := testDB(t)
	store := storage.NewMemStore()
	store.FailUpload = "1/content/"
	svc := NewClassService(db, store)

	_, err := svc.Create(1, ClassInput{
		Title:     "Doomed Class",
		Body:      "TEMP_IMAGE_x",
		Thumbnail: upload("thumb.webp"),
		ContentImages: []TempImage{
			{Token: "x", File: *upload("x.webp")},
		},
	})
	if err == nil {
		t.Fatal("expected create to fail")
	}

	var rows int64
	if err := db.Model(&models.Class{}).Count(&rows).Error; err != nil {
		t.Fatalf("count classes: %v", err)
	}
	if rows != 0 {
		t.Errorf("class rows = %d, want 0 after rollback", rows)
	}
	if store.Len() != 0 {
		t.Errorf("store holds %d objects, want 0 after rollback", store.Len())
	}
}

func TestClassCreateRollsBackOnTagFailure(t *testing.T) {
	db := testDB(t)
	store := storage.NewMemStore()
	svc := NewClassService(db, store)

	// A tag name colliding on the unique index makes linking fail.
	if err := db.Create(&models.Tag{Name: "wheel", Slug: "wheel"}).Error; err != nil {
		t.Fatalf("seed tag: %v", err)
	}
	if err := db.Exec("DROP TABLE class_tags").Error; err != nil {
		t.Fatalf("drop join table: %v", err)
	}

	_, err := svc.Create(1, ClassInput{
		Title:     "Tagged Class",
		TagString: "wheel",
		Thumbnail: upload("thumb.webp"),
	})
	if err == nil {
		t.Fatal("expected create to fail on tag linking")
	}

	var rows int64
	if err := db.Model(&models.Class{}).Count(&rows).Error; err != nil {
		t.Fatalf("count classes: %v", err)
	}
	if rows != 0 {
		t.Errorf("class rows = %d, want 0 after rollback", rows)
	}
	if store.Len() != 0 {
		t.Errorf("store holds %d objects, want 0 after rollback", store.Len())
	}
}

func TestClassUpdateSwapsThumbnail(t *testing.T) {
	db := testDB(t)
	store := storage.NewMemStore()
	svc := NewClassService(db, store)

	cls, err := svc.Create(1, ClassInput{Title: "Glazing", Thumbnail: upload("old.webp")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	oldPath := storage.ThumbnailPath(cls.ID, "old.webp")

	updated, err := svc.Update(cls.ID, ClassInput{Title: "Glazing", Thumbnail: upload("new.png")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	newPath := storage.ThumbnailPath(cls.ID, "new.png")
	if updated.ThumbnailURL != store.PublicURL(newPath) {
		t.Errorf("thumbnail url = %q", updated.ThumbnailURL)
	}
	if !store.Has(newPath) {
		t.Error("new thumbnail missing from store")
	}
	if store.Has(oldPath) {
		t.Error("old thumbnail still in store")
	}
}

func TestClassUpdateCompensatesWhenOldObjectStuck(t *testing.T) {
	db := testDB(t)
	store := storage.NewMemStore()
	svc := NewClassService(db, store)

	cls, err := svc.Create(1, ClassInput{Title: "Raku", Thumbnail: upload("old.webp")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	oldPath := storage.ThumbnailPath(cls.ID, "old.webp")
	store.FailRemove = oldPath

	_, err = svc.Update(cls.ID, ClassInput{Title: "Raku", Thumbnail: upload("new.png")})
	if err == nil {
		t.Fatal("expected update to fail")
	}

	if !store.Has(oldPath) {
		t.Error("old thumbnail vanished despite failure")
	}
	if store.Has(storage.ThumbnailPath(cls.ID, "new.png")) {
		t.Error("replacement thumbnail not compensated away")
	}

	var stored models.Class
	if err := db.First(&stored, cls.ID).Error; err != nil {
		t.Fatalf("load class: %v", err)
	}
	if stored.ThumbnailURL != store.PublicURL(oldPath) {
		t.Errorf("thumbnail url = %q, want old url", stored.ThumbnailURL)
	}
}

func TestClassUpdateRemovesDroppedBodyImages(t *testing.T) {
	db := testDB(t)
	store := storage.NewMemStore()
	svc := NewClassService(db, store)

	cls, err := svc.Create(1, ClassInput{
		Title: "Sculpting",
		Body:  "a TEMP_IMAGE_a b TEMP_IMAGE_b",
		ContentImages: []TempImage{
			{Token: "a", File: *upload("a.webp")},
			{Token: "b", File: *upload("b.webp")},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	paths := ExtractOwnedImagePaths(store, cls.ID, cls.Body)
	if len(paths) != 2 {
		t.Fatalf("extracted %d paths, want 2", len(paths))
	}

	// New body keeps only the first image.
	keptURL := store.PublicURL(paths[0])
	_, err = svc.Update(cls.ID, ClassInput{Title: "Sculpting", Body: "only " + keptURL})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if !store.Has(paths[0]) {
		t.Error("kept image was removed")
	}
	if store.Has(paths[1]) {
		t.Error("dropped image still in store")
	}
}

func TestClassDeleteAbortsWhenStorageFails(t *testing.T) {
	db := testDB(t)
	store := storage.NewMemStore()
	svc := NewClassService(db, store)

	cls, err := svc.Create(1, ClassInput{Title: "Firing", Thumbnail: upload("thumb.webp")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	store.FailRemove = "1/"
	if err := svc.Delete(cls.ID); err == nil {
		t.Fatal("expected delete to fail")
	}

	var rows int64
	if err := db.Model(&models.Class{}).Count(&rows).Error; err != nil {
		t.Fatalf("count classes: %v", err)
	}
	if rows != 1 {
		t.Errorf("class rows = %d, want 1 when storage cleanup fails", rows)
	}
}

func TestClassDeleteCleansEverything(t *testing.T) {
	db := testDB(t)
	store := storage.NewMemStore()
	svc := NewClassService(db, store)

	cls, err := svc.Create(1, ClassInput{Title: "Handbuilding", TagString: "clay", Thumbnail: upload("thumb.webp")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	comment := models.Comment{ClassID: cls.ID, UserID: 2, Content: "nice", IsVisible: true}
	if err := db.Create(&comment).Error; err != nil {
		t.Fatalf("seed comment: %v", err)
	}
	seed := []interface{}{
		&models.CommentLike{CommentID: comment.ID, UserID: 3},
		&models.ClassLike{ClassID: cls.ID, UserID: 3},
		&models.ClassSave{ClassID: cls.ID, UserID: 3},
	}
	for _, s := range seed {
		if err := db.Create(s).Error; err != nil {
			t.Fatalf("seed %T: %v", s, err)
		}
	}

	if err := svc.Delete(cls.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if store.Len() != 0 {
		t.Errorf("store holds %d objects, want 0", store.Len())
	}
	for name, model := range map[string]interface{}{
		"classes":       &models.Class{},
		"comments":      &models.Comment{},
		"comment likes": &models.CommentLike{},
		"class likes":   &models.ClassLike{},
		"class saves":   &models.ClassSave{},
		"tag links":     &models.ClassTag{},
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
