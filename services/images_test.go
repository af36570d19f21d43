package services

import (
	"reflect"
	"strings"
	"testing"

	"github.com/plumstudio/atelier/storage"
)

func TestReplaceTempImages(t *testing.T) {
	store := storage.NewMemStore()
	body := "intro TEMP_IMAGE_a then TEMP_IMAGE_b end"
	files := []TempImage{
		{Token: "a", File: *upload("a.webp")},
		{Token: "b", File: *upload("b.png")},
	}

	newBody, uploaded, err := ReplaceTempImages(store, 7, body, files)
	if err != nil {
		t.Fatalf("ReplaceTempImages: %v", err)
	}
	if strings.Contains(newBody, TempImageToken) {
		t.Errorf("body still contains placeholder: %q", newBody)
	}
	if len(uploaded) != 2 {
		t.Fatalf("uploaded = %d paths, want 2", len(uploaded))
	}
	for _, p := range uploaded {
		if !strings.HasPrefix(p, "7/content/") {
			t.Errorf("uploaded path %q outside content folder", p)
		}
		if !store.Has(p) {
			t.Errorf("object %q missing from store", p)
		}
		if !strings.Contains(newBody, store.PublicURL(p)) {
			t.Errorf("body does not reference %q", store.PublicURL(p))
		}
	}
}

func TestReplaceTempImagesNoFiles(t *testing.T) {
	store := storage.NewMemStore()
	body := "nothing to do TEMP_IMAGE_x"
	newBody, uploaded, err := ReplaceTempImages(store, 7, body, nil)
	if err != nil {
		t.Fatalf("ReplaceTempImages: %v", err)
	}
	if newBody != body {
		t.Errorf("body changed without files: %q", newBody)
	}
	if len(uploaded) != 0 {
		t.Errorf("uploaded = %v, want none", uploaded)
	}
}

func TestReplaceTempImagesUploadFailure(t *testing.T) {
	store := storage.NewMemStore()
	store.FailUpload = "7/content/"
	_, uploaded, err := ReplaceTempImages(store, 7, "TEMP_IMAGE_a", []TempImage{
		{Token: "a", File: *upload("a.webp")},
	})
	if err == nil {
		t.Fatal("expected upload error")
	}
	if len(uploaded) != 0 {
		t.Errorf("uploaded = %v, want none", uploaded)
	}
}

func TestExtractOwnedImagePaths(t *testing.T) {
	store := storage.NewMemStore()
	own := store.PublicURL("7/content/abc-123.webp")
	foreign := store.PublicURL("8/content/other.webp")
	body := `<img src="` + own + `"> <img src="` + foreign + `"> again ` + own

	got := ExtractOwnedImagePaths(store, 7, body)
	want := []string{"7/content/abc-123.webp"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractOwnedImagePaths = %v, want %v", got, want)
	}
}

func TestDiffRemoved(t *testing.T) {
	old := []string{"7/content/a.webp", "7/content/b.webp", "7/content/c.webp"}
	updated := []string{"7/content/b.webp"}
	got := DiffRemoved(old, updated)
	want := []string{"7/content/a.webp", "7/content/c.webp"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DiffRemoved = %v, want %v", got, want)
	}
}
