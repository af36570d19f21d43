package storage

import (
	"reflect"
	"strings"
	"testing"
)

func TestObjectPaths(t *testing.T) {
	if got := ThumbnailPath(7, "pic.JPG"); got != "7/thumbnail.jpg" {
		t.Errorf("ThumbnailPath = %q", got)
	}
	if got := CoverPath(7, "cover.png"); got != "7/cover.png" {
		t.Errorf("CoverPath = %q", got)
	}
	// Extension falls back to webp when the filename has none.
	if got := ThumbnailPath(7, "noext"); got != "7/thumbnail.webp" {
		t.Errorf("ThumbnailPath without ext = %q", got)
	}
	content := ContentImagePath(7, "body.png")
	if !strings.HasPrefix(content, "7/content/") || !strings.HasSuffix(content, ".png") {
		t.Errorf("ContentImagePath = %q", content)
	}
	if ContentImagePath(7, "body.png") == content {
		t.Error("ContentImagePath not unique per call")
	}
}

func TestOwns(t *testing.T) {
	if !Owns(7, "7/thumbnail.webp") {
		t.Error("7/thumbnail.webp should belong to resource 7")
	}
	if Owns(7, "70/thumbnail.webp") {
		t.Error("70/thumbnail.webp must not match resource 7")
	}
	if Owns(7, "8/content/a.webp") {
		t.Error("foreign folder matched")
	}
}

func TestFilterOwned(t *testing.T) {
	in := []string{"7/a.webp", "8/b.webp", "7/content/c.webp", "70/d.webp"}
	got := FilterOwned(7, in)
	want := []string{"7/a.webp", "7/content/c.webp"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FilterOwned = %v, want %v", got, want)
	}
}

func TestPathFromURL(t *testing.T) {
	store := NewMemStore()
	url := store.PublicURL("7/content/a.webp")
	p, ok := PathFromURL(store, url)
	if !ok || p != "7/content/a.webp" {
		t.Errorf("PathFromURL(%q) = %q, %v", url, p, ok)
	}
	if _, ok := PathFromURL(store, "https://elsewhere.example/7/a.webp"); ok {
		t.Error("foreign url accepted")
	}
	if _, ok := PathFromURL(store, ""); ok {
		t.Error("empty url accepted")
	}
}

func TestRemoveFolder(t *testing.T) {
	store := NewMemStore()
	for _, p := range []string{"7/thumbnail.webp", "7/content/a.webp", "7/content/b.webp", "8/thumbnail.webp"} {
		if _, err := store.Upload(p, []byte("x"), "image/webp"); err != nil {
			t.Fatalf("seed %s: %v", p, err)
		}
	}

	if err := RemoveFolder(store, 7); err != nil {
		t.Fatalf("RemoveFolder: %v", err)
	}

	left, err := store.List("7/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(left) != 0 {
		t.Errorf("folder 7 still holds %v", left)
	}
	if !store.Has("8/thumbnail.webp") {
		t.Error("neighbor folder was touched")
	}
}

func TestRemoveFolderPropagatesErrors(t *testing.T) {
	store := NewMemStore()
	if _, err := store.Upload("7/thumbnail.webp", []byte("x"), "image/webp"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	store.FailRemove = "7/"
	if err := RemoveFolder(store, 7); err == nil {
		t.Error("expected remove failure to surface")
	}

	store.FailRemove = ""
	store.FailList = true
	if err := RemoveFolder(store, 7); err == nil {
		t.Error("expected list failure to surface")
	}
}
