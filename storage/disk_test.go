package storage

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDiskStoreUploadListRemove(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "/static/media/classes")
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}

	url, err := store.Upload("7/content/a.webp", []byte("img"), "image/webp")
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if url != "/static/media/classes/7/content/a.webp" {
		t.Errorf("url = %q", url)
	}

	if _, err := store.Upload("7/thumbnail.webp", []byte("img"), "image/webp"); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	objects, err := store.List("7/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"7/content/a.webp", "7/thumbnail.webp"}
	if !reflect.DeepEqual(objects, want) {
		t.Errorf("List = %v, want %v", objects, want)
	}

	if err := store.Remove([]string{"7/content/a.webp"}); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(filepath.Join(store.Root, "7", "content", "a.webp")); !os.IsNotExist(err) {
		t.Error("object still on disk after Remove")
	}
}

func TestDiskStoreRemoveMissingIsNoError(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "/static/media/news")
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}
	if err := store.Remove([]string{"9/thumbnail.webp"}); err != nil {
		t.Errorf("Remove of missing object: %v", err)
	}
}

func TestDiskStoreListMissingFolder(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "/static/media/news")
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}
	objects, err := store.List("42/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(objects) != 0 {
		t.Errorf("List of missing folder = %v", objects)
	}
}

func TestDiskStoreRejectsTraversal(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "/static/media/classes")
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}
	if _, err := store.Upload("../evil.webp", []byte("x"), "image/webp"); err == nil {
		t.Error("traversal upload accepted")
	}
	if err := store.Remove([]string{"../../etc/passwd"}); err == nil {
		t.Error("traversal remove accepted")
	}
}
