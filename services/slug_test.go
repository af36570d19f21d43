package services

import (
	"strings"
	"testing"

	"github.com/plumstudio/atelier/models"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"  Ceramics 101: Intro!  ", "ceramics-101-intro"},
		{"wheel---throwing", "wheel-throwing"},
		{"도예 수업", "도예-수업"},
		{"Déjà Vu", "déjà-vu"},
		{"!!!", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := Slugify(c.in); got != c.want {
			t.Errorf("Slugify(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestUniqueSlugNoCollision(t *testing.T) {
	db := testDB(t)
	slug, err := UniqueSlug(db, "classes", "Pottery Basics")
	if err != nil {
		t.Fatalf("UniqueSlug: %v", err)
	}
	if slug != "pottery-basics" {
		t.Errorf("slug = %q, want %q", slug, "pottery-basics")
	}
}

func TestUniqueSlugCollisionAppendsTimestamp(t *testing.T) {
	db := testDB(t)
	if err := db.Create(&models.Class{Title: "Pottery Basics", Slug: "pottery-basics"}).Error; err != nil {
		t.Fatalf("seed class: %v", err)
	}

	slug, err := UniqueSlug(db, "classes", "Pottery Basics")
	if err != nil {
		t.Fatalf("UniqueSlug: %v", err)
	}
	if slug == "pottery-basics" {
		t.Fatal("collision returned the taken slug")
	}
	if !strings.HasPrefix(slug, "pottery-basics-") {
		t.Errorf("slug = %q, want prefix %q", slug, "pottery-basics-")
	}
}

func TestUniqueSlugEmptyTitle(t *testing.T) {
	db := testDB(t)
	slug, err := UniqueSlug(db, "classes", "???")
	if err != nil {
		t.Fatalf("UniqueSlug: %v", err)
	}
	if !strings.HasPrefix(slug, "untitled-") {
		t.Errorf("slug = %q, want prefix %q", slug, "untitled-")
	}
}
