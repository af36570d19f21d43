package services

import (
	"reflect"
	"testing"

	"github.com/plumstudio/atelier/models"
)

func TestNormalizeTags(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"wheel, glaze, raku", []string{"wheel", "glaze", "raku"}},
		{" wheel ,, glaze , wheel ", []string{"wheel", "glaze"}},
		{"", []string{}},
		{", ,", []string{}},
	}
	for _, c := range cases {
		if got := NormalizeTags(c.in); !reflect.DeepEqual(got, c.want) {
			t.Errorf("NormalizeTags(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestLinkClassTagsCreatesAndCounts(t *testing.T) {
	db := testDB(t)
	if err := LinkClassTags(db, 1, "wheel, glaze"); err != nil {
		t.Fatalf("LinkClassTags: %v", err)
	}

	var tags []models.Tag
	if err := db.Order("name").Find(&tags).Error; err != nil {
		t.Fatalf("load tags: %v", err)
	}
	if len(tags) != 2 {
		t.Fatalf("tag count = %d, want 2", len(tags))
	}
	for _, tag := range tags {
		if tag.UsageCount != 1 {
			t.Errorf("tag %q usage = %d, want 1", tag.Name, tag.UsageCount)
		}
	}

	var links int64
	if err := db.Model(&models.ClassTag{}).Where("class_id = ?", 1).Count(&links).Error; err != nil {
		t.Fatalf("count links: %v", err)
	}
	if links != 2 {
		t.Errorf("link count = %d, want 2", links)
	}
}

func TestLinkClassTagsReusesExistingTag(t *testing.T) {
	db := testDB(t)
	if err := LinkClassTags(db, 1, "wheel"); err != nil {
		t.Fatalf("link class 1: %v", err)
	}
	if err := LinkClassTags(db, 2, "wheel"); err != nil {
		t.Fatalf("link class 2: %v", err)
	}

	var tags []models.Tag
	if err := db.Find(&tags).Error; err != nil {
		t.Fatalf("load tags: %v", err)
	}
	if len(tags) != 1 {
		t.Fatalf("tag count = %d, want 1", len(tags))
	}
	if tags[0].UsageCount != 2 {
		t.Errorf("usage = %d, want 2", tags[0].UsageCount)
	}
}

func TestRelinkClassTagsReplacesSet(t *testing.T) {
	db := testDB(t)
	if err := LinkClassTags(db, 1, "wheel, glaze"); err != nil {
		t.Fatalf("initial link: %v", err)
	}
	if err := RelinkClassTags(db, 1, "glaze, raku"); err != nil {
		t.Fatalf("relink: %v", err)
	}

	usage := map[string]int64{}
	var tags []models.Tag
	if err := db.Find(&tags).Error; err != nil {
		t.Fatalf("load tags: %v", err)
	}
	for _, tag := range tags {
		usage[tag.Name] = tag.UsageCount
	}
	if usage["wheel"] != 0 {
		t.Errorf("wheel usage = %d, want 0", usage["wheel"])
	}
	if usage["glaze"] != 1 {
		t.Errorf("glaze usage = %d, want 1", usage["glaze"])
	}
	if usage["raku"] != 1 {
		t.Errorf("raku usage = %d, want 1", usage["raku"])
	}

	var linked []models.ClassTag
	if err := db.Where("class_id = ?", 1).Find(&linked).Error; err != nil {
		t.Fatalf("load links: %v", err)
	}
	if len(linked) != 2 {
		t.Errorf("link count = %d, want 2", len(linked))
	}
}

func TestUnlinkClassTags(t *testing.T) {
	db := testDB(t)
	if err := LinkClassTags(db, 1, "wheel"); err != nil {
		t.Fatalf("link: %v", err)
	}
	if err := UnlinkClassTags(db, 1); err != nil {
		t.Fatalf("unlink: %v", err)
	}
	var links int64
	if err := db.Model(&models.ClassTag{}).Count(&links).Error; err != nil {
		t.Fatalf("count links: %v", err)
	}
	if links != 0 {
		t.Errorf("link count = %d, want 0", links)
	}
}
