package services

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"gorm.io/gorm"
)

// Slugify derives a URL slug from a title: lowercase, letters/digits kept
// (including CJK and Hangul), everything else collapsed into single hyphens.
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphen
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// UniqueSlug returns a slug for title that no row of the given table uses.
// On collision the current unix timestamp is appended and the title is
// re-slugified. The check-then-insert race is not closed; the unique index
// on the slug column is the final arbiter.
func UniqueSlug(db *gorm.DB, table, title string) (string, error) {
	slug := Slugify(title)
	if slug == "" {
		slug = fmt.Sprintf("untitled-%d", time.Now().Unix())
	}

	var count int64
	if err := db.Table(table).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return "", fmt.Errorf("slug lookup on %s: %w", table, err)
	}
	if count == 0 {
		return slug, nil
	}
	return Slugify(fmt.Sprintf("%s %d", title, time.Now().Unix())), nil
}
