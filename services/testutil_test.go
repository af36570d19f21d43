package services

import (
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/plumstudio/atelier/models"
)

// testDB opens a fresh in-memory database migrated with every model.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Tag{}, &models.ClassTag{}, &models.GalleryTag{},
		&models.Class{}, &models.ClassLike{}, &models.ClassSave{},
		&models.Gallery{}, &models.GalleryLike{}, &models.GallerySave{},
		&models.News{},
		&models.Comment{}, &models.CommentLike{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func upload(name string) *Upload {
	return &Upload{Filename: name, ContentType: "image/webp", Data: []byte("img:" + name)}
}
