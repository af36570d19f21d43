package main

import (
	"path/filepath"

	"github.com/plumstudio/atelier/config"
	"github.com/plumstudio/atelier/models"
	"github.com/plumstudio/atelier/routes"
	"github.com/plumstudio/atelier/storage"
	"github.com/plumstudio/atelier/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Class{}, &models.ClassLike{}, &models.ClassSave{},
		&models.Gallery{}, &models.GalleryLike{}, &models.GallerySave{},
		&models.News{},
		&models.Tag{}, &models.ClassTag{}, &models.GalleryTag{},
		&models.Comment{}, &models.CommentLike{},
		&models.Inquiry{},
		&models.PageView{},
	)

	// One disk bucket per content type so storage folders keyed by row id
	// never collide across types.
	stores := routes.Stores{
		Classes:   mustStore(cfg.StorageRoot, cfg.StorageBaseURL, "classes"),
		Galleries: mustStore(cfg.StorageRoot, cfg.StorageBaseURL, "galleries"),
		News:      mustStore(cfg.StorageRoot, cfg.StorageBaseURL, "news"),
	}

	r := routes.SetupRouter(db, stores)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}

func mustStore(root, baseURL, name string) storage.Store {
	store, err := storage.NewDiskStore(filepath.Join(root, name), baseURL+"/"+name)
	if err != nil {
		utils.Sugar.Fatalf("init %s storage: %v", name, err)
	}
	return store
}
