package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/inkpress/internal/config"
	"github.com/inkpress/internal/db"
	"github.com/inkpress/internal/handler"
	"github.com/inkpress/internal/router"
	"github.com/inkpress/internal/storage"
)

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	if err := db.EnsureUser(cfg.SeedAuthorName, cfg.SeedAuthorPassword); err != nil {
		log.Fatalf("failed to seed author account: %v", err)
	}

	store := storage.NewDiskStore(cfg.UploadDir, cfg.UploadURLPath, cfg.SiteBaseURL)
	api := handler.NewAPI(db.DB, store)

	r := router.SetupRouter(cfg, api)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
