package main

import (
	"time"

	"hibiki/config"
	"hibiki/models"
	"hibiki/routes"
	"hibiki/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(&models.Board{}, &models.BoardSettings{}, &models.Comment{}, &models.Staff{})

	svcs := routes.BuildServices(db, cfg.PublicDir)
	r := routes.SetupRouter(svcs)

	// Background sweep of threads past their board's keep-alive window
	if cfg.CleanerIntervalMinutes > 0 {
		svcs.Forum.StartThreadCleaner(time.Duration(cfg.CleanerIntervalMinutes) * time.Minute)
	}

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
