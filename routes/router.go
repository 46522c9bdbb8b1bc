package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hibiki/admin"
	"hibiki/config"
	"hibiki/controllers"
	"hibiki/forum"
	"hibiki/middleware"
	"hibiki/storage"
	"hibiki/store"
	"hibiki/utils"
)

// Services groups what the router wires into controllers; main builds it once
// so the background cleaner shares the same forum service.
type Services struct {
	Forum  *forum.Service
	Boards *admin.BoardService
	Staff  *admin.StaffService
}

// BuildServices constructs the service graph on top of the database and the
// public file directory.
func BuildServices(db *gorm.DB, publicDir string) *Services {
	files := storage.NewLocal(publicDir)
	boardStore := store.NewBoardStore(db)
	commentStore := store.NewCommentStore(db)
	staffStore := store.NewStaffStore(db)

	return &Services{
		Forum:  forum.NewService(boardStore, commentStore, files, forum.SystemClock(), utils.Sugar),
		Boards: admin.NewBoardService(boardStore, commentStore, files, utils.Sugar),
		Staff:  admin.NewStaffService(staffStore, utils.Sugar),
	}
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(svcs *Services) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// Stored uploads: /files/<board>/src/<name>, /files/<board>/thumb/<name>
	r.Static("/files", cfg.PublicDir)

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	forumController := controllers.NewForumController(svcs.Forum)
	adminController := controllers.NewAdminController(svcs.Boards, svcs.Staff)

	api := r.Group("/api/v1")

	boards := api.Group("/boards")
	boards.GET("/:url", forumController.GetBoardPage)
	boards.GET("/:url/res/:number", forumController.GetThread)

	posting := boards.Group("")
	posting.Use(middleware.RateLimitMiddleware())
	posting.POST("/:url/posts", forumController.CreateThread)
	posting.POST("/:url/res/:number/posts", forumController.CreateReply)
	posting.POST("/:url/delete", forumController.DeleteComments)

	adm := api.Group("/admin")
	adm.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())
	adm.GET("/boards", adminController.ListBoards)
	adm.GET("/boards/:id", adminController.GetBoard)
	adm.POST("/boards", adminController.CreateBoard)
	adm.PUT("/boards/:id", adminController.UpdateBoard)
	adm.DELETE("/boards/:id", adminController.DeleteBoard)

	staff := adm.Group("/staff")
	staff.Use(middleware.AdministratorOnly())
	staff.GET("", adminController.ListStaff)
	staff.GET("/:id", adminController.GetStaff)
	staff.POST("", adminController.CreateStaff)
	staff.PUT("/:id", adminController.UpdateStaff)
	staff.DELETE("/:id", adminController.DeleteStaff)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
