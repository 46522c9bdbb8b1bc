package controllers

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hibiki/forum"
	"hibiki/models"
	"hibiki/store"
)

// setupBoardRoutes wires the reading endpoints onto a throwaway database.
// Redis is absent in tests, so every page renders uncached.
func setupBoardRoutes(t *testing.T) (*gin.Engine, *forum.Service) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")

	dsn := filepath.Join(t.TempDir(), "controller.db") + "?_busy_timeout=5000"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Discard,
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.Board{}, &models.BoardSettings{}, &models.Comment{}); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	boards := store.NewBoardStore(db)
	if err := boards.Create(&models.Board{
		URL:  "b",
		Name: "Test board /b/",
		Settings: models.BoardSettings{
			EnablePosting:    true,
			MaxThreadCount:   500,
			MaxCommentLength: 5000,
		},
	}); err != nil {
		t.Fatalf("create board: %v", err)
	}

	svc := forum.NewService(boards, store.NewCommentStore(db), nil, nil, nil)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	c := NewForumController(svc)
	r.GET("/api/v1/boards/:url", c.GetBoardPage)
	return r, svc
}

func getStatus(t *testing.T, r *gin.Engine, path string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestGetBoardPageBeyondLastIs404(t *testing.T) {
	r, svc := setupBoardRoutes(t)

	if _, err := svc.CreateThread("b", &forum.Payload{Comment: "hello", Password: "pw"}, "1.2.3.4"); err != nil {
		t.Fatalf("create thread: %v", err)
	}

	if code := getStatus(t, r, "/api/v1/boards/b"); code != http.StatusOK {
		t.Errorf("first page: status %d, want 200", code)
	}
	if code := getStatus(t, r, "/api/v1/boards/b?page=5"); code != http.StatusNotFound {
		t.Errorf("page beyond the last: status %d, want 404", code)
	}
}

func TestGetBoardPageZeroOfEmptyBoardIsOK(t *testing.T) {
	r, _ := setupBoardRoutes(t)

	// An empty board still has a first page
	if code := getStatus(t, r, "/api/v1/boards/b"); code != http.StatusOK {
		t.Errorf("empty board page 0: status %d, want 200", code)
	}
	if code := getStatus(t, r, "/api/v1/boards/b?page=1"); code != http.StatusNotFound {
		t.Errorf("empty board page 1: status %d, want 404", code)
	}
}

func TestGetBoardPageRejectsMalformedPage(t *testing.T) {
	r, _ := setupBoardRoutes(t)

	if code := getStatus(t, r, "/api/v1/boards/b?page=-1"); code != http.StatusBadRequest {
		t.Errorf("negative page: status %d, want 400", code)
	}
	if code := getStatus(t, r, "/api/v1/boards/b?page=abc"); code != http.StatusBadRequest {
		t.Errorf("non-numeric page: status %d, want 400", code)
	}
}
