package router

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-crud-api/internal/adapter/db/gormstore"
	"user-crud-api/internal/adapter/gin/handler"
	"user-crud-api/internal/adapter/ratelimit"
	"user-crud-api/internal/usecase/user"
)

func setupBenchmarkRouter(b *testing.B) *gin.Engine {
	b.Helper()
	gin.SetMode(gin.TestMode)
	log := zap.NewNop()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		b.Fatal(err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		b.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)
	b.Cleanup(func() { _ = sqlDB.Close() })
	if err := gormstore.Migrate(db); err != nil {
		b.Fatal(err)
	}

	svc := user.New(gormstore.NewUserRepo(db, log), log)
	return SetupRouter(handler.NewUserHandler(svc, log), ratelimit.NewLimiter(nil, ratelimit.Config{}, log), nil, log)
}

func BenchmarkCreateUser(b *testing.B) {
	r := setupBenchmarkRouter(b)
	body := []byte(`{"name":"Bench","email":"bench@example.com"}`)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusCreated {
			b.Fatalf("unexpected status %d", w.Code)
		}
	}
}

func BenchmarkGetUser(b *testing.B) {
	r := setupBenchmarkRouter(b)

	req := httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewBufferString(`{"name":"Bench","email":"bench@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(httptest.NewRecorder(), req)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users/1", nil))
		if w.Code != http.StatusOK {
			b.Fatalf("unexpected status %d", w.Code)
		}
	}
}
