package test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"tangerine/internal/database"
	"tangerine/internal/models"
	"tangerine/internal/repository"

	_ "github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type pgEnv struct {
	host string
	port string
	user string
	pass string
}

func getEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func readPGEnv() pgEnv {
	return pgEnv{
		host: getEnvOrDefault("DB_HOST", "localhost"),
		port: getEnvOrDefault("DB_PORT", "5432"),
		user: getEnvOrDefault("DB_USER", "user"),
		pass: getEnvOrDefault("DB_PASSWORD", "password"),
	}
}

func maintenanceDSN(cfg pgEnv, dbName string) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", cfg.user, cfg.pass, cfg.host, cfg.port, dbName)
}

// createEphemeralDB provisions a throwaway database, skipping the test when
// no PostgreSQL instance is reachable.
func createEphemeralDB(t *testing.T) (pgEnv, string) {
	t.Helper()
	cfg := readPGEnv()
	dbName := fmt.Sprintf("tangerine_it_%d", time.Now().UnixNano())

	sqlDB, err := sql.Open("pgx", maintenanceDSN(cfg, "postgres"))
	if err != nil {
		t.Skipf("skipping: cannot open maintenance connection: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := sqlDB.PingContext(context.Background()); err != nil {
		t.Skipf("skipping: PostgreSQL not reachable: %v", err)
	}

	if _, err := sqlDB.ExecContext(context.Background(), `CREATE DATABASE `+dbName); err != nil {
		t.Fatalf("create ephemeral db: %v", err)
	}

	t.Cleanup(func() {
		_, _ = sqlDB.ExecContext(context.Background(), `SELECT pg_terminate_backend(pid) FROM pg_stat_activity WHERE datname = $1`, dbName)
		_, _ = sqlDB.ExecContext(context.Background(), `DROP DATABASE IF EXISTS `+dbName)
	})

	return cfg, dbName
}

func openEphemeralGorm(t *testing.T, cfg pgEnv, dbName string) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.Open(maintenanceDSN(cfg, dbName)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open ephemeral gorm: %v", err)
	}
	return db
}

func seedCommentFixture(t *testing.T, db *gorm.DB) (userID, commentID uint) {
	t.Helper()

	user := models.User{Username: "it_user", Email: "it_user@example.com", Password: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	post := models.Post{Title: "fixture", Content: "fixture", UserID: user.ID, LastActivityAt: time.Now()}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	comment := models.Comment{Content: "fixture", UserID: user.ID, PostID: post.ID, GroupNumber: 1}
	if err := db.Create(&comment).Error; err != nil {
		t.Fatalf("create comment: %v", err)
	}
	return user.ID, comment.ID
}

// TestFavoriteInsertUniqueUnderConcurrency hammers the same (comment, user)
// pair from many goroutines. The unique constraint plus ON CONFLICT DO
// NOTHING must let exactly one insert report a written row.
func TestFavoriteInsertUniqueUnderConcurrency(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cfg, dbName := createEphemeralDB(t)
	db := openEphemeralGorm(t, cfg, dbName)

	ctx := context.Background()
	if err := database.RunMigrations(ctx, db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	userID, commentID := seedCommentFixture(t, db)
	repo := repository.NewFavoriteRepository(db)

	const workers = 16
	var wg sync.WaitGroup
	inserted := make(chan bool, workers)
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.Insert(ctx, commentID, userID)
			if err != nil {
				errs <- err
				return
			}
			inserted <- ok
		}()
	}
	wg.Wait()
	close(inserted)
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent insert failed: %v", err)
	}

	wins := 0
	for ok := range inserted {
		if ok {
			wins++
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one insert to report a row, got %d", wins)
	}

	count, err := repo.CountByComment(ctx, commentID)
	if err != nil {
		t.Fatalf("count favorites: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one favorite row, got %d", count)
	}

	// Toggle-off removes the single row.
	removed, err := repo.Delete(ctx, commentID, userID)
	if err != nil {
		t.Fatalf("delete favorite: %v", err)
	}
	if !removed {
		t.Fatal("expected delete to remove the row")
	}
	removedAgain, err := repo.Delete(ctx, commentID, userID)
	if err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if removedAgain {
		t.Fatal("second delete must be a no-op")
	}
}
