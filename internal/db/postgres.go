package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/dinkarkumardk/book-review-backend/internal/logger"
	"github.com/dinkarkumardk/book-review-backend/internal/types"
	"github.com/dinkarkumardk/book-review-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "bookverse", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	log.Info("Connecting to Postgres...")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		serviceLog.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("Failed to connect to Postgres: %w", err)
	}

	return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&types.User{},
		&types.Book{},
		&types.Review{},
		&types.Favorite{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}
	s.log.Info("Configuring foreign key relationships for postgres tables...")
	if err := s.db.Exec(`
		ALTER TABLE "review"
		DROP CONSTRAINT IF EXISTS "fk_review_book_id";
		ALTER TABLE "review"
		ADD CONSTRAINT "fk_review_book_id"
		FOREIGN KEY ("book_id")
		REFERENCES "book"("id")
		ON DELETE CASCADE
	`).Error; err != nil {
		return fmt.Errorf("Failed to add fk_review_book_id: %w", err)
	}
	if err := s.db.Exec(`
		ALTER TABLE "favorite"
		DROP CONSTRAINT IF EXISTS "fk_favorite_book_id";
		ALTER TABLE "favorite"
		ADD CONSTRAINT "fk_favorite_book_id"
		FOREIGN KEY ("book_id")
		REFERENCES "book"("id")
		ON DELETE CASCADE
	`).Error; err != nil {
		return fmt.Errorf("Failed to add fk_favorite_book_id: %w", err)
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
