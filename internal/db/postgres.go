package db

import (
  "fmt"

  "gorm.io/driver/postgres"
  "gorm.io/gorm"

  "github.com/haigui-org/haigui-backend/internal/logger"
  "github.com/haigui-org/haigui-backend/internal/types"
  "github.com/haigui-org/haigui-backend/internal/utils"
)

type PostgresService struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
  serviceLog := log.With("service", "PostgresService")

  //1) Get and Set Environment Variables
  log.Info("Attempting to load environment variables for Postgres now...")
  postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
  postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
  postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
  postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
  postgresName := utils.GetEnv("POSTGRES_NAME", "haigui", log)
  log.Info("Environment variables loaded for Postgres :)")

  //2) Construct DSN From Environment Variables
  dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

  //3) Attempt DB Connection
  log.Info("Attempting to connect to Postgres DB now...")
  db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
    DisableForeignKeyConstraintWhenMigrating: true,
  })
  if err != nil {
    log.Error("Failed to connect to Postgres DB", "error", err)
    return nil, fmt.Errorf("Failed to connect to Postgres DB: %w", err)
  }
  log.Info("Successfully Connected to Postgres DB :)")

  //4) Enable uuid-ossp Extension
  if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
    log.Error("Failed to enable uuid-ossp extension :(", "error", err)
    return nil, fmt.Errorf("failed to enable uuid-ossp extension: %w", err)
  }
  log.Info("uuid-ossp extension enabled or already exists :)")

  return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
  s.log.Info("Starting AutoMigrateAll for all GORM models now...")

  err := s.db.AutoMigrate(
    &types.User{},
    &types.Bot{},
    &types.Puzzle{},
    &types.Chat{},
    &types.Message{},
    &types.ChatPuzzleHistory{},
  )
  if err != nil {
    s.log.Error("AutoMigrateAll failed for Base Tables :(", "error", err)
    return err
  }
  s.log.Info("AutoMigrateAll completed successfully for Base Tables :)")

  s.log.Info("Configuring Foreign Key Relationships for Base Tables now...")
  // -- Message.chat_id => chats.id (ON DELETE CASCADE)
  if err := s.db.Exec(`
      ALTER TABLE "messages"
      ADD CONSTRAINT "fk_messages_chat_id"
      FOREIGN KEY ("chat_id")
      REFERENCES "chats"("id")
      ON DELETE CASCADE
  `).Error; err != nil {
    return fmt.Errorf("failed to add fk_messages_chat_id: %w", err)
  }
  // -- Chat.current_puzzle_id => puzzles.id (ON DELETE SET NULL)
  if err := s.db.Exec(`
      ALTER TABLE "chats"
      ADD CONSTRAINT "fk_chats_current_puzzle_id"
      FOREIGN KEY ("current_puzzle_id")
      REFERENCES "puzzles"("id")
      ON DELETE SET NULL
  `).Error; err != nil {
    return fmt.Errorf("failed to add fk_chats_current_puzzle_id: %w", err)
  }
  // -- ChatPuzzleHistory.chat_id => chats.id (ON DELETE CASCADE)
  if err := s.db.Exec(`
      ALTER TABLE "chat_puzzle_history"
      ADD CONSTRAINT "fk_chat_puzzle_history_chat_id"
      FOREIGN KEY ("chat_id")
      REFERENCES "chats"("id")
      ON DELETE CASCADE
  `).Error; err != nil {
    return fmt.Errorf("failed to add fk_chat_puzzle_history_chat_id: %w", err)
  }
  // -- ChatPuzzleHistory.puzzle_id => puzzles.id (ON DELETE CASCADE)
  if err := s.db.Exec(`
      ALTER TABLE "chat_puzzle_history"
      ADD CONSTRAINT "fk_chat_puzzle_history_puzzle_id"
      FOREIGN KEY ("puzzle_id")
      REFERENCES "puzzles"("id")
      ON DELETE CASCADE
  `).Error; err != nil {
    return fmt.Errorf("failed to add fk_chat_puzzle_history_puzzle_id: %w", err)
  }
  // -- Pivot tables GORM auto-creates for chat members
  if err := s.db.Exec(`
      ALTER TABLE "chat_users"
      ADD CONSTRAINT "fk_chat_users_chat_id"
      FOREIGN KEY ("chat_id")
      REFERENCES "chats"("id")
      ON DELETE CASCADE,
      ADD CONSTRAINT "fk_chat_users_user_id"
      FOREIGN KEY ("user_id")
      REFERENCES "users"("id")
      ON DELETE CASCADE
  `).Error; err != nil {
    return fmt.Errorf("failed to add FK constraints to chat_users pivot: %w", err)
  }
  if err := s.db.Exec(`
      ALTER TABLE "chat_bots"
      ADD CONSTRAINT "fk_chat_bots_chat_id"
      FOREIGN KEY ("chat_id")
      REFERENCES "chats"("id")
      ON DELETE CASCADE,
      ADD CONSTRAINT "fk_chat_bots_bot_id"
      FOREIGN KEY ("bot_id")
      REFERENCES "bots"("id")
      ON DELETE CASCADE
  `).Error; err != nil {
    return fmt.Errorf("failed to add FK constraints to chat_bots pivot: %w", err)
  }
  s.log.Info("Successfully Added Foreign Key Relationships to Base Tables :)")

  return nil
}

func (s *PostgresService) DB() *gorm.DB {
  return s.db
}
