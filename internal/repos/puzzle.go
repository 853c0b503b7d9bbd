package repos

import (
    "context"
    "errors"
    "fmt"
    "time"

    "github.com/google/uuid"
    "gorm.io/gorm"

    "github.com/haigui-org/haigui-backend/internal/apperrors"
    "github.com/haigui-org/haigui-backend/internal/logger"
    "github.com/haigui-org/haigui-backend/internal/types"
)

type PuzzleRepo interface {
    // CRUD
    Create(ctx context.Context, tx *gorm.DB, puzzle *types.Puzzle) (*types.Puzzle, error)
    GetByID(ctx context.Context, tx *gorm.DB, puzzleID uuid.UUID) (*types.Puzzle, error)
    Update(ctx context.Context, tx *gorm.DB, puzzleID uuid.UUID, fields map[string]interface{}) (*types.Puzzle, error)
    IncrementUsage(ctx context.Context, tx *gorm.DB, puzzleID uuid.UUID) error

    // SESSION HISTORY
    OpenHistory(ctx context.Context, tx *gorm.DB, chatID, puzzleID uuid.UUID) (*types.ChatPuzzleHistory, error)
    CloseOpenHistory(ctx context.Context, tx *gorm.DB, chatID uuid.UUID) error
    GetHistoryByChat(ctx context.Context, tx *gorm.DB, chatID uuid.UUID) ([]*types.ChatPuzzleHistory, error)
}

type puzzleRepo struct {
    db  *gorm.DB
    log *logger.Logger
}

func NewPuzzleRepo(db *gorm.DB, baseLog *logger.Logger) PuzzleRepo {
    return &puzzleRepo{
        db:  db,
        log: baseLog.With("repo", "PuzzleRepo"),
    }
}

func (pr *puzzleRepo) Create(ctx context.Context, tx *gorm.DB, puzzle *types.Puzzle) (*types.Puzzle, error) {
    transaction := tx
    if transaction == nil {
        transaction = pr.db
    }
    if puzzle.ID == uuid.Nil {
        puzzle.ID = uuid.New()
    }
    if err := transaction.WithContext(ctx).Create(puzzle).Error; err != nil {
        pr.log.Error("Failed to create puzzle", "error", err)
        return nil, fmt.Errorf("failed to create puzzle: %w", err)
    }
    return puzzle, nil
}

func (pr *puzzleRepo) GetByID(ctx context.Context, tx *gorm.DB, puzzleID uuid.UUID) (*types.Puzzle, error) {
    transaction := tx
    if transaction == nil {
        transaction = pr.db
    }
    var puzzle types.Puzzle
    if err := transaction.WithContext(ctx).
        Where("id = ?", puzzleID).
        First(&puzzle).Error; err != nil {
        if errors.Is(err, gorm.ErrRecordNotFound) {
            return nil, fmt.Errorf("%w: puzzle '%s'", apperrors.ErrNotFound, puzzleID)
        }
        pr.log.Error("Failed to get puzzle by id", "error", err)
        return nil, err
    }
    return &puzzle, nil
}

func (pr *puzzleRepo) Update(ctx context.Context, tx *gorm.DB, puzzleID uuid.UUID, fields map[string]interface{}) (*types.Puzzle, error) {
    transaction := tx
    if transaction == nil {
        transaction = pr.db
    }
    result := transaction.WithContext(ctx).
        Model(&types.Puzzle{}).
        Where("id = ?", puzzleID).
        Updates(fields)
    if result.Error != nil {
        pr.log.Error("Failed to update puzzle", "error", result.Error)
        return nil, result.Error
    }
    if result.RowsAffected == 0 {
        return nil, fmt.Errorf("%w: puzzle '%s'", apperrors.ErrNotFound, puzzleID)
    }
    return pr.GetByID(ctx, transaction, puzzleID)
}

func (pr *puzzleRepo) IncrementUsage(ctx context.Context, tx *gorm.DB, puzzleID uuid.UUID) error {
    transaction := tx
    if transaction == nil {
        transaction = pr.db
    }
    if err := transaction.WithContext(ctx).
        Model(&types.Puzzle{}).
        Where("id = ?", puzzleID).
        Update("usage_count", gorm.Expr("usage_count + 1")).Error; err != nil {
        pr.log.Error("Failed to increment puzzle usage", "error", err, "puzzleID", puzzleID)
        return err
    }
    return nil
}

func (pr *puzzleRepo) OpenHistory(ctx context.Context, tx *gorm.DB, chatID, puzzleID uuid.UUID) (*types.ChatPuzzleHistory, error) {
    transaction := tx
    if transaction == nil {
        transaction = pr.db
    }
    record := &types.ChatPuzzleHistory{
        ID:        uuid.New(),
        ChatID:    chatID,
        PuzzleID:  puzzleID,
        StartedAt: time.Now(),
    }
    if err := transaction.WithContext(ctx).Create(record).Error; err != nil {
        pr.log.Error("Failed to open puzzle history record", "error", err, "chatID", chatID)
        return nil, err
    }
    return record, nil
}

func (pr *puzzleRepo) CloseOpenHistory(ctx context.Context, tx *gorm.DB, chatID uuid.UUID) error {
    transaction := tx
    if transaction == nil {
        transaction = pr.db
    }
    now := time.Now()
    if err := transaction.WithContext(ctx).
        Model(&types.ChatPuzzleHistory{}).
        Where("chat_id = ? AND ended_at IS NULL", chatID).
        Update("ended_at", &now).Error; err != nil {
        pr.log.Error("Failed to close open puzzle history", "error", err, "chatID", chatID)
        return err
    }
    return nil
}

func (pr *puzzleRepo) GetHistoryByChat(ctx context.Context, tx *gorm.DB, chatID uuid.UUID) ([]*types.ChatPuzzleHistory, error) {
    transaction := tx
    if transaction == nil {
        transaction = pr.db
    }
    var records []*types.ChatPuzzleHistory
    if err := transaction.WithContext(ctx).
        Where("chat_id = ?", chatID).
        Order("started_at DESC").
        Find(&records).Error; err != nil {
        pr.log.Error("Failed to get puzzle history by chat", "error", err, "chatID", chatID)
        return nil, err
    }
    return records, nil
}
