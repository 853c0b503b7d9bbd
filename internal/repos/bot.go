package repos

import (
    "context"
    "errors"
    "fmt"

    "github.com/google/uuid"
    "gorm.io/gorm"

    "github.com/haigui-org/haigui-backend/internal/apperrors"
    "github.com/haigui-org/haigui-backend/internal/logger"
    "github.com/haigui-org/haigui-backend/internal/types"
)

type BotRepo interface {
    Create(ctx context.Context, tx *gorm.DB, bot *types.Bot) (*types.Bot, error)
    GetByID(ctx context.Context, tx *gorm.DB, botID uuid.UUID) (*types.Bot, error)
    Update(ctx context.Context, tx *gorm.DB, botID uuid.UUID, fields map[string]interface{}) (*types.Bot, error)
    Delete(ctx context.Context, tx *gorm.DB, botID uuid.UUID) error
}

type botRepo struct {
    db  *gorm.DB
    log *logger.Logger
}

func NewBotRepo(db *gorm.DB, baseLog *logger.Logger) BotRepo {
    return &botRepo{
        db:  db,
        log: baseLog.With("repo", "BotRepo"),
    }
}

func (br *botRepo) Create(ctx context.Context, tx *gorm.DB, bot *types.Bot) (*types.Bot, error) {
    transaction := tx
    if transaction == nil {
        transaction = br.db
    }
    if bot.ID == uuid.Nil {
        bot.ID = uuid.New()
    }
    if err := transaction.WithContext(ctx).Create(bot).Error; err != nil {
        br.log.Error("Failed to create bot", "error", err)
        return nil, fmt.Errorf("failed to create bot: %w", err)
    }
    return bot, nil
}

func (br *botRepo) GetByID(ctx context.Context, tx *gorm.DB, botID uuid.UUID) (*types.Bot, error) {
    transaction := tx
    if transaction == nil {
        transaction = br.db
    }
    var bot types.Bot
    if err := transaction.WithContext(ctx).
        Where("id = ?", botID).
        First(&bot).Error; err != nil {
        if errors.Is(err, gorm.ErrRecordNotFound) {
            return nil, fmt.Errorf("%w: bot '%s'", apperrors.ErrNotFound, botID)
        }
        br.log.Error("Failed to get bot by id", "error", err)
        return nil, err
    }
    return &bot, nil
}

func (br *botRepo) Update(ctx context.Context, tx *gorm.DB, botID uuid.UUID, fields map[string]interface{}) (*types.Bot, error) {
    transaction := tx
    if transaction == nil {
        transaction = br.db
    }
    result := transaction.WithContext(ctx).
        Model(&types.Bot{}).
        Where("id = ?", botID).
        Updates(fields)
    if result.Error != nil {
        br.log.Error("Failed to update bot", "error", result.Error)
        return nil, result.Error
    }
    if result.RowsAffected == 0 {
        return nil, fmt.Errorf("%w: bot '%s'", apperrors.ErrNotFound, botID)
    }
    return br.GetByID(ctx, transaction, botID)
}

func (br *botRepo) Delete(ctx context.Context, tx *gorm.DB, botID uuid.UUID) error {
    transaction := tx
    if transaction == nil {
        transaction = br.db
    }
    if err := transaction.WithContext(ctx).
        Where("id = ?", botID).
        Delete(&types.Bot{}).Error; err != nil {
        br.log.Error("Failed to delete bot", "error", err)
        return err
    }
    return nil
}
