package repos

import (
    "context"
    "errors"
    "fmt"

    "github.com/google/uuid"
    "gorm.io/gorm"

    "github.com/haigui-org/haigui-backend/internal/logger"
    "github.com/haigui-org/haigui-backend/internal/types"
)

type MessageRepo interface {
    // CREATE
    Create(ctx context.Context, tx *gorm.DB, msg *types.Message) (*types.Message, error)

    // READ
    // GetHistory returns the most recent `limit` messages of a chat in
    // oldest -> newest order (newest-first query, reversed).
    GetHistory(ctx context.Context, tx *gorm.DB, chatID uuid.UUID, limit int) ([]*types.Message, error)
    // GetTranscript returns every message of a chat oldest -> newest.
    GetTranscript(ctx context.Context, tx *gorm.DB, chatID uuid.UUID) ([]*types.Message, error)
    GetLast(ctx context.Context, tx *gorm.DB, chatID uuid.UUID) (*types.Message, error)
}

type messageRepo struct {
    db  *gorm.DB
    log *logger.Logger
}

func NewMessageRepo(db *gorm.DB, baseLog *logger.Logger) MessageRepo {
    return &messageRepo{
        db:  db,
        log: baseLog.With("repo", "MessageRepo"),
    }
}

func (mr *messageRepo) Create(ctx context.Context, tx *gorm.DB, msg *types.Message) (*types.Message, error) {
    transaction := tx
    if transaction == nil {
        transaction = mr.db
    }
    if msg.ID == uuid.Nil {
        msg.ID = uuid.New()
    }
    if err := transaction.WithContext(ctx).Create(msg).Error; err != nil {
        mr.log.Error("Failed to create message", "error", err, "chatID", msg.ChatID)
        return nil, fmt.Errorf("failed to create message: %w", err)
    }
    return msg, nil
}

func (mr *messageRepo) GetHistory(ctx context.Context, tx *gorm.DB, chatID uuid.UUID, limit int) ([]*types.Message, error) {
    transaction := tx
    if transaction == nil {
        transaction = mr.db
    }
    if limit <= 0 {
        limit = 50
    }
    var msgs []*types.Message
    if err := transaction.WithContext(ctx).
        Where("chat_id = ?", chatID).
        Order("created_at DESC, id DESC").
        Limit(limit).
        Find(&msgs).Error; err != nil {
        mr.log.Error("Failed to get message history", "error", err, "chatID", chatID)
        return nil, err
    }
    // reverse to ASC (oldest -> newest)
    for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
        msgs[i], msgs[j] = msgs[j], msgs[i]
    }
    return msgs, nil
}

func (mr *messageRepo) GetTranscript(ctx context.Context, tx *gorm.DB, chatID uuid.UUID) ([]*types.Message, error) {
    transaction := tx
    if transaction == nil {
        transaction = mr.db
    }
    var msgs []*types.Message
    if err := transaction.WithContext(ctx).
        Where("chat_id = ?", chatID).
        Order("created_at ASC, id ASC").
        Find(&msgs).Error; err != nil {
        mr.log.Error("Failed to get chat transcript", "error", err, "chatID", chatID)
        return nil, err
    }
    return msgs, nil
}

func (mr *messageRepo) GetLast(ctx context.Context, tx *gorm.DB, chatID uuid.UUID) (*types.Message, error) {
    transaction := tx
    if transaction == nil {
        transaction = mr.db
    }
    var msg types.Message
    if err := transaction.WithContext(ctx).
        Where("chat_id = ?", chatID).
        Order("created_at DESC, id DESC").
        First(&msg).Error; err != nil {
        if errors.Is(err, gorm.ErrRecordNotFound) {
            return nil, nil
        }
        mr.log.Error("Failed to get last message", "error", err, "chatID", chatID)
        return nil, err
    }
    return &msg, nil
}
