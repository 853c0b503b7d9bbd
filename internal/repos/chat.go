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

type ChatRepo interface {
    // CREATE
    Create(ctx context.Context, tx *gorm.DB, chat *types.Chat, users []*types.User, bots []*types.Bot) (*types.Chat, error)

    // READ
    GetByID(ctx context.Context, tx *gorm.DB, chatID uuid.UUID) (*types.Chat, error)
    GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Chat, error)
    GetByCreator(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.Chat, error)

    // MEMBERS (idempotent set semantics)
    AddUser(ctx context.Context, tx *gorm.DB, chatID, userID uuid.UUID) (*types.Chat, error)
    RemoveUser(ctx context.Context, tx *gorm.DB, chatID, userID uuid.UUID) (*types.Chat, error)

    // PUZZLE
    SetCurrentPuzzle(ctx context.Context, tx *gorm.DB, chatID uuid.UUID, puzzleID *uuid.UUID) error
}

type chatRepo struct {
    db  *gorm.DB
    log *logger.Logger
}

func NewChatRepo(db *gorm.DB, baseLog *logger.Logger) ChatRepo {
    return &chatRepo{
        db:  db,
        log: baseLog.With("repo", "ChatRepo"),
    }
}

func (cr *chatRepo) Create(ctx context.Context, tx *gorm.DB, chat *types.Chat, users []*types.User, bots []*types.Bot) (*types.Chat, error) {
    transaction := tx
    if transaction == nil {
        transaction = cr.db
    }
    if chat.ID == uuid.Nil {
        chat.ID = uuid.New()
    }
    chat.Users = users
    chat.Bots = bots
    if err := transaction.WithContext(ctx).Create(chat).Error; err != nil {
        cr.log.Error("Failed to create chat", "error", err)
        return nil, fmt.Errorf("failed to create chat: %w", err)
    }
    cr.log.Info("Successfully created chat", "chatID", chat.ID, "users", len(users), "bots", len(bots))
    return cr.GetByID(ctx, transaction, chat.ID)
}

func (cr *chatRepo) GetByID(ctx context.Context, tx *gorm.DB, chatID uuid.UUID) (*types.Chat, error) {
    transaction := tx
    if transaction == nil {
        transaction = cr.db
    }
    var chat types.Chat
    if err := transaction.WithContext(ctx).
        Preload("Users").
        Preload("Bots").
        Preload("CurrentPuzzle").
        Where("id = ?", chatID).
        First(&chat).Error; err != nil {
        if errors.Is(err, gorm.ErrRecordNotFound) {
            return nil, fmt.Errorf("%w: chat '%s'", apperrors.ErrNotFound, chatID)
        }
        cr.log.Error("Failed to get chat by id", "error", err)
        return nil, err
    }
    return &chat, nil
}

func (cr *chatRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Chat, error) {
    transaction := tx
    if transaction == nil {
        transaction = cr.db
    }
    var chats []*types.Chat
    if err := transaction.WithContext(ctx).
        Preload("Users").
        Preload("Bots").
        Preload("CurrentPuzzle").
        Order("created_at DESC").
        Find(&chats).Error; err != nil {
        cr.log.Error("Failed to get all chats", "error", err)
        return nil, err
    }
    return chats, nil
}

func (cr *chatRepo) GetByCreator(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.Chat, error) {
    transaction := tx
    if transaction == nil {
        transaction = cr.db
    }
    if limit <= 0 {
        limit = 10
    }
    var chats []*types.Chat
    if err := transaction.WithContext(ctx).
        Preload("Users").
        Preload("Bots").
        Where("creator_id = ?", userID).
        Order("created_at DESC").
        Limit(limit).
        Find(&chats).Error; err != nil {
        cr.log.Error("Failed to get chats by creator", "error", err, "userID", userID)
        return nil, err
    }
    return chats, nil
}

func (cr *chatRepo) AddUser(ctx context.Context, tx *gorm.DB, chatID, userID uuid.UUID) (*types.Chat, error) {
    transaction := tx
    if transaction == nil {
        transaction = cr.db
    }
    chat, err := cr.GetByID(ctx, transaction, chatID)
    if err != nil {
        return nil, err
    }
    var user types.User
    if err := transaction.WithContext(ctx).
        Where("id = ?", userID).
        First(&user).Error; err != nil {
        if errors.Is(err, gorm.ErrRecordNotFound) {
            return nil, fmt.Errorf("%w: user '%s'", apperrors.ErrNotFound, userID)
        }
        return nil, err
    }
    for _, member := range chat.Users {
        if member.ID == userID {
            cr.log.Debug("User already a chat member, no-op", "chatID", chatID, "userID", userID)
            return chat, nil
        }
    }
    if err := transaction.WithContext(ctx).
        Model(chat).
        Association("Users").
        Append(&user); err != nil {
        cr.log.Error("Failed to add user to chat", "error", err, "chatID", chatID, "userID", userID)
        return nil, err
    }
    return cr.GetByID(ctx, transaction, chatID)
}

func (cr *chatRepo) RemoveUser(ctx context.Context, tx *gorm.DB, chatID, userID uuid.UUID) (*types.Chat, error) {
    transaction := tx
    if transaction == nil {
        transaction = cr.db
    }
    chat, err := cr.GetByID(ctx, transaction, chatID)
    if err != nil {
        return nil, err
    }
    var member *types.User
    for _, u := range chat.Users {
        if u.ID == userID {
            member = u
            break
        }
    }
    if member == nil {
        cr.log.Debug("User not a chat member, removal is a no-op", "chatID", chatID, "userID", userID)
        return chat, nil
    }
    if err := transaction.WithContext(ctx).
        Model(chat).
        Association("Users").
        Delete(member); err != nil {
        cr.log.Error("Failed to remove user from chat", "error", err, "chatID", chatID, "userID", userID)
        return nil, err
    }
    return cr.GetByID(ctx, transaction, chatID)
}

func (cr *chatRepo) SetCurrentPuzzle(ctx context.Context, tx *gorm.DB, chatID uuid.UUID, puzzleID *uuid.UUID) error {
    transaction := tx
    if transaction == nil {
        transaction = cr.db
    }
    result := transaction.WithContext(ctx).
        Model(&types.Chat{}).
        Where("id = ?", chatID).
        Update("current_puzzle_id", puzzleID)
    if result.Error != nil {
        cr.log.Error("Failed to set current puzzle", "error", result.Error, "chatID", chatID)
        return result.Error
    }
    if result.RowsAffected == 0 {
        return fmt.Errorf("%w: chat '%s'", apperrors.ErrNotFound, chatID)
    }
    return nil
}
