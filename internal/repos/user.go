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

type UserRepo interface {
    // CREATE
    Create(ctx context.Context, tx *gorm.DB, user *types.User) (*types.User, error)

    // READ
    GetByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.User, error)
    GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*types.User, error)
    UsernameExists(ctx context.Context, tx *gorm.DB, username string) (bool, error)
    EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error)
}

type userRepo struct {
    db  *gorm.DB
    log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
    repoLog := baseLog.With("repo", "UserRepo")
    return &userRepo{db: db, log: repoLog}
}

func (ur *userRepo) Create(ctx context.Context, tx *gorm.DB, user *types.User) (*types.User, error) {
    transaction := tx
    if transaction == nil {
        transaction = ur.db
    }
    if user.ID == uuid.Nil {
        user.ID = uuid.New()
    }
    if err := transaction.WithContext(ctx).Create(user).Error; err != nil {
        ur.log.Error("Failed to create user", "error", err)
        return nil, fmt.Errorf("failed to create user: %w", err)
    }
    ur.log.Info("Successfully created user", "userID", user.ID)
    return user, nil
}

func (ur *userRepo) GetByID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.User, error) {
    transaction := tx
    if transaction == nil {
        transaction = ur.db
    }
    var user types.User
    if err := transaction.WithContext(ctx).
        Where("id = ?", userID).
        First(&user).Error; err != nil {
        if errors.Is(err, gorm.ErrRecordNotFound) {
            return nil, fmt.Errorf("%w: user '%s'", apperrors.ErrNotFound, userID)
        }
        ur.log.Error("Failed to get user by id", "error", err)
        return nil, err
    }
    return &user, nil
}

func (ur *userRepo) GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*types.User, error) {
    transaction := tx
    if transaction == nil {
        transaction = ur.db
    }
    var user types.User
    if err := transaction.WithContext(ctx).
        Where("username = ?", username).
        First(&user).Error; err != nil {
        if errors.Is(err, gorm.ErrRecordNotFound) {
            return nil, fmt.Errorf("%w: user '%s'", apperrors.ErrNotFound, username)
        }
        ur.log.Error("Failed to get user by username", "error", err)
        return nil, err
    }
    return &user, nil
}

func (ur *userRepo) UsernameExists(ctx context.Context, tx *gorm.DB, username string) (bool, error) {
    transaction := tx
    if transaction == nil {
        transaction = ur.db
    }
    var count int64
    if err := transaction.WithContext(ctx).
        Model(&types.User{}).
        Where("username = ?", username).
        Count(&count).Error; err != nil {
        ur.log.Error("Failed to check username existence", "error", err)
        return false, err
    }
    return count > 0, nil
}

func (ur *userRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
    transaction := tx
    if transaction == nil {
        transaction = ur.db
    }
    if email == "" {
        return false, nil
    }
    var count int64
    if err := transaction.WithContext(ctx).
        Model(&types.User{}).
        Where("email = ?", email).
        Count(&count).Error; err != nil {
        ur.log.Error("Failed to check email existence", "error", err)
        return false, err
    }
    return count > 0, nil
}
