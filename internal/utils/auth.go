package utils

import (
  "context"
  "fmt"

  "golang.org/x/crypto/bcrypt"

  "github.com/haigui-org/haigui-backend/internal/logger"
  "github.com/haigui-org/haigui-backend/internal/normalization"
  "github.com/haigui-org/haigui-backend/internal/types"
)

func HashPassword(ctx context.Context, log *logger.Logger, user *types.User) error {
  hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
  if err != nil {
    log.Warn("Failure to hash password for user. Returning error", "username", user.Username)
    return fmt.Errorf("Failed to hash password for user.")
  }
  user.Password = string(hashedPassword)
  return nil
}

func VerifyPassword(hashedPassword, plainPassword string) bool {
  return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword)) == nil
}

func NormalizeUserFields(ctx context.Context, user *types.User) {
  user.Username = normalization.ParseInputString(user.Username)
  user.Email = normalization.ParseInputString(user.Email)
  user.Password = normalization.ParseInputString(user.Password)
}
