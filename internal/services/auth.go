package services

import (
  "context"
  "errors"
  "fmt"
  "time"

  "github.com/golang-jwt/jwt/v5"
  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/haigui-org/haigui-backend/internal/apperrors"
  "github.com/haigui-org/haigui-backend/internal/logger"
  "github.com/haigui-org/haigui-backend/internal/normalization"
  "github.com/haigui-org/haigui-backend/internal/repos"
  "github.com/haigui-org/haigui-backend/internal/requestdata"
  "github.com/haigui-org/haigui-backend/internal/types"
  "github.com/haigui-org/haigui-backend/internal/utils"
)

type JWTClaims struct {
  jwt.RegisteredClaims
  Username string `json:"username,omitempty"`
}

type AuthService interface {
  RegisterUser(ctx context.Context, user *types.User) (*types.User, error)
  Login(ctx context.Context, username, password string) (*types.User, string, error)

  // LoginOrRegister authenticates the username if it exists, otherwise
  // registers it on the spot. Wrong password on an existing username is a
  // hard failure, never a silent re-register.
  LoginOrRegister(ctx context.Context, username, password string) (*types.User, string, error)

  GetUser(ctx context.Context, userID uuid.UUID) (*types.User, error)

  SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)

  GetAccessTTL() time.Duration
}

type authService struct {
  db           *gorm.DB
  log          *logger.Logger
  userRepo     repos.UserRepo
  jwtSecretKey string
  accessTTL    time.Duration
}

func NewAuthService(
  db *gorm.DB,
  log *logger.Logger,
  userRepo repos.UserRepo,
  jwtSecretKey string,
  accessTTL time.Duration,
) AuthService {
  serviceLog := log.With("service", "AuthService")
  return &authService{
    db:           db,
    log:          serviceLog,
    userRepo:     userRepo,
    jwtSecretKey: jwtSecretKey,
    accessTTL:    accessTTL,
  }
}

func (as *authService) RegisterUser(ctx context.Context, user *types.User) (*types.User, error) {
  //1) Normalize User Fields
  utils.NormalizeUserFields(ctx, user)

  //2) Checks on user fields
  if user.Username == "" {
    return nil, fmt.Errorf("%w: username is required", apperrors.ErrInvalidInput)
  }
  if user.Password == "" {
    return nil, fmt.Errorf("%w: password is required", apperrors.ErrInvalidInput)
  }
  exists, eErr := as.userRepo.UsernameExists(ctx, nil, user.Username)
  if eErr != nil {
    as.log.Warn("Failed to check username existence, Cannot proceed. Returning error.", "error", eErr)
    return nil, eErr
  }
  if exists {
    return nil, fmt.Errorf("%w: 用户名已存在", apperrors.ErrInvalidInput)
  }
  if user.Email != "" {
    emailTaken, emErr := as.userRepo.EmailExists(ctx, nil, user.Email)
    if emErr != nil {
      as.log.Warn("Failed to check email existence, Cannot proceed. Returning error.", "error", emErr)
      return nil, emErr
    }
    if emailTaken {
      return nil, fmt.Errorf("%w: 电子邮件已被使用", apperrors.ErrInvalidInput)
    }
  }

  //3) Hash Password
  if hErr := utils.HashPassword(ctx, as.log, user); hErr != nil {
    return nil, hErr
  }

  //4) Transaction Body
  var created *types.User
  if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    u, cErr := as.userRepo.Create(ctx, tx, user)
    if cErr != nil {
      as.log.Warn("Failed to create user, Cannot proceed. Returning error.", "error", cErr)
      return cErr
    }
    created = u
    return nil
  }); err != nil {
    return nil, err
  }
  as.log.Info("Registered new user :)", "userID", created.ID, "username", created.Username)
  return created, nil
}

func (as *authService) Login(ctx context.Context, username, password string) (*types.User, string, error) {
  username = normalization.ParseInputString(username)
  password = normalization.ParseInputString(password)
  if username == "" || password == "" {
    return nil, "", fmt.Errorf("%w: username and password are required", apperrors.ErrInvalidInput)
  }

  user, uErr := as.userRepo.GetByUsername(ctx, nil, username)
  if uErr != nil {
    if errors.Is(uErr, apperrors.ErrNotFound) {
      return nil, "", fmt.Errorf("%w: 用户名或密码错误", apperrors.ErrUnauthorized)
    }
    as.log.Warn("Failed to fetch user by username, Cannot proceed. Returning error.", "error", uErr)
    return nil, "", uErr
  }
  if !utils.VerifyPassword(user.Password, password) {
    return nil, "", fmt.Errorf("%w: 用户名或密码错误", apperrors.ErrUnauthorized)
  }

  token, gErr := as.generateAccessToken(user)
  if gErr != nil {
    as.log.Warn("Generate Access Token Error, Cannot proceed. Returning error.", "error", gErr)
    return nil, "", gErr
  }
  return user, token, nil
}

func (as *authService) LoginOrRegister(ctx context.Context, username, password string) (*types.User, string, error) {
  username = normalization.ParseInputString(username)
  password = normalization.ParseInputString(password)
  if username == "" || password == "" {
    return nil, "", fmt.Errorf("%w: username and password are required", apperrors.ErrInvalidInput)
  }

  exists, eErr := as.userRepo.UsernameExists(ctx, nil, username)
  if eErr != nil {
    as.log.Warn("Failed to check username existence, Cannot proceed. Returning error.", "error", eErr)
    return nil, "", eErr
  }
  if exists {
    return as.Login(ctx, username, password)
  }

  user, rErr := as.RegisterUser(ctx, &types.User{Username: username, Password: password})
  if rErr != nil {
    return nil, "", rErr
  }
  token, gErr := as.generateAccessToken(user)
  if gErr != nil {
    as.log.Warn("Generate Access Token Error, Cannot proceed. Returning error.", "error", gErr)
    return nil, "", gErr
  }
  return user, token, nil
}

func (as *authService) GetUser(ctx context.Context, userID uuid.UUID) (*types.User, error) {
  return as.userRepo.GetByID(ctx, nil, userID)
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
  claims := JWTClaims{
    RegisteredClaims: jwt.RegisteredClaims{
      Subject:   user.ID.String(),
      ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.accessTTL)),
      IssuedAt:  jwt.NewNumericDate(time.Now()),
    },
    Username: user.Username,
  }
  token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
  return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
  if tokenString == "" {
    return ctx, nil
  }
  parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
    return []byte(as.jwtSecretKey), nil
  })
  if err != nil {
    return ctx, fmt.Errorf("%w: failed to parse token: %v", apperrors.ErrUnauthorized, err)
  }
  claims, ok := parsedToken.Claims.(*JWTClaims)
  if !ok || !parsedToken.Valid {
    return ctx, fmt.Errorf("%w: invalid or expired JWT token", apperrors.ErrUnauthorized)
  }
  userID, err := uuid.Parse(claims.Subject)
  if err != nil {
    return ctx, fmt.Errorf("%w: invalid user ID in token", apperrors.ErrUnauthorized)
  }
  rd := &requestdata.RequestData{
    TokenString: tokenString,
    UserID:      userID,
    Username:    claims.Username,
  }
  return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) GetAccessTTL() time.Duration {
  return as.accessTTL
}
