package services

import (
  "context"
  "errors"
  "testing"
  "time"

  "github.com/haigui-org/haigui-backend/internal/apperrors"
  "github.com/haigui-org/haigui-backend/internal/repos"
  "github.com/haigui-org/haigui-backend/internal/requestdata"
  "github.com/haigui-org/haigui-backend/internal/types"
)

func newTestAuthService(t *testing.T) AuthService {
  t.Helper()
  db := openTestDB(t)
  log := newTestLogger(t)
  userRepo := repos.NewUserRepo(db, log)
  return NewAuthService(db, log, userRepo, "test-secret", time.Hour)
}

func TestRegisterUser_HashesPassword(t *testing.T) {
  as := newTestAuthService(t)

  user, err := as.RegisterUser(context.Background(), &types.User{Username: "alice", Password: "s3cret"})
  if err != nil {
    t.Fatalf("register: %v", err)
  }
  if user.ID.String() == "00000000-0000-0000-0000-000000000000" {
    t.Fatalf("expected assigned user id")
  }
  if user.Password == "s3cret" {
    t.Fatalf("password must not be stored in the clear")
  }
}

func TestRegisterUser_DuplicateUsername(t *testing.T) {
  as := newTestAuthService(t)

  if _, err := as.RegisterUser(context.Background(), &types.User{Username: "alice", Password: "one"}); err != nil {
    t.Fatalf("first register: %v", err)
  }
  _, err := as.RegisterUser(context.Background(), &types.User{Username: "alice", Password: "two"})
  if !errors.Is(err, apperrors.ErrInvalidInput) {
    t.Fatalf("expected ErrInvalidInput for duplicate username, got %v", err)
  }
}

func TestLoginOrRegister_NewUser(t *testing.T) {
  as := newTestAuthService(t)

  user, token, err := as.LoginOrRegister(context.Background(), "bob", "hunter2")
  if err != nil {
    t.Fatalf("login_or_register: %v", err)
  }
  if user.Username != "bob" {
    t.Fatalf("unexpected username: %s", user.Username)
  }
  if token == "" {
    t.Fatalf("expected access token for freshly registered user")
  }
}

func TestLoginOrRegister_ExistingUserCorrectPassword(t *testing.T) {
  as := newTestAuthService(t)

  first, _, err := as.LoginOrRegister(context.Background(), "carol", "letmein")
  if err != nil {
    t.Fatalf("initial register: %v", err)
  }
  again, token, err := as.LoginOrRegister(context.Background(), "carol", "letmein")
  if err != nil {
    t.Fatalf("second login: %v", err)
  }
  if again.ID != first.ID {
    t.Fatalf("expected the same user back, got %s and %s", first.ID, again.ID)
  }
  if token == "" {
    t.Fatalf("expected access token on login")
  }
}

func TestLoginOrRegister_WrongPassword(t *testing.T) {
  as := newTestAuthService(t)

  if _, _, err := as.LoginOrRegister(context.Background(), "dave", "right"); err != nil {
    t.Fatalf("initial register: %v", err)
  }
  _, _, err := as.LoginOrRegister(context.Background(), "dave", "wrong")
  if !errors.Is(err, apperrors.ErrUnauthorized) {
    t.Fatalf("expected ErrUnauthorized for wrong password, got %v", err)
  }
}

func TestSetContextFromToken_RoundTrip(t *testing.T) {
  as := newTestAuthService(t)

  user, token, err := as.LoginOrRegister(context.Background(), "erin", "pw")
  if err != nil {
    t.Fatalf("login_or_register: %v", err)
  }
  ctx, err := as.SetContextFromToken(context.Background(), token)
  if err != nil {
    t.Fatalf("set context from token: %v", err)
  }
  rd := requestdata.GetRequestData(ctx)
  if rd == nil {
    t.Fatalf("expected request data in context")
  }
  if rd.UserID != user.ID || rd.Username != "erin" {
    t.Fatalf("request data mismatch: %+v", rd)
  }
}

func TestSetContextFromToken_Garbage(t *testing.T) {
  as := newTestAuthService(t)

  if _, err := as.SetContextFromToken(context.Background(), "not-a-jwt"); !errors.Is(err, apperrors.ErrUnauthorized) {
    t.Fatalf("expected ErrUnauthorized for garbage token, got %v", err)
  }
}
