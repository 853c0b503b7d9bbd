package repos

import (
    "context"
    "errors"
    "testing"

    "github.com/google/uuid"

    "github.com/haigui-org/haigui-backend/internal/apperrors"
    "github.com/haigui-org/haigui-backend/internal/types"
)

func TestUserRepo_NotFoundSentinel(t *testing.T) {
    db := openTestDB(t)
    repo := NewUserRepo(db, newTestLogger(t))

    if _, err := repo.GetByID(context.Background(), nil, uuid.New()); !errors.Is(err, apperrors.ErrNotFound) {
        t.Fatalf("expected ErrNotFound, got %v", err)
    }
    if _, err := repo.GetByUsername(context.Background(), nil, "nobody"); !errors.Is(err, apperrors.ErrNotFound) {
        t.Fatalf("expected ErrNotFound, got %v", err)
    }
}

func TestUserRepo_CreateAndExists(t *testing.T) {
    db := openTestDB(t)
    repo := NewUserRepo(db, newTestLogger(t))

    created, err := repo.Create(context.Background(), nil, &types.User{Username: "alice", Password: "pw"})
    if err != nil {
        t.Fatalf("create: %v", err)
    }
    if created.ID == uuid.Nil {
        t.Fatalf("expected assigned id")
    }

    exists, err := repo.UsernameExists(context.Background(), nil, "alice")
    if err != nil {
        t.Fatalf("exists: %v", err)
    }
    if !exists {
        t.Fatalf("expected username to exist")
    }

    exists, err = repo.UsernameExists(context.Background(), nil, "bob")
    if err != nil {
        t.Fatalf("exists: %v", err)
    }
    if exists {
        t.Fatalf("bob should not exist")
    }

    loaded, err := repo.GetByUsername(context.Background(), nil, "alice")
    if err != nil {
        t.Fatalf("get by username: %v", err)
    }
    if loaded.ID != created.ID {
        t.Fatalf("id mismatch")
    }
}
