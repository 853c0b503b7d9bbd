package services

import (
  "context"
  "fmt"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/haigui-org/haigui-backend/internal/apperrors"
  "github.com/haigui-org/haigui-backend/internal/logger"
  "github.com/haigui-org/haigui-backend/internal/normalization"
  "github.com/haigui-org/haigui-backend/internal/repos"
  "github.com/haigui-org/haigui-backend/internal/types"
)

type PuzzleService interface {
  CreatePuzzle(ctx context.Context, puzzle *types.Puzzle) (*types.Puzzle, error)
  GetPuzzle(ctx context.Context, puzzleID uuid.UUID) (*types.Puzzle, error)
  UpdatePuzzle(ctx context.Context, puzzleID uuid.UUID, fields map[string]interface{}) (*types.Puzzle, error)

  // AssignToChat swaps the chat's active puzzle. The previous round's open
  // history record is closed, a fresh one is opened and the puzzle's usage
  // counter is bumped, all in one transaction.
  AssignToChat(ctx context.Context, chatID, puzzleID uuid.UUID) (*types.Chat, error)

  GetChatPuzzleHistory(ctx context.Context, chatID uuid.UUID) ([]*types.ChatPuzzleHistory, error)
}

type puzzleService struct {
  db         *gorm.DB
  log        *logger.Logger
  puzzleRepo repos.PuzzleRepo
  chatRepo   repos.ChatRepo
}

func NewPuzzleService(db *gorm.DB, log *logger.Logger, puzzleRepo repos.PuzzleRepo, chatRepo repos.ChatRepo) PuzzleService {
  serviceLog := log.With("service", "PuzzleService")
  return &puzzleService{
    db:         db,
    log:        serviceLog,
    puzzleRepo: puzzleRepo,
    chatRepo:   chatRepo,
  }
}

func (ps *puzzleService) CreatePuzzle(ctx context.Context, puzzle *types.Puzzle) (*types.Puzzle, error) {
  puzzle.Title = normalization.ParseInputString(puzzle.Title)
  puzzle.TangMian = normalization.ParseInputString(puzzle.TangMian)
  puzzle.TangDi = normalization.ParseInputString(puzzle.TangDi)
  if puzzle.Title == "" {
    return nil, fmt.Errorf("%w: puzzle title is required", apperrors.ErrInvalidInput)
  }
  if puzzle.TangMian == "" || puzzle.TangDi == "" {
    return nil, fmt.Errorf("%w: puzzle surface and solution are both required", apperrors.ErrInvalidInput)
  }
  return ps.puzzleRepo.Create(ctx, nil, puzzle)
}

func (ps *puzzleService) GetPuzzle(ctx context.Context, puzzleID uuid.UUID) (*types.Puzzle, error) {
  return ps.puzzleRepo.GetByID(ctx, nil, puzzleID)
}

func (ps *puzzleService) UpdatePuzzle(ctx context.Context, puzzleID uuid.UUID, fields map[string]interface{}) (*types.Puzzle, error) {
  return ps.puzzleRepo.Update(ctx, nil, puzzleID, fields)
}

func (ps *puzzleService) AssignToChat(ctx context.Context, chatID, puzzleID uuid.UUID) (*types.Chat, error) {
  if _, err := ps.puzzleRepo.GetByID(ctx, nil, puzzleID); err != nil {
    return nil, err
  }
  if _, err := ps.chatRepo.GetByID(ctx, nil, chatID); err != nil {
    return nil, err
  }

  if err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    if cErr := ps.puzzleRepo.CloseOpenHistory(ctx, tx, chatID); cErr != nil {
      ps.log.Warn("Failed to close open puzzle history, Cannot proceed. Returning error.", "error", cErr)
      return cErr
    }
    if sErr := ps.chatRepo.SetCurrentPuzzle(ctx, tx, chatID, &puzzleID); sErr != nil {
      ps.log.Warn("Failed to set current puzzle on chat, Cannot proceed. Returning error.", "error", sErr)
      return sErr
    }
    if _, oErr := ps.puzzleRepo.OpenHistory(ctx, tx, chatID, puzzleID); oErr != nil {
      ps.log.Warn("Failed to open puzzle history record, Cannot proceed. Returning error.", "error", oErr)
      return oErr
    }
    if iErr := ps.puzzleRepo.IncrementUsage(ctx, tx, puzzleID); iErr != nil {
      ps.log.Warn("Failed to increment puzzle usage count, Cannot proceed. Returning error.", "error", iErr)
      return iErr
    }
    return nil
  }); err != nil {
    return nil, err
  }

  ps.log.Info("Assigned puzzle to chat :)", "chatID", chatID, "puzzleID", puzzleID)
  return ps.chatRepo.GetByID(ctx, nil, chatID)
}

func (ps *puzzleService) GetChatPuzzleHistory(ctx context.Context, chatID uuid.UUID) ([]*types.ChatPuzzleHistory, error) {
  return ps.puzzleRepo.GetHistoryByChat(ctx, nil, chatID)
}
