package seed

import (
  "context"
  "errors"
  "fmt"

  "gorm.io/gorm"

  "github.com/haigui-org/haigui-backend/internal/apperrors"
  "github.com/haigui-org/haigui-backend/internal/repos"
  "github.com/haigui-org/haigui-backend/internal/types"
)

const (
  samplePuzzleTitle    = "网上留言"
  samplePuzzleTangMian = "女主很喜欢在网上分享自己的近况，有一天她收到一则留言，被吓到的女主夺门而出。或许她不该逃，第二天警方发现了女孩的尸体。"
  samplePuzzleTangDi   = "女主在网上分享自己的近况的同时泄露了很多个人信息，其中包括她的家庭住址。有一天，一个变态通过女主的博文推断出了女主的家庭住址，藏匿到了女主的家里。女主在家时，他给女主发了一句：”我正在看着你。“女主被吓得夺门而出，变态从家里追了出来，在争执之中，变态失手把女主给杀了。"
)

// SeedAll makes sure the judge bot exists and at least one puzzle is
// available for new chats. Safe to run on every startup.
func SeedAll(db *gorm.DB, botRepo repos.BotRepo, puzzleRepo repos.PuzzleRepo) error {
  ctx := context.Background()
  fmt.Println("Running SeedAll... seeding judge bot and sample puzzle")

  if _, err := botRepo.GetByID(ctx, nil, types.JudgeBotID); err != nil {
    if !errors.Is(err, apperrors.ErrNotFound) {
      return fmt.Errorf("failed to look up judge bot: %w", err)
    }
    judge := &types.Bot{
      ID:          types.JudgeBotID,
      Name:        types.JudgeBotName,
      Description: "海龟汤裁判，根据汤底回答玩家的提问。",
      IsActive:    true,
    }
    if _, cErr := botRepo.Create(ctx, nil, judge); cErr != nil {
      return fmt.Errorf("failed to create judge bot: %w", cErr)
    }
  }

  var puzzleCount int64
  if err := db.Model(&types.Puzzle{}).Count(&puzzleCount).Error; err != nil {
    return fmt.Errorf("failed to count puzzles: %w", err)
  }
  if puzzleCount == 0 {
    sample := &types.Puzzle{
      Title:      samplePuzzleTitle,
      TangMian:   samplePuzzleTangMian,
      TangDi:     samplePuzzleTangDi,
      Difficulty: 2,
    }
    if _, err := puzzleRepo.Create(ctx, nil, sample); err != nil {
      return fmt.Errorf("failed to create sample puzzle: %w", err)
    }
  }

  fmt.Println("SeedAll Complete!")
  return nil
}
