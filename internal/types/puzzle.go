package types

import (
  "time"

  "github.com/google/uuid"
  "gorm.io/datatypes"
)

// Puzzle is a 海龟汤 riddle: TangMian is the public prompt read to players,
// TangDi the hidden solution only the judge bot sees.
type Puzzle struct {
  ID            uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
  Title         string              `gorm:"not null;column:title" json:"title"`
  TangMian      string              `gorm:"type:text;column:tang_mian" json:"tang_mian"`
  TangDi        string              `gorm:"type:text;column:tang_di" json:"tang_di"`
  Tags          datatypes.JSON      `gorm:"column:tags" json:"tags"`
  Difficulty    int                 `gorm:"column:difficulty" json:"difficulty"`
  UsageCount    int                 `gorm:"not null;default:0;column:usage_count" json:"usage_count"`

  CreatedAt     time.Time           `gorm:"not null" json:"created_at"`
  UpdatedAt     time.Time           `gorm:"not null" json:"updated_at"`
}

func (Puzzle) TableName() string {
  return "puzzles"
}

// ChatPuzzleHistory records one puzzle session of a chat; EndedAt stays nil
// while the session is the chat's current puzzle.
type ChatPuzzleHistory struct {
  ID          uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
  ChatID      uuid.UUID     `gorm:"index;not null" json:"chat_id"`
  PuzzleID    uuid.UUID     `gorm:"index;not null" json:"puzzle_id"`
  StartedAt   time.Time     `gorm:"not null" json:"started_at"`
  EndedAt     *time.Time    `json:"ended_at,omitempty"`
}

func (ChatPuzzleHistory) TableName() string {
  return "chat_puzzle_history"
}
