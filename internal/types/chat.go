package types

import (
  "time"

  "github.com/google/uuid"
)

type ChatType string

const (
  ChatTypeSingle ChatType = "single"
  ChatTypeGroup  ChatType = "group"
)

func (ct ChatType) Valid() bool {
  return ct == ChatTypeSingle || ct == ChatTypeGroup
}

// Chat owns its member sets through join tables. Messages are deliberately
// not a back-reference here: the transcript is a repo query, keyed by chat id.
type Chat struct {
  ID                uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
  Title             string        `gorm:"index;column:title" json:"title"`
  ChatType          ChatType      `gorm:"type:varchar(16);not null;default:'single';column:chat_type" json:"chat_type"`
  CreatorID         uuid.UUID     `gorm:"index;not null" json:"creator_id"`
  IsActive          bool          `gorm:"not null;default:true;column:is_active" json:"is_active"`
  CurrentPuzzleID   *uuid.UUID    `gorm:"index" json:"current_puzzle_id,omitempty"`
  CurrentPuzzle     *Puzzle       `gorm:"foreignKey:CurrentPuzzleID;references:ID" json:"current_puzzle,omitempty"`

  Users             []*User       `gorm:"many2many:chat_users;" json:"users,omitempty"`
  Bots              []*Bot        `gorm:"many2many:chat_bots;" json:"bots,omitempty"`

  // LastMessage is filled in by the service layer for read endpoints, it is
  // never persisted on the chat row itself.
  LastMessage       *Message      `gorm:"-" json:"last_message,omitempty"`

  CreatedAt         time.Time     `gorm:"not null" json:"created_at"`
  UpdatedAt         time.Time     `gorm:"not null" json:"updated_at"`
}

func (Chat) TableName() string {
  return "chats"
}
