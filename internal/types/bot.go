package types

import (
  "time"

  "github.com/google/uuid"
)

// JudgeBotID is the well-known id of the "caipan" judge bot that is attached
// to every chat at creation. The row itself is seeded at startup.
var JudgeBotID = uuid.MustParse("00000000-0000-4000-8000-0000000ca19a")

const JudgeBotName = "caipan"

type Bot struct {
  ID            uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
  Name          string        `gorm:"index;not null;column:name" json:"name"`
  Description   string        `gorm:"column:description" json:"description"`
  CreatorID     *uuid.UUID    `gorm:"index" json:"creator_id,omitempty"`
  IsActive      bool          `gorm:"not null;default:true;column:is_active" json:"is_active"`

  CreatedAt     time.Time     `gorm:"not null" json:"created_at"`
  UpdatedAt     time.Time     `gorm:"not null" json:"updated_at"`
}

func (Bot) TableName() string {
  return "bots"
}
