package types

import (
  "time"

  "github.com/google/uuid"
)

// SenderType discriminates whether a message's sender id refers to a user or
// a bot row; system messages carry no resolvable sender.
type SenderType string

const (
  SenderTypeUser    SenderType = "user"
  SenderTypeBot     SenderType = "bot"
  SenderTypeSystem  SenderType = "system"
)

func (st SenderType) Valid() bool {
  switch st {
  case SenderTypeUser, SenderTypeBot, SenderTypeSystem:
    return true
  }
  return false
}

type MessageRole string

const (
  MessageRoleSystem    MessageRole = "system"
  MessageRoleUser      MessageRole = "user"
  MessageRoleAssistant MessageRole = "assistant"
)

func (r MessageRole) Valid() bool {
  switch r {
  case MessageRoleSystem, MessageRoleUser, MessageRoleAssistant:
    return true
  }
  return false
}

// Message is append-only: rows are never updated once created. Ordering
// within a chat is (created_at, id).
type Message struct {
  ID          uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
  ChatID      uuid.UUID     `gorm:"index;not null" json:"chat_id"`
  SenderID    *uuid.UUID    `gorm:"index" json:"sender_id,omitempty"`
  SenderType  SenderType    `gorm:"type:varchar(16);not null;column:sender_type" json:"sender_type"`
  Role        MessageRole   `gorm:"type:varchar(16);not null;column:role" json:"role"`
  Content     string        `gorm:"type:text;not null;column:content" json:"content"`

  CreatedAt   time.Time     `gorm:"not null;index" json:"created_at"`
}

func (Message) TableName() string {
  return "messages"
}
