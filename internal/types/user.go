package types

import (
  "time"

  "github.com/google/uuid"
)

type User struct {
  ID          uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
  Username    string        `gorm:"uniqueIndex;not null;column:username" json:"username"`
  Email       string        `gorm:"index;column:email" json:"email,omitempty"`
  Password    string        `gorm:"not null;column:password" json:"-"`

  CreatedAt   time.Time     `gorm:"not null" json:"created_at"`
  UpdatedAt   time.Time     `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string {
  return "users"
}
