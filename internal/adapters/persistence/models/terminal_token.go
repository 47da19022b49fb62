package models

import (
	"time"

	"gorm.io/gorm"
)

// TerminalToken represents terminal_tokens table.
// One row per terminal holds the current access/refresh pair.
type TerminalToken struct {
	TerminalID   string    `gorm:"primaryKey;size:64" json:"terminal_id"`
	AccessToken  string    `gorm:"type:text;not null" json:"-"`
	RefreshToken string    `gorm:"type:text" json:"-"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (TerminalToken) TableName() string {
	return "terminal_tokens"
}

// AutoMigrate creates the console tables if they do not exist
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&TerminalToken{},
	)
}
