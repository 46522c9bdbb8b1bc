package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Board is a single imageboard section identified by its short URL (e.g. "b").
// LastPostNumber is the per-board post counter; every accepted post takes
// LastPostNumber+1 as its number and advances the counter by exactly one.
type Board struct {
	ID             string        `gorm:"primaryKey;size:36" json:"id"`
	URL            string        `gorm:"size:64;uniqueIndex;not null" json:"url"`
	Name           string        `gorm:"size:256;not null" json:"name"`
	LastPostNumber int           `gorm:"not null;default:0" json:"last_post_number"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
	Settings       BoardSettings `gorm:"foreignKey:BoardID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"settings"`
}

func (b *Board) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// BoardSettings holds the per-board posting rules, 1:1 with Board.
// Delays and ThreadKeepAliveTime are milliseconds, MaxFileSize is bytes.
type BoardSettings struct {
	ID      uint   `gorm:"primaryKey" json:"-"`
	BoardID string `gorm:"size:36;uniqueIndex;not null" json:"-"`

	EnablePosting       bool `json:"enable_posting"`
	EnableFilesOnThread bool `json:"enable_files_on_thread"`
	EnableFilesOnReply  bool `json:"enable_files_on_reply"`
	StrictFileOnThread  bool `json:"strict_file_on_thread"`
	StrictFileOnReply   bool `json:"strict_file_on_reply"`
	EnableTripcode      bool `json:"enable_tripcode"`
	EnableMarkdown      bool `json:"enable_markdown"`

	DelayBetweenThreads int `gorm:"not null;default:0" json:"delay_between_threads"`
	DelayBetweenReplies int `gorm:"not null;default:0" json:"delay_between_replies"`
	ThreadKeepAliveTime int `gorm:"not null;default:0" json:"thread_keep_alive_time"`
	BumpLimit           int `gorm:"not null;default:0" json:"bump_limit"`

	StrictAnonymousPosting bool `json:"strict_anonymous_posting"`

	MaxThreadCount   int    `gorm:"not null;default:0" json:"max_thread_count"`
	AdditionalRules  string `gorm:"type:text" json:"additional_rules"`
	MaxFileSize      int64  `gorm:"not null;default:0" json:"max_file_size"`
	MaxCommentLength int    `gorm:"not null;default:1" json:"max_comment_length"`
}
