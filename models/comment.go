package models

import "time"

// Comment is a single post. A thread root has ParentID == nil and a non-nil
// LastHit; a reply has a non-nil ParentID and LastHit == nil. The pair
// (BoardID, NumberOnBoard) is unique: the composite index is what the
// numbering transaction retries against.
type Comment struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	BoardID       string  `gorm:"size:36;not null;uniqueIndex:idx_comments_board_number;index" json:"-"`
	ParentID      *uint   `gorm:"index" json:"-"`
	NumberOnBoard int     `gorm:"not null;uniqueIndex:idx_comments_board_number" json:"number_on_board"`
	PosterIP      string  `gorm:"size:45;not null;index" json:"-"`
	Tripcode      *string `gorm:"size:64" json:"tripcode,omitempty"`
	Name          *string `gorm:"size:256" json:"name,omitempty"`
	Email         *string `gorm:"size:256" json:"email,omitempty"`
	Subject       *string `gorm:"size:256" json:"subject,omitempty"`
	Comment       string  `gorm:"type:text;not null" json:"comment"`
	// Deletion password, matched verbatim on user-driven deletion.
	Password string `gorm:"size:256;not null" json:"-"`

	File      *string `gorm:"size:256" json:"file,omitempty"`
	FileSize  *int64  `json:"file_size,omitempty"`
	FileThumb *string `gorm:"size:256" json:"file_thumb,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	LastHit   *time.Time `gorm:"index" json:"last_hit,omitempty"`

	Board    Board     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Children []Comment `gorm:"foreignKey:ParentID" json:"-"`
}

// IsThread reports whether the comment is a thread root.
func (c *Comment) IsThread() bool {
	return c.ParentID == nil && c.LastHit != nil
}

// HasFile reports whether the comment carries an attachment.
func (c *Comment) HasFile() bool {
	return c.File != nil
}
