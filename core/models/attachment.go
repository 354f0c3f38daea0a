package models

import "time"

// Attachment is only a pointer to a file already persisted in blob storage.
type Attachment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FileName  string    `gorm:"size:255;not null" json:"fileName"`
	FileURL   string    `gorm:"size:500;not null" json:"fileUrl"`
	FileType  string    `gorm:"size:50;not null" json:"fileType"`
	FileSize  *int64    `json:"fileSize"`
	CreatedAt time.Time `json:"createdAt"`

	FollowUpRecordID uint `gorm:"index;not null" json:"followUpRecordId"`
}

func (Attachment) TableName() string {
	return "attachments"
}
