package entities

import "time"

// UploadedFile is one delivered document together with its decoded text.
type UploadedFile struct {
	ID         uint      `gorm:"primaryKey"`
	PublicID   string    `gorm:"type:varchar(40);uniqueIndex;not null"`
	UserID     uint      `gorm:"not null;index"`
	User       User      `gorm:"constraint:OnDelete:RESTRICT"`
	FileName   string    `gorm:"type:text;not null"`
	FileType   string    `gorm:"type:varchar(20);not null;index"`
	Content    string    `gorm:"type:text;not null"`
	RemotePath string    `gorm:"type:text;not null;index"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}

func (UploadedFile) TableName() string {
	return "uploaded_files"
}
