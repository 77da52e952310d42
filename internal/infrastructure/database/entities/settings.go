package entities

import "time"

// FileTemplate holds the single naming template row.
type FileTemplate struct {
	ID        uint      `gorm:"primaryKey"`
	Template  string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (FileTemplate) TableName() string {
	return "file_templates"
}

// LogSettings holds the single log channel configuration row.
type LogSettings struct {
	ID               uint    `gorm:"primaryKey"`
	LogChatID        *string `gorm:"type:text"`
	LogRegistrations bool    `gorm:"not null;default:true"`
	LogFileUploads   bool    `gorm:"not null;default:true"`
}

func (LogSettings) TableName() string {
	return "log_settings"
}
