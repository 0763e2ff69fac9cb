package model

import "time"

// Действия журнала активности.
const (
	ActionUploaded        = "Uploaded"
	ActionDownloaded      = "Downloaded"
	ActionDeleted         = "Deleted"
	ActionPasswordChanged = "PasswordChanged"
)

// NoFile подставляется в журнал для действий без файла.
const NoFile = "-"

// LogTimeLayout — формат времени записи журнала для отображения.
const LogTimeLayout = "02 Jan 2006 15:04"

// LogEntry — запись журнала активности. ID — UUIDv7, упорядочен по времени.
type LogEntry struct {
	ID        string    `gorm:"primaryKey"`
	Username  string    `gorm:"not null;index:idx_logs_user_time"`
	Action    string    `gorm:"not null"`
	Filename  string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"index:idx_logs_user_time"`
}

func (LogEntry) TableName() string { return "logs" }

// Time возвращает время записи в локальном формате отображения.
func (e LogEntry) Time() string {
	return e.CreatedAt.Local().Format(LogTimeLayout)
}
