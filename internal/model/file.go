package model

import "time"

// File — запись реестра о загруженном файле пользователя.
// Содержимое лежит в хранилище блобов по ключу (Username, Filename).
type File struct {
	Username string `gorm:"primaryKey"`
	Filename string `gorm:"primaryKey"`

	Locked bool  `gorm:"not null;default:false"`
	Expiry int   `gorm:"not null;default:0"` // сохраняется, но ни на что не влияет
	Size   int64 `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (File) TableName() string { return "files" }
