package model

import "time"

// User — учётная запись. Password хранит bcrypt-хеш, а не пароль.
type User struct {
	Username  string `gorm:"primaryKey"`
	Password  string `gorm:"not null"`
	CreatedAt time.Time
}

func (User) TableName() string { return "users" }
