package repo

import (
	"FileVault/internal/model"
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LogRepository — журнал активности, только вставка и чтение.
type LogRepository interface {
	Append(ctx context.Context, e *model.LogEntry) error
	// Recent возвращает последние limit записей пользователя, новые первыми.
	Recent(ctx context.Context, username string, limit int) ([]model.LogEntry, error)
}

type logRepo struct {
	db *gorm.DB
}

// NewLogRepository создаёт реализацию репозитория журнала.
func NewLogRepository(db *gorm.DB) LogRepository {
	return &logRepo{db: db}
}

func (r *logRepo) Append(ctx context.Context, e *model.LogEntry) error {
	if e.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		e.ID = id.String()
	}
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *logRepo) Recent(ctx context.Context, username string, limit int) ([]model.LogEntry, error) {
	entries := []model.LogEntry{}
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
