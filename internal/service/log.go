package service

import (
	"FileVault/internal/model"
	"FileVault/internal/repo"
	"context"
	"fmt"
	"time"
)

// RecentLimit — сколько последних записей журнала показывает дашборд.
const RecentLimit = 5

// LogService — журнал активности пользователя.
type LogService struct {
	repo repo.LogRepository
	now  func() time.Time
}

func NewLogService(r repo.LogRepository) *LogService {
	return &LogService{repo: r, now: time.Now}
}

// Append добавляет запись с текущим временем.
func (s *LogService) Append(ctx context.Context, username, action, filename string) error {
	if filename == "" {
		filename = model.NoFile
	}
	e := &model.LogEntry{
		Username:  username,
		Action:    action,
		Filename:  filename,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Append(ctx, e); err != nil {
		return fmt.Errorf("append log: %w", err)
	}
	return nil
}

// Recent возвращает последние limit записей, новые первыми.
func (s *LogService) Recent(ctx context.Context, username string, limit int) ([]model.LogEntry, error) {
	if limit <= 0 {
		limit = RecentLimit
	}
	entries, err := s.repo.Recent(ctx, username, limit)
	if err != nil {
		return nil, fmt.Errorf("recent logs: %w", err)
	}
	return entries, nil
}
