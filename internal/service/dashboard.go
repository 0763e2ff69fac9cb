package service

import (
	"FileVault/internal/model"
	"context"
	"fmt"
)

// Dashboard — сводка для главной страницы пользователя.
type Dashboard struct {
	Username   string
	Count      int
	Locked     int
	UsageBytes int64
	QuotaMB    int
	Recent     []model.LogEntry
}

// UsageMB — занятое место в двоичных мегабайтах с двумя знаками.
func (d Dashboard) UsageMB() string {
	return fmt.Sprintf("%.2f", float64(d.UsageBytes)/1024/1024)
}

// DashboardService собирает сводку; ничего не изменяет.
type DashboardService struct {
	files   *FileService
	logs    *LogService
	quotaMB int
}

func NewDashboardService(files *FileService, logs *LogService, quotaMB int) *DashboardService {
	return &DashboardService{files: files, logs: logs, quotaMB: quotaMB}
}

func (s *DashboardService) Get(ctx context.Context, owner string) (*Dashboard, error) {
	files, err := s.files.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	usage, err := s.files.Usage(ctx, owner)
	if err != nil {
		return nil, err
	}
	recent, err := s.logs.Recent(ctx, owner, RecentLimit)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		Username:   owner,
		Count:      len(files),
		UsageBytes: usage,
		QuotaMB:    s.quotaMB,
		Recent:     recent,
	}
	for _, f := range files {
		if f.Locked {
			d.Locked++
		}
	}
	return d, nil
}
