package service

import (
	"FileVault/internal/model"
	"FileVault/internal/repo"
	"FileVault/internal/storage"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FileService держит согласованными запись реестра и блоб одного файла.
// Все изменения одного владельца сериализуются его мьютексом.
type FileService struct {
	files  repo.FileRepository
	blobs  storage.BlobStore
	logs   *LogService
	logger *zap.SugaredLogger

	// owner -> *sync.Mutex; записи не удаляются, по одной на владельца за время жизни процесса
	locks sync.Map
}

func NewFileService(files repo.FileRepository, blobs storage.BlobStore, logs *LogService, logger *zap.SugaredLogger) *FileService {
	return &FileService{files: files, blobs: blobs, logs: logs, logger: logger}
}

func (s *FileService) lock(owner string) func() {
	m, _ := s.locks.LoadOrStore(owner, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// UploadRequest — входные данные загрузки.
type UploadRequest struct {
	Owner    string
	Filename string
	Content  io.Reader
	Locked   bool
	Expiry   int
}

// Upload записывает блоб (с перезаписью) и создаёт или обновляет запись реестра.
func (s *FileService) Upload(ctx context.Context, req UploadRequest) (*model.File, error) {
	name, err := storage.CleanName(req.Filename)
	if err != nil {
		return nil, ErrInvalidFilename
	}
	if req.Expiry < 0 {
		return nil, ErrInvalidExpiry
	}

	unlock := s.lock(req.Owner)
	defer unlock()

	_, err = s.files.Get(ctx, req.Owner, name)
	existed := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("get file record: %w", err)
	}

	size, err := s.blobs.Put(ctx, req.Owner, name, req.Content)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidName) {
			return nil, ErrInvalidFilename
		}
		return nil, fmt.Errorf("store blob: %w", err)
	}

	f := &model.File{
		Username: req.Owner,
		Filename: name,
		Locked:   req.Locked,
		Expiry:   req.Expiry,
		Size:     size,
	}
	if err := s.files.Upsert(ctx, f); err != nil {
		// без записи в реестре новый блоб остался бы сиротой
		if existed {
			return nil, fmt.Errorf("save file record: %w", err)
		}
		if rmErr := s.blobs.Remove(context.WithoutCancel(ctx), req.Owner, name); rmErr != nil {
			s.logger.Errorw("Upload: failed to roll back blob", "user", req.Owner, "file", name, "error", rmErr)
		}
		return nil, fmt.Errorf("save file record: %w", err)
	}

	if err := s.logs.Append(ctx, req.Owner, model.ActionUploaded, name); err != nil {
		return nil, err
	}
	s.logger.Infow("file uploaded", "user", req.Owner, "file", name, "size", size, "locked", req.Locked)
	return f, nil
}

// List возвращает записи реестра владельца.
func (s *FileService) List(ctx context.Context, owner string) ([]model.File, error) {
	files, err := s.files.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return files, nil
}

// Download открывает блоб на чтение и пишет в журнал. Вызывающий закрывает поток.
func (s *FileService) Download(ctx context.Context, owner, filename string) (io.ReadCloser, string, error) {
	name, err := storage.CleanName(filename)
	if err != nil {
		return nil, "", ErrFileNotFound
	}

	rc, err := s.blobs.Open(ctx, owner, name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidName) {
			return nil, "", ErrFileNotFound
		}
		return nil, "", fmt.Errorf("open blob: %w", err)
	}

	if err := s.logs.Append(ctx, owner, model.ActionDownloaded, name); err != nil {
		_ = rc.Close()
		return nil, "", err
	}
	return rc, name, nil
}

// Delete удаляет блоб и запись реестра. Повторное удаление не ошибка.
func (s *FileService) Delete(ctx context.Context, owner, filename string) error {
	name, err := storage.CleanName(filename)
	if err != nil {
		return ErrInvalidFilename
	}

	unlock := s.lock(owner)
	defer unlock()

	if err := s.blobs.Remove(ctx, owner, name); err != nil {
		if errors.Is(err, storage.ErrInvalidName) {
			return ErrInvalidFilename
		}
		return fmt.Errorf("remove blob: %w", err)
	}
	n, err := s.files.Delete(ctx, owner, name)
	if err != nil {
		return fmt.Errorf("delete file record: %w", err)
	}

	if err := s.logs.Append(ctx, owner, model.ActionDeleted, name); err != nil {
		return err
	}
	s.logger.Infow("file deleted", "user", owner, "file", name, "records", n)
	return nil
}

// ToggleLock инвертирует флаг блокировки и возвращает новое значение.
// Флаг только хранится: скачивание и удаление он не запрещает.
func (s *FileService) ToggleLock(ctx context.Context, owner, filename string) (bool, error) {
	name, err := storage.CleanName(filename)
	if err != nil {
		return false, ErrFileNotFound
	}

	unlock := s.lock(owner)
	defer unlock()

	f, err := s.files.Get(ctx, owner, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrFileNotFound
		}
		return false, fmt.Errorf("get file record: %w", err)
	}

	locked := !f.Locked
	if err := s.files.SetLocked(ctx, owner, name, locked); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrFileNotFound
		}
		return false, fmt.Errorf("set locked: %w", err)
	}
	return locked, nil
}

// Usage — суммарный размер блобов владельца в байтах.
func (s *FileService) Usage(ctx context.Context, owner string) (int64, error) {
	n, err := s.blobs.Usage(ctx, owner)
	if err != nil {
		return 0, fmt.Errorf("storage usage: %w", err)
	}
	return n, nil
}
