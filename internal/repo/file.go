package repo

import (
	"FileVault/internal/model"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FileRepository — реестр файлов пользователя.
type FileRepository interface {
	// Upsert создаёт запись или заменяет метаданные существующей (username, filename).
	Upsert(ctx context.Context, f *model.File) error
	ListByOwner(ctx context.Context, username string) ([]model.File, error)
	Get(ctx context.Context, username, filename string) (*model.File, error)
	SetLocked(ctx context.Context, username, filename string, locked bool) error
	// Delete возвращает число удалённых записей.
	Delete(ctx context.Context, username, filename string) (int64, error)
}

type fileRepo struct {
	db *gorm.DB
}

// NewFileRepository создаёт реализацию репозитория файлов.
func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepo{db: db}
}

func (r *fileRepo) Upsert(ctx context.Context, f *model.File) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}, {Name: "filename"}},
		DoUpdates: clause.AssignmentColumns([]string{"locked", "expiry", "size", "updated_at"}),
	}).Create(f).Error
}

func (r *fileRepo) ListByOwner(ctx context.Context, username string) ([]model.File, error) {
	files := []model.File{}
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		Order("filename").
		Find(&files).Error
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (r *fileRepo) Get(ctx context.Context, username, filename string) (*model.File, error) {
	var f model.File
	err := r.db.WithContext(ctx).
		Where("username = ? AND filename = ?", username, filename).
		First(&f).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *fileRepo) SetLocked(ctx context.Context, username, filename string, locked bool) error {
	tx := r.db.WithContext(ctx).Model(&model.File{}).
		Where("username = ? AND filename = ?", username, filename).
		Update("locked", locked)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *fileRepo) Delete(ctx context.Context, username, filename string) (int64, error) {
	tx := r.db.WithContext(ctx).
		Where("username = ? AND filename = ?", username, filename).
		Delete(&model.File{})
	return tx.RowsAffected, tx.Error
}
