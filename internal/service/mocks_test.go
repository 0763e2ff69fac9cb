package service

import (
	"FileVault/internal/model"
	"FileVault/internal/repo"
	"context"

	"github.com/stretchr/testify/mock"
)

// мок для repo.UserRepository
type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	args := m.Called(ctx, user)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetUserByLogin(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, username, hash string) error {
	return m.Called(ctx, username, hash).Error(0)
}

var _ repo.UserRepository = (*mockUserRepo)(nil)

// мок для repo.FileRepository
type mockFileRepo struct{ mock.Mock }

func (m *mockFileRepo) Upsert(ctx context.Context, f *model.File) error {
	return m.Called(ctx, f).Error(0)
}

func (m *mockFileRepo) ListByOwner(ctx context.Context, username string) ([]model.File, error) {
	args := m.Called(ctx, username)
	if v, ok := args.Get(0).([]model.File); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFileRepo) Get(ctx context.Context, username, filename string) (*model.File, error) {
	args := m.Called(ctx, username, filename)
	if v, ok := args.Get(0).(*model.File); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFileRepo) SetLocked(ctx context.Context, username, filename string, locked bool) error {
	return m.Called(ctx, username, filename, locked).Error(0)
}

func (m *mockFileRepo) Delete(ctx context.Context, username, filename string) (int64, error) {
	args := m.Called(ctx, username, filename)
	return args.Get(0).(int64), args.Error(1)
}

var _ repo.FileRepository = (*mockFileRepo)(nil)

// мок для repo.LogRepository
type mockLogRepo struct{ mock.Mock }

func (m *mockLogRepo) Append(ctx context.Context, e *model.LogEntry) error {
	return m.Called(ctx, e).Error(0)
}

func (m *mockLogRepo) Recent(ctx context.Context, username string, limit int) ([]model.LogEntry, error) {
	args := m.Called(ctx, username, limit)
	if v, ok := args.Get(0).([]model.LogEntry); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

var _ repo.LogRepository = (*mockLogRepo)(nil)

// logAction матчит запись журнала по действию и имени файла
func logAction(user, action, filename string) any {
	return mock.MatchedBy(func(e *model.LogEntry) bool {
		return e.Username == user && e.Action == action && e.Filename == filename
	})
}
