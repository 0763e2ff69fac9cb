package service

import (
	"FileVault/internal/model"
	"FileVault/internal/storage"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fileFixture struct {
	svc   *FileService
	files *mockFileRepo
	logs  *mockLogRepo
	blobs *storage.FSStore
}

func newFileFixture(t *testing.T) *fileFixture {
	t.Helper()
	blobs, err := storage.NewFSStore(t.TempDir())
	require.NoError(t, err)
	fr := new(mockFileRepo)
	lr := new(mockLogRepo)
	return &fileFixture{
		svc:   NewFileService(fr, blobs, NewLogService(lr), zap.NewNop().Sugar()),
		files: fr,
		logs:  lr,
		blobs: blobs,
	}
}

func TestFileService_UploadThenDownload(t *testing.T) {
	fx := newFileFixture(t)
	ctx := context.Background()

	fx.files.On("Get", mock.Anything, "alice", "notes.txt").Return((*model.File)(nil), gorm.ErrRecordNotFound).Once()
	fx.files.On("Upsert", mock.Anything, mock.MatchedBy(func(f *model.File) bool {
		return f.Username == "alice" && f.Filename == "notes.txt" && f.Size == 5 && f.Locked && f.Expiry == 3
	})).Return(nil).Once()
	fx.logs.On("Append", mock.Anything, logAction("alice", model.ActionUploaded, "notes.txt")).Return(nil).Once()
	fx.logs.On("Append", mock.Anything, logAction("alice", model.ActionDownloaded, "notes.txt")).Return(nil).Once()

	f, err := fx.svc.Upload(ctx, UploadRequest{Owner: "alice", Filename: "notes.txt", Content: strings.NewReader("hello"), Locked: true, Expiry: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(5), f.Size)

	rc, name, err := fx.svc.Download(ctx, "alice", "notes.txt")
	require.NoError(t, err)
	defer rc.Close()
	b, _ := io.ReadAll(rc)
	assert.Equal(t, "hello", string(b))
	assert.Equal(t, "notes.txt", name)

	fx.files.AssertExpectations(t)
	fx.logs.AssertExpectations(t)
}

func TestFileService_UploadRejectsTraversal(t *testing.T) {
	fx := newFileFixture(t)
	for _, name := range []string{"../x.txt", "a/b", "..", ""} {
		_, err := fx.svc.Upload(context.Background(), UploadRequest{Owner: "alice", Filename: name, Content: strings.NewReader("x")})
		assert.ErrorIs(t, err, ErrInvalidFilename, name)
	}
	_, err := fx.svc.Upload(context.Background(), UploadRequest{Owner: "alice", Filename: "ok.txt", Content: strings.NewReader("x"), Expiry: -1})
	assert.ErrorIs(t, err, ErrInvalidExpiry)
	fx.files.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestFileService_UploadRollsBackBlobWhenRecordFails(t *testing.T) {
	fx := newFileFixture(t)
	ctx := context.Background()

	fx.files.On("Get", mock.Anything, "alice", "a.txt").Return((*model.File)(nil), gorm.ErrRecordNotFound).Once()
	fx.files.On("Upsert", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()

	_, err := fx.svc.Upload(ctx, UploadRequest{Owner: "alice", Filename: "a.txt", Content: strings.NewReader("data")})
	assert.Error(t, err)

	_, err = fx.blobs.Open(ctx, "alice", "a.txt")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	fx.logs.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestFileService_DownloadMissing(t *testing.T) {
	fx := newFileFixture(t)
	_, _, err := fx.svc.Download(context.Background(), "alice", "nope.txt")
	assert.ErrorIs(t, err, ErrFileNotFound)
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = fx.svc.Download(context.Background(), "alice", "../../etc/passwd")
	assert.ErrorIs(t, err, ErrFileNotFound)
	fx.logs.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestFileService_DeleteRemovesBothAndIsIdempotent(t *testing.T) {
	fx := newFileFixture(t)
	ctx := context.Background()

	_, err := fx.blobs.Put(ctx, "alice", "a.txt", strings.NewReader("data"))
	require.NoError(t, err)

	fx.files.On("Delete", mock.Anything, "alice", "a.txt").Return(int64(1), nil).Once()
	fx.files.On("Delete", mock.Anything, "alice", "a.txt").Return(int64(0), nil).Once()
	fx.logs.On("Append", mock.Anything, logAction("alice", model.ActionDeleted, "a.txt")).Return(nil).Twice()

	require.NoError(t, fx.svc.Delete(ctx, "alice", "a.txt"))
	_, _, err = fx.svc.Download(ctx, "alice", "a.txt")
	assert.ErrorIs(t, err, ErrFileNotFound)

	// второй раз — тоже успех
	require.NoError(t, fx.svc.Delete(ctx, "alice", "a.txt"))

	fx.files.AssertExpectations(t)
	fx.logs.AssertExpectations(t)
}

func TestFileService_ToggleLockTwiceRestores(t *testing.T) {
	fx := newFileFixture(t)
	ctx := context.Background()

	fx.files.On("Get", mock.Anything, "alice", "a.txt").Return(&model.File{Username: "alice", Filename: "a.txt", Locked: false}, nil).Once()
	fx.files.On("SetLocked", mock.Anything, "alice", "a.txt", true).Return(nil).Once()
	fx.files.On("Get", mock.Anything, "alice", "a.txt").Return(&model.File{Username: "alice", Filename: "a.txt", Locked: true}, nil).Once()
	fx.files.On("SetLocked", mock.Anything, "alice", "a.txt", false).Return(nil).Once()

	locked, err := fx.svc.ToggleLock(ctx, "alice", "a.txt")
	require.NoError(t, err)
	assert.True(t, locked)

	locked, err = fx.svc.ToggleLock(ctx, "alice", "a.txt")
	require.NoError(t, err)
	assert.False(t, locked)

	fx.files.AssertExpectations(t)
}

func TestFileService_ToggleLockMissing(t *testing.T) {
	fx := newFileFixture(t)
	fx.files.On("Get", mock.Anything, "alice", "nope").Return((*model.File)(nil), gorm.ErrRecordNotFound).Once()

	_, err := fx.svc.ToggleLock(context.Background(), "alice", "nope")
	assert.ErrorIs(t, err, ErrFileNotFound)
}
