package handlers_test

import (
	"FileVault/internal/config"
	"FileVault/internal/handlers"
	"FileVault/internal/repo"
	"FileVault/internal/service"
	"FileVault/internal/storage"
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testApp struct {
	srv    *httptest.Server
	client *http.Client
	blobs  *storage.FSStore
}

// newTestApp собирает приложение целиком: SQLite в памяти, файлы во временном каталоге
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	cfg := &config.Config{
		AuthSecret:      "test-secret",
		SessionTTL:      time.Hour,
		UploadMaxSizeMB: 1,
		QuotaMB:         100,
	}
	logger := zap.NewNop().Sugar()

	db, err := repo.InitDB(context.Background(), "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	blobs, err := storage.NewFSStore(t.TempDir())
	require.NoError(t, err)

	logSvc := service.NewLogService(repo.NewLogRepository(db))
	userSvc := service.NewUserService(repo.NewUserRepository(db), logSvc)
	fileSvc := service.NewFileService(repo.NewFileRepository(db), blobs, logSvc, logger)
	dashSvc := service.NewDashboardService(fileSvc, logSvc, cfg.QuotaMB)

	h := handlers.NewHandler(userSvc, fileSvc, dashSvc, logger, cfg)
	srv := httptest.NewServer(h.Router)
	t.Cleanup(srv.Close)

	return &testApp{srv: srv, client: newClient(t), blobs: blobs}
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

type result struct {
	Status int
	Path   string // путь после редиректов
	Body   string
	Header http.Header
}

func do(t *testing.T, c *http.Client, req *http.Request) result {
	t.Helper()
	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return result{Status: resp.StatusCode, Path: resp.Request.URL.Path, Body: string(b), Header: resp.Header}
}

func (a *testApp) get(t *testing.T, path string) result {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, a.srv.URL+path, nil)
	require.NoError(t, err)
	return do(t, a.client, req)
}

func (a *testApp) postForm(t *testing.T, path string, form url.Values) result {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, a.srv.URL+path, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return do(t, a.client, req)
}

func (a *testApp) upload(t *testing.T, filename, content string, fields map[string]string) result {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, a.srv.URL+"/upload", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return do(t, a.client, req)
}

// registerAndLogin регистрирует пользователя и входит под ним
func (a *testApp) registerAndLogin(t *testing.T, username, password string) {
	t.Helper()
	res := a.postForm(t, "/register", url.Values{"username": {username}, "password": {password}})
	require.Equal(t, http.StatusOK, res.Status)
	require.Equal(t, "/", res.Path)

	res = a.postForm(t, "/", url.Values{"username": {username}, "password": {password}})
	require.Equal(t, http.StatusOK, res.Status)
	require.Equal(t, "/dashboard", res.Path)
}
