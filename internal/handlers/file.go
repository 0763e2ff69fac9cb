package handlers

import (
	"FileVault/internal/config"
	"FileVault/internal/middleware"
	"FileVault/internal/model"
	"FileVault/internal/service"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// FileHandler обрабатывает дашборд, список файлов, загрузку, скачивание и удаление.
type FileHandler struct {
	FileService      *service.FileService
	DashboardService *service.DashboardService
	Logger           *zap.SugaredLogger
	Config           *config.Config
}

func NewFileHandler(fileService *service.FileService, dashboardService *service.DashboardService, logger *zap.SugaredLogger, cfg *config.Config) *FileHandler {
	return &FileHandler{FileService: fileService, DashboardService: dashboardService, Logger: logger, Config: cfg}
}

// fileParam возвращает имя файла из пути; chi отдаёт сегмент экранированным, если у URL есть RawPath.
func fileParam(r *http.Request) string {
	name := chi.URLParam(r, "filename")
	if r.URL.RawPath != "" {
		if dec, err := url.PathUnescape(name); err == nil {
			return dec
		}
	}
	return name
}

func session(r *http.Request) model.Session {
	s, _ := middleware.GetSessionFromContext(r.Context())
	return s
}

func (h *FileHandler) renderDashboard(w http.ResponseWriter, r *http.Request, status int, errMsg string) {
	s := session(r)
	d, err := h.DashboardService.Get(r.Context(), s.Username)
	if err != nil {
		h.Logger.Errorw("Dashboard: service error", "user", s.Username, "error", err)
		internalError(w)
		return
	}
	page := newPage("Dashboard", s, true)
	page.Dashboard = d
	page.Error = errMsg
	render(w, h.Logger, status, "dashboard.html", page)
}

func (h *FileHandler) renderUploads(w http.ResponseWriter, r *http.Request, status int, errMsg string) {
	s := session(r)
	files, err := h.FileService.List(r.Context(), s.Username)
	if err != nil {
		h.Logger.Errorw("MyUploads: service error", "user", s.Username, "error", err)
		internalError(w)
		return
	}
	page := newPage("My uploads", s, true)
	page.Files = files
	page.Error = errMsg
	render(w, h.Logger, status, "myuploads.html", page)
}

// uploadsError показывает предметную ошибку на странице файлов, остальное — 500.
func (h *FileHandler) uploadsError(w http.ResponseWriter, r *http.Request, op, name string, err error) {
	msg, ok := service.Message(err)
	if !ok {
		h.Logger.Errorw(op+": service error", "user", session(r).Username, "file", name, "error", err)
		internalError(w)
		return
	}
	h.Logger.Warnw(op+": rejected", "user", session(r).Username, "file", name, "reason", msg)
	h.renderUploads(w, r, statusFor(err), msg)
}

func (h *FileHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	h.renderDashboard(w, r, http.StatusOK, "")
}

func (h *FileHandler) MyUploads(w http.ResponseWriter, r *http.Request) {
	h.renderUploads(w, r, http.StatusOK, "")
}

// Upload принимает multipart-форму: file, lock (флажок), expiry (целое).
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	s := session(r)

	// Лимит общего тела запроса
	maxBody := int64(h.Config.UploadMaxSizeMB)*1024*1024 + 1*1024*1024
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.Logger.Warnw("Upload: payload too large", "user", s.Username, "limit", maxBody)
			h.renderDashboard(w, r, http.StatusRequestEntityTooLarge, "File is too large")
			return
		}
		h.Logger.Warnw("Upload: invalid multipart form", "user", s.Username, "error", err)
		h.renderDashboard(w, r, http.StatusBadRequest, "Invalid upload form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		// форма без файла: просто возвращаемся на дашборд
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	defer file.Close()
	if header.Filename == "" {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}

	expiry := 0
	if v := strings.TrimSpace(r.FormValue("expiry")); v != "" {
		expiry, err = strconv.Atoi(v)
		if err != nil {
			h.renderDashboard(w, r, http.StatusBadRequest, service.ErrInvalidExpiry.Msg)
			return
		}
	}

	_, err = h.FileService.Upload(r.Context(), service.UploadRequest{
		Owner:    s.Username,
		Filename: header.Filename,
		Content:  file,
		Locked:   r.FormValue("lock") != "",
		Expiry:   expiry,
	})
	if err != nil {
		if msg, ok := service.Message(err); ok {
			h.Logger.Warnw("Upload: rejected", "user", s.Username, "file", header.Filename, "reason", msg)
			h.renderDashboard(w, r, statusFor(err), msg)
			return
		}
		h.Logger.Errorw("Upload: service error", "user", s.Username, "file", header.Filename, "error", err)
		internalError(w)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// Download отдаёт файл как вложение.
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	s := session(r)
	name := fileParam(r)

	rc, clean, err := h.FileService.Download(r.Context(), s.Username, name)
	if err != nil {
		h.uploadsError(w, r, "Download", name, err)
		return
	}
	defer rc.Close()
	name = clean

	ctype := mime.TypeByExtension(filepath.Ext(name))
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ctype)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.Logger.Warnw("Download: stream interrupted", "user", s.Username, "file", name, "error", err)
	}
}

func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	s := session(r)
	name := fileParam(r)

	if err := h.FileService.Delete(r.Context(), s.Username, name); err != nil {
		h.uploadsError(w, r, "Delete", name, err)
		return
	}
	http.Redirect(w, r, "/myuploads", http.StatusFound)
}

func (h *FileHandler) ToggleLock(w http.ResponseWriter, r *http.Request) {
	s := session(r)
	name := fileParam(r)

	locked, err := h.FileService.ToggleLock(r.Context(), s.Username, name)
	if err != nil {
		h.uploadsError(w, r, "ToggleLock", name, err)
		return
	}
	h.Logger.Infow("file lock toggled", "user", s.Username, "file", name, "locked", locked)
	http.Redirect(w, r, "/myuploads", http.StatusFound)
}
