package handlers

import (
	"FileVault/internal/model"
	"FileVault/internal/service"
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"net/url"

	"go.uber.org/zap"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"pathescape": url.PathEscape,
}).ParseFS(templatesFS, "templates/*.html"))

// PageData — данные для шаблонов страниц.
type PageData struct {
	Title   string
	Theme   string
	User    string
	Error   string
	Success string

	Dashboard *service.Dashboard
	Files     []model.File
}

func newPage(title string, s model.Session, authed bool) PageData {
	p := PageData{Title: title, Theme: model.ThemeLight}
	if authed {
		p.User = s.Username
		p.Theme = s.Theme
	}
	return p
}

// render выполняет шаблон в буфер, чтобы ошибка шаблона не оставила полстраницы.
func render(w http.ResponseWriter, logger *zap.SugaredLogger, status int, name string, data PageData) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		logger.Errorw("render: template failed", "template", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func internalError(w http.ResponseWriter) {
	http.Error(w, "internal error", http.StatusInternalServerError)
}
