package api

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"

	"spinach-backend/internal/config"

	"github.com/go-chi/chi/v5"
)

const dashboardTemplate = "dashboard.html"

type DashboardService struct {
	templates *template.Template
	firebase  config.FirebaseConfig
	staticDir string
}

func LoadDashboardTemplates(templateDir string) (*template.Template, error) {
	return template.ParseFiles(filepath.Join(templateDir, dashboardTemplate))
}

// NewDashboardService serves the dashboard page. staticDir is exposed under
// /static/ when non-empty.
func NewDashboardService(templates *template.Template, firebase config.FirebaseConfig, staticDir string) *DashboardService {
	return &DashboardService{templates: templates, firebase: firebase, staticDir: staticDir}
}

func (s *DashboardService) AddRoutes(r chi.Router) {
	r.Get("/", s.Dashboard)
	if s.staticDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(s.staticDir))))
	}
}

func (s *DashboardService) Dashboard(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	err := s.templates.ExecuteTemplate(&buf, dashboardTemplate, map[string]any{
		"FirebaseConfig": s.firebase,
	})
	if err != nil {
		slog.Error("error rendering dashboard", "error", err)
		http.Error(w, "error rendering dashboard", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes()) //nolint:errcheck
}
