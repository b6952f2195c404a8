package dashboard

import (
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"strings"

	"bizpilot/internal/log"
	appweb "bizpilot/web"
)

// Server renders the owner dashboard and translates form submissions into
// API mutations. It is one of the interchangeable presentation surfaces; all
// semantics live in App.
type Server struct {
	http.Server
	app       *App
	templates *template.Template
	logger    *log.Logger
}

func NewServer(addr string, app *App, logger *log.Logger) (*Server, error) {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	templates, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	s := &Server{
		app:       app,
		templates: templates,
		logger:    logger.WithComponent(log.ComponentDashboard),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)

	mux.HandleFunc("POST /tasks", s.handleCreateTask)
	mux.HandleFunc("POST /tasks/{id}/complete", s.handleCompleteTask)
	mux.HandleFunc("POST /tasks/{id}/delete", s.handleDeleteTask)

	mux.HandleFunc("POST /clients", s.handleCreateClient)
	mux.HandleFunc("POST /clients/{id}/delete", s.handleDeleteClient)

	mux.HandleFunc("POST /transactions", s.handleCreateTransaction)
	mux.HandleFunc("POST /transactions/{id}/delete", s.handleDeleteTransaction)

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "public, max-age=3600")
			static.ServeHTTP(w, r)
		}))
	} else {
		logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	s.Server = http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s, nil
}

// handleIndex refetches everything and renders the page: one full refresh per
// load, exactly as the original dashboards behave.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.app.Refresh(r.Context())

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "dashboard.html", s.app.State()); err != nil {
		s.logger.ErrorContext(r.Context(), "Dashboard render failed",
			log.FieldOperation, log.OpRender,
			log.FieldError, err)
		http.Error(w, "render failed", http.StatusInternalServerError)
	}
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	s.app.CreateTask(r.Context(), map[string]any{
		"title":       formValue(r, "title"),
		"description": formValue(r, "description"),
		"dueDate":     formValue(r, "dueDate"),
		"priority":    formValue(r, "priority"),
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	s.app.CompleteTask(r.Context(), r.PathValue("id"))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	s.app.DeleteTask(r.Context(), r.PathValue("id"))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	s.app.CreateClient(r.Context(), map[string]any{
		"name":         formValue(r, "name"),
		"phone":        formValue(r, "phone"),
		"company":      formValue(r, "company"),
		"email":        formValue(r, "email"),
		"address":      formValue(r, "address"),
		"followUpDate": formValue(r, "followUpDate"),
		"notes":        formValue(r, "notes"),
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	s.app.DeleteClient(r.Context(), r.PathValue("id"))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	s.app.CreateTransaction(r.Context(), map[string]any{
		"amount": parseAmount(formValue(r, "amount")),
		"type":   formValue(r, "type"),
		"note":   formValue(r, "note"),
		"date":   formValue(r, "date"),
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	s.app.DeleteTransaction(r.Context(), r.PathValue("id"))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func formValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.Form.Get(key))
}

// parseAmount keeps numbers numeric; anything unparseable goes through as
// typed, the same store-as-provided behavior the API has.
func parseAmount(raw string) any {
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}
