package web

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/httplog/v3"
	"github.com/go-playground/validator/v10"

	"github.com/florianilch/taskgate/internal/apiclient"
	"github.com/florianilch/taskgate/internal/notify"
	"github.com/florianilch/taskgate/internal/route"
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, route.ViewHome, pageData{})
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, route.ViewLogin, pageData{Form: formValues{Username: r.URL.Query().Get("username")}})
}

func (s *Server) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, route.ViewRegister, pageData{})
}

func (s *Server) handleTaskList(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.backend.ListTasks(r.Context())
	if err != nil {
		if apiclient.Classify(err) == apiclient.OutcomeUnauthorized {
			s.fail(w, r, err, route.LoginPath, "")
			return
		}
		// Render the page anyway so the add form stays usable.
		s.logFailure(r, err)
		var data pageData
		if toast, err := notify.Make(notify.Error, "Could not load tasks", describe(err)); err == nil {
			data.Toast = &toast
		}
		s.render(w, r, route.ViewTaskList, data)
		return
	}
	s.render(w, r, route.ViewTaskList, pageData{Tasks: tasks})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	creds := apiclient.Credentials{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}
	if err := s.backend.Login(r.Context(), creds); err != nil {
		s.fail(w, r, err, route.LoginPath+"?username="+url.QueryEscape(creds.Username), "Sign in failed")
		return
	}
	s.toast(w, r, notify.Success, "Signed in", "Welcome back, "+creds.Username+".")
	http.Redirect(w, r, route.ProtectedRoot, http.StatusSeeOther)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	reg := apiclient.Registration{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	if err := s.backend.Register(r.Context(), reg); err != nil {
		s.fail(w, r, err, route.RegisterPath, "Registration failed")
		return
	}
	s.toast(w, r, notify.Success, "Account created", "You can sign in now.")
	http.Redirect(w, r, route.LoginPath+"?username="+url.QueryEscape(reg.Username), http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.backend.Logout(r.Context()); err != nil {
		s.fail(w, r, err, route.HomePath, "Sign out failed")
		return
	}
	s.toast(w, r, notify.Info, "Signed out", "")
	http.Redirect(w, r, route.LoginPath, http.StatusSeeOther)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	task := apiclient.Task{
		Title:       strings.TrimSpace(r.PostFormValue("title")),
		Description: strings.TrimSpace(r.PostFormValue("description")),
	}
	created, err := s.backend.CreateTask(r.Context(), task)
	if err != nil {
		s.fail(w, r, err, route.ProtectedRoot, "Could not add task")
		return
	}
	s.toast(w, r, notify.Success, "Task added", created.Title)
	http.Redirect(w, r, route.ProtectedRoot, http.StatusSeeOther)
}

func (s *Server) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	task, err := s.backend.GetTask(r.Context(), id)
	if err != nil {
		s.fail(w, r, err, route.ProtectedRoot, "Could not update task")
		return
	}
	task.Completed = !task.Completed
	if _, err := s.backend.UpdateTask(r.Context(), task); err != nil {
		s.fail(w, r, err, route.ProtectedRoot, "Could not update task")
		return
	}
	http.Redirect(w, r, route.ProtectedRoot, http.StatusSeeOther)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	if err := s.backend.DeleteTask(r.Context(), id); err != nil {
		s.fail(w, r, err, route.ProtectedRoot, "Could not delete task")
		return
	}
	s.toast(w, r, notify.Info, "Task deleted", "")
	http.Redirect(w, r, route.ProtectedRoot, http.StatusSeeOther)
}

// fail turns a backend error into a toast and a redirect. Rejected credentials
// always land on the login view since the client has already evicted the token.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, fallback, summary string) {
	outcome := apiclient.Classify(err)
	httplog.SetAttrs(r.Context(), slog.String("backend_outcome", outcome.String()))

	if outcome == apiclient.OutcomeUnauthorized && r.URL.Path != route.LoginPath {
		s.toast(w, r, notify.Warn, "Session expired", "Please sign in again.")
		http.Redirect(w, r, route.LoginPath, http.StatusSeeOther)
		return
	}

	s.logFailure(r, err)
	s.toast(w, r, notify.Error, summary, describe(err))
	http.Redirect(w, r, fallback, http.StatusSeeOther)
}

func (s *Server) logFailure(r *http.Request, err error) {
	slog.WarnContext(r.Context(), "backend call failed", "path", r.URL.Path, "error", err)
}

func (s *Server) toast(w http.ResponseWriter, r *http.Request, severity notify.Severity, summary, detail string) {
	if err := notify.New(notify.Cookie(w, r)).Show(severity, summary, detail); err != nil {
		slog.ErrorContext(r.Context(), "failed to queue toast", "error", err)
	}
}

// describe renders err for end users without leaking transport internals.
func describe(err error) string {
	var respErr *apiclient.ResponseError
	if errors.As(err, &respErr) {
		if detail := respErr.Detail(); detail != "" {
			return detail
		}
		return http.StatusText(respErr.StatusCode)
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := make([]string, 0, len(validationErrs))
		for _, fe := range validationErrs {
			fields = append(fields, strings.ToLower(fe.Field())+" is "+validationReason(fe.Tag()))
		}
		return strings.Join(fields, ", ")
	}

	return "The task service is unavailable."
}

func validationReason(tag string) string {
	switch tag {
	case "required":
		return "required"
	case "email":
		return "not a valid email address"
	case "max":
		return "too long"
	default:
		return "invalid"
	}
}

func taskID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		http.NotFound(w, r)
		return 0, false
	}
	return id, true
}
