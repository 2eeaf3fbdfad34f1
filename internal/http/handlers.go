package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"daybook/internal/core"
	"daybook/internal/dashboard"
	"daybook/internal/log"
	"daybook/internal/remote"
)

// Messages shown when a mutation cannot reach the remote service.
const (
	msgAddTaskFailed       = "Error adding task"
	msgUpdateTaskFailed    = "Error updating task"
	msgDeleteTaskFailed    = "Error deleting task"
	msgAddExpenseFailed    = "Error adding expense"
	msgDeleteExpenseFailed = "Error deleting expense"
	msgIdentityFailed      = "Error saving email"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status, code := "ready", http.StatusOK
	checks := map[string]string{"templates": "ok", "storage": "ok"}
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			checks["storage"] = "failed: " + err.Error()
			status, code = "not_ready", http.StatusServiceUnavailable
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{"status": status, "checks": checks})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	body, err := s.render(r.Context(), "index.html")
	if err != nil {
		InternalServerError("Error rendering page").Write(w)
		return
	}
	NewHTMXResponse().BodyHTML(body).Write(w)
}

func (s *Server) handleApp(w http.ResponseWriter, r *http.Request) {
	s.writeApp(w, r, NewHTMXResponse())
}

func (s *Server) handleActivate(w http.ResponseWriter, r *http.Request) {
	err := s.ctrl.Activate(r.Context(), dashboard.Page(r.PathValue("name")))
	if errors.Is(err, dashboard.ErrUnknownPage) {
		NotFoundError("Unknown page").Write(w)
		return
	}
	s.logLoadError(r, err)
	s.writeApp(w, r, NewHTMXResponse())
}

func (s *Server) handleSetIdentity(w http.ResponseWriter, r *http.Request) {
	p, ok := s.parse(w, r)
	if !ok {
		return
	}
	err := s.ctrl.SetIdentity(r.Context(), p.Get("email"))
	switch {
	case core.IsValidation(err):
		ValidationError(alertMessage(err)).Write(w)
		return
	case err != nil && !remote.IsNetwork(err):
		s.logger.ErrorContext(r.Context(), "Failed to set identity", log.FieldError, err.Error())
		InternalServerError(msgIdentityFailed).Write(w)
		return
	}
	s.logLoadError(r, err)
	s.writeApp(w, r, NewHTMXResponse())
}

// Date and period selection.

func (s *Server) handleTaskDate(w http.ResponseWriter, r *http.Request) {
	s.selectDate(w, r, func(ctx context.Context, d core.Date) error { return s.ctrl.SetTaskDate(ctx, d) })
}

func (s *Server) handleExpenseDate(w http.ResponseWriter, r *http.Request) {
	s.selectDate(w, r, func(ctx context.Context, d core.Date) error { return s.ctrl.SetExpenseDate(ctx, d) })
}

func (s *Server) handleDailyReportDate(w http.ResponseWriter, r *http.Request) {
	s.selectDate(w, r, func(_ context.Context, d core.Date) error { return s.ctrl.SetDailyReportDate(d) })
}

func (s *Server) selectDate(w http.ResponseWriter, r *http.Request, apply func(context.Context, core.Date) error) {
	p, ok := s.parse(w, r)
	if !ok {
		return
	}
	date, err := ParseDateValue(p.Get("date"))
	if err == nil {
		err = apply(r.Context(), date)
	}
	if core.IsValidation(err) {
		ValidationError(alertMessage(err)).Write(w)
		return
	}
	s.logLoadError(r, err)
	s.writeApp(w, r, NewHTMXResponse())
}

func (s *Server) handleMonthlyReportPeriod(w http.ResponseWriter, r *http.Request) {
	p, ok := s.parse(w, r)
	if !ok {
		return
	}
	month, err := ParseMonthValue(p.Get("month"))
	if err == nil {
		err = s.ctrl.SetReportMonth(month)
	}
	if err != nil {
		ValidationError(core.ErrInvalidMonth.Error()).Write(w)
		return
	}
	s.writeApp(w, r, NewHTMXResponse())
}

func (s *Server) handleDailyReport(w http.ResponseWriter, r *http.Request) {
	s.logLoadError(r, s.ctrl.LoadDailyReport(r.Context()))
	s.writeApp(w, r, NewHTMXResponse())
}

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	s.logLoadError(r, s.ctrl.LoadMonthlyReport(r.Context()))
	s.writeApp(w, r, NewHTMXResponse())
}

// Mutations.

func (s *Server) handleAddTask(w http.ResponseWriter, r *http.Request) {
	p, ok := s.parse(w, r)
	if !ok {
		return
	}
	err := s.ctrl.AddTask(r.Context(), p.Get("title"))
	s.mutated(w, r, err, msgAddTaskFailed, true)
}

func (s *Server) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	p, ok := s.parse(w, r)
	if !ok {
		return
	}
	err := s.ctrl.ToggleTask(r.Context(), r.PathValue("id"), ParseFlag(p.Get("completed")))
	s.mutated(w, r, err, msgUpdateTaskFailed, false)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	p, ok := s.parse(w, r)
	if !ok {
		return
	}
	err := s.ctrl.DeleteTask(r.Context(), r.PathValue("id"), ParseFlag(p.Get("confirmed")))
	s.mutated(w, r, err, msgDeleteTaskFailed, false)
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	p, ok := s.parse(w, r)
	if !ok {
		return
	}
	err := s.ctrl.AddExpense(r.Context(), p.Get("amount"), p.Get("description"))
	s.mutated(w, r, err, msgAddExpenseFailed, true)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	p, ok := s.parse(w, r)
	if !ok {
		return
	}
	err := s.ctrl.DeleteExpense(r.Context(), r.PathValue("id"), ParseFlag(p.Get("confirmed")))
	s.mutated(w, r, err, msgDeleteExpenseFailed, false)
}

// mutated answers a mutation. Validation failures are 422 with a prompt;
// remote failures leave the page as it is (204) and raise an error
// notification; success re-renders the page.
func (s *Server) mutated(w http.ResponseWriter, r *http.Request, err error, failure string, resetForm bool) {
	switch {
	case err == nil:
		b := NewHTMXResponse()
		if resetForm {
			b.TriggerFormReset()
		}
		s.writeApp(w, r, b)
	case core.IsValidation(err):
		ValidationError(alertMessage(err)).Write(w)
	default:
		log.FromContext(r.Context()).WarnContext(r.Context(), "Mutation failed",
			log.FieldError, err.Error(),
			log.FieldErrorType, errorType(err))
		NewHTMXResponse().
			Status(http.StatusNoContent).
			TriggerErrorNotification(failure).
			Write(w)
	}
}

func (s *Server) parse(w http.ResponseWriter, r *http.Request) (*RequestBodyParser, bool) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		s.logger.WarnContext(r.Context(), "Invalid request body", log.FieldError, err.Error(), log.FieldPath, r.URL.Path)
		BadRequestError("Invalid request").Write(w)
		return nil, false
	}
	return p, true
}

// logLoadError logs a failed view load. The view itself already shows the
// failure, so the request still succeeds.
func (s *Server) logLoadError(r *http.Request, err error) {
	if err == nil {
		return
	}
	log.FromContext(r.Context()).WarnContext(r.Context(), "View load failed",
		log.FieldError, err.Error(),
		log.FieldErrorType, errorType(err))
}

func errorType(err error) string {
	switch {
	case core.IsValidation(err):
		return log.ErrorTypeValidation
	case remote.IsNetwork(err):
		return log.ErrorTypeNetwork
	default:
		return log.ErrorTypeInternal
	}
}

// alertMessage returns the user-facing text of the validation error in err's chain.
func alertMessage(err error) string {
	var v core.ValidationError
	if errors.As(err, &v) {
		return v.Error()
	}
	return err.Error()
}
