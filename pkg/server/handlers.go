package server

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vstopensource/formfill/pkg/render"
	"github.com/vstopensource/formfill/pkg/session"
)

// submitRequest is the JSON submission payload. RenderedAt is the client's
// copy of when the form was first shown, used for the completion time.
type submitRequest struct {
	Values     map[string]any `json:"values"`
	RenderedAt string         `json:"renderedAt,omitempty"`
}

type submitResponse struct {
	SubmissionID        string `json:"submissionId"`
	ConfirmationMessage string `json:"confirmationMessage,omitempty"`
	RedirectURL         string `json:"redirectUrl,omitempty"`
	Reload              bool   `json:"reload"`
}

func (s *Server) handleHealth(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := session.WaitReady(ctx, s.store, 200*time.Millisecond); err != nil {
		s.log.Warn("health probe failed", "error", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleFormPage(c echo.Context) error {
	fc := c.(*FormContext)
	if c.QueryParam("viewHistory") == "true" {
		return s.renderHistory(fc)
	}
	return s.renderForm(fc)
}

func (s *Server) renderForm(fc *FormContext) error {
	sess := fc.Session
	form, err := s.renderer.Build(sess.Schema(), render.Options{Profile: sess.Profile()})
	if err != nil {
		return s.renderFailure(fc, err)
	}

	page, err := s.templates.RenderTemplate("templates/form.html", map[string]any{
		"title":       sess.Schema().Name,
		"description": sess.Schema().Description,
		"form_html":   form.Render(),
		"rendered_at": sess.StartedAt().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return s.renderFailure(fc, err)
	}
	return fc.HTML(http.StatusOK, page)
}

func (s *Server) renderHistory(fc *FormContext) error {
	sess := fc.Session
	entries, err := s.pipeline.History(fc.Request().Context(), sess.Schema(), sess.Identity().UID)
	if err != nil {
		return s.renderFailure(fc, err)
	}
	sess.ViewHistory()

	title := fc.QueryParam("formName")
	if title == "" {
		title = sess.Schema().Name
	}

	rows := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		fields := make([]map[string]string, 0, len(entry.Fields))
		for _, field := range entry.Fields {
			fields = append(fields, map[string]string{"label": field.Label, "value": field.Value})
		}
		rows = append(rows, map[string]any{
			"submittedAt": entry.Record.SubmittedAt.Format("Jan 2, 2006 15:04"),
			"fields":      fields,
		})
	}

	page, err := s.templates.RenderTemplate("templates/history.html", map[string]any{
		"title":   title,
		"entries": rows,
	})
	if err != nil {
		return s.renderFailure(fc, err)
	}
	return fc.HTML(http.StatusOK, page)
}

func (s *Server) handleSubmit(c echo.Context) error {
	fc := c.(*FormContext)
	sess := fc.Session

	var req submitRequest
	if err := fc.Bind(&req); err != nil {
		return writeError(fc, ErrBadPayload)
	}
	if req.Values == nil {
		return writeError(fc, ErrBadPayload)
	}

	startedAt := sess.StartedAt()
	if req.RenderedAt != "" {
		if parsed, err := time.Parse(time.RFC3339, req.RenderedAt); err == nil {
			startedAt = parsed
		}
	}

	record, err := s.pipeline.Submit(fc.Request().Context(), sess.Schema(), req.Values,
		sess.Identity(), sess.Profile(), startedAt)
	if err != nil {
		return writeError(fc, mapError(err))
	}
	sess.Complete()

	url, reload := sess.Redirect()
	return fc.JSON(http.StatusCreated, submitResponse{
		SubmissionID:        record.ID,
		ConfirmationMessage: sess.Schema().Settings.ConfirmationMessage,
		RedirectURL:         url,
		Reload:              reload,
	})
}

// renderFailure answers page routes with the error panel and API routes with
// the JSON error body.
func (s *Server) renderFailure(c echo.Context, err error) error {
	defined := mapError(err)
	s.log.Warn("request failed", "path", c.Request().URL.Path, "error", err)

	if c.Request().Method != http.MethodGet {
		return writeError(c, defined)
	}

	page, tmplErr := s.templates.RenderTemplate("templates/error.html", map[string]any{
		"message": defined.Err,
	})
	if tmplErr != nil {
		return writeError(c, defined)
	}
	return c.HTML(defined.StatusCode, page)
}
