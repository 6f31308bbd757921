package server

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/vstopensource/formfill/pkg/schema"
	"github.com/vstopensource/formfill/pkg/session"
	"github.com/vstopensource/formfill/pkg/submission"
	"github.com/vstopensource/formfill/pkg/validation"
)

// FormContext is the typed request context for form routes: the echo context
// plus the loaded page session.
type FormContext struct {
	echo.Context
	Session *session.Session
}

// formContextMiddleware loads the page session for the :formId route param
// and hands handlers a FormContext. Load failures short-circuit with the
// mapped API error so no handler runs against a half-built session.
func (s *Server) formContextMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess := session.New(s.store, currentIdentity(c),
			session.WithLogger(s.log), session.WithClock(s.now))
		if err := sess.Load(c.Request().Context(), c.Param("formId")); err != nil {
			return s.renderFailure(c, err)
		}
		return next(&FormContext{Context: c, Session: sess})
	}
}

// mapError folds engine errors into the defined API error taxonomy.
func mapError(err error) DefinedError {
	var defined DefinedError
	if errors.As(err, &defined) {
		return defined
	}

	var fieldErr *validation.FieldError
	switch {
	case errors.Is(err, session.ErrFormNotFound):
		return ErrFormNotFound
	case errors.Is(err, schema.ErrNotYetAvailable),
		errors.Is(err, schema.ErrExpired),
		errors.Is(err, schema.ErrInactive):
		return ErrFormNotAvailable.WithMessage("%s", schema.UserMessage(err))
	case errors.Is(err, submission.ErrAlreadySubmitted):
		return ErrAlreadySubmitted
	case errors.As(err, &fieldErr):
		return ErrValidationFailed.WithMessage("%s", fieldErr.Message)
	default:
		return ErrStoreUnavailable
	}
}

func writeError(c echo.Context, defined DefinedError) error {
	return c.JSON(defined.StatusCode, defined)
}
