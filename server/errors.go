package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/melkeydev/logistics-admin/bulk"
	"github.com/melkeydev/logistics-admin/render"
	"github.com/melkeydev/logistics-admin/screens"
	"github.com/melkeydev/logistics-admin/types"
	"github.com/melkeydev/logistics-admin/web"
)

type HTTPErrorInfo struct {
	Status  int
	Message string
}

type ErrorMapping struct {
	Error   error
	Status  int
	Message string
}

// ErrorMapper maps domain errors to HTTP status codes with errors.Is.
type ErrorMapper struct {
	mappings       []ErrorMapping
	defaultStatus  int
	defaultMessage string
}

func NewErrorMapper() *ErrorMapper {
	return &ErrorMapper{
		defaultStatus:  http.StatusInternalServerError,
		defaultMessage: "internal server error",
	}
}

func (m *ErrorMapper) WithMapping(err error, status int, message string) *ErrorMapper {
	m.mappings = append(m.mappings, ErrorMapping{Error: err, Status: status, Message: message})
	return m
}

func (m *ErrorMapper) Map(err error) HTTPErrorInfo {
	if err == nil {
		return HTTPErrorInfo{Status: http.StatusOK}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return HTTPErrorInfo{Status: http.StatusGatewayTimeout, Message: "request timeout"}
	}
	if errors.Is(err, context.Canceled) {
		return HTTPErrorInfo{Status: http.StatusServiceUnavailable, Message: "request cancelled"}
	}
	for _, mapping := range m.mappings {
		if errors.Is(err, mapping.Error) {
			return HTTPErrorInfo{Status: mapping.Status, Message: mapping.Message}
		}
	}
	return HTTPErrorInfo{Status: m.defaultStatus, Message: m.defaultMessage}
}

func NewDomainErrorMapper() *ErrorMapper {
	return NewErrorMapper().
		WithMapping(types.ErrUnauthorized, http.StatusUnauthorized, "unauthorized").
		WithMapping(types.ErrUnknownTable, http.StatusNotFound, "unknown table").
		WithMapping(screens.ErrUnknownKind, http.StatusNotFound, "unknown screen").
		WithMapping(types.ErrInvalidIdentifier, http.StatusBadRequest, "invalid identifier").
		WithMapping(screens.ErrInvalidStatus, http.StatusBadRequest, "invalid status").
		WithMapping(bulk.ErrInvalidDraft, http.StatusBadRequest, "invalid delivery draft").
		WithMapping(render.ErrUnsupportedFormat, http.StatusBadRequest, "unsupported format").
		WithMapping(types.ErrNotFound, http.StatusConflict, "record changed, list reloaded").
		WithMapping(bulk.ErrSubmitting, http.StatusConflict, "submission in progress")
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleError is echo's HTTPErrorHandler. Client errors carry their full
// message; server errors only the generic one.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, message := s.describe(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.Path(), "error", err)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	if !strings.HasPrefix(c.Request().URL.Path, "/api/") && acceptsHTML(c) {
		_ = renderView(c, web.ErrorPage(web.Page{Title: http.StatusText(status), Session: sessionFrom(c), Nav: navigation}), status)
		return
	}
	_ = c.JSON(status, errorResponse{Error: message})
}

func (s *Server) describe(err error) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprint(he.Message)
	}
	info := s.errors.Map(err)
	if info.Status < http.StatusInternalServerError {
		return info.Status, err.Error()
	}
	return info.Status, info.Message
}

func acceptsHTML(c echo.Context) bool {
	return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMETextHTML)
}

func isFormPost(c echo.Context) bool {
	ct := c.Request().Header.Get(echo.HeaderContentType)
	return strings.HasPrefix(ct, echo.MIMEApplicationForm) || strings.HasPrefix(ct, echo.MIMEMultipartForm)
}
