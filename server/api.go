package server

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/melkeydev/logistics-admin/auth"
	"github.com/melkeydev/logistics-admin/bulk"
	"github.com/melkeydev/logistics-admin/render"
	"github.com/melkeydev/logistics-admin/screens"
	"github.com/melkeydev/logistics-admin/types"
)

// HealthCheck reports whether the backend answers a ping.
func (s *Server) HealthCheck(c echo.Context) error {
	if err := s.connector.Ping(c.Request().Context()); err != nil {
		s.logger.Warn("health check failed", "error", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status":  "unhealthy",
			"service": "logistics-admin",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "logistics-admin",
	})
}

// respond finishes a state changing request. Form posts are redirected back
// to the page with the outcome stored as a flash; API callers get the error
// or the JSON value.
func (s *Server) respond(c echo.Context, redirect string, err error, message string, value func() any) error {
	if isFormPost(c) {
		f := flash{Message: message}
		if err != nil {
			status, msg := s.describe(err)
			f.Message = ""
			// server errors are already on the component state
			if status < http.StatusInternalServerError {
				f.Error = msg
			}
		}
		s.workspace(c).setFlash(f)
		return c.Redirect(http.StatusSeeOther, redirect)
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, value())
}

type credentials struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

type loginResponse struct {
	Token   string        `json:"token"`
	Session *auth.Session `json:"session"`
}

func (s *Server) Login(c echo.Context) error {
	var req credentials
	if err := c.Bind(&req); err != nil {
		return err
	}
	token, sess, err := s.auth.Login(req.Email, req.Password)
	if err != nil {
		return err
	}
	s.setSessionCookie(c, token, sess.ExpiresAt)
	return c.JSON(http.StatusOK, loginResponse{Token: token, Session: sess})
}

// Logout revokes the token and forgets the session's screen state.
func (s *Server) Logout(c echo.Context) error {
	sess := sessionFrom(c)
	if err := s.auth.Logout(auth.TokenFromRequest(c.Request(), s.cookieName)); err != nil {
		return err
	}
	s.workspaces.drop(sess.SessionID)
	s.clearSessionCookie(c)
	s.logger.Info("signed out", "user", sess.UserID)

	if isFormPost(c) {
		return c.Redirect(http.StatusSeeOther, "/login")
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) GetSession(c echo.Context) error {
	return c.JSON(http.StatusOK, sessionFrom(c))
}

func (s *Server) ListTables(c echo.Context) error {
	tables, err := s.connector.ListTables(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tables)
}

// DescribeTable only answers for tables that discovery would list.
func (s *Server) DescribeTable(c echo.Context) error {
	ctx := c.Request().Context()
	table := c.Param("table")

	tables, err := s.connector.ListTables(ctx)
	if err != nil {
		return err
	}
	if !slices.Contains(tables, table) {
		return fmt.Errorf("%w: %s", types.ErrUnknownTable, table)
	}
	desc, err := s.connector.DescribeTable(ctx, table)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, desc)
}

// Viewer

func (s *Server) GetViewer(c echo.Context) error {
	w := s.workspace(c)
	if err := w.ensureDiscovered(c.Request().Context()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, w.viewer.State())
}

type selectRequest struct {
	Table string `json:"table" form:"table"`
}

func (s *Server) SelectTable(c echo.Context) error {
	var req selectRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	w := s.workspace(c)
	ctx := c.Request().Context()

	err := w.ensureDiscovered(ctx)
	if err == nil {
		err = withoutFetchError(w.viewer.Select(ctx, req.Table))
	}
	return s.respond(c, "/tables", err, "", func() any { return w.viewer.State() })
}

func (s *Server) RefreshViewer(c echo.Context) error {
	w := s.workspace(c)
	ctx := c.Request().Context()

	err := w.ensureDiscovered(ctx)
	if err == nil {
		err = withoutFetchError(w.viewer.Refresh(ctx))
	}
	return s.respond(c, "/tables", err, "", func() any { return w.viewer.State() })
}

var contentTypes = map[render.Format]string{
	render.FormatJSON:     echo.MIMEApplicationJSONCharsetUTF8,
	render.FormatText:     echo.MIMETextPlainCharsetUTF8,
	render.FormatHTML:     echo.MIMETextHTMLCharsetUTF8,
	render.FormatCSV:      "text/csv; charset=UTF-8",
	render.FormatMarkdown: "text/markdown; charset=UTF-8",
}

// RenderViewer writes the selected table in the format query param.
func (s *Server) RenderViewer(c echo.Context) error {
	format, err := render.ParseFormat(c.QueryParam("format"))
	if err != nil {
		return err
	}
	w := s.workspace(c)
	if err := w.ensureDiscovered(c.Request().Context()); err != nil {
		return err
	}

	st := w.viewer.State()
	rows := st.Rows
	if st.RowsTable != st.Selected {
		rows = nil
	}

	var buf bytes.Buffer
	if err := render.Write(&buf, rows, format); err != nil {
		return err
	}
	return c.Blob(http.StatusOK, contentTypes[format], buf.Bytes())
}

// Screens

func (s *Server) GetScreen(c echo.Context) error {
	k, err := screens.Lookup(c.Param("kind"))
	if err != nil {
		return err
	}
	var filter screens.Filter
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &filter); err != nil {
		return err
	}

	sc := s.workspace(c).screen(k)
	if err := sc.Load(c.Request().Context(), filter); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sc.State())
}

type statusRequest struct {
	Status string `json:"status" form:"status"`
}

// UpdateStatus changes the status of one record of a kind.
func (s *Server) UpdateStatus(c echo.Context) error {
	k, err := screens.Lookup(c.Param("kind"))
	if err != nil {
		return err
	}
	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	sc := s.workspace(c).screen(k)
	err = sc.UpdateStatus(c.Request().Context(), screens.ParseID(c.Param("id")), req.Status)
	st := sc.State()
	return s.respond(c, screenURL(k, st.Filter), err, st.Message, func() any { return st })
}

func screenURL(k screens.Kind, f screens.Filter) string {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.Search != "" {
		q.Set("q", f.Search)
	}
	if len(q) == 0 {
		return k.Path
	}
	return k.Path + "?" + q.Encode()
}

// Bulk delivery form

func (s *Server) GetBulk(c echo.Context) error {
	return c.JSON(http.StatusOK, s.workspace(c).form.State())
}

// applyDraftFields copies location_N, description_N and vendor_id_N from a
// posted form into the drafts, so edits survive add and remove clicks.
func applyDraftFields(c echo.Context, form *bulk.Form) error {
	if !isFormPost(c) {
		return nil
	}
	values, err := c.FormParams()
	if err != nil {
		return err
	}
	for i := range form.State().Drafts {
		for _, field := range []string{"location", "description", "vendor_id"} {
			key := field + "_" + strconv.Itoa(i)
			if !values.Has(key) {
				continue
			}
			if err := form.Update(i, field, values.Get(key)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Server) AppendDraft(c echo.Context) error {
	form := s.workspace(c).form
	err := applyDraftFields(c, form)
	if err == nil {
		form.Append()
	}
	return s.respond(c, "/bulk-delivery", err, "", func() any { return form.State() })
}

type draftRequest struct {
	Field string `json:"field" form:"field"`
	Value string `json:"value" form:"value"`
}

func (s *Server) UpdateDraft(c echo.Context) error {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return fmt.Errorf("%w: index %q", bulk.ErrInvalidDraft, c.Param("index"))
	}
	var req draftRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	form := s.workspace(c).form
	err = form.Update(index, req.Field, req.Value)
	return s.respond(c, "/bulk-delivery", err, "", func() any { return form.State() })
}

func (s *Server) RemoveDraft(c echo.Context) error {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return fmt.Errorf("%w: index %q", bulk.ErrInvalidDraft, c.Param("index"))
	}
	form := s.workspace(c).form
	err = applyDraftFields(c, form)
	if err == nil {
		err = form.Remove(index)
	}
	return s.respond(c, "/bulk-delivery", err, "", func() any { return form.State() })
}

type submitResponse struct {
	Created int64      `json:"created"`
	State   bulk.State `json:"state"`
}

// SubmitBulk inserts every draft for the signed-in user.
func (s *Server) SubmitBulk(c echo.Context) error {
	form := s.workspace(c).form
	err := applyDraftFields(c, form)

	var n int64
	if err == nil {
		n, err = form.Submit(c.Request().Context(), sessionFrom(c).UserID)
	}
	return s.respond(c, "/bulk-delivery", err, "", func() any {
		return submitResponse{Created: n, State: form.State()}
	})
}

func (s *Server) ActiveVendors(c echo.Context) error {
	vendors, err := bulk.ActiveVendors(c.Request().Context(), s.connector)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, vendors)
}

func (s *Server) Summary(c echo.Context) error {
	return c.JSON(http.StatusOK, screens.Dashboard(c.Request().Context(), s.connector, s.rowLimit))
}
