package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/melkeydev/logistics-admin/auth"
	"github.com/melkeydev/logistics-admin/bulk"
	"github.com/melkeydev/logistics-admin/screens"
	"github.com/melkeydev/logistics-admin/web"
)

var navigation = func() []web.NavItem {
	items := []web.NavItem{{Href: "/", Name: "Dashboard"}}
	for _, k := range screens.Kinds {
		items = append(items, web.NavItem{Href: k.Path, Name: web.Label(k.Name)})
	}
	return append(items,
		web.NavItem{Href: "/bulk-delivery", Name: "Bulk Delivery"},
		web.NavItem{Href: "/tables", Name: "Database Viewer"},
	)
}()

func (s *Server) workspace(c echo.Context) *workspace {
	return s.workspaces.get(sessionFrom(c))
}

// newPage starts a signed-in page. A pending flash wins over component
// errors and messages set later by the caller.
func (s *Server) newPage(c echo.Context, title, active string) (web.Page, flash) {
	p := web.Page{Title: title, Active: active, Nav: navigation}
	sess := sessionFrom(c)
	if sess == nil {
		return p, flash{}
	}
	p.Session = sess
	return p, s.workspace(c).takeFlash()
}

func renderView(c echo.Context, t templ.Component, status ...int) error {
	buf := templ.GetBuffer()
	defer templ.ReleaseBuffer(buf)

	if err := t.Render(c.Request().Context(), buf); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}

	if len(status) > 0 {
		return c.HTML(status[0], buf.String())
	}
	return c.HTML(http.StatusOK, buf.String())
}

func pick(first, second string) string {
	if first != "" {
		return first
	}
	return second
}

func (s *Server) LoginView(c echo.Context) error {
	if _, err := s.auth.Validate(auth.TokenFromRequest(c.Request(), s.cookieName)); err == nil {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	return renderView(c, web.LoginPage(web.Page{Title: "Sign in"}))
}

// LoginForm handles the sign-in form and sets the session cookie.
func (s *Server) LoginForm(c echo.Context) error {
	token, sess, err := s.auth.Login(c.FormValue("email"), c.FormValue("password"))
	if err != nil {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			return err
		}
		s.logger.Warn("sign in rejected", "email", c.FormValue("email"))
		p := web.Page{Title: "Sign in", Error: "Invalid email or password"}
		return renderView(c, web.LoginPage(p), http.StatusUnauthorized)
	}
	s.setSessionCookie(c, token, sess.ExpiresAt)
	return c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) setSessionCookie(c echo.Context, token string, expires time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     s.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) DashboardView(c echo.Context) error {
	p, f := s.newPage(c, "Dashboard", "/")
	p.Error = f.Error
	p.Message = f.Message
	return renderView(c, web.DashboardPage(p, screens.Dashboard(c.Request().Context(), s.connector, s.rowLimit)))
}

// ScreenView lists the records of k using the status and q query params.
func (s *Server) ScreenView(k screens.Kind) echo.HandlerFunc {
	return func(c echo.Context) error {
		var filter screens.Filter
		if err := (&echo.DefaultBinder{}).BindQueryParams(c, &filter); err != nil {
			return err
		}

		sc := s.workspace(c).screen(k)
		p, f := s.newPage(c, k.Title, k.Path)
		if err := sc.Load(c.Request().Context(), filter); errors.Is(err, screens.ErrInvalidStatus) {
			return err
		}

		st := sc.State()
		p.Error = pick(f.Error, st.Error)
		p.Message = f.Message
		return renderView(c, web.ScreenPage(p, web.ScreenData{State: st, Grid: sc.Grid(), IDs: rowIDs(st)}))
	}
}

func rowIDs(st screens.State) []string {
	if st.Rows == nil {
		return nil
	}
	ids := make([]string, len(st.Rows.Rows))
	for i, row := range st.Rows.Rows {
		ids[i] = fmt.Sprint(row["id"])
	}
	return ids
}

func (s *Server) BulkView(c echo.Context) error {
	form := s.workspace(c).form
	p, f := s.newPage(c, "Bulk Delivery Creation", "/bulk-delivery")

	vendors, err := bulk.ActiveVendors(c.Request().Context(), s.connector)
	if err != nil {
		s.logger.Error("vendor list failed", "error", err)
		p.Error = "Failed to fetch vendors"
	}

	st := form.State()
	p.Error = pick(f.Error, pick(st.Error, p.Error))
	p.Message = pick(f.Message, st.Message)
	return renderView(c, web.BulkPage(p, web.BulkData{State: st, Vendors: vendors}))
}

func (s *Server) TablesView(c echo.Context) error {
	w := s.workspace(c)
	p, f := s.newPage(c, "Database Viewer", "/tables")

	// the failure is recorded in the viewer state
	_ = w.ensureDiscovered(c.Request().Context())

	st := w.viewer.State()
	p.Error = pick(f.Error, st.Error)
	p.Message = f.Message
	return renderView(c, web.TablesPage(p, web.TablesData{State: st, Grid: w.viewer.Grid()}))
}
