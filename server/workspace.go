package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/melkeydev/logistics-admin/auth"
	"github.com/melkeydev/logistics-admin/bulk"
	"github.com/melkeydev/logistics-admin/screens"
	"github.com/melkeydev/logistics-admin/viewer"
)

// workspace is the component state of one signed-in session.
type workspace struct {
	viewer *viewer.Viewer
	form   *bulk.Form
	open   func(k screens.Kind) *screens.Screen

	// expiresAt is written under workspaces.mu.
	expiresAt time.Time

	mu         sync.Mutex
	discovered bool
	screens    map[string]*screens.Screen
	flash      flash
}

// flash carries the outcome of a form post to the page it redirects to.
type flash struct {
	Error   string
	Message string
}

func (s *Server) newWorkspace() *workspace {
	return &workspace{
		viewer: viewer.New(s.connector, s.rowLimit, s.logger),
		form:   bulk.NewForm(s.connector, s.publisher, s.logger),
		open: func(k screens.Kind) *screens.Screen {
			return screens.NewScreen(k, s.connector, s.publisher, s.logger, s.rowLimit)
		},
		screens: make(map[string]*screens.Screen),
	}
}

func (w *workspace) screen(k screens.Kind) *screens.Screen {
	w.mu.Lock()
	defer w.mu.Unlock()

	sc, ok := w.screens[k.Name]
	if !ok {
		sc = w.open(k)
		w.screens[k.Name] = sc
	}
	return sc
}

// ensureDiscovered runs table discovery the first time the viewer is shown.
// A failed table listing is retried on the next visit. A failed fetch of the
// first table still counts as discovered; its error lives in the viewer state.
func (w *workspace) ensureDiscovered(ctx context.Context) error {
	w.mu.Lock()
	done := w.discovered
	w.mu.Unlock()
	if done {
		return nil
	}

	if err := withoutFetchError(w.viewer.Discover(ctx)); err != nil {
		return err
	}
	w.mu.Lock()
	w.discovered = true
	w.mu.Unlock()
	return nil
}

// withoutFetchError drops row fetch errors, which the viewer reports through its
// state, and passes every other error on.
func withoutFetchError(err error) error {
	var fetchErr *viewer.FetchError
	if errors.As(err, &fetchErr) {
		return nil
	}
	return err
}

func (w *workspace) setFlash(f flash) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.flash = f
}

func (w *workspace) takeFlash() flash {
	w.mu.Lock()
	defer w.mu.Unlock()
	f := w.flash
	w.flash = flash{}
	return f
}

// sweepInterval bounds how often expired sessions are looked for.
const sweepInterval = time.Minute

type workspaces struct {
	mu        sync.Mutex
	bySession map[string]*workspace
	create    func() *workspace
	now       func() time.Time
	lastSweep time.Time
}

func newWorkspaces(create func() *workspace) *workspaces {
	return &workspaces{bySession: make(map[string]*workspace), create: create, now: time.Now}
}

// get returns the workspace of sess, creating it on first use. Workspaces of
// sessions past their expiry are dropped along the way, since an expired
// token never reaches logout.
func (ws *workspaces) get(sess *auth.Session) *workspace {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	now := ws.now()
	if now.Sub(ws.lastSweep) >= sweepInterval {
		ws.sweepLocked(now)
	}

	w, ok := ws.bySession[sess.SessionID]
	if !ok {
		w = ws.create()
		ws.bySession[sess.SessionID] = w
	}
	w.expiresAt = sess.ExpiresAt
	return w
}

func (ws *workspaces) sweepLocked(now time.Time) {
	ws.lastSweep = now
	for sid, w := range ws.bySession {
		if !w.expiresAt.IsZero() && !w.expiresAt.After(now) {
			delete(ws.bySession, sid)
		}
	}
}

func (ws *workspaces) drop(sessionID string) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	delete(ws.bySession, sessionID)
}

func (ws *workspaces) len() int {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return len(ws.bySession)
}
