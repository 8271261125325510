package server

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/melkeydev/logistics-admin/events"
)

// the default origin check only accepts same-host browsers
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// ChangeFeed upgrades to a websocket that streams change events. Repeated
// table query params narrow the feed; none subscribes to every table.
func (s *Server) ChangeFeed(c echo.Context) error {
	if s.hub == nil {
		return echo.NewHTTPError(http.StatusNotFound, "change feed is disabled")
	}

	var tables []string
	for _, t := range c.QueryParams()["table"] {
		if t = strings.TrimSpace(t); t != "" {
			tables = append(tables, t)
		}
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return nil
	}

	sess := sessionFrom(c)
	client := events.NewClient(s.hub, conn, sess.UserID, tables, 16)
	s.hub.Attach(client)
	s.logger.Info("change feed attached", "user", sess.UserID, "tables", tables)

	go client.WritePump()
	go client.ReadPump()
	return nil
}
