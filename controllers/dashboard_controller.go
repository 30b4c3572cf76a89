package controllers

import (
	"net/http"
	"strconv"
	"time"

	"tunnel-dashboard/internal/logger"
	"tunnel-dashboard/internal/models"
	"tunnel-dashboard/internal/render"
	"tunnel-dashboard/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// DashboardController serves the HTML page and its live websocket feed
type DashboardController struct {
	server *services.Server
	title  string
	ttl    time.Duration
}

func NewDashboardController(server *services.Server, ttl time.Duration) *DashboardController {
	return &DashboardController{
		server: server,
		title:  "Tunnel Dashboard",
		ttl:    ttl,
	}
}

// RegisterRoutes also installs the template set on the engine.
func (d *DashboardController) RegisterRoutes(r *gin.Engine) {
	r.SetHTMLTemplate(render.Templates())
	r.GET("/", d.Index)
	r.GET("/ws", d.WebSocket)
}

// Index renders the page with the current table.
func (d *DashboardController) Index(c *gin.Context) {
	page, err := render.Page(d.title, d.server.Store().Snapshot(), d.ttl)
	if err != nil {
		logger.Errorf("Render dashboard failed: %v", err)
		c.String(http.StatusInternalServerError, "render failed")
		return
	}
	c.HTML(http.StatusOK, "dashboard", page)
}

// wsMessage is what the page script consumes
type wsMessage struct {
	Kind         models.EventKind     `json:"kind"`
	Generation   uint64               `json:"generation,omitempty"`
	Rows         string               `json:"rows,omitempty"`
	TotalMemory  string               `json:"totalMemory,omitempty"`
	Cells        map[string]string    `json:"cells,omitempty"`
	Notification *models.Notification `json:"notification,omitempty"`
}

/**
 * Translate a view event into a page message
 * @param {models.ViewEvent} ev - Event from the table store
 * @returns {*wsMessage} Message, nil if the page has nothing to do with it
 * @returns {error} Template error
 * @description
 * - Snapshot: whole table body and total memory
 * - Health: status cell markup per tunnel id, the page drops it when its generation differs
 */
func projectEvent(ev models.ViewEvent) (*wsMessage, error) {
	switch ev.Kind {
	case models.EventSnapshot:
		rows, err := render.Rows(ev.View.Rows)
		if err != nil {
			return nil, err
		}
		return &wsMessage{
			Kind:        ev.Kind,
			Generation:  ev.Generation,
			Rows:        string(rows),
			TotalMemory: render.TotalMemory(ev.View.TotalMemoryMB),
		}, nil
	case models.EventHealth:
		cells := make(map[string]string, len(ev.Health))
		for id, state := range ev.Health {
			cells[strconv.Itoa(id)] = string(render.StatusCell(state))
		}
		return &wsMessage{
			Kind:       ev.Kind,
			Generation: ev.Generation,
			Cells:      cells,
		}, nil
	case models.EventNotification:
		return &wsMessage{Kind: ev.Kind, Notification: ev.Notification}, nil
	}
	return nil, nil
}

// WebSocket sends the current table, then every view event until either side closes.
func (d *DashboardController) WebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Errorf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	events, unsubscribe := d.server.Store().Subscribe()
	defer unsubscribe()

	view := d.server.Store().Snapshot()
	if err := d.send(conn, models.ViewEvent{Kind: models.EventSnapshot, Generation: view.Generation, View: view}); err != nil {
		return
	}

	// 读循环只用于感知客户端断开
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	logger.Debug("WebSocket client connected")
	for {
		select {
		case <-closed:
			logger.Debug("WebSocket client disconnected")
			return
		case ev, ok := <-events:
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "dashboard stopped"),
					time.Now().Add(writeWait))
				return
			}
			if err := d.send(conn, ev); err != nil {
				return
			}
		}
	}
}

func (d *DashboardController) send(conn *websocket.Conn, ev models.ViewEvent) error {
	msg, err := projectEvent(ev)
	if err != nil {
		logger.Errorf("Render %s event failed: %v", ev.Kind, err)
		return nil
	}
	if msg == nil {
		return nil
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		logger.Debugf("WebSocket write failed: %v", err)
		return err
	}
	return nil
}
