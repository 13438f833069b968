package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"societyhub.org/internal/bus"
	"societyhub.org/internal/obs"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || isLocalOrigin(origin)
	},
}

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 50 * time.Second
)

// clientCommand is the inbound frame shape. Only room management is accepted
// from clients; events flow strictly server to client.
type clientCommand struct {
	Action string `json:"action"`
	Room   string `json:"room"`
}

// WebSocket upgrades the connection and relays hub events to the client.
// Authentication is taken from the token query parameter because browser
// websocket clients cannot set an Authorization header. An unauthenticated
// connection is accepted but receives only broadcast events.
func (a *API) WebSocket(w http.ResponseWriter, r *http.Request) {
	var rooms []string
	if token := r.URL.Query().Get("token"); token != "" {
		id, err := a.resolver.Resolve(r.Context(), token)
		if err != nil {
			handleDomainError(w, r, err)
			return
		}
		rooms = append(rooms, string(id.Role))
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the response.
		return
	}
	defer conn.Close()

	// Subscribe tracks the connection gauge; no extra bookkeeping here.
	sub := a.hub.Subscribe(r.Context(), rooms...)

	allowed := ""
	if len(rooms) > 0 {
		allowed = rooms[0]
	}

	go a.wsReadLoop(conn, sub, allowed)

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case ev, open := <-sub.C():
			if !open {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		}
	}
}

// wsReadLoop drains client frames, honouring join and leave commands for the
// caller's own role room only.
func (a *API) wsReadLoop(conn *websocket.Conn, sub *bus.Subscription, allowedRoom string) {
	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		var cmd clientCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				obs.Logger().Debug("websocket closed", zap.Error(err))
			}
			_ = conn.Close()
			return
		}
		if cmd.Room != allowedRoom || allowedRoom == "" {
			continue
		}
		switch cmd.Action {
		case "join-room":
			a.hub.Join(sub, cmd.Room)
		case "leave-room":
			a.hub.Leave(sub, cmd.Room)
		}
	}
}
