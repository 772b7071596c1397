package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tecu23/room-server/pkg/events"
	"github.com/tecu23/room-server/pkg/manager"
	"github.com/tecu23/room-server/pkg/messages"
	"github.com/tecu23/room-server/pkg/repository"
	"github.com/tecu23/room-server/pkg/rules"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// envelope mirrors OutboundMessage with a raw payload so each test can
// decode what it expects.
type envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := zap.NewNop()
	publisher := events.NewPublisher()
	coordinator := manager.NewManager(
		repository.NewInMemoryRepository(logger),
		rules.NewAdapter(),
		clockwork.NewRealClock(),
		10,
		logger,
		publisher,
	)

	hub := NewHub(coordinator, logger)
	go hub.Run()
	t.Cleanup(hub.Shutdown)

	upgrader := websocket.Upgrader{
		CheckOrigin: func(*http.Request) bool { return true },
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		conn := NewConnection(ws, hub, publisher, logger)
		hub.Register(conn)

		go conn.WritePump()
		go conn.ReadPump()
	}))
	t.Cleanup(srv.Close)

	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })

	return ws
}

func send(t *testing.T, ws *websocket.Conn, event string, payload interface{}) {
	t.Helper()

	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	data, err := json.Marshal(messages.InboundMessage{Event: event, Payload: raw})
	require.NoError(t, err)

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, data))
}

func read(t *testing.T, ws *websocket.Conn) envelope {
	t.Helper()

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))

	_, data, err := ws.ReadMessage()
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.Unmarshal(data, &env))

	return env
}

func readString(t *testing.T, raw json.RawMessage) string {
	t.Helper()

	var s string
	require.NoError(t, json.Unmarshal(raw, &s))

	return s
}

func TestJoinAndPlayOverWebSocket(t *testing.T) {
	srv := newTestServer(t)

	a := dial(t, srv)
	send(t, a, messages.EventJoinGame, messages.JoinGamePayload{RoomID: "r1", TimeControl: 5})

	env := read(t, a)
	require.Equal(t, messages.EventPlayerColor, env.Event)
	assert.Equal(t, "w", readString(t, env.Payload))

	env = read(t, a)
	require.Equal(t, messages.EventGameInit, env.Event)

	var state messages.GameStatePayload
	require.NoError(t, json.Unmarshal(env.Payload, &state))
	assert.Equal(t, startFEN, state.FEN)
	assert.Equal(t, int64(300000), state.Timers.White)
	assert.Equal(t, int64(300000), state.Timers.Black)

	b := dial(t, srv)
	send(t, b, messages.EventJoinGame, messages.JoinGamePayload{RoomID: "r1", TimeControl: 5})

	env = read(t, b)
	require.Equal(t, messages.EventPlayerColor, env.Event)
	assert.Equal(t, "b", readString(t, env.Payload))

	for _, ws := range []*websocket.Conn{a, b} {
		env = read(t, ws)
		require.Equal(t, messages.EventGameStart, env.Event)
		require.NoError(t, json.Unmarshal(env.Payload, &state))
		assert.Equal(t, startFEN, state.FEN)
		assert.Equal(t, int64(300000), state.Timers.White)
		assert.Equal(t, int64(300000), state.Timers.Black)
	}

	send(t, a, messages.EventMakeMove, messages.MakeMovePayload{
		RoomID: "r1",
		Move:   rules.Move{From: "e2", To: "e4"},
	})

	for _, ws := range []*websocket.Conn{a, b} {
		env = read(t, ws)
		require.Equal(t, messages.EventMoveMade, env.Event)

		var made messages.MoveMadePayload
		require.NoError(t, json.Unmarshal(env.Payload, &made))
		assert.Equal(t, "e2", made.Move.From)
		assert.Equal(t, "e4", made.Move.To)
		assert.Contains(t, made.FEN, " b ")
		assert.InDelta(t, 300000, made.Timers.White, 5000)
		assert.Equal(t, int64(300000), made.Timers.Black)
	}
}

func TestThirdJoinGetsRoomFullErrorOnly(t *testing.T) {
	srv := newTestServer(t)

	a := dial(t, srv)
	send(t, a, messages.EventJoinGame, messages.JoinGamePayload{RoomID: "r1", TimeControl: 5})
	read(t, a) // playerColor
	read(t, a) // gameInit

	b := dial(t, srv)
	send(t, b, messages.EventJoinGame, messages.JoinGamePayload{RoomID: "r1", TimeControl: 5})
	read(t, b) // playerColor
	read(t, b) // gameStart
	read(t, a) // gameStart

	c := dial(t, srv)
	send(t, c, messages.EventJoinGame, messages.JoinGamePayload{RoomID: "r1", TimeControl: 5})

	env := read(t, c)
	require.Equal(t, messages.EventError, env.Event)
	assert.Equal(t, "Room is full", readString(t, env.Payload))
}

func TestRejectedMovesProduceNoBroadcast(t *testing.T) {
	srv := newTestServer(t)

	a := dial(t, srv)
	send(t, a, messages.EventJoinGame, messages.JoinGamePayload{RoomID: "r1", TimeControl: 5})
	read(t, a) // playerColor
	read(t, a) // gameInit

	b := dial(t, srv)
	send(t, b, messages.EventJoinGame, messages.JoinGamePayload{RoomID: "r1", TimeControl: 5})
	read(t, b) // playerColor
	read(t, b) // gameStart
	read(t, a) // gameStart

	send(t, a, messages.EventMakeMove, messages.MakeMovePayload{
		RoomID: "r1",
		Move:   rules.Move{From: "e2", To: "e4"},
	})
	read(t, a) // moveMade
	read(t, b) // moveMade

	// Black to move; black pushing a white pawn is dropped silently.
	send(t, b, messages.EventMakeMove, messages.MakeMovePayload{
		RoomID: "r1",
		Move:   rules.Move{From: "d2", To: "d4"},
	})

	// The next echo black receives is its own legal reply, with nothing
	// in between.
	send(t, b, messages.EventMakeMove, messages.MakeMovePayload{
		RoomID: "r1",
		Move:   rules.Move{From: "e7", To: "e5"},
	})

	env := read(t, b)
	require.Equal(t, messages.EventMoveMade, env.Event)

	var made messages.MoveMadePayload
	require.NoError(t, json.Unmarshal(env.Payload, &made))
	assert.Equal(t, "e7", made.Move.From)
	assert.Equal(t, "e5", made.Move.To)
}

func TestUnknownEventIsAnswered(t *testing.T) {
	srv := newTestServer(t)

	a := dial(t, srv)
	send(t, a, "shout", map[string]string{"at": "the void"})

	env := read(t, a)
	require.Equal(t, messages.EventError, env.Event)
	assert.Equal(t, "Unknown message type", readString(t, env.Payload))
}

func TestMoveAgainstUnknownRoomIsSilentlyIgnored(t *testing.T) {
	srv := newTestServer(t)

	a := dial(t, srv)
	send(t, a, messages.EventMakeMove, messages.MakeMovePayload{
		RoomID: "ghost",
		Move:   rules.Move{From: "e2", To: "e4"},
	})

	// A follow-up join still works and is the first thing echoed back.
	send(t, a, messages.EventJoinGame, messages.JoinGamePayload{RoomID: "r1", TimeControl: 5})

	env := read(t, a)
	require.Equal(t, messages.EventPlayerColor, env.Event)
	assert.Equal(t, "w", readString(t, env.Payload))
}
