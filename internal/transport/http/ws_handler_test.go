package http

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"flag-quiz-service/internal/app"
	"flag-quiz-service/internal/domain"
	"flag-quiz-service/internal/infra/memory"
)

func TestWebSocketAnswerFlow(t *testing.T) {
	service := newTestService(app.Settings{})
	server := httptest.NewServer(NewRouter(service, nil))
	defer server.Close()

	conn := dial(t, server, "/ws")
	defer conn.Close()

	// Expect joined event first with a fresh game.
	joined := readNext(t, conn, "joined")
	if joined.Payload.GameID == "" || joined.Payload.State != domain.StateAwaitingAnswer {
		t.Fatalf("unexpected joined payload %+v", joined.Payload)
	}

	choice := correctChoice(joined.Payload.Round)
	if err := conn.WriteJSON(map[string]any{"type": "answer", "payload": map[string]any{"choice": choice}}); err != nil {
		t.Fatalf("write answer: %v", err)
	}

	// Expect result and a state push in either order.
	resultSeen := false
	stateSeen := false
	for i := 0; i < 2; i++ {
		msg := readNext(t, conn, "")
		switch msg.Type {
		case "result":
			resultSeen = true
		case "state":
			stateSeen = msg.Payload.State == domain.StateAwaitingAcknowledgment
		}
	}
	if !resultSeen || !stateSeen {
		t.Fatalf("expected result and pending state, got result=%v state=%v", resultSeen, stateSeen)
	}

	if err := conn.WriteJSON(map[string]any{"type": "continue"}); err != nil {
		t.Fatalf("write continue: %v", err)
	}
	next := readNext(t, conn, "state")
	if next.Payload.Round.Number != 2 || next.Payload.Pending != nil {
		t.Fatalf("expected round 2, got %+v", next.Payload)
	}
}

func TestWebSocketJoinsExistingGame(t *testing.T) {
	service := newTestService(app.Settings{})
	snap, err := service.NewGame(context.Background(), "")
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	server := httptest.NewServer(NewRouter(service, nil))
	defer server.Close()

	conn := dial(t, server, "/ws?gameId="+snap.GameID)
	defer conn.Close()

	joined := readNext(t, conn, "joined")
	if joined.Payload.GameID != snap.GameID {
		t.Fatalf("expected game %s, got %s", snap.GameID, joined.Payload.GameID)
	}

	if err := conn.WriteJSON(map[string]any{"type": "continue"}); err != nil {
		t.Fatalf("write continue: %v", err)
	}
	readNext(t, conn, "error")
}

func TestWebSocketUnknownGame(t *testing.T) {
	server := httptest.NewServer(NewRouter(newTestService(app.Settings{}), nil))
	defer server.Close()

	conn := dial(t, server, "/ws?gameId=missing")
	defer conn.Close()

	readNext(t, conn, "error")
}

func TestWebSocketEndsOwnGameOnDisconnect(t *testing.T) {
	service, store := newTestServiceWithStore(app.Settings{})
	existing, err := service.NewGame(context.Background(), "")
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	server := httptest.NewServer(NewRouter(service, nil))
	defer server.Close()

	for i := 0; i < 5; i++ {
		conn := dial(t, server, "/ws")
		readNext(t, conn, "joined")
		conn.Close()
	}
	conn := dial(t, server, "/ws?gameId="+existing.GameID)
	readNext(t, conn, "joined")
	conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	for store.Len() != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("expected only the joined game to remain, got %d games", store.Len())
		}
		time.Sleep(10 * time.Millisecond)
	}
	if _, err := service.Snapshot(context.Background(), existing.GameID); err != nil {
		t.Fatalf("expected joined game kept, got %v", err)
	}
}

type wsMessage struct {
	Type    string          `json:"type"`
	Payload domain.Snapshot `json:"payload"`
}

func dial(t *testing.T, server *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + path
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

// readNext decodes the next message; payloads that are not snapshots leave zero fields.
func readNext(t *testing.T, conn *websocket.Conn, expect string) wsMessage {
	t.Helper()
	var msg wsMessage
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg
}

func newTestService(settings app.Settings) *app.GameService {
	service, _ := newTestServiceWithStore(settings)
	return service
}

func newTestServiceWithStore(settings app.Settings) (*app.GameService, *memory.SessionStore) {
	store := memory.NewSessionStore(time.Hour)
	catalogs := memory.NewCatalogRepository(memory.NewDefaultCatalogLoader(), time.Minute)
	return app.NewGameService(store, catalogs, settings, nil), store
}

func correctChoice(r domain.Round) int {
	for i, c := range r.Choices {
		if c.ID == r.PromptCountryID {
			return i
		}
	}
	return -1
}
