package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/coder/websocket"
)

func TestDialer_Dial_PlainWS(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{Subprotocols: []string{"bin"}})
		if err != nil {
			t.Errorf("websocket.Accept: %v", err)
			return
		}
		c.Close(websocket.StatusNormalClosure, "")
	}))
	defer srv.Close()

	addr := srv.Listener.Addr().String()
	d := NewDialer(false)

	conn, err := d.Dial(context.Background(), "ws://"+addr)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	if conn.IsEncrypted() {
		t.Fatal("plain ws connection should not report encrypted")
	}
}

func TestDialer_Dial_InvalidURI(t *testing.T) {
	d := NewDialer(false)
	if _, err := d.Dial(context.Background(), "://not a uri"); err == nil {
		t.Fatal("expected parse error")
	}
}
