package tcp

import (
	"context"
	"net"
	"strconv"
	"strings"
	"testing"
)

func TestDialer_Dial(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping network test in short mode")
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to create test listener: %v", err)
	}
	defer listener.Close()

	go func() {
		conn, _ := listener.Accept()
		if conn != nil {
			conn.Close()
		}
	}()

	addr := listener.Addr().(*net.TCPAddr)
	rawURI := "tcp://127.0.0.1:" + strconv.Itoa(addr.Port) + "?hostname=example.com"

	d := NewDialer()
	conn, err := d.Dial(context.Background(), rawURI)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	if conn.Hostname() != "example.com" {
		t.Errorf("Hostname() = %q, want example.com", conn.Hostname())
	}
	if conn.IsUnix() {
		t.Error("IsUnix() = true, want false")
	}
}

func TestDialer_Dial_Failure(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping network test in short mode")
	}

	d := NewDialer()
	_, err := d.Dial(context.Background(), "tcp://127.0.0.1:1")
	if err == nil {
		t.Error("Dial() expected error for non-existent server, got nil")
	}
}

func TestDialer_Dial_RejectsHostname(t *testing.T) {
	d := NewDialer()
	_, err := d.Dial(context.Background(), "tcp://example.com:80")
	if err == nil {
		t.Error("Dial() expected error for hostname input, got nil")
	}
}

func TestDialer_Dial_Cancel(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping network test in short mode")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := NewDialer()
	_, err := d.Dial(ctx, "tcp://10.255.255.1:80")
	if err == nil {
		t.Fatal("Dial() expected error for cancelled context, got nil")
	}
	if !strings.Contains(err.Error(), "cancelled") {
		t.Errorf("Dial() error = %v, want cancellation message", err)
	}
}
