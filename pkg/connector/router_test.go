package connector

import (
	"context"
	"strings"
	"testing"

	"github.com/eyeballnet/eyeball/pkg/dialerr"
)

func TestRouter_DispatchesByScheme(t *testing.T) {
	tcp := &fakeConnector{conn: fakeTCPConn()}
	unix := &fakeConnector{conn: fakeTCPConn()}

	r := NewRouter()
	r.Register("tcp", tcp)
	r.Register("unix", unix)

	conn, err := r.Connect(context.Background(), "tcp://example.com:443")
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	conn.Close()

	if len(tcp.calledWith) != 1 {
		t.Fatalf("expected tcp connector called once, got %d", len(tcp.calledWith))
	}
	if len(unix.calledWith) != 0 {
		t.Fatalf("expected unix connector not called, got %d", len(unix.calledWith))
	}
}

func TestRouter_DefaultScheme(t *testing.T) {
	tcp := &fakeConnector{conn: fakeTCPConn()}
	r := NewRouter()
	r.Register("tcp", tcp)

	conn, err := r.Connect(context.Background(), "example.com:443")
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	conn.Close()

	if len(tcp.calledWith) != 1 {
		t.Fatalf("expected default-scheme dispatch to tcp, got %d calls", len(tcp.calledWith))
	}
}

func TestRouter_UnregisteredScheme(t *testing.T) {
	r := NewRouter()
	r.Register("tcp", &fakeConnector{conn: fakeTCPConn()})

	_, err := r.Connect(context.Background(), "ws://example.com:80")
	if err == nil {
		t.Fatal("Connect() expected error for unregistered scheme, got nil")
	}
	if dialerr.CodeOf(err) != dialerr.EINVAL {
		t.Errorf("CodeOf(err) = %d, want EINVAL", dialerr.CodeOf(err))
	}
}

func TestRouter_DisabledScheme(t *testing.T) {
	r := NewRouter()
	r.Register("tcp", nil)

	_, err := r.Connect(context.Background(), "tcp://example.com:443")
	if err == nil {
		t.Fatal("Connect() expected error for disabled scheme, got nil")
	}
	if dialerr.CodeOf(err) != dialerr.EINVAL {
		t.Errorf("CodeOf(err) = %d, want EINVAL", dialerr.CodeOf(err))
	}
	if !strings.Contains(err.Error(), "EINVAL") {
		t.Errorf("error message = %q, want EINVAL mentioned", err.Error())
	}
}

func TestRouter_InvalidURI(t *testing.T) {
	r := NewRouter()
	r.Register("tcp", &fakeConnector{conn: fakeTCPConn()})

	_, err := r.Connect(context.Background(), "tcp://:443")
	if err == nil {
		t.Fatal("Connect() expected error for invalid URI, got nil")
	}
}

func TestRouter_WithTimeout_PropagatesToDispatched(t *testing.T) {
	blocking := blockingConnector{}
	r := NewRouter().WithTimeout(1)
	r.Register("tcp", blocking)

	_, err := r.Connect(context.Background(), "tcp://example.com:443")
	if err == nil {
		t.Fatal("Connect() expected timeout error, got nil")
	}
	if dialerr.CodeOf(err) != dialerr.ECodeTimeout {
		t.Errorf("CodeOf(err) = %d, want ECodeTimeout", dialerr.CodeOf(err))
	}
}
