package connector

import (
	"context"
	"testing"
	"time"

	"github.com/eyeballnet/eyeball/pkg/dialerr"
)

func TestNewTimeoutConnector_ZeroDisablesWrapper(t *testing.T) {
	inner := &fakeConnector{conn: fakeTCPConn()}
	c := NewTimeoutConnector(inner, 0)

	if c != inner {
		t.Fatal("NewTimeoutConnector(0) expected to return inner unchanged")
	}
}

func TestTimeoutConnector_DeadlineExceeded(t *testing.T) {
	c := NewTimeoutConnector(blockingConnector{}, time.Nanosecond)

	_, err := c.Connect(context.Background(), "tcp://example.com:443")
	if err == nil {
		t.Fatal("Connect() expected a timeout error, got nil")
	}
	if dialerr.CodeOf(err) != dialerr.ECodeTimeout {
		t.Errorf("CodeOf(err) = %d, want ECodeTimeout", dialerr.CodeOf(err))
	}
}

func TestTimeoutConnector_SucceedsWithinDeadline(t *testing.T) {
	inner := &fakeConnector{conn: fakeTCPConn()}
	c := NewTimeoutConnector(inner, time.Hour)

	conn, err := c.Connect(context.Background(), "tcp://example.com:443")
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	conn.Close()
}
