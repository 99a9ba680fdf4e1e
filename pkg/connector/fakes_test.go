package connector

import (
	"context"
	"net"

	"github.com/eyeballnet/eyeball/pkg/endpoint"
)

// fakeConnector is a canned Connector for composing C6/C7/C8 layers in
// isolation, independent of any real transport dial.
type fakeConnector struct {
	conn *endpoint.Conn
	err  error

	calledWith []string
}

func (f *fakeConnector) Connect(ctx context.Context, rawURI string) (*endpoint.Conn, error) {
	f.calledWith = append(f.calledWith, rawURI)
	if f.err != nil {
		return nil, f.err
	}
	return f.conn, nil
}

// blockingConnector never returns until ctx is cancelled, for exercising C8's
// timeout race.
type blockingConnector struct{}

func (blockingConnector) Connect(ctx context.Context, rawURI string) (*endpoint.Conn, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func fakeTCPConn() *endpoint.Conn {
	client, server := net.Pipe()
	go server.Close()
	return endpoint.New(client, endpoint.TCPEndpoint("1.2.3.4", 443), endpoint.TCPEndpoint("5.6.7.8", 0), false, "")
}
