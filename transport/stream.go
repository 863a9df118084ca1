package transport

import (
	"net"

	"github.com/pkg/errors"
)

const maxStreamReadSize = 65536

// streamTransport wraps a net.Conn (TCP or Unix stream socket) as a
// Transport; listenerTransport wraps the corresponding net.Listener so
// Accept can hand back a connected streamTransport per inbound peer.
type streamTransport struct {
	conn net.Conn
}

type listenerTransport struct {
	ln net.Listener
}

func dialTCP(target string) (Transport, error) {
	conn, err := net.Dial("tcp", target)
	if err != nil {
		return nil, errors.Wrap(err, "transport: dial tcp")
	}
	return &streamTransport{conn: conn}, nil
}

func listenTCP(target string) (Transport, error) {
	ln, err := net.Listen("tcp", target)
	if err != nil {
		return nil, errors.Wrap(err, "transport: listen tcp")
	}
	return &listenerTransport{ln: ln}, nil
}

func dialUnix(target string) (Transport, error) {
	conn, err := net.Dial("unix", target)
	if err != nil {
		return nil, errors.Wrap(err, "transport: dial unix")
	}
	return &streamTransport{conn: conn}, nil
}

func listenUnix(target string) (Transport, error) {
	ln, err := net.Listen("unix", target)
	if err != nil {
		return nil, errors.Wrap(err, "transport: listen unix")
	}
	return &listenerTransport{ln: ln}, nil
}

func (t *streamTransport) Send(buf []byte) (int, error) { return t.conn.Write(buf) }

func (t *streamTransport) Recv() ([]byte, net.Addr, error) {
	buf := make([]byte, maxStreamReadSize)
	n, err := t.conn.Read(buf)
	if err != nil {
		return nil, nil, err
	}
	return buf[:n], t.conn.RemoteAddr(), nil
}

func (t *streamTransport) Accept() (Transport, error) {
	return nil, errors.New("transport: stream transport does not support accept, listen first")
}

func (t *streamTransport) Close() error { return t.conn.Close() }

func (t *streamTransport) Copy() Transport {
	dup := *t
	return &dup
}

func (l *listenerTransport) Send([]byte) (int, error) {
	return 0, errors.New("transport: listening transport cannot send, accept a peer first")
}

func (l *listenerTransport) Recv() ([]byte, net.Addr, error) {
	return nil, nil, errors.New("transport: listening transport cannot recv, accept a peer first")
}

func (l *listenerTransport) Accept() (Transport, error) {
	conn, err := l.ln.Accept()
	if err != nil {
		return nil, err
	}
	return &streamTransport{conn: conn}, nil
}

func (l *listenerTransport) Close() error { return l.ln.Close() }

func (l *listenerTransport) Copy() Transport {
	dup := *l
	return &dup
}
