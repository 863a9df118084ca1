package transport

import (
	"net"

	"github.com/pkg/errors"
)

const maxDatagramSize = 65536

// packetTransport wraps a UDP net.PacketConn as a Transport, grounded on
// damianoneill-net/v2/snmp/server.go's readMessage/writeMessage
// (ReadFrom/WriteTo over a single net.PacketConn) generalized to also
// dial, not just listen.
type packetTransport struct {
	conn    net.PacketConn
	peer    net.Addr // the dialed address, or the source of the last Recv; where Send writes
}

func dialUDP(target string) (Transport, error) {
	addr, err := net.ResolveUDPAddr("udp", target)
	if err != nil {
		return nil, errors.Wrap(err, "transport: resolve udp address")
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, errors.Wrap(err, "transport: dial udp")
	}
	return &packetTransport{conn: conn, peer: addr}, nil
}

func listenUDP(target string) (Transport, error) {
	addr, err := net.ResolveUDPAddr("udp", target)
	if err != nil {
		return nil, errors.Wrap(err, "transport: resolve udp address")
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, errors.Wrap(err, "transport: listen udp")
	}
	return &packetTransport{conn: conn}, nil
}

func (t *packetTransport) Send(buf []byte) (int, error) {
	if udp, ok := t.conn.(*net.UDPConn); ok && t.peer != nil {
		if udp.RemoteAddr() != nil {
			return udp.Write(buf)
		}
		return udp.WriteTo(buf, t.peer)
	}
	return 0, errors.New("transport: no peer address to send to")
}

func (t *packetTransport) Recv() ([]byte, net.Addr, error) {
	buf := make([]byte, maxDatagramSize)
	n, addr, err := t.conn.ReadFrom(buf)
	if err != nil {
		return nil, nil, err
	}
	t.peer = addr
	return buf[:n], addr, nil
}

// Accept has no meaning for a connectionless packet transport: every
// received datagram already carries its own source address via Recv.
func (t *packetTransport) Accept() (Transport, error) {
	return nil, errors.New("transport: packet transport does not support accept")
}

func (t *packetTransport) Close() error { return t.conn.Close() }

func (t *packetTransport) Copy() Transport {
	dup := *t
	return &dup
}
