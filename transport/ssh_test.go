package transport

import (
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"io"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

// testSSHServer is a minimal in-process SSH server accepting password auth
// and a pty-req/shell session that echoes whatever it reads, grounded on
// damianoneill-net/v2/netconf/testserver's accept-loop/channel-handler
// shape (server config + host key + per-channel request accept/echo),
// adapted down to only what dialSSH's Shell/RequestPty path exercises.
type testSSHServer struct {
	listener net.Listener
}

func startTestSSHServer(t *testing.T, user, password string) *testSSHServer {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	signer, err := ssh.NewSignerFromKey(key)
	require.NoError(t, err)

	cfg := &ssh.ServerConfig{
		PasswordCallback: func(c ssh.ConnMetadata, pass []byte) (*ssh.Permissions, error) {
			if c.User() == user && string(pass) == password {
				return nil, nil
			}
			return nil, fmt.Errorf("password rejected for %q", c.User())
		},
	}
	cfg.AddHostKey(signer)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := &testSSHServer{listener: ln}
	go srv.acceptLoop(cfg)
	return srv
}

func (s *testSSHServer) acceptLoop(cfg *ssh.ServerConfig) {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		go s.serveConn(conn, cfg)
	}
}

func (s *testSSHServer) serveConn(conn net.Conn, cfg *ssh.ServerConfig) {
	_, chans, reqs, err := ssh.NewServerConn(conn, cfg)
	if err != nil {
		return
	}
	go ssh.DiscardRequests(reqs)

	for newCh := range chans {
		ch, requests, err := newCh.Accept()
		if err != nil {
			continue
		}
		go func() {
			for req := range requests {
				_ = req.Reply(req.Type == "pty-req" || req.Type == "shell", nil)
			}
		}()
		go func() {
			defer ch.Close()
			_, _ = io.Copy(ch, ch)
		}()
	}
}

func (s *testSSHServer) addr() string { return s.listener.Addr().String() }

func (s *testSSHServer) close() { _ = s.listener.Close() }

func validTestSSHConfig(user, password string) *ssh.ClientConfig {
	return &ssh.ClientConfig{
		User:            user,
		Auth:            []ssh.AuthMethod{ssh.Password(password)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint: gosec
	}
}

func TestDialSSHEchoesOverShell(t *testing.T) {
	srv := startTestSSHServer(t, "agent", "secret")
	defer srv.close()

	RegisterSSHConfig(srv.addr(), validTestSSHConfig("agent", "secret"))

	tr, err := Dial("ssh:" + srv.addr())
	require.NoError(t, err)
	defer tr.Close()

	_, err = tr.Send([]byte("ping\n"))
	require.NoError(t, err)

	buf, _, err := tr.Recv()
	require.NoError(t, err)
	assert.Equal(t, "ping\n", string(buf))
}

func TestDialSSHWrongPasswordFails(t *testing.T) {
	srv := startTestSSHServer(t, "agent", "secret")
	defer srv.close()

	RegisterSSHConfig(srv.addr(), validTestSSHConfig("agent", "wrong"))

	_, err := Dial("ssh:" + srv.addr())
	assert.Error(t, err)
}

func TestDialSSHDoesNotMutateRegisteredConfig(t *testing.T) {
	srv := startTestSSHServer(t, "agent", "secret")
	defer srv.close()

	cfg := validTestSSHConfig("agent", "secret")
	require.Zero(t, cfg.Timeout, "test config leaves Timeout unset so dialSSH's merge has something to fill")
	RegisterSSHConfig(srv.addr(), cfg)

	tr, err := Dial("ssh:" + srv.addr())
	require.NoError(t, err)
	defer tr.Close()

	assert.Zero(t, cfg.Timeout, "dialSSH merges onto a copy; the registered config must stay untouched")
}

func TestSSHTransportAcceptUnsupported(t *testing.T) {
	srv := startTestSSHServer(t, "agent", "secret")
	defer srv.close()

	RegisterSSHConfig(srv.addr(), validTestSSHConfig("agent", "secret"))

	tr, err := Dial("ssh:" + srv.addr())
	require.NoError(t, err)
	defer tr.Close()

	_, err = tr.Accept()
	assert.Error(t, err)
}
