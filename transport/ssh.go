package transport

import (
	"io"
	"net"
	"time"

	"github.com/imdario/mergo"
	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh"
)

// sshConfigs maps a dial target to the client config a caller has
// registered for it via RegisterSSHConfig -- dialSSH only receives the
// textual target, so the config travels out of band the same way a
// config/ token would supply it at agent startup.
var sshConfigs = map[string]*ssh.ClientConfig{}

// RegisterSSHConfig associates cfg with target, so a later
// Dial("ssh:"+target) picks it up. Used by config/ when it parses a
// defTarget token naming an ssh: domain.
func RegisterSSHConfig(target string, cfg *ssh.ClientConfig) {
	sshConfigs[target] = cfg
}

// DefaultSSHTerminalModes matches the teacher's cli/transport.go dumb
// terminal request (echo disabled, no explicit speed).
var DefaultSSHTerminalModes = ssh.TerminalModes{ssh.ECHO: 0}

// DefaultSSHClientConfig supplies the fields a registered config is
// allowed to leave unset; dialSSH merges a target's config onto this, the
// same "merge onto defaults" pattern trace.WithDefaults uses.
var DefaultSSHClientConfig = ssh.ClientConfig{
	Timeout: 30 * time.Second,
}

// sshTransport adapts the teacher's cli/transport.go transportImpl
// (ssh.Dial + NewSession + Stdin/Stdout pipes + RequestPty + Shell) into
// a Transport: it is the agent core's one concrete ssh: domain
// implementation, used as an outbound tunnel to an AgentX master or a
// management peer that only exposes an SSH-fronted channel -- spec.md §6
// names ssh-adjacent transports without mandating their exact shape.
type sshTransport struct {
	client  *ssh.Client
	session *ssh.Session
	io.Reader
	io.WriteCloser
}

func dialSSH(target string) (Transport, error) {
	cfg, ok := sshConfigs[target]
	if !ok {
		return nil, errors.Errorf("transport: no ssh client config registered for %q", target)
	}
	resolved := *cfg
	_ = mergo.Merge(&resolved, DefaultSSHClientConfig)

	t := &sshTransport{}

	var err error
	t.client, err = ssh.Dial("tcp", target, &resolved)
	if err != nil {
		return nil, errors.Wrap(err, "transport: ssh dial failed")
	}

	t.session, err = t.client.NewSession()
	if err != nil {
		_ = t.Close()
		return nil, errors.Wrap(err, "transport: new ssh session failed")
	}

	t.Reader, _ = t.session.StdoutPipe()
	t.WriteCloser, _ = t.session.StdinPipe()

	if err := t.session.RequestPty("dumb", 80, 80, DefaultSSHTerminalModes); err != nil {
		_ = t.Close()
		return nil, errors.Wrap(err, "transport: request pty failed")
	}
	if err := t.session.Shell(); err != nil {
		_ = t.Close()
		return nil, errors.Wrap(err, "transport: shell failed")
	}

	return t, nil
}

func (t *sshTransport) Send(buf []byte) (int, error) { return t.WriteCloser.Write(buf) }

func (t *sshTransport) Recv() ([]byte, net.Addr, error) {
	buf := make([]byte, maxStreamReadSize)
	n, err := t.Reader.Read(buf)
	if err != nil {
		return nil, nil, err
	}
	return buf[:n], t.client.RemoteAddr(), nil
}

// Accept has no meaning for an outbound-only ssh: tunnel.
func (t *sshTransport) Accept() (Transport, error) {
	return nil, errors.New("transport: ssh transport does not support accept")
}

func (t *sshTransport) Close() error {
	if t.WriteCloser != nil {
		_ = t.WriteCloser.Close()
	}
	if t.session != nil {
		_ = t.session.Close()
	}
	if t.client != nil {
		_ = t.client.Close()
	}
	return nil
}

// Copy returns a second Transport handle sharing this one's underlying
// client/session -- the pipes are not independently seekable, so callers
// should treat the copy as another view of the same channel, not an
// independent connection.
func (t *sshTransport) Copy() Transport {
	dup := *t
	return &dup
}
