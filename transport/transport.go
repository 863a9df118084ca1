// Package transport implements the agent core's transport plug-in
// contract (spec.md §6): send/recv/accept/close/copy over a domain
// addressed by a textual prefix (udp:, tcp:, unix:, alias:, ssh:),
// generalizing damianoneill-net/v2/snmp/serverfactory.go's address
// parsing and listener setup from "one UDP trap receiver" into a
// multi-domain dial/listen surface, enriched by the teacher's SSH
// dial/session pattern (v2/cli/transport.go, v2/ssh_cli/sessionfactory.go)
// adapted into one concrete ssh: Transport.
package transport

import (
	"net"

	"github.com/pkg/errors"
)

// Transport is the core's narrow view of any concrete medium: send a
// buffer, receive one, accept an inbound peer on a listening transport,
// close, and clone into an independent handle over the same resource
// descriptor (spec.md §6 "{send(buf,len), recv() → (buf,len), accept(),
// close(), copy()}").
type Transport interface {
	Send(buf []byte) (int, error)
	Recv() ([]byte, net.Addr, error)
	Accept() (Transport, error)
	Close() error
	Copy() Transport
}

// ErrUnknownDomain is returned by Dial/Listen when address has no
// recognised domain prefix.
var ErrUnknownDomain = errors.New("transport: unknown domain")

// aliases maps a configured alias name to the address it stands for,
// resolved before the underlying domain is dialed/listened on --
// spec.md §6's alias: domain.
var aliases = map[string]string{}

// RegisterAlias binds name to target, so a later Dial("alias:name") or
// Listen("alias:name") resolves to target's own domain.
func RegisterAlias(name, target string) {
	aliases[name] = target
}

// splitDomain separates a domain-prefixed address ("udp:127.0.0.1:162")
// into its domain and remaining target.
func splitDomain(address string) (domain, target string, err error) {
	for i := 0; i < len(address); i++ {
		if address[i] == ':' {
			return address[:i], address[i+1:], nil
		}
	}
	return "", "", errors.Errorf("transport: address %q has no domain prefix", address)
}

// Dial connects to address, resolving alias: indirection first.
func Dial(address string) (Transport, error) {
	domain, target, err := splitDomain(address)
	if err != nil {
		return nil, err
	}

	switch domain {
	case "alias":
		resolved, ok := aliases[target]
		if !ok {
			return nil, errors.Errorf("transport: unknown alias %q", target)
		}
		return Dial(resolved)
	case "udp":
		return dialUDP(target)
	case "tcp":
		return dialTCP(target)
	case "unix":
		return dialUnix(target)
	case "ssh":
		return dialSSH(target)
	}
	return nil, errors.Wrapf(ErrUnknownDomain, "%q", domain)
}

// Listen binds/listens on address for inbound connections, resolving
// alias: indirection first. ssh: has no listen side in this agent core
// (it is a sub-agent's outbound tunnel only).
func Listen(address string) (Transport, error) {
	domain, target, err := splitDomain(address)
	if err != nil {
		return nil, err
	}

	switch domain {
	case "alias":
		resolved, ok := aliases[target]
		if !ok {
			return nil, errors.Errorf("transport: unknown alias %q", target)
		}
		return Listen(resolved)
	case "udp":
		return listenUDP(target)
	case "tcp":
		return listenTCP(target)
	case "unix":
		return listenUnix(target)
	}
	return nil, errors.Wrapf(ErrUnknownDomain, "%q", domain)
}
