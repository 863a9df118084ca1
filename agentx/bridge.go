// Package agentx provides the core's interface onto an AgentX sub-agent
// bridge (spec.md §1 "specified only at their interface to the core"):
// session open/close over a transport.Transport tunnel, region
// registration forwarding into registry.Registry, and the handful of
// config/ tokens a real AgentX client reads at startup. It does not
// implement the AgentX PDU wire format -- that is a full SMIv2/AgentX
// protocol stack, explicitly out of scope.
package agentx

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/imdario/mergo"
	"github.com/pkg/errors"

	"github.com/damianoneill/priotagent/registry"
	"github.com/damianoneill/priotagent/transport"
)

// ErrNotOpen is returned by RegisterRegion/Close when no session is open.
var ErrNotOpen = errors.New("agentx: session not open")

// ErrAlreadyOpen is returned by Open when a session is already active.
var ErrAlreadyOpen = errors.New("agentx: session already open")

// Config mirrors the subset of AgentxConfig.c's .conf tokens this agent
// core exposes: agentxsocket, master, agentxtimeout, agentxretries.
type Config struct {
	Socket  string        // transport address, e.g. "unix:/var/agentx/master"
	Master  bool          // true if this agent runs as the AgentX master, not a sub-agent
	Timeout time.Duration // AgentxConfig_parseAgentxTimeout
	Retries int           // AgentxConfig_parseAgentxRetries
}

// DefaultConfig matches the teacher's DefaultXxxConfig package vars
// (serverfactory.go, cli/transport.go's DefaultTransportConfig), filled
// into a caller's Config via WithDefaults.
var DefaultConfig = Config{
	Timeout: 1 * time.Second,
	Retries: 5,
}

// WithDefaults merges cfg against DefaultConfig, leaving any field the
// caller already set untouched.
func (cfg Config) WithDefaults() Config {
	merged := cfg
	_ = mergo.Merge(&merged, DefaultConfig)
	return merged
}

// Bridge is the core's view of an AgentX sub-agent connection: open a
// session to a master, forward a subtree region registration over it,
// and close.
type Bridge interface {
	Open() error
	Close() error
	RegisterRegion(reg *registry.Registration) error
	SessionID() string
}

// SubAgent is the Bridge implementation wired into a transport.Transport
// tunnel. It does not speak the AgentX wire protocol; it records which
// regions a real AgentX master would need told about during the current
// session (see SessionID), so a future wire-level implementation has a
// ready list to encode -- grounded on AgentxConfig.c's register/
// unregister config-handler pair generalized from ".conf token" to
// "registry.Registration".
type SubAgent struct {
	cfg Config

	mu        sync.Mutex
	sessionID string
	conn      transport.Transport
	regions   []*registry.Registration
}

// New returns a SubAgent that has not yet opened a session.
func New(cfg Config) *SubAgent {
	return &SubAgent{cfg: cfg.WithDefaults()}
}

func (a *SubAgent) Open() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.conn != nil {
		return ErrAlreadyOpen
	}

	conn, err := transport.Dial(a.cfg.Socket)
	if err != nil {
		return errors.Wrap(err, "agentx: open session")
	}

	a.conn = conn
	a.sessionID = uuid.New().String()
	a.regions = nil
	return nil
}

func (a *SubAgent) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.conn == nil {
		return ErrNotOpen
	}
	err := a.conn.Close()
	a.conn = nil
	a.sessionID = ""
	a.regions = nil
	return err
}

// RegisterRegion records reg as forwarded over this session. A full
// AgentX implementation would encode and send a Register-PDU here; this
// core only tracks the obligation, per the package doc's scope note.
func (a *SubAgent) RegisterRegion(reg *registry.Registration) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.conn == nil {
		return ErrNotOpen
	}
	a.regions = append(a.regions, reg)
	return nil
}

func (a *SubAgent) SessionID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sessionID
}

// Regions returns the subtree registrations forwarded so far, for tests
// and diagnostics.
func (a *SubAgent) Regions() []*registry.Registration {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*registry.Registration, len(a.regions))
	copy(out, a.regions)
	return out
}
