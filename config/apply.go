package config

import (
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/damianoneill/priotagent/handler"
	"github.com/damianoneill/priotagent/table"
	"github.com/damianoneill/priotagent/transport"
)

// ErrUnknownHandlerFactory is returned by ApplyInjectHandler when no
// factory was registered under the directive's Name.
var ErrUnknownHandlerFactory = errors.New("config: no handler factory registered for name")

var (
	factoriesMu sync.Mutex
	factories   = map[string]func() *handler.Node{}
)

func init() {
	// The stock nodes injectHandler can always find by name, matching
	// spec.md §4.9's "table, iterator, instance, row, debug, bulk-to-next,
	// cache" list; unlike a plug-in's own factories these never need
	// per-module registration.
	RegisterHandlerFactory("debug", handler.NewDebugHandler)
	RegisterHandlerFactory("table", table.NewHandlerNode)
}

// RegisterHandlerFactory makes name available to a later injectHandler
// directive. A plug-in calls this at init time the same way
// AgentxConfig_registerConfigHandler registers a .conf token handler.
func RegisterHandlerFactory(name string, factory func() *handler.Node) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = factory
}

// ApplyInjectHandler builds the node named by d.Name via its registered
// factory and splices it into chain, before d.BeforeName if set, else at
// the chain's tail.
func ApplyInjectHandler(d InjectHandler, chain *handler.Chain) error {
	factoriesMu.Lock()
	factory, ok := factories[d.Name]
	factoriesMu.Unlock()
	if !ok {
		return errors.Wrapf(ErrUnknownHandlerFactory, "%q", d.Name)
	}

	node := factory()
	if d.BeforeName == "" {
		chain.Append(node)
		return nil
	}
	return chain.InjectBefore(node, d.BeforeName)
}

// ApplyDefDomain records the application's domain preference order in
// store, under "<application>.domains".
func ApplyDefDomain(store *Store, d DefDomain) {
	store.SetString(d.Application+".domains", strings.Join(d.Domains, " "))
}

// ApplyDefTarget records d in store and registers a transport alias
// "<application>.<domain>" resolving to "<domain>:<target>", so a later
// transport.Dial("alias:" + application + "." + domain) reaches the
// configured target without the caller needing to know it.
func ApplyDefTarget(store *Store, d DefTarget) {
	store.SetString(d.Application+"."+d.Domain, d.Target)
	transport.RegisterAlias(d.Application+"."+d.Domain, d.Domain+":"+d.Target)
}

// Apply dispatches d to whichever ApplyXxx its non-nil field calls for.
// injectHandler directives are applied against chain (nil is only valid
// when d carries no InjectHandler).
func Apply(store *Store, d Directive, chain *handler.Chain) error {
	switch {
	case d.InjectHandler != nil:
		if chain == nil {
			return errors.New("config: injectHandler directive requires a target chain")
		}
		return ApplyInjectHandler(*d.InjectHandler, chain)
	case d.DefDomain != nil:
		ApplyDefDomain(store, *d.DefDomain)
		return nil
	case d.DefTarget != nil:
		ApplyDefTarget(store, *d.DefTarget)
		return nil
	}
	return errors.New("config: empty directive")
}
