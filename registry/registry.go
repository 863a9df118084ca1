// Package registry implements the subtree registry: a per-context ordered
// sequence of subtree nodes mapping OID ranges to handler chains, with
// priority-ordered siblings at an equal root and range-registration
// splitting, generalizing the original C agent's subtree forest
// (original_source/Firmware/Priotlib/AgentHandler.c's
// Handler_registerHandler/Handler_unregisterHandler) into a Go slice kept
// in OID order rather than raw next/prev tree pointers.
package registry

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/damianoneill/priotagent/handler"
	"github.com/damianoneill/priotagent/oid"
)

// Errors returned by Register/Unregister, matching spec.md §4.3's
// DuplicateRegistration/RegistrationFailed error kinds.
var (
	ErrDuplicateRegistration = errors.New("registry: duplicate registration")
	ErrRegistrationFailed    = errors.New("registry: registration failed")
	ErrNotRegistered         = errors.New("registry: no matching registration")
)

// Registration is a single subtree registration: spec.md §3's Subtree
// Registration tuple. RangeSubid/RangeUpperBound are zero for a plain
// single-point registration; when RangeSubid > 0 the registration covers
// every value of that sub-id from Root's current value up to
// RangeUpperBound inclusive, and is split into one clone per covered
// sub-id at registration time.
type Registration struct {
	Name           string
	Root           oid.OID
	Priority       int
	RangeSubid     int
	RangeUpperBound uint32
	Context        string
	Modes          handler.ModeSet
	Chain          *handler.Chain
	OwnerSession   string
}

// node is one OID-keyed slot in the registry: a root OID plus its
// priority-ordered sibling list (lowest priority value wins).
type node struct {
	root     oid.OID
	siblings []*Registration
}

// Registry is a per-context forest of subtree nodes kept in ascending OID
// order, implemented as a sorted slice with sort.Search binary lookup --
// the Go-idiomatic stand-in for the balanced/ceiling-lookup tree shown by
// other_examples' gosnmp agent (whose backing biogo.llrb dependency is no
// longer fetchable) -- see DESIGN.md.
type Registry struct {
	contexts map[string][]*node
}

// New builds an empty registry.
func New() *Registry {
	return &Registry{contexts: make(map[string][]*node)}
}

func (r *Registry) nodes(context string) []*node { return r.contexts[context] }

// Register inserts reg into its context's subtree list in OID order,
// splicing into an existing node's priority list when the root already
// exists. Range registrations are expanded into one clone per covered
// sub-id value. Returns ErrDuplicateRegistration if reg's priority
// collides with an existing sibling at the same root.
func (r *Registry) Register(reg *Registration) error {
	if reg.RangeSubid > 0 {
		return r.registerRange(reg)
	}
	return r.insert(reg)
}

func (r *Registry) registerRange(reg *Registration) error {
	if reg.RangeSubid < 1 || reg.RangeSubid > len(reg.Root) {
		return errors.Wrap(ErrRegistrationFailed, "registry: range sub-id out of bounds")
	}
	lower := reg.Root[reg.RangeSubid-1]
	if reg.RangeUpperBound < lower {
		return errors.Wrap(ErrRegistrationFailed, "registry: range upper bound below root value")
	}

	var inserted []*Registration
	for v := lower; v <= reg.RangeUpperBound; v++ {
		root := reg.Root.Copy()
		root[reg.RangeSubid-1] = v

		chain := reg.Chain
		if v != lower {
			cloned, err := reg.Chain.Clone()
			if err != nil {
				r.rollback(inserted)
				return errors.Wrapf(ErrRegistrationFailed, "registry: clone chain for range value %d: %v", v, err)
			}
			chain = cloned
		}

		clone := &Registration{
			Name: reg.Name, Root: root, Priority: reg.Priority,
			RangeSubid: reg.RangeSubid, RangeUpperBound: reg.RangeUpperBound,
			Context: reg.Context, Modes: reg.Modes, Chain: chain,
			OwnerSession: reg.OwnerSession,
		}
		if err := r.insert(clone); err != nil {
			r.rollback(inserted)
			return err
		}
		inserted = append(inserted, clone)
	}
	return nil
}

func (r *Registry) rollback(inserted []*Registration) {
	for _, reg := range inserted {
		_ = r.Unregister(reg.Context, reg.Root, reg.Priority)
	}
}

func (r *Registry) insert(reg *Registration) error {
	list := r.contexts[reg.Context]
	idx := sort.Search(len(list), func(i int) bool {
		return list[i].root.Compare(reg.Root) >= 0
	})

	if idx < len(list) && list[idx].root.Equal(reg.Root) {
		n := list[idx]
		pos := sort.Search(len(n.siblings), func(i int) bool {
			return n.siblings[i].Priority >= reg.Priority
		})
		if pos < len(n.siblings) && n.siblings[pos].Priority == reg.Priority {
			return ErrDuplicateRegistration
		}
		n.siblings = append(n.siblings, nil)
		copy(n.siblings[pos+1:], n.siblings[pos:])
		n.siblings[pos] = reg
		return nil
	}

	n := &node{root: reg.Root.Copy(), siblings: []*Registration{reg}}
	list = append(list, nil)
	copy(list[idx+1:], list[idx:])
	list[idx] = n
	r.contexts[reg.Context] = list
	return nil
}

// Unregister removes the registration at root/priority in context,
// freeing its handler chain. It is a no-op error (ErrNotRegistered) to
// unregister something that is not present.
func (r *Registry) Unregister(context string, root oid.OID, priority int) error {
	list := r.contexts[context]
	idx := sort.Search(len(list), func(i int) bool {
		return list[i].root.Compare(root) >= 0
	})
	if idx >= len(list) || !list[idx].root.Equal(root) {
		return ErrNotRegistered
	}

	n := list[idx]
	pos := sort.Search(len(n.siblings), func(i int) bool {
		return n.siblings[i].Priority >= priority
	})
	if pos >= len(n.siblings) || n.siblings[pos].Priority != priority {
		return ErrNotRegistered
	}

	n.siblings[pos].Chain.Free()
	n.siblings = append(n.siblings[:pos], n.siblings[pos+1:]...)

	if len(n.siblings) == 0 {
		list = append(list[:idx], list[idx+1:]...)
		r.contexts[context] = list
	}
	return nil
}

// Find returns the registration covering query in the given context whose
// Modes accepts mode, per spec.md §4.3: the node with the longest
// (innermost) prefix match wins, and within that node the lowest-priority
// sibling that accepts mode wins.
func (r *Registry) Find(context string, query oid.OID, mode handler.Mode) (*Registration, bool) {
	list := r.nodes(context)
	var best *node
	for _, n := range list {
		if n.root.IsPrefix(query) {
			if best == nil || len(n.root) > len(best.root) {
				best = n
			}
		}
	}
	if best == nil {
		return nil, false
	}
	for _, reg := range best.siblings {
		if reg.Modes.Accepts(mode) {
			return reg, true
		}
	}
	return nil, false
}

// FindNext returns the lexicographically next registration strictly after
// query in the given context -- the GETNEXT successor lookup of spec.md
// §4.3. If query falls inside a covered subtree, that subtree's own
// registration is still skipped in favor of the next one, since GETNEXT
// always advances past the queried point.
func (r *Registry) FindNext(context string, query oid.OID, mode handler.Mode) (*Registration, bool) {
	list := r.nodes(context)
	idx := sort.Search(len(list), func(i int) bool {
		return list[i].root.Compare(query) > 0
	})
	for ; idx < len(list); idx++ {
		for _, reg := range list[idx].siblings {
			if reg.Modes.Accepts(mode) {
				return reg, true
			}
		}
	}
	return nil, false
}
