package handler

import (
	"github.com/pkg/errors"

	"github.com/damianoneill/priotagent/oid"
)

// RegistrationInfo is the read-only registration context handed to every
// access function alongside a request batch -- the fields a handler
// actually needs to know about its own registration, split out from
// registry.Registration so this package does not have to import registry
// (which in turn owns and invokes handler chains).
type RegistrationInfo struct {
	Name     string
	Root     oid.OID
	Context  string
	Priority int
}

// AccessFunc is a handler's access method: spec.md §4.4's
// `fn(handler, reg, reqInfo, requests) -> errorCode`.
type AccessFunc func(node *Node, reg *RegistrationInfo, info *RequestInfo, requests []*Request) error

// Flag is a bitmask of per-node behavior flags, matching spec.md's
// Handler Node flags `Instance, AutoNext, AutoNextOverrideOnce`.
type Flag uint8

const (
	FlagInstance Flag = 1 << iota
	FlagAutoNext
	FlagAutoNextOverrideOnce
)

// Node is a single link in a handler chain, generalizing the original
// MibHandler struct (original_source/Firmware/Priotlib/AgentHandler.c)
// into a doubly linked Go value: next/prev pointers replace the C raw
// pointers, and CloneData/FreeData replace data_clone/data_free.
type Node struct {
	Name    string
	Access  AccessFunc
	Flags   Flag
	MyVoid  interface{}

	// CloneData and FreeData must both be set or both be nil -- providing
	// one without the other is an error caught at chain-clone time, per
	// spec.md §4.4 "It is an error for a node to provide only one of
	// clone/free."
	CloneData func(interface{}) interface{}
	FreeData  func(interface{})

	next *Node
	prev *Node
}

// NewNode constructs a single handler node. flags defaults to FlagAutoNext
// when none are given, matching the common case where a node always
// passes through to its successor.
func NewNode(name string, access AccessFunc, flags ...Flag) *Node {
	n := &Node{Name: name, Access: access}
	for _, f := range flags {
		n.Flags |= f
	}
	if n.Flags == 0 {
		n.Flags = FlagAutoNext
	}
	return n
}

func (n *Node) hasFlag(f Flag) bool { return n.Flags&f != 0 }

// Next returns the following node in the chain, or nil at the tail.
func (n *Node) Next() *Node { return n.next }

// Prev returns the preceding node in the chain, or nil at the head.
func (n *Node) Prev() *Node { return n.prev }

// Chain is a handler registration's owned doubly linked sequence of
// nodes.
type Chain struct {
	head *Node
	tail *Node
}

// NewChain builds a chain from nodes in order, linking next/prev as it
// goes.
func NewChain(nodes ...*Node) *Chain {
	c := &Chain{}
	for _, n := range nodes {
		c.Append(n)
	}
	return c
}

// Head returns the chain's first node, or nil if empty.
func (c *Chain) Head() *Node { return c.head }

// Append adds n to the end of the chain.
func (c *Chain) Append(n *Node) {
	n.prev = c.tail
	n.next = nil
	if c.tail == nil {
		c.head = n
	} else {
		c.tail.next = n
	}
	c.tail = n
}

// Find returns the node with the given name, or nil if none matches.
func (c *Chain) Find(name string) *Node {
	for n := c.head; n != nil; n = n.next {
		if n.Name == name {
			return n
		}
	}
	return nil
}

// InjectBefore splices the sub-chain starting at h immediately before the
// node named beforeName (walking that sub-chain's own next pointers to
// find its tail), matching spec.md §4.4's injectBefore. If beforeName is
// "", h becomes the new head. Returns an error if beforeName is non-empty
// and no matching node exists.
func (c *Chain) InjectBefore(h *Node, beforeName string) error {
	tail := h
	for tail.next != nil {
		tail = tail.next
	}

	if beforeName == "" {
		tail.next = c.head
		if c.head != nil {
			c.head.prev = tail
		}
		h.prev = nil
		c.head = h
		if c.tail == nil {
			c.tail = tail
		}
		return nil
	}

	target := c.Find(beforeName)
	if target == nil {
		return errors.Errorf("handler: injectBefore: no node named %q", beforeName)
	}

	h.prev = target.prev
	tail.next = target
	target.prev = tail
	if h.prev != nil {
		h.prev.next = h
	} else {
		c.head = h
	}
	return nil
}

// Clone deep-copies every node in c, invoking each node's CloneData hook
// on MyVoid when present. It returns an error if any node has exactly one
// of CloneData/FreeData set.
func (c *Chain) Clone() (*Chain, error) {
	out := &Chain{}
	for n := c.head; n != nil; n = n.next {
		if (n.CloneData == nil) != (n.FreeData == nil) {
			return nil, errors.Errorf("handler: node %q has only one of clone/free", n.Name)
		}
		dup := &Node{
			Name:      n.Name,
			Access:    n.Access,
			Flags:     n.Flags,
			CloneData: n.CloneData,
			FreeData:  n.FreeData,
		}
		if n.MyVoid != nil && n.CloneData != nil {
			dup.MyVoid = n.CloneData(n.MyVoid)
		} else {
			dup.MyVoid = n.MyVoid
		}
		out.Append(dup)
	}
	return out, nil
}

// Free invokes FreeData on every node's MyVoid, in order.
func (c *Chain) Free() {
	for n := c.head; n != nil; n = n.next {
		if n.FreeData != nil && n.MyVoid != nil {
			n.FreeData(n.MyVoid)
		}
	}
}

// Invoke drives the chain starting at the head with the given registration
// info, request info, and batch, honoring AutoNext/AutoNextOverrideOnce:
// after a node's Access returns with no error, Invoke calls the next node
// automatically if FlagAutoNext is set and FlagAutoNextOverrideOnce was not
// set before or during this call; the override flag is consumed (cleared) whether or
// not it blocked the auto-advance, matching spec.md's "prevent this once".
func (c *Chain) Invoke(reg *RegistrationInfo, info *RequestInfo, requests []*Request) error {
	return invokeFrom(c.head, reg, info, requests)
}

// InvokeFrom drives the chain starting at node n, used by a helper that
// has already consumed its own node and wants to continue from its
// successor (or to jump into the middle of a chain it owns).
func InvokeFrom(n *Node, reg *RegistrationInfo, info *RequestInfo, requests []*Request) error {
	return invokeFrom(n, reg, info, requests)
}

func invokeFrom(n *Node, reg *RegistrationInfo, info *RequestInfo, requests []*Request) error {
	if n == nil {
		return nil
	}
	if n.Access == nil {
		return errors.Errorf("handler: node %q has no access function", n.Name)
	}

	overrideBefore := n.hasFlag(FlagAutoNextOverrideOnce)
	err := n.Access(n, reg, info, requests)
	overridden := overrideBefore || n.hasFlag(FlagAutoNextOverrideOnce)
	n.Flags &^= FlagAutoNextOverrideOnce

	if err != nil {
		return err
	}
	if n.hasFlag(FlagAutoNext) && !overridden && n.next != nil {
		return invokeFrom(n.next, reg, info, requests)
	}
	return nil
}
