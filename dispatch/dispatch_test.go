package dispatch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damianoneill/priotagent/ber"
	"github.com/damianoneill/priotagent/handler"
	"github.com/damianoneill/priotagent/oid"
	"github.com/damianoneill/priotagent/pdu"
	"github.com/damianoneill/priotagent/registry"
	"github.com/damianoneill/priotagent/varbind"
)

// staticAccess sets value on every request for GET; for GETNEXT/GETBULK it
// also appends .0 to the request's name. Other modes are left untouched.
func staticAccess(value varbind.TypedValue) handler.AccessFunc {
	return func(_ *handler.Node, _ *handler.RegistrationInfo, info *handler.RequestInfo, requests []*handler.Request) error {
		for _, r := range requests {
			switch info.Mode {
			case handler.ModeGet:
				r.Variable.Value = value
			case handler.ModeGetNext, handler.ModeGetBulk:
				r.Variable.Name = r.Variable.Name.Append(0)
				r.Variable.Value = value
			}
		}
		return nil
	}
}

func newRegistry(t *testing.T, root string, access handler.AccessFunc) *registry.Registry {
	t.Helper()
	r := registry.New()
	chain := handler.NewChain(handler.NewNode("static", access))
	require.NoError(t, r.Register(&registry.Registration{
		Name: "static", Root: oid.MustParse(root), Priority: 1,
		Modes: handler.ReadWriteModes, Chain: chain,
	}))
	return r
}

func encodeGet(t *testing.T, name string) []byte {
	t.Helper()
	vb := &varbind.VB{Name: oid.MustParse(name)}
	req := pdu.NewRequest(pdu.TypeGet, 1, varbind.NewVarList(vb))
	out, err := pdu.Encode(req)
	require.NoError(t, err)
	return out
}

func TestDispatchGetFoundReturnsValue(t *testing.T) {
	reg := newRegistry(t, "1.3.6.1.2.1.1.1.0", staticAccess(varbind.OctetStringValue([]byte("hello"))))
	d := New(reg, nil, 0)

	out, err := d.Process(encodeGet(t, "1.3.6.1.2.1.1.1.0"), "")
	require.NoError(t, err)
	require.NotNil(t, out)

	resp, err := pdu.Decode(out)
	require.NoError(t, err)
	assert.Equal(t, pdu.NoError, resp.ErrorStatus)
	vb := resp.VarBindings.First()
	assert.Equal(t, []byte("hello"), vb.Value.Value)
}

func TestDispatchGetNotFoundReturnsNoSuchObject(t *testing.T) {
	reg := newRegistry(t, "1.3.6.1.2.1.1.1.0", staticAccess(varbind.OctetStringValue([]byte("hello"))))
	d := New(reg, nil, 0)

	out, err := d.Process(encodeGet(t, "1.3.6.1.2.1.1.2.0"), "")
	require.NoError(t, err)
	resp, err := pdu.Decode(out)
	require.NoError(t, err)
	vb := resp.VarBindings.First()
	assert.Equal(t, ber.TagNoSuchObject, vb.Value.Type)
}

func TestDispatchGetNextAdvancesWithinSubtree(t *testing.T) {
	reg := newRegistry(t, "1.3.6.1.2.1.1", staticAccess(varbind.IntegerValue(42)))
	d := New(reg, nil, 0)

	vb := &varbind.VB{Name: oid.MustParse("1.3.6.1.2.1.1")}
	req := pdu.NewRequest(pdu.TypeGetNext, 1, varbind.NewVarList(vb))
	in, err := pdu.Encode(req)
	require.NoError(t, err)

	out, err := d.Process(in, "")
	require.NoError(t, err)
	resp, err := pdu.Decode(out)
	require.NoError(t, err)
	got := resp.VarBindings.First()
	assert.Equal(t, oid.MustParse("1.3.6.1.2.1.1.0"), got.Name)
	assert.Equal(t, int64(42), got.Value.Int())
}

func TestDispatchGetBulkWalksRepeaters(t *testing.T) {
	reg := newRegistry(t, "1.3.6.1.2.1.2", staticAccess(varbind.IntegerValue(7)))
	d := New(reg, nil, 0)

	vb := &varbind.VB{Name: oid.MustParse("1.3.6.1.2.1.2")}
	req := pdu.NewRequest(pdu.TypeGetBulk, 1, varbind.NewVarList(vb))
	req.MaxRepetitions = 3
	req.NonRepeaters = 0
	in, err := pdu.Encode(req)
	require.NoError(t, err)

	out, err := d.Process(in, "")
	require.NoError(t, err)
	resp, err := pdu.Decode(out)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.VarBindings.Len())
}

func TestDispatchSetHappyPath(t *testing.T) {
	var phases []handler.Mode
	access := func(_ *handler.Node, _ *handler.RegistrationInfo, info *handler.RequestInfo, requests []*handler.Request) error {
		phases = append(phases, info.Mode)
		return nil
	}
	reg := newRegistry(t, "1.3.6.1.4.1.10.1", access)
	d := New(reg, nil, 0)

	vb := &varbind.VB{Name: oid.MustParse("1.3.6.1.4.1.10.1"), Value: varbind.IntegerValue(1)}
	req := pdu.NewRequest(pdu.TypeSet, 1, varbind.NewVarList(vb))
	in, err := pdu.Encode(req)
	require.NoError(t, err)

	out, err := d.Process(in, "")
	require.NoError(t, err)
	resp, err := pdu.Decode(out)
	require.NoError(t, err)
	assert.Equal(t, pdu.NoError, resp.ErrorStatus)
	assert.Equal(t, []handler.Mode{
		handler.ModeSetReserve1, handler.ModeSetReserve2,
		handler.ModeSetAction, handler.ModeSetCommit,
	}, phases)
}

func TestDispatchSetActionFailureWithoutPerRequestStatusSurfacesGenErr(t *testing.T) {
	access := func(_ *handler.Node, _ *handler.RegistrationInfo, info *handler.RequestInfo, requests []*handler.Request) error {
		if info.Mode == handler.ModeSetAction {
			return assertErr("action failed")
		}
		return nil
	}
	reg := newRegistry(t, "1.3.6.1.4.1.10.2", access)
	d := New(reg, nil, 0)

	vb := &varbind.VB{Name: oid.MustParse("1.3.6.1.4.1.10.2"), Value: varbind.IntegerValue(1)}
	req := pdu.NewRequest(pdu.TypeSet, 1, varbind.NewVarList(vb))
	in, err := pdu.Encode(req)
	require.NoError(t, err)

	out, err := d.Process(in, "")
	require.NoError(t, err)
	resp, err := pdu.Decode(out)
	require.NoError(t, err)
	assert.Equal(t, pdu.GenErr, resp.ErrorStatus)
}

func TestDispatchSetReserve2FailureSurfacesPerRequestStatusAndIndex(t *testing.T) {
	access := func(_ *handler.Node, _ *handler.RegistrationInfo, info *handler.RequestInfo, requests []*handler.Request) error {
		if info.Mode != handler.ModeSetReserve2 {
			return nil
		}
		for _, r := range requests {
			if r.Index == 2 {
				r.Status = int(pdu.ResourceUnavailable)
				return assertErr("second variable unavailable")
			}
		}
		return nil
	}
	reg := newRegistry(t, "1.3.6.1.4.1.10.3", access)
	d := New(reg, nil, 0)

	vb1 := &varbind.VB{Name: oid.MustParse("1.3.6.1.4.1.10.3.1"), Value: varbind.IntegerValue(1)}
	vb2 := &varbind.VB{Name: oid.MustParse("1.3.6.1.4.1.10.3.2"), Value: varbind.IntegerValue(2)}
	req := pdu.NewRequest(pdu.TypeSet, 1, varbind.NewVarList(vb1, vb2))
	in, err := pdu.Encode(req)
	require.NoError(t, err)

	out, err := d.Process(in, "")
	require.NoError(t, err)
	resp, err := pdu.Decode(out)
	require.NoError(t, err)
	assert.Equal(t, pdu.ResourceUnavailable, resp.ErrorStatus)
	assert.Equal(t, 2, resp.ErrorIndex)
}

func TestDispatchDelegatedRequestCompletesLater(t *testing.T) {
	access := func(_ *handler.Node, _ *handler.RegistrationInfo, info *handler.RequestInfo, requests []*handler.Request) error {
		requests[0].Delegated = true
		return nil
	}
	reg := newRegistry(t, "1.3.6.1.2.1.1.1.0", access)
	d := New(reg, nil, time.Hour)

	out, err := d.Process(encodeGet(t, "1.3.6.1.2.1.1.1.0"), "")
	require.NoError(t, err)
	assert.Nil(t, out, "delegated PDU has no immediate response")
	assert.Len(t, d.inFlight, 1)

	var txnID string
	for id := range d.inFlight {
		txnID = id
	}
	resp, ok := d.Complete(txnID)
	require.True(t, ok)
	assert.Equal(t, pdu.NoError, resp.ErrorStatus)
	assert.Empty(t, d.inFlight)
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
