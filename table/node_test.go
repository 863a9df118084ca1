package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damianoneill/priotagent/handler"
	"github.com/damianoneill/priotagent/oid"
	"github.com/damianoneill/priotagent/pdu"
	"github.com/damianoneill/priotagent/varbind"
)

func TestHandlerNodeAttachesRequestInfoOnValidRequest(t *testing.T) {
	RegisterNamed("nodeTest/ifTable", ifEntryReg())
	node := NewHandlerNode()

	r := &handler.Request{Variable: &varbind.VB{Name: oid.MustParse("1.3.6.1.2.1.2.2.1.2.5")}, Index: 1}

	err := handler.InvokeFrom(node, &handler.RegistrationInfo{Name: "nodeTest/ifTable"}, &handler.RequestInfo{Mode: handler.ModeGet}, []*handler.Request{r})
	require.NoError(t, err)

	info, ok := RequestInfoFor(r)
	require.True(t, ok)
	assert.Equal(t, 2, info.Column)
}

func TestHandlerNodeSetsStatusOnColumnOutOfRange(t *testing.T) {
	RegisterNamed("nodeTest/ifTable2", ifEntryReg())
	node := NewHandlerNode()

	r := &handler.Request{Variable: &varbind.VB{Name: oid.MustParse("1.3.6.1.2.1.2.2.1.99.5")}, Index: 1}
	err := handler.InvokeFrom(node, &handler.RegistrationInfo{Name: "nodeTest/ifTable2"}, &handler.RequestInfo{Mode: handler.ModeGet}, []*handler.Request{r})
	require.NoError(t, err)

	assert.Equal(t, int(pdu.NoCreation), r.Status)
	_, ok := RequestInfoFor(r)
	assert.False(t, ok)
}

func TestHandlerNodeErrorsWithoutRegisteredRegistration(t *testing.T) {
	node := NewHandlerNode()
	r := &handler.Request{Variable: &varbind.VB{Name: oid.MustParse("1.3.6.1.2.1.2.2.1.2.5")}, Index: 1}

	err := handler.InvokeFrom(node, &handler.RegistrationInfo{Name: "nodeTest/unregistered"}, &handler.RequestInfo{Mode: handler.ModeGet}, []*handler.Request{r})
	assert.ErrorIs(t, err, ErrNoRegistration)
}
