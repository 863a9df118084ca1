package testfixtures

import (
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damianoneill/priotagent/agentx"
	"github.com/damianoneill/priotagent/oid"
	"github.com/damianoneill/priotagent/persist"
	"github.com/damianoneill/priotagent/transport"
	"github.com/damianoneill/priotagent/varbind"
)

var (
	_ transport.Transport = (*MockTransport)(nil)
	_ persist.Store       = (*MockStore)(nil)
	_ agentx.Bridge       = (*MockBridge)(nil)
)

func TestMockTransportSatisfiesExpectations(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := NewMockTransport(ctrl)

	m.EXPECT().Send([]byte("hi")).Return(2, nil)
	n, err := m.Send([]byte("hi"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	m.EXPECT().Close().Return(nil)
	assert.NoError(t, m.Close())
}

func TestMockStoreSatisfiesExpectations(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := NewMockStore(ctrl)

	want := oid.OID{1, 3, 6, 1}
	m.EXPECT().Get(want).Return(want, varbind.IntegerValue(7), nil)

	gotOID, gotVal, err := m.Get(want)
	require.NoError(t, err)
	assert.Equal(t, want, gotOID)
	assert.EqualValues(t, 7, gotVal.Int())
}

func TestMockBridgeSatisfiesExpectations(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := NewMockBridge(ctrl)

	m.EXPECT().Open().Return(nil)
	require.NoError(t, m.Open())

	m.EXPECT().SessionID().Return("abc-123")
	assert.Equal(t, "abc-123", m.SessionID())
}
