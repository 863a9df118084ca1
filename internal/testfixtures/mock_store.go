// Code generated in the style of mockgen for persist.Store.
package testfixtures

import (
	"reflect"

	"github.com/golang/mock/gomock"

	"github.com/damianoneill/priotagent/oid"
	"github.com/damianoneill/priotagent/varbind"
)

// MockStore is a mock of the persist.Store interface.
type MockStore struct {
	ctrl     *gomock.Controller
	recorder *MockStoreMockRecorder
}

// MockStoreMockRecorder is the mock recorder for MockStore.
type MockStoreMockRecorder struct {
	mock *MockStore
}

// NewMockStore creates a new mock instance.
func NewMockStore(ctrl *gomock.Controller) *MockStore {
	mock := &MockStore{ctrl: ctrl}
	mock.recorder = &MockStoreMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockStore) EXPECT() *MockStoreMockRecorder {
	return m.recorder
}

func (m *MockStore) Get(name oid.OID) (oid.OID, varbind.TypedValue, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Get", name)
	ret0, _ := ret[0].(oid.OID)
	ret1, _ := ret[1].(varbind.TypedValue)
	ret2, _ := ret[2].(error)
	return ret0, ret1, ret2
}

func (mr *MockStoreMockRecorder) Get(name interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Get", reflect.TypeOf((*MockStore)(nil).Get), name)
}

func (m *MockStore) GetNext(name oid.OID) (oid.OID, varbind.TypedValue, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetNext", name)
	ret0, _ := ret[0].(oid.OID)
	ret1, _ := ret[1].(varbind.TypedValue)
	ret2, _ := ret[2].(error)
	return ret0, ret1, ret2
}

func (mr *MockStoreMockRecorder) GetNext(name interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetNext", reflect.TypeOf((*MockStore)(nil).GetNext), name)
}

func (m *MockStore) Set(name oid.OID, value varbind.TypedValue) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Set", name, value)
	ret0, _ := ret[0].(error)
	return ret0
}

func (mr *MockStoreMockRecorder) Set(name, value interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Set", reflect.TypeOf((*MockStore)(nil).Set), name, value)
}
