package pipeline

import (
	"reflect"

	"go.uber.org/mock/gomock"
)

// MockByteStream is a hand-written gomock fake for bytestream.ByteStream,
// used where a test needs to assert on the exact fill/consume call
// sequence a drain loop issues rather than just on the bytes it produces.
type MockByteStream struct {
	ctrl     *gomock.Controller
	recorder *MockByteStreamMockRecorder
}

type MockByteStreamMockRecorder struct {
	mock *MockByteStream
}

func NewMockByteStream(ctrl *gomock.Controller) *MockByteStream {
	mock := &MockByteStream{ctrl: ctrl}
	mock.recorder = &MockByteStreamMockRecorder{mock}
	return mock
}

func (m *MockByteStream) EXPECT() *MockByteStreamMockRecorder {
	return m.recorder
}

func (m *MockByteStream) FillBuf() (bool, int, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "FillBuf")
	ret0, _ := ret[0].(bool)
	ret1, _ := ret[1].(int)
	ret2, _ := ret[2].(error)
	return ret0, ret1, ret2
}

func (mr *MockByteStreamMockRecorder) FillBuf() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "FillBuf", reflect.TypeOf((*MockByteStream)(nil).FillBuf))
}

func (m *MockByteStream) AsSlice() []byte {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "AsSlice")
	ret0, _ := ret[0].([]byte)
	return ret0
}

func (mr *MockByteStreamMockRecorder) AsSlice() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "AsSlice", reflect.TypeOf((*MockByteStream)(nil).AsSlice))
}

func (m *MockByteStream) Consume(amount int) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "Consume", amount)
}

func (mr *MockByteStreamMockRecorder) Consume(amount interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Consume", reflect.TypeOf((*MockByteStream)(nil).Consume), amount)
}
