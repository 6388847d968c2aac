// Package mocks provides testify mocks for the notify package.
package mocks

import (
	"context"

	mock "github.com/stretchr/testify/mock"
)

// MockNotifier is a mock implementation of notify.Notifier.
type MockNotifier struct {
	mock.Mock
}

// MockNotifier_Expecter provides typed expectation helpers.
type MockNotifier_Expecter struct {
	mock *mock.Mock
}

// EXPECT returns the typed expectation helper.
func (_m *MockNotifier) EXPECT() *MockNotifier_Expecter {
	return &MockNotifier_Expecter{mock: &_m.Mock}
}

// Send provides a mock function with given fields: ctx, message.
func (_m *MockNotifier) Send(ctx context.Context, message string) error {
	ret := _m.Called(ctx, message)

	if len(ret) == 0 {
		panic("no return value specified for Send")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string) error); ok {
		r0 = rf(ctx, message)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// MockNotifier_Send_Call wraps mock.Call for Send.
type MockNotifier_Send_Call struct {
	*mock.Call
}

// Send is a helper method to define mock.On call.
//   - ctx context.Context
//   - message string
func (_e *MockNotifier_Expecter) Send(ctx interface{}, message interface{}) *MockNotifier_Send_Call {
	return &MockNotifier_Send_Call{Call: _e.mock.On("Send", ctx, message)}
}

func (_c *MockNotifier_Send_Call) Run(run func(ctx context.Context, message string)) *MockNotifier_Send_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(string))
	})
	return _c
}

func (_c *MockNotifier_Send_Call) Return(_a0 error) *MockNotifier_Send_Call {
	_c.Call.Return(_a0)
	return _c
}

func (_c *MockNotifier_Send_Call) RunAndReturn(run func(context.Context, string) error) *MockNotifier_Send_Call {
	_c.Call.Return(run)
	return _c
}

// NewMockNotifier creates a MockNotifier whose expectations are asserted on
// test cleanup.
func NewMockNotifier(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockNotifier {
	m := &MockNotifier{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
