// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package agentclientmock is a go.uber.org/mock/gomock mock of
// agentclient.API, hand-written in the shape mockgen emits, mirroring
// validator/validatorsmock's ctrl/EXPECT() split so orchestrator fan-out
// can be exercised without a live agent.Server behind httptest.
package agentclientmock

import (
	"context"
	"reflect"

	"go.uber.org/mock/gomock"

	"github.com/luxfi/netproof/agent"
)

// MockAPI is a mock of agentclient.API.
type MockAPI struct {
	ctrl     *gomock.Controller
	recorder *MockAPIMockRecorder
}

// MockAPIMockRecorder is the recorder for MockAPI's EXPECT() calls.
type MockAPIMockRecorder struct {
	mock *MockAPI
}

// NewMockAPI constructs a MockAPI bound to a gomock.Controller.
func NewMockAPI(ctrl *gomock.Controller) *MockAPI {
	m := &MockAPI{ctrl: ctrl}
	m.recorder = &MockAPIMockRecorder{m}
	return m
}

// EXPECT returns a recorder used to set up call expectations.
func (m *MockAPI) EXPECT() *MockAPIMockRecorder {
	return m.recorder
}

// Handshake mocks agentclient.API.Handshake.
func (m *MockAPI) Handshake(ctx context.Context, req agent.HandshakeRequest) (agent.HandshakeResponse, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Handshake", ctx, req)
	resp, _ := ret[0].(agent.HandshakeResponse)
	err, _ := ret[1].(error)
	return resp, err
}

// Handshake records an expectation for a Handshake call.
func (r *MockAPIMockRecorder) Handshake(ctx, req any) *gomock.Call {
	r.mock.ctrl.T.Helper()
	return r.mock.ctrl.RecordCallWithMethodType(r.mock, "Handshake", reflect.TypeOf((*MockAPI)(nil).Handshake), ctx, req)
}

// StartRun mocks agentclient.API.StartRun.
func (m *MockAPI) StartRun(ctx context.Context, req agent.StartRunRequest) (agent.StartRunResponse, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "StartRun", ctx, req)
	resp, _ := ret[0].(agent.StartRunResponse)
	err, _ := ret[1].(error)
	return resp, err
}

// StartRun records an expectation for a StartRun call.
func (r *MockAPIMockRecorder) StartRun(ctx, req any) *gomock.Call {
	r.mock.ctrl.T.Helper()
	return r.mock.ctrl.RecordCallWithMethodType(r.mock, "StartRun", reflect.TypeOf((*MockAPI)(nil).StartRun), ctx, req)
}

// StatusPoll mocks agentclient.API.StatusPoll.
func (m *MockAPI) StatusPoll(ctx context.Context, runID string) (agent.RunStatusResponse, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "StatusPoll", ctx, runID)
	resp, _ := ret[0].(agent.RunStatusResponse)
	err, _ := ret[1].(error)
	return resp, err
}

// StatusPoll records an expectation for a StatusPoll call.
func (r *MockAPIMockRecorder) StatusPoll(ctx, runID any) *gomock.Call {
	r.mock.ctrl.T.Helper()
	return r.mock.ctrl.RecordCallWithMethodType(r.mock, "StatusPoll", reflect.TypeOf((*MockAPI)(nil).StatusPoll), ctx, runID)
}

// StopRun mocks agentclient.API.StopRun.
func (m *MockAPI) StopRun(ctx context.Context, runID string) (agent.StopRunResponse, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "StopRun", ctx, runID)
	resp, _ := ret[0].(agent.StopRunResponse)
	err, _ := ret[1].(error)
	return resp, err
}

// StopRun records an expectation for a StopRun call.
func (r *MockAPIMockRecorder) StopRun(ctx, runID any) *gomock.Call {
	r.mock.ctrl.T.Helper()
	return r.mock.ctrl.RecordCallWithMethodType(r.mock, "StopRun", reflect.TypeOf((*MockAPI)(nil).StopRun), ctx, runID)
}

// GetResults mocks agentclient.API.GetResults.
func (m *MockAPI) GetResults(ctx context.Context, req agent.GetResultsRequest) (agent.GetResultsResponse, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetResults", ctx, req)
	resp, _ := ret[0].(agent.GetResultsResponse)
	err, _ := ret[1].(error)
	return resp, err
}

// GetResults records an expectation for a GetResults call.
func (r *MockAPIMockRecorder) GetResults(ctx, req any) *gomock.Call {
	r.mock.ctrl.T.Helper()
	return r.mock.ctrl.RecordCallWithMethodType(r.mock, "GetResults", reflect.TypeOf((*MockAPI)(nil).GetResults), ctx, req)
}

// Health mocks agentclient.API.Health.
func (m *MockAPI) Health(ctx context.Context) (agent.HealthResponse, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Health", ctx)
	resp, _ := ret[0].(agent.HealthResponse)
	err, _ := ret[1].(error)
	return resp, err
}

// Health records an expectation for a Health call.
func (r *MockAPIMockRecorder) Health(ctx any) *gomock.Call {
	r.mock.ctrl.T.Helper()
	return r.mock.ctrl.RecordCallWithMethodType(r.mock, "Health", reflect.TypeOf((*MockAPI)(nil).Health), ctx)
}
