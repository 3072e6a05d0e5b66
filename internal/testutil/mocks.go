package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/GriffinCanCode/catalogd/internal/infrastructure/transport"
	"github.com/GriffinCanCode/catalogd/internal/shared/types"
)

// MockRemote is a mock of the remote API transport.
type MockRemote struct {
	mock.Mock
	Base string
}

// Do mocks the Do method.
func (m *MockRemote) Do(ctx context.Context, req transport.Request) (*transport.Response, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transport.Response), args.Error(1)
}

// BaseURL returns the configured base.
func (m *MockRemote) BaseURL() string {
	return m.Base
}

// JSONResponse builds a response carrying a JSON body.
func JSONResponse(status int, body string) *transport.Response {
	return &transport.Response{
		StatusCode:  status,
		Body:        []byte(body),
		ContentType: "application/json",
	}
}

// MockQuotaChecker is a mock of the quota collaborator.
type MockQuotaChecker struct {
	mock.Mock
}

// Check mocks the Check method.
func (m *MockQuotaChecker) Check(ctx context.Context, namespace, resource string) (types.QuotaCheckResult, error) {
	args := m.Called(ctx, namespace, resource)
	return args.Get(0).(types.QuotaCheckResult), args.Error(1)
}
