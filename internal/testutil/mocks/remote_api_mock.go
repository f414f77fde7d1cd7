package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/bahar-app/bahar/internal/models"
	"github.com/bahar-app/bahar/internal/remote"
)

// MockRemoteAPI is a mock implementation of remote.API
type MockRemoteAPI struct {
	mock.Mock
}

func (m *MockRemoteAPI) ConnectionInfo(ctx context.Context, userID string) (remote.ConnectionInfo, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(remote.ConnectionInfo), args.Error(1)
}

func (m *MockRemoteAPI) RefreshToken(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *MockRemoteAPI) Migrations(ctx context.Context) ([]models.Migration, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Migration), args.Error(1)
}

func (m *MockRemoteAPI) VerifySchema(ctx context.Context, localVersion int) (remote.SchemaCheck, error) {
	args := m.Called(ctx, localVersion)
	return args.Get(0).(remote.SchemaCheck), args.Error(1)
}

func (m *MockRemoteAPI) PullChanges(ctx context.Context, userID string, sinceMS int64) (remote.Changeset, error) {
	args := m.Called(ctx, userID, sinceMS)
	return args.Get(0).(remote.Changeset), args.Error(1)
}

func (m *MockRemoteAPI) PushChanges(ctx context.Context, userID string, cs remote.Changeset) (int64, error) {
	args := m.Called(ctx, userID, cs)
	return args.Get(0).(int64), args.Error(1)
}
