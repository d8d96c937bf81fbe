package mocks

import (
	"context"

	"github.com/metinatakli/box-office-ledger/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) RegisterOneShot(ctx context.Context, task domain.SeatCheckTask) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}
