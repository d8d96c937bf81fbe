package mocks

import (
	"context"

	"github.com/metinatakli/box-office-ledger/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockSeatRepo struct {
	mock.Mock
}

func (m *MockSeatRepo) Create(ctx context.Context, seat *domain.Seat) (bool, error) {
	args := m.Called(ctx, seat)
	return args.Bool(0), args.Error(1)
}

func (m *MockSeatRepo) UpdateStatus(
	ctx context.Context,
	screeningID int,
	location string,
	status domain.SeatStatus) error {

	args := m.Called(ctx, screeningID, location, status)
	return args.Error(0)
}

func (m *MockSeatRepo) GetByScreening(ctx context.Context, screeningID int) ([]domain.Seat, error) {
	args := m.Called(ctx, screeningID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Seat), args.Error(1)
}
