package mocks

import (
	"context"
	"time"

	"github.com/metinatakli/box-office-ledger/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockScreeningRepo struct {
	mock.Mock
}

func (m *MockScreeningRepo) Create(ctx context.Context, screening *domain.Screening) error {
	args := m.Called(ctx, screening)
	return args.Error(0)
}

func (m *MockScreeningRepo) GetByID(ctx context.Context, id int) (*domain.Screening, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Screening), args.Error(1)
}

func (m *MockScreeningRepo) GetByURL(ctx context.Context, url string) (*domain.Screening, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Screening), args.Error(1)
}

func (m *MockScreeningRepo) ListByMovieLocation(ctx context.Context, movieLocationID int) ([]domain.Screening, error) {
	args := m.Called(ctx, movieLocationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Screening), args.Error(1)
}

func (m *MockScreeningRepo) UpdateAuditorium(ctx context.Context, id int, auditorium string) error {
	args := m.Called(ctx, id, auditorium)
	return args.Error(0)
}

func (m *MockScreeningRepo) UpdateAggregates(ctx context.Context, id int, aggregates domain.ScreeningAggregates) error {
	args := m.Called(ctx, id, aggregates)
	return args.Error(0)
}

func (m *MockScreeningRepo) GetDaily(ctx context.Context, date time.Time) ([]domain.ScreeningRef, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ScreeningRef), args.Error(1)
}

func (m *MockScreeningRepo) GetDailyReserved(ctx context.Context, date time.Time) ([]domain.ScreeningRef, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ScreeningRef), args.Error(1)
}
