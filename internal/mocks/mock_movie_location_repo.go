package mocks

import (
	"context"

	"github.com/metinatakli/box-office-ledger/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockMovieLocationRepo struct {
	mock.Mock
}

func (m *MockMovieLocationRepo) Create(ctx context.Context, ml *domain.MovieLocation) (bool, error) {
	args := m.Called(ctx, ml)
	return args.Bool(0), args.Error(1)
}

func (m *MockMovieLocationRepo) GetByID(ctx context.Context, id int) (*domain.MovieLocation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MovieLocation), args.Error(1)
}

func (m *MockMovieLocationRepo) GetByPair(ctx context.Context, movieID, theaterID int) (*domain.MovieLocation, error) {
	args := m.Called(ctx, movieID, theaterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MovieLocation), args.Error(1)
}

func (m *MockMovieLocationRepo) ListByMovie(ctx context.Context, movieID int) ([]domain.MovieLocation, error) {
	args := m.Called(ctx, movieID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MovieLocation), args.Error(1)
}

func (m *MockMovieLocationRepo) ListByTheater(ctx context.Context, theaterID int) ([]domain.MovieLocation, error) {
	args := m.Called(ctx, theaterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MovieLocation), args.Error(1)
}

func (m *MockMovieLocationRepo) UpdateEarnings(ctx context.Context, id int, earnings decimal.Decimal) error {
	args := m.Called(ctx, id, earnings)
	return args.Error(0)
}
