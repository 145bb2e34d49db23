package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/jsamuelsen/quoteswipe/internal/domain"
)

// MockQuoteSource is a mock of ports.QuoteSource.
type MockQuoteSource struct {
	mock.Mock
}

// NewMockQuoteSource creates a mock whose expectations are asserted on cleanup.
func NewMockQuoteSource(t testingT) *MockQuoteSource {
	m := &MockQuoteSource{}
	register(&m.Mock, t)

	return m
}

// MockQuoteSourceExpecter sets expectations on MockQuoteSource.
type MockQuoteSourceExpecter struct {
	mock *mock.Mock
}

// EXPECT returns the expecter.
func (m *MockQuoteSource) EXPECT() *MockQuoteSourceExpecter {
	return &MockQuoteSourceExpecter{mock: &m.Mock}
}

// ListQuotes mocks ports.QuoteSource.
func (m *MockQuoteSource) ListQuotes(ctx context.Context, categories string) (domain.QuoteList, error) {
	ret := m.Called(ctx, categories)

	return arg[domain.QuoteList](ret, 0), ret.Error(1)
}

// ListQuotes expects a ListQuotes call.
func (e *MockQuoteSourceExpecter) ListQuotes(ctx, categories any) *mock.Call {
	return e.mock.On("ListQuotes", ctx, categories)
}

// Categories mocks ports.QuoteSource.
func (m *MockQuoteSource) Categories(ctx context.Context, onboarding bool) ([]domain.Category, error) {
	ret := m.Called(ctx, onboarding)

	return arg[[]domain.Category](ret, 0), ret.Error(1)
}

// Categories expects a Categories call.
func (e *MockQuoteSourceExpecter) Categories(ctx, onboarding any) *mock.Call {
	return e.mock.On("Categories", ctx, onboarding)
}

// CategoryGroups mocks ports.QuoteSource.
func (m *MockQuoteSource) CategoryGroups(ctx context.Context, onboarding bool) ([]domain.CategoryGroup, error) {
	ret := m.Called(ctx, onboarding)

	return arg[[]domain.CategoryGroup](ret, 0), ret.Error(1)
}

// CategoryGroups expects a CategoryGroups call.
func (e *MockQuoteSourceExpecter) CategoryGroups(ctx, onboarding any) *mock.Call {
	return e.mock.On("CategoryGroups", ctx, onboarding)
}

// MockSwipeRecorder is a mock of ports.SwipeRecorder.
type MockSwipeRecorder struct {
	mock.Mock
}

// NewMockSwipeRecorder creates a mock whose expectations are asserted on cleanup.
func NewMockSwipeRecorder(t testingT) *MockSwipeRecorder {
	m := &MockSwipeRecorder{}
	register(&m.Mock, t)

	return m
}

// MockSwipeRecorderExpecter sets expectations on MockSwipeRecorder.
type MockSwipeRecorderExpecter struct {
	mock *mock.Mock
}

// EXPECT returns the expecter.
func (m *MockSwipeRecorder) EXPECT() *MockSwipeRecorderExpecter {
	return &MockSwipeRecorderExpecter{mock: &m.Mock}
}

// RecordLike mocks ports.SwipeRecorder.
func (m *MockSwipeRecorder) RecordLike(ctx context.Context, id domain.QuoteID) error {
	return m.Called(ctx, id).Error(0)
}

// RecordLike expects a RecordLike call.
func (e *MockSwipeRecorderExpecter) RecordLike(ctx, id any) *mock.Call {
	return e.mock.On("RecordLike", ctx, id)
}

// RecordDislike mocks ports.SwipeRecorder.
func (m *MockSwipeRecorder) RecordDislike(ctx context.Context, id domain.QuoteID) error {
	return m.Called(ctx, id).Error(0)
}

// RecordDislike expects a RecordDislike call.
func (e *MockSwipeRecorderExpecter) RecordDislike(ctx, id any) *mock.Call {
	return e.mock.On("RecordDislike", ctx, id)
}
