package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/jsamuelsen/quoteswipe/internal/domain"
)

// MockContentSource is a mock of ports.ContentSource.
type MockContentSource struct {
	mock.Mock
}

// NewMockContentSource creates a mock whose expectations are asserted on cleanup.
func NewMockContentSource(t testingT) *MockContentSource {
	m := &MockContentSource{}
	register(&m.Mock, t)

	return m
}

// MockContentSourceExpecter sets expectations on MockContentSource.
type MockContentSourceExpecter struct {
	mock *mock.Mock
}

// EXPECT returns the expecter.
func (m *MockContentSource) EXPECT() *MockContentSourceExpecter {
	return &MockContentSourceExpecter{mock: &m.Mock}
}

// Stats mocks ports.ContentSource.
func (m *MockContentSource) Stats(ctx context.Context) (*domain.Stats, error) {
	ret := m.Called(ctx)

	return arg[*domain.Stats](ret, 0), ret.Error(1)
}

// Stats expects a Stats call.
func (e *MockContentSourceExpecter) Stats(ctx any) *mock.Call {
	return e.mock.On("Stats", ctx)
}

// Reviews mocks ports.ContentSource.
func (m *MockContentSource) Reviews(ctx context.Context) ([]domain.Review, error) {
	ret := m.Called(ctx)

	return arg[[]domain.Review](ret, 0), ret.Error(1)
}

// Reviews expects a Reviews call.
func (e *MockContentSourceExpecter) Reviews(ctx any) *mock.Call {
	return e.mock.On("Reviews", ctx)
}

// Translate mocks ports.ContentSource.
func (m *MockContentSource) Translate(ctx context.Context, text, target, source string) (*domain.Translation, error) {
	ret := m.Called(ctx, text, target, source)

	return arg[*domain.Translation](ret, 0), ret.Error(1)
}

// Translate expects a Translate call.
func (e *MockContentSourceExpecter) Translate(ctx, text, target, source any) *mock.Call {
	return e.mock.On("Translate", ctx, text, target, source)
}

// Track mocks ports.ContentSource.
func (m *MockContentSource) Track(ctx context.Context, info domain.VisitorInfo) error {
	return m.Called(ctx, info).Error(0)
}

// Track expects a Track call.
func (e *MockContentSourceExpecter) Track(ctx, info any) *mock.Call {
	return e.mock.On("Track", ctx, info)
}
