// Package mocks provides testify mocks for the ports interfaces.
//
// Each mock exposes EXPECT() for typed-looking expectation setup:
//
//	m := mocks.NewMockQuoteSource(t)
//	m.EXPECT().ListQuotes(mock.Anything, "love").Return(quotes, nil)
package mocks

import (
	"github.com/stretchr/testify/mock"
)

// testingT is the subset of *testing.T the constructors need.
type testingT interface {
	mock.TestingT
	Cleanup(func())
}

func register(m *mock.Mock, t testingT) {
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
}

// arg returns the i-th return value as T, or the zero value when nil.
func arg[T any](ret mock.Arguments, i int) T {
	var zero T

	v := ret.Get(i)
	if v == nil {
		return zero
	}

	return v.(T)
}
