package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/jsamuelsen/quoteswipe/internal/domain"
)

// MockAuthProvider is a mock of ports.AuthProvider.
type MockAuthProvider struct {
	mock.Mock
}

// NewMockAuthProvider creates a mock whose expectations are asserted on cleanup.
func NewMockAuthProvider(t testingT) *MockAuthProvider {
	m := &MockAuthProvider{}
	register(&m.Mock, t)

	return m
}

// MockAuthProviderExpecter sets expectations on MockAuthProvider.
type MockAuthProviderExpecter struct {
	mock *mock.Mock
}

// EXPECT returns the expecter.
func (m *MockAuthProvider) EXPECT() *MockAuthProviderExpecter {
	return &MockAuthProviderExpecter{mock: &m.Mock}
}

// Login mocks ports.AuthProvider.
func (m *MockAuthProvider) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	ret := m.Called(ctx, email, password)

	return arg[*domain.AuthResult](ret, 0), ret.Error(1)
}

// Login expects a Login call.
func (e *MockAuthProviderExpecter) Login(ctx, email, password any) *mock.Call {
	return e.mock.On("Login", ctx, email, password)
}

// Register mocks ports.AuthProvider.
func (m *MockAuthProvider) Register(ctx context.Context, name, email, password string) (*domain.AuthResult, error) {
	ret := m.Called(ctx, name, email, password)

	return arg[*domain.AuthResult](ret, 0), ret.Error(1)
}

// Register expects a Register call.
func (e *MockAuthProviderExpecter) Register(ctx, name, email, password any) *mock.Call {
	return e.mock.On("Register", ctx, name, email, password)
}

// Google mocks ports.AuthProvider.
func (m *MockAuthProvider) Google(ctx context.Context, credential string) (*domain.AuthResult, error) {
	ret := m.Called(ctx, credential)

	return arg[*domain.AuthResult](ret, 0), ret.Error(1)
}

// Google expects a Google call.
func (e *MockAuthProviderExpecter) Google(ctx, credential any) *mock.Call {
	return e.mock.On("Google", ctx, credential)
}

// Me mocks ports.AuthProvider.
func (m *MockAuthProvider) Me(ctx context.Context) (*domain.User, error) {
	ret := m.Called(ctx)

	return arg[*domain.User](ret, 0), ret.Error(1)
}

// Me expects a Me call.
func (e *MockAuthProviderExpecter) Me(ctx any) *mock.Call {
	return e.mock.On("Me", ctx)
}

// Logout mocks ports.AuthProvider.
func (m *MockAuthProvider) Logout(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// Logout expects a Logout call.
func (e *MockAuthProviderExpecter) Logout(ctx any) *mock.Call {
	return e.mock.On("Logout", ctx)
}

// ForgotPassword mocks ports.AuthProvider.
func (m *MockAuthProvider) ForgotPassword(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

// ForgotPassword expects a ForgotPassword call.
func (e *MockAuthProviderExpecter) ForgotPassword(ctx, email any) *mock.Call {
	return e.mock.On("ForgotPassword", ctx, email)
}

// UpdatePassword mocks ports.AuthProvider.
func (m *MockAuthProvider) UpdatePassword(ctx context.Context, password string) error {
	return m.Called(ctx, password).Error(0)
}

// UpdatePassword expects an UpdatePassword call.
func (e *MockAuthProviderExpecter) UpdatePassword(ctx, password any) *mock.Call {
	return e.mock.On("UpdatePassword", ctx, password)
}

// MockUserDataStore is a mock of ports.UserDataStore.
type MockUserDataStore struct {
	mock.Mock
}

// NewMockUserDataStore creates a mock whose expectations are asserted on cleanup.
func NewMockUserDataStore(t testingT) *MockUserDataStore {
	m := &MockUserDataStore{}
	register(&m.Mock, t)

	return m
}

// MockUserDataStoreExpecter sets expectations on MockUserDataStore.
type MockUserDataStoreExpecter struct {
	mock *mock.Mock
}

// EXPECT returns the expecter.
func (m *MockUserDataStore) EXPECT() *MockUserDataStoreExpecter {
	return &MockUserDataStoreExpecter{mock: &m.Mock}
}

// Preferences mocks ports.UserDataStore.
func (m *MockUserDataStore) Preferences(ctx context.Context) (*domain.Preferences, error) {
	ret := m.Called(ctx)

	return arg[*domain.Preferences](ret, 0), ret.Error(1)
}

// Preferences expects a Preferences call.
func (e *MockUserDataStoreExpecter) Preferences(ctx any) *mock.Call {
	return e.mock.On("Preferences", ctx)
}

// SavePreferences mocks ports.UserDataStore.
func (m *MockUserDataStore) SavePreferences(ctx context.Context, prefs domain.Preferences) error {
	return m.Called(ctx, prefs).Error(0)
}

// SavePreferences expects a SavePreferences call.
func (e *MockUserDataStoreExpecter) SavePreferences(ctx, prefs any) *mock.Call {
	return e.mock.On("SavePreferences", ctx, prefs)
}

// Subscription mocks ports.UserDataStore.
func (m *MockUserDataStore) Subscription(ctx context.Context) (*domain.Subscription, error) {
	ret := m.Called(ctx)

	return arg[*domain.Subscription](ret, 0), ret.Error(1)
}

// Subscription expects a Subscription call.
func (e *MockUserDataStoreExpecter) Subscription(ctx any) *mock.Call {
	return e.mock.On("Subscription", ctx)
}
