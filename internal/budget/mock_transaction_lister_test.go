package budget

import (
	"context"

	"github.com/stretchr/testify/mock"

	"bookkeeper/internal/ledger"
	"bookkeeper/internal/models"
)

// MockTransactionLister is a mock type for the TransactionLister type
type MockTransactionLister struct {
	mock.Mock
}

// List provides a mock function with given fields: ctx, sess, filter
func (_m *MockTransactionLister) List(ctx context.Context, sess models.Session, filter ledger.Filter) ([]models.Transaction, error) {
	ret := _m.Called(ctx, sess, filter)

	var r0 []models.Transaction
	if rf, ok := ret.Get(0).(func(context.Context, models.Session, ledger.Filter) []models.Transaction); ok {
		r0 = rf(ctx, sess, filter)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.Transaction)
	}

	return r0, ret.Error(1)
}

// NewMockTransactionLister creates a new instance of MockTransactionLister. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockTransactionLister(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockTransactionLister {
	m := &MockTransactionLister{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
