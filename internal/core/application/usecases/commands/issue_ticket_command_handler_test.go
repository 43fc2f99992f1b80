package commands_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ticketing/internal/core/application/usecases/commands"
	"ticketing/internal/core/domain/model/kernel"
	"ticketing/internal/core/domain/model/order"
	"ticketing/internal/core/ports"
	"ticketing/internal/pkg/clock"
	"ticketing/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateStatusFrom(ctx context.Context, o *order.Order, expected order.Status) error {
	args := m.Called(ctx, o, expected)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByNumber(_ context.Context, _ string) (*order.Order, error) {
	return nil, errors.New("not implemented in mock")
}

func (m *MockOrderRepository) GetAllInStatusCreatedBefore(
	ctx context.Context, status order.Status, cutoff time.Time,
) ([]*order.Order, error) {
	args := m.Called(ctx, status, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockOrderUoW struct{ mock.Mock }

func (m *MockOrderUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockAirlineGateway struct{ mock.Mock }

func (m *MockAirlineGateway) IssueTicket(ctx context.Context, orderID kernel.UUID) (string, error) {
	args := m.Called(ctx, orderID)
	return args.String(0), args.Error(1)
}

// fakePendingStore is a plain in-memory pending set. A real map beats a mock
// here: the tests care about resulting membership, not call sequences.
type fakePendingStore struct {
	mu  sync.Mutex
	ids map[kernel.UUID]struct{}
}

func newFakePendingStore(ids ...kernel.UUID) *fakePendingStore {
	s := &fakePendingStore{ids: make(map[kernel.UUID]struct{})}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

func (s *fakePendingStore) Add(orderID kernel.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids[orderID] = struct{}{}
}

func (s *fakePendingStore) Remove(orderID kernel.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ids, orderID)
}

func (s *fakePendingStore) Contains(orderID kernel.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[orderID]
	return ok
}

func (s *fakePendingStore) Snapshot() []kernel.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]kernel.UUID, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	return out
}

var testClock = clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

// orderInStatus restores an order with the given id at the given status.
func orderInStatus(t *testing.T, id kernel.UUID, status order.Status) *order.Order {
	t.Helper()

	ticketNumber := ""
	if status == order.Ticketed {
		ticketNumber = "TKT-EXISTING"
	}

	price, err := kernel.MoneyFromCents(19900)
	require.NoError(t, err)

	now := testClock.Now()
	ord, err := order.RestoreOrder(
		id, "ORD-TEST-1", kernel.NewUUID(), nil, price, status, ticketNumber, now, now)
	require.NoError(t, err)
	return ord
}

func TestIssueTicketCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	cmd, _ := commands.NewIssueTicketCommand(orderID)

	markRepo := new(MockOrderRepository)
	markUoW := new(MockOrderUoW)
	recordRepo := new(MockOrderRepository)
	recordUoW := new(MockOrderUoW)
	gateway := new(MockAirlineGateway)
	pending := newFakePendingStore()

	mock.InOrder(
		markUoW.On("Begin", mock.Anything).Return(nil).Once(),
		markUoW.On("OrderRepository").Return(markRepo).Once(),
		markRepo.On("Get", mock.Anything, orderID).Return(orderInStatus(t, orderID, order.Paid), nil).Once(),
		markRepo.On("UpdateStatusFrom", mock.Anything, mock.AnythingOfType("*order.Order"), order.Paid).
			Return(nil).Once(),
		markUoW.On("Commit", mock.Anything).Return(nil).Once(),
		markUoW.On("Rollback", mock.Anything).Return(errors.New("no active transaction")).Once(),

		gateway.On("IssueTicket", mock.Anything, orderID).Return("TKT-123", nil).Once(),

		recordUoW.On("Begin", mock.Anything).Return(nil).Once(),
		recordUoW.On("OrderRepository").Return(recordRepo).Once(),
		recordRepo.On("Get", mock.Anything, orderID).
			Return(orderInStatus(t, orderID, order.TicketingInProgress), nil).Once(),
		recordRepo.On("Update", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil).Once(),
		recordUoW.On("Commit", mock.Anything).Return(nil).Once(),
		recordUoW.On("Rollback", mock.Anything).Return(errors.New("no active transaction")).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(markUoW).Once()
	factory.On("Create").Return(recordUoW).Once()

	h := commands.NewIssueTicketCommandHandler(factory, gateway, pending, testClock)
	result, err := h.Handle(ctx, cmd)
	require.NoError(t, err)
	assert.True(t, result.OrderID.IsEqual(orderID))
	assert.Equal(t, "TKT-123", result.TicketNumber)
	assert.False(t, pending.Contains(orderID))

	markRepo.AssertExpectations(t)
	markUoW.AssertExpectations(t)
	recordRepo.AssertExpectations(t)
	recordUoW.AssertExpectations(t)
	gateway.AssertExpectations(t)
	factory.AssertExpectations(t)
}

func TestIssueTicketCommandHandler_Handle_GatewayFailure_QueuesRetry(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	cmd, _ := commands.NewIssueTicketCommand(orderID)

	apiErr := &ports.AirlineAPIError{OrderID: orderID, Message: "insufficient seats"}

	markRepo := new(MockOrderRepository)
	markUoW := new(MockOrderUoW)
	failRepo := new(MockOrderRepository)
	failUoW := new(MockOrderUoW)
	gateway := new(MockAirlineGateway)
	pending := newFakePendingStore()

	var failedOrder *order.Order
	mock.InOrder(
		markUoW.On("Begin", mock.Anything).Return(nil).Once(),
		markUoW.On("OrderRepository").Return(markRepo).Once(),
		markRepo.On("Get", mock.Anything, orderID).Return(orderInStatus(t, orderID, order.Paid), nil).Once(),
		markRepo.On("UpdateStatusFrom", mock.Anything, mock.AnythingOfType("*order.Order"), order.Paid).
			Return(nil).Once(),
		markUoW.On("Commit", mock.Anything).Return(nil).Once(),
		markUoW.On("Rollback", mock.Anything).Return(errors.New("no active transaction")).Once(),

		gateway.On("IssueTicket", mock.Anything, orderID).Return("", apiErr).Once(),

		failUoW.On("Begin", mock.Anything).Return(nil).Once(),
		failUoW.On("OrderRepository").Return(failRepo).Once(),
		failRepo.On("Get", mock.Anything, orderID).
			Return(orderInStatus(t, orderID, order.TicketingInProgress), nil).Once(),
		failRepo.On("Update", mock.Anything, mock.AnythingOfType("*order.Order")).
			Run(func(args mock.Arguments) {
				failedOrder = args.Get(1).(*order.Order)
			}).Return(nil).Once(),
		failUoW.On("Commit", mock.Anything).Return(nil).Once(),
		failUoW.On("Rollback", mock.Anything).Return(errors.New("no active transaction")).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(markUoW).Once()
	factory.On("Create").Return(failUoW).Once()

	h := commands.NewIssueTicketCommandHandler(factory, gateway, pending, testClock)
	_, err := h.Handle(ctx, cmd)
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrAirlineAPI)

	require.NotNil(t, failedOrder)
	assert.Equal(t, order.TicketingFailed, failedOrder.Status())
	assert.True(t, pending.Contains(orderID), "failed order must be queued for retry")

	markUoW.AssertExpectations(t)
	failUoW.AssertExpectations(t)
	gateway.AssertExpectations(t)
	factory.AssertExpectations(t)
}

func TestIssueTicketCommandHandler_Handle_UnpaidOrder_InvalidState(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	cmd, _ := commands.NewIssueTicketCommand(orderID)

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	gateway := new(MockAirlineGateway)
	pending := newFakePendingStore()

	mock.InOrder(
		uow.On("Begin", mock.Anything).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("Get", mock.Anything, orderID).
			Return(orderInStatus(t, orderID, order.PendingPayment), nil).Once(),
		uow.On("Rollback", mock.Anything).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewIssueTicketCommandHandler(factory, gateway, pending, testClock)
	_, err := h.Handle(ctx, cmd)
	require.Error(t, err)
	assert.ErrorIs(t, err, commands.ErrInvalidOrderState)

	// The gateway must never be called for an unpaid order.
	gateway.AssertNotCalled(t, "IssueTicket", mock.Anything, mock.Anything)
	assert.False(t, pending.Contains(orderID))

	repo.AssertExpectations(t)
	uow.AssertExpectations(t)
	factory.AssertExpectations(t)
}

func TestIssueTicketCommandHandler_Handle_TerminalOrder_InvalidState(t *testing.T) {
	ctx := t.Context()

	for _, status := range []order.Status{order.Ticketed, order.Cancelled} {
		t.Run(status.String(), func(t *testing.T) {
			orderID := kernel.NewUUID()
			cmd, _ := commands.NewIssueTicketCommand(orderID)

			repo := new(MockOrderRepository)
			uow := new(MockOrderUoW)
			gateway := new(MockAirlineGateway)

			mock.InOrder(
				uow.On("Begin", mock.Anything).Return(nil).Once(),
				uow.On("OrderRepository").Return(repo).Once(),
				repo.On("Get", mock.Anything, orderID).
					Return(orderInStatus(t, orderID, status), nil).Once(),
				uow.On("Rollback", mock.Anything).Return(nil).Once(),
			)

			factory := new(MockOrderUoWFactory)
			factory.On("Create").Return(uow).Once()

			h := commands.NewIssueTicketCommandHandler(factory, gateway, newFakePendingStore(), testClock)
			_, err := h.Handle(ctx, cmd)
			require.Error(t, err)
			assert.ErrorIs(t, err, commands.ErrInvalidOrderState)
			gateway.AssertNotCalled(t, "IssueTicket", mock.Anything, mock.Anything)
		})
	}
}

func TestIssueTicketCommandHandler_Handle_ConcurrentAdvance_LosesRace(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	cmd, _ := commands.NewIssueTicketCommand(orderID)

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)
	gateway := new(MockAirlineGateway)

	mock.InOrder(
		uow.On("Begin", mock.Anything).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("Get", mock.Anything, orderID).Return(orderInStatus(t, orderID, order.Paid), nil).Once(),
		repo.On("UpdateStatusFrom", mock.Anything, mock.AnythingOfType("*order.Order"), order.Paid).
			Return(ports.ErrOrderStatusConflict).Once(),
		uow.On("Rollback", mock.Anything).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewIssueTicketCommandHandler(factory, gateway, newFakePendingStore(), testClock)
	_, err := h.Handle(ctx, cmd)
	require.Error(t, err)
	assert.ErrorIs(t, err, commands.ErrInvalidOrderState)

	// Losing the race never reaches the airline.
	gateway.AssertNotCalled(t, "IssueTicket", mock.Anything, mock.Anything)
}

func TestIssueTicketCommandHandler_Handle_OrderNotFound(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	cmd, _ := commands.NewIssueTicketCommand(orderID)

	repo := new(MockOrderRepository)
	uow := new(MockOrderUoW)

	mock.InOrder(
		uow.On("Begin", mock.Anything).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("Get", mock.Anything, orderID).
			Return(nil, errs.NewObjectNotFoundError("order", orderID.String())).Once(),
		uow.On("Rollback", mock.Anything).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewIssueTicketCommandHandler(factory, new(MockAirlineGateway), newFakePendingStore(), testClock)
	_, err := h.Handle(ctx, cmd)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrObjectNotFound)
}

func TestIssueTicketCommandHandler_Handle_ValidationError(t *testing.T) {
	ctx := t.Context()
	cmd := commands.IssueTicketCommand{} // not constructed properly

	h := commands.NewIssueTicketCommandHandler(
		new(MockOrderUoWFactory), new(MockAirlineGateway), newFakePendingStore(), testClock)
	_, err := h.Handle(ctx, cmd)
	require.Error(t, err)
}

func TestIssueTicketCommandHandler_Handle_CancelledCall_StillRecordsFailure(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	cmd, _ := commands.NewIssueTicketCommand(orderID)

	markRepo := new(MockOrderRepository)
	markUoW := new(MockOrderUoW)
	failRepo := new(MockOrderRepository)
	failUoW := new(MockOrderUoW)
	gateway := new(MockAirlineGateway)
	pending := newFakePendingStore()

	mock.InOrder(
		markUoW.On("Begin", mock.Anything).Return(nil).Once(),
		markUoW.On("OrderRepository").Return(markRepo).Once(),
		markRepo.On("Get", mock.Anything, orderID).Return(orderInStatus(t, orderID, order.Paid), nil).Once(),
		markRepo.On("UpdateStatusFrom", mock.Anything, mock.AnythingOfType("*order.Order"), order.Paid).
			Return(nil).Once(),
		markUoW.On("Commit", mock.Anything).Return(nil).Once(),
		markUoW.On("Rollback", mock.Anything).Return(errors.New("no active transaction")).Once(),

		// Caller gave up mid-delay.
		gateway.On("IssueTicket", mock.Anything, orderID).Return("", context.Canceled).Once(),

		failUoW.On("Begin", mock.Anything).Return(nil).Once(),
		failUoW.On("OrderRepository").Return(failRepo).Once(),
		failRepo.On("Get", mock.Anything, orderID).
			Return(orderInStatus(t, orderID, order.TicketingInProgress), nil).Once(),
		failRepo.On("Update", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil).Once(),
		failUoW.On("Commit", mock.Anything).Return(nil).Once(),
		failUoW.On("Rollback", mock.Anything).Return(errors.New("no active transaction")).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(markUoW).Once()
	factory.On("Create").Return(failUoW).Once()

	h := commands.NewIssueTicketCommandHandler(factory, gateway, pending, testClock)
	_, err := h.Handle(ctx, cmd)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, pending.Contains(orderID),
		"an attempt cut short by cancellation must still land in the retry set")

	failUoW.AssertExpectations(t)
	factory.AssertExpectations(t)
}
