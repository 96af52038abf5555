package command

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tair/payment-service/internal/payment/domain"
)

// fakePaymentRepository is an in-memory PaymentRepository for tests.
type fakePaymentRepository struct {
	payments    map[string]*domain.Payment
	nextID      uint
	createErrs  []error // consumed one per Create call
	createCalls int
}

func newFakePaymentRepository() *fakePaymentRepository {
	return &fakePaymentRepository{payments: make(map[string]*domain.Payment)}
}

func (r *fakePaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	r.createCalls++
	if len(r.createErrs) > 0 {
		err := r.createErrs[0]
		r.createErrs = r.createErrs[1:]
		if err != nil {
			return err
		}
	}
	if _, exists := r.payments[payment.TxnRef]; exists {
		return gorm.ErrDuplicatedKey
	}
	r.nextID++
	payment.ID = r.nextID
	copied := *payment
	r.payments[payment.TxnRef] = &copied
	return nil
}

func (r *fakePaymentRepository) FindByID(ctx context.Context, id uint) (*domain.Payment, error) {
	for _, p := range r.payments {
		if p.ID == id {
			copied := *p
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakePaymentRepository) FindByTxnRef(ctx context.Context, txnRef string) (*domain.Payment, error) {
	p, ok := r.payments[txnRef]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *fakePaymentRepository) FindAll(ctx context.Context, limit, offset int) ([]domain.Payment, error) {
	var out []domain.Payment
	for _, p := range r.payments {
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakePaymentRepository) MarkTerminal(ctx context.Context, txnRef string, status domain.Status, audit domain.CallbackAudit) (int64, error) {
	p, ok := r.payments[txnRef]
	if !ok || p.Status != domain.StatusPending {
		return 0, nil
	}
	p.Status = status
	p.ResponseCode = audit.ResponseCode
	p.GatewayTxnNo = audit.GatewayTxnNo
	p.BankCode = audit.BankCode
	p.CardType = audit.CardType
	p.RawCallback = audit.RawCallback
	return 1, nil
}

func (r *fakePaymentRepository) SetOrderID(ctx context.Context, paymentID uint, orderID string) error {
	for _, p := range r.payments {
		if p.ID == paymentID {
			p.OrderID = orderID
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// fakeOrderClient records order-service calls and can be told to fail.
type fakeOrderClient struct {
	updateCalls []string // "orderID:status"
	createCalls int
	createdID   string
	updateErr   error
	createErr   error
}

func (c *fakeOrderClient) UpdatePaymentStatus(ctx context.Context, orderID, status string) error {
	c.updateCalls = append(c.updateCalls, fmt.Sprintf("%s:%s", orderID, status))
	return c.updateErr
}

func (c *fakeOrderClient) CreateOrderFromPayment(ctx context.Context, data *domain.OrderData) (string, error) {
	c.createCalls++
	if c.createErr != nil {
		return "", c.createErr
	}
	if c.createdID == "" {
		c.createdID = "order-1"
	}
	return c.createdID, nil
}

// fakeTaskRepository is an in-memory reconcile outbox.
type fakeTaskRepository struct {
	tasks []*domain.ReconcileTask
}

func (r *fakeTaskRepository) Enqueue(ctx context.Context, task *domain.ReconcileTask) error {
	copied := *task
	r.tasks = append(r.tasks, &copied)
	return nil
}

func (r *fakeTaskRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]domain.ReconcileTask, error) {
	var due []domain.ReconcileTask
	for _, t := range r.tasks {
		if t.State == domain.TaskPending && !t.NextRunAt.After(now) {
			due = append(due, *t)
			if len(due) == limit {
				break
			}
		}
	}
	return due, nil
}

func (r *fakeTaskRepository) Update(ctx context.Context, task *domain.ReconcileTask) error {
	for i, t := range r.tasks {
		if t.ID == task.ID {
			copied := *task
			r.tasks[i] = &copied
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}
