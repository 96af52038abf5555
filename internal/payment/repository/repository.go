package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tair/payment-service/internal/payment/domain"
)

type GormPaymentRepository struct {
	db *gorm.DB
}

func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

func (r *GormPaymentRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Payment{}, &domain.ReconcileTask{})
}

func (r *GormPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *GormPaymentRepository) FindByID(ctx context.Context, id uint) (*domain.Payment, error) {
	var payment domain.Payment
	err := r.db.WithContext(ctx).First(&payment, id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *GormPaymentRepository) FindByTxnRef(ctx context.Context, txnRef string) (*domain.Payment, error) {
	var payment domain.Payment
	err := r.db.WithContext(ctx).Where("txn_ref = ?", txnRef).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *GormPaymentRepository) FindAll(ctx context.Context, limit, offset int) ([]domain.Payment, error) {
	var payments []domain.Payment
	err := r.db.WithContext(ctx).Limit(limit).Offset(offset).
		Order("created_at DESC").
		Find(&payments).Error
	return payments, err
}

// MarkTerminal performs the atomic PENDING-to-terminal transition keyed by
// txnRef. The status guard in the WHERE clause is what makes duplicate
// gateway callbacks safe: the second delivery matches zero rows.
func (r *GormPaymentRepository) MarkTerminal(ctx context.Context, txnRef string, status domain.Status, audit domain.CallbackAudit) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.Payment{}).
		Where("txn_ref = ? AND status = ?", txnRef, domain.StatusPending).
		Updates(map[string]interface{}{
			"status":         status,
			"response_code":  audit.ResponseCode,
			"gateway_txn_no": audit.GatewayTxnNo,
			"bank_code":      audit.BankCode,
			"card_type":      audit.CardType,
			"raw_callback":   audit.RawCallback,
		})
	return res.RowsAffected, res.Error
}

func (r *GormPaymentRepository) SetOrderID(ctx context.Context, paymentID uint, orderID string) error {
	return r.db.WithContext(ctx).Model(&domain.Payment{}).
		Where("id = ?", paymentID).
		Update("order_id", orderID).Error
}

// GormReconcileTaskRepository persists the reconciliation outbox.
type GormReconcileTaskRepository struct {
	db *gorm.DB
}

func NewGormReconcileTaskRepository(db *gorm.DB) *GormReconcileTaskRepository {
	return &GormReconcileTaskRepository{db: db}
}

func (r *GormReconcileTaskRepository) Enqueue(ctx context.Context, task *domain.ReconcileTask) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *GormReconcileTaskRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]domain.ReconcileTask, error) {
	var tasks []domain.ReconcileTask
	err := r.db.WithContext(ctx).
		Where("state = ? AND next_run_at <= ?", domain.TaskPending, now).
		Order("next_run_at ASC").
		Limit(limit).
		Find(&tasks).Error
	return tasks, err
}

func (r *GormReconcileTaskRepository) Update(ctx context.Context, task *domain.ReconcileTask) error {
	return r.db.WithContext(ctx).Save(task).Error
}
