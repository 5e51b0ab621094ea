package domain

type OrderStatusType string

// Статусы заказа. Заказ двигается только вперед:
// pending_payment -> paid -> converting -> withdrawal_pending -> withdrawal_completed,
// из converting и withdrawal_pending возможен переход в withdrawal_failed.
const (
	OrderStatusPendingPayment      OrderStatusType = "pending_payment"
	OrderStatusPaid                OrderStatusType = "paid"
	OrderStatusConverting          OrderStatusType = "converting"
	OrderStatusWithdrawalPending   OrderStatusType = "withdrawal_pending"
	OrderStatusWithdrawalCompleted OrderStatusType = "withdrawal_completed"
	OrderStatusWithdrawalFailed    OrderStatusType = "withdrawal_failed"
)

type PaymentStatusType string

const (
	PaymentStatusPending  PaymentStatusType = "pending"
	PaymentStatusReceived PaymentStatusType = "received"
	PaymentStatusExpired  PaymentStatusType = "expired"
)

type WithdrawalStatusType string

const (
	WithdrawalStatusPending       WithdrawalStatusType = "pending"
	WithdrawalStatusPayoutCreated WithdrawalStatusType = "payout_created"
	WithdrawalStatusExecuted      WithdrawalStatusType = "executed"
	WithdrawalStatusCompleted     WithdrawalStatusType = "completed"
	WithdrawalStatusFailed        WithdrawalStatusType = "failed"
	WithdrawalStatusRefunded      WithdrawalStatusType = "refunded"
)
