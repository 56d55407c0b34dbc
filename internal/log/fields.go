package log

// Shared field names so log lines stay greppable across components.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldYear       = "year"
	FieldMonth      = "month"

	FieldResidentID         = "resident_id"
	FieldContributionTypeID = "contribution_type_id"
	FieldExpenseID          = "expense_id"
	FieldPaymentID          = "payment_id"
	FieldAmountCents        = "amount_cents"
	FieldDecision           = "decision"
	FieldUsername           = "username"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentLedger  = "ledger"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentAuth    = "auth"
)
