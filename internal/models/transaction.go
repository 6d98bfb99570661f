package models

// NotAvailable is the sentinel for text fields that could not be extracted.
const NotAvailable = "N/A"

// Transaction represents a single statement line item.
type Transaction struct {
	Date        string  `json:"date"` // issuer format, not normalized
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    *string `json:"category"`
}

// StatementRecord is the final result of parsing one statement.
type StatementRecord struct {
	Issuer          string        `json:"issuer"`
	AccountLastFour string        `json:"cardLastFour"`
	BillingCycle    string        `json:"billingCycle"`
	PaymentDueDate  string        `json:"paymentDueDate"`
	TotalBalance    float64       `json:"totalBalance"`
	MinimumPayment  *float64      `json:"minimumPayment"`
	Transactions    []Transaction `json:"transactions"`
}

// NewStatementRecord returns a record with every field at its sentinel value.
func NewStatementRecord(issuer string) StatementRecord {
	return StatementRecord{
		Issuer:          issuer,
		AccountLastFour: NotAvailable,
		BillingCycle:    NotAvailable,
		PaymentDueDate:  NotAvailable,
		Transactions:    []Transaction{},
	}
}

// MinimumPaymentValue returns the minimum payment or 0 when it is unset.
func (r StatementRecord) MinimumPaymentValue() float64 {
	if r.MinimumPayment == nil {
		return 0
	}
	return *r.MinimumPayment
}
