package report

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodFilter is a half-open reporting window [From, To)
type PeriodFilter struct {
	From time.Time `form:"from" time_format:"2006-01-02" binding:"required"`
	To   time.Time `form:"to" time_format:"2006-01-02" binding:"required"`
}

// AgingFilter scopes a receivables aging report
type AgingFilter struct {
	AsOf *time.Time `form:"as_of" time_format:"2006-01-02"`
}

// ExpenseLine is one category of the expense section
type ExpenseLine struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// ProfitAndLoss is the profit and loss statement for a period
type ProfitAndLoss struct {
	From          time.Time       `json:"from"`
	To            time.Time       `json:"to"`
	InvoiceCount  int             `json:"invoice_count"`
	Revenue       decimal.Decimal `json:"revenue"`
	Refunds       decimal.Decimal `json:"refunds"`
	NetRevenue    decimal.Decimal `json:"net_revenue"`
	CostOfGoods   decimal.Decimal `json:"cost_of_goods"`
	GrossProfit   decimal.Decimal `json:"gross_profit"`
	Expenses      []ExpenseLine   `json:"expenses"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	NetProfit     decimal.Decimal `json:"net_profit"`
	GeneratedAt   time.Time       `json:"generated_at"`
}

// AgingBucket summarises open invoices inside one age band
type AgingBucket struct {
	Bucket       string          `json:"bucket"`
	InvoiceCount int             `json:"invoice_count"`
	Amount       decimal.Decimal `json:"amount"`
}

// AgingInvoice is one open invoice in the aging detail
type AgingInvoice struct {
	Number       string          `json:"number"`
	CustomerName string          `json:"customer_name"`
	Days         int             `json:"days"`
	Bucket       string          `json:"bucket"`
	AmountDue    decimal.Decimal `json:"amount_due"`
}

// ReceivablesAging is the aging report as of a date
type ReceivablesAging struct {
	AsOf     time.Time       `json:"as_of"`
	Buckets  []AgingBucket   `json:"buckets"`
	Total    decimal.Decimal `json:"total"`
	Invoices []AgingInvoice  `json:"invoices"`
}

// ExportResponse points at an exported report file
type ExportResponse struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
