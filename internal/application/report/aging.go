package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/retailops/backoffice/internal/domain/invoice"
)

// Aging bucket labels in display order
const (
	Bucket0To30  = "0-30"
	Bucket31To60 = "31-60"
	Bucket61To90 = "61-90"
	BucketOver90 = "90+"
)

var bucketOrder = []string{Bucket0To30, Bucket31To60, Bucket61To90, BucketOver90}

// BucketFor returns the aging band for an invoice age in days
func BucketFor(days int) string {
	switch {
	case days <= 30:
		return Bucket0To30
	case days <= 60:
		return Bucket31To60
	case days <= 90:
		return Bucket61To90
	default:
		return BucketOver90
	}
}

// BuildAging buckets open invoices by age. Cancelled and settled invoices are skipped.
func BuildAging(invoices []invoice.Invoice, asOf time.Time) ReceivablesAging {
	sums := make(map[string]*AgingBucket, len(bucketOrder))
	for _, b := range bucketOrder {
		sums[b] = &AgingBucket{Bucket: b, Amount: decimal.Zero}
	}
	out := ReceivablesAging{AsOf: asOf, Total: decimal.Zero, Invoices: make([]AgingInvoice, 0)}

	for i := range invoices {
		inv := &invoices[i]
		if inv.IsCancelled() {
			continue
		}
		due := inv.Totals().AmountDue
		if !due.IsPositive() {
			continue
		}
		days := inv.DaysOutstanding(asOf)
		bucket := BucketFor(days)
		sums[bucket].Amount = sums[bucket].Amount.Add(due)
		sums[bucket].InvoiceCount++
		out.Total = out.Total.Add(due)
		out.Invoices = append(out.Invoices, AgingInvoice{
			Number:       inv.Number,
			CustomerName: inv.Customer.Name,
			Days:         days,
			Bucket:       bucket,
			AmountDue:    due,
		})
	}

	out.Buckets = make([]AgingBucket, 0, len(bucketOrder))
	for _, b := range bucketOrder {
		out.Buckets = append(out.Buckets, *sums[b])
	}
	return out
}
