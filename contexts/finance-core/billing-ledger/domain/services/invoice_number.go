package services

import (
	"fmt"
	"regexp"
	"time"
)

var invoiceNumberPattern = regexp.MustCompile(`^INV-\d{8}-\d{3}$`)

// InvoiceNumber renders INV-YYYYMMDD-NNN. suffix is reduced to three digits.
func InvoiceNumber(issuedOn time.Time, suffix int) string {
	if suffix < 0 {
		suffix = -suffix
	}
	return fmt.Sprintf("INV-%s-%03d", issuedOn.Format("20060102"), suffix%1000)
}

func IsInvoiceNumber(value string) bool {
	return invoiceNumberPattern.MatchString(value)
}
