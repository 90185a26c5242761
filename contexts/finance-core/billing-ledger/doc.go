// Package billingledger owns invoices and the payments recorded against them.
//
// Layering:
// - domain: invoice/payment entities, invoice numbering, settlement math, errors
// - application: billing commands and queries, the optional overdue sweep worker
// - ports: repositories, client directory, access policy, change publisher
// - adapters: memory and postgres repositories, HTTP handler
// - transport: module-private DTOs for HTTP contracts
//
// Recording a payment is two independent writes: the payment row, then the
// invoice status. A failure between them leaves the payment recorded and the
// invoice unchanged.
package billingledger
