// Package books defines the accounting domain types used across ledgersync:
// parent documents (invoices, bills, estimates, purchase orders, vendor
// credits, sales receipts), their line items, and journal entries. Every
// money and quantity field is a decimal.Decimal; identifiers are backend
// assigned strings, empty until the record is persisted.
package books

// DocumentType identifies the kind of a parent document.
type DocumentType string

// Document types supported by the backend.
const (
	DocumentInvoice       DocumentType = "invoice"
	DocumentBill          DocumentType = "bill"
	DocumentEstimate      DocumentType = "estimate"
	DocumentPurchaseOrder DocumentType = "purchase_order"
	DocumentVendorCredit  DocumentType = "vendor_credit"
	DocumentSalesReceipt  DocumentType = "sales_receipt"
)

// documentCollections maps document types to their backend collection names.
var documentCollections = map[DocumentType]string{
	DocumentInvoice:       "invoices",
	DocumentBill:          "bills",
	DocumentEstimate:      "estimates",
	DocumentPurchaseOrder: "purchase_orders",
	DocumentVendorCredit:  "vendor_credits",
	DocumentSalesReceipt:  "sales_receipts",
}

// lineCollections maps document types to their child line collection names.
var lineCollections = map[DocumentType]string{
	DocumentInvoice:       "invoice_lines",
	DocumentBill:          "bill_lines",
	DocumentEstimate:      "estimate_lines",
	DocumentPurchaseOrder: "purchase_order_lines",
	DocumentVendorCredit:  "vendor_credit_lines",
	DocumentSalesReceipt:  "sales_receipt_lines",
}

// Valid reports whether the document type is known.
func (t DocumentType) Valid() bool {
	_, ok := documentCollections[t]
	return ok
}

// Collection returns the backend collection name for the parent document.
func (t DocumentType) Collection() string {
	return documentCollections[t]
}

// LineCollection returns the backend collection name for the child lines.
func (t DocumentType) LineCollection() string {
	return lineCollections[t]
}

// DocumentTypes returns all supported document types.
func DocumentTypes() []DocumentType {
	return []DocumentType{
		DocumentInvoice,
		DocumentBill,
		DocumentEstimate,
		DocumentPurchaseOrder,
		DocumentVendorCredit,
		DocumentSalesReceipt,
	}
}

// Status is a document lifecycle status. Transitions are plain assignments;
// the backend owns any further enforcement.
type Status string

// Document statuses.
const (
	StatusDraft     Status = "draft"
	StatusConfirmed Status = "confirmed"
	StatusPartial   Status = "partial_paid"
	StatusPaid      Status = "paid"
	StatusVoid      Status = "void"
)

// Valid reports whether the status is a known value.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusConfirmed, StatusPartial, StatusPaid, StatusVoid:
		return true
	}
	return false
}
