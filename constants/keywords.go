package constants

// LaborKeywords mark a line item as a labor charge.
var LaborKeywords = []string{
	"工賃",
	"labor",
	"labour",
	"installation",
	"service",
	"取付",
	"取り付け",
	"交換工賃",
	"作業",
	"手数料",
	"技術料",
}

// StatutoryKeywords mark government-mandated fees. Only consulted when enabled in config.
var StatutoryKeywords = []string{
	"自賠責",
	"重量税",
	"印紙",
	"法定費用",
}

// DenylistKeywords reject a whole OCR line before amount scanning.
// Matching is case-sensitive substring.
var DenylistKeywords = []string{
	// totals and tax
	"合計", "小計", "Total", "Subtotal", "Sum", "総額",
	"消費税", "Tax", "VAT", "税込", "税抜", "課税",
	// contact
	"TEL", "Tel", "FAX", "Fax", "Phone", "E-mail", "Email",
	// identifiers
	"No.", "No ", "ID:", "ID ", "番号",
	// column headers
	"品名", "金額", "単価", "Item", "Amount", "Price", "Qty", "Quantity",
	// dates
	"見積日", "発行日", "日付", "Date",
}

// SummaryKeywords identify total/subtotal/tax rows in table input.
var SummaryKeywords = []string{
	"合計", "小計", "総額", "消費税", "税込", "税抜",
	"Total", "TOTAL", "Subtotal", "SUBTOTAL", "Tax", "TAX",
}

// VendorMarkers are legal-entity suffixes that identify the issuing company line.
var VendorMarkers = []string{"株式会社", "有限会社", "合同会社"}

const (
	PlaceholderItemName = "見積明細一式"
	UnknownVendor       = "Unknown Vendor"
)
