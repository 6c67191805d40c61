package audit

import (
	"sort"
	"strconv"
)

// Field identifies one logical field of an audit-support document
type Field string

const (
	FieldCompanyName     Field = "company_name"
	FieldYearPeriodEnd   Field = "year_period_end"
	FieldCompletedBy     Field = "completed_by"
	FieldDate            Field = "date"
	FieldBusinessName    Field = "business_name"
	FieldCriteriaCode    Field = "criteria_code"
	FieldTransactionType Field = "transaction_type"
)

// HeaderFields lists the document-level facts in reporting order
var HeaderFields = []Field{
	FieldCompanyName,
	FieldYearPeriodEnd,
	FieldCompletedBy,
	FieldDate,
}

// RowFields lists the related-party columns in their fixed positional order
var RowFields = []Field{
	FieldBusinessName,
	FieldCriteriaCode,
	FieldTransactionType,
}

// Label returns the human-readable name used in issues and error lines
func (f Field) Label() string {
	switch f {
	case FieldCompanyName:
		return "Company Name"
	case FieldYearPeriodEnd:
		return "Year / Period End"
	case FieldCompletedBy:
		return "Completed By"
	case FieldDate:
		return "Date"
	case FieldBusinessName:
		return "Business Name"
	case FieldCriteriaCode:
		return "Criteria Code"
	case FieldTransactionType:
		return "Transaction Type"
	default:
		return string(f)
	}
}

// PageText maps a page key ("1", "2", ...) to the plain text extracted from it.
type PageText map[string]string

// Keys returns the page keys in scan order: numeric keys ascending, then any
// non-numeric keys lexically.
func (p PageText) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ni, errI := strconv.Atoi(keys[i])
		nj, errJ := strconv.Atoi(keys[j])
		switch {
		case errI == nil && errJ == nil:
			if ni != nj {
				return ni < nj
			}
			return keys[i] < keys[j]
		case errI == nil:
			return true
		case errJ == nil:
			return false
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}

// RawTable is the related-party section as rows of cells. Missing cells are
// empty strings; column order is name, code, transaction type.
type RawTable [][]string

// FormField is one named field of a fillable form. Label is the best
// human-facing name the source exposed.
type FormField struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// Extraction is what a format-specific loader produced for one document.
// Any part may be empty.
type Extraction struct {
	Source string      `json:"source,omitempty" yaml:"source,omitempty"`
	Pages  PageText    `json:"pages,omitempty" yaml:"pages,omitempty"`
	Form   []FormField `json:"form_fields,omitempty" yaml:"form_fields,omitempty"`
	Table  RawTable    `json:"table,omitempty" yaml:"table,omitempty"`
}

// IsEmpty reports whether the loader produced nothing usable at all
func (x Extraction) IsEmpty() bool {
	for _, text := range x.Pages {
		if Clean(text) != "" {
			return false
		}
	}
	return len(x.Form) == 0 && len(x.Table) == 0
}

// HeaderRecord holds the raw value chosen for each header field. A nil
// HeaderRecord means no header was produced at all. Values are only ever
// added through fill, which never replaces an existing entry.
type HeaderRecord map[Field]string

// Get returns the raw value for f and whether it was located
func (h HeaderRecord) Get(f Field) (string, bool) {
	v, ok := h[f]
	return v, ok
}

// fill sets f only when the slot is still empty and the value is non-blank.
func (h HeaderRecord) fill(f Field, value string) bool {
	if _, taken := h[f]; taken {
		return false
	}
	if Clean(value) == "" {
		return false
	}
	h[f] = value
	return true
}

// Missing returns the header fields not yet located, in reporting order
func (h HeaderRecord) Missing() []Field {
	var out []Field
	for _, f := range HeaderFields {
		if _, ok := h[f]; !ok {
			out = append(out, f)
		}
	}
	return out
}

// RelatedPartyRow is one disclosed related-party transaction
type RelatedPartyRow struct {
	Number          int    `json:"row_number" yaml:"row_number"`
	BusinessName    string `json:"business_name" yaml:"business_name"`
	CriteriaCode    string `json:"criteria_code" yaml:"criteria_code"`
	TransactionType string `json:"transaction_type" yaml:"transaction_type"`
}

// Value returns the raw cell for one of the row fields
func (r RelatedPartyRow) Value(f Field) string {
	switch f {
	case FieldBusinessName:
		return r.BusinessName
	case FieldCriteriaCode:
		return r.CriteriaCode
	case FieldTransactionType:
		return r.TransactionType
	default:
		return ""
	}
}

// Filled reports whether at least one cell survives cleaning
func (r RelatedPartyRow) Filled() bool {
	for _, f := range RowFields {
		if Clean(r.Value(f)) != "" {
			return true
		}
	}
	return false
}

// Document is the canonical form consumed by validation
type Document struct {
	Header  HeaderRecord      `json:"header" yaml:"header"`
	Rows    []RelatedPartyRow `json:"rows" yaml:"rows"`
	Sources map[Field]string  `json:"sources,omitempty" yaml:"sources,omitempty"`
}
