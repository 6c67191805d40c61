package audit

import "fmt"

// Status is the outcome of evaluating one field
type Status string

const (
	StatusFoundValid   Status = "FOUND_AND_VALID"
	StatusFoundInvalid Status = "FOUND_BUT_INVALID"
	StatusNotFound     Status = "NOT_FOUND"
)

// Overall is a document or row level verdict
type Overall string

const (
	OverallPass             Overall = "PASS"
	OverallPartialPass      Overall = "PARTIAL_PASS"
	OverallFail             Overall = "FAIL"
	OverallInsufficientData Overall = "INSUFFICIENT_DATA"
)

const (
	msgNotFound         = "Field not extracted or empty."
	msgNoRelatedRows    = "No related party transactions disclosed (allowed)."
	msgTooFewRows       = "Related party section requires at least %d filled row(s), found %d."
	msgInsufficientData = "No recognizable audit header could be extracted from the document."
)

// rank orders the lattice PASS < PARTIAL_PASS < FAIL.
func (o Overall) rank() int {
	switch o {
	case OverallPass:
		return 0
	case OverallPartialPass:
		return 1
	default:
		return 2
	}
}

// Severity maps a field status onto the lattice
func (s Status) Severity() Overall {
	switch s {
	case StatusFoundValid:
		return OverallPass
	case StatusNotFound:
		return OverallPartialPass
	default:
		return OverallFail
	}
}

// Worst folds statuses with max over the severity lattice. An empty input
// folds to PASS.
func Worst(statuses ...Status) Overall {
	worst := OverallPass
	for _, s := range statuses {
		if sev := s.Severity(); sev.rank() > worst.rank() {
			worst = sev
		}
	}
	return worst
}

// FieldVerdict is the outcome for one field. Value is nil when the field was
// not found; Error is nil when it is valid.
type FieldVerdict struct {
	Status Status  `json:"status" yaml:"status"`
	Value  *string `json:"value" yaml:"value"`
	Error  *string `json:"error" yaml:"error"`
}

// RowVerdict is the outcome for one retained related-party row
type RowVerdict struct {
	RowNumber int                    `json:"row_number" yaml:"row_number"`
	RowStatus Overall                `json:"row_status" yaml:"row_status"`
	Fields    map[Field]FieldVerdict `json:"fields" yaml:"fields"`
}

// DocumentVerdict is the full validation record for one document
type DocumentVerdict struct {
	OverallStatus Overall                `json:"overall_status" yaml:"overall_status"`
	Header        map[Field]FieldVerdict `json:"header" yaml:"header"`
	Rows          []RowVerdict           `json:"rows" yaml:"rows"`
	Errors        []string               `json:"errors" yaml:"errors"`
	Notes         []string               `json:"notes,omitempty" yaml:"notes,omitempty"`
	// SectionErrors are failures of the related-party section as a whole,
	// not tied to any one field. They also appear in Errors.
	SectionErrors []string `json:"section_errors,omitempty" yaml:"section_errors,omitempty"`
}

// Policy holds the tunable parts of validation
type Policy struct {
	YearPolicy YearPolicy `json:"year_policy" yaml:"year_policy"`
	// MinRows is the fewest filled related-party rows accepted. Zero allows
	// a document with no disclosures.
	MinRows int `json:"min_rows" yaml:"min_rows"`
}

// DefaultPolicy accepts calendar dates for the period end and zero rows
func DefaultPolicy() Policy {
	return Policy{YearPolicy: YearPolicyCalendar}
}

// Validator applies a rule set to canonical documents. It holds no
// per-document state and is safe for concurrent use.
type Validator struct {
	policy Policy
	rules  RuleSet
}

// NewValidator creates a validator for the given policy
func NewValidator(policy Policy) *Validator {
	if policy.YearPolicy == "" {
		policy.YearPolicy = YearPolicyCalendar
	}
	return &Validator{
		policy: policy,
		rules:  NewRuleSet(policy.YearPolicy),
	}
}

// Policy returns the policy the validator was built with
func (v *Validator) Policy() Policy {
	return v.policy
}

// ValidateField cleans raw and applies the field's rule
func (v *Validator) ValidateField(f Field, raw string) FieldVerdict {
	value := Clean(raw)
	if f == FieldCriteriaCode {
		value = cleanCode(raw)
	}
	if value == "" {
		msg := msgNotFound
		return FieldVerdict{Status: StatusNotFound, Error: &msg}
	}

	rule, ok := v.rules[f]
	if !ok {
		msg := fmt.Sprintf("no rule registered for field %s", f)
		return FieldVerdict{Status: StatusFoundInvalid, Value: &value, Error: &msg}
	}
	if valid, msg := rule(value); !valid {
		return FieldVerdict{Status: StatusFoundInvalid, Value: &value, Error: &msg}
	}
	return FieldVerdict{Status: StatusFoundValid, Value: &value}
}

// Validate evaluates every header and row field and folds the statuses into
// the overall verdict. A nil header short-circuits to INSUFFICIENT_DATA.
func (v *Validator) Validate(doc Document) DocumentVerdict {
	if doc.Header == nil {
		return DocumentVerdict{
			OverallStatus: OverallInsufficientData,
			Header:        map[Field]FieldVerdict{},
			Rows:          []RowVerdict{},
			Errors:        []string{msgInsufficientData},
		}
	}

	verdict := DocumentVerdict{
		Header: make(map[Field]FieldVerdict, len(HeaderFields)),
		Rows:   []RowVerdict{},
		Errors: []string{},
	}
	var statuses []Status

	for _, f := range HeaderFields {
		raw, _ := doc.Header.Get(f)
		fv := v.ValidateField(f, raw)
		verdict.Header[f] = fv
		statuses = append(statuses, fv.Status)
		if fv.Error != nil {
			verdict.Errors = append(verdict.Errors, fmt.Sprintf("%s: %s", f.Label(), *fv.Error))
		}
	}

	var filled []RelatedPartyRow
	for _, row := range doc.Rows {
		if row.Filled() {
			filled = append(filled, row)
		}
	}

	for i, row := range filled {
		rv := RowVerdict{
			RowNumber: i + 1,
			Fields:    make(map[Field]FieldVerdict, len(RowFields)),
		}
		var rowStatuses []Status
		for _, f := range RowFields {
			fv := v.ValidateField(f, row.Value(f))
			rv.Fields[f] = fv
			rowStatuses = append(rowStatuses, fv.Status)
			if fv.Error != nil {
				verdict.Errors = append(verdict.Errors,
					fmt.Sprintf("Row %d %s: %s", rv.RowNumber, f.Label(), *fv.Error))
			}
		}
		rv.RowStatus = Worst(rowStatuses...)
		statuses = append(statuses, rowStatuses...)
		verdict.Rows = append(verdict.Rows, rv)
	}

	verdict.OverallStatus = Worst(statuses...)

	switch {
	case len(filled) < v.policy.MinRows:
		msg := fmt.Sprintf(msgTooFewRows, v.policy.MinRows, len(filled))
		verdict.Errors = append(verdict.Errors, msg)
		verdict.SectionErrors = append(verdict.SectionErrors, msg)
		verdict.OverallStatus = OverallFail
	case len(filled) == 0:
		verdict.Notes = append(verdict.Notes, msgNoRelatedRows)
	}

	return verdict
}

// Validate runs the default policy over a canonical document
func Validate(doc Document) DocumentVerdict {
	return NewValidator(DefaultPolicy()).Validate(doc)
}

// Process normalizes an extraction and validates it under policy
func Process(x Extraction, policy Policy) DocumentVerdict {
	return NewValidator(policy).Validate(Normalize(x))
}
