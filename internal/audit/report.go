package audit

import "fmt"

const msgNoData = "No data extracted from document"

// Issue is one user-facing problem with a document
type Issue struct {
	Field   string `json:"field" yaml:"field"`
	Message string `json:"message" yaml:"message"`
}

// Report is the response handed to callers of the service surfaces
type Report struct {
	RequestID     string           `json:"request_id,omitempty" yaml:"request_id,omitempty"`
	Source        string           `json:"source,omitempty" yaml:"source,omitempty"`
	OverallStatus Overall          `json:"overall_status" yaml:"overall_status"`
	CanProceed    bool             `json:"can_proceed" yaml:"can_proceed"`
	Issues        []Issue          `json:"issues" yaml:"issues"`
	Notes         []string         `json:"notes,omitempty" yaml:"notes,omitempty"`
	// Sources records which extraction tier produced each header value
	Sources map[Field]string `json:"sources,omitempty" yaml:"sources,omitempty"`
	Verdict *DocumentVerdict `json:"verdict,omitempty" yaml:"verdict,omitempty"`
}

// BuildReport lists every field that is not FOUND_AND_VALID, header fields
// first in reporting order and then rows.
func BuildReport(v DocumentVerdict) Report {
	report := Report{
		OverallStatus: v.OverallStatus,
		CanProceed:    v.OverallStatus == OverallPass,
		Issues:        []Issue{},
		Notes:         v.Notes,
		Verdict:       &v,
	}

	if v.OverallStatus == OverallInsufficientData {
		report.Issues = append(report.Issues, Issue{Field: "Document", Message: msgNoData})
		return report
	}

	for _, f := range HeaderFields {
		fv, ok := v.Header[f]
		if !ok || fv.Status == StatusFoundValid {
			continue
		}
		report.Issues = append(report.Issues, Issue{Field: f.Label(), Message: errorText(fv)})
	}

	for _, row := range v.Rows {
		for _, f := range RowFields {
			fv, ok := row.Fields[f]
			if !ok || fv.Status == StatusFoundValid {
				continue
			}
			report.Issues = append(report.Issues, Issue{
				Field:   fmt.Sprintf("%s (Row %d)", f.Label(), row.RowNumber),
				Message: errorText(fv),
			})
		}
	}

	for _, e := range v.SectionErrors {
		report.Issues = append(report.Issues, Issue{Field: "Related Parties", Message: e})
	}

	return report
}

func errorText(fv FieldVerdict) string {
	if fv.Error != nil {
		return *fv.Error
	}
	return string(fv.Status)
}
