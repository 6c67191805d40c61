package audit

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
)

// YearPolicy selects how permissive the year / period end rule is
type YearPolicy string

const (
	// YearPolicyCalendar accepts YYYY, MM/DD/YYYY, or any recognised
	// calendar date between 1900 and 2100 (exclusive).
	YearPolicyCalendar YearPolicy = "calendar"
	// YearPolicyStrict accepts only YYYY or MM/DD/YYYY.
	YearPolicyStrict YearPolicy = "strict"
)

// ParseYearPolicy maps a configuration string onto a policy
func ParseYearPolicy(s string) (YearPolicy, error) {
	switch YearPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case YearPolicyCalendar, "":
		return YearPolicyCalendar, nil
	case YearPolicyStrict:
		return YearPolicyStrict, nil
	default:
		return "", fmt.Errorf("unknown year policy %q (must be one of: calendar, strict)", s)
	}
}

// Rule decides whether an already-cleaned value is acceptable. On rejection
// it returns a human-readable message.
type Rule func(value string) (bool, string)

// RuleSet maps every field to its rule
type RuleSet map[Field]Rule

// NewRuleSet builds the rule table for the given year policy
func NewRuleSet(yearPolicy YearPolicy) RuleSet {
	yearRule := ValidateYearPeriodEnd
	if yearPolicy == YearPolicyStrict {
		yearRule = ValidateYearPeriodEndStrict
	}
	return RuleSet{
		FieldCompanyName:     ValidateCompanyName,
		FieldYearPeriodEnd:   yearRule,
		FieldCompletedBy:     ValidateCompletedBy,
		FieldDate:            ValidateDate,
		FieldBusinessName:    ValidateBusinessName,
		FieldCriteriaCode:    ValidateCriteriaCode,
		FieldTransactionType: ValidateTransactionType,
	}
}

var (
	companyNameChars     = regexp.MustCompile(`^[A-Za-z0-9 .,&-]+$`)
	businessNameChars    = regexp.MustCompile(`^[A-Za-z0-9 .&-]+$`)
	lettersSpacesDots    = regexp.MustCompile(`^[A-Za-z .]+$`)
	lettersSpaces        = regexp.MustCompile(`^[A-Za-z ]+$`)
	criteriaCodePattern  = regexp.MustCompile(`^[12]\.[a-f]$`)
	fourDigitYearPattern = regexp.MustCompile(`^\d{4}$`)
	strictDatePattern    = regexp.MustCompile(`^(0[1-9]|1[0-2])/(0[1-9]|[12]\d|3[01])/\d{4}$`)
)

const usDateLayout = "01/02/2006"

// calendarLayouts are tried in order once YYYY and MM/DD/YYYY have failed.
var calendarLayouts = []string{
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2 Jan 2006",
	"2006-01-02",
	"2006/01/02",
	"1/2/2006",
	"January 2006",
	"Jan 2006",
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// ValidateCompanyName requires a letter and allows letters, digits, spaces and .,&-
func ValidateCompanyName(value string) (bool, string) {
	if !hasLetter(value) {
		return false, "Company name must contain at least one letter."
	}
	if !companyNameChars.MatchString(value) {
		return false, "Company name may only contain letters, digits, spaces and . , & -"
	}
	return true, ""
}

// ValidateYearPeriodEnd accepts YYYY, then MM/DD/YYYY, then a calendar date
// whose year lies strictly between 1900 and 2100.
func ValidateYearPeriodEnd(value string) (bool, string) {
	if ok, _ := ValidateYearPeriodEndStrict(value); ok {
		return true, ""
	}
	for _, layout := range calendarLayouts {
		t, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		if t.Year() > 1900 && t.Year() < 2100 {
			return true, ""
		}
	}
	return false, "Year / Period End must be a 4-digit year (YYYY), a date in MM/DD/YYYY format, or a calendar date."
}

// ValidateYearPeriodEndStrict accepts only YYYY or a real MM/DD/YYYY date.
func ValidateYearPeriodEndStrict(value string) (bool, string) {
	if fourDigitYearPattern.MatchString(value) {
		return true, ""
	}
	if strictDatePattern.MatchString(value) {
		if _, err := time.Parse(usDateLayout, value); err == nil {
			return true, ""
		}
	}
	return false, "Year / Period End must be a 4-digit year (YYYY) or a date in MM/DD/YYYY format."
}

// ValidateCompletedBy allows names and initials: letters, spaces, dots, at least 2 characters
func ValidateCompletedBy(value string) (bool, string) {
	if len([]rune(value)) < 2 {
		return false, "Completed By must be at least 2 characters."
	}
	if !lettersSpacesDots.MatchString(value) {
		return false, "Completed By may only contain letters, spaces and dots."
	}
	return true, ""
}

// ValidateDate requires strict MM/DD/YYYY and a real calendar date
func ValidateDate(value string) (bool, string) {
	if !strictDatePattern.MatchString(value) {
		return false, "Date must be in MM/DD/YYYY format."
	}
	if _, err := time.Parse(usDateLayout, value); err != nil {
		return false, "Date is not a valid calendar date."
	}
	return true, ""
}

// ValidateBusinessName requires a letter and allows letters, digits, spaces and .&-
func ValidateBusinessName(value string) (bool, string) {
	if !hasLetter(value) {
		return false, "Business name must contain at least one letter."
	}
	if !businessNameChars.MatchString(value) {
		return false, "Business name may only contain letters, digits, spaces and . & -"
	}
	return true, ""
}

// ValidateCriteriaCode accepts 1.a through 2.f, case-insensitively
func ValidateCriteriaCode(value string) (bool, string) {
	if !criteriaCodePattern.MatchString(strings.ToLower(value)) {
		return false, "Criteria Code must be in the form '1.a' to '2.f'."
	}
	return true, ""
}

// ValidateTransactionType allows letters and spaces only
func ValidateTransactionType(value string) (bool, string) {
	if !lettersSpaces.MatchString(value) {
		return false, "Transaction Type must be text only (no numbers or symbols)."
	}
	return true, ""
}
