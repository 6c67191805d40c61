package audit

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Tier is one header extraction strategy. Extract is pure: it reports every
// header field it can locate and never sees what earlier tiers found.
type Tier struct {
	Name    string
	Extract func(x Extraction) HeaderRecord
}

const (
	TierForm      = "form"
	TierLabel     = "label"
	TierHeuristic = "heuristic"
)

// DefaultTiers is the fixed priority order: form fields, then labelled text,
// then line heuristics.
var DefaultTiers = []Tier{
	{Name: TierForm, Extract: formTier},
	{Name: TierLabel, Extract: labelTier},
	{Name: TierHeuristic, Extract: heuristicTier},
}

// auditKeywords mark a page as likely to carry the header
var auditKeywords = []string{"company", "audit", "year", "period"}

const minAuditKeywords = 2

// headerAliases lists the labels recognised for each header field
var headerAliases = map[Field][]string{
	FieldCompanyName:   {"company name", "client name"},
	FieldYearPeriodEnd: {"year / period end date", "year / period end", "fiscal year end", "period end date", "audit year", "year end", "period end", "year period", "year"},
	FieldCompletedBy:   {"completed by", "prepared by"},
	FieldDate:          {"date"},
}

var rowLabelPattern = regexp.MustCompile(`(?i)row[_\s]?(\d+)`)

var (
	numericDatePattern = regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`)
	longDatePattern    = regexp.MustCompile(`(?i)\b(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?\s+\d{1,2},?\s+\d{4}\b`)
	yearTokenPattern   = regexp.MustCompile(`\b20\d{2}\b`)
	preparerPattern    = regexp.MustCompile(`(?i)\b(?:prepared|completed)\b(?:\s+by\b)?\s*[:\-]?\s*(.*)$`)
)

// labelMatcher is an alias compiled into a capture anchored at the start of
// a line segment. An optional list number ("3." or "b)") may precede it.
type labelMatcher struct {
	alias   string
	pattern *regexp.Regexp
}

var labelMatchers = compileLabelMatchers()

func compileLabelMatchers() map[Field][]labelMatcher {
	out := make(map[Field][]labelMatcher, len(headerAliases))
	for field, aliases := range headerAliases {
		sorted := append([]string(nil), aliases...)
		sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
		for _, alias := range sorted {
			out[field] = append(out[field], labelMatcher{
				alias:   alias,
				pattern: regexp.MustCompile(`(?i)^\s*(?:[0-9a-z]{1,2}[.)]\s+)?` + aliasExpr(alias) + `\b\s*[:\-]?\s*(.*)$`),
			})
		}
	}
	return out
}

// aliasExpr lets the words of an alias be separated by any whitespace and
// treats a slash as optional.
func aliasExpr(alias string) string {
	words := aliasWords(alias)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(words, `(?:\s*[/\\]\s*|\s+)`)
}

// aliasWords is the lower-case words of an alias without slashes
func aliasWords(alias string) []string {
	var out []string
	for _, w := range strings.Fields(strings.ToLower(alias)) {
		if w != "/" && w != `\` {
			out = append(out, w)
		}
	}
	return out
}

// ExtractHeader runs the tiers in order, merging each tier's findings into
// slots that are still empty. It returns a nil record when nothing in the
// extraction looks like an audit header, along with which tier supplied each
// field.
func ExtractHeader(x Extraction, tiers ...Tier) (HeaderRecord, map[Field]string) {
	if len(tiers) == 0 {
		tiers = DefaultTiers
	}
	header := HeaderRecord{}
	sources := map[Field]string{}
	for _, tier := range tiers {
		if len(header.Missing()) == 0 {
			break
		}
		found := tier.Extract(x)
		for _, f := range HeaderFields {
			if v, ok := found[f]; ok && header.fill(f, v) {
				sources[f] = tier.Name
			}
		}
	}
	if len(header) == 0 && len(auditPages(x.Pages)) == 0 {
		return nil, nil
	}
	return header, sources
}

// auditPages returns, in scan order, the text of pages mentioning enough
// audit keywords to be considered header candidates.
func auditPages(pages PageText) []string {
	var out []string
	for _, key := range pages.Keys() {
		if isAuditPage(pages[key]) {
			out = append(out, pages[key])
		}
	}
	return out
}

func isAuditPage(text string) bool {
	lower := strings.ToLower(text)
	hits := 0
	for _, kw := range auditKeywords {
		if strings.Contains(lower, kw) {
			hits++
		}
	}
	return hits >= minAuditKeywords
}

// labelPages returns every page, audit pages first, each group in scan order
func labelPages(pages PageText) []string {
	out := auditPages(pages)
	for _, key := range pages.Keys() {
		if !isAuditPage(pages[key]) {
			out = append(out, pages[key])
		}
	}
	return out
}

// heuristicPages is the audit pages, or every page when none qualifies
func heuristicPages(pages PageText) []string {
	if out := auditPages(pages); len(out) > 0 {
		return out
	}
	return labelPages(pages)
}

// formTier matches form field labels against the header aliases.
func formTier(x Extraction) HeaderRecord {
	found := HeaderRecord{}
	for _, ff := range x.Form {
		label := strings.ToLower(Clean(ff.Label))
		if label == "" || rowLabelPattern.MatchString(label) {
			continue
		}
		if f, ok := fieldForLabel(label); ok {
			found.fill(f, ff.Value)
		}
	}
	return found
}

func fieldForLabel(label string) (Field, bool) {
	for _, f := range HeaderFields {
		if f == FieldDate {
			continue
		}
		for _, alias := range headerAliases[f] {
			if f == FieldYearPeriodEnd && alias == "year" {
				continue
			}
			if strings.Contains(label, alias) {
				return f, true
			}
		}
	}
	if strings.HasPrefix(label, "date") {
		return FieldDate, true
	}
	return "", false
}

// labelTier finds "Label: value" pairs, trying audit pages first.
func labelTier(x Extraction) HeaderRecord {
	found := HeaderRecord{}
	pages := labelPages(x.Pages)
	for _, f := range HeaderFields {
		if v, ok := findLabelled(f, pages); ok {
			found.fill(f, v)
		}
	}
	return found
}

func findLabelled(f Field, pages []string) (string, bool) {
	for _, text := range pages {
		lines := strings.Split(text, "\n")
		for i, line := range lines {
			next := ""
			if i+1 < len(lines) {
				next = lines[i+1]
			}
			for _, segment := range strings.Split(line, "|") {
				if v, ok := matchSegment(f, segment, next); ok {
					return v, true
				}
			}
		}
	}
	return "", false
}

// matchSegment tries every alias of f against one segment. A capture that
// fails the field's acceptance checks moves on to the next alias, and then to
// the next segment or line.
func matchSegment(f Field, segment, nextLine string) (string, bool) {
	for _, m := range labelMatchers[f] {
		sub := m.pattern.FindStringSubmatch(segment)
		if sub == nil {
			continue
		}
		candidate := trimCandidate(sub[1])
		if continuesLabel(m.alias, candidate) {
			continue
		}
		if candidate == "" {
			candidate = trimCandidate(nextLine)
		}
		if v, ok := acceptCandidate(f, candidate); ok {
			return v, true
		}
	}
	return "", false
}

func acceptCandidate(f Field, candidate string) (string, bool) {
	if candidate == "" || startsWithLabel(candidate) {
		return "", false
	}
	switch f {
	case FieldYearPeriodEnd:
		if !hasDigit(candidate) {
			return "", false
		}
	case FieldDate:
		if !hasDigit(candidate) {
			return "", false
		}
		if d := numericDatePattern.FindString(candidate); d != "" {
			return d, true
		}
		if d := longDatePattern.FindString(candidate); d != "" {
			return Clean(d), true
		}
		return "", false
	}
	return candidate, true
}

// startsWithLabel reports whether s opens with any known header label, which
// means a capture ran on into the next label rather than a value.
func startsWithLabel(s string) bool {
	lower := strings.ToLower(s)
	for _, aliases := range headerAliases {
		for _, alias := range aliases {
			if !strings.HasPrefix(lower, alias) {
				continue
			}
			rest := lower[len(alias):]
			if rest == "" || !unicode.IsLetter([]rune(rest)[0]) {
				return true
			}
		}
	}
	return false
}

// continuesLabel reports whether candidate opens with the remaining words of
// a longer alias that starts with alias, as in "Year Period" followed by
// "End Date: ...".
func continuesLabel(alias, candidate string) bool {
	words := aliasWords(alias)
	cand := strings.Fields(strings.ToLower(candidate))
	for _, aliases := range headerAliases {
		for _, longer := range aliases {
			lw := aliasWords(longer)
			if len(lw) <= len(words) || len(cand) < len(lw)-len(words) {
				continue
			}
			if !equalWords(lw[:len(words)], words) {
				continue
			}
			rest := lw[len(words):]
			matched := true
			for i, w := range rest {
				if strings.TrimRight(cand[i], ":-") != w {
					matched = false
					break
				}
			}
			if matched {
				return true
			}
		}
	}
	return false
}

func equalWords(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

// heuristicTier is the low-precision last resort. A year inside a date is
// left for the date slot.
func heuristicTier(x Extraction) HeaderRecord {
	found := HeaderRecord{}
	for _, text := range heuristicPages(x.Pages) {
		for _, raw := range strings.Split(text, "\n") {
			line := Clean(raw)
			if line == "" {
				continue
			}
			if isCompanyBanner(line) {
				found.fill(FieldCompanyName, line)
			}
			date := numericDatePattern.FindString(line)
			if y := yearTokenPattern.FindString(line); y != "" && date == "" {
				found.fill(FieldYearPeriodEnd, y)
			}
			if sub := preparerPattern.FindStringSubmatch(line); sub != nil {
				if v := trimCandidate(sub[1]); v != "" && !startsWithLabel(v) {
					found.fill(FieldCompletedBy, v)
				}
			}
			if date != "" {
				found.fill(FieldDate, date)
			}
		}
	}
	return found
}

func isCompanyBanner(line string) bool {
	if len(line) <= 3 || !hasLetter(line) {
		return false
	}
	if line != strings.ToUpper(line) || strings.Contains(line, "FORM") {
		return false
	}
	return !startsWithLabel(line)
}
