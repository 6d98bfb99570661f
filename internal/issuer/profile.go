package issuer

import (
	"regexp"
	"strings"
	"sync"

	"github.com/cloudflare/ahocorasick"
)

// Field names a scalar statement field.
type Field string

const (
	FieldIdentifier     Field = "identifier"
	FieldBillingCycle   Field = "billingCycle"
	FieldDueDate        Field = "paymentDueDate"
	FieldTotalBalance   Field = "totalBalance"
	FieldMinimumPayment Field = "minimumPayment"
)

// Column names a logical transaction table column.
type Column string

const (
	ColumnDate        Column = "date"
	ColumnDescription Column = "description"
	ColumnAmount      Column = "amount"
	ColumnDebit       Column = "debit"
	ColumnCredit      Column = "credit"
)

// Window selects which end of the transaction list is kept.
type Window string

const (
	WindowFirst Window = "first"
	WindowLast  Window = "last"
)

// Profile is the declarative description of one issuer's statements.
// Profiles are built once and shared read-only between parses.
type Profile struct {
	Name     string
	Currency string // ISO 4217 code used for display
	Keywords []string

	// Patterns are tried in order per field; the last capture group of the
	// first match is the value.
	Patterns map[Field][]*regexp.Regexp
	// Labels are lower-case table cell labels for money fields.
	Labels map[Field][]string
	// Columns are lower-case header substrings per logical column.
	Columns map[Column][]string
	// Exclusions are description terms that drop a transaction. The generic
	// terms are always added.
	Exclusions []string
	// Lines are text fallback transaction patterns with date, description
	// and amount groups, in that order.
	Lines []*regexp.Regexp

	Window      Window
	CyclePrefix string // prefix for single-date billing cycles
	MinColumns  int    // column count for the table width bonus, default 3

	LastMatchBalance bool // balance is the last pattern hit, not the first
	DigitsOnlyID     bool // identifier is reduced to its last four digits
	NoDueDate        bool
	NoMinimum        bool

	once     sync.Once
	excluder *ahocorasick.Matcher
}

// GenericExclusions are dropped for every profile.
var GenericExclusions = []string{
	"PAYMENT RECEIVED", "THANK YOU", "INTEREST CHARGES", "FINANCE CHARGES",
	"LATE PAYMENT FEE", "GST", "IGST", "CGST", "SGST",
}

// GenericIdentifierPatterns run after a profile's own identifier patterns.
var GenericIdentifierPatterns = compile(
	`[Xx]{4}\s*[Xx]{4}\s*[Xx]{4}\s*(\d{4})`,
	`\*{4}\s*\*{4}\s*\*{4}\s*(\d{4})`,
	`ending\s+in\s+(\d{4})`,
	`Account\s+Number:?\s*[Xx*-]*(\d{4})`,
	`\d{6}[Xx]{6}(\d{4})`,
)

// GenericCyclePatterns run after a profile's own billing-cycle patterns.
var GenericCyclePatterns = compile(
	`(\d{1,2}/\d{1,2}/\d{2,4})\s*(?:to|-)\s*(\d{1,2}/\d{1,2}/\d{2,4})`,
	`(?i)(\d{1,2}-[A-Za-z]{3}-\d{4})\s*(?:to|-)\s*(\d{1,2}-[A-Za-z]{3}-\d{4})`,
	`(?i)From\s+(\d{1,2}\s+[A-Za-z]+\s+\d{4})\s+to\s+(\d{1,2}\s+[A-Za-z]+\s+\d{4})`,
)

// GenericDueDatePatterns run after a profile's own due-date patterns.
var GenericDueDatePatterns = compile(
	`(?i)(?:Payment Due Date|Due Date):?\s*(\d{1,2}/\d{1,2}/\d{2,4})`,
	`(?i)Due Date\s*:\s*(\d{1,2}-[A-Za-z]{3}-\d{4})`,
	`(?i)(?:Payment Due Date|Due Date|Payment Due):?\s*([A-Za-z]+\s+\d{1,2},?\s*\d{4})`,
)

// Excludes reports whether a description contains any exclusion term,
// ignoring case.
func (p *Profile) Excludes(description string) bool {
	p.once.Do(p.buildExcluder)
	return len(p.excluder.MatchThreadSafe([]byte(strings.ToUpper(description)))) > 0
}

func (p *Profile) buildExcluder() {
	seen := make(map[string]bool)
	var terms []string
	for _, t := range append(append([]string{}, p.Exclusions...), GenericExclusions...) {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		terms = append(terms, t)
	}
	p.excluder = ahocorasick.NewStringMatcher(terms)
}

// ColumnWidth is the column count that earns a transaction table its width
// bonus.
func (p *Profile) ColumnWidth() int {
	if p.MinColumns > 0 {
		return p.MinColumns
	}
	return 3
}

// FormatCycle turns billing-cycle capture groups into the reported value:
// two groups become a range, a single group gets the profile prefix.
func (p *Profile) FormatCycle(groups []string) string {
	switch {
	case len(groups) >= 2:
		return strings.TrimSpace(groups[0]) + " - " + strings.TrimSpace(groups[len(groups)-1])
	case len(groups) == 1 && p.CyclePrefix != "":
		return p.CyclePrefix + " " + strings.TrimSpace(groups[0])
	case len(groups) == 1:
		return strings.TrimSpace(groups[0])
	}
	return ""
}

func compile(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}
