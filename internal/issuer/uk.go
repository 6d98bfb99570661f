package issuer

import "regexp"

const (
	ukMonth    = `(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*`
	ukSlash    = `\d{1,2}/\d{1,2}/\d{2,4}`
	ukText     = `\d{1,2}\s+` + ukMonth + `\s+\d{2,4}`
	ukDash     = `\d{1,2}-` + ukMonth + `-\d{2,4}`
	ukAmount   = `£?([\d,]+\.\d{2})`
	ukTrailing = `(?:\s+£?[\d,]+\.\d{2})*\s*$`
)

// UK returns the United Kingdom current-account profiles. These statements
// have no due date or minimum payment, and list transactions oldest first.
func UK() []*Profile {
	return []*Profile{
		ukAccount("Metro Bank", []string{"metro bank", "metrobankonline"},
			compile(`(?i)^\s*(`+ukSlash+`)\s+(.+?)\s+`+ukAmount+ukTrailing),
		),
		ukAccount("HSBC", []string{"hsbc", "hsbc.co.uk", "hsbc uk bank"},
			compile(
				`(?i)^\s*(`+ukText+`)\s+(.+?)\s+`+ukAmount+ukTrailing,
				`(?i)^\s*(`+ukDash+`)\s+(.+?)\s+`+ukAmount+ukTrailing,
				`(?i)^\s*(`+ukSlash+`)\s+(.+?)\s+`+ukAmount+ukTrailing,
			),
		),
		ukAccount("Barclays", []string{"barclays", "barclays.co.uk"},
			compile(
				`(?i)^\s*(`+ukSlash+`)\s+(.+?)\s+`+ukAmount+ukTrailing,
				`(?i)^\s*(`+ukText+`)\s+(.+?)\s+`+ukAmount+ukTrailing,
				// Business statements drop the year.
				`(?i)^\s*(\d{1,2}\s+`+ukMonth+`)\s+(.+?)\s+`+ukAmount+ukTrailing,
			),
		),
	}
}

func ukAccount(name string, keywords []string, lines []*regexp.Regexp) *Profile {
	return &Profile{
		Name:     name,
		Currency: "GBP",
		Keywords: keywords,
		Patterns: map[Field][]*regexp.Regexp{
			FieldIdentifier: compile(
				`(?i)Account\s*(?:Number|No\.?)\s*:?\s*(\d{8})\b`,
				`\b(\d{8})\b`,
			),
			FieldBillingCycle: compile(
				`(?i)period.*?(`+ukSlash+`).*?(`+ukSlash+`)`,
				`(?i)period.*?(`+ukText+`).*?(`+ukText+`)`,
				`(?i)(\d{1,2}\s+`+ukMonth+`(?:\s+\d{4})?)\s+to\s+(`+ukText+`)`,
			),
			FieldTotalBalance: compile(
				`(?i)Closing Balance\s*`+ukAmount,
				`(?i)Balance carried forward\s*`+ukAmount,
				`(?i)Balance\s*`+ukAmount,
			),
		},
		Labels: map[Field][]string{
			FieldTotalBalance: {"closing balance", "balance carried forward"},
		},
		Columns: map[Column][]string{
			ColumnDate:        {"date"},
			ColumnDescription: {"description", "details", "transaction", "payment type"},
			ColumnDebit:       {"paid out", "money out", "withdrawn", "debit"},
			ColumnCredit:      {"paid in", "money in", "deposit", "credit"},
		},
		Exclusions: []string{
			"OPENING BALANCE", "CLOSING BALANCE", "BALANCE BROUGHT FORWARD",
			"BALANCE CARRIED FORWARD", "BROUGHT FORWARD", "CARRIED FORWARD",
		},
		Lines:            lines,
		Window:           WindowLast,
		MinColumns:       5,
		LastMatchBalance: true,
		DigitsOnlyID:     true,
		NoDueDate:        true,
		NoMinimum:        true,
	}
}
