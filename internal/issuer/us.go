package issuer

import "regexp"

// US returns the United States card issuers in detection order. Bare "chase"
// and "citi" are not keywords: they occur inside "purchase" and "citizen".
func US() []*Profile {
	return []*Profile{
		usCard("Chase", []string{"chase bank", "chase card", "jpmorgan", "chase.com", "chase sapphire", "chase freedom"},
			compile(`(?i)(?:Opening/Closing Date|Statement Period):?\s*(\d{2}/\d{2}/\d{2,4})\s*-\s*(\d{2}/\d{2}/\d{2,4})`),
			nil,
			compile(
				`(?i)(?:New Balance|Total Balance|Current Balance):?\s*\$?([\d,]+\.?\d*)`,
				`(?i)Balance Summary[\s\S]*?(?:New|Total)\s+Balance:?\s*\$?([\d,]+\.?\d*)`,
			),
			compile(
				`(?i)(?:Minimum Payment Due|Min Payment):?\s*\$?([\d,]+\.?\d*)`,
				`(?i)Payment Information[\s\S]*?Minimum:?\s*\$?([\d,]+\.?\d*)`,
			),
			`(\d{1,2}/\d{1,2})`,
		),
		usCard("American Express", []string{"american express", "amex", "americanexpress.com"},
			compile(`(?i)(?:Closing Date|Statement Period):?\s*([A-Za-z]+\s+\d{1,2},?\s+\d{4})`),
			compile(`(?i)(?:Payment Due|Please Pay By):?\s*([A-Za-z]+\s+\d{1,2},?\s+\d{4})`),
			compile(
				`(?i)(?:New Balance|Total):?\s*\$?([\d,]+\.?\d*)`,
				`(?i)(?:Account Balance|Balance):?\s*\$?([\d,]+\.?\d*)`,
			),
			compile(
				`(?i)(?:Minimum Payment Due|Minimum Due):?\s*\$?([\d,]+\.?\d*)`,
				`(?i)Total Minimum Payment Due:?\s*\$?([\d,]+\.?\d*)`,
			),
			`([A-Za-z]{3}\s+\d{1,2})`,
		),
		usCard("Bank of America", []string{"bank of america", "bofa", "bankofamerica.com"},
			compile(`(?i)Statement (?:Period|Date):?\s*(\d{1,2}/\d{1,2}/\d{2,4})\s*(?:through|-)\s*(\d{1,2}/\d{1,2}/\d{2,4})`),
			nil,
			compile(
				`(?i)New Balance:?\s*\$?([\d,]+\.?\d*)`,
				`(?i)Current Balance:?\s*\$?([\d,]+\.?\d*)`,
				`(?i)Total Balance:?\s*\$?([\d,]+\.?\d*)`,
			),
			compile(
				`(?i)Minimum Payment:?\s*\$?([\d,]+\.?\d*)`,
				`(?i)Minimum Amount Due:?\s*\$?([\d,]+\.?\d*)`,
			),
			`(\d{1,2}/\d{1,2})`,
		),
		usCard("Citi", []string{"citibank", "citigroup", "citi.com", "citi card", "citicards"},
			compile(`(?i)Billing Period:?\s*(\d{1,2}/\d{1,2}/\d{2,4})\s*-\s*(\d{1,2}/\d{1,2}/\d{2,4})`),
			compile(`(?i)Payment Due Date:?\s*(\d{1,2}/\d{1,2}/\d{2,4})`),
			compile(
				`(?i)Balance Summary[\s\S]*?Current Balance:?\s*\$?([\d,]+\.?\d*)`,
				`(?i)New Balance:?\s*\$?([\d,]+\.?\d*)`,
				`(?i)Total Balance:?\s*\$?([\d,]+\.?\d*)`,
			),
			compile(
				`(?i)Minimum Payment Due:?\s*\$?([\d,]+\.?\d*)`,
				`(?i)Min\. Payment:?\s*\$?([\d,]+\.?\d*)`,
			),
			`(\d{1,2}/\d{1,2})`,
		),
		usCard("Wells Fargo", []string{"wells fargo", "wellsfargo.com"},
			compile(`(?i)Statement Closing Date:?\s*(\d{1,2}/\d{1,2}/\d{2,4})`),
			compile(`(?i)Payment Due Date:?\s*(\d{1,2}/\d{1,2}/\d{2,4})`),
			compile(
				`(?i)New Balance:?\s*\$?([\d,]+\.?\d*)`,
				`(?i)Account Balance:?\s*\$?([\d,]+\.?\d*)`,
			),
			compile(
				`(?i)Minimum Payment:?\s*\$?([\d,]+\.?\d*)`,
				`(?i)Payment Due:?\s*\$?([\d,]+\.?\d*)`,
			),
			`(\d{1,2}/\d{1,2})`,
		),
	}
}

// usCard builds a US card profile. Identifiers come from the generic masked
// card patterns. datePattern is the capture group opening a transaction line.
func usCard(name string, keywords []string, cycle, due, balance, minimum []*regexp.Regexp, datePattern string) *Profile {
	return &Profile{
		Name:     name,
		Currency: "USD",
		Keywords: keywords,
		Patterns: map[Field][]*regexp.Regexp{
			FieldBillingCycle:   cycle,
			FieldDueDate:        due,
			FieldTotalBalance:   balance,
			FieldMinimumPayment: minimum,
		},
		Labels: map[Field][]string{
			FieldTotalBalance:   {"new balance", "current balance", "total balance"},
			FieldMinimumPayment: {"minimum payment due", "minimum payment"},
		},
		Columns: map[Column][]string{
			ColumnDate:        {"trans date", "date"},
			ColumnDescription: {"description", "merchant", "transaction"},
			ColumnAmount:      {"amount"},
		},
		Exclusions: []string{"PAYMENT - THANK YOU", "AUTOPAY", "ONLINE PAYMENT"},
		Lines: compile(
			datePattern + `\s+([^\$\n]+?)\s+\$?([\d,]+\.\d{2})`,
		),
		Window: WindowFirst,
	}
}
