package issuer

import "regexp"

// India returns the Indian card and bank profiles in detection order.
// American Express goes first: its statements mention partner banks.
func India() []*Profile {
	return []*Profile{amexIndia(), hdfc(), icici(), kotak(), sbi()}
}

func amexIndia() *Profile {
	return &Profile{
		Name:     "American Express",
		Currency: "INR",
		Keywords: []string{"american express", "amex", "americanexpress.co.in", "american express banking corp", "aebc"},
		Patterns: map[Field][]*regexp.Regexp{
			FieldIdentifier: compile(
				`(?is)Membership Number.*?[Xx*]{4}[-\s]*[Xx*]{6}[-\s]*(\d{5})`,
				`(?is)Card Number.*?[Xx*]{4}[-\s]*[Xx*]{6}[-\s]*(\d{5})`,
				`[Xx*]{4}[-\s]*[Xx*]{6}[-\s]*(\d{5})`,
			),
			FieldBillingCycle: compile(
				`(?i)Statement Period.*?From\s+([A-Za-z]+\s+\d{1,2})\s+to\s+([A-Za-z]+\s+\d{1,2},?\s*\d{4})`,
				`(?i)Statement Period.*?(\d{1,2}/\d{1,2}/\d{4})\s*to\s*(\d{1,2}/\d{1,2}/\d{4})`,
				`(?i)Closing Date.*?([A-Za-z]+\s+\d{1,2},?\s*\d{4})`,
			),
			FieldDueDate: compile(
				`(?i)Minimum Payment Due.*?([A-Za-z]+\s+\d{1,2},?\s*\d{4})`,
				`(?i)Payment Due Date.*?(\d{1,2}/\d{1,2}/\d{4})`,
				`(?i)Due Date.*?(\d{1,2}/\d{1,2}/\d{4})`,
			),
			FieldTotalBalance: compile(
				`(?i)Closing Balance Rs\.?\s*([\d,]+\.?\d*)`,
				`(?i)New Balance.*?Rs\.?\s*([\d,]+\.?\d*)`,
				`(?i)Total Amount Due.*?Rs\.?\s*([\d,]+\.?\d*)`,
				`(?i)Total Dues\s*([\d,]+\.?\d*)`,
			),
			FieldMinimumPayment: compile(
				`(?i)Min Payment Due Rs\.?\s*([\d,]+\.?\d*)`,
				`(?i)Minimum Payment Due.*?Rs\.?\s*([\d,]+\.?\d*)`,
				`(?i)Minimum Amount Due\s*([\d,]+\.?\d*)`,
			),
		},
		Labels: map[Field][]string{
			FieldTotalBalance:   {"closing balance", "new balance", "total amount due"},
			FieldMinimumPayment: {"minimum payment due", "min payment due"},
		},
		Columns: map[Column][]string{
			ColumnDate:        {"date"},
			ColumnDescription: {"description", "details", "transaction"},
			ColumnAmount:      {"amount", "rs", "inr"},
		},
		Exclusions: []string{"PAYMENT RECEIVED", "CREDIT CARD PAYMENT", "MEMBERSHIP FEE REVERSAL"},
		Lines: compile(
			`([A-Za-z]{3}\s+\d{1,2})\s+([A-Z][A-Z0-9\s\-\.&]{3,50}?)\s+([\d,]+\.?\d*)`,
			`(\d{1,2}/\d{1,2}/\d{4})\s+([A-Z][A-Z0-9\s\-\.&]{3,50}?)\s+([\d,]+\.?\d*)`,
		),
		Window:      WindowFirst,
		CyclePrefix: "Statement ending",
	}
}

func hdfc() *Profile {
	return &Profile{
		Name:     "HDFC Bank",
		Currency: "INR",
		Keywords: []string{"hdfc bank", "hdfcbank", "hdfc credit card", "times card", "timescard"},
		Patterns: map[Field][]*regexp.Regexp{
			FieldIdentifier: compile(
				`(?i)Card No:\s*\d{4}\s*\d{2}[Xx]{2}\s*[Xx]{4}\s*(\d{4})`,
				`(?i)Card Number.*?[Xx*]{4}\s*[Xx*]{4}\s*[Xx*]{4}\s*(\d{4})`,
				`\d{4}\s*\d{2}XX\s*XXXX\s*(\d{3,4})`,
			),
			FieldBillingCycle: compile(
				`(?i)Statement for.*?(\d{2}/\d{2}/\d{4})\s*to\s*(\d{2}/\d{2}/\d{4})`,
				`(?i)Statement Date:?\s*(\d{2}/\d{2}/\d{4})`,
			),
			FieldDueDate: compile(
				`(?i)Payment Due Date\s*:?\s*(\d{2}/\d{2}/\d{4})`,
				`(?i)Due Date\s*:?\s*(\d{2}/\d{2}/\d{4})`,
			),
			FieldTotalBalance: compile(
				`(?i)Total Dues\s*([\d,]+\.?\d*)`,
				`(?i)Total Amount Due.*?([\d,]+\.?\d*)`,
				`(?i)Current Dues\s*([\d,]+\.?\d*)`,
			),
			FieldMinimumPayment: compile(
				`(?i)Minimum Amount Due\s*([\d,]+\.?\d*)`,
				`(?i)Minimum Payment\s*([\d,]+\.?\d*)`,
			),
		},
		Labels: map[Field][]string{
			FieldTotalBalance:   {"total dues", "total amount due"},
			FieldMinimumPayment: {"minimum amount due", "minimum payment"},
		},
		Columns: map[Column][]string{
			ColumnDate:        {"date", "txn date"},
			ColumnDescription: {"description", "transaction", "details"},
			ColumnAmount:      {"amount", "value", "rs"},
		},
		Exclusions: []string{"NEFT CREDIT", "INFINITY PAYMENT", "CREDIT CARD PAYMENT", "AUTOPAY"},
		Lines: compile(
			`(\d{2}/\d{2}/\d{4})\s+([A-Za-z][A-Za-z0-9\s\-\.\*&()]{3,50}?)\s+([\d,]+\.\d{2})`,
		),
		Window:      WindowFirst,
		CyclePrefix: "Statement date:",
	}
}

func icici() *Profile {
	return &Profile{
		Name:     "ICICI Bank",
		Currency: "INR",
		Keywords: []string{"icici bank", "icicibank", "icici credit card"},
		Patterns: map[Field][]*regexp.Regexp{
			FieldIdentifier: compile(
				`(?i)Card Number\s*:\s*\d{4}\s*[Xx]{4}\s*[Xx]{4}\s*(\d{4})`,
				`\d{4}\s*XXXX\s*XXXX\s*(\d{3,4})`,
				`(?i)Card Account No\s*(\d{4}\s*XXXX\s*XXXX\s*\d{3,4})`,
			),
			FieldBillingCycle: compile(
				`(?i)Statement Period.*?From\s*(\d{2}/\d{2}/\d{4})\s*to\s*(\d{2}/\d{2}/\d{4})`,
				`(?i)Statement Date\s*(\d{2}/\d{2}/\d{4})`,
			),
			FieldDueDate: compile(
				`(?i)Due Date\s*:\s*(\d{2}/\d{2}/\d{4})`,
				`(?i)Payment.*?Due.*?(\d{2}/\d{2}/\d{4})`,
			),
			FieldTotalBalance: compile(
				"(?i)Your Total Amount Due\\s*`?\\s*([\\d,]+\\.?\\d*)",
				`(?i)Total Amount Due\s*([\d,]+\.?\d*)`,
				`(?i)Total Dues\s*([\d,]+\.?\d*)`,
			),
			FieldMinimumPayment: compile(
				"(?i)Minimum Amount Due\\s*`?\\s*([\\d,]+\\.?\\d*)",
				`(?i)Minimum Payment\s*([\d,]+\.?\d*)`,
			),
		},
		Labels: map[Field][]string{
			FieldTotalBalance:   {"total amount due", "total dues"},
			FieldMinimumPayment: {"minimum amount due"},
		},
		Columns: map[Column][]string{
			ColumnDate:        {"date", "transaction date"},
			ColumnDescription: {"transaction details", "details", "description", "particulars"},
			ColumnAmount:      {"amount", "inr", "rs"},
		},
		Exclusions: []string{
			"PAYMENT", "CREDIT CARD PAYMENT", "INFINITY PAYMENT", "NEFT", "IMPS",
			"DISCOUNT", "FINANCE CHARGES",
		},
		Lines: compile(
			`(\d{2}/\d{2}/\d{4})\s+\d+\s+([A-Z][A-Za-z0-9\s\-\.\*&]{3,50}?)\s+([\d,]+\.?\d*)`,
		),
		Window:       WindowLast,
		CyclePrefix:  "Statement date:",
		DigitsOnlyID: true,
	}
}

func kotak() *Profile {
	return &Profile{
		Name:     "Kotak Mahindra Bank",
		Currency: "INR",
		Keywords: []string{"kotak", "kotak mahindra bank", "kotak credit card", "kotak bank"},
		Patterns: map[Field][]*regexp.Regexp{
			FieldIdentifier: compile(
				`(?i)Card No:\s*\d{6}[Xx]{6}(\d{4})`,
				`\d{6}XXXXXX(\d{4})`,
				`(?i)Card.*?\d{4}[Xx*]{2}XX\s*XXXX\s*(\d{4})`,
			),
			FieldBillingCycle: compile(
				`(?i)Statement Period\s*(\d{1,2}-[A-Za-z]{3}-\d{4})\s*To\s*(\d{1,2}-[A-Za-z]{3}-\d{4})`,
				`(?i)Statement Date\s*(\d{1,2}-[A-Za-z]{3}-\d{4})`,
			),
			FieldDueDate: compile(
				`(?i)Due Date\s*(\d{1,2}-[A-Za-z]{3}-\d{4})`,
				`(?i)Payment Due Date\s*(\d{1,2}-[A-Za-z]{3}-\d{4})`,
			),
			FieldTotalBalance: compile(
				`(?i)Total Amount Due\s*\(Rs\.\)\s*([\d,]+\.?\d*)`,
				`(?i)Total Dues\s*([\d,]+\.?\d*)`,
				`(?i)Amount Due\s*([\d,]+\.?\d*)`,
			),
			FieldMinimumPayment: compile(
				`(?i)Minimum Amount Due\s*(?:\(Rs\.\))?\s*([\d,]+\.?\d*)`,
				`(?i)Minimum Payment\s*([\d,]+\.?\d*)`,
			),
		},
		Labels: map[Field][]string{
			FieldTotalBalance:   {"total amount due", "total dues"},
			FieldMinimumPayment: {"minimum amount due"},
		},
		Columns: map[Column][]string{
			ColumnDate:        {"date", "transaction date"},
			ColumnDescription: {"transaction details", "description", "details", "particulars"},
			ColumnAmount:      {"amount", "rs", "inr"},
		},
		Exclusions: []string{"PAYMENT", "NEFT"},
		Lines: compile(
			`(\d{2}/\d{2}/\d{4})\s+([A-Z][A-Za-z0-9\s\-\.\*&]{3,50}?)\s+[A-Za-z]+\s+([\d,]+\.?\d*)`,
		),
		Window:      WindowLast,
		CyclePrefix: "Statement date:",
	}
}

func sbi() *Profile {
	return &Profile{
		Name:     "State Bank of India",
		Currency: "INR",
		Keywords: []string{"state bank of india", "sbi", "sbichq", "sbin"},
		Patterns: map[Field][]*regexp.Regexp{
			FieldIdentifier: compile(
				`(?i)Account Number\s*:\s*(\d{11,17})`,
				`(?i)A/c\s*No\.?\s*:\s*(\d{11,17})`,
				`(?i)Account No\s*:\s*(\d{11,17})`,
			),
			FieldBillingCycle: compile(
				`(?i)Account Statement from\s*(\d{1,2}\s+[A-Za-z]{3}\s+\d{4})\s*to\s*(\d{1,2}\s+[A-Za-z]{3}\s+\d{4})`,
				`(?i)Statement.*?(\d{1,2}/\d{1,2}/\d{4})\s*to\s*(\d{1,2}/\d{1,2}/\d{4})`,
				`(?i)Date\s*:\s*(\d{1,2}\s+[A-Za-z]{3}\s+\d{4})`,
			),
			FieldTotalBalance: compile(
				`(?i)(?:Closing Balance|Balance).*?([\d,]+\.\d{2})`,
			),
		},
		Labels: map[Field][]string{
			FieldTotalBalance: {"closing balance"},
		},
		Columns: map[Column][]string{
			ColumnDate:        {"date", "txn date", "value date"},
			ColumnDescription: {"description", "particulars", "narration"},
			ColumnDebit:       {"debit", "withdrawal", "dr"},
			ColumnCredit:      {"credit", "deposit", "cr"},
		},
		Exclusions: []string{"TRANSFER TO", "NEFT", "IMPS", "UPI", "PAYMENT"},
		Lines: compile(
			`(\d{1,2}\s+[A-Za-z]{3}\s+\d{4})\s+\d{1,2}\s+[A-Za-z]{3}\s+\d{4}\s+([A-Z][A-Za-z0-9\s\-\.\*&]{3,50}?)\s+[\w/\-]+\s+([\d,]+\.?\d*)`,
		),
		Window:           WindowLast,
		CyclePrefix:      "Statement date:",
		MinColumns:       5,
		LastMatchBalance: true,
		DigitsOnlyID:     true,
		NoDueDate:        true,
		NoMinimum:        true,
	}
}
