package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-extractor/internal/issuer"
	"github.com/insightdelivered/statement-extractor/internal/models"
)

func profile(t *testing.T, region, name string) *issuer.Profile {
	t.Helper()
	reg, err := issuer.ForRegion(region)
	require.NoError(t, err)
	p, ok := reg.Lookup(name)
	require.True(t, ok, name)
	return p
}

func textOnly(text string) models.ExtractionResult {
	return models.ExtractionResult{RawText: text, Pages: 1}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"45,240.00", 45240.00},
		{"1,23,456.78", 123456.78},
		{"Rs 5,882.52", 5882.52},
		{"Rs. 5,882.52", 5882.52},
		{"₹ 2,262.00", 2262.00},
		{"$1,234.56", 1234.56},
		{"$1,234", 1234},
		{"£19,720.15", 19720.15},
		{"`8,249.00", 8249.00},
		{"  360.00 ", 360.00},
		{"2262.", 2262},
		{"-45.10", -45.10},
		{"", 0},
		{"-", 0},
		{",", 0},
		{"N/A", 0},
		{"abc", 0},
		{"12.34.56", 0},
	}
	for _, tt := range tests {
		if got := ParseAmount(tt.in); got != tt.want {
			t.Errorf("ParseAmount(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRecordHDFC(t *testing.T) {
	text := "HDFC Bank Credit Cards Statement\n" +
		"Card No: 5228 52XX XXXX 0591\n" +
		"Statement Date:15/06/2019\n" +
		"Payment Due Date 05/07/2019\n" +
		"Total Dues 45,240.00\n" +
		"Minimum Amount Due 2,262.00\n"

	rec := New(textOnly(text)).Record(profile(t, "in", "HDFC Bank"))
	assert.Equal(t, "HDFC Bank", rec.Issuer)
	assert.Equal(t, "0591", rec.AccountLastFour)
	assert.Equal(t, "Statement date: 15/06/2019", rec.BillingCycle)
	assert.Equal(t, "05/07/2019", rec.PaymentDueDate)
	assert.Equal(t, 45240.0, rec.TotalBalance)
	require.NotNil(t, rec.MinimumPayment)
	assert.Equal(t, 2262.0, *rec.MinimumPayment)
	assert.Empty(t, rec.Transactions)
}

func TestRecordAmexIndia(t *testing.T) {
	text := "American Express Banking Corp.\n" +
		"Membership Number\nXXXX-XXXXXX-01007\n" +
		"Statement Period From April 15 to May 14, 2019\n" +
		"Minimum Payment Due June 3, 2019\n" +
		"Closing Balance Rs 56,856.49\n" +
		"Min Payment Due Rs 2,843.00\n"

	rec := New(textOnly(text)).Record(profile(t, "in", "amex"))
	assert.Equal(t, "American Express", rec.Issuer)
	assert.Equal(t, "01007", rec.AccountLastFour)
	assert.Equal(t, "April 15 - May 14, 2019", rec.BillingCycle)
	assert.Equal(t, "June 3, 2019", rec.PaymentDueDate)
	assert.Equal(t, 56856.49, rec.TotalBalance)
	assert.Equal(t, 2843.0, rec.MinimumPaymentValue())
}

func TestRecordSentinels(t *testing.T) {
	rec := New(models.ExtractionResult{}).Record(profile(t, "in", "HDFC Bank"))
	assert.Equal(t, models.NotAvailable, rec.AccountLastFour)
	assert.Equal(t, models.NotAvailable, rec.BillingCycle)
	assert.Equal(t, models.NotAvailable, rec.PaymentDueDate)
	assert.Equal(t, 0.0, rec.TotalBalance)
	require.NotNil(t, rec.MinimumPayment)
	assert.Equal(t, 0.0, *rec.MinimumPayment)
}

func TestRecordSBI(t *testing.T) {
	text := "State Bank of India\n" +
		"Account Number : 00000031234567890\n" +
		"Account Statement from 1 Jan 2024 to 31 Jan 2024\n" +
		"Opening Balance 10,000.00\n" +
		"Due Date: 05/02/2024\n" +
		"Closing Balance 12,345.67\n"

	rec := New(textOnly(text)).Record(profile(t, "in", "sbi"))
	assert.Equal(t, "7890", rec.AccountLastFour)
	assert.Equal(t, "1 Jan 2024 - 31 Jan 2024", rec.BillingCycle)
	assert.Equal(t, models.NotAvailable, rec.PaymentDueDate)
	assert.Equal(t, 12345.67, rec.TotalBalance)
	assert.Nil(t, rec.MinimumPayment)
}

func TestIdentifierDigitsOnly(t *testing.T) {
	p := profile(t, "in", "ICICI Bank")

	e := New(textOnly("Card Number : 4375 XXXX XXXX 3019"))
	assert.Equal(t, "3019", e.Identifier(p))

	e = New(textOnly("Card Account No 4375 XXXX XXXX 301"))
	assert.Equal(t, models.NotAvailable, e.Identifier(p))
}

func TestIdentifierGenericFallback(t *testing.T) {
	p := profile(t, "us", "Chase")

	e := New(textOnly("Chase Bank\nAccount Number: XXXX-XXXX-XXXX-1234"))
	assert.Equal(t, "1234", e.Identifier(p))

	e = New(textOnly("Visa card ending in 4321"))
	assert.Equal(t, "4321", e.Identifier(p))

	e = New(textOnly("no identifier here"))
	assert.Equal(t, models.NotAvailable, e.Identifier(p))
}

func TestTopRegionIsSearchedFirst(t *testing.T) {
	res := models.ExtractionResult{
		RawText: "Payment Due Date 01/01/2019\nPayment Due Date 28/06/2019",
		Regions: []models.Region{
			{ID: models.RegionID(0, models.BandTop), Page: 0, Band: models.BandTop, Text: "Payment Due Date 28/06/2019"},
			{ID: models.RegionID(0, models.BandBottom), Page: 0, Band: models.BandBottom, Text: "Payment Due Date 01/01/2019"},
		},
	}
	assert.Equal(t, "28/06/2019", New(res).Text(profile(t, "in", "HDFC Bank"), issuer.FieldDueDate))
}

func TestMoneyFromTables(t *testing.T) {
	p := profile(t, "in", "HDFC Bank")

	tests := []struct {
		name  string
		table models.TableBlock
		text  string
		want  float64
	}{
		{
			name: "cell to the right",
			table: models.TableBlock{
				HeaderRow: []string{"Summary", "Rs"},
				Rows:      [][]string{{"Opening", "1,000.00"}, {"Total Dues", "45,240.00"}},
			},
			want: 45240.00,
		},
		{
			name: "label in header row",
			table: models.TableBlock{
				HeaderRow: []string{"Total Amount Due", "3,000.00"},
				Rows:      [][]string{{"x", "y"}},
			},
			want: 3000.00,
		},
		{
			name: "amount inside label cell",
			table: models.TableBlock{
				HeaderRow: []string{"Total Dues Rs 9,999.00", "Due"},
				Rows:      [][]string{{"a", "b"}},
			},
			want: 9999.00,
		},
		{
			name: "zero cell falls through to text",
			table: models.TableBlock{
				HeaderRow: []string{"Label", "Value"},
				Rows:      [][]string{{"Total Dues", "0.00"}},
			},
			text: "Total Dues 1,500.00",
			want: 1500.00,
		},
		{
			name: "cell to the left",
			table: models.TableBlock{
				HeaderRow: []string{"Value", "Label"},
				Rows:      [][]string{{"750.25", "Total Dues"}},
			},
			want: 750.25,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := models.ExtractionResult{RawText: tt.text, Tables: []models.TableBlock{tt.table}}
			assert.Equal(t, tt.want, New(res).Money(p, issuer.FieldTotalBalance))
		})
	}
}

func TestMoneySkipsNonPositiveTextMatches(t *testing.T) {
	p := profile(t, "in", "HDFC Bank")
	e := New(textOnly("Total Dues 0.00\nTotal Amount Due 4,500.00"))
	assert.Equal(t, 4500.0, e.Money(p, issuer.FieldTotalBalance))
}

func TestBillingCycleGenericFallback(t *testing.T) {
	p := profile(t, "in", "Kotak Mahindra Bank")
	e := New(textOnly("Billing 01-May-2024 to 31-May-2024"))
	assert.Equal(t, "01-May-2024 - 31-May-2024", e.BillingCycle(p))
}

func TestRecordUK(t *testing.T) {
	text := "Metro Bank\nAccount number 12345678 Sort code 23-05-80\n" +
		"Statement period 01/01/2024 to 31/01/2024\n" +
		"Closing balance £1,000.00\n"

	rec := New(textOnly(text)).Record(profile(t, "uk", "Metro Bank"))
	assert.Equal(t, "5678", rec.AccountLastFour)
	assert.Equal(t, "01/01/2024 - 31/01/2024", rec.BillingCycle)
	assert.Equal(t, models.NotAvailable, rec.PaymentDueDate)
	assert.Equal(t, 1000.0, rec.TotalBalance)
	assert.Nil(t, rec.MinimumPayment)
}
