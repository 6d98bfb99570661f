package writer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/statement-extractor/internal/models"
)

func sampleRecord() models.StatementRecord {
	minimum := 40.0
	groceries := "Groceries"
	rec := models.NewStatementRecord("Chase")
	rec.AccountLastFour = "1234"
	rec.BillingCycle = "01/01/2024 - 31/01/2024"
	rec.PaymentDueDate = "02/25/2024"
	rec.TotalBalance = 1234.5
	rec.MinimumPayment = &minimum
	rec.Transactions = []models.Transaction{
		{Date: "15/01/2024", Description: "CARD PAYMENT TESCO", Amount: 25.99, Category: &groceries},
		{Date: "16/01/2024", Description: "AMAZON, MARKETPLACE", Amount: 2500},
	}
	return rec
}

func TestCSVWriter_Write(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{IncludeHeader: true, Currency: "USD"}
	require.NoError(t, w.Write(&buf, sampleRecord()))

	output := buf.String()
	assert.Contains(t, output, "# Issuer,Chase\n")
	assert.Contains(t, output, "# Total Balance,\"$1,234.50\"\n")
	assert.Contains(t, output, "# Minimum Payment,$40.00\n")
	assert.Contains(t, output, "Date,Description,Amount,Category\n")
	assert.Contains(t, output, "15/01/2024,CARD PAYMENT TESCO,25.99,Groceries\n")
	assert.Contains(t, output, "16/01/2024,\"AMAZON, MARKETPLACE\",2500.00,\n")

	lines := strings.Split(strings.TrimSpace(output), "\n")
	// 7 summary lines + 1 header + 2 transactions
	assert.Len(t, lines, 10)
}

func TestCSVWriter_WriteNoHeader(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{}
	require.NoError(t, w.Write(&buf, sampleRecord()))

	output := buf.String()
	assert.NotContains(t, output, "# Issuer")
	assert.True(t, strings.HasPrefix(output, "Date,Description,Amount,Category\n"))
}

func TestCSVWriter_NoTransactions(t *testing.T) {
	var buf bytes.Buffer
	w := &CSVWriter{}
	require.NoError(t, w.Write(&buf, models.NewStatementRecord("HDFC Bank")))
	assert.Equal(t, "Date,Description,Amount,Category\n", buf.String())
}

func TestSummary(t *testing.T) {
	rec := models.NewStatementRecord("Discover")
	lines := Summary(rec, "")

	got := make(map[string]string, len(lines))
	for _, l := range lines {
		got[l.Label] = l.Value
	}
	assert.Equal(t, "N/A", got["Card Last Four"])
	assert.Equal(t, "N/A", got["Minimum Payment"], "a missing minimum is not zero")
	assert.Equal(t, "0.00", got["Total Balance"])
	assert.Equal(t, "0", got["Transactions"])
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		amount   float64
		currency string
		expected string
	}{
		{1234.5, "USD", "$1,234.50"},
		{1234.5, "usd", "$1,234.50"},
		{0.1 + 0.2, "USD", "$0.30"},
		{25.99, "", "25.99"},
		{2500, "XYZ", "2500.00"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatMoney(tt.amount, tt.currency), "%v %s", tt.amount, tt.currency)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"json", FormatJSON, true},
		{" CSV ", FormatCSV, true},
		{"excel", FormatXLSX, true},
		{"pdf", "", false},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if !tt.ok {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
	assert.Equal(t, ".xlsx", FormatXLSX.Extension())
}
