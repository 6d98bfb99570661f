package transactions

import (
	"fmt"
	"strings"
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

func narrationTable(rows int) models.TableBlock {
	t := models.TableBlock{HeaderRow: []string{"TxnDate", "Narration", "Debit", "Credit", "Balance"}}
	for i := 0; i < rows; i++ {
		t.Rows = append(t.Rows, []string{
			fmt.Sprintf("%02d/01/2024", i+1), fmt.Sprintf("MERCHANT %d", i+1), "100.00", "", "1,000.00",
		})
	}
	return t
}

func TestScore(t *testing.T) {
	sbi := profile(t, "in", "sbi")
	hdfc := profile(t, "in", "HDFC Bank")

	tests := []struct {
		name  string
		table models.TableBlock
		p     *issuer.Profile
		want  int
	}{
		{"narration table", narrationTable(6), sbi, 8},
		{"narration table short", narrationTable(3), sbi, 7},
		{"card table", models.TableBlock{
			HeaderRow: []string{"Date", "Transaction Details", "Amount (in Rs.)"},
			Rows:      [][]string{{"a", "b", "c"}},
		}, hdfc, 7},
		{"width below profile minimum", models.TableBlock{
			HeaderRow: []string{"Date", "Description", "Amount"},
			Rows:      [][]string{{"a", "b", "c"}},
		}, sbi, 6},
		{"no headers", models.TableBlock{
			HeaderRow: []string{"x", "y"},
			Rows:      [][]string{{"a", "b"}},
		}, hdfc, 0},
		{"abbreviations do not score", models.TableBlock{
			HeaderRow: []string{"Particulars", "Address"},
			Rows:      [][]string{{"a", "b"}},
		}, sbi, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Score(tt.table, tt.p))
		})
	}
}

func TestResolvePrefersTransactionTable(t *testing.T) {
	small := models.TableBlock{
		HeaderRow: []string{"Opening", "Closing"},
		Rows:      [][]string{{"1.00", "2.00"}, {"3.00", "4.00"}},
	}
	big := narrationTable(6)

	got, ok := Resolve([]models.TableBlock{small, big}, profile(t, "in", "sbi"))
	require.True(t, ok)
	assert.Equal(t, big.HeaderRow, got.HeaderRow)
	assert.Len(t, got.Rows, 6)
}

func TestResolve(t *testing.T) {
	p := profile(t, "in", "HDFC Bank")

	first := narrationTable(4)
	first.Index = 0
	second := narrationTable(4)
	second.Index = 1

	got, ok := Resolve([]models.TableBlock{first, second}, p)
	require.True(t, ok)
	assert.Equal(t, 0, got.Index, "ties keep the earlier table")

	_, ok = Resolve(nil, p)
	assert.False(t, ok)

	_, ok = Resolve([]models.TableBlock{narrationTable(2)}, p)
	assert.False(t, ok, "tables under three rows are never candidates")

	blank := models.TableBlock{HeaderRow: []string{"x", "y"}, Rows: [][]string{{"a", "b"}, {"c", "d"}, {"e", "f"}}}
	_, ok = Resolve([]models.TableBlock{blank}, p)
	assert.False(t, ok)
}

func TestFromTableAmountColumn(t *testing.T) {
	table := models.TableBlock{
		HeaderRow: []string{"Date", "Transaction Description", "Amount (Rs)"},
		Rows: [][]string{
			{"23/05/2019", "Flipkart Payments BANGALORE", "8,249.00"},
			{"24/05/2019", "PAYMENT RECEIVED THANK YOU", "5,000.00"},
			{"25/05/2019", "SWIGGY   BANGALORE *", "360.00"},
			{"Date", "Transaction Description", "Amount (Rs)"},
			{"26/05/2019", "IGST-VPS1915005", "12.50"},
			{"27/05/2019", "AB", "99.00"},
			{"28/05/2019", "REFUND ADJUSTED", "0.00"},
		},
	}

	got := FromTable(table, profile(t, "in", "HDFC Bank"))
	assert.Equal(t, []models.Transaction{
		{Date: "23/05/2019", Description: "Flipkart Payments BANGALORE", Amount: 8249.00},
		{Date: "25/05/2019", Description: "SWIGGY BANGALORE", Amount: 360.00},
	}, got)
}

func TestFromTableDebitCredit(t *testing.T) {
	table := models.TableBlock{
		HeaderRow: []string{"Txn Date", "Description", "Debit", "Credit", "Balance"},
		Rows: [][]string{
			{"01 Jan 2024", "ATM WITHDRAWAL MG ROAD", "1,000.00", "", "9,000.00"},
			{"02 Jan 2024", "SALARY CREDIT", "", "50,000.00", "59,000.00"},
			{"03 Jan 2024", "UPI/ZOMATO/1234", "450.00", "", "58,550.00"},
			{"", "BROUGHT FORWARD", "", "", "58,550.00"},
			{"05 Jan 2024", "NOTHING", "", "", "58,550.00"},
			{"06 Jan 2024", "AMAZON  RETAIL -", "2,499.50", "", "56,050.50"},
		},
	}

	got := FromTable(table, profile(t, "in", "sbi"))
	require.Len(t, got, 3)
	assert.Equal(t, "ATM WITHDRAWAL MG ROAD", got[0].Description)
	assert.Equal(t, 1000.00, got[0].Amount)
	assert.Equal(t, "SALARY CREDIT", got[1].Description)
	assert.Equal(t, 50000.00, got[1].Amount)
	assert.Equal(t, "AMAZON RETAIL", got[2].Description)
	assert.Equal(t, 2499.50, got[2].Amount)
}

func TestFromTableRejectsMissingColumns(t *testing.T) {
	table := models.TableBlock{
		HeaderRow: []string{"Date", "Description", "Balance"},
		Rows:      [][]string{{"23/05/2019", "Flipkart", "8,249.00"}},
	}
	assert.Empty(t, FromTable(table, profile(t, "in", "HDFC Bank")))
}

func TestMapColumnsSkipsTakenHeaders(t *testing.T) {
	cols := mapColumns([]string{"Date", "Description", "Ref No.", "Debit", "Credit"}, profile(t, "in", "sbi"))
	assert.Equal(t, 0, cols.date)
	assert.Equal(t, 1, cols.description)
	assert.Equal(t, -1, cols.amount)
	assert.Equal(t, 3, cols.debit)
	assert.Equal(t, 4, cols.credit)
}

func TestFromTextExcludesPayments(t *testing.T) {
	text := "Domestic Transactions\n" +
		"Date Transaction Description Amount (in Rs.)\n" +
		"23/05/2019 Flipkart Payments BANGALORE 8,249.00\n" +
		"24/05/2019 PAYMENT RECEIVED THANK YOU 5,000.00\n"

	got := FromText(text, profile(t, "in", "HDFC Bank"), 10)
	require.Len(t, got, 1)
	assert.Equal(t, models.Transaction{Date: "23/05/2019", Description: "Flipkart Payments BANGALORE", Amount: 8249.00}, got[0])
}

func TestFromTextUKLines(t *testing.T) {
	text := `Metro Bank
Statement period: 01/01/2024 to 31/01/2024
Date Description Paid out Paid in Balance
01/01/2024 Opening balance 1,260.55
15/01/2024 CARD PAYMENT TESCO STORES 25.99 1,234.56
16/01/2024 DIRECT DEBIT SKY UK LTD 45.00 1,189.56
17/01/2024 BANK CREDIT SALARY 2,500.00 3,689.56
18/01/2024 CARD PAYMENT AMAZON UK 15.49 3,674.07`

	got := FromText(text, profile(t, "uk", "Metro Bank"), 10)
	require.Len(t, got, 4)
	want := []struct {
		desc   string
		amount float64
	}{
		{"CARD PAYMENT TESCO STORES", 25.99},
		{"DIRECT DEBIT SKY UK LTD", 45.00},
		{"BANK CREDIT SALARY", 2500.00},
		{"CARD PAYMENT AMAZON UK", 15.49},
	}
	for i, w := range want {
		assert.Equal(t, w.desc, got[i].Description)
		assert.Equal(t, w.amount, got[i].Amount)
	}
}

func TestFromTextGenericPatterns(t *testing.T) {
	text := "12 Mar 2024 COFFEE HOUSE 4.50\n" +
		"13-Mar-2024 BOOK DEPOT 12.00\n" +
		"14/03/2024 TRAIN TICKET MUMBAI 23.75\n"

	got := FromText(text, profile(t, "in", "Kotak Mahindra Bank"), 10)
	require.Len(t, got, 3)
	assert.Equal(t, "12 Mar 2024", got[0].Date)
	assert.Equal(t, "13-Mar-2024", got[1].Date)
	assert.Equal(t, "TRAIN TICKET", got[2].Description)
	assert.Equal(t, 23.75, got[2].Amount)
}

func hdfcLines(n int) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "%02d/05/2019 GROCERY STORE %d.00\n", i, i+10)
	}
	return b.String()
}

func TestFromTextStopsAtMax(t *testing.T) {
	p := profile(t, "in", "HDFC Bank")

	got := FromText(hdfcLines(12), p, 10)
	require.Len(t, got, 10)
	assert.Equal(t, "01/05/2019", got[0].Date)
	assert.Equal(t, "10/05/2019", got[9].Date)

	assert.Len(t, FromText(hdfcLines(12), p, 0), DefaultMaxTransactions)
	assert.Len(t, FromText(hdfcLines(3), p, 2), 2)
}

func TestWindow(t *testing.T) {
	var txns []models.Transaction
	for i := 1; i <= 8; i++ {
		txns = append(txns, models.Transaction{Date: fmt.Sprint(i), Description: "x", Amount: 1})
	}

	first := Window(txns, issuer.WindowFirst)
	require.Len(t, first, WindowSize)
	assert.Equal(t, "1", first[0].Date)

	last := Window(txns, issuer.WindowLast)
	require.Len(t, last, WindowSize)
	assert.Equal(t, "4", last[0].Date)
	assert.Equal(t, "8", last[4].Date)

	assert.Len(t, Window(txns[:3], issuer.WindowLast), 3)
	assert.NotNil(t, Window(nil, issuer.WindowFirst))
}

func TestCleanDescription(t *testing.T) {
	tests := map[string]string{
		"  AMAZON   RETAIL  ": "AMAZON RETAIL",
		"SWIGGY*":             "SWIGGY",
		"UBER TRIP - ":        "UBER TRIP",
		"PAYU * ZOMATO -*":    "PAYU * ZOMATO",
		"":                    "",
	}
	for in, want := range tests {
		assert.Equal(t, want, CleanDescription(in), in)
	}
}

func TestExtract(t *testing.T) {
	p := profile(t, "in", "HDFC Bank")

	t.Run("text fallback when no table qualifies", func(t *testing.T) {
		res := models.ExtractionResult{RawText: hdfcLines(8)}
		got := Extract(res, p, 10)
		require.Len(t, got, WindowSize)
		assert.Equal(t, "01/05/2019", got[0].Date)
	})

	t.Run("layout text preferred", func(t *testing.T) {
		res := models.ExtractionResult{
			RawText:    "nothing useful",
			LayoutText: "23/05/2019 Flipkart Payments BANGALORE 8,249.00",
		}
		got := Extract(res, p, 10)
		require.Len(t, got, 1)
		assert.Equal(t, 8249.00, got[0].Amount)
	})

	t.Run("resolved table", func(t *testing.T) {
		table := models.TableBlock{
			HeaderRow: []string{"Date", "Transaction Description", "Amount"},
			Rows: [][]string{
				{"01/05/2019", "BOOK STORE", "10.00"},
				{"02/05/2019", "PETROL PUMP", "20.00"},
				{"03/05/2019", "CINEMA HALL", "30.00"},
			},
		}
		res := models.ExtractionResult{RawText: hdfcLines(8), Tables: []models.TableBlock{table}}
		got := Extract(res, p, 10)
		require.Len(t, got, 3)
		assert.Equal(t, "BOOK STORE", got[0].Description)
	})

	t.Run("table without known columns falls back to text", func(t *testing.T) {
		table := models.TableBlock{
			HeaderRow: []string{"Txn Date", "Narration", "Debit"},
			Rows: [][]string{
				{"01/05/2019", "BOOK STORE", "10.00"},
				{"02/05/2019", "PETROL PUMP", "20.00"},
				{"03/05/2019", "CINEMA HALL", "30.00"},
				{"04/05/2019", "PHARMACY", "40.00"},
				{"05/05/2019", "BAKERY", "50.00"},
				{"06/05/2019", "TAXI", "60.00"},
			},
		}
		_, ok := Resolve([]models.TableBlock{table}, p)
		require.True(t, ok)

		res := models.ExtractionResult{RawText: hdfcLines(3), Tables: []models.TableBlock{table}}
		got := Extract(res, p, 10)
		require.Len(t, got, 3)
		assert.Equal(t, "01/05/2019", got[0].Date)
		assert.Equal(t, 11.00, got[0].Amount)
	})

	t.Run("summary block read as a table falls back to text", func(t *testing.T) {
		table := models.TableBlock{
			HeaderRow: []string{"Total Dues", "45,240.00"},
			Rows: [][]string{
				{"Minimum Amount Due", "2,262.00"},
				{"Date", "Transaction Description Amount"},
				{"23/05/2019", "FLIPKART PAYMENTS 8,249.00"},
				{"25/05/2019", "SWIGGY BANGALORE 360.00"},
				{"26/05/2019", "UBER INDIA 212.00"},
				{"27/05/2019", "BIGBASKET 1,540.00"},
			},
		}
		_, ok := Resolve([]models.TableBlock{table}, p)
		require.True(t, ok)

		res := models.ExtractionResult{
			LayoutText: "23/05/2019 FLIPKART PAYMENTS 8,249.00\n25/05/2019 SWIGGY BANGALORE 360.00\n",
			Tables:     []models.TableBlock{table},
		}
		got := Extract(res, p, 10)
		require.Len(t, got, 2)
		assert.Equal(t, 8249.00, got[0].Amount)
		assert.Equal(t, 360.00, got[1].Amount)
	})

	t.Run("nothing found", func(t *testing.T) {
		got := Extract(models.ExtractionResult{}, p, 10)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}
