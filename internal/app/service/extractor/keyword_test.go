package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billhound/billhound/pkg/types"
)

func TestExtractKeywordBillWithAmount(t *testing.T) {
	res := extractKeyword(Candidate{
		ID:      "m1",
		Subject: "Your electric bill is ready",
		From:    `"City Power & Light" <billing@citypower.example>`,
		Body:    "Your statement is ready. Balance: $84.20. Payment is due on the 12th.",
	})

	require.True(t, res.IsBill)
	require.NotNil(t, res.Name)
	assert.Equal(t, "City Power & Light", *res.Name)
	require.NotNil(t, res.Amount)
	assert.Equal(t, 84.20, *res.Amount)
	require.NotNil(t, res.DueDay)
	assert.Equal(t, 12, *res.DueDay)
	assert.Equal(t, types.BillCategoryUtilities, res.Category)
	assert.Equal(t, 75, res.Confidence)
}

func TestExtractKeywordConfidenceTiers(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		body    string
		conf    int
	}{
		{"subject keyword plus amount", "Invoice for May", "Total: $10.00", 75},
		{"amount only in body", "May summary", "your bill total is $10.00", 60},
		{"keyword but no amount", "Invoice for May", "see attachment", 35},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := extractKeyword(Candidate{Subject: tt.subject, From: "x <a@b.c>", Body: tt.body})
			require.True(t, res.IsBill)
			assert.Equal(t, tt.conf, res.Confidence)
		})
	}
}

func TestExtractKeywordNotABill(t *testing.T) {
	res := extractKeyword(Candidate{
		Subject: "Lunch on Friday?",
		From:    "friend <friend@example.com>",
		Body:    "are you free at noon",
	})
	assert.False(t, res.IsBill)
	assert.Equal(t, 0, res.Confidence)
}

func TestExtractKeywordDueSlashDate(t *testing.T) {
	res := extractKeyword(Candidate{
		Subject: "Statement ready",
		From:    "Chase <no-reply@chase.example>",
		Body:    "Your payment of $120.00 is due 06/21.",
	})
	require.True(t, res.IsBill)
	require.NotNil(t, res.DueDay)
	assert.Equal(t, 21, *res.DueDay)
}

func TestExtractKeywordCommaAmount(t *testing.T) {
	res := extractKeyword(Candidate{
		Subject: "Mortgage statement",
		From:    "Lender <loans@lender.example>",
		Body:    "Amount due: $1,912.44",
	})
	require.NotNil(t, res.Amount)
	assert.Equal(t, 1912.44, *res.Amount)
	assert.Equal(t, types.BillCategoryRentMortgage, res.Category)
}

func TestPayeeNameFallsBackToSubject(t *testing.T) {
	res := extractKeyword(Candidate{
		Subject: "Water utility bill for March service period",
		From:    "no-reply@water.example",
		Body:    "amount due $30.00",
	})
	require.NotNil(t, res.Name)
	assert.Equal(t, "Water utility bill for", *res.Name)
}
