package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billhound/billhound/pkg/types"
)

func TestParseResultFullObject(t *testing.T) {
	text := `Here is the analysis you asked for:
{"is_bill": true, "name": "Chase Credit Card", "amount": 2847.23,
 "due_day": 15, "category": "Credit Card", "confidence": 90,
 "amount_evidence": "Statement balance: $2,847.23",
 "due_date_evidence": "Payment due 06/15"}
Let me know if you need anything else.`

	res := parseResult(text)
	require.True(t, res.IsBill)
	require.NotNil(t, res.Name)
	assert.Equal(t, "Chase Credit Card", *res.Name)
	require.NotNil(t, res.Amount)
	assert.Equal(t, 2847.23, *res.Amount)
	require.NotNil(t, res.DueDay)
	assert.Equal(t, 15, *res.DueDay)
	assert.Equal(t, types.BillCategoryCreditCard, res.Category)
	assert.Equal(t, 90, res.Confidence)
	assert.Equal(t, "Statement balance: $2,847.23", res.AmountEvidence)
}

func TestParseResultFieldCoercion(t *testing.T) {
	tests := []struct {
		name string
		text string
		want func(t *testing.T, res Result)
	}{
		{
			name: "dollar string amount",
			text: `{"is_bill": true, "amount": "$129.99", "confidence": 80}`,
			want: func(t *testing.T, res Result) {
				require.NotNil(t, res.Amount)
				assert.Equal(t, 129.99, *res.Amount)
			},
		},
		{
			name: "amount rounded to cents",
			text: `{"is_bill": true, "amount": 272.8333333, "confidence": 80}`,
			want: func(t *testing.T, res Result) {
				require.NotNil(t, res.Amount)
				assert.Equal(t, 272.83, *res.Amount)
			},
		},
		{
			name: "negative amount dropped",
			text: `{"is_bill": true, "amount": -50, "confidence": 80}`,
			want: func(t *testing.T, res Result) {
				assert.Nil(t, res.Amount)
			},
		},
		{
			name: "due day out of range dropped",
			text: `{"is_bill": true, "due_day": 32, "confidence": 80}`,
			want: func(t *testing.T, res Result) {
				assert.Nil(t, res.DueDay)
			},
		},
		{
			name: "confidence clamped to 100",
			text: `{"is_bill": true, "confidence": 250}`,
			want: func(t *testing.T, res Result) {
				assert.Equal(t, 100, res.Confidence)
			},
		},
		{
			name: "negative confidence clamped to zero",
			text: `{"is_bill": true, "confidence": -5}`,
			want: func(t *testing.T, res Result) {
				assert.Equal(t, 0, res.Confidence)
			},
		},
		{
			name: "unknown category maps to other",
			text: `{"is_bill": true, "category": "Groceries", "confidence": 80}`,
			want: func(t *testing.T, res Result) {
				assert.Equal(t, types.BillCategoryOther, res.Category)
			},
		},
		{
			name: "blank name dropped",
			text: `{"is_bill": true, "name": "   ", "confidence": 80}`,
			want: func(t *testing.T, res Result) {
				assert.Nil(t, res.Name)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.want(t, parseResult(tt.text))
		})
	}
}

func TestParseResultNoJSON(t *testing.T) {
	res := parseResult("sorry, I cannot determine whether this is a bill")
	assert.False(t, res.IsBill)
	assert.Equal(t, 0, res.Confidence)
	assert.Equal(t, types.BillCategoryOther, res.Category)
}

func TestFirstJSONObject(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		want  string
		found bool
	}{
		{"plain object", `{"a":1}`, `{"a":1}`, true},
		{"prose around", `text {"a":1} more`, `{"a":1}`, true},
		{"nested braces", `{"a":{"b":2}}`, `{"a":{"b":2}}`, true},
		{"brace inside string", `{"a":"}"}`, `{"a":"}"}`, true},
		{"escaped quote inside string", `{"a":"\"}"}`, `{"a":"\"}"}`, true},
		{"unbalanced", `{"a":1`, "", false},
		{"no object", "nothing here", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := firstJSONObject(tt.in)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
