package extractor

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/billhound/billhound/pkg/types"
)

// Free-tier extraction: no model call, just keyword and pattern heuristics.
// Deliberately conservative; confidence tops out at 75.

var (
	amountPattern   = regexp.MustCompile(`\$\s*([0-9][0-9,]*(?:\.[0-9]{1,2})?)`)
	dueSlashPattern = regexp.MustCompile(`(?i)due[^0-9]{0,24}([0-9]{1,2})/([0-9]{1,2})`)
	dueDayPattern   = regexp.MustCompile(`(?i)due[^0-9]{0,24}\b([0-9]{1,2})(?:st|nd|rd|th)?\b`)
	fromNamePattern = regexp.MustCompile(`^\s*"?([^"<]+?)"?\s*<`)
)

var strongKeywords = []string{"invoice", "bill", "statement", "payment due", "amount due"}

var categoryKeywords = []struct {
	words    []string
	category types.BillCategory
}{
	{[]string{"insurance", "premium"}, types.BillCategoryInsurance},
	{[]string{"credit card", "card statement", "visa", "mastercard", "amex"}, types.BillCategoryCreditCard},
	{[]string{"electric", "water", "gas", "utility", "power"}, types.BillCategoryUtilities},
	{[]string{"internet", "phone", "wireless", "mobile"}, types.BillCategoryPhoneInternet},
	{[]string{"netflix", "spotify", "hulu", "subscription", "streaming"}, types.BillCategoryStreaming},
	{[]string{"rent", "mortgage", "lease"}, types.BillCategoryRentMortgage},
	{[]string{"loan", "installment"}, types.BillCategoryLoan},
}

func extractKeyword(cand Candidate) Result {
	res := notABill()

	subject := strings.ToLower(cand.Subject)
	body := strings.ToLower(cand.Body)

	subjectHit := containsAny(subject, strongKeywords)
	bodyHit := containsAny(body, strongKeywords)
	if !subjectHit && !bodyHit {
		return res
	}
	res.IsBill = true

	if name := payeeName(cand); name != "" {
		res.Name = &name
	}

	if m := amountPattern.FindStringSubmatch(cand.Body); m != nil {
		if amount, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64); err == nil && amount > 0 {
			res.Amount = &amount
			res.AmountEvidence = strings.TrimSpace(m[0])
		}
	}

	if m := dueSlashPattern.FindStringSubmatch(cand.Body); m != nil {
		if day, err := strconv.Atoi(m[2]); err == nil && day >= 1 && day <= 31 {
			res.DueDay = &day
			res.DueDateEvidence = strings.TrimSpace(m[0])
		}
	} else if m := dueDayPattern.FindStringSubmatch(cand.Body); m != nil {
		if day, err := strconv.Atoi(m[1]); err == nil && day >= 1 && day <= 31 {
			res.DueDay = &day
			res.DueDateEvidence = strings.TrimSpace(m[0])
		}
	}

	res.Category = guessCategory(subject + " " + body)

	switch {
	case subjectHit && res.Amount != nil:
		res.Confidence = 75
	case res.Amount != nil:
		res.Confidence = 60
	default:
		res.Confidence = 35
	}
	return res
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// payeeName prefers the display name in the From header, falling back to the
// leading words of the subject.
func payeeName(cand Candidate) string {
	if m := fromNamePattern.FindStringSubmatch(cand.From); m != nil {
		return strings.TrimSpace(m[1])
	}
	words := strings.Fields(cand.Subject)
	if len(words) > 4 {
		words = words[:4]
	}
	return strings.TrimSpace(strings.Join(words, " "))
}

func guessCategory(text string) types.BillCategory {
	for _, ck := range categoryKeywords {
		if containsAny(text, ck.words) {
			return ck.category
		}
	}
	return types.BillCategoryOther
}
