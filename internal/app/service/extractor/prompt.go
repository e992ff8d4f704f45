package extractor

import "fmt"

// buildPrompt encodes the domain heuristics the model must apply. The model
// is asked for a bare JSON object; parseResult still treats the reply as
// untrusted free text.
func buildPrompt(cand Candidate) string {
	return fmt.Sprintf(`You are analyzing an email to decide whether it describes a recurring bill the recipient must pay, and to extract its details.

Rules:
- Only mark is_bill true for actual payment obligations (bills, invoices, statements, premiums, subscriptions). Receipts for completed one-off purchases, marketing mail and payment confirmations are not bills.
- For credit card statements, prefer the "Statement Balance" over the "Minimum Payment" as the amount.
- For insurance premiums quoted per year, divide by 12 and report the monthly figure; reduce confidence by 10 when you do this.
- When several dates appear, prefer the latest plausible due date.
- Reduce confidence when the company name is generic (e.g. "Billing Department", "Customer Service") or when the amount is unusually large (over $10,000).
- amount is a plain number without currency symbols or thousands separators.
- due_day is the day of month (1-31) the payment is due, or null if none is stated.
- category must be one of: Utilities, Rent/Mortgage, Insurance, Credit Card, Loan, Phone/Internet, Streaming/Subscriptions, Transportation, Healthcare, Other.
- confidence is an integer 0-100 reflecting how sure you are this is a bill with correct fields.
- amount_evidence and due_date_evidence quote the exact text the values came from, or are empty strings.

Respond with only a JSON object in this shape:
{"is_bill": true, "name": "Chase Credit Card", "amount": 2847.23, "due_day": 15, "category": "Credit Card", "confidence": 90, "amount_evidence": "Statement Balance: $2,847.23", "due_date_evidence": "Payment Due Date: 06/15"}

Email subject: %s
Email sender: %s
Email body:
%s`, cand.Subject, cand.From, cand.Body)
}
