package types

type Recurrence string

const (
	RecurrenceMonthly Recurrence = "monthly"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceYearly  Recurrence = "yearly"
	RecurrenceOnce    Recurrence = "once"
)

func (r Recurrence) Known() bool {
	switch r {
	case RecurrenceMonthly, RecurrenceWeekly, RecurrenceYearly, RecurrenceOnce:
		return true
	}
	return false
}

type BillCategory string

const (
	BillCategoryUtilities     BillCategory = "Utilities"
	BillCategoryRentMortgage  BillCategory = "Rent/Mortgage"
	BillCategoryInsurance     BillCategory = "Insurance"
	BillCategoryCreditCard    BillCategory = "Credit Card"
	BillCategoryLoan          BillCategory = "Loan"
	BillCategoryPhoneInternet BillCategory = "Phone/Internet"
	BillCategoryStreaming     BillCategory = "Streaming/Subscriptions"
	BillCategoryTransport     BillCategory = "Transportation"
	BillCategoryHealthcare    BillCategory = "Healthcare"
	BillCategoryOther         BillCategory = "Other"
)

var billCategories = map[BillCategory]bool{
	BillCategoryUtilities:     true,
	BillCategoryRentMortgage:  true,
	BillCategoryInsurance:     true,
	BillCategoryCreditCard:    true,
	BillCategoryLoan:          true,
	BillCategoryPhoneInternet: true,
	BillCategoryStreaming:     true,
	BillCategoryTransport:     true,
	BillCategoryHealthcare:    true,
	BillCategoryOther:         true,
}

func (c BillCategory) Known() bool {
	return billCategories[c]
}

// ParseBillCategory maps free-form category text to a known category,
// defaulting to Other.
func ParseBillCategory(s string) BillCategory {
	c := BillCategory(s)
	if c.Known() {
		return c
	}
	return BillCategoryOther
}
