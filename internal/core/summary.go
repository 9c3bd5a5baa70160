package core

// Summary aggregates the ledger for a single currency. Amounts are stored
// unsigned, so the balance is income minus expense.
type Summary struct {
	Currency string
	Income   Money
	Expense  Money
}

// Balance returns income minus expense in minor units.
func (s Summary) Balance() int64 {
	return s.Income.Units - s.Expense.Units
}
