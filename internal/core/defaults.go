package core

// DefaultMonthlyIncome is the income assumed for a month that has never been
// configured. Month configs are synthesized with it on first read and only
// persisted once explicitly saved.
const DefaultMonthlyIncome int64 = 15000

// DefaultCategories is the category set a fresh household starts with.
// The savings category is last and must stay last; AddCategory inserts
// new categories before it.
func DefaultCategories() []Category {
	return []Category{
		{ID: "1", Name: "Dom i Rachunki", Limit: 3000, Icon: "Home"},
		{ID: "2", Name: "Jedzenie (Dom)", Limit: 2000, Icon: "ShoppingBasket"},
		{ID: "3", Name: "Jedzenie (Miasto)", Limit: 500, Icon: "Coffee"},
		{ID: "4", Name: "Transport", Limit: 800, Icon: "Car"},
		{ID: "5", Name: "Zdrowie", Limit: 300, Icon: "Heart"},
		{ID: "6", Name: "Rozrywka", Limit: 400, Icon: "Film"},
		{ID: "7", Name: "Inne", Limit: 200, Icon: "MoreHorizontal"},
		{ID: SavingsCategoryID, Name: "Oszczędności", Limit: 0, Icon: "PiggyBank"},
	}
}

// DefaultSavingsCategory returns the savings category definition appended by
// the self-healing migration when a loaded document lacks it.
func DefaultSavingsCategory() Category {
	return Category{ID: SavingsCategoryID, Name: "Oszczędności", Limit: 0, Icon: "PiggyBank"}
}

// InitialSavingsGoal is the legacy goal written into synthesized month
// configs. Nothing reads it anymore; it survives for older documents.
func InitialSavingsGoal() SavingsGoal {
	return SavingsGoal{
		ID:           "house-fund",
		Name:         "Wykończenie Domu",
		TargetAmount: 5000,
		ActualAmount: 5000,
	}
}

// DefaultDocument is the state of a household that has never been persisted.
func DefaultDocument() Document {
	return Document{
		Configs:          map[string]MonthConfig{},
		Categories:       DefaultCategories(),
		Transactions:     []Transaction{},
		MerchantMappings: []MerchantMapping{},
	}
}
