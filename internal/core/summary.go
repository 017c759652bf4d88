package core

// RecentLimit is how many transactions the dashboard lists.
const RecentLimit = 5

// CategoryTotal is the expense total of one category in a period.
type CategoryTotal struct {
	CategoryID string `json:"category_id,omitempty"`
	Name       string `json:"name"`
	Color      string `json:"color"`
	Amount     Money  `json:"amount"`
}

// MonthSummary is the dashboard for one household and month.
type MonthSummary struct {
	Year       int             `json:"year"`
	Month      int             `json:"month"`
	Income     Money           `json:"income"`
	Expense    Money           `json:"expense"`
	Balance    Money           `json:"balance"`
	ByCategory []CategoryTotal `json:"by_category"`
	Recent     []Transaction   `json:"recent"`
}

// UncategorizedLabel names the bucket of expenses without a category.
const UncategorizedLabel = "Uncategorized"

// LabelCategoryTotal fills the name and color of the uncategorized bucket.
func LabelCategoryTotal(ct CategoryTotal) CategoryTotal {
	if ct.CategoryID == "" {
		ct.Name = UncategorizedLabel
		ct.Color = DefaultColor
	}
	return ct
}
