package items

import "time"

// Item is one row of the items table. quantity is the live un-reserved
// count; issue/return transitions in the requests package are the only
// writers once requests are in flight (catalogue edits change the baseline,
// not the live reservation count).
type Item struct {
	ItemID      int64
	Name        string
	Description string
	Quantity    int
	Category    string
	IsAvailable bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

var categories = map[string]struct{}{
	"lab":         {},
	"electronics": {},
	"books":       {},
	"general":     {},
}

const defaultCategory = "general"

func validCategory(s string) bool {
	_, ok := categories[s]
	return ok
}

type ItemFilter struct {
	Category    *string
	IsAvailable *bool
}

type Page struct {
	Limit  int
	Offset int
	Order  string
}
