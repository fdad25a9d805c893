package ledger

import (
	"testing"
	"time"

	"resto-ledger/internal/model"

	"github.com/stretchr/testify/assert"
)

func purchase(id, date string, costs ...float64) model.Purchase {
	p := model.Purchase{ID: id, OwnerID: "u1", Date: date}
	for _, c := range costs {
		p.Ingredients = append(p.Ingredients, model.Ingredient{Name: "item", Quantity: 1, Unit: model.UnitKilogram, Cost: c})
	}
	return p
}

func TestFilterByMonth(t *testing.T) {
	purchases := []model.Purchase{
		purchase("a", "2024-01-05", 10),
		purchase("b", "2024-02-01", 5),
		purchase("c", "2024-01-20", 7),
		purchase("d", "2023-01-15", 3),
		purchase("e", "garbage", 1),
	}

	got := FilterByMonth(purchases, 1, 2024)

	if assert.Len(t, got, 2) {
		assert.Equal(t, "c", got[0].ID)
		assert.Equal(t, "a", got[1].ID)
	}
}

func TestFilterByMonth_Empty(t *testing.T) {
	assert.Empty(t, FilterByMonth(nil, 3, 2024))
}

func TestDistinctDates(t *testing.T) {
	purchases := []model.Purchase{
		purchase("a", "2024-02-09", 1),
		purchase("b", "2024-02-10", 1),
		purchase("c", "2024-02-09", 1),
		purchase("d", "2024-02-1", 1),
		purchase("e", "2024-02-28", 1),
	}

	got := DistinctDates(purchases)

	assert.Equal(t, []string{"2024-02-28", "2024-02-10", "2024-02-09", "2024-02-1"}, got)
}

func TestTotals(t *testing.T) {
	purchases := []model.Purchase{
		purchase("a", "2024-01-05", 10.25, 4.75),
		purchase("b", "2024-01-05", 3),
		purchase("c", "2024-01-20", 7.5),
	}

	assert.InDelta(t, 18.0, TotalForDate(purchases, "2024-01-05"), 1e-9)
	assert.InDelta(t, 7.5, TotalForDate(purchases, "2024-01-20"), 1e-9)
	assert.Zero(t, TotalForDate(purchases, "2024-01-31"))
	assert.InDelta(t, 25.5, TotalForMonth(purchases), 1e-9)
	assert.Zero(t, TotalForMonth(nil))
}

func TestDefaultPurchaseDate(t *testing.T) {
	tests := []struct {
		name     string
		today    time.Time
		month    int
		year     int
		expected string
	}{
		{
			name:     "Same day in selected month",
			today:    time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
			month:    1,
			year:     2024,
			expected: "2024-01-15",
		},
		{
			name:     "Day overflows into next month",
			today:    time.Date(2024, 3, 31, 10, 0, 0, 0, time.UTC),
			month:    2,
			year:     2024,
			expected: "2024-02-01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DefaultPurchaseDate(tt.today, tt.month, tt.year))
		})
	}
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "S/. 12.50", FormatMoney(12.5))
	assert.Equal(t, "S/. 0.00", FormatMoney(0))
	assert.Equal(t, "05/01/2024", FormatDate("2024-01-05"))
	assert.Equal(t, "05/01/2024", FormatDate("2024-1-5"))
	assert.Equal(t, "not-a-date", FormatDate("not-a-date"))
}
