package inventory

import "testing"

func TestSuggestCategoryExact(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"flour", "Dry Goods"},
		{"milk", "Dairy"},
		{"chicken", "Meat"},
		{"prawns", "Seafood"},
		{"tomatoes", "Produce"},
		{"salt", "Spices"},
		{"olive oil", "Oils & Sauces"},
		{"coffee", "Beverages"},
		{"napkins", "Packaging"},
	}
	for _, tt := range tests {
		if got := SuggestCategory(tt.input); got != tt.want {
			t.Errorf("SuggestCategory(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSuggestCategoryKeyword(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Red Chili Powder", "Spices"},
		{"green chili", "Produce"},
		{"cheddar cheese", "Dairy"},
		{"frozen peas", "Frozen"},
		{"whole wheat flour", "Dry Goods"},
		{"takeaway box large", "Packaging"},
		{"BBQ sauce", "Oils & Sauces"},
	}
	for _, tt := range tests {
		if got := SuggestCategory(tt.input); got != tt.want {
			t.Errorf("SuggestCategory(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSuggestCategoryDefault(t *testing.T) {
	for _, input := range []string{"", "   ", "saffron threads"} {
		if got := SuggestCategory(input); got != DefaultCategory {
			t.Errorf("SuggestCategory(%q) = %q, want %q", input, got, DefaultCategory)
		}
	}
}
