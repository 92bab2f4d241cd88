package inventory

import "strings"

// DefaultCategory is suggested when nothing matches.
const DefaultCategory = "General"

// SuggestCategory returns a stock category for an ingredient name. Exact
// names win over keyword matches. Matching ignores case.
func SuggestCategory(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return DefaultCategory
	}
	if cat, ok := exactCategories[n]; ok {
		return cat
	}
	for _, k := range categoryKeywords {
		if strings.Contains(n, k.keyword) {
			return k.category
		}
	}
	return DefaultCategory
}

var exactCategories = map[string]string{
	"flour":       "Dry Goods",
	"sugar":       "Dry Goods",
	"rice":        "Dry Goods",
	"pasta":       "Dry Goods",
	"yeast":       "Dry Goods",
	"oats":        "Dry Goods",
	"lentils":     "Dry Goods",
	"breadcrumbs": "Dry Goods",

	"milk":       "Dairy",
	"butter":     "Dairy",
	"cheese":     "Dairy",
	"cream":      "Dairy",
	"yogurt":     "Dairy",
	"paneer":     "Dairy",
	"eggs":       "Dairy",
	"ghee":       "Dairy",
	"mozzarella": "Dairy",

	"chicken": "Meat",
	"beef":    "Meat",
	"pork":    "Meat",
	"lamb":    "Meat",
	"mutton":  "Meat",
	"bacon":   "Meat",
	"ham":     "Meat",

	"salmon": "Seafood",
	"shrimp": "Seafood",
	"prawns": "Seafood",
	"tuna":   "Seafood",
	"fish":   "Seafood",

	"tomato":   "Produce",
	"tomatoes": "Produce",
	"onion":    "Produce",
	"onions":   "Produce",
	"garlic":   "Produce",
	"ginger":   "Produce",
	"potato":   "Produce",
	"potatoes": "Produce",
	"lettuce":  "Produce",
	"spinach":  "Produce",
	"basil":    "Produce",
	"lemon":    "Produce",
	"lime":     "Produce",

	"salt":     "Spices",
	"pepper":   "Spices",
	"cumin":    "Spices",
	"turmeric": "Spices",
	"paprika":  "Spices",
	"oregano":  "Spices",
	"cinnamon": "Spices",

	"olive oil":  "Oils & Sauces",
	"oil":        "Oils & Sauces",
	"vinegar":    "Oils & Sauces",
	"ketchup":    "Oils & Sauces",
	"mayonnaise": "Oils & Sauces",
	"soy sauce":  "Oils & Sauces",

	"coffee": "Beverages",
	"tea":    "Beverages",
	"soda":   "Beverages",
	"juice":  "Beverages",

	"boxes":   "Packaging",
	"napkins": "Packaging",
	"straws":  "Packaging",
}

type keywordCategory struct {
	keyword  string
	category string
}

// Longer keywords come first so "chili powder" does not match "chili" as produce.
var categoryKeywords = []keywordCategory{
	{"chili powder", "Spices"},
	{"garam masala", "Spices"},
	{"chicken breast", "Meat"},
	{"ground beef", "Meat"},
	{"pizza base", "Bakery"},
	{"burger bun", "Bakery"},
	{"frozen", "Frozen"},
	{"ice cream", "Frozen"},
	{"sauce", "Oils & Sauces"},
	{"oil", "Oils & Sauces"},
	{"powder", "Spices"},
	{"seed", "Spices"},
	{"cheese", "Dairy"},
	{"milk", "Dairy"},
	{"cream", "Dairy"},
	{"egg", "Dairy"},
	{"chicken", "Meat"},
	{"beef", "Meat"},
	{"sausage", "Meat"},
	{"fish", "Seafood"},
	{"prawn", "Seafood"},
	{"shrimp", "Seafood"},
	{"flour", "Dry Goods"},
	{"rice", "Dry Goods"},
	{"noodle", "Dry Goods"},
	{"bean", "Dry Goods"},
	{"bread", "Bakery"},
	{"bun", "Bakery"},
	{"dough", "Bakery"},
	{"tortilla", "Bakery"},
	{"tomato", "Produce"},
	{"onion", "Produce"},
	{"pepper", "Produce"},
	{"mushroom", "Produce"},
	{"lettuce", "Produce"},
	{"herb", "Produce"},
	{"chili", "Produce"},
	{"juice", "Beverages"},
	{"water", "Beverages"},
	{"box", "Packaging"},
	{"container", "Packaging"},
	{"bag", "Packaging"},
	{"cup", "Packaging"},
}
