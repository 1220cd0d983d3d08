package discovery

import (
	"math/rand"
	"strings"

	"printkit/internal/services/printify"
)

const (
	DefaultCategory = "other"
	DefaultPrice    = 2000
	DefaultWeight   = 200
)

// Rule maps keywords to a category. Title keywords are matched against the
// lower-cased title, description keywords against the lower-cased description.
type Rule struct {
	Category    string
	Title       []string
	Description []string
}

// Rules are evaluated in order; the first match wins.
var Rules = []Rule{
	{Category: "t-shirts", Title: []string{"t-shirt", "tee"}, Description: []string{"t-shirt"}},
	{Category: "hoodies", Title: []string{"hoodie", "sweatshirt"}},
	{Category: "mugs", Title: []string{"mug", "cup"}},
	{Category: "posters", Title: []string{"poster", "print"}},
	{Category: "phone-cases", Title: []string{"phone", "case"}},
	{Category: "bags", Title: []string{"bag", "tote"}},
	{Category: "hats", Title: []string{"hat", "cap"}},
	{Category: "tank-tops", Title: []string{"tank", "sleeveless"}},
	{Category: "stickers", Title: []string{"sticker"}},
	{Category: "pillows", Title: []string{"pillow"}},
	{Category: "towels", Title: []string{"towel"}},
	{Category: "socks", Title: []string{"sock"}},
	{Category: "jackets", Title: []string{"jacket"}},
	{Category: "dresses", Title: []string{"dress"}},
	{Category: "pants", Title: []string{"pant", "legging"}},
}

var prices = map[string]int{
	"t-shirts":    2500,
	"hoodies":     4500,
	"mugs":        1500,
	"posters":     2000,
	"phone-cases": 1800,
	"bags":        3000,
	"hats":        2200,
	"tank-tops":   2000,
	"stickers":    500,
	"pillows":     3500,
	"towels":      2500,
	"socks":       1200,
	"jackets":     5500,
	"dresses":     4000,
	"pants":       3500,
	"other":       2000,
}

var weights = map[string]int{
	"t-shirts":    180,
	"hoodies":     400,
	"mugs":        350,
	"posters":     50,
	"phone-cases": 30,
	"bags":        200,
	"hats":        100,
	"tank-tops":   150,
	"stickers":    5,
	"pillows":     500,
	"towels":      300,
	"socks":       50,
	"jackets":     600,
	"dresses":     250,
	"pants":       300,
	"other":       200,
}

var (
	popularBrands     = []string{"gildan", "champion", "bella+canvas", "next level"}
	popularCategories = map[string]bool{"t-shirts": true, "hoodies": true, "mugs": true}
)

func (r Rule) matches(title, description string) bool {
	for _, kw := range r.Title {
		if strings.Contains(title, kw) {
			return true
		}
	}
	for _, kw := range r.Description {
		if strings.Contains(description, kw) {
			return true
		}
	}
	return false
}

// Categorize returns the category of the first rule matching the text.
func Categorize(title, description string) string {
	title = strings.ToLower(title)
	description = strings.ToLower(description)
	for _, rule := range Rules {
		if rule.matches(title, description) {
			return rule.Category
		}
	}
	return DefaultCategory
}

// CategoryNames lists every category in rule order, followed by the default.
func CategoryNames() []string {
	names := make([]string, 0, len(Rules)+1)
	for _, r := range Rules {
		names = append(names, r.Category)
	}
	return append(names, DefaultCategory)
}

// EstimatePrice is the suggested retail price of a category in cents.
func EstimatePrice(category string) int {
	if p, ok := prices[category]; ok {
		return p
	}
	return DefaultPrice
}

// EstimateWeight is the typical shipping weight of a category in grams.
func EstimateWeight(category string) int {
	if w, ok := weights[category]; ok {
		return w
	}
	return DefaultWeight
}

// PopularityScore ranks a blueprint/provider pair: 50 base, +20 for a
// popular brand, +15 for a popular category, +10 for a US provider.
func PopularityScore(bp printify.Blueprint, provider printify.PrintProvider) float64 {
	score := 50.0

	brand := strings.ToLower(bp.Brand)
	for _, b := range popularBrands {
		if strings.Contains(brand, b) {
			score += 20
			break
		}
	}

	if popularCategories[Categorize(bp.Title, bp.Description)] {
		score += 15
	}

	loc := provider.Location
	if loc.IsStructured() {
		if loc.Country == "US" {
			score += 10
		}
	} else if strings.Contains(strings.ToLower(loc.Text), "united states") {
		score += 10
	}
	return score
}

// Sample picks up to n items uniformly without replacement. The input is
// not modified.
func Sample[T any](items []T, n int, rng *rand.Rand) []T {
	if n > len(items) {
		n = len(items)
	}
	if n <= 0 {
		return []T{}
	}

	pool := make([]T, len(items))
	copy(pool, items)
	for i := 0; i < n; i++ {
		var j int
		if rng != nil {
			j = i + rng.Intn(len(pool)-i)
		} else {
			j = i + rand.Intn(len(pool)-i)
		}
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n]
}
