package service

import "math/rand/v2"

const DefaultSuggestionCount = 3

var suggestions = [...]string{
	"- Offer a bundle discount for Wireless Earbuds + Bluetooth Speaker.",
	"- Run retargeting for customers who viewed top product.",
	"- Create limited-time free-shipping for orders above $100.",
	"- Improve product page descriptions and add tutorial videos.",
}

// Suggestions returns the full canned list.
func Suggestions() []string {
	out := make([]string, len(suggestions))
	copy(out, suggestions[:])
	return out
}

// PickSuggestions returns n distinct canned suggestions in random order.
// n is clamped to [0, len(suggestions)]; a nil rng uses the global source.
func PickSuggestions(rng *rand.Rand, n int) []string {
	n = min(max(n, 0), len(suggestions))
	pool := Suggestions()
	shuffle := rand.Shuffle
	if rng != nil {
		shuffle = rng.Shuffle
	}
	shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	return pool[:n]
}
