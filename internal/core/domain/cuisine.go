package domain

import "strings"

const categoryPrefix = "음식점>"

// cuisineKeywords is checked in order; list order is a deliberate priority,
// not alphabetical.
var cuisineKeywords = []string{
	"한식",
	"중식",
	"일식",
	"양식",
	"아시아음식",
	"치킨",
	"피자",
	"카페",
	"분식",
}

// Cuisine normalizes a raw `>`-delimited provider category into one of the
// known cuisine types. Falls back to the last path segment when no keyword
// matches.
func Cuisine(category string) string {
	clean := strings.TrimPrefix(category, categoryPrefix)

	for _, kw := range cuisineKeywords {
		if strings.Contains(clean, kw) {
			return kw
		}
	}

	if i := strings.LastIndex(clean, ">"); i >= 0 && i+1 < len(clean) {
		return clean[i+1:]
	}
	return clean
}
