package domain

import "regexp"

// AreaParts is the administrative breakdown of a Korean address.
type AreaParts struct {
	City     string `json:"city"`     // ...시 / ...군
	District string `json:"district"` // ...구
	Dong     string `json:"dong"`     // ...동
}

var (
	cityRe     = regexp.MustCompile(`^(.*?[시군])`)
	districtRe = regexp.MustCompile(`([가-힣]+구)`)
	dongRe     = regexp.MustCompile(`([가-힣]+동)`)
	areaRe     = regexp.MustCompile(`^(.*?[시군구])`)
)

// SplitArea extracts city/district/dong from a free-form address. Missing
// parts stay empty; the input is never an error.
func SplitArea(address string) AreaParts {
	var parts AreaParts
	if m := cityRe.FindStringSubmatch(address); m != nil {
		parts.City = m[1]
	}
	if m := districtRe.FindStringSubmatch(address); m != nil {
		parts.District = m[1]
	}
	if m := dongRe.FindStringSubmatch(address); m != nil {
		parts.Dong = m[1]
	}
	return parts
}

// Area returns the leading run of an address up through the first
// administrative suffix (시/군/구), or "" if none is present.
func Area(address string) string {
	if m := areaRe.FindStringSubmatch(address); m != nil {
		return m[1]
	}
	return ""
}
