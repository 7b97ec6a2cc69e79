package enrich

import (
	"regexp"
	"strings"
)

var reCityState = regexp.MustCompile(`\b([A-Z][a-z]+(?:\s[A-Z][a-z]+)*)\s*,\s*(AL|AK|AZ|AR|CA|CO|CT|DE|FL|GA|HI|ID|IL|IN|IA|KS|KY|LA|ME|MD|MA|MI|MN|MS|MO|MT|NE|NV|NH|NJ|NM|NY|NC|ND|OH|OK|OR|PA|RI|SC|SD|TN|TX|UT|VT|VA|WA|WV|WI|WY)\b`)

// ExtractLocationHint reads a coarse location from the top of the JD.
// "Remote" anywhere in the sample wins; otherwise the first City, ST
// pair. Callers pass roughly the first 600 characters.
func ExtractLocationHint(topText string) string {
	s := strings.Join(strings.Fields(topText), " ")
	if strings.Contains(strings.ToLower(s), "remote") {
		return "Remote (mentioned)"
	}
	if m := reCityState.FindString(s); m != "" {
		return m
	}
	return ""
}

// ExtractWorkModeHint lists the work-mode keywords the JD mentions,
// in remote/hybrid/in_person order.
func ExtractWorkModeHint(text string) string {
	t := strings.ToLower(text)
	var hits []string
	if strings.Contains(t, "remote") {
		hits = append(hits, "remote")
	}
	if strings.Contains(t, "hybrid") {
		hits = append(hits, "hybrid")
	}
	if strings.Contains(t, "in-office") || strings.Contains(t, "in office") ||
		strings.Contains(t, "onsite") || strings.Contains(t, "on-site") {
		hits = append(hits, "in_person")
	}
	return strings.Join(hits, ", ")
}
