// Package pii detects personally identifiable information in free text.
// Detection is local and regex based; nothing leaves the process.
package pii

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dsjohal14/promptlib/internal/scope/prompt"
)

// Detection types
const (
	TypeEmail       = "email"
	TypePhone       = "phone"
	TypeRUT         = "rut"
	TypeCreditCard  = "credit_card"
	TypeIPAddress   = "ip_address"
	TypeDateOfBirth = "date_of_birth"
	TypeSalary      = "salary"
)

// warningMatchLimit caps how many matches per type Warning lists.
const warningMatchLimit = 3

type rule struct {
	kind        string
	pattern     *regexp.Regexp
	description string
	risk        prompt.RiskLevel
}

var rules = []rule{
	{TypeEmail, regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`), "Email address", prompt.RiskMedium},
	{TypePhone, regexp.MustCompile(`(?:\+?56|0056)?[\s-]?[9|2][\s-]?\d{4}[\s-]?\d{4}`), "Chilean phone number", prompt.RiskMedium},
	{TypeRUT, regexp.MustCompile(`\b\d{1,2}\.?\d{3}\.?\d{3}-[0-9Kk]\b`), "Chilean RUT", prompt.RiskHigh},
	{TypeCreditCard, regexp.MustCompile(`\b(?:\d{4}[-\s]?){3}\d{4}\b`), "Credit card number", prompt.RiskHigh},
	{TypeIPAddress, regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`), "IP address", prompt.RiskLow},
	{TypeDateOfBirth, regexp.MustCompile(`\b\d{1,2}[-/]\d{1,2}[-/]\d{2,4}\b`), "Possible date of birth", prompt.RiskLow},
	{TypeSalary, regexp.MustCompile(`(?i)\$[\d.,]+(?:\s*(?:pesos|USD|EUR|CLP))?`), "Possible salary amount", prompt.RiskHigh},
}

// Detection is the result of one pattern over a text.
type Detection struct {
	Type        string   `json:"type"`
	Pattern     string   `json:"pattern"`
	Description string   `json:"description"`
	Found       bool     `json:"found"`
	Matches     []string `json:"matches"`
}

// Detect runs every pattern over text and returns one Detection per pattern,
// in a fixed order. Matches are deduplicated, keeping first-seen order.
func Detect(text string) []Detection {
	out := make([]Detection, 0, len(rules))
	for _, r := range rules {
		matches := dedupe(r.pattern.FindAllString(text, -1))
		out = append(out, Detection{
			Type:        r.kind,
			Pattern:     r.pattern.String(),
			Description: r.description,
			Found:       len(matches) > 0,
			Matches:     matches,
		})
	}
	return out
}

// Found filters detections down to those with at least one match.
func Found(detections []Detection) []Detection {
	out := make([]Detection, 0, len(detections))
	for _, d := range detections {
		if d.Found {
			out = append(out, d)
		}
	}
	return out
}

// HasHighRisk reports whether text contains a RUT, card number or salary.
func HasHighRisk(text string) bool {
	return RiskLevel(text) == prompt.RiskHigh
}

// RiskLevel classifies text by the most sensitive PII type it contains.
func RiskLevel(text string) prompt.RiskLevel {
	return LevelOf(Detect(text))
}

// LevelOf classifies already computed detections.
func LevelOf(detections []Detection) prompt.RiskLevel {
	level := prompt.RiskLow
	for _, d := range detections {
		if !d.Found {
			continue
		}
		if r := riskOf(d.Type); r.Rank() > level.Rank() {
			level = r
		}
	}
	return level
}

func riskOf(kind string) prompt.RiskLevel {
	for _, r := range rules {
		if r.kind == kind {
			return r.risk
		}
	}
	return prompt.RiskLow
}

// Warning renders a human readable notice listing what was found, or "" when
// nothing was.
func Warning(detections []Detection) string {
	found := Found(detections)
	if len(found) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Possible sensitive data detected:")
	for _, d := range found {
		shown := d.Matches
		more := ""
		if len(shown) > warningMatchLimit {
			shown = shown[:warningMatchLimit]
			more = "..."
		}
		fmt.Fprintf(&b, "\n• %s: %s%s", d.Description, strings.Join(shown, ", "), more)
	}
	b.WriteString("\n\nConsider anonymizing this data before continuing.")
	return b.String()
}

func dedupe(matches []string) []string {
	out := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}
