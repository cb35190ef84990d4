package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dsjohal14/promptlib/internal/scope/autotag"
)

// Severity of a quality finding
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Quality thresholds
const (
	minTitleLen       = 5
	maxTitleLen       = 100
	minDescriptionLen = 10
	maxDescriptionLen = 500
	minBodyLen        = 30
	maxBodyLen        = 15000
	maxVariables      = 20
)

// Finding is a single quality problem.
type Finding struct {
	Field    string `json:"field"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// Report is the outcome of Quality.
type Report struct {
	Valid       bool      `json:"valid"`
	Errors      []Finding `json:"errors"`
	Score       int       `json:"score"`
	Suggestions []string  `json:"suggestions"`
}

// PromptDraft is the content Quality inspects.
type PromptDraft struct {
	Title       string
	Description string
	Body        string
	Category    string
}

type pattern struct {
	re  *regexp.Regexp
	msg string
}

var (
	titleChars = regexp.MustCompile(`^[a-zA-Z0-9\sáéíóúñÁÉÍÓÚÑ¿¡?!.,-]+$`)

	forbidden = []pattern{
		{regexp.MustCompile(`(?i)\b(tbd|todo|to-do)\b`), `Contains "TBD/TODO"; finish the content`},
		{regexp.MustCompile(`(?i)\b(lorem ipsum|placeholder)\b`), "Contains sample text"},
		{regexp.MustCompile(`\?{3,}`), "Contains too many question marks"},
		{regexp.MustCompile(`!{3,}`), "Contains too many exclamation marks"},
		{regexp.MustCompile(`\[\s*...\s*\]`), "Contains example brackets"},
	}

	generic = []pattern{
		{regexp.MustCompile(`(?i)\b(simple|basic|easy)\s+(task|thing|example)`), "The prompt is too generic"},
		{regexp.MustCompile(`(?i)^h(ola|ey|ello)`), "Greeting is too informal"},
	}

	instruction = regexp.MustCompile(`(?i)(actúa|actuar|eres|soy|necesito|quiero|crea|genera|escribe)`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// Quality grades a prompt draft from 0 to 100. Errors make the draft invalid;
// warnings only lower the score. Findings are ordered errors first.
func Quality(d PromptDraft) Report {
	var errs, warns []Finding
	suggestions := []string{}
	score := 100

	fail := func(field, msg string, penalty int) {
		errs = append(errs, Finding{field, msg, SeverityError})
		score -= penalty
	}
	warn := func(field, msg string, penalty int) {
		warns = append(warns, Finding{field, msg, SeverityWarning})
		score -= penalty
	}

	titleLen := utf8.RuneCountInString(d.Title)
	switch {
	case strings.TrimSpace(d.Title) == "":
		fail("title", "Title is required", 30)
	case titleLen < minTitleLen:
		fail("title", "Title must be at least 5 characters", 20)
	case titleLen > maxTitleLen:
		fail("title", "Title cannot exceed 100 characters", 15)
	case !titleChars.MatchString(d.Title):
		warn("title", "Title contains disallowed special characters", 5)
	}

	descLen := utf8.RuneCountInString(d.Description)
	switch {
	case strings.TrimSpace(d.Description) == "":
		fail("description", "Description is required", 20)
	case descLen < minDescriptionLen:
		warn("description", "Description should be at least 10 characters", 10)
	case descLen > maxDescriptionLen:
		warn("description", "Description cannot exceed 500 characters", 5)
	}

	bodyLen := utf8.RuneCountInString(d.Body)
	switch {
	case strings.TrimSpace(d.Body) == "":
		fail("body", "Prompt body is required", 40)
	case bodyLen < minBodyLen:
		fail("body", "Prompt must be at least 30 characters", 25)
	case bodyLen > maxBodyLen:
		fail("body", "Prompt cannot exceed 15000 characters", 15)
	}

	for _, p := range forbidden {
		if p.re.MatchString(d.Body) {
			fail("body", p.msg, 15)
		}
	}
	for _, p := range generic {
		if p.re.MatchString(d.Body) || p.re.MatchString(d.Title) {
			warn("body", p.msg, 10)
		}
	}

	switch vars := autotag.ExtractVariables(d.Body); {
	case len(vars) == 0:
		warn("body", "Add at least one variable such as {name} or {topic}", 10)
		suggestions = append(suggestions, "Use {variable} placeholders to make the prompt reusable")
	case len(vars) > maxVariables:
		warn("body", "Too many variables; the maximum is 20", 5)
	}

	if d.Category == "" {
		fail("category", "Select a category", 15)
	}

	if bodyLen > 500 && !strings.Contains(d.Body, "\n") {
		suggestions = append(suggestions, "Consider paragraphs or lists to improve readability")
	}
	if !instruction.MatchString(d.Body) {
		suggestions = append(suggestions, `Add a clear instruction such as "Crea..." or "Escribe..."`)
	}
	if bodyLen > 200 && len(whitespace.Split(d.Body, -1)) < 20 {
		suggestions = append(suggestions, "Consider adding more context or detail")
	}

	return Report{
		Valid:       len(errs) == 0,
		Errors:      append(append([]Finding{}, errs...), warns...),
		Score:       max(0, min(100, score)),
		Suggestions: suggestions,
	}
}

// ScoreLabel describes a quality score in words.
func ScoreLabel(score int) string {
	switch {
	case score >= 90:
		return "excellent"
	case score >= 70:
		return "good"
	case score >= 50:
		return "fair"
	case score >= 30:
		return "needs work"
	}
	return "review"
}

var variableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Variable checks one variable schema entry.
func Variable(name, label string) Errors {
	e := Errors{}
	if e.Required("name", name) {
		e.Check(variableName.MatchString(name), "name", "use only letters, digits and underscores")
	}
	e.Required("label", label)
	return e
}
