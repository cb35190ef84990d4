package validate

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func goodDraft() PromptDraft {
	return PromptDraft{
		Title:       "Correo de bienvenida",
		Description: "Genera un correo para nuevos empleados",
		Body:        "Escribe un correo de bienvenida para {nombre} que se une al equipo de {area}.",
		Category:    "RRHH",
	}
}

func TestQualityGoodDraft(t *testing.T) {
	r := Quality(goodDraft())
	assert.True(t, r.Valid)
	assert.Equal(t, 100, r.Score)
	assert.Empty(t, r.Errors)
	assert.Empty(t, r.Suggestions)
}

func TestQualityEmptyDraft(t *testing.T) {
	r := Quality(PromptDraft{})
	assert.False(t, r.Valid)
	assert.Equal(t, 0, r.Score)

	fields := map[string]bool{}
	for _, f := range r.Errors {
		fields[f.Field] = true
	}
	assert.True(t, fields["title"])
	assert.True(t, fields["description"])
	assert.True(t, fields["body"])
	assert.True(t, fields["category"])
}

func TestQualityErrorsBeforeWarnings(t *testing.T) {
	d := goodDraft()
	d.Title = "Hola"
	d.Description = "corta"
	d.Body = "TODO escribir algo mejor aquí para el equipo"

	r := Quality(d)
	require.NotEmpty(t, r.Errors)
	seenWarning := false
	for _, f := range r.Errors {
		if f.Severity == SeverityWarning {
			seenWarning = true
			continue
		}
		assert.False(t, seenWarning, "error %q listed after a warning", f.Message)
	}
	assert.True(t, seenWarning)
}

func TestQualityPenalties(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PromptDraft)
		score  int
		valid  bool
	}{
		{"short title", func(d *PromptDraft) { d.Title = "Abc" }, 80, false},
		{"special chars in title", func(d *PromptDraft) { d.Title = "Correo <html>" }, 95, true},
		{"short description", func(d *PromptDraft) { d.Description = "corta" }, 90, true},
		{"missing category", func(d *PromptDraft) { d.Category = "" }, 85, false},
		{"no variables", func(d *PromptDraft) { d.Body = "Escribe un correo de bienvenida para el nuevo equipo." }, 90, true},
		{"placeholder text", func(d *PromptDraft) { d.Body += " lorem ipsum" }, 85, false},
		{"informal greeting", func(d *PromptDraft) { d.Title = "Hola equipo" }, 90, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := goodDraft()
			tt.mutate(&d)
			r := Quality(d)
			assert.Equal(t, tt.score, r.Score)
			assert.Equal(t, tt.valid, r.Valid)
		})
	}
}

func TestQualitySuggestions(t *testing.T) {
	d := goodDraft()
	d.Body = "Un texto para {nombre} sin verbo de instrucción claro."
	r := Quality(d)
	assert.Contains(t, strings.Join(r.Suggestions, "|"), "clear instruction")

	d.Body = "Escribe " + strings.Repeat("palabra", 80) + " {x}"
	r = Quality(d)
	assert.Contains(t, strings.Join(r.Suggestions, "|"), "more context")
}

func TestScoreLabel(t *testing.T) {
	assert.Equal(t, "excellent", ScoreLabel(95))
	assert.Equal(t, "good", ScoreLabel(70))
	assert.Equal(t, "fair", ScoreLabel(55))
	assert.Equal(t, "needs work", ScoreLabel(30))
	assert.Equal(t, "review", ScoreLabel(0))
}

func TestVariable(t *testing.T) {
	assert.NoError(t, Variable("nombre_1", "Nombre").Err())
	assert.Contains(t, Variable("1abc", "x"), "name")
	assert.Contains(t, Variable("", ""), "label")
}

func TestErrors(t *testing.T) {
	e := Errors{}
	assert.NoError(t, e.Err())

	assert.True(t, e.Required("title", "ok"))
	assert.False(t, e.Required("body", "  "))
	assert.False(t, e.MaxLen("title", strings.Repeat("á", MaxTitleLen+1), MaxTitleLen))
	assert.True(t, e.MaxLen("comment", strings.Repeat("á", MaxCommentLen), MaxCommentLen))
	assert.False(t, e.MinLen("password", "short", MinPasswordLen))

	err := e.Err()
	require.Error(t, err)

	var verr Errors
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr, 3)
	assert.Contains(t, err.Error(), "body: body is required")
}
