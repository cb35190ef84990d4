package autotag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractVariables(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{"none", "plain text", []string{}},
		{"ordered unique", "Hola {nombre}, bienvenido a {empresa}. {nombre}", []string{"nombre", "empresa"}},
		{"word characters only", "{no-var} {a_b} {}", []string{"a_b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractVariables(tt.body))
		})
	}
}

func TestSuggest(t *testing.T) {
	got := Suggest("Redactar un correo de bienvenida para un nuevo empleado")
	assert.Equal(t, []string{"onboarding", "email", "comunicacion"}, got)
}

func TestSuggestTiesKeepRuleOrder(t *testing.T) {
	assert.Equal(t, []string{"python", "sql"}, Suggest("sql python"))
}

func TestSuggestFoldsAccentedKeywords(t *testing.T) {
	assert.Equal(t, []string{"codigo"}, Suggest("Escribe código"))
}

func TestSuggestCapsAtFive(t *testing.T) {
	got := Suggest("email whatsapp python sql excel seo instagram")
	assert.Len(t, got, 5)
	assert.Equal(t, []string{"python", "sql"}, got[:2])
}

func TestSuggestShortText(t *testing.T) {
	assert.Empty(t, Suggest("sql"))
	assert.NotNil(t, Suggest(""))
}

func TestMainCategory(t *testing.T) {
	assert.Equal(t, "python", MainCategory("sql python"))
	assert.Equal(t, DefaultCategory, MainCategory("xxxxxx zzzzz"))
}

func TestAnalyzeComplexity(t *testing.T) {
	simple := AnalyzeComplexity("Hola {nombre}", 0)
	assert.Equal(t, LevelSimple, simple.Level)
	assert.Equal(t, 2, simple.Score)
	assert.Equal(t, []string{"short prompt", "few variables"}, simple.Reasons)

	medium := AnalyzeComplexity(strings.Repeat("x", 140)+" {a} {b} {c}", 3)
	assert.Equal(t, LevelMedium, medium.Level)
	assert.Equal(t, 4, medium.Score)
	assert.Equal(t, []string{"complex form"}, medium.Reasons)

	long := strings.Repeat("texto ", 400) + "{a} {b} {c} {d} {e} Es importante revisar."
	complex := AnalyzeComplexity(long, 3)
	assert.Equal(t, LevelComplex, complex.Level)
	assert.Equal(t, 9, complex.Score)
	assert.Contains(t, complex.Reasons, "complex structure")
}
