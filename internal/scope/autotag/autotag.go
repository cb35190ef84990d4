// Package autotag suggests tags and measures complexity for prompt bodies
// using keyword rules. It needs no model or network access.
package autotag

import (
	"cmp"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/dsjohal14/promptlib/internal/scope/search"
)

const (
	// maxSuggestions caps Suggest output.
	maxSuggestions = 5
	// minTextLen is the shortest text Suggest will analyze.
	minTextLen = 5
	// DefaultCategory is returned by MainCategory when no rule fires.
	DefaultCategory = "general"
)

type rule struct {
	tag      string
	keywords []string
	weight   int
}

// Keywords are matched as substrings of the normalized text; higher weights
// mark more specific tags.
var rules = foldRules([]rule{
	{"email", []string{"email", "correo", "gmail", "outlook", "asunto", "destinatario", "remitente"}, 3},
	{"whatsapp", []string{"whatsapp", "mensaje", "wsp", "whatsapp business"}, 3},
	{"comunicacion", []string{"comunicar", "mensaje", "redactar", "escribir"}, 1},

	{"codigo", []string{"código", "codigo", "programar", "programación", "developer", "dev"}, 3},
	{"python", []string{"python", "def ", "import ", "pip install", ".py"}, 4},
	{"javascript", []string{"javascript", "js", "node", "const ", "function ", "=>"}, 4},
	{"sql", []string{"sql", "query", "consulta", "base de datos", "select ", "insert ", "mysql"}, 4},
	{"api", []string{"api", "endpoint", "rest", "http", "post", "get", "put", "delete"}, 3},

	{"excel", []string{"excel", "spreadsheet", "hoja de cálculo", "csv", "fórmula", "macro"}, 3},
	{"google-sheets", []string{"google sheets", "googlesheet", "sheet"}, 3},
	{"analisis", []string{"analizar", "análisis", "datos", "gráfico", "reporte"}, 2},

	{"rh", []string{"reclutar", "entrevista", "candidato", "empleo", "trabajador", "rrhh", "recurso humano"}, 3},
	{"contrato", []string{"contrato", "laboral", "empleo", "trabajo"}, 3},
	{"onboarding", []string{"onboarding", "bienvenida", "nuevo empleado", "incorporación"}, 3},

	{"legal", []string{"legal", "contrato", "términos", "condiciones", "aviso"}, 3},
	{"privacidad", []string{"privacidad", "datos personales", "protección", "política"}, 3},

	{"marketing", []string{"marketing", "publicidad", "promocionar", "venta", "campaña"}, 2},
	{"seo", []string{"seo", "google", "buscador", "posicionamiento", "keywords"}, 3},
	{"redes-sociales", []string{"instagram", "facebook", "twitter", "linkedin", "tiktok", "red social"}, 3},

	{"educacion", []string{"educar", "enseñar", "aprender", "curso", "tutorial", "explicar"}, 2},
	{"resumen", []string{"resumir", "sintetizar", "resumen", "extracto", "abstract"}, 2},

	{"traduccion", []string{"traducir", "traducción", "ingles", "inglés", "español", "francés", "idioma"}, 3},

	{"producto", []string{"producto", "descripción", "ficha", "catálogo"}, 2},
	{"precio", []string{"precio", "costo", "tarifa", "valor", "descuento"}, 2},

	{"soporte", []string{"soporte", "ayuda", "faq", "pregunta frecuente", "atención"}, 2},
	{"chatbot", []string{"chatbot", "asistente", "bot", "atención cliente"}, 3},
})

// foldRules strips accents from keywords so they can match normalized text.
// Punctuation and padding are kept as written.
func foldRules(rs []rule) []rule {
	for i := range rs {
		for j, kw := range rs[i].keywords {
			rs[i].keywords[j] = search.Fold(kw)
		}
	}
	return rs
}

var variablePattern = regexp.MustCompile(`\{(\w+)\}`)

// ExtractVariables returns the unique {name} placeholders in body, in the
// order they first appear.
func ExtractVariables(body string) []string {
	out := []string{}
	seen := make(map[string]struct{})
	for _, m := range variablePattern.FindAllStringSubmatch(body, -1) {
		name := m[1]
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// Suggest returns up to five tags for text ordered by descending score. Each
// matching keyword adds its rule's weight; ties keep rule order.
func Suggest(text string) []string {
	if utf8.RuneCountInString(text) < minTextLen {
		return []string{}
	}

	normalized := search.Normalize(text)

	type scored struct {
		tag   string
		score int
	}
	var hits []scored
	for _, r := range rules {
		score := 0
		for _, kw := range r.keywords {
			if strings.Contains(normalized, kw) {
				score += r.weight
			}
		}
		if score > 0 {
			hits = append(hits, scored{r.tag, score})
		}
	}

	slices.SortStableFunc(hits, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})

	out := make([]string, 0, maxSuggestions)
	for i := 0; i < len(hits) && i < maxSuggestions; i++ {
		out = append(out, hits[i].tag)
	}
	return out
}

// MainCategory returns the best suggested tag for text, or DefaultCategory.
func MainCategory(text string) string {
	if tags := Suggest(text); len(tags) > 0 {
		return tags[0]
	}
	return DefaultCategory
}

// Complexity levels
const (
	LevelSimple  = "simple"
	LevelMedium  = "medium"
	LevelComplex = "complex"
)

// Complexity is the outcome of AnalyzeComplexity.
type Complexity struct {
	Level   string   `json:"level"`
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
}

var complexIndicators = []*regexp.Regexp{
	regexp.MustCompile(`(?i)si\s+.*entonces`),
	regexp.MustCompile(`(?i)primero.*después`),
	regexp.MustCompile(`(?i) paso \d+`),
	regexp.MustCompile(`(?i)tenga\s+en\s+cuenta`),
	regexp.MustCompile(`(?i)importante`),
}

// AnalyzeComplexity scores body by length, placeholder count, schema size
// (schemaFields declared variables) and structural cues.
func AnalyzeComplexity(body string, schemaFields int) Complexity {
	c := Complexity{Reasons: []string{}}

	switch n := utf8.RuneCountInString(body); {
	case n < 100:
		c.Score++
		c.Reasons = append(c.Reasons, "short prompt")
	case n > 2000:
		c.Score += 3
		c.Reasons = append(c.Reasons, "long prompt")
	default:
		c.Score += 2
	}

	switch vars := len(ExtractVariables(body)); {
	case vars == 0:
		c.Score++
		c.Reasons = append(c.Reasons, "no variables")
	case vars <= 2:
		c.Score++
		c.Reasons = append(c.Reasons, "few variables")
	case vars >= 5:
		c.Score += 3
		c.Reasons = append(c.Reasons, "many variables")
	}

	if schemaFields >= 3 {
		c.Score += 2
		c.Reasons = append(c.Reasons, "complex form")
	}

	for _, re := range complexIndicators {
		if re.MatchString(body) {
			c.Score++
			c.Reasons = append(c.Reasons, "complex structure")
			break
		}
	}

	switch {
	case c.Score <= 3:
		c.Level = LevelSimple
	case c.Score <= 6:
		c.Level = LevelMedium
	default:
		c.Level = LevelComplex
	}
	return c
}
