package pii

import (
	"testing"

	"github.com/dsjohal14/promptlib/internal/scope/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func find(t *testing.T, detections []Detection, kind string) Detection {
	t.Helper()
	for _, d := range detections {
		if d.Type == kind {
			return d
		}
	}
	t.Fatalf("no detection of type %s", kind)
	return Detection{}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name string
		text string
		kind string
		want string
	}{
		{"email", "Contact me at john.doe@example.com", TypeEmail, "john.doe@example.com"},
		{"chilean phone", "Llama al +56912345678", TypePhone, "+56912345678"},
		{"rut", "Mi RUT es 12.345.678-5", TypeRUT, "12.345.678-5"},
		{"credit card", "Tarjeta: 4532-1234-5678-9012", TypeCreditCard, "4532-1234-5678-9012"},
		{"ip address", "Server IP: 192.168.1.100", TypeIPAddress, "192.168.1.100"},
		{"date", "Fecha: 15-05-2024", TypeDateOfBirth, "15-05-2024"},
		{"salary", "Salario: $1.500.000 pesos", TypeSalary, "$1.500.000 pesos"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := find(t, Detect(tt.text), tt.kind)
			assert.True(t, d.Found)
			assert.Contains(t, d.Matches, tt.want)
		})
	}
}

func TestDetectReportsEveryPattern(t *testing.T) {
	detections := Detect("")
	require.Len(t, detections, 7)
	for _, d := range detections {
		assert.False(t, d.Found)
		assert.NotNil(t, d.Matches)
		assert.NotEmpty(t, d.Pattern)
	}
}

func TestDetectDeduplicates(t *testing.T) {
	d := find(t, Detect("Email: test@test.com and another test@test.com"), TypeEmail)
	assert.Equal(t, []string{"test@test.com"}, d.Matches)
}

func TestDetectCleanText(t *testing.T) {
	assert.Empty(t, Found(Detect("This is a clean text without any sensitive data")))
}

func TestDetectMultipleTypes(t *testing.T) {
	found := Found(Detect("Contact: john@test.com, RUT: 12.345.678-9, Phone: +56912345678"))
	assert.GreaterOrEqual(t, len(found), 3)
}

func TestRiskLevel(t *testing.T) {
	tests := []struct {
		text string
		want prompt.RiskLevel
	}{
		{"RUT: 12.345.678-5", prompt.RiskHigh},
		{"Card: 4532123456789012", prompt.RiskHigh},
		{"Salary: $1.500.000", prompt.RiskHigh},
		{"Email: test@test.com", prompt.RiskMedium},
		{"Phone: +56912345678", prompt.RiskMedium},
		{"Server IP: 192.168.1.100", prompt.RiskLow},
		{"Clean text", prompt.RiskLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RiskLevel(tt.text), tt.text)
	}
}

func TestHasHighRisk(t *testing.T) {
	assert.True(t, HasHighRisk("Mi RUT es 12.345.678-5"))
	assert.True(t, HasHighRisk("Tarjeta: 4532123456789012"))
	assert.True(t, HasHighRisk("Salario: $1.500.000"))
	assert.False(t, HasHighRisk("Email: test@test.com"))
	assert.False(t, HasHighRisk("No sensitive data here"))
}

func TestWarning(t *testing.T) {
	assert.Empty(t, Warning(Detect("Clean text")))

	w := Warning(Detect("Email: test@test.com"))
	assert.Contains(t, w, "sensitive data")
	assert.Contains(t, w, "test@test.com")
	assert.NotContains(t, w, "...")

	w = Warning(Detect("a@a.com, b@b.com, c@c.com, d@d.com, e@e.com"))
	assert.Contains(t, w, "a@a.com, b@b.com, c@c.com...")
	assert.NotContains(t, w, "d@d.com")
}
