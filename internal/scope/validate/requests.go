package validate

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/dsjohal14/promptlib/internal/scope/prompt"
)

// PromptFields is a create or update payload. Nil pointers are absent fields.
type PromptFields struct {
	Title           *string
	Description     *string
	Body            *string
	Category        *string
	RiskLevel       *prompt.RiskLevel
	VariablesSchema *prompt.Variables
}

// CreatePrompt checks a new prompt. Title, body and category are required.
func CreatePrompt(f PromptFields) Errors {
	e := Errors{}
	e.Required("title", deref(f.Title))
	e.Required("body", deref(f.Body))
	e.Required("category", deref(f.Category))
	checkPrompt(e, f)
	return e
}

// UpdatePrompt checks a partial update. Fields that are present may not be blank.
func UpdatePrompt(f PromptFields) Errors {
	e := Errors{}
	if f.Title != nil {
		e.Required("title", *f.Title)
	}
	if f.Body != nil {
		e.Required("body", *f.Body)
	}
	if f.Category != nil {
		e.Required("category", *f.Category)
	}
	checkPrompt(e, f)
	return e
}

func checkPrompt(e Errors, f PromptFields) {
	if f.Title != nil {
		e.MaxLen("title", *f.Title, MaxTitleLen)
	}
	if f.Description != nil {
		e.MaxLen("description", *f.Description, MaxDescriptionLen)
	}
	if f.RiskLevel != nil {
		e.Check(f.RiskLevel.Valid(), "riskLevel", "riskLevel must be one of low, medium, high")
	}
	if f.VariablesSchema != nil {
		for i, v := range *f.VariablesSchema {
			for field, msgs := range Variable(v.Name, v.Label) {
				key := fmt.Sprintf("variablesSchema.%d.%s", i, field)
				e[key] = append(e[key], msgs...)
			}
		}
	}
}

// Feedback checks a usage report. An empty verdict or risk level is allowed.
func Feedback(feedback prompt.Feedback, comment string, risk prompt.RiskLevel) Errors {
	e := Errors{}
	e.Check(feedback.Valid(), "feedback", "feedback must be thumbs_up or thumbs_down")
	e.MaxLen("comment", comment, MaxCommentLen)
	if risk != "" {
		e.Check(risk.Valid(), "dataRiskLevel", "dataRiskLevel must be one of low, medium, high")
	}
	return e
}

// Signup checks a new account.
func Signup(email, password, name string) Errors {
	e := Errors{}
	if e.Required("email", email) {
		e.Check(IsEmail(email), "email", "Invalid email address")
	}
	if e.MinLen("password", password, MinPasswordLen) {
		e.MaxLen("password", password, MaxPasswordLen)
	}
	if e.Required("name", name) {
		e.MaxLen("name", name, MaxNameLen)
	}
	return e
}

// Category checks a new category.
func Category(name, description string) Errors {
	e := Errors{}
	if e.Required("name", name) {
		e.MaxLen("name", name, MaxNameLen)
	}
	e.MaxLen("description", description, MaxDescriptionLen)
	return e
}

// IsEmail reports whether s is a bare address such as user@example.com.
func IsEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	if addr.Address != strings.TrimSpace(s) {
		return false
	}
	domain := addr.Address[strings.LastIndex(addr.Address, "@")+1:]
	return strings.Contains(domain, ".")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
