// Package httpapi provides HTTP handlers and data transfer objects for the prompt library API.
package httpapi

import (
	"time"

	"github.com/dsjohal14/promptlib/internal/scope/autotag"
	"github.com/dsjohal14/promptlib/internal/scope/pii"
	"github.com/dsjohal14/promptlib/internal/scope/prompt"
	"github.com/dsjohal14/promptlib/internal/scope/search"
	"github.com/dsjohal14/promptlib/internal/scope/seed"
	"github.com/dsjohal14/promptlib/internal/scope/validate"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Database  bool      `json:"database"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// PromptRequest is the body of prompt create and update calls.
// Absent fields are nil and left untouched on update.
type PromptRequest struct {
	Title           *string           `json:"title"`
	Description     *string           `json:"description"`
	Body            *string           `json:"body"`
	Category        *string           `json:"category"`
	Tags            *prompt.Tags      `json:"tags"`
	VariablesSchema *prompt.Variables `json:"variablesSchema"`
	OutputFormat    *string           `json:"outputFormat"`
	Examples        *prompt.Examples  `json:"examples"`
	RiskLevel       *prompt.RiskLevel `json:"riskLevel"`
	Changelog       *string           `json:"changelog"`
	IsFavorite      *bool             `json:"isFavorite"`
}

func (req PromptRequest) fields() validate.PromptFields {
	return validate.PromptFields{
		Title:           req.Title,
		Description:     req.Description,
		Body:            req.Body,
		Category:        req.Category,
		RiskLevel:       req.RiskLevel,
		VariablesSchema: req.VariablesSchema,
	}
}

// PromptPage is the paginated form of the prompt list
type PromptPage struct {
	Data    []prompt.Prompt `json:"data"`
	Total   int             `json:"total"`
	Page    int             `json:"page"`
	Limit   int             `json:"limit"`
	HasMore bool            `json:"hasMore"`
}

// DeleteResponse confirms a soft delete
type DeleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// DeprecateRequest carries the optional reason for deprecating a prompt
type DeprecateRequest struct {
	Reason string `json:"reason"`
}

// SearchRequest represents search request
type SearchRequest struct {
	search.Query
	Limit int `json:"limit,omitempty"` // Default: 20
}

// SearchResponse represents search results
type SearchResponse struct {
	Results []prompt.Prompt `json:"results"`
	Count   int             `json:"count"`
	Total   int             `json:"total"`
	Query   string          `json:"query"`
}

// TagsResponse lists every distinct tag of the published library
type TagsResponse struct {
	Tags  []string `json:"tags"`
	Count int      `json:"count"`
}

// FeedbackRequest reports one use of a prompt
type FeedbackRequest struct {
	Feedback      prompt.Feedback   `json:"feedback"`
	Comment       string            `json:"comment"`
	DataRiskLevel prompt.RiskLevel  `json:"dataRiskLevel"`
	VariablesUsed map[string]string `json:"variablesUsed"`
}

// FeedbackMeta is set when an earlier verdict was replaced
type FeedbackMeta struct {
	Updated          bool            `json:"updated"`
	PreviousFeedback prompt.Feedback `json:"previousFeedback"`
}

// FeedbackResponse is the stored usage row
type FeedbackResponse struct {
	prompt.Usage
	Meta *FeedbackMeta `json:"_meta,omitempty"`
}

// CategoryRequest creates a category
type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
	Order       int    `json:"order"`
}

// PIIRequest carries the text to scan
type PIIRequest struct {
	Text string `json:"text"`
}

// PIIResponse lists what was found in the text
type PIIResponse struct {
	Detections  []pii.Detection  `json:"detections"`
	RiskLevel   prompt.RiskLevel `json:"riskLevel"`
	HasHighRisk bool             `json:"hasHighRisk"`
	Warning     string           `json:"warning,omitempty"`
}

// AnalyzeRequest is a prompt draft to grade
type AnalyzeRequest struct {
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	Body            string           `json:"body"`
	Category        string           `json:"category"`
	VariablesSchema prompt.Variables `json:"variablesSchema"`
}

// AnalyzeResponse grades a draft and suggests metadata for it
type AnalyzeResponse struct {
	Quality           validate.Report    `json:"quality"`
	QualityLabel      string             `json:"qualityLabel"`
	SuggestedTags     []string           `json:"suggestedTags"`
	SuggestedCategory string             `json:"suggestedCategory"`
	Variables         []string           `json:"variables"`
	Complexity        autotag.Complexity `json:"complexity"`
	RiskLevel         prompt.RiskLevel   `json:"riskLevel"`
}

// SignupRequest creates an account
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// SignupResponse returns the new account
type SignupResponse struct {
	Success bool        `json:"success"`
	User    prompt.User `json:"user"`
}

// SeedResponse reports what a seed run created
type SeedResponse struct {
	Success bool        `json:"success"`
	Result  seed.Result `json:"result"`
}

// ErrorResponse represents API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
	ErrorID string `json:"error_id,omitempty"`
}

// ValidationErrorResponse lists validation messages per field
type ValidationErrorResponse struct {
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Details validate.Errors `json:"details"`
}
