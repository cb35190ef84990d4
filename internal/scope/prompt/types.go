// Package prompt defines the prompt library domain model.
package prompt

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dsjohal14/promptlib/internal/scope/search"
)

// Status is the publication state of a prompt.
type Status string

// Prompt statuses
const (
	StatusDraft      Status = "draft"
	StatusReview     Status = "review"
	StatusPublished  Status = "published"
	StatusDeprecated Status = "deprecated"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusReview, StatusPublished, StatusDeprecated:
		return true
	}
	return false
}

// RiskLevel classifies how sensitive the data handled by a prompt is.
type RiskLevel string

// Risk levels
const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Valid reports whether r is a known risk level.
func (r RiskLevel) Valid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// Rank orders risk levels from low (0) to high (2). Unknown levels rank as low.
func (r RiskLevel) Rank() int {
	switch r {
	case RiskMedium:
		return 1
	case RiskHigh:
		return 2
	}
	return 0
}

// Role is a user's permission tier.
type Role string

// User roles
const (
	RoleOwner    Role = "owner"
	RoleEditor   Role = "editor"
	RoleReviewer Role = "reviewer"
	RoleUser     Role = "user"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleEditor, RoleReviewer, RoleUser:
		return true
	}
	return false
}

// Feedback is a user's verdict on one use of a prompt. The zero value means
// no verdict was given.
type Feedback string

// Feedback values
const (
	FeedbackNone Feedback = ""
	ThumbsUp     Feedback = "thumbs_up"
	ThumbsDown   Feedback = "thumbs_down"
)

// Valid reports whether f is a verdict or FeedbackNone.
func (f Feedback) Valid() bool {
	return f == FeedbackNone || f == ThumbsUp || f == ThumbsDown
}

// AuditAction names a recorded change to a prompt.
type AuditAction string

// Audit actions
const (
	ActionCreate    AuditAction = "create"
	ActionUpdate    AuditAction = "update"
	ActionDelete    AuditAction = "delete"
	ActionPublish   AuditAction = "publish"
	ActionDeprecate AuditAction = "deprecate"
	ActionFeedback  AuditAction = "feedback"
)

// Prompt is a reusable prompt template.
type Prompt struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Body            string     `json:"body"`
	Category        string     `json:"category"`
	Tags            Tags       `json:"tags"`
	VariablesSchema Variables  `json:"variablesSchema"`
	OutputFormat    string     `json:"outputFormat,omitempty"`
	Examples        Examples   `json:"examples"`
	Status          Status     `json:"status"`
	RiskLevel       RiskLevel  `json:"riskLevel"`
	Version         string     `json:"version"`
	Changelog       string     `json:"changelog,omitempty"`
	UseCount        int        `json:"useCount"`
	ThumbsUp        int        `json:"thumbsUp"`
	ThumbsDown      int        `json:"thumbsDown"`
	IsFavorite      bool       `json:"isFavorite"`
	AuthorID        string     `json:"authorId"`
	ReviewerID      string     `json:"reviewerId,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	PublishedAt     *time.Time `json:"publishedAt,omitempty"`
	DeprecatedAt    *time.Time `json:"deprecatedAt,omitempty"`
	Versions        []Version  `json:"versions,omitempty"`
}

// SearchFields implements search.Record
func (p Prompt) SearchFields() search.Fields {
	return search.Fields{
		Title:       p.Title,
		Description: p.Description,
		Body:        p.Body,
		Category:    p.Category,
		Tags:        p.Tags,
		Favorite:    p.IsFavorite,
	}
}

// EnsureCollections replaces nil collections with empty ones so they encode as [].
func (p *Prompt) EnsureCollections() {
	if p.Tags == nil {
		p.Tags = Tags{}
	}
	if p.VariablesSchema == nil {
		p.VariablesSchema = Variables{}
	}
	if p.Examples == nil {
		p.Examples = Examples{}
	}
}

// Version is a snapshot of a prompt body taken before it was changed.
type Version struct {
	ID              string    `json:"id"`
	PromptID        string    `json:"promptId"`
	Version         string    `json:"version"`
	Body            string    `json:"body"`
	VariablesSchema Variables `json:"variablesSchema"`
	OutputFormat    string    `json:"outputFormat,omitempty"`
	Changelog       string    `json:"changelog,omitempty"`
	AuthorID        string    `json:"authorId"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Usage records one use of a prompt, optionally with feedback.
type Usage struct {
	ID            string            `json:"id"`
	PromptID      string            `json:"promptId"`
	UserID        string            `json:"userId,omitempty"`
	Feedback      Feedback          `json:"feedback,omitempty"`
	Comment       string            `json:"comment,omitempty"`
	DataRiskLevel RiskLevel         `json:"dataRiskLevel,omitempty"`
	VariablesUsed map[string]string `json:"variablesUsed,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
}

// Category groups prompts. PromptsCount is computed on read.
type Category struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Color        string    `json:"color,omitempty"`
	Icon         string    `json:"icon,omitempty"`
	Order        int       `json:"order"`
	PromptsCount int       `json:"promptsCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// User is an account that can author prompts and leave feedback.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// AuditEntry records who changed a prompt and how. Details is JSON text.
type AuditEntry struct {
	ID        string      `json:"id"`
	PromptID  string      `json:"promptId,omitempty"`
	UserID    string      `json:"userId"`
	Action    AuditAction `json:"action"`
	Details   string      `json:"details"`
	CreatedAt time.Time   `json:"createdAt"`
}

// InitialVersion is assigned to new prompts and to prompts whose version is unparseable.
const InitialVersion = "1.0"

var versionPattern = regexp.MustCompile(`^\d+(\.\d+)*$`)

// IsValidVersion reports whether v is a dotted sequence of numbers such as "1", "1.2" or "1.2.3".
func IsValidVersion(v string) bool {
	return versionPattern.MatchString(v)
}

// NextVersion bumps the minor component of v, dropping any patch component.
// Invalid versions reset to InitialVersion.
func NextVersion(v string) string {
	if !IsValidVersion(v) {
		return InitialVersion
	}

	parts := strings.Split(v, ".")
	minor := 0
	if len(parts) > 1 {
		n, err := strconv.Atoi(parts[1])
		if err != nil {
			return InitialVersion
		}
		minor = n
	}
	return parts[0] + "." + strconv.Itoa(minor+1)
}

// FeedbackDelta returns how the thumbs counters change when a user's feedback
// moves from previous to next.
func FeedbackDelta(previous, next Feedback) (up, down int) {
	if previous == next {
		return 0, 0
	}
	switch previous {
	case ThumbsUp:
		up--
	case ThumbsDown:
		down--
	}
	switch next {
	case ThumbsUp:
		up++
	case ThumbsDown:
		down++
	}
	return up, down
}
