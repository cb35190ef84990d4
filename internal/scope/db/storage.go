package db

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/dsjohal14/promptlib/internal/scope/prompt"
	"github.com/google/uuid"
)

// Sentinel errors returned (wrapped) by every Storage implementation.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// Listing limits
const (
	// StatusAny disables the status filter of ListPrompts.
	StatusAny prompt.Status = "all"

	PromptVersionsInline = 10
	VersionHistoryLimit  = 20
	UsageHistoryLimit    = 50
	commentLimit         = 200
)

// PromptFilter narrows ListPrompts. An empty Status means published only.
// Search is a case-insensitive substring match on title, description or tags.
// A zero Limit returns every match after Offset.
type PromptFilter struct {
	Status        prompt.Status
	Category      string
	Search        string
	OnlyFavorites bool
	Offset        int
	Limit         int
}

func (f PromptFilter) status() prompt.Status {
	if f.Status == "" {
		return prompt.StatusPublished
	}
	return f.Status
}

// Mutation describes the audit trail of an UpdatePrompt call.
type Mutation struct {
	Action    prompt.AuditAction
	Details   map[string]any
	Changelog string
}

// MutateFunc edits p in place. Returning an error aborts the update.
type MutateFunc func(p *prompt.Prompt) (Mutation, error)

// FeedbackInput is one use of a prompt reported by a user.
type FeedbackInput struct {
	PromptID      string
	UserID        string
	Feedback      prompt.Feedback
	Comment       string
	DataRiskLevel prompt.RiskLevel
	VariablesUsed map[string]string
}

// FeedbackResult is the usage row written by RecordFeedback. Updated is set
// when an earlier verdict by the same user was replaced.
type FeedbackResult struct {
	Usage            prompt.Usage
	Updated          bool
	PreviousFeedback prompt.Feedback
}

// UsageSummary aggregates usage rows.
type UsageSummary struct {
	Total      int
	ThumbsUp   int
	ThumbsDown int
	Recent     int
}

// Storage is the persistence contract of the prompt library.
// FileStore and PGStore implement it with the same semantics.
type Storage interface {
	Ping(ctx context.Context) error
	Close() error

	// ListPrompts returns one page of matches ordered favorites first, then by
	// most recent update, with the total number of matches.
	ListPrompts(ctx context.Context, f PromptFilter) ([]prompt.Prompt, int, error)
	// AllPrompts returns every prompt regardless of status.
	AllPrompts(ctx context.Context) ([]prompt.Prompt, error)
	// GetPrompt returns a prompt with its most recent versions inlined.
	GetPrompt(ctx context.Context, id string) (prompt.Prompt, error)
	// CreatePrompt stores p and its create audit entry atomically.
	CreatePrompt(ctx context.Context, p prompt.Prompt, actorID string) (prompt.Prompt, error)
	// UpdatePrompt applies mutate atomically. A changed body snapshots the
	// previous version and bumps the version number.
	UpdatePrompt(ctx context.Context, id, actorID string, mutate MutateFunc) (prompt.Prompt, error)
	ListVersions(ctx context.Context, promptID string) ([]prompt.Version, error)

	// RecordFeedback stores a usage event. A user who already gave a verdict
	// on the prompt has that row updated instead, and counters move by the
	// difference.
	RecordFeedback(ctx context.Context, in FeedbackInput) (FeedbackResult, error)
	ListUsage(ctx context.Context, promptID string) ([]prompt.Usage, error)
	UsageSummary(ctx context.Context, since time.Time) (UsageSummary, error)

	// ListCategories returns categories by order with published prompt counts.
	ListCategories(ctx context.Context) ([]prompt.Category, error)
	CreateCategory(ctx context.Context, c prompt.Category) (prompt.Category, error)

	CreateUser(ctx context.Context, u prompt.User) (prompt.User, error)
	GetUser(ctx context.Context, id string) (prompt.User, error)
	UserByEmail(ctx context.Context, email string) (prompt.User, error)
	FirstUser(ctx context.Context) (prompt.User, error)

	ListAudit(ctx context.Context, promptID string) ([]prompt.AuditEntry, error)
}

// Ensure both stores implement Storage
var _ Storage = (*FileStore)(nil)
var _ Storage = (*PGStore)(nil)

func newID() string {
	return uuid.NewString()
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// preparePrompt fills identity, defaults and timestamps of a new prompt.
func preparePrompt(p prompt.Prompt, actorID string) prompt.Prompt {
	t := now()
	if p.ID == "" {
		p.ID = newID()
	}
	if p.AuthorID == "" {
		p.AuthorID = actorID
	}
	if p.Status == "" {
		p.Status = prompt.StatusDraft
	}
	if p.RiskLevel == "" {
		p.RiskLevel = prompt.RiskLow
	}
	if p.Version == "" {
		p.Version = prompt.InitialVersion
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = t
	}
	p.UpdatedAt = t
	p.Versions = nil
	p.EnsureCollections()
	return p
}

// applyMutation runs mutate over a copy of current and derives the version
// snapshot and audit entry that must be written with it.
func applyMutation(current prompt.Prompt, actorID string, mutate MutateFunc) (prompt.Prompt, *prompt.Version, prompt.AuditEntry, error) {
	next := current
	next.Tags = append(prompt.Tags{}, current.Tags...)
	next.VariablesSchema = append(prompt.Variables{}, current.VariablesSchema...)
	next.Examples = append(prompt.Examples{}, current.Examples...)
	next.Versions = nil

	m, err := mutate(&next)
	if err != nil {
		return prompt.Prompt{}, nil, prompt.AuditEntry{}, err
	}

	t := now()
	next.ID = current.ID
	next.CreatedAt = current.CreatedAt
	next.UpdatedAt = t
	next.EnsureCollections()

	var snapshot *prompt.Version
	if next.Body != current.Body {
		changelog := m.Changelog
		if changelog == "" {
			changelog = "Update"
		}
		snapshot = &prompt.Version{
			ID:              newID(),
			PromptID:        current.ID,
			Version:         current.Version,
			Body:            current.Body,
			VariablesSchema: append(prompt.Variables{}, current.VariablesSchema...),
			OutputFormat:    current.OutputFormat,
			Changelog:       changelog,
			AuthorID:        current.AuthorID,
			CreatedAt:       t,
		}
		next.Version = prompt.NextVersion(current.Version)
	}

	action := m.Action
	if action == "" {
		action = prompt.ActionUpdate
	}
	audit := newAudit(current.ID, actorID, action, m.Details)
	audit.CreatedAt = t

	return next, snapshot, audit, nil
}

func newAudit(promptID, userID string, action prompt.AuditAction, details map[string]any) prompt.AuditEntry {
	return prompt.AuditEntry{
		ID:        newID(),
		PromptID:  promptID,
		UserID:    userID,
		Action:    action,
		Details:   encodeDetails(details),
		CreatedAt: now(),
	}
}

func encodeDetails(details map[string]any) string {
	if details == nil {
		return "{}"
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

func createDetails(p prompt.Prompt) map[string]any {
	return map[string]any{
		"title":    p.Title,
		"category": p.Category,
	}
}

func fillUsage(u prompt.Usage, in FeedbackInput) prompt.Usage {
	u.Feedback = in.Feedback
	u.Comment = truncateComment(in.Comment)
	u.DataRiskLevel = in.DataRiskLevel
	u.VariablesUsed = in.VariablesUsed
	if u.VariablesUsed == nil {
		u.VariablesUsed = map[string]string{}
	}
	return u
}

func feedbackDetails(in FeedbackInput) map[string]any {
	return map[string]any{
		"feedback":      in.Feedback,
		"comment":       truncateComment(in.Comment),
		"dataRiskLevel": in.DataRiskLevel,
	}
}

func truncateComment(s string) string {
	r := []rune(s)
	if len(r) > commentLimit {
		return string(r[:commentLimit])
	}
	return s
}

// matchesFilter is the in-memory rendition of the ListPrompts WHERE clause.
func matchesFilter(p prompt.Prompt, f PromptFilter) bool {
	if st := f.status(); st != StatusAny && p.Status != st {
		return false
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.OnlyFavorites && !p.IsFavorite {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		hay := strings.ToLower(p.Title + "\x00" + p.Description + "\x00" + prompt.EncodeJSON(p.Tags))
		if !strings.Contains(hay, needle) {
			return false
		}
	}
	return true
}

// sortPrompts orders favorites first, then newest update, then id.
func sortPrompts(ps []prompt.Prompt) {
	sort.SliceStable(ps, func(i, j int) bool {
		a, b := ps[i], ps[j]
		if a.IsFavorite != b.IsFavorite {
			return a.IsFavorite
		}
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.ID < b.ID
	})
}

func page[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
