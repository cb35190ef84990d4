// Package seed loads fixture data (users, categories and prompts) into a store.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dsjohal14/promptlib/internal/libs/accel"
	"github.com/dsjohal14/promptlib/internal/libs/obs"
	"github.com/dsjohal14/promptlib/internal/scope/auth"
	"github.com/dsjohal14/promptlib/internal/scope/autotag"
	"github.com/dsjohal14/promptlib/internal/scope/db"
	"github.com/dsjohal14/promptlib/internal/scope/pii"
	"github.com/dsjohal14/promptlib/internal/scope/prompt"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultFixture []byte

// BatchSize is how many prompts are written per batch.
const BatchSize = 10

// File is a seed fixture.
type File struct {
	Users      []User     `yaml:"users"`
	Categories []Category `yaml:"categories"`
	Prompts    []Prompt   `yaml:"prompts"`
}

// User seeds an account. An empty password leaves the account without
// Basic credentials.
type User struct {
	Email    string `yaml:"email"`
	Name     string `yaml:"name"`
	Role     string `yaml:"role"`
	Password string `yaml:"password"`
}

// Category seeds a category.
type Category struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Color       string `yaml:"color"`
	Icon        string `yaml:"icon"`
	Order       int    `yaml:"order"`
}

// Variable seeds one entry of a prompt's variable schema.
type Variable struct {
	Name     string   `yaml:"name"`
	Label    string   `yaml:"label"`
	Type     string   `yaml:"type"`
	Help     string   `yaml:"help"`
	Required bool     `yaml:"required"`
	Options  []string `yaml:"options"`
}

// Prompt seeds a prompt. Author is an email; it defaults to the first
// seeded user. Missing tags are suggested from the text and a missing risk
// level is derived from PII found in the body.
type Prompt struct {
	Title        string     `yaml:"title"`
	Description  string     `yaml:"description"`
	Body         string     `yaml:"body"`
	Category     string     `yaml:"category"`
	Tags         []string   `yaml:"tags"`
	Variables    []Variable `yaml:"variables"`
	OutputFormat string     `yaml:"output_format"`
	Status       string     `yaml:"status"`
	RiskLevel    string     `yaml:"risk_level"`
	Author       string     `yaml:"author"`
}

// Result counts what Apply created and skipped.
type Result struct {
	UsersCreated      int      `json:"usersCreated"`
	CategoriesCreated int      `json:"categoriesCreated"`
	PromptsCreated    int      `json:"promptsCreated"`
	Skipped           int      `json:"skipped"`
	Errors            []string `json:"errors,omitempty"`
}

// Default returns the embedded starter fixture.
func Default() (File, error) {
	return Parse(defaultFixture)
}

// Load reads a fixture from path, or the embedded default when path is empty.
func Load(path string) (File, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML fixture.
func Parse(data []byte) (File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("failed to parse seed file: %w", err)
	}
	if err := f.Validate(); err != nil {
		return File{}, err
	}
	return f, nil
}

// Validate checks required fields and enum values.
func (f File) Validate() error {
	var errs []error
	for i, u := range f.Users {
		if strings.TrimSpace(u.Email) == "" || strings.TrimSpace(u.Name) == "" {
			errs = append(errs, fmt.Errorf("users[%d]: email and name are required", i))
		}
		if u.Role != "" && !prompt.Role(u.Role).Valid() {
			errs = append(errs, fmt.Errorf("users[%d]: unknown role %q", i, u.Role))
		}
	}
	for i, c := range f.Categories {
		if strings.TrimSpace(c.Name) == "" {
			errs = append(errs, fmt.Errorf("categories[%d]: name is required", i))
		}
	}
	for i, p := range f.Prompts {
		if strings.TrimSpace(p.Title) == "" || strings.TrimSpace(p.Body) == "" || strings.TrimSpace(p.Category) == "" {
			errs = append(errs, fmt.Errorf("prompts[%d]: title, body and category are required", i))
		}
		if p.Status != "" && !prompt.Status(p.Status).Valid() {
			errs = append(errs, fmt.Errorf("prompts[%d]: unknown status %q", i, p.Status))
		}
		if p.RiskLevel != "" && !prompt.RiskLevel(p.RiskLevel).Valid() {
			errs = append(errs, fmt.Errorf("prompts[%d]: unknown risk level %q", i, p.RiskLevel))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid seed file: %w", errors.Join(errs...))
	}
	return nil
}

// Apply writes the fixture into store. Users are matched by email,
// categories by name and prompts by title; existing entries are skipped, so
// applying the same fixture twice is a no-op. A prompt that fails to store
// is reported in Result.Errors without aborting the rest.
func Apply(ctx context.Context, store db.Storage, f File) (Result, error) {
	logger := obs.Logger("seed")
	var res Result

	authors := make(map[string]string)
	for _, su := range f.Users {
		u, err := store.UserByEmail(ctx, su.Email)
		if err == nil {
			authors[u.Email] = u.ID
			res.Skipped++
			continue
		}
		if !errors.Is(err, db.ErrNotFound) {
			return res, fmt.Errorf("failed to look up user %s: %w", su.Email, err)
		}

		nu := prompt.User{Email: su.Email, Name: su.Name, Role: prompt.Role(su.Role)}
		if su.Password != "" {
			hash, err := auth.HashPassword(su.Password)
			if err != nil {
				return res, err
			}
			nu.PasswordHash = hash
		}
		created, err := store.CreateUser(ctx, nu)
		if err != nil {
			return res, fmt.Errorf("failed to create user %s: %w", su.Email, err)
		}
		authors[created.Email] = created.ID
		res.UsersCreated++
	}

	defaultAuthor, err := resolveDefaultAuthor(ctx, store, f, authors)
	if err != nil {
		return res, err
	}

	existing, err := store.ListCategories(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to list categories: %w", err)
	}
	names := make(map[string]bool, len(existing))
	for _, c := range existing {
		names[c.Name] = true
	}
	for _, sc := range f.Categories {
		if names[sc.Name] {
			res.Skipped++
			continue
		}
		_, err := store.CreateCategory(ctx, prompt.Category{
			Name:        sc.Name,
			Description: sc.Description,
			Color:       sc.Color,
			Icon:        sc.Icon,
			Order:       sc.Order,
		})
		if err != nil {
			return res, fmt.Errorf("failed to create category %s: %w", sc.Name, err)
		}
		names[sc.Name] = true
		res.CategoriesCreated++
	}

	prompts, err := store.AllPrompts(ctx)
	if err != nil {
		return res, fmt.Errorf("failed to list prompts: %w", err)
	}
	titles := make(map[string]bool, len(prompts))
	for _, p := range prompts {
		titles[p.Title] = true
	}

	pending := make([]Prompt, 0, len(f.Prompts))
	for _, sp := range f.Prompts {
		if titles[sp.Title] {
			res.Skipped++
			continue
		}
		titles[sp.Title] = true
		pending = append(pending, sp)
	}

	batch := accel.NewBatch(BatchSize)
	err = accel.Each(ctx, batch, pending, func(ctx context.Context, chunk []Prompt) error {
		for _, sp := range chunk {
			authorID := defaultAuthor
			if sp.Author != "" {
				id, ok := authors[strings.ToLower(strings.TrimSpace(sp.Author))]
				if !ok {
					res.Errors = append(res.Errors, fmt.Sprintf("prompt %q: unknown author %s", sp.Title, sp.Author))
					continue
				}
				authorID = id
			}
			if _, err := store.CreatePrompt(ctx, sp.toPrompt(), authorID); err != nil {
				logger.Error().Err(err).Str("title", sp.Title).Msg("failed to seed prompt")
				res.Errors = append(res.Errors, fmt.Sprintf("prompt %q: %v", sp.Title, err))
				continue
			}
			res.PromptsCreated++
		}
		logger.Debug().Int("batch", len(chunk)).Int("created", res.PromptsCreated).Msg("seeded batch")
		return nil
	})
	if err != nil {
		return res, err
	}

	logger.Info().
		Int("users", res.UsersCreated).
		Int("categories", res.CategoriesCreated).
		Int("prompts", res.PromptsCreated).
		Int("skipped", res.Skipped).
		Int("errors", len(res.Errors)).
		Msg("seed applied")
	return res, nil
}

// resolveDefaultAuthor picks the first seeded user, else the store's first user.
func resolveDefaultAuthor(ctx context.Context, store db.Storage, f File, authors map[string]string) (string, error) {
	if len(f.Users) > 0 {
		if id, ok := authors[strings.ToLower(strings.TrimSpace(f.Users[0].Email))]; ok {
			return id, nil
		}
	}
	if len(f.Prompts) == 0 {
		return "", nil
	}
	u, err := store.FirstUser(ctx)
	if errors.Is(err, db.ErrNotFound) {
		return "", fmt.Errorf("seed prompts need an author but the store has no users")
	}
	if err != nil {
		return "", fmt.Errorf("failed to load default author: %w", err)
	}
	return u.ID, nil
}

func (sp Prompt) toPrompt() prompt.Prompt {
	vars := make(prompt.Variables, 0, len(sp.Variables))
	for _, v := range sp.Variables {
		vars = append(vars, prompt.Variable{
			Name:     v.Name,
			Label:    v.Label,
			Type:     v.Type,
			Help:     v.Help,
			Required: v.Required,
			Options:  v.Options,
		})
	}

	tags := prompt.Tags(sp.Tags)
	if len(tags) == 0 {
		tags = prompt.Tags(autotag.Suggest(sp.Title + " " + sp.Description + " " + sp.Body))
	}

	risk := prompt.RiskLevel(sp.RiskLevel)
	if risk == "" {
		risk = pii.RiskLevel(sp.Body)
	}

	p := prompt.Prompt{
		Title:           sp.Title,
		Description:     sp.Description,
		Body:            strings.TrimRight(sp.Body, "\n"),
		Category:        sp.Category,
		Tags:            tags,
		VariablesSchema: vars,
		OutputFormat:    sp.OutputFormat,
		Status:          prompt.Status(sp.Status),
		RiskLevel:       risk,
	}
	if p.Status == prompt.StatusPublished {
		t := time.Now().UTC()
		p.PublishedAt = &t
	}
	return p
}
