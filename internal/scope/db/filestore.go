// Package db provides persistence for the prompt library.
package db

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/dsjohal14/promptlib/internal/scope/prompt"
)

// Snapshot files, one JSON document per line.
const (
	promptsFile    = "prompts.jsonl"
	versionsFile   = "versions.jsonl"
	usageFile      = "usage.jsonl"
	categoriesFile = "categories.jsonl"
	usersFile      = "users.jsonl"
	auditFile      = "audit.jsonl"
)

// maxLineSize bounds a single JSONL record.
const maxLineSize = 4 << 20

// userRecord persists the password hash that prompt.User hides from JSON.
type userRecord struct {
	prompt.User
	PasswordHash string `json:"passwordHash"`
}

// FileStore keeps the whole library in memory and rewrites the affected
// JSONL snapshot after every write. It is meant for a single process.
type FileStore struct {
	dataDir string
	mu      sync.RWMutex

	prompts    []prompt.Prompt
	versions   []prompt.Version
	usage      []prompt.Usage
	categories []prompt.Category
	users      []userRecord
	audit      []prompt.AuditEntry
}

// NewFileStore creates a store under dataDir, loading existing snapshots.
func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &FileStore{dataDir: dataDir}
	if err := s.load(); err != nil {
		return nil, fmt.Errorf("failed to load store: %w", err)
	}
	return s, nil
}

func (s *FileStore) load() error {
	var err error
	if s.prompts, err = readJSONL[prompt.Prompt](s.path(promptsFile)); err != nil {
		return err
	}
	if s.versions, err = readJSONL[prompt.Version](s.path(versionsFile)); err != nil {
		return err
	}
	if s.usage, err = readJSONL[prompt.Usage](s.path(usageFile)); err != nil {
		return err
	}
	if s.categories, err = readJSONL[prompt.Category](s.path(categoriesFile)); err != nil {
		return err
	}
	if s.users, err = readJSONL[userRecord](s.path(usersFile)); err != nil {
		return err
	}
	if s.audit, err = readJSONL[prompt.AuditEntry](s.path(auditFile)); err != nil {
		return err
	}
	for i := range s.prompts {
		s.prompts[i].EnsureCollections()
	}
	return nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dataDir, name)
}

// Ping reports whether the data directory is still reachable.
func (s *FileStore) Ping(_ context.Context) error {
	info, err := os.Stat(s.dataDir)
	if err != nil {
		return fmt.Errorf("data directory unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data directory %s is not a directory", s.dataDir)
	}
	return nil
}

// Close is a no-op; every write is already on disk.
func (s *FileStore) Close() error {
	return nil
}

// ListPrompts implements Storage
func (s *FileStore) ListPrompts(_ context.Context, f PromptFilter) ([]prompt.Prompt, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]prompt.Prompt, 0, len(s.prompts))
	for _, p := range s.prompts {
		if matchesFilter(p, f) {
			matched = append(matched, p)
		}
	}
	sortPrompts(matched)
	return page(matched, f.Offset, f.Limit), len(matched), nil
}

// AllPrompts implements Storage
func (s *FileStore) AllPrompts(_ context.Context) ([]prompt.Prompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.prompts), nil
}

// GetPrompt implements Storage
func (s *FileStore) GetPrompt(_ context.Context, id string) (prompt.Prompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.promptIndex(id)
	if i < 0 {
		return prompt.Prompt{}, fmt.Errorf("prompt %s: %w", id, ErrNotFound)
	}
	p := s.prompts[i]
	p.Versions = s.versionsOf(id, PromptVersionsInline)
	return p, nil
}

// CreatePrompt implements Storage
func (s *FileStore) CreatePrompt(_ context.Context, p prompt.Prompt, actorID string) (prompt.Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p = preparePrompt(p, actorID)
	if s.userIndex(p.AuthorID) < 0 {
		return prompt.Prompt{}, fmt.Errorf("author %s: %w", p.AuthorID, ErrNotFound)
	}
	if s.promptIndex(p.ID) >= 0 {
		return prompt.Prompt{}, fmt.Errorf("prompt %s: %w", p.ID, ErrConflict)
	}

	audit := newAudit(p.ID, actorID, prompt.ActionCreate, createDetails(p))

	prompts := append(slices.Clone(s.prompts), p)
	auditLog := append(slices.Clone(s.audit), audit)
	if err := s.save(
		snapshot(s, promptsFile, prompts),
		snapshot(s, auditFile, auditLog),
	); err != nil {
		return prompt.Prompt{}, err
	}

	s.prompts, s.audit = prompts, auditLog
	return p, nil
}

// UpdatePrompt implements Storage
func (s *FileStore) UpdatePrompt(_ context.Context, id, actorID string, mutate MutateFunc) (prompt.Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.promptIndex(id)
	if i < 0 {
		return prompt.Prompt{}, fmt.Errorf("prompt %s: %w", id, ErrNotFound)
	}

	next, version, audit, err := applyMutation(s.prompts[i], actorID, mutate)
	if err != nil {
		return prompt.Prompt{}, err
	}

	prompts := slices.Clone(s.prompts)
	prompts[i] = next
	auditLog := append(slices.Clone(s.audit), audit)
	versions := s.versions
	writes := []write{snapshot(s, promptsFile, prompts), snapshot(s, auditFile, auditLog)}
	if version != nil {
		versions = append(slices.Clone(s.versions), *version)
		writes = append(writes, snapshot(s, versionsFile, versions))
	}

	if err := s.save(writes...); err != nil {
		return prompt.Prompt{}, err
	}

	s.prompts, s.audit, s.versions = prompts, auditLog, versions
	return next, nil
}

// ListVersions implements Storage
func (s *FileStore) ListVersions(_ context.Context, promptID string) ([]prompt.Version, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.promptIndex(promptID) < 0 {
		return nil, fmt.Errorf("prompt %s: %w", promptID, ErrNotFound)
	}
	return s.versionsOf(promptID, VersionHistoryLimit), nil
}

// versionsOf returns up to limit versions of a prompt, newest first.
func (s *FileStore) versionsOf(promptID string, limit int) []prompt.Version {
	out := make([]prompt.Version, 0)
	for i := len(s.versions) - 1; i >= 0 && len(out) < limit; i-- {
		if s.versions[i].PromptID == promptID {
			out = append(out, s.versions[i])
		}
	}
	return out
}

// RecordFeedback implements Storage
func (s *FileStore) RecordFeedback(_ context.Context, in FeedbackInput) (FeedbackResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pi := s.promptIndex(in.PromptID)
	if pi < 0 {
		return FeedbackResult{}, fmt.Errorf("prompt %s: %w", in.PromptID, ErrNotFound)
	}
	if s.userIndex(in.UserID) < 0 {
		return FeedbackResult{}, fmt.Errorf("user %s: %w", in.UserID, ErrNotFound)
	}

	prompts := slices.Clone(s.prompts)
	usage := slices.Clone(s.usage)
	p := &prompts[pi]

	if ui := s.lastVerdict(in.PromptID, in.UserID); ui >= 0 {
		previous := usage[ui].Feedback
		usage[ui] = fillUsage(usage[ui], in)
		up, down := prompt.FeedbackDelta(previous, in.Feedback)
		p.ThumbsUp = max(0, p.ThumbsUp+up)
		p.ThumbsDown = max(0, p.ThumbsDown+down)

		if err := s.save(
			snapshot(s, usageFile, usage),
			snapshot(s, promptsFile, prompts),
		); err != nil {
			return FeedbackResult{}, err
		}
		s.usage, s.prompts = usage, prompts
		return FeedbackResult{Usage: usage[ui], Updated: true, PreviousFeedback: previous}, nil
	}

	u := fillUsage(prompt.Usage{
		ID:        newID(),
		PromptID:  in.PromptID,
		UserID:    in.UserID,
		CreatedAt: now(),
	}, in)
	usage = append(usage, u)

	up, down := prompt.FeedbackDelta(prompt.FeedbackNone, in.Feedback)
	p.UseCount++
	p.ThumbsUp += up
	p.ThumbsDown += down

	audit := newAudit(in.PromptID, in.UserID, prompt.ActionFeedback, feedbackDetails(in))
	auditLog := append(slices.Clone(s.audit), audit)

	if err := s.save(
		snapshot(s, usageFile, usage),
		snapshot(s, promptsFile, prompts),
		snapshot(s, auditFile, auditLog),
	); err != nil {
		return FeedbackResult{}, err
	}
	s.usage, s.prompts, s.audit = usage, prompts, auditLog
	return FeedbackResult{Usage: u}, nil
}

// lastVerdict finds the newest usage row in which userID rated promptID.
func (s *FileStore) lastVerdict(promptID, userID string) int {
	for i := len(s.usage) - 1; i >= 0; i-- {
		u := s.usage[i]
		if u.PromptID == promptID && u.UserID == userID && u.Feedback != prompt.FeedbackNone {
			return i
		}
	}
	return -1
}

// ListUsage implements Storage
func (s *FileStore) ListUsage(_ context.Context, promptID string) ([]prompt.Usage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]prompt.Usage, 0)
	for i := len(s.usage) - 1; i >= 0 && len(out) < UsageHistoryLimit; i-- {
		if s.usage[i].PromptID == promptID {
			out = append(out, s.usage[i])
		}
	}
	return out, nil
}

// UsageSummary implements Storage
func (s *FileStore) UsageSummary(_ context.Context, since time.Time) (UsageSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum UsageSummary
	for _, u := range s.usage {
		sum.Total++
		switch u.Feedback {
		case prompt.ThumbsUp:
			sum.ThumbsUp++
		case prompt.ThumbsDown:
			sum.ThumbsDown++
		}
		if !u.CreatedAt.Before(since) {
			sum.Recent++
		}
	}
	return sum, nil
}

// ListCategories implements Storage
func (s *FileStore) ListCategories(_ context.Context) ([]prompt.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, p := range s.prompts {
		if p.Status == prompt.StatusPublished {
			counts[p.Category]++
		}
	}

	out := slices.Clone(s.categories)
	for i := range out {
		out[i].PromptsCount = counts[out[i].Name]
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// CreateCategory implements Storage
func (s *FileStore) CreateCategory(_ context.Context, c prompt.Category) (prompt.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.categories {
		if existing.Name == c.Name {
			return prompt.Category{}, fmt.Errorf("category %q: %w", c.Name, ErrConflict)
		}
	}

	t := now()
	if c.ID == "" {
		c.ID = newID()
	}
	c.CreatedAt, c.UpdatedAt, c.PromptsCount = t, t, 0

	categories := append(slices.Clone(s.categories), c)
	if err := s.save(snapshot(s, categoriesFile, categories)); err != nil {
		return prompt.Category{}, err
	}
	s.categories = categories
	return c, nil
}

// CreateUser implements Storage
func (s *FileStore) CreateUser(_ context.Context, u prompt.User) (prompt.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u.Email = normalizeEmail(u.Email)
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return prompt.User{}, fmt.Errorf("user %s: %w", u.Email, ErrConflict)
		}
	}

	t := now()
	if u.ID == "" {
		u.ID = newID()
	}
	if u.Role == "" {
		u.Role = prompt.RoleUser
	}
	u.CreatedAt, u.UpdatedAt = t, t

	users := append(slices.Clone(s.users), userRecord{User: u, PasswordHash: u.PasswordHash})
	if err := s.save(snapshot(s, usersFile, users)); err != nil {
		return prompt.User{}, err
	}
	s.users = users
	return u, nil
}

// GetUser implements Storage
func (s *FileStore) GetUser(_ context.Context, id string) (prompt.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.userIndex(id)
	if i < 0 {
		return prompt.User{}, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return s.users[i].toUser(), nil
}

// UserByEmail implements Storage
func (s *FileStore) UserByEmail(_ context.Context, email string) (prompt.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = normalizeEmail(email)
	for _, rec := range s.users {
		if rec.Email == email {
			return rec.toUser(), nil
		}
	}
	return prompt.User{}, fmt.Errorf("user %s: %w", email, ErrNotFound)
}

// FirstUser implements Storage
func (s *FileStore) FirstUser(_ context.Context) (prompt.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.users) == 0 {
		return prompt.User{}, fmt.Errorf("no users: %w", ErrNotFound)
	}
	return s.users[0].toUser(), nil
}

// ListAudit implements Storage
func (s *FileStore) ListAudit(_ context.Context, promptID string) ([]prompt.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]prompt.AuditEntry, 0)
	for i := len(s.audit) - 1; i >= 0; i-- {
		if s.audit[i].PromptID == promptID {
			out = append(out, s.audit[i])
		}
	}
	return out, nil
}

func (s *FileStore) promptIndex(id string) int {
	return slices.IndexFunc(s.prompts, func(p prompt.Prompt) bool { return p.ID == id })
}

func (s *FileStore) userIndex(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.users, func(u userRecord) bool { return u.ID == id })
}

func (r userRecord) toUser() prompt.User {
	u := r.User
	u.PasswordHash = r.PasswordHash
	return u
}

// write persists one collection snapshot.
type write func() error

func (s *FileStore) save(writes ...write) error {
	for _, w := range writes {
		if err := w(); err != nil {
			return err
		}
	}
	return nil
}

func snapshot[T any](s *FileStore, name string, items []T) write {
	return func() error {
		return writeJSONL(s.path(name), items)
	}
}

// writeJSONL replaces path atomically with one encoded item per line.
func writeJSONL[T any](path string, items []T) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
	}

	w := bufio.NewWriter(f)
	encoder := json.NewEncoder(w)
	for i := range items {
		if err := encoder.Encode(items[i]); err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
			return fmt.Errorf("failed to encode record %d of %s: %w", i, filepath.Base(path), err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to sync %s: %w", filepath.Base(path), err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to close %s: %w", filepath.Base(path), err)
	}
	return os.Rename(tmp, path)
}

// readJSONL loads every line of path. A missing file is an empty collection.
func readJSONL[T any](path string) ([]T, error) {
	items := make([]T, 0)

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return items, nil
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var item T
		if err := json.Unmarshal(line, &item); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
		}
		items = append(items, item)
	}
	return items, scanner.Err()
}
