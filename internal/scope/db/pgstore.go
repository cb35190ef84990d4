package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dsjohal14/promptlib/internal/scope/prompt"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres error codes mapped to sentinel errors
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

const promptColumns = `id, title, description, body, category, tags, variables_schema,
	output_format, examples, status, risk_level, version, changelog, use_count,
	thumbs_up, thumbs_down, is_favorite, author_id, reviewer_id, created_at,
	updated_at, published_at, deprecated_at`

const versionColumns = `id, prompt_id, version, body, variables_schema, output_format,
	changelog, author_id, created_at`

const usageColumns = `id, prompt_id, user_id, feedback, comment, data_risk_level,
	variables_used, created_at`

const userColumns = `id, email, name, role, password_hash, created_at, updated_at`

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGStore implements Storage on PostgreSQL. Apply Migrate before use.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore connects to the database and verifies the connection.
func NewPGStore(ctx context.Context, connString string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PGStore{pool: pool}, nil
}

// Pool returns the underlying connection pool
func (s *PGStore) Pool() *pgxpool.Pool {
	return s.pool
}

// Ping implements Storage
func (s *PGStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close implements Storage
func (s *PGStore) Close() error {
	s.pool.Close()
	return nil
}

// withTx runs fn in a transaction. A failed fn rolls back on a fresh context
// so row locks are released even when ctx is already canceled.
func (s *PGStore) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		rollbackCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tx.Rollback(rollbackCtx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListPrompts implements Storage
func (s *PGStore) ListPrompts(ctx context.Context, f PromptFilter) ([]prompt.Prompt, int, error) {
	where, args := promptWhere(f)

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM prompts"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count prompts: %w", err)
	}

	query := "SELECT " + promptColumns + " FROM prompts" + where +
		" ORDER BY is_favorite DESC, updated_at DESC, id ASC"
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	out, err := queryPrompts(ctx, s.pool, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// promptWhere renders the filter as a WHERE clause with positional args.
func promptWhere(f PromptFilter) (string, []any) {
	var conds []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if st := f.status(); st != StatusAny {
		conds = append(conds, "status = "+arg(string(st)))
	}
	if f.Category != "" {
		conds = append(conds, "category = "+arg(f.Category))
	}
	if f.OnlyFavorites {
		conds = append(conds, "is_favorite")
	}
	if f.Search != "" {
		p := arg("%" + escapeLike(f.Search) + "%")
		conds = append(conds, fmt.Sprintf("(title ILIKE %[1]s OR description ILIKE %[1]s OR tags ILIKE %[1]s)", p))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// AllPrompts implements Storage
func (s *PGStore) AllPrompts(ctx context.Context) ([]prompt.Prompt, error) {
	return queryPrompts(ctx, s.pool,
		"SELECT "+promptColumns+" FROM prompts ORDER BY is_favorite DESC, updated_at DESC, id ASC")
}

// GetPrompt implements Storage
func (s *PGStore) GetPrompt(ctx context.Context, id string) (prompt.Prompt, error) {
	p, err := scanPrompt(s.pool.QueryRow(ctx, "SELECT "+promptColumns+" FROM prompts WHERE id = $1", id))
	if err != nil {
		return prompt.Prompt{}, translate(err, "prompt "+id)
	}

	versions, err := queryVersions(ctx, s.pool, id, PromptVersionsInline)
	if err != nil {
		return prompt.Prompt{}, err
	}
	p.Versions = versions
	return p, nil
}

// CreatePrompt implements Storage
func (s *PGStore) CreatePrompt(ctx context.Context, p prompt.Prompt, actorID string) (prompt.Prompt, error) {
	p = preparePrompt(p, actorID)
	audit := newAudit(p.ID, actorID, prompt.ActionCreate, createDetails(p))

	err := s.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO prompts (`+promptColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
		`, p.ID, p.Title, p.Description, p.Body, p.Category,
			prompt.EncodeJSON(p.Tags), prompt.EncodeJSON(p.VariablesSchema), p.OutputFormat, prompt.EncodeJSON(p.Examples),
			string(p.Status), string(p.RiskLevel), p.Version, p.Changelog, p.UseCount,
			p.ThumbsUp, p.ThumbsDown, p.IsFavorite, p.AuthorID, nullable(p.ReviewerID), p.CreatedAt,
			p.UpdatedAt, p.PublishedAt, p.DeprecatedAt)
		if err != nil {
			return translate(err, "prompt "+p.ID)
		}
		return insertAudit(ctx, tx, audit)
	})
	if err != nil {
		return prompt.Prompt{}, err
	}
	return p, nil
}

// UpdatePrompt implements Storage
func (s *PGStore) UpdatePrompt(ctx context.Context, id, actorID string, mutate MutateFunc) (prompt.Prompt, error) {
	var next prompt.Prompt
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		current, err := scanPrompt(tx.QueryRow(ctx,
			"SELECT "+promptColumns+" FROM prompts WHERE id = $1 FOR UPDATE", id))
		if err != nil {
			return translate(err, "prompt "+id)
		}

		updated, snapshot, audit, err := applyMutation(current, actorID, mutate)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE prompts SET
				title = $2, description = $3, body = $4, category = $5, tags = $6,
				variables_schema = $7, output_format = $8, examples = $9, status = $10,
				risk_level = $11, version = $12, changelog = $13, is_favorite = $14,
				reviewer_id = $15, updated_at = $16, published_at = $17, deprecated_at = $18
			WHERE id = $1
		`, id, updated.Title, updated.Description, updated.Body, updated.Category,
			prompt.EncodeJSON(updated.Tags), prompt.EncodeJSON(updated.VariablesSchema),
			updated.OutputFormat, prompt.EncodeJSON(updated.Examples), string(updated.Status),
			string(updated.RiskLevel), updated.Version, updated.Changelog, updated.IsFavorite,
			nullable(updated.ReviewerID), updated.UpdatedAt, updated.PublishedAt, updated.DeprecatedAt)
		if err != nil {
			return translate(err, "prompt "+id)
		}

		if snapshot != nil {
			_, err = tx.Exec(ctx, `
				INSERT INTO prompt_versions (`+versionColumns+`)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			`, snapshot.ID, snapshot.PromptID, snapshot.Version, snapshot.Body,
				prompt.EncodeJSON(snapshot.VariablesSchema), snapshot.OutputFormat,
				snapshot.Changelog, snapshot.AuthorID, snapshot.CreatedAt)
			if err != nil {
				return translate(err, "version of prompt "+id)
			}
		}

		if err := insertAudit(ctx, tx, audit); err != nil {
			return err
		}
		next = updated
		return nil
	})
	if err != nil {
		return prompt.Prompt{}, err
	}
	return next, nil
}

// ListVersions implements Storage
func (s *PGStore) ListVersions(ctx context.Context, promptID string) ([]prompt.Version, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM prompts WHERE id = $1)", promptID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to look up prompt: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("prompt %s: %w", promptID, ErrNotFound)
	}
	return queryVersions(ctx, s.pool, promptID, VersionHistoryLimit)
}

// RecordFeedback implements Storage
func (s *PGStore) RecordFeedback(ctx context.Context, in FeedbackInput) (FeedbackResult, error) {
	var result FeedbackResult
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		var locked string
		err := tx.QueryRow(ctx, "SELECT id FROM prompts WHERE id = $1 FOR UPDATE", in.PromptID).Scan(&locked)
		if err != nil {
			return translate(err, "prompt "+in.PromptID)
		}

		var userExists bool
		if err := tx.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)", in.UserID).Scan(&userExists); err != nil {
			return fmt.Errorf("failed to look up user: %w", err)
		}
		if !userExists {
			return fmt.Errorf("user %s: %w", in.UserID, ErrNotFound)
		}

		previous, err := scanUsage(tx.QueryRow(ctx, `
			SELECT `+usageColumns+` FROM prompt_usage
			WHERE prompt_id = $1 AND user_id = $2 AND feedback <> ''
			ORDER BY created_at DESC, id DESC
			LIMIT 1
			FOR UPDATE
		`, in.PromptID, in.UserID))
		switch {
		case err == nil:
			u := fillUsage(previous, in)
			if _, err := tx.Exec(ctx, `
				UPDATE prompt_usage SET feedback = $2, comment = $3, data_risk_level = $4, variables_used = $5
				WHERE id = $1
			`, u.ID, string(u.Feedback), u.Comment, string(u.DataRiskLevel), encodeVariablesUsed(u.VariablesUsed)); err != nil {
				return fmt.Errorf("failed to update usage: %w", err)
			}

			up, down := prompt.FeedbackDelta(previous.Feedback, in.Feedback)
			if _, err := tx.Exec(ctx, `
				UPDATE prompts SET
					thumbs_up = GREATEST(0, thumbs_up + $2),
					thumbs_down = GREATEST(0, thumbs_down + $3)
				WHERE id = $1
			`, in.PromptID, up, down); err != nil {
				return fmt.Errorf("failed to update counters: %w", err)
			}

			result = FeedbackResult{Usage: u, Updated: true, PreviousFeedback: previous.Feedback}
			return nil
		case !errors.Is(err, pgx.ErrNoRows):
			return fmt.Errorf("failed to look up previous feedback: %w", err)
		}

		u := fillUsage(prompt.Usage{
			ID:        newID(),
			PromptID:  in.PromptID,
			UserID:    in.UserID,
			CreatedAt: now(),
		}, in)
		if _, err := tx.Exec(ctx, `
			INSERT INTO prompt_usage (`+usageColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, u.ID, u.PromptID, u.UserID, string(u.Feedback), u.Comment, string(u.DataRiskLevel),
			encodeVariablesUsed(u.VariablesUsed), u.CreatedAt); err != nil {
			return translate(err, "usage of prompt "+in.PromptID)
		}

		up, down := prompt.FeedbackDelta(prompt.FeedbackNone, in.Feedback)
		if _, err := tx.Exec(ctx, `
			UPDATE prompts SET
				use_count = use_count + 1,
				thumbs_up = thumbs_up + $2,
				thumbs_down = thumbs_down + $3
			WHERE id = $1
		`, in.PromptID, up, down); err != nil {
			return fmt.Errorf("failed to update counters: %w", err)
		}

		if err := insertAudit(ctx, tx, newAudit(in.PromptID, in.UserID, prompt.ActionFeedback, feedbackDetails(in))); err != nil {
			return err
		}
		result = FeedbackResult{Usage: u}
		return nil
	})
	if err != nil {
		return FeedbackResult{}, err
	}
	return result, nil
}

// ListUsage implements Storage
func (s *PGStore) ListUsage(ctx context.Context, promptID string) ([]prompt.Usage, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+usageColumns+` FROM prompt_usage
		WHERE prompt_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, promptID, UsageHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage: %w", err)
	}
	defer rows.Close()

	out := make([]prompt.Usage, 0)
	for rows.Next() {
		u, err := scanUsage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan usage: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// UsageSummary implements Storage
func (s *PGStore) UsageSummary(ctx context.Context, since time.Time) (UsageSummary, error) {
	var sum UsageSummary
	err := s.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE feedback = 'thumbs_up'),
			COUNT(*) FILTER (WHERE feedback = 'thumbs_down'),
			COUNT(*) FILTER (WHERE created_at >= $1)
		FROM prompt_usage
	`, since).Scan(&sum.Total, &sum.ThumbsUp, &sum.ThumbsDown, &sum.Recent)
	if err != nil {
		return UsageSummary{}, fmt.Errorf("failed to summarize usage: %w", err)
	}
	return sum, nil
}

// ListCategories implements Storage
func (s *PGStore) ListCategories(ctx context.Context) ([]prompt.Category, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT c.id, c.name, c.description, c.color, c.icon, c.sort_order, c.created_at, c.updated_at,
			(SELECT COUNT(*) FROM prompts p WHERE p.category = c.name AND p.status = 'published')
		FROM categories c
		ORDER BY c.sort_order, c.name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	out := make([]prompt.Category, 0)
	for rows.Next() {
		var c prompt.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Color, &c.Icon, &c.Order,
			&c.CreatedAt, &c.UpdatedAt, &c.PromptsCount); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateCategory implements Storage
func (s *PGStore) CreateCategory(ctx context.Context, c prompt.Category) (prompt.Category, error) {
	t := now()
	if c.ID == "" {
		c.ID = newID()
	}
	c.CreatedAt, c.UpdatedAt, c.PromptsCount = t, t, 0

	_, err := s.pool.Exec(ctx, `
		INSERT INTO categories (id, name, description, color, icon, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, c.ID, c.Name, c.Description, c.Color, c.Icon, c.Order, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return prompt.Category{}, translate(err, fmt.Sprintf("category %q", c.Name))
	}
	return c, nil
}

// CreateUser implements Storage
func (s *PGStore) CreateUser(ctx context.Context, u prompt.User) (prompt.User, error) {
	t := now()
	u.Email = normalizeEmail(u.Email)
	if u.ID == "" {
		u.ID = newID()
	}
	if u.Role == "" {
		u.Role = prompt.RoleUser
	}
	u.CreatedAt, u.UpdatedAt = t, t

	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, u.ID, u.Email, u.Name, string(u.Role), u.PasswordHash, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return prompt.User{}, translate(err, "user "+u.Email)
	}
	return u, nil
}

// GetUser implements Storage
func (s *PGStore) GetUser(ctx context.Context, id string) (prompt.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id))
	if err != nil {
		return prompt.User{}, translate(err, "user "+id)
	}
	return u, nil
}

// UserByEmail implements Storage
func (s *PGStore) UserByEmail(ctx context.Context, email string) (prompt.User, error) {
	email = normalizeEmail(email)
	u, err := scanUser(s.pool.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", email))
	if err != nil {
		return prompt.User{}, translate(err, "user "+email)
	}
	return u, nil
}

// FirstUser implements Storage
func (s *PGStore) FirstUser(ctx context.Context) (prompt.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, "SELECT "+userColumns+" FROM users ORDER BY created_at, id LIMIT 1"))
	if err != nil {
		return prompt.User{}, translate(err, "first user")
	}
	return u, nil
}

// ListAudit implements Storage
func (s *PGStore) ListAudit(ctx context.Context, promptID string) ([]prompt.AuditEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, prompt_id, user_id, action, details, created_at
		FROM audit_log
		WHERE prompt_id = $1
		ORDER BY created_at DESC, id DESC
	`, promptID)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	out := make([]prompt.AuditEntry, 0)
	for rows.Next() {
		var a prompt.AuditEntry
		var action string
		if err := rows.Scan(&a.ID, &a.PromptID, &a.UserID, &action, &a.Details, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		a.Action = prompt.AuditAction(action)
		out = append(out, a)
	}
	return out, rows.Err()
}

func insertAudit(ctx context.Context, q querier, a prompt.AuditEntry) error {
	_, err := q.Exec(ctx, `
		INSERT INTO audit_log (id, prompt_id, user_id, action, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, a.ID, a.PromptID, a.UserID, string(a.Action), a.Details, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}
	return nil
}

func queryPrompts(ctx context.Context, q querier, query string, args ...any) ([]prompt.Prompt, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query prompts: %w", err)
	}
	defer rows.Close()

	out := make([]prompt.Prompt, 0)
	for rows.Next() {
		p, err := scanPrompt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prompt: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func queryVersions(ctx context.Context, q querier, promptID string, limit int) ([]prompt.Version, error) {
	rows, err := q.Query(ctx, `
		SELECT `+versionColumns+` FROM prompt_versions
		WHERE prompt_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, promptID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query versions: %w", err)
	}
	defer rows.Close()

	out := make([]prompt.Version, 0)
	for rows.Next() {
		var v prompt.Version
		var schema string
		if err := rows.Scan(&v.ID, &v.PromptID, &v.Version, &v.Body, &schema,
			&v.OutputFormat, &v.Changelog, &v.AuthorID, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan version: %w", err)
		}
		v.VariablesSchema = prompt.ParseVariables(schema)
		v.CreatedAt = v.CreatedAt.UTC()
		out = append(out, v)
	}
	return out, rows.Err()
}

func scanPrompt(row pgx.Row) (prompt.Prompt, error) {
	var p prompt.Prompt
	var tags, schema, examples, status, risk string
	var reviewer *string
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Body, &p.Category, &tags, &schema,
		&p.OutputFormat, &examples, &status, &risk, &p.Version, &p.Changelog, &p.UseCount,
		&p.ThumbsUp, &p.ThumbsDown, &p.IsFavorite, &p.AuthorID, &reviewer, &p.CreatedAt,
		&p.UpdatedAt, &p.PublishedAt, &p.DeprecatedAt)
	if err != nil {
		return prompt.Prompt{}, err
	}

	p.Tags = prompt.ParseTags(tags)
	p.VariablesSchema = prompt.ParseVariables(schema)
	p.Examples = prompt.ParseExamples(examples)
	p.Status = prompt.Status(status)
	p.RiskLevel = prompt.RiskLevel(risk)
	if reviewer != nil {
		p.ReviewerID = *reviewer
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	p.PublishedAt = utcPtr(p.PublishedAt)
	p.DeprecatedAt = utcPtr(p.DeprecatedAt)
	return p, nil
}

func scanUsage(row pgx.Row) (prompt.Usage, error) {
	var u prompt.Usage
	var feedback, risk, vars string
	if err := row.Scan(&u.ID, &u.PromptID, &u.UserID, &feedback, &u.Comment, &risk, &vars, &u.CreatedAt); err != nil {
		return prompt.Usage{}, err
	}
	u.Feedback = prompt.Feedback(feedback)
	u.DataRiskLevel = prompt.RiskLevel(risk)
	u.VariablesUsed = prompt.ParseField(vars, map[string]string{})
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}

func scanUser(row pgx.Row) (prompt.User, error) {
	var u prompt.User
	var role string
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &role, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return prompt.User{}, err
	}
	u.Role = prompt.Role(role)
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return u, nil
}

func encodeVariablesUsed(vars map[string]string) string {
	if len(vars) == 0 {
		return "{}"
	}
	raw, err := json.Marshal(vars)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// translate maps driver errors onto ErrNotFound and ErrConflict.
func translate(err error, subject string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", subject, ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s: %w", subject, ErrConflict)
		case pgForeignKeyViolation:
			return fmt.Errorf("%s references a missing row: %w", subject, ErrNotFound)
		}
	}
	return fmt.Errorf("%s: %w", subject, err)
}
