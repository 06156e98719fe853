// Package content implements the document repository and rollback
// coordinator: owner-scoped CRUD over documents, synchronous recomputation
// of derived metrics, and transactional append-only version history.
package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/seo"
	"inkwell/internal/slug"
	"inkwell/internal/store"
)

// createAttempts bounds slug-collision retries when concurrent creates
// race past the uniqueness pre-check.
const createAttempts = 3

// Service owns the mutable document state and its version history. All
// operations are scoped to an owner; a document belonging to someone else
// is reported as ErrNotFound.
type Service struct {
	db       *sql.DB
	docCache *cache.DocumentCache // optional, nil disables caching
}

// NewService creates a content service. docCache may be nil, in which case
// every read goes to PostgreSQL.
func NewService(db *sql.DB, docCache *cache.DocumentCache) *Service {
	return &Service{db: db, docCache: docCache}
}

// CreateInput carries the fields accepted when creating a document.
type CreateInput struct {
	Title           string
	Body            string
	MetaDescription *string
	MetaKeywords    *string
	Status          models.DocumentStatus // empty defaults to draft
}

// Patch carries a partial update. Nil pointers leave the field untouched.
// A provided empty string clears meta description or keywords; title and
// body cannot be cleared (validation rejects empty values).
type Patch struct {
	Title           *string
	Body            *string
	MetaDescription *string
	MetaKeywords    *string
	Status          *models.DocumentStatus
}

// Create validates the input, assigns a unique slug for the owner, computes
// derived metrics, and persists the document together with version 1
// ("Initial version") in a single transaction.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, in CreateInput) (*models.Document, error) {
	if err := validateTitle(in.Title); err != nil {
		return nil, err
	}
	if err := validateBody(in.Body); err != nil {
		return nil, err
	}
	if in.MetaDescription != nil {
		if err := validateMetaDescription(*in.MetaDescription); err != nil {
			return nil, err
		}
	}
	if in.MetaKeywords != nil {
		if err := validateMetaKeywords(*in.MetaKeywords); err != nil {
			return nil, err
		}
	}
	status := in.Status
	if status == "" {
		status = models.StatusDraft
	}
	if err := validateStatus(status); err != nil {
		return nil, err
	}

	var created *models.Document
	var err error
	for attempt := 0; attempt < createAttempts; attempt++ {
		created, err = s.createOnce(ctx, ownerID, in, status)
		if err == nil {
			return created, nil
		}
		if !isUniqueViolation(err) {
			return nil, err
		}
		// A concurrent create grabbed the slug between our uniqueness
		// check and commit; re-run to pick the next suffix.
		slog.Debug("slug collision on create, retrying", "owner_id", ownerID)
	}
	return nil, err
}

func (s *Service) createOnce(ctx context.Context, ownerID uuid.UUID, in CreateInput, status models.DocumentStatus) (*models.Document, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create: %w", err)
	}
	defer tx.Rollback()

	docs := store.NewDocumentStore(tx)
	versions := store.NewVersionStore(tx)

	uniqueSlug, err := s.uniqueSlug(docs, ownerID, in.Title, uuid.Nil)
	if err != nil {
		return nil, err
	}

	wordCount := models.CountWords(in.Body)
	doc := &models.Document{
		OwnerID:         ownerID,
		Title:           in.Title,
		Slug:            uniqueSlug,
		Body:            in.Body,
		MetaDescription: in.MetaDescription,
		MetaKeywords:    in.MetaKeywords,
		Status:          status,
		WordCount:       wordCount,
		ReadingTime:     models.ReadingTime(wordCount),
		SEOScore: seo.Score(seo.Input{
			Title:           in.Title,
			MetaDescription: in.MetaDescription,
			WordCount:       wordCount,
			KeywordCount:    countKeywords(in.MetaKeywords),
			Slug:            uniqueSlug,
		}),
	}

	created, err := docs.Create(doc)
	if err != nil {
		return nil, err
	}

	// Version 1 is written atomically with the document itself.
	if _, err := versions.Append(created.ID, created.Title, created.Body, created.WordCount, "Initial version"); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create: %w", err)
	}
	return created, nil
}

// Get returns a document owned by ownerID, consulting the read cache first.
func (s *Service) Get(ctx context.Context, id, ownerID uuid.UUID) (*models.Document, error) {
	if s.docCache != nil {
		if d := s.docCache.Get(ctx, id); d != nil {
			if d.OwnerID != ownerID {
				return nil, ErrNotFound
			}
			return d, nil
		}
	}

	docs := store.NewDocumentStore(s.db)
	d, err := docs.FindByID(id, ownerID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrNotFound
	}
	if s.docCache != nil {
		s.docCache.Set(ctx, d)
	}
	return d, nil
}

// List returns the owner's documents matching the filter plus the total
// count before pagination.
func (s *Service) List(ownerID uuid.UUID, f store.ListFilter) ([]models.Document, int, error) {
	return store.NewDocumentStore(s.db).List(ownerID, f)
}

// Update applies a partial patch to a document. If title or body changed
// relative to the stored values, derived metrics are recomputed and a new
// version is appended in the same transaction (summary defaults to
// "Content updated"). A patch that changes nothing writes nothing: no row
// update, no version, updated_at untouched.
func (s *Service) Update(ctx context.Context, id, ownerID uuid.UUID, p Patch, changeSummary string) (*models.Document, error) {
	if p.Title != nil {
		if err := validateTitle(*p.Title); err != nil {
			return nil, err
		}
	}
	if p.Body != nil {
		if err := validateBody(*p.Body); err != nil {
			return nil, err
		}
	}
	if p.MetaDescription != nil {
		if err := validateMetaDescription(*p.MetaDescription); err != nil {
			return nil, err
		}
	}
	if p.MetaKeywords != nil {
		if err := validateMetaKeywords(*p.MetaKeywords); err != nil {
			return nil, err
		}
	}
	if p.Status != nil {
		if err := validateStatus(*p.Status); err != nil {
			return nil, err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	docs := store.NewDocumentStore(tx)
	versions := store.NewVersionStore(tx)

	// The row lock taken here serializes concurrent updates to the same
	// document, which also serializes version number assignment.
	doc, err := docs.FindByIDForUpdate(id, ownerID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrNotFound
	}

	origTitle, origBody := doc.Title, doc.Body
	changed := false

	if p.Title != nil && *p.Title != doc.Title {
		doc.Title = *p.Title
		changed = true
		newSlug, err := s.uniqueSlug(docs, ownerID, doc.Title, doc.ID)
		if err != nil {
			return nil, err
		}
		doc.Slug = newSlug
	}
	if p.Body != nil && *p.Body != doc.Body {
		doc.Body = *p.Body
		changed = true
	}
	if p.MetaDescription != nil && !equalOptional(p.MetaDescription, doc.MetaDescription) {
		doc.MetaDescription = normalizeOptional(p.MetaDescription)
		changed = true
	}
	if p.MetaKeywords != nil && !equalOptional(p.MetaKeywords, doc.MetaKeywords) {
		doc.MetaKeywords = normalizeOptional(p.MetaKeywords)
		changed = true
	}
	if p.Status != nil && *p.Status != doc.Status {
		doc.Status = *p.Status
		changed = true
	}

	if !changed {
		// No-op update: leave the row, its timestamps, and the version
		// history exactly as they are.
		return doc, nil
	}

	contentChanged := doc.Title != origTitle || doc.Body != origBody
	if contentChanged {
		doc.WordCount = models.CountWords(doc.Body)
		doc.ReadingTime = models.ReadingTime(doc.WordCount)
	}
	// Meta changes affect the score even when title/body are untouched.
	doc.SEOScore = seo.Score(seo.Input{
		Title:           doc.Title,
		MetaDescription: doc.MetaDescription,
		WordCount:       doc.WordCount,
		KeywordCount:    countKeywords(doc.MetaKeywords),
		Slug:            doc.Slug,
	})

	updated, err := docs.Update(doc)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrNotFound
	}

	if contentChanged {
		summary := changeSummary
		if summary == "" {
			summary = "Content updated"
		}
		if _, err := versions.Append(updated.ID, updated.Title, updated.Body, updated.WordCount, summary); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update: %w", err)
	}

	s.invalidate(ctx, updated.ID)
	return updated, nil
}

// Delete removes a document and, via the foreign key cascade, its entire
// version history. Returns false rather than an error when the document is
// missing or not owned.
func (s *Service) Delete(ctx context.Context, id, ownerID uuid.UUID) (bool, error) {
	deleted, err := store.NewDocumentStore(s.db).Delete(id, ownerID)
	if err != nil {
		return false, err
	}
	if deleted {
		s.invalidate(ctx, id)
	}
	return deleted, nil
}

// ListVersions returns the document's versions, newest first.
func (s *Service) ListVersions(id, ownerID uuid.UUID) ([]models.Version, error) {
	if err := s.checkOwnership(id, ownerID); err != nil {
		return nil, err
	}
	return store.NewVersionStore(s.db).ListByDocument(id)
}

// GetVersion returns a single version snapshot by number.
func (s *Service) GetVersion(id, ownerID uuid.UUID, versionNumber int) (*models.Version, error) {
	if err := s.checkOwnership(id, ownerID); err != nil {
		return nil, err
	}
	v, err := store.NewVersionStore(s.db).Find(id, versionNumber)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, ErrNotFound
	}
	return v, nil
}

// Rollback replays a historical version as the new current state. The
// rollback is itself a recorded edit: it appends a fresh version
// ("Rolled back to version {N}") and never rewrites history.
func (s *Service) Rollback(ctx context.Context, id, ownerID uuid.UUID, versionNumber int) (*models.Document, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin rollback: %w", err)
	}
	defer tx.Rollback()

	docs := store.NewDocumentStore(tx)
	versions := store.NewVersionStore(tx)

	doc, err := docs.FindByIDForUpdate(id, ownerID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrNotFound
	}

	target, err := versions.Find(id, versionNumber)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrNotFound
	}

	doc.Title = target.Title
	doc.Body = target.Body
	doc.WordCount = models.CountWords(doc.Body)
	doc.ReadingTime = models.ReadingTime(doc.WordCount)
	doc.SEOScore = seo.Score(seo.Input{
		Title:           doc.Title,
		MetaDescription: doc.MetaDescription,
		WordCount:       doc.WordCount,
		KeywordCount:    countKeywords(doc.MetaKeywords),
		Slug:            doc.Slug,
	})

	updated, err := docs.Update(doc)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrNotFound
	}

	summary := fmt.Sprintf("Rolled back to version %d", versionNumber)
	if _, err := versions.Append(updated.ID, updated.Title, updated.Body, updated.WordCount, summary); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit rollback: %w", err)
	}

	s.invalidate(ctx, updated.ID)
	return updated, nil
}

// PruneVersions trims a document's history to the keepLatest most recent
// versions. Called opportunistically after autosave commits, never inline
// with a user-facing read.
func (s *Service) PruneVersions(documentID uuid.UUID, keepLatest int) (int64, error) {
	return store.NewVersionStore(s.db).Prune(documentID, keepLatest)
}

// checkOwnership verifies the document exists and belongs to ownerID.
func (s *Service) checkOwnership(id, ownerID uuid.UUID) error {
	d, err := store.NewDocumentStore(s.db).FindByID(id, ownerID)
	if err != nil {
		return err
	}
	if d == nil {
		return ErrNotFound
	}
	return nil
}

// uniqueSlug generates a slug from the title and disambiguates it with
// -2, -3, … suffixes until it is unique for the owner.
func (s *Service) uniqueSlug(docs *store.DocumentStore, ownerID uuid.UUID, title string, excludeID uuid.UUID) (string, error) {
	base := slug.Generate(title)
	if base == "" {
		base = "untitled"
	}

	candidate := base
	for n := 2; ; n++ {
		exists, err := docs.SlugExists(ownerID, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}

// invalidate drops the cached copy of a document after a committed mutation.
func (s *Service) invalidate(ctx context.Context, id uuid.UUID) {
	if s.docCache != nil {
		s.docCache.Invalidate(ctx, id)
	}
}

// equalOptional compares a patch value against a stored optional field,
// treating an empty patch string as equal to an absent stored value.
func equalOptional(patch *string, stored *string) bool {
	if stored == nil {
		return *patch == ""
	}
	return *patch == *stored
}

// normalizeOptional maps an empty patch string to NULL, clearing the field.
func normalizeOptional(patch *string) *string {
	if *patch == "" {
		return nil
	}
	v := *patch
	return &v
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
