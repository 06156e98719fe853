package store

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

// documentColumns lists all columns for documents SELECTs.
const documentColumns = `id, owner_id, title, slug, body, meta_description,
	meta_keywords, status, seo_score, word_count, reading_time, created_at, updated_at`

// sortColumns whitelists the columns List may order by.
var sortColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"title":      "title",
	"seo_score":  "seo_score",
}

// DocumentStore handles all document-related database operations.
// Every query is scoped by owner_id, so a wrong owner behaves exactly
// like a missing row.
type DocumentStore struct {
	db DBTX
}

// NewDocumentStore creates a new DocumentStore with the given database handle.
func NewDocumentStore(db DBTX) *DocumentStore {
	return &DocumentStore{db: db}
}

// scanDocument scans a single documents row.
func scanDocument(scanner interface{ Scan(...any) error }) (*models.Document, error) {
	var d models.Document
	err := scanner.Scan(
		&d.ID, &d.OwnerID, &d.Title, &d.Slug, &d.Body, &d.MetaDescription,
		&d.MetaKeywords, &d.Status, &d.SEOScore, &d.WordCount, &d.ReadingTime,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// FindByID retrieves a document owned by ownerID. Returns nil if the
// document does not exist or belongs to someone else.
func (s *DocumentStore) FindByID(id, ownerID uuid.UUID) (*models.Document, error) {
	row := s.db.QueryRow(`
		SELECT `+documentColumns+`
		FROM documents
		WHERE id = $1 AND owner_id = $2
	`, id, ownerID)

	d, err := scanDocument(row)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find document by id: %w", err)
	}
	return d, nil
}

// FindByIDForUpdate is FindByID with a row lock. Used inside transactions
// so concurrent updates to the same document serialize, which also
// serializes version number assignment.
func (s *DocumentStore) FindByIDForUpdate(id, ownerID uuid.UUID) (*models.Document, error) {
	row := s.db.QueryRow(`
		SELECT `+documentColumns+`
		FROM documents
		WHERE id = $1 AND owner_id = $2
		FOR UPDATE
	`, id, ownerID)

	d, err := scanDocument(row)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find document for update: %w", err)
	}
	return d, nil
}

// SlugExists reports whether the owner already has a document with the
// given slug, excluding excludeID (pass uuid.Nil to exclude nothing).
func (s *DocumentStore) SlugExists(ownerID uuid.UUID, slug string, excludeID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM documents
			WHERE owner_id = $1 AND slug = $2 AND id != $3
		)
	`, ownerID, slug, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("slug exists: %w", err)
	}
	return exists, nil
}

// Create inserts a new document and returns it with generated fields.
func (s *DocumentStore) Create(d *models.Document) (*models.Document, error) {
	row := s.db.QueryRow(`
		INSERT INTO documents (owner_id, title, slug, body, meta_description,
		                       meta_keywords, status, seo_score, word_count, reading_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+documentColumns,
		d.OwnerID, d.Title, d.Slug, d.Body, d.MetaDescription,
		d.MetaKeywords, d.Status, d.SEOScore, d.WordCount, d.ReadingTime,
	)
	created, err := scanDocument(row)
	if err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	return created, nil
}

// Update writes the document's mutable fields and bumps updated_at.
// Returns the stored row, or nil if the document vanished.
func (s *DocumentStore) Update(d *models.Document) (*models.Document, error) {
	row := s.db.QueryRow(`
		UPDATE documents SET
			title = $1, slug = $2, body = $3, meta_description = $4,
			meta_keywords = $5, status = $6, seo_score = $7,
			word_count = $8, reading_time = $9, updated_at = NOW()
		WHERE id = $10 AND owner_id = $11
		RETURNING `+documentColumns,
		d.Title, d.Slug, d.Body, d.MetaDescription, d.MetaKeywords,
		d.Status, d.SEOScore, d.WordCount, d.ReadingTime, d.ID, d.OwnerID,
	)
	updated, err := scanDocument(row)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update document: %w", err)
	}
	return updated, nil
}

// Delete removes a document owned by ownerID. Versions go with it via the
// foreign key cascade. Returns false when nothing was deleted.
func (s *DocumentStore) Delete(id, ownerID uuid.UUID) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM documents WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("delete document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete document rows affected: %w", err)
	}
	return n > 0, nil
}

// ListFilter narrows and orders a document listing.
type ListFilter struct {
	Query    string // free-text match on title, body, meta description
	Status   models.DocumentStatus
	SortBy   string // created_at (default), updated_at, title, seo_score
	SortDesc bool
	Page     int // 1-based
	PerPage  int
}

// List returns the owner's documents matching the filter, plus the total
// count before pagination.
func (s *DocumentStore) List(ownerID uuid.UUID, f ListFilter) ([]models.Document, int, error) {
	where := []string{"owner_id = $1"}
	args := []any{ownerID}

	if f.Query != "" {
		args = append(args, "%"+f.Query+"%")
		p := fmt.Sprintf("$%d", len(args))
		where = append(where, fmt.Sprintf(
			"(title ILIKE %s OR body ILIKE %s OR meta_description ILIKE %s)", p, p, p))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM documents WHERE `+whereClause, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}

	sortCol, ok := sortColumns[f.SortBy]
	if !ok {
		sortCol = "created_at"
	}
	direction := "ASC"
	if f.SortDesc {
		direction = "DESC"
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	perPage := f.PerPage
	if perPage < 1 {
		perPage = 20
	}
	args = append(args, perPage, (page-1)*perPage)

	rows, err := s.db.Query(fmt.Sprintf(`
		SELECT %s FROM documents
		WHERE %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, documentColumns, whereClause, sortCol, direction, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var items []models.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan document: %w", err)
		}
		items = append(items, *d)
	}
	return items, total, rows.Err()
}
