package store

import (
	"fmt"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

// versionColumns lists all columns for document_versions SELECTs.
const versionColumns = `id, document_id, version_number, title, body,
	word_count, change_summary, created_at`

// VersionStore provides access to the append-only version history of
// documents. It is reached through the content service, never directly by
// the delivery layer.
type VersionStore struct {
	db DBTX
}

// NewVersionStore creates a new VersionStore backed by the given database handle.
func NewVersionStore(db DBTX) *VersionStore {
	return &VersionStore{db: db}
}

// scanVersion scans a single document_versions row.
func scanVersion(scanner interface{ Scan(...any) error }) (*models.Version, error) {
	var v models.Version
	err := scanner.Scan(
		&v.ID, &v.DocumentID, &v.VersionNumber, &v.Title, &v.Body,
		&v.WordCount, &v.ChangeSummary, &v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Append inserts the next version for a document, computing the version
// number as max existing + 1 in the same statement. To be race-free this
// must run inside the transaction that also updates (and therefore locks)
// the document row; otherwise two writers can observe the same max.
func (s *VersionStore) Append(documentID uuid.UUID, title, body string, wordCount int, changeSummary string) (*models.Version, error) {
	row := s.db.QueryRow(`
		INSERT INTO document_versions (document_id, version_number, title, body, word_count, change_summary)
		SELECT $1, COALESCE(MAX(version_number), 0) + 1, $2, $3, $4, $5
		FROM document_versions
		WHERE document_id = $1
		RETURNING `+versionColumns,
		documentID, title, body, wordCount, changeSummary,
	)
	v, err := scanVersion(row)
	if err != nil {
		return nil, fmt.Errorf("append version: %w", err)
	}
	return v, nil
}

// ListByDocument returns all versions for a document, newest first.
func (s *VersionStore) ListByDocument(documentID uuid.UUID) ([]models.Version, error) {
	rows, err := s.db.Query(`
		SELECT `+versionColumns+`
		FROM document_versions
		WHERE document_id = $1
		ORDER BY version_number DESC
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var versions []models.Version
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		versions = append(versions, *v)
	}
	return versions, rows.Err()
}

// Find returns a single version by document and version number.
// Returns nil if no such version exists.
func (s *VersionStore) Find(documentID uuid.UUID, versionNumber int) (*models.Version, error) {
	row := s.db.QueryRow(`
		SELECT `+versionColumns+`
		FROM document_versions
		WHERE document_id = $1 AND version_number = $2
	`, documentID, versionNumber)

	v, err := scanVersion(row)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find version: %w", err)
	}
	return v, nil
}

// Prune deletes all but the keepLatest highest-numbered versions of a
// document. Surviving versions keep their numbers, so pruning may leave
// gaps at the low end of the sequence. Returns the number of versions
// removed.
func (s *VersionStore) Prune(documentID uuid.UUID, keepLatest int) (int64, error) {
	res, err := s.db.Exec(`
		DELETE FROM document_versions
		WHERE document_id = $1
		  AND version_number NOT IN (
			SELECT version_number
			FROM document_versions
			WHERE document_id = $1
			ORDER BY version_number DESC
			LIMIT $2
		  )
	`, documentID, keepLatest)
	if err != nil {
		return 0, fmt.Errorf("prune versions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune versions rows affected: %w", err)
	}
	return n, nil
}

// Count returns the number of versions stored for a document.
func (s *VersionStore) Count(documentID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM document_versions WHERE document_id = $1
	`, documentID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count versions: %w", err)
	}
	return count, nil
}
