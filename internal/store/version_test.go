package store

import (
	"testing"

	"github.com/google/uuid"
)

// versionFixture creates a document and returns its ID with a VersionStore.
func versionFixture(t *testing.T) (*VersionStore, uuid.UUID) {
	t.Helper()
	db := testDB(t)
	owner := testOwner(t, db)

	doc, err := NewDocumentStore(db).Create(testDocument(owner, "Versioned", "ver-"+uuid.NewString()[:8], "body"))
	if err != nil {
		t.Fatalf("create document: %v", err)
	}
	return NewVersionStore(db), doc.ID
}

func TestVersionStoreAppendNumbersSequentially(t *testing.T) {
	s, docID := versionFixture(t)

	for want := 1; want <= 3; want++ {
		v, err := s.Append(docID, "Title", "body", 1, "edit")
		if err != nil {
			t.Fatalf("Append #%d: %v", want, err)
		}
		if v.VersionNumber != want {
			t.Errorf("version number: got %d, want %d", v.VersionNumber, want)
		}
	}

	count, err := s.Count(docID)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 3 {
		t.Errorf("count: got %d, want 3", count)
	}
}

func TestVersionStoreListNewestFirst(t *testing.T) {
	s, docID := versionFixture(t)

	s.Append(docID, "One", "body one", 2, "first")
	s.Append(docID, "Two", "body two", 2, "second")
	s.Append(docID, "Three", "body three", 2, "third")

	versions, err := s.ListByDocument(docID)
	if err != nil {
		t.Fatalf("ListByDocument: %v", err)
	}
	if len(versions) != 3 {
		t.Fatalf("len: got %d, want 3", len(versions))
	}
	for i, want := range []int{3, 2, 1} {
		if versions[i].VersionNumber != want {
			t.Errorf("position %d: got version %d, want %d", i, versions[i].VersionNumber, want)
		}
	}
}

func TestVersionStoreFind(t *testing.T) {
	s, docID := versionFixture(t)

	s.Append(docID, "Snapshot", "snapshot body", 2, "captured")

	v, err := s.Find(docID, 1)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if v == nil {
		t.Fatal("expected version, got nil")
	}
	if v.Title != "Snapshot" || v.ChangeSummary != "captured" {
		t.Errorf("version fields: got %+v", v)
	}

	missing, err := s.Find(docID, 99)
	if err != nil {
		t.Fatalf("Find missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing version number")
	}
}

func TestVersionStorePruneKeepsHighestNumbers(t *testing.T) {
	s, docID := versionFixture(t)

	for i := 0; i < 7; i++ {
		if _, err := s.Append(docID, "T", "b", 1, "edit"); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	removed, err := s.Prune(docID, 5)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed: got %d, want 2", removed)
	}

	versions, err := s.ListByDocument(docID)
	if err != nil {
		t.Fatalf("ListByDocument: %v", err)
	}
	if len(versions) != 5 {
		t.Fatalf("surviving count: got %d, want 5", len(versions))
	}
	// Numbers 3..7 survive untouched — pruning never renumbers.
	for i, want := range []int{7, 6, 5, 4, 3} {
		if versions[i].VersionNumber != want {
			t.Errorf("position %d: got version %d, want %d", i, versions[i].VersionNumber, want)
		}
	}

	// Numbering continues from the historical max, not the survivor count.
	v, err := s.Append(docID, "T", "b", 1, "post-prune edit")
	if err != nil {
		t.Fatalf("Append after prune: %v", err)
	}
	if v.VersionNumber != 8 {
		t.Errorf("post-prune version number: got %d, want 8", v.VersionNumber)
	}
}

func TestVersionsCascadeWithDocument(t *testing.T) {
	db := testDB(t)
	owner := testOwner(t, db)
	docs := NewDocumentStore(db)
	versions := NewVersionStore(db)

	doc, err := docs.Create(testDocument(owner, "Cascade", "cascade-"+uuid.NewString()[:8], "body"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	versions.Append(doc.ID, "T", "b", 1, "edit")
	versions.Append(doc.ID, "T", "b", 1, "edit")

	if _, err := docs.Delete(doc.ID, owner); err != nil {
		t.Fatalf("delete: %v", err)
	}

	count, err := versions.Count(doc.ID)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 0 {
		t.Errorf("versions after cascade delete: got %d, want 0", count)
	}
}
