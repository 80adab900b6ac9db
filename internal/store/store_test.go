// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/meshintel/brief-engine/internal/pipeline"
	"github.com/meshintel/brief-engine/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := NewStore(types.StoreConfig{
		DBPath:      filepath.Join(dir, "briefs.db"),
		ArtifactDir: filepath.Join(dir, "artifacts"),
	})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testRecord() *types.BriefRecord {
	return &types.BriefRecord{
		UserID: "user-1",
		Topic:  "postgres scaling",
		Brief: types.Brief{
			SEOData: types.SEOData{Title: "Scaling Postgres", PrimaryKeyword: "postgres scaling"},
			Structure: types.Structure{
				H1: "Scaling Postgres Past 10k Connections",
				Sections: []types.Section{
					{H2: "Connection Pooling Under Load", H3s: []string{"a", "b", "c"}},
					{H2: "Read Replica Topologies", H3s: []string{"d", "e", "f"}},
				},
			},
		},
		Provenance: types.Provenance{
			SourcesFound:     3,
			SourcesExtracted: 2,
			SourcesAnalyzed:  2,
			Sources: []types.SourceRef{
				{URL: "https://a.com/blog/one", Title: "One"},
			},
		},
	}
}

func TestSaveAndGetBrief(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	record := testRecord()
	if err := s.SaveBrief(ctx, record); err != nil {
		t.Fatalf("SaveBrief: %v", err)
	}
	if record.ID == "" {
		t.Fatal("SaveBrief did not assign an ID")
	}
	if record.CreatedAt.IsZero() {
		t.Fatal("SaveBrief did not assign a timestamp")
	}

	got, err := s.GetBrief(ctx, record.ID)
	if err != nil {
		t.Fatalf("GetBrief: %v", err)
	}
	if got.Topic != "postgres scaling" {
		t.Errorf("Topic = %q", got.Topic)
	}
	if got.Brief.Structure.H1 != record.Brief.Structure.H1 {
		t.Errorf("H1 = %q", got.Brief.Structure.H1)
	}
	if got.Provenance.SourcesFound != 3 {
		t.Errorf("SourcesFound = %d", got.Provenance.SourcesFound)
	}
	if len(got.Provenance.Sources) != 1 {
		t.Errorf("Sources = %d refs", len(got.Provenance.Sources))
	}
}

func TestGetBriefNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetBrief(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestListBriefsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := testRecord()
	if err := s.SaveBrief(ctx, first); err != nil {
		t.Fatal(err)
	}
	// RFC3339 has second precision; force distinct timestamps.
	time.Sleep(1100 * time.Millisecond)
	second := testRecord()
	second.Topic = "postgres partitioning"
	if err := s.SaveBrief(ctx, second); err != nil {
		t.Fatal(err)
	}

	got, err := s.ListBriefs(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListBriefs: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if got[0].Topic != "postgres partitioning" {
		t.Errorf("first record = %q, want newest", got[0].Topic)
	}

	other, err := s.ListBriefs(ctx, "user-2")
	if err != nil {
		t.Fatal(err)
	}
	if len(other) != 0 {
		t.Errorf("user-2 has %d records, want 0", len(other))
	}
}

func TestSetArtifactPath(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	record := testRecord()
	if err := s.SaveBrief(ctx, record); err != nil {
		t.Fatal(err)
	}
	if err := s.SetArtifactPath(ctx, record.ID, "/tmp/x.md"); err != nil {
		t.Fatalf("SetArtifactPath: %v", err)
	}
	got, err := s.GetBrief(ctx, record.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ArtifactPath != "/tmp/x.md" {
		t.Errorf("ArtifactPath = %q", got.ArtifactPath)
	}

	if err := s.SetArtifactPath(ctx, "missing", "/tmp/y.md"); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestCreditGate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Unknown user.
	if err := s.CheckAndReserve(ctx, "ghost"); !errors.Is(err, pipeline.ErrNoSubscription) {
		t.Errorf("unknown user error = %v, want ErrNoSubscription", err)
	}

	// Subscribed with credits.
	if err := s.EnsureUser(ctx, "user-1", 2, true); err != nil {
		t.Fatal(err)
	}
	if err := s.CheckAndReserve(ctx, "user-1"); err != nil {
		t.Errorf("CheckAndReserve = %v, want nil", err)
	}

	// Not subscribed, even with credits.
	if err := s.EnsureUser(ctx, "user-2", 5, false); err != nil {
		t.Fatal(err)
	}
	if err := s.CheckAndReserve(ctx, "user-2"); !errors.Is(err, pipeline.ErrNoSubscription) {
		t.Errorf("unsubscribed error = %v, want ErrNoSubscription", err)
	}

	// Subscribed, no credits.
	if err := s.EnsureUser(ctx, "user-3", 0, true); err != nil {
		t.Fatal(err)
	}
	if err := s.CheckAndReserve(ctx, "user-3"); !errors.Is(err, pipeline.ErrNoCredits) {
		t.Errorf("zero credit error = %v, want ErrNoCredits", err)
	}
}

func TestDeduct(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.EnsureUser(ctx, "user-1", 1, true); err != nil {
		t.Fatal(err)
	}
	if err := s.Deduct(ctx, "user-1"); err != nil {
		t.Fatalf("Deduct: %v", err)
	}
	credits, _, err := s.GetUser(ctx, "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if credits != 0 {
		t.Errorf("credits = %d, want 0", credits)
	}

	// Balance never goes negative.
	if err := s.Deduct(ctx, "user-1"); !errors.Is(err, pipeline.ErrNoCredits) {
		t.Errorf("error = %v, want ErrNoCredits", err)
	}
}

func TestRenderWritesArtifact(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	record := testRecord()
	if err := s.SaveBrief(ctx, record); err != nil {
		t.Fatal(err)
	}
	path, err := s.Render(record)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading artifact: %v", err)
	}
	content := string(data)
	for _, want := range []string{
		"# Content Brief: postgres scaling",
		"Scaling Postgres Past 10k Connections",
		"## Connection Pooling Under Load",
		"https://a.com/blog/one",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("artifact missing %q", want)
		}
	}
}

func TestWriteYAML(t *testing.T) {
	record := testRecord()
	record.ID = "rec-1"
	record.CreatedAt = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	if err := WriteYAML(&buf, record); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"id: rec-1", "topic: postgres scaling", "h1: Scaling Postgres Past 10k Connections"} {
		if !strings.Contains(out, want) {
			t.Errorf("yaml missing %q:\n%s", want, out)
		}
	}
}
