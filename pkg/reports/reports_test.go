package reports

import (
	"testing"

	worklog_api "worklog/worklog-api"
	"worklog/worklog-api/pkg/store"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	return NewRepository(store.NewMemStore())
}

func addReport(t *testing.T, repo *Repository, username string, minutes int, module string) {
	t.Helper()
	if err := repo.Add(username, minutes, "2026-01-10", module, "worked on "+module); err != nil {
		t.Fatalf("add report: %v", err)
	}
}

func TestAdd_AssignsIDAndAppends(t *testing.T) {
	repo := newTestRepo(t)
	addReport(t, repo, "alice", 30, "api")
	addReport(t, repo, "alice", 10, "docs")

	owned := repo.ForUser("alice")
	if len(owned) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(owned))
	}
	if owned[0].Module != "api" || owned[1].Module != "docs" {
		t.Fatalf("storage order not preserved: %+v", owned)
	}
	if owned[0].ID == "" || owned[1].ID == "" || owned[0].ID == owned[1].ID {
		t.Fatalf("expected distinct non-empty IDs: %+v", owned)
	}
}

func TestForUser_FiltersByOwner(t *testing.T) {
	repo := newTestRepo(t)
	addReport(t, repo, "alice", 30, "api")
	addReport(t, repo, "bob", 45, "frontend")
	addReport(t, repo, "alice", 15, "docs")

	if got := len(repo.ForUser("alice")); got != 2 {
		t.Fatalf("alice should own 2 reports, got %d", got)
	}
	if got := len(repo.ForUser("bob")); got != 1 {
		t.Fatalf("bob should own 1 report, got %d", got)
	}
	if got := len(repo.ForUser("Alice")); got != 0 {
		t.Fatalf("owner match must be case-sensitive, got %d", got)
	}
}

func TestSummarize(t *testing.T) {
	repo := newTestRepo(t)
	addReport(t, repo, "alice", 30, "A")
	addReport(t, repo, "alice", 10, "A")
	addReport(t, repo, "alice", 60, "B")
	addReport(t, repo, "bob", 999, "C")

	sum := repo.Summarize("alice")
	if sum.TotalMinutes != 100 {
		t.Fatalf("total = %d, want 100", sum.TotalMinutes)
	}
	want := []worklog_api.ModuleSummary{
		{Module: "B", Minutes: 60, Percent: 60.0},
		{Module: "A", Minutes: 40, Percent: 40.0},
	}
	if len(sum.ByModule) != len(want) {
		t.Fatalf("by_module length = %d, want %d", len(sum.ByModule), len(want))
	}
	for i := range want {
		if sum.ByModule[i] != want[i] {
			t.Fatalf("by_module[%d] = %+v, want %+v", i, sum.ByModule[i], want[i])
		}
	}
}

func TestSummarize_NoReports(t *testing.T) {
	repo := newTestRepo(t)
	sum := repo.Summarize("alice")
	if sum.TotalMinutes != 0 {
		t.Fatalf("total = %d, want 0", sum.TotalMinutes)
	}
	if sum.ByModule == nil || len(sum.ByModule) != 0 {
		t.Fatalf("by_module should be an empty list, got %#v", sum.ByModule)
	}
}

func TestSummarize_EmptyModuleBecomesUnknown(t *testing.T) {
	repo := newTestRepo(t)
	addReport(t, repo, "alice", 20, "")
	addReport(t, repo, "alice", 20, "api")

	sum := repo.Summarize("alice")
	found := false
	for _, m := range sum.ByModule {
		if m.Module == "unknown" && m.Minutes == 20 {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing unknown bucket: %+v", sum.ByModule)
	}
}

func TestSummarize_TiesKeepFirstEncounteredOrder(t *testing.T) {
	repo := newTestRepo(t)
	addReport(t, repo, "alice", 30, "first")
	addReport(t, repo, "alice", 30, "second")

	sum := repo.Summarize("alice")
	if sum.ByModule[0].Module != "first" || sum.ByModule[1].Module != "second" {
		t.Fatalf("tie order not stable: %+v", sum.ByModule)
	}
}

func TestSummarize_PercentRounding(t *testing.T) {
	repo := newTestRepo(t)
	addReport(t, repo, "alice", 1, "a")
	addReport(t, repo, "alice", 2, "b")

	sum := repo.Summarize("alice")
	if sum.ByModule[0].Percent != 66.67 {
		t.Fatalf("percent = %v, want 66.67", sum.ByModule[0].Percent)
	}
	if sum.ByModule[1].Percent != 33.33 {
		t.Fatalf("percent = %v, want 33.33", sum.ByModule[1].Percent)
	}
}

func TestOverwriteForUser(t *testing.T) {
	repo := newTestRepo(t)
	addReport(t, repo, "alice", 30, "api")
	addReport(t, repo, "alice", 10, "docs")
	addReport(t, repo, "bob", 45, "frontend")

	incoming := []worklog_api.Report{
		{Username: "mallory", Minutes: 5, Date: "2026-02-01", Module: "new"},
	}
	if err := repo.OverwriteForUser("alice", incoming); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	owned := repo.ForUser("alice")
	if len(owned) != 1 {
		t.Fatalf("expected prior reports fully replaced, got %+v", owned)
	}
	if owned[0].Username != "alice" || owned[0].Module != "new" {
		t.Fatalf("owner not forced onto new record: %+v", owned[0])
	}
	if owned[0].ID == "" {
		t.Fatal("new record should get an ID")
	}

	other := repo.ForUser("bob")
	if len(other) != 1 || other[0].Module != "frontend" {
		t.Fatalf("other owners must stay untouched: %+v", other)
	}
}

func TestOverwriteForUser_EmptyClearsOwnReports(t *testing.T) {
	repo := newTestRepo(t)
	addReport(t, repo, "alice", 30, "api")
	addReport(t, repo, "bob", 45, "frontend")

	if err := repo.OverwriteForUser("alice", nil); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if got := len(repo.ForUser("alice")); got != 0 {
		t.Fatalf("alice should have no reports left, got %d", got)
	}
	if got := len(repo.ForUser("bob")); got != 1 {
		t.Fatalf("bob's reports must survive, got %d", got)
	}
}

func TestDelete(t *testing.T) {
	repo := newTestRepo(t)
	addReport(t, repo, "alice", 30, "api")
	addReport(t, repo, "alice", 10, "docs")
	addReport(t, repo, "bob", 45, "frontend")

	target := repo.ForUser("alice")[0]
	if !repo.Delete("alice", target.ID) {
		t.Fatal("delete of owned report failed")
	}
	owned := repo.ForUser("alice")
	if len(owned) != 1 || owned[0].Module != "docs" {
		t.Fatalf("wrong report removed: %+v", owned)
	}

	// a report can only be deleted by its owner
	bobs := repo.ForUser("bob")[0]
	if repo.Delete("alice", bobs.ID) {
		t.Fatal("deleting another owner's report must fail")
	}
	if repo.Delete("alice", "no-such-id") {
		t.Fatal("deleting an unknown ID must fail")
	}
	if got := len(repo.ForUser("bob")); got != 1 {
		t.Fatalf("bob's reports must survive, got %d", got)
	}
}

func TestRepository_CorruptCollectionReadsAsEmpty(t *testing.T) {
	ms := store.NewMemStore()
	if err := ms.Write(Collection, []byte(`not a list`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	repo := NewRepository(ms)
	if got := repo.ForUser("alice"); len(got) != 0 {
		t.Fatalf("expected empty collection, got %+v", got)
	}
}
