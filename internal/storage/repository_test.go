package storage

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"givetrack/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "users.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.db")

	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if _, err := repo.CreateAccount(context.Background(), core.NewSignup("ana", "a@x.com", "p")); err != nil {
		t.Fatalf("create account: %v", err)
	}
	repo.Close()

	repo, err = NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer repo.Close()

	got, err := repo.FindAccountByEmail(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("account lost after reopen: %v", err)
	}
	if got.ID != 1 || got.Username != "ana" {
		t.Fatalf("unexpected account %+v", got)
	}
}

func TestCreateAccount(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first, err := repo.CreateAccount(ctx, core.NewSignup("ana", "a@x.com", "p"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.ID != 1 {
		t.Fatalf("expected id 1, got %d", first.ID)
	}

	_, err = repo.CreateAccount(ctx, core.NewSignup("other", "a@x.com", "q"))
	if !errors.Is(err, core.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	stored, err := repo.GetAccount(ctx, first.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored != first {
		t.Fatalf("original account changed: %+v vs %+v", stored, first)
	}

	second, err := repo.CreateAccount(ctx, core.NewSignup("bo", "b@x.com", "p"))
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if second.ID != 2 {
		t.Fatalf("expected id 2, got %d", second.ID)
	}
}

func TestCreateAccountMissingField(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	email, name, pw := "a@x.com", "ana", "p"

	tests := []struct {
		name   string
		signup core.Signup
	}{
		{"no email", core.Signup{Username: &name, Password: &pw}},
		{"no username", core.Signup{Email: &email, Password: &pw}},
		{"no password", core.Signup{Username: &name, Email: &email}},
		{"empty", core.Signup{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := repo.CreateAccount(ctx, tt.signup); !errors.Is(err, core.ErrMissingField) {
				t.Fatalf("expected ErrMissingField, got %v", err)
			}
		})
	}

	// Empty strings are present values and are stored as given.
	acct, err := repo.CreateAccount(ctx, core.NewSignup("", "", ""))
	if err != nil {
		t.Fatalf("create with empty strings: %v", err)
	}
	if acct.Email != "" || acct.Username != "" {
		t.Fatalf("unexpected account %+v", acct)
	}
}

func TestAccountLookupsNotFound(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.GetAccount(ctx, 42); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("GetAccount: expected ErrNotFound, got %v", err)
	}
	if _, err := repo.FindAccountByEmail(ctx, "nobody@x.com"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("FindAccountByEmail: expected ErrNotFound, got %v", err)
	}
}

func TestEmailLookupIsCaseSensitive(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.CreateAccount(ctx, core.NewSignup("ana", "a@x.com", "p")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.FindAccountByEmail(ctx, "A@x.com"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected case-sensitive miss, got %v", err)
	}
}

func TestSums(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	total, err := repo.SumDonations(ctx, 1)
	if err != nil || total != 0 {
		t.Fatalf("empty donations: total=%v err=%v", total, err)
	}
	hours, err := repo.SumVolunteerHours(ctx, 1)
	if err != nil || hours != 0 {
		t.Fatalf("empty hours: total=%v err=%v", hours, err)
	}

	for _, amount := range []float64{10, 2.5, -1} {
		if _, err := repo.InsertDonation(ctx, 1, amount, "2025-01-01T00:00:00.000Z"); err != nil {
			t.Fatalf("insert donation: %v", err)
		}
	}
	// Another account's rows must not leak into the total.
	if _, err := repo.InsertDonation(ctx, 2, 1000, "2025-01-01T00:00:00.000Z"); err != nil {
		t.Fatalf("insert donation: %v", err)
	}
	for _, h := range []float64{3, 1.5} {
		if _, err := repo.InsertVolunteerLog(ctx, 1, h, "2025-01-01T00:00:00.000Z"); err != nil {
			t.Fatalf("insert hours: %v", err)
		}
	}

	if total, _ := repo.SumDonations(ctx, 1); total != 11.5 {
		t.Fatalf("expected 11.5, got %v", total)
	}
	if hours, _ := repo.SumVolunteerHours(ctx, 1); hours != 4.5 {
		t.Fatalf("expected 4.5, got %v", hours)
	}
}

func TestInsertsAcceptDanglingAccount(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	d, err := repo.InsertDonation(ctx, 99, 25, "2025-01-01T00:00:00.000Z")
	if err != nil {
		t.Fatalf("insert donation: %v", err)
	}
	want := core.Donation{ID: 1, AccountID: 99, Amount: 25, Date: "2025-01-01T00:00:00.000Z"}
	if d != want {
		t.Fatalf("got %+v, want %+v", d, want)
	}

	v, err := repo.InsertVolunteerLog(ctx, 99, 2, "2025-01-01T00:00:00.000Z")
	if err != nil || v.ID != 1 || v.Hours != 2 {
		t.Fatalf("insert hours: %+v %v", v, err)
	}

	c, err := repo.InsertCausePledge(ctx, 99, "Water")
	if err != nil || c.ID != 1 || c.CauseName != "Water" {
		t.Fatalf("insert cause: %+v %v", c, err)
	}
}

func TestListCauses(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	causes, err := repo.ListCauses(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if causes == nil || len(causes) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", causes)
	}

	for _, name := range []string{"Water", "Education", "Water"} {
		if _, err := repo.InsertCausePledge(ctx, 1, name); err != nil {
			t.Fatalf("pledge: %v", err)
		}
	}

	causes, err = repo.ListCauses(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"Water", "Education", "Water"}
	if !reflect.DeepEqual(causes, want) {
		t.Fatalf("got %v, want %v", causes, want)
	}
}

func TestClosedRepositoryReturnsStorageError(t *testing.T) {
	repo := newTestRepo(t)
	repo.Close()

	_, err := repo.InsertDonation(context.Background(), 1, 5, "2025-01-01T00:00:00.000Z")
	if !core.IsStorageError(err) {
		t.Fatalf("expected StorageError, got %v", err)
	}
	if _, err := repo.GetAccount(context.Background(), 1); !core.IsStorageError(err) {
		t.Fatalf("expected StorageError, got %v", err)
	}
}
