package patient

import (
	"context"
	"errors"
	"testing"

	"github.com/ehr/patientsvc/internal/platform/sqlitedb"
	"github.com/ehr/patientsvc/internal/platform/store"
)

func repoBackends(t *testing.T) map[string]func() Repository {
	return map[string]func() Repository{
		"memory": NewMemoryRepo,
		"sqlite": func() Repository {
			db, err := sqlitedb.Open(context.Background(), sqlitedb.MemoryPath)
			if err != nil {
				t.Fatalf("open sqlite: %v", err)
			}
			t.Cleanup(func() { _ = db.Close() })
			return NewSQLiteRepo(db)
		},
	}
}

func TestRepository_Contract(t *testing.T) {
	for name, newRepo := range repoBackends(t) {
		t.Run(name, func(t *testing.T) {
			repo := newRepo()
			ctx := context.Background()

			first, err := repo.Save(ctx, validPatient("one@email.com"))
			if err != nil {
				t.Fatalf("save: %v", err)
			}
			second, err := repo.Save(ctx, validPatient("two@email.com"))
			if err != nil {
				t.Fatalf("save: %v", err)
			}
			if first.ID == 0 || second.ID <= first.ID {
				t.Fatalf("expected increasing ids, got %d then %d", first.ID, second.ID)
			}

			got, err := repo.FindByID(ctx, first.ID)
			if err != nil {
				t.Fatalf("find: %v", err)
			}
			if got.Email != "one@email.com" || got.Height == nil || *got.Height != 111 {
				t.Errorf("unexpected row: %+v", got)
			}

			if _, err := repo.FindByID(ctx, 999); !errors.Is(err, store.ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}

			all, err := repo.FindAll(ctx)
			if err != nil || len(all) != 2 {
				t.Fatalf("expected 2 rows, got %d (%v)", len(all), err)
			}
			if all[0].ID != first.ID {
				t.Errorf("expected ascending id order")
			}

			matched, err := repo.FindByExample(ctx, Example{Email: strPtr("two@email.com"), State: strPtr("IL")})
			if err != nil || len(matched) != 1 || matched[0].ID != second.ID {
				t.Errorf("expected example to match second row, got %+v (%v)", matched, err)
			}
			none, _ := repo.FindByExample(ctx, Example{Age: intPtr(12)})
			if len(none) != 0 {
				t.Errorf("expected no match for age 12, got %d", len(none))
			}

			if ok, _ := repo.ExistsByEmail(ctx, "one@email.com"); !ok {
				t.Error("expected email to exist")
			}
			if ok, _ := repo.ExistsByEmail(ctx, "nobody@email.com"); ok {
				t.Error("did not expect unknown email to exist")
			}
			if ok, _ := repo.ExistsByID(ctx, second.ID); !ok {
				t.Error("expected id to exist")
			}

			first.City = "Springfield"
			if _, err := repo.Save(ctx, first); err != nil {
				t.Fatalf("replace: %v", err)
			}
			got, _ = repo.FindByID(ctx, first.ID)
			if got.City != "Springfield" {
				t.Errorf("expected replaced city, got %s", got.City)
			}

			explicit := validPatient("explicit@email.com")
			explicit.ID = 50
			if _, err := repo.Save(ctx, explicit); err != nil {
				t.Fatalf("save explicit id: %v", err)
			}
			next, err := repo.Save(ctx, validPatient("next@email.com"))
			if err != nil {
				t.Fatalf("save after explicit id: %v", err)
			}
			if next.ID <= 50 {
				t.Errorf("expected generated id past 50, got %d", next.ID)
			}

			if err := repo.DeleteByID(ctx, second.ID); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if err := repo.DeleteByID(ctx, second.ID); !errors.Is(err, store.ErrNotFound) {
				t.Errorf("expected ErrNotFound on second delete, got %v", err)
			}
		})
	}
}

func TestSQLiteRepo_UniqueEmail(t *testing.T) {
	repo := repoBackends(t)["sqlite"]()
	ctx := context.Background()

	if _, err := repo.Save(ctx, validPatient("same@email.com")); err != nil {
		t.Fatalf("save: %v", err)
	}
	_, err := repo.Save(ctx, validPatient("same@email.com"))
	if !errors.Is(err, store.ErrDuplicateValue) {
		t.Errorf("expected ErrDuplicateValue, got %v", err)
	}
}

func TestMemoryRepo_ReturnsCopies(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()

	saved, _ := repo.Save(ctx, validPatient("copy@email.com"))
	*saved.Age = 99
	saved.City = "Elsewhere"

	got, _ := repo.FindByID(ctx, saved.ID)
	if *got.Age != 11 || got.City != "Marksville" {
		t.Errorf("stored row was aliased: %+v", got)
	}
}
