package encounter

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/ehr/patientsvc/internal/platform/sqlitedb"
	"github.com/ehr/patientsvc/internal/platform/store"
)

var backends = map[string]func(t *testing.T) Repository{
	"memory": func(*testing.T) Repository { return NewMemoryRepo() },
	"sqlite": func(t *testing.T) Repository {
		db, err := sqlitedb.Open(context.Background(), sqlitedb.MemoryPath)
		if err != nil {
			t.Fatalf("open sqlite: %v", err)
		}
		t.Cleanup(func() { _ = db.Close() })
		return NewSQLiteRepo(db)
	},
}

func TestRepository_Contract(t *testing.T) {
	for name, newRepo := range backends {
		t.Run(name, func(t *testing.T) {
			repo := newRepo(t)
			ctx := context.Background()

			first, err := repo.Save(ctx, validEncounter(1))
			if err != nil {
				t.Fatalf("save: %v", err)
			}
			withoutVitals := validEncounter(1)
			withoutVitals.Pulse, withoutVitals.Notes = nil, ""
			second, err := repo.Save(ctx, withoutVitals)
			if err != nil {
				t.Fatalf("save: %v", err)
			}
			if _, err := repo.Save(ctx, validEncounter(2)); err != nil {
				t.Fatalf("save: %v", err)
			}

			got, err := repo.FindByID(ctx, first.ID)
			if err != nil {
				t.Fatalf("find: %v", err)
			}
			if !got.Date.Equal(first.Date) || got.Pulse == nil || *got.Pulse != 100 {
				t.Errorf("unexpected row: %+v", got)
			}
			got, _ = repo.FindByID(ctx, second.ID)
			if got.Pulse != nil {
				t.Errorf("expected absent pulse to stay absent, got %d", *got.Pulse)
			}

			if _, err := repo.FindByID(ctx, 999); !errors.Is(err, store.ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}

			list, err := repo.FindByPatientID(ctx, 1)
			if err != nil || len(list) != 2 {
				t.Fatalf("expected 2 encounters for patient 1, got %d (%v)", len(list), err)
			}
			if list[0].ID != first.ID || list[1].ID != second.ID {
				t.Errorf("expected ascending id order")
			}

			first.ICD10 = "I10"
			if _, err := repo.Save(ctx, first); err != nil {
				t.Fatalf("replace: %v", err)
			}
			got, _ = repo.FindByID(ctx, first.ID)
			if got.ICD10 != "I10" {
				t.Errorf("expected replaced icd10, got %s", got.ICD10)
			}

			if ok, _ := repo.ExistsByID(ctx, first.ID); !ok {
				t.Error("expected encounter to exist")
			}
			if err := repo.DeleteByID(ctx, first.ID); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if ok, _ := repo.ExistsByID(ctx, first.ID); ok {
				t.Error("expected encounter to be gone")
			}
			if err := repo.DeleteByID(ctx, first.ID); !errors.Is(err, store.ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestRepository_DateRoundTrip(t *testing.T) {
	chicago := time.FixedZone("CST", -6*60*60)
	for name, newRepo := range backends {
		t.Run(name, func(t *testing.T) {
			repo := newRepo(t)
			ctx := context.Background()

			enc := validEncounter(1)
			enc.Date = time.Date(2024, 3, 1, 9, 30, 0, 123456789, chicago)
			saved, err := repo.Save(ctx, enc)
			if err != nil {
				t.Fatalf("save: %v", err)
			}
			want := time.Date(2024, 3, 1, 15, 30, 0, 123456000, time.UTC)
			if !saved.Date.Equal(want) || saved.Date.Location() != time.UTC {
				t.Errorf("expected saved date %v, got %v", want, saved.Date)
			}

			got, err := repo.FindByID(ctx, saved.ID)
			if err != nil {
				t.Fatalf("find: %v", err)
			}
			if !reflect.DeepEqual(got, saved) {
				t.Errorf("saved and found records differ:\n saved %+v\n found %+v", saved, got)
			}

			list, _ := repo.FindByPatientID(ctx, 1)
			if len(list) != 1 || !reflect.DeepEqual(list[0], saved) {
				t.Errorf("listed record differs from saved: %+v", list)
			}

			if enc.Date.Location() != chicago {
				t.Error("caller's record was modified")
			}
		})
	}
}
