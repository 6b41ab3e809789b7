package encounter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ehr/patientsvc/internal/platform/sqlitedb"
	"github.com/ehr/patientsvc/internal/platform/store"
)

type repoSQLite struct {
	db *sqlitedb.DB
}

func NewSQLiteRepo(db *sqlitedb.DB) Repository {
	return &repoSQLite{db: db}
}

func scanSQLite(row rowScanner) (*Encounter, error) {
	var (
		e    Encounter
		date string
	)
	if err := row.Scan(append(scanFields(&e), &date)...); err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339Nano, date)
	if err != nil {
		return nil, fmt.Errorf("parse encounter %d date: %w", e.ID, err)
	}
	e.Date = storedDate(t)
	return &e, nil
}

func (r *repoSQLite) FindByID(ctx context.Context, id int64) (*Encounter, error) {
	e, err := scanSQLite(r.db.Conn(ctx).QueryRowContext(ctx, `SELECT `+encCols+` FROM encounter WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return e, err
}

func (r *repoSQLite) FindByPatientID(ctx context.Context, patientID int64) ([]*Encounter, error) {
	q := store.NewExampleQuery("encounter", encCols, store.Question)
	byPatient(q, patientID)

	rows, err := r.db.Conn(ctx).QueryContext(ctx, q.SQL(), q.Args()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	encs := []*Encounter{}
	for rows.Next() {
		e, err := scanSQLite(rows)
		if err != nil {
			return nil, err
		}
		encs = append(encs, e)
	}
	return encs, rows.Err()
}

func (r *repoSQLite) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.Conn(ctx).QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM encounter WHERE id = ?)`, id).Scan(&exists)
	return exists, err
}

func (r *repoSQLite) Save(ctx context.Context, enc *Encounter) (*Encounter, error) {
	saved := enc.Clone()
	saved.Date = storedDate(saved.Date)
	args := append(valueArgs(saved), saved.Date.Format(time.RFC3339Nano))

	var err error
	if saved.ID == 0 {
		var res sql.Result
		res, err = r.db.Conn(ctx).ExecContext(ctx, `
			INSERT INTO encounter (
				patient_id, notes, visit_code, provider, billing_code, icd10,
				total_cost, copay, chief_complaint, pulse, systolic, diastolic, date
			) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`, args...)
		if err == nil {
			saved.ID, err = res.LastInsertId()
		}
	} else {
		_, err = r.db.Conn(ctx).ExecContext(ctx, `
			INSERT INTO encounter (
				patient_id, notes, visit_code, provider, billing_code, icd10,
				total_cost, copay, chief_complaint, pulse, systolic, diastolic, date, id
			) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)
			ON CONFLICT (id) DO UPDATE SET
				patient_id=excluded.patient_id, notes=excluded.notes,
				visit_code=excluded.visit_code, provider=excluded.provider,
				billing_code=excluded.billing_code, icd10=excluded.icd10,
				total_cost=excluded.total_cost, copay=excluded.copay,
				chief_complaint=excluded.chief_complaint, pulse=excluded.pulse,
				systolic=excluded.systolic, diastolic=excluded.diastolic, date=excluded.date`,
			append(args, saved.ID)...)
	}
	if err != nil {
		return nil, fmt.Errorf("save encounter: %w", err)
	}
	return saved, nil
}

func (r *repoSQLite) DeleteByID(ctx context.Context, id int64) error {
	res, err := r.db.Conn(ctx).ExecContext(ctx, `DELETE FROM encounter WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
