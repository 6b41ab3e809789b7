package encounter

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ehr/patientsvc/internal/platform/db"
	"github.com/ehr/patientsvc/internal/platform/store"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const encCols = `id, patient_id, notes, visit_code, provider, billing_code, icd10,
	total_cost, copay, chief_complaint, pulse, systolic, diastolic, date`

func (r *repoPG) FindByID(ctx context.Context, id int64) (*Encounter, error) {
	var e Encounter
	err := r.conn(ctx).QueryRow(ctx, `SELECT `+encCols+` FROM encounter WHERE id = $1`, id).
		Scan(append(scanFields(&e), &e.Date)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	e.Date = storedDate(e.Date)
	return &e, nil
}

func (r *repoPG) FindByPatientID(ctx context.Context, patientID int64) ([]*Encounter, error) {
	q := store.NewExampleQuery("encounter", encCols, store.Dollar)
	byPatient(q, patientID)

	rows, err := r.conn(ctx).Query(ctx, q.SQL(), q.Args()...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	encs := []*Encounter{}
	for rows.Next() {
		var e Encounter
		if err := rows.Scan(append(scanFields(&e), &e.Date)...); err != nil {
			return nil, err
		}
		e.Date = storedDate(e.Date)
		encs = append(encs, &e)
	}
	return encs, rows.Err()
}

func (r *repoPG) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM encounter WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (r *repoPG) Save(ctx context.Context, enc *Encounter) (*Encounter, error) {
	saved := enc.Clone()
	saved.Date = storedDate(saved.Date)
	args := append(valueArgs(saved), saved.Date)

	var err error
	if saved.ID == 0 {
		err = r.conn(ctx).QueryRow(ctx, `
			INSERT INTO encounter (
				patient_id, notes, visit_code, provider, billing_code, icd10,
				total_cost, copay, chief_complaint, pulse, systolic, diastolic, date
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
			RETURNING id`, args...).Scan(&saved.ID)
	} else {
		_, err = r.conn(ctx).Exec(ctx, `
			INSERT INTO encounter (
				id, patient_id, notes, visit_code, provider, billing_code, icd10,
				total_cost, copay, chief_complaint, pulse, systolic, diastolic, date
			) VALUES ($14,$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
			ON CONFLICT (id) DO UPDATE SET
				patient_id=$1, notes=$2, visit_code=$3, provider=$4, billing_code=$5,
				icd10=$6, total_cost=$7, copay=$8, chief_complaint=$9, pulse=$10,
				systolic=$11, diastolic=$12, date=$13`,
			append(args, saved.ID)...)
		if err == nil {
			err = db.SyncSequence(ctx, r.conn(ctx), "encounter")
		}
	}
	if err != nil {
		return nil, fmt.Errorf("save encounter: %w", err)
	}
	return saved, nil
}

func (r *repoPG) DeleteByID(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM encounter WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// scanFields lists the scan destinations for encCols up to, not including,
// the date column, whose storage differs per backend.
func scanFields(e *Encounter) []interface{} {
	return []interface{}{
		&e.ID, &e.PatientID, &e.Notes, &e.VisitCode, &e.Provider, &e.BillingCode, &e.ICD10,
		&e.TotalCost, &e.Copay, &e.ChiefComplaint, &e.Pulse, &e.Systolic, &e.Diastolic,
	}
}

// valueArgs lists insert values in column order, without id and date.
func valueArgs(e *Encounter) []interface{} {
	return []interface{}{
		e.PatientID, e.Notes, e.VisitCode, e.Provider, e.BillingCode, e.ICD10,
		e.TotalCost, e.Copay, e.ChiefComplaint, e.Pulse, e.Systolic, e.Diastolic,
	}
}
