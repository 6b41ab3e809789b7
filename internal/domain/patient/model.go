package patient

import "github.com/ehr/patientsvc/internal/platform/store"

// Patient maps to the patient table.
type Patient struct {
	ID        int64    `db:"id" json:"id"`
	FirstName string   `db:"first_name" json:"firstName" validate:"required"`
	LastName  string   `db:"last_name" json:"lastName" validate:"required"`
	SSN       string   `db:"ssn" json:"ssn" validate:"required,ssn"`
	Email     string   `db:"email" json:"email" validate:"required,looseemail"`
	City      string   `db:"city" json:"city" validate:"required"`
	Street    string   `db:"street" json:"street" validate:"required"`
	State     string   `db:"state" json:"state" validate:"required,usstate"`
	Postal    string   `db:"postal" json:"postal" validate:"required,postal"`
	Age       *int     `db:"age" json:"age" validate:"required,gte=0"`
	Height    *float64 `db:"height" json:"height" validate:"required,gte=0"`
	Weight    *float64 `db:"weight" json:"weight" validate:"required,gte=0"`
	Insurance string   `db:"insurance" json:"insurance" validate:"required"`
	Gender    string   `db:"gender" json:"gender" validate:"required"`
}

func (p *Patient) GetID() int64   { return p.ID }
func (p *Patient) SetID(id int64) { p.ID = id }

// Clone returns a deep copy.
func (p *Patient) Clone() *Patient {
	c := *p
	c.Age = clonePtr(p.Age)
	c.Height = clonePtr(p.Height)
	c.Weight = clonePtr(p.Weight)
	return &c
}

// Example is a query-by-example filter. Every field is optional and nil
// means "any value"; populated fields must match exactly.
type Example struct {
	ID        *int64
	FirstName *string
	LastName  *string
	SSN       *string
	Email     *string
	City      *string
	Street    *string
	State     *string
	Postal    *string
	Age       *int
	Height    *float64
	Weight    *float64
	Insurance *string
	Gender    *string
}

// IsEmpty reports whether no field is populated.
func (e Example) IsEmpty() bool {
	return e == Example{}
}

// Matches reports whether p satisfies every populated field of e.
func (e Example) Matches(p *Patient) bool {
	return store.Match(e.ID, p.ID) &&
		store.Match(e.FirstName, p.FirstName) &&
		store.Match(e.LastName, p.LastName) &&
		store.Match(e.SSN, p.SSN) &&
		store.Match(e.Email, p.Email) &&
		store.Match(e.City, p.City) &&
		store.Match(e.Street, p.Street) &&
		store.Match(e.State, p.State) &&
		store.Match(e.Postal, p.Postal) &&
		store.MatchPtr(e.Age, p.Age) &&
		store.MatchPtr(e.Height, p.Height) &&
		store.MatchPtr(e.Weight, p.Weight) &&
		store.Match(e.Insurance, p.Insurance) &&
		store.Match(e.Gender, p.Gender)
}

// apply adds one equality test per populated field.
func (e Example) apply(q *store.ExampleQuery) {
	store.EqIfSet(q, "id", e.ID)
	store.EqIfSet(q, "first_name", e.FirstName)
	store.EqIfSet(q, "last_name", e.LastName)
	store.EqIfSet(q, "ssn", e.SSN)
	store.EqIfSet(q, "email", e.Email)
	store.EqIfSet(q, "city", e.City)
	store.EqIfSet(q, "street", e.Street)
	store.EqIfSet(q, "state", e.State)
	store.EqIfSet(q, "postal", e.Postal)
	store.EqIfSet(q, "age", e.Age)
	store.EqIfSet(q, "height", e.Height)
	store.EqIfSet(q, "weight", e.Weight)
	store.EqIfSet(q, "insurance", e.Insurance)
	store.EqIfSet(q, "gender", e.Gender)
}

func clonePtr[V any](v *V) *V {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
