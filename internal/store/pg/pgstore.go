// Package pg is the Postgres implementation of the society store, speaking
// database/sql over the pgx stdlib driver.
package pg

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"societyhub.org/internal/identity"
	"societyhub.org/internal/society"
)

type Store struct {
	db *sql.DB
}

var _ society.Store = (*Store)(nil)

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	// Tuned pool defaults; adjust under load tests
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing handle; used by tests with sqlmock.
func NewWithDB(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Complaints() society.ComplaintStore { return complaints{s.db} }
func (s *Store) Guests() society.GuestStore         { return guests{s.db} }
func (s *Store) Notices() society.NoticeStore       { return notices{s.db} }
func (s *Store) Payments() society.PaymentStore     { return payments{s.db} }
func (s *Store) Properties() society.PropertyStore  { return properties{s.db} }
func (s *Store) Users() society.UserStore           { return users{s.db} }

// --- helpers ---

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// refCols scans the joined user columns behind an owner or assignee field.
// All columns are nullable: the referenced account may have been deleted, or
// the reference itself may be null.
type refCols struct {
	id, name, email, house, role sql.NullString
}

func (r *refCols) dest() []any {
	return []any{&r.id, &r.name, &r.email, &r.house, &r.role}
}

// ref returns nil when the reference column itself was null.
func (r *refCols) ref(rawID sql.NullString) *society.UserRef {
	if !rawID.Valid || rawID.String == "" {
		return nil
	}
	out := &society.UserRef{ID: rawID.String}
	if r.id.Valid {
		out.Name = r.name.String
		out.Email = r.email.String
		out.HouseNumber = r.house.String
		out.Role = identity.Role(r.role.String)
	}
	return out
}

func (r *refCols) mustRef(rawID string) society.UserRef {
	ref := r.ref(sql.NullString{String: rawID, Valid: rawID != ""})
	if ref == nil {
		return society.UserRef{ID: rawID}
	}
	return *ref
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func marshalStrings(v []string) []byte {
	if v == nil {
		v = []string{}
	}
	b, _ := json.Marshal(v)
	return b
}

func unmarshalStrings(b []byte) []string {
	out := []string{}
	if len(b) > 0 {
		_ = json.Unmarshal(b, &out)
	}
	return out
}
