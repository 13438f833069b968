package pg

import (
	"context"
	"database/sql"
	"errors"

	"societyhub.org/internal/society"
)

type guests struct {
	db *sql.DB
}

const guestQuery = `
	select g.id, g.name, g.email, g.phone_number, g.gender, g.age, g.purpose, g.visiting_house,
	       g.added_by, hu.id, hu.name, hu.email, hu.house_number, hu.role,
	       g.status, g.approved_by, du.id, du.name, du.email, du.house_number, du.role,
	       g.approval_date, g.rejection_reason, g.valid_from, g.valid_until, g.created_at
	from guests g
	left join users hu on hu.id = g.added_by
	left join users du on du.id = g.approved_by`

func scanGuest(row interface{ Scan(...any) error }) (*society.Guest, error) {
	var g society.Guest
	var addedBy string
	var approvedBy sql.NullString
	var approvalDate sql.NullTime
	var host, decider refCols
	dest := []any{&g.ID, &g.Name, &g.Email, &g.PhoneNumber, &g.Gender, &g.Age, &g.Purpose, &g.VisitingHouse, &addedBy}
	dest = append(dest, host.dest()...)
	dest = append(dest, &g.Status, &approvedBy)
	dest = append(dest, decider.dest()...)
	dest = append(dest, &approvalDate, &g.RejectionReason, &g.ValidFrom, &g.ValidUntil, &g.CreatedAt)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	g.AddedBy = host.mustRef(addedBy)
	g.ApprovedBy = decider.ref(approvedBy)
	g.ApprovalDate = timePtr(approvalDate)
	return &g, nil
}

func (s guests) Create(ctx context.Context, g *society.Guest) error {
	_, err := s.db.ExecContext(ctx, `
		insert into guests(id, name, email, phone_number, gender, age, purpose, visiting_house, added_by, status, valid_from, valid_until, created_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`, g.ID, g.Name, g.Email, g.PhoneNumber, g.Gender, g.Age, g.Purpose, g.VisitingHouse,
		g.AddedBy.ID, g.Status, g.ValidFrom, g.ValidUntil, g.CreatedAt)
	if err != nil {
		return err
	}
	populated, err := s.Find(ctx, g.ID)
	if err != nil {
		return err
	}
	*g = *populated
	return nil
}

func (s guests) Find(ctx context.Context, id string) (*society.Guest, error) {
	g, err := scanGuest(s.db.QueryRowContext(ctx, guestQuery+` where g.id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, society.ErrNotFound
	}
	return g, err
}

func (s guests) List(ctx context.Context, f society.ListFilter) ([]*society.Guest, error) {
	status := f.Status
	if f.PendingOnly {
		status = "pending"
	}
	rows, err := s.db.QueryContext(ctx, guestQuery+`
		where ($1 = '' or g.added_by = $1)
		  and ($2 = '' or g.status = $2)
		order by g.created_at desc
	`, f.OwnerID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*society.Guest{}
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s guests) Decide(ctx context.Context, id string, d society.GuestDecision) (*society.Guest, error) {
	res, err := s.db.ExecContext(ctx, `
		update guests set
			status           = $2,
			approved_by      = $3,
			approval_date    = $4,
			rejection_reason = $5
		where id=$1
	`, id, d.Status, d.DecidedBy, d.DecidedAt, d.RejectionReason)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, society.ErrNotFound
	}
	return s.Find(ctx, id)
}

func (s guests) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from guests where id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return society.ErrNotFound
	}
	return nil
}
