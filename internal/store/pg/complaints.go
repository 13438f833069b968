package pg

import (
	"context"
	"database/sql"
	"errors"

	"societyhub.org/internal/society"
)

type complaints struct {
	db *sql.DB
}

// complaintQuery joins the reporter and assignee so every read comes back
// populated.
const complaintQuery = `
	select c.id, c.title, c.description, c.house_number, c.category, c.priority, c.status, c.photo,
	       c.reported_by, ru.id, ru.name, ru.email, ru.house_number, ru.role,
	       c.assigned_to, au.id, au.name, au.email, au.house_number, au.role,
	       c.created_at, c.updated_at
	from complaints c
	left join users ru on ru.id = c.reported_by
	left join users au on au.id = c.assigned_to`

func scanComplaint(row interface{ Scan(...any) error }) (*society.Complaint, error) {
	var c society.Complaint
	var reportedBy string
	var assignedTo sql.NullString
	var reporter, assignee refCols
	dest := []any{&c.ID, &c.Title, &c.Description, &c.HouseNumber, &c.Category, &c.Priority, &c.Status, &c.Photo, &reportedBy}
	dest = append(dest, reporter.dest()...)
	dest = append(dest, &assignedTo)
	dest = append(dest, assignee.dest()...)
	dest = append(dest, &c.CreatedAt, &c.UpdatedAt)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	c.ReportedBy = reporter.mustRef(reportedBy)
	c.AssignedTo = assignee.ref(assignedTo)
	c.Comments = []society.Comment{}
	return &c, nil
}

func (s complaints) loadComments(ctx context.Context, c *society.Complaint) error {
	rows, err := s.db.QueryContext(ctx, `
		select cc.user_id, cu.id, cu.name, cu.email, cu.house_number, cu.role, cc.body, cc.created_at
		from complaint_comments cc
		left join users cu on cu.id = cc.user_id
		where cc.complaint_id = $1
		order by cc.created_at asc, cc.seq asc
	`, c.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var userID string
		var user refCols
		var cm society.Comment
		dest := []any{&userID}
		dest = append(dest, user.dest()...)
		dest = append(dest, &cm.Text, &cm.CreatedAt)
		if err := rows.Scan(dest...); err != nil {
			return err
		}
		cm.User = user.mustRef(userID)
		c.Comments = append(c.Comments, cm)
	}
	return rows.Err()
}

func (s complaints) Create(ctx context.Context, c *society.Complaint) error {
	_, err := s.db.ExecContext(ctx, `
		insert into complaints(id, title, description, house_number, category, priority, status, photo, reported_by, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, c.ID, c.Title, c.Description, c.HouseNumber, c.Category, c.Priority, c.Status, c.Photo,
		c.ReportedBy.ID, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return err
	}
	populated, err := s.Find(ctx, c.ID)
	if err != nil {
		return err
	}
	*c = *populated
	return nil
}

func (s complaints) Find(ctx context.Context, id string) (*society.Complaint, error) {
	c, err := scanComplaint(s.db.QueryRowContext(ctx, complaintQuery+` where c.id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, society.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadComments(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s complaints) List(ctx context.Context, f society.ListFilter) ([]*society.Complaint, error) {
	rows, err := s.db.QueryContext(ctx, complaintQuery+`
		where ($1 = '' or c.reported_by = $1)
		  and ($2 = '' or c.status = $2)
		order by c.created_at desc
	`, f.OwnerID, f.Status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*society.Complaint{}
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, c := range out {
		if err := s.loadComments(ctx, c); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s complaints) UpdateStatus(ctx context.Context, id string, upd society.ComplaintStatusUpdate) (*society.Complaint, error) {
	var assigned any
	if upd.AssignedTo != nil {
		assigned = nullStr(*upd.AssignedTo)
	}
	res, err := s.db.ExecContext(ctx, `
		update complaints set
			status      = $2,
			assigned_to = case when $3::boolean then nullif($4::text, '') else assigned_to end,
			updated_at  = now()
		where id=$1
	`, id, upd.Status, upd.AssignedTo != nil, assigned)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, society.ErrNotFound
	}
	return s.Find(ctx, id)
}

func (s complaints) AppendComment(ctx context.Context, id string, comment society.Comment) (*society.Complaint, error) {
	res, err := s.db.ExecContext(ctx, `
		insert into complaint_comments(complaint_id, user_id, body, created_at)
		select id, $2, $3, $4 from complaints where id=$1
	`, id, comment.User.ID, comment.Text, comment.CreatedAt)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, society.ErrNotFound
	}
	if _, err := s.db.ExecContext(ctx, `update complaints set updated_at=now() where id=$1`, id); err != nil {
		return nil, err
	}
	return s.Find(ctx, id)
}

func (s complaints) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from complaints where id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return society.ErrNotFound
	}
	return nil
}
