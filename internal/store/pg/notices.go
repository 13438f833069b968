package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"societyhub.org/internal/society"
)

type notices struct {
	db *sql.DB
}

const noticeQuery = `
	select n.id, n.title, n.description, n.category, n.priority, n.is_pinned, n.is_active, n.valid_until,
	       n.posted_by, pu.id, pu.name, pu.email, pu.house_number, pu.role,
	       n.attachments, n.created_at, n.updated_at
	from notices n
	left join users pu on pu.id = n.posted_by`

func scanNotice(row interface{ Scan(...any) error }) (*society.Notice, error) {
	var n society.Notice
	var postedBy string
	var poster refCols
	var attachments []byte
	dest := []any{&n.ID, &n.Title, &n.Description, &n.Category, &n.Priority, &n.IsPinned, &n.IsActive, &n.ValidUntil, &postedBy}
	dest = append(dest, poster.dest()...)
	dest = append(dest, &attachments, &n.CreatedAt, &n.UpdatedAt)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	n.PostedBy = poster.mustRef(postedBy)
	n.Attachments = []society.Attachment{}
	if len(attachments) > 0 {
		_ = json.Unmarshal(attachments, &n.Attachments)
	}
	return &n, nil
}

func (s notices) Create(ctx context.Context, n *society.Notice) error {
	attachments, err := json.Marshal(n.Attachments)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		insert into notices(id, title, description, category, priority, is_pinned, is_active, valid_until, posted_by, attachments, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`, n.ID, n.Title, n.Description, n.Category, n.Priority, n.IsPinned, n.IsActive,
		n.ValidUntil, n.PostedBy.ID, attachments, n.CreatedAt, n.UpdatedAt)
	if err != nil {
		return err
	}
	populated, err := s.Find(ctx, n.ID)
	if err != nil {
		return err
	}
	*n = *populated
	return nil
}

func (s notices) Find(ctx context.Context, id string) (*society.Notice, error) {
	n, err := scanNotice(s.db.QueryRowContext(ctx, noticeQuery+` where n.id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, society.ErrNotFound
	}
	return n, err
}

func (s notices) List(ctx context.Context, f society.ListFilter) ([]*society.Notice, error) {
	rows, err := s.db.QueryContext(ctx, noticeQuery+`
		where (not $1 or (n.is_active and n.valid_until >= now()))
		order by n.is_pinned desc, n.created_at desc
	`, f.ActiveOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*society.Notice{}
	for rows.Next() {
		n, err := scanNotice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s notices) Update(ctx context.Context, id string, upd society.NoticeUpdate) (*society.Notice, error) {
	res, err := s.db.ExecContext(ctx, `
		update notices set
			title       = coalesce($2, title),
			description = coalesce($3, description),
			category    = coalesce($4, category),
			priority    = coalesce($5, priority),
			valid_until = coalesce($6, valid_until),
			is_pinned   = coalesce($7, is_pinned),
			is_active   = coalesce($8, is_active),
			updated_at  = now()
		where id=$1
	`, id, upd.Title, upd.Description, upd.Category, upd.Priority, upd.ValidUntil, upd.IsPinned, upd.IsActive)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, society.ErrNotFound
	}
	return s.Find(ctx, id)
}

func (s notices) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from notices where id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return society.ErrNotFound
	}
	return nil
}
