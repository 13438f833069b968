package pg

import (
	"context"
	"database/sql"
	"errors"

	"societyhub.org/internal/society"
)

type payments struct {
	db *sql.DB
}

const paymentQuery = `
	select p.id, p.house_number, p.description, p.amount, p.type, p.status, p.due_date,
	       p.paid_date, p.payment_method,
	       p.paid_by, bu.id, bu.name, bu.email, bu.house_number, bu.role,
	       p.created_by, cu.id, cu.name, cu.email, cu.house_number, cu.role,
	       p.created_at, p.updated_at
	from payments p
	left join users bu on bu.id = p.paid_by
	left join users cu on cu.id = p.created_by`

func scanPayment(row interface{ Scan(...any) error }) (*society.Payment, error) {
	var p society.Payment
	var paidDate sql.NullTime
	var paidBy sql.NullString
	var createdBy string
	var payer, creator refCols
	dest := []any{&p.ID, &p.HouseNumber, &p.Description, &p.Amount, &p.Type, &p.Status, &p.DueDate, &paidDate, &p.PaymentMethod, &paidBy}
	dest = append(dest, payer.dest()...)
	dest = append(dest, &createdBy)
	dest = append(dest, creator.dest()...)
	dest = append(dest, &p.CreatedAt, &p.UpdatedAt)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	p.PaidDate = timePtr(paidDate)
	p.PaidBy = payer.ref(paidBy)
	p.CreatedBy = creator.mustRef(createdBy)
	return &p, nil
}

func (s payments) Create(ctx context.Context, p *society.Payment) error {
	_, err := s.db.ExecContext(ctx, `
		insert into payments(id, house_number, description, amount, type, status, due_date, created_by, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, p.ID, p.HouseNumber, p.Description, p.Amount, p.Type, p.Status, p.DueDate,
		p.CreatedBy.ID, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return err
	}
	populated, err := s.Find(ctx, p.ID)
	if err != nil {
		return err
	}
	*p = *populated
	return nil
}

func (s payments) Find(ctx context.Context, id string) (*society.Payment, error) {
	p, err := scanPayment(s.db.QueryRowContext(ctx, paymentQuery+` where p.id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, society.ErrNotFound
	}
	return p, err
}

func (s payments) List(ctx context.Context, f society.ListFilter) ([]*society.Payment, error) {
	rows, err := s.db.QueryContext(ctx, paymentQuery+`
		where ($1 = '' or p.house_number = $1)
		  and ($2 = '' or p.status = $2)
		order by p.created_at desc
	`, f.HouseNumber, f.Status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*society.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s payments) UpdateStatus(ctx context.Context, id string, upd society.PaymentStatusUpdate) (*society.Payment, error) {
	var paidBy, method any
	if upd.PaidBy != nil {
		paidBy = nullStr(*upd.PaidBy)
	}
	if upd.PaymentMethod != nil {
		method = *upd.PaymentMethod
	}
	res, err := s.db.ExecContext(ctx, `
		update payments set
			status         = $2,
			paid_by        = case when $3::boolean then nullif($4::text, '') else paid_by end,
			paid_date      = $5,
			payment_method = coalesce($6, payment_method),
			updated_at     = now()
		where id=$1
	`, id, upd.Status, upd.PaidBy != nil, paidBy, nullTime(upd.PaidDate), method)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, society.ErrNotFound
	}
	return s.Find(ctx, id)
}

func (s payments) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from payments where id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return society.ErrNotFound
	}
	return nil
}

// Stats derives overdue the same way reads do: a pending row past its due
// date counts as overdue even though the stored status still says pending.
func (s payments) Stats(ctx context.Context, f society.ListFilter) (society.PaymentStats, error) {
	var st society.PaymentStats
	err := s.db.QueryRowContext(ctx, `
		with effective as (
			select amount,
			       case when status = 'pending' and due_date < now() then 'overdue' else status end as status
			from payments
			where ($1 = '' or house_number = $1)
		)
		select coalesce(sum(amount) filter (where status in ('pending','overdue')), 0),
		       coalesce(sum(amount) filter (where status = 'paid'), 0),
		       count(*) filter (where status = 'pending'),
		       count(*) filter (where status = 'overdue')
		from effective
	`, f.HouseNumber).Scan(&st.TotalDue, &st.TotalPaid, &st.PendingPayments, &st.OverduePayments)
	return st, err
}
