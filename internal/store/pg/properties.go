package pg

import (
	"context"
	"database/sql"
	"errors"

	"societyhub.org/internal/society"
)

type properties struct {
	db *sql.DB
}

const propertyQuery = `
	select p.id, p.flat_number, p.type, p.bedrooms, p.bathrooms, p.area, p.rent, p.status, p.description,
	       p.amenities, p.images,
	       p.current_tenant, tu.id, tu.name, tu.email, tu.house_number, tu.role,
	       p.lease_start_date, p.lease_end_date,
	       p.created_by, cu.id, cu.name, cu.email, cu.house_number, cu.role,
	       p.created_at, p.updated_at
	from properties p
	left join users tu on tu.id = p.current_tenant
	left join users cu on cu.id = p.created_by`

func scanProperty(row interface{ Scan(...any) error }) (*society.Property, error) {
	var p society.Property
	var amenities, images []byte
	var tenantID sql.NullString
	var leaseStart, leaseEnd sql.NullTime
	var createdBy string
	var tenant, creator refCols
	dest := []any{&p.ID, &p.FlatNumber, &p.Type, &p.Bedrooms, &p.Bathrooms, &p.Area, &p.Rent, &p.Status, &p.Description, &amenities, &images, &tenantID}
	dest = append(dest, tenant.dest()...)
	dest = append(dest, &leaseStart, &leaseEnd, &createdBy)
	dest = append(dest, creator.dest()...)
	dest = append(dest, &p.CreatedAt, &p.UpdatedAt)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	p.Amenities = unmarshalStrings(amenities)
	p.Images = unmarshalStrings(images)
	p.CurrentTenant = tenant.ref(tenantID)
	p.LeaseStartDate = timePtr(leaseStart)
	p.LeaseEndDate = timePtr(leaseEnd)
	p.CreatedBy = creator.mustRef(createdBy)
	return &p, nil
}

func (s properties) Create(ctx context.Context, p *society.Property) error {
	_, err := s.db.ExecContext(ctx, `
		insert into properties(id, flat_number, type, bedrooms, bathrooms, area, rent, status, description, amenities, images, created_by, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`, p.ID, p.FlatNumber, p.Type, p.Bedrooms, p.Bathrooms, p.Area, p.Rent, p.Status, p.Description,
		marshalStrings(p.Amenities), marshalStrings(p.Images), p.CreatedBy.ID, p.CreatedAt, p.UpdatedAt)
	if isUniqueViolation(err) {
		return society.ErrConflict
	}
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

func (s properties) Find(ctx context.Context, id string) (*society.Property, error) {
	p, err := scanProperty(s.db.QueryRowContext(ctx, propertyQuery+` where p.id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, society.ErrNotFound
	}
	return p, err
}

func (s properties) List(ctx context.Context, f society.ListFilter) ([]*society.Property, error) {
	rows, err := s.db.QueryContext(ctx, propertyQuery+`
		where ($1 = '' or p.status = $1)
		order by p.created_at desc
	`, f.Status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*society.Property{}
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s properties) Update(ctx context.Context, id string, upd society.PropertyUpdate) (*society.Property, error) {
	var amenities, images any
	if upd.Amenities != nil {
		amenities = marshalStrings(*upd.Amenities)
	}
	if upd.Images != nil {
		images = marshalStrings(*upd.Images)
	}
	res, err := s.db.ExecContext(ctx, `
		update properties set
			type        = coalesce($2, type),
			bedrooms    = coalesce($3, bedrooms),
			bathrooms   = coalesce($4, bathrooms),
			area        = coalesce($5, area),
			rent        = coalesce($6, rent),
			status      = coalesce($7, status),
			description = coalesce($8, description),
			amenities   = coalesce($9, amenities),
			images      = coalesce($10, images),
			current_tenant   = case when $7::text = 'available' then null else current_tenant end,
			lease_start_date = case when $7::text = 'available' then null else lease_start_date end,
			lease_end_date   = case when $7::text = 'available' then null else lease_end_date end,
			updated_at  = now()
		where id=$1
	`, id, upd.Type, upd.Bedrooms, upd.Bathrooms, upd.Area, upd.Rent, upd.Status,
		upd.Description, amenities, images)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, society.ErrNotFound
	}
	return s.Find(ctx, id)
}

// Reserve is the conditional write behind booking: the status guard in the
// where clause means exactly one concurrent booking can flip the row.
func (s properties) Reserve(ctx context.Context, id string, lease society.Lease) (*society.Property, error) {
	res, err := s.db.ExecContext(ctx, `
		update properties set
			status           = 'reserved',
			current_tenant   = $2,
			lease_start_date = $3,
			lease_end_date   = $4,
			updated_at       = now()
		where id=$1 and status='available'
	`, id, lease.TenantID, lease.Start, lease.End)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Either the unit does not exist or someone else got there first.
		if _, ferr := s.Find(ctx, id); errors.Is(ferr, society.ErrNotFound) {
			return nil, society.ErrNotFound
		}
		return nil, society.ErrConflict
	}
	return s.Find(ctx, id)
}

func (s properties) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from properties where id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return society.ErrNotFound
	}
	return nil
}
