package pg

import (
	"context"
	"database/sql"
	"errors"

	"societyhub.org/internal/identity"
	"societyhub.org/internal/society"
)

type users struct {
	db *sql.DB
}

const userCols = `id, name, email, password_hash, phone_number, house_number, age, gender, role, is_approved, is_active, profile_image, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*society.User, error) {
	var u society.User
	var role string
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.PhoneNumber, &u.HouseNumber,
		&u.Age, &u.Gender, &role, &u.IsApproved, &u.IsActive, &u.ProfileImage, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.Role = identity.Role(role)
	return &u, nil
}

func (s users) Create(ctx context.Context, u *society.User) error {
	_, err := s.db.ExecContext(ctx, `
		insert into users(id, name, email, password_hash, phone_number, house_number, age, gender, role, is_approved, is_active, profile_image, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`, u.ID, u.Name, u.Email, u.PasswordHash, u.PhoneNumber, u.HouseNumber, u.Age, u.Gender,
		string(u.Role), u.IsApproved, u.IsActive, u.ProfileImage, u.CreatedAt, u.UpdatedAt)
	if isUniqueViolation(err) {
		return society.ErrConflict
	}
	return err
}

func (s users) Find(ctx context.Context, id string) (*society.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `select `+userCols+` from users where id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, society.ErrNotFound
	}
	return u, err
}

func (s users) FindByEmail(ctx context.Context, email string) (*society.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `select `+userCols+` from users where lower(email)=lower($1)`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, society.ErrNotFound
	}
	return u, err
}

func (s users) List(ctx context.Context, f society.UserFilter) ([]*society.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		select `+userCols+` from users
		where ($1 = '' or role = $1)
		  and (not $2 or is_approved = false)
		order by created_at desc
	`, f.Role, f.PendingOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*society.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s users) Update(ctx context.Context, id string, upd society.UserUpdate) (*society.User, error) {
	res, err := s.db.ExecContext(ctx, `
		update users set
			name          = coalesce($2, name),
			email         = coalesce($3, email),
			phone_number  = coalesce($4, phone_number),
			house_number  = coalesce($5, house_number),
			age           = coalesce($6, age),
			gender        = coalesce($7, gender),
			profile_image = coalesce($8, profile_image),
			is_approved   = coalesce($9, is_approved),
			is_active     = coalesce($10, is_active),
			updated_at    = now()
		where id=$1
	`, id, upd.Name, upd.Email, upd.PhoneNumber, upd.HouseNumber, upd.Age, upd.Gender,
		upd.ProfileImage, upd.IsApproved, upd.IsActive)
	if isUniqueViolation(err) {
		return nil, society.ErrConflict
	}
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, society.ErrNotFound
	}
	return s.Find(ctx, id)
}

func (s users) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from users where id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return society.ErrNotFound
	}
	return nil
}

func (s users) Stats(ctx context.Context) (society.UserStats, error) {
	var st society.UserStats
	err := s.db.QueryRowContext(ctx, `
		select count(*),
		       count(*) filter (where role = 'member'),
		       count(*) filter (where role = 'guest'),
		       count(*) filter (where gender = 'male'),
		       count(*) filter (where gender = 'female')
		from users
	`).Scan(&st.TotalUsers, &st.TotalMembers, &st.TotalGuests, &st.MaleCount, &st.FemaleCount)
	return st, err
}
