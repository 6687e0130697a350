package postgres

import (
	"context"
	"fmt"
	"listkeeper/pkg/domain"
	"listkeeper/pkg/storage"

	"github.com/doug-martin/goqu/v9"
)

const usersTable = "users"

func (p *PgSQL) StoreUser(ctx context.Context, user domain.User) (*domain.User, error) {
	var pgUser PgUser
	pgUser.FromDomain(user)

	var row PgUser
	found, err := p.Builder.Insert(usersTable).
		Rows(pgUser).
		Returning(&PgUser{}).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not store user in pg: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("insert into %s returned no row", usersTable)
	}

	return row.ToDomain(), nil
}

func (p *PgSQL) UserByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	var row PgUser
	found, err := p.Builder.From(usersTable).
		Where(goqu.I("user_id").Eq(int64(id))).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch user by id: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain(), nil
}

func (p *PgSQL) UserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var row PgUser
	found, err := p.Builder.From(usersTable).
		Where(goqu.I("email_address").Eq(email)).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch user by email: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain(), nil
}

func (p *PgSQL) UserEmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	if _, err := p.Builder.From(usersTable).
		Select(goqu.COUNT(goqu.Star())).
		Where(goqu.I("email_address").Eq(email)).
		Executor().ScanValContext(ctx, &count); err != nil {
		return false, fmt.Errorf("could not check user email existence: %w", err)
	}

	return count > 0, nil
}

func (p *PgSQL) Users(ctx context.Context) ([]domain.User, error) {
	var rows []PgUser
	if err := p.Builder.From(usersTable).
		Order(goqu.I("last_name").Asc(), goqu.I("first_name").Asc()).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not fetch users: %w", err)
	}

	return pgUsersToDomain(rows), nil
}

func (p *PgSQL) UsersByName(ctx context.Context, name string) ([]domain.User, error) {
	pattern := "%" + name + "%"

	var rows []PgUser
	if err := p.Builder.From(usersTable).
		Where(goqu.Or(
			goqu.I("first_name").ILike(pattern),
			goqu.I("last_name").ILike(pattern),
		)).
		Order(goqu.I("last_name").Asc(), goqu.I("first_name").Asc()).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return nil, fmt.Errorf("could not search users by name: %w", err)
	}

	return pgUsersToDomain(rows), nil
}

func (p *PgSQL) UpdateUser(ctx context.Context,
	id domain.UserID,
	updates storage.UserUpdates) (*domain.User, error) {
	rec := goqu.Record{}
	if updates.FirstName != nil {
		rec["first_name"] = *updates.FirstName
	}
	if updates.LastName != nil {
		rec["last_name"] = *updates.LastName
	}
	if updates.Email != nil {
		rec["email_address"] = *updates.Email
	}
	if updates.Password != nil {
		rec["password_hash"] = *updates.Password
	}
	if updates.PhoneNumber != nil {
		rec["phone_number"] = *updates.PhoneNumber
	}
	if updates.DateOfBirth != nil {
		rec["date_of_birth"] = *updates.DateOfBirth
	}
	if updates.LastLoginDate != nil {
		rec["last_login_date"] = *updates.LastLoginDate
	}
	if updates.AccountStatus != nil {
		rec["account_status"] = string(*updates.AccountStatus)
	}
	if updates.IsVerified != nil {
		rec["email_verified"] = *updates.IsVerified
	}
	if len(rec) == 0 {
		return p.UserByID(ctx, id)
	}

	var row PgUser
	found, err := p.Builder.Update(usersTable).
		Set(rec).
		Where(goqu.I("user_id").Eq(int64(id))).
		Returning(&PgUser{}).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not update user in pg: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain(), nil
}

func (p *PgSQL) DeleteUser(ctx context.Context, id domain.UserID) (bool, error) {
	res, err := p.Builder.Delete(usersTable).
		Where(goqu.I("user_id").Eq(int64(id))).
		Executor().ExecContext(ctx)
	if err != nil {
		return false, fmt.Errorf("could not delete user in pg: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("could not read affected rows: %w", err)
	}

	return n > 0, nil
}

func pgUsersToDomain(rows []PgUser) []domain.User {
	out := make([]domain.User, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}

	return out
}
