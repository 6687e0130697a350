package postgres

import (
	"database/sql"
	"listkeeper/pkg/domain"
	"time"
)

// Row structs mirror the relational schema one to one. Generated identity
// columns carry goqu:"skipinsert" so inserts let the database assign them.

type PgUser struct {
	ID int64 `db:"user_id" goqu:"skipinsert"`

	FirstName   string         `db:"first_name"`
	LastName    string         `db:"last_name"`
	Email       string         `db:"email_address"`
	Password    string         `db:"password_hash"`
	PhoneNumber sql.NullString `db:"phone_number"`
	DateOfBirth sql.NullTime   `db:"date_of_birth"`

	RegistrationDate time.Time    `db:"registration_date"`
	LastLoginDate    sql.NullTime `db:"last_login_date"`

	AccountStatus string `db:"account_status"`
	IsVerified    bool   `db:"email_verified"`
}

func (p *PgUser) ToDomain() *domain.User {
	return &domain.User{
		ID:               domain.UserID(p.ID),
		FirstName:        p.FirstName,
		LastName:         p.LastName,
		Email:            p.Email,
		Password:         p.Password,
		PhoneNumber:      p.PhoneNumber.String,
		DateOfBirth:      nullTimePtr(p.DateOfBirth),
		RegistrationDate: p.RegistrationDate,
		LastLoginDate:    nullTimePtr(p.LastLoginDate),
		AccountStatus:    domain.AccountStatus(p.AccountStatus),
		IsVerified:       p.IsVerified,
	}
}

func (p *PgUser) FromDomain(u domain.User) {
	*p = PgUser{
		ID:               int64(u.ID),
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		Email:            u.Email,
		Password:         u.Password,
		PhoneNumber:      nullString(u.PhoneNumber),
		DateOfBirth:      nullTime(u.DateOfBirth),
		RegistrationDate: u.RegistrationDate,
		LastLoginDate:    nullTime(u.LastLoginDate),
		AccountStatus:    string(u.AccountStatus),
		IsVerified:       u.IsVerified,
	}
}

type PgCategory struct {
	ID int64 `db:"category_id" goqu:"skipinsert"`

	Name        string         `db:"category_name"`
	Description sql.NullString `db:"category_description"`
	Color       sql.NullString `db:"category_color"`

	IsSystemCategory bool      `db:"is_system_category"`
	CreationDate     time.Time `db:"creation_date"`
	DisplayOrder     int       `db:"display_order"`
}

func (p *PgCategory) ToDomain() *domain.Category {
	return &domain.Category{
		ID:               domain.CategoryID(p.ID),
		Name:             p.Name,
		Description:      p.Description.String,
		Color:            p.Color.String,
		IsSystemCategory: p.IsSystemCategory,
		CreationDate:     p.CreationDate,
		DisplayOrder:     p.DisplayOrder,
	}
}

func (p *PgCategory) FromDomain(c domain.Category) {
	*p = PgCategory{
		ID:               int64(c.ID),
		Name:             c.Name,
		Description:      nullString(c.Description),
		Color:            nullString(c.Color),
		IsSystemCategory: c.IsSystemCategory,
		CreationDate:     c.CreationDate,
		DisplayOrder:     c.DisplayOrder,
	}
}

type PgList struct {
	ID int64 `db:"list_id" goqu:"skipinsert"`

	Name        string         `db:"list_name"`
	Description sql.NullString `db:"list_description"`

	CreationDate     time.Time `db:"creation_date"`
	LastModifiedDate time.Time `db:"last_modified_date"`

	Status     string `db:"list_status"`
	IsTemplate bool   `db:"is_template"`
	Priority   string `db:"priority_level"`

	OwnerID int64 `db:"owner_user_id"`
}

func (p *PgList) ToDomain() *domain.ShoppingList {
	return &domain.ShoppingList{
		ID:               domain.ListID(p.ID),
		Name:             p.Name,
		Description:      p.Description.String,
		CreationDate:     p.CreationDate,
		LastModifiedDate: p.LastModifiedDate,
		Status:           domain.ListStatus(p.Status),
		IsTemplate:       p.IsTemplate,
		Priority:         domain.Priority(p.Priority),
		OwnerID:          domain.UserID(p.OwnerID),
	}
}

func (p *PgList) FromDomain(l domain.ShoppingList) {
	*p = PgList{
		ID:               int64(l.ID),
		Name:             l.Name,
		Description:      nullString(l.Description),
		CreationDate:     l.CreationDate,
		LastModifiedDate: l.LastModifiedDate,
		Status:           string(l.Status),
		IsTemplate:       l.IsTemplate,
		Priority:         string(l.Priority),
		OwnerID:          int64(l.OwnerID),
	}
}

type PgItem struct {
	ID int64 `db:"item_id" goqu:"skipinsert"`

	Name        string         `db:"item_name"`
	Description sql.NullString `db:"item_description"`

	Quantity       float64         `db:"quantity"`
	UnitOfMeasure  sql.NullString  `db:"unit_of_measure"`
	EstimatedPrice sql.NullFloat64 `db:"estimated_price"`
	ActualPrice    sql.NullFloat64 `db:"actual_price"`

	IsPurchased   bool         `db:"is_purchased"`
	PurchasedDate sql.NullTime `db:"purchase_date"`
	AddedDate     time.Time    `db:"added_date"`

	Priority string         `db:"priority_level"`
	Notes    sql.NullString `db:"notes"`

	ListID     int64 `db:"list_id"`
	CategoryID int64 `db:"category_id"`
}

func (p *PgItem) ToDomain() *domain.Item {
	return &domain.Item{
		ID:             domain.ItemID(p.ID),
		Name:           p.Name,
		Description:    p.Description.String,
		Quantity:       p.Quantity,
		UnitOfMeasure:  p.UnitOfMeasure.String,
		EstimatedPrice: nullFloatPtr(p.EstimatedPrice),
		ActualPrice:    nullFloatPtr(p.ActualPrice),
		IsPurchased:    p.IsPurchased,
		PurchasedDate:  nullTimePtr(p.PurchasedDate),
		AddedDate:      p.AddedDate,
		Priority:       domain.Priority(p.Priority),
		Notes:          p.Notes.String,
		ListID:         domain.ListID(p.ListID),
		CategoryID:     domain.CategoryID(p.CategoryID),
	}
}

func (p *PgItem) FromDomain(i domain.Item) {
	*p = PgItem{
		ID:             int64(i.ID),
		Name:           i.Name,
		Description:    nullString(i.Description),
		Quantity:       i.Quantity,
		UnitOfMeasure:  nullString(i.UnitOfMeasure),
		EstimatedPrice: nullFloat(i.EstimatedPrice),
		ActualPrice:    nullFloat(i.ActualPrice),
		IsPurchased:    i.IsPurchased,
		PurchasedDate:  nullTime(i.PurchasedDate),
		AddedDate:      i.AddedDate,
		Priority:       string(i.Priority),
		Notes:          nullString(i.Notes),
		ListID:         int64(i.ListID),
		CategoryID:     int64(i.CategoryID),
	}
}

type PgBudget struct {
	ID int64 `db:"budget_id" goqu:"skipinsert"`

	Limit    float64        `db:"budget_limit"`
	Currency sql.NullString `db:"budget_currency"`
	Period   sql.NullString `db:"budget_period"`

	CreationDate time.Time `db:"creation_date"`
	IsActive     bool      `db:"is_active"`

	ListID int64 `db:"list_id"`
}

func (p *PgBudget) ToDomain() *domain.Budget {
	return &domain.Budget{
		ID:           domain.BudgetID(p.ID),
		Limit:        p.Limit,
		Currency:     p.Currency.String,
		Period:       domain.BudgetPeriod(p.Period.String),
		CreationDate: p.CreationDate,
		IsActive:     p.IsActive,
		ListID:       domain.ListID(p.ListID),
	}
}

func (p *PgBudget) FromDomain(b domain.Budget) {
	*p = PgBudget{
		ID:           int64(b.ID),
		Limit:        b.Limit,
		Currency:     nullString(b.Currency),
		Period:       nullString(string(b.Period)),
		CreationDate: b.CreationDate,
		IsActive:     b.IsActive,
		ListID:       int64(b.ListID),
	}
}

type PgShare struct {
	ID int64 `db:"share_id" goqu:"skipinsert"`

	Permission string `db:"permission_type"`

	SharedDate     time.Time    `db:"shared_date"`
	ExpirationDate sql.NullTime `db:"expiration_date"`
	IsActive       bool         `db:"is_active"`

	ListID     int64 `db:"list_id"`
	SharedByID int64 `db:"shared_by_user_id"`
	SharedToID int64 `db:"shared_with_user_id"`
}

func (p *PgShare) ToDomain() *domain.ListShare {
	return &domain.ListShare{
		ID:             domain.ShareID(p.ID),
		Permission:     domain.Permission(p.Permission),
		SharedDate:     p.SharedDate,
		ExpirationDate: nullTimePtr(p.ExpirationDate),
		IsActive:       p.IsActive,
		ListID:         domain.ListID(p.ListID),
		SharedByID:     domain.UserID(p.SharedByID),
		SharedToID:     domain.UserID(p.SharedToID),
	}
}

func (p *PgShare) FromDomain(s domain.ListShare) {
	*p = PgShare{
		ID:             int64(s.ID),
		Permission:     string(s.Permission),
		SharedDate:     s.SharedDate,
		ExpirationDate: nullTime(s.ExpirationDate),
		IsActive:       s.IsActive,
		ListID:         int64(s.ListID),
		SharedByID:     int64(s.SharedByID),
		SharedToID:     int64(s.SharedToID),
	}
}

type PgSession struct {
	ID int64 `db:"session_id" goqu:"skipinsert"`

	Token string `db:"session_token"`

	LoginTime        time.Time    `db:"login_timestamp"`
	LogoutTime       sql.NullTime `db:"logout_timestamp"`
	LastActivityTime time.Time    `db:"last_activity_timestamp"`
	LastModifiedDate sql.NullTime `db:"last_modified_date"`

	IPAddress sql.NullString `db:"ip_address"`
	UserAgent sql.NullString `db:"user_agent"`

	IsActive bool  `db:"is_active"`
	UserID   int64 `db:"user_id"`
}

func (p *PgSession) ToDomain() *domain.UserSession {
	return &domain.UserSession{
		ID:               domain.SessionID(p.ID),
		Token:            p.Token,
		LoginTime:        p.LoginTime,
		LogoutTime:       nullTimePtr(p.LogoutTime),
		LastActivityTime: p.LastActivityTime,
		LastModifiedDate: nullTimePtr(p.LastModifiedDate),
		IPAddress:        p.IPAddress.String,
		UserAgent:        p.UserAgent.String,
		IsActive:         p.IsActive,
		UserID:           domain.UserID(p.UserID),
	}
}

func (p *PgSession) FromDomain(s domain.UserSession) {
	*p = PgSession{
		ID:               int64(s.ID),
		Token:            s.Token,
		LoginTime:        s.LoginTime,
		LogoutTime:       nullTime(s.LogoutTime),
		LastActivityTime: s.LastActivityTime,
		LastModifiedDate: nullTime(s.LastModifiedDate),
		IPAddress:        nullString(s.IPAddress),
		UserAgent:        nullString(s.UserAgent),
		IsActive:         s.IsActive,
		UserID:           int64(s.UserID),
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}

	return sql.NullTime{Time: *t, Valid: true}
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time

	return &v
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}

	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullFloatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64

	return &v
}
