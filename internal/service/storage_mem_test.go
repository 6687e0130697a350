package service_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"listkeeper/pkg/domain"
	"listkeeper/pkg/storage"
)

// memStorage is an in-memory storage.Storage used by the service tests.
// WithTx runs the callback directly against the same state; the tests do not
// exercise rollback.
type memStorage struct {
	mu sync.Mutex

	users      map[domain.UserID]domain.User
	categories map[domain.CategoryID]domain.Category
	lists      map[domain.ListID]domain.ShoppingList
	items      map[domain.ItemID]domain.Item
	budgets    map[domain.BudgetID]domain.Budget
	shares     map[domain.ShareID]domain.ListShare
	sessions   map[domain.SessionID]domain.UserSession

	nextID int64
}

func newMemStorage() *memStorage {
	return &memStorage{
		users:      make(map[domain.UserID]domain.User),
		categories: make(map[domain.CategoryID]domain.Category),
		lists:      make(map[domain.ListID]domain.ShoppingList),
		items:      make(map[domain.ItemID]domain.Item),
		budgets:    make(map[domain.BudgetID]domain.Budget),
		shares:     make(map[domain.ShareID]domain.ListShare),
		sessions:   make(map[domain.SessionID]domain.UserSession),
	}
}

func (m *memStorage) id() int64 {
	m.nextID++

	return m.nextID
}

func (m *memStorage) Close() error { return nil }

func (m *memStorage) Begin(context.Context) (storage.TxStorage, error) {
	return nil, errors.New("not supported")
}

func (m *memStorage) WithTx(ctx context.Context, cb func(storage storage.AllStorage) error) error {
	return cb(m)
}

// --- users ---

func (m *memStorage) StoreUser(_ context.Context, user domain.User) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user.ID = domain.UserID(m.id())
	m.users[user.ID] = user

	return &user, nil
}

func (m *memStorage) UserByID(_ context.Context, id domain.UserID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return &u, nil
	}

	return nil, nil
}

func (m *memStorage) UserByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}

	return nil, nil
}

func (m *memStorage) UserEmailExists(ctx context.Context, email string) (bool, error) {
	u, _ := m.UserByEmail(ctx, email)

	return u != nil, nil
}

func (m *memStorage) Users(context.Context) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := make([]domain.User, 0, len(m.users))
	for _, u := range m.users {
		res = append(res, u)
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].LastName != res[j].LastName {
			return res[i].LastName < res[j].LastName
		}

		return res[i].FirstName < res[j].FirstName
	})

	return res, nil
}

func (m *memStorage) UsersByName(_ context.Context, name string) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	needle := strings.ToLower(name)
	var res []domain.User
	for _, u := range m.users {
		if strings.Contains(strings.ToLower(u.FirstName), needle) ||
			strings.Contains(strings.ToLower(u.LastName), needle) {
			res = append(res, u)
		}
	}

	return res, nil
}

func (m *memStorage) UpdateUser(_ context.Context,
	id domain.UserID,
	updates storage.UserUpdates) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	if updates.FirstName != nil {
		u.FirstName = *updates.FirstName
	}
	if updates.LastName != nil {
		u.LastName = *updates.LastName
	}
	if updates.Email != nil {
		u.Email = *updates.Email
	}
	if updates.Password != nil {
		u.Password = *updates.Password
	}
	if updates.PhoneNumber != nil {
		u.PhoneNumber = *updates.PhoneNumber
	}
	if updates.DateOfBirth != nil {
		u.DateOfBirth = updates.DateOfBirth
	}
	if updates.LastLoginDate != nil {
		u.LastLoginDate = updates.LastLoginDate
	}
	if updates.AccountStatus != nil {
		u.AccountStatus = *updates.AccountStatus
	}
	if updates.IsVerified != nil {
		u.IsVerified = *updates.IsVerified
	}
	m.users[id] = u

	return &u, nil
}

func (m *memStorage) DeleteUser(_ context.Context, id domain.UserID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return false, nil
	}
	delete(m.users, id)
	// schema-level cascades
	for lid, l := range m.lists {
		if l.OwnerID == id {
			m.deleteListLocked(lid)
		}
	}
	for sid, s := range m.sessions {
		if s.UserID == id {
			delete(m.sessions, sid)
		}
	}
	for sid, s := range m.shares {
		if s.SharedByID == id || s.SharedToID == id {
			delete(m.shares, sid)
		}
	}

	return true, nil
}

// --- categories ---

func (m *memStorage) StoreCategory(_ context.Context, category domain.Category) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	category.ID = domain.CategoryID(m.id())
	m.categories[category.ID] = category

	return &category, nil
}

func (m *memStorage) CategoryByID(_ context.Context, id domain.CategoryID) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.categories[id]; ok {
		return &c, nil
	}

	return nil, nil
}

func (m *memStorage) CategoryNameExists(_ context.Context,
	name string,
	exclude domain.CategoryID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.categories {
		if c.ID != exclude && strings.EqualFold(c.Name, name) {
			return true, nil
		}
	}

	return false, nil
}

func (m *memStorage) Categories(_ context.Context, filter storage.CategoryFilter) ([]domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []domain.Category
	for _, c := range m.categories {
		if filter.System != nil && c.IsSystemCategory != *filter.System {
			continue
		}
		if filter.WithItems && m.countItemsLocked(c.ID) == 0 {
			continue
		}
		res = append(res, c)
	}
	sort.Slice(res, func(i, j int) bool {
		if filter.WithItems || res[i].DisplayOrder == res[j].DisplayOrder {
			return res[i].Name < res[j].Name
		}

		return res[i].DisplayOrder < res[j].DisplayOrder
	})

	return res, nil
}

func (m *memStorage) UpdateCategory(_ context.Context,
	id domain.CategoryID,
	updates storage.CategoryUpdates) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[id]
	if !ok {
		return nil, nil
	}
	if updates.Name != nil {
		c.Name = *updates.Name
	}
	if updates.Description != nil {
		c.Description = *updates.Description
	}
	if updates.Color != nil {
		c.Color = *updates.Color
	}
	if updates.DisplayOrder != nil {
		c.DisplayOrder = *updates.DisplayOrder
	}
	m.categories[id] = c

	return &c, nil
}

func (m *memStorage) DeleteCategory(_ context.Context, id domain.CategoryID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[id]; !ok {
		return false, nil
	}
	delete(m.categories, id)

	return true, nil
}

func (m *memStorage) countItemsLocked(id domain.CategoryID) int {
	count := 0
	for _, i := range m.items {
		if i.CategoryID == id {
			count++
		}
	}

	return count
}

func (m *memStorage) CountItemsByCategory(_ context.Context, id domain.CategoryID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.countItemsLocked(id), nil
}

// --- lists ---

func (m *memStorage) StoreList(_ context.Context, list domain.ShoppingList) (*domain.ShoppingList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list.ID = domain.ListID(m.id())
	m.lists[list.ID] = list

	return &list, nil
}

func (m *memStorage) ListByID(_ context.Context, id domain.ListID) (*domain.ShoppingList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.lists[id]; ok {
		return &l, nil
	}

	return nil, nil
}

func (m *memStorage) ListNameExists(_ context.Context,
	ownerID domain.UserID,
	name string,
	exclude domain.ListID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.lists {
		if l.OwnerID == ownerID && l.ID != exclude && l.Name == name {
			return true, nil
		}
	}

	return false, nil
}

func (m *memStorage) ListsByOwner(_ context.Context,
	ownerID domain.UserID,
	filter storage.ListFilter) ([]domain.ShoppingList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []domain.ShoppingList
	for _, l := range m.lists {
		if l.OwnerID != ownerID {
			continue
		}
		if filter.Status != nil && l.Status != *filter.Status {
			continue
		}
		if filter.TemplatesOnly && !l.IsTemplate {
			continue
		}
		if filter.NameContains != "" &&
			!strings.Contains(strings.ToLower(l.Name), strings.ToLower(filter.NameContains)) {
			continue
		}
		res = append(res, l)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID > res[j].ID })

	return res, nil
}

func (m *memStorage) AccessibleLists(_ context.Context, userID domain.UserID) ([]domain.ShoppingList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[domain.ListID]bool)
	var res []domain.ShoppingList
	for _, l := range m.lists {
		if l.OwnerID == userID {
			seen[l.ID] = true
			res = append(res, l)
		}
	}
	for _, s := range m.shares {
		if s.SharedToID == userID && s.IsActive && !seen[s.ListID] {
			if l, ok := m.lists[s.ListID]; ok {
				seen[l.ID] = true
				res = append(res, l)
			}
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID > res[j].ID })

	return res, nil
}

func (m *memStorage) UpdateList(_ context.Context,
	id domain.ListID,
	updates storage.ListUpdates) (*domain.ShoppingList, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.lists[id]
	if !ok {
		return nil, nil
	}
	if updates.Name != nil {
		l.Name = *updates.Name
	}
	if updates.Description != nil {
		l.Description = *updates.Description
	}
	if updates.Status != nil {
		l.Status = *updates.Status
	}
	if updates.Priority != nil {
		l.Priority = *updates.Priority
	}
	if updates.LastModifiedDate != nil {
		l.LastModifiedDate = *updates.LastModifiedDate
	}
	m.lists[id] = l

	return &l, nil
}

func (m *memStorage) deleteListLocked(id domain.ListID) {
	delete(m.lists, id)
	for iid, i := range m.items {
		if i.ListID == id {
			delete(m.items, iid)
		}
	}
	for bid, b := range m.budgets {
		if b.ListID == id {
			delete(m.budgets, bid)
		}
	}
	for sid, s := range m.shares {
		if s.ListID == id {
			delete(m.shares, sid)
		}
	}
}

func (m *memStorage) DeleteList(_ context.Context, id domain.ListID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lists[id]; !ok {
		return false, nil
	}
	m.deleteListLocked(id)

	return true, nil
}

func (m *memStorage) CountListsByOwner(_ context.Context, ownerID domain.UserID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, l := range m.lists {
		if l.OwnerID == ownerID {
			count++
		}
	}

	return count, nil
}

func (m *memStorage) ItemCountsByList(_ context.Context, id domain.ListID) (storage.ItemCounts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var counts storage.ItemCounts
	for _, i := range m.items {
		if i.ListID == id {
			counts.Total++
			if i.IsPurchased {
				counts.Purchased++
			}
		}
	}

	return counts, nil
}

// --- items ---

func (m *memStorage) StoreItem(_ context.Context, item domain.Item) (*domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item.ID = domain.ItemID(m.id())
	m.items[item.ID] = item

	return &item, nil
}

func (m *memStorage) ItemByID(_ context.Context, id domain.ItemID) (*domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i, ok := m.items[id]; ok {
		return &i, nil
	}

	return nil, nil
}

func (m *memStorage) ItemsByList(_ context.Context,
	listID domain.ListID,
	purchased *bool) ([]domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []domain.Item
	for _, i := range m.items {
		if i.ListID != listID {
			continue
		}
		if purchased != nil && i.IsPurchased != *purchased {
			continue
		}
		res = append(res, i)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID > res[j].ID })

	return res, nil
}

func (m *memStorage) ItemsByCategory(_ context.Context, categoryID domain.CategoryID) ([]domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []domain.Item
	for _, i := range m.items {
		if i.CategoryID == categoryID {
			res = append(res, i)
		}
	}

	return res, nil
}

func (m *memStorage) ItemsByPriority(_ context.Context, priority domain.Priority) ([]domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []domain.Item
	for _, i := range m.items {
		if i.Priority == priority {
			res = append(res, i)
		}
	}

	return res, nil
}

func (m *memStorage) ItemsByOwner(_ context.Context, ownerID domain.UserID) ([]domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []domain.Item
	for _, i := range m.items {
		if l, ok := m.lists[i.ListID]; ok && l.OwnerID == ownerID {
			res = append(res, i)
		}
	}

	return res, nil
}

func (m *memStorage) UpdateItem(_ context.Context,
	id domain.ItemID,
	updates storage.ItemUpdates) (*domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	if updates.Name != nil {
		i.Name = *updates.Name
	}
	if updates.Description != nil {
		i.Description = *updates.Description
	}
	if updates.Quantity != nil {
		i.Quantity = *updates.Quantity
	}
	if updates.UnitOfMeasure != nil {
		i.UnitOfMeasure = *updates.UnitOfMeasure
	}
	if updates.EstimatedPrice != nil {
		i.EstimatedPrice = updates.EstimatedPrice
	}
	if updates.Priority != nil {
		i.Priority = *updates.Priority
	}
	if updates.Notes != nil {
		i.Notes = *updates.Notes
	}
	if updates.CategoryID != nil {
		i.CategoryID = *updates.CategoryID
	}
	// purchase triple written as a unit
	if updates.IsPurchased != nil {
		i.IsPurchased = *updates.IsPurchased
		if *updates.IsPurchased {
			i.ActualPrice = updates.ActualPrice
			i.PurchasedDate = updates.PurchasedDate
		} else {
			i.ActualPrice = nil
			i.PurchasedDate = nil
		}
	}
	m.items[id] = i

	return &i, nil
}

func (m *memStorage) DeleteItem(_ context.Context, id domain.ItemID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return false, nil
	}
	delete(m.items, id)

	return true, nil
}

func (m *memStorage) DeletePurchasedItems(_ context.Context, listID domain.ListID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for iid, i := range m.items {
		if i.ListID == listID && i.IsPurchased {
			delete(m.items, iid)
			count++
		}
	}

	return count, nil
}

func (m *memStorage) totalSpentLocked(listID domain.ListID) float64 {
	var total float64
	for _, i := range m.items {
		if i.ListID == listID && i.IsPurchased && i.ActualPrice != nil {
			total += *i.ActualPrice * i.Quantity
		}
	}

	return total
}

func (m *memStorage) TotalSpent(_ context.Context, listID domain.ListID) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.totalSpentLocked(listID), nil
}

func (m *memStorage) EstimatedTotal(_ context.Context, listID domain.ListID) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total float64
	for _, i := range m.items {
		if i.ListID == listID && i.EstimatedPrice != nil {
			total += *i.EstimatedPrice * i.Quantity
		}
	}

	return total, nil
}

// --- budgets ---

func (m *memStorage) StoreBudget(_ context.Context, budget domain.Budget) (*domain.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	budget.ID = domain.BudgetID(m.id())
	m.budgets[budget.ID] = budget

	return &budget, nil
}

func (m *memStorage) BudgetByID(_ context.Context, id domain.BudgetID) (*domain.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.budgets[id]; ok {
		return &b, nil
	}

	return nil, nil
}

func (m *memStorage) BudgetByList(_ context.Context, listID domain.ListID) (*domain.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.budgets {
		if b.ListID == listID {
			return &b, nil
		}
	}

	return nil, nil
}

func (m *memStorage) Budgets(_ context.Context, filter storage.BudgetFilter) ([]domain.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []domain.Budget
	for _, b := range m.budgets {
		if filter.ActiveOnly && !b.IsActive {
			continue
		}
		if filter.Period != nil && b.Period != *filter.Period {
			continue
		}
		if filter.Currency != nil && b.Currency != *filter.Currency {
			continue
		}
		if filter.OwnerID != 0 {
			l, ok := m.lists[b.ListID]
			if !ok || l.OwnerID != filter.OwnerID {
				continue
			}
		}
		res = append(res, b)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID > res[j].ID })

	return res, nil
}

func (m *memStorage) OverBudgetLists(context.Context) ([]domain.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []domain.Budget
	for _, b := range m.budgets {
		if b.IsActive && m.totalSpentLocked(b.ListID) > b.Limit {
			res = append(res, b)
		}
	}

	return res, nil
}

func (m *memStorage) UpdateBudget(_ context.Context,
	id domain.BudgetID,
	updates storage.BudgetUpdates) (*domain.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.budgets[id]
	if !ok {
		return nil, nil
	}
	if updates.Limit != nil {
		b.Limit = *updates.Limit
	}
	if updates.Currency != nil {
		b.Currency = *updates.Currency
	}
	if updates.Period != nil {
		b.Period = *updates.Period
	}
	if updates.IsActive != nil {
		b.IsActive = *updates.IsActive
	}
	m.budgets[id] = b

	return &b, nil
}

func (m *memStorage) DeleteBudget(_ context.Context, id domain.BudgetID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.budgets[id]; !ok {
		return false, nil
	}
	delete(m.budgets, id)

	return true, nil
}

// --- shares ---

func (m *memStorage) StoreShare(_ context.Context, share domain.ListShare) (*domain.ListShare, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	share.ID = domain.ShareID(m.id())
	m.shares[share.ID] = share

	return &share, nil
}

func (m *memStorage) ShareByID(_ context.Context, id domain.ShareID) (*domain.ListShare, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.shares[id]; ok {
		return &s, nil
	}

	return nil, nil
}

func (m *memStorage) ActiveShare(_ context.Context,
	listID domain.ListID,
	sharedToID domain.UserID) (*domain.ListShare, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.shares {
		if s.ListID == listID && s.SharedToID == sharedToID && s.IsActive {
			return &s, nil
		}
	}

	return nil, nil
}

func (m *memStorage) activeShares(keep func(domain.ListShare) bool) []domain.ListShare {
	var res []domain.ListShare
	for _, s := range m.shares {
		if s.IsActive && keep(s) {
			res = append(res, s)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID > res[j].ID })

	return res
}

func (m *memStorage) SharesByList(_ context.Context, listID domain.ListID) ([]domain.ListShare, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.activeShares(func(s domain.ListShare) bool { return s.ListID == listID }), nil
}

func (m *memStorage) SharesReceived(_ context.Context, userID domain.UserID) ([]domain.ListShare, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.activeShares(func(s domain.ListShare) bool { return s.SharedToID == userID }), nil
}

func (m *memStorage) SharesSent(_ context.Context, userID domain.UserID) ([]domain.ListShare, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.activeShares(func(s domain.ListShare) bool { return s.SharedByID == userID }), nil
}

func (m *memStorage) SharesByPermission(_ context.Context,
	permission domain.Permission) ([]domain.ListShare, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.activeShares(func(s domain.ListShare) bool { return s.Permission == permission }), nil
}

func (m *memStorage) UpdateShare(_ context.Context,
	id domain.ShareID,
	updates storage.ShareUpdates) (*domain.ListShare, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.shares[id]
	if !ok {
		return nil, nil
	}
	if updates.Permission != nil {
		s.Permission = *updates.Permission
	}
	if updates.IsActive != nil {
		s.IsActive = *updates.IsActive
	}
	if updates.ExpirationDate != nil {
		s.ExpirationDate = updates.ExpirationDate
	}
	m.shares[id] = s

	return &s, nil
}

func (m *memStorage) DeleteShare(_ context.Context, id domain.ShareID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.shares[id]; !ok {
		return false, nil
	}
	delete(m.shares, id)

	return true, nil
}

func (m *memStorage) DeactivateExpiredShares(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for sid, s := range m.shares {
		if s.IsActive && s.ExpirationDate != nil && s.ExpirationDate.Before(now) {
			s.IsActive = false
			m.shares[sid] = s
			count++
		}
	}

	return count, nil
}

func (m *memStorage) HasAccess(_ context.Context, listID domain.ListID, userID domain.UserID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.shares {
		if s.ListID == listID && s.SharedToID == userID && s.IsActive {
			return true, nil
		}
	}

	return false, nil
}

func (m *memStorage) HasEditAccess(_ context.Context,
	listID domain.ListID,
	userID domain.UserID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.shares {
		if s.ListID == listID && s.SharedToID == userID && s.IsActive && s.Permission.GrantsEdit() {
			return true, nil
		}
	}

	return false, nil
}

func (m *memStorage) CountListsSharedBy(_ context.Context, userID domain.UserID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[domain.ListID]bool)
	for _, s := range m.shares {
		if s.SharedByID == userID && s.IsActive {
			seen[s.ListID] = true
		}
	}

	return int64(len(seen)), nil
}

// --- sessions ---

func (m *memStorage) StoreSession(_ context.Context, session domain.UserSession) (*domain.UserSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session.ID = domain.SessionID(m.id())
	m.sessions[session.ID] = session

	return &session, nil
}

func (m *memStorage) SessionByID(_ context.Context, id domain.SessionID) (*domain.UserSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return &s, nil
	}

	return nil, nil
}

func (m *memStorage) ActiveSessionByToken(_ context.Context, token string) (*domain.UserSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.Token == token && s.IsActive {
			return &s, nil
		}
	}

	return nil, nil
}

func (m *memStorage) SessionsByUser(_ context.Context,
	userID domain.UserID,
	activeOnly bool) ([]domain.UserSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var res []domain.UserSession
	for _, s := range m.sessions {
		if s.UserID != userID {
			continue
		}
		if activeOnly && !s.IsActive {
			continue
		}
		res = append(res, s)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID > res[j].ID })

	return res, nil
}

func (m *memStorage) UpdateActiveSessionByToken(_ context.Context,
	token string,
	updates storage.SessionUpdates) (*domain.UserSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for sid, s := range m.sessions {
		if s.Token != token || !s.IsActive {
			continue
		}
		if updates.LastActivityTime != nil {
			s.LastActivityTime = *updates.LastActivityTime
		}
		if updates.LastModifiedDate != nil {
			s.LastModifiedDate = updates.LastModifiedDate
		}
		if updates.LogoutTime != nil {
			s.LogoutTime = updates.LogoutTime
		}
		if updates.IsActive != nil {
			s.IsActive = *updates.IsActive
		}
		m.sessions[sid] = s

		return &s, nil
	}

	return nil, nil
}

func (m *memStorage) DeactivateUserSessions(_ context.Context,
	userID domain.UserID,
	logoutTime time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for sid, s := range m.sessions {
		if s.UserID == userID && s.IsActive {
			s.IsActive = false
			lt := logoutTime
			s.LogoutTime = &lt
			m.sessions[sid] = s
			count++
		}
	}

	return count, nil
}

func (m *memStorage) DeactivateIdleSessions(_ context.Context,
	cutoff, logoutTime time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for sid, s := range m.sessions {
		if s.IsActive && s.LastActivityTime.Before(cutoff) {
			s.IsActive = false
			lt := logoutTime
			s.LogoutTime = &lt
			m.sessions[sid] = s
			count++
		}
	}

	return count, nil
}

func (m *memStorage) CountActiveSessionsByUser(_ context.Context, userID domain.UserID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, s := range m.sessions {
		if s.UserID == userID && s.IsActive {
			count++
		}
	}

	return count, nil
}

func (m *memStorage) UserAgentStats(context.Context) ([]domain.UserAgentStat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byAgent := make(map[string]int64)
	for _, s := range m.sessions {
		byAgent[s.UserAgent]++
	}
	res := make([]domain.UserAgentStat, 0, len(byAgent))
	for agent, count := range byAgent {
		res = append(res, domain.UserAgentStat{UserAgent: agent, Count: count})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Count > res[j].Count })

	return res, nil
}

var _ storage.Storage = (*memStorage)(nil)
