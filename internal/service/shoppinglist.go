package service

import (
	"context"
	"fmt"
	"listkeeper/pkg/domain"
	"listkeeper/pkg/serrors"
	"listkeeper/pkg/storage"
	"time"
)

// Lists exposes shopping list lifecycle operations, templates and the
// accessible-lists union.
type Lists interface {
	Create(ctx context.Context, ownerID domain.UserID, params CreateListParams) (*domain.ShoppingListView, error)
	GetByID(ctx context.Context, id domain.ListID) (*domain.ShoppingListView, error)
	ListByOwner(ctx context.Context, ownerID domain.UserID) ([]domain.ShoppingList, error)
	ListByOwnerAndStatus(ctx context.Context,
		ownerID domain.UserID,
		status domain.ListStatus) ([]domain.ShoppingList, error)
	TemplatesByOwner(ctx context.Context, ownerID domain.UserID) ([]domain.ShoppingList, error)
	SearchByName(ctx context.Context, ownerID domain.UserID, name string) ([]domain.ShoppingList, error)
	ExistsByNameAndOwner(ctx context.Context, ownerID domain.UserID, name string) (bool, error)
	AccessibleLists(ctx context.Context, userID domain.UserID) ([]domain.ShoppingListView, error)
	Update(ctx context.Context, id domain.ListID, updates storage.ListUpdates) (*domain.ShoppingListView, error)
	UpdateStatus(ctx context.Context, id domain.ListID, status domain.ListStatus) (*domain.ShoppingListView, error)
	UpdatePriority(ctx context.Context, id domain.ListID, priority domain.Priority) (*domain.ShoppingListView, error)
	Delete(ctx context.Context, id domain.ListID) error
	Duplicate(ctx context.Context, id domain.ListID, newName string) (*domain.ShoppingListView, error)
	CreateFromTemplate(ctx context.Context,
		templateID domain.ListID,
		newName string) (*domain.ShoppingListView, error)
}

// CreateListParams carries the caller-supplied fields of a new shopping
// list. Priority defaults to MEDIUM when left empty.
type CreateListParams struct {
	Name        string
	Description string
	Priority    domain.Priority
	IsTemplate  bool
}

type lists struct {
	storage storage.Storage
}

// NewLists creates a Lists service backed by the provided storage.
func NewLists(storage storage.Storage) Lists {
	return &lists{storage: storage}
}

// Create adds a list for the owner. List names are unique per owner; new
// lists start active.
func (s lists) Create(ctx context.Context,
	ownerID domain.UserID,
	params CreateListParams) (*domain.ShoppingListView, error) {
	var view *domain.ShoppingListView
	if err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		owner, err := tx.UserByID(ctx, ownerID)
		if err != nil {
			return fmt.Errorf("could not get owner: %w", err)
		}
		if owner == nil {
			return serrors.With(serrors.ErrNotFound, "user not found")
		}

		exists, err := tx.ListNameExists(ctx, ownerID, params.Name, 0)
		if err != nil {
			return fmt.Errorf("could not check list name: %w", err)
		}
		if exists {
			return serrors.With(serrors.ErrConflict, "list with this name already exists for this user")
		}

		priority := params.Priority
		if priority == "" {
			priority = domain.PriorityMedium
		}

		now := time.Now()
		list, err := tx.StoreList(ctx, domain.ShoppingList{
			Name:             params.Name,
			Description:      params.Description,
			CreationDate:     now,
			LastModifiedDate: now,
			Status:           domain.ListStatusActive,
			IsTemplate:       params.IsTemplate,
			Priority:         priority,
			OwnerID:          ownerID,
		})
		if err != nil {
			return fmt.Errorf("could not store list: %w", err)
		}

		view = &domain.ShoppingListView{ShoppingList: *list, OwnerName: owner.FullName()}

		return nil
	}); err != nil {
		return nil, fmt.Errorf("could not create list: %w", err)
	}

	return view, nil
}

// GetByID fetches a list with its owner name and live item counts.
func (s lists) GetByID(ctx context.Context, id domain.ListID) (*domain.ShoppingListView, error) {
	list, err := s.storage.ListByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not get list: %w", err)
	}
	if list == nil {
		return nil, serrors.With(serrors.ErrNotFound, "shopping list not found")
	}

	return s.view(ctx, s.storage, list)
}

// ListByOwner returns the owner's lists, most recently created first.
func (s lists) ListByOwner(ctx context.Context, ownerID domain.UserID) ([]domain.ShoppingList, error) {
	res, err := s.storage.ListsByOwner(ctx, ownerID, storage.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("could not list lists: %w", err)
	}

	return res, nil
}

// ListByOwnerAndStatus returns the owner's lists in the given state.
func (s lists) ListByOwnerAndStatus(ctx context.Context,
	ownerID domain.UserID,
	status domain.ListStatus) ([]domain.ShoppingList, error) {
	res, err := s.storage.ListsByOwner(ctx, ownerID, storage.ListFilter{Status: &status})
	if err != nil {
		return nil, fmt.Errorf("could not list lists: %w", err)
	}

	return res, nil
}

// TemplatesByOwner returns the owner's template lists.
func (s lists) TemplatesByOwner(ctx context.Context, ownerID domain.UserID) ([]domain.ShoppingList, error) {
	res, err := s.storage.ListsByOwner(ctx, ownerID, storage.ListFilter{TemplatesOnly: true})
	if err != nil {
		return nil, fmt.Errorf("could not list templates: %w", err)
	}

	return res, nil
}

// SearchByName returns the owner's lists whose name contains the fragment,
// case-insensitively.
func (s lists) SearchByName(ctx context.Context,
	ownerID domain.UserID,
	name string) ([]domain.ShoppingList, error) {
	res, err := s.storage.ListsByOwner(ctx, ownerID, storage.ListFilter{NameContains: name})
	if err != nil {
		return nil, fmt.Errorf("could not search lists: %w", err)
	}

	return res, nil
}

// ExistsByNameAndOwner reports whether the owner already has a list with the
// given name.
func (s lists) ExistsByNameAndOwner(ctx context.Context, ownerID domain.UserID, name string) (bool, error) {
	exists, err := s.storage.ListNameExists(ctx, ownerID, name, 0)
	if err != nil {
		return false, fmt.Errorf("could not check list name: %w", err)
	}

	return exists, nil
}

// AccessibleLists returns the distinct union of lists the user owns and
// lists actively shared to them, most recently created first, each with live
// item counts.
func (s lists) AccessibleLists(ctx context.Context, userID domain.UserID) ([]domain.ShoppingListView, error) {
	res, err := s.storage.AccessibleLists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("could not get accessible lists: %w", err)
	}

	views := make([]domain.ShoppingListView, 0, len(res))
	for i := range res {
		view, err := s.view(ctx, s.storage, &res[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}

	return views, nil
}

// Update applies a partial field set and bumps the last-modified date.
// Renaming to a name the owner already uses on another list conflicts.
func (s lists) Update(ctx context.Context,
	id domain.ListID,
	updates storage.ListUpdates) (*domain.ShoppingListView, error) {
	var view *domain.ShoppingListView
	if err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		list, err := tx.ListByID(ctx, id)
		if err != nil {
			return fmt.Errorf("could not get list: %w", err)
		}
		if list == nil {
			return serrors.With(serrors.ErrNotFound, "shopping list not found")
		}

		if updates.Name != nil {
			exists, err := tx.ListNameExists(ctx, list.OwnerID, *updates.Name, id)
			if err != nil {
				return fmt.Errorf("could not check list name: %w", err)
			}
			if exists {
				return serrors.With(serrors.ErrConflict, "list with this name already exists for this user")
			}
		}

		now := time.Now()
		updates.LastModifiedDate = &now

		updated, err := tx.UpdateList(ctx, id, updates)
		if err != nil {
			return fmt.Errorf("could not update list: %w", err)
		}
		if updated == nil {
			return serrors.With(serrors.ErrNotFound, "shopping list not found")
		}

		view, err = s.view(ctx, tx, updated)

		return err
	}); err != nil {
		return nil, fmt.Errorf("could not update list: %w", err)
	}

	return view, nil
}

// UpdateStatus moves the list between the active and archived states.
func (s lists) UpdateStatus(ctx context.Context,
	id domain.ListID,
	status domain.ListStatus) (*domain.ShoppingListView, error) {
	return s.Update(ctx, id, storage.ListUpdates{Status: &status})
}

// UpdatePriority changes the list's priority.
func (s lists) UpdatePriority(ctx context.Context,
	id domain.ListID,
	priority domain.Priority) (*domain.ShoppingListView, error) {
	return s.Update(ctx, id, storage.ListUpdates{Priority: &priority})
}

// Delete removes the list. Its items, budget and shares go with it.
func (s lists) Delete(ctx context.Context, id domain.ListID) error {
	if err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		deleted, err := tx.DeleteList(ctx, id)
		if err != nil {
			return fmt.Errorf("could not delete list: %w", err)
		}
		if !deleted {
			return serrors.With(serrors.ErrNotFound, "shopping list not found")
		}

		return nil
	}); err != nil {
		return fmt.Errorf("could not delete list: %w", err)
	}

	return nil
}

// Duplicate creates a fresh active, non-template copy of the list under the
// new name. Items, the budget and shares are not copied.
func (s lists) Duplicate(ctx context.Context, id domain.ListID, newName string) (*domain.ShoppingListView, error) {
	var view *domain.ShoppingListView
	if err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		src, err := tx.ListByID(ctx, id)
		if err != nil {
			return fmt.Errorf("could not get list: %w", err)
		}
		if src == nil {
			return serrors.With(serrors.ErrNotFound, "shopping list not found")
		}

		view, err = s.copy(ctx, tx, src, newName)

		return err
	}); err != nil {
		return nil, fmt.Errorf("could not duplicate list: %w", err)
	}

	return view, nil
}

// CreateFromTemplate instantiates a template list under the new name. Like
// Duplicate it copies only the list shell, never the template's items; the
// result is an ordinary active list, not a template.
func (s lists) CreateFromTemplate(ctx context.Context,
	templateID domain.ListID,
	newName string) (*domain.ShoppingListView, error) {
	var view *domain.ShoppingListView
	if err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		src, err := tx.ListByID(ctx, templateID)
		if err != nil {
			return fmt.Errorf("could not get template: %w", err)
		}
		if src == nil {
			return serrors.With(serrors.ErrNotFound, "shopping list not found")
		}
		if !src.IsTemplate {
			return serrors.With(serrors.ErrValidation, "specified list is not a template")
		}

		view, err = s.copy(ctx, tx, src, newName)

		return err
	}); err != nil {
		return nil, fmt.Errorf("could not create list from template: %w", err)
	}

	return view, nil
}

// copy stores a fresh active, non-template list cloned from src. Items are
// never carried over.
func (s lists) copy(ctx context.Context,
	tx storage.AllStorage,
	src *domain.ShoppingList,
	newName string) (*domain.ShoppingListView, error) {
	exists, err := tx.ListNameExists(ctx, src.OwnerID, newName, 0)
	if err != nil {
		return nil, fmt.Errorf("could not check list name: %w", err)
	}
	if exists {
		return nil, serrors.With(serrors.ErrConflict, "list with this name already exists for this user")
	}

	now := time.Now()
	list, err := tx.StoreList(ctx, domain.ShoppingList{
		Name:             newName,
		Description:      src.Description,
		CreationDate:     now,
		LastModifiedDate: now,
		Status:           domain.ListStatusActive,
		Priority:         src.Priority,
		OwnerID:          src.OwnerID,
	})
	if err != nil {
		return nil, fmt.Errorf("could not store list: %w", err)
	}

	return s.view(ctx, tx, list)
}

func (s lists) view(ctx context.Context,
	st storage.AllStorage,
	list *domain.ShoppingList) (*domain.ShoppingListView, error) {
	owner, err := st.UserByID(ctx, list.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("could not get owner: %w", err)
	}

	counts, err := st.ItemCountsByList(ctx, list.ID)
	if err != nil {
		return nil, fmt.Errorf("could not count items: %w", err)
	}

	view := &domain.ShoppingListView{
		ShoppingList:   *list,
		TotalItems:     counts.Total,
		PurchasedItems: counts.Purchased,
	}
	if owner != nil {
		view.OwnerName = owner.FullName()
	}

	return view, nil
}
