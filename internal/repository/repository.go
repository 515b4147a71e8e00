// Package repository implements the business operations on contacts on top
// of the key-value store: create, point lookup, filtered listing, partial
// update, and delete. It enforces the one rule the store cannot, namely
// that no two contacts share an email address.
package repository

import (
	"context"
	"errors"
	"sort"
	"strings"

	"gitlab.com/dirk.krummacker/contacts-api/internal/logger"
	"gitlab.com/dirk.krummacker/contacts-api/internal/model"
	"gitlab.com/dirk.krummacker/contacts-api/internal/store"
)

// ErrDuplicateEmail is returned by Create and Update when another contact
// already holds the requested email address.
var ErrDuplicateEmail = errors.New("email already exists")

// scanPageSize is the number of records requested per backend scan page.
const scanPageSize = 100

// Repository runs the contact operations against a Store. Missing contacts
// are reported as nil results, never as errors; errors mean the backend
// itself failed.
type Repository struct {
	store store.Store
	log   *logger.Logger
}

// New creates a repository on top of the given store.
func New(s store.Store, baseLog *logger.Logger) *Repository {
	return &Repository{store: s, log: baseLog.With("component", "repository")}
}

// Create stores a new contact with a freshly generated id and both
// timestamps set to now. It fails with ErrDuplicateEmail if any existing
// contact holds the same email address.
//
// The uniqueness check is a scan followed by an unconditional put, with no
// transaction spanning the two. Two concurrent creates with the same email
// can therefore both pass the check and both be stored. This window is an
// accepted limitation of the storage contract, not something this layer
// tries to lock around.
func (r *Repository) Create(ctx context.Context, data model.ContactCreate) (*model.Contact, error) {
	contact := model.NewContact(data)
	taken, err := r.existsEmail(ctx, contact.Email, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicateEmail
	}
	// The id is fresh and unique, so an unconditional overwrite is safe.
	if err := r.store.Put(ctx, contact); err != nil {
		return nil, err
	}
	r.log.Info("contact created", "id", contact.Id, "tag", contact.Tag)
	return &contact, nil
}

// Get returns the contact with the given id, or nil if it does not exist.
func (r *Repository) Get(ctx context.Context, id string) (*model.Contact, error) {
	return r.store.Get(ctx, id)
}

// List returns all contacts, or only those with the given tag if tag is not
// empty. The result is sorted by name ascending, compared case-insensitively;
// contacts whose lowercased names are equal are ordered by id ascending so
// that the order is deterministic.
func (r *Repository) List(ctx context.Context, tag string) ([]model.Contact, error) {
	var contacts []model.Contact
	if tag != "" {
		var err error
		contacts, err = r.store.QueryTag(ctx, tag)
		if err != nil {
			return nil, err
		}
	} else {
		// A backend cursor may hand out the same record twice over a full
		// iteration, so accumulation dedupes by id.
		seen := make(map[string]bool)
		var cursor uint64
		for {
			page, next, err := r.store.ScanPage(ctx, cursor, scanPageSize)
			if err != nil {
				return nil, err
			}
			for _, contact := range page {
				if !seen[contact.Id] {
					seen[contact.Id] = true
					contacts = append(contacts, contact)
				}
			}
			if next == 0 {
				break
			}
			cursor = next
		}
	}
	sort.Slice(contacts, func(i, j int) bool {
		a := strings.ToLower(contacts[i].Name)
		b := strings.ToLower(contacts[j].Name)
		if a != b {
			return a < b
		}
		return contacts[i].Id < contacts[j].Id
	})
	return contacts, nil
}

// Update applies the non-nil fields of data to the contact with the given
// id and refreshes its updated_at timestamp. It returns nil if the contact
// does not exist, and ErrDuplicateEmail if the effective email is already
// held by a different contact. The same check-then-put race window as in
// Create applies.
func (r *Repository) Update(ctx context.Context, id string, data model.ContactUpdate) (*model.Contact, error) {
	existing, err := r.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}
	newEmail := existing.Email
	if data.Email != nil {
		newEmail = *data.Email
	}
	taken, err := r.existsEmail(ctx, newEmail, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicateEmail
	}
	updated := *existing
	if data.Name != nil {
		updated.Name = *data.Name
	}
	if data.Email != nil {
		updated.Email = *data.Email
	}
	if data.Tag != nil {
		updated.Tag = *data.Tag
	}
	updated.UpdatedAt = model.NowUTC()
	if err := r.store.Put(ctx, updated); err != nil {
		return nil, err
	}
	r.log.Info("contact updated", "id", id)
	return &updated, nil
}

// Delete removes the contact with the given id. It returns true if a
// contact was removed and false if none existed, and never fails for a
// missing id.
func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	removed, err := r.store.DeleteReturning(ctx, id)
	if err != nil {
		return false, err
	}
	if removed == nil {
		return false, nil
	}
	r.log.Info("contact deleted", "id", id)
	return true, nil
}

// existsEmail reports whether any contact other than excludeID holds the
// given email, comparing the stored string exactly. It scans the whole
// backend page by page and stops at the first match, so each call costs one
// backend round trip per page in the worst case.
func (r *Repository) existsEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	var cursor uint64
	for {
		page, next, err := r.store.ScanPage(ctx, cursor, scanPageSize)
		if err != nil {
			return false, err
		}
		for _, contact := range page {
			if contact.Email != email {
				continue
			}
			if excludeID != "" && contact.Id == excludeID {
				continue
			}
			return true, nil
		}
		if next == 0 {
			return false, nil
		}
		cursor = next
	}
}
