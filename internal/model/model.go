package model

import (
	"time"

	"github.com/google/uuid"
)

// Valid values for the contact's tag field.
const (
	TagFriend = "friend"
	TagWork   = "work"
	TagFamily = "family"
	TagOther  = "other"
)

// Tags lists all valid tag values.
var Tags = []string{TagFriend, TagWork, TagFamily, TagOther}

// Contact is the data structure for a person that we know. The id is assigned
// by the server at creation time and never changes. The timestamps are stored
// as ISO-8601 UTC strings with second precision, e.g. "2024-05-17T09:30:00Z".
type Contact struct {
	Id        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Tag       string `json:"tag"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ContactCreate is the request body for creating a contact. A missing tag
// defaults to "other".
type ContactCreate struct {
	Name  string `json:"name"  binding:"required,min=1,max=120"`
	Email string `json:"email" binding:"required,email"`
	Tag   string `json:"tag"   binding:"omitempty,oneof=friend work family other"`
}

// ContactUpdate is the request body for partially updating a contact. All
// fields are pointers so that a field that is absent from the JSON can be
// told apart from a field that is present but empty. Only non-nil fields
// are applied to the stored contact.
type ContactUpdate struct {
	Name  *string `json:"name"  binding:"omitempty,min=1,max=120"`
	Email *string `json:"email" binding:"omitempty,email"`
	Tag   *string `json:"tag"   binding:"omitempty,oneof=friend work family other"`
}

// NewContact builds a contact from the create payload with a freshly
// generated id and both timestamps set to the current UTC time.
func NewContact(data ContactCreate) Contact {
	tag := data.Tag
	if tag == "" {
		tag = TagOther
	}
	now := NowUTC()
	return Contact{
		Id:        uuid.NewString(),
		Name:      data.Name,
		Email:     data.Email,
		Tag:       tag,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NowUTC returns the current time as an ISO-8601 UTC string with second
// precision and a trailing 'Z'.
func NowUTC() string {
	return time.Now().UTC().Truncate(time.Second).Format(time.RFC3339)
}
