package model

import "time"

// Note is the primary editable entity. Content is an opaque rich-text payload;
// the data layer never interprets it. WorkspaceID and Subcategory are weak
// references: an empty WorkspaceID means "uncategorized", and Subcategory is a
// free-text name with no referential integrity.
type Note struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	WorkspaceID string     `json:"workspace_id"`
	Subcategory string     `json:"subcategory"`
	Color       string     `json:"color"`
	Pinned      bool       `json:"pinned"`
	Starred     bool       `json:"starred"`
	Deleted     bool       `json:"deleted"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
	Tags        []string   `json:"tags"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Clone returns a deep copy. Tags is the only reference field.
func (n Note) Clone() Note {
	c := n
	if n.Tags != nil {
		c.Tags = append([]string(nil), n.Tags...)
	}
	if n.DeletedAt != nil {
		t := *n.DeletedAt
		c.DeletedAt = &t
	}
	return c
}
