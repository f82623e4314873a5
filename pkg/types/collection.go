package types

import "time"

// Collection groups features inside a project. Names are unique within a
// project and lower-cased on creation.
type Collection struct {
	Name        string         `json:"name"`
	DisplayName string         `json:"display_name"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Validate checks that the collection is well-formed for persistence.
func (c *Collection) Validate() error {
	if c.Name == "" {
		return ErrInvalidData
	}
	return nil
}
