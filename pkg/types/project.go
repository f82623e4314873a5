package types

import "time"

// Project is a top-level namespace owning one metadata store and a folder
// of associated data. Name and Folder live in the registry index; the
// remaining attributes live in the project's own store.
type Project struct {
	Name        string         `json:"name" yaml:"name"`
	DisplayName string         `json:"display_name" yaml:"display_name"`
	Description string         `json:"description" yaml:"description"`
	Metadata    map[string]any `json:"metadata" yaml:"metadata"`
	Folder      string         `json:"folder" yaml:"folder"`
	CreatedAt   time.Time      `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" yaml:"updated_at"`
}

// ProjectAttrs is the attribute record stored inside a project's metadata
// store. It deliberately excludes Name and Folder, which belong to the
// registry index.
type ProjectAttrs struct {
	DisplayName string         `json:"display_name"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// DefaultProjectName is the fallback project the registry re-creates when
// the last project is deleted.
const DefaultProjectName = "default"
