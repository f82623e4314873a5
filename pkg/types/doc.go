// Package types defines the entity types, configuration, and standard
// errors for the quest metadata catalog: projects, collections, features,
// and datasets, plus the store contract the catalog persists through.
package types
