// Package sqlite implements the per-project metadata store. Each project
// folder holds one metadata.db file with the project attribute record and
// its collections, features, and datasets.
package sqlite

// Schema DDL. Executed with CREATE TABLE IF NOT EXISTS so a store can be
// reopened without clobbering prior writes.
const (
	createProject = `CREATE TABLE IF NOT EXISTS project (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    display_name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    metadata TEXT NOT NULL DEFAULT '{}',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createCollections = `CREATE TABLE IF NOT EXISTS collections (
    name TEXT PRIMARY KEY,
    display_name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    metadata TEXT NOT NULL DEFAULT '{}',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createFeatures = `CREATE TABLE IF NOT EXISTS features (
    feature_id TEXT PRIMARY KEY,
    collection TEXT NOT NULL,
    display_name TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    geom_type TEXT,
    geom_coords TEXT,
    service TEXT,
    metadata TEXT NOT NULL DEFAULT '{}',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    FOREIGN KEY (collection) REFERENCES collections(name) ON DELETE CASCADE
);`

	createDatasets = `CREATE TABLE IF NOT EXISTS datasets (
    dataset_id TEXT PRIMARY KEY,
    feature_id TEXT NOT NULL,
    source TEXT,
    unit TEXT,
    data_values TEXT,
    status TEXT NOT NULL,
    metadata TEXT NOT NULL DEFAULT '{}',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    FOREIGN KEY (feature_id) REFERENCES features(feature_id) ON DELETE CASCADE
);`
)

// schemaAll lists the DDL statements in dependency order.
var schemaAll = []string{
	createProject,
	createCollections,
	createFeatures,
	createDatasets,
}
