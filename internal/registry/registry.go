// Package registry maintains the persisted index of projects and the
// active-project pointer. The index is a YAML file under the projects
// root; each registered project owns a folder with its own metadata
// store. Mutations are serialized through a single in-process mutex; the
// index read-modify-write is not atomic across processes.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/quest/internal/sqlite"
	"github.com/mesh-intelligence/quest/pkg/types"
)

// IndexFile is the registry index file name under the projects root.
const IndexFile = "project_index.yml"

// Registry is the process-wide project index. All public methods are
// safe for concurrent use within one process.
type Registry struct {
	mu   sync.Mutex
	root string
	log  *zap.Logger
}

// New returns a Registry rooted at the given projects directory. A nil
// logger is replaced with a no-op logger.
func New(root string, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{root: root, log: log}
}

// Root returns the projects root directory.
func (r *Registry) Root() string {
	return r.root
}

// CreateOptions carries the optional attributes for Create.
type CreateOptions struct {
	DisplayName string
	Description string
	Metadata    map[string]any
	Folder      string
	Activate    bool
}

// index is the on-disk shape of project_index.yml.
type index struct {
	ActiveProject string                `yaml:"active_project"`
	Projects      map[string]indexEntry `yaml:"projects"`
}

type indexEntry struct {
	Folder string `yaml:"folder"`
}

// Projects returns the sorted names of all registered projects.
func (r *Registry) Projects() ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, err := r.loadIndex()
	if err != nil {
		return nil, err
	}
	return projectNames(idx), nil
}

// ProjectRecords returns the full Project record for every registered
// project, with folders resolved to absolute paths.
func (r *Registry) ProjectRecords() (map[string]types.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, err := r.loadIndex()
	if err != nil {
		return nil, err
	}

	records := make(map[string]types.Project, len(idx.Projects))
	for name := range idx.Projects {
		p, err := r.loadProjectLocked(idx, name)
		if err != nil {
			return nil, err
		}
		records[name] = p
	}
	return records, nil
}

// Project returns the full record for one project.
func (r *Registry) Project(name string) (types.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, err := r.loadIndex()
	if err != nil {
		return types.Project{}, err
	}
	return r.loadProjectLocked(idx, strings.ToLower(name))
}

// Create creates a new project: allocates its folder under the projects
// root, initializes a fresh metadata store with the attribute record, and
// only then registers the name in the index, so a failed store init never
// leaves a dangling index entry. Returns ErrDuplicateName if the
// lower-cased name is already registered.
func (r *Registry) Create(name string, opts CreateOptions) (types.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createLocked(name, opts)
}

func (r *Registry) createLocked(name string, opts CreateOptions) (types.Project, error) {
	name = strings.ToLower(name)

	idx, err := r.loadIndex()
	if err != nil {
		return types.Project{}, err
	}
	if _, ok := idx.Projects[name]; ok {
		return types.Project{}, fmt.Errorf("%w: project %s", types.ErrDuplicateName, name)
	}

	folder := opts.Folder
	if folder == "" {
		folder = name
	}
	path := r.resolveFolder(folder)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return types.Project{}, fmt.Errorf("create project folder: %w", err)
	}

	displayName := opts.DisplayName
	if displayName == "" {
		displayName = name
	}
	metadata := opts.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	store, err := sqlite.OpenProject(path)
	if err != nil {
		return types.Project{}, fmt.Errorf("init project store: %w", err)
	}
	initErr := store.InitProject(types.ProjectAttrs{
		DisplayName: displayName,
		Description: opts.Description,
		Metadata:    metadata,
	})
	if closeErr := store.Close(); initErr == nil {
		initErr = closeErr
	}
	if initErr != nil {
		return types.Project{}, fmt.Errorf("init project record: %w", initErr)
	}

	if idx.Projects == nil {
		idx.Projects = map[string]indexEntry{}
	}
	idx.Projects[name] = indexEntry{Folder: folder}
	if opts.Activate {
		idx.ActiveProject = name
	}
	if err := r.writeIndex(idx); err != nil {
		return types.Project{}, err
	}

	r.log.Info("created project",
		zap.String("project", name),
		zap.String("folder", path))

	return r.loadProjectLocked(idx, name)
}

// Register adds a pre-existing project folder to the index. The folder
// must exist and hold an openable metadata store with a project record;
// otherwise the partial index entry is rolled back and ErrInvalidProject
// is returned.
func (r *Registry) Register(name, path string, activate bool) (types.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name = strings.ToLower(name)

	idx, err := r.loadIndex()
	if err != nil {
		return types.Project{}, err
	}
	if _, ok := idx.Projects[name]; ok {
		return types.Project{}, fmt.Errorf("%w: project %s", types.ErrDuplicateName, name)
	}
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		return types.Project{}, fmt.Errorf("%w: path does not exist: %s", types.ErrInvalidProject, path)
	}

	if idx.Projects == nil {
		idx.Projects = map[string]indexEntry{}
	}
	idx.Projects[name] = indexEntry{Folder: path}
	if err := r.writeIndex(idx); err != nil {
		return types.Project{}, err
	}

	project, err := r.loadProjectLocked(idx, name)
	if err != nil {
		// Roll the entry back before propagating; the index must not
		// keep a project whose store cannot be opened.
		delete(idx.Projects, name)
		if writeErr := r.writeIndex(idx); writeErr != nil {
			return types.Project{}, writeErr
		}
		return types.Project{}, fmt.Errorf("%w: %s: %v", types.ErrInvalidProject, path, err)
	}

	if activate {
		idx.ActiveProject = name
		if err := r.writeIndex(idx); err != nil {
			return types.Project{}, err
		}
	}

	r.log.Info("registered existing project",
		zap.String("project", name),
		zap.String("folder", path))

	return project, nil
}

// Delete removes a project's folder contents and its index entry, then
// returns the remaining project names. A missing name is logged and
// treated as a no-op, since cleanup code may call Delete defensively.
func (r *Registry) Delete(name string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeLocked(name, true)
}

// Unregister removes a project from the index without touching its
// folder on disk. Active-pointer policy matches Delete.
func (r *Registry) Unregister(name string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeLocked(name, false)
}

func (r *Registry) removeLocked(name string, deleteFolder bool) ([]string, error) {
	name = strings.ToLower(name)

	idx, err := r.loadIndex()
	if err != nil {
		return nil, err
	}

	entry, ok := idx.Projects[name]
	if !ok {
		// Cleanup code may race on delete; a missing name is tolerated.
		r.log.Warn("project not found", zap.String("project", name))
		return projectNames(idx), nil
	}

	if deleteFolder {
		path := r.resolveFolder(entry.Folder)
		if _, err := os.Stat(path); err == nil {
			r.log.Info("deleting all data under path", zap.String("path", path))
			if err := os.RemoveAll(path); err != nil {
				return nil, fmt.Errorf("delete project folder: %w", err)
			}
		}
	}

	r.log.Info("removing project from index", zap.String("project", name))
	delete(idx.Projects, name)
	if err := r.writeIndex(idx); err != nil {
		return nil, err
	}

	if idx.ActiveProject == name {
		if err := r.reassignActiveLocked(&idx, name); err != nil {
			return nil, err
		}
	} else if len(idx.Projects) == 0 {
		// Deleting the last project always re-seeds default, active or not.
		if _, err := r.createLocked(types.DefaultProjectName, CreateOptions{Activate: true}); err != nil {
			return nil, err
		}
		idx, err = r.loadIndex()
		if err != nil {
			return nil, err
		}
	}

	return projectNames(idx), nil
}

// reassignActiveLocked repoints the active pointer after its project was
// removed: prefer default, else the first remaining name, else re-seed a
// brand-new default project.
func (r *Registry) reassignActiveLocked(idx *index, removed string) error {
	names := projectNames(*idx)

	var active string
	if _, ok := idx.Projects[types.DefaultProjectName]; ok {
		active = types.DefaultProjectName
	} else if len(names) > 0 {
		active = names[0]
	}

	if active == "" {
		r.log.Info("all projects have been removed, re-adding default project")
		if _, err := r.createLocked(types.DefaultProjectName, CreateOptions{Activate: true}); err != nil {
			return err
		}
		fresh, err := r.loadIndex()
		if err != nil {
			return err
		}
		*idx = fresh
		return nil
	}

	r.log.Info("changing active project",
		zap.String("from", removed),
		zap.String("to", active))
	idx.ActiveProject = active
	return r.writeIndex(*idx)
}

// Active returns the active project name. An index without a pointer
// falls back to the default project name.
func (r *Registry) Active() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, err := r.loadIndex()
	if err != nil {
		return "", err
	}
	if idx.ActiveProject == "" {
		return types.DefaultProjectName, nil
	}
	return idx.ActiveProject, nil
}

// SetActive persists the active-project pointer. Returns
// ErrUnknownProject if the name is not registered.
func (r *Registry) SetActive(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name = strings.ToLower(name)

	idx, err := r.loadIndex()
	if err != nil {
		return err
	}
	if _, ok := idx.Projects[name]; !ok {
		return fmt.Errorf("%w: %s", types.ErrUnknownProject, name)
	}
	idx.ActiveProject = name
	return r.writeIndex(idx)
}

// EnsureDefault seeds the default project when the registry is empty, so
// there is always at least one addressable project.
func (r *Registry) EnsureDefault() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, err := r.loadIndex()
	if err != nil {
		return err
	}
	if len(idx.Projects) > 0 {
		return nil
	}
	_, err = r.createLocked(types.DefaultProjectName, CreateOptions{Activate: true})
	return err
}

// OpenStore opens the metadata store of a registered project. The caller
// owns the returned handle and must close it.
func (r *Registry) OpenStore(name string) (*sqlite.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name = strings.ToLower(name)

	idx, err := r.loadIndex()
	if err != nil {
		return nil, err
	}
	entry, ok := idx.Projects[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrUnknownProject, name)
	}

	path := r.resolveFolder(entry.Folder)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("ensure project folder: %w", err)
	}
	return sqlite.OpenProject(path)
}

// loadProjectLocked reads one project's attribute record and merges it
// with its index entry. The store is opened and closed within the call.
func (r *Registry) loadProjectLocked(idx index, name string) (types.Project, error) {
	entry, ok := idx.Projects[name]
	if !ok {
		return types.Project{}, fmt.Errorf("%w: %s", types.ErrUnknownProject, name)
	}

	path := r.resolveFolder(entry.Folder)
	store, err := sqlite.OpenProject(path)
	if err != nil {
		return types.Project{}, err
	}
	defer store.Close()

	attrs, err := store.ProjectAttrs()
	if err != nil {
		return types.Project{}, err
	}

	return types.Project{
		Name:        name,
		DisplayName: attrs.DisplayName,
		Description: attrs.Description,
		Metadata:    attrs.Metadata,
		Folder:      path,
		CreatedAt:   attrs.CreatedAt,
		UpdatedAt:   attrs.UpdatedAt,
	}, nil
}

// resolveFolder resolves a project folder against the projects root.
// Absolute folders are kept as-is.
func (r *Registry) resolveFolder(folder string) string {
	if filepath.IsAbs(folder) {
		return folder
	}
	return filepath.Join(r.root, folder)
}

// loadIndex reads project_index.yml. A missing file yields an empty
// index rather than an error.
func (r *Registry) loadIndex() (index, error) {
	data, err := os.ReadFile(filepath.Join(r.root, IndexFile))
	if err != nil {
		if os.IsNotExist(err) {
			return index{Projects: map[string]indexEntry{}}, nil
		}
		return index{}, fmt.Errorf("read project index: %w", err)
	}

	var idx index
	if err := yaml.Unmarshal(data, &idx); err != nil {
		return index{}, fmt.Errorf("parse project index: %w", err)
	}
	if idx.Projects == nil {
		idx.Projects = map[string]indexEntry{}
	}
	return idx, nil
}

// writeIndex rewrites project_index.yml in full.
func (r *Registry) writeIndex(idx index) error {
	if err := os.MkdirAll(r.root, 0o755); err != nil {
		return fmt.Errorf("ensure projects root: %w", err)
	}

	data, err := yaml.Marshal(idx)
	if err != nil {
		return fmt.Errorf("encode project index: %w", err)
	}
	if err := os.WriteFile(filepath.Join(r.root, IndexFile), data, 0o644); err != nil {
		return fmt.Errorf("write project index: %w", err)
	}
	return nil
}

func projectNames(idx index) []string {
	names := make([]string, 0, len(idx.Projects))
	for name := range idx.Projects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
