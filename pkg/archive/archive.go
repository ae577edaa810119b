package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zip"
	"github.com/mitchellh/mapstructure"

	"github.com/aretw0/provview/internal/logging"
	"github.com/aretw0/provview/pkg/domain"
)

// VisualizationType is the semantic type of .qzv results.
const VisualizationType = "Visualization"

// Metadata is the root metadata.yaml of a result.
type Metadata struct {
	UUID   string `mapstructure:"uuid" json:"uuid"`
	Type   string `mapstructure:"type" json:"type"`
	Format string `mapstructure:"format" json:"format,omitempty"`
}

// Archive is an opened result. It implements ports.Loader and is safe for
// concurrent use.
type Archive struct {
	Source   string
	UUID     string
	Version  Version
	Metadata Metadata

	root    fs.FS // positioned at the UUID directory
	files   []string
	closers []func() error
	logger  *slog.Logger

	mu    sync.Mutex
	cache map[string]domain.Value
}

// Option configures an Archive.
type Option func(*Archive)

// WithLogger sets the logger used by the archive.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Archive) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// Open opens a .qza/.qzv zip file, an extracted container directory, or the
// UUID directory itself.
func Open(name string, opts ...Option) (*Archive, error) {
	info, err := os.Stat(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	if info.IsDir() {
		return openDir(name, opts)
	}

	rc, err := zip.OpenReader(name)
	if err != nil {
		return nil, &LayoutError{Source: name, Problems: []string{"not a zip container: " + err.Error()}}
	}
	a, err := openContainer(name, &rc.Reader, opts)
	if err != nil {
		_ = rc.Close()
		return nil, err
	}
	a.closers = append(a.closers, rc.Close)
	return a, nil
}

// OpenReader reads a zip container from r.
func OpenReader(r io.ReaderAt, size int64, source string, opts ...Option) (*Archive, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, &LayoutError{Source: source, Problems: []string{"not a zip container: " + err.Error()}}
	}
	return openContainer(source, zr, opts)
}

// OpenSource opens a local path or downloads an http(s) URL first. A
// downloaded file is removed when the archive is closed.
func OpenSource(ctx context.Context, source string, opts ...Option) (*Archive, error) {
	if !IsRemote(source) {
		return Open(source, opts...)
	}
	local, err := Fetch(ctx, nil, source)
	if err != nil {
		return nil, err
	}
	a, err := Open(local, opts...)
	if err != nil {
		_ = os.Remove(local)
		return nil, err
	}
	a.Source = source
	a.closers = append(a.closers, func() error { return os.Remove(local) })
	return a, nil
}

// Validate checks the layout of a container without building provenance.
func Validate(name string) error {
	a, err := Open(name)
	if err != nil {
		return err
	}
	return a.Close()
}

func openDir(dir string, opts []Option) (*Archive, error) {
	base := filepath.Base(filepath.Clean(dir))
	fsys := os.DirFS(dir)
	if isUUID(base) {
		if _, err := fs.Stat(fsys, "VERSION"); err == nil {
			files, err := listFiles(fsys)
			if err != nil {
				return nil, fmt.Errorf("failed to list %s: %w", dir, err)
			}
			paths := make([]string, len(files))
			for i, f := range files {
				paths[i] = base + "/" + f
			}
			if _, problems := checkLayout(paths); len(problems) > 0 {
				return nil, &LayoutError{Source: dir, Problems: problems}
			}
			return newArchive(dir, base, paths, fsys, opts)
		}
	}
	return openContainer(dir, fsys, opts)
}

func openContainer(source string, fsys fs.FS, opts []Option) (*Archive, error) {
	paths, err := listFiles(fsys)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", source, err)
	}
	id, problems := checkLayout(paths)
	if len(problems) > 0 {
		return nil, &LayoutError{Source: source, Problems: problems}
	}
	root, err := fs.Sub(fsys, id)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s in %s: %w", id, source, err)
	}
	return newArchive(source, id, paths, root, opts)
}

func newArchive(source, id string, paths []string, root fs.FS, opts []Option) (*Archive, error) {
	var problems []string
	a := &Archive{
		Source: source,
		UUID:   id,
		root:   root,
		logger: logging.NewNop(),
		cache:  make(map[string]domain.Value),
	}
	for _, opt := range opts {
		opt(a)
	}
	for _, p := range paths {
		a.files = append(a.files, strings.TrimPrefix(p, id+"/"))
	}

	if data, err := fs.ReadFile(root, "VERSION"); err != nil {
		problems = append(problems, "unreadable VERSION: "+err.Error())
	} else if a.Version, err = ParseVersion(data); err != nil {
		problems = append(problems, err.Error())
	}

	if md, err := a.readMetadata(); err != nil {
		problems = append(problems, err.Error())
	} else {
		a.Metadata = md
		if md.UUID != "" && !strings.EqualFold(md.UUID, id) {
			problems = append(problems, fmt.Sprintf("metadata.yaml uuid %s does not match directory %s", md.UUID, id))
		}
	}

	if len(problems) > 0 {
		return nil, &LayoutError{Source: source, Problems: problems}
	}
	a.logger.Debug("archive opened",
		"source", source,
		"uuid", id,
		"type", a.Metadata.Type,
		"archive_version", a.Version.Archive,
		"framework", a.Version.Framework)
	return a, nil
}

func (a *Archive) readMetadata() (Metadata, error) {
	data, err := fs.ReadFile(a.root, "metadata.yaml")
	if err != nil {
		return Metadata{}, fmt.Errorf("unreadable metadata.yaml: %w", err)
	}
	doc, err := domain.ParseYAML(data)
	if err != nil {
		return Metadata{}, fmt.Errorf("metadata.yaml: %w", err)
	}
	if doc.Kind() != domain.KindMapping {
		return Metadata{}, fmt.Errorf("metadata.yaml must be a mapping")
	}
	var md Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &md,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Metadata{}, err
	}
	if err := decoder.Decode(doc.Interface()); err != nil {
		return Metadata{}, fmt.Errorf("metadata.yaml: %w", err)
	}
	return md, nil
}

// listFiles returns every regular file in fsys in lexical order.
func listFiles(fsys fs.FS) ([]string, error) {
	var files []string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, p)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}

// checkLayout verifies that every path sits under one UUID directory holding
// VERSION and metadata.yaml.
func checkLayout(paths []string) (string, []string) {
	if len(paths) == 0 {
		return "", []string{"container is empty"}
	}

	var problems []string
	var tops []string
	seen := map[string]bool{}
	for _, p := range paths {
		top, _, _ := strings.Cut(p, "/")
		if seen[top] {
			continue
		}
		seen[top] = true
		tops = append(tops, top)
		if !isUUID(top) {
			problems = append(problems, fmt.Sprintf("top-level entry %q is not a UUID", top))
		}
	}
	if len(tops) > 1 {
		problems = append(problems, fmt.Sprintf("expected a single top-level directory, found %d", len(tops)))
	}
	if len(problems) > 0 {
		return "", problems
	}

	id := tops[0]
	for _, required := range []string{"VERSION", "metadata.yaml"} {
		if !contains(paths, id+"/"+required) {
			problems = append(problems, fmt.Sprintf("missing %s/%s", id, required))
		}
	}
	return id, problems
}

func contains(sorted []string, p string) bool {
	i := sort.SearchStrings(sorted, p)
	return i < len(sorted) && sorted[i] == p
}

// isUUID accepts canonical RFC 4122 UUIDs of versions 1 to 5, in either case.
func isUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return false
	}
	if u.Variant() != uuid.RFC4122 {
		return false
	}
	v := u.Version()
	return v >= 1 && v <= 5 && u.String() == strings.ToLower(s)
}

// IsVisualization reports whether the result is a .qzv visualization.
func (a *Archive) IsVisualization() bool {
	return a.Metadata.Type == VisualizationType
}

// IndexPath returns the entry page of a visualization, relative to the UUID
// directory, or "" for artifacts.
func (a *Archive) IndexPath() string {
	if !a.IsVisualization() {
		return ""
	}
	return "data/index.html"
}

// Files lists the files of the result relative to the UUID directory.
func (a *Archive) Files() []string {
	return append([]string(nil), a.files...)
}

// Close releases the container.
func (a *Archive) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// RootUUID returns the UUID of the result.
func (a *Archive) RootUUID() string { return a.UUID }

// LoadAction returns the action document that produced id.
func (a *Archive) LoadAction(ctx context.Context, id string) (domain.Value, error) {
	if id == a.UUID {
		return a.loadYAML(ctx, "provenance/action/action.yaml")
	}
	if !isUUID(id) {
		return domain.Value{}, fmt.Errorf("%w: %q is not a UUID", domain.ErrMissingProvenance, id)
	}
	return a.loadYAML(ctx, path.Join("provenance/artifacts", id, "action/action.yaml"))
}

// LoadArtifact returns the metadata document of id.
func (a *Archive) LoadArtifact(ctx context.Context, id string) (domain.Value, error) {
	if id == a.UUID {
		return a.loadYAML(ctx, "provenance/metadata.yaml")
	}
	if !isUUID(id) {
		return domain.Value{}, fmt.Errorf("%w: %q is not a UUID", domain.ErrMissingProvenance, id)
	}
	return a.loadYAML(ctx, path.Join("provenance/artifacts", id, "metadata.yaml"))
}

func (a *Archive) loadYAML(ctx context.Context, name string) (domain.Value, error) {
	if err := ctx.Err(); err != nil {
		return domain.Value{}, err
	}

	a.mu.Lock()
	doc, ok := a.cache[name]
	a.mu.Unlock()
	if ok {
		return doc, nil
	}

	data, err := fs.ReadFile(a.root, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Value{}, fmt.Errorf("%w: %s/%s", domain.ErrMissingProvenance, a.UUID, name)
		}
		return domain.Value{}, fmt.Errorf("failed to read %s: %w", name, err)
	}
	doc, err = domain.ParseYAML(data)
	if err != nil {
		return domain.Value{}, fmt.Errorf("%s: %w", name, err)
	}

	a.mu.Lock()
	a.cache[name] = doc
	a.mu.Unlock()
	return doc, nil
}
