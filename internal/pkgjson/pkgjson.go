package pkgjson

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
	"golang.org/x/sync/errgroup"

	"github.com/fbkclanna/monows/internal/reconcile"
)

// FileName is the manifest file name inside a package directory.
const FileName = "package.json"

var prettyOpts = &pretty.Options{Width: 1, Prefix: "", Indent: "  ", SortKeys: false}

// File is a loaded package.json.
type File struct {
	Path string
	Data []byte

	Name            string
	Version         string
	Dependencies    map[string]string // nil when the block is absent
	DevDependencies map[string]string // nil when the block is absent
}

// Load reads and decodes a package.json file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from package discovery
	if err != nil {
		return nil, fmt.Errorf("pkgjson: reading %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("pkgjson: %s: %w", path, err)
	}
	f.Path = path
	return f, nil
}

// Parse decodes package.json content.
func Parse(data []byte) (*File, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON")
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, fmt.Errorf("top level is not an object")
	}
	f := &File{
		Data:    data,
		Name:    doc.Get("name").String(),
		Version: doc.Get("version").String(),
	}
	var err error
	if f.Dependencies, err = stringMap(doc, string(reconcile.SectionDependencies)); err != nil {
		return nil, err
	}
	if f.DevDependencies, err = stringMap(doc, string(reconcile.SectionDevDependencies)); err != nil {
		return nil, err
	}
	return f, nil
}

func stringMap(doc gjson.Result, key string) (map[string]string, error) {
	block := doc.Get(gjson.Escape(key))
	if !block.Exists() {
		return nil, nil
	}
	if !block.IsObject() {
		return nil, fmt.Errorf("%s is not an object", key)
	}
	m := map[string]string{}
	var err error
	block.ForEach(func(k, v gjson.Result) bool {
		if v.Type != gjson.String {
			err = fmt.Errorf("%s.%s is not a string", key, k.String())
			return false
		}
		m[k.String()] = v.String()
		return true
	})
	return m, err
}

// Manifest converts f to the reconciler's view, identified by id.
func (f *File) Manifest(id string) reconcile.Manifest {
	return reconcile.Manifest{
		ID:              id,
		Name:            f.Name,
		Version:         f.Version,
		Dependencies:    f.Dependencies,
		DevDependencies: f.DevDependencies,
	}
}

// Apply returns the content of f with its dependency blocks replaced by the
// maps of u. A nil map leaves the block untouched.
func (f *File) Apply(u reconcile.Update) ([]byte, error) {
	out := f.Data
	var err error
	if u.Dependencies != nil {
		if out, err = setBlock(out, reconcile.SectionDependencies, u.Dependencies); err != nil {
			return nil, err
		}
	}
	if u.DevDependencies != nil {
		if out, err = setBlock(out, reconcile.SectionDevDependencies, u.DevDependencies); err != nil {
			return nil, err
		}
	}
	return format(out), nil
}

// MergeBlock overlays m onto the existing block of data, creating it when
// missing. Entries of m win.
func MergeBlock(data []byte, section reconcile.Section, m map[string]string) ([]byte, error) {
	merged := map[string]string{}
	block := gjson.GetBytes(data, gjson.Escape(string(section)))
	if block.IsObject() {
		block.ForEach(func(k, v gjson.Result) bool {
			merged[k.String()] = v.String()
			return true
		})
	}
	for k, v := range m {
		merged[k] = v
	}
	out, err := setBlock(data, section, merged)
	if err != nil {
		return nil, err
	}
	return format(out), nil
}

// setBlock replaces one dependency block. Keys are written in sorted order,
// which is how npm and pnpm write them.
func setBlock(data []byte, section reconcile.Section, m map[string]string) ([]byte, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("pkgjson: encoding %s: %w", section, err)
	}
	out, err := sjson.SetRawBytes(data, gjson.Escape(string(section)), raw)
	if err != nil {
		return nil, fmt.Errorf("pkgjson: setting %s: %w", section, err)
	}
	return out, nil
}

func format(data []byte) []byte {
	return pretty.PrettyOptions(data, prettyOpts)
}

// NewRoot returns a minimal private root package.json for a workspace.
func NewRoot(name string) []byte {
	data := []byte(`{}`)
	data, _ = sjson.SetBytes(data, "name", name)
	data, _ = sjson.SetBytes(data, "private", true)
	return format(data)
}

// Discover returns the package.json paths of the direct subdirectories of
// dir, sorted.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("pkgjson: listing %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		p := filepath.Join(dir, e.Name(), FileName)
		if _, err := os.Stat(p); err == nil {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// LoadAll reads paths concurrently with at most jobs readers. Results keep
// the order of paths. All readers finish before the first error is returned.
func LoadAll(ctx context.Context, paths []string, jobs int) ([]*File, error) {
	files := make([]*File, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f, err := Load(p)
			if err != nil {
				return err
			}
			files[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}
