package loader

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"gopkg.in/yaml.v3"

	"github.com/roach88/legends/internal/definition"
)

// LoadMode controls how errors are handled during pack loading.
type LoadMode int

const (
	// LoadModeFailFast returns only the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll reports every error in the pack.
	LoadModeCollectAll
)

// Pack is one or more loaded pack directories sharing a catalog. The
// catalog is neither attached nor compiled.
type Pack struct {
	Dirs    []string
	Files   []string
	Catalog *definition.Catalog
	Sources SourceMap
}

// Load reads every pack file in dir. CUE files are unified into one
// instance and read first; YAML files follow in name order. The returned
// pack is nil only when a file could not be read.
func Load(dir string, mode LoadMode) (*Pack, []error) {
	return LoadAll([]string{dir}, mode)
}

// LoadAll reads several pack directories, in order, into one catalog. A
// name defined by two packs is a duplicate.
func LoadAll(dirs []string, mode LoadMode) (*Pack, []error) {
	d := newDecoder()
	pack := &Pack{Dirs: dirs, Catalog: definition.NewCatalog(), Sources: d.sources}

	for _, dir := range dirs {
		roots, files, err := readDir(dir)
		if err != nil {
			return nil, []error{err}
		}
		pack.Files = append(pack.Files, files...)
		for _, root := range roots {
			d.pack(root, pack.Catalog)
		}
	}

	errs := d.errs
	if len(errs) > 0 && mode == LoadModeFailFast {
		errs = errs[:1]
	}
	return pack, errs
}

// readDir returns the document roots of one pack directory.
func readDir(dir string) ([]node, []string, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("pack directory not found: %s", dir)}
	}
	if err != nil {
		return nil, nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing pack directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	files, err := FindPackFiles(dir)
	if err != nil {
		return nil, nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(files) == 0 {
		return nil, nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE or YAML files found in %s", dir)}
	}

	var roots []node
	if slices.ContainsFunc(files, func(f string) bool { return filepath.Ext(f) == ".cue" }) {
		root, err := loadCUE(dir)
		if err != nil {
			return nil, nil, err
		}
		roots = append(roots, root)
	}
	for _, f := range files {
		if filepath.Ext(f) == ".cue" {
			continue
		}
		root, err := loadYAML(f)
		if err != nil {
			return nil, nil, err
		}
		if root != nil {
			roots = append(roots, root)
		}
	}
	return roots, files, nil
}

// FindPackFiles returns the .cue, .yaml and .yml files directly inside dir,
// sorted by name. Subdirectories are not searched.
func FindPackFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		switch filepath.Ext(path) {
		case ".cue", ".yaml", ".yml":
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func loadCUE(dir string) (node, error) {
	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}

	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		le := &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
		if ce, ok := formatCUEError("build", err).(*CompileError); ok {
			le.Pos = fromToken(ce.Pos)
		}
		return nil, le
	}
	if err := value.Validate(cue.Concrete(true)); err != nil {
		le := &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("CUE value is not concrete: %v", err)}
		if ce, ok := formatCUEError("validate", err).(*CompileError); ok {
			le.Pos = fromToken(ce.Pos)
		}
		return nil, le
	}
	return cueNode{value}, nil
}

// loadYAML returns nil for an empty file.
func loadYAML(path string) (node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("reading %s: %v", path, err), Pos: Pos{File: path}}
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("parsing %s: %v", path, err), Pos: Pos{File: path}}
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}
	return newYAMLNode(&doc, path), nil
}

// pack decodes one file's top-level event and site tables into cat.
func (d *decoder) pack(root node, cat *definition.Catalog) {
	if root.Kind() != kindStruct {
		d.fail(ErrWrongType, "pack", fmt.Sprintf("expected struct, got %s", root.Kind()), root.Pos())
		return
	}
	fields, err := root.Fields()
	if err != nil {
		d.fail(ErrWrongType, "pack", err.Error(), root.Pos())
		return
	}
	for _, f := range fields {
		switch f.Name {
		case "event", "site":
		default:
			d.fail(ErrUnknownField, f.Name, "top-level field must be event or site", f.Value.Pos())
			continue
		}
		if f.Value.Kind() != kindStruct {
			d.fail(ErrWrongType, f.Name, fmt.Sprintf("expected struct, got %s", f.Value.Kind()), f.Value.Pos())
			continue
		}
		defs, err := f.Value.Fields()
		if err != nil {
			d.fail(ErrWrongType, f.Name, err.Error(), f.Value.Pos())
			continue
		}
		for _, def := range defs {
			d.definition(f.Name, def, cat)
		}
	}
}

func (d *decoder) definition(kind string, def field, cat *definition.Catalog) {
	path := kind + ":" + def.Name
	if def.Name == "" {
		d.fail(ErrMissingName, kind, kind+" has an empty name", def.Value.Pos())
		return
	}
	if prev, dup := d.sources[path]; dup {
		d.fail(ErrDuplicateName, path, fmt.Sprintf("%s %q already defined at %s", kind, def.Name, prev), def.Value.Pos())
		return
	}

	switch kind {
	case "event":
		e := d.event(def.Value, def.Name)
		d.validateEvent(e)
		if err := cat.AddEvent(e); err != nil {
			d.fail(ErrDuplicateName, path, err.Error(), def.Value.Pos())
		}
	case "site":
		s := d.site(def.Value, def.Name)
		d.validateSite(s)
		if err := cat.AddSite(s); err != nil {
			d.fail(ErrDuplicateName, path, err.Error(), def.Value.Pos())
		}
	}
}
