package plugin

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"

	"github.com/AntonioLangiu/Ceedling/internal/config"
	"github.com/AntonioLangiu/Ceedling/internal/logging"
)

const (
	configDir       = "config"
	scriptDir       = "lib"
	taskExt         = ".rake"
	scriptExt       = ".rb"
	defaultsBase    = "defaults"
	fragmentPattern = configDir + "/*.{yml,yaml,toml}"
)

// defaultsNames lists the default layer file names in preference order.
var defaultsNames = []string{defaultsBase + ".yml", defaultsBase + ".yaml", defaultsBase + ".toml"}

// Discoverer locates plugins on the local filesystem.
type Discoverer struct {
	// openFS returns the filesystem rooted at a load path. Tests substitute
	// an in-memory filesystem.
	openFS func(root string) fs.FS
	logger *log.Logger
}

// NewDiscoverer returns a Discoverer over the real filesystem.
func NewDiscoverer() *Discoverer {
	return &Discoverer{openFS: os.DirFS, logger: logging.New("plugin")}
}

// Discover implements config.PluginDiscoverer. Enabled plugins that no load
// path provides are skipped; the validator reports them.
func (d *Discoverer) Discover(ctx context.Context, loadPaths, enabled []string) (config.Contribution, error) {
	contrib := config.Contribution{Paths: make(map[string]string)}
	for _, name := range enabled {
		if err := ctx.Err(); err != nil {
			return config.Contribution{}, err
		}
		root, fsys, ok := d.locate(loadPaths, name)
		if !ok {
			d.logger.Warn("plugin not found in any load path", "plugin", name, "load_paths", loadPaths)
			continue
		}
		if err := d.collect(&contrib, name, root, fsys); err != nil {
			return config.Contribution{}, fmt.Errorf("plugin %s: %w", name, err)
		}
		d.logger.Debug("found plugin", "plugin", name, "path", root)
	}
	return contrib, nil
}

// locate returns the directory of the named plugin in the first load path
// that has one.
func (d *Discoverer) locate(loadPaths []string, name string) (string, fs.FS, bool) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == ".." {
		return "", nil, false
	}
	for _, lp := range loadPaths {
		fsys := d.openFS(lp)
		info, err := fs.Stat(fsys, name)
		if err != nil || !info.IsDir() {
			continue
		}
		sub, err := fs.Sub(fsys, name)
		if err != nil {
			continue
		}
		return path.Join(lp, name), sub, true
	}
	return "", nil, false
}

func (d *Discoverer) collect(contrib *config.Contribution, name, root string, fsys fs.FS) error {
	contrib.Paths[name] = root

	if exists(fsys, name+taskExt) {
		contrib.TaskPlugins = append(contrib.TaskPlugins, path.Join(root, name+taskExt))
	}
	script := path.Join(scriptDir, name+scriptExt)
	if exists(fsys, script) {
		contrib.ScriptPlugins = append(contrib.ScriptPlugins, path.Join(root, script))
	}

	fragments, err := doublestar.Glob(fsys, fragmentPattern)
	if err != nil {
		return fmt.Errorf("listing configuration: %w", err)
	}
	sort.Strings(fragments)
	for _, f := range fragments {
		if isDefaults(f) {
			continue
		}
		contrib.ConfigFragments = append(contrib.ConfigFragments, path.Join(root, f))
	}

	for _, dn := range defaultsNames {
		rel := path.Join(configDir, dn)
		if exists(fsys, rel) {
			contrib.DefaultLayers = append(contrib.DefaultLayers, path.Join(root, rel))
			break
		}
	}
	return nil
}

func isDefaults(rel string) bool {
	base := path.Base(rel)
	return strings.TrimSuffix(base, path.Ext(base)) == defaultsBase
}

func exists(fsys fs.FS, name string) bool {
	info, err := fs.Stat(fsys, name)
	return err == nil && !info.IsDir()
}
