package config

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/AntonioLangiu/Ceedling/internal/logging"
)

// ErrNotBuilt is returned by operations that need a previous Build.
var ErrNotBuilt = errors.New("configuration has not been built")

// Configurator owns the resolution pipeline and the published namespace.
// It is not safe for concurrent use; one goroutine drives a run from
// start to finish.
type Configurator struct {
	catalog     *Catalog
	discoverer  PluginDiscoverer
	loader      FragmentLoader
	evaluator   Evaluator
	env         EnvSink
	mockBuilder MockBuilder
	validator   *Validator
	verbosity   Verbosity
	logger      *log.Logger

	live      Namespace
	top       Tree
	snapshot  *Snapshot
	published *Context

	mockConfig    MockConfig
	taskPlugins   []string
	scriptPlugins []string
	lastResult    *ValidationResult
}

// Option configures a Configurator.
type Option func(*Configurator)

// WithDiscoverer sets the plugin discoverer. Without one no plugin
// contributes anything.
func WithDiscoverer(d PluginDiscoverer) Option {
	return func(c *Configurator) { c.discoverer = d }
}

// WithLoader sets the loader used for plugin fragments and default layers.
func WithLoader(l FragmentLoader) Option {
	return func(c *Configurator) { c.loader = l }
}

// WithEvaluator replaces the deferred expression evaluator.
func WithEvaluator(e Evaluator) Option {
	return func(c *Configurator) { c.evaluator = e }
}

// WithEnvSink sets where environment entries are projected.
func WithEnvSink(s EnvSink) Option {
	return func(c *Configurator) { c.env = s }
}

// WithMockBuilder sets the collaborator handed the mock configuration.
func WithMockBuilder(b MockBuilder) Option {
	return func(c *Configurator) { c.mockBuilder = b }
}

// WithLookPath sets how the validator finds tool executables.
func WithLookPath(fn LookPathFunc) Option {
	return func(c *Configurator) { c.validator = NewValidator(fn) }
}

// WithVerbosity sets the global verbosity copied into the mock configuration.
func WithVerbosity(v Verbosity) Option {
	return func(c *Configurator) { c.verbosity = v }
}

// WithCatalog replaces the built-in defaults catalog.
func WithCatalog(cat *Catalog) Option {
	return func(c *Configurator) { c.catalog = cat }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Configurator) { c.logger = l }
}

// New applies opts to a Configurator with the built-in catalog and the
// process env sink. Without WithEvaluator the provider evaluator reads the
// sink's recorded variables before the process environment.
func New(opts ...Option) (*Configurator, error) {
	c := &Configurator{
		env:       ProcessEnv{},
		validator: NewValidator(nil),
		verbosity: VerbosityNormal,
		logger:    logging.New("config"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.evaluator == nil {
		c.evaluator = NewProviderEvaluator(sinkLookup(c.env))
	}
	if c.catalog == nil {
		cat, err := NewCatalog()
		if err != nil {
			return nil, fmt.Errorf("loading defaults catalog: %w", err)
		}
		c.catalog = cat
	}
	return c, nil
}

// Catalog returns the defaults catalog in use.
func (c *Configurator) Catalog() *Catalog { return c.catalog }

// MockConfig returns the mock configuration derived by the last resolution.
func (c *Configurator) MockConfig() MockConfig { return c.mockConfig }

// TaskPlugins returns the task plugin references found by plugin discovery.
func (c *Configurator) TaskPlugins() []string { return append([]string(nil), c.taskPlugins...) }

// ScriptPlugins returns the script plugin references found by plugin discovery.
func (c *Configurator) ScriptPlugins() []string { return append([]string(nil), c.scriptPlugins...) }

// ValidationResult returns the findings of the last validation, or nil.
func (c *Configurator) ValidationResult() *ValidationResult { return c.lastResult }

// Live returns the currently published context, or nil before the first
// build.
func (c *Configurator) Live() *Context { return c.published }

// Snapshot returns the latest snapshot, or nil before the first build.
func (c *Configurator) Snapshot() *Snapshot { return c.snapshot }

// PopulateDefaults applies the defaults catalog underneath tree and logs the
// layers used.
func (c *Configurator) PopulateDefaults(tree Tree) {
	applied := c.catalog.Apply(tree)
	c.logger.Debug("applied default layers", "layers", applied)
}

// PopulateMockDefaults fills the cmock section, caches the result and hands
// it to the mock builder when one is set.
func (c *Configurator) PopulateMockDefaults(tree Tree) error {
	c.mockConfig = PopulateMockDefaults(tree, c.verbosity)
	if c.mockBuilder == nil {
		return nil
	}
	if err := c.mockBuilder.Manufacture(c.mockConfig); err != nil {
		return fmt.Errorf("building mock generator: %w", err)
	}
	return nil
}

// Validate checks tree and keeps the result for ValidationResult.
func (c *Configurator) Validate(tree Tree) error {
	vr, err := c.validator.Validate(tree)
	c.lastResult = vr
	if vr != nil {
		for _, w := range vr.Warnings() {
			c.logger.Warn(w.Message, "field", w.Field)
		}
	}
	return err
}

// Build flattens tree, makes the result the live namespace, snapshots it
// and publishes it. Each key in keys is also published verbatim as a
// top-level section.
func (c *Configurator) Build(tree Tree, keys ...string) (*Context, error) {
	ns, err := Flatten(tree)
	if err != nil {
		return nil, fmt.Errorf("building configuration: %w", err)
	}
	c.live = ns
	c.top = Tree{}
	for _, key := range keys {
		if v, ok := tree[key]; ok {
			c.top[key] = cloneValue(v)
		}
	}
	c.snapshot = newSnapshot(c.live)
	c.publish()
	c.logger.Debug("built configuration", "names", len(c.live), "fingerprint", fmt.Sprintf("%016x", c.snapshot.Fingerprint()))
	return c.published, nil
}

// BuildSupplement merges more into base, adds the flattened names of more
// to the live namespace and republishes. The top-level sections named in
// more are republished from the merged base.
func (c *Configurator) BuildSupplement(base, more Tree) (*Context, error) {
	if c.live == nil {
		return nil, ErrNotBuilt
	}
	MergeInto(base, more)
	extra, err := Flatten(more)
	if err != nil {
		return nil, fmt.Errorf("building supplement: %w", err)
	}
	MergeInto(c.live, extra)
	for key := range more {
		c.top[key] = cloneValue(base[key])
	}
	c.snapshot = newSnapshot(c.live)
	c.publish()
	return c.published, nil
}

// Restore replaces the live namespace with a copy of the latest snapshot and
// republishes it.
func (c *Configurator) Restore() (*Context, error) {
	if c.snapshot == nil {
		return nil, ErrNotBuilt
	}
	c.live = c.snapshot.Namespace()
	c.publish()
	return c.published, nil
}

// ReplaceFlattened overlays already-flat entries onto the live namespace and
// republishes without taking a snapshot, so Restore undoes it.
func (c *Configurator) ReplaceFlattened(ns Namespace) (*Context, error) {
	if c.live == nil {
		return nil, ErrNotBuilt
	}
	for name, v := range ns {
		c.live[name] = cloneValue(v)
	}
	c.publish()
	return c.published, nil
}

// taskFilesName is the published list of task component files.
const taskFilesName = "project_task_files"

// InsertTaskPlugins appends task plugin references to the published task
// file list. The snapshot is refreshed so a later Restore keeps them.
func (c *Configurator) InsertTaskPlugins(refs []string) (*Context, error) {
	if c.live == nil {
		return nil, ErrNotBuilt
	}
	files := seqOrEmpty(c.live[taskFilesName])
	for _, ref := range refs {
		files = append(files, ref)
	}
	c.live[taskFilesName] = files
	c.snapshot = newSnapshot(c.live)
	c.publish()
	return c.published, nil
}

func (c *Configurator) publish() {
	c.published = newContext(c.live, c.top)
}
