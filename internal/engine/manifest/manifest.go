// Package manifest implements a definition-time engine driver backed by a
// YAML project manifest.
//
// The driver serves model listings for asset-graph publication and schedule
// derivation. Plan and Run are not implemented: executing SQL belongs to the
// real transformation engine, which deployments plug in as their own driver.
package manifest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nucleus/mesh-bridge/internal/engine"
)

// ManifestFile is the expected file name under the project directory.
const ManifestFile = "project.yaml"

type projectManifest struct {
	Project  string        `yaml:"project"`
	Catalog  string        `yaml:"catalog"`
	Dialect  string        `yaml:"dialect"`
	Gateways []string      `yaml:"gateways"`
	Models   []modelRecord `yaml:"models"`
}

type modelRecord struct {
	Name      string         `yaml:"name"` // schema.name
	Kind      string         `yaml:"kind"`
	Cron      string         `yaml:"cron"`
	DependsOn []string       `yaml:"depends_on"`
	Audits    []auditRecord  `yaml:"audits"`
	Partition *partitionSpec `yaml:"partitioned_by"`
	Hash      string         `yaml:"hash"`
}

type auditRecord struct {
	Name     string         `yaml:"name"`
	Blocking bool           `yaml:"blocking"`
	Skip     bool           `yaml:"skip"`
	Query    string         `yaml:"query"`
	Args     map[string]any `yaml:"args"`
}

type partitionSpec struct {
	Column string `yaml:"column"`
	Grain  string `yaml:"grain"`
}

// Driver opens manifest-backed project contexts.
type Driver struct{}

// Open loads and validates the project manifest.
func (Driver) Open(ctx context.Context, cfg engine.Config) (engine.ProjectContext, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, &engine.InitializationError{ProjectDir: cfg.ProjectDir, Gateway: cfg.Gateway, Environment: cfg.Environment, Err: err}
	}

	path := filepath.Join(cfg.ProjectDir, ManifestFile)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &engine.InitializationError{ProjectDir: cfg.ProjectDir, Gateway: cfg.Gateway, Environment: cfg.Environment, Err: err}
	}

	var mf projectManifest
	if err := yaml.Unmarshal(raw, &mf); err != nil {
		return nil, &engine.InitializationError{ProjectDir: cfg.ProjectDir, Gateway: cfg.Gateway, Environment: cfg.Environment,
			Err: fmt.Errorf("parsing %s: %w", ManifestFile, err)}
	}

	if len(mf.Gateways) > 0 && !contains(mf.Gateways, cfg.Gateway) {
		return nil, &engine.InitializationError{ProjectDir: cfg.ProjectDir, Gateway: cfg.Gateway, Environment: cfg.Environment,
			Err: fmt.Errorf("gateway %q not declared in %s (declared: %s)", cfg.Gateway, ManifestFile, strings.Join(mf.Gateways, ", "))}
	}

	models, err := mf.descriptors()
	if err != nil {
		return nil, &engine.InitializationError{ProjectDir: cfg.ProjectDir, Gateway: cfg.Gateway, Environment: cfg.Environment, Err: err}
	}

	return &projectContext{cfg: cfg, models: models}, nil
}

func (mf *projectManifest) descriptors() ([]engine.ModelDescriptor, error) {
	catalog := mf.Catalog
	if catalog == "" {
		catalog = mf.Project
	}
	if catalog == "" {
		return nil, fmt.Errorf("manifest declares neither project nor catalog")
	}

	// Index declared names so dependency references resolve to declared ids.
	idByName := make(map[string]string, len(mf.Models))
	for _, rec := range mf.Models {
		schema, name, err := splitName(rec.Name)
		if err != nil {
			return nil, err
		}
		idByName[rec.Name] = qualifiedID(catalog, schema, name)
	}

	models := make([]engine.ModelDescriptor, 0, len(mf.Models))
	for _, rec := range mf.Models {
		schema, name, _ := splitName(rec.Name)
		m := engine.ModelDescriptor{
			ID:       qualifiedID(catalog, schema, name),
			Catalog:  catalog,
			Schema:   schema,
			Name:     name,
			Kind:     rec.Kind,
			Dialect:  mf.Dialect,
			Cron:     rec.Cron,
			DataHash: rec.Hash,
		}
		if m.Kind == "" {
			m.Kind = "FULL"
		}
		for _, dep := range rec.DependsOn {
			if id, ok := idByName[dep]; ok {
				m.DependsOn = append(m.DependsOn, id)
				continue
			}
			// Undeclared reference: canonicalize so downstream validation
			// reports it against a stable id.
			ds, dn, err := splitName(dep)
			if err != nil {
				return nil, fmt.Errorf("model %s: %w", rec.Name, err)
			}
			m.DependsOn = append(m.DependsOn, qualifiedID(catalog, ds, dn))
		}
		for _, a := range rec.Audits {
			m.Audits = append(m.Audits, engine.AuditSpec{
				Name:     a.Name,
				Blocking: a.Blocking,
				Skip:     a.Skip,
				Query:    a.Query,
				Args:     a.Args,
			})
		}
		if rec.Partition != nil {
			m.Partition = &engine.PartitionSpec{Column: rec.Partition.Column, Grain: rec.Partition.Grain}
		}
		models = append(models, m)
	}
	return models, nil
}

type projectContext struct {
	cfg    engine.Config
	models []engine.ModelDescriptor
}

func (p *projectContext) Models(ctx context.Context) ([]engine.ModelDescriptor, error) {
	out := make([]engine.ModelDescriptor, len(p.models))
	copy(out, p.models)
	return out, nil
}

func (p *projectContext) Plan(ctx context.Context, modelIDs []string, sink engine.EventSink) (*engine.PlanSummary, error) {
	return nil, fmt.Errorf("manifest driver is definition-only: %w", engine.ErrUnsupported)
}

func (p *projectContext) Run(ctx context.Context, req engine.RunRequest, sink engine.EventSink) error {
	return fmt.Errorf("manifest driver is definition-only: %w", engine.ErrUnsupported)
}

func (p *projectContext) Close() error { return nil }

func qualifiedID(catalog, schema, name string) string {
	return fmt.Sprintf("%q.%q.%q", catalog, schema, name)
}

func splitName(ref string) (schema, name string, err error) {
	parts := strings.Split(ref, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("model name %q is not of the form schema.name", ref)
	}
	return parts[0], parts[1], nil
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}
