package bridge

import (
	"fmt"
	"sort"

	"github.com/nucleus/mesh-bridge/internal/engine"
)

// AssetSpec is one published asset specification: the translated key, its
// dependency keys mapped through the same translator, partition metadata and
// model metadata. External specs are thin placeholders with no executable
// body.
type AssetSpec struct {
	Key       AssetKey
	Deps      []AssetKey
	External  bool
	Partition *engine.PartitionSpec
	Metadata  map[string]any
}

// CheckSpec exposes one declared audit as an orchestrator check.
type CheckSpec struct {
	Asset    AssetKey
	Name     string
	Blocking bool
	Metadata map[string]any
}

// SpecSet is the full published graph for one project.
type SpecSet struct {
	Assets []AssetSpec
	Checks []CheckSpec
	Table  *KeyTable
}

// BuildSpecs composes the asset/check graph for publication. It fails with a
// TranslationError if two models collapse onto one key or any dependency
// references an absent model id; a dangling reference must never surface
// only as a run-time failure.
func BuildSpecs(models []engine.ModelDescriptor, tr *Translator) (*SpecSet, error) {
	table, err := tr.Table(models)
	if err != nil {
		return nil, err
	}

	ordered := make([]engine.ModelDescriptor, len(models))
	copy(ordered, models)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	set := &SpecSet{Table: table}
	for _, m := range ordered {
		key, _ := table.Key(m.ID)

		if m.External() {
			// Placeholder for an unmanaged upstream source: same namespace,
			// nothing to execute, no checks.
			set.Assets = append(set.Assets, AssetSpec{
				Key:      key,
				External: true,
				Metadata: map[string]any{"model_id": m.ID, "kind": m.Kind},
			})
			continue
		}

		spec := AssetSpec{Key: key, Partition: m.Partition, Metadata: assetMetadata(m)}
		for _, dep := range m.DependsOn {
			depKey, ok := table.Key(dep)
			if !ok {
				return nil, &TranslationError{ModelID: m.ID,
					Message: fmt.Sprintf("dependency %s references no declared model", dep)}
			}
			spec.Deps = append(spec.Deps, depKey)
		}
		set.Assets = append(set.Assets, spec)

		for _, a := range m.Audits {
			set.Checks = append(set.Checks, CheckSpec{
				Asset: key,
				Name:  a.Name,
				// The engine may block its own run on a failing audit; the
				// orchestrator never does.
				Blocking: false,
				Metadata: map[string]any{
					"model_id":       m.ID,
					"audit_blocking": a.Blocking,
					"audit_skip":     a.Skip,
					"audit_query":    a.Query,
					"audit_args":     a.Args,
				},
			})
		}
	}
	return set, nil
}

func assetMetadata(m engine.ModelDescriptor) map[string]any {
	md := map[string]any{
		"model_id": m.ID,
		"kind":     m.Kind,
	}
	if m.Cron != "" {
		md["cron"] = m.Cron
	}
	if m.Dialect != "" {
		md["dialect"] = m.Dialect
	}
	if m.DataHash != "" {
		md["code_version"] = m.DataHash
	}
	if m.Partition != nil {
		md["partition_column"] = m.Partition.Column
		if m.Partition.Grain != "" {
			md["partition_grain"] = m.Partition.Grain
		}
	}
	return md
}
