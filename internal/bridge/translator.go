// Package bridge maps the transformation engine's model graph into the
// orchestrator's asset graph.
//
// Architecture:
//
//	ContextManager - shared, lazily constructed engine project context
//	Collector      - buffers the engine's run-time event stream
//	Translator     - model descriptors -> orchestrator asset keys
//	DeriveSchedules - cron declarations -> minimal schedule groups
//	BuildSpecs     - asset/check specifications for publication
//	Service        - run-time materialization entrypoint
package bridge

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nucleus/mesh-bridge/internal/engine"
)

// AssetKey is the orchestrator-facing hierarchical identifier for a
// materializable unit: an ordered sequence of normalized segments.
type AssetKey []string

// String renders the key in its canonical slash-joined form.
func (k AssetKey) String() string { return strings.Join(k, "/") }

// ParseAssetKey parses the canonical slash-joined form back into a key.
func ParseAssetKey(s string) AssetKey {
	if s == "" {
		return nil
	}
	return AssetKey(strings.Split(s, "/"))
}

// TranslationError means a descriptor could not be mapped, two descriptors
// collapsed onto one key, or a dependency references an absent model.
// Fatal at definition time, before the asset graph is published.
type TranslationError struct {
	ModelID string
	Message string
}

func (e *TranslationError) Error() string {
	if e.ModelID == "" {
		return fmt.Sprintf("translation error: %s", e.Message)
	}
	return fmt.Sprintf("translation error for model %s: %s", e.ModelID, e.Message)
}

// Translator is a pure mapping from model descriptors to asset keys.
// The default rule produces [catalog, schema, name] segments; a per-model
// override, when present, wins. The mapping is total and deterministic;
// injectivity within one project is enforced by Table.
type Translator struct {
	overrides map[string]AssetKey
}

// NewTranslator creates a translator with an optional per-model override
// table (model id -> key). The override table is not copied; callers must
// not mutate it afterwards.
func NewTranslator(overrides map[string]AssetKey) *Translator {
	return &Translator{overrides: overrides}
}

// Key maps one descriptor to its asset key.
func (t *Translator) Key(m engine.ModelDescriptor) AssetKey {
	if k, ok := t.overrides[m.ID]; ok {
		out := make(AssetKey, len(k))
		copy(out, k)
		return out
	}
	key := make(AssetKey, 0, 3)
	for _, seg := range []string{m.Catalog, m.Schema, m.Name} {
		if n := normalizeSegment(seg); n != "" {
			key = append(key, n)
		}
	}
	if len(key) == 0 {
		// Totality: a descriptor with no usable segments still maps.
		key = AssetKey{normalizeSegment(m.ID)}
	}
	return key
}

// ExternalKey maps a raw table reference (dotted, possibly quoted) to a key
// using the same normalization, so externally sourced tables land in the
// same uniform namespace.
func (t *Translator) ExternalKey(ref string) AssetKey {
	key := make(AssetKey, 0, 3)
	for _, seg := range strings.Split(ref, ".") {
		seg = strings.Trim(seg, `"`)
		if n := normalizeSegment(seg); n != "" {
			key = append(key, n)
		}
	}
	if len(key) == 0 {
		key = AssetKey{normalizeSegment(ref)}
	}
	return key
}

// Table builds the bidirectional id<->key association for one project.
// A collision is a definition-time error, never a silent merge.
func (t *Translator) Table(models []engine.ModelDescriptor) (*KeyTable, error) {
	kt := &KeyTable{
		keyByID: make(map[string]AssetKey, len(models)),
		idByKey: make(map[string]string, len(models)),
	}
	for _, m := range models {
		key := t.Key(m)
		canonical := key.String()
		if prior, exists := kt.idByKey[canonical]; exists {
			return nil, &TranslationError{ModelID: m.ID,
				Message: fmt.Sprintf("asset key %q collides with model %s", canonical, prior)}
		}
		kt.keyByID[m.ID] = key
		kt.idByKey[canonical] = m.ID
	}
	return kt, nil
}

// KeyTable is the immutable id<->key association for one project.
type KeyTable struct {
	keyByID map[string]AssetKey
	idByKey map[string]string
}

// Key returns the asset key for a model id.
func (kt *KeyTable) Key(modelID string) (AssetKey, bool) {
	k, ok := kt.keyByID[modelID]
	return k, ok
}

// ModelID resolves an asset key back to its model id.
func (kt *KeyTable) ModelID(key AssetKey) (string, bool) {
	id, ok := kt.idByKey[key.String()]
	return id, ok
}

// Keys returns every key in the table, sorted canonically.
func (kt *KeyTable) Keys() []AssetKey {
	out := make([]AssetKey, 0, len(kt.keyByID))
	for _, k := range kt.keyByID {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Len returns the number of mapped models.
func (kt *KeyTable) Len() int { return len(kt.keyByID) }

// normalizeSegment lower-cases and collapses every non-alphanumeric run to a
// single underscore.
func normalizeSegment(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingSep := false
	for _, r := range strings.ToLower(s) {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !alnum {
			pendingSep = b.Len() > 0
			continue
		}
		if pendingSep {
			b.WriteByte('_')
			pendingSep = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
