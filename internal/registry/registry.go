package registry

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"
)

// Registry is a threadsafe in-memory registry of feature-store objects.
// Apply is idempotent: re-applying an object with the same name replaces
// the previous definition.
type Registry struct {
	mu       sync.RWMutex
	entities map[string]Entity
	sources  map[string]DataSource
	views    map[string]FeatureView
	services map[string]FeatureService
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		entities: make(map[string]Entity),
		sources:  make(map[string]DataSource),
		views:    make(map[string]FeatureView),
		services: make(map[string]FeatureService),
	}
}

// Apply registers or replaces the given objects. A feature view must
// reference entities and a source that are registered in the same call or
// earlier.
func (r *Registry) Apply(entities []Entity, sources []DataSource, views []FeatureView, services []FeatureService) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range entities {
		if e.Name == "" || e.JoinKey == "" {
			return fmt.Errorf("Apply: entity needs a name and join key, got %+v", e)
		}
		r.entities[e.Name] = e
	}
	for _, s := range sources {
		if s.Name == "" {
			return fmt.Errorf("Apply: data source needs a name, got %+v", s)
		}
		r.sources[s.Name] = s
	}
	for _, v := range views {
		if v.Name == "" {
			return fmt.Errorf("Apply: feature view needs a name, got %+v", v)
		}
		for _, entity := range v.Entities {
			if _, ok := r.entities[entity]; !ok {
				return fmt.Errorf("Apply: view %q references unknown entity %q", v.Name, entity)
			}
		}
		if _, ok := r.sources[v.Source]; !ok {
			return fmt.Errorf("Apply: view %q references unknown source %q", v.Name, v.Source)
		}
		r.views[v.Name] = v
	}
	for _, svc := range services {
		if svc.Name == "" {
			return fmt.Errorf("Apply: feature service needs a name, got %+v", svc)
		}
		for _, view := range svc.Views {
			if _, ok := r.views[view]; !ok {
				return fmt.Errorf("Apply: service %q references unknown view %q", svc.Name, view)
			}
		}
		r.services[svc.Name] = svc
	}

	return nil
}

// FeatureViews returns all registered views sorted by name.
func (r *Registry) FeatureViews() []FeatureView {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]FeatureView, 0, len(r.views))
	for _, v := range r.views {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Metadata is the exported registry snapshot consumed by the catalog
// sync.
type Metadata struct {
	ExportTimestamp time.Time        `json:"export_timestamp"`
	FeatureStore    string           `json:"feature_store"`
	Entities        []Entity         `json:"entities"`
	DataSources     []DataSource     `json:"data_sources"`
	FeatureViews    []FeatureView    `json:"feature_views"`
	FeatureServices []FeatureService `json:"feature_services"`
}

// Snapshot builds a metadata snapshot with deterministic ordering.
func (r *Registry) Snapshot(now time.Time) Metadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	meta := Metadata{
		ExportTimestamp: now,
		FeatureStore:    "customer_feature_pipeline",
	}
	for _, e := range r.entities {
		meta.Entities = append(meta.Entities, e)
	}
	for _, s := range r.sources {
		meta.DataSources = append(meta.DataSources, s)
	}
	for _, v := range r.views {
		meta.FeatureViews = append(meta.FeatureViews, v)
	}
	for _, svc := range r.services {
		meta.FeatureServices = append(meta.FeatureServices, svc)
	}

	sort.Slice(meta.Entities, func(i, j int) bool { return meta.Entities[i].Name < meta.Entities[j].Name })
	sort.Slice(meta.DataSources, func(i, j int) bool { return meta.DataSources[i].Name < meta.DataSources[j].Name })
	sort.Slice(meta.FeatureViews, func(i, j int) bool { return meta.FeatureViews[i].Name < meta.FeatureViews[j].Name })
	sort.Slice(meta.FeatureServices, func(i, j int) bool { return meta.FeatureServices[i].Name < meta.FeatureServices[j].Name })

	return meta
}

// ExportMetadata writes the registry snapshot as indented JSON, the
// format the catalog ingestion consumes.
func (r *Registry) ExportMetadata(w io.Writer, now time.Time) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r.Snapshot(now)); err != nil {
		return fmt.Errorf("ExportMetadata: %w", err)
	}
	return nil
}
