package migration

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/cenkalti/backoff/v5"
	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"github.com/lokasoft/racktables-to-netbox/internal/netbox"
	"github.com/lokasoft/racktables-to-netbox/pkg/errors"
)

// Resolver kinds. Each kind is a target object class that stages look up
// by name and create on demand.
const (
	KindSite         = "site"
	KindManufacturer = "manufacturer"
	KindDeviceRole   = "device-role"
	KindDeviceType   = "device-type"
	KindVLANGroup    = "vlan-group"
	KindTag          = "tag"
	KindClusterType  = "cluster-type"
)

// KindOps describes how one kind is listed, created and re-found. Find is
// the narrow single-name lookup used after a creation conflict, when some
// other writer got there first.
type KindOps struct {
	List   func(ctx context.Context) (map[string]int64, error)
	Create func(ctx context.Context, name string) (int64, error)
	Find   func(ctx context.Context, name string) (int64, bool, error)
}

// EntityResolver memoizes name-to-ID lookups for auxiliary target
// objects. The full listing for a kind is loaded lazily on first use,
// after which every hit is a map read. Names that failed to resolve are
// remembered so a bad record does not retry the same create on every row
// that references it.
type EntityResolver struct {
	mu     sync.Mutex
	ops    map[string]KindOps
	cache  map[string]map[string]int64
	loaded map[string]bool
	failed map[string]map[string]struct{}
}

func NewEntityResolver(client *netbox.Client) *EntityResolver {
	return &EntityResolver{
		ops:    defaultKindOps(client),
		cache:  make(map[string]map[string]int64),
		loaded: make(map[string]bool),
		failed: make(map[string]map[string]struct{}),
	}
}

// Resolve returns the target ID for the named object, creating it when it
// does not exist yet. A creation conflict means a concurrent or earlier
// writer owns the name, so the resolver re-finds it instead of failing.
func (r *EntityResolver) Resolve(ctx context.Context, kind, name string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ops, ok := r.ops[kind]
	if !ok {
		return 0, fmt.Errorf("unknown resolver kind %q", kind)
	}
	if _, bad := r.failed[kind][name]; bad {
		return 0, errors.NewResourceNotFoundError(kind, name)
	}

	if err := r.ensureLoadedLocked(ctx, kind, ops); err != nil {
		return 0, err
	}
	if id, ok := r.cache[kind][name]; ok {
		return id, nil
	}

	id, err := ops.Create(ctx, name)
	if err != nil {
		if errors.IsConflictError(err) {
			id, err = r.refindLocked(ctx, kind, name, ops)
		}
		if err != nil {
			r.markFailedLocked(kind, name)
			return 0, err
		}
	}

	r.cache[kind][name] = id
	return id, nil
}

// Register seeds a mapping resolved out of band, such as a device type
// created with parameters richer than a bare name.
func (r *EntityResolver) Register(kind, name string, id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cache[kind] == nil {
		r.cache[kind] = make(map[string]int64)
	}
	r.cache[kind][name] = id
}

// Lookup reports a cached mapping without loading or creating anything.
func (r *EntityResolver) Lookup(kind, name string) (int64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.cache[kind][name]
	return id, ok
}

func (r *EntityResolver) ensureLoadedLocked(ctx context.Context, kind string, ops KindOps) error {
	if r.loaded[kind] {
		return nil
	}
	listing, err := ops.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load %s listing: %w", kind, err)
	}
	if r.cache[kind] == nil {
		r.cache[kind] = make(map[string]int64)
	}
	for name, id := range listing {
		if _, seeded := r.cache[kind][name]; !seeded {
			r.cache[kind][name] = id
		}
	}
	r.loaded[kind] = true
	zap.S().Debugw("resolver kind loaded", "kind", kind, "count", len(listing))
	return nil
}

func (r *EntityResolver) refindLocked(ctx context.Context, kind, name string, ops KindOps) (int64, error) {
	op := func() (int64, error) {
		id, found, err := ops.Find(ctx, name)
		if err != nil {
			if errors.IsUnauthorizedError(err) {
				return 0, backoff.Permanent(err)
			}
			return 0, err
		}
		if !found {
			return 0, errors.NewResourceNotFoundError(kind, name)
		}
		return id, nil
	}
	return backoff.Retry(ctx, op,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(5))
}

func (r *EntityResolver) markFailedLocked(kind, name string) {
	if r.failed[kind] == nil {
		r.failed[kind] = make(map[string]struct{})
	}
	r.failed[kind][name] = struct{}{}
}

// WithOps replaces the operations for one kind. Tests inject fakes here.
func (r *EntityResolver) WithOps(kind string, ops KindOps) *EntityResolver {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops[kind] = ops
	return r
}

func defaultKindOps(client *netbox.Client) map[string]KindOps {
	return map[string]KindOps{
		KindSite: {
			List: func(ctx context.Context) (map[string]int64, error) {
				sites, err := client.DCIM().Sites(ctx, nil)
				if err != nil {
					return nil, err
				}
				byName := make(map[string]int64, len(sites))
				for _, s := range sites {
					byName[s.Name] = s.ID
				}
				return byName, nil
			},
			Create: func(ctx context.Context, name string) (int64, error) {
				site, err := client.DCIM().CreateSite(ctx, netbox.SiteParams{Name: name, Slug: slug.Make(name)})
				if err != nil {
					return 0, err
				}
				return site.ID, nil
			},
			Find: func(ctx context.Context, name string) (int64, bool, error) {
				sites, err := client.DCIM().Sites(ctx, url.Values{"name": {name}})
				if err != nil {
					return 0, false, err
				}
				if len(sites) == 0 {
					return 0, false, nil
				}
				return sites[0].ID, true, nil
			},
		},
		KindManufacturer: {
			List: func(ctx context.Context) (map[string]int64, error) {
				items, err := client.DCIM().Manufacturers(ctx, nil)
				if err != nil {
					return nil, err
				}
				byName := make(map[string]int64, len(items))
				for _, m := range items {
					byName[m.Name] = m.ID
				}
				return byName, nil
			},
			Create: func(ctx context.Context, name string) (int64, error) {
				m, err := client.DCIM().CreateManufacturer(ctx, netbox.ManufacturerParams{Name: name, Slug: slug.Make(name)})
				if err != nil {
					return 0, err
				}
				return m.ID, nil
			},
			Find: func(ctx context.Context, name string) (int64, bool, error) {
				items, err := client.DCIM().Manufacturers(ctx, url.Values{"name": {name}})
				if err != nil {
					return 0, false, err
				}
				if len(items) == 0 {
					return 0, false, nil
				}
				return items[0].ID, true, nil
			},
		},
		KindDeviceRole: {
			List: func(ctx context.Context) (map[string]int64, error) {
				items, err := client.DCIM().DeviceRoles(ctx, nil)
				if err != nil {
					return nil, err
				}
				byName := make(map[string]int64, len(items))
				for _, role := range items {
					byName[role.Name] = role.ID
				}
				return byName, nil
			},
			Create: func(ctx context.Context, name string) (int64, error) {
				role, err := client.DCIM().CreateDeviceRole(ctx, netbox.DeviceRoleParams{Name: name, Slug: slug.Make(name)})
				if err != nil {
					return 0, err
				}
				return role.ID, nil
			},
			Find: func(ctx context.Context, name string) (int64, bool, error) {
				items, err := client.DCIM().DeviceRoles(ctx, url.Values{"name": {name}})
				if err != nil {
					return 0, false, err
				}
				if len(items) == 0 {
					return 0, false, nil
				}
				return items[0].ID, true, nil
			},
		},
		KindDeviceType: {
			// Device types are created by the device stages with full
			// parameters and seeded through Register; Create by bare name
			// never happens in practice but stays safe.
			List: func(ctx context.Context) (map[string]int64, error) {
				items, err := client.DCIM().DeviceTypes(ctx, nil)
				if err != nil {
					return nil, err
				}
				byName := make(map[string]int64, len(items))
				for _, dt := range items {
					byName[dt.Model] = dt.ID
				}
				return byName, nil
			},
			Create: func(ctx context.Context, name string) (int64, error) {
				return 0, errors.NewResourceNotFoundError("device-type", name)
			},
			Find: func(ctx context.Context, name string) (int64, bool, error) {
				items, err := client.DCIM().DeviceTypes(ctx, url.Values{"model": {name}})
				if err != nil {
					return 0, false, err
				}
				if len(items) == 0 {
					return 0, false, nil
				}
				return items[0].ID, true, nil
			},
		},
		KindVLANGroup: {
			List: func(ctx context.Context) (map[string]int64, error) {
				items, err := client.IPAM().VLANGroups(ctx, nil)
				if err != nil {
					return nil, err
				}
				byName := make(map[string]int64, len(items))
				for _, g := range items {
					byName[g.Name] = g.ID
				}
				return byName, nil
			},
			Create: func(ctx context.Context, name string) (int64, error) {
				g, err := client.IPAM().CreateVLANGroup(ctx, netbox.VLANGroupParams{Name: name, Slug: slug.Make(name)})
				if err != nil {
					return 0, err
				}
				return g.ID, nil
			},
			Find: func(ctx context.Context, name string) (int64, bool, error) {
				items, err := client.IPAM().VLANGroups(ctx, url.Values{"name": {name}})
				if err != nil {
					return 0, false, err
				}
				if len(items) == 0 {
					return 0, false, nil
				}
				return items[0].ID, true, nil
			},
		},
		KindTag: {
			List: func(ctx context.Context) (map[string]int64, error) {
				items, err := client.Extras().Tags(ctx, nil)
				if err != nil {
					return nil, err
				}
				byName := make(map[string]int64, len(items))
				for _, t := range items {
					byName[t.Name] = t.ID
				}
				return byName, nil
			},
			Create: func(ctx context.Context, name string) (int64, error) {
				t, err := client.Extras().CreateTag(ctx, netbox.TagParams{Name: name, Slug: slug.Make(name)})
				if err != nil {
					return 0, err
				}
				return t.ID, nil
			},
			Find: func(ctx context.Context, name string) (int64, bool, error) {
				items, err := client.Extras().Tags(ctx, url.Values{"name": {name}})
				if err != nil {
					return 0, false, err
				}
				if len(items) == 0 {
					return 0, false, nil
				}
				return items[0].ID, true, nil
			},
		},
		KindClusterType: {
			List: func(ctx context.Context) (map[string]int64, error) {
				items, err := client.Virtualization().ClusterTypes(ctx, nil)
				if err != nil {
					return nil, err
				}
				byName := make(map[string]int64, len(items))
				for _, ct := range items {
					byName[ct.Name] = ct.ID
				}
				return byName, nil
			},
			Create: func(ctx context.Context, name string) (int64, error) {
				ct, err := client.Virtualization().CreateClusterType(ctx, netbox.ClusterTypeParams{Name: name, Slug: slug.Make(name)})
				if err != nil {
					return 0, err
				}
				return ct.ID, nil
			},
			Find: func(ctx context.Context, name string) (int64, bool, error) {
				items, err := client.Virtualization().ClusterTypes(ctx, url.Values{"name": {name}})
				if err != nil {
					return 0, false, err
				}
				if len(items) == 0 {
					return 0, false, nil
				}
				return items[0].ID, true, nil
			},
		},
	}
}
