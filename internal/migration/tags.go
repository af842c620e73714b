package migration

import (
	"context"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"github.com/lokasoft/racktables-to-netbox/internal/config"
	"github.com/lokasoft/racktables-to-netbox/internal/netbox"
	"github.com/lokasoft/racktables-to-netbox/pkg/errors"
)

// MigrateTags carries the source tag tree over, plus the fixed family and
// bookkeeping tags the later stages attach to their records.
func MigrateTags(ctx context.Context, mc *Context) (Summary, error) {
	var summary Summary

	sourceTags, err := mc.Source.AllTags(ctx)
	if err != nil {
		return summary, err
	}
	wanted := append(sourceTags,
		config.IPv4TagName, config.IPv6TagName, availableTagName, autoGenTagName)

	existing, err := mc.Target.Extras().Tags(ctx, nil)
	if err != nil {
		return summary, err
	}
	present := make(map[string]struct{}, len(existing))
	for _, t := range existing {
		present[t.Name] = struct{}{}
	}

	for _, name := range wanted {
		if name == "" {
			continue
		}
		if _, ok := present[name]; ok {
			summary.Skipped++
			continue
		}
		if _, err := mc.Target.Extras().CreateTag(ctx, netbox.TagParams{Name: name, Slug: slug.Make(name)}); err != nil {
			if errors.IsConflictError(err) {
				summary.Skipped++
				continue
			}
			mc.Errors.Logf("tag %q: %v", name, err)
			summary.Failed++
			continue
		}
		present[name] = struct{}{}
		summary.Created++
	}

	zap.S().Debugw("tags migrated", "source", len(sourceTags), "created", summary.Created)
	return summary, nil
}
