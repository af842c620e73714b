package netbox

import (
	"context"
	"net/url"

	"go.uber.org/zap"

	serviceErrs "github.com/lokasoft/racktables-to-netbox/pkg/errors"
)

// ExtrasClient covers tags and custom fields.
type ExtrasClient struct {
	c *Client
}

func (e *ExtrasClient) Tags(ctx context.Context, filter url.Values) ([]Tag, error) {
	return list[Tag](ctx, e.c, "/api/extras/tags/", filter)
}

func (e *ExtrasClient) CreateTag(ctx context.Context, params TagParams) (*Tag, error) {
	return create[Tag](ctx, e.c, "/api/extras/tags/", params)
}

func (e *ExtrasClient) CustomFields(ctx context.Context, filter url.Values) ([]CustomField, error) {
	return list[CustomField](ctx, e.c, "/api/extras/custom-fields/", filter)
}

func (e *ExtrasClient) CreateCustomField(ctx context.Context, params CustomFieldParams) (*CustomField, error) {
	return create[CustomField](ctx, e.c, "/api/extras/custom-fields/", params)
}

// EnsureCustomFields creates every definition that does not exist yet.
// Conflicts mean another run already provisioned the field and are not
// errors.
func (e *ExtrasClient) EnsureCustomFields(ctx context.Context, defs []CustomFieldParams) error {
	existing, err := e.CustomFields(ctx, nil)
	if err != nil {
		return err
	}
	present := make(map[string]struct{}, len(existing))
	for _, cf := range existing {
		present[cf.Name] = struct{}{}
	}

	for _, def := range defs {
		if _, ok := present[def.Name]; ok {
			continue
		}
		if _, err := e.CreateCustomField(ctx, def); err != nil {
			if serviceErrs.IsConflictError(err) {
				continue
			}
			return err
		}
		zap.S().Infow("created custom field", "name", def.Name, "types", def.ObjectTypes)
	}
	return nil
}
