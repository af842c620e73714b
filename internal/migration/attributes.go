package migration

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/lokasoft/racktables-to-netbox/internal/config"
	"github.com/lokasoft/racktables-to-netbox/internal/util"
)

// attributeSummary renders an object's custom attributes as one line per
// attribute, for the device comments field. Attributes that already have
// a dedicated home on the target (hardware type, rack height, serial)
// are left out.
func (mc *Context) attributeSummary(ctx context.Context, objectID int) (string, error) {
	if mc.attrNames == nil {
		names, err := mc.Source.AttributeNames(ctx)
		if err != nil {
			return "", err
		}
		mc.attrNames = names
	}

	values, err := mc.Source.AttributeValues(ctx, objectID)
	if err != nil {
		return "", err
	}

	var lines []string
	for _, v := range values {
		switch v.AttrID {
		case config.AttrHWType, config.AttrRackHeight, config.AttrSerial:
			continue
		}
		name := mc.attrNames[v.AttrID]
		if name == "" {
			continue
		}

		value := v.StringValue.String
		if value == "" && v.UintValue.Valid {
			value = fmt.Sprintf("%d", v.UintValue.Int64)
		}
		if value == "" && v.FloatValue.Valid {
			value = fmt.Sprintf("%g", v.FloatValue.Float64)
		}
		if value == "" {
			continue
		}
		lines = append(lines, name+": "+value)
	}

	sort.Strings(lines)
	return util.Truncate(strings.Join(lines, "\n"), 200), nil
}
