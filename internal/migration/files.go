package migration

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/lokasoft/racktables-to-netbox/internal/util"
	"github.com/lokasoft/racktables-to-netbox/pkg/errors"
)

// MigrateFiles records the names and sizes of files attached to source
// objects as a custom field on the matching device or VM. The file
// contents stay behind; the target is an inventory, not a file store.
func MigrateFiles(ctx context.Context, mc *Context) (Summary, error) {
	var summary Summary

	exists, err := mc.Prober.TableExists(ctx, "FileLink")
	if err != nil {
		return summary, err
	}
	if !exists {
		return summary, errors.NewStageSkippedError("file attachments", "FileLink table not present")
	}

	refs, err := mc.Source.FileRefs(ctx)
	if err != nil {
		return summary, err
	}

	byObject := make(map[int][]string)
	for _, ref := range refs {
		entry := fmt.Sprintf("%s (%d bytes)", ref.Name, ref.Size)
		byObject[ref.EntityID] = append(byObject[ref.EntityID], entry)
	}

	for objectID, entries := range byObject {
		sort.Strings(entries)
		fields := map[string]any{
			"File_References": util.Truncate(strings.Join(entries, "; "), 200),
		}

		if vmID, ok := mc.XRef.Get(XrefVM, objectID); ok {
			if _, err := mc.Target.Virtualization().PatchVirtualMachineCustomFields(ctx, vmID, fields); err != nil {
				mc.Errors.Logf("file references on vm %d: %v", vmID, err)
				summary.Failed++
				continue
			}
			summary.Created++
			continue
		}
		if deviceID, ok := mc.XRef.Get(XrefDevice, objectID); ok {
			if _, err := mc.Target.DCIM().PatchDeviceCustomFields(ctx, deviceID, fields); err != nil {
				mc.Errors.Logf("file references on device %d: %v", deviceID, err)
				summary.Failed++
				continue
			}
			summary.Created++
			continue
		}
		summary.Skipped++
	}
	return summary, nil
}
