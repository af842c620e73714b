package migration

import (
	"context"

	"github.com/lokasoft/racktables-to-netbox/internal/config"
	"github.com/lokasoft/racktables-to-netbox/internal/models"
	"github.com/lokasoft/racktables-to-netbox/internal/netbox"
	"github.com/lokasoft/racktables-to-netbox/internal/racktables"
	"github.com/lokasoft/racktables-to-netbox/internal/util"
	"github.com/lokasoft/racktables-to-netbox/pkg/errors"
)

const unmountedClusterName = "Unmounted Cluster"

// MigrateVirtualMachines creates clusters from the source cluster objects
// and VMs from their members. VMs that belong to no cluster land in a
// shared "Unmounted Cluster" so nothing is silently dropped.
func MigrateVirtualMachines(ctx context.Context, mc *Context) (Summary, error) {
	var summary Summary

	clusters, err := mc.Source.Objects(ctx, racktables.ByObjtype(config.ObjtypeVMCluster))
	if err != nil {
		return summary, err
	}

	existingClusters, err := mc.Target.Virtualization().Clusters(ctx, nil)
	if err != nil {
		return summary, err
	}
	clusterIDs := make(map[string]int64, len(existingClusters))
	for _, c := range existingClusters {
		clusterIDs[c.Name] = c.ID
	}

	existingVMs, err := mc.Target.Virtualization().VirtualMachines(ctx, nil)
	if err != nil {
		return summary, err
	}
	vmNames := make(map[string]int64, len(existingVMs))
	for _, vm := range existingVMs {
		vmNames[vm.Name] = vm.ID
	}

	ensureCluster := func(name string) (int64, error) {
		if id, ok := clusterIDs[name]; ok {
			return id, nil
		}
		typeID, err := mc.Resolver.Resolve(ctx, KindClusterType, name)
		if err != nil {
			return 0, err
		}
		cluster, err := mc.Target.Virtualization().CreateCluster(ctx, netbox.ClusterParams{
			Name: name,
			Type: netbox.Ref{ID: typeID},
			Site: mc.SiteID,
		})
		if err != nil {
			return 0, err
		}
		clusterIDs[name] = cluster.ID
		return cluster.ID, nil
	}

	createVM := func(obj *models.Object, clusterID int64) {
		name := obj.Name.String
		if existingID, ok := vmNames[name]; ok {
			mc.XRef.Put(XrefVM, obj.ID, existingID)
			summary.Skipped++
			return
		}

		fields := map[string]any{}
		if obj.Label.String != "" {
			fields["VM_Label"] = obj.Label.String
		}
		if obj.AssetNo.String != "" {
			fields["VM_Asset_No"] = obj.AssetNo.String
		}

		vm, err := mc.Target.Virtualization().CreateVirtualMachine(ctx, netbox.VirtualMachineParams{
			Name:         name,
			Cluster:      &netbox.Ref{ID: clusterID},
			Comments:     util.Truncate(obj.Comment.String, 200),
			Tenant:       mc.TenantID,
			CustomFields: fields,
		})
		if err != nil {
			if errors.IsConflictError(err) {
				summary.Skipped++
				return
			}
			mc.Errors.Logf("vm %q: %v", name, err)
			summary.Failed++
			return
		}
		vmNames[name] = vm.ID
		mc.XRef.Put(XrefVM, obj.ID, vm.ID)
		summary.Created++
	}

	mounted := make(map[int]struct{})
	if mc.Settings.Stages.MountedVMs {
		for _, cluster := range clusters {
			clusterName := cluster.Name.String
			if clusterName == "" {
				continue
			}
			clusterID, err := ensureCluster(clusterName)
			if err != nil {
				mc.Errors.Logf("cluster %q: %v", clusterName, err)
				summary.Failed++
				continue
			}

			members, err := mc.Source.ChildrenOf(ctx, cluster.ID)
			if err != nil {
				return summary, err
			}
			for _, member := range members {
				if member.ObjtypeID != config.ObjtypeVM || member.Name.String == "" {
					continue
				}
				mounted[member.ID] = struct{}{}
				obj, err := mc.Source.ObjectByID(ctx, member.ID)
				if err != nil {
					return summary, err
				}
				if obj == nil {
					continue
				}
				createVM(obj, clusterID)
			}
		}
	}

	if mc.Settings.Stages.UnmountedVMs {
		vms, err := mc.Source.Objects(ctx, racktables.ByObjtype(config.ObjtypeVM))
		if err != nil {
			return summary, err
		}
		var unmountedID int64
		for i := range vms {
			vm := &vms[i]
			if _, ok := mounted[vm.ID]; ok {
				continue
			}
			if vm.Name.String == "" {
				summary.Skipped++
				continue
			}
			if unmountedID == 0 {
				unmountedID, err = ensureCluster(unmountedClusterName)
				if err != nil {
					return summary, err
				}
			}
			createVM(vm, unmountedID)
		}
	}

	return summary, nil
}
