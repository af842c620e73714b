package migration

import (
	"context"
	"fmt"
	"net/netip"
	"strings"

	"github.com/lokasoft/racktables-to-netbox/internal/netbox"
	"github.com/lokasoft/racktables-to-netbox/internal/racktables"
	"github.com/lokasoft/racktables-to-netbox/internal/util"
	"github.com/lokasoft/racktables-to-netbox/pkg/errors"
)

// vsPlan probes the virtual service tables, which were renamed more than
// once upstream. The generic column picker is too eager for the id and
// description roles, so those picks are validated here.
func (mc *Context) vsPlan(ctx context.Context) (vs, ips, ports racktables.TablePlan, err error) {
	vs, err = mc.Prober.Plan(ctx, "VS", map[string][]string{
		"id":   {"vs_id", "id"},
		"name": {"name"},
	})
	if err != nil || vs.Missing {
		return vs, ips, ports, err
	}
	if picked := vs.Col("id"); picked != "vs_id" && picked != "id" && len(vs.Columns) > 0 {
		vs.Picked["id"] = vs.Columns[0]
	}
	for _, col := range vs.Columns {
		lower := strings.ToLower(col)
		if strings.Contains(lower, "descr") || strings.Contains(lower, "comment") {
			vs.Picked["description"] = col
			break
		}
	}

	ips, err = mc.planWithFallback(ctx, []string{"VSEnabledIPs", "VSIPs"}, map[string][]string{
		"vs_id": {"vs_id"},
		"ip":    {"vip", "ip"},
	})
	if err != nil {
		return vs, ips, ports, err
	}
	ports, err = mc.planWithFallback(ctx, []string{"VSEnabledPorts", "VSPorts"}, map[string][]string{
		"vs_id": {"vs_id"},
		"port":  {"port_name", "vport", "port"},
	})
	return vs, ips, ports, err
}

// planWithFallback probes table name candidates in order and plans the
// first one that exists.
func (mc *Context) planWithFallback(ctx context.Context, tables []string, roles map[string][]string) (racktables.TablePlan, error) {
	for _, table := range tables {
		exists, err := mc.Prober.TableExists(ctx, table)
		if err != nil {
			return racktables.TablePlan{}, err
		}
		if exists {
			return mc.Prober.Plan(ctx, table, roles)
		}
	}
	return racktables.TablePlan{Table: tables[0], Missing: true}, nil
}

// MigrateVirtualServices creates a service on each device or VM that
// holds an address enabled for a virtual service. Ports are parsed out of
// the source port names; a service with no parsable port defaults to 80.
func MigrateVirtualServices(ctx context.Context, mc *Context) (Summary, error) {
	var summary Summary

	vsPlan, ipPlan, portPlan, err := mc.vsPlan(ctx)
	if err != nil {
		return summary, err
	}
	if vsPlan.Missing {
		return summary, errors.NewStageSkippedError("virtual services", "VS table not present")
	}

	services, err := mc.Source.VirtualServices(ctx, vsPlan)
	if err != nil {
		return summary, err
	}
	vsIPs, err := mc.Source.VSIPs(ctx, ipPlan)
	if err != nil {
		return summary, err
	}
	vsPorts, err := mc.Source.VSPorts(ctx, portPlan)
	if err != nil {
		return summary, err
	}

	addresses, err := mc.Target.IPAM().IPAddresses(ctx, nil)
	if err != nil {
		return summary, err
	}
	index := newIPIndex(addresses)

	existing, err := mc.Target.IPAM().Services(ctx, nil)
	if err != nil {
		return summary, err
	}
	present := make(map[string]struct{}, len(existing))
	for _, svc := range existing {
		host := ""
		if svc.Device != nil {
			host = "d" + svc.Device.Name
		} else if svc.VirtualMachine != nil {
			host = "v" + svc.VirtualMachine.Name
		}
		present[host+"/"+svc.Name] = struct{}{}
	}

	for _, vs := range services {
		name := vs.Name.String
		if name == "" {
			name = fmt.Sprintf("VS-%d", vs.ID)
		}

		ports := []int{}
		for _, portName := range vsPorts[vs.ID] {
			ports = append(ports, ParseServicePorts(portName)...)
		}
		if len(ports) == 0 {
			ports = []int{80}
		}

		for _, rawIP := range vsIPs[vs.ID] {
			addr, ok := netip.AddrFromSlice(rawIP)
			if !ok {
				continue
			}
			target, found := index.lookup(addr.String())
			if !found || target.AssignedObjectID == 0 {
				mc.Errors.Logf("virtual service %q: address %s is not assigned to any host", name, addr)
				summary.Failed++
				continue
			}

			params := netbox.ServiceParams{
				Name:        name,
				Protocol:    "tcp",
				Ports:       ports,
				Description: util.Truncate(vs.Description.String, 200),
			}
			hostKey := ""
			switch target.AssignedObjectType {
			case vmInterfaceObjectType:
				vm, err := vmOfInterface(ctx, mc.Target, target.AssignedObjectID)
				if err != nil {
					mc.Errors.Logf("virtual service %q: %v", name, err)
					summary.Failed++
					continue
				}
				params.VirtualMachine = vm.ID
				hostKey = "v" + vm.Name
			case interfaceObjectType:
				device, err := deviceOfInterface(ctx, mc.Target, target.AssignedObjectID)
				if err != nil {
					mc.Errors.Logf("virtual service %q: %v", name, err)
					summary.Failed++
					continue
				}
				params.Device = device.ID
				hostKey = "d" + device.Name
			default:
				summary.Skipped++
				continue
			}

			if _, dup := present[hostKey+"/"+name]; dup {
				summary.Skipped++
				continue
			}

			if _, err := mc.Target.IPAM().CreateService(ctx, params); err != nil {
				if errors.IsConflictError(err) {
					summary.Skipped++
					continue
				}
				mc.Errors.Logf("virtual service %q: %v", name, err)
				summary.Failed++
				continue
			}
			present[hostKey+"/"+name] = struct{}{}
			summary.Created++
		}
	}
	return summary, nil
}

func deviceOfInterface(ctx context.Context, client *netbox.Client, interfaceID int64) (*netbox.Ref, error) {
	var iface netbox.Interface
	if err := client.Get(ctx, fmt.Sprintf("/api/dcim/interfaces/%d/", interfaceID), &iface); err != nil {
		return nil, err
	}
	return &iface.Device, nil
}

func vmOfInterface(ctx context.Context, client *netbox.Client, interfaceID int64) (*netbox.Ref, error) {
	var iface netbox.VMInterface
	if err := client.Get(ctx, fmt.Sprintf("/api/virtualization/interfaces/%d/", interfaceID), &iface); err != nil {
		return nil, err
	}
	return &iface.VirtualMachine, nil
}
