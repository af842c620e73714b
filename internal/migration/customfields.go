package migration

import (
	"context"

	"github.com/lokasoft/racktables-to-netbox/internal/netbox"
)

// customFieldDefinitions provisions every custom field the stages write.
// Required fields carry defaults through the stages themselves, so a
// record never fails validation for lacking one.
var customFieldDefinitions = []netbox.CustomFieldParams{
	{Name: "VLAN_Domain_ID", Type: "text", ObjectTypes: []string{"ipam.vlangroup"}, Required: true,
		Description: "ID of the VLAN domain in the source system"},
	{Name: "Prefix_Name", Type: "text", ObjectTypes: []string{"ipam.prefix"},
		Description: "Name of the network in the source system"},
	{Name: "Device_Label", Type: "text", ObjectTypes: []string{"dcim.device"},
		Description: "Visible label of the device in the source system"},
	{Name: "VM_Asset_No", Type: "text", ObjectTypes: []string{"virtualization.virtualmachine"},
		Description: "Asset number of the virtual machine"},
	{Name: "VM_Label", Type: "text", ObjectTypes: []string{"virtualization.virtualmachine"},
		Description: "Visible label of the virtual machine"},
	{Name: "VM_Interface_Type", Type: "text", ObjectTypes: []string{"virtualization.vminterface"}, Required: true,
		Description: "Type of the virtual machine interface"},
	{Name: "Device_Interface_Type", Type: "text", ObjectTypes: []string{"dcim.interface"}, Required: true,
		Description: "Physical type of the interface in the source system"},
	{Name: "IP_Name", Type: "text", ObjectTypes: []string{"ipam.ipaddress"},
		Description: "Name of the IP address in the source system"},
	{Name: "IP_Type", Type: "text", ObjectTypes: []string{"ipam.ipaddress"},
		Description: "Allocation type of the IP address"},
	{Name: "Interface_Name", Type: "text", ObjectTypes: []string{"ipam.ipaddress"},
		Description: "Name of the interface the address was allocated to"},
	{Name: "Patch_Cable_Type", Type: "text", ObjectTypes: []string{"dcim.cable"},
		Description: "Type of the patch cable"},
	{Name: "Patch_Cable_Connector_A", Type: "text", ObjectTypes: []string{"dcim.cable"},
		Description: "Connector type on the A side"},
	{Name: "Patch_Cable_Connector_B", Type: "text", ObjectTypes: []string{"dcim.cable"},
		Description: "Connector type on the B side"},
	{Name: "Cable_Color", Type: "text", ObjectTypes: []string{"dcim.cable"},
		Description: "Color of the cable"},
	{Name: "Cable_Length", Type: "text", ObjectTypes: []string{"dcim.cable"},
		Description: "Length of the cable"},
	{Name: "NAT_Type", Type: "text", ObjectTypes: []string{"ipam.ipaddress"},
		Description: "NAT rule type for this address"},
	{Name: "NAT_Match_IP", Type: "text", ObjectTypes: []string{"ipam.ipaddress"},
		Description: "The address on the other side of the NAT rule"},
	{Name: "LB_Config", Type: "text", ObjectTypes: []string{"ipam.ipaddress"},
		Description: "Load balancer configuration summary"},
	{Name: "RS_Pool", Type: "text", ObjectTypes: []string{"ipam.ipaddress"},
		Description: "Real server pool for a load balancer VIP"},
	{Name: "LB_Pool", Type: "text", ObjectTypes: []string{"ipam.ipaddress"},
		Description: "Pool membership of a real server address"},
	{Name: "Cacti_Server", Type: "text", ObjectTypes: []string{"dcim.device", "virtualization.virtualmachine"},
		Description: "Cacti server monitoring this host"},
	{Name: "Cacti_Graph_ID", Type: "text", ObjectTypes: []string{"dcim.device", "virtualization.virtualmachine"},
		Description: "Cacti graph identifier"},
	{Name: "Monitoring_URL", Type: "text", ObjectTypes: []string{"dcim.device", "virtualization.virtualmachine"},
		Description: "Direct link to the monitoring graph"},
	{Name: "File_References", Type: "text", ObjectTypes: []string{"dcim.device", "virtualization.virtualmachine"},
		Description: "Names and sizes of files attached in the source system"},
}

// ProvisionCustomFields creates any missing custom field definitions on
// the target. Safe to run repeatedly.
func ProvisionCustomFields(ctx context.Context, client *netbox.Client) error {
	return client.Extras().EnsureCustomFields(ctx, customFieldDefinitions)
}
