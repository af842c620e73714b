package netbox

// Ref names a related object by ID or by name; NetBox accepts either on
// writes and returns the nested form on reads.
type Ref struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// TagRef attaches an existing tag by name.
type TagRef struct {
	Name string `json:"name"`
}

// Choice is NetBox's {value, label} pair used for status and face fields.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type Site struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Status Choice `json:"status"`
}

type SiteParams struct {
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Tenant int64  `json:"tenant,omitempty"`
}

type Rack struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Site    Ref    `json:"site"`
	UHeight int    `json:"u_height"`
}

type RackParams struct {
	Name         string         `json:"name"`
	Site         int64          `json:"site"`
	UHeight      int            `json:"u_height,omitempty"`
	Comments     string         `json:"comments,omitempty"`
	Tenant       int64          `json:"tenant,omitempty"`
	Tags         []TagRef       `json:"tags,omitempty"`
	CustomFields map[string]any `json:"custom_fields,omitempty"`
}

type Manufacturer struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type ManufacturerParams struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type DeviceRole struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type DeviceRoleParams struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Color string `json:"color,omitempty"`
}

type DeviceType struct {
	ID           int64 `json:"id"`
	Manufacturer Ref   `json:"manufacturer"`
	Model        string `json:"model"`
	Slug         string `json:"slug"`
	UHeight      int    `json:"u_height"`
}

type DeviceTypeParams struct {
	Manufacturer  Ref      `json:"manufacturer"`
	Model         string   `json:"model"`
	Slug          string   `json:"slug"`
	UHeight       int      `json:"u_height"`
	IsFullDepth   bool     `json:"is_full_depth,omitempty"`
	SubdeviceRole string   `json:"subdevice_role,omitempty"`
	Tags          []TagRef `json:"tags,omitempty"`
}

type Device struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Face       Choice  `json:"face"`
	Position   float64 `json:"position"`
	Role       Ref     `json:"role"`
	DeviceType struct {
		ID           int64  `json:"id"`
		Model        string `json:"model"`
		Manufacturer Ref    `json:"manufacturer"`
	} `json:"device_type"`
	Site         Ref            `json:"site"`
	Rack         Ref            `json:"rack"`
	Serial       string         `json:"serial"`
	AssetTag     *string        `json:"asset_tag"`
	CustomFields map[string]any `json:"custom_fields"`
}

type DeviceParams struct {
	Name         string         `json:"name"`
	Role         Ref            `json:"role"`
	DeviceType   Ref            `json:"device_type"`
	Site         int64          `json:"site"`
	Rack         *Ref           `json:"rack,omitempty"`
	Face         string         `json:"face,omitempty"`
	Position     float64        `json:"position,omitempty"`
	Serial       string         `json:"serial,omitempty"`
	AssetTag     *string        `json:"asset_tag,omitempty"`
	Cluster      *Ref           `json:"cluster,omitempty"`
	Comments     string         `json:"comments,omitempty"`
	Tenant       int64          `json:"tenant,omitempty"`
	Tags         []TagRef       `json:"tags,omitempty"`
	CustomFields map[string]any `json:"custom_fields,omitempty"`
}

type DeviceBay struct {
	ID     int64 `json:"id"`
	Device Ref   `json:"device"`
	Name   string `json:"name"`
}

type DeviceBayParams struct {
	Device          int64  `json:"device"`
	Name            string `json:"name"`
	InstalledDevice int64  `json:"installed_device,omitempty"`
}

type Interface struct {
	ID     int64  `json:"id"`
	Device Ref    `json:"device"`
	Name   string `json:"name"`
	Type   Choice `json:"type"`
}

type InterfaceParams struct {
	Device       int64          `json:"device"`
	Name         string         `json:"name"`
	Type         string         `json:"type"`
	Label        string         `json:"label,omitempty"`
	CustomFields map[string]any `json:"custom_fields,omitempty"`
}

type Cable struct {
	ID           int64           `json:"id"`
	Label        string          `json:"label"`
	ATerminations []Termination  `json:"a_terminations"`
	BTerminations []Termination  `json:"b_terminations"`
	CustomFields map[string]any  `json:"custom_fields"`
}

type Termination struct {
	ObjectType string `json:"object_type"`
	ObjectID   int64  `json:"object_id"`
}

type CableParams struct {
	ATerminations []Termination  `json:"a_terminations"`
	BTerminations []Termination  `json:"b_terminations"`
	Label         string         `json:"label,omitempty"`
	Color         string         `json:"color,omitempty"`
	Length        string         `json:"length,omitempty"`
	LengthUnit    string         `json:"length_unit,omitempty"`
	Description   string         `json:"description,omitempty"`
	CustomFields  map[string]any `json:"custom_fields,omitempty"`
}

type Prefix struct {
	ID           int64          `json:"id"`
	Prefix       string         `json:"prefix"`
	Status       Choice         `json:"status"`
	Description  string         `json:"description"`
	VLAN         *Ref           `json:"vlan"`
	Tags         []Tag          `json:"tags"`
	CustomFields map[string]any `json:"custom_fields"`
}

type PrefixParams struct {
	Prefix       string         `json:"prefix"`
	Status       string         `json:"status,omitempty"`
	Description  string         `json:"description,omitempty"`
	VLAN         *Ref           `json:"vlan,omitempty"`
	Site         int64          `json:"site,omitempty"`
	Tenant       int64          `json:"tenant,omitempty"`
	Tags         []TagRef       `json:"tags,omitempty"`
	CustomFields map[string]any `json:"custom_fields,omitempty"`
}

type IPAddress struct {
	ID                 int64          `json:"id"`
	Address            string         `json:"address"`
	Status             Choice         `json:"status"`
	Role               *Choice        `json:"role"`
	Description        string         `json:"description"`
	AssignedObjectType string         `json:"assigned_object_type"`
	AssignedObjectID   int64          `json:"assigned_object_id"`
	CustomFields       map[string]any `json:"custom_fields"`
}

type IPAddressParams struct {
	Address            string         `json:"address"`
	Role               string         `json:"role,omitempty"`
	Description        string         `json:"description,omitempty"`
	AssignedObjectType string         `json:"assigned_object_type,omitempty"`
	AssignedObjectID   int64          `json:"assigned_object_id,omitempty"`
	Tenant             int64          `json:"tenant,omitempty"`
	Tags               []TagRef       `json:"tags,omitempty"`
	CustomFields       map[string]any `json:"custom_fields,omitempty"`
}

type IPRange struct {
	ID           int64  `json:"id"`
	StartAddress string `json:"start_address"`
	EndAddress   string `json:"end_address"`
	Status       Choice `json:"status"`
}

type IPRangeParams struct {
	StartAddress string   `json:"start_address"`
	EndAddress   string   `json:"end_address"`
	Status       string   `json:"status,omitempty"`
	Description  string   `json:"description,omitempty"`
	Tags         []TagRef `json:"tags,omitempty"`
}

type VLANGroup struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type VLANGroupParams struct {
	Name         string         `json:"name"`
	Slug         string         `json:"slug"`
	CustomFields map[string]any `json:"custom_fields,omitempty"`
}

type VLAN struct {
	ID    int64  `json:"id"`
	VID   int    `json:"vid"`
	Name  string `json:"name"`
	Group *Ref   `json:"group"`
}

type VLANParams struct {
	VID   int    `json:"vid"`
	Name  string `json:"name"`
	Group *Ref   `json:"group,omitempty"`
}

type Service struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Protocol       Choice `json:"protocol"`
	Ports          []int  `json:"ports"`
	Device         *Ref   `json:"device"`
	VirtualMachine *Ref   `json:"virtual_machine"`
}

type ServiceParams struct {
	Name           string `json:"name"`
	Protocol       string `json:"protocol"`
	Ports          []int  `json:"ports"`
	Device         int64  `json:"device,omitempty"`
	VirtualMachine int64  `json:"virtual_machine,omitempty"`
	Description    string `json:"description,omitempty"`
}

type ClusterType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type ClusterTypeParams struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Cluster struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type Ref    `json:"type"`
	Site *Ref   `json:"site"`
}

type ClusterParams struct {
	Name string `json:"name"`
	Type Ref    `json:"type"`
	Site int64  `json:"site,omitempty"`
}

type VirtualMachine struct {
	ID           int64          `json:"id"`
	Name         string         `json:"name"`
	Cluster      *Ref           `json:"cluster"`
	CustomFields map[string]any `json:"custom_fields"`
}

type VirtualMachineParams struct {
	Name         string         `json:"name"`
	Cluster      *Ref           `json:"cluster,omitempty"`
	Comments     string         `json:"comments,omitempty"`
	Tenant       int64          `json:"tenant,omitempty"`
	Tags         []TagRef       `json:"tags,omitempty"`
	CustomFields map[string]any `json:"custom_fields,omitempty"`
}

type VMInterface struct {
	ID             int64 `json:"id"`
	VirtualMachine Ref   `json:"virtual_machine"`
	Name           string `json:"name"`
}

type VMInterfaceParams struct {
	VirtualMachine int64          `json:"virtual_machine"`
	Name           string         `json:"name"`
	CustomFields   map[string]any `json:"custom_fields,omitempty"`
}

type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type TagParams struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type CustomField struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Type        Choice   `json:"type"`
	ObjectTypes []string `json:"object_types"`
}

type CustomFieldParams struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	ObjectTypes []string `json:"object_types"`
	Label       string   `json:"label,omitempty"`
	Description string   `json:"description,omitempty"`
	Required    bool     `json:"required,omitempty"`
	Weight      int      `json:"weight,omitempty"`
}

type Tenant struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type TenantParams struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}
