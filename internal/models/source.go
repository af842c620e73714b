// Package models holds the row types read from the Racktables database.
// They are plain structs with no behavior; the repository fills them and
// the migration stages consume them.
package models

import "database/sql"

// Object is a row of the Object table. Everything in Racktables is an
// Object: devices, VMs, clusters, racks, rows, locations.
type Object struct {
	ID          int
	Name        sql.NullString
	Label       sql.NullString
	ObjtypeID   int
	AssetNo     sql.NullString
	Comment     sql.NullString
	HasProblems bool
}

// Port is a physical or logical interface on an Object.
type Port struct {
	ID       int
	ObjectID int
	Name     sql.NullString
	IIFID    int
	// TypeID references PortOuterInterface.
	TypeID int
	Label  sql.NullString
}

// Link joins two ports, optionally through a patch cable from the heap.
type Link struct {
	PortA   int
	PortB   int
	CableID sql.NullInt64
}

// RackSpaceAtom is one rack unit slice occupied by an object. The atom
// column is "front", "interior" or "rear".
type RackSpaceAtom struct {
	RackID   int
	UnitNo   int
	Atom     string
	State    string
	ObjectID sql.NullInt64
}

// Network is a row of IPv4Network or IPv6Network. Addr holds the raw
// address bytes in network order (4 or 16 bytes).
type Network struct {
	ID      int
	Addr    []byte
	Mask    int
	Name    sql.NullString
	Comment sql.NullString
}

// Address is a row of IPv4Address or IPv6Address.
type Address struct {
	Addr     []byte
	Name     sql.NullString
	Comment  sql.NullString
	Reserved bool
}

// Allocation binds an address to an object's interface. Type is one of
// "regular", "shared", "virtual", "router" or "point2point".
type Allocation struct {
	ObjectID      int
	Addr          []byte
	InterfaceName sql.NullString
	Type          string
	ObjtypeID     int
	ObjectName    sql.NullString
}

// VLANDomain groups VLANs; its description becomes a VLAN group name.
type VLANDomain struct {
	ID          int
	Description sql.NullString
}

// NetworkVLAN is a row of VLANIPv4 or VLANIPv6: a VLAN bound to a network.
type NetworkVLAN struct {
	DomainID  int
	VLANID    int
	NetworkID int
}

// AttributeValue is one attribute of an object. Exactly one of the value
// fields is meaningful depending on the attribute's type.
type AttributeValue struct {
	ObjectID    int
	AttrID      int
	StringValue sql.NullString
	UintValue   sql.NullInt64
	FloatValue  sql.NullFloat64
}

// EntityRef identifies a parent or child in an EntityLink traversal.
type EntityRef struct {
	ID        int
	Name      sql.NullString
	ObjtypeID int
}

// PatchCable is a Link row joined with its PatchCableHeap entry.
type PatchCable struct {
	PortA       int
	PortB       int
	TypeID      sql.NullInt64
	EndAConnID  sql.NullInt64
	EndBConnID  sql.NullInt64
	Length      sql.NullString
	Color       sql.NullString
	Description sql.NullString
}

// VirtualService is a row of the VS table under whichever column names
// the probe discovered.
type VirtualService struct {
	ID          int
	Name        sql.NullString
	Description sql.NullString
}

// NATRule is a row of IPv4NAT.
type NATRule struct {
	Proto       string
	LocalAddr   []byte
	LocalPort   sql.NullInt64
	RemoteAddr  []byte
	RemotePort  sql.NullInt64
	Description sql.NullString
}

// LBEntry is a row of IPv4LB. RSPool and Comment are absent on older
// schemas; the probe decides whether they are selected.
type LBEntry struct {
	Prio     sql.NullString
	VSConfig sql.NullString
	RSConfig sql.NullString
	RSPool   sql.NullString
	Comment  sql.NullString
}

// RSPool is a row of IPv4RSPool.
type RSPool struct {
	ID   int
	Name sql.NullString
	VSID sql.NullInt64
}

// CactiGraph ties an object to a graph on a Cacti server.
type CactiGraph struct {
	ObjectID   int
	ServerID   int
	GraphID    int
	Caption    sql.NullString
	ObjectName sql.NullString
	ObjtypeID  int
}

// FileRef is a File row joined through FileLink to its owning entity.
// Contents stay in the source database; only the inventory migrates.
type FileRef struct {
	FileID      int
	Name        string
	Type        sql.NullString
	Size        int64
	EntityRealm string
	EntityID    int
}
