package config

// Racktables object type IDs with special handling.
const (
	ObjtypeServer        = 4
	ObjtypeRouter        = 7
	ObjtypeSwitch        = 8
	ObjtypePatchPanel    = 9
	ObjtypeServerChassis = 1502
	ObjtypeVM            = 1504
	ObjtypeVMCluster     = 1505
	ObjtypeRack          = 1560
	ObjtypeRow           = 1561
	ObjtypeLocation      = 1562
)

// Well-known AttributeValue attribute IDs.
const (
	AttrHWType     = 2
	AttrRackHeight = 27
	AttrSerial     = 10014
)

// Tag names applied to created IP objects.
const (
	IPv4TagName = "IPv4"
	IPv6TagName = "IPv6"
)

// FirstASCIICharacter separates identical devices mounted in different
// spots of the same rack when composing disambiguated names.
const FirstASCIICharacter = " "

// ObjtypeNames maps Racktables objtype IDs to device-role names. VMs,
// clusters, racks, rows and locations are deliberately absent: they are
// migrated by dedicated stages, not as non-racked devices.
var ObjtypeNames = map[int]string{
	1:     "BlackBox",
	2:     "PDU",
	3:     "Shelf",
	4:     "Server",
	5:     "DiskArray",
	7:     "Router",
	8:     "Network Switch",
	9:     "Patch Panel",
	10:    "CableOrganizer",
	11:    "spacer",
	12:    "UPS",
	13:    "Modem",
	15:    "console",
	447:   "multiplexer",
	798:   "Network Security",
	1398:  "Power supply",
	1502:  "Server Chassis",
	1503:  "Network chassis",
	1644:  "serial console server",
	1787:  "Management interface",
	50003: "Circuit",
	50013: "SAN",
	50044: "SBC",
	50064: "GSX",
	50065: "EMS",
	50066: "PSX",
	50067: "SGX",
	50083: "SBC SWE",
}

// Manufacturers lists the vendor prefixes seen in Racktables HW type
// strings. A HW type starting with one of these (word-prefix match) is
// split into manufacturer and model.
var Manufacturers = map[string]struct{}{
	"3Com": {}, "ALT_Linux": {}, "APC": {}, "Alcatel-Lucent": {}, "Allied": {},
	"Arista": {}, "Aten": {}, "Avocent": {}, "Brocade": {}, "CentOS": {},
	"Cisco": {}, "Cronyx": {}, "Cyclades": {}, "D-Link": {}, "Debian": {},
	"Dell": {}, "Dell/EMC": {}, "EMC": {}, "Edge-Core": {}, "Enterasys": {},
	"Extreme": {}, "ExtremeXOS": {}, "F5": {}, "Fiberstore": {}, "Force10": {},
	"Fortigate": {}, "Fortinet": {}, "Foundry": {}, "FreeBSD": {}, "Fujitsu": {},
	"Generic": {}, "Gentoo": {}, "HP": {}, "Hitachi": {}, "Huawei": {},
	"IBM": {}, "Infortrend": {}, "Intel": {}, "IronWare": {}, "JunOS": {},
	"Juniper": {}, "Lantronix": {}, "Linksys": {}, "Marvell": {}, "Mellanox": {},
	"MicroSoft": {}, "MikroTik": {}, "Motorola": {}, "Moxa": {}, "NEC": {},
	"NETGEAR": {}, "NS-OS": {}, "NetApp": {}, "NetBSD": {}, "Netapp": {},
	"Nortel": {}, "Open Solaris": {}, "OpenBSD": {}, "OpenGear": {},
	"OpenSUSE": {}, "PROXMOX": {}, "Palo": {}, "Pica8": {}, "Promise": {},
	"QLogic": {}, "RAD": {}, "RH": {}, "Raisecom": {}, "Raritan": {},
	"Red": {}, "SGI": {}, "SMC": {}, "SUSE": {}, "SciLin": {},
	"SlackWare": {}, "SonicWall": {}, "Sun": {}, "TPLink": {}, "Tainet": {},
	"Ubuntu": {}, "Univention": {}, "VMWare": {}, "VMware": {}, "Vyatta": {},
	"Xen": {}, "noname/unknown": {},
}

// ParentChildPair relates a container objtype to the objtype it may hold.
type ParentChildPair struct {
	ParentObjtype int
	ChildObjtype  int
}

// ParentChildObjtypePairs: servers inside server chassis, patch panels
// inside patch panels. Containers get "-parent" device types and device
// bays; contained objects get "-child" types.
var ParentChildObjtypePairs = []ParentChildPair{
	{ParentObjtype: 1502, ChildObjtype: 4},
	{ParentObjtype: 9, ChildObjtype: 9},
}

// IsParentObjtype reports whether the objtype can contain child objects.
func IsParentObjtype(objtypeID int) bool {
	for _, p := range ParentChildObjtypePairs {
		if p.ParentObjtype == objtypeID {
			return true
		}
	}
	return false
}

// InterfaceNameMappings expands abbreviated router/switch port prefixes to
// canonical interface names. Applied only when the prefix is followed by a
// digit, space or dash, and only on router/switch objects.
var InterfaceNameMappings = map[string]string{
	"Eth":          "Ethernet",
	"eth":          "Ethernet",
	"ethernet":     "Ethernet",
	"Po":           "Port-Channel",
	"Port-channel": "Port-Channel",
	"BE":           "Bundle-Ether",
	"Lo":           "Loopback",
	"Loop":         "Loopback",
	"Vl":           "VLAN",
	"Vlan":         "VLAN",
	"Mg":           "MgmtEth",
	"Se":           "Serial",
	"Gi":           "GigabitEthernet",
	"Te":           "TenGigE",
	"Tw":           "TwentyFiveGigE",
	"Fo":           "FortyGigE",
	"Hu":           "HundredGigE",
}
