package racktables

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"

	"github.com/lokasoft/racktables-to-netbox/internal/config"
	"github.com/lokasoft/racktables-to-netbox/internal/models"
)

// Repository provides typed reads over the Racktables schema.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

type ListOption func(sq.SelectBuilder) sq.SelectBuilder

func ByObjtype(objtypeID int) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Where(sq.Eq{"objtype_id": objtypeID})
	}
}

func ByID(id int) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Where(sq.Eq{"id": id})
	}
}

// Objects lists Object rows, optionally narrowed by options.
func (r *Repository) Objects(ctx context.Context, opts ...ListOption) ([]models.Object, error) {
	builder := sq.Select("id", "name", "label", "objtype_id", "asset_no", "comment", "has_problems").
		From("Object")

	for _, opt := range opts {
		builder = opt(builder)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var objects []models.Object
	for rows.Next() {
		var o models.Object
		var hasProblems string
		if err := rows.Scan(&o.ID, &o.Name, &o.Label, &o.ObjtypeID, &o.AssetNo, &o.Comment, &hasProblems); err != nil {
			return nil, err
		}
		o.HasProblems = hasProblems == "yes"
		objects = append(objects, o)
	}
	return objects, rows.Err()
}

// ObjectByID fetches a single object; (nil, nil) when absent.
func (r *Repository) ObjectByID(ctx context.Context, id int) (*models.Object, error) {
	objects, err := r.Objects(ctx, ByID(id))
	if err != nil {
		return nil, err
	}
	if len(objects) == 0 {
		return nil, nil
	}
	return &objects[0], nil
}

// entityChildren resolves one hop of the EntityLink tree. The edge is
// identified by concrete parent and child realms, so every caller states
// which relationship it traverses instead of sharing one polymorphic type.
func (r *Repository) entityChildren(ctx context.Context, parentType string, parentID int, childType string) ([]models.EntityRef, error) {
	query, args, err := sq.Select("O.id", "O.name", "O.objtype_id").
		From("EntityLink EL").
		Join("Object O ON O.id = EL.child_entity_id").
		Where(sq.Eq{
			"EL.parent_entity_type": parentType,
			"EL.parent_entity_id":   parentID,
			"EL.child_entity_type":  childType,
		}).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []models.EntityRef
	for rows.Next() {
		var ref models.EntityRef
		if err := rows.Scan(&ref.ID, &ref.Name, &ref.ObjtypeID); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// RowsAtSite lists the rack rows under a location object.
func (r *Repository) RowsAtSite(ctx context.Context, siteID int) ([]models.EntityRef, error) {
	return r.entityChildren(ctx, "location", siteID, "row")
}

// RacksAtRow lists the racks under a row object.
func (r *Repository) RacksAtRow(ctx context.Context, rowID int) ([]models.EntityRef, error) {
	return r.entityChildren(ctx, "row", rowID, "rack")
}

// ChildrenOf lists object children of an object (cluster members, chassis
// contents).
func (r *Repository) ChildrenOf(ctx context.Context, parentID int) ([]models.EntityRef, error) {
	return r.entityChildren(ctx, "object", parentID, "object")
}

// ParentsOf lists the object parents of an object.
func (r *Repository) ParentsOf(ctx context.Context, childID int) ([]models.EntityRef, error) {
	query, args, err := sq.Select("O.id", "O.name", "O.objtype_id").
		From("EntityLink EL").
		Join("Object O ON O.id = EL.parent_entity_id").
		Where(sq.Eq{
			"EL.parent_entity_type": "object",
			"EL.child_entity_id":    childID,
		}).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []models.EntityRef
	for rows.Next() {
		var ref models.EntityRef
		if err := rows.Scan(&ref.ID, &ref.Name, &ref.ObjtypeID); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// AtomsAtRack lists the rack space atoms of one rack.
func (r *Repository) AtomsAtRack(ctx context.Context, rackID int) ([]models.RackSpaceAtom, error) {
	query, args, err := sq.Select("rack_id", "unit_no", "atom", "state", "object_id").
		From("RackSpace").
		Where(sq.Eq{"rack_id": rackID}).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var atoms []models.RackSpaceAtom
	for rows.Next() {
		var a models.RackSpaceAtom
		if err := rows.Scan(&a.RackID, &a.UnitNo, &a.Atom, &a.State, &a.ObjectID); err != nil {
			return nil, err
		}
		atoms = append(atoms, a)
	}
	return atoms, rows.Err()
}

// Ports lists the ports of an object.
func (r *Repository) Ports(ctx context.Context, objectID int) ([]models.Port, error) {
	query, args, err := sq.Select("id", "object_id", "name", "iif_id", "type", "label").
		From("Port").
		Where(sq.Eq{"object_id": objectID}).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ports []models.Port
	for rows.Next() {
		var p models.Port
		if err := rows.Scan(&p.ID, &p.ObjectID, &p.Name, &p.IIFID, &p.TypeID, &p.Label); err != nil {
			return nil, err
		}
		ports = append(ports, p)
	}
	return ports, rows.Err()
}

// Links lists all port-to-port connections.
func (r *Repository) Links(ctx context.Context) ([]models.Link, error) {
	query, args, err := sq.Select("porta", "portb", "cable").From("Link").ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []models.Link
	for rows.Next() {
		var l models.Link
		if err := rows.Scan(&l.PortA, &l.PortB, &l.CableID); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// PortOuterInterfaces maps port type IDs to their names.
func (r *Repository) PortOuterInterfaces(ctx context.Context) (map[int]string, error) {
	query, args, err := sq.Select("id", "oif_name").From("PortOuterInterface").ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	oifs := make(map[int]string)
	for rows.Next() {
		var id int
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		oifs[id] = name
	}
	return oifs, rows.Err()
}

// Networks lists IPv4Network or IPv6Network rows for family 4 or 6.
func (r *Repository) Networks(ctx context.Context, family int) ([]models.Network, error) {
	query, args, err := sq.Select("id", "ip", "mask", "name", "comment").
		From(networkTable(family)).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var networks []models.Network
	for rows.Next() {
		var n models.Network
		var raw rawAddr
		if err := rows.Scan(&n.ID, &raw, &n.Mask, &n.Name, &n.Comment); err != nil {
			return nil, err
		}
		n.Addr = raw.bytes(family)
		networks = append(networks, n)
	}
	return networks, rows.Err()
}

// Addresses lists IPv4Address or IPv6Address rows.
func (r *Repository) Addresses(ctx context.Context, family int) ([]models.Address, error) {
	query, args, err := sq.Select("ip", "name", "comment", "reserved").
		From(addressTable(family)).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var addrs []models.Address
	for rows.Next() {
		var a models.Address
		var raw rawAddr
		var reserved string
		if err := rows.Scan(&raw, &a.Name, &a.Comment, &reserved); err != nil {
			return nil, err
		}
		a.Addr = raw.bytes(family)
		a.Reserved = reserved == "yes"
		addrs = append(addrs, a)
	}
	return addrs, rows.Err()
}

// Allocations lists address-to-object bindings joined with the owning
// object's name and type.
func (r *Repository) Allocations(ctx context.Context, family int) ([]models.Allocation, error) {
	query, args, err := sq.Select("ALO.object_id", "ALO.ip", "ALO.name", "ALO.type", "OBJ.objtype_id", "OBJ.name").
		From(allocationTable(family) + " ALO").
		Join("Object OBJ ON OBJ.id = ALO.object_id").ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var allocs []models.Allocation
	for rows.Next() {
		var a models.Allocation
		var raw rawAddr
		if err := rows.Scan(&a.ObjectID, &raw, &a.InterfaceName, &a.Type, &a.ObjtypeID, &a.ObjectName); err != nil {
			return nil, err
		}
		a.Addr = raw.bytes(family)
		allocs = append(allocs, a)
	}
	return allocs, rows.Err()
}

// VLANDomains lists all VLAN domains.
func (r *Repository) VLANDomains(ctx context.Context) ([]models.VLANDomain, error) {
	query, args, err := sq.Select("id", "description").From("VLANDomain").ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var domains []models.VLANDomain
	for rows.Next() {
		var d models.VLANDomain
		if err := rows.Scan(&d.ID, &d.Description); err != nil {
			return nil, err
		}
		domains = append(domains, d)
	}
	return domains, rows.Err()
}

// NetworkVLANs lists VLAN-to-network bindings for one address family.
func (r *Repository) NetworkVLANs(ctx context.Context, family int) ([]models.NetworkVLAN, error) {
	netCol := "ipv4net_id"
	table := "VLANIPv4"
	if family == 6 {
		netCol = "ipv6net_id"
		table = "VLANIPv6"
	}

	query, args, err := sq.Select("domain_id", "vlan_id", netCol).From(table).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vlans []models.NetworkVLAN
	for rows.Next() {
		var v models.NetworkVLAN
		if err := rows.Scan(&v.DomainID, &v.VLANID, &v.NetworkID); err != nil {
			return nil, err
		}
		vlans = append(vlans, v)
	}
	return vlans, rows.Err()
}

// VLANDescription returns the name of one VLAN in a domain, "" when unset.
func (r *Repository) VLANDescription(ctx context.Context, domainID, vlanID int) (string, error) {
	query, args, err := sq.Select("vlan_descr").
		From("VLANDescription").
		Where(sq.Eq{"domain_id": domainID, "vlan_id": vlanID}).ToSql()
	if err != nil {
		return "", err
	}

	var descr sql.NullString
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&descr)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return descr.String, nil
}

// Tags returns the tag names attached to an entity, resolved through
// TagStorage into TagTree.
func (r *Repository) Tags(ctx context.Context, entityRealm string, entityID int) ([]string, error) {
	query, args, err := sq.Select("TT.tag").
		From("TagStorage TS").
		Join("TagTree TT ON TT.id = TS.tag_id").
		Where(sq.Eq{"TS.entity_realm": entityRealm, "TS.entity_id": entityID}).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// AllTags lists every tag name in the tag tree.
func (r *Repository) AllTags(ctx context.Context) ([]string, error) {
	query, args, err := sq.Select("tag").From("TagTree").ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// RackHeight returns attribute 27 of a rack, 0 when unset.
func (r *Repository) RackHeight(ctx context.Context, rackID int) (int, error) {
	v, err := r.uintAttribute(ctx, rackID, config.AttrRackHeight)
	return int(v), err
}

// HWType resolves attribute 2 of an object through the Dictionary into a
// hardware type string, "" when unset.
func (r *Repository) HWType(ctx context.Context, objectID int) (string, error) {
	key, err := r.uintAttribute(ctx, objectID, config.AttrHWType)
	if err != nil || key == 0 {
		return "", err
	}
	return r.DictionaryValue(ctx, int(key))
}

// Serials maps object IDs to their serial numbers (attribute 10014).
func (r *Repository) Serials(ctx context.Context) (map[int]string, error) {
	query, args, err := sq.Select("object_id", "string_value").
		From("AttributeValue").
		Where(sq.Eq{"attr_id": config.AttrSerial}).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	serials := make(map[int]string)
	for rows.Next() {
		var objectID int
		var value sql.NullString
		if err := rows.Scan(&objectID, &value); err != nil {
			return nil, err
		}
		serials[objectID] = value.String
	}
	return serials, rows.Err()
}

// AttributeValues lists every attribute of an object.
func (r *Repository) AttributeValues(ctx context.Context, objectID int) ([]models.AttributeValue, error) {
	query, args, err := sq.Select("object_id", "attr_id", "string_value", "uint_value", "float_value").
		From("AttributeValue").
		Where(sq.Eq{"object_id": objectID}).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []models.AttributeValue
	for rows.Next() {
		var v models.AttributeValue
		if err := rows.Scan(&v.ObjectID, &v.AttrID, &v.StringValue, &v.UintValue, &v.FloatValue); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// AttributeNames maps attribute IDs to their display names.
func (r *Repository) AttributeNames(ctx context.Context) (map[int]string, error) {
	query, args, err := sq.Select("id", "name").From("Attribute").ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make(map[int]string)
	for rows.Next() {
		var id int
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	return names, rows.Err()
}

// DictionaryValue resolves a Dictionary key, "" when absent.
func (r *Repository) DictionaryValue(ctx context.Context, key int) (string, error) {
	query, args, err := sq.Select("dict_value").
		From("Dictionary").
		Where(sq.Eq{"dict_key": key}).ToSql()
	if err != nil {
		return "", err
	}

	var value sql.NullString
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value.String, nil
}

func (r *Repository) uintAttribute(ctx context.Context, objectID, attrID int) (int64, error) {
	query, args, err := sq.Select("uint_value").
		From("AttributeValue").
		Where(sq.Eq{"object_id": objectID, "attr_id": attrID}).ToSql()
	if err != nil {
		return 0, err
	}

	var value sql.NullInt64
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return value.Int64, nil
}

func networkTable(family int) string {
	if family == 6 {
		return "IPv6Network"
	}
	return "IPv4Network"
}

func addressTable(family int) string {
	if family == 6 {
		return "IPv6Address"
	}
	return "IPv4Address"
}

func allocationTable(family int) string {
	if family == 6 {
		return "IPv6Allocation"
	}
	return "IPv4Allocation"
}
