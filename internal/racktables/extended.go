package racktables

import (
	"context"
	"database/sql"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/lokasoft/racktables-to-netbox/internal/models"
)

// Schema variance across Racktables releases is concentrated in the
// extended tables, so everything here reads through a TablePlan produced
// by the Prober instead of assuming column names.

// DictionaryNames loads an id-to-name map from a planned table using the
// picked "name" role. Used for patch cable types and connectors.
func (r *Repository) DictionaryNames(ctx context.Context, plan TablePlan) (map[int]string, error) {
	if plan.Missing {
		return map[int]string{}, nil
	}

	query, args, err := sq.Select("id", plan.Col("name")).From(plan.Table).ToSql()
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
		var name sql.NullString
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name.String
	}
	return names, rows.Err()
}

// PatchCables joins Link rows to their PatchCableHeap entries. Only links
// that actually reference a heap cable come back.
func (r *Repository) PatchCables(ctx context.Context, plan TablePlan) ([]models.PatchCable, error) {
	if plan.Missing {
		return nil, nil
	}

	selected := []string{"L.porta", "L.portb", "H." + plan.Col("type"),
		"H." + plan.Col("end1"), "H." + plan.Col("end2"), "H." + plan.Col("length")}
	hasColor := plan.Has("color")
	if hasColor {
		selected = append(selected, "H.color")
	}
	hasDescr := plan.Has("description")
	if hasDescr {
		selected = append(selected, "H.description")
	}

	query, args, err := sq.Select(selected...).
		From("Link L").
		Join(plan.Table + " H ON H.id = L.cable").ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cables []models.PatchCable
	for rows.Next() {
		var c models.PatchCable
		dest := []any{&c.PortA, &c.PortB, &c.TypeID, &c.EndAConnID, &c.EndBConnID, &c.Length}
		if hasColor {
			dest = append(dest, &c.Color)
		}
		if hasDescr {
			dest = append(dest, &c.Description)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		cables = append(cables, c)
	}
	return cables, rows.Err()
}

// VirtualServices lists VS rows using the probed primary key, name and
// description columns.
func (r *Repository) VirtualServices(ctx context.Context, plan TablePlan) ([]models.VirtualService, error) {
	if plan.Missing {
		return nil, nil
	}

	selected := []string{plan.Col("id"), plan.Col("name")}
	hasDescr := plan.Col("description") != ""
	if hasDescr {
		selected = append(selected, plan.Col("description"))
	}

	query, args, err := sq.Select(selected...).From(plan.Table).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []models.VirtualService
	for rows.Next() {
		var s models.VirtualService
		dest := []any{&s.ID, &s.Name}
		if hasDescr {
			dest = append(dest, &s.Description)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

// VSIPs maps a virtual service ID to the raw addresses enabled on it.
func (r *Repository) VSIPs(ctx context.Context, plan TablePlan) (map[int][][]byte, error) {
	if plan.Missing {
		return map[int][][]byte{}, nil
	}

	query, args, err := sq.Select(plan.Col("vs_id"), plan.Col("ip")).From(plan.Table).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ips := make(map[int][][]byte)
	for rows.Next() {
		var vsID int
		var raw rawAddr
		if err := rows.Scan(&vsID, &raw); err != nil {
			return nil, err
		}
		family := 4
		if len(raw.b) == 16 {
			family = 6
		}
		ips[vsID] = append(ips[vsID], raw.bytes(family))
	}
	return ips, rows.Err()
}

// VSPorts maps a virtual service ID to its port names.
func (r *Repository) VSPorts(ctx context.Context, plan TablePlan) (map[int][]string, error) {
	if plan.Missing {
		return map[int][]string{}, nil
	}

	query, args, err := sq.Select(plan.Col("vs_id"), plan.Col("port")).From(plan.Table).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ports := make(map[int][]string)
	for rows.Next() {
		var vsID int
		var port sql.NullString
		if err := rows.Scan(&vsID, &port); err != nil {
			return nil, err
		}
		if strings.TrimSpace(port.String) != "" {
			ports[vsID] = append(ports[vsID], port.String)
		}
	}
	return ports, rows.Err()
}

// NATRules lists IPv4NAT rows.
func (r *Repository) NATRules(ctx context.Context) ([]models.NATRule, error) {
	query, args, err := sq.Select("proto", "localip", "localport", "remoteip", "remoteport", "description").
		From("IPv4NAT").ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []models.NATRule
	for rows.Next() {
		var rule models.NATRule
		var local, remote rawAddr
		if err := rows.Scan(&rule.Proto, &local, &rule.LocalPort, &remote, &rule.RemotePort, &rule.Description); err != nil {
			return nil, err
		}
		rule.LocalAddr = local.bytes(4)
		rule.RemoteAddr = remote.bytes(4)
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

// LBEntries lists IPv4LB rows. The rspool and comment columns only exist
// on newer schemas.
func (r *Repository) LBEntries(ctx context.Context, plan TablePlan) ([]models.LBEntry, error) {
	if plan.Missing {
		return nil, nil
	}

	selected := []string{"prio", "vsconfig", "rsconfig"}
	hasPool := plan.Has("rspool")
	if hasPool {
		selected = append(selected, "rspool")
	}
	hasComment := plan.Has("comment")
	if hasComment {
		selected = append(selected, "comment")
	}

	query, args, err := sq.Select(selected...).From(plan.Table).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.LBEntry
	for rows.Next() {
		var e models.LBEntry
		dest := []any{&e.Prio, &e.VSConfig, &e.RSConfig}
		if hasPool {
			dest = append(dest, &e.RSPool)
		}
		if hasComment {
			dest = append(dest, &e.Comment)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// RSPools lists IPv4RSPool rows.
func (r *Repository) RSPools(ctx context.Context, plan TablePlan) ([]models.RSPool, error) {
	if plan.Missing {
		return nil, nil
	}

	query, args, err := sq.Select("id", plan.Col("name"), plan.Col("vs_id")).From(plan.Table).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pools []models.RSPool
	for rows.Next() {
		var p models.RSPool
		if err := rows.Scan(&p.ID, &p.Name, &p.VSID); err != nil {
			return nil, err
		}
		pools = append(pools, p)
	}
	return pools, rows.Err()
}

// CactiServers maps server IDs to their base URLs.
func (r *Repository) CactiServers(ctx context.Context) (map[int]string, error) {
	query, args, err := sq.Select("id", "base_url").From("CactiServer").ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	servers := make(map[int]string)
	for rows.Next() {
		var id int
		var baseURL sql.NullString
		if err := rows.Scan(&id, &baseURL); err != nil {
			return nil, err
		}
		servers[id] = baseURL.String
	}
	return servers, rows.Err()
}

// CactiGraphs lists graph bindings joined with the owning object.
func (r *Repository) CactiGraphs(ctx context.Context) ([]models.CactiGraph, error) {
	query, args, err := sq.Select("CG.object_id", "CG.server_id", "CG.graph_id", "CG.caption", "O.name", "O.objtype_id").
		From("CactiGraph CG").
		Join("Object O ON O.id = CG.object_id").ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var graphs []models.CactiGraph
	for rows.Next() {
		var g models.CactiGraph
		if err := rows.Scan(&g.ObjectID, &g.ServerID, &g.GraphID, &g.Caption, &g.ObjectName, &g.ObjtypeID); err != nil {
			return nil, err
		}
		graphs = append(graphs, g)
	}
	return graphs, rows.Err()
}

// FileRefs lists file metadata attached to objects. File contents never
// leave the source database.
func (r *Repository) FileRefs(ctx context.Context) ([]models.FileRef, error) {
	query, args, err := sq.Select("F.id", "F.name", "F.type", "F.size", "FL.entity_type", "FL.entity_id").
		From("File F").
		Join("FileLink FL ON FL.file_id = F.id").
		Where(sq.Eq{"FL.entity_type": "object"}).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []models.FileRef
	for rows.Next() {
		var f models.FileRef
		if err := rows.Scan(&f.FileID, &f.Name, &f.Type, &f.Size, &f.EntityRealm, &f.EntityID); err != nil {
			return nil, err
		}
		refs = append(refs, f)
	}
	return refs, rows.Err()
}
