package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/mediantree/internal/domain"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Neo4jSnapshotRepo implements SnapshotRepo on a Neo4j graph. Each snapshot
// is a :Snapshot node that CONTAINS its :Node vertices; hierarchy edges are
// PARENT_OF relationships between them.
type Neo4jSnapshotRepo struct {
	driver neo4j.DriverWithContext
	now    func() time.Time
}

// NewNeo4jSnapshotRepo creates a new Neo4jSnapshotRepo.
func NewNeo4jSnapshotRepo(driver neo4j.DriverWithContext) *Neo4jSnapshotRepo {
	return &Neo4jSnapshotRepo{driver: driver, now: time.Now}
}

// OpenNeo4j connects to uri and verifies the server is reachable.
func OpenNeo4j(ctx context.Context, uri, user, password string) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("creating neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("connecting to neo4j: %w", err)
	}
	return driver, nil
}

func (r *Neo4jSnapshotRepo) Save(ctx context.Context, name string, g *domain.Graph) error {
	if name == "" {
		return fmt.Errorf("snapshot name is required")
	}
	if err := g.Validate(); err != nil {
		return fmt.Errorf("invalid graph: %w", err)
	}

	nodes := make([]map[string]any, 0, len(g.Nodes))
	for i, n := range g.Nodes {
		nodes = append(nodes, nodeToProps(n, i))
	}
	edges := make([]map[string]any, 0, len(g.Edges))
	for i, e := range dedupeEdges(g.Edges) {
		edges = append(edges, map[string]any{"source": e.Source, "target": e.Target, "order": int64(i)})
	}
	params := map[string]any{
		"name":  name,
		"now":   formatTime(r.now()),
		"nodes": nodes,
		"edges": edges,
	}

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		queries := []string{
			"MERGE (s:Snapshot {name: $name}) " +
				"ON CREATE SET s.created_at = $now " +
				"SET s.last_updated_at = $now",
			"MATCH (:Snapshot {name: $name})-[:CONTAINS]->(n:Node) DETACH DELETE n",
			"MATCH (s:Snapshot {name: $name}) " +
				"UNWIND $nodes AS row " +
				"CREATE (s)-[:CONTAINS]->(n:Node) SET n = row",
			"MATCH (s:Snapshot {name: $name}) " +
				"UNWIND $edges AS e " +
				"MATCH (s)-[:CONTAINS]->(a:Node {id: e.source}), (s)-[:CONTAINS]->(b:Node {id: e.target}) " +
				"CREATE (a)-[:PARENT_OF {order: e.order}]->(b)",
		}
		for _, q := range queries {
			if _, err := tx.Run(ctx, q, params); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("saving snapshot %q: %w", name, err)
	}
	return nil
}

func (r *Neo4jSnapshotRepo) Get(ctx context.Context, name string) (*domain.Snapshot, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (s:Snapshot {name: $name}) RETURN s.created_at AS created_at, s.last_updated_at AS updated_at",
			map[string]any{"name": name})
		if err != nil {
			return nil, err
		}
		if !res.Next(ctx) {
			if err := res.Err(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("project %q: %w", name, ErrNotFound)
		}
		snap := &domain.Snapshot{Name: name, Graph: &domain.Graph{}}
		rec := res.Record()
		if snap.CreatedAt, err = timeFromRecord(rec, "created_at"); err != nil {
			return nil, err
		}
		if snap.LastUpdatedAt, err = timeFromRecord(rec, "updated_at"); err != nil {
			return nil, err
		}

		res, err = tx.Run(ctx,
			"MATCH (:Snapshot {name: $name})-[:CONTAINS]->(n:Node) RETURN n{.*} AS props ORDER BY n.order",
			map[string]any{"name": name})
		if err != nil {
			return nil, err
		}
		for res.Next(ctx) {
			raw, _ := res.Record().Get("props")
			props, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("unexpected node record %T", raw)
			}
			n, err := nodeFromProps(props)
			if err != nil {
				return nil, err
			}
			snap.Graph.Nodes = append(snap.Graph.Nodes, n)
		}
		if err := res.Err(); err != nil {
			return nil, err
		}

		res, err = tx.Run(ctx,
			"MATCH (:Snapshot {name: $name})-[:CONTAINS]->(a:Node)-[r:PARENT_OF]->(b:Node) "+
				"RETURN a.id AS source, b.id AS target ORDER BY r.order",
			map[string]any{"name": name})
		if err != nil {
			return nil, err
		}
		for res.Next(ctx) {
			rec := res.Record()
			src, _ := rec.Get("source")
			dst, _ := rec.Get("target")
			snap.Graph.Edges = append(snap.Graph.Edges, domain.Edge{Source: asString(src), Target: asString(dst)})
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.Snapshot), nil
}

func (r *Neo4jSnapshotRepo) Latest(ctx context.Context) (*domain.Snapshot, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (s:Snapshot) RETURN s.name AS name ORDER BY s.last_updated_at DESC, s.name LIMIT 1", nil)
		if err != nil {
			return nil, err
		}
		if !res.Next(ctx) {
			if err := res.Err(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("no saved projects: %w", ErrNotFound)
		}
		v, _ := res.Record().Get("name")
		return asString(v), nil
	})
	session.Close(ctx)
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, result.(string))
}

func (r *Neo4jSnapshotRepo) List(ctx context.Context) ([]domain.ProjectSummary, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (s:Snapshot) "+
				"OPTIONAL MATCH (s)-[:CONTAINS]->(n:Node) "+
				"WITH s, count(n) AS node_count, "+
				"max(CASE WHEN n.kind = 'project' THEN n.effort_hours END) AS effort "+
				"RETURN s.name AS name, s.created_at AS created_at, s.last_updated_at AS updated_at, node_count, effort "+
				"ORDER BY s.last_updated_at DESC, s.name", nil)
		if err != nil {
			return nil, err
		}
		var out []domain.ProjectSummary
		for res.Next(ctx) {
			rec := res.Record()
			s, err := summaryFromRecord(rec)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
		return out, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return result.([]domain.ProjectSummary), nil
}

func (r *Neo4jSnapshotRepo) Delete(ctx context.Context, name string) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx,
			"MATCH (s:Snapshot {name: $name}) "+
				"OPTIONAL MATCH (s)-[:CONTAINS]->(n:Node) "+
				"WITH s, s.name AS name, collect(n) AS nodes "+
				"FOREACH (x IN nodes | DETACH DELETE x) "+
				"DETACH DELETE s "+
				"RETURN name",
			map[string]any{"name": name})
		if err != nil {
			return nil, err
		}
		if !res.Next(ctx) {
			if err := res.Err(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("project %q: %w", name, ErrNotFound)
		}
		return nil, nil
	})
	return err
}

// recordGetter is the slice of *neo4j.Record the converters read from.
type recordGetter interface {
	Get(key string) (any, bool)
}

func summaryFromRecord(rec recordGetter) (domain.ProjectSummary, error) {
	var s domain.ProjectSummary
	v, _ := rec.Get("name")
	s.Name = asString(v)
	count, _ := rec.Get("node_count")
	s.NodeCount = int(asFloat(count))
	effort, _ := rec.Get("effort")
	s.EffortHours = asFloat(effort)

	var err error
	if s.CreatedAt, err = timeFromRecord(rec, "created_at"); err != nil {
		return s, err
	}
	if s.LastUpdatedAt, err = timeFromRecord(rec, "updated_at"); err != nil {
		return s, err
	}
	return s, nil
}

// nodeToProps flattens a node into Neo4j property values. Nil pointers are
// omitted since Neo4j does not store null properties.
func nodeToProps(n *domain.Node, order int) map[string]any {
	props := map[string]any{
		"id":           n.ID,
		"kind":         string(n.Kind),
		"title":        n.Title,
		"description":  n.Description,
		"effort_hours": n.EffortHours,
		"order":        int64(order),
	}
	if n.LastManualHours != nil {
		props["last_manual_hours"] = *n.LastManualHours
	}
	if n.Estimate != nil {
		props["estimate_p70"] = n.Estimate.P70
		props["estimate_p95"] = n.Estimate.P95
		props["estimate_p99"] = n.Estimate.P99
	}
	return props
}

func nodeFromProps(props map[string]any) (*domain.Node, error) {
	id := asString(props["id"])
	if id == "" {
		return nil, fmt.Errorf("node record without id")
	}
	n := &domain.Node{
		ID:          id,
		Kind:        domain.NodeKind(asString(props["kind"])),
		Title:       asString(props["title"]),
		Description: asString(props["description"]),
		EffortHours: asFloat(props["effort_hours"]),
	}
	if v, ok := props["last_manual_hours"]; ok && v != nil {
		f := asFloat(v)
		n.LastManualHours = &f
	}
	p70, ok70 := props["estimate_p70"]
	p95, ok95 := props["estimate_p95"]
	p99, ok99 := props["estimate_p99"]
	if ok70 && ok95 && ok99 {
		n.Estimate = &domain.Estimate{P70: asFloat(p70), P95: asFloat(p95), P99: asFloat(p99)}
	}
	return n, nil
}

func timeFromRecord(rec recordGetter, key string) (time.Time, error) {
	v, _ := rec.Get(key)
	t, err := parseTime(asString(v))
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %s: %w", key, err)
	}
	return t, nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// asFloat accepts both of the numeric types the driver hands back.
func asFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int64:
		return float64(x)
	default:
		return 0
	}
}
