package source

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dd0wney/cluso-netplan/pkg/logging"
	"github.com/dd0wney/cluso-netplan/pkg/topology"
)

// Postgres reads topologies from the topologies, nodes, ports and links
// tables. The schema is owned elsewhere; nothing here creates or migrates it.
type Postgres struct {
	pool   *pgxpool.Pool
	logger logging.Logger
}

// PoolConfig tunes the connection pool
type PoolConfig struct {
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// DefaultPoolConfig returns the pool settings used when none are configured
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxConns:        10,
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 1 * time.Minute,
	}
}

// NewPostgres connects to databaseURL and verifies the connection
func NewPostgres(ctx context.Context, databaseURL string, pc PoolConfig, logger logging.Logger) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	if pc.MaxConns > 0 {
		config.MaxConns = pc.MaxConns
	}
	if pc.MinConns > 0 {
		config.MinConns = pc.MinConns
	}
	if pc.MaxConnLifetime > 0 {
		config.MaxConnLifetime = pc.MaxConnLifetime
	}
	if pc.MaxConnIdleTime > 0 {
		config.MaxConnIdleTime = pc.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Postgres{pool: pool, logger: logger.With(logging.Component("source-postgres"))}, nil
}

// Name implements Source
func (p *Postgres) Name() string { return KindPostgres }

// Ping checks database connectivity
func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close closes the database connection pool
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// List implements topology.Loader
func (p *Postgres) List(ctx context.Context) ([]topology.Summary, error) {
	query := `
		SELECT id, name
		FROM topologies
		WHERE is_active IS NOT FALSE
		ORDER BY created_at, id
	`

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list topologies: %w", err)
	}
	defer rows.Close()

	out := make([]topology.Summary, 0)
	for rows.Next() {
		var s topology.Summary
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("failed to scan topology: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list topologies: %w", err)
	}
	return out, nil
}

// Load implements topology.Loader
func (p *Postgres) Load(ctx context.Context, id string) (*topology.Topology, error) {
	timer := logging.StartTimer(p.logger, "topology loaded from database", logging.TopologyID(id))

	var head topologyRow
	err := p.pool.QueryRow(ctx, `SELECT id, name FROM topologies WHERE id = $1`, id).Scan(&head.ID, &head.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("topology %q: %w", id, topology.ErrTopologyNotFound)
	}
	if err != nil {
		timer.EndError(err)
		return nil, fmt.Errorf("failed to get topology: %w", err)
	}

	nodes, err := p.nodeRows(ctx, id)
	if err != nil {
		timer.EndError(err)
		return nil, err
	}
	links, err := p.linkRows(ctx, id)
	if err != nil {
		timer.EndError(err)
		return nil, err
	}

	t := assemble(head, nodes, links)
	timer.End(logging.Int("devices", len(t.Devices)), logging.Int("links", len(t.Links)))
	return t, nil
}

func (p *Postgres) nodeRows(ctx context.Context, topologyID string) ([]nodeRow, error) {
	query := `
		SELECT n.id, n.name, n.type::text, p.id, p.name, p.status::text, p.device_id
		FROM nodes n
		LEFT JOIN ports p ON p.device_id = n.id
		WHERE n.topology_id = $1
		ORDER BY n.created_at, n.id, p.created_at, p.id
	`

	rows, err := p.pool.Query(ctx, query, topologyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get nodes: %w", err)
	}
	defer rows.Close()

	var out []nodeRow
	for rows.Next() {
		var r nodeRow
		if err := rows.Scan(&r.NodeID, &r.NodeName, &r.NodeType,
			&r.PortID, &r.PortName, &r.PortStatus, &r.PortDeviceID); err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get nodes: %w", err)
	}
	return out, nil
}

func (p *Postgres) linkRows(ctx context.Context, topologyID string) ([]linkRow, error) {
	query := `
		SELECT l.id, l.source_id, l.target_id, l.type::text, l.max_bandwidth, l.current_bandwidth, COALESCE(l.value, 1)
		FROM links l
		INNER JOIN ports p ON l.source_id = p.id
		INNER JOIN nodes n ON p.device_id = n.id
		WHERE n.topology_id = $1
		ORDER BY l.created_at, l.id
	`

	rows, err := p.pool.Query(ctx, query, topologyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get links: %w", err)
	}
	defer rows.Close()

	var out []linkRow
	for rows.Next() {
		var r linkRow
		if err := rows.Scan(&r.ID, &r.SourceID, &r.TargetID, &r.Type,
			&r.MaxBandwidth, &r.CurrentBandwidth, &r.Value); err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get links: %w", err)
	}
	return out, nil
}

// WriteBandwidth updates current_bandwidth for links of the topology in a
// single transaction. Values are stored rounded to whole Mbps.
func (p *Postgres) WriteBandwidth(ctx context.Context, topologyID string, updates []topology.BandwidthUpdate) (int, error) {
	query := `
		UPDATE links l
		SET current_bandwidth = $1, updated_at = now()
		FROM ports p, nodes n
		WHERE l.id = $2 AND l.source_id = p.id AND p.device_id = n.id AND n.topology_id = $3
	`

	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	updated := 0
	for _, u := range updates {
		tag, err := tx.Exec(ctx, query, int64(math.Round(u.CurrentBandwidth)), u.LinkID, topologyID)
		if err != nil {
			return 0, fmt.Errorf("failed to update link %s: %w", u.LinkID, err)
		}
		updated += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit bandwidth: %w", err)
	}

	p.logger.Info("bandwidth persisted",
		logging.TopologyID(topologyID),
		logging.Int("updated_links", updated),
		logging.Int("requested", len(updates)))
	return updated, nil
}
