package postgis

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang/glog"
	"github.com/kass/go-pointclass/pkg/models"
	"github.com/lib/pq"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
)

const defaultTable = "boundaries"

// PolygonStore keeps polygon boundaries and their attributes in PostGIS
type PolygonStore struct {
	db    *sql.DB
	table string
}

// NewPolygonStore opens a PostGIS connection. An empty table name uses
// the default "boundaries" table.
func NewPolygonStore(dsn, table string) (*PolygonStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if table == "" {
		table = defaultTable
	}
	return &PolygonStore{db: db, table: table}, nil
}

func (p *PolygonStore) ident() string {
	return pq.QuoteIdentifier(p.table)
}

// InitSchema recreates the boundary table and its spatial index
func (p *PolygonStore) InitSchema() error {
	queries := []string{
		`CREATE EXTENSION IF NOT EXISTS postgis;`,
		fmt.Sprintf(`DROP TABLE IF EXISTS %s;`, p.ident()),
		fmt.Sprintf(`CREATE TABLE %s (
			position INTEGER NOT NULL,
			id TEXT PRIMARY KEY,
			geom GEOMETRY(MULTIPOLYGON),
			attributes JSONB NOT NULL DEFAULT '{}'
		);`, p.ident()),
		fmt.Sprintf(`CREATE INDEX %s ON %s USING GIST(geom);`,
			pq.QuoteIdentifier("idx_"+p.table+"_geom"), p.ident()),
	}

	for _, query := range queries {
		if _, err := p.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query '%s': %w", query, err)
		}
	}

	return nil
}

// InsertPolygons inserts polygons in batched transactions. Input order is
// kept so LoadPolygons returns them the same way.
func (p *PolygonStore) InsertPolygons(polygons []models.Polygon) error {
	const batchSize = 1000

	stmt, err := p.db.Prepare(fmt.Sprintf(`
		INSERT INTO %s (position, id, geom, attributes)
		VALUES ($1, $2, ST_GeomFromWKB($3), $4)
	`, p.ident()))
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	tx, err := p.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	txStmt := tx.Stmt(stmt)

	for i, pg := range polygons {
		attrs, err := encodeAttributes(pg.Attributes)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to encode attributes of %s: %w", pg.ID, err)
		}

		if _, err := txStmt.Exec(i, pg.ID, wkb.Value(toGeometry(pg.Rings)), attrs); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert polygon %s: %w", pg.ID, err)
		}

		if (i+1)%batchSize == 0 {
			if err := tx.Commit(); err != nil {
				return fmt.Errorf("failed to commit batch: %w", err)
			}
			tx, err = p.db.Begin()
			if err != nil {
				return fmt.Errorf("failed to begin new transaction: %w", err)
			}
			txStmt = tx.Stmt(stmt)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit final batch: %w", err)
	}

	glog.V(1).Infof("inserted %d polygons into %s", len(polygons), p.table)
	return nil
}

// LoadPolygons reads all stored polygons in insertion order
func (p *PolygonStore) LoadPolygons() ([]models.Polygon, error) {
	query := fmt.Sprintf(`
		SELECT id, ST_AsBinary(geom), attributes
		FROM %s
		ORDER BY position
	`, p.ident())

	rows, err := p.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	var results []models.Polygon
	for rows.Next() {
		var id string
		var raw []byte
		scanner := wkb.Scanner(nil)

		if err := rows.Scan(&id, scanner, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		attrs, err := decodeAttributes(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decode attributes of %s: %w", id, err)
		}

		var rings []orb.Ring
		if scanner.Valid {
			rings = fromGeometry(scanner.Geometry)
		}
		results = append(results, models.Polygon{ID: id, Rings: rings, Attributes: attrs})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return results, nil
}

// Count returns the number of stored polygons
func (p *PolygonStore) Count() (int64, error) {
	var count int64
	err := p.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", p.ident())).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count polygons: %w", err)
	}
	return count, nil
}

// Close closes the database connection
func (p *PolygonStore) Close() error {
	return p.db.Close()
}

func toGeometry(rings []orb.Ring) orb.MultiPolygon {
	mp := make(orb.MultiPolygon, len(rings))
	for i, r := range rings {
		mp[i] = orb.Polygon{r}
	}
	return mp
}

func fromGeometry(g orb.Geometry) []orb.Ring {
	switch geom := g.(type) {
	case orb.Polygon:
		if len(geom) == 0 {
			return nil
		}
		return []orb.Ring{geom[0]}
	case orb.MultiPolygon:
		rings := make([]orb.Ring, 0, len(geom))
		for _, pg := range geom {
			if len(pg) > 0 {
				rings = append(rings, pg[0])
			}
		}
		return rings
	default:
		return nil
	}
}

func encodeAttributes(attrs map[string]models.Attribute) ([]byte, error) {
	values := make(map[string]interface{}, len(attrs))
	for k, a := range attrs {
		switch a.Kind {
		case models.String:
			values[k] = a.Str
		case models.Number:
			values[k] = a.Num
		default:
			values[k] = nil
		}
	}
	return json.Marshal(values)
}

func decodeAttributes(raw []byte) (map[string]models.Attribute, error) {
	if len(raw) == 0 {
		return map[string]models.Attribute{}, nil
	}

	var values map[string]interface{}
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, err
	}

	attrs := make(map[string]models.Attribute, len(values))
	for k, v := range values {
		switch x := v.(type) {
		case string:
			attrs[k] = models.StringAttr(x)
		case float64:
			attrs[k] = models.NumberAttr(x)
		case bool:
			attrs[k] = models.StringAttr(fmt.Sprint(x))
		default:
			attrs[k] = models.Attribute{}
		}
	}
	return attrs, nil
}
