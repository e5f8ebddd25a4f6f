package classify

import (
	"crypto/sha1"
	"encoding/binary"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kass/go-pointclass/pkg/models"
)

// Subset is the stored form of one result entry, keyed by polygon ID
type Subset struct {
	Key    string         `json:"key"`
	Points []models.Point `json:"points"`
}

// Snapshot is the serializable form of a Result: polygon key to points.
// Polygon geometry and attributes are not stored, they come back from the
// polygon source on Restore.
type Snapshot struct {
	RunID  uuid.UUID `json:"run_id"`
	Method Method    `json:"method"`
	// PointSet fingerprints the points that were classified
	PointSet  uuid.UUID `json:"point_set"`
	CreatedAt time.Time `json:"created_at"`
	Subsets   []Subset  `json:"subsets"`
}

// NewSnapshot captures res, computed over points, under a fresh run ID.
// Every entry needs a distinct polygon ID.
func NewSnapshot(res Result, points []models.Point) (*Snapshot, error) {
	s := &Snapshot{
		RunID:     uuid.New(),
		Method:    res.Method,
		PointSet:  Fingerprint(points),
		CreatedAt: time.Now().UTC(),
		Subsets:   make([]Subset, 0, len(res.Entries)),
	}

	seen := make(map[string]bool, len(res.Entries))
	for _, e := range res.Entries {
		if e.Polygon.ID == "" {
			return nil, fmt.Errorf("failed to snapshot polygon %d: empty id", e.Index)
		}
		if seen[e.Polygon.ID] {
			return nil, fmt.Errorf("failed to snapshot polygon %d: duplicate id %q", e.Index, e.Polygon.ID)
		}
		seen[e.Polygon.ID] = true
		s.Subsets = append(s.Subsets, Subset{Key: e.Polygon.ID, Points: e.Points})
	}

	return s, nil
}

// Fingerprint identifies a point set by the coordinates of its points, in
// order. Colors are not part of it.
func Fingerprint(points []models.Point) uuid.UUID {
	h := sha1.New()
	var buf [24]byte
	binary.LittleEndian.PutUint64(buf[:8], uint64(len(points)))
	h.Write(buf[:8])
	for _, p := range points {
		binary.LittleEndian.PutUint64(buf[0:], math.Float64bits(p.X))
		binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(p.Y))
		binary.LittleEndian.PutUint64(buf[16:], math.Float64bits(p.Z))
		h.Write(buf[:])
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, h.Sum(nil))
}

// Matches reports whether the snapshot was taken with method over points
func (s *Snapshot) Matches(method Method, points []models.Point) bool {
	return s.Method == method && s.PointSet == Fingerprint(points)
}

// Restore rebuilds a Result against the polygons the snapshot was taken from.
// Entries follow the polygon order; polygons without a stored subset are
// absent, and a stored key with no matching polygon is an error.
func (s *Snapshot) Restore(polygons []models.Polygon) (Result, error) {
	byKey := make(map[string][]models.Point, len(s.Subsets))
	for _, sub := range s.Subsets {
		byKey[sub.Key] = sub.Points
	}

	res := Result{Method: s.Method, Entries: []Entry{}}
	matched := 0
	for i, pg := range polygons {
		pts, ok := byKey[pg.ID]
		if !ok {
			continue
		}
		matched++
		if len(pts) == 0 {
			continue
		}
		res.Entries = append(res.Entries, Entry{Index: i, Polygon: pg, Points: pts})
	}

	if matched != len(byKey) {
		for _, sub := range s.Subsets {
			if !hasPolygon(polygons, sub.Key) {
				return Result{}, fmt.Errorf("failed to restore snapshot %s: no polygon with id %q", s.RunID, sub.Key)
			}
		}
	}

	return res, nil
}

func hasPolygon(polygons []models.Polygon, id string) bool {
	for _, pg := range polygons {
		if pg.ID == id {
			return true
		}
	}
	return false
}

// Codec encodes snapshots to a stream
type Codec interface {
	Encode(w io.Writer, s *Snapshot) error
	Decode(r io.Reader) (*Snapshot, error)
}

// GobCodec is the compact binary format
type GobCodec struct{}

func (GobCodec) Encode(w io.Writer, s *Snapshot) error {
	return gob.NewEncoder(w).Encode(s)
}

func (GobCodec) Decode(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := gob.NewDecoder(r).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// JSONCodec is the readable format
type JSONCodec struct{}

func (JSONCodec) Encode(w io.Writer, s *Snapshot) error {
	return json.NewEncoder(w).Encode(s)
}

func (JSONCodec) Decode(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// CodecFor picks JSON for .json files and gob otherwise
func CodecFor(filename string) Codec {
	if strings.EqualFold(filepath.Ext(filename), ".json") {
		return JSONCodec{}
	}
	return GobCodec{}
}

// SaveSnapshot writes the snapshot to a file
func SaveSnapshot(filename string, s *Snapshot) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := CodecFor(filename).Encode(file, s); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	return file.Close()
}

// LoadSnapshot reads a snapshot written by SaveSnapshot
func LoadSnapshot(filename string) (*Snapshot, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	s, err := CodecFor(filename).Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	return s, nil
}
