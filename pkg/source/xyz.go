// Package source reads point clouds and polygon boundaries from files into
// the in-memory models used by the classifier.
package source

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/golang/glog"
	"github.com/kass/go-pointclass/pkg/models"
)

// ReadXYZ parses an ASCII point cloud: one point per line as "x y z" or
// "x y z r g b", separated by whitespace or commas. Blank lines and lines
// starting with # are skipped.
func ReadXYZ(r io.Reader) ([]models.Point, error) {
	var points []models.Point
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.FieldsFunc(text, func(r rune) bool {
			return r == ',' || unicode.IsSpace(r)
		})
		p, err := parsePoint(fields)
		if err != nil {
			return nil, fmt.Errorf("failed to parse line %d: %w", line, err)
		}
		points = append(points, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read points: %w", err)
	}

	return points, nil
}

func parsePoint(fields []string) (models.Point, error) {
	if len(fields) != 3 && len(fields) != 6 {
		return models.Point{}, fmt.Errorf("expected 3 or 6 columns, got %d", len(fields))
	}

	var xyz [3]float64
	for i := range xyz {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return models.Point{}, fmt.Errorf("invalid coordinate %q: %w", fields[i], err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return models.Point{}, fmt.Errorf("non-finite coordinate %q", fields[i])
		}
		xyz[i] = v
	}
	p := models.Point{X: xyz[0], Y: xyz[1], Z: xyz[2]}

	if len(fields) == 6 {
		var rgb [3]uint16
		for i := range rgb {
			v, err := strconv.ParseUint(fields[3+i], 10, 16)
			if err != nil {
				return models.Point{}, fmt.Errorf("invalid color %q: %w", fields[3+i], err)
			}
			rgb[i] = uint16(v)
		}
		p.Color = &models.RGB{R: rgb[0], G: rgb[1], B: rgb[2]}
	}

	return p, nil
}

// LoadXYZ reads an ASCII point cloud file
func LoadXYZ(filename string) ([]models.Point, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	points, err := ReadXYZ(file)
	if err != nil {
		return nil, err
	}
	glog.V(1).Infof("read %d points from %s", len(points), filename)
	return points, nil
}

// WriteXYZ writes points in the format read by ReadXYZ
func WriteXYZ(w io.Writer, points []models.Point) error {
	bw := bufio.NewWriter(w)
	for _, p := range points {
		var err error
		if p.Color != nil {
			_, err = fmt.Fprintf(bw, "%g %g %g %d %d %d\n", p.X, p.Y, p.Z, p.Color.R, p.Color.G, p.Color.B)
		} else {
			_, err = fmt.Fprintf(bw, "%g %g %g\n", p.X, p.Y, p.Z)
		}
		if err != nil {
			return fmt.Errorf("failed to write point: %w", err)
		}
	}
	return bw.Flush()
}

// SaveXYZ writes points to a file
func SaveXYZ(filename string, points []models.Point) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := WriteXYZ(file, points); err != nil {
		return err
	}
	return file.Close()
}

// Decimate keeps every n-th point starting with the first one. n below 2
// returns a copy of all points.
func Decimate(points []models.Point, n int) []models.Point {
	if n < 2 {
		return append([]models.Point(nil), points...)
	}
	out := make([]models.Point, 0, (len(points)+n-1)/n)
	for i := 0; i < len(points); i += n {
		out = append(out, points[i])
	}
	return out
}
