package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/treeline-data/forestscan/internal/pointcloud"
)

// readPointTable parses a delimited text point table into a batch. The
// first non-empty line is a header naming the columns; both commas and
// whitespace are accepted as delimiters. Unrecognized columns are
// ignored so tables exported with extra attributes still load.
func readPointTable(path string) (*pointcloud.Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parsePointTable(bufio.NewScanner(f))
}

func splitFields(line string) []string {
	if strings.Contains(line, ",") {
		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return strings.Fields(line)
}

func parsePointTable(sc *bufio.Scanner) (*pointcloud.Batch, error) {
	var header []string
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		header = splitFields(line)
		break
	}
	if header == nil {
		return nil, fmt.Errorf("point table has no header row")
	}

	cols := map[string]int{}
	for i, name := range header {
		cols[name] = i
	}

	b := &pointcloud.Batch{}
	_, hasX := cols[string(pointcloud.FieldX)]
	_, hasY := cols[string(pointcloud.FieldY)]
	if !hasX || !hasY {
		return nil, fmt.Errorf("point table header must include X and Y (got %v)", header)
	}
	_, hasZ := cols[string(pointcloud.FieldZ)]
	_, hasHAG := cols[string(pointcloud.FieldHAG)]
	_, hasClass := cols[string(pointcloud.FieldClassification)]
	_, hasSrc := cols[string(pointcloud.FieldPointSourceID)]

	lineNo := 1
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := splitFields(line)
		if len(fields) != len(header) {
			return nil, fmt.Errorf("line %d: %d fields, header has %d", lineNo, len(fields), len(header))
		}

		getF := func(name string) (float64, error) {
			v, err := strconv.ParseFloat(fields[cols[name]], 64)
			if err != nil {
				return 0, fmt.Errorf("line %d: bad %s value %q", lineNo, name, fields[cols[name]])
			}
			return v, nil
		}
		getI := func(name string) (int32, error) {
			v, err := strconv.ParseInt(fields[cols[name]], 10, 32)
			if err != nil {
				return 0, fmt.Errorf("line %d: bad %s value %q", lineNo, name, fields[cols[name]])
			}
			return int32(v), nil
		}

		x, err := getF(string(pointcloud.FieldX))
		if err != nil {
			return nil, err
		}
		y, err := getF(string(pointcloud.FieldY))
		if err != nil {
			return nil, err
		}
		b.X = append(b.X, x)
		b.Y = append(b.Y, y)

		if hasZ {
			z, err := getF(string(pointcloud.FieldZ))
			if err != nil {
				return nil, err
			}
			b.Z = append(b.Z, z)
		}
		if hasHAG {
			h, err := getF(string(pointcloud.FieldHAG))
			if err != nil {
				return nil, err
			}
			b.HeightAboveGround = append(b.HeightAboveGround, h)
		}
		if hasClass {
			c, err := getI(string(pointcloud.FieldClassification))
			if err != nil {
				return nil, err
			}
			b.Classification = append(b.Classification, c)
		}
		if hasSrc {
			s, err := getI(string(pointcloud.FieldPointSourceID))
			if err != nil {
				return nil, err
			}
			b.PointSourceID = append(b.PointSourceID, s)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return b, nil
}
