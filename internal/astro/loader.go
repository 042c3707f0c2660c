package astro

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/goccy/go-json"
	"gonum.org/v1/gonum/spatial/r3"
)

// Loader errors.
var (
	ErrEmptyDocument = errors.New("empty catalog document")
	ErrUnknownFormat = errors.New("unrecognized catalog format")
)

// Load parses a catalog document. Accepted forms:
//
//	{"catalog": [[name, mag, raHours, decDeg, bv?], ...]}   flat, equatorial
//	{"stars": [[name, mag, x, y, z, dist?, bv?], ...]}      one group (shard file)
//	{"<key>": [[name, mag, x, y, z, dist?, bv?], ...], ...} grouped, keys sorted
//	[[[name, mag, x, y, z, dist?, bv?], ...], ...]          grouped, key = index
func Load(raw []byte) (*Catalog, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, ErrEmptyDocument
	}

	switch raw[0] {
	case '{':
		return loadObject(raw)
	case '[':
		return loadGroupArray(raw)
	default:
		return nil, ErrUnknownFormat
	}
}

func loadObject(raw []byte) (*Catalog, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog object: %w", err)
	}
	if len(doc) == 0 {
		return nil, ErrEmptyDocument
	}

	if body, ok := doc["catalog"]; ok {
		stars, err := decodeEquatorial(body)
		if err != nil {
			return nil, err
		}
		return NewFlatCatalog(stars), nil
	}

	if body, ok := doc["stars"]; ok && len(doc) == 1 {
		stars, err := decodePrecomputed(body)
		if err != nil {
			return nil, err
		}
		return NewGroupedCatalog([]Group{{Key: "0", Magnitude: math.NaN(), Stars: stars}}), nil
	}

	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	groups := make([]Group, 0, len(keys))
	for _, k := range keys {
		stars, err := decodePrecomputed(doc[k])
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", k, err)
		}
		groups = append(groups, Group{Key: k, Magnitude: math.NaN(), Stars: stars})
	}
	return NewGroupedCatalog(groups), nil
}

func loadGroupArray(raw []byte) (*Catalog, error) {
	var doc []json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog array: %w", err)
	}
	if len(doc) == 0 {
		return nil, ErrEmptyDocument
	}

	groups := make([]Group, 0, len(doc))
	for i, body := range doc {
		stars, err := decodePrecomputed(body)
		if err != nil {
			return nil, fmt.Errorf("group %d: %w", i, err)
		}
		groups = append(groups, Group{Key: strconv.Itoa(i), Magnitude: math.NaN(), Stars: stars})
	}
	return NewGroupedCatalog(groups), nil
}

// decodeShard parses a shard file body ({"stars": [...]}).
func decodeShard(raw []byte) ([]StarRecord, error) {
	var doc struct {
		Stars json.RawMessage `json:"stars"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode shard: %w", err)
	}
	if doc.Stars == nil {
		return nil, ErrUnknownFormat
	}
	return decodePrecomputed(doc.Stars)
}

func decodeEquatorial(body json.RawMessage) ([]StarRecord, error) {
	var tuples [][]any
	if err := json.Unmarshal(body, &tuples); err != nil {
		return nil, fmt.Errorf("decode equatorial tuples: %w", err)
	}

	stars := make([]StarRecord, 0, len(tuples))
	for i, t := range tuples {
		if len(t) != 4 && len(t) != 5 {
			return nil, fmt.Errorf("star %d: want 4 or 5 fields, got %d", i, len(t))
		}
		name, err := tupleString(t, 0)
		if err != nil {
			return nil, fmt.Errorf("star %d: %w", i, err)
		}
		nums, err := tupleFloats(t, 1, 3)
		if err != nil {
			return nil, fmt.Errorf("star %d (%s): %w", i, name, err)
		}
		s := StarRecord{
			Name:      name,
			Magnitude: nums[0],
			Direction: EquatorialToDirection(nums[1], nums[2]),
		}
		if len(t) == 5 {
			s.ColorIndex, s.HasColor, err = tupleOptionalFloat(t, 4)
			if err != nil {
				return nil, fmt.Errorf("star %d (%s): %w", i, name, err)
			}
		}
		stars = append(stars, s)
	}
	return stars, nil
}

func decodePrecomputed(body json.RawMessage) ([]StarRecord, error) {
	var tuples [][]any
	if err := json.Unmarshal(body, &tuples); err != nil {
		return nil, fmt.Errorf("decode star tuples: %w", err)
	}

	stars := make([]StarRecord, 0, len(tuples))
	for i, t := range tuples {
		if len(t) < 5 || len(t) > 7 {
			return nil, fmt.Errorf("star %d: want 5 to 7 fields, got %d", i, len(t))
		}
		name, err := tupleString(t, 0)
		if err != nil {
			return nil, fmt.Errorf("star %d: %w", i, err)
		}
		nums, err := tupleFloats(t, 1, 4)
		if err != nil {
			return nil, fmt.Errorf("star %d (%s): %w", i, name, err)
		}
		dir, ok := normalizeDirection(r3.Vec{X: nums[1], Y: nums[2], Z: nums[3]})
		if !ok {
			return nil, fmt.Errorf("star %d (%s): direction is not a unit vector", i, name)
		}
		s := StarRecord{
			Name:      name,
			Magnitude: nums[0],
			Direction: dir,
		}
		// The trailing field, when present past the direction, is the color
		// index; a distance may sit between them.
		if len(t) > 5 {
			s.ColorIndex, s.HasColor, err = tupleOptionalFloat(t, len(t)-1)
			if err != nil {
				return nil, fmt.Errorf("star %d (%s): %w", i, name, err)
			}
		}
		stars = append(stars, s)
	}
	return stars, nil
}

func tupleString(t []any, i int) (string, error) {
	s, ok := t[i].(string)
	if !ok {
		return "", fmt.Errorf("field %d: want string, got %T", i, t[i])
	}
	return s, nil
}

func tupleFloats(t []any, from, n int) ([]float64, error) {
	out := make([]float64, n)
	for j := 0; j < n; j++ {
		f, ok := t[from+j].(float64)
		if !ok {
			return nil, fmt.Errorf("field %d: want number, got %T", from+j, t[from+j])
		}
		out[j] = f
	}
	return out, nil
}

// tupleOptionalFloat accepts a number or null.
func tupleOptionalFloat(t []any, i int) (float64, bool, error) {
	switch v := t[i].(type) {
	case nil:
		return 0, false, nil
	case float64:
		return v, true, nil
	default:
		return 0, false, fmt.Errorf("field %d: want number or null, got %T", i, t[i])
	}
}
