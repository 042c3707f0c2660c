package astro

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"
)

const (
	shardPrefix = "cat_"
	shardSuffix = ".json"

	// DefaultShardCapacity gives roughly 20 nodes per face on the full HYG set.
	DefaultShardCapacity = 3000

	shardLoadLimit = 8
)

// Shard is one quadtree node's stars on one cube face.
type Shard struct {
	Face      string
	MinX      float64
	MinY      float64
	Size      float64
	Magnitude float64 // brightest star in the shard
	Stars     []HYGStar
}

// Key returns the shard's group key: the file name without prefix and
// extension. It encodes face, location, size and brightest magnitude.
func (s Shard) Key() string {
	return strings.Join([]string{
		s.Face,
		formatShardFloat(s.MinX),
		formatShardFloat(s.MinY),
		formatShardFloat(s.Size),
		formatShardFloat(s.Magnitude),
	}, "_")
}

// FileName returns the shard file name.
func (s Shard) FileName() string {
	return shardPrefix + s.Key() + shardSuffix
}

// formatShardFloat prints six decimals and trims trailing zeros, keeping at
// least one decimal digit (0.500000 -> 0.5, 1.000000 -> 1.0).
func formatShardFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', 6, 64)
	trimmed := strings.TrimRight(s, "0")
	if strings.HasSuffix(trimmed, ".") {
		trimmed += "0"
	}
	return trimmed
}

// ParseShardName extracts the group key and brightest magnitude from a shard
// file name. ok is false for names that are not shard files.
func ParseShardName(name string) (key string, mag float64, ok bool) {
	base := path.Base(filepath.ToSlash(name))
	if !strings.HasPrefix(base, shardPrefix) || !strings.HasSuffix(base, shardSuffix) {
		return "", 0, false
	}
	key = strings.TrimSuffix(strings.TrimPrefix(base, shardPrefix), shardSuffix)

	parts := strings.Split(key, "_")
	if len(parts) != 5 || parts[0] == "" {
		return "", 0, false
	}
	for _, p := range parts[1:4] {
		if _, err := strconv.ParseFloat(p, 64); err != nil {
			return "", 0, false
		}
	}
	mag, err := strconv.ParseFloat(parts[4], 64)
	if err != nil {
		return "", 0, false
	}
	return key, mag, true
}

// BuildShards partitions stars by cube face and, per face, into a sorted
// quadtree of the given capacity. Every non-empty node becomes a shard.
// Faces are emitted in name order, nodes depth first.
func BuildShards(stars []HYGStar, capacity int) []Shard {
	if capacity <= 0 {
		capacity = DefaultShardCapacity
	}

	byFace := make(map[string][]HYGStar)
	for _, s := range stars {
		byFace[s.Face] = append(byFace[s.Face], s)
	}
	faces := make([]string, 0, len(byFace))
	for f := range byFace {
		faces = append(faces, f)
	}
	slices.Sort(faces)

	var shards []Shard
	for _, face := range faces {
		faceStars := byFace[face]
		slices.SortStableFunc(faceStars, func(a, b HYGStar) int {
			switch {
			case a.Magnitude < b.Magnitude:
				return -1
			case a.Magnitude > b.Magnitude:
				return 1
			default:
				return 0
			}
		})

		qt := NewQuadTree(capacity, 1, func(s HYGStar) (float64, float64) {
			return s.FaceX, s.FaceY
		}, HalfMagnitudeBisect)
		for _, s := range faceStars {
			qt.Add(s)
		}

		qt.Walk(func(n *QuadTree[HYGStar]) {
			items := n.Items()
			if len(items) == 0 {
				return
			}
			minX, minY, size := n.Bounds()
			shards = append(shards, Shard{
				Face:      face,
				MinX:      minX,
				MinY:      minY,
				Size:      size,
				Magnitude: items[0].Magnitude,
				Stars:     slices.Clone(items),
			})
		})
	}
	return shards
}

// shardDoc is the on-disk shard layout: {"stars": [[name, mag, x, y, z, dist, bv], ...]}.
type shardDoc struct {
	Stars [][]any `json:"stars"`
}

// MarshalShard encodes a shard body.
func MarshalShard(s Shard) ([]byte, error) {
	doc := shardDoc{Stars: make([][]any, 0, len(s.Stars))}
	for _, st := range s.Stars {
		var bv any
		if st.HasColor {
			bv = st.ColorIndex
		}
		doc.Stars = append(doc.Stars, []any{
			st.Name,
			st.Magnitude,
			st.Direction.X,
			st.Direction.Y,
			st.Direction.Z,
			st.Distance,
			bv,
		})
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode shard %s: %w", s.Key(), err)
	}
	return data, nil
}

// WriteShards writes one file per shard into dir, creating it if needed.
func WriteShards(dir string, shards []Shard) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create shard dir: %w", err)
	}
	for _, s := range shards {
		data, err := MarshalShard(s)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, s.FileName()), data, 0o644); err != nil {
			return fmt.Errorf("write shard: %w", err)
		}
	}
	return nil
}

// LoadShards loads every shard file in dir concurrently and returns a
// grouped catalog whose groups follow file-name order. Non-shard files are
// ignored. A directory without shards yields an empty catalog.
func LoadShards(ctx context.Context, fsys fs.FS, dir string) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("list shards: %w", err)
	}

	type shardFile struct {
		name string
		key  string
		mag  float64
	}
	var files []shardFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		key, mag, ok := ParseShardName(e.Name())
		if !ok {
			continue
		}
		files = append(files, shardFile{name: e.Name(), key: key, mag: mag})
	}
	if len(files) == 0 {
		return EmptyCatalog(), nil
	}
	slices.SortFunc(files, func(a, b shardFile) int { return strings.Compare(a.name, b.name) })

	groups := make([]Group, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(shardLoadLimit)
	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			raw, err := fs.ReadFile(fsys, path.Join(dir, f.name))
			if err != nil {
				return fmt.Errorf("read shard %s: %w", f.name, err)
			}
			stars, err := decodeShard(raw)
			if err != nil {
				return fmt.Errorf("shard %s: %w", f.name, err)
			}
			groups[i] = Group{Key: f.key, Magnitude: f.mag, Stars: stars}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return NewGroupedCatalog(groups), nil
}
