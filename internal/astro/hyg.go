package astro

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// HYG CSV column indices (hygxyz.csv layout).
const (
	hygColHIP     = 1
	hygColGliese  = 4
	hygColBayer   = 5
	hygColProper  = 6
	hygColRA      = 7
	hygColDec     = 8
	hygColDist    = 9
	hygColMag     = 13
	hygColColor   = 16
	hygMinColumns = 17

	// sunMagnitude filters the Sun out of HYG dumps.
	sunMagnitude = -25
)

// errHYGShort marks rows with too few columns (e.g., truncated lines).
var errHYGShort = errors.New("too few columns")

// HYGStar is a star read from a HYG CSV row together with its position on
// the cube-map face used for sharding.
type HYGStar struct {
	StarRecord
	Distance float64 // parsecs as given by the source
	Face     string  // "x0", "x1", "y0", "y1", "z0" or "z1"
	FaceX    float64 // position on the face, [0,1]
	FaceY    float64
}

// ParseHYGLine parses one HYG CSV row. Header rows and rows with malformed
// numeric fields return an error. An empty color index leaves HasColor unset.
func ParseHYGLine(line string) (HYGStar, error) {
	fields := strings.Split(strings.TrimSpace(line), ",")
	if len(fields) < hygMinColumns {
		return HYGStar{}, errHYGShort
	}

	name := firstNonEmpty(fields[hygColProper], fields[hygColBayer], fields[hygColGliese])
	if name == "" {
		name = "HIP " + fields[hygColHIP]
	}

	var nums [4]float64
	for i, col := range []int{hygColRA, hygColDec, hygColDist, hygColMag} {
		v, err := strconv.ParseFloat(fields[col], 64)
		if err != nil {
			return HYGStar{}, fmt.Errorf("column %d: %w", col, err)
		}
		nums[i] = v
	}

	star := HYGStar{
		StarRecord: StarRecord{
			Name:      name,
			Magnitude: nums[3],
			Direction: EquatorialToDirection(nums[0], nums[1]),
		},
		Distance: nums[2],
	}
	if c := fields[hygColColor]; c != "" {
		v, err := strconv.ParseFloat(c, 64)
		if err != nil {
			return HYGStar{}, fmt.Errorf("column %d: %w", hygColColor, err)
		}
		star.ColorIndex, star.HasColor = v, true
	}
	star.Face, star.FaceX, star.FaceY = CubeFace(star.Direction)
	return star, nil
}

// ReadHYG reads every parsable row of a HYG CSV, skipping the header,
// malformed rows and the Sun.
func ReadHYG(r io.Reader) ([]HYGStar, error) {
	var stars []HYGStar
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		star, err := ParseHYGLine(sc.Text())
		if err != nil {
			continue
		}
		if star.Magnitude <= sunMagnitude {
			continue
		}
		stars = append(stars, star)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read HYG: %w", err)
	}
	return stars, nil
}

// CubeFace projects a direction onto the cube map. The face is the dominant
// axis and its sign; x and y are the two remaining components scaled into
// [0,1]. Axes are tried in x, y, z order so ties go to the earlier axis.
func CubeFace(v r3.Vec) (face string, x, y float64) {
	orders := [...]struct {
		axis    byte
		a, b, c float64
	}{
		{'x', v.X, v.Y, v.Z},
		{'y', v.Y, v.Z, v.X},
		{'z', v.Z, v.Y, v.X},
	}
	for _, o := range orders {
		absA := math.Abs(o.a)
		if absA < math.Max(math.Abs(o.b), math.Abs(o.c)) {
			continue
		}
		sign := 0
		if o.a > 0 {
			sign = 1
		}
		return fmt.Sprintf("%c%d", o.axis, sign), (o.b/absA + 1) / 2, (o.c/absA + 1) / 2
	}
	// Unreachable for finite input: one axis is always dominant.
	return "z0", 0.5, 0.5
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
