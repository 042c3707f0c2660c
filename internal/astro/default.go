package astro

import (
	_ "embed"
)

// brightStarsJSON is an equatorial catalog of 167 named bright stars
// (mag < 5), J2000, from the Yale Bright Star Catalog and IAU star names.
// Every entry carries its B-V color index.
//
//go:embed data/bright.json
var brightStarsJSON []byte

// DefaultCatalog returns the embedded bright-star catalog (flat shape).
func DefaultCatalog() *Catalog {
	cat, err := Load(brightStarsJSON)
	if err != nil {
		// The embedded document is covered by tests.
		panic("astro: embedded catalog: " + err.Error())
	}
	return cat
}

// DefaultCatalogJSON returns a copy of the embedded catalog document.
func DefaultCatalogJSON() []byte {
	out := make([]byte, len(brightStarsJSON))
	copy(out, brightStarsJSON)
	return out
}
