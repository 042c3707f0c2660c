// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - Sharded HYG catalogs, catalog build/info commands, SVG snapshots
// 0.2.0 - Headless snapshot and tour modes, YAML config, trail history
// 0.1.0 - Initial release: terminal star map, click-to-fly navigation, LOD
