package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/litescript/ls-starfield/internal/astro"
	"github.com/litescript/ls-starfield/internal/state"
)

var (
	buildIn       string
	buildOut      string
	buildCapacity int
	infoFocal     float64
	exportOut     string
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Build and inspect star catalogs",
}

var catalogBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Split a HYG CSV export into magnitude-sorted shard files",
	Args:  cobra.NoArgs,
	RunE:  runCatalogBuild,
}

var catalogExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the embedded bright-star catalog as JSON, a starting point for custom catalogs",
	Args:  cobra.NoArgs,
	RunE:  runCatalogExport,
}

var catalogInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Summarize the catalog's groups and their visibility",
	Args:  cobra.NoArgs,
	RunE:  runCatalogInfo,
}

func init() {
	bf := catalogBuildCmd.Flags()
	bf.StringVar(&buildIn, "in", "", "HYG CSV file (- for stdin)")
	bf.StringVar(&buildOut, "out", "", "Output shard directory")
	bf.IntVar(&buildCapacity, "capacity", astro.DefaultShardCapacity, "Maximum stars per shard")
	_ = catalogBuildCmd.MarkFlagRequired("in")
	_ = catalogBuildCmd.MarkFlagRequired("out")

	catalogInfoCmd.Flags().Float64Var(&infoFocal, "focal", 0, "Focal length for the visibility column (default initial focal length)")

	catalogExportCmd.Flags().StringVarP(&exportOut, "out", "o", "-", "Output file (- for stdout)")

	catalogCmd.AddCommand(catalogBuildCmd, catalogInfoCmd, catalogExportCmd)
	rootCmd.AddCommand(catalogCmd)
}

func runCatalogBuild(cmd *cobra.Command, args []string) error {
	var r io.Reader = cmd.InOrStdin()
	if buildIn != "-" {
		f, err := os.Open(buildIn)
		if err != nil {
			return fmt.Errorf("open HYG file: %w", err)
		}
		defer f.Close()
		r = f
	}

	stars, err := astro.ReadHYG(r)
	if err != nil {
		return err
	}
	shards := astro.BuildShards(stars, buildCapacity)
	if err := astro.WriteShards(buildOut, shards); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d shards (%d stars) to %s\n", len(shards), len(stars), buildOut)
	return nil
}

func runCatalogExport(cmd *cobra.Command, args []string) error {
	data := astro.DefaultCatalogJSON()
	if exportOut == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(exportOut, data, 0o644); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", exportOut)
	return nil
}

func runCatalogInfo(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd, false)
	if err != nil {
		return err
	}
	defer e.Close()

	focal := infoFocal
	if focal <= 0 {
		focal = e.cfg.Navigation.InitialFocalLength
	}
	state.WriteCatalogTable(cmd.OutOrStdout(), e.catalog, e.source, focal)
	return nil
}

// writeState writes a viewer snapshot as JSON to path, or stdout for "-".
func writeState(cmd *cobra.Command, snap state.Snapshot, path string) error {
	if path == "-" {
		if err := snap.WriteJSON(cmd.OutOrStdout()); err != nil {
			return fmt.Errorf("write JSON to stdout: %w", err)
		}
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create state file: %w", err)
	}
	defer f.Close()
	if err := snap.WriteJSON(f); err != nil {
		return fmt.Errorf("write JSON to file: %w", err)
	}
	return nil
}
