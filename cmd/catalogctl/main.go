package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Da-Krause/settlers-remake/internal/sim/geom"
)

type globalFlags struct {
	catalog string
	tuning  string
}

func main() {
	var g globalFlags
	rootCmd := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Inspect building definitions and construction site strategies",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&g.catalog, "catalog", "", "path to buildings.yaml (default: compiled-in definitions)")
	rootCmd.PersistentFlags().StringVar(&g.tuning, "tuning", "", "path to tuning.yaml (default: built-in defaults)")

	rootCmd.AddCommand(validateCmd(&g))
	rootCmd.AddCommand(dumpCmd(&g))
	rootCmd.AddCommand(strategyCmd(&g))
	rootCmd.AddCommand(previewCmd(&g))
	rootCmd.AddCommand(placeCmd(&g))
	rootCmd.AddCommand(indexCmd(&g))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "catalogctl:", err)
		os.Exit(1)
	}
}

func validateCmd(g *globalFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check every resolved building record against the layout invariants",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return runValidate(c.OutOrStdout(), g.catalog, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func dumpCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "dump [kind] [civilisation]",
		Short: "Print resolved building records as JSON",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			var kind, cv string
			if len(args) > 0 {
				kind = args[0]
			}
			if len(args) > 1 {
				cv = args[1]
			}
			return runDump(c.OutOrStdout(), g.catalog, kind, cv)
		},
	}
}

func strategyCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "strategy [kind civilisation]",
		Short: "Show which placement strategy a building uses",
		Args: func(c *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("expected no arguments or kind and civilisation")
			}
			return nil
		},
		RunE: func(c *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runStrategyTable(c.OutOrStdout(), g.catalog, g.tuning)
			}
			return runStrategy(c.OutOrStdout(), g.catalog, g.tuning, args[0], args[1])
		},
	}
}

func previewCmd(g *globalFlags) *cobra.Command {
	var (
		out  string
		cell int
	)
	cmd := &cobra.Command{
		Use:   "preview kind civilisation",
		Short: "Render the tile layout of a building to PNG",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return runPreview(c.OutOrStdout(), g.catalog, args[0], args[1], out, cell)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: <kind>_<civilisation>.png)")
	cmd.Flags().IntVar(&cell, "cell", 16, "tile size in pixels")
	return cmd
}

func placeCmd(g *globalFlags) *cobra.Command {
	var o placeOptions
	var center string
	cmd := &cobra.Command{
		Use:   "place kind civilisation",
		Short: "Find the best construction site for a building on a map",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			if center != "" {
				p, err := parsePoint(center)
				if err != nil {
					return err
				}
				o.Center = &p
			}
			o.Catalog, o.Tuning = g.catalog, g.tuning
			o.Kind, o.Civilisation = args[0], args[1]
			return runPlace(c.Context(), c.OutOrStdout(), o)
		},
	}
	cmd.Flags().StringVar(&o.MapPath, "map", "", "map yaml (required)")
	cmd.Flags().StringVar(&center, "center", "", "search center x,y (default: whole map)")
	cmd.Flags().IntVar(&o.Radius, "radius", 0, "search radius around center (default: tuning planner.search_radius)")
	cmd.Flags().StringVar(&o.DataDir, "log", "", "data directory for the decision log (disabled when empty)")
	cmd.Flags().StringVar(&o.DBPath, "db", "", "sqlite index to record the decision in (disabled when empty)")
	cmd.Flags().BoolVar(&o.Mark, "mark", false, "build the placed building into the map and save it back")
	_ = cmd.MarkFlagRequired("map")
	return cmd
}

func indexCmd(g *globalFlags) *cobra.Command {
	var db string
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Write the catalog and its validation report into a sqlite index",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return runIndex(c.OutOrStdout(), g.catalog, g.tuning, db)
		},
	}
	cmd.Flags().StringVar(&db, "db", "./data/index/catalog.sqlite", "sqlite path")
	return cmd
}

func parsePoint(s string) (geom.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return geom.Point{}, fmt.Errorf("bad point %q (want x,y)", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return geom.Point{}, fmt.Errorf("bad point %q: %w", s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return geom.Point{}, fmt.Errorf("bad point %q: %w", s, err)
	}
	return geom.Point{X: x, Y: y}, nil
}
