package cli

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/cadastre/internal/core/geo"
	"github.com/example/cadastre/internal/ports/primary"
	"github.com/example/cadastre/internal/wire"
)

var pillarCmd = &cobra.Command{
	Use:   "pillar",
	Short: "Allocate, search and convert pillar numbers",
}

var pillarAllocateCmd = &cobra.Command{
	Use:   "allocate [series-prefix] [count]",
	Short: "Reserve consecutive pillar numbers in a series",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		count, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid count %q: %w", args[1], err)
		}
		alloc, err := wire.PillarService().AllocatePillarNumbers(NewContext(), args[0], count)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Allocated %d numbers in %s (%d-%d)\n", len(alloc.Numbers), alloc.SeriesPrefix, alloc.First, alloc.Last)
		for _, n := range alloc.Numbers {
			fmt.Printf("  %s\n", n)
		}
		return nil
	},
}

var pillarSearchCmd = &cobra.Command{
	Use:   "search [pillar-number]",
	Short: "Look up a pillar and the pillars around it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		nearby, _ := cmd.Flags().GetBool("nearby")
		radius, _ := cmd.Flags().GetFloat64("radius")

		resp, err := wire.PillarService().SearchPillar(NewContext(), primary.SearchPillarRequest{
			PillarNumber:  args[0],
			IncludeNearby: nearby,
			RadiusKm:      radius,
		})
		if err != nil {
			return err
		}

		p := resp.Pillar
		fmt.Printf("%s\n", p.PillarNumber)
		fmt.Printf("  Coordinate: E %s  N %s\n", p.Coordinate.Easting, p.Coordinate.Northing)
		if resp.Location != nil {
			fmt.Printf("  Location: %.6f, %.6f\n", resp.Location.Lat, resp.Location.Lon)
		} else {
			fmt.Println("  Location: not computable")
		}
		fmt.Printf("  Job: %s  Surveyor: %s\n", p.JobID, p.SurveyorID)
		fmt.Printf("  Issued: %s\n", p.IssuedAt.Format("2006-01-02 15:04"))

		if !nearby {
			return nil
		}
		if len(resp.NearbyPillars) == 0 {
			fmt.Printf("\nNo pillars within %.1f km.\n", resp.RadiusKm)
			return nil
		}
		fmt.Printf("\nWithin %.1f km:\n", resp.RadiusKm)
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, n := range resp.NearbyPillars {
			fmt.Fprintf(w, "  %s\t%.3f km\t%.6f, %.6f\n", n.Pillar.PillarNumber, n.DistanceKm, n.Location.Lat, n.Location.Lon)
		}
		w.Flush()
		return nil
	},
}

var pillarSeriesCmd = &cobra.Command{
	Use:   "series [series-prefix]",
	Short: "Show the counter of a numbering series",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := wire.PillarService().GetSeries(NewContext(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s: last issued %d\n", s.SeriesPrefix, s.LastIssuedNumber)
		return nil
	},
}

var pillarProjectCmd = &cobra.Command{
	Use:   "project [easting] [northing]",
	Short: "Convert a projected coordinate to latitude/longitude",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := projectionFromFlag(cmd)
		if err != nil {
			return err
		}
		ll, ok := p.Project(geo.Coordinate{Easting: args[0], Northing: args[1]})
		if !ok {
			return fmt.Errorf("coordinate %s,%s is not numeric", args[0], args[1])
		}
		fmt.Printf("%.8f, %.8f (%s)\n", ll.Lat, ll.Lon, p.Name)
		return nil
	},
}

var pillarUnprojectCmd = &cobra.Command{
	Use:   "unproject [latitude] [longitude]",
	Short: "Convert latitude/longitude to a projected coordinate",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := projectionFromFlag(cmd)
		if err != nil {
			return err
		}
		lat, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid latitude %q: %w", args[0], err)
		}
		lon, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid longitude %q: %w", args[1], err)
		}
		pt := p.Forward(geo.LatLng{Lat: lat, Lon: lon})
		fmt.Printf("E %.3f  N %.3f (%s)\n", pt.Easting, pt.Northing, p.Name)
		return nil
	},
}

// projectionFromFlag returns the --projection preset, or the configured one.
func projectionFromFlag(cmd *cobra.Command) (geo.Projection, error) {
	name, _ := cmd.Flags().GetString("projection")
	if name == "" {
		return wire.Projection(), nil
	}
	return geo.LookupProjection(name)
}

func init() {
	pillarSearchCmd.Flags().Bool("nearby", false, "Also rank pillars within the radius")
	pillarSearchCmd.Flags().Float64("radius", 0, "Search radius in km (default: configured radius)")

	for _, c := range []*cobra.Command{pillarProjectCmd, pillarUnprojectCmd} {
		c.Flags().String("projection", "", fmt.Sprintf("Projection preset %v (default: configured)", geo.ProjectionNames()))
	}

	pillarCmd.AddCommand(pillarAllocateCmd)
	pillarCmd.AddCommand(pillarSearchCmd)
	pillarCmd.AddCommand(pillarSeriesCmd)
	pillarCmd.AddCommand(pillarProjectCmd)
	pillarCmd.AddCommand(pillarUnprojectCmd)
}

// PillarCmd returns the pillar command
func PillarCmd() *cobra.Command {
	return pillarCmd
}
