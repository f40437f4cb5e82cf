package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/streetcover/streetcover"
	"github.com/streetcover/streetcover/internal/storage"
)

var (
	osmFileName string
	address     string
	lat         float64
	lon         float64
	distance    float64
	tagStr      string
	routeName   string
	out         string
	databaseDSN string
	useCH       bool
	workers     int
	verbose     bool
)

func main() {
	root := &cobra.Command{
		Use:   "streetcover",
		Short: "Compute closed walking routes covering every street around an address",
		Long: "streetcover builds a road network from an OSM extract, finds the\n" +
			"minimum-duplication closed route traversing every road segment within\n" +
			"a radius of a location, and renders or persists the result.",
		SilenceUsage: true,
	}

	routeCmd := &cobra.Command{
		Use:   "route",
		Short: "Compute an edge-cover route and write it as GeoJSON",
		RunE:  runRoute,
	}
	routeCmd.Flags().StringVar(&osmFileName, "file", "map.osm.pbf", "Filename of *.osm / *.osm.pbf extract")
	routeCmd.Flags().StringVar(&address, "address", "", "Free-text address of the route anchor (geocoded via Nominatim)")
	routeCmd.Flags().Float64Var(&lat, "lat", 0, "Anchor latitude (alternative to --address)")
	routeCmd.Flags().Float64Var(&lon, "lon", 0, "Anchor longitude (alternative to --address)")
	routeCmd.Flags().Float64Var(&distance, "distance", 0, "Radius around the anchor in meters")
	routeCmd.Flags().StringVar(&tagStr, "tags", strings.Join(streetcover.DefaultNetworkConfig().Tags, ","), "Set of needed highway tags (separated by commas)")
	routeCmd.Flags().StringVar(&routeName, "name", "", "Route name to store (defaults to the address)")
	routeCmd.Flags().StringVar(&out, "out", "route.geojson", "Output GeoJSON filename")
	routeCmd.Flags().StringVar(&databaseDSN, "db", "", "Postgres DSN; when set, segments and the route are persisted")
	routeCmd.Flags().BoolVar(&useCH, "ch", false, "Use the contraction hierarchies shortest-path oracle")
	routeCmd.Flags().IntVar(&workers, "workers", 1, "Parallel shortest-path workers (ignored with --ch)")
	routeCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print stage progress")
	root.AddCommand(routeCmd)

	initdbCmd := &cobra.Command{
		Use:   "initdb",
		Short: "Create or update the database schema",
		RunE:  runInitDB,
	}
	initdbCmd.Flags().StringVar(&databaseDSN, "db", "", "Postgres DSN")
	_ = initdbCmd.MarkFlagRequired("db")
	root.AddCommand(initdbCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored routes",
		RunE:  runList,
	}
	listCmd.Flags().StringVar(&databaseDSN, "db", "", "Postgres DSN")
	_ = listCmd.MarkFlagRequired("db")
	root.AddCommand(listCmd)

	exportCmd := &cobra.Command{
		Use:   "export <route-id>",
		Short: "Export a stored route as GeoJSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runExport,
	}
	exportCmd.Flags().StringVar(&databaseDSN, "db", "", "Postgres DSN")
	exportCmd.Flags().StringVar(&out, "out", "route.geojson", "Output GeoJSON filename")
	_ = exportCmd.MarkFlagRequired("db")
	root.AddCommand(exportCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete <route-id>",
		Short: "Delete a stored route",
		Args:  cobra.ExactArgs(1),
		RunE:  runDelete,
	}
	deleteCmd.Flags().StringVar(&databaseDSN, "db", "", "Postgres DSN")
	_ = deleteCmd.MarkFlagRequired("db")
	root.AddCommand(deleteCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runRoute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	reader := bufio.NewReader(os.Stdin)

	start, err := resolveAnchor(ctx, reader)
	if err != nil {
		return err
	}
	if distance <= 0 {
		distance, err = promptFloat(reader, "Radius in meters: ")
		if err != nil {
			return err
		}
	}

	source := &streetcover.OSMFileSource{
		Filename: osmFileName,
		Config: &streetcover.NetworkConfig{
			EntityName: "highway",
			Tags:       strings.Split(tagStr, ","),
		},
		Verbose: verbose,
	}
	segments, err := source.RoadNetwork(start, distance)
	if err != nil {
		return err
	}

	options := []func(*streetcover.Solver){streetcover.WithVerbose(verbose)}
	if useCH {
		options = append(options, streetcover.WithCHOracle())
	} else if workers > 1 {
		options = append(options, streetcover.WithParallelOracle(workers))
	}
	solution, err := streetcover.NewSolver(options...).Solve(segments, start)
	if err != nil {
		return err
	}
	if routeName == "" {
		routeName = address
	}
	solution.Route.Name = routeName

	solution.Metrics.Print(os.Stdout)

	if err := streetcover.WriteRouteGeoJSON(out, solution.Route, streetcover.SegmentIndex(segments)); err != nil {
		return err
	}
	fmt.Printf("Route written to %s\n", out)

	if databaseDSN != "" {
		store, err := storage.NewPostgres(ctx, databaseDSN)
		if err != nil {
			return err
		}
		defer store.Close()
		st := time.Now()
		if err := store.UpsertSegments(ctx, segments); err != nil {
			return err
		}
		if err := store.SaveRoute(ctx, solution.Route); err != nil {
			return err
		}
		fmt.Printf("Route %s persisted in %v\n", solution.Route.ID, time.Since(st))
	}
	return nil
}

// resolveAnchor turns the flags (or interactive input) into a start
// point. Explicit coordinates win over the address.
func resolveAnchor(ctx context.Context, reader *bufio.Reader) (streetcover.GeoPoint, error) {
	if lat != 0 || lon != 0 {
		return streetcover.GeoPoint{Lat: lat, Lon: lon}, nil
	}
	if address == "" {
		line, err := prompt(reader, "Address: ")
		if err != nil {
			return streetcover.GeoPoint{}, err
		}
		address = line
	}
	return streetcover.NewNominatimGeocoder().Geocode(ctx, address)
}

func runInitDB(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, err := storage.NewPostgres(ctx, databaseDSN)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Migrate(ctx); err != nil {
		return err
	}
	fmt.Println("Schema is up to date")
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, err := storage.NewPostgres(ctx, databaseDSN)
	if err != nil {
		return err
	}
	defer store.Close()
	routes, err := store.ListRoutes(ctx)
	if err != nil {
		return err
	}
	if len(routes) == 0 {
		fmt.Println("No stored routes")
		return nil
	}
	for _, route := range routes {
		fmt.Printf("%s\t%s\t%.1f m (%.1f m re-traversed)\t%s\n",
			route.ID, route.CreatedAt.Format(time.RFC3339), route.TotalMeters,
			route.DuplicatedMeters, route.Name)
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("bad route id %q: %w", args[0], err)
	}
	store, err := storage.NewPostgres(ctx, databaseDSN)
	if err != nil {
		return err
	}
	defer store.Close()
	route, err := store.GetRoute(ctx, id)
	if err != nil {
		return err
	}
	osmIDs := make([]string, len(route.Segments))
	for i, rs := range route.Segments {
		osmIDs[i] = rs.SegmentOSMID
	}
	segments, err := store.SegmentsByID(ctx, osmIDs)
	if err != nil {
		return err
	}
	if err := streetcover.WriteRouteGeoJSON(out, route, streetcover.SegmentIndex(segments)); err != nil {
		return err
	}
	fmt.Printf("Route written to %s\n", out)
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("bad route id %q: %w", args[0], err)
	}
	store, err := storage.NewPostgres(ctx, databaseDSN)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.DeleteRoute(ctx, id); err != nil {
		return err
	}
	fmt.Printf("Route %s deleted\n", id)
	return nil
}

func prompt(reader *bufio.Reader, label string) (string, error) {
	fmt.Print(label)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func promptFloat(reader *bufio.Reader, label string) (float64, error) {
	line, err := prompt(reader, label)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseFloat(line, 64)
	if err != nil {
		return 0, fmt.Errorf("bad number %q: %w", line, err)
	}
	return value, nil
}
