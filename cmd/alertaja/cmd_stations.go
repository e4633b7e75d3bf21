package main

import (
	"context"
	"database/sql"
	"fmt"
	"text/tabwriter"

	"alertaja/internal/models"
	"alertaja/internal/repository"
	"alertaja/internal/stations"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
)

var (
	syncProvince string
	nearestLat   float64
	nearestLng   float64
	nearestCount int
	nearestType  string

	stationsCmd = &cobra.Command{
		Use:   "stations",
		Short: "Manage the safe stations directory",
	}
	stationsSyncCmd = &cobra.Command{
		Use:   "sync",
		Short: "Replace built-in stations with the verified directory, keeping custom ones",
		RunE:  runStationsSync,
	}
	stationsNearestCmd = &cobra.Command{
		Use:   "nearest",
		Short: "List the safe stations closest to a position",
		RunE:  runStationsNearest,
	}
)

func init() {
	stationsSyncCmd.Flags().StringVar(&syncProvince, "province", "", "only sync this province (default all)")

	stationsNearestCmd.Flags().Float64Var(&nearestLat, "lat", 0, "latitude")
	stationsNearestCmd.Flags().Float64Var(&nearestLng, "lng", 0, "longitude")
	stationsNearestCmd.Flags().IntVarP(&nearestCount, "count", "n", stations.FeaturedCount, "number of stations")
	stationsNearestCmd.Flags().StringVar(&nearestType, "type", "", "hospital, police, ngo, shelter or custom")
	_ = stationsNearestCmd.MarkFlagRequired("lat")
	_ = stationsNearestCmd.MarkFlagRequired("lng")

	stationsCmd.AddCommand(stationsSyncCmd, stationsNearestCmd)
}

func runStationsSync(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx := context.Background()

	// 1. 连接站点目录数据库
	db, err := sql.Open("postgres", cfg.Database.GetDSN())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxConns)

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	// 2. 合并到本地目录
	a, err := newApp(ctx, cfg, logger, appOptions{})
	if err != nil {
		return err
	}
	defer a.close()

	n, err := a.stations.Sync(ctx, repository.NewStationRepository(db, logger), syncProvince)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Synced %d verified station(s)\n", n)
	return nil
}

func runStationsNearest(cmd *cobra.Command, args []string) error {
	t := models.StationType(nearestType)
	if t != "" && !t.Valid() {
		return fmt.Errorf("unknown station type: %q", nearestType)
	}

	return withApp(func(ctx context.Context, a *app) error {
		return printNearest(ctx, cmd, a, t)
	})
}

func printNearest(ctx context.Context, cmd *cobra.Command, a *app, t models.StationType) error {
	from := models.Coordinates{Latitude: nearestLat, Longitude: nearestLng}
	list := stations.Nearest(stations.FilterByType(a.stations.List(ctx), t), from, nearestCount)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTYPE\tDISTANCE\tPHONE\tADDRESS")
	for _, s := range list {
		dist := "?"
		if s.Latitude != 0 || s.Longitude != 0 {
			dist = fmt.Sprintf("%.1f km", stations.DistanceKm(from, models.Coordinates{Latitude: s.Latitude, Longitude: s.Longitude}))
		}
		phone := "-"
		if s.Phone != nil {
			phone = *s.Phone
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", s.Name, s.Type.Label(), dist, phone, s.Address)
	}
	return w.Flush()
}
