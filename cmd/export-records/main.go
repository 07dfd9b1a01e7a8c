// Command export-records writes one entity list to CSV or Markdown, applying
// the same search, date and sort filters as the console pages.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh/spinner"

	"github.com/kodstechnologies/lm-backoffice/internal/api"
	"github.com/kodstechnologies/lm-backoffice/internal/config"
	"github.com/kodstechnologies/lm-backoffice/internal/logging"
	"github.com/kodstechnologies/lm-backoffice/internal/models"
	rtable "github.com/kodstechnologies/lm-backoffice/internal/table"
	"github.com/kodstechnologies/lm-backoffice/internal/ui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		ui.PrintError(fmt.Sprintf("Invalid configuration: %v", err))
		os.Exit(1)
	}
	cfg.RegisterFlags(flag.CommandLine)
	entityName := flag.String("entity", string(models.EntityLoan), "Entity to export ("+entityNames()+")")
	dates := flag.String("dates", "", `Date range, "DD-MM-YYYY to DD-MM-YYYY" or a single day`)
	search := flag.String("search", "", "Search term")
	sortKey := flag.String("sort", "", "Field to sort by")
	desc := flag.Bool("desc", false, "Sort descending")
	format := flag.String("format", ui.FormatCSV, "Output format: csv, md or table")
	output := flag.String("output", "", "Output file (default <entity>-<timestamp>.<format>)")
	token := flag.String("token", os.Getenv("BACKOFFICE_TOKEN"), "Bearer token for authenticated endpoints")
	quiet := flag.Bool("quiet", false, "No spinner")
	flag.Parse()

	entity, ok := parseEntity(*entityName)
	if !ok {
		ui.PrintError(fmt.Sprintf("unknown entity %q, expected one of %s", *entityName, entityNames()))
		os.Exit(2)
	}
	dateRange, err := rtable.ParseDateRange(*dates)
	if err != nil {
		ui.PrintError(err.Error())
		os.Exit(2)
	}

	logger, closer := logging.New(logging.Options{
		File:       cfg.LogFile,
		Level:      cfg.LogLevel,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		Prefix:     "export",
	})
	defer closer.Close()

	client := api.NewClient(cfg.APIURL,
		api.WithStaticToken(*token),
		api.WithLogger(logger),
		api.WithRateLimit(cfg.RateLimit, cfg.RateBurst),
		api.WithTimeout(cfg.RequestTimeout),
	)
	app := &ui.App{Client: client, Logger: logger, PageSizes: cfg.PageSizes}

	rt := app.NewEntityTable(entity)
	defer rt.Close()

	var loadErr error
	load := func() {
		loadErr = populate(context.Background(), client, rt, entity, dateRange)
	}
	if *quiet {
		load()
	} else if err := spinner.New().Title(fmt.Sprintf("Loading %s...", models.SchemaFor(entity).Title)).Action(load).Run(); err != nil {
		ui.PrintError(fmt.Sprintf("spinner error: %v", err))
		os.Exit(1)
	}
	if loadErr != nil {
		ui.PrintError(api.Message(loadErr))
		os.Exit(1)
	}

	if rt.State() == rtable.StateErrorFallback {
		ui.PrintInfo("Date filtered fetch failed, filtering the loaded rows instead")
	}

	rt.SetSearchTerm(*search)
	if *sortKey != "" {
		dir := rtable.Ascending
		if *desc {
			dir = rtable.Descending
		}
		rt.SetSort(*sortKey, dir)
	}

	records := rt.Filtered()
	cols := ui.EntityColumns(entity)
	title := models.SchemaFor(entity).Title

	switch *format {
	case "table":
		ui.PrintRecordTable(os.Stdout, title, cols, records, rt.Summary())
		return
	case ui.FormatCSV, ui.FormatMarkdown:
	default:
		ui.PrintError(fmt.Sprintf("unknown format %q", *format))
		os.Exit(2)
	}

	if *output == "-" {
		if err := ui.ExportRecords(os.Stdout, *format, title, cols, records); err != nil {
			ui.PrintError(err.Error())
			os.Exit(1)
		}
		return
	}

	filename := *output
	if filename == "" {
		filename = ui.DefaultExportName(entity, time.Now()) + "." + *format
	}
	if err := ui.ExportFile(filename, *format, title, cols, records); err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}
	ui.PrintSuccess(fmt.Sprintf("Exported %d %s to %s", len(records), strings.ToLower(title), filename))
}

// populate loads the baseline and applies the date range. Entities with a
// remote fetcher run the returned request; a failed fetch leaves the table
// filtering the baseline locally.
func populate(ctx context.Context, client *api.Client, rt *rtable.Table, e models.Entity, r rtable.DateRange) error {
	records, err := client.List(ctx, e)
	if err != nil {
		return err
	}
	rt.Initialize(records)
	if r.IsZero() {
		return nil
	}
	if req := rt.SetDateRange(r); req != nil {
		rt.ApplyFetchResult(req.Run())
	}
	return nil
}

func parseEntity(name string) (models.Entity, bool) {
	for _, e := range models.AllEntities {
		if strings.EqualFold(string(e), name) {
			return e, true
		}
	}
	return "", false
}

func entityNames() string {
	names := make([]string, len(models.AllEntities))
	for i, e := range models.AllEntities {
		names[i] = string(e)
	}
	return strings.Join(names, ", ")
}
