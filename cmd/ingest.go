/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"cloud.google.com/go/civil"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/tag-trends/internal/fetch"
	"github.com/ademuri/tag-trends/internal/ingest"
	"github.com/ademuri/tag-trends/internal/store"
)

type IngestConfig struct {
	DbPath      string
	MappingPath string
	ManualFixes []string
	URLTemplate string
	Workers     int
	Timeout     time.Duration
	Force       bool
	Start       civil.Date
	End         civil.Date

	// Progress receives a progress bar. Nil disables it.
	Progress io.Writer
}

var ingestCmd = &cobra.Command{
	Use:   "ingest [from] [to]",
	Short: "Downloads daily tag count snapshots",
	Long: `Downloads the published tag counts for every day in the range and
  stores them in the local database. Without arguments, every day from the
  first published snapshot through today is considered. Days that were already
  ingested are skipped unless --force is given, and days without a published
  snapshot are skipped.`,
	Args: cobra.MaximumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		start, end, err := parseDateRangeFromArgs(args)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		config := IngestConfig{
			DbPath:      viper.GetString("database"),
			MappingPath: viper.GetString("mapping"),
			ManualFixes: viper.GetStringSlice("manual_fixes"),
			URLTemplate: viper.GetString("url_template"),
			Workers:     viper.GetInt("ingest.workers"),
			Timeout:     viper.GetDuration("ingest.timeout"),
			Force:       viper.GetBool("ingest.force"),
			Start:       start,
			End:         end,
			Progress:    os.Stderr,
		}
		if err := ingestSnapshots(cmd.Context(), config); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().BoolP("force", "f", false, "Download days that were already ingested again (idempotent)")
	viper.BindPFlag("ingest.force", ingestCmd.Flags().Lookup("force"))

	ingestCmd.Flags().Int("workers", 3, "Maximum number of concurrent downloads")
	viper.BindPFlag("ingest.workers", ingestCmd.Flags().Lookup("workers"))

	ingestCmd.Flags().Duration("timeout", 30*time.Second, "Timeout for each download")
	viper.BindPFlag("ingest.timeout", ingestCmd.Flags().Lookup("timeout"))

	viper.SetDefault("url_template", fetch.DefaultURLTemplate)
}

func ingestSnapshots(ctx context.Context, config IngestConfig) error {
	mapping, err := loadMapping(config.MappingPath, config.ManualFixes)
	if err != nil {
		return err
	}

	st, err := store.New(config.DbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer st.Close()

	dates, err := datesToIngest(st, config)
	if err != nil {
		return err
	}
	if len(dates) == 0 {
		logger.Info().Stringer("start", config.Start).Stringer("end", config.End).Msg("All days were already ingested")
		return nil
	}

	fetchConfig := fetch.DefaultConfig()
	if config.URLTemplate != "" {
		fetchConfig.URLTemplate = config.URLTemplate
	}
	if config.Workers > 0 {
		fetchConfig.Workers = config.Workers
	}
	if config.Timeout > 0 {
		fetchConfig.Timeout = config.Timeout
	}

	driver := ingest.Driver{
		Fetcher: fetch.New(fetchConfig, logger),
		Store:   st,
		Mapping: mapping,
		Log:     logger,
	}

	if config.Progress != nil {
		bar := progressbar.NewOptions(len(dates),
			progressbar.OptionSetDescription("Downloading snapshots"),
			progressbar.OptionSetWriter(config.Progress),
			progressbar.OptionSetWidth(50),
			progressbar.OptionShowCount(),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprint(config.Progress, "\n")
			}),
			progressbar.OptionSetRenderBlankState(true),
		)
		driver.OnFetched = func(fetch.Result) {
			_ = bar.Add(1)
		}
	}

	logger.Info().Int("days", len(dates)).Int("mappings", mapping.Len()).Msg("Ingesting snapshots")
	summary, err := driver.Run(ctx, dates)
	for _, failure := range summary.Failed {
		logger.Warn().Stringer("date", failure.Date).Err(failure.Err).Msg("Snapshot could not be parsed")
	}
	if errors.Is(err, ingest.ErrNoData) {
		stored, datesErr := st.Dates()
		if datesErr != nil {
			return fmt.Errorf("listing dates: %w", datesErr)
		}
		if len(stored) > 0 {
			logger.Warn().
				Int("missing", len(summary.Missing)).
				Int("failed", len(summary.Failed)).
				Stringer("latest", stored[len(stored)-1]).
				Msg("No new snapshots were published")
			return nil
		}
	}
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}

	logger.Info().
		Int("ingested", len(summary.Ingested)).
		Int("missing", len(summary.Missing)).
		Int("failed", len(summary.Failed)).
		Int("tags", summary.Tags).
		Msg("Done")
	return nil
}

// datesToIngest lists the days in the configured range, leaving out days that
// were already ingested unless forced.
func datesToIngest(st *store.Store, config IngestConfig) ([]civil.Date, error) {
	days := daysInRange(config.Start, config.End)
	if config.Force {
		return days, nil
	}

	ingested, err := st.IngestedDates()
	if err != nil {
		return nil, fmt.Errorf("listing ingested dates: %w", err)
	}
	done := make(map[civil.Date]bool, len(ingested))
	for _, date := range ingested {
		done[date] = true
	}

	var dates []civil.Date
	for _, day := range days {
		if !done[day] {
			dates = append(dates, day)
		}
	}
	return dates, nil
}
