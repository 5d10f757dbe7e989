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
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ademuri/tag-trends/internal/store"
	"github.com/ademuri/tag-trends/internal/translation"
	"github.com/ademuri/tag-trends/internal/trend"
)

type ReportConfig struct {
	DbPath          string
	Prefixes        []string
	Thresholds      []int64
	ExcludePrefixes []string
	Number          int
	From            string
	To              string
}

type TrendReport struct {
	Old      string          `yaml:"old"`
	New      string          `yaml:"new"`
	Sections []ReportSection `yaml:"sections"`
}

type ReportSection struct {
	Prefix    string      `yaml:"prefix"`
	Threshold int64       `yaml:"threshold"`
	Tags      []ReportTag `yaml:"tags"`
}

type ReportTag struct {
	Name        string  `yaml:"name"`
	Translation string  `yaml:"translation,omitempty"`
	Old         int64   `yaml:"old"`
	New         int64   `yaml:"new"`
	Change      float64 `yaml:"change_percent"`
	Metric      float64 `yaml:"metric"`
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generates a YAML report of trending tags",
	Long: `Ranks tags for every combination of prefix and minimum count and
  writes the results as YAML. For each prefix, larger thresholds are skipped
  once a threshold matches no tags.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		thresholds, err := cmd.Flags().GetInt64Slice("thresholds")
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		config := ReportConfig{
			DbPath:          viper.GetString("database"),
			Prefixes:        viper.GetStringSlice("report.prefixes"),
			Thresholds:      thresholds,
			ExcludePrefixes: viper.GetStringSlice("exclude_prefixes"),
			Number:          viper.GetInt("report.number"),
			From:            viper.GetString("report.from"),
			To:              viper.GetString("report.to"),
		}
		if err := runReport(os.Stdout, config); err != nil {
			fmt.Fprintf(os.Stderr, "Error generating report: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringSlice("prefixes", []string{"female:", "male:", "parody:", "artist"}, "Tag prefixes to report on")
	viper.BindPFlag("report.prefixes", reportCmd.Flags().Lookup("prefixes"))

	reportCmd.Flags().Int64Slice("thresholds", []int64{100, 500, 1000, 10000, 50000}, "Minimum counts on the newer date, ascending")

	reportCmd.Flags().IntP("number", "n", 20, "Number of tags per section, 0 for all")
	viper.BindPFlag("report.number", reportCmd.Flags().Lookup("number"))

	reportCmd.Flags().String("from", "", "Older snapshot date, yyyy-mm-dd")
	viper.BindPFlag("report.from", reportCmd.Flags().Lookup("from"))

	reportCmd.Flags().String("to", "", "Newer snapshot date, yyyy-mm-dd")
	viper.BindPFlag("report.to", reportCmd.Flags().Lookup("to"))
}

func runReport(out io.Writer, config ReportConfig) error {
	st, err := store.New(config.DbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer st.Close()

	report, err := buildTrendReport(st, config)
	if err != nil {
		return err
	}

	encoder := yaml.NewEncoder(out)
	encoder.SetIndent(2)
	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return encoder.Close()
}

func buildTrendReport(st *store.Store, config ReportConfig) (TrendReport, error) {
	translations, err := loadTranslations(st)
	if err != nil {
		return TrendReport{}, err
	}

	var report TrendReport
	for _, prefix := range config.Prefixes {
		for _, threshold := range config.Thresholds {
			opts, err := trendOptions(TrendingConfig{
				Prefix:          prefix,
				ExcludePrefixes: config.ExcludePrefixes,
				MinCount:        threshold,
				Number:          config.Number,
				From:            config.From,
				To:              config.To,
			})
			if err != nil {
				return TrendReport{}, err
			}

			result, err := trend.RankTrending(st, opts)
			if errors.Is(err, trend.ErrNoSnapshots) {
				return TrendReport{}, fmt.Errorf("Database has no snapshots - run ingest first.")
			}
			if err != nil {
				return TrendReport{}, fmt.Errorf("ranking %q above %d: %w", prefix, threshold, err)
			}
			report.Old, report.New = result.Old.String(), result.New.String()

			if len(result.Rows) == 0 {
				logger.Debug().Str("prefix", prefix).Int64("threshold", threshold).Msg("No tags matched, skipping larger thresholds")
				break
			}
			report.Sections = append(report.Sections, newReportSection(prefix, threshold, result, translations))
		}
	}

	return report, nil
}

func newReportSection(prefix string, threshold int64, result trend.Result, translations translation.Table) ReportSection {
	section := ReportSection{Prefix: prefix, Threshold: threshold}
	for _, row := range result.Rows {
		section.Tags = append(section.Tags, ReportTag{
			Name:        row.Tagname,
			Translation: translations.Lookup(row.Tagname),
			Old:         row.OldCount,
			New:         row.NewCount,
			Change:      row.PercentChange(),
			Metric:      row.Metric,
		})
	}
	return section
}
