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
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/tag-trends/internal/store"
	"github.com/ademuri/tag-trends/internal/translation"
	"github.com/ademuri/tag-trends/internal/trend"
)

type TrendingConfig struct {
	DbPath          string
	Prefix          string
	ExcludePrefixes []string
	MinCount        int64
	Number          int
	From            string
	To              string
}

var trendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "Lists the fastest growing tags",
	Long: `Ranks tags by growth between two snapshot dates.
  The newer date defaults to the latest snapshot and the older date to the
  snapshot before it. Only tags with more than --min_count uses on the newer
  date are listed.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		config := TrendingConfig{
			DbPath:          viper.GetString("database"),
			Prefix:          viper.GetString("trending.prefix"),
			ExcludePrefixes: viper.GetStringSlice("exclude_prefixes"),
			MinCount:        viper.GetInt64("trending.min_count"),
			Number:          viper.GetInt("trending.number"),
			From:            viper.GetString("trending.from"),
			To:              viper.GetString("trending.to"),
		}
		if err := printTrending(os.Stdout, config); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(trendingCmd)

	trendingCmd.Flags().StringP("prefix", "p", "", "Only consider tags starting with this prefix, e.g. 'female:'")
	viper.BindPFlag("trending.prefix", trendingCmd.Flags().Lookup("prefix"))

	trendingCmd.Flags().Int64P("min_count", "m", 0, "Only list tags with more than this many uses on the newer date")
	viper.BindPFlag("trending.min_count", trendingCmd.Flags().Lookup("min_count"))

	trendingCmd.Flags().IntP("number", "n", 20, "Number of tags to list, 0 for all")
	viper.BindPFlag("trending.number", trendingCmd.Flags().Lookup("number"))

	trendingCmd.Flags().String("from", "", "Older snapshot date, yyyy-mm-dd")
	viper.BindPFlag("trending.from", trendingCmd.Flags().Lookup("from"))

	trendingCmd.Flags().String("to", "", "Newer snapshot date, yyyy-mm-dd")
	viper.BindPFlag("trending.to", trendingCmd.Flags().Lookup("to"))

	trendingCmd.Flags().StringSlice("exclude", []string{"location:", "other:"}, "Namespace prefixes to leave out, also applied together with --prefix")
	viper.BindPFlag("exclude_prefixes", trendingCmd.Flags().Lookup("exclude"))
}

func printTrending(out io.Writer, config TrendingConfig) error {
	st, err := store.New(config.DbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer st.Close()

	analysis, err := trendingAnalysis(st, config)
	if err != nil {
		return err
	}
	fmt.Fprint(out, analysis)
	return nil
}

func trendingAnalysis(st *store.Store, config TrendingConfig) (Analysis, error) {
	opts, err := trendOptions(config)
	if err != nil {
		return Analysis{}, err
	}

	result, err := trend.RankTrending(st, opts)
	if errors.Is(err, trend.ErrNoSnapshots) {
		return Analysis{}, fmt.Errorf("Database has no snapshots - run ingest first.")
	}
	if err != nil {
		return Analysis{}, err
	}

	translations, err := loadTranslations(st)
	if err != nil {
		return Analysis{}, err
	}

	return newTrendingAnalysis(result, translations), nil
}

func trendOptions(config TrendingConfig) (trend.Options, error) {
	oldDate, err := parseDay(config.From)
	if err != nil {
		return trend.Options{}, fmt.Errorf("--from: %w", err)
	}
	newDate, err := parseDay(config.To)
	if err != nil {
		return trend.Options{}, fmt.Errorf("--to: %w", err)
	}

	return trend.Options{
		Prefix:          config.Prefix,
		ExcludePrefixes: config.ExcludePrefixes,
		MinCount:        config.MinCount,
		N:               config.Number,
		Old:             oldDate,
		New:             newDate,
	}, nil
}

func newTrendingAnalysis(result trend.Result, translations translation.Table) Analysis {
	results := [][]string{{"Tag", "Translation", "Old", "New", "Change", "Metric"}}
	for _, row := range result.Rows {
		results = append(results, []string{
			row.Tagname,
			translations.Lookup(row.Tagname),
			strconv.FormatInt(row.OldCount, 10),
			strconv.FormatInt(row.NewCount, 10),
			strconv.FormatFloat(row.PercentChange(), 'f', -1, 64) + "%",
			strconv.FormatFloat(row.Metric, 'f', 2, 64),
		})
	}

	return Analysis{
		results: results,
		summary: fmt.Sprintf("%d tags from %s to %s", len(result.Rows), result.Old, result.New),
	}
}
