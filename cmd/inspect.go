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
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/tag-trends/internal/store"
	"github.com/ademuri/tag-trends/internal/trend"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <tagname>",
	Short: "Shows how a single tag grew",
	Long: `Shows a tag's counts on two snapshot dates and its growth metric.
  Without --to, the latest date on which the tag was observed is used, and
  without --from, the observation before that.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		err := printInspection(os.Stdout, viper.GetString("database"), args[0],
			viper.GetString("inspect.from"), viper.GetString("inspect.to"))
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().String("from", "", "Older snapshot date, yyyy-mm-dd")
	viper.BindPFlag("inspect.from", inspectCmd.Flags().Lookup("from"))

	inspectCmd.Flags().String("to", "", "Newer snapshot date, yyyy-mm-dd")
	viper.BindPFlag("inspect.to", inspectCmd.Flags().Lookup("to"))
}

func printInspection(out io.Writer, dbPath string, tagname string, from string, to string) error {
	oldDate, err := parseDay(from)
	if err != nil {
		return fmt.Errorf("--from: %w", err)
	}
	newDate, err := parseDay(to)
	if err != nil {
		return fmt.Errorf("--to: %w", err)
	}

	st, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer st.Close()

	in, err := trend.Inspect(st, tagname, newDate, oldDate)
	switch {
	case errors.Is(err, trend.ErrNotFound):
		fmt.Fprintf(out, "Tag %q was not found.\n", tagname)
		return nil
	case errors.Is(err, trend.ErrInsufficientHistory):
		fmt.Fprintf(out, "Tag %q does not have enough history to compare.\n", tagname)
		return nil
	case err != nil:
		return err
	}

	translations, err := loadTranslations(st)
	if err != nil {
		return err
	}

	results := [][]string{
		{"Tag", "Translation", "Date", "Count"},
		{in.Tagname, translations.Lookup(in.Tagname), in.Old.String(), formatCount(in.OldCount)},
		{"", "", in.New.String(), formatCount(in.NewCount)},
	}

	summary := "Metric: undefined"
	if in.MetricOK {
		summary = "Metric: " + strconv.FormatFloat(in.Metric, 'f', 2, 64)
	}
	if in.GrowthOK {
		summary += ", growth: " + strconv.FormatFloat(in.GrowthFactor, 'f', 3, 64) + "x"
	}

	fmt.Fprint(out, Analysis{results: results, summary: summary})
	return nil
}

func formatCount(count sql.NullInt64) string {
	if !count.Valid {
		return "-"
	}
	return strconv.FormatInt(count.Int64, 10)
}
