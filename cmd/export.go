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
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/tag-trends/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Exports every stored count as CSV",
	Long:  `Writes tagname,date,count rows sorted by tag name and date, to the file or to stdout.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var err error
		if len(args) == 1 {
			err = exportToFile(args[0], viper.GetString("database"))
		} else {
			err = exportEntries(os.Stdout, viper.GetString("database"))
		}
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

func exportToFile(path string, dbPath string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, closeErr)
		}
	}()

	return exportEntries(f, dbPath)
}

func exportEntries(out io.Writer, dbPath string) error {
	st, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer st.Close()

	entries, err := st.Entries()
	if err != nil {
		return err
	}

	w := csv.NewWriter(out)
	if err := w.Write([]string{"tagname", "date", "count"}); err != nil {
		return err
	}
	for _, entry := range entries {
		record := []string{entry.Tagname, entry.Date.String(), strconv.FormatInt(entry.Count, 10)}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
