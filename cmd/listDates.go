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
	"fmt"
	"io"
	"os"

	"cloud.google.com/go/civil"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/tag-trends/internal/store"
)

var listDatesCmd = &cobra.Command{
	Use:   "dates [tagname]",
	Short: "Lists snapshot dates",
	Long:  `Lists the dates with stored counts, optionally only those on which a tag was observed.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := listDates(os.Stdout, viper.GetString("database"), args); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(listDatesCmd)
}

func listDates(out io.Writer, dbPath string, args []string) error {
	st, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer st.Close()

	var dates []civil.Date
	if len(args) == 0 {
		dates, err = st.Dates()
	} else {
		dates, err = st.DatesFor(args[0])
	}
	if err != nil {
		return err
	}

	for _, date := range dates {
		fmt.Fprintln(out, date)
	}
	return nil
}
