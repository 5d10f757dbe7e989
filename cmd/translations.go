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
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/tag-trends/internal/store"
	"github.com/ademuri/tag-trends/internal/translation"
)

var importTranslationsCmd = &cobra.Command{
	Use:   "import-translations <db.full.json>",
	Short: "Imports tag translations",
	Long: `Reads an EhTagTranslation db.full.json dump and replaces the stored
  translations with it. Translations are shown next to tag names in reports.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := importTranslations(viper.GetString("database"), args[0]); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(importTranslationsCmd)
}

func importTranslations(dbPath string, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening translations: %w", err)
	}
	defer f.Close()

	entries, err := translation.Parse(f)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	st, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer st.Close()

	if err := st.SaveTranslations(translation.Map(entries)); err != nil {
		return err
	}

	logger.Info().Int("translations", len(entries)).Msg("Imported translations")
	return nil
}
