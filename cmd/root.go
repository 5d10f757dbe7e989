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
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/ademuri/tag-trends/internal/logging"
	"github.com/ademuri/tag-trends/internal/store"
	"github.com/ademuri/tag-trends/internal/tags"
	"github.com/ademuri/tag-trends/internal/translation"
)

var cfgFile string
var databasePath string
var mappingPath string
var verbose bool

var logger = zerolog.Nop()

// Known mis-tagged entries, applied after the mapping file. Setting
// manual_fixes in the config file replaces this list.
var defaultManualFixes = []string{"male:netori=male:minotaur"}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tag-trends",
	Short: "Tracks daily tag counts and reports trending tags",
	Long: `Downloads daily tag count snapshots into a local SQLite time series,
merges aliased tags into their canonical names and ranks tags by growth
between two dates.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default is $HOME/.tag-trends.yaml)")

	rootCmd.PersistentFlags().StringVarP(
		&databasePath, "database", "d", "./tag-trends.db", "Path to the SQLite database")
	viper.BindPFlag("database", rootCmd.PersistentFlags().Lookup("database"))

	rootCmd.PersistentFlags().StringVar(
		&mappingPath, "mapping", "./mapping.csv", "Canonicalization mapping CSV (raw_name,canonical_name)")
	viper.BindPFlag("mapping", rootCmd.PersistentFlags().Lookup("mapping"))

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	viper.SetDefault("manual_fixes", defaultManualFixes)
	viper.SetDefault("exclude_prefixes", []string{"location:", "other:"})
	viper.SetDefault("translation_placeholder", translation.DefaultPlaceholder)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".tag-trends" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".tag-trends")
	}

	configErr := viper.ReadInConfig()

	// See https://github.com/spf13/viper/pull/852
	rootCmd.Flags().VisitAll(func(f *pflag.Flag) {
		if viper.IsSet(f.Name) && viper.GetString(f.Name) != "" {
			rootCmd.Flags().Set(f.Name, viper.GetString(f.Name))
		}
	})

	logger = logging.New(os.Stderr, viper.GetBool("verbose"))
	if configErr == nil {
		logger.Debug().Str("file", viper.ConfigFileUsed()).Msg("Using config file")
	}
}

// loadMapping reads the canonicalization mapping and the manual fixes from the
// config file. An empty mapping path means no general mapping.
func loadMapping(path string, fixEntries []string) (tags.Mapping, error) {
	fixes, err := tags.ParseFixes(fixEntries)
	if err != nil {
		return tags.Mapping{}, err
	}
	if path == "" {
		return tags.NewMapping(nil, fixes)
	}

	f, err := os.Open(path)
	if err != nil {
		return tags.Mapping{}, &tags.ConfigurationError{Reason: fmt.Sprintf("opening %s: %v", path, err)}
	}
	defer f.Close()

	return tags.LoadMapping(f, fixes)
}

func loadTranslations(st *store.Store) (translation.Table, error) {
	translations, err := st.Translations()
	if err != nil {
		return translation.Table{}, err
	}
	return translation.NewTable(translations, viper.GetString("translation_placeholder")), nil
}
