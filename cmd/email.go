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

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/tag-trends/internal/store"
)

type SendEmailConfig struct {
	Trending       TrendingConfig
	From           string
	To             string
	DryRun         bool
	SendgridApiKey string
}

var emailCmd = &cobra.Command{
	Use:   "email <address>",
	Short: "Emails the trending tags",
	Long:  `Renders the trending tags table as HTML and sends it with SendGrid.`,
	Args:  cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetString("from") == "" {
			return fmt.Errorf("required flag(s) \"from\" not set")
		}
		if !viper.GetBool("email.dry_run") && viper.GetString("sendgrid_api_key") == "" {
			return fmt.Errorf("required flag(s) \"sendgrid_api_key\" not set")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		config := SendEmailConfig{
			Trending: TrendingConfig{
				DbPath:          viper.GetString("database"),
				Prefix:          viper.GetString("email.prefix"),
				ExcludePrefixes: viper.GetStringSlice("exclude_prefixes"),
				MinCount:        viper.GetInt64("email.min_count"),
				Number:          viper.GetInt("email.number"),
			},
			From:           viper.GetString("from"),
			To:             args[0],
			DryRun:         viper.GetBool("email.dry_run"),
			SendgridApiKey: viper.GetString("sendgrid_api_key"),
		}
		if err := sendEmail(config); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(emailCmd)

	emailCmd.Flags().BoolP("dry_run", "n", false, "When true, just print instead of emailing")
	viper.BindPFlag("email.dry_run", emailCmd.Flags().Lookup("dry_run"))

	emailCmd.Flags().StringP("prefix", "p", "", "Only consider tags starting with this prefix")
	viper.BindPFlag("email.prefix", emailCmd.Flags().Lookup("prefix"))

	emailCmd.Flags().Int64P("min_count", "m", 100, "Only list tags with more than this many uses on the newer date")
	viper.BindPFlag("email.min_count", emailCmd.Flags().Lookup("min_count"))

	emailCmd.Flags().Int("number", 20, "Number of tags to list, 0 for all")
	viper.BindPFlag("email.number", emailCmd.Flags().Lookup("number"))
}

func sendEmail(config SendEmailConfig) error {
	st, err := store.New(config.Trending.DbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer st.Close()

	subject, body, err := generateEmailContent(st, config)
	if err != nil {
		return err
	}

	if config.DryRun {
		fmt.Printf("Would have sent email: \nsubject: %s\n%s\n", subject, body)
		return nil
	}

	from := mail.NewEmail("tag-trends", config.From)
	to := mail.NewEmail(config.To, config.To)
	message := mail.NewSingleEmail(from, subject, to, "", body)
	client := sendgrid.NewSendClient(config.SendgridApiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("sendEmail: %w", err)
	}
	if response.StatusCode >= 300 {
		return fmt.Errorf("sendEmail: status %d: %s", response.StatusCode, response.Body)
	}

	logger.Info().Str("to", config.To).Msg("Sent trending report")
	return nil
}

func generateEmailContent(st *store.Store, config SendEmailConfig) (subject string, body string, err error) {
	opts, err := trendOptions(config.Trending)
	if err != nil {
		return "", "", err
	}
	analysis, err := trendingAnalysis(st, config.Trending)
	if err != nil {
		return "", "", err
	}

	heading := "Trending tags"
	if opts.Prefix != "" {
		heading = fmt.Sprintf("Trending %s tags", opts.Prefix)
	}

	body = `
<html>
  <head>
<style>
td {
  padding: 0.1em 0.2em;
}
table, th, td {
  border: 1px solid black;
  border-collapse: collapse;
}
</style>
  </head>
  <body>
`
	body += fmt.Sprintf("<h2>%s, more than %d uses:</h2>\n", heading, opts.MinCount)
	body += analysis.HTML()
	body += "  </body>\n</html>\n"

	subject = heading + ": " + analysis.summary
	return subject, body, nil
}
