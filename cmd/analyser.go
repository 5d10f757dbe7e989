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
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// Analysis is a rendered table: a header row followed by data rows, plus a
// one-line summary.
type Analysis struct {
	results [][]string
	summary string
}

func (a Analysis) empty() bool {
	return len(a.results) <= 1
}

func (a Analysis) String() string {
	out := new(bytes.Buffer)
	if a.empty() {
		fmt.Fprintf(out, "No tags matched.\n%s\n", a.summary)
		return out.String()
	}

	table := tablewriter.NewWriter(out)
	table.Header(a.results[0])
	for _, row := range a.results[1:] {
		if err := table.Append(row); err != nil {
			return fmt.Sprintf("Error rendering table: %v", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Sprintf("Error rendering table: %v", err)
	}
	fmt.Fprintf(out, "%s\n", a.summary)
	return out.String()
}

// HTML renders the analysis as a table for email bodies.
func (a Analysis) HTML() string {
	var out strings.Builder
	out.WriteString("<div>\n")
	if a.empty() {
		out.WriteString("<div>No tags matched.</div>\n")
	} else {
		out.WriteString("<table>\n<thead>\n<tr>")
		for _, header := range a.results[0] {
			fmt.Fprintf(&out, "<th>%s</th>", html.EscapeString(header))
		}
		out.WriteString("</tr>\n</thead>\n<tbody>\n")
		for _, row := range a.results[1:] {
			out.WriteString("<tr>")
			for _, column := range row {
				fmt.Fprintf(&out, "<td>%s</td>", html.EscapeString(column))
			}
			out.WriteString("</tr>\n")
		}
		out.WriteString("</tbody>\n</table>\n")
	}
	fmt.Fprintf(&out, "<div>%s</div>\n</div>\n", html.EscapeString(a.summary))
	return out.String()
}
