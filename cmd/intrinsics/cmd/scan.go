/*
Copyright © 2026 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/apex/log"
	"github.com/blacktop/intrinsics/internal/colors"
	"github.com/blacktop/intrinsics/internal/config"
	"github.com/blacktop/intrinsics/internal/utils"
	"github.com/blacktop/intrinsics/pkg/intrinsics"
	"github.com/blacktop/intrinsics/pkg/symbols"
	"github.com/blacktop/intrinsics/pkg/table"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type scanOutput struct {
	Revision string           `json:"revision,omitempty"`
	Files    []scanFile       `json:"files"`
	Stats    intrinsics.Stats `json:"stats"`
	Promoted map[string]bool  `json:"promoted,omitempty"`
}

type scanFile struct {
	File    string               `json:"file"`
	Methods []*intrinsics.Method `json:"methods"`
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().BoolP("json", "j", false, "Output as JSON")
	scanCmd.Flags().StringP("class", "k", "", "Only show methods of this class")
	scanCmd.Flags().BoolP("table", "t", false, "Output as a table")
	scanCmd.MarkFlagsMutuallyExclusive("json", "table")
	viper.BindPFlag("scan.json", scanCmd.Flags().Lookup("json"))
	viper.BindPFlag("scan.class", scanCmd.Flags().Lookup("class"))
	viper.BindPFlag("scan.table", scanCmd.Flags().Lookup("table"))
}

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan [RUBY_SOURCE]",
	Short: "List the native methods registered by the ruby sources",
	Example: heredoc.Doc(`
		# List every registration (all marked hidden without --ruby)
		❯ intrinsics scan third_party/ruby

		# Mark exported [x], patchable [+] and hidden [ ] methods
		❯ intrinsics scan third_party/ruby --ruby build/bin/ruby --class String

		# Machine readable output
		❯ intrinsics scan third_party/ruby --ruby build/bin/ruby --json`),
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {

		if Verbose {
			log.SetLevel(log.DebugLevel)
		}

		conf, err := config.LoadConfig()
		if err != nil {
			return err
		}
		root := conf.RubySource
		if len(args) > 0 {
			root = args[0]
		}
		if root == "" {
			return errors.New("must supply a RUBY_SOURCE (or --ruby-source)")
		}

		exported := symbols.Set{}
		if conf.Ruby != "" {
			exported, err = symbols.Exported(conf.Ruby, conf.SymbolsConfig())
			if err != nil {
				return err
			}
		} else {
			log.Warn("no --ruby given, every method is reported as hidden")
		}

		files, err := intrinsics.NewScanner(conf.ScanConfig(), exported).Scan(root)
		if err != nil {
			return errors.Wrapf(err, "failed to scan %s", root)
		}
		vis, err := intrinsics.ExposeFiles(root, files.Filter(conf.Patch.Files))
		if err != nil {
			return err
		}

		out := scanOutput{Promoted: vis.Promoted}
		if rev, err := utils.SourceRevision(root); err == nil {
			out.Revision = rev
		}
		if class := viper.GetString("scan.class"); class != "" {
			files = files.Class(class)
		}
		out.Stats = files.Count()
		for _, f := range files {
			out.Files = append(out.Files, scanFile{File: f.File, Methods: f.Methods})
		}

		if viper.GetBool("scan.json") {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}

		if viper.GetBool("scan.table") {
			tbl := table.New("FILE", "METHOD", "C FUNCTION", "ARGC", "VISIBILITY")
			tbl.AlignRight(3)
			if colors.Enabled() {
				tbl.SetStyle(table.StyledStyle())
			}
			for _, f := range out.Files {
				for _, m := range f.Methods {
					tbl.AppendRow(f.File, m.String(), m.CName, argc(m), visibility(m, vis.Promoted))
				}
			}
			_, err := tbl.WriteTo(os.Stdout)
			return err
		}

		if out.Revision != "" {
			log.WithField("revision", out.Revision).Info("ruby source")
		}
		for _, f := range out.Files {
			log.Info(colors.File().Sprint(f.File))
			for _, m := range f.Methods {
				utils.Indent(log.Info, 2)(fmt.Sprintf("%s %s (%s#%s) argc=%s",
					colors.Mark(m.Exported, vis.Promoted[m.CName]),
					colors.Symbol().Sprint(m.CName),
					colors.Class().Sprint(m.Klass),
					m.RbName,
					argc(m),
				))
			}
		}
		log.WithFields(log.Fields{
			"total":     out.Stats.Total,
			"exported":  out.Stats.Visible,
			"patchable": len(vis.Promoted),
		}).Info("stats")
		return nil
	},
}

func argc(m *intrinsics.Method) string {
	if !m.LiteralArgc() {
		return m.ArgcExpr
	}
	return strconv.Itoa(m.Argc)
}

func visibility(m *intrinsics.Method, promoted map[string]bool) string {
	switch {
	case m.Exported:
		return "exported"
	case promoted[m.CName]:
		return "patchable"
	default:
		return "hidden"
	}
}
