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
	"fmt"
	"os"
	"path/filepath"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/apex/log"
	"github.com/blacktop/intrinsics/internal/colors"
	"github.com/blacktop/intrinsics/internal/config"
	"github.com/blacktop/intrinsics/internal/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(jsonschemaCmd)
	jsonschemaCmd.Flags().StringP("output", "o", "", "Write the schema to this file instead of stdout")
}

var jsonschemaCmd = &cobra.Command{
	Use:     "jsonschema",
	Aliases: []string{"schema"},
	Short:   "Output the intrinsics.yaml JSON schema",
	Example: heredoc.Doc(`
		# Save next to the config so the yaml-language-server modeline picks it up
		❯ intrinsics jsonschema -o intrinsics.schema.json`),
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	Hidden:        true,
	RunE: func(cmd *cobra.Command, args []string) error {
		schema, err := config.Schema()
		if err != nil {
			return err
		}

		output, _ := cmd.Flags().GetString("output")
		if output == "" || output == "-" {
			if colors.Enabled() {
				if out, err := utils.Highlight(string(schema), "json"); err == nil {
					fmt.Print(out)
					return nil
				}
			}
			_, err := os.Stdout.Write(schema)
			return err
		}

		if err := os.MkdirAll(filepath.Dir(output), 0o750); err != nil {
			return errors.Wrap(err, "failed to create schema directory")
		}
		if err := utils.WriteFileAtomic(output, schema, 0o644); err != nil {
			return errors.Wrapf(err, "failed to write %s", output)
		}
		log.WithField("file", colors.File().Sprint(output)).Info("wrote schema")
		return nil
	},
}
