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
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/apex/log"
	"github.com/blacktop/intrinsics/internal/config"
	"github.com/blacktop/intrinsics/internal/pipeline"
	"github.com/blacktop/intrinsics/internal/pipeline/context"
	"github.com/caarlos0/ctrlc"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(wrapCmd)

	wrapCmd.Flags().StringP("output", "o", "", "Folder to write the generated files to")
	wrapCmd.MarkFlagDirname("output")
	wrapCmd.Flags().BoolP("check", "c", false, "Compare the generated files with --output instead of writing them")
	wrapCmd.Flags().String("format", "", "Patch format (chunks, unified)")
	wrapCmd.Flags().Bool("allow-arity-mismatch", false, "Trust the first registration when aliases disagree on arity")
	wrapCmd.Flags().DurationP("timeout", "t", 0, "Timeout for the whole run")
	viper.BindPFlag("output", wrapCmd.Flags().Lookup("output"))
	viper.BindPFlag("wrap.check", wrapCmd.Flags().Lookup("check"))
	viper.BindPFlag("patch.format", wrapCmd.Flags().Lookup("format"))
	viper.BindPFlag("wrap.allow_arity_mismatch", wrapCmd.Flags().Lookup("allow-arity-mismatch"))
	viper.BindPFlag("wrap.timeout", wrapCmd.Flags().Lookup("timeout"))
}

// wrapCmd represents the wrap command
var wrapCmd = &cobra.Command{
	Use:   "wrap",
	Short: "Generate the intrinsic report, patch, binding table and trampolines",
	Example: heredoc.Doc(`
		# Generate everything into the compiler's intrinsics folder
		❯ intrinsics wrap --ruby build/bin/ruby --ruby-source third_party/ruby -o compiler/IREmitter/Intrinsics

		# Use a config file and a git applicable patch
		❯ intrinsics wrap --config intrinsics.yaml --format unified

		# Fail (and show a diff) when the checked in files are out of date
		❯ intrinsics wrap --config intrinsics.yaml --check`),
	Args:          cobra.NoArgs,
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
		if conf.Ruby == "" {
			return errors.New("must supply --ruby (or set 'ruby' in the config)")
		}
		if conf.RubySource == "" {
			return errors.New("must supply --ruby-source (or set 'ruby_source' in the config)")
		}

		ctx, cancel := context.NewWithTimeout(*conf, viper.GetDuration("wrap.timeout"))
		defer cancel()
		ctx.Check = viper.GetBool("wrap.check")
		ctx.DiffTool = viper.GetString("diff-tool")

		return ctrlc.Default.Run(ctx, func() error {
			if err := pipeline.Run(ctx); err != nil {
				return errors.Wrap(err, "wrap failed")
			}
			return nil
		})
	},
}
