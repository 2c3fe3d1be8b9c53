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

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/apex/log"
	"github.com/blacktop/intrinsics/internal/colors"
	"github.com/blacktop/intrinsics/internal/config"
	"github.com/blacktop/intrinsics/pkg/symbols"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(symbolsCmd)

	symbolsCmd.Flags().StringP("backend", "b", "", "Symbol table reader (nm, native)")
	symbolsCmd.Flags().String("nm", "", "nm executable used by the nm backend")
	symbolsCmd.Flags().StringP("grep", "g", "", "Only list symbols containing this string")
	symbolsCmd.Flags().Bool("count", false, "Only print the number of symbols")
	viper.BindPFlag("symbols.backend", symbolsCmd.Flags().Lookup("backend"))
	viper.BindPFlag("symbols.nm", symbolsCmd.Flags().Lookup("nm"))
	viper.BindPFlag("symbols.grep", symbolsCmd.Flags().Lookup("grep"))
	viper.BindPFlag("symbols.count", symbolsCmd.Flags().Lookup("count"))
	symbolsCmd.RegisterFlagCompletionFunc("backend", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{symbols.BackendNM, symbols.BackendNative}, cobra.ShellCompDirectiveNoFileComp
	})
}

// symbolsCmd represents the symbols command
var symbolsCmd = &cobra.Command{
	Use:     "symbols [BINARY]",
	Aliases: []string{"syms"},
	Short:   "List the exported code symbols of a ruby binary",
	Example: heredoc.Doc(`
		# List every exported function
		❯ intrinsics symbols build/bin/ruby

		# Read the symbol table without nm
		❯ intrinsics symbols build/bin/ruby --backend native --grep rb_str_`),
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
		binary := conf.Ruby
		if len(args) > 0 {
			binary = args[0]
		}
		if binary == "" {
			return errors.New("must supply a BINARY (or --ruby)")
		}

		syms, err := symbols.Exported(binary, conf.SymbolsConfig())
		if err != nil {
			return errors.Wrapf(err, "failed to read symbols of %s", binary)
		}

		names := syms.Filter(viper.GetString("symbols.grep"))
		if viper.GetBool("symbols.count") {
			fmt.Println(len(names))
			return nil
		}
		for _, name := range names {
			fmt.Println(colors.Symbol().Sprint(name))
		}
		log.WithField("count", len(names)).Debug("listed symbols")
		return nil
	},
}
