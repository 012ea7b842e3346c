// Command masm assembles m16 source into a big-endian object file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/asm16/m16vm/assembler"
	"github.com/asm16/m16vm/vm"
)

var command = &cobra.Command{
	Use:   "masm <input.asm> <output.bin>",
	Short: "Assemble m16 source into a big-endian object file",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		input, output := args[0], args[1]

		words, err := assembler.Assemble(input)
		if err != nil {
			if asmErr, ok := err.(*assembler.Error); ok {
				fmt.Fprintln(os.Stderr, asmErr.Report())
			} else {
				fmt.Fprintln(os.Stderr, err)
			}
			os.Exit(1)
		}

		if err := os.WriteFile(output, vm.EncodeImage(words), 0o644); err != nil { //nolint:gosec // CLI-supplied output path
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func main() {
	if err := command.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
