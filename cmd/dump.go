package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cottand/decomp/decerr"
	"github.com/cottand/decomp/disasm"
	"github.com/cottand/decomp/internal/log"
	"github.com/cottand/decomp/metadata"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var DumpCmd = &cobra.Command{
	Use:          "dump file.json",
	Short:        "Disassemble a method body described by a JSON file",
	RunE:         runDump,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

var (
	noStructure *bool
	logLevel    *int
)

func init() {
	noStructure = DumpCmd.Flags().Bool("no-structure", false, "emit a flat listing without try/handler regions and loop markers")
	logLevel = DumpCmd.Flags().IntP("log-level", "l", int(slog.LevelError), "log level")
}

func runDump(cmd *cobra.Command, args []string) error {
	log.SetLevel(slog.Level(*logLevel))

	f, err := os.Open(args[0])
	if err != nil {
		return errors.Wrap(err, "could not open method description")
	}
	defer func() {
		_ = f.Close()
	}()

	body, err := metadata.DecodeBody(f)
	if err != nil {
		return errors.Wrapf(err, "could not decode %s", args[0])
	}

	name := filepath.Base(args[0])
	out := disasm.NewBufferOutput()
	d := &disasm.Disassembler{MethodName: name}
	res, err := d.Disassemble(cmd.Context(), body, out, disasm.Options{
		StructureControlFlow: !*noStructure,
	})
	if err != nil {
		return errors.Wrapf(err, "could not disassemble %s", name)
	}
	for _, e := range res.Errors.Errors() {
		_, _ = fmt.Fprintln(os.Stderr, decerr.FormatWithCode(e))
	}
	fmt.Print(out.String())
	return nil
}
