package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kieli-lang/kieli/internal/config"
	"github.com/kieli-lang/kieli/internal/db"
	"github.com/kieli-lang/kieli/internal/desugar"
	"github.com/kieli-lang/kieli/internal/lexer"
	"github.com/kieli-lang/kieli/internal/lsp"
	"github.com/kieli-lang/kieli/internal/parser"
	"github.com/kieli-lang/kieli/internal/pipeline"
	"github.com/kieli-lang/kieli/internal/resolver"
)

var (
	flagNoColor bool
	flagRepl    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "kieli [file]",
		Short:         "The Kieli compiler",
		Version:       config.Version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}
	rootCmd.Flags().BoolVar(&flagNoColor, "nocolor", false, "disable colored output")
	rootCmd.Flags().StringVar(
		&flagRepl, "repl", "", "enter an interactive loop: lex, par, des, or res")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if flagRepl != "" {
		return runRepl(flagRepl)
	}
	if len(args) == 0 {
		return cmd.Help()
	}
	return compileFile(args[0])
}

func newDatabase() (*db.Database, error) {
	configuration, err := db.LoadConfiguration("kieli.yml", db.DefaultConfiguration())
	if err != nil {
		return nil, err
	}
	return db.New(configuration), nil
}

// analyze runs the full stage pipeline over one document.
func analyze(database *db.Database, docId lsp.DocumentId) *pipeline.Context {
	database.ResetAnalysis(docId)
	stages := pipeline.New(
		&lexer.Processor{},
		&parser.Processor{},
		&desugar.Processor{},
		&resolver.Processor{},
	)
	return stages.Run(pipeline.NewContext(database, docId))
}

func compileFile(path string) error {
	database, err := newDatabase()
	if err != nil {
		return err
	}
	docId, err := database.ReadDocument(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	analyze(database, docId)

	diagnostics := database.Documents.Get(docId).Info.Diagnostics
	failed := false
	for _, diagnostic := range diagnostics {
		printDiagnostic(path, diagnostic)
		if diagnostic.Severity == lsp.SeverityError {
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
	return nil
}
