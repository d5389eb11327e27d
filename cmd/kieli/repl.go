package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/kieli-lang/kieli/internal/ast"
	"github.com/kieli-lang/kieli/internal/db"
	"github.com/kieli-lang/kieli/internal/desugar"
	"github.com/kieli-lang/kieli/internal/hir"
	"github.com/kieli-lang/kieli/internal/lexer"
	"github.com/kieli-lang/kieli/internal/parser"
	"github.com/kieli-lang/kieli/internal/pipeline"
	"github.com/kieli-lang/kieli/internal/prettyprinter"
	"github.com/kieli-lang/kieli/internal/resolver"
	"github.com/kieli-lang/kieli/internal/token"
)

var replStages = map[string]bool{"lex": true, "par": true, "des": true, "res": true}

// runRepl enters a line-based loop where each entered line is piped
// through the lexer, parser, desugarer, or resolver.
func runRepl(stage string) error {
	if !replStages[stage] {
		return fmt.Errorf("unknown REPL stage: %q (expected lex, par, des, or res)", stage)
	}

	database, err := newDatabase()
	if err != nil {
		return err
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(">>> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		replLine(database, stage, line)
	}
}

// definitionKeywords are the tokens that may begin a top-level
// definition; anything else is treated as an expression and wrapped.
var definitionKeywords = []string{"fn ", "struct ", "enum ", "alias ", "concept ", "impl ", "module "}

func wrapLine(line string) string {
	for _, keyword := range definitionKeywords {
		if strings.HasPrefix(line, keyword) {
			return line
		}
	}
	return "fn repl() = " + line
}

func replLine(database *db.Database, stage, line string) {
	if stage == "lex" {
		tokens, diagnostics := lexer.New(line).Lex()
		for _, t := range tokens {
			fmt.Printf("%-24s %q\n", token.Describe(t.Type), t.Lexeme)
		}
		for _, diagnostic := range diagnostics {
			fmt.Println(diagnostic.Message)
		}
		return
	}

	docId := database.TestDocument(wrapLine(line))
	database.ResetAnalysis(docId)

	stages := []pipeline.Processor{&lexer.Processor{}, &parser.Processor{}}
	if stage != "par" {
		stages = append(stages, &desugar.Processor{})
	}
	if stage == "res" {
		stages = append(stages, &resolver.Processor{})
	}
	ctx := pipeline.New(stages...).Run(pipeline.NewContext(database, docId))

	document := database.Documents.Get(docId)
	switch stage {
	case "par":
		printer := prettyprinter.NewCodePrinter(ctx.Cst, database.StringPool)
		fmt.Print(printer.PrintModule(*ctx.CstModule))
	case "des":
		fmt.Print(ast.ModuleToString(&document.Arena.Ast, database.StringPool, *ctx.Module))
	case "res":
		arena := &document.Arena.Hir
		for id := range uint32(arena.Functions.Len()) {
			formatter := hir.NewFormatter(arena, database.StringPool)
			formatter.FormatFunction(hir.FunctionId(id))
			fmt.Println(formatter.String())
		}
	}
	for _, diagnostic := range document.Info.Diagnostics {
		printDiagnostic("<repl>", diagnostic)
	}
}
