// Package db implements the compiler database: the process-wide map of
// open documents, the string pool, configuration, and the per-document
// arenas and info collected during analysis.
package db

import (
	"errors"
	"fmt"
	"os"

	"github.com/kieli-lang/kieli/internal/ast"
	"github.com/kieli-lang/kieli/internal/hir"
	"github.com/kieli-lang/kieli/internal/lsp"
	"github.com/kieli-lang/kieli/internal/utl"
)

// Ownership records who is authoritative for a document's text. The
// server never reads a client-owned document from disk.
type Ownership uint8

const (
	OwnershipServer Ownership = iota
	OwnershipClient
)

type SymbolId uint32

// SymbolVariant is the closed sum of entities a name can resolve to.
type SymbolVariant interface{ symbolVariant() }

type (
	ErrorSymbol           struct{}
	FunctionSymbol        struct{ Id hir.FunctionId }
	StructureSymbol       struct{ Id hir.StructureId }
	EnumerationSymbol     struct{ Id hir.EnumerationId }
	ConstructorSymbol     struct{ Id hir.ConstructorId }
	FieldSymbol           struct{ Id hir.FieldId }
	ConceptSymbol         struct{ Id hir.ConceptId }
	AliasSymbol           struct{ Id hir.AliasId }
	ModuleSymbol          struct{ Id hir.ModuleId }
	LocalVariableSymbol   struct{ Id hir.LocalVariableId }
	LocalMutabilitySymbol struct{ Id hir.LocalMutabilityId }
	LocalTypeSymbol       struct{ Id hir.LocalTypeId }
)

func (ErrorSymbol) symbolVariant()           {}
func (FunctionSymbol) symbolVariant()        {}
func (StructureSymbol) symbolVariant()       {}
func (EnumerationSymbol) symbolVariant()     {}
func (ConstructorSymbol) symbolVariant()     {}
func (FieldSymbol) symbolVariant()           {}
func (ConceptSymbol) symbolVariant()         {}
func (AliasSymbol) symbolVariant()           {}
func (ModuleSymbol) symbolVariant()          {}
func (LocalVariableSymbol) symbolVariant()   {}
func (LocalMutabilitySymbol) symbolVariant() {}
func (LocalTypeSymbol) symbolVariant()       {}

// DescribeSymbolKind names the symbol kind for diagnostics and hover.
func DescribeSymbolKind(variant SymbolVariant) string {
	switch variant.(type) {
	case ErrorSymbol:
		return "an error"
	case FunctionSymbol:
		return "a function"
	case StructureSymbol:
		return "a structure"
	case EnumerationSymbol:
		return "an enumeration"
	case ConstructorSymbol:
		return "a constructor"
	case FieldSymbol:
		return "a field"
	case ConceptSymbol:
		return "a concept"
	case AliasSymbol:
		return "a type alias"
	case ModuleSymbol:
		return "a module"
	case LocalVariableSymbol:
		return "a local variable"
	case LocalMutabilitySymbol:
		return "a local mutability"
	case LocalTypeSymbol:
		return "a local type"
	default:
		return "an unknown entity"
	}
}

// Symbol is a resolved declaration. UseCount feeds unused-symbol
// diagnostics.
type Symbol struct {
	Variant  SymbolVariant
	Name     lsp.Name
	UseCount uint32
}

type EnvironmentKind uint8

const (
	EnvironmentRoot EnvironmentKind = iota
	EnvironmentModule
	EnvironmentScope
	EnvironmentType
)

// Environment is a name-to-symbol map plus a parent link. Environments
// form a DAG rooted at the per-document root environment; the parent
// chain is used for unqualified lookup.
type Environment struct {
	Map      map[utl.StringId]SymbolId
	ParentId *hir.EnvironmentId
	NameId   *utl.StringId
	DocId    lsp.DocumentId
	Kind     EnvironmentKind
}

// Arena bundles everything semantic analysis allocates for a document.
type Arena struct {
	Ast          ast.Arena
	Hir          hir.Arena
	Environments utl.Vector[hir.EnvironmentId, Environment]
	Symbols      utl.Vector[SymbolId, Symbol]
}

// InlayHint is a type or parameter hint; exactly one of the two fields
// is set.
type InlayHint struct {
	Position  lsp.Position
	Type      *hir.TypeId
	Parameter *hir.PatternId
}

// ActionVariant is the closed sum of code actions.
type ActionVariant interface{ actionVariant() }

// ActionSilenceUnused inserts an underscore to silence an unused
// symbol warning.
type ActionSilenceUnused struct {
	Symbol SymbolId
}

// ActionFillInStructInit inserts missing fields in a struct
// initializer.
type ActionFillInStructInit struct {
	Fields        []hir.FieldId
	FinalFieldEnd *lsp.Position
}

func (ActionSilenceUnused) actionVariant()    {}
func (ActionFillInStructInit) actionVariant() {}

type Action struct {
	Variant ActionVariant
	Range   lsp.Range
}

type SignatureInfo struct {
	Function    hir.FunctionId
	ActiveParam uint32
}

type CompletionMode uint8

const (
	CompletionPath CompletionMode = iota
	CompletionTop
)

// CompletionVariant is the closed sum of completion sources.
type CompletionVariant interface{ completionVariant() }

// EnvironmentCompletion enumerates an environment's symbols.
type EnvironmentCompletion struct {
	EnvId hir.EnvironmentId
	Mode  CompletionMode
}

// FieldCompletion enumerates the fields of a type.
type FieldCompletion struct {
	TypeId hir.TypeId
}

func (EnvironmentCompletion) completionVariant() {}
func (FieldCompletion) completionVariant()       {}

type CompletionInfo struct {
	Prefix  string
	Range   lsp.Range
	Variant CompletionVariant
}

// SymbolReference ties a source reference to the symbol it mentions.
type SymbolReference struct {
	Reference lsp.Reference
	Symbol    SymbolId
}

// DocumentInfo is everything collected during analysis of a document.
type DocumentInfo struct {
	Diagnostics    []lsp.Diagnostic
	SemanticTokens []lsp.SemanticToken
	InlayHints     []InlayHint
	References     []SymbolReference
	Actions        []Action
	RootEnvId      *hir.EnvironmentId
	Signature      *SignatureInfo
	Completion     *CompletionInfo
}

// Document is the in-memory representation of a text document.
type Document struct {
	Info         DocumentInfo
	Text         string
	Arena        Arena
	Ownership    Ownership
	EditPosition *lsp.Position
	open         bool
}

// Database is the process-wide compiler state.
type Database struct {
	Documents  utl.Vector[lsp.DocumentId, Document]
	Paths      map[string]lsp.DocumentId
	StringPool *utl.StringPool
	Config     Configuration
}

func New(config Configuration) *Database {
	return &Database{
		Paths:      make(map[string]lsp.DocumentId),
		StringPool: utl.NewStringPool(),
		Config:     config,
	}
}

// NewDocument creates a document value; it is not registered until
// SetDocument maps a path to it.
func NewDocument(text string, ownership Ownership) Document {
	return Document{Text: text, Ownership: ownership, open: true}
}

// SetDocument maps path to document and returns the document id.
func (db *Database) SetDocument(path string, document Document) lsp.DocumentId {
	if id, ok := db.Paths[path]; ok {
		db.Documents.Set(id, document)
		return id
	}
	id := db.Documents.Push(document)
	db.Paths[path] = id
	return id
}

// DocumentPath finds the path mapped to docId.
func (db *Database) DocumentPath(docId lsp.DocumentId) string {
	for path, id := range db.Paths {
		if id == docId {
			return path
		}
	}
	return ""
}

// ClientOpenDocument maps path to a client-owned document with text.
func (db *Database) ClientOpenDocument(path, text string) lsp.DocumentId {
	return db.SetDocument(path, NewDocument(text, OwnershipClient))
}

// ClientCloseDocument deallocates the document if it is open and owned
// by a client.
func (db *Database) ClientCloseDocument(docId lsp.DocumentId) {
	document := db.Documents.Get(docId)
	if document.open && document.Ownership == OwnershipClient {
		db.Documents.Kill(docId)
		for path, id := range db.Paths {
			if id == docId {
				delete(db.Paths, path)
				return
			}
		}
	}
}

// ResetAnalysis clears a document's collected info and arenas before
// re-analysis. The text is left untouched.
func (db *Database) ResetAnalysis(docId lsp.DocumentId) {
	document := db.Documents.Get(docId)
	document.Info = DocumentInfo{}
	document.Arena = Arena{}
}

// TestDocument creates a temporary server-owned document with text.
func (db *Database) TestDocument(text string) lsp.DocumentId {
	path := fmt.Sprintf("[test-%d]", db.Documents.Len())
	return db.SetDocument(path, NewDocument(text, OwnershipServer))
}

// Read failures per the error taxonomy; no retries are attempted.
var (
	ErrDoesNotExist = errors.New("file does not exist")
	ErrFailedToRead = errors.New("failed to read file")
)

// ReadFile attempts to read the file at path.
func ReadFile(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", ErrDoesNotExist
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", ErrFailedToRead
	}
	return string(content), nil
}

// ReadDocument creates a server-owned document by reading path.
func (db *Database) ReadDocument(path string) (lsp.DocumentId, error) {
	text, err := ReadFile(path)
	if err != nil {
		return 0, err
	}
	return db.SetDocument(path, NewDocument(text, OwnershipServer)), nil
}
