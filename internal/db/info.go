package db

import (
	"github.com/kieli-lang/kieli/internal/hir"
	"github.com/kieli-lang/kieli/internal/lsp"
)

// The collectors below are the single code path for document info.
// Each checks its Configuration switch and is a no-op when the feature
// is disabled, so callers never branch on client capabilities.

// AddDiagnostic appends diagnostic to the document identified by docId.
func (db *Database) AddDiagnostic(docId lsp.DocumentId, diagnostic lsp.Diagnostic) {
	if !db.Config.Diagnostics {
		return
	}
	info := &db.Documents.Get(docId).Info
	info.Diagnostics = append(info.Diagnostics, diagnostic)
}

// AddError appends an error diagnostic to the document.
func (db *Database) AddError(docId lsp.DocumentId, r lsp.Range, message string) {
	db.AddDiagnostic(docId, lsp.Error(r, message))
}

// AddSemanticToken appends a semantic token classification.
func (db *Database) AddSemanticToken(docId lsp.DocumentId, token lsp.SemanticToken) {
	if db.Config.SemanticTokens == SemanticTokensNone {
		return
	}
	info := &db.Documents.Get(docId).Info
	info.SemanticTokens = append(info.SemanticTokens, token)
}

// AddTypeHint attaches a type inlay hint at pos.
func (db *Database) AddTypeHint(docId lsp.DocumentId, pos lsp.Position, typeId hir.TypeId) {
	if !TypeHintsEnabled(db.Config.InlayHints) {
		return
	}
	info := &db.Documents.Get(docId).Info
	info.InlayHints = append(info.InlayHints, InlayHint{Position: pos, Type: &typeId})
}

// AddParamHint attaches a parameter-name inlay hint at pos.
func (db *Database) AddParamHint(docId lsp.DocumentId, pos lsp.Position, param hir.PatternId) {
	if !ParameterHintsEnabled(db.Config.InlayHints) {
		return
	}
	info := &db.Documents.Get(docId).Info
	info.InlayHints = append(info.InlayHints, InlayHint{Position: pos, Parameter: &param})
}

// AddAction appends a code action covering r.
func (db *Database) AddAction(docId lsp.DocumentId, r lsp.Range, variant ActionVariant) {
	if !db.Config.CodeActions {
		return
	}
	info := &db.Documents.Get(docId).Info
	info.Actions = append(info.Actions, Action{Variant: variant, Range: r})
}

// AddReference records that ref mentions symbolId.
func (db *Database) AddReference(docId lsp.DocumentId, ref lsp.Reference, symbolId SymbolId) {
	if !db.Config.References {
		return
	}
	info := &db.Documents.Get(docId).Info
	info.References = append(info.References, SymbolReference{Reference: ref, Symbol: symbolId})
}

// AddSignatureHelp records signature help for a call under the cursor.
func (db *Database) AddSignatureHelp(
	docId lsp.DocumentId, r lsp.Range, function hir.FunctionId, activeParam uint32,
) {
	if !db.Config.SignatureHelp {
		return
	}
	document := db.Documents.Get(docId)
	if document.EditPosition == nil || !r.Contains(*document.EditPosition) {
		return
	}
	document.Info.Signature = &SignatureInfo{Function: function, ActiveParam: activeParam}
}

// AddCompletion records a completion candidate anchored at name. The
// record is added only when the document's edit position falls within
// the name range under consideration.
func (db *Database) AddCompletion(docId lsp.DocumentId, name lsp.Name, variant CompletionVariant) {
	if !db.Config.CodeCompletion {
		return
	}
	document := db.Documents.Get(docId)
	if document.EditPosition == nil || !name.Range.Contains(*document.EditPosition) {
		return
	}
	document.Info.Completion = &CompletionInfo{
		Prefix:  db.StringPool.Get(name.Id),
		Range:   name.Range,
		Variant: variant,
	}
}

// SymbolType returns the primary type associated with a symbol, if any.
func SymbolType(arena *Arena, symbolId SymbolId) (hir.TypeId, bool) {
	switch variant := arena.Symbols.Get(symbolId).Variant.(type) {
	case StructureSymbol:
		return arena.Hir.Structures.Get(variant.Id).TypeId, true
	case EnumerationSymbol:
		return arena.Hir.Enumerations.Get(variant.Id).TypeId, true
	case FunctionSymbol:
		info := arena.Hir.Functions.Get(variant.Id)
		if info.Signature != nil {
			return info.Signature.FunctionType.Id, true
		}
		return 0, false
	case ConstructorSymbol:
		ctor := arena.Hir.Constructors.Get(variant.Id)
		return arena.Hir.Enumerations.Get(ctor.Enumeration).TypeId, true
	case FieldSymbol:
		return arena.Hir.Fields.Get(variant.Id).Type.Id, true
	case AliasSymbol:
		info := arena.Hir.Aliases.Get(variant.Id)
		if info.Type != nil {
			return info.Type.Id, true
		}
		return 0, false
	case LocalVariableSymbol:
		return arena.Hir.LocalVariables.Get(variant.Id).Type, true
	case LocalTypeSymbol:
		return arena.Hir.LocalTypes.Get(variant.Id).Type, true
	default:
		return 0, false
	}
}

// ReferenceAt finds the symbol referenced at pos, preferring the
// innermost (last recorded) reference.
func ReferenceAt(info *DocumentInfo, pos lsp.Position) (SymbolReference, bool) {
	for i := len(info.References) - 1; i >= 0; i-- {
		if info.References[i].Reference.Range.Contains(pos) {
			return info.References[i], true
		}
	}
	return SymbolReference{}, false
}
