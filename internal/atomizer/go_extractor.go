package atomizer

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strings"

	"github.com/cadigraph/cadigraph/internal/model"
)

// extractGo is the AST-based extractor grounded on
// internal/world/code_elements.go's parseGoFileLegacy: one atom per
// top-level func/method/type/const/var/import, receiver-based method
// parenting via a struct-name lookup pass, visibility by identifier
// capitalization. Parse failures are AtomizerError (§4.2 Failure); no
// fallback-to-module-atom happens here the way it does for unrecognized
// languages, since Go source that fails go/parser.ParseFile is genuinely
// malformed rather than merely unfamiliar.
func extractGo(sourceFile, language string, content []byte) ([]model.Atom, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, sourceFile, content, parser.ParseComments)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(string(content), "\n")
	pkgName := file.Name.Name

	structNames := make(map[string]bool)
	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			if ts, ok := spec.(*ast.TypeSpec); ok {
				if _, isStruct := ts.Type.(*ast.StructType); isStruct {
					structNames[ts.Name.Name] = true
				}
			}
		}
	}

	var atoms []model.Atom

	for _, imp := range file.Imports {
		atoms = append(atoms, goImportAtom(fset, sourceFile, language, imp, lines))
	}

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			atoms = append(atoms, goFuncAtom(fset, sourceFile, language, pkgName, d, lines))
		case *ast.GenDecl:
			if d.Tok == token.IMPORT {
				continue
			}
			atoms = append(atoms, goGenDeclAtoms(fset, sourceFile, language, pkgName, d, lines)...)
		}
	}

	return atoms, nil
}

func goVisibility(name string) model.Visibility {
	if name != "" && name[0] >= 'A' && name[0] <= 'Z' {
		return model.VisibilityPublic
	}
	return model.VisibilityInternal
}

func goSpan(fset *token.FileSet, startPos, endPos token.Pos, content string) (start, end int, fragment string, lines [2]int) {
	startLine := fset.Position(startPos).Line
	endLine := fset.Position(endPos).Line
	splitLines := strings.Split(content, "\n")
	if startLine < 1 || startLine > len(splitLines) {
		return startLine, endLine, "", [2]int{startLine, endLine}
	}
	if endLine > len(splitLines) {
		endLine = len(splitLines)
	}
	fragment = strings.Join(splitLines[startLine-1:endLine], "\n")
	return startLine, endLine, fragment, [2]int{startLine, endLine}
}

func goFuncAtom(fset *token.FileSet, sourceFile, language, pkgName string, decl *ast.FuncDecl, lines []string) model.Atom {
	content := strings.Join(lines, "\n")
	startLine, endLine, fragment, _ := goSpan(fset, decl.Pos(), decl.End(), content)

	name := decl.Name.Name
	granularity := model.GranularityFunction
	defines := []string{pkgName + "." + name}

	if decl.Recv != nil && len(decl.Recv.List) > 0 {
		granularity = model.GranularityMethod
		recvName := goReceiverTypeName(decl.Recv.List[0].Type)
		if recvName != "" {
			defines = []string{pkgName + "." + recvName + "." + name}
		}
	}

	refs := goCallReferences(decl.Body)

	atom := newAtom(sourceFile, language, granularity, goVisibility(name), []byte(fragment), startLine, endLine, defines, refs)
	if decl.Recv != nil && len(decl.Recv.List) > 0 {
		if recvName := goReceiverTypeName(decl.Recv.List[0].Type); recvName != "" {
			atom.Metadata["receiver_type"] = recvName
		}
	}
	atom.PrimaryAlias = defines[0]
	return atom
}

func goGenDeclAtoms(fset *token.FileSet, sourceFile, language, pkgName string, decl *ast.GenDecl, lines []string) []model.Atom {
	content := strings.Join(lines, "\n")
	var atoms []model.Atom

	switch decl.Tok {
	case token.TYPE:
		for _, spec := range decl.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			startPos, endPos := decl.Pos(), decl.End()
			if decl.Lparen == token.NoPos {
				startPos, endPos = ts.Pos(), ts.End()
			}
			startLine, endLine, fragment, _ := goSpan(fset, startPos, endPos, content)

			granularity := model.GranularityType
			if _, isIface := ts.Type.(*ast.InterfaceType); isIface {
				granularity = model.GranularityType
			} else if _, isStruct := ts.Type.(*ast.StructType); !isStruct && !isIface {
				granularity = model.GranularityTypeAlias
			}

			name := ts.Name.Name
			atom := newAtom(sourceFile, language, granularity, goVisibility(name), []byte(fragment), startLine, endLine,
				[]string{pkgName + "." + name}, nil)
			atom.PrimaryAlias = pkgName + "." + name
			atoms = append(atoms, atom)
		}
	case token.CONST, token.VAR:
		granularity := model.GranularityConstant
		startLine, endLine, fragment, _ := goSpan(fset, decl.Pos(), decl.End(), content)
		var defines []string
		for _, spec := range decl.Specs {
			vs, ok := spec.(*ast.ValueSpec)
			if !ok {
				continue
			}
			for _, id := range vs.Names {
				defines = append(defines, pkgName+"."+id.Name)
			}
		}
		if len(defines) == 0 {
			return nil
		}
		vis := model.VisibilityInternal
		for _, d := range defines {
			if goVisibility(strings.TrimPrefix(d, pkgName+".")) == model.VisibilityPublic {
				vis = model.VisibilityPublic
				break
			}
		}
		atom := newAtom(sourceFile, language, granularity, vis, []byte(fragment), startLine, endLine, defines, nil)
		atom.PrimaryAlias = defines[0]
		atoms = append(atoms, atom)
	}

	return atoms
}

func goImportAtom(fset *token.FileSet, sourceFile, language string, imp *ast.ImportSpec, lines []string) model.Atom {
	content := strings.Join(lines, "\n")
	startLine, endLine, fragment, _ := goSpan(fset, imp.Pos(), imp.End(), content)
	path := strings.Trim(imp.Path.Value, `"`)

	var defines []string
	if imp.Name != nil {
		defines = []string{imp.Name.Name}
	} else {
		parts := strings.Split(path, "/")
		defines = []string{parts[len(parts)-1]}
	}

	atom := newAtom(sourceFile, language, model.GranularityImport, model.VisibilityInternal, []byte(fragment), startLine, endLine,
		defines, []string{path})
	atom.Metadata["import_path"] = path
	return atom
}

func goReceiverTypeName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return goReceiverTypeName(t.X)
	}
	return ""
}

// goCallReferences collects the set of identifiers called within a function
// body, used as symbols_referenced for "calls" edge resolution downstream.
func goCallReferences(body *ast.BlockStmt) []string {
	if body == nil {
		return nil
	}
	seen := make(map[string]bool)
	var refs []string
	ast.Inspect(body, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		name := goCallName(call.Fun)
		if name != "" && !seen[name] {
			seen[name] = true
			refs = append(refs, name)
		}
		return true
	})
	return refs
}

func goCallName(expr ast.Expr) string {
	switch f := expr.(type) {
	case *ast.Ident:
		return f.Name
	case *ast.SelectorExpr:
		if x, ok := f.X.(*ast.Ident); ok {
			return x.Name + "." + f.Sel.Name
		}
		return f.Sel.Name
	}
	return ""
}
