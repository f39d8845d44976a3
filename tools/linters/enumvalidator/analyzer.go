package enumvalidator

import (
	"go/ast"
	"go/token"
	"go/types"

	"golang.org/x/tools/go/analysis"
)

var Analyzer = &analysis.Analyzer{
	Name: "enumvalidator",
	Doc:  "checks that enum fields only use defined constants, not string literals",
	Run:  run,
}

// enumTypes are the string enums of the task domain.
var enumTypes = map[string]bool{
	"TaskStatus":   true,
	"PriorityHint": true,
	"Importance":   true,
	"EventType":    true,
}

func run(pass *analysis.Pass) (interface{}, error) {
	for _, file := range pass.Files {
		ast.Inspect(file, func(n ast.Node) bool {
			switch node := n.(type) {
			case *ast.AssignStmt:
				checkAssign(pass, node)
			case *ast.KeyValueExpr:
				checkKeyValue(pass, node)
			}
			return true
		})
	}
	return nil, nil
}

// checkAssign flags `task.Status = "done"`.
func checkAssign(pass *analysis.Pass, assign *ast.AssignStmt) {
	for i, lhs := range assign.Lhs {
		if i >= len(assign.Rhs) {
			continue
		}
		sel, ok := lhs.(*ast.SelectorExpr)
		if !ok {
			continue
		}
		if isEnum(pass.TypesInfo.TypeOf(sel)) && isStringLiteral(assign.Rhs[i]) {
			pass.Reportf(assign.Pos(),
				"enum field %s assigned string literal; use defined constant instead",
				sel.Sel.Name)
		}
	}
}

// checkKeyValue flags `domain.Task{Status: "done"}`. Map literals are
// skipped since their keys are not fields.
func checkKeyValue(pass *analysis.Pass, kv *ast.KeyValueExpr) {
	key, ok := kv.Key.(*ast.Ident)
	if !ok || !isStringLiteral(kv.Value) {
		return
	}
	field, ok := pass.TypesInfo.ObjectOf(key).(*types.Var)
	if !ok || !field.IsField() {
		return
	}
	if isEnum(field.Type()) {
		pass.Reportf(kv.Pos(),
			"enum field %s assigned string literal; use defined constant instead",
			key.Name)
	}
}

func isEnum(t types.Type) bool {
	named, ok := t.(*types.Named)
	return ok && enumTypes[named.Obj().Name()]
}

func isStringLiteral(expr ast.Expr) bool {
	lit, ok := expr.(*ast.BasicLit)
	return ok && lit.Kind == token.STRING
}
