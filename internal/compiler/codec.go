package compiler

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"sync"

	"github.com/Masterminds/semver/v3"

	"github.com/hassan/volt/internal/parser/ast"
)

// Block map artifacts start with this header.
const (
	blockMapMagic   = "volt-blocks"
	BlockMapVersion = "1.0.0"
)

// blockMapConstraint is what DecodeBlockMap accepts.
var blockMapConstraint = mustConstraint("^1.0.0")

func mustConstraint(c string) *semver.Constraints {
	constraint, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return constraint
}

type blockMapHeader struct {
	Magic   string
	Version string
}

var registerOnce sync.Once

// registerNodes makes every AST node encodable behind the ast.Stmt and
// ast.Expr interfaces.
func registerNodes() {
	registerOnce.Do(func() {
		for _, n := range []any{
			// statements
			&ast.RawStmt{}, &ast.EchoStmt{}, &ast.IfStmt{}, &ast.ElseIfStmt{},
			&ast.ForStmt{}, &ast.ElseForStmt{}, &ast.SwitchStmt{}, &ast.CaseStmt{},
			&ast.DefaultStmt{}, &ast.SetStmt{}, &ast.BlockStmt{}, &ast.ExtendsStmt{},
			&ast.IncludeStmt{}, &ast.DoStmt{}, &ast.ReturnStmt{}, &ast.AutoescapeStmt{},
			&ast.ContinueStmt{}, &ast.BreakStmt{}, &ast.MacroStmt{}, &ast.CallStmt{},
			&ast.CacheStmt{}, &ast.EmptyStmt{},
			// expressions
			&ast.IntLit{}, &ast.DoubleLit{}, &ast.StringLit{}, &ast.BoolLit{},
			&ast.NullLit{}, &ast.Ident{}, &ast.BinaryExpr{}, &ast.UnaryExpr{},
			&ast.PostfixExpr{}, &ast.AttrExpr{}, &ast.IndexExpr{}, &ast.SliceExpr{},
			&ast.CallExpr{}, &ast.ArrayLit{}, &ast.TernaryExpr{}, &ast.RangeExpr{},
			&ast.FilterExpr{}, &ast.IsExpr{}, &ast.PredicateExpr{}, &ast.InExpr{},
			&ast.ParenExpr{}, &ast.ResolvedExpr{}, &ast.ArgList{},
		} {
			gob.Register(n)
		}
	})
}

// EncodeBlockMap serializes m for storage as an extends-mode artifact.
//
// The artifact is two gob values: a blockMapHeader, then the BlockMap.
// Unresolved blocks carry their statements, so every concrete node type is
// registered with gob before the first encode.
func EncodeBlockMap(m *BlockMap) ([]byte, error) {
	registerNodes()

	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(blockMapHeader{Magic: blockMapMagic, Version: BlockMapVersion}); err != nil {
		return nil, fmt.Errorf("failed to encode block map header: %w", err)
	}
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("failed to encode block map: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeBlockMap reads an artifact written by EncodeBlockMap. Artifacts
// from an incompatible format version are rejected.
func DecodeBlockMap(data []byte) (*BlockMap, error) {
	registerNodes()

	dec := gob.NewDecoder(bytes.NewReader(data))

	var h blockMapHeader
	if err := dec.Decode(&h); err != nil {
		return nil, fmt.Errorf("failed to decode block map header: %w", err)
	}
	if h.Magic != blockMapMagic {
		return nil, fmt.Errorf("not a block map artifact")
	}
	v, err := semver.NewVersion(h.Version)
	if err != nil || !blockMapConstraint.Check(v) {
		return nil, fmt.Errorf("incompatible block map format version %s", h.Version)
	}

	m := NewBlockMap()
	if err := dec.Decode(m); err != nil {
		return nil, fmt.Errorf("failed to decode block map: %w", err)
	}
	return m, nil
}
