package lexer

import "strings"

// Opcode identifies the lexical category of a token.
//
// Opcodes are grouped the same way the scanner produces them:
//  1. Special tokens (IGNORE, RAW_FRAGMENT)
//  2. Literals and identifiers
//  3. Operators and punctuation
//  4. Delimiters
//  5. Keywords
//
// The parser treats the set as closed; an opcode outside this list is a
// scanner bug, not a user error.
type Opcode int

const (
	// OpIgnore is produced for input that carries no syntax, such as an
	// empty raw region before a delimiter.
	OpIgnore Opcode = iota

	// OpRawFragment is literal template text passed through unchanged.
	OpRawFragment

	// Literals
	OpInteger
	OpDouble
	OpString
	OpNull
	OpFalse
	OpTrue
	OpIdentifier

	// Arithmetic
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod

	// Logical
	OpAnd
	OpOr
	OpNot

	// Comparison and membership
	OpIs
	OpIn
	OpEquals
	OpNotEquals
	OpIdentical
	OpNotIdentical
	OpLess
	OpGreater
	OpLessEqual
	OpGreaterEqual

	// Assignment
	OpAssign
	OpAddAssign
	OpSubAssign
	OpMulAssign
	OpDivAssign
	OpIncr
	OpDecr

	// Punctuation
	OpDot
	OpRange
	OpConcat
	OpPipe
	OpComma
	OpColon
	OpQuestion
	OpParenOpen
	OpParenClose
	OpBracketOpen
	OpBracketClose
	OpBraceOpen
	OpBraceClose

	// Delimiters: {% %} enclose statements, {{ }} enclose echoes.
	OpOpenDelimiter
	OpCloseDelimiter
	OpOpenEDelimiter
	OpCloseEDelimiter

	// Keywords
	OpIf
	OpElse
	OpElseIf
	OpElseFor
	OpEndIf
	OpFor
	OpEndFor
	OpSet
	OpBlock
	OpEndBlock
	OpExtends
	OpInclude
	OpWith
	OpMacro
	OpEndMacro
	OpCall
	OpEndCall
	OpCache
	OpEndCache
	OpRaw
	OpEndRaw
	OpDo
	OpReturn
	OpAutoescape
	OpEndAutoescape
	OpContinue
	OpBreak
	OpSwitch
	OpCase
	OpDefault
	OpEndSwitch
	OpDefined
	OpEmpty
	OpEven
	OpOdd
	OpNumeric
	OpScalar
	OpIterable

	opcodeCount
)

var opcodeNames = [...]string{
	OpIgnore:          "IGNORE",
	OpRawFragment:     "RAW_FRAGMENT",
	OpInteger:         "INTEGER",
	OpDouble:          "DOUBLE",
	OpString:          "STRING",
	OpNull:            "NULL",
	OpFalse:           "FALSE",
	OpTrue:            "TRUE",
	OpIdentifier:      "IDENTIFIER",
	OpAdd:             "+",
	OpSub:             "-",
	OpMul:             "*",
	OpDiv:             "/",
	OpMod:             "%",
	OpAnd:             "AND",
	OpOr:              "OR",
	OpNot:             "NOT",
	OpIs:              "IS",
	OpIn:              "IN",
	OpEquals:          "==",
	OpNotEquals:       "!=",
	OpIdentical:       "===",
	OpNotIdentical:    "!==",
	OpLess:            "<",
	OpGreater:         ">",
	OpLessEqual:       "<=",
	OpGreaterEqual:    ">=",
	OpAssign:          "=",
	OpAddAssign:       "+=",
	OpSubAssign:       "-=",
	OpMulAssign:       "*=",
	OpDivAssign:       "/=",
	OpIncr:            "++",
	OpDecr:            "--",
	OpDot:             "DOT",
	OpRange:           "..",
	OpConcat:          "~",
	OpPipe:            "|",
	OpComma:           "COMMA",
	OpColon:           "COLON",
	OpQuestion:        "QUESTION",
	OpParenOpen:       "(",
	OpParenClose:      ")",
	OpBracketOpen:     "[",
	OpBracketClose:    "]",
	OpBraceOpen:       "{",
	OpBraceClose:      "}",
	OpOpenDelimiter:   "{%",
	OpCloseDelimiter:  "%}",
	OpOpenEDelimiter:  "{{",
	OpCloseEDelimiter: "}}",
	OpIf:              "IF",
	OpElse:            "ELSE",
	OpElseIf:          "ELSEIF",
	OpElseFor:         "ELSEFOR",
	OpEndIf:           "ENDIF",
	OpFor:             "FOR",
	OpEndFor:          "ENDFOR",
	OpSet:             "SET",
	OpBlock:           "BLOCK",
	OpEndBlock:        "ENDBLOCK",
	OpExtends:         "EXTENDS",
	OpInclude:         "INCLUDE",
	OpWith:            "WITH",
	OpMacro:           "MACRO",
	OpEndMacro:        "ENDMACRO",
	OpCall:            "CALL",
	OpEndCall:         "ENDCALL",
	OpCache:           "CACHE",
	OpEndCache:        "ENDCACHE",
	OpRaw:             "RAW",
	OpEndRaw:          "ENDRAW",
	OpDo:              "DO",
	OpReturn:          "RETURN",
	OpAutoescape:      "AUTOESCAPE",
	OpEndAutoescape:   "ENDAUTOESCAPE",
	OpContinue:        "CONTINUE",
	OpBreak:           "BREAK",
	OpSwitch:          "SWITCH",
	OpCase:            "CASE",
	OpDefault:         "DEFAULT",
	OpEndSwitch:       "ENDSWITCH",
	OpDefined:         "DEFINED",
	OpEmpty:           "EMPTY",
	OpEven:            "EVEN",
	OpOdd:             "ODD",
	OpNumeric:         "NUMERIC",
	OpScalar:          "SCALAR",
	OpIterable:        "ITERABLE",
}

// String returns the diagnostic name of the opcode, e.g. "ENDIF" or "==".
func (op Opcode) String() string {
	if op >= 0 && op < opcodeCount {
		return opcodeNames[op]
	}
	return "UNKNOWN"
}

// keywords maps lower-cased reserved words to their opcodes.
var keywords = map[string]Opcode{
	"if":            OpIf,
	"else":          OpElse,
	"elseif":        OpElseIf,
	"elsefor":       OpElseFor,
	"endif":         OpEndIf,
	"for":           OpFor,
	"endfor":        OpEndFor,
	"in":            OpIn,
	"set":           OpSet,
	"block":         OpBlock,
	"endblock":      OpEndBlock,
	"extends":       OpExtends,
	"include":       OpInclude,
	"with":          OpWith,
	"macro":         OpMacro,
	"endmacro":      OpEndMacro,
	"call":          OpCall,
	"endcall":       OpEndCall,
	"cache":         OpCache,
	"endcache":      OpEndCache,
	"raw":           OpRaw,
	"endraw":        OpEndRaw,
	"do":            OpDo,
	"return":        OpReturn,
	"autoescape":    OpAutoescape,
	"endautoescape": OpEndAutoescape,
	"continue":      OpContinue,
	"break":         OpBreak,
	"switch":        OpSwitch,
	"case":          OpCase,
	"default":       OpDefault,
	"endswitch":     OpEndSwitch,
	"is":            OpIs,
	"defined":       OpDefined,
	"empty":         OpEmpty,
	"even":          OpEven,
	"odd":           OpOdd,
	"numeric":       OpNumeric,
	"scalar":        OpScalar,
	"iterable":      OpIterable,
	"not":           OpNot,
	"and":           OpAnd,
	"or":            OpOr,
	"true":          OpTrue,
	"false":         OpFalse,
	"null":          OpNull,
}

// LookupKeyword reports whether word is reserved. Matching ignores case, so
// "IF", "If" and "if" all resolve to OpIf.
func LookupKeyword(word string) (Opcode, bool) {
	op, ok := keywords[strings.ToLower(word)]
	return op, ok
}

// IsKeyword reports whether op was produced from a reserved word.
func (op Opcode) IsKeyword() bool {
	return op >= OpIf && op < opcodeCount ||
		op == OpNot || op == OpAnd || op == OpOr || op == OpIs || op == OpIn ||
		op == OpTrue || op == OpFalse || op == OpNull
}

// opensStatement reports whether a keyword counts as a significant statement
// for the "extends must come first" rule.
func (op Opcode) opensStatement() bool {
	switch op {
	case OpIf, OpFor, OpSwitch, OpBlock, OpExtends, OpInclude, OpMacro,
		OpCall, OpCache, OpRaw, OpEndRaw, OpSet, OpDo, OpReturn,
		OpAutoescape, OpEndAutoescape, OpContinue, OpBreak:
		return true
	}
	return false
}

// Token is a single lexical unit handed from the scanner to the parser.
type Token struct {
	Opcode Opcode

	// Value holds the payload of literal-bearing tokens: the text of raw
	// fragments, string contents without quotes, number digits, identifier
	// names and the spelling of keywords.
	Value string

	Line int
	File string
}

// Pos returns the source position of the token.
func (t Token) Pos() Position {
	return Position{Filename: t.File, Line: t.Line}
}

// String returns a debug representation such as IDENTIFIER("foo").
func (t Token) String() string {
	switch t.Opcode {
	case OpInteger, OpDouble, OpString, OpIdentifier, OpRawFragment:
		return t.Opcode.String() + "(" + quote(t.Value) + ")"
	}
	return t.Opcode.String()
}

func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '"':
			b.WriteString(`\"`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
