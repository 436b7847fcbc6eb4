package lexer

// Mode is the scanner's current lexical mode.
type Mode int

const (
	// ModeRaw accumulates literal template text.
	ModeRaw Mode = iota

	// ModeCode tokenizes the inside of {% %} and {{ }}.
	ModeCode

	// ModeComment skips the inside of {# #}.
	ModeComment
)

func (m Mode) String() string {
	switch m {
	case ModeRaw:
		return "raw"
	case ModeCode:
		return "code"
	case ModeComment:
		return "comment"
	}
	return "unknown"
}

// ScanState is the mutable state shared by the scanner and the parser driver
// for one parse of one template.
//
// The scanner owns the cursor, line and mode fields. The nesting counters are
// maintained by the parser driver as it applies contextual guards, but they
// live here because the scanner reads some of them (ForcedRawState) to decide
// how to treat raw text.
type ScanState struct {
	buffer string
	cursor int

	// ActiveLine is the line the cursor is on.
	ActiveLine int

	// ActiveFile is used in token positions and error messages.
	ActiveFile string

	Mode Mode

	IfLevel     int
	ForLevel    int
	BlockLevel  int
	MacroLevel  int
	SwitchLevel int

	// OldIfLevel holds the if-nesting of the enclosing scope while a for
	// loop is open, so that an else directly inside the loop is read as a
	// for-else.
	OldIfLevel int

	// StatementPosition counts significant statements seen so far. An
	// extends tag is only legal when it is the first one.
	StatementPosition int

	// WhitespaceControl is set by a -%} or -}} close delimiter and asks for
	// the next raw fragment to be left-trimmed.
	WhitespaceControl bool

	// ForcedRawState is positive between {% raw %} and {% endraw %}.
	ForcedRawState int

	// ExtendsMode is set once the template has declared a parent.
	ExtendsMode bool

	// ActiveToken is the opcode of the last token produced in code mode.
	ActiveToken Opcode

	raw         []byte
	openPending bool
}

// NewScanState creates the state for scanning source. Scanning starts in raw
// mode on line 1.
func NewScanState(source, file string) *ScanState {
	return &ScanState{
		buffer:      source,
		ActiveLine:  1,
		ActiveFile:  file,
		Mode:        ModeRaw,
		ActiveToken: OpIgnore,
	}
}

// Cursor returns the byte offset of the next unread character.
func (s *ScanState) Cursor() int {
	return s.cursor
}

// Remaining returns up to n unread bytes, used to show context in
// scanning errors.
func (s *ScanState) Remaining(n int) string {
	rest := s.buffer[s.cursor:]
	if len(rest) > n {
		return rest[:n]
	}
	return rest
}

func (s *ScanState) atEnd() bool {
	return s.cursor >= len(s.buffer)
}

func (s *ScanState) peek(offset int) byte {
	i := s.cursor + offset
	if i < 0 || i >= len(s.buffer) {
		return 0
	}
	return s.buffer[i]
}
