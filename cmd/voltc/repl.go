package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/hassan/volt/internal/compiler"
	"github.com/hassan/volt/internal/parser/ast"
	"github.com/hassan/volt/internal/store"
)

const (
	historyFile = ".voltc_history"
	promptMain  = "volt> "
	promptCont  = "  ... "
)

const replHelp = `REPL commands:
  :quit              Exit the REPL
  :ast               Toggle printing the syntax tree
  :autoescape on|off Escape every echo
  :optimize on|off   Run the optimizer before code generation
End a line with \ to continue the template on the next line.
`

// session is the state of one REPL run.
type session struct {
	c       *compiler.Compiler
	showAST bool
}

func newSession() *session {
	return &session{c: compiler.New(compiler.WithArtifactStore(store.NewMemoryStore()))}
}

func cmdRepl(args []string) int {
	if len(args) != 0 {
		fmt.Fprintf(os.Stderr, "%s repl: unexpected arguments\n", appName)
		return 2
	}
	fmt.Printf("voltc %s REPL\nCtrl+C cancels input, Ctrl+D exits. Type :help for commands.\n", version)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	s := newSession()
	for {
		source, ok := readTemplate(ln)
		if !ok {
			fmt.Println()
			break
		}
		if strings.TrimSpace(source) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(source, "\n", " "))

		out, quit := s.eval(source)
		if out != "" {
			fmt.Println(out)
		}
		if quit {
			break
		}
	}

	if f, err := os.Create(histPath); err == nil {
		_, _ = ln.WriteHistory(f)
		_ = f.Close()
	}
	return 0
}

// readTemplate reads one template, joining lines that end with a
// backslash.
func readTemplate(ln *liner.State) (string, bool) {
	var b strings.Builder
	prompt := promptMain
	for {
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if cont, ok := strings.CutSuffix(line, `\`); ok {
			b.WriteString(cont)
			b.WriteByte('\n')
			prompt = promptCont
			continue
		}
		b.WriteString(line)
		return b.String(), true
	}
}

// eval runs a REPL command or compiles a template and returns what to
// print.
func (s *session) eval(input string) (out string, quit bool) {
	if strings.HasPrefix(input, ":") {
		return s.command(strings.Fields(input))
	}

	var b strings.Builder
	if s.showAST {
		stmts, err := s.c.Parse(input)
		if err != nil {
			return err.Error(), false
		}
		_ = ast.Fprint(&b, stmts)
	}

	compiled, err := s.c.CompileString(context.Background(), input, false)
	if err != nil {
		return err.Error(), false
	}
	b.WriteString(compiled.Code)
	return b.String(), false
}

func (s *session) command(fields []string) (string, bool) {
	switch fields[0] {
	case ":quit", ":q":
		return "", true
	case ":help":
		return strings.TrimRight(replHelp, "\n"), false
	case ":ast":
		s.showAST = !s.showAST
		return fmt.Sprintf("syntax tree %s", onOff(s.showAST)), false
	case ":autoescape", ":optimize":
		option := compiler.OptAutoescape
		if fields[0] == ":optimize" {
			option = compiler.OptOptimize
		}
		if len(fields) != 2 || (fields[1] != "on" && fields[1] != "off") {
			return fmt.Sprintf("usage: %s on|off", fields[0]), false
		}
		s.c.SetOption(option, fields[1] == "on")
		return fmt.Sprintf("%s %s", option, fields[1]), false
	}
	return fmt.Sprintf("unknown command %s, try :help", fields[0]), false
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
