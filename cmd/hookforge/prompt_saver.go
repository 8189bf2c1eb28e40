package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"time"
)

// promptSaver implements llm.PromptHook and keeps the exchanged prompt and
// the unparsed model answer next to the generated files.
type promptSaver struct{ Dir string }

// Before appends the prompt to <dir>/<phase>.txt.
func (p *promptSaver) Before(_ context.Context, phase, prompt string) {
	var buf bytes.Buffer
	buf.WriteString("==== ")
	buf.WriteString(time.Now().Format(time.RFC3339))
	buf.WriteString(" ====\n")
	buf.WriteString(prompt)
	buf.WriteString("\n\n")
	p.appendTo(phase, buf.Bytes())
}

// After appends the answer (or error) and writes <dir>/<phase>.response.md.
func (p *promptSaver) After(_ context.Context, phase, raw string, err error) {
	var buf bytes.Buffer
	buf.WriteString("[RESPONSE]\n")
	if err != nil {
		buf.WriteString("ERROR: " + err.Error() + "\n\n")
	} else {
		buf.WriteString(raw)
		buf.WriteString("\n\n")
	}
	p.appendTo(phase, buf.Bytes())
	if err == nil {
		_ = os.WriteFile(filepath.Join(p.Dir, phase+".response.md"), []byte(raw), 0o644)
	}
}

func (p *promptSaver) appendTo(phase string, data []byte) {
	_ = os.MkdirAll(p.Dir, 0o755)
	f, _ := os.OpenFile(filepath.Join(p.Dir, phase+".txt"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if f != nil {
		_, _ = f.Write(data)
		_ = f.Close()
	}
}
