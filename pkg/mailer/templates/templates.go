// Package templates renders the notification mails. Each mail is a triple of
// embedded files: <name>.subject.tmpl, <name>.text.tmpl and <name>.html.tmpl.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
	"reflect"
	"sort"
	"strings"
	"sync"
	texttpl "text/template"
	"time"
)

//go:embed *.tmpl
var files embed.FS

const (
	subjectSuffix = ".subject.tmpl"
	textSuffix    = ".text.tmpl"
	htmlSuffix    = ".html.tmpl"
)

// orDefault is used as a pipe: {{ .Name | default "there" }}.
func orDefault(fallback, value any) any {
	if s, ok := value.(string); ok {
		if strings.TrimSpace(s) == "" {
			return fallback
		}
		return s
	}
	if rv := reflect.ValueOf(value); !rv.IsValid() || rv.IsZero() {
		return fallback
	}
	return value
}

var funcs = map[string]any{
	"default": orDefault,
	"upper":   strings.ToUpper,
	"year":    func() int { return time.Now().UTC().Year() },
}

type set struct {
	text *texttpl.Template
	html *htmpl.Template
}

var (
	loadOnce sync.Once
	loaded   set
	loadErr  error
)

// load parses every embedded template once. Subjects and plain text bodies
// share the text set; html bodies get contextual escaping.
func load() (set, error) {
	loadOnce.Do(func() {
		text, err := texttpl.New("mail").Funcs(funcs).ParseFS(files, "*"+subjectSuffix, "*"+textSuffix)
		if err != nil {
			loadErr = fmt.Errorf("parse text templates: %w", err)
			return
		}
		html, err := htmpl.New("mail").Funcs(funcs).ParseFS(files, "*"+htmlSuffix)
		if err != nil {
			loadErr = fmt.Errorf("parse html templates: %w", err)
			return
		}
		loaded = set{text: text, html: html}
	})
	return loaded, loadErr
}

// Names lists the mails that have all three parts.
func Names() []string {
	s, err := load()
	if err != nil {
		return nil
	}
	var out []string
	for _, t := range s.text.Templates() {
		name, ok := strings.CutSuffix(t.Name(), subjectSuffix)
		if !ok {
			continue
		}
		if s.text.Lookup(name+textSuffix) != nil && s.html.Lookup(name+htmlSuffix) != nil {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Render executes the subject, text and html parts of the named mail.
func Render(name string, data any) (subject, text, html string, err error) {
	s, err := load()
	if err != nil {
		return "", "", "", err
	}

	var buf bytes.Buffer
	exec := func(file string, isHTML bool) (string, error) {
		buf.Reset()
		var execErr error
		if isHTML {
			t := s.html.Lookup(file)
			if t == nil {
				return "", fmt.Errorf("template %q not found", file)
			}
			execErr = t.Execute(&buf, data)
		} else {
			t := s.text.Lookup(file)
			if t == nil {
				return "", fmt.Errorf("template %q not found", file)
			}
			execErr = t.Execute(&buf, data)
		}
		if execErr != nil {
			return "", fmt.Errorf("exec %q: %w", file, execErr)
		}
		return buf.String(), nil
	}

	if subject, err = exec(name+subjectSuffix, false); err != nil {
		return "", "", "", err
	}
	if text, err = exec(name+textSuffix, false); err != nil {
		return "", "", "", err
	}
	if html, err = exec(name+htmlSuffix, true); err != nil {
		return "", "", "", err
	}
	return strings.TrimSpace(subject), text, html, nil
}
