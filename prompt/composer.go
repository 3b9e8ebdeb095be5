// Package prompt builds the system prompt sent with every model request.
//
// A Composer holds a template with {{name}} placeholders and a set of
// variables. The rendered prompt is recomputed per request and optionally
// extended with context returned by a Retriever.
package prompt

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// ContextPreamble separates the rendered prompt from retrieved context.
const ContextPreamble = "\nHere is the context to use to answer the user's question:\n"

var placeholderRe = regexp.MustCompile(`{{(\w+)}}`)

// Variables maps placeholder names to values. Strings are inserted as is,
// string slices are joined with newlines and everything else is formatted
// with fmt.Sprint.
type Variables map[string]any

// Composer renders a system prompt template. It is safe for concurrent use.
type Composer struct {
	mu        sync.RWMutex
	template  string
	vars      Variables
	rendered  string
	retriever Retriever
}

// NewComposer creates a composer and renders the template once.
func NewComposer(template string, vars Variables) *Composer {
	c := &Composer{template: template, vars: copyVars(vars)}
	c.rendered = Render(c.template, c.vars)
	return c
}

// SetRetriever configures the retriever consulted by Compose. A nil
// retriever disables retrieval.
func (c *Composer) SetRetriever(r Retriever) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.retriever = r
}

// SetSystemPrompt replaces the template (when non-empty) and the variables
// (when non-nil), then re-renders.
func (c *Composer) SetSystemPrompt(template string, vars Variables) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if template != "" {
		c.template = template
	}
	if vars != nil {
		c.vars = copyVars(vars)
	}
	c.rendered = Render(c.template, c.vars)
}

// Template returns the stored template.
func (c *Composer) Template() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.template
}

// CurrentPrompt returns the last rendered prompt.
func (c *Composer) CurrentPrompt() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rendered
}

// Compose re-renders the prompt for one request. With a retriever
// configured, the combined retrieval result for inputText is appended after
// ContextPreamble. The stored template is left untouched.
func (c *Composer) Compose(ctx context.Context, inputText string) (string, error) {
	c.mu.Lock()
	c.rendered = Render(c.template, c.vars)
	prompt := c.rendered
	retriever := c.retriever
	c.mu.Unlock()

	if retriever == nil {
		return prompt, nil
	}

	retrieved, err := retriever.RetrieveAndCombineResults(ctx, inputText)
	if err != nil {
		return "", &RetrieverError{Err: err}
	}

	return prompt + ContextPreamble + retrieved, nil
}

// Render substitutes every {{key}} found in vars. Unknown placeholders are
// left verbatim.
func Render(template string, vars Variables) string {
	if !strings.Contains(template, "{{") {
		return template
	}
	return placeholderRe.ReplaceAllStringFunc(template, func(match string) string {
		key := placeholderRe.FindStringSubmatch(match)[1]
		value, ok := vars[key]
		if !ok {
			return match
		}
		return format(value)
	})
}

func format(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []string:
		return strings.Join(v, "\n")
	case []any:
		// lists decoded from YAML or JSON
		lines := make([]string, len(v))
		for i, item := range v {
			lines[i] = format(item)
		}
		return strings.Join(lines, "\n")
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func copyVars(vars Variables) Variables {
	if vars == nil {
		return nil
	}
	out := make(Variables, len(vars))
	for k, v := range vars {
		out[k] = v
	}
	return out
}
