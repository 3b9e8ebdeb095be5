package prompt

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		template string
		vars     Variables
		want     string
	}{
		{name: "substitutes known key", template: "Hello {{name}}", vars: Variables{"name": "Ada"}, want: "Hello Ada"},
		{name: "leaves unknown key", template: "Hello {{missing}}", vars: Variables{"name": "Ada"}, want: "Hello {{missing}}"},
		{name: "joins string slices", template: "{{items}}", vars: Variables{"items": []string{"a", "b"}}, want: "a\nb"},
		{name: "joins decoded lists", template: "{{items}}", vars: Variables{"items": []any{"a", 2}}, want: "a\n2"},
		{name: "formats other values", template: "n={{n}}", vars: Variables{"n": 3}, want: "n=3"},
		{name: "uses stringer", template: "{{d}}", vars: Variables{"d": time.Second}, want: "1s"},
		{name: "repeated placeholder", template: "{{x}}-{{x}}", vars: Variables{"x": "y"}, want: "y-y"},
		{name: "nil vars", template: "{{x}}", vars: nil, want: "{{x}}"},
		{name: "no placeholders", template: "plain", vars: Variables{"x": "y"}, want: "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.template, tt.vars); got != tt.want {
				t.Fatalf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestComposerSetSystemPrompt(t *testing.T) {
	c := NewComposer("Hi {{who}}", Variables{"who": "Bob"})
	if got := c.CurrentPrompt(); got != "Hi Bob" {
		t.Fatalf("expected %q, got %q", "Hi Bob", got)
	}

	// empty template keeps the old one, new vars are applied
	c.SetSystemPrompt("", Variables{"who": "Ada"})
	if got := c.CurrentPrompt(); got != "Hi Ada" {
		t.Fatalf("expected %q, got %q", "Hi Ada", got)
	}

	// nil vars keep the old ones
	c.SetSystemPrompt("Bye {{who}}", nil)
	if got := c.CurrentPrompt(); got != "Bye Ada" {
		t.Fatalf("expected %q, got %q", "Bye Ada", got)
	}
	if c.Template() != "Bye {{who}}" {
		t.Fatalf("unexpected template %q", c.Template())
	}
}

func TestComposeIsIdempotent(t *testing.T) {
	c := NewComposer("Hello {{name}}", Variables{"name": "Ada"})

	first, err := c.Compose(context.Background(), "q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := c.Compose(context.Background(), "q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second || first != "Hello Ada" {
		t.Fatalf("expected stable %q, got %q and %q", "Hello Ada", first, second)
	}
}

func TestComposeAppendsRetrievedContext(t *testing.T) {
	calls := 0
	c := NewComposer("Base", nil)
	c.SetRetriever(RetrieverFunc(func(_ context.Context, text string) (string, error) {
		calls++
		return "docs for " + text, nil
	}))

	got, err := c.Compose(context.Background(), "refunds")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "Base\nHere is the context to use to answer the user's question:\ndocs for refunds"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
	if calls != 1 {
		t.Fatalf("expected one retrieval, got %d", calls)
	}
	if c.Template() != "Base" || c.CurrentPrompt() != "Base" {
		t.Fatalf("retrieved context leaked into stored state")
	}
}

func TestComposeWrapsRetrieverError(t *testing.T) {
	boom := errors.New("index offline")
	c := NewComposer("Base", nil)
	c.SetRetriever(RetrieverFunc(func(context.Context, string) (string, error) { return "", boom }))

	_, err := c.Compose(context.Background(), "q")

	var rerr *RetrieverError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected RetrieverError, got %T", err)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestComposeConcurrent(t *testing.T) {
	c := NewComposer("{{a}}", Variables{"a": "x"})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%4 == 0 {
				c.SetSystemPrompt("", Variables{"a": "y"})
				return
			}
			got, err := c.Compose(context.Background(), "q")
			if err != nil || (got != "x" && got != "y") {
				t.Errorf("unexpected compose result %q, %v", got, err)
			}
		}(i)
	}
	wg.Wait()
}

func TestDefaultTemplatePlaceholders(t *testing.T) {
	got := Render(DefaultTemplate, Variables{"name": "Tech Agent", "description": "Knows computers."})
	if !strings.HasPrefix(got, "You are a Tech Agent. Knows computers. Provide") {
		t.Fatalf("unexpected rendering: %q", got[:60])
	}
	if strings.Contains(got, "{{") {
		t.Fatalf("unresolved placeholder in %q", got)
	}
}
