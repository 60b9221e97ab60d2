package router

import (
	"strings"
	"testing"
)

func TestClassifyShortMessages(t *testing.T) {
	cases := []string{
		"",
		"hi",
		"hello there",
		"thanks a lot",
	}

	for _, message := range cases {
		t.Run("msg="+message, func(t *testing.T) {
			if got := Classify(message); got != Simple {
				t.Errorf("Classify(%q) = %q, want simple", message, got)
			}
		})
	}
}

func TestClassifyTrivialIntents(t *testing.T) {
	cases := []string{
		"what is a transformer?",
		"who is Lovelace",
		"define recursion in programming", // not anchored-trivial, but 4 words
		"when was Go released?",
	}

	// All of these should avoid the complex tier.
	for _, message := range cases {
		t.Run("msg="+message, func(t *testing.T) {
			if got := Classify(message); got == Complex {
				t.Errorf("Classify(%q) = complex, want simple or medium", message)
			}
		})
	}
}

func TestClassifyCodeBlocksAreComplex(t *testing.T) {
	cases := []string{
		"fix this please ```go\nfunc main() {}\n```",
		"why does def foo(x): return x fail here",
		"what does x -> y mean in this signature exactly",
	}

	for _, message := range cases {
		t.Run("msg="+message[:20], func(t *testing.T) {
			if got := Classify(message); got != Complex {
				t.Errorf("Classify(%q) = %q, want complex", message, got)
			}
		})
	}
}

func TestClassifyAnalysisQuestionIsComplex(t *testing.T) {
	message := "Can you explain the tradeoffs between a hash index and a B-tree, " +
		"and also compare their performance in write-heavy workloads?"

	if got := Classify(message); got != Complex {
		t.Errorf("Classify = %q, want complex", got)
	}
}

func TestClassifySingleSignalIsMedium(t *testing.T) {
	// One topic hit ("database"), seven words, one question mark.
	message := "is the database ready for production use"

	if got := Classify(message); got != Medium {
		t.Errorf("Classify(%q) = %q, want medium", message, got)
	}
}

func TestClassifyLengthFallback(t *testing.T) {
	cases := []struct {
		name  string
		words int
		want  Complexity
	}{
		{"six neutral words", 6, Simple},
		{"twelve neutral words", 12, Medium},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			message := strings.TrimSpace(strings.Repeat("lorem ipsum dolor sit amet word ", 4))
			message = strings.Join(strings.Fields(message)[:tc.words], " ")

			if got := Classify(message); got != tc.want {
				t.Errorf("Classify(%d neutral words) = %q, want %q", tc.words, got, tc.want)
			}
		})
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	message := "Please explain how a transformer architecture handles attention across long sequences"
	first := Classify(message)
	for i := 0; i < 10; i++ {
		if got := Classify(message); got != first {
			t.Fatalf("Classify flapped: %q then %q", first, got)
		}
	}
}
