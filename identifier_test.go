package memo

import (
	"errors"
	"strings"
	"testing"
)

func buildIdentifier(t *testing.T, b identifierBuilder, sig *Signature) string {
	t.Helper()

	if errs := b.validate(); len(errs) > 0 {
		t.Fatalf("Unexpected validation errors: %v", errs)
	}
	id, err := b.build(sig)
	if err != nil {
		t.Fatalf("Failed to build identifier: %v", err)
	}
	return id
}

func TestIdentifierDefaultShape(t *testing.T) {
	sig := NewSignature("calc.Add").Bind("x", 3).Bind("y", 5)

	id := buildIdentifier(t, identifierBuilder{}, sig)
	want := "calc.Add/x=3,y=5"
	if id != want {
		t.Fatalf("Expected identifier %q, got %q", want, id)
	}
}

func TestIdentifierDeterminism(t *testing.T) {
	build := func() string {
		sig := NewSignature("calc.Score").
			Bind("weights", map[string]int{"b": 2, "a": 1, "c": 3}).
			Bind("threshold", 0.5)
		return buildIdentifier(t, identifierBuilder{}, sig)
	}

	first := build()
	for i := 0; i < 10; i++ {
		if got := build(); got != first {
			t.Fatalf("Identifier not deterministic: %q vs %q", first, got)
		}
	}
}

func TestIdentifierBindDefault(t *testing.T) {
	explicit := NewSignature("calc.Pow").Bind("base", 2).Bind("exp", 10).BindDefault("exp", 2)
	defaulted := NewSignature("calc.Pow").Bind("base", 2).Bind("exp", 10)

	a := buildIdentifier(t, identifierBuilder{}, explicit)
	b := buildIdentifier(t, identifierBuilder{}, defaulted)
	if a != b {
		t.Fatalf("Defaulted call produced different identifier: %q vs %q", a, b)
	}

	applied := NewSignature("calc.Pow").Bind("base", 2).BindDefault("exp", 2)
	id := buildIdentifier(t, identifierBuilder{}, applied)
	if want := "calc.Pow/base=2,exp=2"; id != want {
		t.Fatalf("Expected identifier %q, got %q", want, id)
	}
}

func TestIdentifierIncludeExclude(t *testing.T) {
	sig := func() *Signature {
		return NewSignature("fetch.Rows").
			Bind("table", "users").
			Bind("limit", 10).
			Bind("conn", "pg://local")
	}

	included := buildIdentifier(t, identifierBuilder{include: []string{"table", "limit"}}, sig())
	if want := "fetch.Rows/table=users,limit=10"; included != want {
		t.Fatalf("Expected identifier %q, got %q", want, included)
	}

	excluded := buildIdentifier(t, identifierBuilder{exclude: []string{"conn"}}, sig())
	if included != excluded {
		t.Fatalf("Include and exclude forms should agree: %q vs %q", included, excluded)
	}
}

func TestIdentifierIncludeExcludeBothSet(t *testing.T) {
	b := identifierBuilder{include: []string{"a"}, exclude: []string{"b"}}
	if errs := b.validate(); len(errs) == 0 {
		t.Fatal("Expected validation error when both include and exclude are set")
	}
}

func TestIdentifierReceiver(t *testing.T) {
	plain := NewSignature("models.Predict").Receiver("Model", "").Bind("x", 1)
	id := buildIdentifier(t, identifierBuilder{}, plain)
	if want := "models.Predict/Model/x=1"; id != want {
		t.Fatalf("Expected identifier %q, got %q", want, id)
	}

	withRepr := NewSignature("models.Predict").Receiver("Model", "resnet50").Bind("x", 1)
	id = buildIdentifier(t, identifierBuilder{}, withRepr)
	if want := "models.Predict/Model(resnet50)/x=1"; id != want {
		t.Fatalf("Expected identifier %q, got %q", want, id)
	}
}

func TestIdentifierSanitizesValues(t *testing.T) {
	sig := NewSignature("fs.Stat").Bind("path", "a/b/c")
	id := buildIdentifier(t, identifierBuilder{}, sig)
	if want := "fs.Stat/path=a_b_c"; id != want {
		t.Fatalf("Expected identifier %q, got %q", want, id)
	}
}

func TestIdentifierLongValueDigested(t *testing.T) {
	long := strings.Repeat("a", 500)
	sig := NewSignature("hash.Sum").Bind("data", long)
	id := buildIdentifier(t, identifierBuilder{}, sig)

	if strings.Contains(id, "aaaaaaaaaa") {
		t.Fatalf("Expected long value to be digested, got %q", id)
	}
	if !strings.HasPrefix(id, "hash.Sum/data=") {
		t.Fatalf("Expected digested value to keep its key, got %q", id)
	}
}

func TestIdentifierSuffix(t *testing.T) {
	sig := NewSignature("calc.Add").Bind("x", 3)
	id := buildIdentifier(t, identifierBuilder{suffix: "v2"}, sig)
	if want := "calc.Add/x=3_v2"; id != want {
		t.Fatalf("Expected identifier %q, got %q", want, id)
	}
}

func TestIdentifierNoArgsWithSuffix(t *testing.T) {
	sig := NewSignature("calc.Answer")
	id := buildIdentifier(t, identifierBuilder{suffix: "v2"}, sig)
	if want := "calc.Answer/__v2"; id != want {
		t.Fatalf("Expected identifier %q, got %q", want, id)
	}
}

func TestIdentifierAmbiguous(t *testing.T) {
	b := identifierBuilder{}
	_, err := b.build(NewSignature("calc.Answer"))

	var ce *ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("Expected ConfigError for ambiguous identifier, got %v", err)
	}
}

func TestIdentifierTemplate(t *testing.T) {
	b := identifierBuilder{template: "sums/{x}/{y}"}
	if errs := b.validate(); len(errs) > 0 {
		t.Fatalf("Unexpected validation errors: %v", errs)
	}

	sig := NewSignature("calc.Add").Bind("x", 3).Bind("y", 5)
	id, err := b.build(sig)
	if err != nil {
		t.Fatalf("Failed to build identifier: %v", err)
	}
	if want := "sums/3/5"; id != want {
		t.Fatalf("Expected identifier %q, got %q", want, id)
	}
}

func TestIdentifierTemplateMissingVariable(t *testing.T) {
	b := identifierBuilder{template: "sums/{z}"}
	if errs := b.validate(); len(errs) > 0 {
		t.Fatalf("Unexpected validation errors: %v", errs)
	}

	_, err := b.build(NewSignature("calc.Add").Bind("x", 3))

	var te *TemplateError
	if !errors.As(err, &te) {
		t.Fatalf("Expected TemplateError, got %v", err)
	}
	if te.Missing != "z" {
		t.Fatalf("Expected missing variable z, got %q", te.Missing)
	}
}

func TestIdentifierTemplateMalformed(t *testing.T) {
	for _, template := range []string{"sums/{x", "sums/x}", "sums/{}"} {
		b := identifierBuilder{template: template}
		if errs := b.validate(); len(errs) == 0 {
			t.Fatalf("Expected validation error for template %q", template)
		}
	}
}

func TestIdentifierTransform(t *testing.T) {
	b := identifierBuilder{
		template: "analysis/keys={keys}/{flag}",
		transform: func(args map[string]any) map[string]any {
			m := args["x"].(map[string]float64)
			keys := make([]string, 0, len(m))
			for k := range m {
				keys = append(keys, k)
			}
			// Sorted by the caller's contract.
			if len(keys) == 2 && keys[0] > keys[1] {
				keys[0], keys[1] = keys[1], keys[0]
			}
			return map[string]any{
				"keys": strings.Join(keys, "."),
				"flag": args["flag"],
			}
		},
	}
	if errs := b.validate(); len(errs) > 0 {
		t.Fatalf("Unexpected validation errors: %v", errs)
	}

	sig := NewSignature("calc.Sum").
		Bind("x", map[string]float64{"three": 3, "five": 5}).
		Bind("flag", true)

	id, err := b.build(sig)
	if err != nil {
		t.Fatalf("Failed to build identifier: %v", err)
	}
	if want := "analysis/keys=five.three/true"; id != want {
		t.Fatalf("Expected identifier %q, got %q", want, id)
	}
}

func TestStringifyStable(t *testing.T) {
	m := map[string]int{"b": 2, "a": 1}
	first := stringify(m)
	for i := 0; i < 20; i++ {
		if got := stringify(m); got != first {
			t.Fatalf("stringify not stable for maps: %q vs %q", first, got)
		}
	}

	if got := stringify(nil); got != "nil" {
		t.Fatalf("Expected nil to stringify as \"nil\", got %q", got)
	}
	if got := stringify(3.5); got != "3.5" {
		t.Fatalf("Expected 3.5, got %q", got)
	}
}
