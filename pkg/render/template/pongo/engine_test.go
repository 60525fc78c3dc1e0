package pongo_test

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"testing"

	"github.com/goliatone/go-pawhealth/pkg/render/template/pongo"
	"github.com/goliatone/go-pawhealth/pkg/testsupport"
)

//go:embed testdata/templates/*.tpl
var embedded embed.FS

func newEngine(t *testing.T) *pongo.Engine {
	t.Helper()
	files, err := fs.Sub(embedded, "testdata/templates")
	if err != nil {
		t.Fatalf("sub fs: %v", err)
	}
	engine, err := pongo.New(pongo.WithFS(files))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestEngine_RenderTemplate(t *testing.T) {
	engine := newEngine(t)

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("hello", map[string]any{"name": "Rex"}, w)
	})
	if want := "Hello Rex!\n"; result != want || written != want {
		t.Fatalf("render mismatch: result %q written %q", result, written)
	}
}

func TestEngine_GlobalContext(t *testing.T) {
	engine := newEngine(t)
	if err := engine.GlobalContext(map[string]any{"settings": map[string]any{"env": "staging"}}); err != nil {
		t.Fatalf("global context: %v", err)
	}
	got, err := engine.RenderTemplate("use-global.tpl", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "staging\n" {
		t.Fatalf("got %q", got)
	}
}

func TestEngine_RegisterFilter(t *testing.T) {
	engine := newEngine(t)
	shout := func(input any, _ any) (any, error) {
		return fmt.Sprintf("%s!", strings.ToUpper(fmt.Sprint(input))), nil
	}
	if err := engine.RegisterFilter("shout", shout); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := engine.RegisterFilter("shout", shout); err != nil {
		t.Fatalf("re-register: %v", err)
	}
	got, err := engine.RenderTemplate("use-filter", map[string]any{"name": "rex"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "REX!\n" {
		t.Fatalf("got %q", got)
	}
}

type item struct {
	Title string `json:"title"`
}

func TestEngine_StructDataUsesJSONNames(t *testing.T) {
	engine := newEngine(t)
	data := struct {
		Items []item `json:"items"`
	}{Items: []item{{Title: " Walk "}, {Title: "Feed"}}}

	got, err := engine.RenderTemplate("list", data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "Walk;Feed;\n" {
		t.Fatalf("got %q", got)
	}
}

func TestEngine_RenderString(t *testing.T) {
	engine := newEngine(t)
	got, err := engine.RenderString("{{ a }}-{{ b }}", map[string]any{"a": 1, "b": "x"})
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if got != "1-x" {
		t.Fatalf("got %q", got)
	}
}

func TestNew_RequiresSource(t *testing.T) {
	if _, err := pongo.New(); err == nil {
		t.Fatalf("expected error without template source")
	}
}
