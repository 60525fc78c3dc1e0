package template

import "io"

// Engine renders named templates or inline template strings. When writers
// are passed the rendered output is also copied to each of them.
type Engine interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(content string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}
