// Package template defines the template engine seam used by the HTML
// renderer and the brand stylesheet. The pongo subpackage provides the
// pongo2 backed implementation.
package template
