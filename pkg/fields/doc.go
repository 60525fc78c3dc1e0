// Package fields defines the field vocabulary shared by the intake form, the
// merge engine and the onboarding form builder: field types, typed values,
// templates, instances and server declarations.
//
// Templates describe a field. Instances pair a template with its current
// value. Declarations are server-supplied definitions in which every attribute
// except the name is optional so that callers can tell an absent attribute from
// a zero one when combining them with templates.
package fields
