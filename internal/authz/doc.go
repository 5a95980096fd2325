// Package authz implements the permission resolution engine.
//
// A user's effective permissions are the union of the catalog permissions of every role
// the user currently holds. The Engine answers point in time questions against that set
// and adds three independent gates on top of it: the category overlay, the form and route
// gate and the field visibility filter.
//
// Decisions are values, never errors. An error returned next to a Decision means the
// store could not be read and the decision is a deny.
package authz
