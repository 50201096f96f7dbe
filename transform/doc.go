// Package transform holds the versioned transform steps of a resource
// representation and the machinery that finds and chains them.
//
// A family is a set of steps registered under a locator of the form
// "namespace.BaseName". Step N converts a version N-1 payload into the
// version N shape (Forwards) and back again (Backwards). A Resolver returns
// the steps above a requested base version, ascending for upgrades and
// descending for downgrades; Forward and Backward apply them to a Payload.
package transform
