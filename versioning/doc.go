// Package versioning runs transform chains at the edges of a resource
// handler.
//
// A Parser decodes an incoming body and upgrades it from the version the
// request is pinned to up to the latest representation. A Serializer builds
// the latest representation of an entity and downgrades it to the pinned
// version. Requests without a version pass through untouched and the
// resolver is never consulted for them.
//
// Both read the pinned version from the *transform.Request stored in the
// call's context with transform.ContextWithRequest.
package versioning
