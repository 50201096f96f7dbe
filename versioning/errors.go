package versioning

import "errors"

// ErrTransformBaseNotDeclared is returned when a Parser or Serializer has no
// transform family locator.
var ErrTransformBaseNotDeclared = errors.New("versioning: transform base not declared")
