package inject

import (
	"github.com/junioryono/inject/internal/reflection"
)

// In marks a parameter object. When a constructor accepts a single struct
// parameter with In embedded, every exported field of that struct becomes an
// injection point of its own.
//
// Field tags:
//   - `name:"serviceName"` - resolve the field under Named("serviceName")
//   - `optional:"true"` - leave the zero value if the key cannot be provided
//   - `assisted:"true"` - take the value from an assisted factory argument
//   - `inject:"-"` - skip the field
//
// Example:
//
//	type ServiceParams struct {
//	    inject.In
//
//	    Database *sql.DB
//	    Logger   Logger `optional:"true"`
//	    Cache    Cache  `name:"redis"`
//	}
//
//	func NewService(params ServiceParams) *Service {
//	    return &Service{
//	        db:     params.Database,
//	        logger: params.Logger, // might be nil if not bound
//	        cache:  params.Cache,
//	    }
//	}
//
// The In struct must be embedded anonymously. Structs embedding dig.In are
// treated the same way.
type In = reflection.In
