// Package storekit is a file storage toolkit for storefront backends.
//
// It provides a driver-based Storage abstraction (local disk, in-memory),
// MIME acceptance checking of uploads via the mimecheck subpackage, a
// mount manager for composing several backends under one namespace, and
// helpers for saving multipart uploads.
//
// Drivers self-register; import them for side effects:
//
//	import (
//	    "github.com/gobeaver/storekit"
//	    _ "github.com/gobeaver/storekit/driver/local"
//	    _ "github.com/gobeaver/storekit/driver/memory"
//	)
//
//	st, err := storekit.NewFromEnv()
//
// Configuration is read from STOREKIT_* environment variables, see Config.
package storekit
