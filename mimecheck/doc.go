// Package mimecheck decides whether a file's content type is acceptable.
//
// A [Checker] compares the detected type of a local file or an uploaded-file
// handle against a configured allow-list. Detection runs a fallback chain:
// a cached prior detection, a magic-signature lookup (an optional custom
// signature database first, then a built-in content sniffer), and finally
// the type declared by the upload transport when sniffing is disabled or
// yields nothing.
//
// Rejections carry a [Code]:
//
//   - [NotReadable]: the target is missing or cannot be read
//   - [NotDetected]: no technique yielded a type
//   - [FalseType]: a type was detected but it is outside the allow-list
//
// # Basic Usage
//
//	checker, err := mimecheck.NewBuilder().
//	    AllowImages().
//	    Allow("application/pdf").
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := checker.CheckPath("upload.png"); err != nil {
//	    if mimecheck.IsCode(err, mimecheck.FalseType) {
//	        // reject the upload
//	    }
//	}
//
// # Matching
//
// Matching is string membership in the allow-list, extended by a loose
// component rule: the detected type is additionally split on "/", on "-"
// and on ";", and any component found verbatim in the allow-list accepts
// the file. An allow-list of {"png"} therefore accepts "image/png" and
// "image/x-png" alike. This looseness is a documented contract of the
// matcher, not an accident.
//
// # Custom signature databases
//
// A custom database is a JSON array of {mime, offset, magic} entries
// (magic hex-encoded). It is named per checker via [Options.MagicFile]
// or process-wide via the MIMECHECK_MAGIC environment variable, which is
// read once and cached. [Checker.WatchMagicFile] reloads the database
// when the file changes on disk.
package mimecheck
