// Package binder decodes HTTP requests into typed values for the handler
// package.
//
// JSON decodes a size limited application/json body strictly: unknown
// fields and trailing data are rejected. Multipart reads
// multipart/form-data requests into structs using `form:"name"` tags for
// text fields and `file:"name"` tags for *FileUpload fields.
//
// Binders return ErrNotApplicable when the request content type is not the
// one they handle, which lets callers chain several binders for one
// endpoint.
package binder
