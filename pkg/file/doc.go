// Package file stores uploaded blobs (profile photos) on the local disk or in
// Amazon S3 and S3-compatible services, and hands back the public URL under
// which each object is served.
//
// Both backends implement Storage. New picks one from Config:
//
//	store, err := file.New(ctx, cfg)
//	obj, err := store.Put(ctx, "avatars/"+id+".png", r, size, "image/png")
//	// obj.URL is what gets saved on the profile
//
// Keys are slash separated, relative, and may not contain "..".
package file
