// Package limits holds request body size ceilings shared across features.
package limits

const (
	// MaxUploadBodyBytes caps the whole multipart body accepted by the
	// upload endpoint. It is deliberately smaller than the per-file limit
	// enforced in the bulk-upload form; oversized direct uploads get a 413
	// and the admin is steered to the remote-link method.
	MaxUploadBodyBytes = 4 << 20 // 4 MB

	// MaxLoginFormSize caps login form submissions.
	MaxLoginFormSize = 64 << 10 // 64 KB

	// MaxBulkFormSize caps the JSON bodies of the bulk-upload batch API.
	MaxBulkFormSize = 1 << 20 // 1 MB
)
