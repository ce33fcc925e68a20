// internal/app/system/limits/limits.go
package limits

// Request body size limits. Bodies over these sizes are cut off by
// http.MaxBytesReader before parsing.
const (
	// MaxPostBodySize bounds a create request with up to ten files.
	MaxPostBodySize = 200 << 20 // 200 MB

	// MaxMultipartMemory is how much of a multipart body is held in memory;
	// the rest spills to temp files.
	MaxMultipartMemory = 32 << 20 // 32 MB

	// MaxJSONBodySize bounds moderation and other small JSON requests.
	MaxJSONBodySize = 64 << 10 // 64 KB
)
