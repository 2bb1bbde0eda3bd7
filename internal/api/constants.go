package api

// API limits and constants.
const (
	// DefaultMaxUploadSize caps a multipart entry submission when no limit is configured (50 MB).
	DefaultMaxUploadSize = 50 << 20

	// multipartMemory is how much of a submission is buffered in memory before spilling to disk.
	multipartMemory = 32 << 20

	// SubmitsPerMinute is the per-client budget for entry submissions.
	SubmitsPerMinute = 30
)

// Cache-Control header values.
const (
	CacheOneDayPrivate = "private, max-age=86400"
	CacheNoStore       = "no-store"
)
