package util

const (
	StorageLocal  = "local"
	StorageMinio  = "minio"
	StorageOSS    = "oss"
	StorageMemory = "memory"
)

const MimePNG = "image/png"

// gin context key set by the auth middleware.
const ContextUserIDKey = "userID"
