package util

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	DefaultPage  = 1
	DefaultLimit = 12
	MaxLimit     = 100
)
