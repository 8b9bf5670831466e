package config

import "time"

// Server defaults
const (
	DefaultPort         = "8080"
	DefaultDataDir      = "./data/metrics"
	DefaultStoreDir     = "./data/promcheck"
	DefaultMaxStorageGB = 1
	DefaultMaxMemoryMB  = 48
	ShutdownTimeout     = 10 * time.Second
)

// Validation limits
const (
	DefaultWorkers      = 4
	MaxWorkers          = 64
	MaxLinesPerRequest  = 10000
	MaxRequestBodyBytes = 8 << 20
	ValidateTimeout     = 30 * time.Second
)

// Report retention and maintenance
const (
	DefaultRetentionHours = 7 * 24
	RetentionInterval     = 1 * time.Hour
	BadgerGCInterval      = 10 * time.Minute
	BadgerGCDiscardRatio  = 0.5
	DiskCheckInterval     = 1 * time.Minute
)

// Report API defaults
const (
	ReportsDefaultLimit = 50
	ReportsMaxLimit     = 1000
	StoreTimeout        = 5 * time.Second
)

// Rate limiting (requests per second on /v1, burst is twice the rate)
const (
	DefaultRateLimit = 50
)

// Watcher
const (
	WatchDebounce = 500 * time.Millisecond
)

// WebSocket configuration
const (
	WSReadBufferSize  = 1024
	WSWriteBufferSize = 1024
	WSBroadcastBuffer = 256
	WSChannelBuffer   = 10
	WSWriteDeadline   = 10 * time.Second
	WSReadDeadline    = 60 * time.Second
	WSPingInterval    = 30 * time.Second
)
