package models

// Booking statuses.
const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusCancelled = "CANCELLED"
	StatusCompleted = "COMPLETED"
	StatusRejected  = "REJECTED"
)

// ActiveStatuses are the statuses that hold a room for their date range.
var ActiveStatuses = []string{StatusPending, StatusConfirmed}

// User roles carried by the authenticated identity.
const (
	RoleGuest    = "guest"
	RoleProvider = "provider"
	RoleAdmin    = "admin"
)

// Sync queue task statuses.
const (
	SyncStatusPending    = "pending"
	SyncStatusProcessing = "processing"
	SyncStatusRetry      = "retry"
	SyncStatusCompleted  = "completed"
	SyncStatusFailed     = "failed"
)

const (
	// DateLayout is the wire and storage format of check-in/check-out dates.
	DateLayout = "2006-01-02"

	// DefaultSweepInterval how often past-due confirmed bookings are completed, seconds
	DefaultSweepInterval = 15 * 60

	// DefaultSearchCacheTTL lifetime of a cached stay search result, seconds
	DefaultSearchCacheTTL = 60

	// WorkerQueueSize local buffer of the ledger sync worker
	WorkerQueueSize = 1000

	// RateLimitBookings booking attempts allowed per actor in one window
	RateLimitBookings = 10

	// RateLimitWindow booking rate limit window, seconds
	RateLimitWindow = 60

	// SheetsCacheTTL lifetime of the Google Sheets row cache, seconds
	SheetsCacheTTL = 60 * 60
)

// Ledger sync task types.
const (
	TaskUpsert       = "upsert"
	TaskUpdateStatus = "update_status"
)
