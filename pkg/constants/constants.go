// Package constants provides shared constants used throughout the bodsmap codebase.
// This includes vocabulary tokens of the target record schema, run limits, and
// file permissions that should be consistent across the application.
package constants

import "time"

// Target schema constants
const (
	// DataSource is the DATA_SOURCE tag stamped on every emitted record
	DataSource = "OPEN-OWNERSHIP"

	// RelationshipDomain is the domain used by anchor and pointer fragments
	RelationshipDomain = "OOR"

	// RecordTypeOrganization marks records produced from entity statements
	RecordTypeOrganization = "ORGANIZATION"

	// RecordTypePerson marks records produced from person statements
	RecordTypePerson = "PERSON"

	// UnknownPointerKey is the pointer key used when an interested party has no described-by reference
	UnknownPointerKey = "unknown"
)

// Link rewriting constants
const (
	// RegisterSchemeName is the scheme name whose relative URIs are made absolute
	RegisterSchemeName = "OpenOwnership Register"

	// RegisterPathPrefix is the relative URI prefix that triggers rewriting
	RegisterPathPrefix = "/entities"

	// RegisterBaseURL is prepended to relative register URIs
	RegisterBaseURL = "https://register.openownership.org"
)

// Limit constants define various limits and capacities
const (
	// ProgressInterval is the number of records between progress log lines
	ProgressInterval = 10000

	// MaxSamples is the number of distinct sample values kept per statistics key
	MaxSamples = 10

	// MaxStatDepth is the number of hierarchical levels a statistics key may address
	MaxStatDepth = 4

	// ReadBufferSize is the initial buffer size for the line reader
	ReadBufferSize = 64 * 1024

	// WriteBufferSize is the buffer size for the record writer
	WriteBufferSize = 64 * 1024
)

// Timeout constants
const (
	// ShutdownTimeout bounds the time spent closing files after an error
	ShutdownTimeout = 5 * time.Second
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Format constants
const (
	// DateFormat is the layout normalized dates are written in
	DateFormat = "2006-01-02"
)
