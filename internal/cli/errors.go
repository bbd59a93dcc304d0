package cli

// Error codes, grouped by phase. E0xx: locating and reading declaration
// files. E1xx: declaration-syntax errors. E2xx: output and cache errors.
// E3xx: configuration errors.
const (
	ErrCodeGeneric    = "E001" // Uncategorized error
	ErrCodeNotFound   = "E002" // Declarations directory or file not found
	ErrCodeNoFiles    = "E003" // No .rtinit files in directory
	ErrCodeScanError  = "E004" // Directory scan failed
	ErrCodeReadFailed = "E005" // Declaration file unreadable

	ErrCodeSyntax = "E101" // Clause does not match the declaration grammar

	ErrCodeWriteFailed = "E201" // Generated file write failed
	ErrCodeCacheFailed = "E202" // Generation cache unavailable or corrupt
	ErrCodeEmitFailed  = "E203" // Code emission failed

	ErrCodeConfig = "E301" // Invalid .rtinit.yaml or missing required setting
)
