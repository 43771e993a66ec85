package exitcode

const (
	Success         = 0
	UsageError      = 1
	ValidationError = 2 // unreadable sheet or missing critical columns
	DBConnError     = 3
	GatewayError    = 4
	RunError        = 5
	PartialSuccess  = 6 // run finished with failed rows
	OutputError     = 7
)
