package hookshot

var (
	VERSION = "dev"
	COMMIT  = "unknown"
)
