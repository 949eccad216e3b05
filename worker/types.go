package worker

import "net/http"

type Outcome string

const (
	OutcomeSuccess     Outcome = "success"
	OutcomeConfigError Outcome = "config_error"
	OutcomeTimeout     Outcome = "timeout"
	OutcomeFailure     Outcome = "failure"
)

// Result is the terminal outcome of one Deliver call.
type Result struct {
	Outcome    Outcome `json:"outcome"`
	Attempts   int     `json:"attempts"`
	StatusCode int     `json:"status_code,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// configErrorStatus are responses the user must fix on the target side.
var configErrorStatus = map[int]bool{
	http.StatusUnauthorized: true,
	http.StatusForbidden:    true,
	http.StatusNotFound:     true,
}
