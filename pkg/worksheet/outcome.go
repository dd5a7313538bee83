package worksheet

import "github.com/httprunner/WorksheetAgent/internal/hapapi"

// ErrorKind classifies an error Outcome.
type ErrorKind = hapapi.ErrorKind

const (
	ErrorUnexpected       = hapapi.KindUnexpected
	ErrorMissingParameter = hapapi.KindMissingParameter
	ErrorInvalidHost      = hapapi.KindInvalidHost
	ErrorPayloadParse     = hapapi.KindPayloadParse
	ErrorTransport        = hapapi.KindTransport
	ErrorBusiness         = hapapi.KindBusiness
)

// Outcome is the single result of a record operation: either Result or Error
// is set, never both.
type Outcome struct {
	Operation OperationKind
	Result    string
	Error     string
	// ErrorKind is meaningful only when Error is set.
	ErrorKind ErrorKind
	// RecordID is the new row id for adds and the edited row id for updates.
	RecordID string
}

// Failed reports whether the outcome is an error.
func (o Outcome) Failed() bool {
	return o.Error != ""
}

// Message converts the outcome into the JSON message returned to the plugin host.
func (o Outcome) Message() ToolMessage {
	if o.Failed() {
		return ToolMessage{Error: o.Error}
	}
	return ToolMessage{Result: o.Result}
}
