package main

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/httprunner/WorksheetAgent/internal/config"
	"github.com/httprunner/WorksheetAgent/pkg/worksheet"
)

// errOperationFailed marks a command whose outcome message was an error. The
// message itself is already on stdout.
var errOperationFailed = errors.New("worksheet operation failed")

// firstNonEmpty returns the first value that is not blank, unchanged.
func firstNonEmpty(values ...string) string {
	for _, val := range values {
		if strings.TrimSpace(val) != "" {
			return val
		}
	}
	return ""
}

func newRecordClient() *worksheet.RecordOperationClient {
	verbose := rootVerboseErrors || config.Bool(config.EnvVerboseErrors, false)
	return worksheet.NewRecordOperationClient(worksheet.WithVerboseErrors(verbose))
}

// openInput returns stdin for "-" and the named file otherwise.
func openInput(path string, stdin io.Reader) (io.ReadCloser, error) {
	if strings.TrimSpace(path) == "-" {
		return io.NopCloser(stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	return f, nil
}

func writeMessages(w io.Writer, msgs ...worksheet.ToolMessage) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, msg := range msgs {
		if err := enc.Encode(msg); err != nil {
			return errors.Wrap(err, "write message")
		}
	}
	return nil
}
