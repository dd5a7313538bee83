package worksheet

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/httprunner/WorksheetAgent/internal/hapapi"
)

// OperationKind selects which worksheet record call Execute performs.
type OperationKind int

const (
	OperationAdd OperationKind = iota + 1
	OperationUpdate
)

func (k OperationKind) String() string {
	switch k {
	case OperationAdd:
		return "add"
	case OperationUpdate:
		return "update"
	default:
		return fmt.Sprintf("operation(%d)", int(k))
	}
}

func (k OperationKind) valid() bool {
	return k == OperationAdd || k == OperationUpdate
}

func (k OperationKind) failurePrefix() string {
	if k == OperationUpdate {
		return "Failed to update the record"
	}
	return "Failed to add the new record"
}

type requiredParam struct {
	label      string
	updateOnly bool
	value      func(Params) string
}

// Checked in this order; the first empty value wins.
var requiredParams = []requiredParam{
	{label: "App Key", value: func(p Params) string { return p.AppKey }},
	{label: "Sign", value: func(p Params) string { return p.Sign }},
	{label: "Worksheet ID", value: func(p Params) string { return p.WorksheetID }},
	{label: "Record Row ID", updateOnly: true, value: func(p Params) string { return p.RowID }},
	{label: "Record Row Data", value: func(p Params) string { return p.RecordData }},
}

func validate(kind OperationKind, p Params) error {
	for _, req := range requiredParams {
		if req.updateOnly && kind != OperationUpdate {
			continue
		}
		if req.value(p) == "" {
			return hapapi.MissingParameter(req.label)
		}
	}
	return nil
}

// Option customizes a RecordOperationClient.
type Option func(*RecordOperationClient)

// WithHTTPClient replaces the default HTTP client, which times out after
// hapapi.DefaultTimeout and never retries.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *RecordOperationClient) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithVerboseErrors appends stack traces to transport, parse and unexpected
// error messages.
func WithVerboseErrors(verbose bool) Option {
	return func(c *RecordOperationClient) {
		c.verboseErrors = verbose
	}
}

// RecordOperationClient adds or updates one worksheet record per call and
// reports the result as a single Outcome. It keeps no per-call state.
type RecordOperationClient struct {
	httpClient    *http.Client
	verboseErrors bool
}

// NewRecordOperationClient builds a client ready for concurrent use.
func NewRecordOperationClient(opts ...Option) *RecordOperationClient {
	c := &RecordOperationClient{
		httpClient: &http.Client{Timeout: hapapi.DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Execute validates params, performs at most one open API call and returns
// exactly one Outcome. It never returns an error or panics; every failure is
// reported as an error Outcome.
func (c *RecordOperationClient) Execute(ctx context.Context, kind OperationKind, params Params) (outcome Outcome) {
	logger := log.With().
		Str("operation", kind.String()).
		Str("worksheet_id", params.WorksheetID).
		Logger()

	defer func() {
		if r := recover(); r != nil {
			outcome = c.failure(kind, errors.Errorf("panic: %v", r))
		}
		if outcome.Failed() {
			logger.Warn().Str("kind", outcome.ErrorKind.String()).Msg("worksheet record operation failed")
			return
		}
		logger.Info().Str("record_id", outcome.RecordID).Msg("worksheet record operation succeeded")
	}()

	recordID, err := c.run(ctx, kind, params)
	if err != nil {
		return c.failure(kind, err)
	}
	return c.success(kind, recordID)
}

func (c *RecordOperationClient) run(ctx context.Context, kind OperationKind, p Params) (string, error) {
	if !kind.valid() {
		return "", errors.Errorf("unsupported operation %s", kind)
	}
	if err := validate(kind, p); err != nil {
		return "", err
	}
	api, err := hapapi.NewClient(p.Host, hapapi.WithHTTPClient(c.httpClient))
	if err != nil {
		return "", err
	}
	controls, err := hapapi.ParseControls(p.RecordData)
	if err != nil {
		return "", err
	}

	if kind == OperationUpdate {
		return p.RowID, api.EditRow(ctx, hapapi.EditRowRequest{
			AppKey:      p.AppKey,
			Sign:        p.Sign,
			WorksheetID: p.WorksheetID,
			RowID:       p.RowID,
			Controls:    controls,
		})
	}
	return api.AddRow(ctx, hapapi.AddRowRequest{
		AppKey:      p.AppKey,
		Sign:        p.Sign,
		WorksheetID: p.WorksheetID,
		Controls:    controls,
	})
}

func (c *RecordOperationClient) success(kind OperationKind, recordID string) Outcome {
	result := "Record updated successfully."
	if kind == OperationAdd {
		result = fmt.Sprintf("New record added successfully. The record ID is %s.", recordID)
	}
	return Outcome{Operation: kind, Result: result, RecordID: recordID}
}

func (c *RecordOperationClient) failure(kind OperationKind, err error) Outcome {
	prefix := kind.failurePrefix()
	unexpected := Outcome{
		Operation: kind,
		ErrorKind: hapapi.KindUnexpected,
		Error:     fmt.Sprintf("%s, unexpected error: %s", prefix, c.detail(err)),
	}

	apiErr, ok := hapapi.AsError(err)
	if !ok {
		return unexpected
	}
	out := Outcome{Operation: kind, ErrorKind: apiErr.Kind}
	switch apiErr.Kind {
	case hapapi.KindMissingParameter:
		out.Error = "Invalid parameter " + apiErr.Msg
	case hapapi.KindInvalidHost:
		out.Error = "Invalid parameter Host Address"
	case hapapi.KindPayloadParse:
		if apiErr.Op == hapapi.OpParseRecordData {
			out.Error = "Failed to parse record data JSON: " + c.detail(err)
		} else {
			out.Error = "Failed to parse JSON response: " + c.detail(err)
		}
	case hapapi.KindTransport:
		out.Error = fmt.Sprintf("%s, request error: %s", prefix, c.detail(err))
	case hapapi.KindBusiness:
		out.Error = fmt.Sprintf("%s. %s", prefix, apiErr.Error())
	default:
		return unexpected
	}
	return out
}

func (c *RecordOperationClient) detail(err error) string {
	if !c.verboseErrors {
		return err.Error()
	}
	return fmt.Sprintf("%v\nStack trace:\n%+v", err, err)
}
