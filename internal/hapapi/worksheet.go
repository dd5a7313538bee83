package hapapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	addRowPath  = "/v2/open/worksheet/addRow"
	editRowPath = "/v2/open/worksheet/editRow"

	// successCode is the error_code the open API returns on success.
	successCode = 1
)

// Envelope is the response wrapper shared by the open worksheet endpoints.
type Envelope struct {
	ErrorCode json.Number     `json:"error_code"`
	ErrorMsg  string          `json:"error_msg,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// Succeeded compares error_code numerically, so 1 and 1.0 both succeed. A
// missing error_code is a failure.
func (e *Envelope) Succeeded() bool {
	code, err := e.ErrorCode.Float64()
	return err == nil && code == successCode
}

func (e *Envelope) code() int {
	code, err := e.ErrorCode.Float64()
	if err != nil {
		return 0
	}
	return int(code)
}

// AddRowRequest is the addRow body.
type AddRowRequest struct {
	AppKey      string `json:"appKey"`
	Sign        string `json:"sign"`
	WorksheetID string `json:"worksheetId"`
	Controls    any    `json:"controls"`
}

// EditRowRequest is the editRow body.
type EditRowRequest struct {
	AppKey      string `json:"appKey"`
	Sign        string `json:"sign"`
	WorksheetID string `json:"worksheetId"`
	RowID       string `json:"rowId"`
	Controls    any    `json:"controls"`
}

// ParseControls decodes record data into the controls value sent upstream.
// Numbers are kept as json.Number so large ids survive the round trip.
func ParseControls(recordData string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(recordData))
	dec.UseNumber()
	var controls any
	if err := dec.Decode(&controls); err != nil {
		return nil, newError(KindPayloadParse, OpParseRecordData, errors.Wrap(err, "record data is not valid JSON"))
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, newError(KindPayloadParse, OpParseRecordData, errors.New("record data has trailing content after the JSON value"))
	}
	return controls, nil
}

// AddRow creates a record and returns the new row id reported in data.
func (c *Client) AddRow(ctx context.Context, req AddRowRequest) (string, error) {
	log.Debug().
		Str("url", c.baseURL+addRowPath).
		Str("worksheet_id", req.WorksheetID).
		Msg("adding worksheet row")
	env, err := c.postWorksheet(ctx, addRowPath, req)
	if err != nil {
		return "", err
	}
	return DataString(env.Data), nil
}

// EditRow updates the controls of an existing record.
func (c *Client) EditRow(ctx context.Context, req EditRowRequest) error {
	log.Debug().
		Str("url", c.baseURL+editRowPath).
		Str("worksheet_id", req.WorksheetID).
		Str("row_id", req.RowID).
		Msg("editing worksheet row")
	_, err := c.postWorksheet(ctx, editRowPath, req)
	return err
}

func (c *Client) postWorksheet(ctx context.Context, path string, payload any) (*Envelope, error) {
	raw, err := c.doJSONRequest(ctx, path, payload)
	if err != nil {
		return nil, err
	}
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, newError(KindPayloadParse, OpDecodeResponse, errors.Wrap(err, "decode worksheet response"))
	}
	if !env.Succeeded() {
		return &env, &Error{Kind: KindBusiness, Op: OpRequest, Code: env.code(), Msg: strings.TrimSpace(env.ErrorMsg)}
	}
	return &env, nil
}

// DataString renders the data field for humans: JSON strings are unquoted,
// null or missing data is empty, anything else is compact JSON.
func DataString(data json.RawMessage) string {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	var text string
	if err := json.Unmarshal(trimmed, &text); err == nil {
		return text
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return string(trimmed)
	}
	return buf.String()
}
