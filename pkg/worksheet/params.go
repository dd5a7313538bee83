package worksheet

import (
	"encoding/json"
	"fmt"
)

// Parameter names as delivered by the plugin host.
const (
	ParamAppKey      = "appkey"
	ParamSign        = "sign"
	ParamWorksheetID = "worksheet_id"
	ParamRowID       = "row_id"
	ParamRecordData  = "record_data"
	ParamHost        = "host"
)

// Params carries the caller-supplied inputs of one record operation.
// RowID is only read by OperationUpdate. Values are sent as given; only the
// empty string counts as missing.
type Params struct {
	AppKey      string
	Sign        string
	WorksheetID string
	RowID       string
	RecordData  string
	Host        string
}

// ParamsFromMap converts a host parameter mapping into Params.
//
// Missing keys and nil values become empty strings. Strings are kept
// verbatim. Host runtimes sometimes pass record_data already decoded, so
// objects and arrays are re-encoded as JSON; other scalars are formatted with
// fmt.
func ParamsFromMap(values map[string]any) Params {
	return Params{
		AppKey:      stringParam(values[ParamAppKey]),
		Sign:        stringParam(values[ParamSign]),
		WorksheetID: stringParam(values[ParamWorksheetID]),
		RowID:       stringParam(values[ParamRowID]),
		RecordData:  recordDataParam(values[ParamRecordData]),
		Host:        stringParam(values[ParamHost]),
	}
}

func stringParam(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func recordDataParam(value any) string {
	switch value.(type) {
	case map[string]any, []any:
		raw, err := json.Marshal(value)
		if err != nil {
			return stringParam(value)
		}
		return string(raw)
	default:
		return stringParam(value)
	}
}
