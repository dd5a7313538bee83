package worksheet

import (
	"context"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Tool names registered with the plugin host.
const (
	ToolAddWorksheetRecord    = "add_worksheet_record"
	ToolUpdateWorksheetRecord = "update_worksheet_record"
)

// ToolMessage is one JSON message yielded back to the plugin host. Exactly one
// of Result and Error is set.
type ToolMessage struct {
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Tool adapts a record operation to the host's invoke contract.
type Tool interface {
	Name() string
	// Invoke always yields exactly one message.
	Invoke(ctx context.Context, parameters map[string]any) []ToolMessage
}

type recordTool struct {
	name   string
	kind   OperationKind
	client *RecordOperationClient
}

func (t recordTool) Name() string {
	return t.name
}

func (t recordTool) Invoke(ctx context.Context, parameters map[string]any) []ToolMessage {
	outcome := t.client.Execute(ctx, t.kind, ParamsFromMap(parameters))
	return []ToolMessage{outcome.Message()}
}

// AddWorksheetRecordTool exposes OperationAdd as the add_worksheet_record tool.
func AddWorksheetRecordTool(client *RecordOperationClient) Tool {
	return recordTool{name: ToolAddWorksheetRecord, kind: OperationAdd, client: ensureClient(client)}
}

// UpdateWorksheetRecordTool exposes OperationUpdate as the update_worksheet_record tool.
func UpdateWorksheetRecordTool(client *RecordOperationClient) Tool {
	return recordTool{name: ToolUpdateWorksheetRecord, kind: OperationUpdate, client: ensureClient(client)}
}

// Tools returns every tool backed by client.
func Tools(client *RecordOperationClient) []Tool {
	return []Tool{AddWorksheetRecordTool(client), UpdateWorksheetRecordTool(client)}
}

// LookupTool finds a tool by name (case-insensitive).
func LookupTool(client *RecordOperationClient, name string) (Tool, error) {
	wanted := strings.ToLower(strings.TrimSpace(name))
	names := make([]string, 0, 2)
	for _, tool := range Tools(client) {
		if tool.Name() == wanted {
			return tool, nil
		}
		names = append(names, tool.Name())
	}
	sort.Strings(names)
	return nil, errors.Errorf("unknown tool %q (available: %s)", name, strings.Join(names, ", "))
}

func ensureClient(client *RecordOperationClient) *RecordOperationClient {
	if client == nil {
		return NewRecordOperationClient()
	}
	return client
}
