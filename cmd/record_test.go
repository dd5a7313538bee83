package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/httprunner/WorksheetAgent/internal/config"
	"github.com/httprunner/WorksheetAgent/pkg/worksheet"
)

func clearCredentialEnv(t *testing.T) {
	t.Helper()
	keys := []string{config.EnvVerboseErrors}
	keys = append(keys, config.AppKeyVars...)
	keys = append(keys, config.SignVars...)
	keys = append(keys, config.HostVars...)
	for _, key := range keys {
		t.Setenv(key, "")
	}
}

func newWorksheetServer(t *testing.T, response string) (*httptest.Server, <-chan map[string]any) {
	t.Helper()
	bodies := make(chan map[string]any, 4)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		bodies <- body
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(server.Close)
	return server, bodies
}

func decodeMessage(t *testing.T, out *bytes.Buffer) worksheet.ToolMessage {
	t.Helper()
	var msg worksheet.ToolMessage
	if err := json.Unmarshal(bytes.TrimSpace(out.Bytes()), &msg); err != nil {
		t.Fatalf("stdout is not a single JSON message: %q (%v)", out.String(), err)
	}
	return msg
}

func prepareCmd(cmd *cobra.Command, out *bytes.Buffer, stdin string, args ...string) {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.SetOut(out)
	cmd.SetIn(strings.NewReader(stdin))
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
}

func TestAddRowCmdUsesEnvCredentials(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv(config.EnvAppKeyAlias, "env-key")
	t.Setenv(config.EnvSign, "env-sign")

	server, bodies := newWorksheetServer(t, `{"error_code":1,"data":"row-1"}`)

	var out bytes.Buffer
	cmd := newAddRowCmd()
	prepareCmd(cmd, &out, "", "--worksheet-id", "ws", "--record-data", `{"title":"x"}`, "--host", server.URL)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("add-row returned error: %v", err)
	}
	msg := decodeMessage(t, &out)
	if msg.Result != "New record added successfully. The record ID is row-1." {
		t.Fatalf("unexpected message %#v", msg)
	}
	body := <-bodies
	if body["appKey"] != "env-key" || body["sign"] != "env-sign" {
		t.Fatalf("expected env credentials in payload, got %#v", body)
	}
}

func TestAddRowCmdUsesMingdaoEnv(t *testing.T) {
	clearCredentialEnv(t)
	server, bodies := newWorksheetServer(t, `{"error_code":1,"data":"row-2"}`)
	t.Setenv(config.EnvAppKeyMingdao, "md-key")
	t.Setenv(config.EnvAppKeyAlias, "plain-key")
	t.Setenv(config.EnvSignMingdao, "md-sign")
	t.Setenv(config.EnvHostMingdao, server.URL)

	var out bytes.Buffer
	cmd := newAddRowCmd()
	prepareCmd(cmd, &out, "", "--worksheet-id", "ws", "--record-data", `[]`)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("add-row returned error: %v", err)
	}
	body := <-bodies
	if body["appKey"] != "md-key" || body["sign"] != "md-sign" {
		t.Fatalf("expected MINGDAO_* credentials in payload, got %#v", body)
	}
}

func TestRecordFlagsKeepFlagValues(t *testing.T) {
	clearCredentialEnv(t)
	params, err := recordFlags{appKey: " k ", sign: "s", worksheetID: " ws"}.params(strings.NewReader(""))
	if err != nil {
		t.Fatalf("params returned error: %v", err)
	}
	if params.AppKey != " k " || params.WorksheetID != " ws" {
		t.Fatalf("flag values were modified: %#v", params)
	}
}

func TestUpdateRowCmdReportsErrorOutcome(t *testing.T) {
	clearCredentialEnv(t)

	var out bytes.Buffer
	cmd := newUpdateRowCmd()
	prepareCmd(cmd, &out, "", "--appkey", "k", "--sign", "s", "--worksheet-id", "ws", "--record-data", `{}`)
	err := cmd.ExecuteContext(context.Background())
	if !errors.Is(err, errOperationFailed) {
		t.Fatalf("expected errOperationFailed, got %v", err)
	}
	if msg := decodeMessage(t, &out); msg.Error != "Invalid parameter Record Row ID" {
		t.Fatalf("unexpected message %#v", msg)
	}
}

func TestUpdateRowCmdReadsRecordFile(t *testing.T) {
	clearCredentialEnv(t)
	server, bodies := newWorksheetServer(t, `{"error_code":1,"data":true}`)

	path := filepath.Join(t.TempDir(), "controls.json")
	if err := os.WriteFile(path, []byte(`[{"controlId":"status","value":"done"}]`), 0o600); err != nil {
		t.Fatalf("write controls: %v", err)
	}

	var out bytes.Buffer
	cmd := newUpdateRowCmd()
	prepareCmd(cmd, &out, "", "--appkey", "k", "--sign", "s", "--worksheet-id", "ws", "--row-id", "r1", "--record-file", path, "--host", server.URL+"/")
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("update-row returned error: %v", err)
	}
	if msg := decodeMessage(t, &out); msg.Result != "Record updated successfully." {
		t.Fatalf("unexpected message %#v", msg)
	}
	if body := <-bodies; body["rowId"] != "r1" {
		t.Fatalf("unexpected payload %#v", body)
	}
}

func TestRecordFlagsRejectBothDataSources(t *testing.T) {
	_, err := recordFlags{recordData: "{}", recordFile: "-"}.params(strings.NewReader("{}"))
	if err == nil {
		t.Fatalf("expected error when both --record-data and --record-file are set")
	}
}

func TestInvokeCmdWritesSingleMessage(t *testing.T) {
	clearCredentialEnv(t)
	server, _ := newWorksheetServer(t, `{"error_code":0,"error_msg":"dup"}`)

	request := `{"tool":"update_worksheet_record","tool_parameters":{"appkey":"k","sign":"s","worksheet_id":"ws","row_id":"r","record_data":"{\"a\":1}","host":"` + server.URL + `"}}`
	var out bytes.Buffer
	cmd := newInvokeCmd()
	prepareCmd(cmd, &out, request)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("invoke returned error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one message line, got %q", out.String())
	}
	if msg := decodeMessage(t, &out); msg.Error != "Failed to update the record. dup" {
		t.Fatalf("unexpected message %#v", msg)
	}
}

func TestInvokeCmdUnknownTool(t *testing.T) {
	var out bytes.Buffer
	cmd := newInvokeCmd()
	prepareCmd(cmd, &out, `{"tool":"drop_table","parameters":{}}`)
	if err := cmd.ExecuteContext(context.Background()); err == nil {
		t.Fatalf("expected error for unknown tool")
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output, got %q", out.String())
	}
}

func TestSetLogLevel(t *testing.T) {
	if err := setLogLevel("DEBUG"); err != nil {
		t.Fatalf("setLogLevel returned error: %v", err)
	}
	if err := setLogLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	_ = setLogLevel("info")
}
