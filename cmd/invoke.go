package main

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/httprunner/WorksheetAgent/pkg/worksheet"
)

// invokeRequest is the message a plugin host writes to the adapter. Some hosts
// name the mapping "parameters" instead of "tool_parameters".
type invokeRequest struct {
	Tool           string         `json:"tool"`
	ToolParameters map[string]any `json:"tool_parameters"`
	Parameters     map[string]any `json:"parameters"`
}

func (r invokeRequest) parameters() map[string]any {
	if r.ToolParameters != nil {
		return r.ToolParameters
	}
	return r.Parameters
}

func newInvokeCmd() *cobra.Command {
	var flagInput string

	cmd := &cobra.Command{
		Use:   "invoke",
		Short: "Run one tool invocation from a plugin host request",
		Long: `invoke reads {"tool": "add_worksheet_record", "tool_parameters": {...}}
from stdin (or --input) and writes the tool messages as JSON lines. Error
outcomes are regular messages for the host, so the exit status stays zero
unless the request itself cannot be read.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openInput(flagInput, cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer in.Close()

			dec := json.NewDecoder(in)
			dec.UseNumber()
			var req invokeRequest
			if err := dec.Decode(&req); err != nil {
				return errors.Wrap(err, "decode invoke request")
			}
			tool, err := worksheet.LookupTool(newRecordClient(), req.Tool)
			if err != nil {
				return err
			}
			log.Debug().Str("tool", tool.Name()).Msg("invoking tool")
			return writeMessages(cmd.OutOrStdout(), tool.Invoke(cmd.Context(), req.parameters())...)
		},
	}
	cmd.Flags().StringVar(&flagInput, "input", "-", "Request file ('-' for stdin)")

	return cmd
}
