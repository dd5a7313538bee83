package main

import (
	"io"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/httprunner/WorksheetAgent/internal/config"
	"github.com/httprunner/WorksheetAgent/pkg/worksheet"
)

type recordFlags struct {
	appKey      string
	sign        string
	worksheetID string
	rowID       string
	recordData  string
	recordFile  string
	host        string
}

func (f recordFlags) params(stdin io.Reader) (worksheet.Params, error) {
	recordData := f.recordData
	if f.recordFile != "" {
		if recordData != "" {
			return worksheet.Params{}, errors.New("--record-data and --record-file are mutually exclusive")
		}
		in, err := openInput(f.recordFile, stdin)
		if err != nil {
			return worksheet.Params{}, err
		}
		defer in.Close()
		raw, err := io.ReadAll(in)
		if err != nil {
			return worksheet.Params{}, errors.Wrapf(err, "read %s", f.recordFile)
		}
		recordData = string(raw)
	}
	return worksheet.Params{
		AppKey:      firstNonEmpty(f.appKey, config.FirstString(config.AppKeyVars...)),
		Sign:        firstNonEmpty(f.sign, config.FirstString(config.SignVars...)),
		WorksheetID: f.worksheetID,
		RowID:       f.rowID,
		RecordData:  recordData,
		Host:        firstNonEmpty(f.host, config.FirstString(config.HostVars...)),
	}, nil
}

func newAddRowCmd() *cobra.Command {
	return newRecordCmd(worksheet.OperationAdd)
}

func newUpdateRowCmd() *cobra.Command {
	return newRecordCmd(worksheet.OperationUpdate)
}

func newRecordCmd(kind worksheet.OperationKind) *cobra.Command {
	var flags recordFlags

	cmd := &cobra.Command{
		Use:   "add-row",
		Short: "Add a record to a worksheet (POST /v2/open/worksheet/addRow)",
		Example: `  hapworksheet add-row --worksheet-id orders \
    --record-data '[{"controlId":"title","value":"hello"}]'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := flags.params(cmd.InOrStdin())
			if err != nil {
				return err
			}
			outcome := newRecordClient().Execute(cmd.Context(), kind, params)
			if err := writeMessages(cmd.OutOrStdout(), outcome.Message()); err != nil {
				return err
			}
			if outcome.Failed() {
				log.Debug().Str("kind", outcome.ErrorKind.String()).Msg("outcome reported an error")
				return errOperationFailed
			}
			return nil
		},
	}
	if kind == worksheet.OperationUpdate {
		cmd.Use = "update-row"
		cmd.Short = "Update a worksheet record (POST /v2/open/worksheet/editRow)"
		cmd.Example = `  hapworksheet update-row --worksheet-id orders --row-id 6f1c... \
    --record-file controls.json`
		cmd.Flags().StringVar(&flags.rowID, "row-id", "", "Record row id to update")
	}

	cmd.Flags().StringVar(&flags.appKey, "appkey", "", "App key overriding $HAP_APP_KEY / $MINGDAO_APP_KEY / $APPKEY")
	cmd.Flags().StringVar(&flags.sign, "sign", "", "Signature overriding $HAP_SIGN / $MINGDAO_SIGN / $SIGN")
	cmd.Flags().StringVar(&flags.worksheetID, "worksheet-id", "", "Worksheet id or alias")
	cmd.Flags().StringVar(&flags.recordData, "record-data", "", "Record controls as a JSON string")
	cmd.Flags().StringVar(&flags.recordFile, "record-file", "", "Read record controls JSON from a file ('-' for stdin)")
	cmd.Flags().StringVar(&flags.host, "host", "", "Private deployment host, e.g. https://hap.example.com (overrides $HAP_HOST / $MINGDAO_HOST)")

	return cmd
}
