package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/seaholm/nostrkit/internal/event"
)

// VerificationReport is the JSON shape of a verify result.
type VerificationReport struct {
	Valid            bool     `json:"valid"`
	IDMatches        bool     `json:"id_matches"`
	SignatureValid   bool     `json:"signature_valid"`
	ComputedID       string   `json:"computed_id,omitempty"`
	StructuralErrors []string `json:"structural_errors,omitempty"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <event.json>",
		Short: "Verify an event's structure, id, and signature",
		Long: `Verify a JSON event: structural validation, recomputation of the id
over the canonical serialization, and Schnorr signature verification.
Pass - to read the event from stdin. Exits non-zero when any check
fails.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(rootOpts, args[0], cmd)
		},
	}
}

func runVerify(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	ev, err := readEvent(path, cmd.InOrStdin())
	if err != nil {
		if outErr := formatter.Error("READ_FAILED", err.Error(), nil); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitCommandError, "read event", err)
	}

	report := buildReport(ev)
	formatter.VerboseLog("computed id: %s", report.ComputedID)

	if !report.Valid {
		if err := formatter.Success(report, func(w io.Writer) {
			writeReportText(w, report)
		}); err != nil {
			return err
		}
		return NewExitError(ExitFailure, "event failed verification")
	}

	return formatter.Success(report, func(w io.Writer) {
		writeReportText(w, report)
	})
}

func readEvent(path string, stdin io.Reader) (*event.Event, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	var ev event.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("parse event JSON: %w", err)
	}
	return &ev, nil
}

func buildReport(ev *event.Event) VerificationReport {
	report := VerificationReport{}

	structure := event.ValidateStructure(ev)
	report.StructuralErrors = structure.Errors

	if id, err := event.ComputeID(ev); err == nil {
		report.ComputedID = id
		report.IDMatches = id == ev.ID
	}
	report.SignatureValid = event.Verify(ev)
	report.Valid = structure.Valid && report.IDMatches && report.SignatureValid

	return report
}

func writeReportText(w io.Writer, report VerificationReport) {
	status := "INVALID"
	if report.Valid {
		status = "OK"
	}
	fmt.Fprintf(w, "verification: %s\n", status)
	fmt.Fprintf(w, "id matches: %v\n", report.IDMatches)
	fmt.Fprintf(w, "signature valid: %v\n", report.SignatureValid)
	for _, msg := range report.StructuralErrors {
		fmt.Fprintf(w, "structural: %s\n", msg)
	}
}
