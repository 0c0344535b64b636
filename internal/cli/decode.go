package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/seaholm/nostrkit/internal/codec"
)

// DecodedReference is the JSON shape of a decoded identifier.
type DecodedReference struct {
	Type       string   `json:"type"`
	PubKey     string   `json:"pubkey,omitempty"`
	ID         string   `json:"id,omitempty"`
	Author     string   `json:"author,omitempty"`
	Kind       *int     `json:"kind,omitempty"`
	Identifier string   `json:"identifier,omitempty"`
	Relays     []string `json:"relays,omitempty"`
}

// NewDecodeCommand creates the decode command.
func NewDecodeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "decode <identifier>",
		Short: "Decode a bech32 identifier into its typed fields",
		Long: `Decode an npub, note, nprofile, nevent, or naddr identifier and print
its fields. A nostr: prefix is accepted and stripped. Private key
identifiers (nsec) are refused.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(rootOpts, args[0], cmd)
		},
	}
}

func runDecode(opts *RootOptions, input string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	ref, err := codec.Decode(input)
	if err != nil {
		var ce *codec.CodecError
		if errors.As(err, &ce) {
			return formatter.Fail(ExitFailure, string(ce.Code), ce.Message, nil)
		}
		return formatter.Fail(ExitFailure, "DECODE_FAILED", err.Error(), nil)
	}

	view := referenceView(ref)
	return formatter.Success(view, func(w io.Writer) {
		writeReferenceText(w, view)
	})
}

func referenceView(ref codec.Reference) DecodedReference {
	switch v := ref.(type) {
	case codec.PublicKey:
		return DecodedReference{Type: "npub", PubKey: v.PubKey}
	case codec.NoteID:
		return DecodedReference{Type: "note", ID: v.ID}
	case codec.ProfilePointer:
		return DecodedReference{Type: "nprofile", PubKey: v.PubKey, Relays: v.Relays}
	case codec.EventPointer:
		return DecodedReference{Type: "nevent", ID: v.ID, Author: v.Author, Relays: v.Relays}
	case codec.EntityPointer:
		kind := v.Kind
		return DecodedReference{
			Type:       "naddr",
			PubKey:     v.PubKey,
			Kind:       &kind,
			Identifier: v.Identifier,
			Relays:     v.Relays,
		}
	default:
		return DecodedReference{Type: ref.Prefix()}
	}
}

func writeReferenceText(w io.Writer, view DecodedReference) {
	fmt.Fprintf(w, "type: %s\n", view.Type)
	if view.PubKey != "" {
		fmt.Fprintf(w, "pubkey: %s\n", view.PubKey)
	}
	if view.ID != "" {
		fmt.Fprintf(w, "id: %s\n", view.ID)
	}
	if view.Author != "" {
		fmt.Fprintf(w, "author: %s\n", view.Author)
	}
	if view.Kind != nil {
		fmt.Fprintf(w, "kind: %d\n", *view.Kind)
	}
	if view.Identifier != "" {
		fmt.Fprintf(w, "identifier: %s\n", view.Identifier)
	}
	for _, relay := range view.Relays {
		fmt.Fprintf(w, "relay: %s\n", relay)
	}
}
