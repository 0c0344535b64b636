package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/seaholm/nostrkit/internal/codec"
)

// EncodedIdentifier is the JSON shape of an encode result.
type EncodedIdentifier struct {
	Identifier string `json:"identifier"`
}

// NewEncodeCommand creates the encode command and its per-prefix
// subcommands.
func NewEncodeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode hex fields into a bech32 identifier",
	}

	cmd.AddCommand(newEncodeNpubCommand(rootOpts))
	cmd.AddCommand(newEncodeNoteCommand(rootOpts))
	cmd.AddCommand(newEncodeNprofileCommand(rootOpts))
	cmd.AddCommand(newEncodeNeventCommand(rootOpts))
	cmd.AddCommand(newEncodeNaddrCommand(rootOpts))

	return cmd
}

func newEncodeNpubCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "npub <pubkey-hex>",
		Short:         "Encode a public key",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return outputEncoded(rootOpts, cmd, func() (string, error) {
				return codec.EncodePublicKey(args[0])
			})
		},
	}
}

func newEncodeNoteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "note <event-id-hex>",
		Short:         "Encode an event id",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return outputEncoded(rootOpts, cmd, func() (string, error) {
				return codec.EncodeNote(args[0])
			})
		},
	}
}

func newEncodeNprofileCommand(rootOpts *RootOptions) *cobra.Command {
	var relays []string
	cmd := &cobra.Command{
		Use:           "nprofile <pubkey-hex>",
		Short:         "Encode a profile pointer with relay hints",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return outputEncoded(rootOpts, cmd, func() (string, error) {
				return codec.EncodeProfile(codec.ProfilePointer{
					PubKey: args[0],
					Relays: relays,
				})
			})
		},
	}
	cmd.Flags().StringArrayVar(&relays, "relay", nil, "relay hint (repeatable)")
	return cmd
}

func newEncodeNeventCommand(rootOpts *RootOptions) *cobra.Command {
	var relays []string
	var author string
	cmd := &cobra.Command{
		Use:           "nevent <event-id-hex>",
		Short:         "Encode an event pointer with relay hints",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return outputEncoded(rootOpts, cmd, func() (string, error) {
				return codec.EncodeEvent(codec.EventPointer{
					ID:     args[0],
					Author: author,
					Relays: relays,
				})
			})
		},
	}
	cmd.Flags().StringArrayVar(&relays, "relay", nil, "relay hint (repeatable)")
	cmd.Flags().StringVar(&author, "author", "", "author public key hex")
	return cmd
}

func newEncodeNaddrCommand(rootOpts *RootOptions) *cobra.Command {
	var relays []string
	var kind int
	var identifier string
	cmd := &cobra.Command{
		Use:           "naddr <pubkey-hex>",
		Short:         "Encode an addressable entity pointer",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return outputEncoded(rootOpts, cmd, func() (string, error) {
				return codec.EncodeEntity(codec.EntityPointer{
					Kind:       kind,
					PubKey:     args[0],
					Identifier: identifier,
					Relays:     relays,
				})
			})
		},
	}
	cmd.Flags().StringArrayVar(&relays, "relay", nil, "relay hint (repeatable)")
	cmd.Flags().IntVar(&kind, "kind", 0, "event kind")
	cmd.Flags().StringVarP(&identifier, "identifier", "d", "", "entity identifier")
	_ = cmd.MarkFlagRequired("kind")
	return cmd
}

func outputEncoded(opts *RootOptions, cmd *cobra.Command, encode func() (string, error)) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	id, err := encode()
	if err != nil {
		var ce *codec.CodecError
		if errors.As(err, &ce) {
			return formatter.Fail(ExitFailure, string(ce.Code), ce.Message, nil)
		}
		return formatter.Fail(ExitFailure, "ENCODE_FAILED", err.Error(), nil)
	}

	return formatter.Success(EncodedIdentifier{Identifier: id}, func(w io.Writer) {
		fmt.Fprintln(w, id)
	})
}
