package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/seaholm/nostrkit/internal/cache"
	"github.com/seaholm/nostrkit/internal/config"
	"github.com/seaholm/nostrkit/internal/event"
	"github.com/seaholm/nostrkit/internal/relay"
	"github.com/seaholm/nostrkit/internal/resolve"
)

const (
	snapshotIndexName   = "index"
	snapshotProfileName = "profiles"
)

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	var timeout time.Duration
	var endpointTimeout time.Duration

	cmd := &cobra.Command{
		Use:   "resolve <identifier|hex|search text>",
		Short: "Resolve an identifier to a verified event",
		Long: `Resolve input to a verified event by querying the configured source
groups in priority order. Input may be a bech32 identifier, a 64-hex
digest, or free search text. Relay hints embedded in the identifier
are tried before configured groups.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(rootOpts, args[0], timeout, endpointTimeout, cmd)
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "overall resolution budget (0 = unbounded)")
	cmd.Flags().DurationVar(&endpointTimeout, "endpoint-timeout", 0, "per-endpoint query budget (0 = config default)")
	return cmd
}

func runResolve(opts *RootOptions, input string, timeout, endpointTimeout time.Duration, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg := config.Default()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			if outErr := formatter.Error("CONFIG_INVALID", err.Error(), nil); outErr != nil {
				return outErr
			}
			return WrapExitError(ExitCommandError, "load config", err)
		}
		cfg = loaded
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	resolver, persist, err := buildResolver(ctx, cfg, formatter)
	if err != nil {
		if outErr := formatter.Error("SNAPSHOT_FAILED", err.Error(), nil); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitCommandError, "open cache snapshot", err)
	}

	formatter.VerboseLog("resolving %q across %d group(s)", input, len(cfg.Groups))

	ev, err := resolver.Resolve(ctx, input, resolve.Options{
		Timeout:         timeout,
		EndpointTimeout: endpointTimeout,
	})
	if persistErr := persist(ctx); persistErr != nil {
		formatter.VerboseLog("cache snapshot save failed: %v", persistErr)
	}
	if err != nil {
		var re *resolve.ResolveError
		if errors.As(err, &re) {
			return formatter.Fail(ExitFailure, string(re.Code), re.Message, re.Input)
		}
		return formatter.Fail(ExitFailure, "RESOLVE_FAILED", err.Error(), nil)
	}

	return formatter.Success(ev, func(w io.Writer) {
		writeEventText(w, ev)
	})
}

// buildResolver assembles the resolver from config, restoring cached
// resolutions from the snapshot file when one is configured. The
// returned persist function saves the caches back; it is a no-op
// without a snapshot path.
func buildResolver(ctx context.Context, cfg config.Config, formatter *OutputFormatter) (*resolve.Resolver, func(context.Context) error, error) {
	dialer := &relay.WebsocketDialer{}
	opts := cfg.ResolveOptions()

	noPersist := func(context.Context) error { return nil }
	if cfg.Cache.SnapshotPath == "" {
		return resolve.New(dialer, cfg.SourceGroups(), opts...), noPersist, nil
	}

	index := cache.New[event.Event](cfg.Cache.TTL.Std(), cfg.Cache.IndexSize)
	profiles := cache.New[event.Event](cfg.Cache.TTL.Std(), cfg.Cache.ProfileSize)
	results := cache.New[[]event.Event](cfg.Cache.TTL.Std(), cfg.Cache.SearchSize)

	snap, err := cache.OpenSnapshot(cfg.Cache.SnapshotPath)
	if err != nil {
		return nil, nil, err
	}
	if err := cache.Load(ctx, snap, snapshotIndexName, index); err != nil {
		formatter.VerboseLog("index cache restore failed: %v", err)
	}
	if err := cache.Load(ctx, snap, snapshotProfileName, profiles); err != nil {
		formatter.VerboseLog("profile cache restore failed: %v", err)
	}

	opts = append(opts, resolve.WithCaches(index, profiles, results))
	persist := func(ctx context.Context) error {
		defer snap.Close()
		if err := cache.Save(ctx, snap, snapshotIndexName, index); err != nil {
			return err
		}
		return cache.Save(ctx, snap, snapshotProfileName, profiles)
	}
	return resolve.New(dialer, cfg.SourceGroups(), opts...), persist, nil
}

func writeEventText(w io.Writer, ev *event.Event) {
	fmt.Fprintf(w, "id: %s\n", ev.ID)
	fmt.Fprintf(w, "pubkey: %s\n", ev.PubKey)
	fmt.Fprintf(w, "kind: %d\n", ev.Kind)
	fmt.Fprintf(w, "created_at: %d\n", ev.CreatedAt)
	for _, tag := range ev.Tags {
		data, _ := json.Marshal(tag)
		fmt.Fprintf(w, "tag: %s\n", data)
	}
	fmt.Fprintf(w, "content: %s\n", ev.Content)
}
