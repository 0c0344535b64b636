package resolve

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/seaholm/nostrkit/internal/cache"
	"github.com/seaholm/nostrkit/internal/codec"
	"github.com/seaholm/nostrkit/internal/event"
	"github.com/seaholm/nostrkit/internal/relay"
)

const (
	// DefaultEndpointTimeout bounds a single endpoint query when the
	// caller supplies no per-endpoint budget.
	DefaultEndpointTimeout = 6 * time.Second

	// DefaultCacheTTL is the lifetime of cached resolutions.
	DefaultCacheTTL = 5 * time.Minute

	// DefaultIndexCacheSize bounds the event and entity result cache.
	DefaultIndexCacheSize = 32

	// DefaultProfileCacheSize bounds the profile result cache. Profiles
	// are re-resolved far more often than individual events, so the
	// bound is wider.
	DefaultProfileCacheSize = 128

	// DefaultSearchCacheSize bounds the free-text result cache.
	DefaultSearchCacheSize = 32

	// searchLimit caps how many events a single search asks a relay for.
	searchLimit = 24

	// hintGroupName labels the synthetic group built from relay hints
	// embedded in an identifier. It always runs before configured groups.
	hintGroupName = "hints"
)

// Options tunes a single resolution.
type Options struct {
	// Timeout bounds the whole resolution across every group. Expiry
	// settles the resolution as not found. Zero means no overall bound.
	Timeout time.Duration

	// EndpointTimeout bounds each endpoint query. Zero uses the
	// resolver's default.
	EndpointTimeout time.Duration
}

// Resolver turns decoded references and raw text into verified events by
// querying prioritized groups of relay endpoints.
//
// Within a group all endpoints race; across groups the search is
// sequential in descending priority, stopping at the first verified
// match. Every candidate passes structural validation and signature
// verification before it can settle a resolution, so a relay returning
// tampered payloads degrades to not-found rather than bad data.
type Resolver struct {
	dialer relay.Dialer
	groups []Group

	index    *cache.Cache[event.Event]
	profiles *cache.Cache[event.Event]
	results  *cache.Cache[[]event.Event]

	endpointTimeout time.Duration
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithEndpointTimeout overrides the default per-endpoint query budget.
func WithEndpointTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.endpointTimeout = d
		}
	}
}

// WithCaches replaces the default result caches. Useful for restoring a
// snapshot or tuning bounds; nil arguments keep the defaults.
func WithCaches(index, profiles *cache.Cache[event.Event], results *cache.Cache[[]event.Event]) Option {
	return func(r *Resolver) {
		if index != nil {
			r.index = index
		}
		if profiles != nil {
			r.profiles = profiles
		}
		if results != nil {
			r.results = results
		}
	}
}

// New builds a Resolver over the given source groups. Groups are
// reordered by descending priority; endpoints are normalized and
// deduplicated once here rather than on every resolution.
func New(dialer relay.Dialer, groups []Group, opts ...Option) *Resolver {
	r := &Resolver{
		dialer:          dialer,
		groups:          orderGroups(groups),
		index:           cache.New[event.Event](DefaultCacheTTL, DefaultIndexCacheSize),
		profiles:        cache.New[event.Event](DefaultCacheTTL, DefaultProfileCacheSize),
		results:         cache.New[[]event.Event](DefaultCacheTTL, DefaultSearchCacheSize),
		endpointTimeout: DefaultEndpointTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve interprets input as an identifier, a hex digest, or literal
// search text, and resolves it to a single verified event.
func (r *Resolver) Resolve(ctx context.Context, input string, opts Options) (*event.Event, error) {
	req, err := interpretInput(input)
	if err != nil {
		return nil, err
	}

	if req.kind == reqSearch {
		evs, err := r.search(ctx, input, req, opts)
		if err != nil {
			return nil, err
		}
		ev := evs[0]
		return &ev, nil
	}

	return r.run(ctx, input, req, opts)
}

// ResolveReference resolves an already decoded reference, skipping the
// text interpretation step.
func (r *Resolver) ResolveReference(ctx context.Context, ref codec.Reference, opts Options) (*event.Event, error) {
	req, err := fromReference(ref)
	if err != nil {
		return nil, err
	}
	return r.run(ctx, ref.Prefix(), req, opts)
}

// ResolveFilter resolves an arbitrary filter to its first verified
// match. Results are not cached: the caller owns the filter's meaning.
func (r *Resolver) ResolveFilter(ctx context.Context, f relay.Filter, opts Options) (*event.Event, error) {
	req := request{kind: reqFilter, filters: []relay.Filter{f}}
	return r.run(ctx, "filter", req, opts)
}

// Search resolves free text to the matching events from the first group
// that produces any.
func (r *Resolver) Search(ctx context.Context, term string, opts Options) ([]event.Event, error) {
	req, err := interpretInput(term)
	if err != nil {
		return nil, err
	}
	if req.kind != reqSearch {
		// The term decoded as an identifier or digest; resolve it and
		// present the single result as a one-element set.
		ev, err := r.run(ctx, term, req, opts)
		if err != nil {
			return nil, err
		}
		return []event.Event{*ev}, nil
	}
	return r.search(ctx, term, req, opts)
}

// run executes a single-event resolution: cache consult, group
// iteration, terminal classification, cache fill.
func (r *Resolver) run(ctx context.Context, input string, req request, opts Options) (*event.Event, error) {
	if ev, ok := r.cached(req); ok {
		slog.Debug("resolution served from cache", "input", input)
		return ev, nil
	}

	qctx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		qctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	ev, err := r.queryGroups(qctx, req, r.endpointBudget(opts))
	if err != nil {
		if cause := ctx.Err(); cause != nil {
			return nil, cancelled(input, cause)
		}
		// The overall budget expired; exhaustion, not cancellation.
		return nil, notFound(input)
	}
	if ev == nil {
		// A drained race can surface no event even when the caller has
		// already cancelled; cancellation still wins over exhaustion.
		if cause := ctx.Err(); cause != nil {
			return nil, cancelled(input, cause)
		}
		return nil, notFound(input)
	}

	r.store(req, ev)
	return ev, nil
}

// queryGroups walks the source groups in order, racing each group's
// endpoints and returning the first verified match. Relay hints carried
// by the identifier form a synthetic leading group.
func (r *Resolver) queryGroups(ctx context.Context, req request, timeout time.Duration) (*event.Event, error) {
	groups := r.groupsFor(req)
	for _, g := range groups {
		if len(g.Endpoints) == 0 {
			slog.Debug("skipping empty source group", "group", g.Name)
			continue
		}
		ev, err := r.raceGroup(ctx, g, req, timeout)
		if err != nil {
			return nil, err
		}
		if ev != nil {
			slog.Debug("resolution settled", "group", g.Name, "id", ev.ID, "kind", ev.Kind)
			return ev, nil
		}
	}
	return nil, nil
}

func (r *Resolver) groupsFor(req request) []Group {
	if len(req.hints) == 0 {
		return r.groups
	}
	groups := make([]Group, 0, len(r.groups)+1)
	groups = append(groups, Group{Name: hintGroupName, Endpoints: normalizeEndpoints(req.hints)})
	return append(groups, r.groups...)
}

// raceGroup queries every endpoint of one group concurrently and
// returns the first acceptable event. A settled race cancels the
// group's remaining in-flight queries. In ambiguous mode a profile
// whose key matches the query wins immediately while a bare event
// match is held as fallback until the group drains.
func (r *Resolver) raceGroup(ctx context.Context, g Group, req request, timeout time.Duration) (*event.Event, error) {
	gctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan []event.Event, len(g.Endpoints))
	for _, endpoint := range g.Endpoints {
		go func(endpoint string) {
			ectx, ecancel := context.WithTimeout(gctx, timeout)
			defer ecancel()

			evs, err := relay.Query(ectx, r.dialer, endpoint, req.filters)
			if err != nil {
				slog.Debug("endpoint query failed",
					"group", g.Name, "endpoint", endpoint, "error", err)
				results <- nil
				return
			}
			results <- evs
		}(endpoint)
	}

	seen := make(map[string]bool)
	var fallback *event.Event
	for range g.Endpoints {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case evs := <-results:
			for i := range evs {
				ev := evs[i]
				if seen[ev.ID] {
					continue
				}
				seen[ev.ID] = true
				if !r.acceptable(req, &ev) {
					continue
				}
				if req.prefer == "" {
					return &ev, nil
				}
				if ev.Kind == event.KindProfileMetadata && ev.PubKey == req.prefer {
					return &ev, nil
				}
				if fallback == nil {
					fallback = &ev
				}
			}
		}
	}
	return fallback, nil
}

// acceptable gates a candidate: it must match a request filter, pass
// structural validation, and carry a verifying signature. An invalid
// candidate is dropped silently so a misbehaving relay degrades to
// not-found.
func (r *Resolver) acceptable(req request, ev *event.Event) bool {
	if len(req.filters) > 0 && !anyMatches(req.filters, ev) {
		slog.Debug("dropping off-filter event", "id", ev.ID, "kind", ev.Kind)
		return false
	}
	if result := event.ValidateStructure(ev); !result.Valid {
		slog.Debug("dropping structurally invalid event",
			"id", ev.ID, "errors", strings.Join(result.Errors, "; "))
		return false
	}
	if !event.Verify(ev) {
		slog.Debug("dropping event with failed verification", "id", ev.ID)
		return false
	}
	return true
}

func anyMatches(filters []relay.Filter, ev *event.Event) bool {
	for _, f := range filters {
		if f.Matches(ev) {
			return true
		}
	}
	return false
}

// search resolves free text, caching the winning group's result set.
func (r *Resolver) search(ctx context.Context, input string, req request, opts Options) ([]event.Event, error) {
	key := r.searchKey(req.term)
	if evs, ok := r.results.Get(key); ok {
		slog.Debug("search served from cache", "term", req.term)
		return evs, nil
	}

	qctx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		qctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	filters := []relay.Filter{{Search: req.term, Limit: searchLimit}}
	evs, err := r.searchGroups(qctx, filters, r.endpointBudget(opts))
	if err != nil {
		if cause := ctx.Err(); cause != nil {
			return nil, cancelled(input, cause)
		}
		return nil, notFound(input)
	}
	if len(evs) == 0 {
		if cause := ctx.Err(); cause != nil {
			return nil, cancelled(input, cause)
		}
		return nil, notFound(input)
	}

	r.results.Set(key, evs)
	return evs, nil
}

func (r *Resolver) searchGroups(ctx context.Context, filters []relay.Filter, timeout time.Duration) ([]event.Event, error) {
	for _, g := range r.groups {
		if len(g.Endpoints) == 0 {
			continue
		}
		evs, err := r.gatherGroup(ctx, g, filters, timeout)
		if err != nil {
			return nil, err
		}
		if len(evs) > 0 {
			slog.Debug("search settled", "group", g.Name, "events", len(evs))
			return evs, nil
		}
	}
	return nil, nil
}

// gatherGroup races a group's endpoints and returns the verified events
// from the first endpoint whose response contains any.
func (r *Resolver) gatherGroup(ctx context.Context, g Group, filters []relay.Filter, timeout time.Duration) ([]event.Event, error) {
	gctx, cancel := context.WithCancel(ctx)
	defer cancel()

	req := request{kind: reqSearch, filters: filters}
	results := make(chan []event.Event, len(g.Endpoints))
	for _, endpoint := range g.Endpoints {
		go func(endpoint string) {
			ectx, ecancel := context.WithTimeout(gctx, timeout)
			defer ecancel()

			evs, err := relay.Query(ectx, r.dialer, endpoint, filters)
			if err != nil {
				slog.Debug("endpoint search failed",
					"group", g.Name, "endpoint", endpoint, "error", err)
				results <- nil
				return
			}
			results <- evs
		}(endpoint)
	}

	seen := make(map[string]bool)
	for range g.Endpoints {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case evs := <-results:
			accepted := make([]event.Event, 0, len(evs))
			for i := range evs {
				ev := evs[i]
				if seen[ev.ID] {
					continue
				}
				seen[ev.ID] = true
				if r.acceptable(req, &ev) {
					accepted = append(accepted, ev)
				}
			}
			if len(accepted) > 0 {
				return accepted, nil
			}
		}
	}
	return nil, nil
}

func (r *Resolver) endpointBudget(opts Options) time.Duration {
	if opts.EndpointTimeout > 0 {
		return opts.EndpointTimeout
	}
	return r.endpointTimeout
}

// cached consults the cache matching the request shape. Ambiguous
// requests check the profile cache first, mirroring selection.
func (r *Resolver) cached(req request) (*event.Event, bool) {
	if req.cacheKey == "" {
		return nil, false
	}
	switch req.kind {
	case reqProfile:
		if ev, ok := r.profiles.Get(req.cacheKey); ok {
			return &ev, true
		}
	case reqEvent, reqEntity:
		if ev, ok := r.index.Get(req.cacheKey); ok {
			return &ev, true
		}
	case reqAmbiguous:
		if ev, ok := r.profiles.Get(req.cacheKey); ok {
			return &ev, true
		}
		if ev, ok := r.index.Get(req.cacheKey); ok {
			return &ev, true
		}
	}
	return nil, false
}

func (r *Resolver) store(req request, ev *event.Event) {
	if req.cacheKey == "" {
		return
	}
	switch req.kind {
	case reqProfile:
		r.profiles.Set(req.cacheKey, *ev)
	case reqEvent, reqEntity:
		r.index.Set(req.cacheKey, *ev)
	case reqAmbiguous:
		if ev.Kind == event.KindProfileMetadata && ev.PubKey == req.prefer {
			r.profiles.Set(req.cacheKey, *ev)
			return
		}
		r.index.Set(req.cacheKey, *ev)
	}
}

func (r *Resolver) searchKey(term string) string {
	dims := []string{"search", term}
	for _, g := range r.groups {
		dims = append(dims, g.Endpoints...)
	}
	return cache.Key(dims...)
}
