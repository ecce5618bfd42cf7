package textcmd

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync/atomic"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// maxSuggestions bounds UnknownCommandError.Suggestions.
const maxSuggestions = 3

// Router resolves prefixed chat messages to commands and invokes them.
//
// Usage:
//  1. Create a router with New
//  2. Add root commands with Add
//  3. Optionally add sources with AddSource to accept raw events
//  4. Feed messages to Dispatch, or raw events to Process
//
// Router is safe for concurrent use after configuration. Do not call Add,
// Remove, AddSource, AddGroup or RegisterConverter while dispatching.
type Router struct {
	prefixes         []string
	commands         table
	defaultInspector Inspector
	defaultSources   []Source
	groups           []group
	hooks            hooks
	newReplier       func(Message) Replier
	newID            func() string

	// Adaptive ordering: try last successful source first
	lastMatch atomic.Value // stores string
}

// Option configures a Router.
type Option func(*Router)

// group holds sources that share an inspector.
type group struct {
	inspector Inspector
	sources   []Source
}

// New creates a Router. Without WithPrefix, messages must start with "!".
//
// Example:
//
//	r := textcmd.New(
//	    textcmd.WithPrefix("!", "?"),
//	    textcmd.WithOnBadArgument(func(ctx context.Context, inv *textcmd.Invocation, err *textcmd.BadArgumentError) error {
//	        return inv.Reply(ctx, err.Error()+"\nUsage: "+inv.Command.Usage())
//	    }),
//	)
func New(opts ...Option) *Router {
	r := &Router{
		prefixes:         []string{"!"},
		defaultInspector: JSONInspector(),
		newID:            uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	// Longest first, so "!!" wins over "!".
	slices.SortStableFunc(r.prefixes, func(a, b string) int { return len(b) - len(a) })
	return r
}

// WithPrefix sets the prefixes a message must start with to be a command.
func WithPrefix(prefixes ...string) Option {
	return func(r *Router) {
		r.prefixes = slices.DeleteFunc(slices.Clone(prefixes), func(p string) bool { return p == "" })
	}
}

// WithInspector sets the default inspector for sources added with AddSource.
func WithInspector(i Inspector) Option {
	return func(r *Router) {
		r.defaultInspector = i
	}
}

// WithReplier sets the replier used for messages that arrive without one,
// such as those parsed from raw events.
func WithReplier(fn func(Message) Replier) Option {
	return func(r *Router) {
		r.newReplier = fn
	}
}

// WithIDFunc replaces the invocation ID generator, which defaults to random
// UUIDs.
func WithIDFunc(fn func() string) Option {
	return func(r *Router) {
		r.newID = fn
	}
}

// Prefixes returns the configured prefixes, longest first.
func (r *Router) Prefixes() []string { return slices.Clone(r.prefixes) }

// Add registers root commands. It fails with ErrDuplicateCommand if a name
// or alias is already taken; commands before the failing one stay added.
func (r *Router) Add(cmds ...*Command) error {
	for _, cmd := range cmds {
		if cmd.parent != nil {
			return fmt.Errorf("textcmd: %s is already a subcommand", cmd.QualifiedName())
		}
		if err := r.commands.add(cmd, ""); err != nil {
			return err
		}
	}
	return nil
}

// Remove unregisters the root command under key. As with
// Command.RemoveChild, removing an alias removes only that alias.
func (r *Router) Remove(key string) *Command {
	return r.commands.remove(key)
}

// Command resolves a space-separated command path, or returns nil.
func (r *Router) Command(path string) *Command {
	return r.commands.find(path)
}

// Commands returns the unique root commands, sorted by name.
func (r *Router) Commands() []*Command {
	return r.commands.unique()
}

// RegisterConverter makes conv the converter for t in every registered
// command, including subcommands.
func (r *Router) RegisterConverter(t Tag, conv Converter) {
	var walk func(cmds []*Command)
	walk = func(cmds []*Command) {
		for _, c := range cmds {
			c.RegisterConverter(t, conv)
			walk(c.Commands())
		}
	}
	walk(r.Commands())
}

// AddSource registers a source to the default inspector group.
func (r *Router) AddSource(s Source) {
	r.defaultSources = append(r.defaultSources, s)
}

// AddGroup registers sources with a custom inspector. Groups are checked
// after the default group, in registration order.
func (r *Router) AddGroup(inspector Inspector, sources ...Source) {
	r.groups = append(r.groups, group{inspector: inspector, sources: sources})
}

// Process matches a raw event to a source, parses it and dispatches the
// resulting message.
func (r *Router) Process(ctx context.Context, raw []byte) error {
	source := r.match(raw)
	if source == nil {
		return r.handleNoSource(ctx, raw)
	}

	msg, err := source.Parse(raw)
	if err != nil {
		return r.handleParseError(ctx, source, err)
	}
	return r.dispatch(ctx, source, msg)
}

// Dispatch resolves and runs the command named by msg.
//
// The dispatch flow:
//  1. Strip a configured prefix; messages without one are ignored
//  2. Resolve the first word to a root command, then descend into
//     subcommands while the following words name one
//  3. Run the command's checks
//  4. Bind the remaining text to the command's parameters
//  5. Call the handler
//
// Hooks are called at each step. A binding failure is a *BadArgumentError;
// without OnBadArgument hooks it is sent to the message's Replier and
// returned.
func (r *Router) Dispatch(ctx context.Context, msg Message) error {
	return r.dispatch(ctx, nil, msg)
}

func (r *Router) dispatch(ctx context.Context, source Source, msg Message) error {
	if msg.Replier == nil && r.newReplier != nil {
		msg.Replier = r.newReplier(msg)
	}

	inv, err := r.resolve(msg)
	if err != nil {
		var unknown *UnknownCommandError
		if errors.As(err, &unknown) {
			return r.handleNoCommand(ctx, source, msg, unknown)
		}
		return err
	}
	if inv == nil {
		return nil
	}
	if source != nil {
		inv.Source = source.Name()
	}

	ctx = r.callOnParse(ctx, source, inv)

	start := time.Now()
	if err := inv.Command.CanRun(ctx, inv); err != nil {
		if errors.Is(err, ErrCheckFailed) || errors.Is(err, ErrCommandDisabled) {
			return r.handleCheckFailure(ctx, inv, err)
		}
		r.callOnFailure(ctx, source, inv, err, time.Since(start))
		return err
	}

	r.callOnDispatch(ctx, source, inv)

	start = time.Now()
	err = inv.Command.Invoke(ctx, inv)
	duration := time.Since(start)

	var bad *BadArgumentError
	if errors.As(err, &bad) {
		return r.handleBadArgument(ctx, source, inv, bad)
	}

	if err != nil {
		r.callOnFailure(ctx, source, inv, err, duration)
	} else {
		r.callOnSuccess(ctx, source, inv, duration)
	}
	return err
}

// resolve turns a message into an invocation. It returns nil when the
// message is not a command at all.
func (r *Router) resolve(msg Message) (*Invocation, error) {
	prefix, ok := r.matchPrefix(msg.Content)
	if !ok {
		return nil, nil
	}

	name, rest := nextWord(msg.Content[len(prefix):])
	if name == "" {
		return nil, nil
	}

	cmd := r.commands.get(name)
	if cmd == nil {
		return nil, &UnknownCommandError{Name: name, Suggestions: r.suggest(name)}
	}

	path := []string{name}
	for cmd.children.len() > 0 {
		word, remainder := nextWord(rest)
		sub := cmd.children.get(word)
		if sub == nil {
			break
		}
		cmd, rest = sub, remainder
		path = append(path, word)
	}

	return &Invocation{
		ID:          r.newID(),
		Message:     msg,
		Prefix:      prefix,
		InvokedWith: strings.Join(path, " "),
		Args:        strings.TrimLeftFunc(rest, unicode.IsSpace),
		Command:     cmd,
	}, nil
}

func (r *Router) matchPrefix(content string) (string, bool) {
	for _, p := range r.prefixes {
		if strings.HasPrefix(content, p) {
			return p, true
		}
	}
	return "", false
}

// nextWord splits off the first whitespace-delimited word.
func nextWord(s string) (word, rest string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i:]
}

// suggest ranks visible command names and aliases by closeness to name.
func (r *Router) suggest(name string) []string {
	var candidates []string
	for _, k := range r.commands.keys() {
		if !r.commands.get(k).hidden {
			candidates = append(candidates, k)
		}
	}

	var out []string
	ranks := fuzzy.RankFindFold(name, candidates)
	slices.SortStableFunc(ranks, func(a, b fuzzy.Rank) int { return a.Distance - b.Distance })
	for _, rk := range ranks {
		out = append(out, rk.Target)
	}
	for _, c := range candidates {
		if !slices.Contains(out, c) && fuzzy.LevenshteinDistance(strings.ToLower(name), strings.ToLower(c)) <= 2 {
			out = append(out, c)
		}
	}
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}

// viewCache caches parsed views per inspector to avoid re-parsing the same
// raw bytes multiple times during source matching.
type viewCache struct {
	raw   []byte
	views map[Inspector]viewResult
}

type viewResult struct {
	view View
	ok   bool
}

func newViewCache(raw []byte) *viewCache {
	return &viewCache{
		raw:   raw,
		views: make(map[Inspector]viewResult),
	}
}

// get returns a cached view or parses and caches it.
func (c *viewCache) get(insp Inspector) (View, bool) {
	if result, ok := c.views[insp]; ok {
		return result.view, result.ok
	}

	view, err := insp.Inspect(c.raw)
	if err != nil {
		c.views[insp] = viewResult{ok: false}
		return nil, false
	}

	c.views[insp] = viewResult{view: view, ok: true}
	return view, true
}

// match finds a source whose discriminator matches the raw event.
// Uses adaptive ordering to try the last successful source first.
func (r *Router) match(raw []byte) Source {
	cache := newViewCache(raw)

	if v := r.lastMatch.Load(); v != nil {
		if name, ok := v.(string); ok && name != "" {
			if src := r.find(cache, func(s Source) bool { return s.Name() == name }); src != nil {
				return src
			}
		}
	}

	src := r.find(cache, func(Source) bool { return true })
	if src != nil {
		r.lastMatch.Store(src.Name())
	}
	return src
}

// find returns the first source accepted by want whose discriminator
// matches, default group first.
func (r *Router) find(cache *viewCache, want func(Source) bool) Source {
	try := func(insp Inspector, sources []Source) Source {
		if len(sources) == 0 {
			return nil
		}
		view, ok := cache.get(insp)
		if !ok {
			return nil
		}
		for _, src := range sources {
			if want(src) && src.Discriminator().Match(view) {
				return src
			}
		}
		return nil
	}

	if src := try(r.defaultInspector, r.defaultSources); src != nil {
		return src
	}
	for _, g := range r.groups {
		if src := try(g.inspector, g.sources); src != nil {
			return src
		}
	}
	return nil
}

// callOnParse calls global and source OnParse hooks.
func (r *Router) callOnParse(ctx context.Context, source Source, inv *Invocation) context.Context {
	for _, fn := range r.hooks.onParse {
		ctx = fn(ctx, inv)
	}
	if h, ok := source.(OnParseHook); ok {
		ctx = h.OnParse(ctx, inv)
	}
	return ctx
}

// callOnDispatch calls global and source OnDispatch hooks.
func (r *Router) callOnDispatch(ctx context.Context, source Source, inv *Invocation) {
	for _, fn := range r.hooks.onDispatch {
		fn(ctx, inv)
	}
	if h, ok := source.(OnDispatchHook); ok {
		h.OnDispatch(ctx, inv)
	}
}

// callOnSuccess calls global and source OnSuccess hooks.
func (r *Router) callOnSuccess(ctx context.Context, source Source, inv *Invocation, duration time.Duration) {
	for _, fn := range r.hooks.onSuccess {
		fn(ctx, inv, duration)
	}
	if h, ok := source.(OnSuccessHook); ok {
		h.OnSuccess(ctx, inv, duration)
	}
}

// callOnFailure calls global and source OnFailure hooks.
func (r *Router) callOnFailure(ctx context.Context, source Source, inv *Invocation, err error, duration time.Duration) {
	for _, fn := range r.hooks.onFailure {
		fn(ctx, inv, err, duration)
	}
	if h, ok := source.(OnFailureHook); ok {
		h.OnFailure(ctx, inv, err, duration)
	}
}

// handleNoSource handles the case when no source matches.
func (r *Router) handleNoSource(ctx context.Context, raw []byte) error {
	for _, fn := range r.hooks.onNoSource {
		if err := fn(ctx, raw); err != nil {
			return err
		}
	}
	if len(r.hooks.onNoSource) > 0 {
		return nil
	}
	return ErrNoSource
}

// handleParseError handles the case when a source's Parse method returns an error.
func (r *Router) handleParseError(ctx context.Context, source Source, parseErr error) error {
	name := source.Name()
	for _, fn := range r.hooks.onParseError {
		if err := fn(ctx, name, parseErr); err != nil {
			return err
		}
	}
	if len(r.hooks.onParseError) > 0 {
		return nil
	}
	return fmt.Errorf("parse failed for source %s: %w", name, parseErr)
}

// handleNoCommand handles a prefixed message naming no command.
func (r *Router) handleNoCommand(ctx context.Context, source Source, msg Message, unknown *UnknownCommandError) error {
	var errs []error

	for _, fn := range r.hooks.onNoCommand {
		if err := fn(ctx, msg, unknown); err != nil {
			errs = append(errs, err)
		}
	}

	if h, ok := source.(OnNoCommandHook); ok {
		if err := h.OnNoCommand(ctx, msg, unknown); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errs[0]
	}
	if len(r.hooks.onNoCommand) == 0 {
		return unknown
	}
	return nil
}

// handleBadArgument handles binding failures. Without hooks the error is
// reported through the message's Replier and returned.
func (r *Router) handleBadArgument(ctx context.Context, source Source, inv *Invocation, bad *BadArgumentError) error {
	var errs []error

	for _, fn := range r.hooks.onBadArgument {
		if err := fn(ctx, inv, bad); err != nil {
			errs = append(errs, err)
		}
	}

	if h, ok := source.(OnBadArgumentHook); ok {
		if err := h.OnBadArgument(ctx, inv, bad); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errs[0]
	}
	if len(r.hooks.onBadArgument) > 0 {
		return nil
	}

	if inv.Message.Replier != nil {
		if err := inv.Message.Replier.Fail(ctx, bad); err != nil {
			return errors.Join(bad, err)
		}
	}
	return bad
}

// handleCheckFailure handles disabled commands and denied checks.
func (r *Router) handleCheckFailure(ctx context.Context, inv *Invocation, checkErr error) error {
	for _, fn := range r.hooks.onCheckFailure {
		if err := fn(ctx, inv, checkErr); err != nil {
			return err
		}
	}
	if len(r.hooks.onCheckFailure) > 0 {
		return nil
	}
	return checkErr
}
