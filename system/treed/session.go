package treed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"

	"go.lsp.dev/jsonrpc2"

	"github.com/treeconf/treeconf"
	"github.com/treeconf/treeconf/debug"
	"github.com/treeconf/treeconf/encode"
	"github.com/treeconf/treeconf/system/treed/api"
	"github.com/treeconf/treeconf/tree"
)

// Session is one client connection: a JSON-RPC conversation plus the
// selectors tracked on the client's behalf. Tracks are released when
// the session ends.
type Session struct {
	id     string
	rpc    jsonrpc2.Conn
	server *Server
	model  *treeconf.Model
	log    *slog.Logger

	mu     sync.Mutex
	tracks map[tree.Selector]int
}

func newSession(id string, conn net.Conn, server *Server) *Session {
	return &Session{
		id:     id,
		rpc:    jsonrpc2.NewConn(jsonrpc2.NewStream(conn)),
		server: server,
		model:  server.Spec.Model,
		log:    server.Spec.Log.With("session", id),
		tracks: make(map[tree.Selector]int),
	}
}

// run serves the connection and blocks until it ends.
func (s *Session) run() {
	ctx := context.Background()
	s.rpc.Go(ctx, s.handle)
	<-s.rpc.Done()
	s.cleanup()
	if err := s.rpc.Err(); err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
		s.log.Error("session error", "error", err)
	}
}

func (s *Session) close() {
	s.rpc.Close()
}

// cleanup drops every observer this session added to the model.
func (s *Session) cleanup() {
	s.mu.Lock()
	tracks := s.tracks
	s.tracks = make(map[tree.Selector]int)
	s.mu.Unlock()

	for sel, n := range tracks {
		for i := 0; i < n; i++ {
			if err := s.model.Untrack(sel); err != nil {
				s.log.Error("failed to untrack", "selector", sel.String(), "error", err)
				break
			}
		}
	}
}

func (s *Session) handle(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	if debug.RPC() {
		debug.Logf("rpc %s %s %s\n", s.id, req.Method(), string(req.Params()))
	}
	switch req.Method() {
	case api.MethodGet:
		return s.handleGet(ctx, reply, req)
	case api.MethodSet:
		return s.handleSet(ctx, reply, req)
	case api.MethodAdd:
		return s.handleAdd(ctx, reply, req)
	case api.MethodClear:
		return s.handleClear(ctx, reply, req)
	case api.MethodPatch:
		return s.handlePatch(ctx, reply, req)
	case api.MethodTrack:
		return s.handleTrack(ctx, reply, req)
	case api.MethodUntrack:
		return s.handleUntrack(ctx, reply, req)
	case api.MethodTracked:
		return s.handleTracked(ctx, reply, req)
	case api.MethodDetached:
		return s.handleDetached(ctx, reply, req)
	case api.MethodSelectors:
		return s.handleSelectors(ctx, reply, req)
	default:
		return reply(ctx, nil, fmt.Errorf("%w: %q", jsonrpc2.ErrMethodNotFound, req.Method()))
	}
}

func unmarshalParams(req jsonrpc2.Request, v any) error {
	if len(req.Params()) == 0 {
		return fmt.Errorf("%w: missing params", jsonrpc2.ErrInvalidParams)
	}
	if err := json.Unmarshal(req.Params(), v); err != nil {
		return fmt.Errorf("%w: %v", jsonrpc2.ErrInvalidParams, err)
	}
	return nil
}

// replyMutation acknowledges a mutation and, on success, pushes the
// tracked state of every session.
func (s *Session) replyMutation(ctx context.Context, reply jsonrpc2.Replier, err error) error {
	if err != nil {
		return reply(ctx, nil, err)
	}
	rerr := reply(ctx, nil, nil)
	s.server.notifyTracked(ctx)
	return rerr
}

func (s *Session) handleGet(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params api.GetParams
	if err := unmarshalParams(req, &params); err != nil {
		return reply(ctx, nil, err)
	}
	values, err := s.model.Get(params.Key)
	if err != nil {
		return reply(ctx, nil, err)
	}
	return reply(ctx, &api.GetResult{Values: values}, nil)
}

func (s *Session) handleSet(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params api.SetParams
	if err := unmarshalParams(req, &params); err != nil {
		return reply(ctx, nil, err)
	}
	return s.replyMutation(ctx, reply, s.model.SetProperty(params.Key, params.Value))
}

func (s *Session) handleAdd(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params api.AddParams
	if err := unmarshalParams(req, &params); err != nil {
		return reply(ctx, nil, err)
	}
	return s.replyMutation(ctx, reply, s.model.AddProperty(params.Key, params.Values...))
}

func (s *Session) handleClear(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params api.ClearParams
	if err := unmarshalParams(req, &params); err != nil {
		return reply(ctx, nil, err)
	}
	if params.Subtree {
		return s.replyMutation(ctx, reply, s.model.ClearTree(params.Key))
	}
	return s.replyMutation(ctx, reply, s.model.ClearProperty(params.Key))
}

func (s *Session) handlePatch(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params api.PatchParams
	if err := unmarshalParams(req, &params); err != nil {
		return reply(ctx, nil, err)
	}
	if len(params.Patch) == 0 {
		return reply(ctx, nil, fmt.Errorf("%w: missing patch", jsonrpc2.ErrInvalidParams))
	}
	if params.Merge {
		return s.replyMutation(ctx, reply, s.model.ApplyMergePatch(params.Patch))
	}
	return s.replyMutation(ctx, reply, s.model.ApplyJSONPatch(params.Patch))
}

func (s *Session) selectorParam(req jsonrpc2.Request) (tree.Selector, error) {
	var params api.SelectorParams
	if err := unmarshalParams(req, &params); err != nil {
		return tree.Selector{}, err
	}
	sel, err := api.ToSelector(params.Selector)
	if err != nil {
		return tree.Selector{}, fmt.Errorf("%w: %v", jsonrpc2.ErrInvalidParams, err)
	}
	return sel, nil
}

func (s *Session) handleTrack(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	sel, err := s.selectorParam(req)
	if err != nil {
		return reply(ctx, nil, err)
	}
	if err := s.model.Track(sel); err != nil {
		return reply(ctx, nil, err)
	}
	s.mu.Lock()
	s.tracks[sel]++
	s.mu.Unlock()
	s.log.Debug("tracking", "selector", sel.String())
	return reply(ctx, nil, nil)
}

func (s *Session) handleUntrack(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	sel, err := s.selectorParam(req)
	if err != nil {
		return reply(ctx, nil, err)
	}
	s.mu.Lock()
	held := s.tracks[sel] > 0
	s.mu.Unlock()
	if !held {
		// A session may only drop observers it added itself.
		return reply(ctx, nil, fmt.Errorf("%w: %s", tree.ErrNotTracked, sel))
	}
	if err := s.model.Untrack(sel); err != nil {
		return reply(ctx, nil, err)
	}
	s.mu.Lock()
	if s.tracks[sel]--; s.tracks[sel] <= 0 {
		delete(s.tracks, sel)
	}
	s.mu.Unlock()
	return reply(ctx, nil, nil)
}

func (s *Session) handleTracked(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	sel, err := s.selectorParam(req)
	if err != nil {
		return reply(ctx, nil, err)
	}
	node, err := s.model.TrackedNode(sel)
	if err != nil {
		return reply(ctx, nil, err)
	}
	detached, err := s.model.Detached(sel)
	if err != nil {
		return reply(ctx, nil, err)
	}
	data, err := encode.MarshalJSON(node)
	if err != nil {
		return reply(ctx, nil, err)
	}
	return reply(ctx, &api.TrackedResult{Node: data, Detached: detached}, nil)
}

func (s *Session) handleDetached(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	sel, err := s.selectorParam(req)
	if err != nil {
		return reply(ctx, nil, err)
	}
	detached, err := s.model.Detached(sel)
	if err != nil {
		return reply(ctx, nil, err)
	}
	return reply(ctx, &api.DetachedResult{Detached: detached}, nil)
}

func (s *Session) handleSelectors(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	sels := s.model.Selectors()
	res := &api.SelectorsResult{Selectors: make([][]string, 0, len(sels))}
	for _, sel := range sels {
		res.Selectors = append(res.Selectors, api.FromSelector(sel))
	}
	return reply(ctx, res, nil)
}

// notifyTracked pushes the current state of every selector this session
// tracks.
func (s *Session) notifyTracked(ctx context.Context) {
	s.mu.Lock()
	sels := make([]tree.Selector, 0, len(s.tracks))
	for sel := range s.tracks {
		sels = append(sels, sel)
	}
	s.mu.Unlock()

	for _, sel := range sels {
		node, err := s.model.TrackedNode(sel)
		if err != nil {
			continue
		}
		detached, err := s.model.Detached(sel)
		if err != nil {
			continue
		}
		note := &api.TrackedChanged{
			Selector: api.FromSelector(sel),
			Detached: detached,
			Value:    node.Value(),
		}
		if err := s.rpc.Notify(ctx, api.NotifyTrackedChanged, note); err != nil {
			s.log.Error("failed to push tracked change", "selector", sel.String(), "error", err)
			return
		}
	}
}
