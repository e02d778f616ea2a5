// Package api defines the wire types of the treed JSON-RPC protocol.
//
// Every request addresses the daemon's configuration tree. Keys use the
// ckey syntax; selectors travel as their key chain, outermost key first.
package api

import (
	"encoding/json"
	"fmt"

	"github.com/treeconf/treeconf/tree"
)

// Methods of the treed protocol.
const (
	MethodGet       = "model.get"
	MethodSet       = "model.set"
	MethodAdd       = "model.add"
	MethodClear     = "model.clear"
	MethodPatch     = "model.patch"
	MethodTrack     = "model.track"
	MethodUntrack   = "model.untrack"
	MethodTracked   = "model.tracked"
	MethodDetached  = "model.detached"
	MethodSelectors = "model.selectors"

	// NotifyTrackedChanged is pushed to every session holding tracks
	// after each successful mutation.
	NotifyTrackedChanged = "treed.trackedChanged"
)

// GetParams are the parameters of model.get.
type GetParams struct {
	Key string `json:"key"`
}

// GetResult carries the values of all hits of a model.get key.
type GetResult struct {
	Values []any `json:"values"`
}

// SetParams are the parameters of model.set.
type SetParams struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// AddParams are the parameters of model.add.
type AddParams struct {
	Key    string `json:"key"`
	Values []any  `json:"values"`
}

// ClearParams are the parameters of model.clear. Subtree removes whole
// subtrees instead of clearing values.
type ClearParams struct {
	Key     string `json:"key"`
	Subtree bool   `json:"subtree,omitempty"`
}

// PatchParams are the parameters of model.patch: an RFC 6902 patch
// document, or an RFC 7386 one when Merge is set.
type PatchParams struct {
	Patch json.RawMessage `json:"patch"`
	Merge bool            `json:"merge,omitempty"`
}

// SelectorParams address a tracked entry by its selector key chain.
type SelectorParams struct {
	Selector []string `json:"selector"`
}

// TrackedResult is the reply of model.tracked: the tracked subtree as
// JSON, the last known one when detached.
type TrackedResult struct {
	Node     json.RawMessage `json:"node"`
	Detached bool            `json:"detached"`
}

// DetachedResult is the reply of model.detached.
type DetachedResult struct {
	Detached bool `json:"detached"`
}

// SelectorsResult is the reply of model.selectors.
type SelectorsResult struct {
	Selectors [][]string `json:"selectors"`
}

// TrackedChanged is the payload of the treed.trackedChanged
// notification.
type TrackedChanged struct {
	Selector []string `json:"selector"`
	Detached bool     `json:"detached"`
	Value    any      `json:"value"`
}

// ToSelector builds a tree.Selector from its wire key chain.
func ToSelector(keys []string) (tree.Selector, error) {
	if len(keys) == 0 {
		return tree.Selector{}, fmt.Errorf("empty selector")
	}
	sel := tree.NewSelector(keys[0])
	for _, key := range keys[1:] {
		sel = sel.Sub(key)
	}
	return sel, nil
}

// FromSelector returns the wire form of sel.
func FromSelector(sel tree.Selector) []string {
	return sel.Keys()
}
