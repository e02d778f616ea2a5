// Package treed serves a treeconf.Model over JSON-RPC on TCP.
//
// Each connection gets its own session. Sessions track selectors on
// behalf of their client and receive a treed.trackedChanged
// notification for each of their selectors after every successful
// mutation, from whichever session it came. A session's tracks are
// released when it ends.
//
// # Related Packages
//
//   - github.com/treeconf/treeconf/system/treed/api - wire types
package treed
