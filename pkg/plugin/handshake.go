// Package plugin is the process-wide Plugin Engine: a
// registry of go-plugin subprocess plugins, each declaring a module
// name, a priority, and a set of capability interfaces it implements.
//
// Grounded on client/pkg/build/plugin.go and cmd/engine.go,
// which host a single containifyci plugin over hashicorp/go-plugin. This
// package generalizes that to a directory of arbitrarily many plugin
// binaries, each speaking go-plugin's net/rpc transport rather than its
// gRPC one — see DESIGN.md for why gRPC was dropped (no protoc
// available to generate a service from scratch).
package plugin

import "github.com/hashicorp/go-plugin"

// Handshake is the magic-cookie handshake every Foundry plugin process
// and the host engine must agree on, mirroring the prior implementation's
// protos2.Handshake.
var Handshake = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "FOUNDRY_PLUGIN",
	MagicCookieValue: "foundry",
}

// pluginMapKey is the single entry name every Foundry plugin registers
// itself under in its PluginSet, analogous to the prior implementation's
// "containifyci" key.
const pluginMapKey = "foundry"
