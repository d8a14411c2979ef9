package plugin

import (
	"net/rpc"

	goplugin "github.com/hashicorp/go-plugin"
)

// Manifest is what a plugin reports about itself before any capability
// is invoked: its module name, its declared priority (used to order
// ExtensionSet iteration, ties broken by module name), and the
// capability interface names it implements.
type Manifest struct {
	ModuleName string
	Priority   int
	Interfaces []string
}

// InvokeArgs is the generic envelope for calling a named method on a
// named capability interface. Payload is a gob-encodable value specific
// to that interface/method pair; Extension implementations decode it
// themselves.
type InvokeArgs struct {
	Interface string
	Method    string
	Payload   any
}

// InvokeReply carries either a result payload or a Foundry error kind
// (see pkg/ferr) so failures cross the RPC boundary as typed values
// rather than opaque net/rpc errors.
type InvokeReply struct {
	Payload    any
	ErrKind    int
	ErrMessage string
}

// Extension is the interface every Foundry plugin binary implements on
// its own side (the impl passed to Serve). It is the net/rpc analogue of
// protos2.ContainifyCIv2 interface.
type Extension interface {
	Manifest() Manifest
	Invoke(args InvokeArgs) (any, error)
}

// extensionRPCServer adapts a local Extension implementation to
// net/rpc's exported-method calling convention, run inside the plugin
// subprocess.
type extensionRPCServer struct {
	Impl Extension
}

func (s *extensionRPCServer) Manifest(_ struct{}, resp *Manifest) error {
	*resp = s.Impl.Manifest()
	return nil
}

func (s *extensionRPCServer) Invoke(args InvokeArgs, resp *InvokeReply) error {
	payload, err := s.Impl.Invoke(args)
	if err != nil {
		*resp = InvokeReply{ErrKind: int(kindOf(err)), ErrMessage: err.Error()}
		return nil
	}
	*resp = InvokeReply{Payload: payload}
	return nil
}

// extensionRPCClient is the host-side stub satisfying Extension by
// forwarding every call over net/rpc to the subprocess.
type extensionRPCClient struct {
	client *rpc.Client
}

func (c *extensionRPCClient) Manifest() Manifest {
	var resp Manifest
	if err := c.client.Call("Plugin.Manifest", struct{}{}, &resp); err != nil {
		return Manifest{}
	}
	return resp
}

func (c *extensionRPCClient) Invoke(args InvokeArgs) (any, error) {
	var resp InvokeReply
	if err := c.client.Call("Plugin.Invoke", args, &resp); err != nil {
		return nil, err
	}
	if resp.ErrMessage != "" {
		return nil, newFerr(resp.ErrKind, resp.ErrMessage)
	}
	return resp.Payload, nil
}

// ExtensionPlugin is the go-plugin net/rpc Plugin implementation shared
// by host and subprocess: on the plugin side, Server wraps Impl; on the
// host side, Client dispenses the RPC stub.
type ExtensionPlugin struct {
	Impl Extension
}

func (p *ExtensionPlugin) Server(*goplugin.MuxBroker) (any, error) {
	return &extensionRPCServer{Impl: p.Impl}, nil
}

func (p *ExtensionPlugin) Client(_ *goplugin.MuxBroker, c *rpc.Client) (any, error) {
	return &extensionRPCClient{client: c}, nil
}
