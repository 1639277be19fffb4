// Package host is the embedder-facing surface of the light-client host SDK.
//
// An Adapter wraps an engine backing (see ports.Engine) and manages chain
// sessions: registration returns a ChainSession, requests are submitted as
// JSON-RPC text, and responses come back as loaned ResponseLease buffers that
// must be released exactly once. Pump turns the blocking wait loop into a
// callback-driven consumer with guaranteed lease release.
//
// # Basic Usage
//
//	adapter, err := host.NewAdapter(engine,
//	    host.WithLogger(logger),
//	)
//	if err != nil {
//	    return err
//	}
//	defer adapter.Close(ctx)
//
//	session, err := adapter.AddChain(ctx, specBytes)
//	if err != nil {
//	    return err
//	}
//
//	if err := session.Submit(ctx, request); err != nil {
//	    return err
//	}
//
//	lease, err := session.NextResponse(ctx)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(lease.Text())
//	if err := lease.Release(ctx); err != nil {
//	    return err
//	}
package host
