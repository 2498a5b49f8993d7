// Package bridge runs the host side of scenebridge.
//
// A Bridge owns the listener, the inbound and outbound queues and the
// dispatcher. The listener goroutine only pushes to the inbound queue; the
// host goroutine calls Step, which is the only place scene mutations happen.
//
// Step adapts its own rate: after a tick that moved any message it asks to be
// called again after the busy delay (1/60 s by default), otherwise after the
// idle delay (50 ms). RunScheduler turns that into a cancellable repeating
// task:
//
//	b := bridge.New(bridge.DefaultConfig(), scene.DefaultScene())
//	if err := b.Run(ctx, time.Second); err != nil {
//	    return err
//	}
package bridge
