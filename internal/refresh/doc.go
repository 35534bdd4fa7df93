// Package refresh drives the dashboard lifecycle: one full overview load
// followed by a periodic status poll that patches the uptime field in place.
//
// A Loop writes into a Document, an addressable set of display nodes looked
// up by id. The web server, the terminal dashboard and the one-shot
// renderer each provide their own Document. A node that cannot be found is
// skipped silently.
//
// # Lifecycle
//
//	loop := refresh.New(client, render.NewBuilder(tr), page)
//	handle, err := loop.InitialLoad(ctx) // err is already on screen
//	defer handle.Stop()
//
// InitialLoad always starts the periodic refresh, even when the overview
// could not be loaded. The error block has no uptime node, so ticks write
// nothing until Load succeeds again and brings the node back.
//
// # Ticks
//
// Each tick runs in its own goroutine and is bounded by the refresh
// interval. Ticks are numbered; a response is applied only if no later
// tick has been applied already, so a slow response can never overwrite a
// newer value. Tick failures are never shown to the user. They go to the
// poll error hook (a zap log by default) and to Stats.
package refresh
