// Package server serves the ESP32 dashboard to browsers.
//
// The server owns a Page, the document the refresh loop renders into. The
// page keeps the current overview fragment and uptime text, and every write
// is pushed to connected browsers as a JSON patch over a websocket:
//
//	{"id":"uptime","op":"text","value":"0d 2h 14m"}
//	{"id":"overviewContainer","op":"html","value":"<div class=\"section\">..."}
//
// Routes:
//
//	GET /         page shell with the current fragment
//	GET /ws       websocket patch feed
//	GET /healthz  refresh counters as JSON
//
// Usage:
//
//	srv, err := server.New(&server.Config{Port: 8080, Lang: "fr"})
//	if err != nil {
//		return err
//	}
//	loop := refresh.New(client, builder, srv.Page())
//	srv.SetStatsFunc(loop.Stats)
//	handle, _ := loop.InitialLoad(ctx)
//	defer handle.Stop()
//	return srv.Start(ctx)
package server
