// Package render turns device snapshots into escaped HTML fragments.
//
// The fragment is a flat sequence of titled sections, each holding
// label/value pairs:
//
//	<div class="section"><h2>Chip Information</h2><div class="info-grid">
//	  <div class="info-item"><div class="info-label">Uptime</div>
//	  <div class="info-value" id="uptime">0d 1h 1m</div></div>
//	</div></div>
//
// Every string that reaches the markup, labels included, goes through
// Escape. Numbers are formatted here and never come from the payload as
// text. The uptime value carries the stable id UptimeID so a refresh loop
// can patch it in place.
package render
