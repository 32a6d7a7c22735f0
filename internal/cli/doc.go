// Package cli provides the interactive scansync command-line client.
//
// It wires configuration, the embedded database, the scan pipeline, and an
// interactive REPL that supports online/offline operation. Typical flow:
// load the durable queue and history, start a background connectivity
// watcher, and execute user commands.
//
// Key features:
//   - Scan or manually enter barcodes and confirm diary entries
//   - Offline captures land in a durable queue
//   - Queue inspection, manual sync, and failed-item cleanup
//   - Recently resolved products, used to warm the lookup cache
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, runREPL, and the scanner packages for details.
package cli
