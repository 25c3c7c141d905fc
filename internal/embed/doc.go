// Package embed inlines a compiled WebAssembly module into its JavaScript
// loader.
//
// wasm-bindgen's node output reads the module from disk next to the loader:
//
//	const wasmPath = `${__dirname}/docfind_bg.wasm`;
//	const wasmBytes = require('fs').readFileSync(wasmPath);
//
// The embedder replaces that statement with
//
//	const wasmBytes = Buffer.from('<base64>', 'base64');
//
// and deletes the .wasm file, leaving a single self-contained script.
//
// # Matching
//
// The load statement is located by a small scanner over the expected
// statement shapes (see Pattern) rather than by parsing JavaScript. Only the
// first load statement is replaced. A script without one is reported as
// OutcomeNoMatch and left byte-for-byte unchanged; whether that is a warning
// or an error is the caller's choice (see NoMatchPolicy).
package embed
