// Package log provides structured logging for tinychain using zerolog.
//
// It wraps zerolog to give every core package (cache, txnlock, txnfile,
// btree, tensor, txn) a component-scoped logger with consistent fields
// for transaction id and filesystem path, so a single commit or
// finalize can be traced across package boundaries by grepping one
// txn_id value out of the JSON log stream.
package log
