/*
Package tcerr defines the error taxonomy shared by every layer of the
tinychain core, from the block cache up through the transaction
coordinator.

The core never retries internally and never distinguishes between
callers: every function that can fail returns a plain error, and
callers that care about the failure category use Is(err, kind), or Of
to classify an arbitrary error; errors.Is matches two *Error values
that carry the same Kind. Commit-path failures are always reported as
Internal, so that the
transaction coordinator can uniformly abort and finalize.
*/
package tcerr
