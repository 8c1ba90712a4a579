/*
Package types defines the core data model shared by every tinychain
storage component: filesystem paths, transaction identifiers, block
identifiers, and the scalar/tensor element types that the Collator and
tensor block layer need to reason about ordering and byte width.

None of these types know how to persist themselves — that is the job
of pkg/cache and pkg/txnfile. types only fixes the vocabulary so those
packages, and pkg/btree/pkg/tensor above them, agree on what a path,
a transaction id, and a number look like.
*/
package types
