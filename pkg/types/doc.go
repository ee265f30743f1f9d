// Package types defines the block tree entities, the host document and
// clipboard interfaces, configuration, and the standard error types for
// blockclip.
//
// A BlockNode owns everything reachable through its input slots. Its Next
// link names a sibling and is never part of a copied subtree.
package types
