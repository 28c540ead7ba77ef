// Package graph implements the calculation graph: nodes, their ports and the
// connections among them, plus the mutation API the engine drives.
//
// Structural rules are enforced here (known ids, one connection per input,
// matching port types, a protected sink). Cycles are allowed to exist; they
// are reported by the validator instead of being rejected.
package graph
