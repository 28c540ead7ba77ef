/*
Package domain contains the core domain models of the nodecalc engine.

It defines the values that flow on ports, the nodes and connections of a
calculation graph, the validator's verdict and the sink's display projection.
This package is kept pure and free of external dependencies like I/O or
persistence.

# Key Entities

  - Value: nullable integer carried by ports, with Add and Div semantics.
  - Node / Port / Connection: the graph's structure.
  - Verdict: validity, severity and message produced after every command.
  - Display: the sink's projection (Unset, a number, or "Error").
  - Snapshot / Observation: immutable copies handed to collaborators.
*/
package domain
