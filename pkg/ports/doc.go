/*
Package ports defines the driven ports (interfaces) for the nodecalc engine.

These interfaces decouple the calculation core from its hosts and sinks, allowing
the engine to publish observations to memory, Redis or a network client without
knowing about any of them.

# Key Interfaces

  - Engine: the edit command API and read side shared by the in-process engine
    and its serialized wrapper. Transport adapters (HTTP, MCP) depend on it.
  - Observer: receives an Observation after every completed command.
  - ObservationStore: an Observer that also answers for the latest observation.
*/
package ports
