/*
Package nodecalc is a reactive dataflow calculator engine.

A calculation is a directed graph of operator nodes (Constant, Sum, Division)
feeding a single protected Output sink through typed ports. Every edit command
re-propagates values in dependency order, re-validates the graph and projects
the sink's display before it returns.

# Concept

Structural mistakes (unknown ids, occupied inputs, removing the sink) are
rejected synchronously as *domain.StructuralError and leave the graph
unchanged. Semantic problems are not errors: a cycle anywhere yields the fatal
verdict "Network contains loops" and suspends propagation, and a division by
zero feeding the sink yields a warning. Both make the sink display "Error".

# Key Features

  - Deterministic propagation: topological order with insertion-order ties.
  - Observations: lifecycle hooks and ports.Observer subscribers see every
    completed command.
  - Concurrency: NewSerial wraps an engine in a single-writer command queue.
  - Adapters: HTTP (chi), MCP, Redis and in-memory observers under pkg/adapters.

# Usage

	eng, err := nodecalc.New()
	if err != nil {
		log.Fatal(err)
	}
	ctx := context.Background()

	five, _ := eng.AddNode(ctx, domain.KindConstant, map[string]any{"literal": 5})
	sum, _ := eng.AddNode(ctx, domain.KindSum, map[string]any{"defaults": []int64{0, 3}})
	eng.Connect(ctx, domain.Out(five, 0), domain.In(sum, 0))
	eng.Connect(ctx, domain.Out(sum, 0), domain.In("output", 0))

	fmt.Println(eng.Display().Text) // 8
*/
package nodecalc
