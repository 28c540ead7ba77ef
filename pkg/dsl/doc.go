/*
Package dsl provides a fluent builder for assembling nodecalc graphs in Go.

Nodes are declared by alias and wired by alias; Build replays the declaration
as edit commands against any ports.Engine, so the result goes through the
same validation as hand-issued commands. This is particularly useful for unit
tests, examples and generated graphs.

Example usage:

	b := dsl.New()
	b.Constant("five").Literal(5)
	b.Constant("three").Literal(3)
	b.Sum("total").From("five").From("three")
	b.Output().From("total")

	refs, err := b.Build(ctx, engine)
	if err != nil {
		return err
	}
	fmt.Println(refs.Node("total")) // sum-3
*/
package dsl
