/*
Package observability provides tools for monitoring the nodecalc engine.

It turns the engine's lifecycle hooks into Prometheus metrics and structured
log records. Both are plain domain.LifecycleHooks values, so they compose with
user hooks through domain.ChainHooks.
*/
package observability
