/*
Package execution provides named executor pools for off-dispatch work.

Operations that name an executor never touch the partition or generic
workers; the scheduler resolves the name through Service and submits the
work to the pool's own goroutines. Pools drain an unbounded queue,
recover task panics, and drain remaining work before Shutdown returns.
*/
package execution
