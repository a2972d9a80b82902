// Package resource provides admission control for solves, bounding
// concurrency with a weighted semaphore and throughput with a token
// bucket rate limiter.
package resource
