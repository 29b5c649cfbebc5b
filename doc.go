/*
Package retryfetch fetches a resource over HTTP, retrying failed attempts with a
deterministic exponential backoff (1s, 2s, 4s, ...) and honoring cancellation of
the supplied context.

Any response outside of the 2xx range is retried in exactly the same way as a
transport error. When every attempt fails, the error of the final attempt is
returned untouched, so callers may inspect it with `errors.Is` and `errors.As`.
*/
package retryfetch
