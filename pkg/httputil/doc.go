// Package httputil provides retry helpers for remote API clients.
//
// [Retry] re-runs an operation with exponential backoff while it fails with a
// [RetryableError]. Callers decide what is transient by wrapping it:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    if resp.StatusCode >= 500 {
//	        return &httputil.RetryableError{Err: fmt.Errorf("status %d", resp.StatusCode)}
//	    }
//	    return nil
//	})
//
// Any other error stops the loop immediately, so not-found and
// authentication failures are reported on the first attempt. Setting
// RetryableError.After makes the next wait follow a server's Retry-After
// header instead of the backoff schedule.
package httputil
