package netx

import (
	"context"
	"net/http"
)

// Reachable reports whether the HTTP endpoint at url answered at all.
// Any response, including an error status, means the network path works;
// only transport-level failures count as unreachable.
func Reachable(ctx context.Context, client *http.Client, url string) bool {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return true
}
