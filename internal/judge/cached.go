package judge

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/spboyer/panelscore/internal/cache"
)

// WithCache serves repeated prompts for the same judge from c. namespace
// should identify the provider and model. Only successful, non-empty
// responses are stored.
func WithCache(inv Invoker, c *cache.Cache, namespace string) Invoker {
	if c == nil {
		return inv
	}
	return InvokerFunc(func(ctx context.Context, prompt string) (*Response, error) {
		key, err := cache.Key(namespace, prompt)
		if err != nil {
			return inv.Invoke(ctx, prompt)
		}

		if data, ok := c.Get(key); ok {
			var resp Response
			if err := json.Unmarshal(data, &resp); err == nil {
				slog.DebugContext(ctx, "judge cache hit", "judge", namespace, "key", key[:12])
				return &resp, nil
			}
		}

		resp, err := inv.Invoke(ctx, prompt)
		if err != nil || resp == nil || (resp.Text == "" && resp.Verdict == "") {
			return resp, err
		}

		data, err := json.Marshal(resp)
		if err == nil {
			err = c.Put(key, data)
		}
		if err != nil {
			slog.WarnContext(ctx, "failed to cache judge response", "judge", namespace, "error", err)
		}
		return resp, nil
	})
}
