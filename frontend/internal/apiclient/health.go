package apiclient

import "context"

// Ping reports whether the roster service answers the collection request.
func (c *APIClient) Ping(ctx context.Context) error {
	_, err := c.GetActivities(ctx)
	return err
}
