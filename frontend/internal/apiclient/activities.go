package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/mergington/activities/shared/api"
	"github.com/mergington/activities/shared/domain"
	internal_errors "github.com/mergington/activities/shared/errors"
)

const (
	opListActivities = "list_activities"
	opSignup         = "signup"
	opUnregister     = "unregister"
)

// GetActivities fetches the whole collection in server order. A non-2xx
// status or a body that is not an activity list is an error.
func (c *APIClient) GetActivities(ctx context.Context) (domain.Activities, error) {
	start := time.Now()
	res, err := c.do(ctx, opListActivities, http.MethodGet, "/activities", nil)
	if err != nil {
		return nil, err
	}
	if !res.ok() {
		observe(opListActivities, outcomeServerError, start)
		return nil, &internal_errors.ErrorWithStatusCode{
			Message:    errorDetail(res.Body),
			StatusCode: res.StatusCode,
		}
	}

	activities, err := api.ParseActivityList(res.Body)
	if err != nil {
		observe(opListActivities, outcomeTransportError, start)
		return nil, fmt.Errorf("cannot decode activities response: %w", err)
	}
	observe(opListActivities, outcomeOK, start)
	return activities, nil
}

// Signup registers email into activity.
func (c *APIClient) Signup(ctx context.Context, activity domain.ActivityName, email domain.Email) (api.MessageResponse, error) {
	return c.mutate(ctx, opSignup, http.MethodPost, activityPath(activity, "signup"), email)
}

// Unregister removes email from activity.
func (c *APIClient) Unregister(ctx context.Context, activity domain.ActivityName, email domain.Email) (api.MessageResponse, error) {
	return c.mutate(ctx, opUnregister, http.MethodDelete, activityPath(activity, "unregister"), email)
}

// mutate returns *errors.ErrorWithStatusCode when the service answered with a
// failure body, and a plain error when no JSON answer was obtained.
func (c *APIClient) mutate(ctx context.Context, operation, method, path string, email domain.Email) (api.MessageResponse, error) {
	start := time.Now()
	res, err := c.do(ctx, operation, method, path, url.Values{"email": {email}})
	if err != nil {
		return api.MessageResponse{}, err
	}

	if res.ok() {
		var msg api.MessageResponse
		if err := json.Unmarshal(res.Body, &msg); err != nil {
			observe(operation, outcomeTransportError, start)
			return api.MessageResponse{}, fmt.Errorf("cannot decode %s response: %w", operation, err)
		}
		observe(operation, outcomeOK, start)
		return msg, nil
	}

	var failure api.ErrorResponse
	if err := json.Unmarshal(res.Body, &failure); err != nil {
		observe(operation, outcomeTransportError, start)
		return api.MessageResponse{}, fmt.Errorf("cannot decode %s error response (status %d): %w", operation, res.StatusCode, err)
	}
	observe(operation, outcomeServerError, start)
	return api.MessageResponse{}, &internal_errors.ErrorWithStatusCode{
		Message:    failure.DetailText(),
		StatusCode: res.StatusCode,
	}
}

func activityPath(activity domain.ActivityName, action string) string {
	return "/activities/" + url.PathEscape(activity) + "/" + action
}

func errorDetail(body []byte) string {
	var failure api.ErrorResponse
	if err := json.Unmarshal(body, &failure); err != nil {
		return ""
	}
	return failure.DetailText()
}
