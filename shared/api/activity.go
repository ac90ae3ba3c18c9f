package api

import (
	"errors"
	"fmt"

	"github.com/mergington/activities/shared/domain"
	"github.com/tidwall/gjson"
)

var ErrInvalidActivityList = errors.New("invalid activity list")

// Response DTOs of the roster service

// MessageResponse is the success body of signup and unregister.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the failure body of signup and unregister. Validation
// failures carry a structured detail instead of a string.
type ErrorResponse struct {
	Detail any `json:"detail,omitempty"`
}

// DetailText returns the detail when it is a string, or "".
func (e ErrorResponse) DetailText() string {
	s, _ := e.Detail.(string)
	return s
}

// ActivityResponse is one value of the GET /activities object.
type ActivityResponse struct {
	Description     string         `json:"description"`
	Schedule        string         `json:"schedule"`
	MaxParticipants int            `json:"max_participants"`
	Participants    []domain.Email `json:"participants"`
}

// ParseActivityList decodes the GET /activities body. The body is a JSON
// object keyed by activity name, and encoding/json maps lose key order, so the
// object is walked with gjson to keep the server's order. A repeated key keeps
// its first position and its last value.
func ParseActivityList(body []byte) (domain.Activities, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: body is not valid json", ErrInvalidActivityList)
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: expected object, got %s", ErrInvalidActivityList, root.Type)
	}

	activities := domain.Activities{}
	index := make(map[domain.ActivityName]int)
	var parseErr error
	root.ForEach(func(key, value gjson.Result) bool {
		activity, err := parseActivity(key.String(), value)
		if err != nil {
			parseErr = err
			return false
		}
		if i, ok := index[activity.Name]; ok {
			activities[i] = activity
			return true
		}
		index[activity.Name] = len(activities)
		activities = append(activities, activity)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return activities, nil
}

func parseActivity(name string, value gjson.Result) (domain.Activity, error) {
	if !value.IsObject() {
		return domain.Activity{}, fmt.Errorf("%w: activity %q is not an object", ErrInvalidActivityList, name)
	}
	maxParticipants := value.Get("max_participants")
	if maxParticipants.Type != gjson.Number {
		return domain.Activity{}, fmt.Errorf("%w: activity %q has no numeric max_participants", ErrInvalidActivityList, name)
	}
	participants := value.Get("participants")
	if !participants.IsArray() {
		return domain.Activity{}, fmt.Errorf("%w: activity %q has no participants array", ErrInvalidActivityList, name)
	}

	emails := []domain.Email{}
	for _, p := range participants.Array() {
		emails = append(emails, p.String())
	}
	return domain.Activity{
		Name:            name,
		Description:     value.Get("description").String(),
		Schedule:        value.Get("schedule").String(),
		MaxParticipants: int(maxParticipants.Int()),
		Participants:    emails,
	}, nil
}

// ToActivityResponse builds the wire form of one activity.
func ToActivityResponse(a domain.Activity) ActivityResponse {
	participants := a.Participants
	if participants == nil {
		participants = []domain.Email{}
	}
	return ActivityResponse{
		Description:     a.Description,
		Schedule:        a.Schedule,
		MaxParticipants: a.MaxParticipants,
		Participants:    participants,
	}
}
