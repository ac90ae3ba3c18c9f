package apiclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mergington/activities/frontend/internal/rostertest"
	"github.com/mergington/activities/shared/domain"
	internal_errors "github.com/mergington/activities/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetActivities(t *testing.T) {
	ctx := context.Background()

	t.Run("success keeps order", func(t *testing.T) {
		srv := rostertest.New(t, rostertest.Seed())
		c := New(srv.URL, 0)

		activities, err := c.GetActivities(ctx)
		require.NoError(t, err)
		assert.Equal(t, []domain.ActivityName{"Chess Club", "Programming Class", "Gym Class"}, activities.Names())
		assert.Equal(t, 1, srv.Calls(rostertest.OpList))
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := rostertest.New(t, rostertest.Seed())
		srv.FailNext(rostertest.OpList, rostertest.Malformed)

		_, err := New(srv.URL, 0).GetActivities(ctx)
		require.Error(t, err)
		_, isStatus := internal_errors.AsStatusError(err)
		assert.False(t, isStatus)
	})

	t.Run("server error", func(t *testing.T) {
		srv := rostertest.New(t, rostertest.Seed())
		srv.FailNext(rostertest.OpList, rostertest.Bare)

		_, err := New(srv.URL, 0).GetActivities(ctx)
		se, ok := internal_errors.AsStatusError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := New(url, 0).GetActivities(ctx)
		assert.ErrorContains(t, err, "roster service unavailable")
	})
}

func TestSignup(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		srv := rostertest.New(t, rostertest.Seed())
		c := New(srv.URL, 0)

		msg, err := c.Signup(ctx, "Chess Club", "new@mergington.edu")
		require.NoError(t, err)
		assert.Equal(t, "Signed up new@mergington.edu for Chess Club", msg.Message)

		chess, _ := srv.Activities().Find("Chess Club")
		assert.Contains(t, chess.Participants, "new@mergington.edu")
	})

	t.Run("escapes name and email", func(t *testing.T) {
		seed := domain.Activities{{Name: "Art/Design & Co?", MaxParticipants: 3, Participants: []domain.Email{}}}
		srv := rostertest.New(t, seed)

		_, err := New(srv.URL, 0).Signup(ctx, "Art/Design & Co?", "a+b@x.com")
		require.NoError(t, err)

		art, _ := srv.Activities().Find("Art/Design & Co?")
		assert.Equal(t, []domain.Email{"a+b@x.com"}, art.Participants)
	})

	failures := []struct {
		name       string
		seed       domain.Activities
		activity   string
		email      string
		wantStatus int
		wantDetail string
	}{
		{"already registered", rostertest.Seed(), "Chess Club", "michael@mergington.edu", http.StatusBadRequest, "Student already registered for this activity"},
		{"unknown activity", rostertest.Seed(), "Nonexistent Club", "a@x.com", http.StatusNotFound, "Activity not found"},
		{"full", domain.Activities{{Name: "Tiny", MaxParticipants: 1, Participants: []domain.Email{"x@x.com"}}}, "Tiny", "a@x.com", http.StatusBadRequest, "Activity full"},
		{"structured detail", rostertest.Seed(), "Chess Club", "", http.StatusUnprocessableEntity, ""},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			srv := rostertest.New(t, tt.seed)

			_, err := New(srv.URL, 0).Signup(ctx, tt.activity, tt.email)
			se, ok := internal_errors.AsStatusError(err)
			require.True(t, ok, "expected status error, got %v", err)
			assert.Equal(t, tt.wantStatus, se.StatusCode)
			assert.Equal(t, tt.wantDetail, se.Message)
		})
	}

	t.Run("dropped connection", func(t *testing.T) {
		srv := rostertest.New(t, rostertest.Seed())
		srv.FailNext(rostertest.OpSignup, rostertest.Drop)

		_, err := New(srv.URL, 0).Signup(ctx, "Chess Club", "a@x.com")
		require.Error(t, err)
		_, isStatus := internal_errors.AsStatusError(err)
		assert.False(t, isStatus)
	})

	t.Run("malformed success body", func(t *testing.T) {
		srv := rostertest.New(t, rostertest.Seed())
		srv.FailNext(rostertest.OpSignup, rostertest.Malformed)

		_, err := New(srv.URL, 0).Signup(ctx, "Chess Club", "a@x.com")
		assert.ErrorContains(t, err, "cannot decode signup response")
	})

	t.Run("error status with an html body", func(t *testing.T) {
		srv := rostertest.New(t, rostertest.Seed())
		srv.FailNext(rostertest.OpSignup, rostertest.ErrorPage)

		_, err := New(srv.URL, 0).Signup(ctx, "Chess Club", "a@x.com")
		require.Error(t, err)
		_, isStatus := internal_errors.AsStatusError(err)
		assert.False(t, isStatus)
		assert.ErrorContains(t, err, "cannot decode signup error response (status 500)")
	})
}

func TestUnregister(t *testing.T) {
	ctx := context.Background()
	srv := rostertest.New(t, rostertest.Seed())
	c := New(srv.URL, 0)

	msg, err := c.Unregister(ctx, "Chess Club", "michael@mergington.edu")
	require.NoError(t, err)
	assert.Equal(t, "Unregistered michael@mergington.edu from Chess Club", msg.Message)

	_, err = c.Unregister(ctx, "Chess Club", "michael@mergington.edu")
	se, ok := internal_errors.AsStatusError(err)
	require.True(t, ok)
	assert.Equal(t, "Student not registered for this activity", se.Message)
	assert.Equal(t, 2, srv.Calls(rostertest.OpUnregister))
}

func TestClientTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	_, err := New(srv.URL, 20*time.Millisecond).GetActivities(context.Background())
	assert.ErrorContains(t, err, "roster service unavailable")
}

func TestNewTrimsBaseURL(t *testing.T) {
	c := New("http://roster:8000/", 0)
	assert.Equal(t, "http://roster:8000", c.BaseURL)
	assert.Equal(t, time.Duration(0), c.HttpClient.Timeout)
}
