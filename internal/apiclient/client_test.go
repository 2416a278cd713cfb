package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sololeveling/internal/model"
	"github.com/sololeveling/internal/testkit/stubapi"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

const twoMissions = `[
  {"id":"m2","user_id":"u1","title":"Calorie Guard","description":"stay under","xp_reward":40,"goal":{"type":"net_calories","target":1600},"status":"active"},
  {"id":"m1","user_id":"u1","title":"Rope Trial","description":"600 skips","xp_reward":50,"goal":{"type":"rope_skips","target":600},"status":"active"}
]`

func TestBearerHeaderOnlyWithToken(t *testing.T) {
	api := stubapi.New(t)
	api.Handle(http.MethodGet, PathMissions, http.StatusOK, `[]`)

	_, err := New(api.URL, staticToken("t1")).GetMissions(context.Background())
	require.NoError(t, err)
	req, ok := api.Last(http.MethodGet, PathMissions)
	require.True(t, ok)
	assert.Equal(t, "Bearer t1", req.Authorization)
	assert.Equal(t, "application/json", req.ContentType)

	_, err = New(api.URL, staticToken("")).GetMissions(context.Background())
	require.NoError(t, err)
	req, _ = api.Last(http.MethodGet, PathMissions)
	assert.Empty(t, req.Authorization)

	_, err = New(api.URL, nil).GetMissions(context.Background())
	require.NoError(t, err)
	req, _ = api.Last(http.MethodGet, PathMissions)
	assert.Empty(t, req.Authorization)
}

func TestTokenReadOnEveryRequest(t *testing.T) {
	api := stubapi.New(t)
	api.Handle(http.MethodPost, PathGenerateMissions, http.StatusOK, `[]`)
	tokens := &mutableToken{}
	c := New(api.URL, tokens)

	require.NoError(t, c.GenerateMissions(context.Background()))
	tokens.v = "fresh"
	require.NoError(t, c.GenerateMissions(context.Background()))

	reqs := api.Requests()
	require.Len(t, reqs, 2)
	assert.Empty(t, reqs[0].Authorization)
	assert.Equal(t, "Bearer fresh", reqs[1].Authorization)
}

type mutableToken struct{ v string }

func (m *mutableToken) Token() string { return m.v }

func TestErrorMessageIsBodyVerbatim(t *testing.T) {
	api := stubapi.New(t)
	api.Handle(http.MethodGet, PathMissions, http.StatusUnauthorized, "invalid token")

	_, err := New(api.URL, staticToken("bad")).GetMissions(context.Background())
	require.Error(t, err)
	assert.Equal(t, "invalid token", err.Error())

	var re *RequestError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, http.StatusUnauthorized, re.Status)
	assert.True(t, IsUnauthorized(err))
}

func TestErrorBodyNotTransformed(t *testing.T) {
	api := stubapi.New(t)
	body := `{"detail":"Email already registered"}` + "\n"
	api.Handle(http.MethodPost, PathSignup, http.StatusBadRequest, body)

	_, err := New(api.URL, nil).Signup(context.Background(), model.SignupRequest{Email: "a@x.com", Password: "p"})
	require.Error(t, err)
	assert.Equal(t, body, err.Error())
	assert.Equal(t, http.StatusBadRequest, StatusOf(err))
}

func TestEmptyErrorBodyFallsBackToStatus(t *testing.T) {
	api := stubapi.New(t)
	api.Handle(http.MethodGet, PathMissions, http.StatusInternalServerError, "")

	_, err := New(api.URL, staticToken("t1")).GetMissions(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Request failed with status 500", err.Error())
	assert.Equal(t, http.StatusInternalServerError, StatusOf(err))
	assert.False(t, IsUnauthorized(err))
}

func TestUnknownRouteFallback(t *testing.T) {
	api := stubapi.New(t)

	err := New(api.URL, nil).Do(context.Background(), "", "/nope", nil, nil)
	require.Error(t, err)
	assert.Equal(t, "Request failed with status 404", err.Error())
	req, ok := api.Last(http.MethodGet, "/nope")
	require.True(t, ok, "empty method must default to GET")
	assert.Empty(t, req.Body)
}

func TestSuccessWithoutBodyIsNotAnError(t *testing.T) {
	api := stubapi.New(t)
	api.Handle(http.MethodPost, PathGenerateMissions, http.StatusNoContent, "")
	api.Handle(http.MethodGet, PathMissions, http.StatusOK, "")
	c := New(api.URL, staticToken("t1"))

	require.NoError(t, c.GenerateMissions(context.Background()))

	raw, err := c.DoRaw(context.Background(), Request{Path: PathMissions})
	require.NoError(t, err)
	assert.Nil(t, raw)

	missions, err := c.GetMissions(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, missions)
	assert.Empty(t, missions)
}

func TestMalformedSuccessBodyIsAbsent(t *testing.T) {
	api := stubapi.New(t)
	api.Handle(http.MethodGet, PathHealth, http.StatusOK, "ok, not json")
	c := New(api.URL, nil)

	raw, err := c.DoRaw(context.Background(), Request{Path: PathHealth})
	require.NoError(t, err)
	assert.Nil(t, raw)

	out := map[string]any{"untouched": true}
	require.NoError(t, c.Do(context.Background(), http.MethodGet, PathHealth, nil, &out))
	assert.Equal(t, map[string]any{"untouched": true}, out)
}

func TestGetMissionsPreservesOrderAndGoal(t *testing.T) {
	api := stubapi.New(t)
	api.Handle(http.MethodGet, PathMissions, http.StatusOK, twoMissions)

	missions, err := New(api.URL, staticToken("t1")).GetMissions(context.Background())
	require.NoError(t, err)
	require.Len(t, missions, 2)
	assert.Equal(t, "m2", missions[0].ID)
	assert.Equal(t, "m1", missions[1].ID)
	assert.Equal(t, 50, missions[1].XPReward)
	assert.Equal(t, model.MissionStatusActive, missions[0].Status)
	assert.JSONEq(t, `{"type":"rope_skips","target":600}`, string(missions[1].Goal))
}

func TestNullGoalDecodesToNil(t *testing.T) {
	api := stubapi.New(t)
	api.Handle(http.MethodGet, PathMissions, http.StatusOK, `[{"id":"m1","goal":null}]`)

	missions, err := New(api.URL, staticToken("t1")).GetMissions(context.Background())
	require.NoError(t, err)
	require.Len(t, missions, 1)
	assert.Nil(t, missions[0].Goal)
}

func TestStringGoalKeptVerbatim(t *testing.T) {
	api := stubapi.New(t)
	api.Handle(http.MethodGet, PathMissions, http.StatusOK,
		`[{"id":"m1","title":"Rope Trial","xp_reward":50,"goal":"{'type': 'rope_skips', 'target': 600}","status":"active"},`+
			`{"id":"m2","goal":600}]`)

	missions, err := New(api.URL, staticToken("t1")).GetMissions(context.Background())
	require.NoError(t, err)
	require.Len(t, missions, 2)
	assert.Equal(t, "{'type': 'rope_skips', 'target': 600}", missions[0].Goal.Text())
	assert.Equal(t, "600", missions[1].Goal.Text())

	out, err := json.Marshal(missions[0])
	require.NoError(t, err)
	var back map[string]any
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, "{'type': 'rope_skips', 'target': 600}", back["goal"], "goal is forwarded as received")
}

func TestSignupBody(t *testing.T) {
	api := stubapi.New(t)
	api.Handle(http.MethodPost, PathSignup, http.StatusOK, `{"status":"ok","user_id":"u1","token":"t1"}`)

	resp, err := New(api.URL, nil).Signup(context.Background(), model.SignupRequest{
		Email:       "a@x.com",
		Password:    "p",
		DisplayName: "A",
	})
	require.NoError(t, err)
	assert.Equal(t, &model.AuthResponse{Status: "ok", UserID: "u1", Token: "t1"}, resp)

	req, ok := api.Last(http.MethodPost, PathSignup)
	require.True(t, ok)
	var sent map[string]any
	require.NoError(t, json.Unmarshal(req.Body, &sent))
	assert.Equal(t, map[string]any{"email": "a@x.com", "password": "p", "display_name": "A"}, sent)
}

func TestSignupOptionalProfileFields(t *testing.T) {
	api := stubapi.New(t)
	api.Handle(http.MethodPost, PathSignup, http.StatusOK, `{"status":"ok","user_id":"u1","token":"t1"}`)
	height, weight := 173, 75.5

	_, err := New(api.URL, nil).Signup(context.Background(), model.SignupRequest{
		Email:         "a@x.com",
		Password:      "p",
		HeightCm:      &height,
		WeightKg:      &weight,
		ActivityLevel: model.ActivitySedentary,
	})
	require.NoError(t, err)
	req, _ := api.Last(http.MethodPost, PathSignup)
	assert.JSONEq(t, `{"email":"a@x.com","password":"p","height_cm":173,"weight_kg":75.5,"activity_level":"sedentary"}`, string(req.Body))
}

func TestLogin(t *testing.T) {
	api := stubapi.New(t)
	api.Handle(http.MethodPost, PathLogin, http.StatusOK, `{"status":"ok","user_id":"u9","token":"t9"}`)

	resp, err := New(api.URL+"/", nil).Login(context.Background(), "a@x.com", "p")
	require.NoError(t, err)
	assert.Equal(t, "u9", resp.UserID)
	assert.Equal(t, "t9", resp.Session().Token)

	req, ok := api.Last(http.MethodPost, PathLogin)
	require.True(t, ok, "trailing slash in base URL must be trimmed")
	assert.JSONEq(t, `{"email":"a@x.com","password":"p"}`, string(req.Body))
}

func TestGenerateMissionsSendsNoBody(t *testing.T) {
	api := stubapi.New(t)
	api.Handle(http.MethodPost, PathGenerateMissions, http.StatusOK, twoMissions)

	require.NoError(t, New(api.URL, staticToken("t1")).GenerateMissions(context.Background()))
	req, ok := api.Last(http.MethodPost, PathGenerateMissions)
	require.True(t, ok)
	assert.Empty(t, req.Body)
	assert.Equal(t, "Bearer t1", req.Authorization)
}

func TestRawBodyAndHeaderOverride(t *testing.T) {
	api := stubapi.New(t)
	api.Handle(http.MethodPost, "/echo", http.StatusOK, `{"ok":true}`)

	raw, err := New(api.URL, staticToken("t1")).DoRaw(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/echo",
		Body:   []byte(`{"already":"serialised"}`),
		Header: http.Header{"Content-Type": {"text/plain"}, "Authorization": {"Basic x"}},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(raw))

	req, _ := api.Last(http.MethodPost, "/echo")
	assert.Equal(t, `{"already":"serialised"}`, string(req.Body))
	assert.Equal(t, "text/plain", req.ContentType)
	assert.Equal(t, "Bearer t1", req.Authorization, "session token wins over caller header")
}

func TestCallerAuthorizationDroppedWithoutToken(t *testing.T) {
	api := stubapi.New(t)
	api.Handle(http.MethodGet, PathMissions, http.StatusOK, `[]`)

	for name, tokens := range map[string]TokenSource{"empty token": staticToken(""), "no source": nil} {
		_, err := New(api.URL, tokens).DoRaw(context.Background(), Request{
			Path:   PathMissions,
			Header: http.Header{"Authorization": {"Bearer stale"}},
		})
		require.NoError(t, err, name)
		req, _ := api.Last(http.MethodGet, PathMissions)
		assert.Empty(t, req.Authorization, name)
	}
}

func TestTransportFailureIsNotRequestError(t *testing.T) {
	c := New("http://127.0.0.1:1", nil)

	err := c.Health(context.Background())
	require.Error(t, err)
	var re *RequestError
	assert.False(t, errors.As(err, &re))
	assert.Zero(t, StatusOf(err))
}

func TestContextCancellation(t *testing.T) {
	api := stubapi.New(t)
	api.Handle(http.MethodGet, PathHealth, http.StatusOK, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New(api.URL, nil).Health(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDefaultBaseURL(t *testing.T) {
	assert.Equal(t, DefaultBaseURL, New("", nil).BaseURL())
}
