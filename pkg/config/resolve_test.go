package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapLookup(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestResolve_MultiURLTier(t *testing.T) {
	res, err := Resolve(mapLookup(map[string]string{
		EnvInstanceURLs: "https://dev1.service-now.com, https://dev2.service-now.com/ ,,",
		EnvUsername:     "admin",
		EnvPassword:     "secret",
		EnvInstances:    `[{"url":"https://ignored","username":"u","password":"p"}]`,
	}))
	require.NoError(t, err)

	assert.Equal(t, SourceMultiURL, res.Source)
	require.Len(t, res.Instances, 2)
	assert.Equal(t, Instance{URL: "https://dev1.service-now.com", Username: "admin", Password: "secret"}, res.Instances[0])
	assert.Equal(t, "https://dev2.service-now.com/", res.Instances[1].URL)
	assert.Equal(t, "admin", res.Instances[1].Username)
}

func TestResolve_MultiURLTierMissingCredentials(t *testing.T) {
	res, err := Resolve(mapLookup(map[string]string{
		EnvInstanceURLs: "https://dev1.service-now.com",
		EnvUsername:     "admin",
	}))
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, ErrNoInstances))
}

func TestResolve_JSONTier(t *testing.T) {
	res, err := Resolve(mapLookup(map[string]string{
		EnvInstances: `[
			{"url": "https://dev1.service-now.com", "username": "a", "password": "1"},
			{"url": "https://dev2.service-now.com", "username": "b", "password": "2"}
		]`,
	}))
	require.NoError(t, err)

	assert.Equal(t, SourceJSON, res.Source)
	assert.Equal(t, []Instance{
		{URL: "https://dev1.service-now.com", Username: "a", Password: "1"},
		{URL: "https://dev2.service-now.com", Username: "b", Password: "2"},
	}, res.Instances)
	assert.Empty(t, res.Warnings)
}

func TestResolve_JSONTierEntryMissingPassword(t *testing.T) {
	_, err := Resolve(mapLookup(map[string]string{
		EnvInstances: `[{"url": "https://dev1.service-now.com", "username": "a"}]`,
		EnvUsername:  "admin",
		EnvPassword:  "secret",
	}))
	assert.True(t, errors.Is(err, ErrNoInstances))
}

func TestResolve_InvalidJSONFallsBackToSingle(t *testing.T) {
	res, err := Resolve(mapLookup(map[string]string{
		EnvInstances: `[{"url": "https://dev1.service-now.com",`,
		EnvUsername:  "admin",
		EnvPassword:  "secret",
	}))
	require.NoError(t, err)

	assert.Equal(t, SourceSingle, res.Source)
	assert.Equal(t, []Instance{{URL: DefaultInstanceURL, Username: "admin", Password: "secret"}}, res.Instances)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], EnvInstances)
}

func TestResolve_EmptyJSONArrayFallsThrough(t *testing.T) {
	res, err := Resolve(mapLookup(map[string]string{
		EnvInstances:   `[]`,
		EnvInstanceURL: "https://dev7.service-now.com",
		EnvUsername:    "admin",
		EnvPassword:    "secret",
	}))
	require.NoError(t, err)
	assert.Equal(t, SourceSingle, res.Source)
	assert.Equal(t, "https://dev7.service-now.com", res.Instances[0].URL)
}

func TestResolve_SingleTier(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantURL string
		wantErr bool
	}{
		{
			name:    "default URL",
			env:     map[string]string{EnvUsername: "admin", EnvPassword: "secret"},
			wantURL: DefaultInstanceURL,
		},
		{
			name:    "explicit URL",
			env:     map[string]string{EnvInstanceURL: "https://dev5.service-now.com", EnvUsername: "admin", EnvPassword: "secret"},
			wantURL: "https://dev5.service-now.com",
		},
		{
			name:    "missing password",
			env:     map[string]string{EnvUsername: "admin"},
			wantErr: true,
		},
		{
			name:    "blank username",
			env:     map[string]string{EnvUsername: "  ", EnvPassword: "secret"},
			wantErr: true,
		},
		{
			name:    "nothing set",
			env:     map[string]string{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Resolve(mapLookup(tt.env))
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrNoInstances))
				return
			}
			require.NoError(t, err)
			require.Len(t, res.Instances, 1)
			assert.Equal(t, tt.wantURL, res.Instances[0].URL)
		})
	}
}

func TestResolveWakeCredentials(t *testing.T) {
	creds := ResolveWakeCredentials(mapLookup(map[string]string{
		EnvIDPUsername: "dev@example.com",
		EnvIDPPassword: "pw",
	}))
	assert.Equal(t, Credentials{Username: "dev@example.com", Password: "pw"}, creds)

	partial := ResolveWakeCredentials(mapLookup(map[string]string{EnvIDPUsername: "dev@example.com"}))
	assert.True(t, partial.IsZero())
	assert.Equal(t, Credentials{}, partial)
}

func TestInstance_StringHidesCredentials(t *testing.T) {
	inst := Instance{URL: "https://dev1.service-now.com", Username: "admin", Password: "hunter2"}
	assert.Equal(t, "https://dev1.service-now.com", inst.String())
	assert.Equal(t, "dev1.service-now.com", inst.Host())
}
