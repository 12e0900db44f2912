package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// Environment variables consulted by Resolve.
const (
	EnvInstanceURLs = "SN_INSTANCE_URLS" // comma-separated URLs sharing one credential pair
	EnvInstances    = "SN_INSTANCES"     // JSON array of {url, username, password}
	EnvInstanceURL  = "SN_INSTANCE_URL"  // single URL
	EnvUsername     = "SN_USERNAME"
	EnvPassword     = "SN_PASSWORD"
	EnvIDPUsername  = "SN_IDP_USERNAME" // optional wake-up login override
	EnvIDPPassword  = "SN_IDP_PASSWORD"
)

// DefaultInstanceURL is used by the single-instance tier when EnvInstanceURL is unset.
const DefaultInstanceURL = "https://dev198124.service-now.com"

// ErrNoInstances reports that no usable instance configuration was resolved.
var ErrNoInstances = errors.New("no instance configuration resolved")

// Source names the tier an instance list was resolved from.
type Source string

const (
	SourceMultiURL Source = "multi_url"
	SourceJSON     Source = "json"
	SourceSingle   Source = "single"
)

// Instance is the immutable login target for one PDI.
type Instance struct {
	URL      string `json:"url"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// String returns the instance URL. Credentials are never rendered.
func (i Instance) String() string {
	return i.URL
}

// Host returns the host name of the instance URL, or the raw URL when it
// cannot be parsed.
func (i Instance) Host() string {
	u, err := url.Parse(i.URL)
	if err != nil || u.Host == "" {
		return i.URL
	}
	return u.Hostname()
}

// Credentials is a username/password pair.
type Credentials struct {
	Username string
	Password string
}

// IsZero reports whether either half of the pair is missing.
func (c Credentials) IsZero() bool {
	return c.Username == "" || c.Password == ""
}

// Resolution is the result of configuration resolution.
type Resolution struct {
	Instances []Instance
	Source    Source

	// Warnings lists tolerated problems, such as an unparseable JSON tier
	Warnings []string
}

// LookupFunc reads one configuration variable.
type LookupFunc func(key string) (string, bool)

// ResolveFromEnv resolves instances from the process environment.
func ResolveFromEnv() (*Resolution, error) {
	return Resolve(os.LookupEnv)
}

// Resolve builds the ordered instance list. Precedence:
//
//  1. EnvInstanceURLs with shared EnvUsername / EnvPassword
//  2. EnvInstances as a JSON array; a parse failure falls through
//  3. EnvInstanceURL (default DefaultInstanceURL) with EnvUsername / EnvPassword
//
// A tier that applies but lacks credentials is a hard misconfiguration and
// returns ErrNoInstances.
func Resolve(lookup LookupFunc) (*Resolution, error) {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}
	shared := Credentials{Username: get(EnvUsername), Password: get(EnvPassword)}
	res := &Resolution{}

	if urls := splitURLs(get(EnvInstanceURLs)); len(urls) > 0 {
		if shared.IsZero() {
			return nil, fmt.Errorf("%w: %s requires %s and %s", ErrNoInstances, EnvInstanceURLs, EnvUsername, EnvPassword)
		}
		for _, u := range urls {
			res.Instances = append(res.Instances, Instance{URL: u, Username: shared.Username, Password: shared.Password})
		}
		res.Source = SourceMultiURL
		return res, nil
	}

	if raw := get(EnvInstances); raw != "" {
		instances, err := parseInstancesJSON(raw)
		switch {
		case err != nil:
			res.Warnings = append(res.Warnings, fmt.Sprintf("ignoring %s: %v", EnvInstances, err))
		case len(instances) > 0:
			for i, inst := range instances {
				if inst.URL == "" || inst.Username == "" || inst.Password == "" {
					return nil, fmt.Errorf("%w: %s entry %d requires url, username and password", ErrNoInstances, EnvInstances, i)
				}
			}
			res.Instances = instances
			res.Source = SourceJSON
			return res, nil
		}
	}

	if shared.IsZero() {
		return nil, fmt.Errorf("%w: %s and %s must be set", ErrNoInstances, EnvUsername, EnvPassword)
	}
	instanceURL := get(EnvInstanceURL)
	if instanceURL == "" {
		instanceURL = DefaultInstanceURL
	}
	res.Instances = []Instance{{URL: instanceURL, Username: shared.Username, Password: shared.Password}}
	res.Source = SourceSingle
	return res, nil
}

// ResolveWakeCredentials returns the identity-provider override credentials.
// The zero value means each instance's own credentials are used.
func ResolveWakeCredentials(lookup LookupFunc) Credentials {
	user, _ := lookup(EnvIDPUsername)
	pass, _ := lookup(EnvIDPPassword)
	creds := Credentials{Username: strings.TrimSpace(user), Password: strings.TrimSpace(pass)}
	if creds.IsZero() {
		return Credentials{}
	}
	return creds
}

func splitURLs(raw string) []string {
	var urls []string
	for _, part := range strings.Split(raw, ",") {
		if u := strings.TrimSpace(part); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

func parseInstancesJSON(raw string) ([]Instance, error) {
	var instances []Instance
	if err := json.Unmarshal([]byte(raw), &instances); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	for i := range instances {
		instances[i].URL = strings.TrimSpace(instances[i].URL)
		instances[i].Username = strings.TrimSpace(instances[i].Username)
	}
	return instances, nil
}
