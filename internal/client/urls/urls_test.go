package urls

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	url string
	err error
}

func (f fakeSource) ServerURL(context.Context) (string, error) { return f.url, f.err }

func TestNormalizeServerURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"studies.example.org", "https://studies.example.org"},
		{"http://studies.example.org", "https://studies.example.org"},
		{"https://studies.example.org/", "https://studies.example.org"},
		{"  https://x.org  ", "https://x.org"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeServerURL(tt.in))
		})
	}
}

func TestParseChannel(t *testing.T) {
	c, err := ParseChannel("")
	require.NoError(t, err)
	assert.Equal(t, ChannelProduction, c)

	c, err = ParseChannel("Staging")
	require.NoError(t, err)
	assert.Equal(t, ChannelStaging, c)
	assert.Equal(t, StagingURL, c.DefaultURL())

	_, err = ParseChannel("beta")
	require.Error(t, err)
}

func TestResolver(t *testing.T) {
	ctx := context.Background()

	r := NewResolver(fakeSource{url: "https://custom.org"}, true, ChannelProduction)
	u, err := r.Resolve(ctx, PathUpload)
	require.NoError(t, err)
	assert.Equal(t, "https://custom.org/upload", u)

	r = NewResolver(fakeSource{url: ""}, true, ChannelStaging)
	u, err = r.Resolve(ctx, PathRegister)
	require.NoError(t, err)
	assert.Equal(t, StagingURL+"/register_user", u)

	r = NewResolver(fakeSource{url: "https://custom.org"}, false, ChannelProduction)
	u, err = r.Resolve(ctx, PathSetFCMToken)
	require.NoError(t, err)
	assert.Equal(t, ProductionURL+"/set_fcm_token", u)

	r = NewResolver(fakeSource{err: errors.New("disk gone")}, true, ChannelProduction)
	_, err = r.Base(ctx)
	require.ErrorContains(t, err, "disk gone")
}
