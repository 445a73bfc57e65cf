package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRefKey(t *testing.T) {
	cases := map[string]string{
		"":                          "",
		"abc123.jpg":                "abc123.jpg",
		"http://minio:9000/images/abc123.jpg":                          "abc123.jpg",
		"https://s3.example.com/bucket/key.png?X-Amz-Signature=deadbf": "key.png",
		"http://host/a/b/c/deep.webp?x=1&y=2":                          "deep.webp",
	}
	for ref, want := range cases {
		require.Equal(t, want, RefKey(ref), "ref %q", ref)
	}
}

func TestResolvePassesThroughAbsoluteURLs(t *testing.T) {
	env := newTestEnv(t)

	external := "https://cdn.example.com/banner.jpg"
	got := env.Assets.Resolve(context.Background(), &external)
	require.NotNil(t, got)
	require.Equal(t, external, *got)
}

func TestResolvePresignsBareKeys(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	key, err := env.Assets.Upload(ctx, []byte("img"), "a.jpg", "image/jpeg")
	require.NoError(t, err)

	got := env.Assets.Resolve(ctx, &key)
	require.NotNil(t, got)
	require.True(t, strings.HasPrefix(*got, "http://memstore.local/"+key))
}

func TestResolveNilAndEmpty(t *testing.T) {
	env := newTestEnv(t)

	require.Nil(t, env.Assets.Resolve(context.Background(), nil))
	empty := ""
	require.Nil(t, env.Assets.Resolve(context.Background(), &empty))
}

func TestResolveFallsBackToKeyWhenPresignFails(t *testing.T) {
	env := newTestEnv(t)

	missing := "no-such-key.jpg"
	got := env.Assets.Resolve(context.Background(), &missing)
	require.NotNil(t, got)
	require.Equal(t, missing, *got)
}
