package router

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	authenticated bool
	calls         int
}

func (s *fakeSession) IsAuthenticated(ctx context.Context) bool {
	s.calls++
	return s.authenticated
}

func TestNavigate_Root(t *testing.T) {
	tests := []struct {
		name          string
		authenticated bool
		want          string
	}{
		{"authenticated lands on dashboard", true, PathDashboard},
		{"anonymous bounces to login", false, PathLogin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewDefault(&fakeSession{authenticated: tt.authenticated})

			rt, err := r.Navigate(context.Background(), PathRoot)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rt.Path)
			assert.Equal(t, tt.want, r.Current().Path)
		})
	}
}

func TestNavigate_Guards(t *testing.T) {
	tests := []struct {
		path          string
		authenticated bool
		want          string
	}{
		{PathLogin, false, PathLogin},
		{PathLogin, true, PathDashboard},
		{PathRegister, false, PathRegister},
		{PathRegister, true, PathDashboard},
		{PathDashboard, true, PathDashboard},
		{PathDashboard, false, PathLogin},
		{"dashboard/", false, PathLogin},
		{"", true, PathDashboard},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			r := NewDefault(&fakeSession{authenticated: tt.authenticated})
			rt, err := r.Navigate(context.Background(), tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rt.Path)
		})
	}
}

func TestNavigate_ProtectedNeverEnteredAnonymously(t *testing.T) {
	s := &fakeSession{}
	var entered []string
	r := NewDefault(s, WithObserver(func(ctx context.Context, from, to Route) {
		entered = append(entered, to.Path)
	}))

	for _, p := range []string{PathRoot, PathDashboard, PathLogin, PathRegister} {
		_, err := r.Navigate(context.Background(), p)
		require.NoError(t, err)
	}

	assert.NotContains(t, entered, PathDashboard)
	assert.Positive(t, s.calls)
}

func TestNavigate_UnknownPath(t *testing.T) {
	r := NewDefault(&fakeSession{})
	_, err := r.Navigate(context.Background(), "/nowhere")
	require.ErrorIs(t, err, ErrRouteNotFound)
	assert.Equal(t, Route{}, r.Current())
}

func TestNavigate_RedirectLoop(t *testing.T) {
	r, err := New(&fakeSession{}, []Route{
		{Path: "/a", RedirectTo: "/b"},
		{Path: "/b", RedirectTo: "/a"},
	})
	require.NoError(t, err)

	_, err = r.Navigate(context.Background(), "/a")
	require.ErrorIs(t, err, ErrTooManyRedirects)
}

func TestNew_RejectsBadTables(t *testing.T) {
	_, err := New(&fakeSession{}, []Route{{Path: "/a"}, {Path: "a/"}})
	require.Error(t, err)

	_, err = New(&fakeSession{}, []Route{{Path: "/a", Class: Protected, RedirectTo: "/b"}})
	require.Error(t, err)
}

func TestRedirect_NotifiesObserversOnce(t *testing.T) {
	s := &fakeSession{authenticated: true}
	var changes [][2]string
	r := NewDefault(s, WithObserver(func(ctx context.Context, from, to Route) {
		changes = append(changes, [2]string{from.Path, to.Path})
	}))

	r.Redirect(context.Background(), PathDashboard)
	r.Redirect(context.Background(), PathDashboard)

	s.authenticated = false
	r.Redirect(context.Background(), PathLogin)
	r.Redirect(context.Background(), "/missing")

	assert.Equal(t, [][2]string{{"", PathDashboard}, {PathDashboard, PathLogin}}, changes)
	assert.Equal(t, PathLogin, r.Current().Path)
}
