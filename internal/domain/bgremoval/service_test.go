package bgremoval

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/ai-wardrobe/pkg/errors"
)

func TestParseBackend(t *testing.T) {
	require.Equal(t, BackendRemote, ParseBackend("removebg"))
	require.Equal(t, BackendRemote, ParseBackend(" Remote "))
	require.Equal(t, BackendLocal, ParseBackend("local"))
	require.Equal(t, BackendLocal, ParseBackend(""))
}

func TestRemoveLocalOnly(t *testing.T) {
	local := &stubLocal{out: []byte("local-png")}
	remote := &stubRemote{out: []byte("remote-png")}
	svc := newTestService(local, remote)

	out, err := svc.Remove(context.Background(), []byte("raw"), BackendConfig{Preferred: BackendLocal, RemoteAPIKey: "key"})
	require.NoError(t, err)
	require.Equal(t, []byte("local-png"), out)
	require.Zero(t, remote.calls)
}

func TestRemoveRemotePreferred(t *testing.T) {
	local := &stubLocal{out: []byte("local-png")}
	remote := &stubRemote{out: []byte("remote-png")}
	svc := newTestService(local, remote)

	out, err := svc.Remove(context.Background(), []byte("raw"), BackendConfig{Preferred: BackendRemote, RemoteAPIKey: "key"})
	require.NoError(t, err)
	require.Equal(t, []byte("remote-png"), out)
	require.Equal(t, "key", remote.lastKey)
	require.Zero(t, local.calls)
}

func TestRemoveRemoteTransientFallsBack(t *testing.T) {
	cases := map[string]error{
		"network": errors.New("connection reset"),
		"server":  apperrors.Upstream("remove.bg request failed", 500, ""),
		"timeout": context.DeadlineExceeded,
	}
	for name, remoteErr := range cases {
		t.Run(name, func(t *testing.T) {
			local := &stubLocal{out: []byte("local-png")}
			remote := &stubRemote{err: remoteErr}
			svc := newTestService(local, remote)

			out, err := svc.Remove(context.Background(), []byte("raw"), BackendConfig{Preferred: BackendRemote, RemoteAPIKey: "key"})
			require.NoError(t, err)
			require.Equal(t, []byte("local-png"), out)
			require.Equal(t, 1, remote.calls)
			require.Equal(t, 1, local.calls)
		})
	}
}

func TestRemoveRemoteQuotaFallsBackUnlessRequired(t *testing.T) {
	quota := &apperrors.AppError{Code: apperrors.CodeConfiguration, Message: "remove.bg credits exhausted", Status: 402}

	local := &stubLocal{out: []byte("local-png")}
	svc := newTestService(local, &stubRemote{err: quota})
	out, err := svc.Remove(context.Background(), []byte("raw"), BackendConfig{Preferred: BackendRemote, RemoteAPIKey: "key"})
	require.NoError(t, err)
	require.Equal(t, []byte("local-png"), out)

	local = &stubLocal{out: []byte("local-png")}
	svc = newTestService(local, &stubRemote{err: quota})
	_, err = svc.Remove(context.Background(), []byte("raw"), BackendConfig{Preferred: BackendRemote, RemoteAPIKey: "key", RequireRemote: true})
	require.True(t, apperrors.IsCode(err, apperrors.CodeBackgroundRemoval))
	require.Equal(t, 402, apperrors.StatusOf(errors.Unwrap(err)))
	require.Zero(t, local.calls)
}

func TestRemoveMissingRemoteKey(t *testing.T) {
	local := &stubLocal{out: []byte("local-png")}
	remote := &stubRemote{out: []byte("remote-png")}
	svc := newTestService(local, remote)

	out, err := svc.Remove(context.Background(), []byte("raw"), BackendConfig{Preferred: BackendRemote})
	require.NoError(t, err)
	require.Equal(t, []byte("local-png"), out)
	require.Zero(t, remote.calls)

	_, err = svc.Remove(context.Background(), []byte("raw"), BackendConfig{Preferred: BackendRemote, RequireRemote: true})
	require.True(t, apperrors.IsCode(err, apperrors.CodeBackgroundRemoval))
}

func TestRemoveAllBackendsFail(t *testing.T) {
	svc := newTestService(&stubLocal{err: errors.New("decode failed")}, &stubRemote{err: errors.New("offline")})

	_, err := svc.Remove(context.Background(), []byte("raw"), BackendConfig{Preferred: BackendRemote, RemoteAPIKey: "key"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeBackgroundRemoval))
	require.ErrorContains(t, err, "decode failed")
}

func TestRemoveCancelledContextStops(t *testing.T) {
	local := &stubLocal{out: []byte("local-png")}
	remote := &stubRemote{err: context.Canceled}
	svc := newTestService(local, remote)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.Remove(ctx, []byte("raw"), BackendConfig{Preferred: BackendRemote, RemoteAPIKey: "key"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeBackgroundRemoval))
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, local.calls)
}

func TestRemoveRemoteRunsUnderTimeout(t *testing.T) {
	remote := &stubRemote{out: []byte("remote-png")}
	svc := NewService(Config{RemoteTimeout: time.Second}, &stubLocal{}, remote, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := svc.Remove(context.Background(), []byte("raw"), BackendConfig{Preferred: BackendRemote, RemoteAPIKey: "key"})
	require.NoError(t, err)
	require.True(t, remote.hadDeadline)
}

func TestRemoveEmptyImage(t *testing.T) {
	svc := newTestService(&stubLocal{}, &stubRemote{})
	_, err := svc.Remove(context.Background(), nil, BackendConfig{})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func newTestService(local *stubLocal, remote *stubRemote) *Service {
	return NewService(Config{}, local, remote, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type stubLocal struct {
	out   []byte
	err   error
	calls int
}

func (s *stubLocal) Remove(context.Context, []byte) ([]byte, error) {
	s.calls++
	return s.out, s.err
}

type stubRemote struct {
	out         []byte
	err         error
	calls       int
	lastKey     string
	hadDeadline bool
}

func (s *stubRemote) Remove(ctx context.Context, _ []byte, apiKey string) ([]byte, error) {
	s.calls++
	s.lastKey = apiKey
	_, s.hadDeadline = ctx.Deadline()
	return s.out, s.err
}
