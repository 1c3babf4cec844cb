package services

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/beiwe-client/internal/client/client"
	"github.com/dmitrijs2005/beiwe-client/internal/client/identity"
	"github.com/dmitrijs2005/beiwe-client/internal/client/store"
	"github.com/dmitrijs2005/beiwe-client/internal/client/urls"
	"github.com/dmitrijs2005/beiwe-client/internal/logging"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

// recorded is one request seen by the fake study server.
type recorded struct {
	path   string
	body   string
	params [][2]string
}

func (r recorded) param(key string) string {
	for _, p := range r.params {
		if p[0] == key {
			return p[1]
		}
	}
	return ""
}

type replyFunc func(w http.ResponseWriter, req recorded)

func replyStatus(code int) replyFunc {
	return func(w http.ResponseWriter, _ recorded) { w.WriteHeader(code) }
}

// studyServer is an HTTPS stand-in for the study server.
type studyServer struct {
	*httptest.Server

	mu          sync.Mutex
	requests    []recorded
	replies     map[string]replyFunc
	early       map[string]int
	inFlight    int
	maxInFlight int
}

func newStudyServer(t *testing.T) *studyServer {
	t.Helper()
	s := &studyServer{replies: map[string]replyFunc{}, early: map[string]int{}}

	r := chi.NewRouter()
	for _, p := range []string{
		urls.PathRegister, urls.PathUpload, urls.PathSetFCMToken,
		urls.PathTestNotification, urls.PathSurveyNotification,
	} {
		r.Post(p, s.handle)
	}
	s.Server = httptest.NewTLSServer(r)
	t.Cleanup(s.Close)
	return s
}

func (s *studyServer) handle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.inFlight++
	if s.inFlight > s.maxInFlight {
		s.maxInFlight = s.inFlight
	}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}()

	s.mu.Lock()
	code, early := s.early[r.URL.Path]
	if early {
		s.requests = append(s.requests, recorded{path: r.URL.Path})
	}
	s.mu.Unlock()
	if early {
		w.WriteHeader(code)
		return
	}

	b, err := io.ReadAll(r.Body)
	if err != nil {
		return
	}
	req := recorded{path: r.URL.Path, body: string(b), params: client.ParseParameters(string(b))}

	s.mu.Lock()
	s.requests = append(s.requests, req)
	reply := s.replies[r.URL.Path]
	s.mu.Unlock()

	if reply == nil {
		w.WriteHeader(http.StatusOK)
		return
	}
	reply(w, req)
}

func (s *studyServer) reply(path string, f replyFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies[path] = f
}

// answerEarly makes path reply with code without reading the request body.
func (s *studyServer) answerEarly(path string, code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.early[path] = code
}

func (s *studyServer) seen() []recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]recorded(nil), s.requests...)
}

// harness wires the real store, transport and codec against a studyServer.
type harness struct {
	st       *store.Store
	srv      *studyServer
	factory  *client.Factory
	codec    *client.Codec
	device   identity.Device
	resolver *urls.Resolver
	log      logging.Logger
}

func newHarness(t *testing.T, readTimeout time.Duration) *harness {
	t.Helper()
	ctx := context.Background()

	st, err := store.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	srv := newStudyServer(t)
	require.NoError(t, st.SetServerURL(ctx, srv.URL))

	tr := srv.Client().Transport.(*http.Transport).Clone()
	tr.ResponseHeaderTimeout = readTimeout

	hasher, err := st.Hasher(ctx)
	require.NoError(t, err)
	device := identity.NewDevice("dev1", "aa:bb:cc:dd:ee:ff", identity.Hardware{
		Brand:        "acme",
		Model:        "m1",
		Manufacturer: "acme inc",
		Product:      "beiwe-client",
		HardwareID:   "amd64",
		OSVersion:    "12",
		AppVersion:   "production-3.1.3",
	}, hasher)

	log := logging.Discard()
	return &harness{
		st:       st,
		srv:      srv,
		factory:  client.NewFactory(client.Options{ConnectTimeout: time.Second, ReadTimeout: readTimeout, Transport: tr}, log),
		codec:    client.NewCodec(identity.NewProvider(device, st)),
		device:   device,
		resolver: urls.NewResolver(st, true, urls.ChannelProduction),
		log:      log,
	}
}

// registerDevice puts the store in the state a finished registration leaves.
func (h *harness) registerDevice(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, h.st.SetLoginCredentials(ctx, "abc123", "temp"))
	require.NoError(t, h.st.CompleteRegistration(ctx, "newpass1"))
}
