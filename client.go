package neos_go

import (
	"context"
	"net/http"
	"sync"

	"github.com/neos-go/neos-go/api"
	"github.com/neos-go/neos-go/errors"
	"github.com/neos-go/neos-go/id"
	"github.com/neos-go/neos-go/logger"
	"github.com/neos-go/neos-go/types"
)

// TransitionError is returned when a state transition (login, logout)
// fails. Client is the unchanged client the transition started from, so
// it can be reused; Err is the underlying *errors.RequestError.
type TransitionError[C any] struct {
	Client C
	Err    error
}

func (e *TransitionError[C]) Error() string {
	return e.Err.Error()
}

func (e *TransitionError[C]) Unwrap() error {
	return e.Err
}

// Unauthenticated is a Neos API client without credentials. It never
// sends an Authorization header.
//
// Clones share the same dispatcher, and so the same rate limit state.
type Unauthenticated struct {
	dispatcher *api.Dispatcher
	logger     logger.Logger
}

var _ api.Requester = &Unauthenticated{}

// NewUnauthenticated creates a client. userAgent should identify the
// application, e.g. "MyApp/1.0 (contact@example.com)".
func NewUnauthenticated(userAgent string, opts ...ConfigOption) *Unauthenticated {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return &Unauthenticated{
		dispatcher: api.NewDispatcher(cfg.dispatcherConfig(userAgent)),
		logger:     cfg.logger,
	}
}

func (u *Unauthenticated) Dispatch(
	ctx context.Context,
	method string,
	path string,
	build api.RequestBuilder,
) (*api.Response, error) {
	return u.dispatcher.Dispatch(ctx, method, path, func(req *http.Request) error {
		if build != nil {
			if err := build(req); err != nil {
				return err
			}
		}
		req.Header.Del(api.HeaderAuthorization)
		return nil
	})
}

func (u *Unauthenticated) Clone() *Unauthenticated {
	return &Unauthenticated{dispatcher: u.dispatcher, logger: u.logger}
}

// Upgrade attaches an already obtained session. It does not check the
// session with the API.
func (u *Unauthenticated) Upgrade(session types.UserSession) *Authenticated {
	return &Authenticated{
		dispatcher: u.dispatcher,
		logger:     u.logger,
		session:    session,
	}
}

// Login creates a new user session. On failure the error is a
// *TransitionError[*Unauthenticated] holding u.
func (u *Unauthenticated) Login(ctx context.Context, credentials types.LoginCredentials) (*Authenticated, error) {
	session, err := api.NewUserSessionsApi(u).Create(ctx, credentials)
	if err != nil {
		u.logger.Warnf("Neos API login failed for %s: %v", credentials.Identifier.Value, err)
		return nil, &TransitionError[*Unauthenticated]{Client: u, Err: err}
	}
	u.logger.Infof("Logged in to the Neos API as %s", session.UserId)
	return u.Upgrade(*session), nil
}

func (u *Unauthenticated) Testing() *api.Testing {
	return api.NewTestingApi(u)
}

func (u *Unauthenticated) Stats() *api.Stats {
	return api.NewStatsApi(u)
}

func (u *Unauthenticated) Sessions() *api.Sessions {
	return api.NewSessionsApi(u)
}

func (u *Unauthenticated) Users() *api.Users {
	return api.NewUsersApi(u)
}

func (u *Unauthenticated) Groups() *api.Groups {
	return api.NewGroupsApi(u)
}

// Authenticated is a Neos API client acting as a logged in user. Every
// request carries the session's Authorization header.
//
// Downgrade and Logout discard the credentials; the client then refuses
// to send anything.
type Authenticated struct {
	dispatcher *api.Dispatcher
	logger     logger.Logger

	mu      sync.RWMutex
	session types.UserSession
}

var _ api.Requester = &Authenticated{}

// NewAuthenticated creates a client from a previously obtained session,
// e.g. one restored from disk. The session is not checked.
func NewAuthenticated(userAgent string, session types.UserSession, opts ...ConfigOption) *Authenticated {
	return NewUnauthenticated(userAgent, opts...).Upgrade(session)
}

func (a *Authenticated) Dispatch(
	ctx context.Context,
	method string,
	path string,
	build api.RequestBuilder,
) (*api.Response, error) {
	credentials, ok := a.Credentials()
	if !ok {
		return nil, &errors.RequestError{
			Kind:      errors.KIND_OTHER,
			Stage:     errors.STAGE_BEFORE_REQUEST,
			SourceErr: errors.ErrCredentialsDiscarded,
		}
	}
	header := credentials.AuthHeader()
	return a.dispatcher.Dispatch(ctx, method, path, func(req *http.Request) error {
		if build != nil {
			if err := build(req); err != nil {
				return err
			}
		}
		req.Header.Set(api.HeaderAuthorization, header)
		return nil
	})
}

// Credentials returns the current credentials, or false once they were
// discarded.
func (a *Authenticated) Credentials() (Credentials, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	c := credentialsOf(a.session)
	return c, !c.IsZero()
}

// Session returns the user session the client was built from, or false
// once it was discarded.
func (a *Authenticated) Session() (types.UserSession, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.session, a.session.UserId != ""
}

func (a *Authenticated) UserId() id.User {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.session.UserId
}

func (a *Authenticated) Clone() *Authenticated {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return &Authenticated{
		dispatcher: a.dispatcher,
		logger:     a.logger,
		session:    a.session,
	}
}

// Downgrade discards the credentials and returns an unauthenticated
// client sharing the same dispatcher. The session stays valid server
// side; use Logout to end it.
func (a *Authenticated) Downgrade() *Unauthenticated {
	a.mu.Lock()
	userId := a.session.UserId
	a.session = types.UserSession{}
	a.mu.Unlock()

	if userId != "" {
		a.logger.Debugf("Discarded Neos API credentials of %s", userId)
	}
	return &Unauthenticated{dispatcher: a.dispatcher, logger: a.logger}
}

// Logout ends the session server side and then downgrades. On failure
// the error is a *TransitionError[*Authenticated] holding a, whose
// credentials are still usable.
func (a *Authenticated) Logout(ctx context.Context) (*Unauthenticated, error) {
	userId := a.UserId()
	if err := api.NewUserSessionsApi(a).Destroy(ctx, userId); err != nil {
		a.logger.Warnf("Neos API logout failed for %s: %v", userId, err)
		return nil, &TransitionError[*Authenticated]{Client: a, Err: err}
	}
	a.logger.Infof("Logged out of the Neos API as %s", userId)
	return a.Downgrade(), nil
}

// ExtendSession pushes back the expiration of the current session.
func (a *Authenticated) ExtendSession(ctx context.Context) error {
	return api.NewUserSessionsApi(a).Extend(ctx)
}

func (a *Authenticated) Testing() *api.Testing {
	return api.NewTestingApi(a)
}

func (a *Authenticated) Stats() *api.Stats {
	return api.NewStatsApi(a)
}

func (a *Authenticated) Sessions() *api.Sessions {
	return api.NewSessionsApi(a)
}

func (a *Authenticated) Users() *api.Users {
	return api.NewUsersApi(a)
}

func (a *Authenticated) Groups() *api.Groups {
	return api.NewGroupsApi(a)
}

func (a *Authenticated) Friends() *api.Friends {
	return api.NewFriendsApi(a, a.UserId())
}

func (a *Authenticated) Messages() *api.Messages {
	return api.NewMessagesApi(a, a.UserId())
}

// AnyClient holds either an Authenticated or an Unauthenticated client,
// for code that works with both. The zero value holds neither; its
// requests fail with errors.ErrNoClient.
type AnyClient struct {
	authenticated   *Authenticated
	unauthenticated *Unauthenticated
}

var _ api.Requester = AnyClient{}

func NewAnyAuthenticated(a *Authenticated) AnyClient {
	return AnyClient{authenticated: a}
}

func NewAnyUnauthenticated(u *Unauthenticated) AnyClient {
	return AnyClient{unauthenticated: u}
}

func (c AnyClient) IsAuthenticated() bool {
	return c.authenticated != nil
}

func (c AnyClient) IsUnauthenticated() bool {
	return c.unauthenticated != nil
}

func (c AnyClient) Authenticated() (*Authenticated, bool) {
	return c.authenticated, c.authenticated != nil
}

func (c AnyClient) Unauthenticated() (*Unauthenticated, bool) {
	return c.unauthenticated, c.unauthenticated != nil
}

func (c AnyClient) Dispatch(
	ctx context.Context,
	method string,
	path string,
	build api.RequestBuilder,
) (*api.Response, error) {
	switch {
	case c.authenticated != nil:
		return c.authenticated.Dispatch(ctx, method, path, build)
	case c.unauthenticated != nil:
		return c.unauthenticated.Dispatch(ctx, method, path, build)
	}
	return nil, &errors.RequestError{
		Kind:      errors.KIND_OTHER,
		Stage:     errors.STAGE_BEFORE_REQUEST,
		SourceErr: errors.ErrNoClient,
	}
}

// Downgrade returns the unauthenticated client, discarding credentials
// if there were any. It returns nil for the zero AnyClient.
func (c AnyClient) Downgrade() *Unauthenticated {
	if c.authenticated != nil {
		return c.authenticated.Downgrade()
	}
	return c.unauthenticated
}

func (c AnyClient) Clone() AnyClient {
	if c.authenticated != nil {
		return NewAnyAuthenticated(c.authenticated.Clone())
	}
	if c.unauthenticated != nil {
		return NewAnyUnauthenticated(c.unauthenticated.Clone())
	}
	return AnyClient{}
}

func (c AnyClient) Testing() *api.Testing {
	return api.NewTestingApi(c)
}

func (c AnyClient) Stats() *api.Stats {
	return api.NewStatsApi(c)
}

func (c AnyClient) Sessions() *api.Sessions {
	return api.NewSessionsApi(c)
}

func (c AnyClient) Users() *api.Users {
	return api.NewUsersApi(c)
}

func (c AnyClient) Groups() *api.Groups {
	return api.NewGroupsApi(c)
}
