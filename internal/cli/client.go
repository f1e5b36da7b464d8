package cli

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"portalctl/internal/apiclient"
	cfg "portalctl/internal/config"
	"portalctl/internal/session"
	"portalctl/internal/store"
	"portalctl/internal/system"
)

func sessionStore() (*session.Store, error) {
	p, err := cfg.StatePath()
	if err != nil {
		return nil, err
	}
	return session.NewStore(store.NewFileKV(p)), nil
}

func apiHooks() apiclient.Hooks {
	// requests may overlap on one client
	var starts sync.Map
	return apiclient.Hooks{
		OnStart: func(r *http.Request) {
			starts.Store(r, time.Now())
			system.Logger.Debug("api request", "method", r.Method, "url", r.URL.String())
		},
		OnEnd: func(r *http.Request, err error) {
			var took time.Duration
			if v, ok := starts.LoadAndDelete(r); ok {
				took = time.Since(v.(time.Time))
			}
			if err != nil {
				system.Logger.Debug("api request failed", "method", r.Method, "url", r.URL.String(), "took", took, "err", err)
				return
			}
			system.Logger.Debug("api request done", "method", r.Method, "url", r.URL.String(), "took", took)
		},
	}
}

func newClient(opts ...apiclient.Option) *apiclient.Client {
	return apiclient.New(conf.APIBaseURL, append([]apiclient.Option{apiclient.WithHooks(apiHooks())}, opts...)...)
}

// authedClient returns a client carrying the stored session's token.
func authedClient() (*apiclient.Client, session.Session, error) {
	st, err := sessionStore()
	if err != nil {
		return nil, session.Session{}, err
	}
	sess, err := st.Load()
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return nil, session.Session{}, errors.New("not signed in, run `portalctl login` first")
		}
		return nil, session.Session{}, err
	}
	return newClient(apiclient.WithToken(sess.Token)), sess, nil
}

// userError renders an API failure the way the portal shows it.
func userError(err error) error {
	title, desc := apiclient.Describe(err)
	return fmt.Errorf("%s: %s", title, desc)
}
