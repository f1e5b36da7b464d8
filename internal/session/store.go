package session

import (
	"encoding/json"
	"errors"
	"fmt"

	clog "github.com/charmbracelet/log"

	"portalctl/internal/store"
	"portalctl/internal/system"
)

// Key is the KV key the session is stored under.
const Key = "userSession"

// ErrNoSession is returned by Store.Load when nothing valid is stored.
var ErrNoSession = errors.New("no stored session")

// Store persists a Session through a KV port.
type Store struct {
	KV     store.KV
	Logger *clog.Logger
}

// NewStore wraps kv.
func NewStore(kv store.KV) *Store { return &Store{KV: kv} }

func (s *Store) logger() *clog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return system.Logger
}

// Load returns the stored session. A stored value that fails validation is
// cleared and reported as ErrNoSession.
func (s *Store) Load() (Session, error) {
	b, ok, err := s.KV.Load(Key)
	if err != nil {
		return Session{}, err
	}
	if !ok {
		return Session{}, ErrNoSession
	}
	sess, err := Parse(b)
	if err != nil {
		s.logger().Warn("invalid stored session, clearing", "err", err)
		if cerr := s.KV.Clear(Key); cerr != nil {
			return Session{}, fmt.Errorf("clear invalid session: %w", cerr)
		}
		return Session{}, ErrNoSession
	}
	return sess, nil
}

// Save validates and stores sess.
func (s *Store) Save(sess Session) error {
	if err := sess.Validate(); err != nil {
		return err
	}
	b, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.KV.Save(Key, b)
}

// Clear removes the stored session.
func (s *Store) Clear() error {
	return s.KV.Clear(Key)
}
