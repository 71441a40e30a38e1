package session

import (
	"encoding/json"
	"time"

	"github.com/NegoBotEngine/NegoBot/internal/nlog"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"
)

// ErrNotFound is returned when a session id is absent or has expired.
var ErrNotFound = errors.New("negotiation session not found")

const keyPrefix = "negotiation:"

// Store persists sessions as serialized blobs in a TTL cache. Every write
// rewrites the whole record and refreshes its expiry (setex semantics); reads
// never extend the TTL. Concurrent writers to the same session are
// last-write-wins; the store holds no live references to decoded sessions.
type Store struct {
	cache *expirable.LRU[string, []byte]
	ttl   time.Duration
}

// NewStore creates a store with a sliding TTL. maxEntries of 0 means no bound
// on the number of cached sessions.
func NewStore(ttl time.Duration, maxEntries int) *Store {
	return &Store{
		cache: expirable.NewLRU[string, []byte](maxEntries, nil, ttl),
		ttl:   ttl,
	}
}

// Create generates a new session around params and persists it.
func (s *Store) Create(params Parameters) (Session, error) {
	params.ApplyDefaults()

	now := time.Now()
	sess := Session{
		SessionID:  ulid.Make().String(),
		Parameters: params,
		Messages:   []Message{},
		CreatedAt:  now,
		UpdatedAt:  now,
		Status:     StatusActive,
	}

	if err := s.put(sess); err != nil {
		return Session{}, err
	}

	nlog.Info("SessionStore", "action", "created", "sessionId", sess.SessionID, "productId", params.ProductID)
	return sess, nil
}

// Get loads a session by id.
func (s *Store) Get(id string) (Session, error) {
	raw, ok := s.cache.Get(keyPrefix + id)
	if !ok {
		return Session{}, ErrNotFound
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return Session{}, errors.Wrap(err, "corrupt session record "+id)
	}
	return sess, nil
}

// AppendMessage appends one message to the session's history and re-persists
// the whole record with a fresh TTL.
func (s *Store) AppendMessage(id string, msg Message) error {
	sess, err := s.Get(id)
	if err != nil {
		return err
	}

	sess.Messages = append(sess.Messages, msg)
	sess.UpdatedAt = time.Now()

	return s.put(sess)
}

// ReplaceParameters swaps the session's parameters wholesale.
func (s *Store) ReplaceParameters(id string, params Parameters) error {
	sess, err := s.Get(id)
	if err != nil {
		return err
	}

	params.ApplyDefaults()
	sess.Parameters = params
	sess.UpdatedAt = time.Now()

	return s.put(sess)
}

// Delete removes the session immediately.
func (s *Store) Delete(id string) error {
	if _, ok := s.cache.Get(keyPrefix + id); !ok {
		return ErrNotFound
	}

	s.cache.Remove(keyPrefix + id)
	nlog.Info("SessionStore", "action", "deleted", "sessionId", id)
	return nil
}

func (s *Store) put(sess Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return errors.Wrap(err, "marshal session "+sess.SessionID)
	}

	// Add replaces any existing entry and restarts its TTL clock.
	s.cache.Add(keyPrefix+sess.SessionID, raw)
	return nil
}
