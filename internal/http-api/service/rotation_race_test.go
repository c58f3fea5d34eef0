package service

import (
	"sync"
	"testing"
	"time"

	"storefront/internal/http-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// memoryTokenStore is a mutex-guarded in-memory token store whose claim
// step mirrors the conditional UPDATE in the real repository: the flip to
// revoked happens atomically and only one caller can observe the transition.
// findBarrier, when set, holds every FindByToken caller until all of them
// have read their snapshot, forcing the read-then-claim interleaving that a
// double-submitted refresh produces in production.
type memoryTokenStore struct {
	mu             sync.Mutex
	tokens         map[string]*models.RefreshToken
	created        int
	revokeAllCalls int
	findBarrier    *sync.WaitGroup
}

func newMemoryTokenStore() *memoryTokenStore {
	return &memoryTokenStore{tokens: map[string]*models.RefreshToken{}}
}

func (s *memoryTokenStore) Create(token *models.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token.Token] = token
	s.created++
	return nil
}

func (s *memoryTokenStore) FindByToken(tokenValue string) (*models.RefreshToken, error) {
	s.mu.Lock()
	token, ok := s.tokens[tokenValue]
	var snapshot models.RefreshToken
	if ok {
		snapshot = *token
	}
	s.mu.Unlock()

	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if s.findBarrier != nil {
		s.findBarrier.Done()
		s.findBarrier.Wait()
	}
	return &snapshot, nil
}

func (s *memoryTokenStore) TryClaimForRotation(tokenValue string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, ok := s.tokens[tokenValue]
	if !ok || token.Revoked {
		return false, nil
	}
	token.Revoked = true
	return true, nil
}

func (s *memoryTokenStore) Revoke(tokenValue string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token, ok := s.tokens[tokenValue]; ok {
		token.Revoked = true
	}
	return nil
}

func (s *memoryTokenStore) RevokeAllForUser(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revokeAllCalls++
	for _, token := range s.tokens {
		if token.UserID == userID {
			token.Revoked = true
		}
	}
	return nil
}

func (s *memoryTokenStore) DeleteExpiredBefore(cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for value, token := range s.tokens {
		if token.ExpiresAt.Before(cutoff) {
			delete(s.tokens, value)
			n++
		}
	}
	return n, nil
}

type staticUserRepo struct {
	user *models.User
}

func (r *staticUserRepo) Create(*models.User) error                 { return nil }
func (r *staticUserRepo) FindByID(string) (*models.User, error)     { return r.user, nil }
func (r *staticUserRepo) FindByUsername(string) (*models.User, error) {
	return r.user, nil
}
func (r *staticUserRepo) FindByEmail(string) (*models.User, error) { return r.user, nil }
func (r *staticUserRepo) UpdateRole(string, string) error          { return nil }
func (r *staticUserRepo) TouchLastLogin(string) error              { return nil }

// Two goroutines present the same refresh token and both read it as active
// before either claims it. Exactly one must win; the loser gets the benign
// ErrConcurrentRotation with no revocation fan-out.
func TestRefreshAccessToken_ConcurrentRotationOneWinner(t *testing.T) {
	store := newMemoryTokenStore()
	user := &models.User{ID: "user-id", Username: "testuser", Role: "customer"}
	cfg := testConfig()
	issuer := NewJWTIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)
	sink := &NoopAlertSink{}
	detector := NewReplayDetector(store, sink, testLogger(), cfg.AlertTimeout)
	authService := NewAuthService(&staticUserRepo{user: user}, store, issuer, detector, sink, testLogger(), cfg)

	require.NoError(t, store.Create(&models.RefreshToken{
		ID:        "token-id",
		UserID:    "user-id",
		Token:     "contested-token",
		ExpiresAt: time.Now().Add(24 * time.Hour),
		IPAddress: "203.0.113.7",
	}))
	store.created = 0

	barrier := &sync.WaitGroup{}
	barrier.Add(2)
	store.findBarrier = barrier

	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := authService.RefreshAccessToken("contested-token", "203.0.113.7", "Mozilla/5.0 Chrome/120.0")
			results <- err
		}()
	}

	var wins, losses int
	for i := 0; i < 2; i++ {
		select {
		case err := <-results:
			switch err {
			case nil:
				wins++
			case ErrConcurrentRotation:
				losses++
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("refresh did not complete")
		}
	}

	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, losses)

	store.mu.Lock()
	defer store.mu.Unlock()
	// only the winner minted a successor, and no replay fan-out ran
	assert.Equal(t, 1, store.created)
	assert.Equal(t, 0, store.revokeAllCalls)
	assert.True(t, store.tokens["contested-token"].Revoked)
}

// Presenting a token from earlier in an already-rotated chain is a replay:
// every live token for the user, including the current chain head, ends up
// revoked.
func TestRefreshAccessToken_ReplayRevokesWholeChain(t *testing.T) {
	store := newMemoryTokenStore()
	user := &models.User{ID: "user-id", Username: "testuser", Role: "customer"}
	cfg := testConfig()
	issuer := NewJWTIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)
	sink := &NoopAlertSink{}
	detector := NewReplayDetector(store, sink, testLogger(), cfg.AlertTimeout)
	authService := NewAuthService(&staticUserRepo{user: user}, store, issuer, detector, sink, testLogger(), cfg)

	require.NoError(t, store.Create(&models.RefreshToken{
		ID:        "token-1",
		UserID:    "user-id",
		Token:     "first-token",
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}))

	// legitimate rotation: first-token -> successor
	result, err := authService.RefreshAccessToken("first-token", "203.0.113.7", "Mozilla/5.0 Chrome/120.0")
	require.NoError(t, err)
	successorValue := result.RefreshToken

	// attacker replays the consumed first-token
	_, err = authService.RefreshAccessToken("first-token", "198.51.100.4", "curl/8.0")
	assert.Equal(t, ErrTokenReuse, err)

	store.mu.Lock()
	successor := store.tokens[successorValue]
	store.mu.Unlock()
	require.NotNil(t, successor)
	assert.True(t, successor.Revoked, "chain head must be revoked after replay")

	// the legitimate holder's next refresh now fails too
	_, err = authService.RefreshAccessToken(successorValue, "203.0.113.7", "Mozilla/5.0 Chrome/120.0")
	assert.Equal(t, ErrTokenReuse, err)
}
