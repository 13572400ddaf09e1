package identity

import (
	"sync"

	"github.com/ourstory/scrapbook/pkg/logger"
)

var log = logger.Named("identity")

// Saved is what the provider persists between process runs.
type Saved struct {
	CurrentUser Role   `json:"currentUser"`
	UserName    string `json:"userName"`
}

// LocalStore is the durable local storage backing a Provider.
type LocalStore interface {
	// Load returns the saved state; ok is false when nothing was saved.
	Load() (s Saved, ok bool, err error)
	Save(s Saved) error
	Clear() error
}

// Provider is the anonymous / authenticated(identity) state machine for one
// client process.
type Provider struct {
	dir   *Directory
	local LocalStore

	mu      sync.RWMutex
	current *Saved
}

// NewProvider restores state from local storage. A saved valid role means
// authenticated; credentials are not checked again.
func NewProvider(dir *Directory, local LocalStore) (*Provider, error) {
	p := &Provider{dir: dir, local: local}
	s, ok, err := local.Load()
	if err != nil {
		return nil, err
	}
	if ok && s.CurrentUser.Valid() && s.UserName != "" {
		p.current = &s
		log.Debugf("restored session for %s", s.CurrentUser)
	}
	return p, nil
}

// Login moves to authenticated when the pair matches one account exactly.
// A failed login leaves the current state untouched.
func (p *Provider) Login(username, password string) (bool, error) {
	acc, ok := p.dir.Authenticate(username, password)
	if !ok {
		return false, nil
	}
	s := Saved{CurrentUser: acc.Role, UserName: p.dir.DisplayName(acc.Role)}
	if err := p.local.Save(s); err != nil {
		return false, err
	}
	p.mu.Lock()
	p.current = &s
	p.mu.Unlock()
	log.Infof("logged in as %s", acc.Role)
	return true, nil
}

// Logout clears persisted identity and display name.
func (p *Provider) Logout() error {
	p.mu.Lock()
	p.current = nil
	p.mu.Unlock()
	return p.local.Clear()
}

// CurrentIdentity returns the authenticated role, if any.
func (p *Provider) CurrentIdentity() (Role, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.current == nil {
		return "", false
	}
	return p.current.CurrentUser, true
}

// DisplayName returns the authenticated display name, if any.
func (p *Provider) DisplayName() (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.current == nil {
		return "", false
	}
	return p.current.UserName, true
}
