// Package testkit holds in-memory fakes of the store and push boundaries for tests.
package testkit

import (
	"context"
	"fmt"
	"sync"

	ierr "recipe-push-server/internal/errors"
	"recipe-push-server/internal/model"
	"recipe-push-server/internal/push"
)

// Preferences is an in-memory preference store; users without an entry get defaults.
type Preferences struct {
	mu    sync.Mutex
	prefs map[string]model.NotificationPreferences
	Err   error
}

func NewPreferences() *Preferences {
	return &Preferences{prefs: map[string]model.NotificationPreferences{}}
}

func (p *Preferences) Set(userId string, prefs model.NotificationPreferences) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prefs[userId] = prefs
}

func (p *Preferences) GetByUser(_ context.Context, userId string) (model.NotificationPreferences, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return model.NotificationPreferences{}, p.Err
	}
	return p.prefs[userId], nil
}

// Tokens is an in-memory token registry keyed by user.
type Tokens struct {
	mu      sync.Mutex
	byUser  map[string][]model.NotificationToken
	deletes []string
	Err     error
}

func NewTokens() *Tokens {
	return &Tokens{byUser: map[string][]model.NotificationToken{}}
}

func (t *Tokens) Register(userId string, tokens ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, tok := range tokens {
		t.byUser[userId] = append(t.byUser[userId], model.NotificationToken{Token: tok, Platform: "ios"})
	}
}

func (t *Tokens) GetByUser(_ context.Context, userId string) ([]model.NotificationToken, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Err != nil {
		return nil, t.Err
	}
	return append([]model.NotificationToken(nil), t.byUser[userId]...), nil
}

func (t *Tokens) DeleteByToken(_ context.Context, token string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.deletes = append(t.deletes, token)
	for user, regs := range t.byUser {
		kept := regs[:0]
		for _, r := range regs {
			if r.Token != token {
				kept = append(kept, r)
			}
		}
		t.byUser[user] = kept
	}
	return nil
}

// Deletes returns the token values DeleteByToken was called with, in call order.
func (t *Tokens) Deletes() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.deletes...)
}

// Count returns how many registrations the user still has.
func (t *Tokens) Count(userId string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.byUser[userId])
}

// Sent is one recorded Send call.
type Sent struct {
	Tokens  []string
	Message push.Message
}

// Sender records sends and fails the tokens listed in Fail.
type Sender struct {
	mu    sync.Mutex
	sends []Sent
	Fail  map[string]bool
	Err   error
}

func NewSender() *Sender {
	return &Sender{Fail: map[string]bool{}}
}

func (s *Sender) Send(_ context.Context, tokens []string, msg push.Message) (push.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sends = append(s.sends, Sent{Tokens: append([]string(nil), tokens...), Message: msg})
	if s.Err != nil {
		return push.Result{}, s.Err
	}
	res := push.Result{}
	for _, tok := range tokens {
		if s.Fail[tok] {
			res.Failed = append(res.Failed, tok)
			continue
		}
		res.Succeeded = append(res.Succeeded, tok)
	}
	return res, nil
}

func (s *Sender) Sends() []Sent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Sent(nil), s.sends...)
}

// SendsTo returns the sends that included token.
func (s *Sender) SendsTo(token string) []Sent {
	out := []Sent{}
	for _, sent := range s.Sends() {
		for _, tok := range sent.Tokens {
			if tok == token {
				out = append(out, sent)
				break
			}
		}
	}
	return out
}

// Invitations records MarkNotified calls.
type Invitations struct {
	mu       sync.Mutex
	notified map[string]int
	Err      error
}

func NewInvitations() *Invitations {
	return &Invitations{notified: map[string]int{}}
}

func (i *Invitations) MarkNotified(_ context.Context, id string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.Err != nil {
		return i.Err
	}
	i.notified[id]++
	return nil
}

func (i *Invitations) Marked(id string) int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.notified[id]
}

// Recipes serves recipe titles; unknown ids are not found.
type Recipes struct {
	Titles map[string]string
	Err    error
}

func (r Recipes) GetById(_ context.Context, id string) (*model.Recipe, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	title, ok := r.Titles[id]
	if !ok {
		return nil, fmt.Errorf("get recipe: %w, id: %s", ierr.NotFound, id)
	}
	return &model.Recipe{Id: id, Title: title}, nil
}

// Shoplists serves shoplists by id; unknown ids are not found.
type Shoplists struct {
	Lists map[string]model.Shoplist
	Err   error
}

func (s Shoplists) GetById(_ context.Context, id string) (*model.Shoplist, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	list, ok := s.Lists[id]
	if !ok {
		return nil, fmt.Errorf("get shoplist: %w, id: %s", ierr.NotFound, id)
	}
	list.Id = id
	return &list, nil
}
