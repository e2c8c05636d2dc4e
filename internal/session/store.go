// Copyright (c) 2025 devdevman
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/pterm/pterm"

	clierrors "devdevman/cli/internal/errors"
	"devdevman/cli/internal/logging"
)

// Observer receives the current value on subscription and every later change.
// A nil value means nobody is signed in.
type Observer func(*UserSession)

// Notifier shows a short message to the user that is not part of the published state.
type Notifier func(username string)

// Outcome classifies how a Login attempt ended.
type Outcome int

const (
	// SignedIn means a session was published.
	SignedIn Outcome = iota
	// NoRemoteSession means there was no direct result and no cached account.
	NoRemoteSession
	// CachedAccountOnly means there was no direct result and exactly one cached
	// account. The account is announced but not published.
	CachedAccountOnly
	// AmbiguousAccount means there was no direct result and several cached accounts.
	AmbiguousAccount
	// Failed means the interactive flow failed.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case SignedIn:
		return "signed_in"
	case NoRemoteSession:
		return string(clierrors.NoRemoteSession)
	case CachedAccountOnly:
		return "cached_account_only"
	case AmbiguousAccount:
		return string(clierrors.AmbiguousAccount)
	case Failed:
		return string(clierrors.InteractiveFlowFailed)
	default:
		return "unknown"
	}
}

// Options configures a Store.
type Options struct {
	// Scopes are requested on every interactive sign-in.
	Scopes []string
	// RedirectURI is passed to the provider on remote sign-out.
	RedirectURI string
	// HardRemoteLogout also ends the provider-side session on Logout.
	HardRemoteLogout bool
	Logger           *pterm.Logger
	Notifier         Notifier
}

// Store publishes the current user and performs sign-in and sign-out through an
// IdentityClient. Concurrent Login calls are not deduplicated; whichever
// completes last determines the published value.
//
// Deliveries are queued and run one at a time, in publication order. Observers
// may call any Store method from inside the callback: a value published there is
// delivered after the current callback round returns. When another goroutine is
// already delivering, Subscribe and the publishing call return before their
// deliveries have run; that goroutine delivers them.
type Store struct {
	client           IdentityClient
	scopes           []string
	redirectURI      string
	hardRemoteLogout bool
	logger           *pterm.Logger
	notify           Notifier

	mu        sync.Mutex
	current   *UserSession
	seq       uint64
	observers map[uuid.UUID]*subscriber
	queue     []delivery
	draining  bool
}

type subscriber struct {
	observe Observer
	// since is the publication the subscriber was replayed; older queued
	// publications are not delivered to it.
	since   uint64
	removed bool
}

// delivery is a queued value; to is set for a subscription replay.
type delivery struct {
	seq   uint64
	value *UserSession
	to    *subscriber
}

// NewStore returns a Store with no session.
func NewStore(client IdentityClient, opts Options) *Store {
	s := &Store{
		client:           client,
		scopes:           append([]string(nil), opts.Scopes...),
		redirectURI:      opts.RedirectURI,
		hardRemoteLogout: opts.HardRemoteLogout,
		logger:           opts.Logger,
		notify:           opts.Notifier,
		observers:        make(map[uuid.UUID]*subscriber),
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	if s.notify == nil {
		s.notify = welcome
	}
	return s
}

func welcome(username string) {
	pterm.Info.Printfln("Welcome %s", username)
}

// Subscribe registers o and calls it with the current value, then with every
// later change. The returned function removes o; calling it more than once is
// harmless.
func (s *Store) Subscribe(o Observer) (unsubscribe func()) {
	id := uuid.New()
	sub := &subscriber{observe: o}

	s.mu.Lock()
	sub.since = s.seq
	s.observers[id] = sub
	s.queue = append(s.queue, delivery{seq: s.seq, value: s.current, to: sub})
	s.drainLocked()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			sub.removed = true
			delete(s.observers, id)
			s.mu.Unlock()
		})
	}
}

// Current returns a copy of the published value.
func (s *Store) Current() *UserSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.clone()
}

func (s *Store) publish(v *UserSession) {
	s.mu.Lock()
	s.current = v
	s.seq++
	s.queue = append(s.queue, delivery{seq: s.seq, value: v})
	s.drainLocked()
}

// drainLocked delivers queued values unless another call is already doing so.
// It must be called with mu held and returns with mu released.
func (s *Store) drainLocked() {
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true
	defer func() {
		s.draining = false
		s.mu.Unlock()
	}()

	for len(s.queue) > 0 {
		d := s.queue[0]
		s.queue = s.queue[1:]

		var targets []Observer
		switch {
		case d.to != nil:
			if !d.to.removed {
				targets = append(targets, d.to.observe)
			}
		default:
			for _, sub := range s.observers {
				if sub.since < d.seq {
					targets = append(targets, sub.observe)
				}
			}
		}

		s.mu.Unlock()
		s.deliver(targets, d.value)
		s.mu.Lock()
	}
}

// deliver runs observers without the lock. A panicking observer is logged and
// does not stop the others.
func (s *Store) deliver(targets []Observer, v *UserSession) {
	for _, o := range targets {
		s.call(o, v.clone())
	}
}

func (s *Store) call(o Observer, v *UserSession) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("session observer panicked", s.logger.Args("panic", fmt.Sprint(r)))
		}
	}()
	o(v)
}

// Login runs the interactive sign-in and publishes the resulting session.
// Failures are logged and reported through the Outcome, never returned as errors.
func (s *Store) Login(ctx context.Context) Outcome {
	res, err := s.client.SignInInteractive(ctx, s.scopes)
	if err != nil {
		s.logFailure(clierrors.Wrap(clierrors.InteractiveFlowFailed, "interactive sign-in failed", err))
		return Failed
	}
	if res == nil {
		return s.selectCachedAccount(ctx)
	}

	u, err := res.Session()
	if err != nil {
		s.logFailure(err)
		return Failed
	}
	s.logger.Info("logged in", s.logger.Args("username", u.Username))
	s.publish(u)
	return SignedIn
}

// selectCachedAccount handles a sign-in that produced no direct result. Picking
// one of the cached accounts is not supported, so nothing is published here.
func (s *Store) selectCachedAccount(ctx context.Context) Outcome {
	accounts, err := s.client.CachedAccounts(ctx)
	if err != nil {
		s.logFailure(clierrors.Wrap(clierrors.InteractiveFlowFailed, "list cached accounts", err))
		return Failed
	}

	switch len(accounts) {
	case 0:
		s.logger.Info("no session returned and no cached accounts",
			s.logger.Args("kind", clierrors.NoRemoteSession))
		return NoRemoteSession
	case 1:
		s.notify(accounts[0].Username)
		s.logger.Warn("cached account selection is not supported; session not published",
			s.logger.Args("username", accounts[0].Username))
		return CachedAccountOnly
	default:
		names := make([]string, 0, len(accounts))
		for _, a := range accounts {
			names = append(names, a.Username)
		}
		s.logger.Warn("multiple cached accounts detected; none selected",
			s.logger.Args("kind", clierrors.AmbiguousAccount, "count", len(accounts), "accounts", names))
		return AmbiguousAccount
	}
}

// Logout publishes nil and, when hard remote logout is enabled, then ends the
// provider-side session. The local publication does not depend on the remote call.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	prev := s.current
	s.mu.Unlock()

	s.publish(nil)
	s.logger.Info("logged out")

	if !s.hardRemoteLogout {
		return
	}
	req := SignOutRequest{RedirectURI: s.redirectURI}
	if prev != nil {
		req.Account = &Account{Username: prev.Username, DisplayName: prev.DisplayName}
	}
	if err := s.client.SignOutInteractive(ctx, req); err != nil {
		s.logger.Warn("remote sign-out failed", s.logger.Args("error", logging.Mask(err.Error())))
	}
}

func (s *Store) logFailure(err error) {
	s.logger.Error("login failed", s.logger.Args(
		"kind", clierrors.KindOf(err),
		"error", logging.Mask(err.Error()),
	))
}
