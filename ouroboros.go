/*
Package ouroboros wires versioned records and link indexes onto a persistent
badger ledger and exposes the built-in record types.
*/
package ouroboros

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/i5heu/ouroboros-records/internal/keyValStore"
	"github.com/i5heu/ouroboros-records/pkg/ledger"
	"github.com/i5heu/ouroboros-records/pkg/linkindex"
	"github.com/i5heu/ouroboros-records/pkg/profiles"
	"github.com/i5heu/ouroboros-records/pkg/projects"
	"github.com/i5heu/ouroboros-records/pkg/records"
	"github.com/i5heu/ouroboros-records/pkg/types"
	"github.com/i5heu/ouroboros-records/pkg/versionchain"
	"github.com/sirupsen/logrus"
)

const identityFileName = "identity.key"

// Records is the main handle. It owns the key value store and the garbage
// collector goroutine.
type Records struct {
	log    logrus.FieldLogger
	config Config

	kv       *keyValStore.KeyValStore
	identity *ledger.Identity
	ledger   *ledger.Badger
	chain    *versionchain.Chain
	index    *linkindex.Index

	profiles    *profiles.Service
	goalVotes   *records.Operations[projects.GoalVote]
	entryPoints *records.Operations[projects.EntryPoint]

	stopGC    context.CancelFunc
	gcDone    chan struct{}
	closeOnce sync.Once
	closeErr  error
}

func New(conf Config) (*Records, error) {
	if len(conf.Paths) == 0 && !conf.InMemory {
		return nil, fmt.Errorf("at least one path must be provided in config")
	}
	if conf.Logger == nil {
		conf.Logger = defaultLogger()
	}

	identity, err := loadIdentity(conf)
	if err != nil {
		return nil, err
	}

	kv, err := keyValStore.NewKeyValStore(keyValStore.StoreConfig{
		Paths:            conf.Paths,
		MinimumFreeSpace: conf.MinimumFreeGB,
		InMemory:         conf.InMemory,
		SyncWrites:       conf.SyncWrites,
		Logger:           conf.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating KeyValStore: %w", err)
	}

	l := ledger.NewBadger(kv, ledger.BadgerConfig{Signer: identity, Logger: conf.Logger})
	r, err := assemble(conf, kv, identity, l)
	if err != nil {
		_ = kv.Close()
		return nil, err
	}

	r.startGarbageCollection()
	conf.Logger.WithFields(logrus.Fields{
		"identity": identity.Key().String(),
		"inMemory": conf.InMemory,
	}).Info("records started")
	return r, nil
}

func loadIdentity(conf Config) (*ledger.Identity, error) {
	path := conf.IdentityKeyFile
	if path == "" && !conf.InMemory {
		path = filepath.Join(conf.Paths[0], identityFileName)
	}
	if path == "" {
		return ledger.NewIdentity()
	}
	return ledger.LoadOrCreateIdentity(path)
}

func assemble(conf Config, kv *keyValStore.KeyValStore, identity *ledger.Identity, l *ledger.Badger) (*Records, error) {
	p, err := newPeer(conf, l)
	if err != nil {
		return nil, err
	}
	return &Records{
		log:         conf.Logger,
		config:      conf,
		kv:          kv,
		identity:    identity,
		ledger:      l,
		chain:       p.chain,
		index:       p.index,
		profiles:    p.Profiles,
		goalVotes:   p.GoalVotes,
		entryPoints: p.EntryPoints,
	}, nil
}

// Peer is the set of record services of another writer on the same store.
type Peer struct {
	Identity    types.IdentityKey
	Profiles    *profiles.Service
	GoalVotes   *records.Operations[projects.GoalVote]
	EntryPoints *records.Operations[projects.EntryPoint]

	chain *versionchain.Chain
	index *linkindex.Index
}

func newPeer(conf Config, l *ledger.Badger) (*Peer, error) {
	chain := versionchain.New(l, versionchain.Config{MaxHops: conf.MaxHops, Logger: conf.Logger})
	index := linkindex.New(chain, conf.Logger)

	profileService, err := profiles.NewService(chain, index, conf.Logger)
	if err != nil {
		return nil, err
	}
	goalVotes, err := projects.NewGoalVotes(chain, index, conf.Logger)
	if err != nil {
		return nil, err
	}
	entryPoints, err := projects.NewEntryPoints(chain, index, conf.Logger)
	if err != nil {
		return nil, err
	}
	return &Peer{
		Identity:    l.CallerIdentity(),
		Profiles:    profileService,
		GoalVotes:   goalVotes,
		EntryPoints: entryPoints,
		chain:       chain,
		index:       index,
	}, nil
}

// Peer returns services writing and signing as identity. It shares the store,
// so it must not be used after Close.
func (r *Records) Peer(identity *ledger.Identity) (*Peer, error) {
	return newPeer(r.config, r.ledger.AsSigner(identity))
}

// Close stops the garbage collector and closes the store. Calling it more
// than once returns the first result.
func (r *Records) Close() error {
	r.closeOnce.Do(func() {
		if r.stopGC != nil {
			r.stopGC()
			<-r.gcDone
		}
		r.closeErr = r.kv.Close()
		r.log.Info("records closed")
	})
	return r.closeErr
}

func (r *Records) Identity() types.IdentityKey { return r.identity.Key() }
func (r *Records) Ledger() *ledger.Badger      { return r.ledger }
func (r *Records) Chain() *versionchain.Chain  { return r.chain }
func (r *Records) Index() *linkindex.Index     { return r.index }
func (r *Records) Profiles() *profiles.Service { return r.profiles }

func (r *Records) GoalVotes() *records.Operations[projects.GoalVote] {
	return r.goalVotes
}

func (r *Records) EntryPoints() *records.Operations[projects.EntryPoint] {
	return r.entryPoints
}

// Stats reports stored entry counts together with the store's operation
// counters.
func (r *Records) Stats() (Stats, error) {
	s, err := r.ledger.Stats()
	if err != nil {
		return Stats{}, err
	}
	reads, writes := r.kv.Counters()
	return Stats{Stats: s, Reads: reads, Writes: writes}, nil
}

type Stats struct {
	ledger.Stats
	Reads  uint64
	Writes uint64
}
