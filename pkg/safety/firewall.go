package safety

import (
	"context"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/japap-media/server/pkg/events"
	"github.com/japap-media/server/pkg/logging"
	"github.com/japap-media/server/pkg/scoopid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/yl2chen/cidranger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type BlockEntry struct {
	Id        scoopid.ScoopID `bson:"_id" msgpack:"id"`
	Address   string          `bson:"address" msgpack:"address"`
	Reason    string          `bson:"reason,omitempty" msgpack:"reason,omitempty"`
	ExpiresAt int64           `bson:"expires_at" msgpack:"expires_at"` // 0 for permanent
}

func (b BlockEntry) Network() net.IPNet {
	_, network, _ := net.ParseCIDR(b.Address)
	return *network
}

func (b BlockEntry) Active(now time.Time) bool {
	return b.ExpiresAt == 0 || b.ExpiresAt > now.UnixMilli()
}

type DeleteBlockEvent struct {
	Id scoopid.ScoopID `msgpack:"id"`
}

type BlockStore interface {
	All(ctx context.Context) ([]BlockEntry, error)
	Insert(ctx context.Context, b *BlockEntry) error
	Delete(ctx context.Context, id scoopid.ScoopID) error
}

type MongoBlockStore struct {
	coll *mongo.Collection
}

func NewMongoBlockStore(coll *mongo.Collection) *MongoBlockStore {
	return &MongoBlockStore{coll: coll}
}

func (s *MongoBlockStore) All(ctx context.Context) ([]BlockEntry, error) {
	entries := []BlockEntry{}
	cur, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return entries, errors.Wrap(err, "find netblocks")
	}
	if err := cur.All(ctx, &entries); err != nil {
		return entries, errors.Wrap(err, "decode netblocks")
	}
	return entries, nil
}

func (s *MongoBlockStore) Insert(ctx context.Context, b *BlockEntry) error {
	_, err := s.coll.InsertOne(ctx, b)
	return errors.Wrap(err, "insert netblock")
}

func (s *MongoBlockStore) Delete(ctx context.Context, id scoopid.ScoopID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "delete netblock")
	}
	if res.DeletedCount == 0 {
		return ErrBlockNotFound
	}
	return nil
}

// Firewall answers whether an address falls inside a blocked network. Blocks
// are shared between instances through the firewall channel.
type Firewall struct {
	mu        sync.RWMutex
	ranger    cidranger.Ranger
	entries   map[scoopid.ScoopID]BlockEntry
	store     BlockStore
	publisher events.Publisher
	now       func() time.Time
}

func NewFirewall(store BlockStore, publisher events.Publisher) *Firewall {
	return &Firewall{
		ranger:    cidranger.NewPCTrieRanger(),
		entries:   make(map[scoopid.ScoopID]BlockEntry),
		store:     store,
		publisher: publisher,
		now:       time.Now,
	}
}

// Load fills the trie from the store.
func (f *Firewall) Load(ctx context.Context) error {
	entries, err := f.store.All(ctx)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := f.insert(entry); err != nil {
			logging.Log.WithField("address", entry.Address).WithError(err).Warn("skipping bad netblock")
		}
	}
	return nil
}

// NormalizeAddress turns a bare IP into a single-host CIDR.
func NormalizeAddress(address string) (string, error) {
	address = strings.TrimSpace(address)
	if !strings.Contains(address, "/") {
		ip := net.ParseIP(address)
		if ip == nil {
			return "", ErrInvalidAddress
		}
		if ip.To4() != nil {
			return ip.String() + "/32", nil
		}
		return ip.String() + "/128", nil
	}
	_, network, err := net.ParseCIDR(address)
	if err != nil {
		return "", ErrInvalidAddress
	}
	return network.String(), nil
}

func (f *Firewall) CreateBlock(ctx context.Context, address string, reason string, expiresAt int64) (BlockEntry, error) {
	normalized, err := NormalizeAddress(address)
	if err != nil {
		return BlockEntry{}, err
	}

	entry := BlockEntry{
		Id:        scoopid.GenId(),
		Address:   normalized,
		Reason:    reason,
		ExpiresAt: expiresAt,
	}
	if err := f.store.Insert(ctx, &entry); err != nil {
		return entry, err
	}
	if err := f.insert(entry); err != nil {
		return entry, err
	}

	// Tell other instances about the block
	if f.publisher != nil {
		if err := f.publisher.Publish(ctx, events.OpCreateBlock, &entry); err != nil {
			logging.Capture(err, "failed publishing netblock", logrus.Fields{"block": entry.Id})
		}
	}

	return entry, nil
}

func (f *Firewall) DeleteBlock(ctx context.Context, id scoopid.ScoopID) error {
	if err := f.store.Delete(ctx, id); err != nil {
		return err
	}
	f.remove(id)

	if f.publisher != nil {
		if err := f.publisher.Publish(ctx, events.OpDeleteBlock, &DeleteBlockEvent{Id: id}); err != nil {
			logging.Capture(err, "failed publishing netblock removal", logrus.Fields{"block": id})
		}
	}

	return nil
}

func (f *Firewall) IsBlocked(address string) bool {
	ip := net.ParseIP(address)
	if ip == nil {
		return false
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	matches, err := f.ranger.ContainingNetworks(ip)
	if err != nil {
		return false
	}
	now := f.now()
	for _, m := range matches {
		if m.(BlockEntry).Active(now) {
			return true
		}
	}
	return false
}

// Apply handles a payload from the firewall channel.
func (f *Firewall) Apply(payload []byte) error {
	op, body, err := events.Decode(payload)
	if err != nil {
		return err
	}

	switch op {
	case events.OpCreateBlock:
		var entry BlockEntry
		if err := msgpack.Unmarshal(body, &entry); err != nil {
			return err
		}
		return f.insert(entry)
	case events.OpDeleteBlock:
		var evt DeleteBlockEvent
		if err := msgpack.Unmarshal(body, &evt); err != nil {
			return err
		}
		f.remove(evt.Id)
	}
	return nil
}

// Run applies firewall payloads until ch closes.
func (f *Firewall) Run(ch <-chan []byte) {
	for payload := range ch {
		if err := f.Apply(payload); err != nil {
			logging.Capture(err, "failed applying firewall event", nil)
		}
	}
}

func (f *Firewall) insert(entry BlockEntry) error {
	if _, _, err := net.ParseCIDR(entry.Address); err != nil {
		return ErrInvalidAddress
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.entries[entry.Id]; ok {
		return nil
	}
	if err := f.ranger.Insert(entry); err != nil {
		return err
	}
	f.entries[entry.Id] = entry
	return nil
}

func (f *Firewall) remove(id scoopid.ScoopID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entry, ok := f.entries[id]
	if !ok {
		return
	}
	delete(f.entries, id)
	f.ranger.Remove(entry.Network())

	// Another entry may cover the exact same network
	for _, other := range f.entries {
		if other.Address == entry.Address {
			f.ranger.Insert(other)
		}
	}
}
