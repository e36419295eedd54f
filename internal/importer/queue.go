package importer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/wedding-ledger/constants"
	"github.com/joseph-ayodele/wedding-ledger/internal/extraction"
)

var ErrUnknownItem = errors.New("unknown queue item")

// ItemID is stable for the life of a queue item. Items are addressed by id,
// never by position.
type ItemID string

func NewItemID() ItemID { return ItemID(uuid.NewString()) }

// State is one of Extracting, Ready, Importing, Done or Failed.
type State interface {
	Name() string
	sealed()
}

type Extracting struct{}

type Ready struct {
	Payload *extraction.Payload
}

type Importing struct{}

type Done struct {
	CoupleID uuid.UUID
	Created  bool
}

type Failed struct {
	Message  string
	Partial  bool      // the couple row was written before a related insert failed
	CoupleID uuid.UUID // set when Partial
}

func (Extracting) Name() string { return "extracting" }
func (Ready) Name() string      { return "ready" }
func (Importing) Name() string  { return "importing" }
func (Done) Name() string       { return "done" }
func (Failed) Name() string     { return "error" }

func (Extracting) sealed() {}
func (Ready) sealed()      {}
func (Importing) sealed()  {}
func (Done) sealed()       {}
func (Failed) sealed()     {}

// Item is a snapshot of one queued document.
type Item struct {
	ID           ItemID
	Filename     string
	DocumentType constants.DocumentType
	Document     []byte
	Selected     bool
	State        State
	UpdatedAt    time.Time
}

// Update is what observers receive on every transition.
type Update struct {
	ID       ItemID
	Filename string
	State    State
}

type Observer func(Update)

// Queue is an arena of import items keyed by ItemID.
type Queue struct {
	mu        sync.Mutex
	items     map[ItemID]*Item
	order     []ItemID
	observers map[int]Observer
	nextObs   int
}

func NewQueue() *Queue {
	return &Queue{items: make(map[ItemID]*Item), observers: make(map[int]Observer)}
}

// Add queues a document in the Extracting state, selected by default.
func (q *Queue) Add(filename string, docType constants.DocumentType, doc []byte) ItemID {
	id := NewItemID()
	q.mu.Lock()
	q.items[id] = &Item{
		ID:           id,
		Filename:     filename,
		DocumentType: docType,
		Document:     doc,
		Selected:     true,
		State:        Extracting{},
		UpdatedAt:    time.Now(),
	}
	q.order = append(q.order, id)
	q.mu.Unlock()
	q.notify(Update{ID: id, Filename: filename, State: Extracting{}})
	return id
}

// Set moves an item to a new state.
func (q *Queue) Set(id ItemID, st State) error {
	q.mu.Lock()
	it, ok := q.items[id]
	if !ok {
		q.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownItem, id)
	}
	it.State = st
	it.UpdatedAt = time.Now()
	filename := it.Filename
	q.mu.Unlock()
	q.notify(Update{ID: id, Filename: filename, State: st})
	return nil
}

// Select marks whether a Ready item takes part in the next import.
func (q *Queue) Select(id ItemID, selected bool) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	it, ok := q.items[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownItem, id)
	}
	it.Selected = selected
	return nil
}

func (q *Queue) Get(id ItemID) (Item, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	it, ok := q.items[id]
	if !ok {
		return Item{}, false
	}
	return *it, true
}

// List returns every item in insertion order.
func (q *Queue) List() []Item {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Item, 0, len(q.order))
	for _, id := range q.order {
		out = append(out, *q.items[id])
	}
	return out
}

// Batch returns the Ready items in insertion order as an import batch.
func (q *Queue) Batch() []BatchItem {
	var out []BatchItem
	for _, it := range q.List() {
		ready, ok := it.State.(Ready)
		if !ok {
			continue
		}
		out = append(out, BatchItem{
			ID:       it.ID,
			Filename: it.Filename,
			Document: it.Document,
			Payload:  ready.Payload,
			Selected: it.Selected,
		})
	}
	return out
}

// Claim is Batch for an import about to run: selected Ready items move to
// Importing under the queue lock, so a concurrent Claim cannot return them
// again. Unselected Ready items are returned as-is and stay Ready.
func (q *Queue) Claim() []BatchItem {
	var (
		out     []BatchItem
		updates []Update
	)
	now := time.Now()
	q.mu.Lock()
	for _, id := range q.order {
		it := q.items[id]
		ready, ok := it.State.(Ready)
		if !ok {
			continue
		}
		out = append(out, BatchItem{
			ID:       it.ID,
			Filename: it.Filename,
			Document: it.Document,
			Payload:  ready.Payload,
			Selected: it.Selected,
		})
		if it.Selected {
			it.State = Importing{}
			it.UpdatedAt = now
			updates = append(updates, Update{ID: it.ID, Filename: it.Filename, State: Importing{}})
		}
	}
	q.mu.Unlock()
	for _, u := range updates {
		q.notify(u)
	}
	return out
}

// Subscribe registers an observer and returns its cancel function.
func (q *Queue) Subscribe(fn Observer) func() {
	q.mu.Lock()
	defer q.mu.Unlock()
	key := q.nextObs
	q.nextObs++
	q.observers[key] = fn
	return func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		delete(q.observers, key)
	}
}

func (q *Queue) notify(u Update) {
	q.mu.Lock()
	obs := make([]Observer, 0, len(q.observers))
	for _, fn := range q.observers {
		obs = append(obs, fn)
	}
	q.mu.Unlock()
	for _, fn := range obs {
		fn(u)
	}
}
