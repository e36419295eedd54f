package importer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/wedding-ledger/constants"
	"github.com/joseph-ayodele/wedding-ledger/internal/entity"
	"github.com/joseph-ayodele/wedding-ledger/internal/extraction"
	"github.com/joseph-ayodele/wedding-ledger/internal/repository"
	"github.com/joseph-ayodele/wedding-ledger/internal/repository/repotest"
)

type fakeBlobs struct {
	mu   sync.Mutex
	puts []string
	err  error
}

func (f *fakeBlobs) Put(_ context.Context, coupleID uuid.UUID, filename string, _ []byte, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	path := coupleID.String() + "/" + filename
	f.puts = append(f.puts, path)
	return path, nil
}

func money(v int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(v))
}

func contractItem(bride, groom, last, date string) BatchItem {
	return BatchItem{
		ID:       NewItemID(),
		Filename: bride + "-contract.pdf",
		Document: []byte("%PDF-1.7"),
		Selected: true,
		Payload: &extraction.Payload{
			DocumentType: constants.DocContract,
			Contract: &extraction.ContractFields{
				Bride:       entity.Party{FirstName: bride},
				Groom:       entity.Party{FirstName: groom, LastName: last},
				WeddingDate: date,
				Total:       money(3955),
				Installments: []extraction.InstallmentFields{
					{PaymentNumber: 1, DueDescription: "at signing", Amount: decimal.NewFromInt(500)},
					{PaymentNumber: 2, DueDescription: "30 days before", Amount: decimal.NewFromInt(3455)},
				},
				Signature: extraction.SignatureFields{SignerName: bride + " " + last},
			},
		},
	}
}

func fiveContracts() []BatchItem {
	return []BatchItem{
		contractItem("Amanda", "Justin", "Kong", "2026-09-12"),
		contractItem("Priya", "Sam", "Shah", "2026-06-20"),
		contractItem("Lena", "Marco", "Rossi", "2026-07-04"),
		contractItem("Grace", "Tom", "Okafor", "2026-08-15"),
		contractItem("Nina", "Omar", "Haddad", "2026-10-03"),
	}
}

func TestImportBatch_RelatedFailureDoesNotHaltBatch(t *testing.T) {
	store := repotest.New()
	store.FailNth(repotest.OpInstallmentsAdd, 3, errors.New("constraint violation"))
	blobs := &fakeBlobs{}
	im := NewImporter(blobs, nil)

	items := fiveContracts()
	res := im.ImportBatch(context.Background(), store, items, nil)

	assert.Equal(t, 4, res.Succeeded)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.PerItem, 5)
	for i, r := range res.PerItem {
		if i == 2 {
			assert.Equal(t, StatusError, r.Status)
			assert.True(t, r.Partial)
			assert.Contains(t, r.Error, "constraint violation")
			assert.NotEqual(t, uuid.Nil, r.CoupleID)
			continue
		}
		assert.Equal(t, StatusDone, r.Status, "item %d", i+1)
		assert.True(t, r.Created)
	}

	// the couple and contract of the failed item stay committed
	assert.Len(t, store.AllCouples(), 5)
	assert.Len(t, store.AllContracts(), 5)
	assert.Len(t, store.AllInstallments(), 8)
	assert.Len(t, store.AllSignatures(), 4)
	assert.Len(t, blobs.puts, 4)
}

func TestImportBatch_LaterItemsSeeEarlierWrites(t *testing.T) {
	store := repotest.New()
	im := NewImporter(nil, nil)

	extras := BatchItem{
		ID:       NewItemID(),
		Filename: "kong-album.pdf",
		Selected: true,
		Payload: &extraction.Payload{
			DocumentType: constants.DocExtrasQuote,
			Extras: &extraction.ExtrasFields{
				CoupleName:  "Amanda & Justin Kong",
				WeddingDate: "2026-09-12",
				Items:       []entity.ExtrasItem{{Description: "Album", Price: decimal.NewFromInt(450)}},
				Total:       money(450),
			},
		},
	}
	res := im.ImportBatch(context.Background(), store, []BatchItem{contractItem("Amanda", "Justin", "Kong", "2026-09-12"), extras}, nil)

	require.Equal(t, 2, res.Succeeded)
	assert.True(t, res.PerItem[0].Created)
	assert.False(t, res.PerItem[1].Created)
	assert.Equal(t, entity.TierDatePrimaryPrefix, res.PerItem[1].MatchTier)
	assert.Equal(t, res.PerItem[0].CoupleID, res.PerItem[1].CoupleID)

	couples := store.AllCouples()
	require.Len(t, couples, 1)
	c := couples[0]
	assert.Equal(t, "Amanda & Justin Kong", c.CoupleName)
	assert.Equal(t, constants.StatusBooked, c.Status)
	assert.True(t, c.ExtrasTotal.Decimal.Equal(decimal.NewFromInt(450)))
	assert.True(t, c.BalanceOwing.Decimal.Equal(decimal.NewFromInt(4405)))
	require.Len(t, store.AllExtras(), 1)
	assert.Equal(t, constants.ExtrasQuoted, store.AllExtras()[0].Status)
}

func TestImportBatch_SkipsUnselectedAndReportsProgress(t *testing.T) {
	store := repotest.New()
	im := NewImporter(nil, nil)
	items := fiveContracts()[:2]
	items[1].Selected = false

	var seen []ItemStatus
	res := im.ImportBatch(context.Background(), store, items, func(r ItemResult) { seen = append(seen, r.Status) })

	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, 0, res.Failed)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, []ItemStatus{StatusImporting, StatusDone, StatusSkipped}, seen)
	assert.Len(t, store.AllCouples(), 1)
}

func TestImportBatch_PrimaryWriteFailure(t *testing.T) {
	store := repotest.New()
	store.FailNth(repotest.OpCoupleCreate, 1, errors.New("network down"))
	im := NewImporter(nil, nil)

	res := im.ImportBatch(context.Background(), store, fiveContracts()[:2], nil)
	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, 1, res.Failed)
	assert.False(t, res.PerItem[0].Partial)
	assert.Equal(t, uuid.Nil, res.PerItem[0].CoupleID)
	assert.Contains(t, res.PerItem[0].Error, "write couple: ")
	assert.Contains(t, res.PerItem[0].Error, "network down")
	assert.Len(t, store.AllContracts(), 1)
}

func TestImportBatch_BlobFailureIsBestEffort(t *testing.T) {
	store := repotest.New()
	im := NewImporter(&fakeBlobs{err: errors.New("bucket missing")}, nil)

	res := im.ImportBatch(context.Background(), store, fiveContracts()[:1], nil)
	require.Equal(t, 1, res.Succeeded)
	assert.Equal(t, "bucket missing", res.PerItem[0].BlobError)
	assert.Empty(t, res.PerItem[0].BlobPath)
}

func TestImportBatch_BadItems(t *testing.T) {
	store := repotest.New()
	im := NewImporter(nil, nil)
	items := []BatchItem{
		{ID: NewItemID(), Filename: "nothing.pdf", Selected: true},
		{ID: NewItemID(), Filename: "odd.pdf", Selected: true, Payload: &extraction.Payload{DocumentType: "invoice"}},
	}
	res := im.ImportBatch(context.Background(), store, items, nil)
	assert.Equal(t, 2, res.Failed)
	assert.Empty(t, store.AllCouples())
}

func TestImportBatch_LeadQuote(t *testing.T) {
	for _, docType := range []constants.DocumentType{constants.DocLeadQuote, "lead_quote", "quote", "Lead"} {
		t.Run(string(docType), func(t *testing.T) {
			store := repotest.New()
			im := NewImporter(nil, nil)
			item := BatchItem{
				ID:       NewItemID(),
				Filename: "lead.txt",
				Selected: true,
				Payload: &extraction.Payload{
					DocumentType: docType,
					Quote: &extraction.QuoteFields{
						BrideFirstName: "Priya", GroomFirstName: "Sam",
						Email: "priya@example.com", QuotedTotal: money(2800),
						PackageType: constants.PhotoOnly, LeadSource: "instagram",
					},
				},
			}
			res := im.ImportBatch(context.Background(), store, []BatchItem{item}, nil)
			require.Equal(t, 1, res.Succeeded)

			c := store.AllCouples()[0]
			assert.Equal(t, constants.StatusProspect, c.Status)
			assert.Equal(t, "instagram", c.LeadSource)
			q := store.AllQuotes()
			require.Len(t, q, 1)
			assert.True(t, q[0].QuotedTotal.Decimal.Equal(decimal.NewFromInt(2800)))
			assert.Equal(t, c.ID, q[0].CoupleID)
			// the caller's payload is left untouched
			assert.Equal(t, docType, item.Payload.DocumentType)
		})
	}
}

// slowStore delays couple inserts so overlapping batches would race between
// matching and inserting.
type slowStore struct{ *repotest.Store }

type slowCouples struct{ repository.CoupleRepository }

func (s slowStore) Couples() repository.CoupleRepository {
	return slowCouples{s.Store.Couples()}
}

func (c slowCouples) Create(ctx context.Context, couple *entity.Couple) error {
	time.Sleep(10 * time.Millisecond)
	return c.CoupleRepository.Create(ctx, couple)
}

func TestImportBatch_ConcurrentBatchesAreSerialised(t *testing.T) {
	mem := repotest.New()
	store := slowStore{mem}
	im := NewImporter(nil, nil)

	var wg sync.WaitGroup
	results := make([]BatchResult, 2)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			item := contractItem("Amanda", "Justin", "Kong", "2026-09-12")
			results[i] = im.ImportBatch(context.Background(), store, []BatchItem{item}, nil)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, results[0].Succeeded)
	assert.Equal(t, 1, results[1].Succeeded)
	require.Len(t, mem.AllCouples(), 1)
	assert.Len(t, mem.AllContracts(), 2)
	created := 0
	for _, r := range results {
		if r.PerItem[0].Created {
			created++
		}
	}
	assert.Equal(t, 1, created)
}

func TestImportQueue_ConcurrentImportsClaimEachItemOnce(t *testing.T) {
	mem := repotest.New()
	store := slowStore{mem}
	im := NewImporter(nil, nil)
	q := NewQueue()
	item := contractItem("Amanda", "Justin", "Kong", "2026-09-12")
	id := q.Add(item.Filename, constants.DocContract, item.Document)
	require.NoError(t, q.Set(id, Ready{Payload: item.Payload}))

	var wg sync.WaitGroup
	results := make([]BatchResult, 2)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = im.ImportQueue(context.Background(), store, q)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, results[0].Succeeded+results[1].Succeeded)
	assert.Len(t, mem.AllCouples(), 1)
	assert.Len(t, mem.AllContracts(), 1)
	got, _ := q.Get(id)
	assert.IsType(t, Done{}, got.State)
}

func TestImportQueue_MovesItemsThroughStates(t *testing.T) {
	store := repotest.New()
	store.FailNth(repotest.OpSignatureAdd, 2, errors.New("boom"))
	q := NewQueue()

	var mu sync.Mutex
	var names []string
	cancel := q.Subscribe(func(u Update) {
		mu.Lock()
		defer mu.Unlock()
		names = append(names, u.State.Name())
	})
	defer cancel()

	items := fiveContracts()[:3]
	ids := make([]ItemID, len(items))
	for i, it := range items {
		ids[i] = q.Add(it.Filename, constants.DocContract, it.Document)
		require.NoError(t, q.Set(ids[i], Ready{Payload: it.Payload}))
	}
	// the third item is still extracting and is not part of the batch
	require.NoError(t, q.Set(ids[2], Extracting{}))

	res := NewImporter(nil, nil).ImportQueue(context.Background(), store, q)
	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, 1, res.Failed)

	first, _ := q.Get(ids[0])
	done, ok := first.State.(Done)
	require.True(t, ok, "got %T", first.State)
	assert.True(t, done.Created)

	second, _ := q.Get(ids[1])
	failed, ok := second.State.(Failed)
	require.True(t, ok, "got %T", second.State)
	assert.True(t, failed.Partial)
	assert.Contains(t, failed.Message, "boom")

	third, _ := q.Get(ids[2])
	assert.IsType(t, Extracting{}, third.State)
	assert.Contains(t, fmt.Sprint(names), "importing")
}
