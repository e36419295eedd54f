package extraction

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/wedding-ledger/constants"
	"github.com/joseph-ayodele/wedding-ledger/internal/llm"
	"github.com/joseph-ayodele/wedding-ledger/internal/textextract"
)

type fakeText struct {
	pages []string
	err   error
}

func (f fakeText) Extract(context.Context, []byte, string) (textextract.Result, error) {
	return textextract.Result{Pages: f.pages}, f.err
}

type fakeOracle struct {
	out []byte
	err error
	req llm.Request
}

func (f *fakeOracle) Complete(_ context.Context, req llm.Request) ([]byte, error) {
	f.req = req
	return f.out, f.err
}

func (f *fakeOracle) Name() string { return "fake" }

func newService(text fakeText, oracle *fakeOracle) *Service {
	return NewService(text, oracle, slog.Default())
}

const fullContract = `{
  "bride_first_name": "Amanda", "bride_last_name": "Kong",
  "groom_first_name": "Justin", "groom_last_name": "Kong",
  "bride_email": "Amanda@Example.com",
  "wedding_date": "September 12th, 2026",
  "package_type": "Photo + Video",
  "total": "$3,955.00", "deposit": 500,
  "installments": [
    {"payment_number": 1, "due_description": "at signing", "amount": "500"},
    {"due_description": "30 days before", "amount": 3455, "due_date": "08/13/2026"}
  ],
  "signature": {"signer_name": "Amanda Kong", "signed_date": "2025-11-02"}
}`

func TestExtract_ContractHighConfidence(t *testing.T) {
	oracle := &fakeOracle{out: []byte("```json\n" + fullContract + "\n```")}
	svc := newService(fakeText{pages: []string{"CONTRACT"}}, oracle)

	p, err := svc.Extract(context.Background(), []byte("%PDF"), "kong.pdf", constants.DocContract)
	require.NoError(t, err)
	assert.Equal(t, ConfidenceHigh, p.Confidence)
	assert.Equal(t, 6, p.Score)
	assert.Equal(t, 6, p.LoadBearing)
	require.NotNil(t, p.Contract)
	assert.Nil(t, p.Extras)

	c := p.Contract
	assert.Equal(t, "2026-09-12", c.WeddingDate)
	assert.Equal(t, "amanda@example.com", c.Bride.Email)
	assert.Equal(t, constants.PhotoPlusVideo, c.PackageType)
	assert.True(t, c.Total.Decimal.Equal(decimal.NewFromInt(3955)))
	require.Len(t, c.Installments, 2)
	assert.Equal(t, 2, c.Installments[1].PaymentNumber)
	assert.Equal(t, "2026-08-13", c.Installments[1].DueDate)
	assert.Equal(t, "Amanda Kong", c.Signature.SignerName)

	assert.Equal(t, constants.DocContract, oracle.req.DocumentType)
	assert.Contains(t, oracle.req.UserPrompt, "CONTRACT")
}

func TestExtract_AliasDocumentType(t *testing.T) {
	oracle := &fakeOracle{out: []byte(`{"couple_name":"Amanda & Justin Kong","items":[{"description":"Album","price":"450"}],"order_date":"2026-01-04"}`)}
	p, err := newService(fakeText{pages: []string{"x"}}, oracle).Extract(context.Background(), []byte("x"), "e.txt", "extras")
	require.NoError(t, err)
	assert.Equal(t, constants.DocExtrasQuote, p.DocumentType)
	require.NotNil(t, p.Extras)
	assert.True(t, p.Extras.Total.Decimal.Equal(decimal.NewFromInt(450)))
	// total was derived, so it is still scored as missing
	assert.Equal(t, 3, p.Score)
	assert.Equal(t, ConfidenceHigh, p.Confidence)
	assert.Contains(t, p.Warnings, "missing total")
}

func TestExtract_Failures(t *testing.T) {
	tests := []struct {
		name   string
		text   fakeText
		oracle *fakeOracle
		doc    []byte
		file   string
		kind   FailureKind
	}{
		{"empty bytes", fakeText{}, &fakeOracle{}, nil, "a.pdf", EmptyDocument},
		{"image only", fakeText{err: textextract.ErrNoText}, &fakeOracle{}, []byte("%PDF"), "a.pdf", EmptyDocument},
		{"unsupported", fakeText{err: textextract.ErrUnsupportedFormat}, &fakeOracle{}, []byte("x"), "a.heic", UnsupportedDocument},
		{"oracle down", fakeText{pages: []string{"x"}}, &fakeOracle{err: llm.ErrUnavailable}, []byte("x"), "a.txt", OracleUnavailable},
		{"oracle garbage", fakeText{pages: []string{"x"}}, &fakeOracle{out: []byte("I cannot help with that")}, []byte("x"), "a.txt", OracleMalformedResponse},
		{"oracle truncated", fakeText{pages: []string{"x"}}, &fakeOracle{out: []byte(`{"a":1`)}, []byte("x"), "a.txt", OracleMalformedResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newService(tt.text, tt.oracle).Extract(context.Background(), tt.doc, tt.file, constants.DocContract)
			var f *Failure
			require.True(t, errors.As(err, &f), "got %v", err)
			assert.Equal(t, tt.kind, f.Kind)
		})
	}
}

func TestExtractOrRecover(t *testing.T) {
	svc := newService(fakeText{err: textextract.ErrNoText}, &fakeOracle{})
	p, err := svc.ExtractOrRecover(context.Background(), []byte("%PDF"), "scan.pdf", constants.DocLeadQuote)
	require.Error(t, err)
	require.NotNil(t, p)
	assert.Equal(t, ConfidenceLow, p.Confidence)
	assert.Equal(t, 0, p.Score)
	require.NotNil(t, p.Quote)
	assert.Contains(t, p.Warnings[0], "extraction failed")
	assert.Contains(t, p.Warnings, "missing email")
}

func TestBucket(t *testing.T) {
	assert.Equal(t, ConfidenceHigh, Bucket(6, 6))
	assert.Equal(t, ConfidenceHigh, Bucket(5, 6))
	assert.Equal(t, ConfidenceMedium, Bucket(3, 6))
	assert.Equal(t, ConfidenceLow, Bucket(2, 6))
	assert.Equal(t, ConfidenceMedium, Bucket(3, 5))
	assert.Equal(t, ConfidenceLow, Bucket(2, 5))
	assert.Equal(t, ConfidenceMedium, Bucket(2, 4))
	assert.Equal(t, ConfidenceLow, Bucket(1, 4))
}

var rank = map[Confidence]int{ConfidenceLow: 0, ConfidenceMedium: 1, ConfidenceHigh: 2}

// Adding one present load-bearing field never lowers the bucket.
func TestScore_Monotonic(t *testing.T) {
	sample := map[string]any{
		"bride_first_name": "Amanda", "groom_first_name": "Justin", "wedding_date": "2026-09-12",
		"total": 3955.0, "installments": []any{map[string]any{"amount": 500.0}},
		"signature":   map[string]any{"signer_name": "Amanda"},
		"couple_name": "Amanda & Justin Kong", "items": []any{map[string]any{"description": "Album"}},
		"order_date": "2026-01-04", "email": "a@b.c", "quoted_total": "$2,800", "package_type": "photo_only",
	}
	for _, docType := range constants.DocumentTypes {
		sels := LoadBearing(docType)
		n := len(sels)
		for mask := 0; mask < 1<<n; mask++ {
			base := fieldsFor(sels, mask, sample)
			s0, _ := Score(base, sels)
			for i := 0; i < n; i++ {
				if mask&(1<<i) != 0 {
					continue
				}
				s1, _ := Score(fieldsFor(sels, mask|1<<i, sample), sels)
				require.GreaterOrEqual(t, s1, s0)
				assert.GreaterOrEqual(t, rank[Bucket(s1, n)], rank[Bucket(s0, n)], "%s mask=%b +%d", docType, mask, i)
			}
		}
	}
}

func fieldsFor(sels []Selector, mask int, sample map[string]any) Fields {
	f := Empty()
	for i, sel := range sels {
		if mask&(1<<i) == 0 {
			continue
		}
		key := sel.Paths[0]
		if key == "signature.signer_name" {
			f.m["signature"] = sample["signature"]
			continue
		}
		f.m[key] = sample[key]
	}
	return f
}

func TestScore_WarnsPerMissingField(t *testing.T) {
	f, err := Decode([]byte(`{"bride_first_name":"Amanda","total":"0.00","installments":[],"signature":{"signer_name":""}}`))
	require.NoError(t, err)
	score, warnings := Score(f, LoadBearing(constants.DocContract))
	assert.Equal(t, 1, score)
	assert.Equal(t, []string{"missing groom first name", "missing wedding date", "missing contract total", "missing installments", "missing signer name"}, warnings)
}

func TestFieldsAccessors(t *testing.T) {
	f, err := Decode([]byte(`{"a":" x ","n":"N/A","m":"$1,200.50","bad":"lots","d":"Sat, Sep 12, 2026","obj":[1],"i":"3"}`))
	require.NoError(t, err)
	assert.Equal(t, "x", f.String("a"))
	assert.Equal(t, "", f.String("n"))
	assert.Equal(t, "1200.5", f.Money("m").Decimal.String())
	assert.False(t, f.Money("bad").Valid)
	assert.Equal(t, "2026-09-12", f.Date("d"))
	assert.Equal(t, 3, f.Int("i"))
	assert.Equal(t, "", f.Object("obj").String("x"))
	assert.Len(t, f.Warnings(), 2)

	_, err = Decode([]byte(`[1,2]`))
	assert.Error(t, err)
	_, err = Decode([]byte(`null`))
	assert.Error(t, err)
}

func TestNormalizeDate(t *testing.T) {
	for in, want := range map[string]string{
		"2026-09-12":                   "2026-09-12",
		"09/12/2026":                   "2026-09-12",
		"9/12/2026":                    "2026-09-12",
		"September 12, 2026":           "2026-09-12",
		"Saturday, September 12, 2026": "2026-09-12",
		"12 September 2026":            "2026-09-12",
		"Sept 12":                      "",
	} {
		got, _ := NormalizeDate(in)
		assert.Equal(t, want, got, in)
	}
}
