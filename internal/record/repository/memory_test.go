package repository

import (
	"context"
	"testing"

	"github.com/devreg/devreg/internal/record"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func seed(t *testing.T, r Repository, serials ...string) {
	t.Helper()
	for _, s := range serials {
		doc, err := record.Sample()
		require.NoError(t, err)
		_, err = r.Insert(context.Background(), record.Set(doc, "SerialNumber", s))
		require.NoError(t, err)
	}
}

func field(t *testing.T, doc record.Document, key string) interface{} {
	t.Helper()
	v, ok := record.Lookup(doc, key)
	require.True(t, ok, "missing key %q in %v", key, doc)
	return v
}

func TestMemoryRepoEmpty(t *testing.T) {
	r := NewMemoryRepo()
	ctx := context.Background()

	got, err := r.FindOne(ctx, nil)
	require.NoError(t, err)
	require.Nil(t, got)

	n, err := r.Count(ctx, record.Filter{})
	require.NoError(t, err)
	require.Zero(t, n)

	list, err := r.Find(ctx, record.BySerial("24"))
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestMemoryRepoInsertFindCount(t *testing.T) {
	r := NewMemoryRepo()
	ctx := context.Background()
	seed(t, r, "23", "24", "24")

	n, err := r.Count(ctx, nil)
	require.NoError(t, err)
	require.EqualValues(t, 3, n)

	n, err = r.Count(ctx, record.BySerial("24"))
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	first, err := r.FindOne(ctx, nil)
	require.NoError(t, err)
	require.NotNil(t, first)
	require.Equal(t, "_id", first[0].Key)
	require.IsType(t, primitive.ObjectID{}, first[0].Value)
	require.Equal(t, "23", field(t, first, "SerialNumber"))

	list, err := r.Find(ctx, record.BySerial("24"))
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, doc := range list {
		require.Equal(t, "24", field(t, doc, "SerialNumber"))
		require.Equal(t, primitive.D{{Key: "usb_autoboot", Value: true}}, field(t, doc, "Special-Flags"))
	}

	// stored int32 matches a Go int in the filter
	n, err = r.Count(ctx, record.Filter{"Region": 1})
	require.NoError(t, err)
	require.EqualValues(t, 3, n)
}

func TestMemoryRepoReturnsCopies(t *testing.T) {
	r := NewMemoryRepo()
	ctx := context.Background()
	seed(t, r, "23")

	got, err := r.FindOne(ctx, nil)
	require.NoError(t, err)
	record.Set(got, "SerialNumber", "changed")

	again, err := r.FindOne(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, "23", field(t, again, "SerialNumber"))
}

func TestMemoryRepoDuplicateID(t *testing.T) {
	r := NewMemoryRepo()
	ctx := context.Background()
	doc := record.Document{{Key: "_id", Value: "dev-1"}, {Key: "SerialNumber", Value: "1"}}
	id, err := r.Insert(ctx, doc)
	require.NoError(t, err)
	require.Equal(t, "dev-1", id)

	_, err = r.Insert(ctx, doc)
	require.ErrorContains(t, err, "duplicate _id")
}

func TestMemoryRepoUpdateMany(t *testing.T) {
	r := NewMemoryRepo()
	ctx := context.Background()
	seed(t, r, "23", "23", "24")

	res, err := r.UpdateMany(ctx, record.BySerial("23"), record.SetRegion("2"))
	require.NoError(t, err)
	require.Equal(t, record.UpdateResult{Matched: 2, Modified: 2}, res)

	// second run matches but changes nothing
	res, err = r.UpdateMany(ctx, record.BySerial("23"), record.SetRegion("2"))
	require.NoError(t, err)
	require.Equal(t, record.UpdateResult{Matched: 2, Modified: 0}, res)

	list, err := r.Find(ctx, record.BySerial("23"))
	require.NoError(t, err)
	for _, doc := range list {
		require.Equal(t, "2", field(t, doc, "Region"))
	}
	other, err := r.FindOne(ctx, record.BySerial("24"))
	require.NoError(t, err)
	require.Equal(t, int32(1), field(t, other, "Region"))

	res, err = r.UpdateMany(ctx, record.BySerial("404"), record.SetRegion("2"))
	require.NoError(t, err)
	require.Zero(t, res.Matched)
}

func TestMemoryRepoUpdateAppendsMissingField(t *testing.T) {
	r := NewMemoryRepo()
	ctx := context.Background()
	_, err := r.Insert(ctx, record.Document{{Key: "SerialNumber", Value: "23"}})
	require.NoError(t, err)

	res, err := r.UpdateMany(ctx, record.BySerial("23"), record.SetRegion("2"))
	require.NoError(t, err)
	require.EqualValues(t, 1, res.Modified)

	got, err := r.FindOne(ctx, nil)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, "Region", got[2].Key)
}

func TestMemoryRepoPartialDocumentReadsBackAsStored(t *testing.T) {
	r := NewMemoryRepo()
	ctx := context.Background()
	doc, err := record.Parse([]byte(`{"SerialNumber": "23"}`))
	require.NoError(t, err)
	_, err = r.Insert(ctx, doc)
	require.NoError(t, err)

	got, err := r.FindOne(ctx, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "23", field(t, got, "SerialNumber"))
	_, hasMAC := record.Lookup(got, "MAC")
	require.False(t, hasMAC)
}

func TestMemoryRepoMismatchedTypes(t *testing.T) {
	r := NewMemoryRepo()
	ctx := context.Background()
	doc, err := record.Parse([]byte(`{"SerialNumber": 24, "Firmware": "1.0", "Region": "eu"}`))
	require.NoError(t, err)
	_, err = r.Insert(ctx, doc)
	require.NoError(t, err)

	got, err := r.FindOne(ctx, record.Filter{"Firmware": "1.0"})
	require.NoError(t, err)
	require.Equal(t, int32(24), field(t, got, "SerialNumber"))

	// an int serial is not the string "24"
	n, err := r.Count(ctx, record.BySerial("24"))
	require.NoError(t, err)
	require.Zero(t, n)

	list, err := r.Find(ctx, record.Filter{"SerialNumber": 24})
	require.NoError(t, err)
	require.Len(t, list, 1)
	b, err := record.MarshalExtJSON(list[0])
	require.NoError(t, err)
	require.Contains(t, string(b), `"SerialNumber":24,"Firmware":"1.0","Region":"eu"}`)
}
