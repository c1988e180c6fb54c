package record

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func lookup(t *testing.T, doc Document, key string) interface{} {
	t.Helper()
	v, ok := Lookup(doc, key)
	require.True(t, ok, "missing key %q", key)
	return v
}

func TestSampleParses(t *testing.T) {
	d, err := Sample()
	require.NoError(t, err)
	require.Equal(t, "24", lookup(t, d, "SerialNumber"))
	require.Equal(t, "00025b00ff01", lookup(t, d, "MAC"))
	require.Equal(t, "0", lookup(t, d, "PCBA Sr-Number"))
	require.Equal(t, "11", lookup(t, d, "Trim coarse"))
	require.Equal(t, int32(1), lookup(t, d, "Region"))
	require.Equal(t, bson.D{{Key: "usb_autoboot", Value: true}}, lookup(t, d, "Special-Flags"))
	_, hasID := Lookup(d, "_id")
	require.False(t, hasID)

	keys := make([]string, 0, len(d))
	for _, e := range d {
		keys = append(keys, e.Key)
	}
	require.Equal(t, []string{"DateTime", "MAC", "SerialNumber", "License", "PCBA Sr-Number", "Region",
		"Trim coarse", "Trim fine", "Trim", "DateTime Headset", "Special-Flags"}, keys)

	// fresh copy each call
	d2, err := Sample()
	require.NoError(t, err)
	Set(d2, "SerialNumber", "99")
	require.Equal(t, "24", lookup(t, d, "SerialNumber"))
}

func TestParseKeepsShapeAndTypes(t *testing.T) {
	d, err := Parse([]byte(`{"SerialNumber": 24, "Firmware": "1.2.3"}`))
	require.NoError(t, err)
	require.Equal(t, Document{{Key: "SerialNumber", Value: int32(24)}, {Key: "Firmware", Value: "1.2.3"}}, d)

	out, err := MarshalExtJSON(d)
	require.NoError(t, err)
	require.Equal(t, `{"SerialNumber":24,"Firmware":"1.2.3"}`, string(out))
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse([]byte(`{not json`))
	require.Error(t, err)

	_, err = ParseArray([]byte(`[{"a":1},{nope}]`))
	require.ErrorContains(t, err, "element 1")

	_, err = ParseArray([]byte(`{"a":1}`))
	require.Error(t, err)
}

func TestMarshalExtJSONNilAndArray(t *testing.T) {
	b, err := MarshalExtJSON(nil)
	require.NoError(t, err)
	require.Equal(t, "null", string(b))

	s, err := Sample()
	require.NoError(t, err)
	arr, err := MarshalExtJSONArray([]Document{s, s})
	require.NoError(t, err)
	var out []map[string]interface{}
	require.NoError(t, json.Unmarshal(arr, &out))
	require.Len(t, out, 2)
	require.Equal(t, "24", out[1]["SerialNumber"])

	back, err := ParseArray(arr)
	require.NoError(t, err)
	require.Equal(t, []Document{s, s}, back)

	empty, err := MarshalExtJSONArray(nil)
	require.NoError(t, err)
	require.Equal(t, "[]", string(empty))
}

func TestDocumentHelpers(t *testing.T) {
	d := Document{{Key: "SerialNumber", Value: "23"}}
	d = Set(d, "Region", "2")
	d = Set(d, "SerialNumber", "24")
	require.Equal(t, Document{{Key: "SerialNumber", Value: "24"}, {Key: "Region", Value: "2"}}, d)

	withID := WithID(d, 7)
	require.Equal(t, "_id", withID[0].Key)
	require.Len(t, withID, 3)
	require.Equal(t, withID, WithID(withID, 8))
	require.Equal(t, d, WithoutID(withID))
}

func TestFilterAndChanges(t *testing.T) {
	require.Equal(t, bson.M{}, BySerial("").BSON())
	require.Equal(t, bson.M{"SerialNumber": "23"}, BySerial("23").BSON())
	require.Equal(t, "*", Filter(nil).Key())
	require.Equal(t, `{"MAC":"ab","SerialNumber":"24"}`, Filter{"SerialNumber": "24", "MAC": "ab"}.Key())
	require.Equal(t, bson.M{"$set": bson.M{"Region": "2"}}, SetRegion("2").BSON())
}

func TestFilterKeyDistinguishesTypes(t *testing.T) {
	require.NotEqual(t, Filter{"k": 1}.Key(), Filter{"k": "1"}.Key())
	require.NotEqual(t, Filter{"k": int32(1)}.Key(), Filter{"k": 1.0}.Key())
	require.Equal(t, Filter{"k": 1}.Key(), Filter{"k": int32(1)}.Key())
}
