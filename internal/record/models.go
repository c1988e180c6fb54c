package record

import (
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
)

// Document is a device record as stored: keys keep their order and values
// keep their BSON types. Records are not forced into a fixed shape, so a
// partial or differently typed document reads back exactly as written.
type Document = bson.D

// Lookup returns the top-level value stored under key.
func Lookup(doc Document, key string) (interface{}, bool) {
	for _, e := range doc {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Set replaces the value under key in place, or appends the key when it is
// missing (the position $set gives a new field).
func Set(doc Document, key string, v interface{}) Document {
	for i := range doc {
		if doc[i].Key == key {
			doc[i].Value = v
			return doc
		}
	}
	return append(doc, bson.E{Key: key, Value: v})
}

// WithID returns doc with _id as its first key, unless it already has one.
func WithID(doc Document, id interface{}) Document {
	if _, ok := Lookup(doc, "_id"); ok || id == nil {
		return doc
	}
	out := make(Document, 0, len(doc)+1)
	out = append(out, bson.E{Key: "_id", Value: id})
	return append(out, doc...)
}

// WithoutID returns a copy of doc without its _id.
func WithoutID(doc Document) Document {
	out := make(Document, 0, len(doc))
	for _, e := range doc {
		if e.Key != "_id" {
			out = append(out, e)
		}
	}
	return out
}

// Filter is an equality match on top-level keys. The zero value matches everything.
type Filter bson.M

// BySerial matches records with the given serial number.
func BySerial(serial string) Filter {
	if serial == "" {
		return Filter{}
	}
	return Filter{"SerialNumber": serial}
}

// BSON returns the filter in driver form.
func (f Filter) BSON() bson.M {
	if f == nil {
		return bson.M{}
	}
	return bson.M(f)
}

// Key is a stable textual form of the filter, used for cache keys. Values are
// rendered as canonical Extended JSON so 1 and "1" give different keys.
func (f Filter) Key() string {
	if len(f) == 0 {
		return "*"
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	d := make(bson.D, 0, len(keys))
	for _, k := range keys {
		d = append(d, bson.E{Key: k, Value: f[k]})
	}
	b, err := bson.MarshalExtJSON(d, true, false)
	if err != nil {
		return fmt.Sprintf("%#v", d)
	}
	return string(b)
}

// Changes is the $set payload of an update.
type Changes bson.M

// SetRegion changes the Region field.
func SetRegion(region interface{}) Changes {
	return Changes{"Region": region}
}

// BSON returns the update document.
func (c Changes) BSON() bson.M {
	return bson.M{"$set": bson.M(c)}
}

// UpdateResult reports what an update touched.
type UpdateResult struct {
	Matched  int64 `json:"matched"`
	Modified int64 `json:"modified"`
}
