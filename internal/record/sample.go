package record

import (
	"bytes"
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// SampleJSON is the reference device record used by the demo and by `insert`.
const SampleJSON = `{"DateTime": "2000-01-01 00:05:41", "MAC": "00025b00ff01", "SerialNumber": "24", "License": "98 76 98 45 b0 60 0b 6a c1 1a e0 b3 39 54 6d c1 a7 ee 81 6d 79 a2 34 40 e7 04 54 02 6d 3a 17 7c 27 0a 3c 1f 39 a3 ea c7 c5 0b 84 75 72 dd 54 6f 74 b6 19 9a 4d 44 ad f8 9d 48 cd 70 d2 27 74 f8", "PCBA Sr-Number": "0", "Region": 1, "Trim coarse": "11", "Trim fine": "0", "Trim": "0", "DateTime Headset": "", "Special-Flags": {"usb_autoboot": true}}`

// Sample parses SampleJSON. Each call returns a fresh document.
func Sample() (Document, error) {
	return Parse([]byte(SampleJSON))
}

// Parse decodes one relaxed Extended JSON object, keeping its key order and value types.
func Parse(data []byte) (Document, error) {
	var doc Document
	if err := bson.UnmarshalExtJSON(data, false, &doc); err != nil {
		return nil, fmt.Errorf("parse record: %w", err)
	}
	if doc == nil {
		doc = Document{}
	}
	return doc, nil
}

// ParseArray decodes a JSON array of Extended JSON objects, the format
// MarshalExtJSONArray writes.
func ParseArray(data []byte) ([]Document, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse record array: %w", err)
	}
	docs := make([]Document, 0, len(raw))
	for i, r := range raw {
		doc, err := Parse(r)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// MarshalExtJSON renders a document the way the shell prints it (relaxed Extended JSON).
// A nil document renders as null.
func MarshalExtJSON(doc Document) ([]byte, error) {
	if doc == nil {
		return []byte("null"), nil
	}
	b, err := bson.MarshalExtJSON(doc, false, false)
	if err != nil {
		id, _ := Lookup(doc, "_id")
		return nil, fmt.Errorf("marshal record %v: %w", id, err)
	}
	return b, nil
}

// MarshalExtJSONArray renders documents as a JSON array.
func MarshalExtJSONArray(docs []Document) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, d := range docs {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := MarshalExtJSON(d)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}
