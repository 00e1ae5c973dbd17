package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ClassMappingKey is the reserved key inside the games object that holds the class mapping.
const ClassMappingKey = "classMapping"

// Games is the "games" object of the aggregate: one ScheduleDay per day key plus the
// class mapping stored under ClassMappingKey.
type Games struct {
	Days         OrderedMap[ScheduleDay]
	ClassMapping ClassMapping
}

func (g Games) MarshalJSON() ([]byte, error) {
	days, err := g.Days.MarshalJSON()
	if err != nil {
		return nil, err
	}
	mapping := g.ClassMapping
	if mapping == nil {
		mapping = ClassMapping{}
	}
	mb, err := marshalNoEscape(mapping)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(days[:len(days)-1])
	if g.Days.Len() > 0 {
		buf.WriteByte(',')
	}
	buf.WriteString(`"` + ClassMappingKey + `":`)
	buf.Write(mb)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (g *Games) UnmarshalJSON(data []byte) error {
	var raw OrderedMap[json.RawMessage]
	if err := raw.UnmarshalJSON(data); err != nil {
		return err
	}

	g.Days = OrderedMap[ScheduleDay]{}
	g.ClassMapping = nil

	var decodeErr error
	raw.Each(func(key string, value json.RawMessage) bool {
		if key == ClassMappingKey {
			if err := json.Unmarshal(value, &g.ClassMapping); err != nil {
				decodeErr = fmt.Errorf("games.%s: %w", ClassMappingKey, err)
				return false
			}
			return true
		}
		var day ScheduleDay
		if err := json.Unmarshal(value, &day); err != nil {
			decodeErr = fmt.Errorf("games.%s: %w", key, err)
			return false
		}
		g.Days.Set(key, day)
		return true
	})
	return decodeErr
}

// AggregateDocument is the single merged document consumed by the read API.
// Aliases maps legacy roster ids (fragment file stems such as "10001") to event names.
type AggregateDocument struct {
	Games   Games                  `json:"games"`
	Players OrderedMap[PlayerList] `json:"players"`
	Aliases map[string]string      `json:"aliases,omitempty"`
}

func NewAggregateDocument() *AggregateDocument {
	return &AggregateDocument{
		Games:   Games{ClassMapping: ClassMapping{}},
		Aliases: map[string]string{},
	}
}

// EncodeDocument renders v the way documents are persisted: two-space indent,
// no HTML escaping, trailing newline.
func EncodeDocument(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
