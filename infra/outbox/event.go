package outbox

import "encoding/json"

// Event is the JSON body stored for every list mutation and published
// by the broadcaster.
type Event struct {
	V     int    `json:"v"`
	Type  string `json:"type"`
	List  string `json:"list"`
	Value int16  `json:"value"`
	Seq   uint64 `json:"seq"`
}

func EncodeEvent(e Event) ([]byte, error) {
	e.V = 1
	return json.Marshal(e)
}

func DecodeEvent(b []byte) (Event, error) {
	var e Event
	err := json.Unmarshal(b, &e)
	return e, err
}
