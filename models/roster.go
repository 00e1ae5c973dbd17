package models

// RosterEntry is one participant row in one heat or group.
type RosterEntry struct {
	Road  string `json:"road"`
	Name  string `json:"name"`
	Data  string `json:"data"`
	Class string `json:"class,omitempty"`
}

// PlayerList is the roster of one event. Name is the event display name and the
// lookup key in AggregateDocument.Players; groups and their rows are in display order.
type PlayerList struct {
	Name    string          `json:"name"`
	Players [][]RosterEntry `json:"players"`
}

// EmptyPlayerList is the "not found" roster returned by lenient lookups.
func EmptyPlayerList(name string) PlayerList {
	return PlayerList{Name: name, Players: [][]RosterEntry{}}
}
