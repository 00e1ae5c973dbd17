package models

// DayLayout names one competition day. Number ("1"), Key ("第一天") and Fragment ("10")
// are aliases of the same logical day used by different consumers.
type DayLayout struct {
	Number   string `json:"number" toml:"number"`
	Key      string `json:"key" toml:"key"`
	Fragment string `json:"fragment" toml:"fragment"`
	Label    string `json:"label" toml:"label"`
}

// MeetLayout is the ordered list of days of the meet.
type MeetLayout struct {
	Days []DayLayout `json:"days" toml:"days"`
}

func DefaultMeetLayout() MeetLayout {
	return MeetLayout{Days: []DayLayout{
		{Number: "1", Key: "第一天", Fragment: "10", Label: "9月25日"},
		{Number: "2", Key: "第二天", Fragment: "20", Label: "9月26日"},
	}}
}

// Resolve finds the day any of whose aliases equals id.
func (l MeetLayout) Resolve(id string) (DayLayout, bool) {
	if id == "" {
		return DayLayout{}, false
	}
	for _, d := range l.Days {
		if d.Number == id || d.Key == id || d.Fragment == id {
			return d, true
		}
	}
	return DayLayout{}, false
}

// ByFragment finds the day stored in the schedule fragment with the given file stem.
func (l MeetLayout) ByFragment(stem string) (DayLayout, bool) {
	for _, d := range l.Days {
		if d.Fragment == stem {
			return d, true
		}
	}
	return DayLayout{}, false
}
