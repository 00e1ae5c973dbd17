package models

// EventDescriptor identifies one scheduled competition slot.
type EventDescriptor struct {
	Grade string `json:"grade"`
	Name  string `json:"name"`
	Time  string `json:"time"`
	Link  string `json:"link"`
}

// Quadrant indexes inside a ScheduleDay.
const (
	QuadrantTrackMorning = iota
	QuadrantTrackAfternoon
	QuadrantFieldMorning
	QuadrantFieldAfternoon

	QuadrantCount
)

// ScheduleDay is one day's schedule as persisted: up to four quadrant arrays
// (track-morning, track-afternoon, field-morning, field-afternoon).
// Order inside a quadrant is display order.
type ScheduleDay [][]EventDescriptor

// Quadrant returns the events of quadrant q, or an empty slice if the day is short.
func (d ScheduleDay) Quadrant(q int) []EventDescriptor {
	if q < 0 || q >= len(d) || d[q] == nil {
		return []EventDescriptor{}
	}
	return d[q]
}

type SessionPair struct {
	Morning   []EventDescriptor `json:"morning"`
	Afternoon []EventDescriptor `json:"afternoon"`
}

// Schedule is the reshaped view of a ScheduleDay served to the front end.
type Schedule struct {
	Track SessionPair `json:"track"`
	Field SessionPair `json:"field"`
}

func (d ScheduleDay) Reshape() Schedule {
	return Schedule{
		Track: SessionPair{
			Morning:   d.Quadrant(QuadrantTrackMorning),
			Afternoon: d.Quadrant(QuadrantTrackAfternoon),
		},
		Field: SessionPair{
			Morning:   d.Quadrant(QuadrantFieldMorning),
			Afternoon: d.Quadrant(QuadrantFieldAfternoon),
		},
	}
}
