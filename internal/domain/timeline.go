package domain

// Derived, read-only projection of a Stop with its computed schedule.
// Never stored; rebuilt from the day's current order and start time.
type TimelineEntry struct {
	Stop
	ArrivalTime        ClockTime
	DepartureTime      ClockTime
	TravelTimeFromPrev int
}

// Aggregate figures for a computed timeline.
type TimelineSummary struct {
	StartTime          ClockTime
	EndTime            ClockTime
	TotalTravelMinutes int
	TotalVisitMinutes  int
	// Set when the unwrapped schedule runs past midnight.
	CrossesMidnight bool
}
