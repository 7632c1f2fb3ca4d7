package feed

// Join groups events under the venue whose id equals the event's venue
// reference and keeps the groups with at least MinEventsPerVenue events.
// Groups follow venue order; events inside a group follow event order.
//
// The straightforward form scans every event for every venue, O(V×E). Events
// are indexed by venue id first instead, which gives the same output in
// O(V+E). Both forms rebuild everything on each call: nothing is kept between
// runs.
func Join(venues []VenueRecord, events []EventRecord) []VenueEventsGroup {
	byVenue := make(map[string][]EventRecord, len(venues))
	for _, ev := range events {
		byVenue[ev.VenueID] = append(byVenue[ev.VenueID], ev)
	}

	groups := make([]VenueEventsGroup, 0)
	for _, v := range venues {
		matched := byVenue[v.ID]
		if len(matched) < MinEventsPerVenue {
			continue
		}
		evs := make([]EventRecord, len(matched))
		copy(evs, matched)
		groups = append(groups, VenueEventsGroup{Venue: v, Events: evs})
	}
	return groups
}
