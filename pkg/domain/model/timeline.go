package model

import (
	"sort"
	"time"
)

// TimelineEvent is one entry of the unified obligation timeline: either a
// routing action or an annotation, exactly one of which is set.
type TimelineEvent struct {
	RoutingAction *RoutingAction
	Annotation    *Annotation
	At            time.Time
}

// BuildTimeline merges routing actions and annotations into a single
// sequence sorted by timestamp descending. The structural level-1 routing
// action is suppressed: it is creation scaffolding, not user content.
func BuildTimeline(actions []*RoutingAction, annotations []*Annotation) []TimelineEvent {
	events := make([]TimelineEvent, 0, len(actions)+len(annotations))
	for _, a := range actions {
		if a.Level == 1 {
			continue
		}
		events = append(events, TimelineEvent{RoutingAction: a, At: a.CreatedAt})
	}
	for _, n := range annotations {
		events = append(events, TimelineEvent{Annotation: n, At: n.CreatedAt})
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].At.After(events[j].At)
	})
	return events
}
