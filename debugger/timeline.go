// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package debugger

import (
	"sort"
	"strings"
	"time"
)

// LogEntry is one line ingested from an agent (spec §3: "{node_id,
// timestamp, level, message, source_file?, line?}").
type LogEntry struct {
	NodeID     string
	Timestamp  time.Time
	Level      string
	Message    string
	SourceFile *string
	Line       *uint32
}

// EventType classifies a TimelineEvent (spec §4.5 step 1).
type EventType string

const (
	EventNodeStart             EventType = "node_start"
	EventNodeStop              EventType = "node_stop"
	EventConnectionEstablished EventType = "connection_established"
	EventConnectionLost        EventType = "connection_lost"
	EventError                 EventType = "error"
	EventWarning               EventType = "warning"
	EventStateChange           EventType = "state_change"
)

// TimelineEvent is one classified, timestamped entry in the Timeline.
type TimelineEvent struct {
	NodeID      string
	Timestamp   time.Time
	EventType   EventType
	Description string
	LogEntries  []LogEntry
}

// Timeline is the time-sorted union of every node's events with a
// per-node index (spec §3: "A Timeline is the time-sorted union with a
// per-node index").
type Timeline struct {
	events []TimelineEvent
	byNode map[string][]int
}

// NewTimeline returns an empty Timeline.
func NewTimeline() *Timeline {
	return &Timeline{byNode: make(map[string][]int)}
}

// AddEvent appends one event and rebuilds the per-node index entry.
func (t *Timeline) AddEvent(e TimelineEvent) {
	idx := len(t.events)
	t.events = append(t.events, e)
	t.byNode[e.NodeID] = append(t.byNode[e.NodeID], idx)
}

// Events returns every event in the timeline, in current order.
func (t *Timeline) Events() []TimelineEvent {
	return t.events
}

// EventsForNode returns every event recorded for one node.
func (t *Timeline) EventsForNode(nodeID string) []TimelineEvent {
	indices := t.byNode[nodeID]
	out := make([]TimelineEvent, 0, len(indices))
	for _, i := range indices {
		out = append(out, t.events[i])
	}
	return out
}

// EventsInWindow returns every event whose timestamp falls in [start,end].
func (t *Timeline) EventsInWindow(start, end time.Time) []TimelineEvent {
	var out []TimelineEvent
	for _, e := range t.events {
		if !e.Timestamp.Before(start) && !e.Timestamp.After(end) {
			out = append(out, e)
		}
	}
	return out
}

// SortByTime orders events chronologically and rebuilds the node index.
func (t *Timeline) SortByTime() {
	sort.Slice(t.events, func(i, j int) bool {
		return t.events[i].Timestamp.Before(t.events[j].Timestamp)
	})
	t.byNode = make(map[string][]int)
	for idx, e := range t.events {
		t.byNode[e.NodeID] = append(t.byNode[e.NodeID], idx)
	}
}

// classifyEvent derives an EventType from a LogEntry's level and message
// text, mirroring AutomatedDebugger::build_timeline's classification
// ladder.
func classifyEvent(entry LogEntry) EventType {
	level := strings.ToUpper(entry.Level)
	msg := strings.ToLower(entry.Message)

	switch {
	case strings.Contains(level, "ERROR"):
		return EventError
	case strings.Contains(level, "WARN"):
		return EventWarning
	case strings.Contains(msg, "disconnected"), strings.Contains(msg, "connection lost"):
		return EventConnectionLost
	case strings.Contains(msg, "connected"):
		return EventConnectionEstablished
	case strings.Contains(msg, "starting"), strings.Contains(msg, "started"), strings.Contains(msg, "initialized"):
		return EventNodeStart
	case strings.Contains(msg, "stopping"), strings.Contains(msg, "shutdown"):
		return EventNodeStop
	default:
		return EventStateChange
	}
}

// BuildTimeline converts a flat log list into a sorted, classified
// Timeline.
func BuildTimeline(logs []LogEntry) *Timeline {
	timeline := NewTimeline()
	for _, log := range logs {
		timeline.AddEvent(TimelineEvent{
			NodeID:      log.NodeID,
			Timestamp:   log.Timestamp,
			EventType:   classifyEvent(log),
			Description: log.Message,
			LogEntries:  []LogEntry{log},
		})
	}
	timeline.SortByTime()
	return timeline
}

// matchesPattern implements spec §4.5 step 2: lowercase substring
// matching with `|` as OR.
func matchesPattern(message, pattern string) bool {
	messageLower := strings.ToLower(message)
	patternLower := strings.ToLower(pattern)

	if strings.Contains(patternLower, "|") {
		for _, p := range strings.Split(patternLower, "|") {
			if strings.Contains(messageLower, strings.TrimSpace(p)) {
				return true
			}
		}
		return false
	}
	return strings.Contains(messageLower, patternLower)
}

// ParseLogLine attempts to recover a level from a raw log line the way
// AutomatedDebugger::parse_log_line does: substring search for common
// level tokens, defaulting to INFO.
func ParseLogLine(nodeID, line string, now time.Time) *LogEntry {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	level := "INFO"
	switch {
	case strings.Contains(line, "ERROR") || strings.Contains(line, "error"):
		level = "ERROR"
	case strings.Contains(line, "WARN") || strings.Contains(line, "warn"):
		level = "WARN"
	case strings.Contains(line, "INFO") || strings.Contains(line, "info"):
		level = "INFO"
	case strings.Contains(line, "DEBUG") || strings.Contains(line, "debug"):
		level = "DEBUG"
	case strings.Contains(line, "TRACE") || strings.Contains(line, "trace"):
		level = "TRACE"
	}

	return &LogEntry{NodeID: nodeID, Timestamp: now, Level: level, Message: line}
}
